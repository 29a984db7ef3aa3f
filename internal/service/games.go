package service

import (
	"context"
	"sort"

	"github.com/cockroachdb/errors"
	"github.com/sourcegraph/conc/pool"
	"go.uber.org/zap"

	"github.com/fortuna/gridiron/internal/assemble"
	"github.com/fortuna/gridiron/internal/cache"
	"github.com/fortuna/gridiron/internal/reconciliation"
	"github.com/fortuna/gridiron/internal/store"
)

// GameService serves normalized weekly slates.
type GameService struct {
	deps
	notifier Notifier
	matcher  *reconciliation.Matcher
	engine   *reconciliation.Engine
}

// NewGameService wires the sources and cache. notifier may be nil.
func NewGameService(jsonSrc JSONSource, htmlSrc HTMLSource, c *cache.Cache, notifier Notifier, opts Options) *GameService {
	d := newDeps(jsonSrc, htmlSrc, c, opts)
	return &GameService{
		deps:     d,
		notifier: notifier,
		matcher:  reconciliation.NewMatcher(d.logger),
		engine:   reconciliation.NewEngine(reconciliation.SmartMerge, d.logger),
	}
}

// SlateKey is the cache key of one week's slate.
func SlateKey(season, week int) string {
	return cache.Key("games", itoa(season), itoa(week))
}

// Games returns the week's normalized games, from cache when fresh.
func (s *GameService) Games(ctx context.Context, season, week int) ([]store.GameRecord, error) {
	if err := s.check(slateQuery{Season: season, Week: week}); err != nil {
		return nil, err
	}

	key := SlateKey(season, week)
	if games, ok, err := cache.Get[[]store.GameRecord](ctx, s.cache, key, s.ttl); err != nil {
		s.logger.Warn("cache read failed", zap.String("key", key), zap.Error(err))
	} else if ok {
		return games, nil
	}

	games, err := s.Refresh(ctx, season, week)
	if err != nil {
		return stale[[]store.GameRecord](ctx, s.deps, key, err)
	}
	return games, nil
}

// Refresh rebuilds the week's slate from the sources and rewrites the cache.
func (s *GameService) Refresh(ctx context.Context, season, week int) ([]store.GameRecord, error) {
	if err := s.check(slateQuery{Season: season, Week: week}); err != nil {
		return nil, err
	}

	raws, source, err := s.schedule(ctx, season, week)
	if err != nil {
		return nil, err
	}
	games := s.assembleAll(ctx, raws, season, week)
	s.save(ctx, season, week, source, games)
	return games, nil
}

// ReconcileWeek merges both sources' schedules game by game before
// assembling. Either source may fail; both failing is an error.
func (s *GameService) ReconcileWeek(ctx context.Context, season, week int) ([]store.GameRecord, error) {
	if err := s.check(slateQuery{Season: season, Week: week}); err != nil {
		return nil, err
	}

	espnGames, espnErr := withRetry(ctx, s.retry, func(ctx context.Context) ([]store.GameRaw, error) {
		return s.json.Scoreboard(ctx, season, week)
	})
	if espnErr != nil {
		s.logger.Warn("json schedule unavailable", zap.Int("season", season), zap.Int("week", week), zap.Error(espnErr))
	}
	pfrGames, pfrErr := withRetry(ctx, s.retry, func(ctx context.Context) ([]store.GameRaw, error) {
		return s.html.Schedule(ctx, season, week)
	})
	if pfrErr != nil {
		s.logger.Warn("html schedule unavailable", zap.Int("season", season), zap.Int("week", week), zap.Error(pfrErr))
	}
	if espnErr != nil && pfrErr != nil {
		return nil, errors.WithSecondaryError(
			errors.Wrapf(ErrSourcesUnavailable, "schedule %d week %d", season, week),
			errors.CombineErrors(espnErr, pfrErr))
	}

	raws := s.matcher.MatchAndReconcileAll(espnGames, pfrGames, s.engine)
	games := s.assembleAll(ctx, raws, season, week)
	s.save(ctx, season, week, "reconciled", games)
	return games, nil
}

// Game returns one game by canonical id.
func (s *GameService) Game(ctx context.Context, gameID string) (*store.GameRecord, error) {
	key, err := reconciliation.ParseGameID(gameID)
	if err != nil {
		return nil, errors.WithSecondaryError(errors.Wrapf(ErrInvalidInput, "game id %q", gameID), err)
	}

	games, err := s.Games(ctx, key.Season, key.Week)
	if err != nil {
		return nil, err
	}
	for i := range games {
		if games[i].GameID == gameID {
			return &games[i], nil
		}
	}
	return nil, errors.Wrapf(ErrGameNotFound, "%s", gameID)
}

// schedule prefers the JSON API and falls back to the HTML schedule.
func (s *GameService) schedule(ctx context.Context, season, week int) ([]store.GameRaw, string, error) {
	games, err := withRetry(ctx, s.retry, func(ctx context.Context) ([]store.GameRaw, error) {
		return s.json.Scoreboard(ctx, season, week)
	})
	if err == nil {
		return games, store.SourceESPN, nil
	}
	s.logger.Warn("json schedule failed, falling back to html",
		zap.Int("season", season), zap.Int("week", week), zap.Error(err))

	games, htmlErr := withRetry(ctx, s.retry, func(ctx context.Context) ([]store.GameRaw, error) {
		return s.html.Schedule(ctx, season, week)
	})
	if htmlErr != nil {
		return nil, "", errors.WithSecondaryError(
			errors.Wrapf(ErrSourcesUnavailable, "schedule %d week %d", season, week),
			errors.CombineErrors(err, htmlErr))
	}
	return games, store.SourcePFR, nil
}

type teamResult struct {
	code  string
	stats *store.TeamStatRecord
}

// teamStats fetches every team's page concurrently. A failed team maps to
// nil without affecting the others.
func (s *GameService) teamStats(ctx context.Context, codes []string, season, week int) map[string]*store.TeamStatRecord {
	p := pool.NewWithResults[teamResult]().WithMaxGoroutines(s.fanout)
	for _, code := range codes {
		code := code
		p.Go(func() teamResult {
			page, err := withRetry(ctx, s.retry, func(ctx context.Context) (*store.TeamStatRecord, error) {
				tp, err := s.html.TeamPage(ctx, code, season, week)
				if err != nil {
					return nil, err
				}
				return tp.Stats, nil
			})
			if err != nil {
				s.logger.Warn("team stats unavailable",
					zap.String("team", code), zap.Int("season", season), zap.Error(err))
				return teamResult{code: code}
			}
			return teamResult{code: code, stats: page}
		})
	}

	out := make(map[string]*store.TeamStatRecord, len(codes))
	for _, r := range p.Wait() {
		out[r.code] = r.stats
	}
	return out
}

func (s *GameService) assembleAll(ctx context.Context, raws []store.GameRaw, season, week int) []store.GameRecord {
	seen := make(map[string]bool)
	var codes []string
	for _, g := range raws {
		for _, code := range []string{g.Home.Code, g.Away.Code} {
			if _, known := reconciliation.ByCode(code); !known || seen[code] {
				continue
			}
			seen[code] = true
			codes = append(codes, code)
		}
	}
	sort.Strings(codes)

	stats := s.teamStats(ctx, codes, season, week)
	games := make([]store.GameRecord, 0, len(raws))
	for _, g := range raws {
		games = append(games, assemble.Assemble(g, stats[g.Home.Code], stats[g.Away.Code]))
	}
	return games
}

func (s *GameService) save(ctx context.Context, season, week int, source string, games []store.GameRecord) {
	key := SlateKey(season, week)
	if err := cache.Set(ctx, s.cache, key, games); err != nil {
		s.logger.Warn("cache write failed", zap.String("key", key), zap.Error(err))
		return
	}
	if s.notifier == nil {
		return
	}
	event := store.SlateEvent{
		Season:    season,
		Week:      week,
		Games:     len(games),
		Source:    source,
		UpdatedAt: s.now().UnixMilli(),
	}
	if err := s.notifier.SlateUpdated(ctx, event); err != nil {
		s.logger.Warn("slate notification failed", zap.Int("season", season), zap.Int("week", week), zap.Error(err))
	}
}

// EngineMetrics reports reconciliation counters.
func (s *GameService) EngineMetrics() reconciliation.Metrics {
	return s.engine.GetMetrics()
}
