package service

import (
	"context"
	"strings"

	"github.com/cockroachdb/errors"

	"github.com/fortuna/gridiron/internal/cache"
	"github.com/fortuna/gridiron/internal/reconciliation"
	"github.com/fortuna/gridiron/internal/store"
)

// TeamService serves per-team and league-wide statistics.
type TeamService struct {
	deps
}

// NewTeamService wires the sources and cache.
func NewTeamService(jsonSrc JSONSource, htmlSrc HTMLSource, c *cache.Cache, opts Options) *TeamService {
	return &TeamService{deps: newDeps(jsonSrc, htmlSrc, c, opts)}
}

// Teams lists the league's clubs.
func (s *TeamService) Teams() []reconciliation.Team {
	return append([]reconciliation.Team(nil), reconciliation.Teams...)
}

// TeamStats returns one team's record through week (0 = the whole season).
// team is any code, name or abbreviation the reconciler knows.
func (s *TeamService) TeamStats(ctx context.Context, team string, season, week int) (*store.TeamStatRecord, error) {
	if err := s.check(seasonQuery{Season: season}); err != nil {
		return nil, err
	}
	if week == 0 {
		week = reconciliation.MaxWeek
	}
	if err := reconciliation.ValidateWeek(week); err != nil {
		return nil, errors.WithSecondaryError(errors.Wrapf(ErrInvalidInput, "week %d", week), err)
	}
	t, ok := reconciliation.Lookup(team)
	if !ok {
		return nil, errors.Wrapf(ErrInvalidInput, "unknown team %q", team)
	}

	key := cache.Key("team-stats", t.Code, itoa(season), itoa(week))
	return cached(ctx, s.deps, key, func(ctx context.Context) (*store.TeamStatRecord, error) {
		page, err := s.html.TeamPage(ctx, t.Code, season, week)
		if err != nil {
			return nil, err
		}
		return page.Stats, nil
	})
}

// Roster returns a team's roster. teamID is an ESPN team id or any name the
// reconciler knows.
func (s *TeamService) Roster(ctx context.Context, teamID string) (store.Roster, error) {
	if t, ok := reconciliation.Lookup(teamID); ok {
		teamID = t.ESPNAbbr
	}
	teamID = strings.ToLower(teamID)
	if err := s.check(teamQuery{Team: teamID}); err != nil {
		return store.Roster{}, err
	}

	return cached(ctx, s.deps, cache.Key("roster", teamID), func(ctx context.Context) (store.Roster, error) {
		return s.json.Roster(ctx, teamID)
	})
}

// TeamStatistics returns every team's season stat line.
func (s *TeamService) TeamStatistics(ctx context.Context, season int) ([]store.EntityStats, error) {
	if err := s.check(seasonQuery{Season: season}); err != nil {
		return nil, err
	}
	return cached(ctx, s.deps, cache.Key("stats", "teams", itoa(season)), func(ctx context.Context) ([]store.EntityStats, error) {
		return s.json.TeamStatistics(ctx, season)
	})
}

// PlayerStatistics returns every player's season stat line.
func (s *TeamService) PlayerStatistics(ctx context.Context, season int) ([]store.EntityStats, error) {
	if err := s.check(seasonQuery{Season: season}); err != nil {
		return nil, err
	}
	return cached(ctx, s.deps, cache.Key("stats", "players", itoa(season)), func(ctx context.Context) ([]store.EntityStats, error) {
		return s.json.PlayerStatistics(ctx, season)
	})
}
