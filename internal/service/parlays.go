package service

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/fortuna/gridiron/internal/logging"
	"github.com/fortuna/gridiron/internal/store"
)

// ErrBadSuggestion means the suggester replied with nothing usable.
var ErrBadSuggestion = errors.New("suggester returned no valid parlays")

// ParlaySuggester turns a normalized slate into parlay suggestions.
type ParlaySuggester interface {
	Suggest(ctx context.Context, slate []store.GameRecord) ([]store.Parlay, error)
}

// ParlayService hands slates to a suggester and checks what comes back.
type ParlayService struct {
	games     *GameService
	suggester ParlaySuggester
	validate  *validator.Validate
	logger    *zap.Logger
}

func NewParlayService(games *GameService, suggester ParlaySuggester, logger *zap.Logger) *ParlayService {
	return &ParlayService{
		games:     games,
		suggester: suggester,
		validate:  validator.New(),
		logger:    logging.OrNop(logger),
	}
}

// Suggest returns the suggester's valid parlays for the week. Parlays whose
// legs reference games or teams outside the slate are dropped.
func (s *ParlayService) Suggest(ctx context.Context, season, week int) ([]store.Parlay, error) {
	slate, err := s.games.Games(ctx, season, week)
	if err != nil {
		return nil, err
	}

	suggested, err := s.suggester.Suggest(ctx, slate)
	if err != nil {
		return nil, errors.Wrap(err, "suggest parlays")
	}

	byID := make(map[string]store.GameRecord, len(slate))
	for _, g := range slate {
		byID[g.GameID] = g
	}

	valid := make([]store.Parlay, 0, len(suggested))
	for _, p := range suggested {
		if err := s.check(p, byID); err != nil {
			s.logger.Warn("dropping parlay", zap.String("parlay_id", p.ID), zap.Error(err))
			continue
		}
		valid = append(valid, p)
	}
	if len(suggested) > 0 && len(valid) == 0 {
		return nil, ErrBadSuggestion
	}
	return valid, nil
}

func (s *ParlayService) check(p store.Parlay, slate map[string]store.GameRecord) error {
	if err := s.validate.Struct(p); err != nil {
		return err
	}
	seen := make(map[string]bool, len(p.Legs))
	for _, leg := range p.Legs {
		g, ok := slate[leg.GameID]
		if !ok {
			return errors.Newf("leg references unknown game %q", leg.GameID)
		}
		if seen[leg.GameID] {
			return errors.Newf("game %q used twice", leg.GameID)
		}
		seen[leg.GameID] = true

		pick := strings.ToLower(leg.Pick)
		switch leg.Market {
		case "total":
			if pick != "over" && pick != "under" {
				return errors.Newf("total pick %q", leg.Pick)
			}
		default:
			if pick != g.Home.TeamID && pick != g.Away.TeamID {
				return errors.Newf("pick %q is not in game %q", leg.Pick, leg.GameID)
			}
		}
	}
	return nil
}

// RankSuggester builds one moneyline parlay from the unplayed games with the
// widest overall-rank gap between the two teams.
type RankSuggester struct {
	MaxLegs int
}

type rankedPick struct {
	gameID   string
	favorite string
	favRank  int
	underdog string
	dogRank  int
}

func (r RankSuggester) Suggest(_ context.Context, slate []store.GameRecord) ([]store.Parlay, error) {
	maxLegs := r.MaxLegs
	if maxLegs < 2 {
		maxLegs = 3
	}

	var picks []rankedPick
	for _, g := range slate {
		if g.Status != store.StatusScheduled || g.Home.Stats == nil || g.Away.Stats == nil {
			continue
		}
		home, away := g.Home.Stats.OverallTeamRank, g.Away.Stats.OverallTeamRank
		if home == 0 || away == 0 || home == away {
			continue
		}
		p := rankedPick{gameID: g.GameID, favorite: g.Home.TeamID, favRank: home, underdog: g.Away.TeamID, dogRank: away}
		if away < home {
			p = rankedPick{gameID: g.GameID, favorite: g.Away.TeamID, favRank: away, underdog: g.Home.TeamID, dogRank: home}
		}
		picks = append(picks, p)
	}
	if len(picks) < 2 {
		return []store.Parlay{}, nil
	}

	sort.Slice(picks, func(i, j int) bool {
		gi, gj := picks[i].dogRank-picks[i].favRank, picks[j].dogRank-picks[j].favRank
		if gi != gj {
			return gi > gj
		}
		return picks[i].gameID < picks[j].gameID
	})
	if len(picks) > maxLegs {
		picks = picks[:maxLegs]
	}

	parlay := store.Parlay{ID: uuid.NewString()}
	reasons := make([]string, 0, len(picks))
	for _, p := range picks {
		parlay.Legs = append(parlay.Legs, store.ParlayLeg{GameID: p.gameID, Pick: p.favorite, Market: "moneyline"})
		reasons = append(reasons, fmt.Sprintf("%s (#%d) over %s (#%d)", p.favorite, p.favRank, p.underdog, p.dogRank))
	}
	parlay.Rationale = "overall rank gap: " + strings.Join(reasons, "; ")
	return []store.Parlay{parlay}, nil
}
