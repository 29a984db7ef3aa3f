package reconciliation

import (
	"go.uber.org/zap"

	"github.com/fortuna/gridiron/internal/logging"
	"github.com/fortuna/gridiron/internal/store"
)

// Matcher joins schedule rows from the two sources on their canonical id.
type Matcher struct {
	logger *zap.Logger
}

// NewMatcher creates a new game matcher.
func NewMatcher(logger *zap.Logger) *Matcher {
	return &Matcher{logger: logging.OrNop(logger)}
}

// FindMatching returns the row in candidates describing the same game as g.
// A row with home and away flipped still matches; it is returned re-oriented
// to g's home/away and the disagreement is logged. idx is the candidate's
// position, -1 when nothing matches.
func (m *Matcher) FindMatching(g store.GameRaw, candidates []store.GameRaw) (match *store.GameRaw, idx int) {
	flipped := ""
	if key, err := ParseGameID(g.GameID); err == nil {
		flipped = GameKey{Home: key.Away, Away: key.Home, Season: key.Season, Week: key.Week}.String()
	}

	for i := range candidates {
		c := candidates[i]
		if c.GameID == g.GameID {
			return &c, i
		}
		if flipped != "" && c.GameID == flipped {
			m.logger.Warn("home/away disagreement between sources",
				zap.String("game_id", g.GameID),
				zap.String("other_id", c.GameID),
			)
			c.GameID = g.GameID
			c.Home, c.Away = c.Away, c.Home
			return &c, i
		}
	}
	return nil, -1
}

// MatchAndReconcileAll matches every ESPN row against the pro-football-reference
// rows and merges each pair with engine. Rows only one source knows about are
// kept as they are. Order follows espnGames, then unmatched pfrGames.
func (m *Matcher) MatchAndReconcileAll(espnGames, pfrGames []store.GameRaw, engine *Engine) []store.GameRaw {
	out := make([]store.GameRaw, 0, len(espnGames)+len(pfrGames))
	matched := make(map[int]bool, len(pfrGames))

	for i := range espnGames {
		espnGame := &espnGames[i]
		pfrGame, idx := m.FindMatching(*espnGame, pfrGames)
		if idx >= 0 {
			matched[idx] = true
		}

		reconciled, err := engine.ReconcileGame(espnGame, pfrGame)
		if err != nil {
			m.logger.Warn("reconcile failed, keeping espn row",
				zap.String("game_id", espnGame.GameID),
				zap.Error(err),
			)
			out = append(out, *espnGame)
			continue
		}
		out = append(out, reconciled)
	}

	for i, g := range pfrGames {
		if !matched[i] {
			out = append(out, g)
		}
	}

	m.logger.Debug("reconciled schedule",
		zap.Int("espn", len(espnGames)),
		zap.Int("pfr", len(pfrGames)),
		zap.Int("merged", len(out)),
	)
	return out
}
