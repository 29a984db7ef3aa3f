package reconciliation

import (
	"sync"
	"time"

	"github.com/cockroachdb/errors"
	"go.uber.org/zap"

	"github.com/fortuna/gridiron/internal/logging"
	"github.com/fortuna/gridiron/internal/store"
)

// Engine merges a schedule row seen by both ESPN and pro-football-reference.
type Engine struct {
	strategy Strategy
	logger   *zap.Logger

	mu      sync.Mutex
	metrics Metrics
}

// Strategy defines how to merge conflicting data.
type Strategy string

const (
	// PreferAuthoritative always keeps the ESPN row.
	PreferAuthoritative Strategy = "prefer_authoritative"
	// SmartMerge keeps ESPN structure and fills gaps from pro-football-reference (default).
	SmartMerge Strategy = "smart_merge"
)

// scoreConflictThreshold is the per-side score difference treated as a conflict.
const scoreConflictThreshold = 20

// Metrics tracks reconciliation statistics.
type Metrics struct {
	TotalReconciliations int       `json:"totalReconciliations"`
	Conflicts            int       `json:"conflicts"`
	ESPNPreferred        int       `json:"espnPreferred"`
	PFRFilled            int       `json:"pfrFilled"`
	LastReconciliation   time.Time `json:"lastReconciliation"`
}

// NewEngine creates a new reconciliation engine.
func NewEngine(strategy Strategy, logger *zap.Logger) *Engine {
	if strategy == "" {
		strategy = SmartMerge
	}
	return &Engine{
		strategy: strategy,
		logger:   logging.OrNop(logger),
	}
}

// ReconcileGame merges one game from both sources. Either side may be nil;
// ESPN is the authoritative fallback when both are present.
func (e *Engine) ReconcileGame(espnGame, pfrGame *store.GameRaw) (store.GameRaw, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.metrics.TotalReconciliations++
	e.metrics.LastReconciliation = time.Now()

	switch {
	case espnGame == nil && pfrGame == nil:
		return store.GameRaw{}, errors.New("both sources are nil")
	case pfrGame == nil:
		e.metrics.ESPNPreferred++
		return *espnGame, nil
	case espnGame == nil:
		e.metrics.PFRFilled++
		return *pfrGame, nil
	}

	if e.strategy == PreferAuthoritative {
		e.metrics.ESPNPreferred++
		return *espnGame, nil
	}

	if hasConflict(espnGame, pfrGame) {
		e.metrics.Conflicts++
		e.metrics.ESPNPreferred++
		e.logger.Warn("conflict between sources, keeping espn",
			zap.String("game_id", espnGame.GameID),
			zap.String("espn_status", string(espnGame.Status)),
			zap.String("pfr_status", string(pfrGame.Status)),
		)
		return *espnGame, nil
	}

	merged, filled := fillGaps(*espnGame, pfrGame)
	if filled {
		e.metrics.PFRFilled++
	} else {
		e.metrics.ESPNPreferred++
	}
	return merged, nil
}

// fillGaps copies into base whatever base lacks and other has. Structure
// (ids, teams, venue, leaders) always stays with base.
func fillGaps(base store.GameRaw, other *store.GameRaw) (store.GameRaw, bool) {
	filled := false

	if base.DateTime == "" && other.DateTime != "" {
		base.DateTime = other.DateTime
		filled = true
	}
	// A final score on the other side beats a stale scheduled row.
	if base.Status == store.StatusScheduled && other.Status == store.StatusFinal {
		base.Status = store.StatusFinal
		filled = true
	}
	if base.Home.Score == nil && other.Home.Score != nil {
		base.Home.Score = other.Home.Score
		filled = true
	}
	if base.Away.Score == nil && other.Away.Score != nil {
		base.Away.Score = other.Away.Score
		filled = true
	}
	for _, pair := range [][2]*string{
		{&base.Home.Record, &other.Home.Record},
		{&base.Away.Record, &other.Away.Record},
	} {
		if *pair[0] == "" && *pair[1] != "" {
			*pair[0] = *pair[1]
			filled = true
		}
	}
	return base, filled
}

// hasConflict detects obvious data inconsistencies.
func hasConflict(a, b *store.GameRaw) bool {
	if a.Home.Score != nil && b.Home.Score != nil && abs(*a.Home.Score-*b.Home.Score) > scoreConflictThreshold {
		return true
	}
	if a.Away.Score != nil && b.Away.Score != nil && abs(*a.Away.Score-*b.Away.Score) > scoreConflictThreshold {
		return true
	}
	// One says final while the other says it is still being played.
	if (a.Status == store.StatusFinal && b.Status == store.StatusInProgress) ||
		(a.Status == store.StatusInProgress && b.Status == store.StatusFinal) {
		return true
	}
	return false
}

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}

// GetMetrics returns a snapshot of the reconciliation metrics.
func (e *Engine) GetMetrics() Metrics {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.metrics
}
