// Package scheduler keeps the current week's slate warm in the cache.
package scheduler

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/fortuna/gridiron/internal/logging"
	"github.com/fortuna/gridiron/internal/reconciliation"
	"github.com/fortuna/gridiron/internal/store"
)

// Refresher rebuilds and caches one week's slate.
type Refresher interface {
	Refresh(ctx context.Context, season, week int) ([]store.GameRecord, error)
}

// Purger drops cache entries last written before cutoff.
type Purger interface {
	Purge(ctx context.Context, cutoff time.Time) (int64, error)
}

// Config holds warmer configuration
type Config struct {
	Interval time.Duration // Default: 5m
	// Retention is how long cache entries survive a purge. Only used when a
	// Purger is set.
	Retention time.Duration // Default: 14 days
	// MaxConsecutiveErrors before the interval is doubled until a success.
	MaxConsecutiveErrors int // Default: 5
}

// DefaultConfig returns default warmer configuration
func DefaultConfig() Config {
	return Config{
		Interval:             5 * time.Minute,
		Retention:            14 * 24 * time.Hour,
		MaxConsecutiveErrors: 5,
	}
}

// Warmer refreshes the slate of the week in progress on a fixed interval.
type Warmer struct {
	refresher Refresher
	purger    Purger
	config    Config
	logger    *zap.Logger
	now       func() time.Time

	consecutiveErrors int
}

// NewWarmer creates a warmer. purger may be nil.
func NewWarmer(refresher Refresher, purger Purger, config Config, logger *zap.Logger) *Warmer {
	def := DefaultConfig()
	if config.Interval <= 0 {
		config.Interval = def.Interval
	}
	if config.Retention <= 0 {
		config.Retention = def.Retention
	}
	if config.MaxConsecutiveErrors <= 0 {
		config.MaxConsecutiveErrors = def.MaxConsecutiveErrors
	}
	return &Warmer{
		refresher: refresher,
		purger:    purger,
		config:    config,
		logger:    logging.OrNop(logger),
		now:       time.Now,
	}
}

// Run warms immediately and then on every tick until ctx is done.
func (w *Warmer) Run(ctx context.Context) {
	w.logger.Info("cache warmer started", zap.Duration("interval", w.config.Interval))

	w.Tick(ctx)
	timer := time.NewTimer(w.nextInterval())
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			w.logger.Info("cache warmer stopped")
			return
		case <-timer.C:
			w.Tick(ctx)
			timer.Reset(w.nextInterval())
		}
	}
}

// Tick runs one warm cycle.
func (w *Warmer) Tick(ctx context.Context) {
	season, week := CurrentWeek(w.now())
	start := w.now()

	games, err := w.refresher.Refresh(ctx, season, week)
	if err != nil {
		w.consecutiveErrors++
		w.logger.Warn("warm failed",
			zap.Int("season", season),
			zap.Int("week", week),
			zap.Int("consecutive_errors", w.consecutiveErrors),
			zap.Error(err))
	} else {
		w.consecutiveErrors = 0
		w.logger.Info("slate warmed",
			zap.Int("season", season),
			zap.Int("week", week),
			zap.Int("games", len(games)),
			zap.Duration("duration", w.now().Sub(start)))
	}

	if w.purger == nil {
		return
	}
	cutoff := w.now().Add(-w.config.Retention)
	n, err := w.purger.Purge(ctx, cutoff)
	if err != nil {
		w.logger.Warn("cache purge failed", zap.Error(err))
		return
	}
	if n > 0 {
		w.logger.Info("purged cache entries", zap.Int64("count", n), zap.Time("cutoff", cutoff))
	}
}

func (w *Warmer) nextInterval() time.Duration {
	if w.consecutiveErrors >= w.config.MaxConsecutiveErrors {
		return 2 * w.config.Interval
	}
	return w.config.Interval
}

// CurrentWeek maps an instant to the regular-season week in progress. The
// season opens the Thursday after Labor Day and weeks turn over on Tuesday.
// Dates before the opener map to week 1 and dates after the last week map to
// the last week. January and February belong to the previous season.
func CurrentWeek(now time.Time) (season, week int) {
	season = now.Year()
	if now.Month() < time.March {
		season--
	}

	opener := laborDay(season).AddDate(0, 0, 3)
	firstTuesday := opener.AddDate(0, 0, -2)

	days := int(now.Sub(firstTuesday).Hours() / 24)
	if days < 0 {
		return season, reconciliation.MinWeek
	}
	week = days/7 + 1
	if week > reconciliation.MaxWeek {
		week = reconciliation.MaxWeek
	}
	return season, week
}

// laborDay is the first Monday of September.
func laborDay(year int) time.Time {
	d := time.Date(year, time.September, 1, 0, 0, 0, 0, time.UTC)
	for d.Weekday() != time.Monday {
		d = d.AddDate(0, 0, 1)
	}
	return d
}
