package main

import (
	"go.uber.org/zap"

	"github.com/fortuna/gridiron/internal/backfill"
	"github.com/fortuna/gridiron/internal/store"
)

type logReporter struct {
	logger *zap.Logger
}

func (r *logReporter) OnJobStart(spec backfill.JobSpec) {
	r.logger.Info("backfill starting",
		zap.String("type", string(spec.Type)),
		zap.Int("season", spec.Season),
		zap.Ints("weeks", spec.Weeks()),
		zap.Bool("dry_run", spec.DryRun))
}

func (r *logReporter) OnWeekStart(season, week, index, total int) {
	r.logger.Info("reconciling week",
		zap.Int("season", season),
		zap.Int("week", week),
		zap.Int("index", index+1),
		zap.Int("total", total))
}

func (r *logReporter) OnWeekDone(season, week int, games []store.GameRecord) {
	r.logger.Info("week reconciled", zap.Int("season", season), zap.Int("week", week), zap.Int("games", len(games)))
}

func (r *logReporter) OnWeekError(season, week int, err error) {
	r.logger.Error("week failed", zap.Int("season", season), zap.Int("week", week), zap.Error(err))
}

func (r *logReporter) OnJobComplete(summary backfill.Summary) {
	r.logger.Info("backfill complete",
		zap.Int("weeks", summary.Weeks),
		zap.Int("games", summary.Games),
		zap.Ints("failed_weeks", summary.FailedWeeks))
}
