// Command backfill reconciles past weeks from both sources and rewrites
// their cached slates.
//
// Usage:
//
//	gridiron-backfill week --season 2025 --week 5
//	gridiron-backfill season --season 2024 --from 1 --to 18
package main

import (
	"context"
	"os"
	"os/signal"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/fortuna/gridiron/internal/app"
	"github.com/fortuna/gridiron/internal/backfill"
	"github.com/fortuna/gridiron/internal/config"
	"github.com/fortuna/gridiron/internal/logging"
	"github.com/fortuna/gridiron/internal/reconciliation"
	"github.com/fortuna/gridiron/internal/scheduler"
)

func main() {
	root := &cobra.Command{
		Use:          "gridiron-backfill",
		Short:        "Reconcile and cache past NFL weeks",
		SilenceUsage: true,
	}

	var dryRun bool
	root.PersistentFlags().BoolVar(&dryRun, "dry-run", false, "Validate and log the plan without fetching")

	root.AddCommand(weekCmd(&dryRun))
	root.AddCommand(seasonCmd(&dryRun))

	if err := root.Execute(); err != nil {
		os.Exit(1)
	}
}

func weekCmd(dryRun *bool) *cobra.Command {
	season, week := scheduler.CurrentWeek(time.Now())
	cmd := &cobra.Command{
		Use:   "week",
		Short: "Reconcile a single week",
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(backfill.JobSpec{
				Type:     backfill.JobTypeWeek,
				Season:   season,
				FromWeek: week,
				DryRun:   *dryRun,
			})
		},
	}
	cmd.Flags().IntVar(&season, "season", season, "Season year")
	cmd.Flags().IntVar(&week, "week", week, "Week number")
	return cmd
}

func seasonCmd(dryRun *bool) *cobra.Command {
	season, _ := scheduler.CurrentWeek(time.Now())
	var from, to int
	cmd := &cobra.Command{
		Use:   "season",
		Short: "Reconcile a range of weeks",
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(backfill.JobSpec{
				Type:     backfill.JobTypeSeason,
				Season:   season,
				FromWeek: from,
				ToWeek:   to,
				DryRun:   *dryRun,
			})
		},
	}
	cmd.Flags().IntVar(&season, "season", season, "Season year")
	cmd.Flags().IntVar(&from, "from", reconciliation.MinWeek, "First week")
	cmd.Flags().IntVar(&to, "to", reconciliation.MaxWeek, "Last week")
	return cmd
}

// run handles config loading, wiring and context cancellation.
func run(spec backfill.JobSpec) error {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()

	cfg, err := config.Load()
	if err != nil {
		return errors.Wrap(err, "load config")
	}
	logger := logging.New(cfg.LogLevel, cfg.LogFormat).With(zap.String("service", "gridiron-backfill"))
	defer func() { _ = logger.Sync() }()

	a, err := app.New(ctx, cfg, logger)
	if err != nil {
		return errors.Wrap(err, "initialise")
	}
	defer a.Close()

	start := time.Now()
	_, err = backfill.NewRunner(a.Games).Run(ctx, spec, &logReporter{logger: logger})
	logger.Info("backfill finished",
		zap.Duration("duration", time.Since(start).Round(time.Second)),
		zap.Any("telemetry", a.Telemetry()))
	return err
}
