// Package backfill replays past weeks through reconciliation.
package backfill

import (
	"context"

	"github.com/cockroachdb/errors"
	"github.com/go-playground/validator/v10"

	"github.com/fortuna/gridiron/internal/store"
)

// ErrWeeksFailed is returned when at least one week could not be reconciled.
var ErrWeeksFailed = errors.New("backfill: weeks failed")

// WeekReconciler rebuilds one week from both sources and caches it.
type WeekReconciler interface {
	ReconcileWeek(ctx context.Context, season, week int) ([]store.GameRecord, error)
}

type specRules struct {
	Type     JobType `validate:"oneof=week season"`
	Season   int     `validate:"gte=1920,lte=2100"`
	FromWeek int     `validate:"gte=1,lte=18"`
	ToWeek   int     `validate:"gte=0,lte=18"`
}

// Runner executes backfill specs.
type Runner struct {
	games    WeekReconciler
	validate *validator.Validate
}

// NewRunner constructs a runner.
func NewRunner(games WeekReconciler) *Runner {
	return &Runner{games: games, validate: validator.New()}
}

// Validate rejects specs with an unknown type or an empty week range.
func (r *Runner) Validate(spec JobSpec) error {
	rules := specRules{Type: spec.Type, Season: spec.Season, FromWeek: spec.FromWeek, ToWeek: spec.ToWeek}
	if spec.Type == JobTypeWeek {
		rules.ToWeek = 0
	}
	if err := r.validate.Struct(rules); err != nil {
		return errors.Wrapf(err, "invalid %s job", spec.Type)
	}
	if spec.Type == JobTypeSeason && spec.ToWeek < spec.FromWeek {
		return errors.Newf("invalid season job: week %d is before week %d", spec.ToWeek, spec.FromWeek)
	}
	return nil
}

// Run executes the job spec, reporting progress via the Reporter if
// provided. A failed week does not stop the run; the summary lists it and
// ErrWeeksFailed is returned at the end.
func (r *Runner) Run(ctx context.Context, spec JobSpec, reporter Reporter) (Summary, error) {
	if err := r.Validate(spec); err != nil {
		return Summary{}, err
	}
	if reporter == nil {
		reporter = nopReporter{}
	}
	reporter.OnJobStart(spec)

	weeks := spec.Weeks()
	summary := Summary{}
	if spec.DryRun {
		reporter.OnJobComplete(summary)
		return summary, nil
	}

	for i, week := range weeks {
		if err := ctx.Err(); err != nil {
			return summary, err
		}
		reporter.OnWeekStart(spec.Season, week, i, len(weeks))

		games, err := r.games.ReconcileWeek(ctx, spec.Season, week)
		if err != nil {
			summary.FailedWeeks = append(summary.FailedWeeks, week)
			reporter.OnWeekError(spec.Season, week, err)
			continue
		}
		summary.Weeks++
		summary.Games += len(games)
		reporter.OnWeekDone(spec.Season, week, games)
	}

	reporter.OnJobComplete(summary)
	if len(summary.FailedWeeks) > 0 {
		return summary, errors.Wrapf(ErrWeeksFailed, "%d of %d", len(summary.FailedWeeks), len(weeks))
	}
	return summary, nil
}

type nopReporter struct{}

func (nopReporter) OnJobStart(JobSpec) {}
func (nopReporter) OnWeekStart(int, int, int, int) {}
func (nopReporter) OnWeekDone(int, int, []store.GameRecord) {}
func (nopReporter) OnWeekError(int, int, error) {}
func (nopReporter) OnJobComplete(Summary) {}
