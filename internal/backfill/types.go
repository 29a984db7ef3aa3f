package backfill

import (
	"github.com/fortuna/gridiron/internal/store"
)

// JobType enumerates the supported backfill job variants.
type JobType string

const (
	JobTypeWeek   JobType = "week"
	JobTypeSeason JobType = "season"
)

// JobSpec describes the work to be performed by the runner.
type JobSpec struct {
	Type     JobType
	Season   int
	FromWeek int
	ToWeek   int
	DryRun   bool
}

// Weeks lists the weeks the spec covers.
func (s JobSpec) Weeks() []int {
	from, to := s.FromWeek, s.ToWeek
	if s.Type == JobTypeWeek {
		to = from
	}
	weeks := make([]int, 0, to-from+1)
	for w := from; w <= to; w++ {
		weeks = append(weeks, w)
	}
	return weeks
}

// Summary is the outcome of a run.
type Summary struct {
	Weeks       int
	Games       int
	FailedWeeks []int
}

// Reporter receives lifecycle callbacks from the runner.
type Reporter interface {
	OnJobStart(spec JobSpec)
	OnWeekStart(season, week, index, total int)
	OnWeekDone(season, week int, games []store.GameRecord)
	OnWeekError(season, week int, err error)
	OnJobComplete(summary Summary)
}
