package assemble

import (
	"github.com/fortuna/gridiron/internal/stats"
	"github.com/fortuna/gridiron/internal/store"
)

// Passer rating bounds.
const (
	MaxComponent = 2.375
	MaxRating    = 158.3
)

// PasserRating is the NFL passer rating. Each of the four components is
// clamped to [0, MaxComponent] and the result to [0, MaxRating]. Zero
// attempts rate 0.
func PasserRating(completions, attempts, yards, touchdowns, interceptions float64) float64 {
	if attempts <= 0 {
		return 0
	}

	a := clamp((stats.SafeDiv(completions, attempts)-0.3)*5, 0, MaxComponent)
	b := clamp((stats.SafeDiv(yards, attempts)-3)*0.25, 0, MaxComponent)
	c := clamp(stats.SafeDiv(touchdowns, attempts)*20, 0, MaxComponent)
	d := clamp(MaxComponent-stats.SafeDiv(interceptions, attempts)*25, 0, MaxComponent)

	rating := (a + b + c + d) / 6 * 100
	return clamp(stats.Round1(rating), 0, MaxRating)
}

// Passing builds a team passing summary from season totals.
func Passing(completions, attempts, yards, touchdowns, interceptions int) store.PassingSummary {
	cmp, att := float64(completions), float64(attempts)
	return store.PassingSummary{
		Completions:     completions,
		Attempts:        attempts,
		Yards:           yards,
		Touchdowns:      touchdowns,
		Interceptions:   interceptions,
		CompletionPct:   stats.Percent(cmp, att),
		YardsPerAttempt: stats.Round1(stats.SafeDiv(float64(yards), att)),
		PasserRating:    PasserRating(cmp, att, float64(yards), float64(touchdowns), float64(interceptions)),
	}
}

func clamp(v, lo, hi float64) float64 {
	switch {
	case v < lo:
		return lo
	case v > hi:
		return hi
	default:
		return v
	}
}
