package stats

import "fmt"

// RecordTally counts results.
type RecordTally struct {
	Wins, Losses, Ties int
}

// Add counts one outcome: "W", "L" or "T" (case-insensitive). Anything else
// is ignored and reported false.
func (r *RecordTally) Add(outcome string) bool {
	switch outcome {
	case "W", "w":
		r.Wins++
	case "L", "l":
		r.Losses++
	case "T", "t":
		r.Ties++
	default:
		return false
	}
	return true
}

// Games is the number of counted results.
func (r RecordTally) Games() int {
	return r.Wins + r.Losses + r.Ties
}

// String renders "W-L", or "W-L-T" when there are ties.
func (r RecordTally) String() string {
	return FormatRecord(r.Wins, r.Losses, r.Ties)
}

// FormatRecord renders "W-L", or "W-L-T" when ties > 0.
func FormatRecord(wins, losses, ties int) string {
	if ties > 0 {
		return fmt.Sprintf("%d-%d-%d", wins, losses, ties)
	}
	return fmt.Sprintf("%d-%d", wins, losses)
}
