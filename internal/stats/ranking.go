package stats

import (
	"math"

	"github.com/fortuna/gridiron/internal/store"
)

// AggregateRankings averages the known ranks and rounds to the nearest
// integer. Zero ranks are unavailable and excluded; all-zero input yields 0.
func AggregateRankings(ranks []int) int {
	sum, n := 0, 0
	for _, r := range ranks {
		if r <= 0 {
			continue
		}
		sum += r
		n++
	}
	if n == 0 {
		return 0
	}
	return int(math.Round(float64(sum) / float64(n)))
}

// OverallTeamRank combines the offense and defense composites with the same
// zero-exclusion rule.
func OverallTeamRank(offense, defense int) int {
	return AggregateRankings([]int{offense, defense})
}

// NormalizeRank clamps anything outside [1, LeagueSize] to the 0 sentinel.
func NormalizeRank(rank int) int {
	if rank < 1 || rank > store.LeagueSize {
		return 0
	}
	return rank
}

// ApplyComposites fills the three overall ranks of rec from its per-stat maps.
func ApplyComposites(rec *store.TeamStatRecord) {
	if rec == nil {
		return
	}
	rec.OverallOffenseRank = AggregateRankings(ranksOf(rec.OffenseRankings))
	rec.OverallDefenseRank = AggregateRankings(ranksOf(rec.DefenseRankings))
	rec.OverallTeamRank = OverallTeamRank(rec.OverallOffenseRank, rec.OverallDefenseRank)
}

func ranksOf(m map[string]store.RankedStat) []int {
	out := make([]int, 0, len(store.RankedStatKeys))
	for _, key := range store.RankedStatKeys {
		if s, ok := m[key]; ok {
			out = append(out, s.Rank)
		}
	}
	return out
}
