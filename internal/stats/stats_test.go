package stats

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/fortuna/gridiron/internal/store"
)

type cellMap map[string]string

func (c cellMap) Text(name string) string { return c[name] }

func TestParseStat_DefaultsToZero(t *testing.T) {
	cells := cellMap{
		"points":      "452",
		"total_yards": "6,112",
		"pct":         "41.2%",
		"empty":       "",
		"dash":        "-",
		"text":        "N/A",
	}

	tests := []struct {
		name string
		want float64
	}{
		{"points", 452},
		{"total_yards", 6112},
		{"pct", 41.2},
		{"empty", 0},
		{"dash", 0},
		{"text", 0},
		{"missing", 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ParseStat(cells, tt.name))
		})
	}

	assert.Equal(t, float64(0), ParseStat(nil, "points"))
}

func TestSafeDiv(t *testing.T) {
	assert.Equal(t, 0.0, SafeDiv(10, 0))
	assert.Equal(t, 0.0, SafeDiv(0, 0))
	assert.Equal(t, 2.5, SafeDiv(5, 2))
	assert.Equal(t, 0.0, SafeDiv(math.Inf(1), 1))
	assert.Equal(t, 0.0, Percent(3, 0))
	assert.Equal(t, 66.7, Percent(2, 3))
}

func TestParseStatus(t *testing.T) {
	tests := []struct {
		in   string
		want store.GameStatus
	}{
		{"Final/Overtime", store.StatusFinal},
		{"Postponed", store.StatusPostponed},
		{"STATUS_POSTPONED", store.StatusPostponed},
		{"Delayed", store.StatusPostponed},
		{"pre", store.StatusScheduled},
		{"STATUS_SCHEDULED", store.StatusScheduled},
		{"in", store.StatusInProgress},
		{"STATUS_IN_PROGRESS", store.StatusInProgress},
		{"Live", store.StatusInProgress},
		{"STATUS_HALFTIME", store.StatusInProgress},
		{"post", store.StatusFinal},
		{"STATUS_FINAL", store.StatusFinal},
		{"final", store.StatusFinal},
		{"", store.StatusScheduled},
		{"something else", store.StatusScheduled},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, ParseStatus(tt.in))
		})
	}
}

func TestAggregateRankings(t *testing.T) {
	tests := []struct {
		name  string
		ranks []int
		want  int
	}{
		{"empty", nil, 0},
		{"all zeros", []int{0, 0, 0}, 0},
		{"zeros excluded", []int{0, 4, 0, 6}, 5},
		{"single", []int{17}, 17},
		{"rounds half up", []int{1, 2}, 2},
		{"rounds down", []int{1, 1, 2}, 1},
		{"mixed", []int{3, 10, 0, 20, 0}, 11},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, AggregateRankings(tt.ranks))
		})
	}
}

func TestOverallTeamRank_ZeroPropagation(t *testing.T) {
	assert.Equal(t, 0, OverallTeamRank(0, 0))
	assert.Equal(t, 9, OverallTeamRank(9, 0))
	assert.Equal(t, 8, OverallTeamRank(5, 10))
}

func TestNormalizeRank(t *testing.T) {
	assert.Equal(t, 0, NormalizeRank(-3))
	assert.Equal(t, 0, NormalizeRank(0))
	assert.Equal(t, 1, NormalizeRank(1))
	assert.Equal(t, 32, NormalizeRank(32))
	assert.Equal(t, 0, NormalizeRank(33))
}

func TestApplyComposites(t *testing.T) {
	rec := &store.TeamStatRecord{
		OffenseRankings: map[string]store.RankedStat{
			store.StatTotalYards: {Rank: 2},
			store.StatPoints:     {Rank: 4},
			store.StatSacks:      {Rank: 0},
		},
		DefenseRankings: map[string]store.RankedStat{
			store.StatTotalYards: {Rank: 0},
		},
	}

	ApplyComposites(rec)

	assert.Equal(t, 3, rec.OverallOffenseRank)
	assert.Equal(t, 0, rec.OverallDefenseRank)
	assert.Equal(t, 3, rec.OverallTeamRank)
}
