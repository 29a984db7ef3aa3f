package pfr

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fortuna/gridiron/internal/store"
)

func TestKickoffISO(t *testing.T) {
	tests := []struct {
		date, clock string
		want        string
		clockOK     bool
	}{
		{"2026-01-04", "1:00PM", "2026-01-04T13:00:00.000Z", true},
		{"2026-01-04", "12:00AM", "2026-01-04T00:00:00.000Z", true},
		{"2026-01-04", "12:30PM", "2026-01-04T12:30:00.000Z", true},
		{"2025-10-05", "4:25PM", "2025-10-05T16:25:00.000Z", true},
		{"2025-10-05", "4:25 pm", "2025-10-05T16:25:00.000Z", true},
		{"2025-10-06", "8:15PM ET", "2025-10-06T20:15:00.000Z", true},
		{"2026-01-04", "1:00", "2026-01-04T12:00:00.000Z", false},
		{"2026-01-04", "13:00PM", "2026-01-04T12:00:00.000Z", false},
		{"2026-01-04", "", "2026-01-04T12:00:00.000Z", false},
		{"2026-01-04", "TBD", "2026-01-04T12:00:00.000Z", false},
	}
	for _, tt := range tests {
		t.Run(tt.clock, func(t *testing.T) {
			got, ok, err := KickoffISO(tt.date, tt.clock)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, tt.clockOK, ok)
		})
	}

	_, _, err := KickoffISO("not-a-date", "1:00PM")
	assert.Error(t, err)
}

func TestParseGameDate(t *testing.T) {
	tests := []struct {
		name   string
		cell   Cell
		season int
		want   string
	}{
		{"csk preferred", Cell{Text: "September 8", CSK: "2025-09-08"}, 2025, "2025-09-08"},
		{"iso text", Cell{Text: "2025-10-05"}, 2025, "2025-10-05"},
		{"yearless autumn", Cell{Text: "September 8"}, 2025, "2025-09-08"},
		{"yearless january", Cell{Text: "January 4"}, 2025, "2026-01-04"},
		{"full text", Cell{Text: "October 5, 2025"}, 2025, "2025-10-05"},
		{"bad csk falls back to text", Cell{Text: "Oct 5", CSK: "202510050kan"}, 2025, "2025-10-05"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseGameDate(tt.cell, tt.season)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got.Format("2006-01-02"))
		})
	}

	_, err := ParseGameDate(Cell{Text: "Playoffs"}, 2025)
	assert.Error(t, err)
}

func TestInferStatus(t *testing.T) {
	kickoff := time.Date(2025, 10, 5, 16, 25, 0, 0, time.UTC)

	assert.Equal(t, store.StatusScheduled, InferStatus(kickoff, kickoff.Add(-time.Second)))
	assert.Equal(t, store.StatusInProgress, InferStatus(kickoff, kickoff))
	assert.Equal(t, store.StatusInProgress, InferStatus(kickoff, kickoff.Add(GameDuration-time.Second)))
	assert.Equal(t, store.StatusFinal, InferStatus(kickoff, kickoff.Add(GameDuration)))
}
