package scheduler

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fortuna/gridiron/internal/store"
)

func TestCurrentWeek(t *testing.T) {
	tests := []struct {
		name       string
		now        time.Time
		wantSeason int
		wantWeek   int
	}{
		{"preseason", time.Date(2025, 8, 20, 12, 0, 0, 0, time.UTC), 2025, 1},
		{"opening tuesday", time.Date(2025, 9, 2, 0, 0, 0, 0, time.UTC), 2025, 1},
		{"second week", time.Date(2025, 9, 9, 0, 0, 0, 0, time.UTC), 2025, 2},
		{"monday night stays in week", time.Date(2025, 10, 6, 23, 0, 0, 0, time.UTC), 2025, 5},
		{"tuesday turns over", time.Date(2025, 10, 7, 1, 0, 0, 0, time.UTC), 2025, 6},
		{"january belongs to last season", time.Date(2026, 1, 10, 0, 0, 0, 0, time.UTC), 2025, 18},
		{"labor day on the 7th", time.Date(2026, 9, 14, 0, 0, 0, 0, time.UTC), 2026, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			season, week := CurrentWeek(tt.now)
			assert.Equal(t, tt.wantSeason, season)
			assert.Equal(t, tt.wantWeek, week)
		})
	}
}

type fakeRefresher struct {
	mu    sync.Mutex
	err   error
	calls [][2]int
}

func (f *fakeRefresher) Refresh(_ context.Context, season, week int) ([]store.GameRecord, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, [2]int{season, week})
	if f.err != nil {
		return nil, f.err
	}
	return []store.GameRecord{{GameID: "kan-lac-2025-5"}}, nil
}

type fakePurger struct {
	cutoff time.Time
	err    error
}

func (f *fakePurger) Purge(_ context.Context, cutoff time.Time) (int64, error) {
	f.cutoff = cutoff
	return 3, f.err
}

func TestWarmer_Tick(t *testing.T) {
	now := time.Date(2025, 10, 3, 12, 0, 0, 0, time.UTC)
	refresher := &fakeRefresher{}
	purger := &fakePurger{}

	w := NewWarmer(refresher, purger, Config{Retention: 24 * time.Hour}, nil)
	w.now = func() time.Time { return now }
	w.Tick(context.Background())

	require.Len(t, refresher.calls, 1)
	assert.Equal(t, [2]int{2025, 5}, refresher.calls[0])
	assert.Equal(t, now.Add(-24*time.Hour), purger.cutoff)
	assert.Equal(t, 0, w.consecutiveErrors)
}

func TestWarmer_BacksOffAfterRepeatedFailures(t *testing.T) {
	refresher := &fakeRefresher{err: errors.New("sources unavailable")}
	w := NewWarmer(refresher, nil, Config{Interval: time.Minute, MaxConsecutiveErrors: 2}, nil)

	w.Tick(context.Background())
	assert.Equal(t, time.Minute, w.nextInterval())

	w.Tick(context.Background())
	assert.Equal(t, 2*time.Minute, w.nextInterval())

	refresher.err = nil
	w.Tick(context.Background())
	assert.Equal(t, time.Minute, w.nextInterval())
}

func TestWarmer_RunStopsOnCancel(t *testing.T) {
	refresher := &fakeRefresher{}
	w := NewWarmer(refresher, nil, Config{Interval: time.Hour}, nil)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		w.Run(ctx)
		close(done)
	}()

	require.Eventually(t, func() bool {
		refresher.mu.Lock()
		defer refresher.mu.Unlock()
		return len(refresher.calls) == 1
	}, time.Second, 5*time.Millisecond)

	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("warmer did not stop")
	}
}
