package cache

import (
	"context"
	"testing"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type slate struct {
	GameID string `json:"gameId"`
	Score  *int   `json:"score"`
}

func newTestCache(start time.Time) (*Cache, *MemoryStore, *time.Time) {
	store := NewMemoryStore()
	c := New(store, nil)
	clock := start
	c.now = func() time.Time { return clock }
	return c, store, &clock
}

func TestKey(t *testing.T) {
	assert.Equal(t, "gridiron:games:2025:5:v3", Key("games", "2025", "5"))
	assert.Equal(t, "gridiron:v3", Key())
}

func TestGet_TTLBoundary(t *testing.T) {
	ctx := context.Background()
	start := time.UnixMilli(1_700_000_000_000)
	ttl := 10 * time.Minute

	tests := []struct {
		name string
		age  time.Duration
		hit  bool
	}{
		{"fresh", 0, true},
		{"just inside", 599_999 * time.Millisecond, true},
		{"exactly ttl", ttl, true},
		{"just past", 600_001 * time.Millisecond, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, _, clock := newTestCache(start)
			require.NoError(t, Set(ctx, c, "k", []slate{{GameID: "kan-lac-2025-5"}}))

			*clock = start.Add(tt.age)
			got, ok, err := Get[[]slate](ctx, c, "k", ttl)
			require.NoError(t, err)
			assert.Equal(t, tt.hit, ok)
			if tt.hit {
				assert.Equal(t, "kan-lac-2025-5", got[0].GameID)
			} else {
				assert.Nil(t, got)
			}
		})
	}
}

func TestGetStale_IgnoresAge(t *testing.T) {
	ctx := context.Background()
	start := time.UnixMilli(1_700_000_000_000)
	c, _, clock := newTestCache(start)

	score := 27
	require.NoError(t, Set(ctx, c, "k", slate{GameID: "g", Score: &score}))
	*clock = start.Add(48 * time.Hour)

	_, ok, err := Get[slate](ctx, c, "k", time.Minute)
	require.NoError(t, err)
	assert.False(t, ok)

	got, at, ok, err := GetStale[slate](ctx, c, "k")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, 27, *got.Score)
	assert.Equal(t, start.UnixMilli(), at.UnixMilli())
}

func TestSet_LastWriteWins(t *testing.T) {
	ctx := context.Background()
	c, store, _ := newTestCache(time.Now())

	require.NoError(t, Set(ctx, c, "k", slate{GameID: "first"}))
	require.NoError(t, Set(ctx, c, "k", slate{GameID: "second"}))

	got, ok, err := Get[slate](ctx, c, "k", time.Minute)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "second", got.GameID)
	assert.Equal(t, 1, store.Len())
}

func TestGet_MissAndCorrupt(t *testing.T) {
	ctx := context.Background()
	c, store, _ := newTestCache(time.Now())

	_, ok, err := Get[slate](ctx, c, "absent", time.Minute)
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, store.Save(ctx, "bad", []byte("{not json"), time.Now()))
	_, ok, err = Get[slate](ctx, c, "bad", time.Minute)
	require.NoError(t, err)
	assert.False(t, ok)
}

type brokenStore struct{}

var errBroken = errors.New("connection refused")

func (brokenStore) Load(context.Context, string) ([]byte, bool, error) { return nil, false, errBroken }
func (brokenStore) Save(context.Context, string, []byte, time.Time) error {
	return errBroken
}

func TestStoreErrorsSurface(t *testing.T) {
	ctx := context.Background()
	c := New(brokenStore{}, nil)

	_, ok, err := Get[slate](ctx, c, "k", time.Minute)
	assert.False(t, ok)
	assert.True(t, errors.Is(err, errBroken))

	_, _, ok, err = GetStale[slate](ctx, c, "k")
	assert.False(t, ok)
	assert.True(t, errors.Is(err, errBroken))

	err = Set(ctx, c, "k", slate{})
	assert.True(t, errors.Is(err, errBroken))
}

func TestMemoryStore_CopiesBytes(t *testing.T) {
	ctx := context.Background()
	m := NewMemoryStore()
	data := []byte(`{"value":1,"updatedAt":1}`)
	require.NoError(t, m.Save(ctx, "k", data, time.Now()))
	data[0] = 'x'

	got, ok, err := m.Load(ctx, "k")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, byte('{'), got[0])
}
