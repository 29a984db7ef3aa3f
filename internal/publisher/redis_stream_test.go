package publisher

import (
	"context"
	"os"
	"testing"

	"github.com/bytedance/sonic"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fortuna/gridiron/internal/store"
)

func TestRedisStreamPublisher_Integration(t *testing.T) {
	url := os.Getenv("TEST_REDIS_URL")
	if url == "" {
		t.Skip("TEST_REDIS_URL not set")
	}
	opt, err := redis.ParseURL(url)
	require.NoError(t, err)
	client := redis.NewClient(opt)
	defer client.Close()

	ctx := context.Background()
	pub := NewRedisStreamPublisher(client)
	pub.stream = "test." + SlateStream
	defer client.Del(ctx, pub.stream)

	event := store.SlateEvent{Season: 2025, Week: 5, Games: 16, Source: store.SourceESPN, UpdatedAt: 1759700000000}
	require.NoError(t, pub.SlateUpdated(ctx, event))

	entries, err := client.XRange(ctx, pub.stream, "-", "+").Result()
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "5", entries[0].Values["week"])

	var got store.SlateEvent
	require.NoError(t, sonic.UnmarshalString(entries[0].Values["data"].(string), &got))
	assert.Equal(t, event, got)
}
