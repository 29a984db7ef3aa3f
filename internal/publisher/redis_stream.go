// Package publisher announces slate updates on a Redis stream.
package publisher

import (
	"context"
	"strconv"

	"github.com/bytedance/sonic"
	"github.com/cockroachdb/errors"
	"github.com/redis/go-redis/v9"

	"github.com/fortuna/gridiron/internal/store"
)

// SlateStream is the stream slate-updated events are appended to.
const SlateStream = "slates.updated.nfl"

// DefaultMaxLen caps the stream length (approximate trimming).
const DefaultMaxLen = 10000

// RedisStreamPublisher publishes events to Redis streams
type RedisStreamPublisher struct {
	client *redis.Client
	stream string
	maxLen int64
}

// NewRedisStreamPublisher creates a new Redis stream publisher from existing client
func NewRedisStreamPublisher(client *redis.Client) *RedisStreamPublisher {
	return &RedisStreamPublisher{
		client: client,
		stream: SlateStream,
		maxLen: DefaultMaxLen,
	}
}

// SlateUpdated appends e to the slate stream.
func (p *RedisStreamPublisher) SlateUpdated(ctx context.Context, e store.SlateEvent) error {
	data, err := sonic.Marshal(e)
	if err != nil {
		return errors.Wrap(err, "encode slate event")
	}

	err = p.client.XAdd(ctx, &redis.XAddArgs{
		Stream: p.stream,
		MaxLen: p.maxLen,
		Approx: true,
		Values: map[string]interface{}{
			"season":    strconv.Itoa(e.Season),
			"week":      strconv.Itoa(e.Week),
			"data":      string(data),
			"timestamp": e.UpdatedAt,
		},
	}).Err()
	if err != nil {
		return errors.Wrapf(err, "xadd %s", p.stream)
	}
	return nil
}
