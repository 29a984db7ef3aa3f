// Package cache stores normalized values under versioned keys with a
// read-time TTL.
package cache

import (
	"context"
	"strings"
	"time"

	"github.com/bytedance/sonic"
	"github.com/cockroachdb/errors"
	"go.uber.org/zap"

	"github.com/fortuna/gridiron/internal/logging"
)

// SchemaVersion is appended to every key. Bump it when a cached shape
// changes so old entries become unreachable.
const SchemaVersion = "v3"

// KeyPrefix namespaces every key.
const KeyPrefix = "gridiron"

// Store persists raw cache entries. Implementations never interpret the
// payload.
type Store interface {
	// Load returns ok=false on a miss.
	Load(ctx context.Context, key string) (data []byte, ok bool, err error)
	Save(ctx context.Context, key string, data []byte, updatedAt time.Time) error
}

// entry is the stored layout.
type entry[T any] struct {
	Value     T     `json:"value"`
	UpdatedAt int64 `json:"updatedAt"`
}

// Cache wraps a Store with the entry codec and a clock.
type Cache struct {
	store  Store
	now    func() time.Time
	logger *zap.Logger
}

// New creates a cache over store.
func New(store Store, logger *zap.Logger) *Cache {
	return &Cache{
		store:  store,
		now:    time.Now,
		logger: logging.OrNop(logger),
	}
}

// Key joins parts under the prefix and schema version:
// Key("games", "2025", "5") == "gridiron:games:2025:5:v3".
func Key(parts ...string) string {
	all := make([]string, 0, len(parts)+2)
	all = append(all, KeyPrefix)
	all = append(all, parts...)
	all = append(all, SchemaVersion)
	return strings.Join(all, ":")
}

func load[T any](ctx context.Context, c *Cache, key string) (entry[T], bool, error) {
	var e entry[T]
	data, ok, err := c.store.Load(ctx, key)
	if err != nil {
		return e, false, errors.Wrapf(err, "cache load %s", key)
	}
	if !ok {
		return e, false, nil
	}
	if err := sonic.Unmarshal(data, &e); err != nil {
		c.logger.Warn("discarding undecodable cache entry", zap.String("key", key), zap.Error(err))
		return e, false, nil
	}
	return e, true, nil
}

// Get returns the value under key if it is no older than ttl. Expired and
// undecodable entries are misses.
func Get[T any](ctx context.Context, c *Cache, key string, ttl time.Duration) (T, bool, error) {
	e, ok, err := load[T](ctx, c, key)
	if err != nil || !ok {
		var zero T
		return zero, false, err
	}
	age := c.now().UnixMilli() - e.UpdatedAt
	if age > ttl.Milliseconds() {
		var zero T
		return zero, false, nil
	}
	return e.Value, true, nil
}

// GetStale returns the value under key regardless of age, with the time it
// was written.
func GetStale[T any](ctx context.Context, c *Cache, key string) (T, time.Time, bool, error) {
	e, ok, err := load[T](ctx, c, key)
	if err != nil || !ok {
		var zero T
		return zero, time.Time{}, false, err
	}
	return e.Value, time.UnixMilli(e.UpdatedAt), true, nil
}

// Set writes value under key stamped with the current time. The last write
// wins.
func Set[T any](ctx context.Context, c *Cache, key string, value T) error {
	now := c.now()
	data, err := sonic.Marshal(entry[T]{Value: value, UpdatedAt: now.UnixMilli()})
	if err != nil {
		return errors.Wrapf(err, "cache encode %s", key)
	}
	if err := c.store.Save(ctx, key, data, now); err != nil {
		return errors.Wrapf(err, "cache save %s", key)
	}
	return nil
}
