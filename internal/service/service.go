// Package service composes fetch, parse, reconcile, assemble and cache into
// the operations served over REST and used by the warmer and backfill.
package service

import (
	"context"
	"strconv"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/fortuna/gridiron/internal/cache"
	"github.com/fortuna/gridiron/internal/fetch"
	"github.com/fortuna/gridiron/internal/ingest/pfr"
	"github.com/fortuna/gridiron/internal/logging"
	"github.com/fortuna/gridiron/internal/retry"
	"github.com/fortuna/gridiron/internal/store"
)

var (
	// ErrInvalidInput is malformed caller input.
	ErrInvalidInput = errors.New("invalid input")
	// ErrSourcesUnavailable means every source failed and nothing was cached.
	ErrSourcesUnavailable = errors.New("sources unavailable")
	// ErrGameNotFound is a well-formed game id that is not on its week's slate.
	ErrGameNotFound = errors.New("game not found")
)

// JSONSource is the ESPN API.
type JSONSource interface {
	Scoreboard(ctx context.Context, season, week int) ([]store.GameRaw, error)
	Roster(ctx context.Context, teamID string) (store.Roster, error)
	TeamStatistics(ctx context.Context, season int) ([]store.EntityStats, error)
	PlayerStatistics(ctx context.Context, season int) ([]store.EntityStats, error)
}

// HTMLSource is pro-football-reference.
type HTMLSource interface {
	Schedule(ctx context.Context, season, week int) ([]store.GameRaw, error)
	TeamPage(ctx context.Context, teamCode string, season, week int) (*pfr.TeamPage, error)
}

// Notifier is told when a slate has been rewritten in the cache.
type Notifier interface {
	SlateUpdated(ctx context.Context, event store.SlateEvent) error
}

// Options tunes the services.
type Options struct {
	CacheTTL          time.Duration
	FanoutConcurrency int
	Retry             retry.Policy
	Logger            *zap.Logger
}

// DefaultOptions mirrors the config defaults.
func DefaultOptions() Options {
	return Options{
		CacheTTL:          10 * time.Minute,
		FanoutConcurrency: 6,
		Retry:             retry.NewPolicy(3, 500*time.Millisecond, fetch.IsRetryable),
	}
}

// deps is shared by every service.
type deps struct {
	json     JSONSource
	html     HTMLSource
	cache    *cache.Cache
	ttl      time.Duration
	fanout   int
	retry    retry.Policy
	validate *validator.Validate
	logger   *zap.Logger
	now      func() time.Time
}

func newDeps(jsonSrc JSONSource, htmlSrc HTMLSource, c *cache.Cache, opts Options) deps {
	if opts.CacheTTL <= 0 {
		opts.CacheTTL = DefaultOptions().CacheTTL
	}
	if opts.FanoutConcurrency <= 0 {
		opts.FanoutConcurrency = DefaultOptions().FanoutConcurrency
	}
	if opts.Retry.MaxAttempts == 0 {
		opts.Retry = DefaultOptions().Retry
	}
	return deps{
		json:     jsonSrc,
		html:     htmlSrc,
		cache:    c,
		ttl:      opts.CacheTTL,
		fanout:   opts.FanoutConcurrency,
		retry:    opts.Retry,
		validate: validator.New(),
		logger:   logging.OrNop(opts.Logger),
		now:      time.Now,
	}
}

type slateQuery struct {
	Season int `validate:"gte=1920,lte=2100"`
	Week   int `validate:"gte=1,lte=18"`
}

type seasonQuery struct {
	Season int `validate:"gte=1920,lte=2100"`
}

type teamQuery struct {
	Team string `validate:"required,alphanum,max=8"`
}

func (d deps) check(query any) error {
	if err := d.validate.Struct(query); err != nil {
		return errors.WithSecondaryError(errors.Wrapf(ErrInvalidInput, "%+v", query), err)
	}
	return nil
}

// withRetry runs fn under the retry policy and returns its value.
func withRetry[T any](ctx context.Context, p retry.Policy, fn func(ctx context.Context) (T, error)) (T, error) {
	var out T
	err := p.Do(ctx, func(ctx context.Context) error {
		v, err := fn(ctx)
		if err != nil {
			return err
		}
		out = v
		return nil
	})
	return out, err
}

// cached serves key from the cache, else loads it with retries and stores
// it. When loading fails the stale entry is served if there is one.
func cached[T any](ctx context.Context, d deps, key string, load func(ctx context.Context) (T, error)) (T, error) {
	if v, ok, err := cache.Get[T](ctx, d.cache, key, d.ttl); err != nil {
		d.logger.Warn("cache read failed", zap.String("key", key), zap.Error(err))
	} else if ok {
		return v, nil
	}

	v, err := withRetry(ctx, d.retry, load)
	if err == nil {
		if err := cache.Set(ctx, d.cache, key, v); err != nil {
			d.logger.Warn("cache write failed", zap.String("key", key), zap.Error(err))
		}
		return v, nil
	}
	return stale[T](ctx, d, key, err)
}

// stale serves the last cached value for key regardless of age, or reports
// the sources as unavailable.
func stale[T any](ctx context.Context, d deps, key string, cause error) (T, error) {
	v, at, ok, cerr := cache.GetStale[T](ctx, d.cache, key)
	if cerr != nil {
		d.logger.Warn("stale cache read failed", zap.String("key", key), zap.Error(cerr))
	}
	if ok {
		d.logger.Warn("sources failed, serving stale cache",
			zap.String("key", key),
			zap.Time("cached_at", at),
			zap.Error(cause))
		return v, nil
	}
	var zero T
	return zero, errors.WithSecondaryError(errors.Wrapf(ErrSourcesUnavailable, "%s", key), cause)
}

func itoa(n int) string {
	return strconv.Itoa(n)
}

// Notifiers fans one event out to several notifiers.
type Notifiers []Notifier

func (ns Notifiers) SlateUpdated(ctx context.Context, event store.SlateEvent) error {
	var errs error
	for _, n := range ns {
		if err := n.SlateUpdated(ctx, event); err != nil {
			errs = errors.CombineErrors(errs, err)
		}
	}
	return errs
}
