// Package cache memoizes computed values under freshness-versioned keys.
package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/jekabolt/grbpwr-analytics/internal/dependency"
	"golang.org/x/sync/singleflight"
)

// DefaultTTL bounds staleness when a version token misses a change.
const DefaultTTL = 10 * time.Minute

// Versioned stores values under key + version. There is no invalidation:
// a new version simply addresses a different entry and old ones expire.
type Versioned struct {
	store dependency.CacheStore
	ttl   time.Duration
	group singleflight.Group
}

// New returns a Versioned cache over store. A non-positive ttl means DefaultTTL.
func New(store dependency.CacheStore, ttl time.Duration) *Versioned {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Versioned{store: store, ttl: ttl}
}

// TTL returns the default entry lifetime.
func (c *Versioned) TTL() time.Duration {
	return c.ttl
}

// Key joins a logical key and a version token into a storage key.
func Key(key, version string) string {
	return key + ":v=" + version
}

// ComputeIfStale returns the value cached under key at the version reported
// by versionFn, computing and storing it on a miss. Concurrent misses for the
// same versioned key in this process share one computation, which runs
// detached from the cancellation of whichever caller started it. Store failures
// are logged and never fail the call. ttl <= 0 uses the cache default.
func ComputeIfStale[T any](
	ctx context.Context,
	c *Versioned,
	key string,
	versionFn func(context.Context) (string, error),
	computeFn func(context.Context) (T, error),
	ttl time.Duration,
) (T, error) {
	var zero T

	version, err := versionFn(ctx)
	if err != nil {
		return zero, fmt.Errorf("version for %s: %w", key, err)
	}
	full := Key(key, version)
	if ttl <= 0 {
		ttl = c.ttl
	}

	if v, ok := lookup[T](ctx, c.store, full); ok {
		return v, nil
	}

	// the shared computation outlives any single caller's cancellation
	res, err, _ := c.group.Do(full, func() (any, error) {
		cctx := context.WithoutCancel(ctx)
		v, err := computeFn(cctx)
		if err != nil {
			return nil, err
		}
		store(cctx, c.store, full, v, ttl)
		return v, nil
	})
	if err != nil {
		return zero, err
	}
	return res.(T), nil
}

func lookup[T any](ctx context.Context, s dependency.CacheStore, key string) (T, bool) {
	var v T
	raw, ok, err := s.Get(ctx, key)
	if err != nil {
		slog.Default().WarnContext(ctx, "cache get failed",
			slog.String("key", key),
			slog.String("err", err.Error()),
		)
		return v, false
	}
	if !ok {
		return v, false
	}
	if err := json.Unmarshal(raw, &v); err != nil {
		slog.Default().WarnContext(ctx, "cache entry undecodable",
			slog.String("key", key),
			slog.String("err", err.Error()),
		)
		return v, false
	}
	return v, true
}

func store(ctx context.Context, s dependency.CacheStore, key string, v any, ttl time.Duration) {
	raw, err := json.Marshal(v)
	if err != nil {
		slog.Default().WarnContext(ctx, "cache entry not encodable",
			slog.String("key", key),
			slog.String("err", err.Error()),
		)
		return
	}
	if err := s.Set(ctx, key, raw, ttl); err != nil {
		slog.Default().WarnContext(ctx, "cache set failed",
			slog.String("key", key),
			slog.String("err", err.Error()),
		)
	}
}
