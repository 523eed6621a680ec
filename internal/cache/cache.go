// Package cache provides byte-oriented key/value stores with expiry used to
// memoize read-heavy computations such as report metrics.
package cache

import (
	"context"
	"strings"
	"time"
)

// Store is a best-effort cache. A miss returns ok=false with a nil error.
type Store interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
}

// Key joins non-empty parts into a normalized cache key.
func Key(parts ...string) string {
	values := make([]string, 0, len(parts))
	for _, part := range parts {
		trimmed := strings.TrimSpace(part)
		if trimmed == "" {
			continue
		}
		values = append(values, strings.ToLower(trimmed))
	}
	return strings.Join(values, "|")
}

// NopStore never holds anything.
type NopStore struct{}

func (NopStore) Get(ctx context.Context, key string) ([]byte, bool, error) { return nil, false, nil }

func (NopStore) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	return nil
}
