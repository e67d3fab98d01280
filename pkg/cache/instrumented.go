package cache

import (
	"context"
	"time"

	"github.com/daygrid/daygrid/pkg/observability"
)

// Instrumented wraps a Cache and reports hits, misses, and sets through
// the observability hooks. keyType labels the events so a backend shared
// by several result kinds stays distinguishable in metrics.
type Instrumented struct {
	inner   Cache
	keyType string
}

// NewInstrumented wraps a cache with hook reporting.
func NewInstrumented(inner Cache, keyType string) Cache {
	return &Instrumented{inner: inner, keyType: keyType}
}

func (c *Instrumented) Get(ctx context.Context, key string) ([]byte, bool, error) {
	data, ok, err := c.inner.Get(ctx, key)
	if err == nil {
		if ok {
			observability.Cache().OnCacheHit(ctx, c.keyType)
		} else {
			observability.Cache().OnCacheMiss(ctx, c.keyType)
		}
	}
	return data, ok, err
}

func (c *Instrumented) Set(ctx context.Context, key string, data []byte, ttl time.Duration) error {
	err := c.inner.Set(ctx, key, data, ttl)
	if err == nil {
		observability.Cache().OnCacheSet(ctx, c.keyType, len(data))
	}
	return err
}

func (c *Instrumented) Delete(ctx context.Context, key string) error {
	return c.inner.Delete(ctx, key)
}

func (c *Instrumented) Close() error {
	return c.inner.Close()
}

// Ensure Instrumented implements Cache.
var _ Cache = (*Instrumented)(nil)
