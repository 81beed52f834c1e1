package cache

import (
	"context"
	"time"
)

// Reasons a [NullCache] stands in for a real backend.
const (
	ReasonFlag    = "--no-cache"
	ReasonBackend = `backend = "none"`
	ReasonNoDir   = "no cache directory"
	ReasonUnset   = "no cache configured"
)

// NullCache is the backend used when caching is off. Every lookup misses,
// so scenes are re-opened and artifacts re-rendered on each run.
type NullCache struct {
	// Reason records why caching is off. It is shown by [Describe].
	Reason string
}

// NewNullCache returns a cache that stores nothing.
func NewNullCache(reason string) *NullCache {
	return &NullCache{Reason: reason}
}

func (c *NullCache) Get(context.Context, string) ([]byte, bool, error) { return nil, false, nil }

func (c *NullCache) Set(context.Context, string, []byte, time.Duration) error { return nil }

func (c *NullCache) Delete(context.Context, string) error { return nil }

func (c *NullCache) Close() error { return nil }

var _ Cache = (*NullCache)(nil)
