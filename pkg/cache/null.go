package cache

import (
	"context"
	"time"
)

// NullCache stores nothing. It backs "versions --no-cache", clients built
// without a page cache, and a missing cache directory.
type NullCache struct{}

func NewNullCache() Cache { return &NullCache{} }

// Get always misses, so every listing is fetched from the mod page.
func (*NullCache) Get(context.Context, string) ([]byte, bool, error) { return nil, false, nil }

func (*NullCache) Set(context.Context, string, []byte, time.Duration) error { return nil }

func (*NullCache) Delete(context.Context, string) error { return nil }

func (*NullCache) Close() error { return nil }

var _ Cache = (*NullCache)(nil)
