// Package cache stores fetched mod pages so that read-only commands such as
// "versions" do not hit the remote source on every invocation.
//
// The reconcile run itself bypasses the cache: its staleness window is
// tracked in the manifest instead.
package cache

import (
	"context"
	"time"
)

// Cache is a byte-oriented key/value store with per-entry expiry.
type Cache interface {
	// Get returns the stored value and whether it was found and unexpired.
	Get(ctx context.Context, key string) ([]byte, bool, error)
	// Set stores data under key. A ttl of 0 never expires.
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
	Close() error
}

// Namespaced prefixes every key passed to the wrapped cache.
type Namespaced struct {
	inner  Cache
	prefix string
}

// Namespace returns a view of c whose keys are prefixed with prefix.
func Namespace(c Cache, prefix string) Cache {
	if c == nil {
		c = NewNullCache()
	}
	return &Namespaced{inner: c, prefix: prefix}
}

func (n *Namespaced) Get(ctx context.Context, key string) ([]byte, bool, error) {
	return n.inner.Get(ctx, n.prefix+key)
}

func (n *Namespaced) Set(ctx context.Context, key string, data []byte, ttl time.Duration) error {
	return n.inner.Set(ctx, n.prefix+key, data, ttl)
}

func (n *Namespaced) Delete(ctx context.Context, key string) error {
	return n.inner.Delete(ctx, n.prefix+key)
}

func (n *Namespaced) Close() error { return n.inner.Close() }

var _ Cache = (*Namespaced)(nil)
