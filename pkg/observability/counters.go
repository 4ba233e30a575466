package observability

import (
	"context"
	"sync"
	"time"
)

// Counters aggregates reconcile, cache and HTTP events in memory. It
// implements every hook interface and is safe for concurrent use.
type Counters struct {
	mu sync.Mutex
	s  Snapshot
}

// Snapshot is a point-in-time copy of [Counters].
type Snapshot struct {
	Runs           int           `json:"runs"`
	FailedRuns     int           `json:"failedRuns"`
	LastRunID      string        `json:"lastRunId,omitempty"`
	LastRunStart   time.Time     `json:"lastRunStart,omitzero"`
	LastRunTook    time.Duration `json:"lastRunTookNs"`
	Running        bool          `json:"running"`
	Fetches        int           `json:"fetches"`
	FetchErrors    int           `json:"fetchErrors"`
	Downloads      int           `json:"downloads"`
	DownloadErrors int           `json:"downloadErrors"`
	DownloadBytes  int64         `json:"downloadBytes"`
	Deletes        int           `json:"deletes"`
	CacheHits      int           `json:"cacheHits"`
	CacheMisses    int           `json:"cacheMisses"`
	CacheWrites    int           `json:"cacheWrites"`
	CacheBytes     int64         `json:"cacheBytes"`
	HTTPRequests   int           `json:"httpRequests"`
	HTTPErrors     int           `json:"httpErrors"`
}

// Snapshot returns the current totals.
func (c *Counters) Snapshot() Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.s
}

func (c *Counters) update(fn func(*Snapshot)) {
	c.mu.Lock()
	fn(&c.s)
	c.mu.Unlock()
}

func (c *Counters) OnRunStart(_ context.Context, runID string, _ int) {
	c.update(func(s *Snapshot) {
		s.Running = true
		s.LastRunID = runID
		s.LastRunStart = time.Now()
	})
}

func (c *Counters) OnRunComplete(_ context.Context, _ string, d time.Duration, err error) {
	c.update(func(s *Snapshot) {
		s.Running = false
		s.Runs++
		s.LastRunTook = d
		if err != nil {
			s.FailedRuns++
		}
	})
}

func (c *Counters) OnFetch(_ context.Context, _ string, _ time.Duration, err error) {
	c.update(func(s *Snapshot) {
		s.Fetches++
		if err != nil {
			s.FetchErrors++
		}
	})
}

func (c *Counters) OnDownload(_ context.Context, _, _ string, size int, _ time.Duration, err error) {
	c.update(func(s *Snapshot) {
		s.Downloads++
		s.DownloadBytes += int64(size)
		if err != nil {
			s.DownloadErrors++
		}
	})
}

func (c *Counters) OnDelete(context.Context, string, string) {
	c.update(func(s *Snapshot) { s.Deletes++ })
}

func (c *Counters) OnCacheHit(context.Context, string) {
	c.update(func(s *Snapshot) { s.CacheHits++ })
}

func (c *Counters) OnCacheMiss(context.Context, string) {
	c.update(func(s *Snapshot) { s.CacheMisses++ })
}

func (c *Counters) OnCacheSet(_ context.Context, _ string, size int) {
	c.update(func(s *Snapshot) {
		s.CacheWrites++
		s.CacheBytes += int64(size)
	})
}

func (c *Counters) OnRequest(context.Context, string, string, string) {
	c.update(func(s *Snapshot) { s.HTTPRequests++ })
}

func (c *Counters) OnResponse(context.Context, string, string, string, int, time.Duration) {}

func (c *Counters) OnError(context.Context, string, string, string, error) {
	c.update(func(s *Snapshot) { s.HTTPErrors++ })
}

var (
	_ ReconcileHooks = (*Counters)(nil)
	_ CacheHooks     = (*Counters)(nil)
	_ HTTPHooks      = (*Counters)(nil)
)
