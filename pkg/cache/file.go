package cache

import (
	"context"
	"encoding/json"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/moby/sys/atomicwriter"
)

// FileCache keeps one JSON file per key below dir, fanned out into
// subdirectories by the first two hex digits of the key hash. Writes are
// atomic, so a concurrent "versions" never reads a torn page.
type FileCache struct {
	dir string
}

// NewFileCache opens the cache at dir, creating the directory if needed.
func NewFileCache(dir string) (*FileCache, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	return &FileCache{dir: dir}, nil
}

type fileEntry struct {
	Data      []byte    `json:"data"`
	ExpiresAt time.Time `json:"expires_at,omitzero"`
}

func (e fileEntry) expired(now time.Time) bool {
	return !e.ExpiresAt.IsZero() && now.After(e.ExpiresAt)
}

// readEntry loads the entry at path. ok is false for corrupt or expired
// entries, which are removed on the way.
func readEntry(path string, now time.Time) (entry fileEntry, ok bool, err error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return entry, false, err
	}
	if json.Unmarshal(raw, &entry) != nil || entry.expired(now) {
		_ = os.Remove(path)
		return entry, false, nil
	}
	return entry, true, nil
}

func (c *FileCache) Get(_ context.Context, key string) ([]byte, bool, error) {
	entry, ok, err := readEntry(c.path(key), time.Now())
	if errors.Is(err, fs.ErrNotExist) {
		return nil, false, nil
	}
	if err != nil || !ok {
		return nil, false, err
	}
	return entry.Data, true, nil
}

func (c *FileCache) Set(_ context.Context, key string, data []byte, ttl time.Duration) error {
	entry := fileEntry{Data: data}
	if ttl > 0 {
		entry.ExpiresAt = time.Now().Add(ttl)
	}
	raw, err := json.Marshal(entry)
	if err != nil {
		return err
	}
	path := c.path(key)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	return atomicwriter.WriteFile(path, raw, 0o644)
}

func (c *FileCache) Delete(_ context.Context, key string) error {
	if err := os.Remove(c.path(key)); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return err
	}
	return nil
}

// Clear removes every entry.
func (c *FileCache) Clear() error {
	entries, err := os.ReadDir(c.dir)
	if err != nil {
		return err
	}
	for _, e := range entries {
		if err := os.RemoveAll(filepath.Join(c.dir, e.Name())); err != nil {
			return err
		}
	}
	return nil
}

// Prune removes expired and unreadable entries and returns how many it
// removed. Unexpired pages stay.
func (c *FileCache) Prune() (int, error) {
	now := time.Now()
	removed := 0
	err := filepath.WalkDir(c.dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || filepath.Ext(path) != ".json" {
			return nil
		}
		if _, ok, err := readEntry(path, now); err != nil {
			return err
		} else if !ok {
			removed++
		}
		return nil
	})
	return removed, err
}

func (c *FileCache) Dir() string { return c.dir }

func (c *FileCache) Close() error { return nil }

func (c *FileCache) path(key string) string {
	h := Hash([]byte(key))
	return filepath.Join(c.dir, h[:2], h[2:]+".json")
}

var _ Cache = (*FileCache)(nil)
