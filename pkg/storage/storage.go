// Package storage keeps downloaded mod archives in the mods directory.
//
// Every archive is stored as <id>.zip. Writes are atomic, so a server
// reading the directory never sees a half-written archive.
package storage

import (
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/moby/sys/atomicwriter"

	"github.com/matzehuels/modsync/pkg/errors"
)

// Ext is the file extension of stored archives.
const Ext = ".zip"

// Archives is a directory of mod archives keyed by mod id.
type Archives struct {
	dir string
}

// Open returns the archive store rooted at dir, creating the directory if
// needed.
func Open(dir string) (*Archives, error) {
	if dir == "" {
		return nil, errors.New(errors.ErrCodeInvalidConfig, "mods directory is not set")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, errors.Wrap(errors.ErrCodeStorage, err, "create mods directory")
	}
	return &Archives{dir: dir}, nil
}

// Dir returns the mods directory.
func (a *Archives) Dir() string { return a.dir }

// Path returns the file an archive for id is stored in.
func (a *Archives) Path(id string) (string, error) {
	if err := errors.ValidateModID(id); err != nil {
		return "", err
	}
	return filepath.Join(a.dir, id+Ext), nil
}

// List returns the ids of all stored archives, sorted.
func (a *Archives) List() ([]string, error) {
	entries, err := os.ReadDir(a.dir)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeStorage, err, "list mods directory")
	}
	var ids []string
	for _, e := range entries {
		name := e.Name()
		if e.IsDir() || !strings.HasSuffix(name, Ext) || strings.HasPrefix(name, ".") {
			continue
		}
		ids = append(ids, strings.TrimSuffix(name, Ext))
	}
	slices.Sort(ids)
	return ids, nil
}

// Has reports whether an archive for id is stored.
func (a *Archives) Has(id string) bool {
	p, err := a.Path(id)
	if err != nil {
		return false
	}
	info, err := os.Stat(p)
	return err == nil && info.Mode().IsRegular()
}

// Write stores data as the archive for id, replacing any previous one.
func (a *Archives) Write(id string, data []byte) error {
	p, err := a.Path(id)
	if err != nil {
		return err
	}
	if err := atomicwriter.WriteFile(p, data, 0o644); err != nil {
		return errors.Wrap(errors.ErrCodeStorage, err, "write archive %s", id)
	}
	return nil
}

// Remove deletes the archive for id. Removing a missing archive is not an
// error.
func (a *Archives) Remove(id string) error {
	p, err := a.Path(id)
	if err != nil {
		return err
	}
	if err := os.Remove(p); err != nil && !os.IsNotExist(err) {
		return errors.Wrap(errors.ErrCodeStorage, err, "remove archive %s", id)
	}
	return nil
}
