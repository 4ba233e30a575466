// Package manifest loads and saves the declarative mod manifest.
//
// The manifest maps a mod id to its installed state. It is read once at the
// start of a reconcile run and replaced wholesale at the end; the on-disk
// format is chosen from the file extension:
//
//   - .json: tab-indented JSON
//   - .toml: TOML tables keyed by mod id
//   - .yaml / .yml: YAML mapping keyed by mod id
//
// URLs are normalized on load (query and fragment stripped) so identity
// comparisons are stable across runs.
package manifest

import (
	"maps"
	"slices"
	"time"

	"github.com/matzehuels/modsync/pkg/mods"
)

// Entry is the persisted state of one mod.
type Entry struct {
	Title         string     `json:"title,omitempty" toml:"title,omitempty" yaml:"title,omitempty"`
	URL           string     `json:"url" toml:"url" yaml:"url"`
	Version       string     `json:"version,omitempty" toml:"version,omitempty" yaml:"version,omitempty"`
	GameVersion   string     `json:"gameVersion,omitempty" toml:"gameVersion,omitempty" yaml:"gameVersion,omitempty"`
	LockToVersion string     `json:"lockToVersion,omitempty" toml:"lockToVersion,omitempty" yaml:"lockToVersion,omitempty"`
	Requires      []string   `json:"requires,omitempty" toml:"requires,omitempty" yaml:"requires,omitempty"`
	LastUpdated   *time.Time `json:"lastUpdated,omitempty" toml:"lastUpdated,omitempty" yaml:"lastUpdated,omitempty"`
	Auto          bool       `json:"auto,omitempty" toml:"auto,omitempty" yaml:"auto,omitempty"`
	Disabled      bool       `json:"disabled,omitempty" toml:"disabled,omitempty" yaml:"disabled,omitempty"`
}

// Stripped returns a copy of e without installed-version information. It is
// what gets persisted for disabled mods.
func (e Entry) Stripped() Entry {
	e.Version = ""
	e.GameVersion = ""
	return e
}

// Touched returns a copy of e with LastUpdated set to now.
func (e Entry) Touched(now time.Time) Entry {
	e.LastUpdated = &now
	return e
}

// Manifest maps mod id to entry.
type Manifest map[string]Entry

// IDs returns the manifest keys in sorted order.
func (m Manifest) IDs() []string {
	return slices.Sorted(maps.Keys(m))
}

// Clone returns a deep copy of m.
func (m Manifest) Clone() Manifest {
	out := make(Manifest, len(m))
	for id, e := range m {
		e.Requires = slices.Clone(e.Requires)
		if e.LastUpdated != nil {
			t := *e.LastUpdated
			e.LastUpdated = &t
		}
		out[id] = e
	}
	return out
}

// Normalize strips volatile query and fragment parts from every URL.
func (m Manifest) Normalize() {
	for id, e := range m {
		e.URL = mods.NormalizeURL(e.URL)
		for i, r := range e.Requires {
			e.Requires[i] = mods.NormalizeURL(r)
		}
		m[id] = e
	}
}
