// Package mods holds the domain types shared between the remote fetcher, the
// version selector and the reconciler.
package mods

import (
	"net/url"
	"path"
	"strings"

	"github.com/matzehuels/modsync/pkg/version"
)

// Release is one published version of a mod as listed by the remote source.
type Release struct {
	Version      string   `json:"version"`
	GameVersions []string `json:"gameVersions"` // discrete values, ranges already expanded
	ReleaseDate  string   `json:"releaseDate,omitempty"`
	Changelog    string   `json:"changelog,omitempty"`
	DownloadURL  string   `json:"downloadFile,omitempty"`
}

// Prerelease reports whether the release version carries a prerelease tag.
func (r Release) Prerelease() bool { return version.Parse(r.Version).IsPrerelease() }

// Listing is what the remote source knows about a mod: its display title and
// its most recent releases, newest first.
type Listing struct {
	Title    string    `json:"title"`
	Releases []Release `json:"versions"`
}

// Find returns the release whose version string equals v.
func (l *Listing) Find(v string) (Release, bool) {
	if l == nil {
		return Release{}, false
	}
	for _, r := range l.Releases {
		if r.Version == v {
			return r, true
		}
	}
	return Release{}, false
}

// NormalizeURL strips the query string and fragment from a mod URL so that
// identity comparisons are stable across runs.
func NormalizeURL(raw string) string {
	raw = strings.TrimSpace(raw)
	if i := strings.IndexAny(raw, "?#"); i >= 0 {
		raw = raw[:i]
	}
	return raw
}

// IDFromURL derives a mod id from the last path segment of its URL.
func IDFromURL(raw string) string {
	raw = NormalizeURL(raw)
	if u, err := url.Parse(raw); err == nil && u.Path != "" {
		raw = u.Path
	}
	return path.Base(strings.TrimRight(raw, "/"))
}
