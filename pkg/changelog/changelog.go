// Package changelog compiles the release notes between an installed version
// and its update target.
package changelog

import (
	"regexp"
	"strings"

	"github.com/matzehuels/modsync/pkg/mods"
)

// Entry is the release note of a single version.
type Entry struct {
	Version string
	Body    string
}

// Header returns the separator line that introduces e during collection.
func (e Entry) Header() string { return "Version " + e.Version + ":" }

// Collect walks releases (newest first) and returns the entries from newVersion
// down to, but excluding, oldVersion, newest first. If oldVersion is not in
// the window every entry from newVersion to the end is returned; if
// newVersion is missing the result is nil.
func Collect(releases []mods.Release, oldVersion, newVersion string) []Entry {
	var (
		out        []Entry
		collecting bool
	)
	for _, r := range releases {
		if r.Version == newVersion {
			collecting = true
		}
		if !collecting {
			continue
		}
		if oldVersion != "" && r.Version == oldVersion {
			break
		}
		out = append(out, Entry{Version: r.Version, Body: strings.TrimSpace(r.Changelog)})
	}
	return out
}

var headerRe = regexp.MustCompile(`(?m)^[ \t]*Version [^\s:]+:[ \t]*$\n?`)

// Compile returns the joined changelog between oldVersion and newVersion,
// newest entry first, entries separated by a blank line. The per-version
// headers are stripped from the result.
func Compile(releases []mods.Release, oldVersion, newVersion string) string {
	entries := Collect(releases, oldVersion, newVersion)
	if len(entries) == 0 {
		return ""
	}
	var b strings.Builder
	for _, e := range entries {
		b.WriteString(e.Header())
		b.WriteByte('\n')
		b.WriteString(e.Body)
		b.WriteString("\n\n")
	}
	return Strip(b.String())
}

// Strip removes "Version X:" header lines and collapses the surrounding
// whitespace.
func Strip(s string) string {
	s = headerRe.ReplaceAllString(s, "")
	var parts []string
	for _, block := range strings.Split(s, "\n\n") {
		if block = strings.TrimSpace(block); block != "" {
			parts = append(parts, block)
		}
	}
	return strings.Join(parts, "\n\n")
}
