package reconcile

import (
	"fmt"
	"strings"
	"time"
)

// Item identifies a mod in a report.
type Item struct {
	ID      string `json:"id"`
	Title   string `json:"title"`
	Version string `json:"version,omitempty"`
}

// Change is an installed or updated mod.
type Change struct {
	ID        string `json:"id"`
	Title     string `json:"title"`
	From      string `json:"from,omitempty"`
	To        string `json:"to"`
	Changelog string `json:"changelog,omitempty"`
}

// Issue is a mod that could not be brought up to date this run.
type Issue struct {
	ID     string `json:"id"`
	Title  string `json:"title"`
	Reason string `json:"reason"`
}

// Mismatch is an installed mod that does not declare support for the
// running game version.
type Mismatch struct {
	ID        string `json:"id"`
	Title     string `json:"title"`
	Version   string `json:"version"`
	Supported string `json:"supported"`
}

// Report summarizes one run. Lists follow the case-insensitive title order
// of the run, except Deleted and Mismatched which are sorted by id.
type Report struct {
	RunID       string    `json:"runId"`
	GameVersion string    `json:"gameVersion"`
	Started     time.Time `json:"started"`
	Finished    time.Time `json:"finished"`

	Installed   []Change   `json:"installed,omitempty"`
	Updated     []Change   `json:"updated,omitempty"`
	UpToDate    []Item     `json:"upToDate,omitempty"`
	Cached      []Item     `json:"cached,omitempty"`
	Uninstalled []Item     `json:"uninstalled,omitempty"`
	Deleted     []string   `json:"deleted,omitempty"`
	Mismatched  []Mismatch `json:"mismatched,omitempty"`
	Skipped     []Issue    `json:"skipped,omitempty"`
}

// Duration is how long the run took.
func (r *Report) Duration() time.Duration {
	if r.Finished.IsZero() {
		return 0
	}
	return r.Finished.Sub(r.Started)
}

// Changed reports whether the run modified the archive directory.
func (r *Report) Changed() bool {
	return len(r.Installed)+len(r.Updated)+len(r.Uninstalled)+len(r.Deleted) > 0
}

// Notable reports whether the run is worth a notification: it changed the
// archive directory or left warnings behind.
func (r *Report) Notable() bool {
	return r.Changed() || len(r.Mismatched)+len(r.Skipped) > 0
}

// Messages renders one notification message per non-empty category,
// starting with the mods that were already current.
func (r *Report) Messages() []string {
	var out []string
	add := func(header string, lines []string) {
		if len(lines) == 0 {
			return
		}
		out = append(out, header+"\n"+strings.Join(lines, "\n"))
	}

	var lines []string
	for _, it := range r.UpToDate {
		lines = append(lines, fmt.Sprintf("- %s (%s)", it.Title, it.ID))
	}
	add("✅ Up to date:", lines)

	lines = nil
	for _, c := range r.Installed {
		lines = append(lines, fmt.Sprintf("- %s (%s) %s", c.Title, c.ID, c.To))
	}
	add("✅ Newly installed:", lines)

	lines = nil
	for _, c := range r.Updated {
		line := fmt.Sprintf("- %s (%s) %s -> %s", c.Title, c.ID, c.From, c.To)
		if c.Changelog != "" {
			line += "\n" + indent(c.Changelog, "    ")
		}
		lines = append(lines, line)
	}
	add("✅ Updated:", lines)

	lines = nil
	for _, it := range r.Uninstalled {
		lines = append(lines, fmt.Sprintf("- %s (%s)", it.Title, it.ID))
	}
	add("🗑️ Uninstalled (disabled):", lines)

	lines = nil
	for _, id := range r.Deleted {
		lines = append(lines, "- "+id)
	}
	add("❌ Deleted (no longer required):", lines)

	lines = nil
	for _, m := range r.Mismatched {
		lines = append(lines, fmt.Sprintf("- %s (%s) %s supports %s", m.Title, m.ID, m.Version, m.Supported))
	}
	add(fmt.Sprintf("⚠️ Not declared for %s:", r.GameVersion), lines)

	lines = nil
	for _, s := range r.Skipped {
		lines = append(lines, fmt.Sprintf("- %s (%s): %s", s.Title, s.ID, s.Reason))
	}
	add("⚠️ Skipped:", lines)

	return out
}

func indent(s, prefix string) string {
	ls := strings.Split(s, "\n")
	for i, l := range ls {
		if l != "" {
			ls[i] = prefix + l
		}
	}
	return strings.Join(ls, "\n")
}
