// Package selector picks the release a mod should be updated to.
//
// Selection is a pure function of a resolved node and the remote listing.
// A pinned node only ever targets its pinned version. Otherwise the
// candidates are narrowed by the first compatibility tier that yields any
// release (exact, minor, below, any) and the newest candidate wins, with
// stable releases optionally preferred over prereleases.
package selector

import (
	"slices"

	"github.com/matzehuels/modsync/pkg/changelog"
	"github.com/matzehuels/modsync/pkg/deps"
	"github.com/matzehuels/modsync/pkg/mods"
	"github.com/matzehuels/modsync/pkg/version"
)

// Action is what the reconciler should do with a node.
type Action string

const (
	ActionUpToDate Action = "up-to-date"
	ActionUpdate   Action = "update"
)

// Options carries the run-wide selection settings.
type Options struct {
	// GameVersion is the running server version every tier compares against.
	GameVersion string
	// PreferStable picks the newest stable candidate of a tier when one exists.
	PreferStable bool
}

// Result is the outcome of selecting a version for one node.
type Result struct {
	Node   *deps.Node
	Title  string
	Action Action
	// Target is nil when nothing can be installed.
	Target    *mods.Release
	Changelog string
	// Tier is the compatibility tier the target was chosen from. It is only
	// meaningful for unpinned nodes with a target.
	Tier version.Policy
	// LockMissing is set when the pinned version is not in the listing.
	LockMissing bool
}

// Installed reports whether the node had a version installed before the run.
func (r Result) Installed() bool { return r.Node.CurrentVersion != "" }

// Select chooses the target release for n from listing.
func Select(n *deps.Node, listing *mods.Listing, opts Options) Result {
	res := Result{Node: n, Title: title(n, listing), Action: ActionUpToDate}

	if n.Locked() {
		var (
			r  mods.Release
			ok bool
		)
		if listing != nil {
			r, ok = listing.Find(n.LockToVersion)
		}
		if !ok {
			res.LockMissing = true
			return res
		}
		res.Target = &r
	} else {
		if listing == nil || len(listing.Releases) == 0 {
			return res
		}
		r, tier, ok := pick(listing.Releases, opts)
		if !ok {
			return res
		}
		res.Target = &r
		res.Tier = tier
	}

	if res.Target.Version != n.CurrentVersion {
		res.Action = ActionUpdate
		res.Changelog = changelog.Compile(listing.Releases, n.CurrentVersion, res.Target.Version)
	}
	return res
}

// Candidates returns the releases of the first tier that has any, sorted
// newest first, together with that tier. Equal triplets keep page order
// unless opts.PreferStable ranks the stable release first.
func Candidates(releases []mods.Release, opts Options) ([]mods.Release, version.Policy) {
	less := version.Compare
	if opts.PreferStable {
		less = version.ComparePreferStable
	}
	for _, tier := range version.Tiers {
		var out []mods.Release
		for _, r := range releases {
			if version.Supports(tier, opts.GameVersion, r.GameVersions) {
				out = append(out, r)
			}
		}
		if len(out) > 0 {
			slices.SortStableFunc(out, func(a, b mods.Release) int {
				return less(version.Parse(b.Version), version.Parse(a.Version))
			})
			return out, tier
		}
	}
	return nil, version.PolicyAny
}

func pick(releases []mods.Release, opts Options) (mods.Release, version.Policy, bool) {
	cands, tier := Candidates(releases, opts)
	if len(cands) == 0 {
		return mods.Release{}, tier, false
	}
	if opts.PreferStable {
		if i := slices.IndexFunc(cands, func(r mods.Release) bool { return !r.Prerelease() }); i >= 0 {
			return cands[i], tier, true
		}
	}
	return cands[0], tier, true
}

func title(n *deps.Node, l *mods.Listing) string {
	switch {
	case l != nil && l.Title != "":
		return l.Title
	case n.Title != "":
		return n.Title
	default:
		return n.ID
	}
}
