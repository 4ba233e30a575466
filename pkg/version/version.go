package version

import (
	"cmp"
	"fmt"
	"strconv"
	"strings"

	"github.com/Masterminds/semver/v3"
)

// Version is a parsed version string.
//
// Missing numeric components default to 0. Parts records how many numeric
// components were actually present so that policies can tell "1.20" apart
// from "1.20.0".
type Version struct {
	Major      int
	Minor      int
	Patch      int
	Prerelease string // everything after the first hyphen, hyphens included
	Parts      int    // number of numeric components present (0-3)
	Wildcard   bool   // last component was "x" or "*" (e.g. "1.20.x")

	raw string
}

// Parse splits s on its first hyphen into a release part and a prerelease tag,
// then splits the release part on dots. Parse never fails: unparseable
// components are read as their leading digits (or 0).
func Parse(s string) Version {
	s = strings.TrimSpace(s)
	v := Version{raw: s}

	core := s
	if i := strings.IndexByte(s, '-'); i >= 0 {
		core, v.Prerelease = s[:i], s[i+1:]
	}
	core = strings.TrimPrefix(strings.TrimPrefix(core, "v"), "V")

	nums := [3]*int{&v.Major, &v.Minor, &v.Patch}
	for i, p := range strings.Split(core, ".") {
		if i >= len(nums) || p == "" {
			break
		}
		if p == "x" || p == "X" || p == "*" {
			v.Wildcard = true
			break
		}
		*nums[i] = leadingInt(p)
		v.Parts = i + 1
	}
	return v
}

func leadingInt(s string) int {
	end := 0
	for end < len(s) && s[end] >= '0' && s[end] <= '9' {
		end++
	}
	n, err := strconv.Atoi(s[:end])
	if err != nil {
		return 0
	}
	return n
}

// String returns the original (trimmed) input.
func (v Version) String() string { return v.raw }

// HasPatch reports whether the patch component was given explicitly.
func (v Version) HasPatch() bool { return v.Parts >= 3 }

// IsPrerelease reports whether the version carries a prerelease tag.
func (v Version) IsPrerelease() bool { return v.Prerelease != "" }

// Triplet formats the numeric part as "major.minor.patch".
func (v Version) Triplet() string { return fmt.Sprintf("%d.%d.%d", v.Major, v.Minor, v.Patch) }

// Compare orders a and b numerically by major, minor and patch. Prerelease
// tags are ignored: "1.2.0-rc.1" and "1.2.0" compare equal.
func Compare(a, b Version) int {
	if c := cmp.Compare(a.Major, b.Major); c != 0 {
		return c
	}
	if c := cmp.Compare(a.Minor, b.Minor); c != 0 {
		return c
	}
	return cmp.Compare(a.Patch, b.Patch)
}

// CompareStrings parses a and b and compares them with [Compare].
func CompareStrings(a, b string) int { return Compare(Parse(a), Parse(b)) }

// ComparePreferStable is [Compare] with one tiebreak: on equal triplets a
// stable version ranks above a prerelease.
func ComparePreferStable(a, b Version) int {
	if c := Compare(a, b); c != 0 {
		return c
	}
	switch {
	case a.IsPrerelease() == b.IsPrerelease():
		return 0
	case a.IsPrerelease():
		return -1
	default:
		return 1
	}
}

// matchesWildcard checks target against a wildcard candidate such as "1.20.x"
// using a semver constraint.
func matchesWildcard(target Version, candidate string) bool {
	c, err := semver.NewConstraint(strings.TrimPrefix(strings.TrimSpace(candidate), "v"))
	if err != nil {
		return false
	}
	tv, err := semver.NewVersion(target.Triplet())
	if err != nil {
		return false
	}
	return c.Check(tv)
}
