package version

import (
	"fmt"
	"strings"
)

// Policy is a compatibility tier used to decide whether a supported-version
// string covers the running game version.
type Policy int

const (
	// PolicyExact requires major, minor and patch to be equal.
	PolicyExact Policy = iota
	// PolicyMinor requires major and minor to be equal. When both sides name a
	// patch, the candidate's patch must not be newer than the target's.
	PolicyMinor
	// PolicyBelow accepts any candidate strictly older than the target.
	PolicyBelow
	// PolicyAny accepts everything.
	PolicyAny
)

// Tiers lists the policies in fallback order.
var Tiers = []Policy{PolicyExact, PolicyMinor, PolicyBelow, PolicyAny}

func (p Policy) String() string {
	switch p {
	case PolicyExact:
		return "exact"
	case PolicyMinor:
		return "minor"
	case PolicyBelow:
		return "below"
	case PolicyAny:
		return "any"
	default:
		return fmt.Sprintf("Policy(%d)", int(p))
	}
}

// ExactMatch reports whether candidate names exactly the target version.
// A ".x" wildcard candidate matches any patch within its major.minor.
func ExactMatch(target, candidate string) bool {
	t, c := Parse(target), Parse(candidate)
	if c.Wildcard {
		return matchesWildcard(t, candidate)
	}
	return Compare(t, c) == 0
}

// MinorMatch reports whether candidate shares the target's major.minor.
// Every ExactMatch is also a MinorMatch.
func MinorMatch(target, candidate string) bool {
	t, c := Parse(target), Parse(candidate)
	if c.Wildcard {
		return matchesWildcard(t, candidate)
	}
	if t.Major != c.Major || t.Minor != c.Minor {
		return false
	}
	if t.HasPatch() && c.HasPatch() {
		return c.Patch <= t.Patch
	}
	return true
}

// BelowMatch reports whether candidate is strictly older than target.
// Wildcards compare on major.minor only.
func BelowMatch(target, candidate string) bool {
	t, c := Parse(target), Parse(candidate)
	if c.Wildcard {
		if t.Major != c.Major {
			return c.Major < t.Major
		}
		return c.Minor < t.Minor
	}
	return Compare(c, t) < 0
}

// Matches applies policy p to a single supported-version string.
func Matches(p Policy, target, candidate string) bool {
	switch p {
	case PolicyExact:
		return ExactMatch(target, candidate)
	case PolicyMinor:
		return MinorMatch(target, candidate)
	case PolicyBelow:
		return BelowMatch(target, candidate)
	case PolicyAny:
		return true
	default:
		return false
	}
}

// Supports reports whether any entry of supported satisfies policy p.
func Supports(p Policy, target string, supported []string) bool {
	if p == PolicyAny {
		return true
	}
	for _, s := range supported {
		if Matches(p, target, s) {
			return true
		}
	}
	return false
}

// Declared reports whether supported covers target at the exact or minor
// tier, i.e. the author actually declared support for the target's line.
func Declared(target string, supported []string) bool {
	return Supports(PolicyExact, target, supported) || Supports(PolicyMinor, target, supported)
}

// SplitList splits a comma-separated supported-version list, dropping blanks.
func SplitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

// JoinList is the inverse of [SplitList].
func JoinList(list []string) string { return strings.Join(list, ", ") }

const maxRangeExpansion = 100

// ExpandRange turns "1.19.0 - 1.19.3" into its discrete patch values. Inputs
// that are not a same-line range are returned unchanged as a single element.
func ExpandRange(s string) []string {
	s = strings.TrimSpace(s)
	lo, hi, ok := strings.Cut(s, " - ")
	if !ok {
		return []string{s}
	}
	a, b := Parse(lo), Parse(hi)
	if a.Wildcard || b.Wildcard || a.Major != b.Major || a.Minor != b.Minor || b.Patch < a.Patch ||
		b.Patch-a.Patch >= maxRangeExpansion {
		return []string{s}
	}
	out := make([]string, 0, b.Patch-a.Patch+1)
	for p := a.Patch; p <= b.Patch; p++ {
		out = append(out, fmt.Sprintf("%d.%d.%d", a.Major, a.Minor, p))
	}
	return out
}
