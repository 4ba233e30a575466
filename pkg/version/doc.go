// Package version parses and compares mod and game version strings.
//
// Version strings are split on the first hyphen into a numeric release part
// and a prerelease tag ("1.2.3-rc.1-hotfix" has prerelease "rc.1-hotfix"),
// and the release part is split on dots. Comparison only looks at the
// major.minor.patch triplet; [ComparePreferStable] adds a stable-first
// tiebreak for callers that track the distinction.
//
// # Compatibility tiers
//
// A mod release lists the game versions it supports. Whether a supported
// string covers the running game version is decided per [Policy]:
//
//   - [PolicyExact]: "1.20.4" covers 1.20.4 only
//   - [PolicyMinor]: "1.20.2" covers 1.20.4, "1.20.7" does not
//   - [PolicyBelow]: anything strictly older than 1.20.4
//   - [PolicyAny]: everything
//
// Wildcards like "1.20.x" match any patch in their line and are evaluated
// with a semver constraint.
package version
