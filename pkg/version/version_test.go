package version

import (
	"slices"
	"testing"
)

func TestParse(t *testing.T) {
	tests := []struct {
		in         string
		major      int
		minor      int
		patch      int
		prerelease string
		parts      int
		wildcard   bool
	}{
		{"1.20.4", 1, 20, 4, "", 3, false},
		{"v1.20.4", 1, 20, 4, "", 3, false},
		{"1.20", 1, 20, 0, "", 2, false},
		{"2", 2, 0, 0, "", 1, false},
		{"", 0, 0, 0, "", 0, false},
		{"1.2.3-rc.1", 1, 2, 3, "rc.1", 3, false},
		{"1.2.3-pre-release-2", 1, 2, 3, "pre-release-2", 3, false},
		{"1.20.x", 1, 20, 0, "", 2, true},
		{"1.7.0b", 1, 7, 0, "", 3, false},
		{" 1.0.0 ", 1, 0, 0, "", 3, false},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			v := Parse(tt.in)
			if v.Major != tt.major || v.Minor != tt.minor || v.Patch != tt.patch {
				t.Errorf("Parse(%q) = %d.%d.%d, want %d.%d.%d", tt.in, v.Major, v.Minor, v.Patch, tt.major, tt.minor, tt.patch)
			}
			if v.Prerelease != tt.prerelease {
				t.Errorf("Prerelease = %q, want %q", v.Prerelease, tt.prerelease)
			}
			if v.Parts != tt.parts {
				t.Errorf("Parts = %d, want %d", v.Parts, tt.parts)
			}
			if v.Wildcard != tt.wildcard {
				t.Errorf("Wildcard = %v, want %v", v.Wildcard, tt.wildcard)
			}
		})
	}
}

func TestCompare(t *testing.T) {
	tests := []struct {
		a, b string
		want int
	}{
		{"1.0.0", "1.0.0", 0},
		{"1.0.0", "1.0.1", -1},
		{"1.10.0", "1.9.9", 1},
		{"2.0.0", "1.99.99", 1},
		{"1.2", "1.2.0", 0},
		{"1.2.0-rc.1", "1.2.0", 0},
	}

	for _, tt := range tests {
		if got := CompareStrings(tt.a, tt.b); got != tt.want {
			t.Errorf("CompareStrings(%q, %q) = %d, want %d", tt.a, tt.b, got, tt.want)
		}
		if got := CompareStrings(tt.b, tt.a); got != -tt.want {
			t.Errorf("CompareStrings(%q, %q) = %d, want %d", tt.b, tt.a, got, -tt.want)
		}
	}
}

func TestCompareReflexiveAndTransitive(t *testing.T) {
	versions := []string{"0.1", "1.0.0", "1.0.0-rc.1", "1.0.1", "1.2", "1.10.3", "2.0.0", "1.9.9-pre", ""}

	for _, v := range versions {
		if CompareStrings(v, v) != 0 {
			t.Errorf("compare(%q, %q) != 0", v, v)
		}
	}

	for _, a := range versions {
		for _, b := range versions {
			for _, c := range versions {
				if CompareStrings(a, b) <= 0 && CompareStrings(b, c) <= 0 && CompareStrings(a, c) > 0 {
					t.Errorf("not transitive: %q <= %q <= %q but %q > %q", a, b, c, a, c)
				}
			}
		}
	}
}

func TestComparePreferStable(t *testing.T) {
	if got := ComparePreferStable(Parse("1.2.0"), Parse("1.2.0-rc.1")); got != 1 {
		t.Errorf("stable vs prerelease = %d, want 1", got)
	}
	if got := ComparePreferStable(Parse("1.2.0-rc.1"), Parse("1.2.0")); got != -1 {
		t.Errorf("prerelease vs stable = %d, want -1", got)
	}
	if got := ComparePreferStable(Parse("1.3.0-rc.1"), Parse("1.2.0")); got != 1 {
		t.Errorf("newer prerelease vs older stable = %d, want 1", got)
	}
}

func TestMatchPolicies(t *testing.T) {
	const target = "1.20.4"

	tests := []struct {
		candidate string
		exact     bool
		minor     bool
		below     bool
	}{
		{"1.20.4", true, true, false},
		{"1.20.3", false, true, true},
		{"1.20.5", false, false, false},
		{"1.20", false, true, true},
		{"1.20.x", true, true, false},
		{"1.19.8", false, false, true},
		{"1.19.x", false, false, true},
		{"1.21.0", false, false, false},
		{"1.20.4-rc.2", true, true, false},
		{"0.9", false, false, true},
	}

	for _, tt := range tests {
		t.Run(tt.candidate, func(t *testing.T) {
			if got := ExactMatch(target, tt.candidate); got != tt.exact {
				t.Errorf("ExactMatch = %v, want %v", got, tt.exact)
			}
			if got := MinorMatch(target, tt.candidate); got != tt.minor {
				t.Errorf("MinorMatch = %v, want %v", got, tt.minor)
			}
			if got := BelowMatch(target, tt.candidate); got != tt.below {
				t.Errorf("BelowMatch = %v, want %v", got, tt.below)
			}
			if !Matches(PolicyAny, target, tt.candidate) {
				t.Error("PolicyAny should match everything")
			}
		})
	}
}

func TestExactImpliesMinor(t *testing.T) {
	targets := []string{"1.20.4", "1.20", "1.0.0", "2.1.0-rc.1"}
	candidates := []string{"1.20.4", "1.20.0", "1.20", "1.20.x", "1.x", "1.0.0", "2.1.0", "2.1", "2.1.0-pre", "3.0.0"}

	for _, target := range targets {
		for _, c := range candidates {
			if ExactMatch(target, c) && !MinorMatch(target, c) {
				t.Errorf("ExactMatch(%q, %q) without MinorMatch", target, c)
			}
		}
	}
}

func TestSupports(t *testing.T) {
	supported := []string{"1.19.8", "1.20.0"}

	if Supports(PolicyExact, "1.20.4", supported) {
		t.Error("exact should not match")
	}
	if !Supports(PolicyMinor, "1.20.4", supported) {
		t.Error("minor should match 1.20.0")
	}
	if !Declared("1.20.4", supported) {
		t.Error("Declared should hold for minor match")
	}
	if Declared("1.21.0", supported) {
		t.Error("Declared should not hold for a newer line")
	}
	if !Supports(PolicyAny, "9.9.9", nil) {
		t.Error("PolicyAny should match an empty list")
	}
}

func TestSplitJoinList(t *testing.T) {
	got := SplitList("1.20.0, 1.20.1,,  1.20.2 ")
	want := []string{"1.20.0", "1.20.1", "1.20.2"}
	if !slices.Equal(got, want) {
		t.Errorf("SplitList = %v, want %v", got, want)
	}
	if JoinList(want) != "1.20.0, 1.20.1, 1.20.2" {
		t.Errorf("JoinList = %q", JoinList(want))
	}
	if SplitList("") != nil {
		t.Error("SplitList(\"\") should be nil")
	}
}

func TestExpandRange(t *testing.T) {
	tests := []struct {
		in   string
		want []string
	}{
		{"1.19.0 - 1.19.3", []string{"1.19.0", "1.19.1", "1.19.2", "1.19.3"}},
		{"1.20.4", []string{"1.20.4"}},
		{"1.18.0 - 1.19.0", []string{"1.18.0 - 1.19.0"}},
		{"1.19.5 - 1.19.2", []string{"1.19.5 - 1.19.2"}},
	}

	for _, tt := range tests {
		if got := ExpandRange(tt.in); !slices.Equal(got, tt.want) {
			t.Errorf("ExpandRange(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestPolicyString(t *testing.T) {
	for p, want := range map[Policy]string{PolicyExact: "exact", PolicyMinor: "minor", PolicyBelow: "below", PolicyAny: "any"} {
		if p.String() != want {
			t.Errorf("%d.String() = %q, want %q", int(p), p.String(), want)
		}
	}
}
