package mods

import "testing"

func TestNormalizeURL(t *testing.T) {
	tests := map[string]string{
		"https://mods.example.org/show/mod/123?tab=files#top": "https://mods.example.org/show/mod/123",
		"https://mods.example.org/carryon#versions":           "https://mods.example.org/carryon",
		"https://mods.example.org/carryon":                    "https://mods.example.org/carryon",
		"  https://mods.example.org/a?b  ":                    "https://mods.example.org/a",
	}
	for in, want := range tests {
		if got := NormalizeURL(in); got != want {
			t.Errorf("NormalizeURL(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestIDFromURL(t *testing.T) {
	tests := map[string]string{
		"https://mods.example.org/carryon":           "carryon",
		"https://mods.example.org/carryon/":          "carryon",
		"https://mods.example.org/show/mod/42?x=1":   "42",
		"https://mods.example.org/primitivesurvival": "primitivesurvival",
	}
	for in, want := range tests {
		if got := IDFromURL(in); got != want {
			t.Errorf("IDFromURL(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestListingFind(t *testing.T) {
	l := &Listing{Releases: []Release{{Version: "1.1.0"}, {Version: "1.0.0"}}}
	if r, ok := l.Find("1.0.0"); !ok || r.Version != "1.0.0" {
		t.Errorf("Find(1.0.0) = %v, %v", r, ok)
	}
	if _, ok := l.Find("2.0.0"); ok {
		t.Error("Find(2.0.0) should miss")
	}
	var nilListing *Listing
	if _, ok := nilListing.Find("1.0.0"); ok {
		t.Error("nil listing should miss")
	}
}

func TestReleasePrerelease(t *testing.T) {
	if (Release{Version: "1.0.0"}).Prerelease() {
		t.Error("1.0.0 is stable")
	}
	if !(Release{Version: "1.0.0-rc.2"}).Prerelease() {
		t.Error("1.0.0-rc.2 is a prerelease")
	}
}
