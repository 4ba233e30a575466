package moddb

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"slices"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/matzehuels/modsync/pkg/cache"
	"github.com/matzehuels/modsync/pkg/integrations"
)

func fixture(t *testing.T) []byte {
	t.Helper()
	data, err := os.ReadFile("testdata/modpage.html")
	if err != nil {
		t.Fatal(err)
	}
	return data
}

func TestParse(t *testing.T) {
	f, _ := os.Open("testdata/modpage.html")
	defer f.Close()

	listing, err := Parse("https://mods.example.com/show/mod/42?tab=files", f, 10)
	if err != nil {
		t.Fatal(err)
	}
	if listing.Title != "Better Ruins" {
		t.Errorf("Title = %q", listing.Title)
	}
	if len(listing.Releases) != 3 {
		t.Fatalf("got %d releases, want 3", len(listing.Releases))
	}

	r := listing.Releases[0]
	if r.Version != "1.2.0" {
		t.Errorf("Version = %q", r.Version)
	}
	if want := []string{"1.20.0", "1.20.1", "1.20.2", "1.19.8"}; !slices.Equal(r.GameVersions, want) {
		t.Errorf("GameVersions = %v, want %v", r.GameVersions, want)
	}
	if r.Changelog != "Added new ruins\nFixed a crash on world load" {
		t.Errorf("Changelog = %q", r.Changelog)
	}
	if r.ReleaseDate != "2024-03-01" {
		t.Errorf("ReleaseDate = %q", r.ReleaseDate)
	}
	if r.DownloadURL != "https://mods.example.com/download?fileid=300" {
		t.Errorf("DownloadURL = %q", r.DownloadURL)
	}

	rc := listing.Releases[1]
	if rc.Version != "1.1.0-rc.1" || !rc.Prerelease() {
		t.Errorf("prerelease row: %+v", rc)
	}
	if !slices.Equal(rc.GameVersions, []string{"1.19.8"}) {
		t.Errorf("text game versions = %v", rc.GameVersions)
	}
	if rc.DownloadURL != "https://cdn.example.com/files/betterruins_1.1.0-rc.1.zip" {
		t.Errorf("absolute href changed: %q", rc.DownloadURL)
	}

	old := listing.Releases[2]
	if old.DownloadURL != "" || !slices.Equal(old.GameVersions, []string{"1.18.15"}) {
		t.Errorf("last row: %+v", old)
	}
}

func TestParseRecentWindow(t *testing.T) {
	listing, err := Parse("https://mods.example.com/show/mod/42", strings.NewReader(string(fixture(t))), 2)
	if err != nil {
		t.Fatal(err)
	}
	if len(listing.Releases) != 2 {
		t.Errorf("got %d releases, want 2", len(listing.Releases))
	}
}

func TestParseEmptyPage(t *testing.T) {
	listing, err := Parse("https://mods.example.com/x", strings.NewReader("<html><body></body></html>"), 10)
	if err != nil {
		t.Fatal(err)
	}
	if listing.Title != "" || len(listing.Releases) != 0 {
		t.Errorf("listing = %+v", listing)
	}
}

func TestClientFetch(t *testing.T) {
	page := fixture(t)
	var hits atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/show/mod/42":
			hits.Add(1)
			if ua := r.Header.Get("User-Agent"); !strings.HasPrefix(ua, "modsync/") {
				t.Errorf("User-Agent = %q", ua)
			}
			w.Write(page)
		case "/download":
			w.Write([]byte("PK-archive"))
		default:
			http.NotFound(w, r)
		}
	}))
	defer server.Close()

	fc, _ := cache.NewFileCache(t.TempDir())
	client := NewClient(fc, time.Hour, 10)
	ctx := context.Background()

	listing, err := client.FetchListing(ctx, server.URL+"/show/mod/42#files", false)
	if err != nil {
		t.Fatal(err)
	}
	if got := listing.Releases[0].DownloadURL; got != server.URL+"/download?fileid=300" {
		t.Errorf("DownloadURL = %q", got)
	}

	if _, err := client.FetchListing(ctx, server.URL+"/show/mod/42", false); err != nil {
		t.Fatal(err)
	}
	if hits.Load() != 1 {
		t.Errorf("cached listing refetched: hits = %d", hits.Load())
	}
	if _, err := client.Fetch(ctx, server.URL+"/show/mod/42"); err != nil {
		t.Fatal(err)
	}
	if hits.Load() != 2 {
		t.Errorf("Fetch should bypass the cache: hits = %d", hits.Load())
	}

	data, err := client.Download(ctx, listing.Releases[0].DownloadURL)
	if err != nil || string(data) != "PK-archive" {
		t.Errorf("Download = %q, %v", data, err)
	}
}

func TestClientFetchNotFound(t *testing.T) {
	server := httptest.NewServer(http.NotFoundHandler())
	defer server.Close()

	_, err := NewClient(nil, 0, 0).Fetch(context.Background(), server.URL+"/show/mod/missing")
	if !errors.Is(err, integrations.ErrNotFound) {
		t.Errorf("err = %v, want ErrNotFound", err)
	}
}
