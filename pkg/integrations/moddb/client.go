package moddb

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/url"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"github.com/matzehuels/modsync/pkg/cache"
	"github.com/matzehuels/modsync/pkg/integrations"
	"github.com/matzehuels/modsync/pkg/mods"
	"github.com/matzehuels/modsync/pkg/version"
)

// DefaultRecent is how many of the newest releases are read from a page.
const DefaultRecent = 10

// Client reads mod pages from the mod database and downloads their archives.
//
// All methods are safe for concurrent use by multiple goroutines.
type Client struct {
	*integrations.Client
	recent int
}

// NewClient creates a mod database client. Listings fetched through
// [Client.FetchListing] are cached in backend for cacheTTL; recent bounds
// the number of releases read per page (DefaultRecent when <= 0).
func NewClient(backend cache.Cache, cacheTTL time.Duration, recent int, opts ...integrations.Option) *Client {
	return NewClientWithHeaders(backend, cacheTTL, recent, nil, opts...)
}

// NewClientWithHeaders is NewClient with extra request headers. A
// User-Agent identifying modsync is added unless headers sets one.
func NewClientWithHeaders(backend cache.Cache, cacheTTL time.Duration, recent int, headers map[string]string, opts ...integrations.Option) *Client {
	h := map[string]string{"User-Agent": integrations.DefaultUserAgent()}
	for k, v := range headers {
		if v != "" {
			h[k] = v
		}
	}
	if recent <= 0 {
		recent = DefaultRecent
	}
	return &Client{
		Client: integrations.NewClient(backend, "moddb:", cacheTTL, h, opts...),
		recent: recent,
	}
}

// Fetch retrieves the listing for a mod page without consulting the cache.
// It is what a reconcile run uses.
func (c *Client) Fetch(ctx context.Context, pageURL string) (*mods.Listing, error) {
	return c.FetchListing(ctx, pageURL, true)
}

// FetchListing retrieves the title and the most recent releases of the mod
// at pageURL. If refresh is true the cache is bypassed.
//
// Returns [integrations.ErrNotFound] if the page does not exist and
// [integrations.ErrNetwork] for HTTP failures.
func (c *Client) FetchListing(ctx context.Context, pageURL string, refresh bool) (*mods.Listing, error) {
	pageURL = mods.NormalizeURL(pageURL)

	var listing mods.Listing
	err := c.Cached(ctx, pageURL, refresh, &listing, func() error {
		html, err := c.GetBytes(ctx, pageURL)
		if err != nil {
			if errors.Is(err, integrations.ErrNotFound) {
				return fmt.Errorf("%w: mod page %s", err, pageURL)
			}
			return err
		}
		l, err := Parse(pageURL, bytes.NewReader(html), c.recent)
		if err != nil {
			return err
		}
		listing = *l
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &listing, nil
}

// Download returns the raw bytes of a release archive.
func (c *Client) Download(ctx context.Context, fileURL string) ([]byte, error) {
	return c.GetBytes(ctx, fileURL)
}

// Parse extracts a listing from a mod page. Download links are resolved
// against pageURL. At most recent rows of the release table are read.
func Parse(pageURL string, r io.Reader, recent int) (*mods.Listing, error) {
	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return nil, fmt.Errorf("parse mod page: %w", err)
	}
	base, _ := url.Parse(pageURL)

	listing := &mods.Listing{
		Title: collapseSpace(doc.Find("span.title").First().Text()),
	}

	rows := doc.Find(`table[id="Connection types"] tbody tr`)
	rows.EachWithBreak(func(i int, row *goquery.Selection) bool {
		if recent > 0 && len(listing.Releases) >= recent {
			return false
		}
		if rel, ok := parseRow(row, base); ok {
			listing.Releases = append(listing.Releases, rel)
		}
		return true
	})
	return listing, nil
}

func parseRow(row *goquery.Selection, base *url.URL) (mods.Release, bool) {
	cells := row.Find("td")
	versionCell := cells.Eq(0)

	v, _, _ := strings.Cut(strings.TrimSpace(versionCell.Text()), "\n")
	v = strings.TrimPrefix(strings.TrimSpace(v), "v")
	if v == "" {
		return mods.Release{}, false
	}

	rel := mods.Release{
		Version:      v,
		GameVersions: gameVersions(cells.Eq(1)),
		ReleaseDate:  strings.TrimSpace(cells.Eq(3).Text()),
		Changelog:    cleanLines(versionCell.Find(".changelogtext").Text()),
	}
	if href, ok := cells.Eq(5).Find("a.downloadbutton").Attr("href"); ok && href != "" {
		rel.DownloadURL = resolve(base, href)
	}
	return rel, true
}

// gameVersions reads the supported versions from the tag tooltip when the
// page lists several, otherwise from the cell text.
func gameVersions(cell *goquery.Selection) []string {
	var raw []string
	if title, ok := cell.Find(".tag").Attr("title"); ok && strings.TrimSpace(title) != "" {
		raw = strings.Split(title, ",")
	} else {
		text := strings.TrimSpace(cell.Text())
		text = strings.TrimLeft(text, "#")
		if fields := strings.Fields(text); len(fields) > 0 {
			raw = []string{fields[0]}
		}
	}

	var out []string
	for _, r := range raw {
		r = strings.TrimPrefix(strings.TrimSpace(r), "v")
		if r == "" {
			continue
		}
		out = append(out, version.ExpandRange(r)...)
	}
	return out
}

func resolve(base *url.URL, href string) string {
	ref, err := url.Parse(strings.TrimSpace(href))
	if err != nil {
		return ""
	}
	if base == nil {
		return ref.String()
	}
	return base.ResolveReference(ref).String()
}

func cleanLines(s string) string {
	var lines []string
	for _, l := range strings.Split(s, "\n") {
		if l = strings.TrimSpace(l); l != "" {
			lines = append(lines, l)
		}
	}
	return strings.Join(lines, "\n")
}

func collapseSpace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
