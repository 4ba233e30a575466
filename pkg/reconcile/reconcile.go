package reconcile

import (
	"cmp"
	"context"
	"io"
	"slices"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"

	"github.com/matzehuels/modsync/pkg/deps"
	"github.com/matzehuels/modsync/pkg/errors"
	"github.com/matzehuels/modsync/pkg/manifest"
	"github.com/matzehuels/modsync/pkg/mods"
	"github.com/matzehuels/modsync/pkg/observability"
	"github.com/matzehuels/modsync/pkg/selector"
	"github.com/matzehuels/modsync/pkg/version"
)

const (
	DefaultStaleAfter    = 23 * time.Hour
	DefaultFetchDelay    = time.Second
	DefaultDownloadDelay = 5 * time.Second
)

// Fetcher returns the remote listing of a mod page.
type Fetcher interface {
	Fetch(ctx context.Context, pageURL string) (*mods.Listing, error)
}

// Downloader returns the bytes of a release archive.
type Downloader interface {
	Download(ctx context.Context, fileURL string) ([]byte, error)
}

// Store is the local archive directory.
type Store interface {
	List() ([]string, error)
	Has(id string) bool
	Write(id string, data []byte) error
	Remove(id string) error
}

// Options tunes a run.
type Options struct {
	// GameVersion is the running server version, e.g. "1.20.4".
	GameVersion string
	// StaleAfter is how long a resolved mod is trusted before it is
	// fetched again. Zero disables the window.
	StaleAfter time.Duration
	// FetchDelay and DownloadDelay pace remote access. Zero disables them.
	FetchDelay    time.Duration
	DownloadDelay time.Duration
	PreferStable  bool
}

// Reconciler runs one synchronization pass at a time. Runs must not
// overlap: the manifest and the archive directory are owned by the run.
type Reconciler struct {
	ManifestPath string
	Archives     Store
	Fetcher      Fetcher
	Downloader   Downloader
	Logger       *log.Logger
	Options      Options

	// Now and Sleep are replaced in tests.
	Now   func() time.Time
	Sleep func(ctx context.Context, d time.Duration) error
}

// New creates a Reconciler with default clock and pacing.
func New(manifestPath string, archives Store, fetcher Fetcher, downloader Downloader, logger *log.Logger, opts Options) *Reconciler {
	return &Reconciler{
		ManifestPath: manifestPath,
		Archives:     archives,
		Fetcher:      fetcher,
		Downloader:   downloader,
		Logger:       logger,
		Options:      opts,
	}
}

type state int

const (
	stateResolved state = iota
	stateCached
	stateDisabled
	stateFailed
)

type outcome struct {
	node  *deps.Node
	state state
	res   selector.Result
}

func (o outcome) title() string {
	switch {
	case o.res.Title != "":
		return o.res.Title
	case o.node.Title != "":
		return o.node.Title
	default:
		return o.node.ID
	}
}

// Run performs a full pass: resolve, fetch, select, download, rewrite the
// manifest, remove orphaned and disabled archives, and report.
//
// Per-mod failures are logged and reported as skipped. Errors classified
// fatal by [errors.IsFatal] (an unreadable or unwritable manifest, a failing
// archive directory) and cancellation abort the run before the manifest is
// rewritten.
func (r *Reconciler) Run(ctx context.Context) (rep *Report, err error) {
	opts := r.Options
	now := r.now()
	runID := uuid.NewString()
	logger := r.logger().With("run", runID[:8])
	hooks := observability.Reconcile()

	rep = &Report{RunID: runID, GameVersion: opts.GameVersion, Started: now}
	defer func() {
		rep.Finished = r.now()
		hooks.OnRunComplete(ctx, runID, rep.Finished.Sub(rep.Started), err)
	}()

	if opts.GameVersion == "" {
		return rep, errors.New(errors.ErrCodeInvalidConfig, "game version is not set")
	}

	m, err := manifest.Load(r.ManifestPath)
	if err != nil {
		return rep, err
	}
	g := deps.Resolve(m)
	hooks.OnRunStart(ctx, runID, g.Len())
	logger.Info("resolved manifest", "manual", countManual(g), "total", g.Len(), "game", opts.GameVersion)
	if err := g.DAG().Validate(); err != nil {
		logger.Warn("mod requirements form a cycle", "err", err)
	}

	outcomes, err := r.resolve(ctx, logger, g, opts, now)
	if err != nil {
		return rep, err
	}

	slices.SortStableFunc(outcomes, func(a, b outcome) int {
		return cmp.Or(
			cmp.Compare(strings.ToLower(a.title()), strings.ToLower(b.title())),
			cmp.Compare(a.node.ID, b.node.ID),
		)
	})

	next, err := r.apply(ctx, logger, outcomes, opts, now, rep)
	if err != nil {
		return rep, err
	}

	r.cleanup(ctx, logger, g, outcomes, rep)

	if err := manifest.Save(r.ManifestPath, next); err != nil {
		return rep, err
	}
	logger.Debug("manifest written", "path", r.ManifestPath, "entries", len(next))

	saved, err := manifest.Load(r.ManifestPath)
	if err != nil {
		return rep, err
	}
	rep.Mismatched = mismatches(saved, opts.GameVersion)

	logger.Info("run complete",
		"installed", len(rep.Installed),
		"updated", len(rep.Updated),
		"uninstalled", len(rep.Uninstalled),
		"deleted", len(rep.Deleted),
		"skipped", len(rep.Skipped),
		"mismatched", len(rep.Mismatched))
	return rep, nil
}

// resolve fetches every stale, enabled node in expansion order and selects
// its target. Fetches are strictly sequential with a fixed pause between
// them.
func (r *Reconciler) resolve(ctx context.Context, logger *log.Logger, g *deps.Graph, opts Options, now time.Time) ([]outcome, error) {
	hooks := observability.Reconcile()
	sel := selector.Options{GameVersion: opts.GameVersion, PreferStable: opts.PreferStable}

	var (
		out     []outcome
		fetched bool
	)
	for _, n := range g.Nodes() {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		switch {
		case n.Disabled:
			out = append(out, outcome{node: n, state: stateDisabled})
			continue
		case n.Fresh(now, opts.StaleAfter):
			logger.Debug("within staleness window", "mod", n.ID)
			out = append(out, outcome{node: n, state: stateCached})
			continue
		}

		if fetched {
			if err := r.sleep(ctx, opts.FetchDelay); err != nil {
				return nil, err
			}
		}
		fetched = true

		start := time.Now()
		listing, err := r.Fetcher.Fetch(ctx, n.URL)
		hooks.OnFetch(ctx, n.ID, time.Since(start), err)
		if err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			err = errors.Wrap(errors.ErrCodeFetch, err, "fetch %s", n.ID)
			logger.Warn("fetch failed", "mod", n.ID, "url", n.URL, "err", err)
			out = append(out, outcome{node: n, state: stateFailed, res: selector.Result{Node: n, Title: n.Title}})
			continue
		}

		res := selector.Select(n, listing, sel)
		if res.LockMissing {
			logger.Warn("locked version not found", "mod", n.ID, "lock", n.LockToVersion)
		}
		target := ""
		if res.Target != nil {
			target = res.Target.Version
		}
		logger.Debug("selected", "mod", n.ID, "current", n.CurrentVersion, "target", target, "action", res.Action)
		out = append(out, outcome{node: n, state: stateResolved, res: res})
	}
	return out, nil
}

// apply walks outcomes in title order and builds the next manifest,
// downloading archives for updates.
func (r *Reconciler) apply(ctx context.Context, logger *log.Logger, outcomes []outcome, opts Options, now time.Time, rep *Report) (manifest.Manifest, error) {
	next := make(manifest.Manifest, len(outcomes))
	for _, o := range outcomes {
		n := o.node
		switch o.state {
		case stateDisabled:
			next[n.ID] = n.Entry().Stripped()
			continue
		case stateCached:
			rep.Cached = append(rep.Cached, Item{ID: n.ID, Title: o.title()})
			next[n.ID] = n.Entry().Touched(now)
			continue
		case stateFailed:
			rep.Skipped = append(rep.Skipped, Issue{ID: n.ID, Title: o.title(), Reason: "fetch failed"})
			next[n.ID] = n.Entry()
			continue
		}

		res := o.res
		if res.LockMissing {
			rep.Skipped = append(rep.Skipped, Issue{ID: n.ID, Title: o.title(),
				Reason: "locked version " + n.LockToVersion + " not found"})
		}

		if res.Action != selector.ActionUpdate {
			e := n.Entry()
			e.Title = o.title()
			next[n.ID] = e.Touched(now)
			rep.UpToDate = append(rep.UpToDate, Item{ID: n.ID, Title: o.title(), Version: n.CurrentVersion})
			continue
		}

		entry, err := r.install(ctx, logger, o, opts)
		if err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			if errors.IsFatal(err) {
				return nil, err
			}
			logger.Warn("update skipped", "mod", n.ID, "err", err)
			rep.Skipped = append(rep.Skipped, Issue{ID: n.ID, Title: o.title(), Reason: errors.UserMessage(err)})
			next[n.ID] = n.Entry()
			continue
		}
		entry.LastUpdated = &now
		next[n.ID] = entry

		change := Change{ID: n.ID, Title: o.title(), From: n.CurrentVersion, To: res.Target.Version, Changelog: res.Changelog}
		if res.Installed() {
			rep.Updated = append(rep.Updated, change)
		} else {
			rep.Installed = append(rep.Installed, change)
		}
	}
	return next, nil
}

func (r *Reconciler) install(ctx context.Context, logger *log.Logger, o outcome, opts Options) (manifest.Entry, error) {
	n, target := o.node, o.res.Target
	if target.DownloadURL == "" {
		return manifest.Entry{}, errors.New(errors.ErrCodeDownload, "no download url for %s %s", n.ID, target.Version)
	}

	logger.Info("downloading", "mod", n.ID, "title", o.title(), "version", target.Version)
	start := time.Now()
	data, err := r.Downloader.Download(ctx, target.DownloadURL)
	observability.Reconcile().OnDownload(ctx, n.ID, target.Version, len(data), time.Since(start), err)
	if err != nil {
		return manifest.Entry{}, errors.Wrap(errors.ErrCodeDownload, err, "download %s %s", n.ID, target.Version)
	}
	if err := r.Archives.Write(n.ID, data); err != nil {
		return manifest.Entry{}, err
	}
	if err := r.sleep(ctx, opts.DownloadDelay); err != nil {
		return manifest.Entry{}, err
	}

	e := n.Entry()
	e.Title = o.title()
	e.Version = target.Version
	e.GameVersion = version.JoinList(target.GameVersions)
	return e, nil
}

// cleanup removes archives nothing requires anymore and archives of
// disabled mods.
func (r *Reconciler) cleanup(ctx context.Context, logger *log.Logger, g *deps.Graph, outcomes []outcome, rep *Report) {
	hooks := observability.Reconcile()

	stored, err := r.Archives.List()
	if err != nil {
		logger.Error("listing archives failed, skipping orphan cleanup", "err", err)
	}
	for _, id := range stored {
		if !g.IsOrphan(id) {
			continue
		}
		if err := r.Archives.Remove(id); err != nil {
			logger.Error("removing orphaned archive", "mod", id, "err", err)
			continue
		}
		logger.Info("deleted orphan", "mod", id)
		hooks.OnDelete(ctx, id, "orphan")
		rep.Deleted = append(rep.Deleted, id)
	}

	for _, o := range outcomes {
		if o.state != stateDisabled || !r.Archives.Has(o.node.ID) {
			continue
		}
		if err := r.Archives.Remove(o.node.ID); err != nil {
			logger.Error("removing disabled archive", "mod", o.node.ID, "err", err)
			continue
		}
		logger.Info("uninstalled disabled mod", "mod", o.node.ID)
		hooks.OnDelete(ctx, o.node.ID, "disabled")
		rep.Uninstalled = append(rep.Uninstalled, Item{ID: o.node.ID, Title: o.title(), Version: o.node.CurrentVersion})
	}
}

func mismatches(m manifest.Manifest, gameVersion string) []Mismatch {
	var out []Mismatch
	for _, id := range m.IDs() {
		e := m[id]
		if e.Disabled || e.GameVersion == "" {
			continue
		}
		if !version.Declared(gameVersion, version.SplitList(e.GameVersion)) {
			out = append(out, Mismatch{ID: id, Title: cmp.Or(e.Title, id), Version: e.Version, Supported: e.GameVersion})
		}
	}
	return out
}

func countManual(g *deps.Graph) int {
	n := 0
	for _, node := range g.Nodes() {
		if !node.Auto {
			n++
		}
	}
	return n
}

func (r *Reconciler) now() time.Time {
	if r.Now != nil {
		return r.Now()
	}
	return time.Now().UTC()
}

func (r *Reconciler) logger() *log.Logger {
	if r.Logger != nil {
		return r.Logger
	}
	return log.NewWithOptions(io.Discard, log.Options{})
}

func (r *Reconciler) sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	if r.Sleep != nil {
		return r.Sleep(ctx, d)
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
