package cli

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/matzehuels/modsync/pkg/buildinfo"
	apperrors "github.com/matzehuels/modsync/pkg/errors"
	"github.com/matzehuels/modsync/pkg/manifest"
	"github.com/matzehuels/modsync/pkg/mods"
	"github.com/matzehuels/modsync/pkg/observability"
	"github.com/matzehuels/modsync/pkg/reconcile"
)

const (
	shutdownTimeout = 5 * time.Second
	defaultInterval = 24 * time.Hour
)

// serveCommand creates the serve command.
func (c *CLI) serveCommand() *cobra.Command {
	var (
		addr     string
		interval time.Duration
		noNotify bool
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Reconcile periodically and serve a status API",
		Long: `Serve runs a reconcile pass immediately and then once per interval. Passes
never overlap: a tick that arrives while a pass is running is dropped.

Every pass refreshes the timestamp of mods inside the staleness window, so
the interval must not be shorter than the window (--stale-hours, default
23h). A shorter interval would keep every mod fresh and never look for
updates again; it is rejected.

The status API exposes:
  GET /healthz        liveness
  GET /api/status     run and cache counters, the build stamp and the next
                      scheduled pass
  GET /api/report     the report of the last successful pass
  GET /api/mods       the current manifest
  GET /api/mods/{id}  a single manifest entry
  GET /api/mods/{id}/releases
                      the remote releases of a mod, read through the page
                      cache (?refresh=true bypasses it)`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			logger := loggerFromContext(ctx)

			cfg, err := c.loadConfig(cmd)
			if err != nil {
				return err
			}
			if err := cfg.Validate(); err != nil {
				return err
			}
			if err := checkInterval(interval, cfg.StaleAfter()); err != nil {
				return err
			}

			backend, err := newCache(cfg, false)
			if err != nil {
				return err
			}
			defer backend.Close()

			counters := &observability.Counters{}
			observability.SetReconcileHooks(counters)
			observability.SetCacheHooks(counters)
			observability.SetHTTPHooks(counters)
			defer observability.Reset()

			status := newStatusServer(cfg.Manifest, counters)
			status.listings = newModDB(cfg, backend)
			srv := &http.Server{Addr: addr, Handler: status.routes(), ReadHeaderTimeout: 10 * time.Second}

			g, gctx := errgroup.WithContext(ctx)
			g.Go(func() error {
				logger.Info("status API listening", "addr", addr)
				if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
					return err
				}
				return nil
			})
			g.Go(func() error {
				schedule(gctx, interval, func(ctx context.Context) {
					status.setNext(time.Now().Add(interval))
					rep, err := reconcileOnce(ctx, cfg, logger, !noNotify)
					status.record(rep, err)
					if err != nil && ctx.Err() == nil {
						logger.Error("reconcile failed", "err", err)
					}
				})

				shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
				defer cancel()
				if err := srv.Shutdown(shutdownCtx); err != nil {
					logger.Warn("status API shutdown", "err", err)
				}
				return nil
			})
			if err := g.Wait(); err != nil {
				return err
			}
			return ctx.Err()
		},
	}

	addReconcileFlags(cmd.Flags())
	cmd.Flags().StringVar(&addr, "addr", ":8080", "status API listen address")
	cmd.Flags().DurationVar(&interval, "interval", defaultInterval, "time between reconcile passes (at least the staleness window)")
	cmd.Flags().BoolVar(&noNotify, "no-notify", false, "do not send reports to notification destinations")

	return cmd
}

// checkInterval rejects intervals that fall inside the staleness window.
func checkInterval(interval, staleAfter time.Duration) error {
	if interval <= 0 {
		return apperrors.New(apperrors.ErrCodeInvalidConfig, "interval must be positive, got %s", interval)
	}
	if interval < staleAfter {
		return apperrors.New(apperrors.ErrCodeInvalidConfig,
			"interval %s is shorter than the staleness window %s; mods would never be refetched", interval, staleAfter)
	}
	return nil
}

// schedule calls run immediately and then on every tick until ctx is done.
// run executes on the calling goroutine, so passes never overlap; ticks
// that fire during a pass are coalesced by the ticker.
func schedule(ctx context.Context, interval time.Duration, run func(context.Context)) {
	if ctx.Err() != nil {
		return
	}
	run(ctx)

	t := time.NewTicker(interval)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			run(ctx)
		}
	}
}

// =============================================================================
// Status API
// =============================================================================

// listingFetcher reads a mod page, optionally bypassing the page cache.
type listingFetcher interface {
	FetchListing(ctx context.Context, pageURL string, refresh bool) (*mods.Listing, error)
}

type statusServer struct {
	manifestPath string
	counters     *observability.Counters
	listings     listingFetcher

	mu      sync.RWMutex
	report  *reconcile.Report
	lastErr string
	next    time.Time
}

func newStatusServer(manifestPath string, counters *observability.Counters) *statusServer {
	return &statusServer{manifestPath: manifestPath, counters: counters}
}

func (s *statusServer) record(rep *reconcile.Report, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err != nil {
		s.lastErr = err.Error()
		return
	}
	s.report, s.lastErr = rep, ""
}

func (s *statusServer) setNext(t time.Time) {
	s.mu.Lock()
	s.next = t
	s.mu.Unlock()
}

func (s *statusServer) routes() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(middleware.SetHeader("Content-Type", "application/json"))

	r.Get("/healthz", s.handleHealth)
	r.Route("/api", func(r chi.Router) {
		r.Get("/status", s.handleStatus)
		r.Get("/report", s.handleReport)
		r.Get("/mods", s.handleMods)
		r.Get("/mods/{id}", s.handleMod)
		r.Get("/mods/{id}/releases", s.handleReleases)
	})
	return r
}

func (s *statusServer) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

type statusResponse struct {
	observability.Snapshot
	Build     buildinfo.Info `json:"build"`
	NextRun   time.Time      `json:"nextRun,omitzero"`
	LastError string         `json:"lastError,omitempty"`
}

func (s *statusServer) handleStatus(w http.ResponseWriter, r *http.Request) {
	s.mu.RLock()
	resp := statusResponse{Build: buildinfo.Get(), NextRun: s.next, LastError: s.lastErr}
	s.mu.RUnlock()
	if s.counters != nil {
		resp.Snapshot = s.counters.Snapshot()
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *statusServer) handleReport(w http.ResponseWriter, r *http.Request) {
	s.mu.RLock()
	rep := s.report
	s.mu.RUnlock()
	if rep == nil {
		writeError(w, http.StatusNotFound, "no run has completed yet")
		return
	}
	writeJSON(w, http.StatusOK, rep)
}

type modResponse struct {
	ID string `json:"id"`
	manifest.Entry
}

func (s *statusServer) handleMods(w http.ResponseWriter, r *http.Request) {
	m, err := manifest.Load(s.manifestPath)
	if err != nil {
		writeError(w, http.StatusInternalServerError, apperrors.UserMessage(err))
		return
	}
	out := make([]modResponse, 0, len(m))
	for _, id := range m.IDs() {
		out = append(out, modResponse{ID: id, Entry: m[id]})
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *statusServer) handleMod(w http.ResponseWriter, r *http.Request) {
	id, e, ok := s.lookup(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, modResponse{ID: id, Entry: e})
}

func (s *statusServer) handleReleases(w http.ResponseWriter, r *http.Request) {
	_, e, ok := s.lookup(w, r)
	if !ok {
		return
	}
	if s.listings == nil {
		writeError(w, http.StatusNotImplemented, "release lookup is not configured")
		return
	}
	refresh := r.URL.Query().Get("refresh") == "true"
	listing, err := s.listings.FetchListing(r.Context(), e.URL, refresh)
	if err != nil {
		writeError(w, http.StatusBadGateway, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, listing)
}

// lookup finds the manifest entry named by the id route parameter and
// writes the error response when there is none.
func (s *statusServer) lookup(w http.ResponseWriter, r *http.Request) (string, manifest.Entry, bool) {
	id := chi.URLParam(r, "id")
	m, err := manifest.Load(s.manifestPath)
	if err != nil {
		writeError(w, http.StatusInternalServerError, apperrors.UserMessage(err))
		return id, manifest.Entry{}, false
	}
	e, ok := m[id]
	if !ok {
		writeError(w, http.StatusNotFound, "unknown mod "+id)
		return id, manifest.Entry{}, false
	}
	return id, e, true
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Debug("write response", "err", err)
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
