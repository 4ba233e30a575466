// Package cli implements the modsync command-line interface.
//
// The commands are:
//   - run: reconcile the mod directory with the manifest once
//   - serve: reconcile periodically and expose a status API
//   - graph: export the requirement graph as DOT or SVG
//   - versions: list the remote releases of a mod
//   - pin, unpin: lock a mod to a version or release the lock
//   - cache: manage the response cache used by versions
//
// All commands support --verbose (-v) for debug logging. The logger travels
// through context.Context (see withLogger).
package cli

import (
	"io"
	"os"

	"github.com/charmbracelet/log"
	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/matzehuels/modsync/pkg/buildinfo"
	"github.com/matzehuels/modsync/pkg/cache"
	"github.com/matzehuels/modsync/pkg/config"
	"github.com/matzehuels/modsync/pkg/integrations"
	"github.com/matzehuels/modsync/pkg/integrations/moddb"
	"github.com/matzehuels/modsync/pkg/notify"
	"github.com/matzehuels/modsync/pkg/reconcile"
	"github.com/matzehuels/modsync/pkg/storage"
)

// appName is the binary name used in help text.
const appName = config.AppName

// Log levels exported for use in main.go.
const (
	LogDebug = log.DebugLevel
	LogInfo  = log.InfoLevel
)

// =============================================================================
// CLI - Central CLI State
// =============================================================================

// CLI holds shared state for all commands.
type CLI struct {
	Logger *log.Logger

	configFile string
}

// New creates a new CLI instance with a default logger.
func New(w io.Writer, level log.Level) *CLI {
	return &CLI{Logger: newLogger(w, level)}
}

// SetLogLevel updates the logger's level.
func (c *CLI) SetLogLevel(level log.Level) {
	c.Logger.SetLevel(level)
}

// RootCommand creates the root cobra command with all subcommands registered.
func (c *CLI) RootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:   appName,
		Short: "modsync keeps a game server's mod directory in sync with a manifest",
		Long: `modsync resolves the mods listed in a manifest together with everything they
require, picks the best release for the running game version, downloads what
changed and removes what is no longer needed.`,
		Version:      buildinfo.Version,
		SilenceUsage: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			cmd.SetContext(withLogger(cmd.Context(), c.Logger))
		},
	}

	root.SetVersionTemplate(buildinfo.Template())

	pf := root.PersistentFlags()
	pf.StringVar(&c.configFile, "config", "", "config file (TOML, YAML or JSON)")
	pf.String("game-version", "", "running game version (env GAME_VERSION)")
	pf.String("mods-dir", "", "archive directory (env MODS_DIR)")
	pf.String("manifest", "", "manifest file (env MODS_MANIFEST)")
	pf.String("cache-dir", "", "response cache directory")

	root.AddCommand(c.runCommand())
	root.AddCommand(c.serveCommand())
	root.AddCommand(c.graphCommand())
	root.AddCommand(c.versionsCommand())
	root.AddCommand(c.pinCommand())
	root.AddCommand(c.unpinCommand())
	root.AddCommand(c.cacheCommand())
	root.AddCommand(c.completionCommand())

	return root
}

// addReconcileFlags registers the flags shared by run and serve.
func addReconcileFlags(fs *pflag.FlagSet) {
	fs.Float64("stale-hours", 0, "hours a resolved mod is trusted before refetching (default 23)")
	fs.Int("recent", 0, "number of newest releases read per mod page (default 10)")
	fs.Duration("fetch-delay", 0, "pause between mod page fetches (default 1s)")
	fs.Duration("download-delay", 0, "pause after each download (default 5s)")
	fs.Bool("prefer-stable", true, "prefer stable releases over prereleases")
	fs.Duration("timeout", 0, "HTTP request timeout (default 30s)")
	fs.Int("retries", 0, "retries for transient HTTP failures")
	fs.StringSlice("notify", nil, "notification destination URL (repeatable)")
}

// =============================================================================
// Factories
// =============================================================================

// loadConfig resolves configuration for cmd from file, environment and the
// flags set on the command line.
func (c *CLI) loadConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg, err := config.Load(config.LoadOptions{File: c.configFile, Flags: cmd.Flags()})
	if err != nil {
		return nil, err
	}
	if cfg.File != "" {
		loggerFromContext(cmd.Context()).Debug("loaded config", "file", cfg.File)
	}
	return cfg, nil
}

func clientOptions(cfg *config.Config) []integrations.Option {
	return []integrations.Option{
		integrations.WithTimeout(cfg.HTTP.Timeout),
		integrations.WithRetries(cfg.HTTP.Retries),
	}
}

func newModDB(cfg *config.Config, backend cache.Cache) *moddb.Client {
	headers := map[string]string{"User-Agent": cfg.HTTP.UserAgent}
	return moddb.NewClientWithHeaders(backend, cfg.CacheTTL, cfg.RecentVersions, headers, clientOptions(cfg)...)
}

func newCache(cfg *config.Config, noCache bool) (cache.Cache, error) {
	if noCache || cfg.CacheDir == "" {
		return cache.NewNullCache(), nil
	}
	return cache.NewFileCache(cfg.CacheDir)
}

// newReconciler wires a reconciler to the configured directories. Runs
// always read pages fresh, so no response cache is attached.
func newReconciler(cfg *config.Config, logger *log.Logger) (*reconcile.Reconciler, error) {
	archives, err := storage.Open(cfg.ModsDir)
	if err != nil {
		return nil, err
	}
	client := newModDB(cfg, nil)
	return reconcile.New(cfg.Manifest, archives, client, client, logger, reconcile.Options{
		GameVersion:   cfg.GameVersion,
		StaleAfter:    cfg.StaleAfter(),
		FetchDelay:    cfg.FetchDelay,
		DownloadDelay: cfg.DownloadDelay,
		PreferStable:  cfg.PreferStable,
	}), nil
}

func newNotifier(cfg *config.Config, logger *log.Logger) (*notify.Session, error) {
	headers := map[string]string{"User-Agent": integrations.DefaultUserAgent()}
	if cfg.HTTP.UserAgent != "" {
		headers["User-Agent"] = cfg.HTTP.UserAgent
	}
	client := integrations.NewClient(nil, "", 0, headers, clientOptions(cfg)...)
	dests, err := notify.ParseAll(cfg.Notify.Destinations, client)
	if err != nil {
		return nil, err
	}
	return notify.NewSession(logger, cfg.Notify.Title, dests...), nil
}

// isTerminal reports whether f is attached to a terminal.
func isTerminal(f *os.File) bool {
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}
