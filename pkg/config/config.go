package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/matzehuels/modsync/pkg/errors"
	"github.com/matzehuels/modsync/pkg/integrations/moddb"
	"github.com/matzehuels/modsync/pkg/notify"
	"github.com/matzehuels/modsync/pkg/reconcile"
)

// AppName names the cache directory and the default user agent.
const AppName = "modsync"

// Defaults.
const (
	DefaultModsDir        = "/data/Mods"
	DefaultManifest       = "/configs/Mods.json"
	DefaultStaleHours     = 23
	DefaultRecentVersions = moddb.DefaultRecent
	DefaultFetchDelay     = reconcile.DefaultFetchDelay
	DefaultDownloadDelay  = reconcile.DefaultDownloadDelay
	DefaultHTTPTimeout    = 30 * time.Second
	DefaultCacheTTL       = time.Hour
	DefaultNotifyTitle    = "Mod update report"
)

// HTTP configures the remote client.
type HTTP struct {
	Timeout   time.Duration `mapstructure:"timeout"`
	Retries   int           `mapstructure:"retries"`
	UserAgent string        `mapstructure:"user_agent"`
}

// Notify configures report delivery.
type Notify struct {
	// Destinations are URLs understood by [notify.Parse]. Empty disables
	// notifications.
	Destinations []string `mapstructure:"destinations"`
	Title        string   `mapstructure:"title"`
}

// Config is the resolved runtime configuration.
type Config struct {
	GameVersion    string        `mapstructure:"game_version"`
	ModsDir        string        `mapstructure:"mods_dir"`
	Manifest       string        `mapstructure:"manifest"`
	StaleHours     float64       `mapstructure:"stale_hours"`
	RecentVersions int           `mapstructure:"recent_versions"`
	FetchDelay     time.Duration `mapstructure:"fetch_delay"`
	DownloadDelay  time.Duration `mapstructure:"download_delay"`
	PreferStable   bool          `mapstructure:"prefer_stable"`
	CacheDir       string        `mapstructure:"cache_dir"`
	CacheTTL       time.Duration `mapstructure:"cache_ttl"`
	HTTP           HTTP          `mapstructure:"http"`
	Notify         Notify        `mapstructure:"notify"`

	// File is the config file that was read, if any.
	File string `mapstructure:"-"`
}

// StaleAfter is the staleness window as a duration.
func (c *Config) StaleAfter() time.Duration {
	return time.Duration(c.StaleHours * float64(time.Hour))
}

// LoadOptions controls where configuration is read from.
type LoadOptions struct {
	// File is an explicit config file (TOML, YAML or JSON by extension).
	File string
	// Flags are bound on top of file and environment values. Only flags
	// listed in [FlagKeys] are considered, and only when set.
	Flags *pflag.FlagSet
}

// FlagKeys maps CLI flag names to configuration keys.
var FlagKeys = map[string]string{
	"game-version":   "game_version",
	"mods-dir":       "mods_dir",
	"manifest":       "manifest",
	"stale-hours":    "stale_hours",
	"recent":         "recent_versions",
	"fetch-delay":    "fetch_delay",
	"download-delay": "download_delay",
	"prefer-stable":  "prefer_stable",
	"cache-dir":      "cache_dir",
	"timeout":        "http.timeout",
	"retries":        "http.retries",
	"notify":         "notify.destinations",
}

// legacyEnv are the bare environment variables the container image has
// always used. MODSYNC_-prefixed variables work for every key.
var legacyEnv = map[string]string{
	"game_version": "GAME_VERSION",
	"mods_dir":     "MODS_DIR",
	"manifest":     "MODS_MANIFEST",
}

// Load resolves configuration from, in increasing precedence, defaults,
// the config file, environment variables and set flags.
func Load(opts LoadOptions) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix("MODSYNC")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	for key, env := range legacyEnv {
		if err := v.BindEnv(key, "MODSYNC_"+strings.ToUpper(key), env); err != nil {
			return nil, errors.Wrap(errors.ErrCodeInternal, err, "bind %s", env)
		}
	}

	if opts.File != "" {
		v.SetConfigFile(opts.File)
		if err := v.ReadInConfig(); err != nil {
			return nil, errors.Wrap(errors.ErrCodeInvalidConfig, err, "read config %s", opts.File)
		}
	}

	if opts.Flags != nil {
		var bindErr error
		opts.Flags.Visit(func(f *pflag.Flag) {
			if key, ok := FlagKeys[f.Name]; ok && bindErr == nil {
				bindErr = v.BindPFlag(key, f)
			}
		})
		if bindErr != nil {
			return nil, errors.Wrap(errors.ErrCodeInternal, bindErr, "bind flags")
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidConfig, err, "decode config")
	}
	cfg.File = v.ConfigFileUsed()
	cfg.Notify.Destinations = splitDestinations(cfg.Notify.Destinations)

	if cfg.CacheDir == "" {
		if dir, err := DefaultCacheDir(); err == nil {
			cfg.CacheDir = dir
		}
	}
	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("game_version", "")
	v.SetDefault("mods_dir", DefaultModsDir)
	v.SetDefault("manifest", DefaultManifest)
	v.SetDefault("stale_hours", DefaultStaleHours)
	v.SetDefault("recent_versions", DefaultRecentVersions)
	v.SetDefault("fetch_delay", DefaultFetchDelay)
	v.SetDefault("download_delay", DefaultDownloadDelay)
	v.SetDefault("prefer_stable", true)
	v.SetDefault("cache_dir", "")
	v.SetDefault("cache_ttl", DefaultCacheTTL)
	v.SetDefault("http.timeout", DefaultHTTPTimeout)
	v.SetDefault("http.retries", 0)
	v.SetDefault("http.user_agent", "")
	v.SetDefault("notify.destinations", []string{})
	v.SetDefault("notify.title", DefaultNotifyTitle)
}

// splitDestinations flattens comma-separated entries, as environment
// variables and repeated flags both end up here.
func splitDestinations(in []string) []string {
	var out []string
	for _, s := range in {
		for _, part := range strings.Split(s, ",") {
			if part = strings.TrimSpace(part); part != "" {
				out = append(out, part)
			}
		}
	}
	return out
}

// Validate checks the values a reconcile run depends on.
func (c *Config) Validate() error {
	switch {
	case strings.TrimSpace(c.GameVersion) == "":
		return errors.New(errors.ErrCodeInvalidConfig, "game version is required (GAME_VERSION or --game-version)")
	case c.ModsDir == "":
		return errors.New(errors.ErrCodeInvalidConfig, "mods dir is required")
	case c.Manifest == "":
		return errors.New(errors.ErrCodeInvalidConfig, "manifest path is required")
	case c.StaleHours < 0:
		return errors.New(errors.ErrCodeInvalidConfig, "stale_hours must not be negative, got %v", c.StaleHours)
	case c.RecentVersions < 1:
		return errors.New(errors.ErrCodeInvalidConfig, "recent_versions must be at least 1, got %d", c.RecentVersions)
	case c.FetchDelay < 0 || c.DownloadDelay < 0:
		return errors.New(errors.ErrCodeInvalidConfig, "delays must not be negative")
	case c.HTTP.Timeout <= 0:
		return errors.New(errors.ErrCodeInvalidConfig, "http.timeout must be positive, got %s", c.HTTP.Timeout)
	case c.HTTP.Retries < 0:
		return errors.New(errors.ErrCodeInvalidConfig, "http.retries must not be negative, got %d", c.HTTP.Retries)
	}
	if _, err := notify.ParseAll(c.Notify.Destinations, nil); err != nil {
		return err
	}
	return nil
}

// DefaultCacheDir returns the XDG cache directory (~/.cache/modsync).
func DefaultCacheDir() (string, error) {
	if cacheHome := os.Getenv("XDG_CACHE_HOME"); cacheHome != "" {
		return filepath.Join(cacheHome, AppName), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("resolve home dir: %w", err)
	}
	return filepath.Join(home, ".cache", AppName), nil
}
