package cli

import (
	"cmp"
	"context"
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/matzehuels/modsync/pkg/config"
	"github.com/matzehuels/modsync/pkg/deps"
	"github.com/matzehuels/modsync/pkg/errors"
	"github.com/matzehuels/modsync/pkg/manifest"
	"github.com/matzehuels/modsync/pkg/mods"
	"github.com/matzehuels/modsync/pkg/selector"
	"github.com/matzehuels/modsync/pkg/version"
)

// versionsCommand creates the versions command.
func (c *CLI) versionsCommand() *cobra.Command {
	var (
		refresh bool
		noCache bool
	)

	cmd := &cobra.Command{
		Use:   "versions <mod-id|url>",
		Short: "List the remote releases of a mod",
		Long: `Versions fetches a mod page and lists its most recent releases with the
compatibility tier each one falls into for the configured game version. The
release a run would install is marked with an arrow.

Pages are cached; use --refresh to bypass the cache.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			cfg, err := c.loadConfig(cmd)
			if err != nil {
				return err
			}
			node, err := lookupMod(cfg, args[0])
			if err != nil {
				return err
			}

			listing, err := fetchListing(ctx, cfg, node.URL, refresh, noCache)
			if err != nil {
				return err
			}
			if len(listing.Releases) == 0 {
				printWarning("No releases found for %s", node.ID)
				return nil
			}

			var sel selector.Result
			if cfg.GameVersion != "" {
				sel = selector.Select(node, listing, selector.Options{GameVersion: cfg.GameVersion, PreferStable: cfg.PreferStable})
			}

			w := cmd.OutOrStdout()
			printKeyValue(w, "Mod", cmp.Or(listing.Title, node.Title, node.ID))
			printKeyValue(w, "URL", node.URL)
			if cfg.GameVersion != "" {
				printKeyValue(w, "Game", cfg.GameVersion)
			}
			if node.CurrentVersion != "" {
				printKeyValue(w, "Installed", node.CurrentVersion)
			}
			if node.Locked() {
				printKeyValue(w, "Locked", node.LockToVersion)
			}
			_, err = w.Write([]byte(versionsTable(listing.Releases, node, cfg.GameVersion, sel.Target) + "\n"))
			return err
		},
	}

	cmd.Flags().BoolVar(&refresh, "refresh", false, "bypass the response cache")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "disable the response cache entirely")

	return cmd
}

// lookupMod resolves arg to a node, either a manifest id or a mod page URL.
// URLs not present in the manifest yield a bare node.
func lookupMod(cfg *config.Config, arg string) (*deps.Node, error) {
	isURL := strings.Contains(arg, "://")
	if isURL {
		if err := errors.ValidateURL(arg); err != nil {
			return nil, err
		}
	}

	m, err := manifest.Load(cfg.Manifest)
	if err != nil {
		if isURL {
			return &deps.Node{ID: mods.IDFromURL(arg), URL: mods.NormalizeURL(arg)}, nil
		}
		return nil, err
	}

	id := arg
	if isURL {
		id = mods.IDFromURL(arg)
	}
	if n, ok := deps.Resolve(m).Node(id); ok {
		return n, nil
	}
	if e, ok := m[id]; ok {
		return &deps.Node{ID: id, URL: e.URL, Title: e.Title, CurrentVersion: e.Version, LockToVersion: e.LockToVersion}, nil
	}
	if isURL {
		return &deps.Node{ID: id, URL: mods.NormalizeURL(arg)}, nil
	}
	return nil, errors.New(errors.ErrCodeNotFound, "mod %q is not in %s", arg, cfg.Manifest)
}

func fetchListing(ctx context.Context, cfg *config.Config, pageURL string, refresh, noCache bool) (*mods.Listing, error) {
	backend, err := newCache(cfg, noCache)
	if err != nil {
		return nil, err
	}
	defer backend.Close()

	var spinner *Spinner
	if isTerminal(os.Stderr) {
		spinner = newSpinnerWithContext(ctx, "Fetching "+pageURL)
		spinner.Start()
		defer spinner.Stop()
	}
	listing, err := newModDB(cfg, backend).FetchListing(ctx, pageURL, refresh)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeFetch, err, "fetch %s", pageURL)
	}
	return listing, nil
}

// versionsTable renders releases newest first as they appear on the page.
func versionsTable(releases []mods.Release, node *deps.Node, gameVersion string, target *mods.Release) string {
	rows := make([][]string, 0, len(releases))
	for _, r := range releases {
		mark := ""
		switch {
		case target != nil && r.Version == target.Version:
			mark = iconArrow
		case r.Version == node.CurrentVersion:
			mark = iconSuccess
		}
		rows = append(rows, []string{mark, r.Version, version.JoinList(r.GameVersions), r.ReleaseDate, tierOf(r, gameVersion)})
	}

	return newTable("", "Version", "Game versions", "Released", "Tier").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == -1 {
				return styleHeader
			}
			base := lipgloss.NewStyle().Padding(0, 1)
			r := releases[row]
			switch {
			case target != nil && r.Version == target.Version:
				return base.Foreground(colorCyan).Bold(true)
			case r.Version == node.CurrentVersion:
				return base.Foreground(colorGreen)
			case r.Prerelease():
				return base.Foreground(colorDim)
			}
			return base
		}).
		Render()
}

// tierOf names the first compatibility tier r satisfies.
func tierOf(r mods.Release, gameVersion string) string {
	if gameVersion == "" {
		return "-"
	}
	for _, p := range version.Tiers {
		if version.Supports(p, gameVersion, r.GameVersions) {
			return p.String()
		}
	}
	return "-"
}
