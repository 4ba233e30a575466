package cli

import (
	"cmp"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/matzehuels/modsync/pkg/errors"
	"github.com/matzehuels/modsync/pkg/manifest"
)

// pinCommand creates the pin command.
func (c *CLI) pinCommand() *cobra.Command {
	var (
		ver     string
		refresh bool
	)

	cmd := &cobra.Command{
		Use:   "pin <mod-id>",
		Short: "Lock a mod to a specific version",
		Long: `Pin sets lockToVersion on a manifest entry. The next run installs exactly
that version if the mod page still lists it.

Without --version, the mod page is fetched and an interactive picker is
shown.`,
		Example: `  modsync pin betterruins --version 1.2.0
  modsync pin betterruins`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			cfg, err := c.loadConfig(cmd)
			if err != nil {
				return err
			}
			m, err := manifest.Load(cfg.Manifest)
			if err != nil {
				return err
			}
			id := args[0]
			e, ok := m[id]
			if !ok {
				return errors.New(errors.ErrCodeNotFound, "mod %q is not in %s", id, cfg.Manifest)
			}

			if ver == "" {
				if !isTerminal(os.Stdin) || !isTerminal(os.Stdout) {
					return errors.New(errors.ErrCodeInvalidInput, "--version is required when not attached to a terminal")
				}
				listing, err := fetchListing(ctx, cfg, e.URL, refresh, false)
				if err != nil {
					return err
				}
				if len(listing.Releases) == 0 {
					return errors.New(errors.ErrCodeNotFound, "no releases listed for %s", id)
				}
				res, err := tea.NewProgram(NewVersionPicker(cmp.Or(listing.Title, e.Title, id), listing.Releases, e.Version, e.LockToVersion)).Run()
				if err != nil {
					return errors.Wrap(errors.ErrCodeInternal, err, "version picker")
				}
				picked := res.(VersionPicker).Selected
				if picked == nil {
					printDetail("No version selected")
					return nil
				}
				ver = picked.Version
			}

			if err := setLock(cfg.Manifest, m, id, ver); err != nil {
				return err
			}
			printSuccess("Pinned %s to %s", id, StyleHighlight.Render(ver))
			return nil
		},
	}

	cmd.Flags().StringVar(&ver, "version", "", "version to lock to")
	cmd.Flags().BoolVar(&refresh, "refresh", false, "bypass the response cache when fetching releases")

	return cmd
}

// unpinCommand creates the unpin command.
func (c *CLI) unpinCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "unpin <mod-id>",
		Short: "Release a mod's version lock",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := c.loadConfig(cmd)
			if err != nil {
				return err
			}
			m, err := manifest.Load(cfg.Manifest)
			if err != nil {
				return err
			}
			id := args[0]
			e, ok := m[id]
			if !ok {
				return errors.New(errors.ErrCodeNotFound, "mod %q is not in %s", id, cfg.Manifest)
			}
			if e.LockToVersion == "" {
				printInfo("%s is not pinned", id)
				return nil
			}
			if err := setLock(cfg.Manifest, m, id, ""); err != nil {
				return err
			}
			printSuccess("Unpinned %s", id)
			return nil
		},
	}
}

// setLock updates the lock of id and clears its timestamp so the next run
// re-resolves it instead of trusting the staleness window.
func setLock(path string, m manifest.Manifest, id, ver string) error {
	e := m[id]
	e.LockToVersion = ver
	e.LastUpdated = nil
	m[id] = e
	return manifest.Save(path, m)
}
