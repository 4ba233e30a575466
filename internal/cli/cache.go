package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/matzehuels/modsync/pkg/cache"
	"github.com/matzehuels/modsync/pkg/errors"
)

// cacheCommand creates the cache management command.
func (c *CLI) cacheCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cache",
		Short: "Manage the mod page cache used by versions and pin",
	}

	cmd.AddCommand(c.cacheClearCommand())
	cmd.AddCommand(c.cachePathCommand())

	return cmd
}

// cacheClearCommand creates the "cache clear" subcommand.
func (c *CLI) cacheClearCommand() *cobra.Command {
	var expired bool

	cmd := &cobra.Command{
		Use:   "clear",
		Short: "Remove cached mod pages",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := c.loadConfig(cmd)
			if err != nil {
				return err
			}
			if cfg.CacheDir == "" {
				return errors.New(errors.ErrCodeInvalidConfig, "no cache directory configured")
			}
			if _, err := os.Stat(cfg.CacheDir); os.IsNotExist(err) {
				printInfo("Cache is empty")
				return nil
			}

			fc, err := cache.NewFileCache(cfg.CacheDir)
			if err != nil {
				return errors.Wrap(errors.ErrCodeStorage, err, "open cache")
			}
			if expired {
				n, err := fc.Prune()
				if err != nil {
					return errors.Wrap(errors.ErrCodeStorage, err, "prune cache")
				}
				printSuccess("Removed %d expired pages", n)
				printDetail("Directory: %s", fc.Dir())
				return nil
			}
			if err := fc.Clear(); err != nil {
				return errors.Wrap(errors.ErrCodeStorage, err, "clear cache")
			}
			printSuccess("Cleared cache")
			printDetail("Directory: %s", fc.Dir())
			return nil
		},
	}

	cmd.Flags().BoolVar(&expired, "expired", false, "only remove expired or unreadable pages")
	return cmd
}

// cachePathCommand creates the "cache path" subcommand.
func (c *CLI) cachePathCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "path",
		Short: "Print the cache directory path",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := c.loadConfig(cmd)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), cfg.CacheDir)
			return nil
		},
	}
}
