package cli

import (
	"context"
	"encoding/json"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/matzehuels/modsync/pkg/config"
	"github.com/matzehuels/modsync/pkg/reconcile"
)

// runCommand creates the run command.
func (c *CLI) runCommand() *cobra.Command {
	var (
		noNotify bool
		jsonOut  bool
	)

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Reconcile the mod directory with the manifest once",
		Long: `Run performs one synchronization pass: it resolves the manifest and its
requirements, fetches every mod whose last check is older than the staleness
window, installs or updates archives, deletes archives nothing requires
anymore and rewrites the manifest.

A failure affecting a single mod is reported and skipped. An unreadable or
unwritable manifest aborts the run with a non-zero exit code.`,
		Example: `  # One-off run inside the server container
  GAME_VERSION=1.20.4 modsync run

  # Run against local paths without sending notifications
  modsync run --game-version 1.20.4 --mods-dir ./Mods --manifest ./Mods.json --no-notify`,
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

			rep, err := reconcileOnce(ctx, cfg, logger, !noNotify)
			if err != nil {
				return err
			}

			if jsonOut {
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				return enc.Encode(rep)
			}
			printReport(cmd.OutOrStdout(), rep)
			return nil
		},
	}

	addReconcileFlags(cmd.Flags())
	cmd.Flags().BoolVar(&noNotify, "no-notify", false, "do not send the report to notification destinations")
	cmd.Flags().BoolVar(&jsonOut, "json", false, "print the report as JSON")

	return cmd
}

// reconcileOnce runs a single pass and, when notifyReport is set, delivers
// the report. Notification failures never fail the run.
func reconcileOnce(ctx context.Context, cfg *config.Config, logger *log.Logger, notifyReport bool) (*reconcile.Report, error) {
	r, err := newReconciler(cfg, logger)
	if err != nil {
		return nil, err
	}

	prog := newProgress(logger)
	rep, err := r.Run(ctx)
	if err != nil {
		return rep, err
	}
	prog.done("reconciled",
		"installed", len(rep.Installed),
		"updated", len(rep.Updated),
		"removed", len(rep.Uninstalled)+len(rep.Deleted))

	if notifyReport {
		deliver(ctx, cfg, logger, rep)
	}
	return rep, nil
}

func deliver(ctx context.Context, cfg *config.Config, logger *log.Logger, rep *reconcile.Report) {
	if !rep.Notable() || len(cfg.Notify.Destinations) == 0 {
		return
	}
	session, err := newNotifier(cfg, logger)
	if err != nil {
		logger.Warn("notifications disabled", "err", err)
		return
	}
	defer session.Close()

	if n := session.Post(ctx, rep.Messages()...); n < session.Len() {
		logger.Warn("some notification destinations failed", "failed", session.Failed())
	}
}
