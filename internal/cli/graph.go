package cli

import (
	"strings"

	"github.com/moby/sys/atomicwriter"
	"github.com/spf13/cobra"

	"github.com/matzehuels/modsync/pkg/deps"
	"github.com/matzehuels/modsync/pkg/errors"
	"github.com/matzehuels/modsync/pkg/manifest"
	"github.com/matzehuels/modsync/pkg/render/nodelink"
)

// graphCommand creates the graph command.
func (c *CLI) graphCommand() *cobra.Command {
	var (
		format   string
		output   string
		detailed bool
	)

	cmd := &cobra.Command{
		Use:   "graph",
		Short: "Export the mod requirement graph as DOT or SVG",
		Long: `Graph resolves the manifest without contacting the network and writes the
requirement graph. Edges point from a mod to the mods it requires; automatic
dependencies are dashed and disabled mods are grey.`,
		Example: `  modsync graph --manifest ./Mods.json > mods.dot
  modsync graph --format svg -o mods.svg`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			logger := loggerFromContext(ctx)

			cfg, err := c.loadConfig(cmd)
			if err != nil {
				return err
			}
			m, err := manifest.Load(cfg.Manifest)
			if err != nil {
				return err
			}

			g := deps.Resolve(m).DAG()
			if err := g.Validate(); err != nil {
				logger.Warn("requirement graph has a cycle", "err", err)
			}
			logger.Debug("resolved graph", "nodes", g.NodeCount(), "edges", g.EdgeCount(),
				"roots", len(g.Sources()), "leaves", len(g.Sinks()))

			dot := nodelink.ToDOT(g, nodelink.Options{Detailed: detailed})
			var data []byte
			switch strings.ToLower(format) {
			case "dot":
				data = []byte(dot)
			case "svg":
				if data, err = nodelink.RenderSVG(ctx, dot); err != nil {
					return errors.Wrap(errors.ErrCodeInternal, err, "render svg")
				}
			default:
				return errors.New(errors.ErrCodeInvalidInput, "unsupported format %q (want dot or svg)", format)
			}

			if output == "" {
				_, err := cmd.OutOrStdout().Write(data)
				return err
			}
			if err := atomicwriter.WriteFile(output, data, 0o644); err != nil {
				return errors.Wrap(errors.ErrCodeStorage, err, "write %s", output)
			}
			printSuccess("Wrote %d mods to %s", g.NodeCount(), output)
			return nil
		},
	}

	cmd.Flags().StringVarP(&format, "format", "f", "dot", "output format: dot or svg")
	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (default stdout)")
	cmd.Flags().BoolVar(&detailed, "detailed", false, "include all node metadata in labels")

	return cmd
}
