package main

import (
	"fmt"

	"ideamap-canvas/internal/canvas/layout"
	"ideamap-canvas/internal/infrastructure/logging"
	"ideamap-canvas/internal/service/snapshot"

	"github.com/spf13/cobra"
)

func newLayoutCmd(opts *rootOptions) *cobra.Command {
	var (
		width     float64
		writeBack bool
	)

	cmd := &cobra.Command{
		Use:   "layout <radial|level|cluster> [snapshot]",
		Short: "Run an auto-layout over a snapshot",
		Long: `Run an auto-layout over a node snapshot and print the result.

radial and level print one placement per node; with --snapshot the input
snapshot is printed back with the new positions instead. cluster prints the
category buckets and the aggregated links between them.

Examples:
  # Radial layout of a map
  canvasctl layout radial map.yaml

  # Flowchart layout centered in a 1000px wide container, as JSON
  cat map.json | canvasctl layout level - --width 1000 -o json

  # Rewrite a snapshot in place
  canvasctl layout radial map.yaml --snapshot > map.laid-out.yaml`,
		Args: cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			kind, ok := layout.ParseKind(args[0])
			if !ok {
				return fmt.Errorf("unknown layout %q (want radial, level or cluster)", args[0])
			}
			path := "-"
			if len(args) == 2 {
				path = args[1]
			}

			cfg, err := opts.loadConfig()
			if err != nil {
				return err
			}
			logger, err := opts.logger(cfg)
			if err != nil {
				return err
			}
			defer logging.Sync(logger)

			snap, err := readSnapshot(path, cmd.InOrStdin())
			if err != nil {
				return err
			}
			if width == 0 && snap.Container != nil {
				width = snap.Container.Width
			}

			svc := snapshot.NewService(snapshot.WithLogger(logger))
			if kind == layout.KindCluster {
				resp, err := svc.Clusters(cmd.Context(), cfg, snap.Nodes)
				if err != nil {
					return err
				}
				return writeOutput(cmd.OutOrStdout(), opts.output, resp)
			}

			resp, nodes, err := svc.Layout(cmd.Context(), cfg, snap.Nodes, kind, width)
			if err != nil {
				return err
			}
			if writeBack {
				snap.Nodes = nodes
				return writeOutput(cmd.OutOrStdout(), opts.output, snap)
			}
			return writeOutput(cmd.OutOrStdout(), opts.output, resp)
		},
	}

	cmd.Flags().Float64Var(&width, "width", 0, "container width for the level layout (default: snapshot container, then config)")
	cmd.Flags().BoolVar(&writeBack, "snapshot", false, "print the updated snapshot instead of placements")
	return cmd
}
