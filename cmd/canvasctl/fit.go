package main

import (
	"ideamap-canvas/domain/core/valueobjects"
	"ideamap-canvas/internal/infrastructure/logging"
	"ideamap-canvas/internal/service/snapshot"

	"github.com/spf13/cobra"
)

func newFitCmd(opts *rootOptions) *cobra.Command {
	var (
		width, height float64
		center        bool
	)

	cmd := &cobra.Command{
		Use:   "fit [snapshot]",
		Short: "Compute the viewport that fits a snapshot on screen",
		Long: `Compute the scale and pan offset that fit every node of a snapshot into
the container, or with --center the pan that centers the nodes at scale 1.

The container comes from --width/--height, then the snapshot's container
section.

Examples:
  canvasctl fit map.yaml --width 1280 --height 720
  canvasctl fit map.yaml --center -o json`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := "-"
			if len(args) == 1 {
				path = args[0]
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
			size := snap.size(valueobjects.Size{Width: 800, Height: 600})
			if width > 0 {
				size.Width = width
			}
			if height > 0 {
				size.Height = height
			}

			svc := snapshot.NewService(snapshot.WithLogger(logger))
			run := svc.Fit
			if center {
				run = svc.Center
			}
			resp, err := run(cmd.Context(), cfg, snap.Nodes, size)
			if err != nil {
				return err
			}
			return writeOutput(cmd.OutOrStdout(), opts.output, resp)
		},
	}

	cmd.Flags().Float64Var(&width, "width", 0, "container width in pixels")
	cmd.Flags().Float64Var(&height, "height", 0, "container height in pixels")
	cmd.Flags().BoolVar(&center, "center", false, "center at the current scale instead of fitting")
	return cmd
}
