package canvas

import (
	"ideamap-canvas/domain/core/valueobjects"
	"ideamap-canvas/internal/canvas/edges"
	"ideamap-canvas/internal/canvas/layout"
	"ideamap-canvas/internal/canvas/viewport"
	"ideamap-canvas/internal/config"

	"gonum.org/v1/gonum/spatial/r2"
)

// ViewportSettings maps the viewport section of the configuration
func ViewportSettings(cfg *config.Config) viewport.Settings {
	v := cfg.Viewport
	return viewport.Settings{
		MinScale:      v.MinScale,
		MaxScale:      v.MaxScale,
		WheelZoomIn:   v.WheelZoomIn,
		WheelZoomOut:  v.WheelZoomOut,
		KeyZoomIn:     v.KeyZoomIn,
		KeyZoomOut:    v.KeyZoomOut,
		MaxFitScale:   v.MaxFitScale,
		FitFill:       v.FitFill,
		ZoomToPointer: v.ZoomToPointer,
	}
}

// EdgeSettings maps the edge section of the configuration
func EdgeSettings(cfg *config.Config) edges.Settings {
	return edges.Settings{
		HitRadius:       cfg.Edge.HitRadius,
		StrokeTolerance: cfg.Edge.StrokeTolerance,
		CurveOffset:     cfg.Edge.CurveOffset,
	}
}

// LayoutSettings maps the layout section of the configuration
func LayoutSettings(cfg *config.Config) layout.Settings {
	l := cfg.Layout
	return layout.Settings{
		Radial: layout.RadialSettings{
			Center:        r2.Vec{X: l.Radial.CenterX, Y: l.Radial.CenterY},
			RadiusPerNode: l.Radial.RadiusPerNode,
			MaxRadius:     l.Radial.MaxRadius,
		},
		Level: layout.LevelSettings{
			SpacingX: l.Level.SpacingX,
			SpacingY: l.Level.SpacingY,
			StartY:   l.Level.StartY,
			Width:    l.Level.Width,
		},
		Cluster: layout.ClusterSettings{
			Uncategorized: l.Cluster.Uncategorized,
			Columns:       l.Cluster.Columns,
			CellWidth:     l.Cluster.CellWidth,
			CellHeight:    l.Cluster.CellHeight,
			Gap:           l.Cluster.Gap,
		},
	}
}

// NodeSize returns the configured node extent
func NodeSize(cfg *config.Config) valueobjects.Size {
	return valueobjects.Size{Width: cfg.Node.Width, Height: cfg.Node.Height}
}
