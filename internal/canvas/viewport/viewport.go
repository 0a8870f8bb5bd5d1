// Package viewport owns the canvas pan offset and zoom scale.
package viewport

import (
	"math"

	"ideamap-canvas/domain/core/valueobjects"
	"ideamap-canvas/internal/canvas/transform"
	pkgerrors "ideamap-canvas/pkg/errors"

	"gonum.org/v1/gonum/spatial/r2"
)

// Settings are the zoom limits and factors the controller works with.
type Settings struct {
	MinScale      float64
	MaxScale      float64
	WheelZoomIn   float64
	WheelZoomOut  float64
	KeyZoomIn     float64
	KeyZoomOut    float64
	MaxFitScale   float64
	FitFill       float64
	ZoomToPointer bool
}

// DefaultSettings returns the stock zoom behaviour
func DefaultSettings() Settings {
	return Settings{
		MinScale:     0.2,
		MaxScale:     3.0,
		WheelZoomIn:  1.1,
		WheelZoomOut: 0.9,
		KeyZoomIn:    1.2,
		KeyZoomOut:   0.8,
		MaxFitScale:  1.0,
		FitFill:      0.9,
	}
}

// Controller holds the current scale and pan offset.
// It never touches node data.
type Controller struct {
	settings Settings
	scale    float64
	pan      r2.Vec
}

// New creates a controller at scale 1 (clamped into range) with no pan
func New(settings Settings) *Controller {
	c := &Controller{settings: settings}
	c.Reset()
	return c
}

// Settings returns the active settings
func (c *Controller) Settings() Settings {
	return c.settings
}

// SetSettings swaps the limits and re-clamps the current scale
func (c *Controller) SetSettings(settings Settings) {
	c.settings = settings
	c.scale = c.clamp(c.scale)
}

// Scale returns the current zoom factor
func (c *Controller) Scale() float64 {
	return c.scale
}

// Pan returns the current pan offset in screen pixels
func (c *Controller) Pan() r2.Vec {
	return c.pan
}

// Transform returns the current screen/logical mapping
func (c *Controller) Transform() transform.Transform {
	return transform.New(c.pan, c.scale)
}

// Reset returns to unit scale and zero pan
func (c *Controller) Reset() {
	c.scale = c.clamp(1)
	c.pan = r2.Vec{}
}

// Zoom multiplies the scale by factor and clamps the result.
// The pan offset is left alone.
func (c *Controller) Zoom(factor float64) error {
	if err := validFactor(factor); err != nil {
		return err
	}
	c.scale = c.clamp(c.scale * factor)
	return nil
}

// ZoomAt zooms while keeping the logical point under anchor fixed on screen
func (c *Controller) ZoomAt(factor float64, anchor valueobjects.Point) error {
	if err := validFactor(factor); err != nil {
		return err
	}
	logical, err := c.Transform().ToLogical(anchor)
	if err != nil {
		return err
	}

	next := c.clamp(c.scale * factor)
	pan := r2.Sub(anchor.Vec(), r2.Scale(next, logical))
	if !valueobjects.IsFinite(pan) {
		return pkgerrors.NewInvalidGeometry("anchored zoom produced a non-finite pan")
	}

	c.scale = next
	c.pan = pan
	return nil
}

// Wheel maps a wheel delta onto a zoom step: positive deltaY shrinks,
// negative grows, zero does nothing.
func (c *Controller) Wheel(deltaY float64, anchor valueobjects.Point) error {
	var factor float64
	switch {
	case deltaY > 0:
		factor = c.settings.WheelZoomOut
	case deltaY < 0:
		factor = c.settings.WheelZoomIn
	default:
		if math.IsNaN(deltaY) {
			return pkgerrors.NewInvalidGeometry("wheel delta is NaN")
		}
		return nil
	}

	if c.settings.ZoomToPointer {
		return c.ZoomAt(factor, anchor)
	}
	return c.Zoom(factor)
}

// KeyZoom applies the fixed keyboard zoom step
func (c *Controller) KeyZoom(in bool) error {
	if in {
		return c.Zoom(c.settings.KeyZoomIn)
	}
	return c.Zoom(c.settings.KeyZoomOut)
}

// PanBy adds a raw screen-space delta to the pan offset
func (c *Controller) PanBy(delta r2.Vec) error {
	next := r2.Add(c.pan, delta)
	if !valueobjects.IsFinite(next) {
		return pkgerrors.NewInvalidGeometry("pan offset is not finite")
	}
	c.pan = next
	return nil
}

// CenterOn pans so the centroid of positions sits in the middle of the
// container at the current scale.
func (c *Controller) CenterOn(positions []r2.Vec, container valueobjects.Size) error {
	if len(positions) == 0 {
		return pkgerrors.NewEmptyGraph("center view")
	}
	if !container.Valid() {
		return pkgerrors.NewInvalidGeometry("container size must be positive")
	}

	var sum r2.Vec
	for _, p := range positions {
		sum = r2.Add(sum, p)
	}
	centroid := r2.Scale(1/float64(len(positions)), sum)

	return c.focus(centroid, c.scale, container)
}

// FitToScreen picks the scale that fits every node's extent into
// FitFill of the container, capped at MaxFitScale, and centers the box.
func (c *Controller) FitToScreen(positions []r2.Vec, nodeSize, container valueobjects.Size) error {
	if len(positions) == 0 {
		return pkgerrors.NewEmptyGraph("fit to screen")
	}
	if !container.Valid() {
		return pkgerrors.NewInvalidGeometry("container size must be positive")
	}

	box, err := Bounds(positions, nodeSize)
	if err != nil {
		return err
	}

	size := box.Size()
	scaleX := fitAxis(container.Width*c.settings.FitFill, size.X)
	scaleY := fitAxis(container.Height*c.settings.FitFill, size.Y)
	scale := math.Min(math.Min(scaleX, scaleY), c.settings.MaxFitScale)
	if scale <= 0 || math.IsNaN(scale) || math.IsInf(scale, 0) {
		return pkgerrors.NewInvalidGeometry("fit produced an unusable scale")
	}

	return c.focus(box.Center(), scale, container)
}

// Bounds returns the axis-aligned box covering every node extent
func Bounds(positions []r2.Vec, nodeSize valueobjects.Size) (r2.Box, error) {
	if len(positions) == 0 {
		return r2.Box{}, pkgerrors.NewEmptyGraph("bounds")
	}
	half := r2.Vec{X: math.Max(nodeSize.Width, 0) / 2, Y: math.Max(nodeSize.Height, 0) / 2}

	box := r2.Box{Min: r2.Sub(positions[0], half), Max: r2.Add(positions[0], half)}
	for _, p := range positions[1:] {
		box.Min.X = math.Min(box.Min.X, p.X-half.X)
		box.Min.Y = math.Min(box.Min.Y, p.Y-half.Y)
		box.Max.X = math.Max(box.Max.X, p.X+half.X)
		box.Max.Y = math.Max(box.Max.Y, p.Y+half.Y)
	}
	if !valueobjects.IsFinite(box.Min) || !valueobjects.IsFinite(box.Max) {
		return r2.Box{}, pkgerrors.NewInvalidGeometry("node bounds are not finite")
	}
	return box, nil
}

func (c *Controller) focus(logical r2.Vec, scale float64, container valueobjects.Size) error {
	pan := r2.Sub(container.Center(), r2.Scale(scale, logical))
	if !valueobjects.IsFinite(pan) {
		return pkgerrors.NewInvalidGeometry("pan offset is not finite")
	}
	c.scale = scale
	c.pan = pan
	return nil
}

func (c *Controller) clamp(scale float64) float64 {
	return math.Max(c.settings.MinScale, math.Min(c.settings.MaxScale, scale))
}

func fitAxis(available, extent float64) float64 {
	if extent <= 0 {
		return math.Inf(1)
	}
	return available / extent
}

func validFactor(factor float64) error {
	if factor <= 0 || math.IsNaN(factor) || math.IsInf(factor, 0) {
		return pkgerrors.NewInvalidGeometry("zoom factor must be positive and finite")
	}
	return nil
}
