package editor

import (
	"math"

	"cutout-studio/pkg/geometry"
)

// Zoom limits and steps.
const (
	MinZoom = 1.0
	MaxZoom = 10.0

	// WheelZoomStep is applied once per discrete wheel event.
	WheelZoomStep = 1.1
	// ButtonZoomStep is applied by the toolbar zoom buttons.
	ButtonZoomStep = 1.3

	// Zoom results closer than this to 1 snap back to the rest state.
	zoomSnap = 0.05
)

// Transform is the zoom and pan applied to the buffer when it is displayed.
// Pan is in viewport pixels.
type Transform struct {
	Zoom float64
	Pan  geometry.Point2D
}

// IdentityTransform is the rest state: zoom 1, no pan.
func IdentityTransform() Transform {
	return Transform{Zoom: 1}
}

// View maps a fixed-size pixel buffer onto a viewport of variable size.
//
// The render transform is translate(pan) ∘ scale(zoom) ∘ scale(viewport/buffer):
// at zoom 1 the whole buffer fills the viewport exactly, so a viewport whose
// aspect differs from the buffer's stretches it. Callers that want letterboxing
// size the viewport with geometry.Fit.
type View struct {
	viewport geometry.Size
	buffer   geometry.Size
	t        Transform
}

// NewView returns a view at the identity transform.
func NewView(viewport, buffer geometry.Size) *View {
	return &View{viewport: viewport, buffer: buffer, t: IdentityTransform()}
}

// Transform returns the current zoom and pan.
func (v *View) Transform() Transform { return v.t }

// Zoom returns the current zoom level.
func (v *View) Zoom() float64 { return v.t.Zoom }

// Viewport returns the viewport size.
func (v *View) Viewport() geometry.Size { return v.viewport }

// Buffer returns the buffer size.
func (v *View) Buffer() geometry.Size { return v.buffer }

// SetViewport changes the viewport size and re-clamps pan against it.
func (v *View) SetViewport(s geometry.Size) {
	v.viewport = s
	v.t.Pan = v.ClampPan(v.t.Pan, v.t.Zoom)
}

// SetBuffer changes the buffer size. The transform is left alone; loading a
// new source resets it separately.
func (v *View) SetBuffer(s geometry.Size) {
	v.buffer = s
}

// Reset returns to the identity transform.
func (v *View) Reset() {
	v.t = IdentityTransform()
}

// Set installs a transform, clamping zoom and pan.
func (v *View) Set(t Transform) {
	z := clampZoom(t.Zoom)
	v.t = Transform{Zoom: z, Pan: v.ClampPan(t.Pan, z)}
}

// density is viewport pixels per buffer pixel on each axis.
func (v *View) density() (sx, sy float64) {
	if v.buffer.Empty() || v.viewport.Empty() {
		return 1, 1
	}
	return v.viewport.Width / v.buffer.Width, v.viewport.Height / v.buffer.Height
}

// Matrix returns the buffer-to-screen render transform.
func (v *View) Matrix() geometry.AffineTransform {
	sx, sy := v.density()
	return geometry.Translation(v.t.Pan.X, v.t.Pan.Y).
		Compose(geometry.Scale(v.t.Zoom, v.t.Zoom)).
		Compose(geometry.Scale(sx, sy))
}

// BufferToScreen maps a buffer coordinate to a viewport coordinate.
func (v *View) BufferToScreen(b geometry.Point2D) geometry.Point2D {
	return v.Matrix().Apply(b)
}

// ScreenToBuffer maps a viewport coordinate to a buffer coordinate. The
// result may lie outside the buffer when p lies outside the rendered area.
func (v *View) ScreenToBuffer(p geometry.Point2D) geometry.Point2D {
	inv, ok := v.Matrix().Inverse()
	if !ok {
		return geometry.Point2D{}
	}
	return inv.Apply(p)
}

// BrushScale is the number of buffer pixels per viewport pixel horizontally.
// Brush diameters are given in viewport pixels and multiplied by this, so a
// brush feels the same size whatever the buffer's native resolution.
func (v *View) BrushScale() float64 {
	if v.buffer.Empty() || v.viewport.Empty() {
		return 1
	}
	return v.buffer.Width / v.viewport.Width
}

// IndicatorDiameter is the on-screen diameter of the area a brush of the
// given size erases at the current zoom.
func (v *View) IndicatorDiameter(size int) float64 {
	return float64(size) * v.t.Zoom
}

// ClampPan keeps the scaled buffer covering the whole viewport. At zoom 1 or
// below the only valid pan is the origin.
func (v *View) ClampPan(pan geometry.Point2D, zoom float64) geometry.Point2D {
	if zoom <= 1 {
		return geometry.Point2D{}
	}
	return geometry.Point2D{
		X: clamp(pan.X, v.viewport.Width*(1-zoom), 0),
		Y: clamp(pan.Y, v.viewport.Height*(1-zoom), 0),
	}
}

// ZoomAt multiplies the zoom by factor while keeping the buffer point under
// p fixed on screen. A result within zoomSnap of 1 snaps to the identity.
func (v *View) ZoomAt(p geometry.Point2D, factor float64) Transform {
	z := clampZoom(v.t.Zoom * factor)
	if math.Abs(z-1) < zoomSnap {
		z = 1
	}
	v.zoomAround(p, z)
	return v.t
}

// ZoomTo sets an absolute zoom level, anchored on the viewport centre.
func (v *View) ZoomTo(zoom float64) Transform {
	v.zoomAround(v.viewportCenter(), clampZoom(zoom))
	return v.t
}

// PanFrom sets pan to start+delta, clamped.
func (v *View) PanFrom(start, delta geometry.Point2D) Transform {
	v.t.Pan = v.ClampPan(start.Add(delta), v.t.Zoom)
	return v.t
}

func (v *View) zoomAround(p geometry.Point2D, z float64) {
	old := v.t.Zoom
	pan := p.Sub(p.Sub(v.t.Pan).Scale(z / old))
	v.t = Transform{Zoom: z, Pan: v.ClampPan(pan, z)}
}

func (v *View) viewportCenter() geometry.Point2D {
	return geometry.Point2D{X: v.viewport.Width / 2, Y: v.viewport.Height / 2}
}

func clampZoom(z float64) float64 {
	if math.IsNaN(z) {
		return MinZoom
	}
	return clamp(z, MinZoom, MaxZoom)
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
