package canvas

import (
	"image"
	"image/color"
	"math"

	"cutout-studio/internal/editor"
	"cutout-studio/pkg/colorutil"
	"cutout-studio/pkg/geometry"
)

// Frame is everything one raster pass reads from the editor.
type Frame struct {
	// Image is the working buffer; nil draws only the checkerboard.
	Image *image.NRGBA
	// ToBuffer maps viewport coordinates to buffer pixels.
	ToBuffer geometry.AffineTransform
	// Viewport is the letterboxed editing area in widget coordinates.
	Viewport geometry.Rect
	// Scale is output pixels per widget unit.
	Scale  float64
	Cursor editor.Cursor
}

// frameOf captures the editor state for one draw. Call it with the
// session lock held.
func frameOf(ed *editor.Editor, box geometry.Rect, scale float64) Frame {
	f := Frame{Viewport: box, Scale: scale, Cursor: ed.Cursor()}
	if !ed.Loaded() {
		return f
	}
	inv, ok := ed.View().Matrix().Inverse()
	if !ok {
		return f
	}
	f.Image = ed.Image()
	f.ToBuffer = inv
	return f
}

// Render paints the viewport of f into dst: the buffer over a checkerboard,
// then the brush ring. Pixels outside the viewport are left untouched.
func Render(dst *image.RGBA, f Frame) {
	if f.Scale <= 0 {
		f.Scale = 1
	}
	vp := f.Viewport
	b := dst.Bounds()
	x0 := max(b.Min.X, int(math.Floor(vp.X*f.Scale)))
	y0 := max(b.Min.Y, int(math.Floor(vp.Y*f.Scale)))
	x1 := min(b.Max.X, int(math.Ceil((vp.X+vp.Width)*f.Scale)))
	y1 := min(b.Max.Y, int(math.Ceil((vp.Y+vp.Height)*f.Scale)))

	var bw, bh int
	if f.Image != nil {
		bw, bh = f.Image.Rect.Dx(), f.Image.Rect.Dy()
	}

	for py := y0; py < y1; py++ {
		ly := (float64(py)+0.5)/f.Scale - vp.Y
		if ly < 0 || ly >= vp.Height {
			continue
		}
		for px := x0; px < x1; px++ {
			lx := (float64(px)+0.5)/f.Scale - vp.X
			if lx < 0 || lx >= vp.Width {
				continue
			}
			c := colorutil.Checker(int(lx), int(ly))
			if f.Image != nil {
				p := f.ToBuffer.Apply(geometry.Pt(lx, ly))
				sx, sy := int(math.Floor(p.X)), int(math.Floor(p.Y))
				if sx >= 0 && sy >= 0 && sx < bw && sy < bh {
					c = colorutil.Over(f.Image.NRGBAAt(sx, sy), c)
				}
			}
			dst.SetRGBA(px, py, color.RGBA{R: c.R, G: c.G, B: c.B, A: 255})
		}
	}

	if f.Cursor.Visible {
		centre := vp.TopLeft().Add(f.Cursor.Pos).Scale(f.Scale)
		drawRing(dst, centre, f.Cursor.Diameter*f.Scale/2, f.Scale)
	}
}
