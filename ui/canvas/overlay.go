package canvas

import (
	"image"
	"image/color"
	"math"

	"cutout-studio/pkg/colorutil"
	"cutout-studio/pkg/geometry"
)

// Ring band widths in widget units.
const (
	ringWidth    = 2.0
	outlineWidth = 1.0
)

// drawRing strokes the brush indicator around c with outer radius r, both
// in output pixels: a light band just inside r and a thin dark outline just
// outside it.
func drawRing(dst *image.RGBA, c geometry.Point2D, r, scale float64) {
	if r <= 0 {
		return
	}
	inner := math.Max(0, r-ringWidth*scale)
	outer := r + outlineWidth*scale

	b := dst.Bounds().Intersect(image.Rect(
		int(math.Floor(c.X-outer-1)), int(math.Floor(c.Y-outer-1)),
		int(math.Ceil(c.X+outer+1)), int(math.Ceil(c.Y+outer+1)),
	))
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			d := geometry.Pt(float64(x)+0.5, float64(y)+0.5).Distance(c)
			if cov := band(d, r, outer); cov > 0 {
				blend(dst, x, y, colorutil.BrushOutline, cov)
			}
			if cov := band(d, inner, r); cov > 0 {
				blend(dst, x, y, colorutil.BrushRing, cov)
			}
		}
	}
}

// band is the fraction of a one-pixel span centred at d that lies in [lo, hi].
func band(d, lo, hi float64) float64 {
	return math.Max(0, math.Min(d+0.5, hi)-math.Max(d-0.5, lo))
}

func blend(dst *image.RGBA, x, y int, c color.NRGBA, coverage float64) {
	src := c
	src.A = uint8(math.Round(float64(c.A) * math.Min(coverage, 1)))
	d := dst.RGBAAt(x, y)
	out := colorutil.Over(src, color.NRGBA{R: d.R, G: d.G, B: d.B, A: 255})
	dst.SetRGBA(x, y, color.RGBA{R: out.R, G: out.G, B: out.B, A: 255})
}
