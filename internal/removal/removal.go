// Package removal separates a foreground subject from its background.
//
// Backends implement Remover. The result is always an image the size of the
// input whose background pixels have zero alpha.
package removal

import (
	"context"
	"errors"
	"image"
	"image/draw"

	"github.com/nfnt/resize"
)

// ErrRemovalFailed wraps every backend failure.
var ErrRemovalFailed = errors.New("background removal failed")

// ProgressFunc receives completion percentages in [0,100].
type ProgressFunc func(percent int)

// Remover produces a cutout of img.
type Remover interface {
	Remove(ctx context.Context, img image.Image, progress ProgressFunc) (image.Image, error)
}

// Func adapts a plain function to Remover.
type Func func(ctx context.Context, img image.Image, progress ProgressFunc) (image.Image, error)

// Remove calls f.
func (f Func) Remove(ctx context.Context, img image.Image, progress ProgressFunc) (image.Image, error) {
	return f(ctx, img, progress)
}

// Report calls p with pct clamped to [0,100]; p may be nil.
func Report(p ProgressFunc, pct int) {
	if p == nil {
		return
	}
	if pct < 0 {
		pct = 0
	}
	if pct > 100 {
		pct = 100
	}
	p(pct)
}

// ResizeWithinMax scales img down so its longest side is at most maxSide.
// Images already small enough are returned as a packed NRGBA copy.
func ResizeWithinMax(img image.Image, maxSide uint) *image.NRGBA {
	b := img.Bounds()
	longest := uint(max(b.Dx(), b.Dy()))
	if maxSide == 0 || longest <= maxSide {
		return toNRGBA(img)
	}
	scale := float64(maxSide) / float64(longest)
	w := max(1, uint(float64(b.Dx())*scale))
	h := max(1, uint(float64(b.Dy())*scale))
	return toNRGBA(resize.Resize(w, h, img, resize.Lanczos3))
}

// ApplyMask returns src with its alpha multiplied by mask. A mask of a
// different size is stretched to src first.
func ApplyMask(src image.Image, mask *image.Gray) *image.NRGBA {
	out := toNRGBA(src)
	w, h := out.Rect.Dx(), out.Rect.Dy()
	if mb := mask.Bounds(); mb.Dx() != w || mb.Dy() != h {
		mask = toGray(resize.Resize(uint(w), uint(h), mask, resize.Bilinear))
	}
	for y := 0; y < h; y++ {
		mi := y * mask.Stride
		pi := y*out.Stride + 3
		for x := 0; x < w; x++ {
			out.Pix[pi] = uint8(uint32(out.Pix[pi]) * uint32(mask.Pix[mi]) / 255)
			mi++
			pi += 4
		}
	}
	return out
}

// toNRGBA always copies, so callers may write to the result.
func toNRGBA(img image.Image) *image.NRGBA {
	b := img.Bounds()
	out := image.NewNRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	draw.Draw(out, out.Rect, img, b.Min, draw.Src)
	return out
}

func toGray(img image.Image) *image.Gray {
	if g, ok := img.(*image.Gray); ok && g.Rect.Min == (image.Point{}) {
		return g
	}
	b := img.Bounds()
	out := image.NewGray(image.Rect(0, 0, b.Dx(), b.Dy()))
	draw.Draw(out, out.Rect, img, b.Min, draw.Src)
	return out
}
