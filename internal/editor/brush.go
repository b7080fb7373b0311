package editor

import (
	"image"
	"image/draw"
	"math"

	"cutout-studio/pkg/geometry"
)

// Brush size limits, in viewport pixels.
const (
	MinBrush     = 5
	MaxBrush     = 100
	DefaultBrush = 30

	// BrushWheelStep is the size change per wheel event with Ctrl/Cmd held.
	BrushWheelStep = 2
)

// kappa places cubic control points for a quarter circle.
const kappa = 0.5522847498

// ClampBrush limits a brush size to [MinBrush, MaxBrush].
func ClampBrush(size int) int {
	if size < MinBrush {
		return MinBrush
	}
	if size > MaxBrush {
		return MaxBrush
	}
	return size
}

// EraseDot removes opacity inside a disc of diameter size*scale centred on
// c. Alpha is multiplied by one minus the disc's coverage of each pixel, so
// fully covered pixels become transparent and colour channels are kept.
// It returns the rectangle of pixels that may have changed.
func (b *Buffer) EraseDot(c geometry.Point2D, size, scale float64) image.Rectangle {
	r := size * scale / 2
	if b.img == nil || r <= 0 {
		return image.Rectangle{}
	}
	return b.erase(c, c, r, func(ox, oy float64) {
		b.circle(float32(c.X-ox), float32(c.Y-oy), float32(r))
	})
}

// EraseSegment removes opacity along a round-capped stroke of width
// size*scale from one buffer point to another. Coincident points erase a dot.
func (b *Buffer) EraseSegment(from, to geometry.Point2D, size, scale float64) image.Rectangle {
	r := size * scale / 2
	if b.img == nil || r <= 0 {
		return image.Rectangle{}
	}
	length := from.Distance(to)
	if length < 1e-6 {
		return b.EraseDot(to, size, scale)
	}
	return b.erase(from, to, r, func(ox, oy float64) {
		o := geometry.Point2D{X: ox, Y: oy}
		b.capsule(from.Sub(o), to.Sub(o), length, r)
	})
}

// erase rasterises the shape drawn by path into a coverage mask covering
// the bounding box of a capsule from a to b with radius r, then applies it.
// path receives the mask origin in buffer coordinates.
func (b *Buffer) erase(a, c geometry.Point2D, r float64, path func(ox, oy float64)) image.Rectangle {
	box := image.Rect(
		int(math.Floor(math.Min(a.X, c.X)-r))-1,
		int(math.Floor(math.Min(a.Y, c.Y)-r))-1,
		int(math.Ceil(math.Max(a.X, c.X)+r))+1,
		int(math.Ceil(math.Max(a.Y, c.Y)+r))+1,
	)
	dirty := box.Intersect(b.img.Rect)
	if dirty.Empty() {
		return image.Rectangle{}
	}

	w, h := box.Dx(), box.Dy()
	b.z.Reset(w, h)
	b.z.DrawOp = draw.Src
	path(float64(box.Min.X), float64(box.Min.Y))

	if b.mask == nil || cap(b.mask.Pix) < w*h {
		b.mask = image.NewAlpha(image.Rect(0, 0, w, h))
	} else {
		b.mask.Pix = b.mask.Pix[:w*h]
		b.mask.Stride = w
		b.mask.Rect = image.Rect(0, 0, w, h)
	}
	b.z.Draw(b.mask, b.mask.Rect, image.Opaque, image.Point{})

	for y := dirty.Min.Y; y < dirty.Max.Y; y++ {
		mi := (y-box.Min.Y)*b.mask.Stride + (dirty.Min.X - box.Min.X)
		pi := b.img.PixOffset(dirty.Min.X, y) + 3
		for x := dirty.Min.X; x < dirty.Max.X; x++ {
			if cov := b.mask.Pix[mi]; cov != 0 {
				b.img.Pix[pi] = uint8(uint32(b.img.Pix[pi]) * uint32(255-cov) / 255)
			}
			mi++
			pi += 4
		}
	}
	return dirty
}

func (b *Buffer) circle(cx, cy, r float32) {
	k := r * kappa
	b.z.MoveTo(cx+r, cy)
	b.z.CubeTo(cx+r, cy+k, cx+k, cy+r, cx, cy+r)
	b.z.CubeTo(cx-k, cy+r, cx-r, cy+k, cx-r, cy)
	b.z.CubeTo(cx-r, cy-k, cx-k, cy-r, cx, cy-r)
	b.z.CubeTo(cx+k, cy-r, cx+r, cy-k, cx+r, cy)
	b.z.ClosePath()
}

// capsule traces one closed outline so overlapping caps never cancel under
// the rasteriser's signed accumulation.
func (b *Buffer) capsule(from, to geometry.Point2D, length, r float64) {
	d := to.Sub(from).Scale(1 / length)
	n := geometry.Point2D{X: -d.Y, Y: d.X}
	neg := func(p geometry.Point2D) geometry.Point2D { return p.Scale(-1) }

	start := from.Add(n.Scale(r))
	b.z.MoveTo(float32(start.X), float32(start.Y))
	b.lineTo(to.Add(n.Scale(r)))
	b.quarter(to, n, d, r)
	b.quarter(to, d, neg(n), r)
	b.lineTo(from.Add(neg(n).Scale(r)))
	b.quarter(from, neg(n), neg(d), r)
	b.quarter(from, neg(d), n, r)
	b.z.ClosePath()
}

func (b *Buffer) lineTo(p geometry.Point2D) {
	b.z.LineTo(float32(p.X), float32(p.Y))
}

// quarter appends a quarter arc around c from direction u to direction v.
func (b *Buffer) quarter(c, u, v geometry.Point2D, r float64) {
	k := r * kappa
	p1 := c.Add(u.Scale(r)).Add(v.Scale(k))
	p2 := c.Add(v.Scale(r)).Add(u.Scale(k))
	p3 := c.Add(v.Scale(r))
	b.z.CubeTo(float32(p1.X), float32(p1.Y), float32(p2.X), float32(p2.Y), float32(p3.X), float32(p3.Y))
}
