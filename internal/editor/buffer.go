package editor

import (
	"image"
	"image/draw"

	xdraw "golang.org/x/image/draw"
	"golang.org/x/image/vector"
)

// Buffer is the raster being edited: non-premultiplied RGBA pixels of fixed
// size for one editing session. The zero value is an unloaded buffer on
// which every brush operation is a no-op.
type Buffer struct {
	img *image.NRGBA

	// reused between dabs
	z    vector.Rasterizer
	mask *image.Alpha
}

// Loaded reports whether a source has been drawn into the buffer.
func (b *Buffer) Loaded() bool { return b.img != nil }

// Size returns the buffer dimensions, or 0,0 before a load.
func (b *Buffer) Size() (w, h int) {
	if b.img == nil {
		return 0, 0
	}
	r := b.img.Bounds()
	return r.Dx(), r.Dy()
}

// Image returns the live pixels. Callers must not retain it across edits;
// use Clone for a stable copy.
func (b *Buffer) Image() *image.NRGBA { return b.img }

// Clone returns a deep copy of the current pixels, or nil before a load.
func (b *Buffer) Clone() *image.NRGBA {
	if b.img == nil {
		return nil
	}
	out := image.NewNRGBA(b.img.Bounds())
	copy(out.Pix, b.img.Pix)
	return out
}

// Load sizes the buffer to w×h, reusing storage when the size is unchanged,
// and draws src scaled to fill it. It reports false and leaves the buffer
// alone when there is nothing to draw or no surface can be sized.
func (b *Buffer) Load(src image.Image, w, h int) bool {
	if src == nil || w <= 0 || h <= 0 {
		return false
	}
	if sr := src.Bounds(); sr.Empty() {
		return false
	}
	if b.img == nil || b.img.Rect.Dx() != w || b.img.Rect.Dy() != h {
		b.img = image.NewNRGBA(image.Rect(0, 0, w, h))
	}
	sr := src.Bounds()
	if sr.Dx() == w && sr.Dy() == h {
		draw.Draw(b.img, b.img.Rect, src, sr.Min, draw.Src)
	} else {
		xdraw.CatmullRom.Scale(b.img, b.img.Rect, src, sr, draw.Src, nil)
	}
	return true
}

// Snapshot is an immutable copy of buffer pixels.
type Snapshot struct {
	w, h int
	pix  []byte
}

// Size returns the snapshot dimensions.
func (s Snapshot) Size() (w, h int) { return s.w, s.h }

// Valid reports whether the snapshot holds pixels.
func (s Snapshot) Valid() bool { return s.pix != nil }

// Image returns a new image holding a copy of the snapshot.
func (s Snapshot) Image() *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, s.w, s.h))
	copy(img.Pix, s.pix)
	return img
}

// Snapshot deep-copies the current pixels. It returns an invalid snapshot
// before a load.
func (b *Buffer) Snapshot() Snapshot {
	if b.img == nil {
		return Snapshot{}
	}
	w, h := b.Size()
	pix := make([]byte, len(b.img.Pix))
	copy(pix, b.img.Pix)
	return Snapshot{w: w, h: h, pix: pix}
}

// Restore copies a snapshot's pixels into the buffer. The snapshot is never
// aliased, so later erasing cannot reach back into history.
func (b *Buffer) Restore(s Snapshot) {
	if !s.Valid() {
		return
	}
	if b.img == nil || b.img.Rect.Dx() != s.w || b.img.Rect.Dy() != s.h {
		b.img = image.NewNRGBA(image.Rect(0, 0, s.w, s.h))
	}
	copy(b.img.Pix, s.pix)
}
