// Package webp registers an OpenCV-backed WebP encoder with package export.
//
// Import it for its side effect:
//
//	import _ "cutout-studio/internal/export/webp"
package webp

import (
	"image"
	"image/draw"

	"cutout-studio/internal/export"

	"gocv.io/x/gocv"
)

func init() {
	export.Register(export.WebP, Encode)
}

// Encode encodes img as lossy WebP. OpenCV wants BGRA channel order.
func Encode(img image.Image, quality int) ([]byte, error) {
	b := img.Bounds()
	w, h := b.Dx(), b.Dy()

	nrgba, ok := img.(*image.NRGBA)
	if !ok || nrgba.Stride != 4*w || b.Min != (image.Point{}) {
		nrgba = image.NewNRGBA(image.Rect(0, 0, w, h))
		draw.Draw(nrgba, nrgba.Rect, img, b.Min, draw.Src)
	}

	mat, err := gocv.NewMatFromBytes(h, w, gocv.MatTypeCV8UC4, nrgba.Pix)
	if err != nil {
		return nil, err
	}
	defer mat.Close()

	bgra := gocv.NewMat()
	defer bgra.Close()
	gocv.CvtColor(mat, &bgra, gocv.ColorRGBAToBGRA)

	buf, err := gocv.IMEncodeWithParams(gocv.FileExt(".webp"), bgra, []int{int(gocv.IMWriteWebpQuality), quality})
	if err != nil {
		return nil, err
	}
	defer buf.Close()

	data := buf.GetBytes()
	out := make([]byte, len(data))
	copy(out, data)
	return out, nil
}
