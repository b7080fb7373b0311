package canvas

import (
	"image"
	"image/color"
	"testing"

	"cutout-studio/internal/editor"
	"cutout-studio/pkg/colorutil"
	"cutout-studio/pkg/geometry"

	"github.com/stretchr/testify/assert"
)

func TestRenderCheckerOnly(t *testing.T) {
	dst := image.NewRGBA(image.Rect(0, 0, 40, 20))
	Render(dst, Frame{Viewport: geometry.Rect{X: 10, Width: 20, Height: 20}, Scale: 1})

	assert.Equal(t, color.RGBA{}, dst.RGBAAt(5, 5), "letterbox margin is untouched")
	light, dark := colorutil.CheckerLight, colorutil.CheckerDark
	assert.Equal(t, color.RGBA{R: light.R, G: light.G, B: light.B, A: 255}, dst.RGBAAt(10, 0))
	assert.Equal(t, color.RGBA{R: dark.R, G: dark.G, B: dark.B, A: 255}, dst.RGBAAt(20, 0))
	assert.Equal(t, color.RGBA{}, dst.RGBAAt(35, 5))
}

func TestRenderSamplesBuffer(t *testing.T) {
	buf := image.NewNRGBA(image.Rect(0, 0, 2, 2))
	buf.SetNRGBA(0, 0, color.NRGBA{R: 255, A: 255})
	buf.SetNRGBA(1, 0, color.NRGBA{G: 255, A: 255})
	// (0,1) stays transparent

	dst := image.NewRGBA(image.Rect(0, 0, 40, 40))
	Render(dst, Frame{
		Image:    buf,
		ToBuffer: geometry.Scale(0.1, 0.1),
		Viewport: geometry.Rect{Width: 20, Height: 20},
		Scale:    2,
	})

	assert.Equal(t, color.RGBA{R: 255, A: 255}, dst.RGBAAt(3, 3))
	assert.Equal(t, color.RGBA{G: 255, A: 255}, dst.RGBAAt(30, 3))
	dark := colorutil.CheckerDark
	assert.Equal(t, color.RGBA{R: dark.R, G: dark.G, B: dark.B, A: 255}, dst.RGBAAt(3, 30), "erased pixels show the checkerboard")
}

func TestRenderDrawsRing(t *testing.T) {
	dst := image.NewRGBA(image.Rect(0, 0, 40, 40))
	Render(dst, Frame{
		Viewport: geometry.Rect{Width: 40, Height: 40},
		Scale:    1,
		Cursor:   editor.Cursor{Visible: true, Pos: geometry.Pt(25, 25), Diameter: 20},
	})

	centre := dst.RGBAAt(25, 25)
	onRing := dst.RGBAAt(34, 25)     // distance 9.5 from the centre, inside the light band
	outline := dst.RGBAAt(35, 25)    // distance 10.5, on the dark outline
	background := dst.RGBAAt(38, 25) // well outside

	assert.Equal(t, colorutil.CheckerLight.R, centre.R, "ring is hollow")
	assert.Greater(t, onRing.R, background.R)
	assert.Less(t, outline.R, background.R)
}

func TestBand(t *testing.T) {
	assert.InDelta(t, 1.0, band(5, 3, 8), 1e-9)
	assert.InDelta(t, 0.5, band(3, 3, 8), 1e-9)
	assert.InDelta(t, 0.0, band(10, 3, 8), 1e-9)
}
