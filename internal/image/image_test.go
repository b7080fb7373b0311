package image

import (
	"bytes"
	"errors"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func solid(w, h int, c color.NRGBA) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for i := 0; i < len(img.Pix); i += 4 {
		img.Pix[i], img.Pix[i+1], img.Pix[i+2], img.Pix[i+3] = c.R, c.G, c.B, c.A
	}
	return img
}

func pngBytes(t *testing.T, img image.Image) []byte {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func TestValidate(t *testing.T) {
	pngData := pngBytes(t, solid(4, 3, color.NRGBA{255, 0, 0, 255}))

	var jpgBuf bytes.Buffer
	require.NoError(t, jpeg.Encode(&jpgBuf, solid(4, 3, color.NRGBA{0, 0, 255, 255}), nil))

	mime, err := Validate("a.png", pngData, 0)
	require.NoError(t, err)
	assert.Equal(t, "image/png", mime)

	mime, err = Validate("b.jpg", jpgBuf.Bytes(), 0)
	require.NoError(t, err)
	assert.Equal(t, "image/jpeg", mime)

	_, err = Validate("notes.txt", []byte("hello, not an image"), 0)
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "notes.txt", verr.Name)
	assert.True(t, errors.Is(err, ErrUnsupportedType))

	_, err = Validate("big.png", pngData, int64(len(pngData)-1))
	require.ErrorAs(t, err, &verr)
	assert.True(t, errors.Is(err, ErrFileTooLarge))
}

func TestDecodeAndLoad(t *testing.T) {
	data := pngBytes(t, solid(6, 4, color.NRGBA{10, 20, 30, 255}))

	src, err := Decode("mem.png", data, 0)
	require.NoError(t, err)
	assert.Equal(t, 6, src.Width())
	assert.Equal(t, 4, src.Height())
	assert.Equal(t, "image/png", src.MIME)

	path := filepath.Join(t.TempDir(), "photo.png")
	require.NoError(t, os.WriteFile(path, data, 0o644))
	src, err = Load(path, 0)
	require.NoError(t, err)
	assert.Equal(t, "photo.png", src.Name)
	assert.Equal(t, path, src.Path)

	_, err = Load(path, 10)
	assert.True(t, errors.Is(err, ErrFileTooLarge))

	_, err = Load(filepath.Join(t.TempDir(), "missing.png"), 0)
	assert.ErrorContains(t, err, "failed to open image")
}

func TestIsSupportedFormat(t *testing.T) {
	assert.True(t, IsSupportedFormat("a.PNG"))
	assert.True(t, IsSupportedFormat("dir/b.jpeg"))
	assert.True(t, IsSupportedFormat("c.webp"))
	assert.False(t, IsSupportedFormat("d.tiff"))
}

func TestToNRGBA(t *testing.T) {
	n := solid(2, 2, color.NRGBA{1, 2, 3, 4})
	assert.Same(t, n, ToNRGBA(n))

	sub := n.SubImage(image.Rect(1, 1, 2, 2))
	out := ToNRGBA(sub)
	assert.Equal(t, image.Rect(0, 0, 1, 1), out.Rect)
	assert.Equal(t, color.NRGBA{1, 2, 3, 4}, out.NRGBAAt(0, 0))
}

func TestComposite(t *testing.T) {
	// left half opaque red, right half transparent
	fg := image.NewNRGBA(image.Rect(0, 0, 4, 2))
	for y := 0; y < 2; y++ {
		for x := 0; x < 2; x++ {
			fg.SetNRGBA(x, y, color.NRGBA{255, 0, 0, 255})
		}
	}

	t.Run("transparent", func(t *testing.T) {
		out, err := Composite(fg, DefaultBackground(), 4, 2)
		require.NoError(t, err)
		assert.Equal(t, color.NRGBA{255, 0, 0, 255}, out.NRGBAAt(0, 0))
		assert.Equal(t, uint8(0), out.NRGBAAt(3, 1).A)
	})

	t.Run("color", func(t *testing.T) {
		out, err := Composite(fg, Background{Type: BackgroundColor, Color: "#00ff00"}, 4, 2)
		require.NoError(t, err)
		assert.Equal(t, color.NRGBA{255, 0, 0, 255}, out.NRGBAAt(1, 1))
		assert.Equal(t, color.NRGBA{0, 255, 0, 255}, out.NRGBAAt(3, 0))
	})

	t.Run("image", func(t *testing.T) {
		bg := solid(4, 2, color.NRGBA{0, 0, 255, 255})
		out, err := Composite(fg, Background{Type: BackgroundImage, Image: bg}, 4, 2)
		require.NoError(t, err)
		assert.Equal(t, color.NRGBA{0, 0, 255, 255}, out.NRGBAAt(3, 1))
	})

	t.Run("image background is stretched", func(t *testing.T) {
		bg := solid(1, 1, color.NRGBA{0, 0, 255, 255})
		out, err := Composite(fg, Background{Type: BackgroundImage, Image: bg}, 4, 2)
		require.NoError(t, err)
		assert.Equal(t, color.NRGBA{0, 0, 255, 255}, out.NRGBAAt(3, 1))
	})

	t.Run("errors", func(t *testing.T) {
		_, err := Composite(nil, DefaultBackground(), 4, 2)
		assert.ErrorIs(t, err, ErrNoForeground)
		_, err = Composite(fg, DefaultBackground(), 0, 2)
		assert.Error(t, err)
		_, err = Composite(fg, Background{Type: BackgroundColor, Color: "nope"}, 4, 2)
		assert.Error(t, err)
		_, err = Composite(fg, Background{Type: BackgroundImage}, 4, 2)
		assert.Error(t, err)
	})
}

func TestBackgroundTypeRoundTrip(t *testing.T) {
	for _, bt := range []BackgroundType{BackgroundTransparent, BackgroundColor, BackgroundImage} {
		got, err := ParseBackgroundType(bt.String())
		require.NoError(t, err)
		assert.Equal(t, bt, got)
	}
	_, err := ParseBackgroundType("plaid")
	assert.Error(t, err)
}
