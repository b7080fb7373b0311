package removal

import (
	"bytes"
	"context"
	"image"
	"image/color"
	"image/png"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

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

func TestReport(t *testing.T) {
	t.Parallel()

	var got []int
	p := func(pct int) { got = append(got, pct) }
	Report(p, -5)
	Report(p, 42)
	Report(p, 140)
	Report(nil, 10)
	assert.Equal(t, []int{0, 42, 100}, got)
}

func TestResizeWithinMax(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name         string
		w, h         int
		maxSide      uint
		wantW, wantH int
	}{
		{"already small", 40, 20, 100, 40, 20},
		{"no limit", 400, 200, 0, 400, 200},
		{"landscape", 400, 200, 100, 100, 50},
		{"portrait", 90, 300, 150, 45, 150},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			out := ResizeWithinMax(solid(tt.w, tt.h, color.NRGBA{R: 9, A: 255}), tt.maxSide)
			assert.Equal(t, tt.wantW, out.Rect.Dx())
			assert.Equal(t, tt.wantH, out.Rect.Dy())
		})
	}
}

func TestApplyMask(t *testing.T) {
	t.Parallel()

	src := solid(4, 2, color.NRGBA{R: 200, G: 100, B: 50, A: 255})
	mask := image.NewGray(image.Rect(0, 0, 4, 2))
	mask.Pix = []uint8{0, 255, 128, 255, 255, 0, 0, 64}

	out := ApplyMask(src, mask)
	assert.Equal(t, uint8(0), out.NRGBAAt(0, 0).A)
	assert.Equal(t, uint8(255), out.NRGBAAt(1, 0).A)
	assert.Equal(t, uint8(128), out.NRGBAAt(2, 0).A)
	assert.Equal(t, uint8(64), out.NRGBAAt(3, 1).A)
	assert.Equal(t, uint8(200), out.NRGBAAt(0, 0).R, "colour is kept under zero alpha")
	assert.Equal(t, uint8(255), src.NRGBAAt(0, 0).A, "source is not modified")
}

func TestApplyMaskStretchesMask(t *testing.T) {
	t.Parallel()

	src := solid(8, 8, color.NRGBA{A: 255})
	mask := image.NewGray(image.Rect(0, 0, 2, 2))
	for i := range mask.Pix {
		mask.Pix[i] = 255
	}
	out := ApplyMask(src, mask)
	require.Equal(t, image.Rect(0, 0, 8, 8), out.Rect)
	assert.Equal(t, uint8(255), out.NRGBAAt(4, 4).A)
}

func TestHTTPRemover(t *testing.T) {
	t.Parallel()

	cutout := solid(3, 3, color.NRGBA{R: 1, G: 2, B: 3, A: 0})

	tests := []struct {
		name    string
		handler http.HandlerFunc
		wantErr string
	}{
		{
			name: "success",
			handler: func(w http.ResponseWriter, r *http.Request) {
				assert.Equal(t, http.MethodPost, r.Method)
				file, hdr, err := r.FormFile("image")
				if !assert.NoError(t, err) {
					http.Error(w, err.Error(), http.StatusBadRequest)
					return
				}
				defer file.Close()
				assert.Equal(t, "image.png", hdr.Filename)
				data, _ := io.ReadAll(file)
				_, err = png.Decode(bytes.NewReader(data))
				assert.NoError(t, err)

				w.Header().Set("Content-Type", "image/png")
				_ = png.Encode(w, cutout)
			},
		},
		{
			name: "server error",
			handler: func(w http.ResponseWriter, r *http.Request) {
				http.Error(w, "model exploded", http.StatusInternalServerError)
			},
			wantErr: "status 500: model exploded",
		},
		{
			name: "not an image",
			handler: func(w http.ResponseWriter, r *http.Request) {
				_, _ = w.Write([]byte("hello"))
			},
			wantErr: "decode response",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			srv := httptest.NewServer(tt.handler)
			defer srv.Close()

			var pcts []int
			h := NewHTTP(srv.URL, 5*time.Second)
			out, err := h.Remove(context.Background(), solid(3, 3, color.NRGBA{R: 255, A: 255}), func(p int) {
				pcts = append(pcts, p)
			})
			if tt.wantErr != "" {
				require.Error(t, err)
				assert.ErrorIs(t, err, ErrRemovalFailed)
				assert.ErrorContains(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, image.Rect(0, 0, 3, 3), out.Bounds())
			_, _, _, a := out.At(1, 1).RGBA()
			assert.Zero(t, a)
			assert.Equal(t, []int{0, 10, 90, 100}, pcts)
		})
	}
}

func TestHTTPRemoverCanceled(t *testing.T) {
	t.Parallel()

	block := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-block:
		case <-r.Context().Done():
		}
	}))
	defer srv.Close()
	defer close(block)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := NewHTTP(srv.URL, 0).Remove(ctx, solid(2, 2, color.NRGBA{A: 255}), nil)
	assert.ErrorIs(t, err, context.Canceled)
	assert.ErrorIs(t, err, ErrRemovalFailed)
}

func TestFuncAdapter(t *testing.T) {
	t.Parallel()

	var r Remover = Func(func(_ context.Context, img image.Image, p ProgressFunc) (image.Image, error) {
		Report(p, 100)
		return img, nil
	})
	in := solid(1, 1, color.NRGBA{A: 255})
	out, err := r.Remove(context.Background(), in, nil)
	require.NoError(t, err)
	assert.Same(t, in, out)
}
