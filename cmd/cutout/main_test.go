package main

import (
	"bytes"
	"context"
	goimage "image"
	"image/color"
	"image/png"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"cutout-studio/internal/image"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writePNG(t *testing.T, path string, c color.NRGBA) {
	t.Helper()
	img := goimage.NewNRGBA(goimage.Rect(0, 0, 4, 4))
	for y := 0; y < 4; y++ {
		for x := 0; x < 4; x++ {
			img.SetNRGBA(x, y, c)
		}
	}
	f, err := os.Create(path)
	require.NoError(t, err)
	defer f.Close()
	require.NoError(t, png.Encode(f, img))
}

func TestParseBackground(t *testing.T) {
	dir := t.TempDir()
	bgPath := filepath.Join(dir, "beach.png")
	writePNG(t, bgPath, color.NRGBA{B: 255, A: 255})

	tests := []struct {
		name    string
		in      string
		want    image.BackgroundType
		color   string
		wantErr bool
	}{
		{name: "empty", in: "", want: image.BackgroundTransparent, color: "#ffffff"},
		{name: "transparent", in: "Transparent", want: image.BackgroundTransparent, color: "#ffffff"},
		{name: "hex", in: "#F00", want: image.BackgroundColor, color: "#ff0000"},
		{name: "bad hex", in: "#12", wantErr: true},
		{name: "image", in: bgPath, want: image.BackgroundImage, color: "#ffffff"},
		{name: "missing image", in: filepath.Join(dir, "nope.png"), wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			bg, err := parseBackground(tt.in, 1<<20)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, bg.Type)
			assert.Equal(t, tt.color, bg.Color)
			if tt.want == image.BackgroundImage {
				assert.NotNil(t, bg.Image)
			}
		})
	}
}

func TestRunUsage(t *testing.T) {
	var stdout, stderr bytes.Buffer
	assert.Equal(t, 2, run(context.Background(), nil, &stdout, &stderr))
	assert.Contains(t, stderr.String(), "Usage: cutout")
}

func TestRunVersion(t *testing.T) {
	var stdout, stderr bytes.Buffer
	assert.Equal(t, 0, run(context.Background(), []string{"-version"}, &stdout, &stderr))
	assert.NotEmpty(t, strings.TrimSpace(stdout.String()))
}

func TestRunRejectsUnknownFormat(t *testing.T) {
	var stdout, stderr bytes.Buffer
	code := run(context.Background(), []string{"-in", "x.png", "-format", "gif"}, &stdout, &stderr)
	assert.Equal(t, 1, code)
	assert.Contains(t, stderr.String(), "export.format")
}

func TestRunHTTPPipeline(t *testing.T) {
	// The service erases everything, so a colour background shows through.
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		img := goimage.NewNRGBA(goimage.Rect(0, 0, 4, 4))
		w.Header().Set("Content-Type", "image/png")
		_ = png.Encode(w, img)
	}))
	defer srv.Close()

	dir := t.TempDir()
	in := filepath.Join(dir, "cat.png")
	writePNG(t, in, color.NRGBA{G: 255, A: 255})
	cfgPath := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(cfgPath, []byte("removal:\n  backend: http\n  endpoint: "+srv.URL+"\nlog:\n  level: error\n"), 0o644))
	outDir := filepath.Join(dir, "out")

	var stdout, stderr bytes.Buffer
	code := run(context.Background(), []string{
		"-config", cfgPath,
		"-bg", "#ff0000",
		"-out", outDir,
		in, filepath.Join(dir, "notes.txt"),
	}, &stdout, &stderr)

	assert.Equal(t, 1, code, "skipped input is reported in the exit status")
	assert.Contains(t, stderr.String(), "Skipped:")
	want := filepath.Join(outDir, "cat_no-bg.png")
	assert.Contains(t, stdout.String(), "cat.png -> "+want)

	f, err := os.Open(want)
	require.NoError(t, err)
	defer f.Close()
	got, err := png.Decode(f)
	require.NoError(t, err)
	r, g, b, a := got.At(1, 1).RGBA()
	assert.Equal(t, [4]uint32{0xffff, 0, 0, 0xffff}, [4]uint32{r, g, b, a})
}
