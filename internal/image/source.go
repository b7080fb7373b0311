// Package image provides source loading, input validation, and background
// compositing.
package image

import (
	"bytes"
	"fmt"
	"image"
	"image/draw"
	_ "image/jpeg"
	_ "image/png"
	"os"
	"path/filepath"
	"strings"

	"cutout-studio/pkg/geometry"

	_ "golang.org/x/image/webp"
)

// Source is a decoded input image together with where it came from.
type Source struct {
	Path  string      // Original file path, empty for in-memory sources
	Name  string      // Display name (base file name)
	MIME  string      // Detected content type
	Image image.Image // Decoded pixels
}

// Load validates and decodes the image at path.
func Load(path string, maxBytes int64) (*Source, error) {
	if err := checkSize(filepath.Base(path), path, maxBytes); err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open image: %w", err)
	}
	src, err := Decode(filepath.Base(path), data, maxBytes)
	if err != nil {
		return nil, err
	}
	src.Path = path
	return src, nil
}

// Decode validates and decodes an in-memory image.
func Decode(name string, data []byte, maxBytes int64) (*Source, error) {
	mime, err := Validate(name, data, maxBytes)
	if err != nil {
		return nil, err
	}
	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("failed to decode image %s: %w", name, err)
	}
	return &Source{Name: name, MIME: mime, Image: img}, nil
}

// Width returns the image width in pixels.
func (s *Source) Width() int {
	if s.Image == nil {
		return 0
	}
	return s.Image.Bounds().Dx()
}

// Height returns the image height in pixels.
func (s *Source) Height() int {
	if s.Image == nil {
		return 0
	}
	return s.Image.Bounds().Dy()
}

// Size returns the image dimensions.
func (s *Source) Size() geometry.Size {
	return geometry.Size{
		Width:  float64(s.Width()),
		Height: float64(s.Height()),
	}
}

// ToNRGBA returns img as a tightly packed NRGBA anchored at the origin,
// copying only when it is not already one.
func ToNRGBA(img image.Image) *image.NRGBA {
	if n, ok := img.(*image.NRGBA); ok && n.Rect.Min == (image.Point{}) && n.Stride == 4*n.Rect.Dx() {
		return n
	}
	b := img.Bounds()
	out := image.NewNRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	draw.Draw(out, out.Rect, img, b.Min, draw.Src)
	return out
}

// SupportedFormats returns the file extensions accepted as input.
func SupportedFormats() []string {
	return []string{".png", ".jpg", ".jpeg", ".webp"}
}

// IsSupportedFormat checks if the given path has a supported image extension.
func IsSupportedFormat(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	for _, format := range SupportedFormats() {
		if ext == format {
			return true
		}
	}
	return false
}
