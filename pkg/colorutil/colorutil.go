// Package colorutil provides shared color utilities for the cutout editor.
package colorutil

import (
	"fmt"
	"image/color"
	"strconv"
	"strings"
)

// Common UI colors.
var (
	Black = color.NRGBA{R: 0, G: 0, B: 0, A: 255}
	White = color.NRGBA{R: 255, G: 255, B: 255, A: 255}

	// Checker tiles drawn behind transparent pixels.
	CheckerLight = color.NRGBA{R: 0xff, G: 0xff, B: 0xff, A: 255}
	CheckerDark  = color.NRGBA{R: 0xe5, G: 0xe7, B: 0xeb, A: 255}

	// Eraser hover indicator: a light ring with a dark outline so it reads
	// on any content.
	BrushRing    = color.NRGBA{R: 255, G: 255, B: 255, A: 204}
	BrushOutline = color.NRGBA{R: 0, G: 0, B: 0, A: 77}
)

// CheckerSize is the checkerboard tile edge in screen pixels.
const CheckerSize = 10

// Presets is the palette offered for solid backgrounds.
var Presets = []string{
	"#ffffff",
	"#000000",
	"#ef4444",
	"#f97316",
	"#eab308",
	"#22c55e",
	"#3b82f6",
	"#8b5cf6",
	"#ec4899",
	"#6b7280",
}

// ParseHex parses "#rgb" or "#rrggbb" (leading '#' optional) into an opaque color.
func ParseHex(s string) (color.NRGBA, error) {
	h := strings.TrimPrefix(strings.TrimSpace(s), "#")
	if len(h) == 3 {
		h = string([]byte{h[0], h[0], h[1], h[1], h[2], h[2]})
	}
	if len(h) != 6 {
		return color.NRGBA{}, fmt.Errorf("invalid hex color %q", s)
	}
	v, err := strconv.ParseUint(h, 16, 32)
	if err != nil {
		return color.NRGBA{}, fmt.Errorf("invalid hex color %q: %w", s, err)
	}
	return color.NRGBA{R: uint8(v >> 16), G: uint8(v >> 8), B: uint8(v), A: 255}, nil
}

// ToHex formats a color as "#rrggbb", ignoring alpha.
func ToHex(c color.Color) string {
	n := color.NRGBAModel.Convert(c).(color.NRGBA)
	return fmt.Sprintf("#%02x%02x%02x", n.R, n.G, n.B)
}

// Checker returns the checkerboard color for screen pixel (x, y).
func Checker(x, y int) color.NRGBA {
	if (x/CheckerSize+y/CheckerSize)%2 == 0 {
		return CheckerLight
	}
	return CheckerDark
}

// Over blends src over an opaque dst, returning an opaque color.
func Over(src color.NRGBA, dst color.NRGBA) color.NRGBA {
	a := uint32(src.A)
	inv := 255 - a
	return color.NRGBA{
		R: uint8((uint32(src.R)*a + uint32(dst.R)*inv) / 255),
		G: uint8((uint32(src.G)*a + uint32(dst.G)*inv) / 255),
		B: uint8((uint32(src.B)*a + uint32(dst.B)*inv) / 255),
		A: 255,
	}
}
