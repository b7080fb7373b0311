package image

import (
	"errors"
	"fmt"
	"image"
	"image/draw"

	"cutout-studio/pkg/colorutil"

	xdraw "golang.org/x/image/draw"
)

// BackgroundType selects what is painted behind a cutout.
type BackgroundType int

const (
	BackgroundTransparent BackgroundType = iota
	BackgroundColor
	BackgroundImage
)

func (t BackgroundType) String() string {
	switch t {
	case BackgroundTransparent:
		return "transparent"
	case BackgroundColor:
		return "color"
	case BackgroundImage:
		return "image"
	default:
		return "unknown"
	}
}

// ParseBackgroundType is the inverse of BackgroundType.String.
func ParseBackgroundType(s string) (BackgroundType, error) {
	switch s {
	case "transparent":
		return BackgroundTransparent, nil
	case "color":
		return BackgroundColor, nil
	case "image":
		return BackgroundImage, nil
	}
	return 0, fmt.Errorf("unknown background type %q", s)
}

// Background is the backdrop for one image.
type Background struct {
	Type  BackgroundType
	Color string      // "#rrggbb", used when Type is BackgroundColor
	Image image.Image // used when Type is BackgroundImage
}

// DefaultBackground is transparent, with white preselected for the color mode.
func DefaultBackground() Background {
	return Background{Type: BackgroundTransparent, Color: "#ffffff"}
}

var ErrNoForeground = errors.New("composite: no foreground")

// Composite paints bg onto a w×h canvas and draws fg stretched over it.
// A transparent background leaves the canvas unpainted; an image
// background is stretched to fill.
func Composite(fg image.Image, bg Background, w, h int) (*image.NRGBA, error) {
	if fg == nil {
		return nil, ErrNoForeground
	}
	if w <= 0 || h <= 0 {
		return nil, fmt.Errorf("composite: invalid size %dx%d", w, h)
	}
	result := image.NewNRGBA(image.Rect(0, 0, w, h))

	switch bg.Type {
	case BackgroundTransparent:
	case BackgroundColor:
		c, err := colorutil.ParseHex(bg.Color)
		if err != nil {
			return nil, fmt.Errorf("composite: %w", err)
		}
		draw.Draw(result, result.Rect, image.NewUniform(c), image.Point{}, draw.Src)
	case BackgroundImage:
		if bg.Image == nil {
			return nil, errors.New("composite: image background without an image")
		}
		stretch(result, bg.Image, draw.Src)
	default:
		return nil, fmt.Errorf("composite: unknown background type %d", bg.Type)
	}

	stretch(result, fg, draw.Over)
	return result, nil
}

// stretch draws src scaled to cover all of dst.
func stretch(dst *image.NRGBA, src image.Image, op draw.Op) {
	sr := src.Bounds()
	if sr.Dx() == dst.Rect.Dx() && sr.Dy() == dst.Rect.Dy() {
		draw.Draw(dst, dst.Rect, src, sr.Min, op)
		return
	}
	xdraw.CatmullRom.Scale(dst, dst.Rect, src, sr, op, nil)
}
