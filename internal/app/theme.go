package app

import (
	"image/color"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/theme"
)

// Theme names stored in preferences.
const (
	ThemeLight = "light"
	ThemeDark  = "dark"
)

// CutoutTheme pins the default fyne theme to one variant and tints it
// with the accent colour.
type CutoutTheme struct {
	variant fyne.ThemeVariant
}

var _ fyne.Theme = (*CutoutTheme)(nil)

// NewTheme returns the theme for a preference name. Anything but "dark"
// is light.
func NewTheme(name string) *CutoutTheme {
	if name == ThemeDark {
		return &CutoutTheme{variant: theme.VariantDark}
	}
	return &CutoutTheme{variant: theme.VariantLight}
}

// ToggleTheme returns the other theme name.
func ToggleTheme(name string) string {
	if name == ThemeDark {
		return ThemeLight
	}
	return ThemeDark
}

// Dark reports whether this is the dark variant.
func (t *CutoutTheme) Dark() bool { return t.variant == theme.VariantDark }

func (t *CutoutTheme) Color(name fyne.ThemeColorName, _ fyne.ThemeVariant) color.Color {
	switch name {
	case theme.ColorNamePrimary:
		return color.NRGBA{R: 0x3B, G: 0x82, B: 0xF6, A: 0xFF}
	case theme.ColorNameSelection:
		return color.NRGBA{R: 0x3B, G: 0x82, B: 0xF6, A: 0x40}
	case theme.ColorNameScrollBar:
		return color.NRGBA{R: 0x80, G: 0x80, B: 0x80, A: 0xFF}
	default:
		return theme.DefaultTheme().Color(name, t.variant)
	}
}

func (t *CutoutTheme) Font(style fyne.TextStyle) fyne.Resource {
	return theme.DefaultTheme().Font(style)
}

func (t *CutoutTheme) Icon(name fyne.ThemeIconName) fyne.Resource {
	return theme.DefaultTheme().Icon(name)
}

func (t *CutoutTheme) Size(name fyne.ThemeSizeName) float32 {
	switch name {
	case theme.SizeNameScrollBar:
		return 12
	case theme.SizeNameScrollBarSmall:
		return 8
	default:
		return theme.DefaultTheme().Size(name)
	}
}
