package app

import (
	"testing"

	"fyne.io/fyne/v2/test"
	"fyne.io/fyne/v2/theme"
	"github.com/stretchr/testify/assert"
)

func TestThemeVariant(t *testing.T) {
	test.NewTempApp(t)
	dark := NewTheme(ThemeDark)
	light := NewTheme("anything")
	assert.True(t, dark.Dark())
	assert.False(t, light.Dark())

	assert.Equal(t, theme.DefaultTheme().Color(theme.ColorNameBackground, theme.VariantDark),
		dark.Color(theme.ColorNameBackground, theme.VariantLight))
	assert.Equal(t, dark.Color(theme.ColorNamePrimary, theme.VariantDark),
		light.Color(theme.ColorNamePrimary, theme.VariantLight))
}

func TestToggleTheme(t *testing.T) {
	assert.Equal(t, ThemeDark, ToggleTheme(ThemeLight))
	assert.Equal(t, ThemeLight, ToggleTheme(ThemeDark))
	assert.Equal(t, ThemeDark, ToggleTheme(""))
}

func TestThemeSizes(t *testing.T) {
	test.NewTempApp(t)
	th := NewTheme(ThemeLight)
	assert.Equal(t, float32(12), th.Size(theme.SizeNameScrollBar))
	assert.Equal(t, float32(8), th.Size(theme.SizeNameScrollBarSmall))
	assert.Equal(t, theme.DefaultTheme().Size(theme.SizeNamePadding), th.Size(theme.SizeNamePadding))
}
