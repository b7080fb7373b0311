package colorutil

import (
	"image/color"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseHex(t *testing.T) {
	tests := []struct {
		in      string
		want    color.NRGBA
		wantErr bool
	}{
		{in: "#ffffff", want: color.NRGBA{255, 255, 255, 255}},
		{in: "#3b82f6", want: color.NRGBA{0x3b, 0x82, 0xf6, 255}},
		{in: "000", want: color.NRGBA{0, 0, 0, 255}},
		{in: "#f00", want: color.NRGBA{255, 0, 0, 255}},
		{in: "#12345", wantErr: true},
		{in: "#gggggg", wantErr: true},
		{in: "", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseHex(tt.in)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestPresetsRoundTrip(t *testing.T) {
	for _, p := range Presets {
		c, err := ParseHex(p)
		require.NoError(t, err)
		assert.Equal(t, p, ToHex(c))
	}
}

func TestChecker(t *testing.T) {
	assert.Equal(t, CheckerLight, Checker(0, 0))
	assert.Equal(t, CheckerDark, Checker(CheckerSize, 0))
	assert.Equal(t, CheckerLight, Checker(CheckerSize, CheckerSize))
}

func TestOver(t *testing.T) {
	assert.Equal(t, White, Over(color.NRGBA{0, 0, 0, 0}, White))
	assert.Equal(t, Black, Over(Black, White))
}
