package prefs

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMissingFileGivesFallbacks(t *testing.T) {
	p := LoadFile(filepath.Join(t.TempDir(), "none.json"))
	assert.Equal(t, 30, p.Int(KeyBrushSize, 30))
	assert.Equal(t, "png", p.String(KeyExportFormat, "png"))
}

func TestSaveAndReload(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "preferences.json")
	p := LoadFile(path)
	p.SetInt(KeyBrushSize, 42)
	p.SetString(KeyTheme, "dark")
	require.NoError(t, p.Save())

	q := LoadFile(path)
	assert.Equal(t, 42, q.Int(KeyBrushSize, 30))
	assert.Equal(t, "dark", q.String(KeyTheme, "light"))
	assert.Equal(t, "", q.String(KeyLastDir, ""))
}

func TestWrongTypeFallsBack(t *testing.T) {
	path := filepath.Join(t.TempDir(), "preferences.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"brush_size":"big","theme":7}`), 0o644))

	p := LoadFile(path)
	assert.Equal(t, 30, p.Int(KeyBrushSize, 30))
	assert.Equal(t, "light", p.String(KeyTheme, "light"))
}

func TestCorruptFileIsIgnored(t *testing.T) {
	path := filepath.Join(t.TempDir(), "preferences.json")
	require.NoError(t, os.WriteFile(path, []byte(`{not json`), 0o644))

	p := LoadFile(path)
	p.SetInt(KeyBrushSize, 10)
	assert.Equal(t, 10, p.Int(KeyBrushSize, 30))
}
