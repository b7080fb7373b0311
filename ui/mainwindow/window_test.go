package mainwindow

import (
	"context"
	goimage "image"
	"image/png"
	"os"
	"path/filepath"
	"testing"
	"time"

	"cutout-studio/internal/app"
	"cutout-studio/internal/config"
	"cutout-studio/internal/image"
	"cutout-studio/internal/removal"
	"cutout-studio/ui/prefs"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/storage"
	"fyne.io/fyne/v2/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newWindow(t *testing.T) (*MainWindow, *app.State, *prefs.Prefs) {
	t.Helper()
	a := test.NewApp()
	t.Cleanup(a.Quit)

	state := app.NewState(removal.Func(func(_ context.Context, img goimage.Image, _ removal.ProgressFunc) (goimage.Image, error) {
		return img, nil
	}), nil)
	p := prefs.LoadFile(filepath.Join(t.TempDir(), "prefs.json"))
	mw := New(a, state, config.Default(), p)
	t.Cleanup(mw.Close)
	return mw, state, p
}

func opaque(w, h int) *goimage.NRGBA {
	img := goimage.NewNRGBA(goimage.Rect(0, 0, w, h))
	for i := 3; i < len(img.Pix); i += 4 {
		img.Pix[i] = 255
	}
	return img
}

func TestPreviewFollowsSelection(t *testing.T) {
	mw, state, _ := newWindow(t)
	assert.Nil(t, mw.preview.Image)
	assert.True(t, mw.placeholder.Visible())

	src := opaque(8, 8)
	id := state.Add(&image.Source{Name: "a.png", Image: src})[0]
	assert.Equal(t, src, mw.preview.Image, "original shown before removal")
	assert.False(t, mw.placeholder.Visible())

	require.NoError(t, state.Process(context.Background(), id))
	it, _ := state.Item(id)
	assert.Equal(t, it.Result(), mw.preview.Image)
	assert.Equal(t, "a.png: background removed", mw.statusBar.Text)

	state.Clear()
	assert.Nil(t, mw.preview.Image)
}

func TestPreviewComparesFinishedItem(t *testing.T) {
	mw, state, _ := newWindow(t)
	src := opaque(8, 8)
	id := state.Add(&image.Source{Name: "a.png", Image: src})[0]
	assert.False(t, mw.compare.Visible(), "nothing to compare before removal")
	assert.True(t, mw.preview.Visible())

	require.NoError(t, state.Process(context.Background(), id))
	it, _ := state.Item(id)
	assert.True(t, mw.compare.Visible())
	assert.False(t, mw.preview.Visible())
	before, after := mw.compare.Images()
	assert.Equal(t, src, before)
	assert.Equal(t, it.Result(), after)

	state.Clear()
	assert.False(t, mw.compare.Visible())
	before, after = mw.compare.Images()
	assert.Nil(t, before)
	assert.Nil(t, after)
}

func writePNG(t *testing.T, path string) {
	t.Helper()
	f, err := os.Create(path)
	require.NoError(t, err)
	defer f.Close()
	require.NoError(t, png.Encode(f, opaque(6, 4)))
}

func TestDroppedFilesAreQueued(t *testing.T) {
	mw, state, _ := newWindow(t)
	dir := t.TempDir()
	a, b := filepath.Join(dir, "a.png"), filepath.Join(dir, "b.png")
	writePNG(t, a)
	writePNG(t, b)

	mw.onDropped(fyne.NewPos(10, 10), []fyne.URI{
		storage.NewFileURI(a),
		storage.NewFileURI(b),
	})

	items := state.Items()
	require.Len(t, items, 2)
	assert.Equal(t, "a.png", items[0].Name)
	assert.Equal(t, 6, items[0].Width)
	sel, ok := state.Selected()
	require.True(t, ok)
	assert.Equal(t, items[0].ID, sel.ID)
}

func TestDropIgnoresNonFileURIs(t *testing.T) {
	mw, state, _ := newWindow(t)
	u, err := storage.ParseURI("https://example.com/a.png")
	require.NoError(t, err)

	mw.onDropped(fyne.NewPos(0, 0), []fyne.URI{u, nil})
	assert.Empty(t, state.Items())
}

func TestOpenEditorRequiresCutout(t *testing.T) {
	mw, state, _ := newWindow(t)
	state.Add(&image.Source{Name: "a.png", Image: opaque(8, 8)})

	mw.openEditor()
	assert.Nil(t, mw.Editor())
	assert.Equal(t, "Remove the background before erasing manually", mw.statusBar.Text)
}

func TestEditorRoundTrip(t *testing.T) {
	mw, state, p := newWindow(t)
	id := state.Add(&image.Source{Name: "a.png", Image: opaque(8, 8)})[0]
	require.NoError(t, state.Process(context.Background(), id))

	mw.openEditor()
	ep := mw.Editor()
	require.NotNil(t, ep)
	assert.Same(t, ep.Container(), mw.center.Objects[0])

	mw.openEditor()
	assert.Same(t, ep, mw.Editor(), "one editor at a time")

	require.Eventually(t, func() bool { return ep.BrushSize() > 0 }, 5*time.Second, time.Millisecond)
	ep.Canvas().SetBrushSize(44)
	require.Eventually(t, func() bool { return ep.BrushSize() == 44 }, 5*time.Second, time.Millisecond)

	ep.Close()
	assert.Nil(t, mw.Editor())
	assert.Same(t, mw.previewArea, mw.center.Objects[0])
	assert.Equal(t, 44, p.Int(prefs.KeyBrushSize, 0))
}

func TestRemovingEditedItemClosesEditor(t *testing.T) {
	mw, state, _ := newWindow(t)
	id := state.Add(&image.Source{Name: "a.png", Image: opaque(8, 8)})[0]
	require.NoError(t, state.Process(context.Background(), id))

	mw.openEditor()
	require.NotNil(t, mw.Editor())
	state.Remove(id)
	assert.Nil(t, mw.Editor())
}

func TestToggleTheme(t *testing.T) {
	mw, _, p := newWindow(t)
	mw.onToggleTheme()
	assert.Equal(t, app.ThemeDark, p.String(prefs.KeyTheme, ""))
	mw.onToggleTheme()
	assert.Equal(t, app.ThemeLight, p.String(prefs.KeyTheme, ""))
}
