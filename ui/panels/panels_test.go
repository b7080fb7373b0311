package panels

import (
	"context"
	goimage "image"
	"image/color"
	"path/filepath"
	"testing"

	"cutout-studio/internal/app"
	"cutout-studio/internal/config"
	"cutout-studio/internal/editor"
	"cutout-studio/internal/image"
	"cutout-studio/internal/removal"
	"cutout-studio/ui/prefs"

	"fyne.io/fyne/v2/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStatusText(t *testing.T) {
	tests := []struct {
		item app.Item
		want string
	}{
		{app.Item{Status: app.StatusIdle}, "waiting"},
		{app.Item{Status: app.StatusProcessing, Progress: 42}, "42%"},
		{app.Item{Status: app.StatusDone}, "done"},
		{app.Item{Status: app.StatusDone, Edited: goimage.NewNRGBA(goimage.Rect(0, 0, 1, 1))}, "edited"},
		{app.Item{Status: app.StatusError}, "failed"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, StatusText(tt.item))
	}
}

func TestZoomText(t *testing.T) {
	assert.Equal(t, "100%", ZoomText(1))
	assert.Equal(t, "130%", ZoomText(editor.ButtonZoomStep))
	assert.Equal(t, "1000%", ZoomText(editor.MaxZoom))
}

func TestNormalizeHex(t *testing.T) {
	hex, err := NormalizeHex(" #F0A ")
	require.NoError(t, err)
	assert.Equal(t, "#ff00aa", hex)

	_, err = NormalizeHex("#12")
	assert.Error(t, err)
}

func newPanelState(t *testing.T) *app.State {
	t.Helper()
	test.NewApp()
	return app.NewState(removal.Func(func(_ context.Context, img goimage.Image, _ removal.ProgressFunc) (goimage.Image, error) {
		return img, nil
	}), nil)
}

func source(name string) *image.Source {
	img := goimage.NewNRGBA(goimage.Rect(0, 0, 4, 4))
	img.SetNRGBA(0, 0, color.NRGBA{A: 255})
	return &image.Source{Name: name, Image: img}
}

func TestQueuePanelTracksState(t *testing.T) {
	state := newPanelState(t)
	p := prefs.LoadFile(filepath.Join(t.TempDir(), "p.json"))
	qp := NewQueuePanel(context.Background(), state, p)
	w := test.NewWindow(qp.Container())
	defer w.Close()

	assert.Equal(t, 0, qp.list.Length())
	assert.True(t, qp.removeBtn.Disabled())

	ids := state.Add(source("a.png"), source("b.png"))
	assert.Equal(t, 2, qp.list.Length())
	assert.False(t, qp.removeBtn.Disabled())
	assert.True(t, qp.editBtn.Disabled(), "nothing to edit before removal")

	require.NoError(t, state.Process(context.Background(), ids[0]))
	assert.False(t, qp.editBtn.Disabled())

	qp.list.Select(1)
	sel, ok := state.Selected()
	require.True(t, ok)
	assert.Equal(t, ids[1], sel.ID)

	qp.onRemove()
	assert.Equal(t, 1, qp.list.Length())
}

func TestBackgroundPanelAppliesPreset(t *testing.T) {
	state := newPanelState(t)
	p := prefs.LoadFile(filepath.Join(t.TempDir(), "p.json"))
	bp := NewBackgroundPanel(state, config.Default(), p)
	w := test.NewWindow(bp.Container())
	defer w.Close()

	id := state.Add(source("a.png"))[0]
	require.NoError(t, state.Process(context.Background(), id))
	assert.False(t, bp.exportBtn.Disabled())

	bp.setColor("#ef4444")
	it, _ := state.Item(id)
	assert.Equal(t, image.BackgroundColor, it.Background.Type)
	assert.Equal(t, "#ef4444", it.Background.Color)
	assert.Equal(t, "Color", bp.typeRadio.Selected)
	assert.NotNil(t, it.Composite)

	bp.typeRadio.SetSelected("Transparent")
	it, _ = state.Item(id)
	assert.Equal(t, image.BackgroundTransparent, it.Background.Type)
	assert.Nil(t, it.Composite)
}
