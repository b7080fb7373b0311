// Package mainwindow provides the main application window.
package mainwindow

import (
	"context"
	"errors"
	"fmt"
	goimage "image"
	"image/color"
	"log/slog"
	"sync"

	"cutout-studio/internal/app"
	"cutout-studio/internal/config"
	"cutout-studio/internal/editor"
	"cutout-studio/internal/logging"
	"cutout-studio/internal/version"
	"cutout-studio/pkg/colorutil"
	"cutout-studio/ui/canvas"
	"cutout-studio/ui/panels"
	"cutout-studio/ui/prefs"

	"fyne.io/fyne/v2"
	fynecanvas "fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/driver/desktop"
	"fyne.io/fyne/v2/widget"
	"github.com/segmentio/ksuid"
)

const appTitle = "Cutout Studio"

// MainWindow is the primary application window.
type MainWindow struct {
	fyne.Window
	app    fyne.App
	ctx    context.Context
	cancel context.CancelFunc

	state *app.State
	cfg   *config.Config
	prefs *prefs.Prefs

	sidePanel   *panels.SidePanel
	preview     *fynecanvas.Image
	compare     *canvas.CompareView
	placeholder *widget.Label
	previewArea fyne.CanvasObject
	center      *fyne.Container
	statusBar   *widget.Label

	mu        sync.Mutex
	editor    *panels.EditorPanel
	editingID ksuid.KSUID

	log *slog.Logger
}

// New creates a new main window. Background work started from the window
// is canceled when it closes.
func New(fyneApp fyne.App, state *app.State, cfg *config.Config, p *prefs.Prefs) *MainWindow {
	if cfg == nil {
		cfg = config.Default()
	}
	win := fyneApp.NewWindow(appTitle + " " + version.String())
	ctx, cancel := context.WithCancel(context.Background())

	mw := &MainWindow{
		Window: win,
		app:    fyneApp,
		ctx:    ctx,
		cancel: cancel,
		state:  state,
		cfg:    cfg,
		prefs:  p,
		log:    logging.For("mainwindow"),
	}

	mw.setupUI()
	mw.setupMenus()
	mw.setupShortcuts()
	mw.setupEventHandlers()

	win.SetOnDropped(mw.onDropped)
	win.SetOnClosed(func() {
		if ep := mw.Editor(); ep != nil {
			ep.Close()
		}
		mw.cancel()
	})
	win.Resize(fyne.NewSize(1100, 720))
	return mw
}

// setupUI creates the main UI layout.
func (mw *MainWindow) setupUI() {
	mw.sidePanel = panels.NewSidePanel(mw.ctx, mw.state, mw.cfg, mw.prefs)
	mw.sidePanel.SetWindow(mw.Window)
	mw.sidePanel.Queue().OnEdit(mw.openEditor)

	mw.statusBar = widget.NewLabel("Add images to get started")

	checker := fynecanvas.NewRasterWithPixels(func(x, y, _, _ int) color.Color {
		return colorutil.Checker(x, y)
	})
	mw.preview = fynecanvas.NewImageFromImage(nil)
	mw.preview.FillMode = fynecanvas.ImageFillContain
	mw.preview.ScaleMode = fynecanvas.ImageScaleSmooth
	mw.placeholder = widget.NewLabelWithStyle("No image selected", fyne.TextAlignCenter, fyne.TextStyle{Italic: true})
	mw.compare = canvas.NewCompareView()
	mw.compare.Hide()
	mw.previewArea = container.NewStack(checker, mw.preview, mw.compare, container.NewCenter(mw.placeholder))

	mw.center = container.NewStack(mw.previewArea)

	split := container.NewHSplit(mw.sidePanel.Container(), mw.center)
	split.SetOffset(0.3)

	content := container.NewBorder(
		nil,
		container.NewPadded(mw.statusBar),
		nil,
		nil,
		split,
	)
	mw.SetContent(content)
	mw.refreshPreview()
}

// setupMenus creates the application menus.
func (mw *MainWindow) setupMenus() {
	fileMenu := fyne.NewMenu("File",
		fyne.NewMenuItem("Add Images...", mw.sidePanel.Queue().Browse),
		fyne.NewMenuItem("Export...", mw.sidePanel.Background().Export),
		fyne.NewMenuItemSeparator(),
		fyne.NewMenuItem("Quit", func() { mw.app.Quit() }),
	)

	editMenu := fyne.NewMenu("Edit",
		fyne.NewMenuItem("Undo", mw.onUndo),
		fyne.NewMenuItem("Redo", mw.onRedo),
		fyne.NewMenuItemSeparator(),
		fyne.NewMenuItem("Erase Manually...", mw.openEditor),
	)

	viewMenu := fyne.NewMenu("View",
		fyne.NewMenuItem("Zoom In", mw.onZoomIn),
		fyne.NewMenuItem("Zoom Out", mw.onZoomOut),
		fyne.NewMenuItem("Reset Zoom", mw.onResetZoom),
		fyne.NewMenuItemSeparator(),
		fyne.NewMenuItem("Toggle Dark Mode", mw.onToggleTheme),
	)

	helpMenu := fyne.NewMenu("Help",
		fyne.NewMenuItem("About", mw.onAbout),
	)

	mw.SetMainMenu(fyne.NewMainMenu(fileMenu, editMenu, viewMenu, helpMenu))
}

func (mw *MainWindow) setupShortcuts() {
	c := mw.Canvas()
	c.AddShortcut(&desktop.CustomShortcut{KeyName: fyne.KeyZ, Modifier: fyne.KeyModifierShortcutDefault},
		func(fyne.Shortcut) { mw.onUndo() })
	c.AddShortcut(&desktop.CustomShortcut{KeyName: fyne.KeyZ, Modifier: fyne.KeyModifierShortcutDefault | fyne.KeyModifierShift},
		func(fyne.Shortcut) { mw.onRedo() })
	c.AddShortcut(&desktop.CustomShortcut{KeyName: fyne.KeyY, Modifier: fyne.KeyModifierShortcutDefault},
		func(fyne.Shortcut) { mw.onRedo() })
}

// setupEventHandlers registers for application events.
func (mw *MainWindow) setupEventHandlers() {
	mw.state.On(app.EventSelectionChanged, func(interface{}) { mw.refreshPreview() })
	mw.state.On(app.EventItemsAdded, func(data interface{}) {
		if ids, ok := data.([]ksuid.KSUID); ok {
			mw.updateStatus(fmt.Sprintf("Added %d image(s)", len(ids)))
		}
	})
	mw.state.On(app.EventItemUpdated, func(data interface{}) {
		id, _ := data.(ksuid.KSUID)
		it, ok := mw.state.Item(id)
		if !ok {
			return
		}
		switch it.Status {
		case app.StatusDone:
			mw.updateStatus(it.Name + ": background removed")
		case app.StatusError:
			mw.updateStatus(fmt.Sprintf("%s: %v", it.Name, it.Err))
		}
		if sel, ok := mw.state.Selected(); ok && sel.ID == id {
			mw.refreshPreview()
		}
	})
	mw.state.On(app.EventProgress, func(data interface{}) {
		id, _ := data.(ksuid.KSUID)
		if it, ok := mw.state.Item(id); ok {
			mw.updateStatus(fmt.Sprintf("Processing %s... %d%%", it.Name, it.Progress))
		}
	})
	mw.state.On(app.EventItemRemoved, func(data interface{}) {
		id, _ := data.(ksuid.KSUID)
		mw.mu.Lock()
		ep := mw.editor
		editing := ep != nil && mw.editingID == id
		mw.mu.Unlock()
		if editing {
			ep.Close()
		}
	})
	mw.state.On(app.EventItemsCleared, func(interface{}) {
		mw.mu.Lock()
		ep := mw.editor
		mw.mu.Unlock()
		if ep != nil {
			ep.Close()
		}
		mw.updateStatus("Queue cleared")
	})
}

// updateStatus updates the status bar text.
func (mw *MainWindow) updateStatus(text string) {
	mw.statusBar.SetText(text)
}

// refreshPreview shows the selected item's result, or its original while
// no result exists. Finished items get the before/after divider.
func (mw *MainWindow) refreshPreview() {
	var img goimage.Image
	done := false
	if it, ok := mw.state.Selected(); ok {
		img = it.Result()
		if img == nil {
			img = it.Original
		} else if it.Status == app.StatusDone {
			done = true
			mw.compare.SetImages(it.Original, img)
		}
	}
	mw.preview.Image = img
	if img == nil {
		mw.placeholder.Show()
	} else {
		mw.placeholder.Hide()
	}
	if done {
		mw.preview.Hide()
		mw.compare.Show()
	} else {
		mw.compare.Hide()
		mw.compare.SetImages(nil, nil)
		mw.preview.Show()
	}
	mw.preview.Refresh()
}

// onDropped queues local files dropped onto the window.
func (mw *MainWindow) onDropped(_ fyne.Position, uris []fyne.URI) {
	var paths []string
	for _, u := range uris {
		if u == nil || u.Scheme() != "file" {
			continue
		}
		paths = append(paths, u.Path())
	}
	if len(paths) == 0 {
		return
	}
	mw.log.Debug("files dropped", "count", len(paths))
	mw.sidePanel.Queue().AddFiles(paths)
}

// Editor returns the open editor panel, or nil.
func (mw *MainWindow) Editor() *panels.EditorPanel {
	mw.mu.Lock()
	defer mw.mu.Unlock()
	return mw.editor
}

// openEditor opens the manual eraser on the selected item's cutout.
func (mw *MainWindow) openEditor() {
	sel, ok := mw.state.Selected()
	if !ok {
		return
	}
	fg := sel.Foreground()
	if fg == nil {
		mw.updateStatus("Remove the background before erasing manually")
		return
	}

	mw.mu.Lock()
	if mw.editor != nil {
		mw.mu.Unlock()
		return
	}
	ed := editor.New(editor.Options{
		HistoryDepth: mw.cfg.Editor.HistoryDepth,
		BrushSize:    mw.prefs.Int(prefs.KeyBrushSize, mw.cfg.Editor.DefaultBrush),
		Logger:       logging.For("editor"),
	})
	id := sel.ID
	sess := editor.NewSession(ed, func(res editor.SaveResult) {
		mw.state.SetEdited(id, res.Image)
	})
	ep := panels.NewEditorPanel(mw.ctx, sess, mw.closeEditor)
	mw.editor = ep
	mw.editingID = id
	mw.mu.Unlock()

	ep.SetWindow(mw.Window)
	mw.center.Objects = []fyne.CanvasObject{ep.Container()}
	mw.center.Refresh()
	mw.updateStatus("Erasing " + sel.Name)

	sess.LoadAsync(mw.ctx, func(context.Context) (goimage.Image, error) {
		return fg, nil
	}, sel.Width, sel.Height, func(err error) {
		switch {
		case err == nil:
		case errors.Is(err, editor.ErrLoadSuperseded), errors.Is(err, editor.ErrClosed):
		default:
			dialog.ShowError(err, mw.Window)
			ep.Close()
		}
	})
}

// closeEditor runs after the editor panel has closed its session. It
// restores the preview and keeps the last brush size.
func (mw *MainWindow) closeEditor() {
	mw.mu.Lock()
	ep := mw.editor
	mw.editor = nil
	mw.editingID = ksuid.Nil
	mw.mu.Unlock()
	if ep == nil {
		return
	}

	if b := ep.BrushSize(); b > 0 {
		mw.prefs.SetInt(prefs.KeyBrushSize, b)
	}
	mw.center.Objects = []fyne.CanvasObject{mw.previewArea}
	mw.center.Refresh()
	mw.refreshPreview()
}

// Menu action handlers

func (mw *MainWindow) onUndo() {
	if ep := mw.Editor(); ep != nil {
		ep.Canvas().Undo()
	}
}

func (mw *MainWindow) onRedo() {
	if ep := mw.Editor(); ep != nil {
		ep.Canvas().Redo()
	}
}

func (mw *MainWindow) onZoomIn() {
	if ep := mw.Editor(); ep != nil {
		ep.Canvas().ZoomIn()
	}
}

func (mw *MainWindow) onZoomOut() {
	if ep := mw.Editor(); ep != nil {
		ep.Canvas().ZoomOut()
	}
}

func (mw *MainWindow) onResetZoom() {
	if ep := mw.Editor(); ep != nil {
		ep.Canvas().ResetZoom()
	}
}

func (mw *MainWindow) onToggleTheme() {
	name := app.ToggleTheme(mw.prefs.String(prefs.KeyTheme, app.ThemeLight))
	mw.prefs.SetString(prefs.KeyTheme, name)
	mw.app.Settings().SetTheme(app.NewTheme(name))
	mw.log.Debug("theme changed", "theme", name)
}

func (mw *MainWindow) onAbout() {
	dialog.ShowInformation("About "+appTitle,
		fmt.Sprintf("%s %s\n\n"+
			"Remove image backgrounds, touch up the cutout\n"+
			"with the manual eraser, and export as PNG or WebP.\n\n"+
			"Built: %s\n"+
			"Commit: %s",
			appTitle, version.Version, version.BuildTime, version.GitCommit),
		mw.Window)
}
