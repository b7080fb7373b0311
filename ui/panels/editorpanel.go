package panels

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"cutout-studio/internal/editor"
	"cutout-studio/ui/canvas"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/theme"
	"fyne.io/fyne/v2/widget"
)

// EditorPanel wraps an eraser canvas with its toolbar: brush size, undo and
// redo, zoom controls, and Done/Cancel.
type EditorPanel struct {
	ctx     context.Context
	session *editor.Session
	canvas  *canvas.EraserCanvas
	window  fyne.Window

	mu     sync.Mutex
	status canvas.Status

	brush      *widget.Slider
	brushLabel *widget.Label
	undoBtn    *widget.Button
	redoBtn    *widget.Button
	zoomLabel  *widget.Label
	doneBtn    *widget.Button
	container  fyne.CanvasObject

	closeOnce sync.Once
	onClose   func()
}

// NewEditorPanel builds the editor view for s. onClose runs after Done has
// saved or after Cancel; the panel has closed the session by then.
func NewEditorPanel(ctx context.Context, s *editor.Session, onClose func()) *EditorPanel {
	ep := &EditorPanel{ctx: ctx, session: s, onClose: onClose}
	ep.canvas = canvas.NewEraserCanvas(s)

	ep.brush = widget.NewSlider(editor.MinBrush, editor.MaxBrush)
	ep.brush.Step = 1
	ep.brush.OnChanged = func(v float64) {
		if int(v) == ep.current().Brush {
			return
		}
		ep.canvas.SetBrushSize(int(v))
	}
	ep.brushLabel = widget.NewLabel("")
	ep.undoBtn = widget.NewButtonWithIcon("", theme.ContentUndoIcon(), ep.canvas.Undo)
	ep.redoBtn = widget.NewButtonWithIcon("", theme.ContentRedoIcon(), ep.canvas.Redo)
	ep.zoomLabel = widget.NewLabel("100%")
	zoomOut := widget.NewButtonWithIcon("", theme.ZoomOutIcon(), ep.canvas.ZoomOut)
	zoomIn := widget.NewButtonWithIcon("", theme.ZoomInIcon(), ep.canvas.ZoomIn)
	reset := widget.NewButtonWithIcon("", theme.ZoomFitIcon(), ep.canvas.ResetZoom)
	ep.doneBtn = widget.NewButtonWithIcon("Done", theme.ConfirmIcon(), ep.onDone)
	ep.doneBtn.Importance = widget.HighImportance
	cancel := widget.NewButtonWithIcon("Cancel", theme.CancelIcon(), ep.Close)

	toolbar := container.NewBorder(nil, nil,
		container.NewHBox(widget.NewLabel("Brush:"), ep.brushLabel),
		container.NewHBox(ep.undoBtn, ep.redoBtn, zoomOut, ep.zoomLabel, zoomIn, reset, cancel, ep.doneBtn),
		ep.brush,
	)
	hint := widget.NewLabel("Drag to erase. Hold Space or use the middle button to pan. Ctrl+wheel resizes the brush.")
	hint.Wrapping = fyne.TextWrapWord

	ep.container = container.NewBorder(toolbar, hint, nil, nil, ep.canvas)

	ep.canvas.OnStatus(func(st canvas.Status) {
		ep.mu.Lock()
		ep.status = st
		ep.mu.Unlock()
		// runs under the session lock; widget callbacks may re-enter it
		go ep.apply()
	})
	return ep
}

// Container returns the panel container.
func (ep *EditorPanel) Container() fyne.CanvasObject {
	return ep.container
}

// Canvas returns the eraser canvas.
func (ep *EditorPanel) Canvas() *canvas.EraserCanvas {
	return ep.canvas
}

// SetWindow sets the parent window for dialogs and binds its keys to the
// canvas.
func (ep *EditorPanel) SetWindow(w fyne.Window) {
	ep.window = w
	ep.canvas.BindKeys(w.Canvas())
}

// BrushSize returns the current brush diameter.
func (ep *EditorPanel) BrushSize() int {
	return ep.current().Brush
}

// Close discards unsaved edits and ends the session.
func (ep *EditorPanel) Close() {
	ep.closeOnce.Do(func() {
		ep.session.Close()
		if ep.onClose != nil {
			ep.onClose()
		}
	})
}

func (ep *EditorPanel) current() canvas.Status {
	ep.mu.Lock()
	defer ep.mu.Unlock()
	return ep.status
}

func (ep *EditorPanel) apply() {
	st := ep.current()
	ep.brush.SetValue(float64(st.Brush))
	ep.brushLabel.SetText(fmt.Sprintf("%d px", st.Brush))
	ep.zoomLabel.SetText(ZoomText(st.Zoom))
	setEnabled(ep.undoBtn, st.CanUndo)
	setEnabled(ep.redoBtn, st.CanRedo)
	setEnabled(ep.doneBtn, st.Loaded)
}

func (ep *EditorPanel) onDone() {
	ep.doneBtn.Disable()
	err := ep.session.SaveAsync(ep.ctx, func(_ editor.SaveResult, err error) {
		if err != nil {
			ep.doneBtn.Enable()
			if ep.window != nil {
				dialog.ShowError(err, ep.window)
			}
			return
		}
		ep.Close()
	})
	if errors.Is(err, editor.ErrExportInProgress) {
		return
	}
	if err != nil {
		ep.doneBtn.Enable()
		if ep.window != nil {
			dialog.ShowError(err, ep.window)
		}
	}
}

func setEnabled(w fyne.Disableable, on bool) {
	if on {
		w.Enable()
	} else {
		w.Disable()
	}
}
