// Package canvas provides the eraser canvas: a fyne widget that renders an
// editor session and feeds it pointer, wheel and key input.
package canvas

import (
	"image"
	"log/slog"
	"sync"

	"cutout-studio/internal/editor"
	"cutout-studio/internal/logging"
	"cutout-studio/pkg/geometry"

	"fyne.io/fyne/v2"
	fynecanvas "fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/driver/desktop"
	"fyne.io/fyne/v2/widget"
)

// Status is the toolbar-facing summary of the editor.
type Status struct {
	Loaded  bool
	Zoom    float64
	Brush   int
	CanUndo bool
	CanRedo bool
	Mode    editor.Mode
}

// EraserCanvas shows the working buffer letterboxed inside the widget and
// routes input to the session's editor.
type EraserCanvas struct {
	widget.BaseWidget

	session *editor.Session
	raster  *fynecanvas.Raster

	// Guarded by the session lock.
	size       fyne.Size
	box        geometry.Rect
	hideCursor bool

	// Guarded by mu.
	mu      sync.Mutex
	lastPos fyne.Position
	ctrl    bool
	meta    bool

	onStatus func(Status)

	log *slog.Logger
}

var (
	_ desktop.Mouseable  = (*EraserCanvas)(nil)
	_ desktop.Hoverable  = (*EraserCanvas)(nil)
	_ desktop.Cursorable = (*EraserCanvas)(nil)
	_ fyne.Draggable     = (*EraserCanvas)(nil)
	_ fyne.Scrollable    = (*EraserCanvas)(nil)
)

// NewEraserCanvas creates a canvas bound to s. Closing the session
// detaches the canvas.
func NewEraserCanvas(s *editor.Session) *EraserCanvas {
	c := &EraserCanvas{session: s, log: logging.For("canvas")}
	c.raster = fynecanvas.NewRaster(c.draw)
	c.raster.ScaleMode = fynecanvas.ImageScalePixels

	var cancel func()
	s.Do(func(ed *editor.Editor) {
		cancel = ed.Subscribe(func(ch editor.Change) { c.changed(ed, ch) })
	})
	// OnClose takes the session lock, so it must run outside Do.
	if cancel != nil {
		s.OnClose(cancel)
	}
	c.ExtendBaseWidget(c)
	return c
}

// OnStatus sets a callback run after every editor change. It is called
// with the session lock held and must not call back into the canvas.
func (c *EraserCanvas) OnStatus(fn func(Status)) {
	c.mu.Lock()
	c.onStatus = fn
	c.mu.Unlock()
	c.session.Do(func(ed *editor.Editor) { c.emitStatus(ed) })
}

// BindKeys routes space and modifier keys from cnv to the editor until the
// session closes. Canvases without desktop key events are ignored.
func (c *EraserCanvas) BindKeys(cnv fyne.Canvas) {
	dc, ok := cnv.(desktop.Canvas)
	if !ok {
		c.log.Debug("canvas has no key events, space-to-pan disabled")
		return
	}
	prevDown, prevUp := dc.OnKeyDown(), dc.OnKeyUp()
	dc.SetOnKeyDown(func(ev *fyne.KeyEvent) {
		c.keyDown(ev.Name)
		if prevDown != nil {
			prevDown(ev)
		}
	})
	dc.SetOnKeyUp(func(ev *fyne.KeyEvent) {
		c.keyUp(ev.Name)
		if prevUp != nil {
			prevUp(ev)
		}
	})
	c.session.OnClose(func() {
		dc.SetOnKeyDown(prevDown)
		dc.SetOnKeyUp(prevUp)
	})
}

func (c *EraserCanvas) keyDown(name fyne.KeyName) {
	switch name {
	case fyne.KeySpace:
		c.session.Do(func(ed *editor.Editor) { ed.KeyDown(editor.KeySpace, ed.SpaceHeld()) })
	case desktop.KeyControlLeft, desktop.KeyControlRight:
		c.setMod(&c.ctrl, true)
	case desktop.KeySuperLeft, desktop.KeySuperRight:
		c.setMod(&c.meta, true)
	}
}

func (c *EraserCanvas) keyUp(name fyne.KeyName) {
	switch name {
	case fyne.KeySpace:
		c.session.Do(func(ed *editor.Editor) { ed.KeyUp(editor.KeySpace) })
	case desktop.KeyControlLeft, desktop.KeyControlRight:
		c.setMod(&c.ctrl, false)
	case desktop.KeySuperLeft, desktop.KeySuperRight:
		c.setMod(&c.meta, false)
	}
}

func (c *EraserCanvas) setMod(m *bool, v bool) {
	c.mu.Lock()
	*m = v
	c.mu.Unlock()
}

// Toolbar actions.

func (c *EraserCanvas) ZoomIn()    { c.session.Do(func(ed *editor.Editor) { ed.ZoomIn() }) }
func (c *EraserCanvas) ZoomOut()   { c.session.Do(func(ed *editor.Editor) { ed.ZoomOut() }) }
func (c *EraserCanvas) ResetZoom() { c.session.Do(func(ed *editor.Editor) { ed.ResetZoom() }) }
func (c *EraserCanvas) Undo()      { c.session.Do(func(ed *editor.Editor) { ed.Undo() }) }
func (c *EraserCanvas) Redo()      { c.session.Do(func(ed *editor.Editor) { ed.Redo() }) }

// SetBrushSize clamps and applies a new brush diameter.
func (c *EraserCanvas) SetBrushSize(size int) {
	c.session.Do(func(ed *editor.Editor) { ed.SetBrushSize(size) })
}

// changed runs inside the session lock.
func (c *EraserCanvas) changed(ed *editor.Editor, ch editor.Change) {
	if ch&editor.ChangeBuffer != 0 && c.size.Width > 0 {
		c.layout(ed)
	}
	c.hideCursor = ed.Cursor().Visible
	c.emitStatus(ed)
	c.raster.Refresh()
}

func (c *EraserCanvas) emitStatus(ed *editor.Editor) {
	c.mu.Lock()
	fn := c.onStatus
	c.mu.Unlock()
	if fn == nil {
		return
	}
	fn(Status{
		Loaded:  ed.Loaded(),
		Zoom:    ed.View().Zoom(),
		Brush:   ed.BrushSize(),
		CanUndo: ed.CanUndo(),
		CanRedo: ed.CanRedo(),
		Mode:    ed.Mode(),
	})
}

// layout fits the buffer into the widget and hands the letterbox size to
// the editor as its viewport.
func (c *EraserCanvas) layout(ed *editor.Editor) {
	outer := geometry.Sz(float64(c.size.Width), float64(c.size.Height))
	box := geometry.Fit(ed.View().Buffer(), outer)
	if box.Width <= 0 || box.Height <= 0 {
		box = geometry.Rect{Width: outer.Width, Height: outer.Height}
	}
	if box == c.box {
		return
	}
	c.box = box
	ed.SetViewport(geometry.Sz(box.Width, box.Height))
}

func (c *EraserCanvas) resized(size fyne.Size) {
	c.session.Do(func(ed *editor.Editor) {
		c.size = size
		c.layout(ed)
	})
}

func (c *EraserCanvas) draw(w, h int) image.Image {
	out := image.NewRGBA(image.Rect(0, 0, w, h))
	c.session.Do(func(ed *editor.Editor) {
		scale := 1.0
		if c.size.Width > 0 {
			scale = float64(w) / float64(c.size.Width)
		}
		Render(out, frameOf(ed, c.box, scale))
	})
	return out
}

// toViewport converts a widget position into letterbox coordinates. Call
// with the session lock held.
func (c *EraserCanvas) toViewport(p fyne.Position) geometry.Point2D {
	return geometry.Pt(float64(p.X)-c.box.X, float64(p.Y)-c.box.Y)
}

func (c *EraserCanvas) pointer(pos fyne.Position, btn desktop.MouseButton, mods fyne.KeyModifier, fn func(*editor.Editor, editor.PointerEvent)) {
	c.mu.Lock()
	c.lastPos = pos
	c.mu.Unlock()
	c.session.Do(func(ed *editor.Editor) {
		fn(ed, editor.PointerEvent{
			Pos:    c.toViewport(pos),
			Button: button(btn),
			Kind:   editor.PointerMouse,
			Mods:   modifiers(mods),
		})
	})
}

// MouseDown implements desktop.Mouseable.
func (c *EraserCanvas) MouseDown(ev *desktop.MouseEvent) {
	c.pointer(ev.Position, ev.Button, ev.Modifier, (*editor.Editor).PointerDown)
}

// MouseUp implements desktop.Mouseable.
func (c *EraserCanvas) MouseUp(ev *desktop.MouseEvent) {
	c.pointer(ev.Position, ev.Button, ev.Modifier, (*editor.Editor).PointerUp)
}

// MouseIn implements desktop.Hoverable.
func (c *EraserCanvas) MouseIn(ev *desktop.MouseEvent) {
	c.pointer(ev.Position, 0, ev.Modifier, (*editor.Editor).PointerMove)
}

// MouseMoved implements desktop.Hoverable.
func (c *EraserCanvas) MouseMoved(ev *desktop.MouseEvent) {
	c.pointer(ev.Position, 0, ev.Modifier, (*editor.Editor).PointerMove)
}

// MouseOut implements desktop.Hoverable.
func (c *EraserCanvas) MouseOut() {
	c.mu.Lock()
	pos := c.lastPos
	c.mu.Unlock()
	c.pointer(pos, 0, 0, (*editor.Editor).PointerLeave)
}

// Dragged delivers pointer moves while a button is held.
func (c *EraserCanvas) Dragged(ev *fyne.DragEvent) {
	c.pointer(ev.Position, 0, 0, (*editor.Editor).PointerMove)
}

// DragEnd finishes the gesture in case the release was not seen by MouseUp.
func (c *EraserCanvas) DragEnd() {
	c.mu.Lock()
	pos := c.lastPos
	c.mu.Unlock()
	c.pointer(pos, 0, 0, (*editor.Editor).PointerUp)
}

// Scrolled zooms around the pointer, or resizes the brush while Ctrl or
// Super is held.
func (c *EraserCanvas) Scrolled(ev *fyne.ScrollEvent) {
	c.mu.Lock()
	var mods editor.Modifier
	if c.ctrl {
		mods |= editor.ModCtrl
	}
	if c.meta {
		mods |= editor.ModMeta
	}
	c.lastPos = ev.Position
	c.mu.Unlock()

	c.session.Do(func(ed *editor.Editor) {
		ed.Wheel(editor.WheelEvent{
			Pos:    c.toViewport(ev.Position),
			DeltaY: -float64(ev.Scrolled.DY),
			Mods:   mods,
		})
	})
}

// Cursor hides the system pointer while the brush ring stands in for it.
func (c *EraserCanvas) Cursor() desktop.Cursor {
	hide := false
	c.session.Do(func(*editor.Editor) { hide = c.hideCursor })
	if hide {
		return desktop.HiddenCursor
	}
	return desktop.DefaultCursor
}

// MinSize keeps the canvas usable in tight layouts.
func (c *EraserCanvas) MinSize() fyne.Size {
	return fyne.NewSize(200, 150)
}

// CreateRenderer implements fyne.Widget.
func (c *EraserCanvas) CreateRenderer() fyne.WidgetRenderer {
	return &eraserCanvasRenderer{canvas: c}
}

func button(b desktop.MouseButton) editor.Button {
	switch b {
	case desktop.MouseButtonPrimary:
		return editor.ButtonPrimary
	case desktop.MouseButtonSecondary:
		return editor.ButtonSecondary
	case desktop.MouseButtonTertiary:
		return editor.ButtonMiddle
	default:
		return editor.ButtonNone
	}
}

func modifiers(m fyne.KeyModifier) editor.Modifier {
	var out editor.Modifier
	if m&fyne.KeyModifierShift != 0 {
		out |= editor.ModShift
	}
	if m&fyne.KeyModifierControl != 0 {
		out |= editor.ModCtrl
	}
	if m&fyne.KeyModifierAlt != 0 {
		out |= editor.ModAlt
	}
	if m&fyne.KeyModifierSuper != 0 {
		out |= editor.ModMeta
	}
	return out
}

type eraserCanvasRenderer struct {
	canvas *EraserCanvas
}

func (r *eraserCanvasRenderer) Layout(size fyne.Size) {
	r.canvas.raster.Resize(size)
	r.canvas.resized(size)
}

func (r *eraserCanvasRenderer) MinSize() fyne.Size {
	return r.canvas.MinSize()
}

func (r *eraserCanvasRenderer) Refresh() {
	r.canvas.raster.Refresh()
}

func (r *eraserCanvasRenderer) Objects() []fyne.CanvasObject {
	return []fyne.CanvasObject{r.canvas.raster}
}

func (r *eraserCanvasRenderer) Destroy() {}
