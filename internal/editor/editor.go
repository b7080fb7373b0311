// Package editor implements the manual eraser: a pixel buffer shown through
// a zoom/pan transform, a round destination-out brush, bounded undo/redo,
// and the pointer state machine that drives them.
//
// An Editor is not safe for concurrent use. Session wraps one for callers
// that reach it from several goroutines.
package editor

import (
	"image"
	"log/slog"

	"cutout-studio/internal/logging"
	"cutout-studio/pkg/geometry"
)

// Change is a bitmask describing what an edit touched.
type Change uint16

const (
	ChangeBuffer Change = 1 << iota
	ChangeView
	ChangeBrush
	ChangeHistory
	ChangeCursor
	ChangeMode

	ChangeAll = ChangeBuffer | ChangeView | ChangeBrush | ChangeHistory | ChangeCursor | ChangeMode
)

// Cursor describes the hover brush indicator in viewport coordinates.
type Cursor struct {
	Visible  bool
	Pos      geometry.Point2D
	Diameter float64
}

// Options configures a new Editor.
type Options struct {
	// HistoryDepth bounds undo; 0 selects DefaultHistoryDepth.
	HistoryDepth int
	// BrushSize is the initial brush; 0 selects DefaultBrush.
	BrushSize int
	Logger    *slog.Logger
}

type subscription struct {
	id int
	fn func(Change)
}

// Editor is the single mutable controller holding the buffer, transform,
// brush and gesture state. The UI renders from it and subscribes to changes.
type Editor struct {
	buf   Buffer
	view  *View
	hist  *History
	brush int
	g     gesture

	cursorPos     geometry.Point2D
	cursorVisible bool

	subs   []subscription
	nextID int

	log *slog.Logger
}

// New creates an editor with nothing loaded.
func New(opts Options) *Editor {
	brush := DefaultBrush
	if opts.BrushSize != 0 {
		brush = ClampBrush(opts.BrushSize)
	}
	log := opts.Logger
	if log == nil {
		log = logging.For("editor")
	}
	return &Editor{
		view:  NewView(geometry.Size{}, geometry.Size{}),
		hist:  NewHistory(opts.HistoryDepth),
		brush: brush,
		log:   log,
	}
}

// Subscribe registers fn to be called after every state change. The
// returned func removes the subscription.
func (e *Editor) Subscribe(fn func(Change)) (cancel func()) {
	e.nextID++
	id := e.nextID
	e.subs = append(e.subs, subscription{id: id, fn: fn})
	return func() {
		for i, s := range e.subs {
			if s.id == id {
				e.subs = append(e.subs[:i], e.subs[i+1:]...)
				return
			}
		}
	}
}

func (e *Editor) notify(c Change) {
	if c == 0 {
		return
	}
	for _, s := range append([]subscription(nil), e.subs...) {
		s.fn(c)
	}
}

// LoadSource draws src into a fresh w×h buffer, resets zoom and pan, and
// restarts history from this state. The brush size is kept. It is a no-op
// returning false when src is nil or the size is not positive.
func (e *Editor) LoadSource(src image.Image, w, h int) bool {
	if !e.buf.Load(src, w, h) {
		e.log.Debug("load skipped", "width", w, "height", h, "has_source", src != nil)
		return false
	}
	e.view.SetBuffer(geometry.Sz(float64(w), float64(h)))
	e.view.Reset()
	e.g.end()
	e.hist.Reset()
	e.hist.Push(e.buf.Snapshot())
	e.log.Debug("source loaded", "width", w, "height", h)
	e.notify(ChangeAll)
	return true
}

// Loaded reports whether a source has been loaded.
func (e *Editor) Loaded() bool { return e.buf.Loaded() }

// Image returns the live buffer for rendering, or nil before a load. It must
// not be retained or modified.
func (e *Editor) Image() *image.NRGBA { return e.buf.Image() }

// Snapshot returns a deep copy of the current pixels, or nil before a load.
func (e *Editor) Snapshot() *image.NRGBA { return e.buf.Clone() }

// SetViewport tells the editor how large the buffer is displayed at zoom 1.
func (e *Editor) SetViewport(s geometry.Size) {
	if s == e.view.Viewport() {
		return
	}
	e.view.SetViewport(s)
	e.notify(ChangeView | e.cursorChange())
}

// View exposes the transform model for rendering and hit testing.
func (e *Editor) View() *View { return e.view }

// Transform returns the current zoom and pan.
func (e *Editor) Transform() Transform { return e.view.Transform() }

// Mode returns the active gesture.
func (e *Editor) Mode() Mode { return e.g.mode }

// SpaceHeld reports whether the pan modifier is down.
func (e *Editor) SpaceHeld() bool { return e.g.spaceHeld }

// BrushSize returns the brush diameter in viewport pixels.
func (e *Editor) BrushSize() int { return e.brush }

// SetBrushSize sets the brush diameter, clamped to [MinBrush, MaxBrush].
func (e *Editor) SetBrushSize(size int) {
	size = ClampBrush(size)
	if size == e.brush {
		return
	}
	e.brush = size
	e.notify(ChangeBrush | e.cursorChange())
}

// Cursor returns the hover indicator state.
func (e *Editor) Cursor() Cursor {
	return Cursor{
		Visible:  e.cursorVisible,
		Pos:      e.cursorPos,
		Diameter: e.view.IndicatorDiameter(e.brush),
	}
}

func (e *Editor) cursorChange() Change {
	if e.cursorVisible {
		return ChangeCursor
	}
	return 0
}

// CanUndo reports whether Undo would change the buffer.
func (e *Editor) CanUndo() bool { return e.hist.CanUndo() }

// CanRedo reports whether Redo would change the buffer.
func (e *Editor) CanRedo() bool { return e.hist.CanRedo() }

// HistoryLen returns the number of stored snapshots.
func (e *Editor) HistoryLen() int { return e.hist.Len() }

// Undo restores the previous snapshot. Ignored mid-stroke.
func (e *Editor) Undo() bool {
	if e.g.mode == ModeDrawing {
		return false
	}
	s, ok := e.hist.Undo()
	if !ok {
		return false
	}
	e.buf.Restore(s)
	e.notify(ChangeBuffer | ChangeHistory)
	return true
}

// Redo restores the next snapshot. Ignored mid-stroke.
func (e *Editor) Redo() bool {
	if e.g.mode == ModeDrawing {
		return false
	}
	s, ok := e.hist.Redo()
	if !ok {
		return false
	}
	e.buf.Restore(s)
	e.notify(ChangeBuffer | ChangeHistory)
	return true
}

// ZoomIn zooms toward the viewport centre by ButtonZoomStep.
func (e *Editor) ZoomIn() { e.zoomTo(e.view.Zoom() * ButtonZoomStep) }

// ZoomOut zooms away from the viewport centre by ButtonZoomStep.
func (e *Editor) ZoomOut() { e.zoomTo(e.view.Zoom() / ButtonZoomStep) }

// ResetZoom returns to zoom 1 with no pan.
func (e *Editor) ResetZoom() { e.zoomTo(MinZoom) }

func (e *Editor) zoomTo(z float64) {
	before := e.view.Transform()
	if e.view.ZoomTo(z) == before {
		return
	}
	e.notify(ChangeView | e.cursorChange())
}

// PointerDown starts a pan (middle button, or primary with space held) or a
// stroke (primary). A stroke erases a dot immediately.
func (e *Editor) PointerDown(ev PointerEvent) {
	if e.g.mode != ModeIdle {
		return
	}
	switch {
	case ev.Button == ButtonMiddle || (ev.Button == ButtonPrimary && e.g.spaceHeld):
		e.g.beginPan(ev.ID, ev.Pos, e.view.Transform().Pan)
		e.notify(ChangeMode)
	case ev.Button == ButtonPrimary:
		b := e.view.ScreenToBuffer(ev.Pos)
		e.g.beginDraw(ev.ID, b)
		e.buf.EraseDot(b, float64(e.brush), e.view.BrushScale())
		e.notify(ChangeMode | ChangeBuffer)
	}
}

// PointerMove pans, extends the stroke, or just moves the hover indicator.
func (e *Editor) PointerMove(ev PointerEvent) {
	if e.g.captures(ev.ID) {
		return
	}
	var c Change
	if ev.Kind == PointerMouse && !e.g.spaceHeld {
		if !e.cursorVisible || e.cursorPos != ev.Pos {
			e.cursorVisible = true
			e.cursorPos = ev.Pos
			c |= ChangeCursor
		}
	}

	switch e.g.mode {
	case ModePanning:
		before := e.view.Transform()
		if e.view.PanFrom(e.g.startPan, ev.Pos.Sub(e.g.startPointer)) != before {
			c |= ChangeView
		}
	case ModeDrawing:
		b := e.view.ScreenToBuffer(ev.Pos)
		size, scale := float64(e.brush), e.view.BrushScale()
		if e.g.hasLast {
			e.buf.EraseSegment(e.g.last, b, size, scale)
		} else {
			e.buf.EraseDot(b, size, scale)
		}
		e.g.last = b
		e.g.hasLast = true
		c |= ChangeBuffer
	}
	e.notify(c)
}

// PointerUp ends the active gesture. A finished stroke becomes one history
// entry.
func (e *Editor) PointerUp(ev PointerEvent) {
	if e.g.captures(ev.ID) {
		return
	}
	e.notify(e.endGesture())
}

// PointerLeave ends the active gesture like PointerUp and hides the hover
// indicator.
func (e *Editor) PointerLeave(ev PointerEvent) {
	if e.g.captures(ev.ID) {
		return
	}
	c := e.endGesture()
	if e.cursorVisible {
		e.cursorVisible = false
		c |= ChangeCursor
	}
	e.notify(c)
}

func (e *Editor) endGesture() Change {
	switch e.g.end() {
	case ModeDrawing:
		if e.buf.Loaded() {
			e.hist.Push(e.buf.Snapshot())
		}
		return ChangeMode | ChangeHistory
	case ModePanning:
		return ChangeMode
	}
	return 0
}

// Wheel resizes the brush when Ctrl or Cmd is held, otherwise zooms toward
// the pointer. Scrolling up grows the brush or zooms in.
func (e *Editor) Wheel(ev WheelEvent) {
	if ev.DeltaY == 0 {
		return
	}
	if ev.Mods.zoomsBrush() {
		step := BrushWheelStep
		if ev.DeltaY > 0 {
			step = -step
		}
		e.SetBrushSize(e.brush + step)
		return
	}
	factor := WheelZoomStep
	if ev.DeltaY > 0 {
		factor = 1 / WheelZoomStep
	}
	before := e.view.Transform()
	if e.view.ZoomAt(ev.Pos, factor) != before {
		e.notify(ChangeView | e.cursorChange())
	}
}

// KeyDown handles the pan modifier. Auto-repeat is ignored.
func (e *Editor) KeyDown(k Key, repeat bool) {
	if k != KeySpace || repeat || e.g.spaceHeld {
		return
	}
	e.g.spaceHeld = true
	c := ChangeMode
	if e.cursorVisible {
		e.cursorVisible = false
		c |= ChangeCursor
	}
	e.notify(c)
}

// KeyUp releases the pan modifier. The indicator reappears on the next move.
func (e *Editor) KeyUp(k Key) {
	if k != KeySpace || !e.g.spaceHeld {
		return
	}
	e.g.spaceHeld = false
	e.notify(ChangeMode)
}
