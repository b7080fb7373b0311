package editor

import (
	"cutout-studio/pkg/geometry"
)

// Mode is the gesture currently interpreting the pointer stream.
type Mode uint8

const (
	ModeIdle Mode = iota
	ModeDrawing
	ModePanning
)

// String returns a string representation of the mode.
func (m Mode) String() string {
	switch m {
	case ModeDrawing:
		return "drawing"
	case ModePanning:
		return "panning"
	default:
		return "idle"
	}
}

// gesture holds the transient pointer state. It is never persisted.
type gesture struct {
	mode Mode

	// pointer owns the active gesture; other pointers are ignored until it ends.
	pointer int

	// drawing: last buffer point touched, for stroke interpolation
	last    geometry.Point2D
	hasLast bool

	// panning: pointer and pan at the press
	startPointer geometry.Point2D
	startPan     geometry.Point2D

	spaceHeld bool
}

// captures reports whether an event from pointer id must be dropped because
// another pointer owns the active gesture.
func (g *gesture) captures(id int) bool {
	return g.mode != ModeIdle && g.pointer != id
}

func (g *gesture) beginPan(id int, at, pan geometry.Point2D) {
	g.mode = ModePanning
	g.pointer = id
	g.startPointer = at
	g.startPan = pan
	g.hasLast = false
}

func (g *gesture) beginDraw(id int, at geometry.Point2D) {
	g.mode = ModeDrawing
	g.pointer = id
	g.last = at
	g.hasLast = true
}

// end returns to idle and reports the mode that was left.
func (g *gesture) end() Mode {
	was := g.mode
	g.mode = ModeIdle
	g.pointer = 0
	g.hasLast = false
	g.startPointer = geometry.Point2D{}
	g.startPan = geometry.Point2D{}
	return was
}
