package editor

import (
	"cutout-studio/pkg/geometry"
)

// Button identifies the pointer button of a press.
type Button uint8

const (
	// ButtonNone indicates no button (hover moves).
	ButtonNone Button = iota
	// ButtonPrimary is the left mouse button, a touch contact or a pen tip.
	ButtonPrimary
	// ButtonMiddle is the middle mouse button (wheel click).
	ButtonMiddle
	// ButtonSecondary is the right mouse button.
	ButtonSecondary
)

// String returns a string representation of the button.
func (b Button) String() string {
	switch b {
	case ButtonPrimary:
		return "primary"
	case ButtonMiddle:
		return "middle"
	case ButtonSecondary:
		return "secondary"
	default:
		return "none"
	}
}

// PointerKind is the device behind a pointer stream.
type PointerKind uint8

const (
	PointerMouse PointerKind = iota
	PointerTouch
	PointerPen
)

// String returns a string representation of the pointer kind.
func (k PointerKind) String() string {
	switch k {
	case PointerTouch:
		return "touch"
	case PointerPen:
		return "pen"
	default:
		return "mouse"
	}
}

// Modifier is a bitmask of held modifier keys.
type Modifier uint8

const (
	ModShift Modifier = 1 << iota
	ModCtrl
	ModAlt
	// ModMeta is Cmd on macOS and Super elsewhere.
	ModMeta
)

// Has reports whether all bits of m2 are set.
func (m Modifier) Has(m2 Modifier) bool { return m&m2 == m2 }

// zoomsBrush reports whether a wheel event should resize the brush.
func (m Modifier) zoomsBrush() bool { return m&(ModCtrl|ModMeta) != 0 }

// PointerEvent is one sample of a pointer stream, in viewport coordinates.
type PointerEvent struct {
	// ID distinguishes concurrent pointers (touch contacts).
	ID int
	// Pos is relative to the viewport's top-left corner.
	Pos geometry.Point2D
	// Button is the button pressed, for PointerDown only.
	Button Button
	Kind   PointerKind
	Mods   Modifier
}

// WheelEvent is one discrete wheel step. Negative DeltaY scrolls up.
type WheelEvent struct {
	Pos    geometry.Point2D
	DeltaY float64
	Mods   Modifier
}

// Key identifies keys the editor reacts to.
type Key uint8

const (
	KeyUnknown Key = iota
	// KeySpace holds the pan modifier while down.
	KeySpace
)
