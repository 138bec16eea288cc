package placement

import (
	"fmt"

	"github.com/ironsheep/roomswap-mcp/internal/geometry"
)

// Mode is the state of the gesture state machine.
type Mode int

const (
	Idle Mode = iota
	Moving
	Resizing
)

// String returns the lower-case mode name.
func (m Mode) String() string {
	switch m {
	case Idle:
		return "idle"
	case Moving:
		return "moving"
	case Resizing:
		return "resizing"
	default:
		return fmt.Sprintf("mode(%d)", int(m))
	}
}

// MarshalText implements encoding.TextMarshaler.
func (m Mode) MarshalText() ([]byte, error) {
	return []byte(m.String()), nil
}

// Session is the state of one press-drag-release gesture. The zero value is
// an idle session.
type Session struct {
	Mode   Mode           `json:"mode"`
	Anchor geometry.Point `json:"anchor"`
}

// Active reports whether a gesture is in progress.
func (s Session) Active() bool {
	return s.Mode == Moving || s.Mode == Resizing
}

// EventKind identifies a pointer event.
type EventKind int

const (
	PointerDown EventKind = iota
	PointerMove
	PointerUp
	PointerLeave
	// Reset abandons any gesture, as when the background image is replaced.
	Reset
)

// String returns the event name used on the wire.
func (k EventKind) String() string {
	switch k {
	case PointerDown:
		return "down"
	case PointerMove:
		return "move"
	case PointerUp:
		return "up"
	case PointerLeave:
		return "leave"
	case Reset:
		return "reset"
	default:
		return fmt.Sprintf("event(%d)", int(k))
	}
}

// ParseEventKind parses the wire name of an event.
func ParseEventKind(s string) (EventKind, error) {
	switch s {
	case "down":
		return PointerDown, nil
	case "move":
		return PointerMove, nil
	case "up":
		return PointerUp, nil
	case "leave":
		return PointerLeave, nil
	case "reset":
		return Reset, nil
	}
	return 0, fmt.Errorf("unknown pointer event %q", s)
}

// Target is the part of the placement rectangle under the pointer.
type Target int

const (
	TargetNone Target = iota
	TargetBody
	TargetHandle
)

// String returns "none", "body" or "handle".
func (t Target) String() string {
	switch t {
	case TargetBody:
		return "body"
	case TargetHandle:
		return "handle"
	default:
		return "none"
	}
}

// MarshalText implements encoding.TextMarshaler.
func (t Target) MarshalText() ([]byte, error) {
	return []byte(t.String()), nil
}

// Event is one pointer event in container pixels. Target is only consulted
// for PointerDown.
type Event struct {
	Kind   EventKind
	Pos    geometry.Point
	Target Target
}

// Transition applies ev to the session and the pixel rectangle r and
// returns the new state. It has no side effects.
//
// Moves are incremental: each PointerMove applies the delta from the anchor
// and then moves the anchor to the pointer, so a sequence of moves composes
// to the sum of its deltas. Neither position nor size is clamped.
func Transition(s Session, r geometry.Rect, ev Event) (Session, geometry.Rect) {
	switch ev.Kind {
	case PointerDown:
		// A press during an active gesture is ignored. It does not re-anchor
		// or switch between moving and resizing; the gesture keeps its mode
		// and anchor until PointerUp, PointerLeave or Reset ends it.
		if s.Active() {
			return s, r
		}
		switch ev.Target {
		case TargetHandle:
			return Session{Mode: Resizing, Anchor: ev.Pos}, r
		case TargetBody:
			return Session{Mode: Moving, Anchor: ev.Pos}, r
		}
		return s, r

	case PointerMove:
		dx, dy := ev.Pos.X-s.Anchor.X, ev.Pos.Y-s.Anchor.Y
		switch s.Mode {
		case Moving:
			r = r.Translate(dx, dy)
		case Resizing:
			r = r.Grow(dx, dy)
		default:
			return s, r
		}
		s.Anchor = ev.Pos
		return s, r

	case PointerUp, PointerLeave, Reset:
		return Session{}, r
	}
	return s, r
}
