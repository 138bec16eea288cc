package placement

import (
	"github.com/ironsheep/roomswap-mcp/internal/geometry"
)

const (
	// DefaultWidthFraction is the share of the container width the initial
	// rectangle takes.
	DefaultWidthFraction = 0.4
	// DefaultAspect is height/width of the initial rectangle (4:3).
	DefaultAspect = 0.75
	// HandleSize is the side of the square resize handle, in container
	// pixels, centred on the rectangle's bottom-right corner.
	HandleSize = 16
)

// DefaultRect returns the rectangle an editor starts with: 40% of the
// container width, 4:3, centred.
func DefaultRect(container geometry.Size) geometry.Rect {
	w := container.Width * DefaultWidthFraction
	h := w * DefaultAspect
	p := geometry.Center(container, w, h)
	return geometry.Px(p.X, p.Y, w, h)
}

// Editor owns a live placement rectangle in container pixels and the gesture
// session manipulating it. It is not safe for concurrent use.
type Editor struct {
	container geometry.Size
	rect      geometry.Rect
	session   Session
}

// NewEditor creates an editor seeded with DefaultRect for the container.
func NewEditor(container geometry.Size) *Editor {
	return &Editor{container: container, rect: DefaultRect(container)}
}

// Rect returns the live pixel rectangle.
func (e *Editor) Rect() geometry.Rect {
	return e.rect
}

// Session returns the current gesture session.
func (e *Editor) Session() Session {
	return e.session
}

// Container returns the container size in pixels.
func (e *Editor) Container() geometry.Size {
	return e.container
}

// SetContainer updates the container size, as on a layout change. The live
// rectangle keeps its pixel geometry.
func (e *Editor) SetContainer(size geometry.Size) {
	e.container = size
}

// Invalidate drops any gesture in progress and re-seeds the default
// rectangle. It is called when the background image is replaced.
func (e *Editor) Invalidate() {
	e.session, _ = Transition(e.session, e.rect, Event{Kind: Reset})
	e.rect = DefaultRect(e.container)
}

// HitTest reports which part of the rectangle is under p. The resize handle
// is checked first so it wins where it overlaps the body.
func (e *Editor) HitTest(p geometry.Point) Target {
	r := e.rect
	half := float64(HandleSize) / 2
	handle := geometry.Px(r.X+r.Width-half, r.Y+r.Height-half, HandleSize, HandleSize)
	if handle.Contains(p) {
		return TargetHandle
	}
	if r.Width >= 0 && r.Height >= 0 && r.Contains(p) {
		return TargetBody
	}
	return TargetNone
}

// Dispatch feeds ev through Transition. For PointerDown the target is
// resolved with HitTest, ignoring ev.Target.
func (e *Editor) Dispatch(ev Event) Target {
	if ev.Kind == PointerDown {
		ev.Target = e.HitTest(ev.Pos)
	}
	e.session, e.rect = Transition(e.session, e.rect, ev)
	return ev.Target
}

// PointerDown starts a move or resize if p is on the rectangle.
func (e *Editor) PointerDown(p geometry.Point) Target {
	return e.Dispatch(Event{Kind: PointerDown, Pos: p})
}

// PointerMove applies an incremental move or resize.
func (e *Editor) PointerMove(p geometry.Point) {
	e.Dispatch(Event{Kind: PointerMove, Pos: p})
}

// PointerUp ends the gesture.
func (e *Editor) PointerUp(p geometry.Point) {
	e.Dispatch(Event{Kind: PointerUp, Pos: p})
}

// PointerLeave ends the gesture as the pointer exits the container.
func (e *Editor) PointerLeave() {
	e.Dispatch(Event{Kind: PointerLeave})
}

// Confirm converts the live rectangle to percentages of the container. It
// may be called mid-gesture and reports the in-progress geometry. It returns
// false when the container size is unknown.
func (e *Editor) Confirm() (geometry.Rect, bool) {
	if !e.container.Valid() {
		return geometry.Rect{}, false
	}
	return e.rect.ToPercent(e.container), true
}
