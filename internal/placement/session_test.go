package placement

import (
	"testing"

	"github.com/ironsheep/roomswap-mcp/internal/geometry"
)

func pt(x, y float64) geometry.Point {
	return geometry.Point{X: x, Y: y}
}

func TestTransition_PointerDown(t *testing.T) {
	r := geometry.Px(100, 100, 200, 150)
	tests := []struct {
		name   string
		target Target
		want   Mode
	}{
		{"body starts a move", TargetBody, Moving},
		{"handle starts a resize", TargetHandle, Resizing},
		{"outside does nothing", TargetNone, Idle},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, got := Transition(Session{}, r, Event{Kind: PointerDown, Pos: pt(150, 120), Target: tt.target})
			if s.Mode != tt.want {
				t.Errorf("mode: got %v, want %v", s.Mode, tt.want)
			}
			if tt.want != Idle && s.Anchor != pt(150, 120) {
				t.Errorf("anchor: got %v, want (150,120)", s.Anchor)
			}
			if got != r {
				t.Errorf("rect changed on pointer down: %+v", got)
			}
		})
	}
}

func TestTransition_MoveIsIncremental(t *testing.T) {
	start := geometry.Px(100, 100, 200, 150)

	// Two steps: (+30,+10) then (+20,-40).
	s, r := Transition(Session{}, start, Event{Kind: PointerDown, Pos: pt(150, 150), Target: TargetBody})
	s, r = Transition(s, r, Event{Kind: PointerMove, Pos: pt(180, 160)})
	if s.Anchor != pt(180, 160) {
		t.Fatalf("anchor should follow the pointer, got %v", s.Anchor)
	}
	s, r = Transition(s, r, Event{Kind: PointerMove, Pos: pt(200, 120)})
	_, twoStep := Transition(s, r, Event{Kind: PointerUp, Pos: pt(200, 120)})

	// One step: (+50,-30).
	s, r = Transition(Session{}, start, Event{Kind: PointerDown, Pos: pt(150, 150), Target: TargetBody})
	s, r = Transition(s, r, Event{Kind: PointerMove, Pos: pt(200, 120)})
	_, oneStep := Transition(s, r, Event{Kind: PointerUp, Pos: pt(200, 120)})

	if twoStep != oneStep {
		t.Errorf("two-step %+v != one-step %+v", twoStep, oneStep)
	}
	if want := geometry.Px(150, 70, 200, 150); oneStep != want {
		t.Errorf("got %+v, want %+v", oneStep, want)
	}
}

func TestTransition_ResizeGrowsExtent(t *testing.T) {
	start := geometry.Px(100, 100, 200, 150)
	s, r := Transition(Session{}, start, Event{Kind: PointerDown, Pos: pt(300, 250), Target: TargetHandle})
	s, r = Transition(s, r, Event{Kind: PointerMove, Pos: pt(340, 230)})

	if want := geometry.Px(100, 100, 240, 130); r != want {
		t.Errorf("got %+v, want %+v", r, want)
	}
	if s.Mode != Resizing {
		t.Errorf("mode: got %v", s.Mode)
	}
}

func TestTransition_ResizeBelowZeroIsNotClamped(t *testing.T) {
	start := geometry.Px(100, 100, 50, 40)
	s, r := Transition(Session{}, start, Event{Kind: PointerDown, Pos: pt(150, 140), Target: TargetHandle})
	_, r = Transition(s, r, Event{Kind: PointerMove, Pos: pt(70, 90)})

	if r.Width != -30 || r.Height != -10 {
		t.Errorf("got %vx%v, want -30x-10", r.Width, r.Height)
	}
	if r.X != 100 || r.Y != 100 {
		t.Errorf("resize must not move the origin, got (%v,%v)", r.X, r.Y)
	}
}

func TestTransition_MoveOffContainerIsNotClamped(t *testing.T) {
	start := geometry.Px(10, 10, 50, 50)
	s, r := Transition(Session{}, start, Event{Kind: PointerDown, Pos: pt(20, 20), Target: TargetBody})
	_, r = Transition(s, r, Event{Kind: PointerMove, Pos: pt(-480, -980)})

	if r.X != -490 || r.Y != -990 {
		t.Errorf("got (%v,%v), want (-490,-990)", r.X, r.Y)
	}
}

func TestTransition_EndsGesture(t *testing.T) {
	active := Session{Mode: Moving, Anchor: pt(5, 5)}
	r := geometry.Px(0, 0, 10, 10)
	for _, kind := range []EventKind{PointerUp, PointerLeave, Reset} {
		t.Run(kind.String(), func(t *testing.T) {
			s, got := Transition(active, r, Event{Kind: kind, Pos: pt(50, 50)})
			if s != (Session{}) {
				t.Errorf("session: got %+v, want idle", s)
			}
			if got != r {
				t.Errorf("rect changed: %+v", got)
			}
		})
	}
}

func TestTransition_MoveWhileIdleIsIgnored(t *testing.T) {
	r := geometry.Px(0, 0, 10, 10)
	s, got := Transition(Session{}, r, Event{Kind: PointerMove, Pos: pt(50, 50)})
	if s != (Session{}) || got != r {
		t.Errorf("idle move changed state: %+v %+v", s, got)
	}
}

func TestTransition_DownDuringGestureIsIgnored(t *testing.T) {
	active := Session{Mode: Resizing, Anchor: pt(5, 5)}
	s, _ := Transition(active, geometry.Px(0, 0, 10, 10), Event{Kind: PointerDown, Pos: pt(1, 1), Target: TargetBody})
	if s != active {
		t.Errorf("got %+v, want %+v", s, active)
	}

	// The next move still measures from the original anchor.
	_, r := Transition(s, geometry.Px(0, 0, 10, 10), Event{Kind: PointerMove, Pos: pt(7, 5)})
	if r != geometry.Px(0, 0, 12, 10) {
		t.Errorf("move after ignored press: got %+v, want width 12", r)
	}
}

func TestParseEventKind(t *testing.T) {
	for _, k := range []EventKind{PointerDown, PointerMove, PointerUp, PointerLeave, Reset} {
		got, err := ParseEventKind(k.String())
		if err != nil || got != k {
			t.Errorf("ParseEventKind(%q): got (%v, %v)", k.String(), got, err)
		}
	}
	if _, err := ParseEventKind("drag"); err == nil {
		t.Error("expected error for unknown event")
	}
}
