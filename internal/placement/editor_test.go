package placement

import (
	"image"
	"image/color"
	"math"
	"testing"

	"github.com/ironsheep/roomswap-mcp/internal/geometry"
)

func TestDefaultRect(t *testing.T) {
	got := DefaultRect(geometry.Size{Width: 1000, Height: 750})
	want := geometry.Px(300, 225, 400, 300)
	if got != want {
		t.Errorf("got %+v, want %+v", got, want)
	}
}

func TestEditor_HitTest(t *testing.T) {
	e := NewEditor(geometry.Size{Width: 1000, Height: 750})
	// Rect is 300,225 400x300; bottom-right corner at (700,525).
	tests := []struct {
		name string
		p    geometry.Point
		want Target
	}{
		{"centre", pt(500, 375), TargetBody},
		{"top-left corner", pt(300, 225), TargetBody},
		{"on the corner", pt(700, 525), TargetHandle},
		{"handle inside the body", pt(695, 520), TargetHandle},
		{"handle outside the body", pt(707, 532), TargetHandle},
		{"just past the handle", pt(709, 533), TargetNone},
		{"outside", pt(100, 100), TargetNone},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := e.HitTest(tt.p); got != tt.want {
				t.Errorf("HitTest(%v): got %v, want %v", tt.p, got, tt.want)
			}
		})
	}
}

func TestEditor_DragThenConfirm(t *testing.T) {
	e := NewEditor(geometry.Size{Width: 1000, Height: 750})

	if got := e.PointerDown(pt(500, 375)); got != TargetBody {
		t.Fatalf("PointerDown: got %v, want body", got)
	}
	e.PointerMove(pt(450, 300))
	e.PointerMove(pt(200, 225))
	e.PointerUp(pt(200, 225))

	if e.Session().Mode != Idle {
		t.Errorf("mode after up: %v", e.Session().Mode)
	}
	if want := geometry.Px(0, 75, 400, 300); e.Rect() != want {
		t.Fatalf("rect: got %+v, want %+v", e.Rect(), want)
	}

	got, ok := e.Confirm()
	if !ok {
		t.Fatal("Confirm returned false")
	}
	want := geometry.Pct(0, 10, 40, 40)
	if !rectNear(got, want) {
		t.Errorf("Confirm: got %+v, want %+v", got, want)
	}
}

func TestEditor_ResizeFromHandle(t *testing.T) {
	e := NewEditor(geometry.Size{Width: 1000, Height: 750})
	if got := e.PointerDown(pt(700, 525)); got != TargetHandle {
		t.Fatalf("PointerDown: got %v, want handle", got)
	}
	e.PointerMove(pt(1000, 750))
	if want := geometry.Px(300, 225, 700, 525); e.Rect() != want {
		t.Errorf("got %+v, want %+v", e.Rect(), want)
	}
}

func TestEditor_ConfirmFullContainer(t *testing.T) {
	e := NewEditor(geometry.Size{Width: 1000, Height: 750})
	e.PointerDown(pt(700, 525))
	e.PointerMove(pt(1300, 975))
	e.PointerUp(pt(1300, 975))
	e.PointerDown(pt(400, 300))
	e.PointerMove(pt(100, 75))
	e.PointerUp(pt(100, 75))

	got, ok := e.Confirm()
	if !ok {
		t.Fatal("Confirm returned false")
	}
	if want := geometry.Pct(0, 0, 100, 100); !rectNear(got, want) {
		t.Errorf("got %+v, want %+v", got, want)
	}
}

func TestEditor_ConfirmMidGesture(t *testing.T) {
	e := NewEditor(geometry.Size{Width: 1000, Height: 750})
	e.PointerDown(pt(500, 375))
	e.PointerMove(pt(600, 375))

	got, ok := e.Confirm()
	if !ok {
		t.Fatal("Confirm returned false")
	}
	if !near(got.X, 40) {
		t.Errorf("x: got %v, want 40", got.X)
	}
	if e.Session().Mode != Moving {
		t.Error("Confirm should not end the gesture")
	}
}

func TestEditor_ConfirmUnknownContainer(t *testing.T) {
	e := NewEditor(geometry.Size{})
	if _, ok := e.Confirm(); ok {
		t.Error("Confirm without a container size should fail")
	}
}

func TestEditor_LeaveEndsGesture(t *testing.T) {
	e := NewEditor(geometry.Size{Width: 1000, Height: 750})
	e.PointerDown(pt(500, 375))
	e.PointerMove(pt(510, 385))
	e.PointerLeave()

	before := e.Rect()
	e.PointerMove(pt(900, 700))
	if e.Rect() != before {
		t.Error("moves after leave should not change the rect")
	}
}

func TestEditor_InvalidateResets(t *testing.T) {
	e := NewEditor(geometry.Size{Width: 1000, Height: 750})
	e.PointerDown(pt(500, 375))
	e.PointerMove(pt(100, 100))

	e.SetContainer(geometry.Size{Width: 500, Height: 500})
	e.Invalidate()

	if e.Session().Active() {
		t.Error("Invalidate should end the gesture")
	}
	if want := geometry.Px(150, 175, 200, 150); e.Rect() != want {
		t.Errorf("got %+v, want %+v", e.Rect(), want)
	}
}

func TestEditor_NegativeRectHasNoBody(t *testing.T) {
	e := NewEditor(geometry.Size{Width: 1000, Height: 750})
	e.PointerDown(pt(700, 525))
	e.PointerMove(pt(200, 125))
	e.PointerUp(pt(200, 125))

	if e.Rect().Width >= 0 {
		t.Fatalf("expected an inverted rect, got %+v", e.Rect())
	}
	if got := e.HitTest(pt(250, 200)); got != TargetNone {
		t.Errorf("inverted rect body: got %v", got)
	}
	// The handle stays on the corner and can drag it back.
	if got := e.HitTest(pt(200, 125)); got != TargetHandle {
		t.Errorf("handle: got %v", got)
	}
}

func TestComposite(t *testing.T) {
	bg := solid(200, 100, color.NRGBA{0, 0, 255, 255})
	product := solid(50, 50, color.NRGBA{255, 0, 0, 255})

	// Placement 50%..100% x 0%..100% -> 100x100 box at (100,0); a square
	// product fills all of it.
	out := Composite(bg, product, geometry.Pct(50, 0, 50, 100))
	if out.Bounds() != bg.Bounds() {
		t.Fatalf("bounds: got %v", out.Bounds())
	}
	if c := out.NRGBAAt(150, 50); c.R < 250 || c.B > 5 {
		t.Errorf("inside placement: got %v", c)
	}
	if c := out.NRGBAAt(50, 50); c.B != 255 || c.R != 0 {
		t.Errorf("outside placement: got %v", c)
	}
	if c := bg.NRGBAAt(150, 50); c.B != 255 {
		t.Error("background must not be modified")
	}
}

func TestComposite_KeepsAspect(t *testing.T) {
	bg := solid(200, 200, color.NRGBA{0, 0, 255, 255})
	product := solid(100, 50, color.NRGBA{255, 0, 0, 255})

	// 200x200 box, 2:1 product -> 200x100 centred vertically at y=50.
	out := Composite(bg, product, geometry.Pct(0, 0, 100, 100))
	if c := out.NRGBAAt(100, 20); c.B != 255 {
		t.Errorf("letterbox band: got %v", c)
	}
	if c := out.NRGBAAt(100, 100); c.R < 250 {
		t.Errorf("product centre: got %v", c)
	}
}

func TestComposite_Degenerate(t *testing.T) {
	bg := solid(100, 100, color.NRGBA{0, 0, 255, 255})
	product := solid(10, 10, color.NRGBA{255, 0, 0, 255})

	for _, p := range []geometry.Rect{
		geometry.Pct(10, 10, 0, 50),
		geometry.Pct(10, 10, -20, 50),
	} {
		out := Composite(bg, product, p)
		if c := out.NRGBAAt(10, 10); c.R != 0 {
			t.Errorf("placement %+v should draw nothing, got %v", p, c)
		}
	}
	if Composite(nil, product, geometry.Pct(0, 0, 10, 10)) != nil {
		t.Error("nil background should yield nil")
	}
}

func solid(w, h int, c color.NRGBA) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.SetNRGBA(x, y, c)
		}
	}
	return img
}

func near(a, b float64) bool {
	return math.Abs(a-b) < 1e-9
}

func rectNear(a, b geometry.Rect) bool {
	return a.Unit == b.Unit && near(a.X, b.X) && near(a.Y, b.Y) && near(a.Width, b.Width) && near(a.Height, b.Height)
}
