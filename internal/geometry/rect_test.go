package geometry

import (
	"encoding/json"
	"image"
	"math"
	"testing"
)

const eps = 1e-9

func approx(a, b float64) bool {
	return math.Abs(a-b) < eps
}

func rectApprox(a, b Rect) bool {
	return a.Unit == b.Unit && approx(a.X, b.X) && approx(a.Y, b.Y) &&
		approx(a.Width, b.Width) && approx(a.Height, b.Height)
}

func TestToPixels_KnownRegion(t *testing.T) {
	box := Pct(10, 10, 20, 15)
	got := box.ToPixels(Size{Width: 1000, Height: 800})
	want := Px(100, 80, 200, 120)

	if !rectApprox(got, want) {
		t.Errorf("ToPixels: got %+v, want %+v", got, want)
	}
}

func TestRoundTrip(t *testing.T) {
	boxes := []Rect{
		Pct(0, 0, 100, 100),
		Pct(10, 10, 20, 15),
		Pct(33.3, 66.6, 12.5, 7.25),
		Pct(99, 99, 1, 1),
		Pct(0, 50, 0, 0),
	}
	sizes := []Size{
		{Width: 1000, Height: 800},
		{Width: 1, Height: 1},
		{Width: 4032, Height: 3024},
		{Width: 333, Height: 777},
	}

	for _, b := range boxes {
		for _, s := range sizes {
			back := b.ToPixels(s).ToPercent(s)
			if !rectApprox(back, b) {
				t.Errorf("round trip of %+v at %vx%v: got %+v", b, s.Width, s.Height, back)
			}
		}
	}
}

func TestToPercent_FullContainer(t *testing.T) {
	got := Px(0, 0, 640, 480).ToPercent(Size{Width: 640, Height: 480})
	want := Pct(0, 0, 100, 100)
	if !rectApprox(got, want) {
		t.Errorf("got %+v, want %+v", got, want)
	}
}

func TestToPercent_ZeroDimension(t *testing.T) {
	got := Px(10, 20, 30, 40).ToPercent(Size{Width: 0, Height: 200})
	if got.X != 0 || got.Width != 0 {
		t.Errorf("zero width axis should convert to 0, got %+v", got)
	}
	if !approx(got.Y, 10) || !approx(got.Height, 20) {
		t.Errorf("height axis: got %+v", got)
	}
}

func TestConversions_AreIdentityOnSameUnit(t *testing.T) {
	s := Size{Width: 500, Height: 500}
	p := Px(1, 2, 3, 4)
	if p.ToPixels(s) != p {
		t.Error("ToPixels should not touch pixel rects")
	}
	q := Pct(1, 2, 3, 4)
	if q.ToPercent(s) != q {
		t.Error("ToPercent should not touch percent rects")
	}
}

func TestClamp(t *testing.T) {
	tests := []struct {
		name string
		in   Rect
		want Rect
	}{
		{"inside", Pct(10, 10, 20, 20), Pct(10, 10, 20, 20)},
		{"overflow right", Pct(90, 10, 20, 20), Pct(90, 10, 10, 20)},
		{"overflow bottom", Pct(10, 95, 20, 20), Pct(10, 95, 20, 5)},
		{"negative origin", Pct(-5, -10, 20, 20), Pct(0, 0, 15, 10)},
		{"negative extent", Pct(10, 10, -5, -5), Pct(10, 10, 0, 0)},
		{"fully outside", Pct(120, 150, 10, 10), Pct(100, 100, 0, 0)},
		{"bigger than image", Pct(-10, -10, 200, 200), Pct(0, 0, 100, 100)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tt.in.Clamp()
			if !rectApprox(got, tt.want) {
				t.Errorf("Clamp(%+v): got %+v, want %+v", tt.in, got, tt.want)
			}
			if got.X < 0 || got.Y < 0 || got.X+got.Width > 100+eps || got.Y+got.Height > 100+eps {
				t.Errorf("Clamp result violates bounds: %+v", got)
			}
		})
	}
}

func TestClamp_PixelUnchanged(t *testing.T) {
	r := Px(-50, -50, 5000, 5000)
	if r.Clamp() != r {
		t.Error("pixel rects must not be clamped")
	}
}

func TestContains_InclusiveEdges(t *testing.T) {
	r := Px(10, 10, 20, 20)
	tests := []struct {
		p    Point
		want bool
	}{
		{Point{10, 10}, true},
		{Point{30, 30}, true},
		{Point{20, 20}, true},
		{Point{9.999, 20}, false},
		{Point{20, 30.001}, false},
	}
	for _, tt := range tests {
		if got := r.Contains(tt.p); got != tt.want {
			t.Errorf("Contains(%v): got %v, want %v", tt.p, got, tt.want)
		}
	}
}

func TestTranslateGrow_Unconstrained(t *testing.T) {
	r := Px(5, 5, 10, 10).Translate(-20, -30).Grow(-15, -12)
	want := Px(-15, -25, -5, -2)
	if !rectApprox(r, want) {
		t.Errorf("got %+v, want %+v", r, want)
	}
}

func TestExpand(t *testing.T) {
	tests := []struct {
		name string
		in   Rect
		want Rect
	}{
		{"interior", Pct(20, 20, 10, 10), Pct(17.5, 17.5, 15, 15)},
		{"top left edge", Pct(1, 1, 10, 10), Pct(0, 0, 15, 15)},
		{"bottom right edge", Pct(90, 92, 10, 8), Pct(87.5, 89.5, 12.5, 10.5)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tt.in.Expand(5)
			if !rectApprox(got, tt.want) {
				t.Errorf("Expand: got %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestNormalizeFractions(t *testing.T) {
	tests := []struct {
		name string
		in   Rect
		want Rect
	}{
		{"fractions", Pct(0.1, 0.2, 0.3, 0.4), Pct(10, 20, 30, 40)},
		{"percentages", Pct(10, 20, 30, 40), Pct(10, 20, 30, 40)},
		{"small x large width", Pct(0.5, 10, 50, 20), Pct(0.5, 10, 50, 20)},
		{"pixel untouched", Px(0.1, 0.1, 0.1, 0.1), Px(0.1, 0.1, 0.1, 0.1)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := NormalizeFractions(tt.in); !rectApprox(got, tt.want) {
				t.Errorf("got %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestScaleToNative(t *testing.T) {
	got := ScaleToNative(Point{X: 250, Y: 100}, Size{Width: 500, Height: 400}, Size{Width: 2000, Height: 1600})
	if !approx(got.X, 1000) || !approx(got.Y, 400) {
		t.Errorf("got %+v, want {1000 400}", got)
	}

	same := ScaleToNative(Point{X: 3, Y: 4}, Size{}, Size{Width: 10, Height: 10})
	if same != (Point{X: 3, Y: 4}) {
		t.Errorf("degenerate displayed size should pass through, got %+v", same)
	}
}

func TestCenter(t *testing.T) {
	got := Center(Size{Width: 1000, Height: 750}, 400, 300)
	if got != (Point{X: 300, Y: 225}) {
		t.Errorf("got %+v, want {300 225}", got)
	}
}

func TestImage(t *testing.T) {
	got := Px(99.6, 79.4, 200.2, 120.4).Image()
	want := image.Rect(100, 79, 300, 200)
	if got != want {
		t.Errorf("got %v, want %v", got, want)
	}
}

func TestUnit_JSON(t *testing.T) {
	data, err := json.Marshal(Px(1, 2, 3, 4))
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	var back Rect
	if err := json.Unmarshal(data, &back); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if back.Unit != Pixel {
		t.Errorf("unit: got %v, want pixel", back.Unit)
	}

	var noUnit Rect
	if err := json.Unmarshal([]byte(`{"x":1,"y":2,"width":3,"height":4}`), &noUnit); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if noUnit.Unit != Percent {
		t.Errorf("missing unit should default to percent, got %v", noUnit.Unit)
	}

	if err := json.Unmarshal([]byte(`{"unit":"furlong"}`), &noUnit); err == nil {
		t.Error("unknown unit should fail to decode")
	}
}
