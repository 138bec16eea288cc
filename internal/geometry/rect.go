package geometry

import (
	"fmt"
	"image"
	"math"
)

// Unit tags which coordinate space a Rect is expressed in.
type Unit int

const (
	// Percent means 0-100 of the reference dimensions. It is the zero value
	// because every rect received from upstream detection is a percentage.
	Percent Unit = iota
	// Pixel means absolute pixels of a concrete surface or container.
	Pixel
)

// String returns "percent" or "pixel".
func (u Unit) String() string {
	switch u {
	case Pixel:
		return "pixel"
	default:
		return "percent"
	}
}

// MarshalText implements encoding.TextMarshaler.
func (u Unit) MarshalText() ([]byte, error) {
	return []byte(u.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler. An empty value decodes
// as Percent.
func (u *Unit) UnmarshalText(text []byte) error {
	switch string(text) {
	case "", "percent", "%":
		*u = Percent
	case "pixel", "px":
		*u = Pixel
	default:
		return fmt.Errorf("unknown unit %q", string(text))
	}
	return nil
}

// Point is a position in whichever space the caller is working in.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Size is a pair of pixel dimensions.
type Size struct {
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// Valid reports whether both dimensions are positive.
func (s Size) Valid() bool {
	return s.Width > 0 && s.Height > 0
}

// SizeOf returns the dimensions of an image's bounds.
func SizeOf(r image.Rectangle) Size {
	return Size{Width: float64(r.Dx()), Height: float64(r.Dy())}
}

// Rect is an axis-aligned rectangle. It is used both for percentage
// bounding boxes and for pixel placement rectangles; Unit says which.
type Rect struct {
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
	Unit   Unit    `json:"unit"`
}

// Pct builds a percentage rect.
func Pct(x, y, width, height float64) Rect {
	return Rect{X: x, Y: y, Width: width, Height: height, Unit: Percent}
}

// Px builds a pixel rect.
func Px(x, y, width, height float64) Rect {
	return Rect{X: x, Y: y, Width: width, Height: height, Unit: Pixel}
}

// ToPixels converts a percentage rect into pixels of the given size.
// Pixel rects are returned unchanged.
func (r Rect) ToPixels(s Size) Rect {
	if r.Unit == Pixel {
		return r
	}
	return Rect{
		X:      r.X * s.Width / 100,
		Y:      r.Y * s.Height / 100,
		Width:  r.Width * s.Width / 100,
		Height: r.Height * s.Height / 100,
		Unit:   Pixel,
	}
}

// ToPercent converts a pixel rect into percentages of the given size.
// Percentage rects are returned unchanged. An axis whose dimension is not
// positive converts to 0 rather than producing NaN or Inf.
func (r Rect) ToPercent(s Size) Rect {
	if r.Unit == Percent {
		return r
	}
	return Rect{
		X:      ratio(r.X, s.Width),
		Y:      ratio(r.Y, s.Height),
		Width:  ratio(r.Width, s.Width),
		Height: ratio(r.Height, s.Height),
		Unit:   Percent,
	}
}

func ratio(v, dim float64) float64 {
	if dim <= 0 {
		return 0
	}
	return v / dim * 100
}

// Clamp pulls a percentage rect inside 0-100 on both axes: the origin is
// clamped to [0,100] and the extent is trimmed so x+width and y+height do
// not exceed 100. Negative extents become 0. Pixel rects are returned
// unchanged since they have no intrinsic bounds.
func (r Rect) Clamp() Rect {
	if r.Unit == Pixel {
		return r
	}
	x := clamp(r.X, 0, 100)
	y := clamp(r.Y, 0, 100)
	// Trim using the original far edge so a box hanging off the left/top
	// keeps its visible part instead of sliding right/down.
	right := clamp(r.X+r.Width, x, 100)
	bottom := clamp(r.Y+r.Height, y, 100)
	return Rect{X: x, Y: y, Width: right - x, Height: bottom - y, Unit: Percent}
}

// Contains reports whether p lies inside r. All four edges are inclusive.
func (r Rect) Contains(p Point) bool {
	return p.X >= r.X && p.X <= r.X+r.Width &&
		p.Y >= r.Y && p.Y <= r.Y+r.Height
}

// Translate moves the rect by (dx, dy).
func (r Rect) Translate(dx, dy float64) Rect {
	r.X += dx
	r.Y += dy
	return r
}

// Grow changes the extent by (dw, dh). The result may be negative.
func (r Rect) Grow(dw, dh float64) Rect {
	r.Width += dw
	r.Height += dh
	return r
}

// Expand pads a percentage rect by padding percentage points in total per
// axis (half on each side), keeping the result inside the image.
func (r Rect) Expand(padding float64) Rect {
	x := math.Max(0, r.X-padding/2)
	y := math.Max(0, r.Y-padding/2)
	return Rect{
		X:      x,
		Y:      y,
		Width:  math.Min(100-x, r.Width+padding),
		Height: math.Min(100-y, r.Height+padding),
		Unit:   Percent,
	}
}

// Image rounds a pixel rect to an image.Rectangle. Negative extents produce
// a rectangle with Max < Min, which image.Rectangle treats as empty.
func (r Rect) Image() image.Rectangle {
	x0 := int(math.Round(r.X))
	y0 := int(math.Round(r.Y))
	x1 := int(math.Round(r.X + r.Width))
	y1 := int(math.Round(r.Y + r.Height))
	return image.Rectangle{Min: image.Pt(x0, y0), Max: image.Pt(x1, y1)}
}

// NormalizeFractions rescales a box reported as 0-1 fractions to 0-100.
// Vision models sometimes ignore the percentage instruction; a box whose x
// and width are both at most 1 is taken to be fractional.
func NormalizeFractions(r Rect) Rect {
	if r.Unit != Percent {
		return r
	}
	if r.X <= 1 && r.Width <= 1 {
		return Rect{X: r.X * 100, Y: r.Y * 100, Width: r.Width * 100, Height: r.Height * 100, Unit: Percent}
	}
	return r
}

// ScaleToNative maps a point in displayed (client) pixels into the native
// pixel space of a surface using native/displayed per axis. A degenerate
// displayed size leaves the point as-is.
func ScaleToNative(p Point, displayed, native Size) Point {
	if !displayed.Valid() {
		return p
	}
	return Point{
		X: p.X * native.Width / displayed.Width,
		Y: p.Y * native.Height / displayed.Height,
	}
}

// Center returns the top-left point that centres a w x h box inside outer.
func Center(outer Size, w, h float64) Point {
	return Point{X: (outer.Width - w) / 2, Y: (outer.Height - h) / 2}
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
