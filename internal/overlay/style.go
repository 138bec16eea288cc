package overlay

import (
	"fmt"
	"image/color"
	"math"

	"github.com/lucasb-eyer/go-colorful"
)

// ReferenceWidth is the native width at which annotations are drawn at their
// base sizes.
const ReferenceWidth = 1000.0

// Style controls how regions are annotated. Sizes are given at the reference
// width and multiplied by the scale factor at draw time.
type Style struct {
	Stroke colorful.Color // box stroke and label chip of idle regions
	Accent colorful.Color // box stroke and label chip of the hovered region
	Text   colorful.Color // label text

	LineWidth float64 // stroke width in pixels
	FontSize  float64 // label font size in pixels
	Padding   float64 // total horizontal label padding in pixels

	FillAlpha       float64 // box fill opacity of idle regions (0-1)
	AccentFillAlpha float64 // box fill opacity of the hovered region (0-1)
	HoverWeight     float64 // stroke width multiplier for the hovered region

	Dash float64 // dash length of idle strokes
	Gap  float64 // gap length of idle strokes
}

// DefaultStyle returns purple dashed boxes with a cyan hover accent.
func DefaultStyle() Style {
	return Style{
		Stroke:          mustHex("#a855f7"),
		Accent:          mustHex("#05f2f2"),
		Text:            mustHex("#111827"),
		LineWidth:       4,
		FontSize:        24,
		Padding:         20,
		FillAlpha:       0.1,
		AccentFillAlpha: 0.3,
		HoverWeight:     1.5,
		Dash:            10,
		Gap:             5,
	}
}

// mustHex parses a compile-time colour constant.
func mustHex(hex string) colorful.Color {
	c, err := colorful.Hex(hex)
	if err != nil {
		panic(fmt.Sprintf("overlay: invalid color %q: %v", hex, err))
	}
	return c
}

// WithColors returns a copy of s using the given hex colours. Empty strings
// keep the current colour.
func (s Style) WithColors(stroke, accent string) (Style, error) {
	if stroke != "" {
		c, err := colorful.Hex(stroke)
		if err != nil {
			return s, fmt.Errorf("invalid stroke color %q: %w", stroke, err)
		}
		s.Stroke = c
	}
	if accent != "" {
		c, err := colorful.Hex(accent)
		if err != nil {
			return s, fmt.Errorf("invalid accent color %q: %w", accent, err)
		}
		s.Accent = c
	}
	return s, nil
}

// ScaleFactor returns max(1, nativeWidth/ReferenceWidth).
func ScaleFactor(nativeWidth float64) float64 {
	return math.Max(1, nativeWidth/ReferenceWidth)
}

// LabelTop returns the y coordinate of a label chip for a box whose top edge
// is at top. The chip sits above the box unless that would cross the top of
// the surface, in which case it sits inside, flush with the top edge.
func LabelTop(top, chipHeight float64) float64 {
	if top-chipHeight < 0 {
		return top
	}
	return top - chipHeight
}

// boxPaint is the resolved paint for one region.
type boxPaint struct {
	stroke color.NRGBA
	fill   color.NRGBA
	chip   color.NRGBA
	width  float64
	dash   float64
	gap    float64
}

func (s Style) paint(hovered bool, scale float64) boxPaint {
	if hovered {
		return boxPaint{
			stroke: nrgba(s.Accent, 1),
			fill:   nrgba(s.Accent, s.AccentFillAlpha),
			chip:   nrgba(s.Accent, 1),
			width:  s.LineWidth * scale * s.HoverWeight,
		}
	}
	return boxPaint{
		stroke: nrgba(s.Stroke, 1),
		fill:   nrgba(s.Stroke, s.FillAlpha),
		chip:   nrgba(s.Stroke, 1),
		width:  s.LineWidth * scale,
		dash:   s.Dash * scale,
		gap:    s.Gap * scale,
	}
}

func nrgba(c colorful.Color, alpha float64) color.NRGBA {
	r, g, b := c.Clamped().RGB255()
	return color.NRGBA{R: r, G: g, B: b, A: uint8(math.Round(math.Max(0, math.Min(1, alpha)) * 255))}
}
