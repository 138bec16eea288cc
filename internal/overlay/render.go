package overlay

import (
	"image"
	"image/color"
	"image/draw"
	"math"

	"github.com/anthonynsimon/bild/clone"

	"github.com/ironsheep/roomswap-mcp/internal/geometry"
)

// Region is a detected area of interest. BBox is a percentage box relative to
// the base image.
type Region struct {
	ID    string        `json:"id"`
	Label string        `json:"label"`
	BBox  geometry.Rect `json:"bbox"`
}

// Render paints base at its native resolution and annotates every region on
// top of it, in slice order. The region whose ID equals hoveredID is drawn
// with the accent style. Boxes are clamped into the image before drawing.
//
// Render returns nil when base is nil or has no pixels.
func Render(base image.Image, regions []Region, hoveredID string, style Style) *image.RGBA {
	if base == nil {
		return nil
	}
	b := base.Bounds()
	if b.Dx() <= 0 || b.Dy() <= 0 {
		return nil
	}

	surface := clone.AsRGBA(base)
	// Rebase to a (0,0) origin; Pix offsets are relative to Rect.Min.
	surface.Rect = surface.Rect.Sub(surface.Rect.Min)

	native := geometry.SizeOf(surface.Bounds())
	scale := ScaleFactor(native.Width)

	for _, reg := range regions {
		hovered := hoveredID != "" && reg.ID == hoveredID
		p := style.paint(hovered, scale)
		px := reg.BBox.Clamp().ToPixels(native)

		strokeRect(surface, px, p)
		fillRect(surface, px.Image(), p.fill)
		drawChip(surface, reg.Label, px, p, style, scale)
	}

	return surface
}

// strokeRect draws the outline of r centred on its edges, dashed when the
// paint has a dash length.
func strokeRect(dst *image.RGBA, r geometry.Rect, p boxPaint) {
	half := p.width / 2
	left, right := r.X-half, r.X+r.Width+half
	top, bottom := r.Y-half, r.Y+r.Height+half

	for _, seg := range dashes(right-left, p.dash, p.gap) {
		x0, x1 := left+seg[0], left+seg[1]
		fillRect(dst, geometry.Px(x0, r.Y-half, x1-x0, p.width).Image(), p.stroke)
		fillRect(dst, geometry.Px(x0, r.Y+r.Height-half, x1-x0, p.width).Image(), p.stroke)
	}
	for _, seg := range dashes(bottom-top, p.dash, p.gap) {
		y0, y1 := top+seg[0], top+seg[1]
		fillRect(dst, geometry.Px(r.X-half, y0, p.width, y1-y0).Image(), p.stroke)
		fillRect(dst, geometry.Px(r.X+r.Width-half, y0, p.width, y1-y0).Image(), p.stroke)
	}
}

// dashes splits [0,length] into on-segments. A non-positive dash yields one
// solid segment.
func dashes(length, dash, gap float64) [][2]float64 {
	if length <= 0 {
		return nil
	}
	if dash <= 0 {
		return [][2]float64{{0, length}}
	}
	var segs [][2]float64
	for s := 0.0; s < length; s += dash + math.Max(gap, 0) {
		segs = append(segs, [2]float64{s, math.Min(s+dash, length)})
	}
	return segs
}

// fillRect composites c over r, clipped to dst.
func fillRect(dst *image.RGBA, r image.Rectangle, c color.NRGBA) {
	r = r.Intersect(dst.Bounds())
	if r.Empty() || c.A == 0 {
		return
	}
	op := draw.Over
	if c.A == 255 {
		op = draw.Src
	}
	draw.Draw(dst, r, image.NewUniform(c), image.Point{}, op)
}

// drawChip draws the label chip for a region whose pixel box is box.
func drawChip(dst *image.RGBA, label string, box geometry.Rect, p boxPaint, style Style, scale float64) {
	if label == "" {
		return
	}
	fontSize := style.FontSize * scale
	padding := style.Padding * scale
	chipHeight := fontSize * 1.4

	face := labelFace(fontSize)
	width := textWidth(face, label) + padding
	top := LabelTop(box.Y, chipHeight)

	fillRect(dst, geometry.Px(box.X, top, width, chipHeight).Image(), p.chip)
	drawText(dst, face, label, box.X+padding/2, top+2*scale, nrgba(style.Text, 1))
}
