package placement

import (
	"image"
	"math"

	"github.com/disintegration/imaging"

	"github.com/ironsheep/roomswap-mcp/internal/geometry"
)

// Composite draws product over background inside placement, a percentage
// rectangle of the background. The product keeps its aspect ratio and is
// scaled to fit the rectangle, centred in it. Neither input is modified.
//
// Placements smaller than a pixel on either axis, or a nil product, yield a
// copy of the background alone.
func Composite(background, product image.Image, placement geometry.Rect) *image.NRGBA {
	if background == nil {
		return nil
	}
	out := imaging.Clone(background)
	if product == nil {
		return out
	}

	bg := geometry.SizeOf(out.Bounds())
	box := placement.ToPixels(bg)
	if box.Width < 1 || box.Height < 1 {
		return out
	}

	pb := product.Bounds()
	if pb.Dx() <= 0 || pb.Dy() <= 0 {
		return out
	}
	scale := math.Min(box.Width/float64(pb.Dx()), box.Height/float64(pb.Dy()))
	w := int(math.Round(float64(pb.Dx()) * scale))
	h := int(math.Round(float64(pb.Dy()) * scale))
	if w < 1 || h < 1 {
		return out
	}

	fitted := imaging.Resize(product, w, h, imaging.Lanczos)
	at := geometry.Center(geometry.Size{Width: box.Width, Height: box.Height}, float64(w), float64(h))
	pos := image.Pt(int(math.Round(box.X+at.X)), int(math.Round(box.Y+at.Y)))

	return imaging.Overlay(out, fitted, pos, 1.0)
}
