package overlay

import (
	"image"

	"github.com/ironsheep/roomswap-mcp/internal/geometry"
)

// Locate returns the ID of the topmost region containing p, where p is in the
// native pixel space of a surface of the given size. Regions are scanned from
// last to first. Nothing is found when the size is unknown.
func Locate(regions []Region, native geometry.Size, p geometry.Point) (string, bool) {
	if !native.Valid() {
		return "", false
	}
	for i := len(regions) - 1; i >= 0; i-- {
		if regions[i].BBox.Clamp().ToPixels(native).Contains(p) {
			return regions[i].ID, true
		}
	}
	return "", false
}

// Renderer owns one drawing surface and the hover state for it. It is not
// safe for concurrent use; the host drives it from a single event loop.
type Renderer struct {
	style   Style
	base    image.Image
	native  geometry.Size
	regions []Region
	hovered string

	surface  *image.RGBA
	dirty    bool
	repaints int

	// OnSelect is called with the region ID when Click hits a region.
	OnSelect func(id string)
}

// NewRenderer creates a renderer with no image loaded.
func NewRenderer(style Style) *Renderer {
	return &Renderer{style: style}
}

// SetImage installs a new base image, typically once it has finished
// loading. Hover state from the previous image is dropped.
func (r *Renderer) SetImage(img image.Image) {
	r.base = img
	r.native = geometry.Size{}
	if img != nil {
		r.native = geometry.SizeOf(img.Bounds())
	}
	r.hovered = ""
	r.surface = nil
	r.dirty = true
}

// SetRegions replaces the region list. The slice is copied.
func (r *Renderer) SetRegions(regions []Region) {
	r.regions = append([]Region(nil), regions...)
	if r.hovered != "" && !r.has(r.hovered) {
		r.hovered = ""
	}
	r.dirty = true
}

func (r *Renderer) has(id string) bool {
	for _, reg := range r.regions {
		if reg.ID == id {
			return true
		}
	}
	return false
}

// Regions returns a copy of the current region list.
func (r *Renderer) Regions() []Region {
	out := make([]Region, len(r.regions))
	copy(out, r.regions)
	return out
}

// Loaded reports whether a base image is available.
func (r *Renderer) Loaded() bool {
	return r.base != nil && r.native.Valid()
}

// Size returns the native surface size, zero before an image is loaded.
func (r *Renderer) Size() geometry.Size {
	return r.native
}

// Hovered returns the hovered region ID, or "" when nothing is hovered.
func (r *Renderer) Hovered() string {
	return r.hovered
}

// MarkDirty forces the next Frame to repaint.
func (r *Renderer) MarkDirty() {
	r.dirty = true
}

// Dirty reports whether the next Frame will repaint.
func (r *Renderer) Dirty() bool {
	return r.dirty || (r.surface == nil && r.Loaded())
}

// Repaints returns how many times the surface has been painted.
func (r *Renderer) Repaints() int {
	return r.repaints
}

// Frame returns the current surface, repainting it first if dirty. It
// returns nil until an image is loaded.
func (r *Renderer) Frame() *image.RGBA {
	if !r.Loaded() {
		return nil
	}
	if r.Dirty() {
		r.surface = Render(r.base, r.regions, r.hovered, r.style)
		r.dirty = false
		r.repaints++
	}
	return r.surface
}

// Locate hit-tests a point given in native surface pixels.
func (r *Renderer) Locate(p geometry.Point) (string, bool) {
	if !r.Loaded() {
		return "", false
	}
	return Locate(r.regions, r.native, p)
}

// Hover updates the hovered region from a pointer position in client pixels
// on a surface displayed at the given size, and returns the hovered ID.
func (r *Renderer) Hover(client geometry.Point, displayed geometry.Size) string {
	if !r.Loaded() {
		return ""
	}
	id, _ := r.Locate(geometry.ScaleToNative(client, displayed, r.native))
	if id != r.hovered {
		r.hovered = id
		r.dirty = true
	}
	return id
}

// Leave clears the hover state, as when the pointer exits the surface.
func (r *Renderer) Leave() {
	if r.hovered != "" {
		r.hovered = ""
		r.dirty = true
	}
}

// Click resolves a click in client pixels. On a hit it calls OnSelect and
// returns the region ID.
func (r *Renderer) Click(client geometry.Point, displayed geometry.Size) (string, bool) {
	if !r.Loaded() {
		return "", false
	}
	id, ok := r.Locate(geometry.ScaleToNative(client, displayed, r.native))
	if ok && r.OnSelect != nil {
		r.OnSelect(id)
	}
	return id, ok
}
