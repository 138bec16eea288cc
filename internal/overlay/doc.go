// Package overlay renders detected regions over a base image and resolves
// pointer positions back to regions.
//
// The drawing surface always has the base image's native resolution. Region
// boxes arrive as percentages and are converted to native pixels on every
// render and hit-test, so swapping the base image never leaves stale
// geometry behind.
//
// # Draw Order
//
// Regions are drawn in slice order, so later regions paint on top. Locate
// scans in reverse and returns the first containing region, which is the
// topmost one drawn.
//
// # Scaling
//
// Stroke width, label font size and label padding grow with the image so
// annotations stay legible on large photos:
//
//	scale := max(1, nativeWidth/1000)
//
// # Dirty Tracking
//
// Renderer keeps the last painted frame and only repaints after something
// that changes the picture: a new image, new regions, or a hover change.
// Render is the stateless full-repaint primitive underneath.
//
// # Missing Image
//
// Until SetImage has been called every operation is a no-op: Frame returns
// nil, Locate finds nothing, pointer events are ignored. This mirrors a
// surface that stays blank until the image finishes loading.
package overlay
