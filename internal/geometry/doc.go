// Package geometry holds the coordinate-space conversions shared by the
// region overlay and the placement editor.
//
// # Coordinate Spaces
//
// Three spaces are in play:
//   - Percent: 0-100 of the reference image's width (x, width) or height
//     (y, height). Detected regions and confirmed placements use this space.
//   - Native pixels: the pixel grid of the drawing surface, which matches the
//     base image's natural resolution.
//   - Client pixels: the size the host actually displays the surface at.
//     Pointer events arrive in this space and are rescaled with ScaleToNative.
//
// All spaces put (0,0) at the top-left corner with Y increasing downward.
//
// # One Shape, Two Units
//
// Bounding boxes and placement rectangles share the Rect type. The Unit tag
// says which space the four numbers are in, so the conversions stay symmetric:
//
//	px := box.ToPixels(geometry.Size{Width: 1000, Height: 800})
//	back := px.ToPercent(geometry.Size{Width: 1000, Height: 800}) // == box
//
// Manipulation helpers (Translate, Grow) never clamp. Clamping is applied
// explicitly with Clamp, and only to percent rects.
package geometry
