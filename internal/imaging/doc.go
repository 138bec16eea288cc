// Package imaging loads, caches and encodes the photos the server works on.
//
// Room photos and product shots are decoded once through ImageCache, with
// EXIF orientation applied so the decoded bounds are the native surface
// size used by the overlay and placement packages. Rendered frames leave the
// server as base64 PNG, JPEG or WebP via Encode; images sent to a vision
// model are downsized and re-encoded as JPEG by PrepareForModel.
//
// # Coordinate System
//
// All pixel coordinates are 0-based with (0,0) at the top-left corner,
// X increasing rightward and Y increasing downward.
//
// # Thread Safety
//
// The ImageCache type is safe for concurrent use. Encode and PrepareForModel
// are stateless.
package imaging
