// Package server implements the MCP (Model Context Protocol) server for the
// room swap wizard.
//
// The server owns the geometry core of the wizard: the furniture region
// overlay drawn over a room photo and the placement editor used to position
// a product by hand. The MCP client drives the steps and forwards pointer
// events; every coordinate conversion and hit-test happens here.
//
// # Protocol
//
// The server communicates over stdio using JSON-RPC 2.0:
//   - Input: JSON-RPC requests on stdin (one per line)
//   - Output: JSON-RPC responses on stdout
//
// Supported MCP methods:
//   - initialize: Protocol handshake
//   - tools/list: Enumerate available tools
//   - tools/call: Execute a tool with arguments
//   - ping: Health check
//
// # Available Tools
//
// Basic Image Information:
//   - image_info: Dimensions, format and file size
//
// Room Overlay:
//   - room_load: Load the room photo and propose furniture regions
//   - room_set_regions: Replace the regions
//   - room_render: Photo with overlay as base64
//   - room_pointer: Hover, click and leave from the displayed photo
//   - room_locate: Hit-test in native pixels
//
// Placement Editor:
//   - placement_open: Start placing a product over a background
//   - placement_pointer: Move or resize the placement box
//   - placement_confirm: Percent placement, closes the editor
//   - placement_preview: Product composited at the live placement
//
// # Workspace State
//
// Requests are processed one at a time. The room photo, its regions, the
// hovered and selected region and the open placement editor persist between
// calls for the lifetime of the process. Loading a new room photo clears
// hover and selection; reopening the editor resets its box and any gesture
// in progress.
//
// # Error Handling
//
// Tool execution errors are returned as JSON-RPC error responses with:
//   - code: -32000 (tool execution failure) or standard JSON-RPC codes
//   - message: Human-readable error description
//   - data: Additional error details (typically the Go error string)
//
// A failed scene analysis is not a tool error: room_load succeeds with no
// regions and reports analysis_error.
//
// # Usage
//
//	srv := server.New(cfg, logger, analyzer)
//	if err := srv.Run(ctx); err != nil {
//	    log.Fatal(err)
//	}
package server
