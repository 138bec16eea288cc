// Package placement implements the direct-manipulation editor used to
// position a product image over a background photo.
//
// The gesture state machine is a pure function, Transition, over an explicit
// Session value. Editor wraps it with a container size, a live pixel
// rectangle and resize-handle hit-testing, and converts the rectangle to
// percentages of the container on Confirm.
//
// Manipulation is deliberately unconstrained: a rectangle may be dragged
// off the container or resized to a negative extent, and is reported as-is.
package placement
