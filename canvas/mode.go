package canvas

import "github.com/meikuraledutech/chainchart"

// Mode is the interaction state of a Machine. Exactly one mode is active, so
// panning while dragging a node cannot be represented.
type Mode interface {
	modeName() string
}

// Idle waits for the next gesture.
type Idle struct{}

// Panning moves the view with the pointer. Origin is the last screen
// position seen, so every move applies an incremental delta.
type Panning struct {
	Origin chainchart.Point
}

// DraggingNode moves a node with the pointer. Grab is the world-space offset
// from the node's top-left corner to the point where it was grabbed.
type DraggingNode struct {
	NodeID string
	Grab   chainchart.Point
}

// DrawingConnection drags a pending edge out of an output port. Anchor is
// fixed at the source port, Cursor follows the pointer in world space.
type DrawingConnection struct {
	Source chainchart.PortRef
	Anchor chainchart.Point
	Cursor chainchart.Point
}

func (Idle) modeName() string { return "idle" }
func (Panning) modeName() string { return "panning" }
func (DraggingNode) modeName() string { return "dragging-node" }
func (DrawingConnection) modeName() string { return "drawing-connection" }

// ModeName returns a short label for m, for logs and debugging overlays.
func ModeName(m Mode) string {
	if m == nil {
		return "idle"
	}
	return m.modeName()
}
