package canvas

import "github.com/meikuraledutech/chainchart"

// Button identifies the pressed pointer button, numbered like DOM MouseEvent.button.
type Button int

const (
	ButtonPrimary   Button = 0
	ButtonMiddle    Button = 1
	ButtonSecondary Button = 2
)

// HitKind classifies what lies under the pointer.
type HitKind int

const (
	// HitNone is anything that is not part of the drawing, such as overlays.
	HitNone HitKind = iota
	// HitCanvas is empty canvas background.
	HitCanvas
	HitNode
	HitPort
	HitEdge
)

func (k HitKind) String() string {
	switch k {
	case HitCanvas:
		return "canvas"
	case HitNode:
		return "node"
	case HitPort:
		return "port"
	case HitEdge:
		return "edge"
	}
	return "none"
}

// Hit is the rendering layer's answer to "what is under the pointer".
// NodeID is set for node and port hits, Port for port hits and EdgeID for
// edge hits.
type Hit struct {
	Kind   HitKind
	NodeID string
	Port   chainchart.PortRef
	EdgeID string
}

// PointerEvent is a pointer down, move or up inside the canvas container.
// Screen is relative to the container's top-left corner.
type PointerEvent struct {
	Screen chainchart.Point
	Button Button
	Ctrl   bool
	Meta   bool
	Target Hit
}

// WheelEvent is a wheel or trackpad scroll.
type WheelEvent struct {
	Screen chainchart.Point
	DeltaX float64
	DeltaY float64
	Ctrl   bool
	Meta   bool
}

// DropEvent is a palette item released over the canvas. Token carries the
// node type written into the drag data on drag start.
type DropEvent struct {
	Screen chainchart.Point
	Token  string
}
