package chainchart

import (
	"fmt"
	"math"
	"strings"
)

// Side is a port position on a node's bounding box.
type Side string

const (
	SideTop    Side = "top"
	SideRight  Side = "right"
	SideBottom Side = "bottom"
	SideLeft   Side = "left"
)

// Valid reports whether s names one of the four sides.
func (s Side) Valid() bool {
	return s == SideTop || s == SideRight || s == SideBottom || s == SideLeft
}

// PortKind tells whether edges leave or enter a port.
type PortKind string

const (
	PortInput  PortKind = "input"
	PortOutput PortKind = "output"
)

// Port is one connection point of a node type.
type Port struct {
	Side  Side     `json:"side"`
	Kind  PortKind `json:"kind"`
	Label string   `json:"label,omitempty"`
}

const (
	// DefaultNodeSize is the render size of every node except modifiers.
	DefaultNodeSize = 100.0
	// ModifierNodeSize is the render size of modifier nodes.
	ModifierNodeSize = 70.0
	// PortRadius is the hit radius of a port, in world units.
	PortRadius = 8.0
)

var portTable = map[NodeType][]Port{
	NodeState: {
		{Side: SideLeft, Kind: PortInput},
		{Side: SideRight, Kind: PortOutput},
	},
	NodeFunction: {
		{Side: SideLeft, Kind: PortInput},
		{Side: SideRight, Kind: PortOutput},
	},
	NodeOperation: {
		{Side: SideLeft, Kind: PortInput},
		{Side: SideRight, Kind: PortOutput},
	},
	NodeModifier: {
		{Side: SideBottom, Kind: PortOutput},
	},
	NodeEvent: {
		{Side: SideLeft, Kind: PortInput},
	},
	NodeCondition: {
		{Side: SideLeft, Kind: PortInput},
		{Side: SideTop, Kind: PortInput},
		{Side: SideRight, Kind: PortOutput, Label: "T"},
		{Side: SideBottom, Kind: PortOutput, Label: "F"},
	},
}

// Ports returns the ports exposed by a node type. Unknown types expose none.
func Ports(t NodeType) []Port {
	ports := portTable[t]
	out := make([]Port, len(ports))
	copy(out, ports)
	return out
}

// LookupPort returns the port a node type exposes on side s.
func LookupPort(t NodeType, s Side) (Port, bool) {
	for _, p := range portTable[t] {
		if p.Side == s {
			return p, true
		}
	}
	return Port{}, false
}

// NodeSize returns the square render size of a node type.
func NodeSize(t NodeType) float64 {
	if t == NodeModifier {
		return ModifierNodeSize
	}
	return DefaultNodeSize
}

// PortOffset returns the offset of side s from a node's top-left corner.
func PortOffset(size float64, s Side) Point {
	half := size / 2
	switch s {
	case SideTop:
		return Point{X: half, Y: 0}
	case SideBottom:
		return Point{X: half, Y: size}
	case SideLeft:
		return Point{X: 0, Y: half}
	case SideRight:
		return Point{X: size, Y: half}
	}
	return Point{X: half, Y: half}
}

// Anchor returns the world-space point of a node's port on side s.
// It reports false when the node's type does not expose that port.
func Anchor(n Node, s Side) (Point, bool) {
	if _, ok := LookupPort(n.Type, s); !ok {
		return Point{}, false
	}
	return n.Position.Add(PortOffset(NodeSize(n.Type), s)), true
}

// PortAt returns the port of n nearest to the world point p, if one lies
// within radius.
func PortAt(n Node, p Point, radius float64) (Port, bool) {
	var (
		best     Port
		bestDist = math.Inf(1)
		found    bool
	)
	for _, port := range portTable[n.Type] {
		a := n.Position.Add(PortOffset(NodeSize(n.Type), port.Side))
		d := math.Hypot(p.X-a.X, p.Y-a.Y)
		if d <= radius && d < bestDist {
			best, bestDist, found = port, d, true
		}
	}
	return best, found
}

// Contains reports whether the world point p lies inside n's bounding box.
func Contains(n Node, p Point) bool {
	size := NodeSize(n.Type)
	return p.X >= n.Position.X && p.X <= n.Position.X+size &&
		p.Y >= n.Position.Y && p.Y <= n.Position.Y+size
}

// PortRef addresses one port of one node.
type PortRef struct {
	NodeID string
	Side   Side
}

// ParsePortRef parses "<nodeId>:<side>". The node id may itself contain colons.
func ParsePortRef(s string) (PortRef, error) {
	i := strings.LastIndex(s, ":")
	if i <= 0 || i == len(s)-1 {
		return PortRef{}, fmt.Errorf("%w: %q", ErrInvalidPortRef, s)
	}
	ref := PortRef{NodeID: s[:i], Side: Side(s[i+1:])}
	if !ref.Side.Valid() {
		return PortRef{}, fmt.Errorf("%w: unknown side in %q", ErrInvalidPortRef, s)
	}
	return ref, nil
}

// String renders the reference in "<nodeId>:<side>" form.
func (r PortRef) String() string {
	return r.NodeID + ":" + string(r.Side)
}

// IsZero reports whether r is the zero reference.
func (r PortRef) IsZero() bool {
	return r.NodeID == "" && r.Side == ""
}
