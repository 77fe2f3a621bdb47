package canvas

import (
	"math"

	"github.com/meikuraledutech/chainchart"
)

// Scene is everything a renderer needs to paint one frame. It is a value
// snapshot: mutating it does not affect the machine or the graph.
type Scene struct {
	Transform   Transform  `json:"transform"`
	ZoomPercent int        `json:"zoom_percent"`
	Grid        Grid       `json:"grid"`
	Nodes       []NodeView `json:"nodes"`
	Edges       []EdgeView `json:"edges"`
	Pending     *Bezier    `json:"pending,omitempty"`
	Mode        string     `json:"mode"`
}

// Grid describes the painted background grid in screen space.
type Grid struct {
	Spacing float64          `json:"spacing"`
	Offset  chainchart.Point `json:"offset"`
}

// NodeView is a node plus its render geometry.
type NodeView struct {
	Node     chainchart.Node `json:"node"`
	Size     float64         `json:"size"`
	Selected bool            `json:"selected"`
	Ports    []PortView      `json:"ports"`
}

// PortView is a port and its world-space anchor.
type PortView struct {
	chainchart.Port
	Anchor chainchart.Point `json:"anchor"`
}

// EdgeView is an edge and the curve drawn for it.
type EdgeView struct {
	Edge  chainchart.Edge `json:"edge"`
	Curve Bezier          `json:"curve"`
}

// Scene builds the current frame. Edges whose endpoints cannot be resolved
// are left out. While a connection is being drawn, Pending holds the curve
// from the source anchor to the live cursor.
func (m *Machine) Scene() Scene {
	t := m.transform
	nodes := m.graph.Nodes()
	byID := indexNodes(nodes)

	s := Scene{
		Transform:   t,
		ZoomPercent: int(math.Round(t.K * 100)),
		Grid:        Grid{Spacing: GridSize * t.K, Offset: chainchart.Point{X: t.X, Y: t.Y}},
		Nodes:       make([]NodeView, 0, len(nodes)),
		Mode:        ModeName(m.mode),
	}

	for _, n := range nodes {
		view := NodeView{
			Node:     n,
			Size:     chainchart.NodeSize(n.Type),
			Selected: n.ID == m.selected,
		}
		for _, p := range chainchart.Ports(n.Type) {
			anchor, _ := chainchart.Anchor(n, p.Side)
			view.Ports = append(view.Ports, PortView{Port: p, Anchor: anchor})
		}
		s.Nodes = append(s.Nodes, view)
	}

	edges := m.graph.Edges()
	s.Edges = make([]EdgeView, 0, len(edges))
	for _, e := range edges {
		curve, ok := edgeCurve(byID, e)
		if !ok {
			continue
		}
		s.Edges = append(s.Edges, EdgeView{Edge: e, Curve: curve})
	}

	if dc, ok := m.mode.(DrawingConnection); ok {
		pending := EdgeCurve(dc.Anchor, dc.Cursor)
		s.Pending = &pending
	}
	return s
}
