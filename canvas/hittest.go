package canvas

import "github.com/meikuraledutech/chainchart"

// EdgeHitTolerance is how close, in screen pixels, the pointer must be to an
// edge curve to hit it.
const EdgeHitTolerance = 6.0

// HitTest resolves a screen point against the graph geometry, for hosts that
// cannot report hits from their own rendering. Ports win over node bodies,
// later nodes are on top of earlier ones, and edges come last.
func HitTest(g *chainchart.Graph, t Transform, screen chainchart.Point) Hit {
	world := ScreenToWorld(screen, t)
	nodes := g.Nodes()

	for i := len(nodes) - 1; i >= 0; i-- {
		n := nodes[i]
		if p, ok := chainchart.PortAt(n, world, chainchart.PortRadius); ok {
			return Hit{
				Kind:   HitPort,
				NodeID: n.ID,
				Port:   chainchart.PortRef{NodeID: n.ID, Side: p.Side},
			}
		}
	}
	for i := len(nodes) - 1; i >= 0; i-- {
		if chainchart.Contains(nodes[i], world) {
			return Hit{Kind: HitNode, NodeID: nodes[i].ID}
		}
	}

	tolerance := EdgeHitTolerance / t.K
	byID := indexNodes(nodes)
	edges := g.Edges()
	for i := len(edges) - 1; i >= 0; i-- {
		curve, ok := edgeCurve(byID, edges[i])
		if !ok {
			continue
		}
		if curve.distanceTo(world) <= tolerance {
			return Hit{Kind: HitEdge, EdgeID: edges[i].ID}
		}
	}
	return Hit{Kind: HitCanvas}
}

func indexNodes(nodes []chainchart.Node) map[string]chainchart.Node {
	byID := make(map[string]chainchart.Node, len(nodes))
	for _, n := range nodes {
		byID[n.ID] = n
	}
	return byID
}

// edgeCurve resolves both endpoints of e. It reports false when either node
// or port is missing.
func edgeCurve(byID map[string]chainchart.Node, e chainchart.Edge) (Bezier, bool) {
	start, ok := endpoint(byID, e.From)
	if !ok {
		return Bezier{}, false
	}
	end, ok := endpoint(byID, e.To)
	if !ok {
		return Bezier{}, false
	}
	return EdgeCurve(start, end), true
}

func endpoint(byID map[string]chainchart.Node, ref string) (chainchart.Point, bool) {
	r, err := chainchart.ParsePortRef(ref)
	if err != nil {
		return chainchart.Point{}, false
	}
	n, ok := byID[r.NodeID]
	if !ok {
		return chainchart.Point{}, false
	}
	return chainchart.Anchor(n, r.Side)
}
