package canvas

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/meikuraledutech/chainchart"
)

func TestHitTest(t *testing.T) {
	m := newEditor()
	e, ok := m.Graph().Connect("A:right", "B:left")
	require.True(t, ok)
	g := m.Graph()

	tests := []struct {
		name   string
		tr     Transform
		screen chainchart.Point
		want   Hit
	}{
		{"output port", Identity(), pt(103, 50), portHit("A", chainchart.SideRight)},
		{"input port", Identity(), pt(197, 52), portHit("B", chainchart.SideLeft)},
		{"node body", Identity(), pt(50, 50), nodeHit("A")},
		{"edge", Identity(), pt(150, 53), Hit{Kind: HitEdge, EdgeID: e.ID}},
		{"near edge but outside tolerance", Identity(), pt(150, 60), Hit{Kind: HitCanvas}},
		{"empty canvas", Identity(), pt(500, 500), Hit{Kind: HitCanvas}},
		{"zoomed node", Transform{X: 10, Y: 10, K: 2}, pt(110, 110), nodeHit("A")},
		{"zoomed edge tolerance shrinks", Transform{K: 2}, pt(300, 110), Hit{Kind: HitCanvas}},
		{"zoomed edge", Transform{K: 2}, pt(300, 104), Hit{Kind: HitEdge, EdgeID: e.ID}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, HitTest(g, tt.tr, tt.screen))
		})
	}
}

func TestHitTest_LaterNodesOnTop(t *testing.T) {
	g := chainchart.NewGraphFrom(chainchart.Diagram{Nodes: []chainchart.Node{
		{ID: "under", Type: chainchart.NodeState, Position: pt(0, 0)},
		{ID: "over", Type: chainchart.NodeState, Position: pt(50, 0)},
	}})
	assert.Equal(t, nodeHit("over"), HitTest(g, Identity(), pt(60, 10)))
	assert.Equal(t, nodeHit("under"), HitTest(g, Identity(), pt(20, 10)))
}

func TestHitTest_PortBeatsBody(t *testing.T) {
	g := chainchart.NewGraphFrom(chainchart.Diagram{Nodes: []chainchart.Node{
		{ID: "c", Type: chainchart.NodeCondition, Position: pt(0, 0)},
	}})
	assert.Equal(t, portHit("c", chainchart.SideBottom), HitTest(g, Identity(), pt(50, 96)))
	assert.Equal(t, portHit("c", chainchart.SideTop), HitTest(g, Identity(), pt(50, 4)))
}

func TestHitTest_DanglingEdgesIgnored(t *testing.T) {
	g := chainchart.NewGraphFrom(chainchart.Diagram{
		Nodes: []chainchart.Node{{ID: "A", Type: chainchart.NodeState, Position: pt(0, 0)}},
		Edges: []chainchart.Edge{{ID: "e", From: "A:right", To: "gone:left"}},
	})
	assert.Equal(t, Hit{Kind: HitCanvas}, HitTest(g, Identity(), pt(150, 50)))
}
