package chainchart

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func twoNodeGraph() *Graph {
	return NewGraphFrom(Diagram{
		Nodes: []Node{
			{ID: "A", Type: NodeState, Label: "A", Position: Point{X: 0, Y: 0}},
			{ID: "B", Type: NodeFunction, Label: "B", Position: Point{X: 200, Y: 0}},
		},
	})
}

func TestAddNode(t *testing.T) {
	g := NewGraph()
	n := g.AddNode(NodeState, Point{X: 100, Y: 100})

	require.Equal(t, 1, g.Len())
	assert.Equal(t, NodeState, n.Type)
	assert.Equal(t, "New state", n.Label)
	assert.Equal(t, Point{X: 100, Y: 100}, n.Position)
	assert.JSONEq(t, `{}`, string(n.Metadata))
	assert.True(t, strings.HasPrefix(n.ID, "node_"))

	got, ok := g.Node(n.ID)
	require.True(t, ok)
	assert.Equal(t, n, got)
}

func TestAddNode_UniqueIDs(t *testing.T) {
	g := NewGraph()
	seen := map[string]bool{}
	for i := 0; i < 50; i++ {
		n := g.AddNode(NodeTypes[i%len(NodeTypes)], Point{})
		require.False(t, seen[n.ID], "duplicate id %s", n.ID)
		seen[n.ID] = true
	}
}

func TestConnect_DuplicateSuppressed(t *testing.T) {
	g := twoNodeGraph()

	e, ok := g.Connect("A:right", "B:left")
	require.True(t, ok)
	assert.True(t, strings.HasPrefix(e.ID, "edge_"))

	_, ok = g.Connect("A:right", "B:left")
	assert.False(t, ok)
	assert.Len(t, g.Edges(), 1)
}

func TestConnect_ReverseDirectionIsDistinct(t *testing.T) {
	g := NewGraphFrom(Diagram{Nodes: []Node{
		{ID: "A", Type: NodeFunction},
		{ID: "B", Type: NodeFunction},
	}})

	_, ok := g.Connect("A:right", "B:left")
	require.True(t, ok)
	_, ok = g.Connect("B:right", "A:left")
	require.True(t, ok)
	assert.Len(t, g.Edges(), 2)
}

func TestConnect_Rejections(t *testing.T) {
	g := NewGraphFrom(Diagram{Nodes: []Node{
		{ID: "A", Type: NodeState},
		{ID: "B", Type: NodeFunction},
		{ID: "E", Type: NodeEvent},
		{ID: "C", Type: NodeCondition},
	}})

	tests := []struct {
		name     string
		from, to string
	}{
		{"self loop", "C:right", "C:left"},
		{"self loop top", "C:bottom", "C:top"},
		{"unknown source node", "X:right", "B:left"},
		{"unknown target node", "A:right", "X:left"},
		{"missing port on type", "A:top", "B:left"},
		{"input used as source", "B:left", "A:left"},
		{"output used as target", "A:right", "B:right"},
		{"event has no output", "E:right", "B:left"},
		{"malformed source", "A", "B:left"},
		{"malformed side", "A:middle", "B:left"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, ok := g.Connect(tt.from, tt.to)
			assert.False(t, ok)
		})
	}
	assert.Empty(t, g.Edges())
}

func TestConnect_ConditionBranches(t *testing.T) {
	g := NewGraphFrom(Diagram{Nodes: []Node{
		{ID: "cond", Type: NodeCondition},
		{ID: "yes", Type: NodeFunction},
		{ID: "no", Type: NodeEvent},
		{ID: "src", Type: NodeState},
	}})

	for _, pair := range [][2]string{
		{"cond:right", "yes:left"},
		{"cond:bottom", "no:left"},
		{"src:right", "cond:top"},
	} {
		_, ok := g.Connect(pair[0], pair[1])
		assert.True(t, ok, "%s -> %s", pair[0], pair[1])
	}
	assert.Len(t, g.Edges(), 3)
}

func TestRemoveNode_Cascade(t *testing.T) {
	g := NewGraphFrom(Diagram{Nodes: []Node{
		{ID: "A", Type: NodeFunction},
		{ID: "B", Type: NodeFunction},
		{ID: "C", Type: NodeEvent},
		{ID: "D", Type: NodeState},
	}})
	_, ok := g.Connect("A:right", "B:left")
	require.True(t, ok)
	_, ok = g.Connect("A:right", "C:left")
	require.True(t, ok)
	_, ok = g.Connect("D:right", "A:left")
	require.True(t, ok)
	_, ok = g.Connect("B:right", "C:left")
	require.True(t, ok)

	g.RemoveNode("A")

	_, ok = g.Node("A")
	assert.False(t, ok)
	for _, id := range []string{"B", "C", "D"} {
		_, ok := g.Node(id)
		assert.True(t, ok, id)
	}
	for _, e := range g.Edges() {
		assert.False(t, strings.HasPrefix(e.From, "A:"))
		assert.False(t, strings.HasPrefix(e.To, "A:"))
	}
	assert.Len(t, g.Edges(), 1)
}

func TestRemoveNode_PrefixIDsAreNotConfused(t *testing.T) {
	g := NewGraphFrom(Diagram{Nodes: []Node{
		{ID: "node_1", Type: NodeFunction},
		{ID: "node_12", Type: NodeFunction},
		{ID: "node_2", Type: NodeEvent},
	}})
	_, ok := g.Connect("node_12:right", "node_2:left")
	require.True(t, ok)

	g.RemoveNode("node_1")
	assert.Len(t, g.Edges(), 1)
}

func TestRemoveNode_Idempotent(t *testing.T) {
	g := twoNodeGraph()
	g.RemoveNode("missing")
	g.RemoveNode("A")
	g.RemoveNode("A")
	assert.Equal(t, 1, g.Len())
}

func TestUpdateNode(t *testing.T) {
	g := twoNodeGraph()
	label := "balance"
	value := "0"

	ok := g.UpdateNode("A", NodePatch{Label: &label, Value: &value, Metadata: json.RawMessage(`{"dataType":"uint256"}`)})
	require.True(t, ok)

	n, _ := g.Node("A")
	assert.Equal(t, "balance", n.Label)
	assert.Equal(t, "0", n.Value)
	assert.Equal(t, Point{}, n.Position)
	assert.JSONEq(t, `{"dataType":"uint256"}`, string(n.Metadata))

	// Metadata is replaced, not merged.
	g.UpdateNode("A", NodePatch{Metadata: json.RawMessage(`{"visibility":"public"}`)})
	n, _ = g.Node("A")
	assert.JSONEq(t, `{"visibility":"public"}`, string(n.Metadata))

	assert.False(t, g.UpdateNode("missing", NodePatch{Label: &label}))
}

func TestSetMetadataField(t *testing.T) {
	g := twoNodeGraph()
	require.True(t, g.SetMetadataField("B", "params", "address to, uint256 amount"))
	require.True(t, g.SetMetadataField("B", "payable", true))

	n, _ := g.Node("B")
	assert.JSONEq(t, `{"params":"address to, uint256 amount","payable":true}`, string(n.Metadata))
	assert.False(t, g.SetMetadataField("missing", "k", 1))
}

func TestDisconnect(t *testing.T) {
	g := NewGraphFrom(Diagram{Nodes: []Node{
		{ID: "A", Type: NodeFunction},
		{ID: "B", Type: NodeFunction},
		{ID: "C", Type: NodeEvent},
	}})
	e1, _ := g.Connect("A:right", "B:left")
	g.Connect("B:right", "C:left")

	assert.True(t, g.Disconnect(e1.ID))
	assert.False(t, g.Disconnect(e1.ID))
	require.Len(t, g.Edges(), 1)

	assert.False(t, g.DisconnectAt(5))
	assert.True(t, g.DisconnectAt(0))
	assert.Empty(t, g.Edges())
}

func TestSnapshot_IsDeepCopy(t *testing.T) {
	g := twoNodeGraph()
	g.SetMetadataField("A", "k", "v")

	snap := g.Snapshot()
	snap.Nodes[0].Label = "changed"
	snap.Nodes[0].Metadata[2] = 'X'

	n, _ := g.Node("A")
	assert.Equal(t, "A", n.Label)
	assert.JSONEq(t, `{"k":"v"}`, string(n.Metadata))
}

func TestClear(t *testing.T) {
	g := twoNodeGraph()
	g.Connect("A:right", "B:left")
	g.Clear()
	assert.Zero(t, g.Len())
	assert.Empty(t, g.Edges())
}

func TestReplace_AssignsMissingEdgeIDs(t *testing.T) {
	g := NewGraphFrom(Diagram{
		Nodes: []Node{
			{ID: "A", Type: NodeState},
			{ID: "B", Type: NodeFunction, Position: Point{X: 200}},
			{ID: "C", Type: NodeFunction, Position: Point{X: 200, Y: 300}},
		},
		Edges: []Edge{
			{From: "A:right", To: "B:left"},
			{ID: "kept", From: "A:right", To: "C:left"},
		},
	})

	edges := g.Edges()
	require.Len(t, edges, 2)
	assert.True(t, strings.HasPrefix(edges[0].ID, "edge_"))
	assert.Equal(t, "kept", edges[1].ID)

	assert.False(t, g.Disconnect(""))
	assert.True(t, g.Disconnect(edges[0].ID))
	require.Len(t, g.Edges(), 1)
	assert.Equal(t, "kept", g.Edges()[0].ID)
}

func TestReplace_KeepsMetadataBytes(t *testing.T) {
	raw := json.RawMessage("{\n  \"dataType\": \"uint256\"\n}")
	g := NewGraphFrom(Diagram{Nodes: []Node{
		{ID: "A", Type: NodeState, Metadata: raw},
		{ID: "B", Type: NodeState, Metadata: json.RawMessage(" null ")},
	}})

	a, _ := g.Node("A")
	assert.Equal(t, string(raw), string(a.Metadata))
	b, _ := g.Node("B")
	assert.Equal(t, "{}", string(b.Metadata))
}
