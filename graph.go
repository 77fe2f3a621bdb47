package chainchart

import (
	"bytes"
	"encoding/json"

	"github.com/google/uuid"
)

var emptyMetadata = json.RawMessage(`{}`)

// Graph is the in-memory, authoritative node/edge collection of one editing
// session. It is not safe for concurrent use: every mutation happens on the
// event thread that owns it.
type Graph struct {
	nodes []Node
	edges []Edge
	newID func(prefix string) string
}

// NewGraph creates an empty graph.
func NewGraph() *Graph {
	return &Graph{newID: newUUID}
}

// NewGraphFrom creates a graph holding a copy of d.
// The diagram is trusted; use Import for untrusted input.
func NewGraphFrom(d Diagram) *Graph {
	g := NewGraph()
	g.Replace(d)
	return g
}

func newUUID(prefix string) string {
	return prefix + "_" + uuid.NewString()
}

// AddNode creates a node of type t at pos and returns it.
func (g *Graph) AddNode(t NodeType, pos Point) Node {
	n := Node{
		ID:       g.newID("node"),
		Type:     t,
		Label:    "New " + string(t),
		Position: pos,
		Metadata: cloneRaw(emptyMetadata),
	}
	g.nodes = append(g.nodes, n)
	return cloneNode(n)
}

// RemoveNode deletes a node and every edge that references it.
// Removing an unknown id is a no-op.
func (g *Graph) RemoveNode(id string) {
	i := g.indexOf(id)
	if i < 0 {
		return
	}
	g.nodes = append(g.nodes[:i], g.nodes[i+1:]...)

	kept := g.edges[:0]
	for _, e := range g.edges {
		if edgeTouches(e, id) {
			continue
		}
		kept = append(kept, e)
	}
	g.edges = kept
}

func edgeTouches(e Edge, nodeID string) bool {
	if from, err := ParsePortRef(e.From); err == nil && from.NodeID == nodeID {
		return true
	}
	if to, err := ParsePortRef(e.To); err == nil && to.NodeID == nodeID {
		return true
	}
	return false
}

// NodePatch lists the fields UpdateNode changes. Nil fields are left alone.
// Metadata, when non-nil, replaces the whole metadata object.
type NodePatch struct {
	Label    *string
	Value    *string
	Position *Point
	Metadata json.RawMessage
}

// UpdateNode merges patch into the node with the given id.
// It reports false when the node does not exist.
func (g *Graph) UpdateNode(id string, patch NodePatch) bool {
	i := g.indexOf(id)
	if i < 0 {
		return false
	}
	n := &g.nodes[i]
	if patch.Label != nil {
		n.Label = *patch.Label
	}
	if patch.Value != nil {
		n.Value = *patch.Value
	}
	if patch.Position != nil {
		n.Position = *patch.Position
	}
	if patch.Metadata != nil {
		n.Metadata = normalizeMetadata(patch.Metadata)
	}
	return true
}

// SetMetadataField sets one key of a node's metadata object and writes the
// whole object back through UpdateNode.
func (g *Graph) SetMetadataField(id, key string, value any) bool {
	n, ok := g.Node(id)
	if !ok {
		return false
	}
	fields := map[string]json.RawMessage{}
	if len(n.Metadata) > 0 {
		if err := json.Unmarshal(n.Metadata, &fields); err != nil {
			fields = map[string]json.RawMessage{}
		}
	}
	raw, err := json.Marshal(value)
	if err != nil {
		return false
	}
	fields[key] = raw
	merged, err := json.Marshal(fields)
	if err != nil {
		return false
	}
	return g.UpdateNode(id, NodePatch{Metadata: merged})
}

// MoveNode sets a node's position.
func (g *Graph) MoveNode(id string, pos Point) bool {
	return g.UpdateNode(id, NodePatch{Position: &pos})
}

// Connect adds an edge from an output port to an input port.
// Malformed references, unknown nodes or ports, wrong port kinds, self-loops
// and exact duplicates are ignored and reported as false.
func (g *Graph) Connect(from, to string) (Edge, bool) {
	if !g.canConnect(from, to) {
		return Edge{}, false
	}
	for _, e := range g.edges {
		if e.From == from && e.To == to {
			return Edge{}, false
		}
	}
	e := Edge{ID: g.newID("edge"), From: from, To: to}
	g.edges = append(g.edges, e)
	return e, true
}

func (g *Graph) canConnect(from, to string) bool {
	src, err := ParsePortRef(from)
	if err != nil {
		return false
	}
	dst, err := ParsePortRef(to)
	if err != nil {
		return false
	}
	if src.NodeID == dst.NodeID {
		return false
	}
	return g.portKind(src) == PortOutput && g.portKind(dst) == PortInput
}

// portKind returns the kind of the referenced port, or "" when the node or
// port does not exist.
func (g *Graph) portKind(ref PortRef) PortKind {
	n, ok := g.Node(ref.NodeID)
	if !ok {
		return ""
	}
	p, ok := LookupPort(n.Type, ref.Side)
	if !ok {
		return ""
	}
	return p.Kind
}

// Disconnect removes the edge with the given id.
func (g *Graph) Disconnect(edgeID string) bool {
	if edgeID == "" {
		return false
	}
	for i, e := range g.edges {
		if e.ID == edgeID {
			return g.DisconnectAt(i)
		}
	}
	return false
}

// DisconnectAt removes the edge at index i.
func (g *Graph) DisconnectAt(i int) bool {
	if i < 0 || i >= len(g.edges) {
		return false
	}
	g.edges = append(g.edges[:i], g.edges[i+1:]...)
	return true
}

// Node returns a copy of the node with the given id.
func (g *Graph) Node(id string) (Node, bool) {
	i := g.indexOf(id)
	if i < 0 {
		return Node{}, false
	}
	return cloneNode(g.nodes[i]), true
}

// Nodes returns a copy of all nodes in insertion order.
func (g *Graph) Nodes() []Node {
	out := make([]Node, len(g.nodes))
	for i, n := range g.nodes {
		out[i] = cloneNode(n)
	}
	return out
}

// Edges returns a copy of all edges in insertion order.
func (g *Graph) Edges() []Edge {
	out := make([]Edge, len(g.edges))
	copy(out, g.edges)
	return out
}

// Len returns the number of nodes.
func (g *Graph) Len() int { return len(g.nodes) }

// Snapshot returns a deep copy of the graph.
func (g *Graph) Snapshot() Diagram {
	return Diagram{Nodes: g.Nodes(), Edges: g.Edges()}
}

// Replace swaps both collections for copies of d's. Edges without an id get
// a fresh one, since hit testing and Disconnect address edges by id.
func (g *Graph) Replace(d Diagram) {
	nodes := make([]Node, len(d.Nodes))
	for i, n := range d.Nodes {
		n.Metadata = normalizeMetadata(n.Metadata)
		nodes[i] = n
	}
	edges := make([]Edge, len(d.Edges))
	for i, e := range d.Edges {
		if e.ID == "" {
			e.ID = g.newID("edge")
		}
		edges[i] = e
	}
	g.nodes, g.edges = nodes, edges
}

// Clear removes every node and edge.
func (g *Graph) Clear() {
	g.nodes, g.edges = nil, nil
}

func (g *Graph) indexOf(id string) int {
	for i := range g.nodes {
		if g.nodes[i].ID == id {
			return i
		}
	}
	return -1
}

// normalizeMetadata returns a private copy of raw, with absent or null
// metadata turned into an empty object. Other bytes are kept as given.
func normalizeMetadata(raw json.RawMessage) json.RawMessage {
	if trimmed := bytes.TrimSpace(raw); len(trimmed) == 0 || string(trimmed) == "null" {
		return cloneRaw(emptyMetadata)
	}
	return cloneRaw(raw)
}

func cloneNode(n Node) Node {
	n.Metadata = cloneRaw(n.Metadata)
	return n
}

func cloneRaw(raw json.RawMessage) json.RawMessage {
	if raw == nil {
		return nil
	}
	return json.RawMessage(bytes.Clone(raw))
}
