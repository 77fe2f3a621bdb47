// Package chainchart models a visual smart-contract diagram: typed nodes on an
// infinite canvas wired by directed port-to-port edges.
package chainchart

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

// NodeType is the closed set of shapes a node can take.
type NodeType string

const (
	NodeState     NodeType = "state"
	NodeCondition NodeType = "condition"
	NodeFunction  NodeType = "function"
	NodeOperation NodeType = "operation"
	NodeModifier  NodeType = "modifier"
	NodeEvent     NodeType = "event"
)

// NodeTypes lists every node type in palette order.
var NodeTypes = []NodeType{NodeState, NodeCondition, NodeFunction, NodeOperation, NodeModifier, NodeEvent}

// Valid reports whether t is one of the known node types.
func (t NodeType) Valid() bool {
	for _, known := range NodeTypes {
		if t == known {
			return true
		}
	}
	return false
}

// ParseNodeType converts a palette token into a NodeType.
func ParseNodeType(s string) (NodeType, error) {
	t := NodeType(strings.TrimSpace(s))
	if !t.Valid() {
		return "", fmt.Errorf("%w: %q", ErrUnknownNodeType, s)
	}
	return t, nil
}

// Point is a 2D coordinate. Node positions are in world space.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Add returns p translated by q.
func (p Point) Add(q Point) Point { return Point{X: p.X + q.X, Y: p.Y + q.Y} }

// Sub returns p - q.
func (p Point) Sub(q Point) Point { return Point{X: p.X - q.X, Y: p.Y - q.Y} }

// Node is a vertex of the diagram.
// Value and Metadata belong to the contract compiler and are never interpreted here.
type Node struct {
	ID       string          `json:"id"`
	Type     NodeType        `json:"type"`
	Label    string          `json:"label"`
	Value    string          `json:"value"`
	Position Point           `json:"position"`
	Metadata json.RawMessage `json:"metadata"`
}

// Edge is a directed connection from an output port to an input port.
// From and To are port references in "<nodeId>:<side>" form.
type Edge struct {
	ID   string `json:"id,omitempty"`
	From string `json:"from"`
	To   string `json:"to"`
}

// Diagram is the serialisable snapshot of a graph.
type Diagram struct {
	Nodes []Node `json:"nodes"`
	Edges []Edge `json:"edges"`
}

// Clone returns a deep copy of d.
func (d Diagram) Clone() Diagram {
	out := Diagram{
		Nodes: make([]Node, len(d.Nodes)),
		Edges: make([]Edge, len(d.Edges)),
	}
	for i, n := range d.Nodes {
		out.Nodes[i] = cloneNode(n)
	}
	copy(out.Edges, d.Edges)
	return out
}

// ProjectStatus is the lifecycle marker of a saved project.
type ProjectStatus string

const (
	StatusDraft    ProjectStatus = "draft"
	StatusActive   ProjectStatus = "active"
	StatusArchived ProjectStatus = "archived"
)

// Valid reports whether s is a known status.
func (s ProjectStatus) Valid() bool {
	return s == StatusDraft || s == StatusActive || s == StatusArchived
}

// DefaultProjectName is used when a project is saved without a name.
const DefaultProjectName = "Untitled"

// Project is a named, persisted diagram.
type Project struct {
	ID          string        `json:"id,omitempty"`
	Name        string        `json:"name"`
	Description string        `json:"description,omitempty"`
	Status      ProjectStatus `json:"status"`
	Nodes       []Node        `json:"nodes"`
	Edges       []Edge        `json:"edges"`
	CreatedAt   time.Time     `json:"created_at"`
	UpdatedAt   time.Time     `json:"updated_at"`
}

// Diagram returns the project's graph content.
func (p *Project) Diagram() Diagram {
	return Diagram{Nodes: p.Nodes, Edges: p.Edges}
}

// Normalize fills defaults for fields a caller left empty.
func (p *Project) Normalize() {
	if strings.TrimSpace(p.Name) == "" {
		p.Name = DefaultProjectName
	}
	if p.Status == "" {
		p.Status = StatusDraft
	}
	if p.Nodes == nil {
		p.Nodes = []Node{}
	}
	if p.Edges == nil {
		p.Edges = []Edge{}
	}
}
