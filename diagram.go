package chainchart

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
	"sync"
	"time"

	jsonschema "github.com/santhosh-tekuri/jsonschema/v6"
)

// diagramSchemaJSON describes an exported diagram file.
const diagramSchemaJSON = `{
  "$schema": "https://json-schema.org/draft/2020-12/schema",
  "$id": "https://chainchart.dev/schemas/diagram.json",
  "type": "object",
  "required": ["nodes", "edges"],
  "properties": {
    "nodes": {
      "type": "array",
      "items": { "$ref": "#/$defs/node" }
    },
    "edges": {
      "type": "array",
      "items": { "$ref": "#/$defs/edge" }
    }
  },
  "$defs": {
    "node": {
      "type": "object",
      "required": ["id", "type", "position"],
      "properties": {
        "id": { "type": "string", "minLength": 1 },
        "type": {
          "type": "string",
          "enum": ["state", "condition", "function", "operation", "modifier", "event"]
        },
        "label": { "type": "string" },
        "value": { "type": "string" },
        "position": {
          "type": "object",
          "required": ["x", "y"],
          "properties": {
            "x": { "type": "number" },
            "y": { "type": "number" }
          }
        },
        "metadata": { "type": ["object", "null"] }
      }
    },
    "edge": {
      "type": "object",
      "required": ["from", "to"],
      "properties": {
        "id": { "type": "string" },
        "from": { "type": "string", "pattern": "^.+:(top|right|bottom|left)$" },
        "to": { "type": "string", "pattern": "^.+:(top|right|bottom|left)$" }
      }
    }
  }
}`

const diagramSchemaURL = "https://chainchart.dev/schemas/diagram.json"

var (
	diagramSchemaOnce sync.Once
	diagramSchema     *jsonschema.Schema
	diagramSchemaErr  error
)

func compiledDiagramSchema() (*jsonschema.Schema, error) {
	diagramSchemaOnce.Do(func() {
		c := jsonschema.NewCompiler()
		doc, err := jsonschema.UnmarshalJSON(strings.NewReader(diagramSchemaJSON))
		if err != nil {
			diagramSchemaErr = fmt.Errorf("unmarshal diagram schema: %w", err)
			return
		}
		if err := c.AddResource(diagramSchemaURL, doc); err != nil {
			diagramSchemaErr = fmt.Errorf("add diagram schema resource: %w", err)
			return
		}
		diagramSchema, diagramSchemaErr = c.Compile(diagramSchemaURL)
	})
	return diagramSchema, diagramSchemaErr
}

// ParseDiagram decodes and validates a diagram file.
// Every failure wraps ErrInvalidDiagram.
func ParseDiagram(data []byte) (*Diagram, error) {
	sch, err := compiledDiagramSchema()
	if err != nil {
		return nil, err
	}

	inst, err := jsonschema.UnmarshalJSON(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidDiagram, err)
	}
	if err := sch.Validate(inst); err != nil {
		return nil, fmt.Errorf("%w: %s", ErrInvalidDiagram, describeViolations(err))
	}

	var d Diagram
	if err := json.Unmarshal(data, &d); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidDiagram, err)
	}
	if err := ValidateDiagram(d); err != nil {
		return nil, err
	}
	return &d, nil
}

// ValidateDiagram checks the structural rules JSON Schema cannot express:
// unique node ids, and edges joining an existing output port to an existing
// input port of another node without duplicates.
func ValidateDiagram(d Diagram) error {
	types := make(map[string]NodeType, len(d.Nodes))
	for _, n := range d.Nodes {
		if _, dup := types[n.ID]; dup {
			return fmt.Errorf("%w: duplicate node id %q", ErrInvalidDiagram, n.ID)
		}
		if !n.Type.Valid() {
			return fmt.Errorf("%w: node %q has unknown type %q", ErrInvalidDiagram, n.ID, n.Type)
		}
		types[n.ID] = n.Type
	}

	seen := make(map[[2]string]struct{}, len(d.Edges))
	for i, e := range d.Edges {
		if err := checkEndpoint(types, e.From, PortOutput); err != nil {
			return fmt.Errorf("%w: edge %d: %v", ErrInvalidDiagram, i, err)
		}
		if err := checkEndpoint(types, e.To, PortInput); err != nil {
			return fmt.Errorf("%w: edge %d: %v", ErrInvalidDiagram, i, err)
		}
		from, _ := ParsePortRef(e.From)
		to, _ := ParsePortRef(e.To)
		if from.NodeID == to.NodeID {
			return fmt.Errorf("%w: edge %d connects node %q to itself", ErrInvalidDiagram, i, from.NodeID)
		}
		key := [2]string{e.From, e.To}
		if _, dup := seen[key]; dup {
			return fmt.Errorf("%w: duplicate edge %s -> %s", ErrInvalidDiagram, e.From, e.To)
		}
		seen[key] = struct{}{}
	}
	return nil
}

func checkEndpoint(types map[string]NodeType, ref string, want PortKind) error {
	r, err := ParsePortRef(ref)
	if err != nil {
		return err
	}
	t, ok := types[r.NodeID]
	if !ok {
		return fmt.Errorf("unknown node %q", r.NodeID)
	}
	p, ok := LookupPort(t, r.Side)
	if !ok {
		return fmt.Errorf("%s node %q has no %s port", t, r.NodeID, r.Side)
	}
	if p.Kind != want {
		return fmt.Errorf("port %s is an %s, want %s", ref, p.Kind, want)
	}
	return nil
}

// describeViolations flattens a jsonschema validation error into one line.
func describeViolations(err error) string {
	verr, ok := err.(*jsonschema.ValidationError)
	if !ok {
		return err.Error()
	}
	violations := collectViolations(verr)
	if len(violations) == 0 {
		return verr.Error()
	}
	return strings.Join(violations, "; ")
}

func collectViolations(verr *jsonschema.ValidationError) []string {
	if len(verr.Causes) == 0 {
		loc := "/" + strings.Join(verr.InstanceLocation, "/")
		return []string{fmt.Sprintf("%s: %s", loc, verr.Error())}
	}
	var out []string
	for _, cause := range verr.Causes {
		out = append(out, collectViolations(cause)...)
	}
	return out
}

// Import replaces the graph with the diagram in data. A malformed file leaves
// the graph untouched.
func (g *Graph) Import(data []byte) error {
	d, err := ParseDiagram(data)
	if err != nil {
		return err
	}
	g.Replace(*d)
	return nil
}

// Export serialises the graph as indented JSON.
func (g *Graph) Export() ([]byte, error) {
	return MarshalDiagram(g.Snapshot())
}

// MarshalDiagram renders d the way exported files look.
func MarshalDiagram(d Diagram) ([]byte, error) {
	if d.Nodes == nil {
		d.Nodes = []Node{}
	}
	if d.Edges == nil {
		d.Edges = []Edge{}
	}
	return json.MarshalIndent(d, "", "  ")
}

// ExportFileName names a downloaded diagram file.
func ExportFileName(projectName string, now time.Time) string {
	name := strings.TrimSpace(projectName)
	if name == "" {
		name = "chainchart_logic"
	}
	return fmt.Sprintf("%s_%d.json", name, now.UnixMilli())
}
