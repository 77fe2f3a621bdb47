package postgres

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/meikuraledutech/chainchart"
)

// insertNodes writes nodes in order; ordinal keeps the z-order.
func insertNodes(ctx context.Context, q querier, projectID string, nodes []chainchart.Node) error {
	for i, n := range nodes {
		metadata := n.Metadata
		if len(metadata) == 0 {
			metadata = json.RawMessage(`{}`)
		}
		if _, err := q.Exec(ctx,
			`INSERT INTO project_nodes (project_id, id, ordinal, type, label, value, pos_x, pos_y, metadata)
			 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
			projectID, n.ID, i, string(n.Type), n.Label, n.Value, n.Position.X, n.Position.Y, string(metadata),
		); err != nil {
			return fmt.Errorf("postgres: insert node %s: %w", n.ID, err)
		}
	}
	return nil
}

// listNodes returns all nodes of a project in insertion order.
// Returns an empty slice (not nil) if none found.
func listNodes(ctx context.Context, q querier, projectID string) ([]chainchart.Node, error) {
	rows, err := q.Query(ctx,
		`SELECT id, type, label, value, pos_x, pos_y, metadata::text
		 FROM project_nodes WHERE project_id = $1 ORDER BY ordinal`, projectID)
	if err != nil {
		return nil, fmt.Errorf("postgres: list nodes: %w", err)
	}
	defer rows.Close()

	nodes := []chainchart.Node{}
	for rows.Next() {
		var (
			n        chainchart.Node
			typ      string
			metadata string
		)
		if err := rows.Scan(&n.ID, &typ, &n.Label, &n.Value, &n.Position.X, &n.Position.Y, &metadata); err != nil {
			return nil, fmt.Errorf("postgres: scan node: %w", err)
		}
		n.Type = chainchart.NodeType(typ)
		n.Metadata = json.RawMessage(metadata)
		nodes = append(nodes, n)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("postgres: rows nodes: %w", err)
	}
	return nodes, nil
}
