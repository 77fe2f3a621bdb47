package postgres

import (
	"context"
	"fmt"

	"github.com/meikuraledutech/chainchart"
)

// insertEdges writes edges in order. Port references are stored as-is.
func insertEdges(ctx context.Context, q querier, projectID string, edges []chainchart.Edge) error {
	for i, e := range edges {
		if _, err := q.Exec(ctx,
			`INSERT INTO project_edges (project_id, ordinal, id, from_ref, to_ref) VALUES ($1, $2, $3, $4, $5)`,
			projectID, i, e.ID, e.From, e.To,
		); err != nil {
			return fmt.Errorf("postgres: insert edge %s -> %s: %w", e.From, e.To, err)
		}
	}
	return nil
}

// listEdges returns all edges of a project in insertion order.
// Returns an empty slice (not nil) if none found.
func listEdges(ctx context.Context, q querier, projectID string) ([]chainchart.Edge, error) {
	rows, err := q.Query(ctx,
		`SELECT id, from_ref, to_ref FROM project_edges WHERE project_id = $1 ORDER BY ordinal`, projectID)
	if err != nil {
		return nil, fmt.Errorf("postgres: list edges: %w", err)
	}
	defer rows.Close()

	edges := []chainchart.Edge{}
	for rows.Next() {
		var e chainchart.Edge
		if err := rows.Scan(&e.ID, &e.From, &e.To); err != nil {
			return nil, fmt.Errorf("postgres: scan edge: %w", err)
		}
		edges = append(edges, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("postgres: rows edges: %w", err)
	}
	return edges, nil
}
