package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/meikuraledutech/chainchart"
)

// SaveProject saves a project with all its nodes and edges in one transaction.
// A project without an ID gets an auto-generated UUID; an existing project is
// replaced. CreatedAt survives replacement.
// Returns the project ID.
func (s *PGStore) SaveProject(ctx context.Context, p *chainchart.Project) (string, error) {
	p.Normalize()
	if !p.Status.Valid() {
		return "", fmt.Errorf("postgres: save project: unknown status %q", p.Status)
	}
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	now := time.Now().UTC()

	tx, err := s.db.Begin(ctx)
	if err != nil {
		return "", fmt.Errorf("postgres: begin tx: %w", err)
	}
	defer tx.Rollback(ctx)

	var createdAt time.Time
	err = tx.QueryRow(ctx, `
		INSERT INTO projects (id, name, description, status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $5)
		ON CONFLICT (id) DO UPDATE SET
			name = EXCLUDED.name,
			description = EXCLUDED.description,
			status = EXCLUDED.status,
			updated_at = EXCLUDED.updated_at
		RETURNING created_at`,
		p.ID, p.Name, p.Description, string(p.Status), now,
	).Scan(&createdAt)
	if err != nil {
		return "", fmt.Errorf("postgres: upsert project: %w", err)
	}

	// Replace semantics: the diagram is rewritten as a whole.
	if _, err := tx.Exec(ctx, `DELETE FROM project_edges WHERE project_id = $1`, p.ID); err != nil {
		return "", fmt.Errorf("postgres: delete edges: %w", err)
	}
	if _, err := tx.Exec(ctx, `DELETE FROM project_nodes WHERE project_id = $1`, p.ID); err != nil {
		return "", fmt.Errorf("postgres: delete nodes: %w", err)
	}
	if err := insertNodes(ctx, tx, p.ID, p.Nodes); err != nil {
		return "", err
	}
	if err := insertEdges(ctx, tx, p.ID, p.Edges); err != nil {
		return "", err
	}

	if err := tx.Commit(ctx); err != nil {
		return "", fmt.Errorf("postgres: commit: %w", err)
	}

	p.CreatedAt = createdAt.UTC()
	p.UpdatedAt = now
	return p.ID, nil
}

// GetProject retrieves a project with its nodes and edges.
// Returns nil, nil if not found.
func (s *PGStore) GetProject(ctx context.Context, id string) (*chainchart.Project, error) {
	p := &chainchart.Project{}
	var status string
	err := s.db.QueryRow(ctx,
		`SELECT id, name, description, status, created_at, updated_at FROM projects WHERE id = $1`, id,
	).Scan(&p.ID, &p.Name, &p.Description, &status, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		if isNoRows(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("postgres: get project: %w", err)
	}
	p.Status = chainchart.ProjectStatus(status)
	p.CreatedAt = p.CreatedAt.UTC()
	p.UpdatedAt = p.UpdatedAt.UTC()

	if p.Nodes, err = listNodes(ctx, s.db, id); err != nil {
		return nil, err
	}
	if p.Edges, err = listEdges(ctx, s.db, id); err != nil {
		return nil, err
	}
	return p, nil
}

// ListProjects returns project summaries without nodes or edges, most
// recently updated first. Returns an empty slice (not nil) if none found.
func (s *PGStore) ListProjects(ctx context.Context) ([]chainchart.Project, error) {
	rows, err := s.db.Query(ctx,
		`SELECT id, name, description, status, created_at, updated_at FROM projects ORDER BY updated_at DESC, id`)
	if err != nil {
		return nil, fmt.Errorf("postgres: list projects: %w", err)
	}
	defer rows.Close()

	projects := []chainchart.Project{}
	for rows.Next() {
		var (
			p      chainchart.Project
			status string
		)
		if err := rows.Scan(&p.ID, &p.Name, &p.Description, &status, &p.CreatedAt, &p.UpdatedAt); err != nil {
			return nil, fmt.Errorf("postgres: scan project: %w", err)
		}
		p.Status = chainchart.ProjectStatus(status)
		p.CreatedAt = p.CreatedAt.UTC()
		p.UpdatedAt = p.UpdatedAt.UTC()
		projects = append(projects, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("postgres: rows projects: %w", err)
	}
	return projects, nil
}

// DeleteProject removes a project. Nodes and edges are cascade-deleted by the DB.
// No error if the project doesn't exist.
func (s *PGStore) DeleteProject(ctx context.Context, id string) error {
	if _, err := s.db.Exec(ctx, `DELETE FROM projects WHERE id = $1`, id); err != nil {
		return fmt.Errorf("postgres: delete project: %w", err)
	}
	return nil
}
