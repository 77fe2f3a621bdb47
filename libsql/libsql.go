// Package libsql implements chainchart.Store on an embedded libSQL database,
// for single-user installs that do not run PostgreSQL.
package libsql

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	_ "github.com/tursodatabase/go-libsql"

	"github.com/meikuraledutech/chainchart"
)

// Store is a chainchart.Store backed by a libSQL file.
type Store struct {
	db *sql.DB
}

var _ chainchart.Store = (*Store)(nil)

// Open opens the database at path, a file URI such as "file:/tmp/chainchart.db".
func Open(path string) (*Store, error) {
	db, err := sql.Open("libsql", path)
	if err != nil {
		return nil, fmt.Errorf("libsql: open: %w", err)
	}
	db.SetMaxOpenConns(1)

	// Some PRAGMAs return rows, so they go through QueryRow.
	for _, p := range []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout=5000",
		"PRAGMA foreign_keys=ON",
	} {
		var result string
		_ = db.QueryRow(p).Scan(&result)
	}
	return &Store{db: db}, nil
}

// Close closes the database.
func (s *Store) Close() error { return s.db.Close() }

var schemaStatements = []string{
	`CREATE TABLE IF NOT EXISTS projects (
		id          TEXT PRIMARY KEY,
		name        TEXT NOT NULL,
		description TEXT NOT NULL DEFAULT '',
		status      TEXT NOT NULL DEFAULT 'draft',
		created_at  INTEGER NOT NULL,
		updated_at  INTEGER NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS project_nodes (
		project_id TEXT NOT NULL REFERENCES projects(id) ON DELETE CASCADE,
		id         TEXT NOT NULL,
		ordinal    INTEGER NOT NULL,
		type       TEXT NOT NULL,
		label      TEXT NOT NULL DEFAULT '',
		value      TEXT NOT NULL DEFAULT '',
		pos_x      REAL NOT NULL,
		pos_y      REAL NOT NULL,
		metadata   TEXT NOT NULL DEFAULT '{}',
		PRIMARY KEY (project_id, id)
	)`,
	`CREATE TABLE IF NOT EXISTS project_edges (
		project_id TEXT NOT NULL REFERENCES projects(id) ON DELETE CASCADE,
		ordinal    INTEGER NOT NULL,
		id         TEXT NOT NULL DEFAULT '',
		from_ref   TEXT NOT NULL,
		to_ref     TEXT NOT NULL,
		PRIMARY KEY (project_id, ordinal)
	)`,
	`CREATE INDEX IF NOT EXISTS idx_projects_updated_at ON projects(updated_at)`,
}

// CreateSchema creates the project tables if they don't exist.
func (s *Store) CreateSchema(ctx context.Context) error {
	for _, stmt := range schemaStatements {
		if _, err := s.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("libsql: create schema: %w", err)
		}
	}
	return nil
}

// DropSchema drops the project tables.
func (s *Store) DropSchema(ctx context.Context) error {
	for _, table := range []string{"project_edges", "project_nodes", "projects"} {
		if _, err := s.db.ExecContext(ctx, `DROP TABLE IF EXISTS `+table); err != nil {
			return fmt.Errorf("libsql: drop %s: %w", table, err)
		}
	}
	return nil
}

// SaveProject creates or replaces a project in one transaction.
func (s *Store) SaveProject(ctx context.Context, p *chainchart.Project) (string, error) {
	p.Normalize()
	if !p.Status.Valid() {
		return "", fmt.Errorf("libsql: save project: unknown status %q", p.Status)
	}
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	now := time.Now().UTC()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return "", fmt.Errorf("libsql: begin tx: %w", err)
	}
	defer tx.Rollback()

	var created int64
	err = tx.QueryRowContext(ctx, `SELECT created_at FROM projects WHERE id = ?`, p.ID).Scan(&created)
	switch {
	case errors.Is(err, sql.ErrNoRows):
		created = now.UnixNano()
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO projects (id, name, description, status, created_at, updated_at) VALUES (?, ?, ?, ?, ?, ?)`,
			p.ID, p.Name, p.Description, string(p.Status), created, created,
		); err != nil {
			return "", fmt.Errorf("libsql: insert project: %w", err)
		}
	case err != nil:
		return "", fmt.Errorf("libsql: find project: %w", err)
	default:
		if _, err := tx.ExecContext(ctx,
			`UPDATE projects SET name = ?, description = ?, status = ?, updated_at = ? WHERE id = ?`,
			p.Name, p.Description, string(p.Status), now.UnixNano(), p.ID,
		); err != nil {
			return "", fmt.Errorf("libsql: update project: %w", err)
		}
	}

	if _, err := tx.ExecContext(ctx, `DELETE FROM project_edges WHERE project_id = ?`, p.ID); err != nil {
		return "", fmt.Errorf("libsql: delete edges: %w", err)
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM project_nodes WHERE project_id = ?`, p.ID); err != nil {
		return "", fmt.Errorf("libsql: delete nodes: %w", err)
	}
	for i, n := range p.Nodes {
		metadata := string(n.Metadata)
		if metadata == "" {
			metadata = "{}"
		}
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO project_nodes (project_id, id, ordinal, type, label, value, pos_x, pos_y, metadata)
			 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			p.ID, n.ID, i, string(n.Type), n.Label, n.Value, n.Position.X, n.Position.Y, metadata,
		); err != nil {
			return "", fmt.Errorf("libsql: insert node %s: %w", n.ID, err)
		}
	}
	for i, e := range p.Edges {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO project_edges (project_id, ordinal, id, from_ref, to_ref) VALUES (?, ?, ?, ?, ?)`,
			p.ID, i, e.ID, e.From, e.To,
		); err != nil {
			return "", fmt.Errorf("libsql: insert edge %s -> %s: %w", e.From, e.To, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return "", fmt.Errorf("libsql: commit: %w", err)
	}
	p.CreatedAt = time.Unix(0, created).UTC()
	p.UpdatedAt = now
	return p.ID, nil
}

// GetProject returns nil, nil when the project does not exist.
func (s *Store) GetProject(ctx context.Context, id string) (*chainchart.Project, error) {
	p, err := scanProject(s.db.QueryRowContext(ctx,
		`SELECT id, name, description, status, created_at, updated_at FROM projects WHERE id = ?`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("libsql: get project: %w", err)
	}

	if p.Nodes, err = s.listNodes(ctx, id); err != nil {
		return nil, err
	}
	if p.Edges, err = s.listEdges(ctx, id); err != nil {
		return nil, err
	}
	return p, nil
}

// ListProjects returns summaries, most recently updated first.
func (s *Store) ListProjects(ctx context.Context) ([]chainchart.Project, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, name, description, status, created_at, updated_at FROM projects ORDER BY updated_at DESC, id`)
	if err != nil {
		return nil, fmt.Errorf("libsql: list projects: %w", err)
	}
	defer rows.Close()

	projects := []chainchart.Project{}
	for rows.Next() {
		p, err := scanProject(rows)
		if err != nil {
			return nil, fmt.Errorf("libsql: scan project: %w", err)
		}
		projects = append(projects, *p)
	}
	return projects, rows.Err()
}

// DeleteProject is idempotent. Child rows are removed explicitly so the
// result does not depend on the foreign_keys pragma.
func (s *Store) DeleteProject(ctx context.Context, id string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("libsql: begin tx: %w", err)
	}
	defer tx.Rollback()

	for _, stmt := range []string{
		`DELETE FROM project_edges WHERE project_id = ?`,
		`DELETE FROM project_nodes WHERE project_id = ?`,
		`DELETE FROM projects WHERE id = ?`,
	} {
		if _, err := tx.ExecContext(ctx, stmt, id); err != nil {
			return fmt.Errorf("libsql: delete project: %w", err)
		}
	}
	return tx.Commit()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanProject(row rowScanner) (*chainchart.Project, error) {
	var (
		p                chainchart.Project
		status           string
		created, updated int64
	)
	if err := row.Scan(&p.ID, &p.Name, &p.Description, &status, &created, &updated); err != nil {
		return nil, err
	}
	p.Status = chainchart.ProjectStatus(status)
	p.CreatedAt = time.Unix(0, created).UTC()
	p.UpdatedAt = time.Unix(0, updated).UTC()
	return &p, nil
}

func (s *Store) listNodes(ctx context.Context, projectID string) ([]chainchart.Node, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, type, label, value, pos_x, pos_y, metadata FROM project_nodes WHERE project_id = ? ORDER BY ordinal`,
		projectID)
	if err != nil {
		return nil, fmt.Errorf("libsql: list nodes: %w", err)
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
			return nil, fmt.Errorf("libsql: scan node: %w", err)
		}
		n.Type = chainchart.NodeType(typ)
		n.Metadata = []byte(metadata)
		nodes = append(nodes, n)
	}
	return nodes, rows.Err()
}

func (s *Store) listEdges(ctx context.Context, projectID string) ([]chainchart.Edge, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, from_ref, to_ref FROM project_edges WHERE project_id = ? ORDER BY ordinal`, projectID)
	if err != nil {
		return nil, fmt.Errorf("libsql: list edges: %w", err)
	}
	defer rows.Close()

	edges := []chainchart.Edge{}
	for rows.Next() {
		var e chainchart.Edge
		if err := rows.Scan(&e.ID, &e.From, &e.To); err != nil {
			return nil, fmt.Errorf("libsql: scan edge: %w", err)
		}
		edges = append(edges, e)
	}
	return edges, rows.Err()
}
