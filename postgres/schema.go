package postgres

import "context"

// Node and edge payloads are stored as JSON rather than JSONB so that
// metadata comes back byte for byte.
const schemaSQL = `
CREATE TABLE IF NOT EXISTS projects (
    id          TEXT PRIMARY KEY,
    name        TEXT NOT NULL,
    description TEXT NOT NULL DEFAULT '',
    status      TEXT NOT NULL DEFAULT 'draft',
    created_at  TIMESTAMPTZ NOT NULL DEFAULT NOW(),
    updated_at  TIMESTAMPTZ NOT NULL DEFAULT NOW()
);

CREATE TABLE IF NOT EXISTS project_nodes (
    project_id TEXT NOT NULL REFERENCES projects(id) ON DELETE CASCADE,
    id         TEXT NOT NULL,
    ordinal    INTEGER NOT NULL,
    type       TEXT NOT NULL,
    label      TEXT NOT NULL DEFAULT '',
    value      TEXT NOT NULL DEFAULT '',
    pos_x      DOUBLE PRECISION NOT NULL,
    pos_y      DOUBLE PRECISION NOT NULL,
    metadata   JSON NOT NULL DEFAULT '{}',
    PRIMARY KEY (project_id, id)
);

CREATE TABLE IF NOT EXISTS project_edges (
    project_id TEXT NOT NULL REFERENCES projects(id) ON DELETE CASCADE,
    ordinal    INTEGER NOT NULL,
    id         TEXT NOT NULL DEFAULT '',
    from_ref   TEXT NOT NULL,
    to_ref     TEXT NOT NULL,
    PRIMARY KEY (project_id, ordinal)
);

CREATE INDEX IF NOT EXISTS idx_projects_updated_at ON projects(updated_at DESC);
CREATE INDEX IF NOT EXISTS idx_project_nodes_order ON project_nodes(project_id, ordinal);
`

// CreateSchema creates the projects, project_nodes and project_edges tables if they don't exist.
func (s *PGStore) CreateSchema(ctx context.Context) error {
	_, err := s.db.Exec(ctx, schemaSQL)
	return err
}

// DropSchema drops all project tables.
func (s *PGStore) DropSchema(ctx context.Context) error {
	_, err := s.db.Exec(ctx, `DROP TABLE IF EXISTS project_edges, project_nodes, projects CASCADE;`)
	return err
}
