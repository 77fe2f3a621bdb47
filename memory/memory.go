// Package memory is an in-process chainchart.Store. Nothing survives the
// process; it backs tests and the --driver memory mode of the CLI.
package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/meikuraledutech/chainchart"
)

// Store keeps deep copies of saved projects.
type Store struct {
	mu       sync.RWMutex
	projects map[string]chainchart.Project
	now      func() time.Time
}

var _ chainchart.Store = (*Store)(nil)

// New creates an empty store.
func New() *Store {
	return &Store{
		projects: make(map[string]chainchart.Project),
		now:      func() time.Time { return time.Now().UTC() },
	}
}

// CreateSchema is a no-op.
func (s *Store) CreateSchema(context.Context) error { return nil }

// DropSchema forgets every project.
func (s *Store) DropSchema(context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.projects = make(map[string]chainchart.Project)
	return nil
}

// SaveProject stores a copy of p. A project without an ID gets a UUID.
func (s *Store) SaveProject(ctx context.Context, p *chainchart.Project) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	p.Normalize()
	if !p.Status.Valid() {
		return "", fmt.Errorf("memory: save project: unknown status %q", p.Status)
	}
	if p.ID == "" {
		p.ID = uuid.NewString()
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	p.UpdatedAt = now
	if old, ok := s.projects[p.ID]; ok {
		p.CreatedAt = old.CreatedAt
	} else {
		p.CreatedAt = now
	}
	s.projects[p.ID] = cloneProject(*p)
	return p.ID, nil
}

// GetProject returns nil, nil when the project does not exist.
func (s *Store) GetProject(ctx context.Context, id string) (*chainchart.Project, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	p, ok := s.projects[id]
	if !ok {
		return nil, nil
	}
	out := cloneProject(p)
	return &out, nil
}

// ListProjects returns summaries, most recently updated first.
func (s *Store) ListProjects(ctx context.Context) ([]chainchart.Project, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]chainchart.Project, 0, len(s.projects))
	for _, p := range s.projects {
		p.Nodes, p.Edges = nil, nil
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].UpdatedAt.Equal(out[j].UpdatedAt) {
			return out[i].UpdatedAt.After(out[j].UpdatedAt)
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

// DeleteProject is idempotent.
func (s *Store) DeleteProject(ctx context.Context, id string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.projects, id)
	return nil
}

func cloneProject(p chainchart.Project) chainchart.Project {
	d := p.Diagram().Clone()
	p.Nodes, p.Edges = d.Nodes, d.Edges
	return p
}
