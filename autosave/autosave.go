// Package autosave writes an editing session's diagram to a Store a short
// while after the last change.
package autosave

import (
	"context"
	"io"
	"log/slog"
	"sync"
	"time"

	"github.com/meikuraledutech/chainchart"
)

// DefaultDelay is the quiet period before a scheduled save runs.
const DefaultDelay = 2 * time.Second

// Saver debounces saves of one project. Schedule is called from the editor's
// event thread with a snapshot; the write happens later on a timer goroutine.
// The Saver never reads the live graph, so the two never race.
type Saver struct {
	store   chainchart.Store
	delay   time.Duration
	timeout time.Duration
	logger  *slog.Logger
	onSave  func(id string, err error)

	mu      sync.Mutex
	project chainchart.Project
	pending *chainchart.Diagram
	timer   *time.Timer
	closed  bool
	lastErr error

	// writeMu keeps a timer save and an explicit Flush from interleaving.
	writeMu sync.Mutex
}

// Option configures a Saver.
type Option func(*Saver)

// WithDelay overrides DefaultDelay.
func WithDelay(d time.Duration) Option {
	return func(s *Saver) { s.delay = d }
}

// WithTimeout bounds each background save.
func WithTimeout(d time.Duration) Option {
	return func(s *Saver) { s.timeout = d }
}

// WithLogger sets the logger for save results.
func WithLogger(l *slog.Logger) Option {
	return func(s *Saver) { s.logger = l }
}

// OnSave registers a callback run after every save attempt.
func OnSave(fn func(id string, err error)) Option {
	return func(s *Saver) { s.onSave = fn }
}

// New creates a Saver for project. Its ID may be empty; the first save
// creates the project and later saves reuse the assigned ID.
func New(store chainchart.Store, project chainchart.Project, opts ...Option) *Saver {
	project.Nodes, project.Edges = nil, nil
	s := &Saver{
		store:   store,
		delay:   DefaultDelay,
		timeout: 30 * time.Second,
		logger:  slog.New(slog.NewTextHandler(io.Discard, nil)),
		project: project,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Schedule records d as the latest state and restarts the quiet period.
// d is copied, so the caller may keep mutating its graph.
func (s *Saver) Schedule(d chainchart.Diagram) {
	snapshot := d.Clone()

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	s.pending = &snapshot
	if s.timer != nil {
		s.timer.Stop()
	}
	s.timer = time.AfterFunc(s.delay, s.fire)
}

// Pending reports whether a scheduled save has not run yet.
func (s *Saver) Pending() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.pending != nil
}

// ProjectID returns the project's ID, empty until the first save.
func (s *Saver) ProjectID() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.project.ID
}

// Err returns the result of the most recent save.
func (s *Saver) Err() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastErr
}

// Flush saves the pending snapshot now, if there is one.
func (s *Saver) Flush(ctx context.Context) error {
	s.mu.Lock()
	if s.timer != nil {
		s.timer.Stop()
		s.timer = nil
	}
	s.mu.Unlock()
	return s.save(ctx)
}

// Close flushes and stops accepting snapshots.
func (s *Saver) Close(ctx context.Context) error {
	s.mu.Lock()
	s.closed = true
	s.mu.Unlock()
	return s.Flush(ctx)
}

func (s *Saver) fire() {
	ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
	defer cancel()
	_ = s.save(ctx)
}

func (s *Saver) save(ctx context.Context) error {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	s.mu.Lock()
	if s.pending == nil {
		s.mu.Unlock()
		return nil
	}
	p := s.project
	p.Nodes, p.Edges = s.pending.Nodes, s.pending.Edges
	s.pending = nil
	s.mu.Unlock()

	id, err := s.store.SaveProject(ctx, &p)

	s.mu.Lock()
	s.lastErr = err
	if err != nil && s.pending == nil {
		// Keep the failed snapshot so the next Flush retries it.
		failed := chainchart.Diagram{Nodes: p.Nodes, Edges: p.Edges}
		s.pending = &failed
	}
	if err == nil {
		s.project.ID = id
		s.project.Name = p.Name
		s.project.Status = p.Status
		s.project.CreatedAt = p.CreatedAt
	}
	s.mu.Unlock()

	if err != nil {
		s.logger.Error("autosave failed", "project", p.ID, "error", err)
	} else {
		s.logger.Debug("autosaved", "project", id, "nodes", len(p.Nodes), "edges", len(p.Edges))
	}
	if s.onSave != nil {
		s.onSave(id, err)
	}
	return err
}
