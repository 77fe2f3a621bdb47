package libsql

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/meikuraledutech/chainchart"
	"github.com/meikuraledutech/chainchart/internal/storetest"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	dbPath := filepath.Join(t.TempDir(), "test.db")
	s, err := Open("file:" + dbPath)
	require.NoError(t, err)
	require.NoError(t, s.CreateSchema(context.Background()))
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestStore(t *testing.T) {
	storetest.Run(t, func(t *testing.T) chainchart.Store { return newTestStore(t) })
}

func TestStore_Reopen(t *testing.T) {
	ctx := context.Background()
	dbPath := "file:" + filepath.Join(t.TempDir(), "reopen.db")

	s, err := Open(dbPath)
	require.NoError(t, err)
	require.NoError(t, s.CreateSchema(ctx))
	d := storetest.Sample()
	id, err := s.SaveProject(ctx, &chainchart.Project{Name: "kept", Nodes: d.Nodes, Edges: d.Edges})
	require.NoError(t, err)
	require.NoError(t, s.Close())

	s, err = Open(dbPath)
	require.NoError(t, err)
	defer s.Close()

	got, err := s.GetProject(ctx, id)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "kept", got.Name)
	assert.Equal(t, d.Nodes, got.Nodes)
}

func TestStore_DeleteRemovesChildren(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)
	d := storetest.Sample()
	id, err := s.SaveProject(ctx, &chainchart.Project{Nodes: d.Nodes, Edges: d.Edges})
	require.NoError(t, err)

	require.NoError(t, s.DeleteProject(ctx, id))

	var n int
	require.NoError(t, s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM project_nodes`).Scan(&n))
	assert.Zero(t, n)
	require.NoError(t, s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM project_edges`).Scan(&n))
	assert.Zero(t, n)
}
