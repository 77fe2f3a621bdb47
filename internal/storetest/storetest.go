// Package storetest holds the behaviour every chainchart.Store must share.
// Each implementation runs Run from its own tests.
package storetest

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/meikuraledutech/chainchart"
)

// Factory returns a fresh store with its schema created.
type Factory func(t *testing.T) chainchart.Store

// Run executes the shared store suite against stores built by newStore.
func Run(t *testing.T, newStore Factory) {
	t.Run("CreateAndGet", func(t *testing.T) { testCreateAndGet(t, newStore(t)) })
	t.Run("GetMissing", func(t *testing.T) { testGetMissing(t, newStore(t)) })
	t.Run("Defaults", func(t *testing.T) { testDefaults(t, newStore(t)) })
	t.Run("Replace", func(t *testing.T) { testReplace(t, newStore(t)) })
	t.Run("List", func(t *testing.T) { testList(t, newStore(t)) })
	t.Run("Delete", func(t *testing.T) { testDelete(t, newStore(t)) })
	t.Run("InvalidStatus", func(t *testing.T) { testInvalidStatus(t, newStore(t)) })
	t.Run("DropSchema", func(t *testing.T) { testDropSchema(t, newStore(t)) })
}

// Sample returns a small diagram exercising every field that must round-trip.
func Sample() chainchart.Diagram {
	return chainchart.Diagram{
		Nodes: []chainchart.Node{
			{
				ID: "n1", Type: chainchart.NodeState, Label: "balance", Value: "0",
				Position: chainchart.Point{X: 10, Y: 20},
				Metadata: json.RawMessage(`{"varType":"int","z":1,"a":[1,2]}`),
			},
			{
				ID: "n2", Type: chainchart.NodeCondition, Label: "positive?",
				Position: chainchart.Point{X: 200.5, Y: -40},
				Metadata: json.RawMessage(`{}`),
			},
			{
				ID: "ns:x", Type: chainchart.NodeEvent, Label: "Paid",
				Position: chainchart.Point{X: 400, Y: 0},
				Metadata: json.RawMessage(`{"params":["amount"]}`),
			},
		},
		Edges: []chainchart.Edge{
			{ID: "e1", From: "n1:right", To: "n2:left"},
			{ID: "e2", From: "n2:right", To: "ns:x:left"},
		},
	}
}

func testCreateAndGet(t *testing.T, s chainchart.Store) {
	ctx := context.Background()
	d := Sample()
	p := &chainchart.Project{Name: "Token", Description: "demo", Status: chainchart.StatusActive, Nodes: d.Nodes, Edges: d.Edges}

	id, err := s.SaveProject(ctx, p)
	require.NoError(t, err)
	require.NotEmpty(t, id)
	assert.Equal(t, id, p.ID)
	assert.False(t, p.CreatedAt.IsZero())

	got, err := s.GetProject(ctx, id)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "Token", got.Name)
	assert.Equal(t, "demo", got.Description)
	assert.Equal(t, chainchart.StatusActive, got.Status)
	assert.Equal(t, d.Nodes, got.Nodes)
	assert.Equal(t, d.Edges, got.Edges)
	assert.WithinDuration(t, p.CreatedAt, got.CreatedAt, time.Millisecond)
}

func testGetMissing(t *testing.T, s chainchart.Store) {
	got, err := s.GetProject(context.Background(), "nope")
	require.NoError(t, err)
	assert.Nil(t, got)
}

func testDefaults(t *testing.T, s chainchart.Store) {
	ctx := context.Background()
	id, err := s.SaveProject(ctx, &chainchart.Project{})
	require.NoError(t, err)

	got, err := s.GetProject(ctx, id)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, chainchart.DefaultProjectName, got.Name)
	assert.Equal(t, chainchart.StatusDraft, got.Status)
	assert.NotNil(t, got.Nodes)
	assert.Empty(t, got.Nodes)
	assert.NotNil(t, got.Edges)
	assert.Empty(t, got.Edges)
}

func testReplace(t *testing.T, s chainchart.Store) {
	ctx := context.Background()
	d := Sample()
	p := &chainchart.Project{Name: "v1", Nodes: d.Nodes, Edges: d.Edges}
	id, err := s.SaveProject(ctx, p)
	require.NoError(t, err)
	created := p.CreatedAt

	time.Sleep(5 * time.Millisecond)
	p2 := &chainchart.Project{ID: id, Name: "v2", Nodes: d.Nodes[:1], Edges: []chainchart.Edge{}}
	id2, err := s.SaveProject(ctx, p2)
	require.NoError(t, err)
	assert.Equal(t, id, id2)

	got, err := s.GetProject(ctx, id)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "v2", got.Name)
	assert.Len(t, got.Nodes, 1)
	assert.Empty(t, got.Edges)
	assert.WithinDuration(t, created, got.CreatedAt, time.Millisecond)
	assert.True(t, got.UpdatedAt.After(got.CreatedAt))
}

func testList(t *testing.T, s chainchart.Store) {
	ctx := context.Background()
	d := Sample()

	var ids []string
	for _, name := range []string{"first", "second", "third"} {
		id, err := s.SaveProject(ctx, &chainchart.Project{Name: name, Nodes: d.Nodes, Edges: d.Edges})
		require.NoError(t, err)
		ids = append(ids, id)
		time.Sleep(5 * time.Millisecond)
	}

	// Touching the first project moves it to the front.
	_, err := s.SaveProject(ctx, &chainchart.Project{ID: ids[0], Name: "first again"})
	require.NoError(t, err)

	list, err := s.ListProjects(ctx)
	require.NoError(t, err)
	require.Len(t, list, 3)
	assert.Equal(t, []string{ids[0], ids[2], ids[1]}, []string{list[0].ID, list[1].ID, list[2].ID})
	assert.Equal(t, "first again", list[0].Name)
	for _, p := range list {
		assert.Empty(t, p.Nodes)
		assert.Empty(t, p.Edges)
	}
}

func testDelete(t *testing.T, s chainchart.Store) {
	ctx := context.Background()
	d := Sample()
	id, err := s.SaveProject(ctx, &chainchart.Project{Nodes: d.Nodes, Edges: d.Edges})
	require.NoError(t, err)

	require.NoError(t, s.DeleteProject(ctx, id))
	got, err := s.GetProject(ctx, id)
	require.NoError(t, err)
	assert.Nil(t, got)

	require.NoError(t, s.DeleteProject(ctx, id), "delete is idempotent")

	list, err := s.ListProjects(ctx)
	require.NoError(t, err)
	assert.Empty(t, list)
}

func testInvalidStatus(t *testing.T, s chainchart.Store) {
	_, err := s.SaveProject(context.Background(), &chainchart.Project{Status: "deleted"})
	assert.Error(t, err)
}

func testDropSchema(t *testing.T, s chainchart.Store) {
	ctx := context.Background()
	_, err := s.SaveProject(ctx, &chainchart.Project{Name: "gone"})
	require.NoError(t, err)

	require.NoError(t, s.DropSchema(ctx))
	require.NoError(t, s.CreateSchema(ctx))

	list, err := s.ListProjects(ctx)
	require.NoError(t, err)
	assert.Empty(t, list)
}
