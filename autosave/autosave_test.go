package autosave

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/meikuraledutech/chainchart"
	"github.com/meikuraledutech/chainchart/memory"
)

// countingStore counts saves and can be told to fail.
type countingStore struct {
	*memory.Store
	mu    sync.Mutex
	saves int
	fail  error
}

func (c *countingStore) SaveProject(ctx context.Context, p *chainchart.Project) (string, error) {
	c.mu.Lock()
	c.saves++
	fail := c.fail
	c.mu.Unlock()
	if fail != nil {
		return "", fail
	}
	return c.Store.SaveProject(ctx, p)
}

func (c *countingStore) count() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.saves
}

func (c *countingStore) setFail(err error) {
	c.mu.Lock()
	c.fail = err
	c.mu.Unlock()
}

func newStore() *countingStore { return &countingStore{Store: memory.New()} }

func TestSaver_Debounces(t *testing.T) {
	store := newStore()
	s := New(store, chainchart.Project{Name: "demo"}, WithDelay(30*time.Millisecond))

	g := chainchart.NewGraph()
	for i := 0; i < 5; i++ {
		g.AddNode(chainchart.NodeState, chainchart.Point{X: float64(i * 10)})
		s.Schedule(g.Snapshot())
	}
	assert.True(t, s.Pending())

	require.Eventually(t, func() bool { return !s.Pending() && s.ProjectID() != "" }, time.Second, 5*time.Millisecond)
	assert.Equal(t, 1, store.count())

	got, err := store.GetProject(context.Background(), s.ProjectID())
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "demo", got.Name)
	assert.Len(t, got.Nodes, 5)
}

func TestSaver_ReusesProjectID(t *testing.T) {
	store := newStore()
	s := New(store, chainchart.Project{}, WithDelay(time.Hour))
	ctx := context.Background()

	g := chainchart.NewGraph()
	g.AddNode(chainchart.NodeEvent, chainchart.Point{})
	s.Schedule(g.Snapshot())
	require.NoError(t, s.Flush(ctx))
	first := s.ProjectID()
	require.NotEmpty(t, first)

	g.AddNode(chainchart.NodeEvent, chainchart.Point{})
	s.Schedule(g.Snapshot())
	require.NoError(t, s.Flush(ctx))
	assert.Equal(t, first, s.ProjectID())

	list, err := store.ListProjects(ctx)
	require.NoError(t, err)
	assert.Len(t, list, 1)
}

func TestSaver_SnapshotIsCopied(t *testing.T) {
	store := newStore()
	s := New(store, chainchart.Project{}, WithDelay(time.Hour))

	d := chainchart.Diagram{Nodes: []chainchart.Node{{ID: "a", Type: chainchart.NodeState, Label: "before"}}}
	s.Schedule(d)
	d.Nodes[0].Label = "after"

	require.NoError(t, s.Flush(context.Background()))
	got, err := store.GetProject(context.Background(), s.ProjectID())
	require.NoError(t, err)
	assert.Equal(t, "before", got.Nodes[0].Label)
}

func TestSaver_FlushWithoutPending(t *testing.T) {
	store := newStore()
	s := New(store, chainchart.Project{})
	require.NoError(t, s.Flush(context.Background()))
	assert.Zero(t, store.count())
}

func TestSaver_FailureKeepsSnapshot(t *testing.T) {
	store := newStore()
	boom := errors.New("disk full")
	store.setFail(boom)

	var (
		mu      sync.Mutex
		results []error
	)
	s := New(store, chainchart.Project{}, WithDelay(time.Hour), OnSave(func(_ string, err error) {
		mu.Lock()
		results = append(results, err)
		mu.Unlock()
	}))

	s.Schedule(chainchart.Diagram{})
	assert.ErrorIs(t, s.Flush(context.Background()), boom)
	assert.ErrorIs(t, s.Err(), boom)
	assert.True(t, s.Pending())

	store.setFail(nil)
	require.NoError(t, s.Flush(context.Background()))
	assert.NoError(t, s.Err())
	assert.False(t, s.Pending())

	mu.Lock()
	defer mu.Unlock()
	require.Len(t, results, 2)
	assert.ErrorIs(t, results[0], boom)
	assert.NoError(t, results[1])
}

func TestSaver_Close(t *testing.T) {
	store := newStore()
	s := New(store, chainchart.Project{}, WithDelay(time.Hour))

	s.Schedule(chainchart.Diagram{})
	require.NoError(t, s.Close(context.Background()))
	assert.Equal(t, 1, store.count())

	s.Schedule(chainchart.Diagram{})
	assert.False(t, s.Pending(), "closed savers ignore new snapshots")
}
