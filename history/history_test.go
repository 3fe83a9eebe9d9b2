package history

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/planograph/planograph/errors"
	"github.com/planograph/planograph/graph"
	"github.com/planograph/planograph/logger"
)

func newStoreWithHistory(t *testing.T) (*graph.Store, *Manager) {
	t.Helper()
	mgr := NewManager(logger.Logger.Named("test"))
	store := graph.NewStore("test graph", logger.Logger.Named("test"), graph.WithRecorder(mgr))
	return store, mgr
}

func addNode(t *testing.T, store *graph.Store, id string) {
	t.Helper()
	_, err := store.AddNodes([]graph.Node{{ID: id, Label: id, Kind: graph.KindTask}})
	require.NoError(t, err)
}

func TestRecordPerMutation(t *testing.T) {
	store, mgr := newStoreWithHistory(t)

	addNode(t, store, "a")
	addNode(t, store, "b")
	require.NoError(t, store.RemoveNodes([]string{"a"}))

	require.Equal(t, 3, mgr.Len())
	recs := mgr.History()
	assert.Equal(t, "0.1.1", recs[0].Version)
	assert.Equal(t, "0.1.2", recs[1].Version)
	assert.Equal(t, "0.1.3", recs[2].Version)
	assert.Equal(t, []string{"a"}, recs[0].Changes.NodesAdded)
	assert.Equal(t, []string{"a"}, recs[2].Changes.NodesRemoved)
	assert.NotEmpty(t, recs[0].ID)
}

func TestVersionsStrictlyIncrease(t *testing.T) {
	store, mgr := newStoreWithHistory(t)

	const mutations = 7
	for i := 0; i < mutations; i++ {
		addNode(t, store, fmt.Sprintf("n%d", i))
	}

	recs := mgr.History()
	require.Len(t, recs, mutations)
	for i := 1; i < len(recs); i++ {
		assert.Greater(t, recs[i].Version, recs[i-1].Version,
			"record %d version must increase", i)
		assert.Greater(t, recs[i].Snapshot.Version, recs[i-1].Snapshot.Version)
	}
}

func TestCapEviction(t *testing.T) {
	mgr := NewManager(logger.Logger.Named("test"), WithCap(5))
	store := graph.NewStore("test", logger.Logger.Named("test"), graph.WithRecorder(mgr))

	for i := 0; i < 12; i++ {
		addNode(t, store, fmt.Sprintf("n%d", i))
	}

	require.Equal(t, 5, mgr.Len())
	recs := mgr.History()
	// Oldest evicted: first retained record is mutation 8 of 12
	assert.Equal(t, "0.1.8", recs[0].Version)
	assert.Equal(t, "0.1.12", recs[4].Version)
}

func TestHistoryLengthMinRule(t *testing.T) {
	store, mgr := newStoreWithHistory(t)
	for i := 0; i < 60; i++ {
		addNode(t, store, fmt.Sprintf("n%d", i))
	}
	// min(N, 50)
	assert.Equal(t, DefaultCap, mgr.Len())
}

func TestNoRecordForNoOpMutation(t *testing.T) {
	store, mgr := newStoreWithHistory(t)
	addNode(t, store, "a")

	// Re-adding the same id inserts nothing and must not record
	_, err := store.AddNodes([]graph.Node{{ID: "a", Kind: graph.KindTask}})
	require.NoError(t, err)
	assert.Equal(t, 1, mgr.Len())
}

func TestRevertRestoresContent(t *testing.T) {
	store, mgr := newStoreWithHistory(t)

	addNode(t, store, "a")
	addNode(t, store, "b")
	target, ok := mgr.Latest()
	require.True(t, ok)

	require.NoError(t, store.RemoveNodes([]string{"a", "b"}))
	require.Empty(t, store.Snapshot().Nodes)

	require.NoError(t, mgr.Revert(store, target.ID))
	snap := store.Snapshot()
	assert.Len(t, snap.Nodes, 2)
	assert.Equal(t, target.Snapshot.Version, snap.Version)
}

func TestRevertRewindsCounter(t *testing.T) {
	store, mgr := newStoreWithHistory(t)
	addNode(t, store, "a")
	addNode(t, store, "b")
	addNode(t, store, "c")

	require.NoError(t, mgr.Revert(store, "0.1.1"))
	require.Equal(t, int64(1), store.Version())

	// Mutations after a revert reissue counter values from the restored
	// point
	addNode(t, store, "d")
	assert.Equal(t, int64(2), store.Version())
}

func TestRevertByVersionString(t *testing.T) {
	store, mgr := newStoreWithHistory(t)
	addNode(t, store, "a")
	addNode(t, store, "b")

	require.NoError(t, mgr.Revert(store, "0.1.1"))
	assert.Len(t, store.Snapshot().Nodes, 1)
}

func TestRevertUnknownVersion(t *testing.T) {
	store, mgr := newStoreWithHistory(t)
	addNode(t, store, "a")

	err := mgr.Revert(store, "9.9.9")
	require.Error(t, err)
	assert.True(t, errors.IsNotFound(err))
	// Store untouched on failed revert
	assert.Len(t, store.Snapshot().Nodes, 1)
}
