package graph

import (
	"testing"

	"github.com/planograph/planograph/logger"
)

// testRecorder captures mutation records for assertions.
type testRecorder struct {
	changes   []ChangeSet
	snapshots []Document
}

func (r *testRecorder) Record(change ChangeSet, snapshot Document) {
	r.changes = append(r.changes, change)
	r.snapshots = append(r.snapshots, snapshot)
}

func newTestStore(t *testing.T) (*Store, *testRecorder) {
	t.Helper()
	rec := &testRecorder{}
	store := NewStore("test graph", logger.Logger.Named("test"), WithRecorder(rec))
	return store, rec
}

func node(id string, kind NodeKind) Node {
	return Node{ID: id, Label: id, Kind: kind}
}

func edge(id, source, target string, kind EdgeKind) Edge {
	return Edge{ID: id, Source: source, Target: target, Kind: kind}
}

func TestAddNodesIdempotent(t *testing.T) {
	store, rec := newTestStore(t)

	n := node("task-1", KindTask)
	first, err := store.AddNodes([]Node{n})
	if err != nil {
		t.Fatalf("AddNodes failed: %v", err)
	}
	if len(first) != 1 {
		t.Fatalf("Expected 1 inserted node, got %d", len(first))
	}

	second, err := store.AddNodes([]Node{n})
	if err != nil {
		t.Fatalf("Second AddNodes failed: %v", err)
	}
	if len(second) != 0 {
		t.Errorf("Expected 0 inserted on re-add, got %d", len(second))
	}

	snap := store.Snapshot()
	if len(snap.Nodes) != 1 {
		t.Errorf("Expected exactly 1 node, got %d", len(snap.Nodes))
	}
	// One true insertion means one history record, not two
	if len(rec.changes) != 1 {
		t.Errorf("Expected 1 history record, got %d", len(rec.changes))
	}
}

func TestAddNodesEmptyIDRejected(t *testing.T) {
	store, rec := newTestStore(t)

	_, err := store.AddNodes([]Node{node("ok", KindTask), {ID: ""}})
	if err == nil {
		t.Fatal("Expected validation error for empty id")
	}
	// Whole call rejected, nothing partially applied
	if len(store.Snapshot().Nodes) != 0 {
		t.Errorf("Expected no nodes after rejected call, got %d", len(store.Snapshot().Nodes))
	}
	if len(rec.changes) != 0 {
		t.Errorf("Expected no history records, got %d", len(rec.changes))
	}
}

func TestRemoveNodesCascade(t *testing.T) {
	store, _ := newTestStore(t)

	store.AddNodes([]Node{node("a", KindTask), node("b", KindTask), node("c", KindTask)})
	store.AddEdges([]Edge{
		edge("e1", "a", "b", EdgeDependsOn),
		edge("e2", "b", "c", EdgeDependsOn),
		edge("e3", "a", "c", EdgeReferences),
	})

	if err := store.RemoveNodes([]string{"b"}); err != nil {
		t.Fatalf("RemoveNodes failed: %v", err)
	}

	snap := store.Snapshot()
	if len(snap.Nodes) != 2 {
		t.Errorf("Expected 2 nodes, got %d", len(snap.Nodes))
	}
	for _, e := range snap.Edges {
		if e.Source == "b" || e.Target == "b" {
			t.Errorf("Edge %s still references removed node b", e.ID)
		}
	}
	if len(snap.Edges) != 1 {
		t.Errorf("Expected 1 surviving edge, got %d", len(snap.Edges))
	}
}

func TestRemoveAbsentNodeIsNoOp(t *testing.T) {
	store, rec := newTestStore(t)
	store.AddNodes([]Node{node("a", KindTask)})

	before := store.Version()
	if err := store.RemoveNodes([]string{"ghost"}); err != nil {
		t.Fatalf("RemoveNodes failed: %v", err)
	}
	if store.Version() != before {
		t.Errorf("Version bumped on no-op removal: %d -> %d", before, store.Version())
	}
	if len(rec.changes) != 1 {
		t.Errorf("Expected 1 record (the add), got %d", len(rec.changes))
	}
}

func TestUpdateNodeMergesFields(t *testing.T) {
	store, _ := newTestStore(t)
	store.AddNodes([]Node{{ID: "t1", Label: "write docs", Kind: KindTask, Status: StatusNotStarted}})

	status := StatusInProgress
	progress := 40.0
	if err := store.UpdateNode("t1", NodeUpdate{Status: &status, Progress: &progress}); err != nil {
		t.Fatalf("UpdateNode failed: %v", err)
	}

	n, ok := store.Snapshot().NodeByID("t1")
	if !ok {
		t.Fatal("Node t1 missing after update")
	}
	if n.Status != StatusInProgress {
		t.Errorf("Status = %s, want in-progress", n.Status)
	}
	if n.Meta.Progress != 40.0 {
		t.Errorf("Progress = %f, want 40", n.Meta.Progress)
	}
	// Untouched fields survive the merge
	if n.Label != "write docs" {
		t.Errorf("Label = %q, want unchanged", n.Label)
	}
}

func TestUpdateAbsentNodeSilent(t *testing.T) {
	store, rec := newTestStore(t)
	label := "x"
	if err := store.UpdateNode("ghost", NodeUpdate{Label: &label}); err != nil {
		t.Fatalf("Expected silent no-op, got %v", err)
	}
	if len(rec.changes) != 0 {
		t.Errorf("Expected no history records, got %d", len(rec.changes))
	}
}

func TestSnapshotValueSemantics(t *testing.T) {
	store, _ := newTestStore(t)
	store.AddNodes([]Node{node("a", KindTask)})

	snap := store.Snapshot()
	snap.Nodes[0].Label = "mutated"
	snap.Nodes = append(snap.Nodes, node("injected", KindTask))

	fresh := store.Snapshot()
	if len(fresh.Nodes) != 1 {
		t.Errorf("Snapshot mutation leaked into store: %d nodes", len(fresh.Nodes))
	}
	if fresh.Nodes[0].Label != "a" {
		t.Errorf("Snapshot mutation leaked into node label: %q", fresh.Nodes[0].Label)
	}
}

func TestVersionMonotonicity(t *testing.T) {
	store, rec := newTestStore(t)

	store.AddNodes([]Node{node("a", KindTask)})
	store.AddNodes([]Node{node("b", KindTask)})
	store.AddEdges([]Edge{edge("e1", "a", "b", EdgeDependsOn)})
	status := StatusComplete
	store.UpdateNode("a", NodeUpdate{Status: &status})
	store.RemoveNodes([]string{"b"})

	if store.Version() != 5 {
		t.Errorf("Version = %d, want 5 after 5 mutations", store.Version())
	}
	var last int64
	for i, snap := range rec.snapshots {
		if snap.Version <= last {
			t.Errorf("Record %d: version %d not strictly greater than %d", i, snap.Version, last)
		}
		last = snap.Version
	}
}

func TestDanglingEdgeTolerated(t *testing.T) {
	store, _ := newTestStore(t)
	store.AddNodes([]Node{node("a", KindTask)})

	inserted, err := store.AddEdges([]Edge{edge("e1", "a", "missing", EdgeDependsOn)})
	if err != nil {
		t.Fatalf("Expected dangling edge to be tolerated, got %v", err)
	}
	if len(inserted) != 1 {
		t.Fatalf("Expected 1 inserted edge, got %d", len(inserted))
	}
	// Present in the collections, absent from traversal
	snap := store.Snapshot()
	if len(snap.Edges) != 1 {
		t.Errorf("Expected dangling edge kept in snapshot, got %d edges", len(snap.Edges))
	}
	if len(snap.validEdges()) != 0 {
		t.Errorf("Expected dangling edge excluded from valid set")
	}
}

func TestReset(t *testing.T) {
	store, _ := newTestStore(t)
	store.AddNodes([]Node{node("a", KindTask), node("b", KindTask)})

	store.Reset()
	snap := store.Snapshot()
	if len(snap.Nodes) != 0 || len(snap.Edges) != 0 {
		t.Errorf("Reset left %d nodes, %d edges", len(snap.Nodes), len(snap.Edges))
	}
	if store.Version() != 0 {
		t.Errorf("Version = %d after reset, want 0", store.Version())
	}
}
