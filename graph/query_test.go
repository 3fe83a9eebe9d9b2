package graph

import (
	"testing"

	"github.com/planograph/planograph/errors"
)

func diamondDoc() Document {
	// a -> b -> d, a -> c -> d
	return buildDoc(
		[]Node{node("a", KindTask), node("b", KindTask), node("c", KindTask), node("d", KindTask)},
		[]Edge{
			edge("e1", "a", "b", EdgeDependsOn),
			edge("e2", "a", "c", EdgeDependsOn),
			edge("e3", "b", "d", EdgeDependsOn),
			edge("e4", "c", "d", EdgeDependsOn),
		},
	)
}

func TestFindPath(t *testing.T) {
	doc := diamondDoc()

	path := FindPath(doc, "a", "d")
	// Ties broken by edge discovery order: e1 (a->b) comes first
	want := []string{"a", "b", "d"}
	if len(path) != len(want) {
		t.Fatalf("Path = %v, want %v", path, want)
	}
	for i := range want {
		if path[i] != want[i] {
			t.Errorf("Path[%d] = %s, want %s", i, path[i], want[i])
		}
	}
}

func TestFindPathDirected(t *testing.T) {
	doc := diamondDoc()
	// Only outgoing edges are followed; d has none
	if path := FindPath(doc, "d", "a"); len(path) != 0 {
		t.Errorf("Expected empty path against edge direction, got %v", path)
	}
}

func TestFindPathUnreachable(t *testing.T) {
	doc := buildDoc(
		[]Node{node("a", KindTask), node("b", KindTask)},
		nil,
	)
	if path := FindPath(doc, "a", "b"); len(path) != 0 {
		t.Errorf("Expected empty path, got %v", path)
	}
}

func TestFindPathSelf(t *testing.T) {
	doc := diamondDoc()
	path := FindPath(doc, "a", "a")
	if len(path) != 1 || path[0] != "a" {
		t.Errorf("Path = %v, want [a]", path)
	}
}

func TestFindPathAbsentEndpoint(t *testing.T) {
	doc := diamondDoc()
	if path := FindPath(doc, "ghost", "d"); len(path) != 0 {
		t.Errorf("Expected empty path for absent source, got %v", path)
	}
}

func TestNeighborsBounded(t *testing.T) {
	doc := diamondDoc()

	depth1, err := Neighbors(doc, "a", 1)
	if err != nil {
		t.Fatalf("Neighbors failed: %v", err)
	}
	if len(depth1) != 2 {
		t.Errorf("Depth-1 neighbors of a = %v, want b and c", depth1)
	}

	depth2, err := Neighbors(doc, "a", 2)
	if err != nil {
		t.Fatalf("Neighbors failed: %v", err)
	}
	if len(depth2) != 3 {
		t.Errorf("Depth-2 neighbors of a = %v, want b, c, d", depth2)
	}
	for _, id := range depth2 {
		if id == "a" {
			t.Error("Origin must be excluded from its own neighborhood")
		}
	}
}

func TestNeighborsUndirected(t *testing.T) {
	doc := diamondDoc()
	// d reaches b and c against edge direction
	got, err := Neighbors(doc, "d", 1)
	if err != nil {
		t.Fatalf("Neighbors failed: %v", err)
	}
	if len(got) != 2 {
		t.Errorf("Neighbors of d = %v, want b and c", got)
	}
}

func TestNeighborsDepthZero(t *testing.T) {
	doc := diamondDoc()
	got, err := Neighbors(doc, "a", 0)
	if err != nil {
		t.Fatalf("Neighbors failed: %v", err)
	}
	if len(got) != 0 {
		t.Errorf("Depth 0 must yield empty set, got %v", got)
	}
}

func TestNeighborsNegativeDepth(t *testing.T) {
	doc := diamondDoc()
	_, err := Neighbors(doc, "a", -1)
	if !errors.IsValidation(err) {
		t.Errorf("Expected validation error for negative depth, got %v", err)
	}
}

func TestExtractSubgraph(t *testing.T) {
	doc := diamondDoc()

	sub := ExtractSubgraph(doc, []string{"a", "b", "d"})
	if len(sub.Nodes) != 3 {
		t.Errorf("Subgraph nodes = %d, want 3", len(sub.Nodes))
	}
	// e2 and e4 touch c, which is outside the set
	if len(sub.Edges) != 2 {
		t.Errorf("Subgraph edges = %d, want 2 (e1, e3)", len(sub.Edges))
	}
	for _, e := range sub.Edges {
		if e.Source == "c" || e.Target == "c" {
			t.Errorf("Edge %s escaped the induced subgraph", e.ID)
		}
	}
}

func TestExtractSubgraphUnknownIDs(t *testing.T) {
	doc := diamondDoc()
	sub := ExtractSubgraph(doc, []string{"a", "ghost"})
	if len(sub.Nodes) != 1 {
		t.Errorf("Subgraph nodes = %d, want 1", len(sub.Nodes))
	}
	if len(sub.Edges) != 0 {
		t.Errorf("Subgraph edges = %d, want 0", len(sub.Edges))
	}
}
