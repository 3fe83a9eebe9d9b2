package graph

import (
	"testing"
)

// buildDoc assembles a snapshot directly, bypassing the store, since
// analytics are pure functions of the document.
func buildDoc(nodes []Node, edges []Edge) Document {
	return Document{ID: "doc", Name: "test", Nodes: nodes, Edges: edges}
}

func TestAnalyzeEmpty(t *testing.T) {
	m := Analyze(buildDoc(nil, nil))
	if m.NodeCount != 0 || m.EdgeCount != 0 {
		t.Errorf("Expected zero counts, got %d/%d", m.NodeCount, m.EdgeCount)
	}
	if m.Density != 0 || m.AverageDegree != 0 {
		t.Errorf("Expected zero density/average, got %f/%f", m.Density, m.AverageDegree)
	}
	if m.ClusterCount != 0 {
		t.Errorf("Expected 0 clusters, got %d", m.ClusterCount)
	}
}

func TestDegreeDensityPath(t *testing.T) {
	// 4 nodes, 3 directed edges forming a simple path a->b->c->d
	doc := buildDoc(
		[]Node{node("a", KindTask), node("b", KindTask), node("c", KindTask), node("d", KindTask)},
		[]Edge{
			edge("e1", "a", "b", EdgeDependsOn),
			edge("e2", "b", "c", EdgeDependsOn),
			edge("e3", "c", "d", EdgeDependsOn),
		},
	)
	m := Analyze(doc)

	if m.AverageDegree != 1.5 {
		t.Errorf("AverageDegree = %f, want 1.5", m.AverageDegree)
	}
	if m.Density != 0.5 {
		t.Errorf("Density = %f, want 0.5", m.Density)
	}
	if d := m.Degrees["b"]; d.In != 1 || d.Out != 1 {
		t.Errorf("Degree of b = %+v, want in=1 out=1", d)
	}
	if d := m.Degrees["a"]; d.In != 0 || d.Out != 1 {
		t.Errorf("Degree of a = %+v, want in=0 out=1", d)
	}
	if m.MaxDegree != 2 || m.MinDegree != 1 {
		t.Errorf("Max/Min degree = %d/%d, want 2/1", m.MaxDegree, m.MinDegree)
	}
	if m.IsolatedCount != 0 {
		t.Errorf("IsolatedCount = %d, want 0", m.IsolatedCount)
	}
}

func TestTopologicalOrderStable(t *testing.T) {
	// Two independent roots; insertion order breaks the tie
	doc := buildDoc(
		[]Node{node("r2", KindRequirement), node("r1", KindRequirement), node("t", KindTask)},
		[]Edge{
			edge("e1", "r2", "t", EdgeContains),
			edge("e2", "r1", "t", EdgeContains),
		},
	)
	m := Analyze(doc)

	want := []string{"r2", "r1", "t"}
	if len(m.CriticalPath) != len(want) {
		t.Fatalf("CriticalPath length = %d, want %d", len(m.CriticalPath), len(want))
	}
	for i, id := range want {
		if m.CriticalPath[i] != id {
			t.Errorf("CriticalPath[%d] = %s, want %s", i, m.CriticalPath[i], id)
		}
	}
}

func TestTopologicalOrderMidRunTies(t *testing.T) {
	// b and c reach zero in-degree together when a is dequeued; edge
	// declaration order (a->c first) must not decide between them
	doc := buildDoc(
		[]Node{node("a", KindTask), node("b", KindTask), node("c", KindTask)},
		[]Edge{
			edge("e1", "a", "c", EdgeDependsOn),
			edge("e2", "a", "b", EdgeDependsOn),
		},
	)
	m := Analyze(doc)

	want := []string{"a", "b", "c"}
	if len(m.CriticalPath) != len(want) {
		t.Fatalf("CriticalPath length = %d, want %d", len(m.CriticalPath), len(want))
	}
	for i, id := range want {
		if m.CriticalPath[i] != id {
			t.Errorf("CriticalPath[%d] = %s, want %s", i, m.CriticalPath[i], id)
		}
	}
}

func TestCycleTolerance(t *testing.T) {
	// a->b->c->a: no node ever reaches zero in-degree
	doc := buildDoc(
		[]Node{node("a", KindTask), node("b", KindTask), node("c", KindTask)},
		[]Edge{
			edge("e1", "a", "b", EdgeDependsOn),
			edge("e2", "b", "c", EdgeDependsOn),
			edge("e3", "c", "a", EdgeDependsOn),
		},
	)
	m := Analyze(doc)

	if len(m.CriticalPath) != 0 {
		t.Errorf("CriticalPath = %v, want empty for a pure cycle", m.CriticalPath)
	}
	// Degree table and density still computed normally
	if d := m.Degrees["a"]; d.In != 1 || d.Out != 1 {
		t.Errorf("Degree of a = %+v, want in=1 out=1", d)
	}
	if m.Density != 1.0 {
		t.Errorf("Density = %f, want 1.0 for 3 nodes / 3 edges", m.Density)
	}
}

func TestPartialCycleOmitsCycleMembers(t *testing.T) {
	// root -> a -> b -> a (cycle), root and nothing else resolves
	doc := buildDoc(
		[]Node{node("root", KindRequirement), node("a", KindTask), node("b", KindTask)},
		[]Edge{
			edge("e1", "root", "a", EdgeContains),
			edge("e2", "a", "b", EdgeDependsOn),
			edge("e3", "b", "a", EdgeDependsOn),
		},
	)
	m := Analyze(doc)

	if len(m.CriticalPath) != 1 || m.CriticalPath[0] != "root" {
		t.Errorf("CriticalPath = %v, want [root]", m.CriticalPath)
	}
}

func TestConnectedComponents(t *testing.T) {
	doc := buildDoc(
		[]Node{
			node("a", KindTask), node("b", KindTask),
			node("x", KindTask), node("y", KindTask),
			node("alone", KindTask),
		},
		[]Edge{
			edge("e1", "a", "b", EdgeDependsOn),
			edge("e2", "y", "x", EdgeDependsOn), // direction irrelevant for components
		},
	)
	m := Analyze(doc)

	if m.ClusterCount != 3 {
		t.Fatalf("ClusterCount = %d, want 3", m.ClusterCount)
	}
	sizes := map[int]int{}
	for _, comp := range m.Components {
		sizes[len(comp)]++
	}
	if sizes[2] != 2 || sizes[1] != 1 {
		t.Errorf("Component sizes = %v, want two of size 2 and one of size 1", sizes)
	}
	if m.IsolatedCount != 1 {
		t.Errorf("IsolatedCount = %d, want 1", m.IsolatedCount)
	}
}

func TestBottlenecks(t *testing.T) {
	// hub connects to 4 leaves: degree 4; average = 2*4/5 = 1.6; threshold 3.2
	nodes := []Node{node("hub", KindDeliverable)}
	var edges []Edge
	for _, leaf := range []string{"l1", "l2", "l3", "l4"} {
		nodes = append(nodes, node(leaf, KindTask))
		edges = append(edges, edge("e-"+leaf, "hub", leaf, EdgeContains))
	}
	m := Analyze(buildDoc(nodes, edges))

	if len(m.Bottlenecks) != 1 || m.Bottlenecks[0] != "hub" {
		t.Errorf("Bottlenecks = %v, want [hub]", m.Bottlenecks)
	}
}

func TestDanglingEdgesExcludedFromAnalytics(t *testing.T) {
	doc := buildDoc(
		[]Node{node("a", KindTask), node("b", KindTask)},
		[]Edge{
			edge("e1", "a", "b", EdgeDependsOn),
			edge("e2", "a", "ghost", EdgeDependsOn),
		},
	)
	m := Analyze(doc)

	if m.EdgeCount != 1 {
		t.Errorf("EdgeCount = %d, want 1 (dangling excluded)", m.EdgeCount)
	}
	if d := m.Degrees["a"]; d.Out != 1 {
		t.Errorf("Degree of a counts dangling edge: %+v", d)
	}
}
