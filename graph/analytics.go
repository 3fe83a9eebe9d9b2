package graph

import "sort"

// Analytics over one document snapshot. Everything here is a pure function
// of its input: no call in this file mutates a store, so analytics can run
// freely between mutations.

// Degree is the in/out edge count for one node.
type Degree struct {
	In  int `json:"in"`
	Out int `json:"out"`
}

// Total returns in-degree plus out-degree.
func (d Degree) Total() int { return d.In + d.Out }

// Metrics is the derived structural view of a snapshot.
type Metrics struct {
	NodeCount     int               `json:"node_count"`
	EdgeCount     int               `json:"edge_count"`
	Degrees       map[string]Degree `json:"degrees"`
	Density       float64           `json:"density"`
	AverageDegree float64           `json:"average_degree"`
	MaxDegree     int               `json:"max_degree"`
	MinDegree     int               `json:"min_degree"`
	IsolatedCount int               `json:"isolated_count"`
	Components    [][]string        `json:"components"`
	ClusterCount  int               `json:"cluster_count"`
	CriticalPath  []string          `json:"critical_path"`
	Bottlenecks   []string          `json:"bottlenecks"`
}

// Analyze computes the full metrics family for a snapshot in one pass
// over nodes and valid edges. Edges with missing endpoints are
// excluded throughout. O(N + E) except component discovery, which is
// O(N + E) amortized as well.
func Analyze(doc Document) Metrics {
	edges := doc.validEdges()
	m := Metrics{
		NodeCount: len(doc.Nodes),
		EdgeCount: len(edges),
		Degrees:   make(map[string]Degree, len(doc.Nodes)),
	}

	for _, n := range doc.Nodes {
		m.Degrees[n.ID] = Degree{}
	}
	for _, e := range edges {
		src := m.Degrees[e.Source]
		src.Out++
		m.Degrees[e.Source] = src
		dst := m.Degrees[e.Target]
		dst.In++
		m.Degrees[e.Target] = dst
	}

	n := float64(len(doc.Nodes))
	eCount := float64(len(edges))
	if len(doc.Nodes) > 1 {
		m.Density = 2 * eCount / (n * (n - 1))
	}
	if len(doc.Nodes) > 0 {
		m.AverageDegree = 2 * eCount / n
	}

	first := true
	for _, node := range doc.Nodes {
		total := m.Degrees[node.ID].Total()
		if first || total > m.MaxDegree {
			m.MaxDegree = total
		}
		if first || total < m.MinDegree {
			m.MinDegree = total
		}
		first = false
		if total == 0 {
			m.IsolatedCount++
		}
	}

	m.Components = components(doc.Nodes, edges)
	m.ClusterCount = len(m.Components)
	m.CriticalPath = topologicalOrder(doc.Nodes, edges)
	m.Bottlenecks = bottlenecks(doc.Nodes, m.Degrees, m.AverageDegree)

	return m
}

// components partitions node ids into connected components, treating every
// edge as bidirectional for this purpose only. The traversal is an
// iterative depth-first walk with an explicit stack, so component size is
// bounded by memory rather than goroutine stack depth.
func components(nodes []Node, edges []Edge) [][]string {
	adj := make(map[string][]string, len(nodes))
	for _, e := range edges {
		adj[e.Source] = append(adj[e.Source], e.Target)
		adj[e.Target] = append(adj[e.Target], e.Source)
	}

	visited := make(map[string]struct{}, len(nodes))
	var out [][]string
	for _, n := range nodes {
		if _, seen := visited[n.ID]; seen {
			continue
		}
		var component []string
		stack := []string{n.ID}
		visited[n.ID] = struct{}{}
		for len(stack) > 0 {
			id := stack[len(stack)-1]
			stack = stack[:len(stack)-1]
			component = append(component, id)
			for _, next := range adj[id] {
				if _, seen := visited[next]; seen {
					continue
				}
				visited[next] = struct{}{}
				stack = append(stack, next)
			}
		}
		out = append(out, component)
	}
	return out
}

// topologicalOrder runs Kahn's algorithm over the directed edge set and
// reports the resulting total order as the critical path. Ties among nodes
// that reach zero in-degree together are broken by node insertion order.
// Nodes inside a cycle never reach zero in-degree and are silently omitted,
// so a cyclic graph yields a partial ordering rather than an error.
func topologicalOrder(nodes []Node, edges []Edge) []string {
	inDegree := make(map[string]int, len(nodes))
	insertionIdx := make(map[string]int, len(nodes))
	adj := make(map[string][]string, len(nodes))
	for i, n := range nodes {
		inDegree[n.ID] = 0
		insertionIdx[n.ID] = i
	}
	for _, e := range edges {
		adj[e.Source] = append(adj[e.Source], e.Target)
		inDegree[e.Target]++
	}

	// Seed the queue in insertion order for a stable, deterministic result.
	var queue []string
	for _, n := range nodes {
		if inDegree[n.ID] == 0 {
			queue = append(queue, n.ID)
		}
	}

	order := make([]string, 0, len(nodes))
	for len(queue) > 0 {
		id := queue[0]
		queue = queue[1:]
		order = append(order, id)

		// Nodes freed by the same dequeue tie on readiness; order them by
		// insertion index, not by edge declaration order.
		var freed []string
		for _, next := range adj[id] {
			inDegree[next]--
			if inDegree[next] == 0 {
				freed = append(freed, next)
			}
		}
		sort.Slice(freed, func(i, j int) bool {
			return insertionIdx[freed[i]] < insertionIdx[freed[j]]
		})
		queue = append(queue, freed...)
	}
	return order
}

// bottlenecks returns the ids of nodes whose total degree exceeds twice the
// average degree, in node insertion order.
func bottlenecks(nodes []Node, degrees map[string]Degree, avg float64) []string {
	var out []string
	for _, n := range nodes {
		if float64(degrees[n.ID].Total()) > 2*avg {
			out = append(out, n.ID)
		}
	}
	return out
}
