package graph

import (
	"github.com/planograph/planograph/errors"
)

// Query operations are pure reads over a snapshot. Results are
// deterministic for a fixed snapshot: traversal follows edge order as it
// appears in the document, and all walks are iterative.

// FindPath returns the shortest node-id sequence from source to target,
// following outgoing edges only. Returns an empty sequence when target is
// unreachable or either endpoint is absent. Ties among equal-length paths
// are broken by edge discovery order.
func FindPath(doc Document, source, target string) []string {
	if source == "" || target == "" {
		return nil
	}
	nodes := doc.nodeSet()
	if _, ok := nodes[source]; !ok {
		return nil
	}
	if _, ok := nodes[target]; !ok {
		return nil
	}
	if source == target {
		return []string{source}
	}

	adj := make(map[string][]string, len(nodes))
	for _, e := range doc.validEdges() {
		adj[e.Source] = append(adj[e.Source], e.Target)
	}

	parent := map[string]string{source: ""}
	queue := []string{source}
	for len(queue) > 0 {
		id := queue[0]
		queue = queue[1:]
		for _, next := range adj[id] {
			if _, seen := parent[next]; seen {
				continue
			}
			parent[next] = id
			if next == target {
				return assemblePath(parent, source, target)
			}
			queue = append(queue, next)
		}
	}
	return nil
}

func assemblePath(parent map[string]string, source, target string) []string {
	var reversed []string
	for id := target; id != ""; id = parent[id] {
		reversed = append(reversed, id)
		if id == source {
			break
		}
	}
	path := make([]string, len(reversed))
	for i, id := range reversed {
		path[len(reversed)-1-i] = id
	}
	return path
}

// Neighbors returns the set of node ids reachable from nodeId within depth
// hops, treating edges as bidirectional, excluding the origin itself.
// A depth of zero yields an empty set; a negative depth is a validation
// error.
func Neighbors(doc Document, nodeID string, depth int) ([]string, error) {
	if nodeID == "" {
		return nil, errors.Validationf("node id must not be empty")
	}
	if depth < 0 {
		return nil, errors.Validationf("depth must not be negative, got %d", depth)
	}
	if depth == 0 {
		return nil, nil
	}
	nodes := doc.nodeSet()
	if _, ok := nodes[nodeID]; !ok {
		return nil, nil
	}

	adj := make(map[string][]string, len(nodes))
	for _, e := range doc.validEdges() {
		adj[e.Source] = append(adj[e.Source], e.Target)
		adj[e.Target] = append(adj[e.Target], e.Source)
	}

	visited := map[string]struct{}{nodeID: {}}
	frontier := []string{nodeID}
	var found []string
	for hop := 0; hop < depth && len(frontier) > 0; hop++ {
		var next []string
		for _, id := range frontier {
			for _, nb := range adj[id] {
				if _, seen := visited[nb]; seen {
					continue
				}
				visited[nb] = struct{}{}
				found = append(found, nb)
				next = append(next, nb)
			}
		}
		frontier = next
	}
	return found, nil
}

// ExtractSubgraph induces the subgraph on the given node-id set: the
// returned document keeps the listed nodes (those that exist) and only the
// edges whose both endpoints are in the set.
func ExtractSubgraph(doc Document, nodeIDs []string) Document {
	wanted := make(map[string]struct{}, len(nodeIDs))
	for _, id := range nodeIDs {
		wanted[id] = struct{}{}
	}

	out := doc.Clone()
	out.Nodes = out.Nodes[:0]
	for _, n := range doc.Nodes {
		if _, ok := wanted[n.ID]; ok {
			out.Nodes = append(out.Nodes, n.clone())
		}
	}
	out.Edges = out.Edges[:0]
	for _, e := range doc.Edges {
		if _, ok := wanted[e.Source]; !ok {
			continue
		}
		if _, ok := wanted[e.Target]; !ok {
			continue
		}
		out.Edges = append(out.Edges, e.clone())
	}
	return out
}
