// Package codec converts between the in-memory graph model and its
// exchange formats.
//
// Three adapters exist with different fidelity:
//
//   - document: canonical JSON, full fidelity, lossless round trip
//   - graphml: typed-graph markup, id/label/kind per element; metadata not
//     representable in that format is dropped on export (documented, not a
//     bug)
//   - dot: textual graph description with per-element styling; export only
//
// Import applies one of three merge strategies against a live store, and
// never touches the store until the entire parse has succeeded.
package codec

import (
	"github.com/planograph/planograph/errors"
	"github.com/planograph/planograph/graph"
)

// Format selects a serialization adapter.
type Format string

const (
	FormatDocument Format = "json"
	FormatGraphML  Format = "graphml"
	FormatDOT      Format = "dot"
)

// Strategy selects how imported content is applied to the live store.
type Strategy string

const (
	// StrategyReplace discards the current snapshot.
	StrategyReplace Strategy = "replace"
	// StrategyMerge updates existing ids field-by-field and inserts the rest.
	StrategyMerge Strategy = "merge"
	// StrategyAppend inserts everything; the store's idempotent add drops
	// id collisions silently.
	StrategyAppend Strategy = "append"
)

// Export serializes a snapshot in the given format.
func Export(doc graph.Document, format Format) ([]byte, error) {
	switch format {
	case FormatDocument:
		return ExportDocument(doc)
	case FormatGraphML:
		return ExportGraphML(doc)
	case FormatDOT:
		return ExportDOT(doc)
	default:
		return nil, errors.UnsupportedFormatf("export format %q", format)
	}
}

// Import parses data in the given format and applies it to the store using
// the given strategy. Unsupported format/strategy combinations fail before
// any state mutation.
func Import(store *graph.Store, data []byte, format Format, strategy Strategy) error {
	switch strategy {
	case StrategyReplace, StrategyMerge, StrategyAppend:
	default:
		return errors.Validationf("unknown import strategy %q", strategy)
	}

	var doc graph.Document
	var err error
	switch format {
	case FormatDocument:
		doc, err = ParseDocument(data)
	case FormatGraphML:
		return errors.UnsupportedFormatf("graphml import is not implemented yet")
	case FormatDOT:
		return errors.UnsupportedFormatf("dot import is not implemented yet")
	default:
		return errors.UnsupportedFormatf("import format %q", format)
	}
	if err != nil {
		return err
	}

	return apply(store, doc, strategy)
}

// apply commits a fully parsed document to the store.
func apply(store *graph.Store, doc graph.Document, strategy Strategy) error {
	switch strategy {
	case StrategyReplace:
		store.Replace(doc)
		return nil

	case StrategyMerge:
		existing := make(map[string]struct{})
		for _, n := range store.Snapshot().Nodes {
			existing[n.ID] = struct{}{}
		}
		var fresh []graph.Node
		for _, n := range doc.Nodes {
			if _, ok := existing[n.ID]; ok {
				update := graph.NodeUpdate{}
				if n.Label != "" {
					update.Label = &n.Label
				}
				if n.Status != "" {
					update.Status = &n.Status
				}
				if n.Position != nil {
					update.Position = n.Position
				}
				if !n.Payload.Empty() {
					update.Payload = &n.Payload
				}
				if n.Meta.Priority != "" {
					update.Priority = &n.Meta.Priority
				}
				if n.Meta.EstimatedHours != 0 {
					update.EstimatedHours = &n.Meta.EstimatedHours
				}
				if n.Meta.Progress != 0 {
					update.Progress = &n.Meta.Progress
				}
				if len(n.Meta.Tags) > 0 {
					update.Tags = n.Meta.Tags
				}
				if err := store.UpdateNode(n.ID, update); err != nil {
					return err
				}
				continue
			}
			fresh = append(fresh, n)
		}
		if _, err := store.AddNodes(fresh); err != nil {
			return err
		}

		existingEdges := make(map[string]struct{})
		for _, e := range store.Snapshot().Edges {
			existingEdges[e.ID] = struct{}{}
		}
		var freshEdges []graph.Edge
		for _, e := range doc.Edges {
			if _, ok := existingEdges[e.ID]; ok {
				update := graph.EdgeUpdate{}
				if e.Label != "" {
					update.Label = &e.Label
				}
				if e.Weight != 0 {
					update.Weight = &e.Weight
				}
				if err := store.UpdateEdge(e.ID, update); err != nil {
					return err
				}
				continue
			}
			freshEdges = append(freshEdges, e)
		}
		_, err := store.AddEdges(freshEdges)
		return err

	case StrategyAppend:
		if _, err := store.AddNodes(doc.Nodes); err != nil {
			return err
		}
		_, err := store.AddEdges(doc.Edges)
		return err
	}
	return errors.Validationf("unknown import strategy %q", strategy)
}
