package codec

import (
	"encoding/json"

	"github.com/planograph/planograph/errors"
	"github.com/planograph/planograph/graph"
)

// ExportDocument serializes a snapshot as the canonical structured
// document: full node/edge/metadata fidelity, lossless round trip.
func ExportDocument(doc graph.Document) ([]byte, error) {
	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return nil, errors.Wrap(err, "encode document")
	}
	return data, nil
}

// ParseDocument decodes a canonical document and validates the required
// fields. Nothing is applied to any store here; callers parse fully, then
// apply.
func ParseDocument(data []byte) (graph.Document, error) {
	var doc graph.Document
	if err := json.Unmarshal(data, &doc); err != nil {
		return graph.Document{}, errors.Mark(errors.Wrap(err, "parse document"), errors.ErrValidation)
	}

	seen := make(map[string]struct{}, len(doc.Nodes))
	for _, n := range doc.Nodes {
		if n.ID == "" {
			return graph.Document{}, errors.Validationf("document node with empty id")
		}
		if _, dup := seen[n.ID]; dup {
			return graph.Document{}, errors.Validationf("document has duplicate node id %q", n.ID)
		}
		seen[n.ID] = struct{}{}
	}
	for _, e := range doc.Edges {
		if e.ID == "" {
			return graph.Document{}, errors.Validationf("document edge with empty id")
		}
		if e.Source == "" || e.Target == "" {
			return graph.Document{}, errors.Validationf("document edge %q missing endpoint", e.ID)
		}
	}
	return doc, nil
}
