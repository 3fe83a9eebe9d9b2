package codec

import (
	"encoding/xml"

	"github.com/planograph/planograph/errors"
	"github.com/planograph/planograph/graph"
)

// GraphML-style typed-graph markup. The format carries id/label/kind per
// node and id/source/target/label/kind per edge; positions, payloads, and
// item metadata have no representation here and are dropped on export.

type graphmlDoc struct {
	XMLName xml.Name     `xml:"graphml"`
	Keys    []graphmlKey `xml:"key"`
	Graph   graphmlGraph `xml:"graph"`
}

type graphmlKey struct {
	ID   string `xml:"id,attr"`
	For  string `xml:"for,attr"`
	Name string `xml:"attr.name,attr"`
	Type string `xml:"attr.type,attr"`
}

type graphmlGraph struct {
	ID          string        `xml:"id,attr"`
	EdgeDefault string        `xml:"edgedefault,attr"`
	Nodes       []graphmlNode `xml:"node"`
	Edges       []graphmlEdge `xml:"edge"`
}

type graphmlNode struct {
	ID   string        `xml:"id,attr"`
	Data []graphmlData `xml:"data"`
}

type graphmlEdge struct {
	ID     string        `xml:"id,attr"`
	Source string        `xml:"source,attr"`
	Target string        `xml:"target,attr"`
	Data   []graphmlData `xml:"data"`
}

type graphmlData struct {
	Key   string `xml:"key,attr"`
	Value string `xml:",chardata"`
}

// ExportGraphML serializes a snapshot as typed-graph markup.
func ExportGraphML(doc graph.Document) ([]byte, error) {
	out := graphmlDoc{
		Keys: []graphmlKey{
			{ID: "label", For: "all", Name: "label", Type: "string"},
			{ID: "kind", For: "all", Name: "kind", Type: "string"},
		},
		Graph: graphmlGraph{
			ID:          doc.ID,
			EdgeDefault: "directed",
		},
	}

	for _, n := range doc.Nodes {
		out.Graph.Nodes = append(out.Graph.Nodes, graphmlNode{
			ID: n.ID,
			Data: []graphmlData{
				{Key: "label", Value: n.Label},
				{Key: "kind", Value: string(n.Kind)},
			},
		})
	}
	for _, e := range doc.Edges {
		entry := graphmlEdge{
			ID:     e.ID,
			Source: e.Source,
			Target: e.Target,
			Data: []graphmlData{
				{Key: "kind", Value: string(e.Kind)},
			},
		}
		if e.Label != "" {
			entry.Data = append(entry.Data, graphmlData{Key: "label", Value: e.Label})
		}
		out.Graph.Edges = append(out.Graph.Edges, entry)
	}

	data, err := xml.MarshalIndent(out, "", "  ")
	if err != nil {
		return nil, errors.Wrap(err, "encode graphml")
	}
	return append([]byte(xml.Header), data...), nil
}
