package graph

import (
	"fmt"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/planograph/planograph/errors"
)

// Operator is a comparison in a filter criterion.
type Operator string

const (
	OpEquals   Operator = "equals"
	OpContains Operator = "contains"
	OpGreater  Operator = "greater"
	OpLess     Operator = "less"
	OpIn       Operator = "in"
	OpNotIn    Operator = "not-in"
)

// FilterTarget selects what a filter applies to.
type FilterTarget string

const (
	TargetNodes FilterTarget = "nodes"
	TargetEdges FilterTarget = "edges"
)

// Criterion is one predicate: a dotted property path, an operator, and a
// comparison value. An equals criterion with a nil value explicitly matches
// the undefined state (property absent).
type Criterion struct {
	Path  string      `json:"path" yaml:"path"`
	Op    Operator    `json:"op" yaml:"op"`
	Value interface{} `json:"value" yaml:"value"`
}

// Filter is a named, activatable predicate set. An item matches only if all
// criteria match.
type Filter struct {
	ID       string       `json:"id" yaml:"id"`
	Name     string       `json:"name" yaml:"name"`
	Target   FilterTarget `json:"target" yaml:"target"`
	Active   bool         `json:"active" yaml:"active"`
	Criteria []Criterion  `json:"criteria" yaml:"criteria"`
}

// Validate checks the filter definition.
func (f Filter) Validate() error {
	if f.ID == "" {
		return errors.Validationf("filter id must not be empty")
	}
	switch f.Target {
	case TargetNodes, TargetEdges:
	default:
		return errors.Validationf("filter %s: unknown target %q", f.ID, f.Target)
	}
	for _, c := range f.Criteria {
		switch c.Op {
		case OpEquals, OpContains, OpGreater, OpLess, OpIn, OpNotIn:
		default:
			return errors.Validationf("filter %s: unknown operator %q", f.ID, c.Op)
		}
		if c.Path == "" {
			return errors.Validationf("filter %s: criterion path must not be empty", f.ID)
		}
	}
	return nil
}

// ParseFilters decodes a list of filter definitions from YAML and
// validates each one. Filters default to active unless the definition
// says otherwise.
func ParseFilters(data []byte) ([]Filter, error) {
	var defs []struct {
		ID     string       `yaml:"id"`
		Name   string       `yaml:"name"`
		Target FilterTarget `yaml:"target"`
		// pointer distinguishes "active: false" from the field being absent
		Active   *bool       `yaml:"active"`
		Criteria []Criterion `yaml:"criteria"`
	}
	if err := yaml.Unmarshal(data, &defs); err != nil {
		return nil, errors.Mark(errors.Wrap(err, "parsing filter definitions"), errors.ErrValidation)
	}
	filters := make([]Filter, 0, len(defs))
	for _, d := range defs {
		f := Filter{
			ID:       d.ID,
			Name:     d.Name,
			Target:   d.Target,
			Active:   d.Active == nil || *d.Active,
			Criteria: d.Criteria,
		}
		if err := f.Validate(); err != nil {
			return nil, err
		}
		filters = append(filters, f)
	}
	return filters, nil
}

// ApplyFilters evaluates the active filters against a snapshot: node
// filters restrict the node set, edge filters restrict the edge set, and
// any edge whose source or target was filtered out is dropped afterwards.
// Inactive filters are skipped. The input document is not modified.
func ApplyFilters(doc Document, filters []Filter) Document {
	out := doc.Clone()

	for _, f := range filters {
		if !f.Active {
			continue
		}
		switch f.Target {
		case TargetNodes:
			kept := out.Nodes[:0]
			for _, n := range out.Nodes {
				if f.matchNode(n) {
					kept = append(kept, n)
				}
			}
			out.Nodes = kept
		case TargetEdges:
			kept := out.Edges[:0]
			for _, e := range out.Edges {
				if f.matchEdge(e) {
					kept = append(kept, e)
				}
			}
			out.Edges = kept
		}
	}

	// Drop edges orphaned by node filtering
	nodes := out.nodeSet()
	keptEdges := out.Edges[:0]
	for _, e := range out.Edges {
		if _, ok := nodes[e.Source]; !ok {
			continue
		}
		if _, ok := nodes[e.Target]; !ok {
			continue
		}
		keptEdges = append(keptEdges, e)
	}
	out.Edges = keptEdges
	return out
}

func (f Filter) matchNode(n Node) bool {
	for _, c := range f.Criteria {
		value, defined := nodeProperty(n, c.Path)
		if !c.match(value, defined) {
			return false
		}
	}
	return true
}

func (f Filter) matchEdge(e Edge) bool {
	for _, c := range f.Criteria {
		value, defined := edgeProperty(e, c.Path)
		if !c.match(value, defined) {
			return false
		}
	}
	return true
}

// MatchNode reports whether the node satisfies every criterion in the list.
// Used by pattern queries, which reuse the filter machinery.
func MatchNode(n Node, criteria []Criterion) bool {
	return Filter{Criteria: criteria}.matchNode(n)
}

// match evaluates one criterion against a resolved property value. An
// undefined property matches nothing, except an equals criterion whose
// value is nil, which checks for exactly that state.
func (c Criterion) match(value interface{}, defined bool) bool {
	if !defined {
		return c.Op == OpEquals && c.Value == nil
	}

	switch c.Op {
	case OpEquals:
		if c.Value == nil {
			return false
		}
		if fv, fok := toFloat(value); fok {
			if cv, cok := toFloat(c.Value); cok {
				return fv == cv
			}
		}
		return coerceString(value) == coerceString(c.Value)
	case OpContains:
		needle := strings.ToLower(coerceString(c.Value))
		return strings.Contains(strings.ToLower(coerceString(value)), needle)
	case OpGreater:
		fv, fok := toFloat(value)
		cv, cok := toFloat(c.Value)
		return fok && cok && fv > cv
	case OpLess:
		fv, fok := toFloat(value)
		cv, cok := toFloat(c.Value)
		return fok && cok && fv < cv
	case OpIn:
		return valueInList(value, c.Value)
	case OpNotIn:
		return !valueInList(value, c.Value)
	default:
		return false
	}
}

func valueInList(value, list interface{}) bool {
	items, ok := list.([]interface{})
	if !ok {
		if strs, sok := list.([]string); sok {
			for _, s := range strs {
				if coerceString(value) == s {
					return true
				}
			}
		}
		return false
	}
	for _, item := range items {
		if coerceString(value) == coerceString(item) {
			return true
		}
	}
	return false
}

// nodeProperty resolves a dotted property path on a node. Unknown paths
// report undefined rather than failing; imported filter definitions often
// reference fields a given node does not carry.
func nodeProperty(n Node, path string) (interface{}, bool) {
	head, rest, _ := strings.Cut(path, ".")
	switch head {
	case "id":
		return n.ID, true
	case "label":
		return n.Label, true
	case "kind", "type":
		return string(n.Kind), true
	case "status":
		if n.Status == "" {
			return nil, false
		}
		return string(n.Status), true
	case "meta", "metadata":
		return metaProperty(n.Meta, rest)
	case "priority":
		return metaProperty(n.Meta, "priority")
	case "progress":
		return metaProperty(n.Meta, "progress")
	case "tags":
		return metaProperty(n.Meta, "tags")
	}
	return nil, false
}

func edgeProperty(e Edge, path string) (interface{}, bool) {
	head, rest, _ := strings.Cut(path, ".")
	switch head {
	case "id":
		return e.ID, true
	case "source":
		return e.Source, true
	case "target":
		return e.Target, true
	case "label":
		return e.Label, true
	case "kind", "type":
		return string(e.Kind), true
	case "weight":
		return e.Weight, true
	case "meta", "metadata":
		return metaProperty(e.Meta, rest)
	}
	return nil, false
}

func metaProperty(m ItemMeta, field string) (interface{}, bool) {
	switch field {
	case "priority":
		if m.Priority == "" {
			return nil, false
		}
		return m.Priority, true
	case "estimated_hours":
		return m.EstimatedHours, true
	case "progress":
		return m.Progress, true
	case "tags":
		if len(m.Tags) == 0 {
			return nil, false
		}
		return strings.Join(m.Tags, ","), true
	}
	return nil, false
}

func coerceString(v interface{}) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	default:
		return fmt.Sprintf("%v", v)
	}
}

func toFloat(v interface{}) (float64, bool) {
	switch t := v.(type) {
	case float64:
		return t, true
	case float32:
		return float64(t), true
	case int:
		return float64(t), true
	case int64:
		return float64(t), true
	case string:
		f, err := strconv.ParseFloat(t, 64)
		return f, err == nil
	}
	return 0, false
}
