package graph

import (
	"github.com/planograph/planograph/errors"
)

// Request is the single tagged query surface: a type selector plus a loose
// parameter bag, typically decoded from JSON sent by a rendering backend or
// the CLI.
type Request struct {
	Type   string                 `json:"type"`
	Params map[string]interface{} `json:"params,omitempty"`
}

// Result wraps the outcome of one request. Exactly one field is populated
// for a given request type.
type Result struct {
	Path      []string  `json:"path,omitempty"`
	Neighbors []string  `json:"neighbors,omitempty"`
	Subgraph  *Document `json:"subgraph,omitempty"`
	Matches   []string  `json:"matches,omitempty"`
	Analytics *Metrics  `json:"analytics,omitempty"`
}

// Execute dispatches a tagged request against a snapshot. Unsupported
// request types fail with a validation error before any computation.
func Execute(doc Document, req Request) (Result, error) {
	switch req.Type {
	case "path":
		source, err := stringParam(req, "source")
		if err != nil {
			return Result{}, err
		}
		target, err := stringParam(req, "target")
		if err != nil {
			return Result{}, err
		}
		return Result{Path: FindPath(doc, source, target)}, nil

	case "neighbors":
		id, err := stringParam(req, "id")
		if err != nil {
			return Result{}, err
		}
		depth, err := intParam(req, "depth")
		if err != nil {
			return Result{}, err
		}
		neighbors, err := Neighbors(doc, id, depth)
		if err != nil {
			return Result{}, err
		}
		return Result{Neighbors: neighbors}, nil

	case "subgraph":
		ids, err := stringListParam(req, "ids")
		if err != nil {
			return Result{}, err
		}
		sub := ExtractSubgraph(doc, ids)
		return Result{Subgraph: &sub}, nil

	case "pattern":
		criteria, err := criteriaParam(req, "criteria")
		if err != nil {
			return Result{}, err
		}
		var matches []string
		for _, n := range doc.Nodes {
			if MatchNode(n, criteria) {
				matches = append(matches, n.ID)
			}
		}
		return Result{Matches: matches}, nil

	case "analytics":
		m := Analyze(doc)
		return Result{Analytics: &m}, nil

	default:
		return Result{}, errors.Validationf("unsupported request type %q", req.Type)
	}
}

func stringParam(req Request, key string) (string, error) {
	v, ok := req.Params[key]
	if !ok {
		return "", errors.Validationf("%s request: missing parameter %q", req.Type, key)
	}
	s, ok := v.(string)
	if !ok || s == "" {
		return "", errors.Validationf("%s request: parameter %q must be a non-empty string", req.Type, key)
	}
	return s, nil
}

func intParam(req Request, key string) (int, error) {
	v, ok := req.Params[key]
	if !ok {
		return 0, errors.Validationf("%s request: missing parameter %q", req.Type, key)
	}
	// JSON decoding yields float64 for all numbers
	f, ok := toFloat(v)
	if !ok || f != float64(int(f)) {
		return 0, errors.Validationf("%s request: parameter %q must be an integer", req.Type, key)
	}
	return int(f), nil
}

func stringListParam(req Request, key string) ([]string, error) {
	v, ok := req.Params[key]
	if !ok {
		return nil, errors.Validationf("%s request: missing parameter %q", req.Type, key)
	}
	switch t := v.(type) {
	case []string:
		return t, nil
	case []interface{}:
		out := make([]string, 0, len(t))
		for _, item := range t {
			s, sok := item.(string)
			if !sok {
				return nil, errors.Validationf("%s request: parameter %q must be a list of strings", req.Type, key)
			}
			out = append(out, s)
		}
		return out, nil
	}
	return nil, errors.Validationf("%s request: parameter %q must be a list of strings", req.Type, key)
}

func criteriaParam(req Request, key string) ([]Criterion, error) {
	v, ok := req.Params[key]
	if !ok {
		return nil, errors.Validationf("%s request: missing parameter %q", req.Type, key)
	}
	switch t := v.(type) {
	case []Criterion:
		return t, nil
	case []interface{}:
		out := make([]Criterion, 0, len(t))
		for _, item := range t {
			obj, ook := item.(map[string]interface{})
			if !ook {
				return nil, errors.Validationf("%s request: criteria entries must be objects", req.Type)
			}
			path, _ := obj["path"].(string)
			op, _ := obj["op"].(string)
			if path == "" || op == "" {
				return nil, errors.Validationf("%s request: criteria entries need path and op", req.Type)
			}
			out = append(out, Criterion{Path: path, Op: Operator(op), Value: obj["value"]})
		}
		return out, nil
	}
	return nil, errors.Validationf("%s request: parameter %q must be a list of criteria", req.Type, key)
}
