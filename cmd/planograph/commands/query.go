package commands

import (
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/kballard/go-shellquote"
	"github.com/spf13/cobra"

	"github.com/planograph/planograph/errors"
	"github.com/planograph/planograph/graph"
)

// QueryCmd runs one query against the working graph
var QueryCmd = &cobra.Command{
	Use:   "query <expression>",
	Short: "Run a path/neighbors/subgraph/pattern/analytics query",
	Long: `Run one query against the working graph. The expression is the query
type followed by its arguments; quotes are respected like a shell.

Forms:
  path <source> <target>
  neighbors <node-id> <depth>
  subgraph <id> [id...]
  pattern <path=op=value> [path=op=value...]
  analytics

Examples:
  planograph query "path req-1 task-9"
  planograph query "neighbors task-3 2"
  planograph query "pattern status=equals=complete priority=equals=high"`,
	Args: cobra.MinimumNArgs(1),
	RunE: runQuery,
}

var (
	queryDocID   string
	queryFilters string
)

func init() {
	QueryCmd.Flags().StringVar(&queryDocID, "doc", "", "Document id (default most recent)")
	QueryCmd.Flags().StringVar(&queryFilters, "filters", "", "YAML file of filter definitions applied before the query")
}

func runQuery(cmd *cobra.Command, args []string) error {
	// Respect quoting inside a single expression argument
	parts, err := shellquote.Split(strings.Join(args, " "))
	if err != nil {
		return errors.Validationf("invalid query quoting: %v", err)
	}
	if len(parts) == 0 {
		return errors.Validationf("empty query expression")
	}

	req, err := buildRequest(parts)
	if err != nil {
		return err
	}

	store, _, db, err := openWorkspace(queryDocID)
	if err != nil {
		return err
	}
	defer db.Close()

	snap := store.Snapshot()
	if queryFilters != "" {
		data, err := os.ReadFile(queryFilters)
		if err != nil {
			return errors.Wrap(err, "reading filter file")
		}
		filters, err := graph.ParseFilters(data)
		if err != nil {
			return err
		}
		snap = graph.ApplyFilters(snap, filters)
	}

	result, err := graph.Execute(snap, req)
	if err != nil {
		return err
	}

	out, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		return err
	}
	fmt.Println(string(out))
	return nil
}

// buildRequest translates the positional expression into a tagged request.
func buildRequest(parts []string) (graph.Request, error) {
	kind := parts[0]
	rest := parts[1:]

	switch kind {
	case "path":
		if len(rest) != 2 {
			return graph.Request{}, errors.Validationf("path query needs <source> <target>")
		}
		return graph.Request{Type: "path", Params: map[string]interface{}{
			"source": rest[0], "target": rest[1],
		}}, nil

	case "neighbors":
		if len(rest) != 2 {
			return graph.Request{}, errors.Validationf("neighbors query needs <node-id> <depth>")
		}
		depth, err := strconv.Atoi(rest[1])
		if err != nil {
			return graph.Request{}, errors.Validationf("depth %q is not an integer", rest[1])
		}
		return graph.Request{Type: "neighbors", Params: map[string]interface{}{
			"id": rest[0], "depth": float64(depth),
		}}, nil

	case "subgraph":
		if len(rest) == 0 {
			return graph.Request{}, errors.Validationf("subgraph query needs at least one node id")
		}
		ids := make([]interface{}, len(rest))
		for i, id := range rest {
			ids[i] = id
		}
		return graph.Request{Type: "subgraph", Params: map[string]interface{}{"ids": ids}}, nil

	case "pattern":
		if len(rest) == 0 {
			return graph.Request{}, errors.Validationf("pattern query needs at least one criterion")
		}
		criteria := make([]interface{}, 0, len(rest))
		for _, raw := range rest {
			fields := strings.SplitN(raw, "=", 3)
			if len(fields) != 3 {
				return graph.Request{}, errors.Validationf("criterion %q must be path=op=value", raw)
			}
			criteria = append(criteria, map[string]interface{}{
				"path": fields[0], "op": fields[1], "value": fields[2],
			})
		}
		return graph.Request{Type: "pattern", Params: map[string]interface{}{"criteria": criteria}}, nil

	case "analytics":
		return graph.Request{Type: "analytics"}, nil

	default:
		return graph.Request{}, errors.Validationf("unknown query type %q", kind)
	}
}
