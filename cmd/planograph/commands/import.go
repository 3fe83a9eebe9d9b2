package commands

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/planograph/planograph/codec"
	"github.com/planograph/planograph/errors"
	"github.com/planograph/planograph/logger"
	"github.com/planograph/planograph/persist"
)

// ImportCmd imports a graph document into the workspace
var ImportCmd = &cobra.Command{
	Use:   "import <file>",
	Short: "Import a graph document into the workspace",
	Long: `Read a graph document from a file and apply it to the working graph.

Strategies:
  replace - discard the current graph and take the imported one
  merge   - update existing ids field-by-field, insert the rest
  append  - insert everything; id collisions are silently dropped

Examples:
  planograph import plan.json
  planograph import delta.json --strategy merge`,
	Args: cobra.ExactArgs(1),
	RunE: runImport,
}

var importStrategy string

func init() {
	ImportCmd.Flags().StringVar(&importStrategy, "strategy", "replace", "Import strategy: replace, merge, or append")
}

func runImport(cmd *cobra.Command, args []string) error {
	data, err := os.ReadFile(args[0])
	if err != nil {
		return errors.Wrap(err, "read import file")
	}

	store, mgr, db, err := openWorkspace("")
	if err != nil {
		return err
	}
	defer db.Close()

	if err := codec.Import(store, data, codec.FormatDocument, codec.Strategy(importStrategy)); err != nil {
		return err
	}

	snap := store.Snapshot()
	if err := persist.Save(db, snap); err != nil {
		return err
	}

	logger.Logger.Infow("Import complete",
		"file", args[0],
		"strategy", importStrategy,
		"nodes", len(snap.Nodes),
		"edges", len(snap.Edges),
		"mutations", mgr.Len(),
	)
	return nil
}
