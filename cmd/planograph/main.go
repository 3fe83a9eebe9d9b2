package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/planograph/planograph/cmd/planograph/commands"
	"github.com/planograph/planograph/logger"
)

var (
	jsonLogs  bool
	verbosity int
)

var rootCmd = &cobra.Command{
	Use:   "planograph",
	Short: "planograph - project graph modeling and analytics",
	Long: `planograph models a project as a directed graph of requirements,
deliverables, tasks, and dependencies, and lets you explore it: filter,
compute structural analytics, extract paths and neighborhoods, version it
over time, and serialize it to exchange formats.

Available commands:
  import  - Import a graph document into the workspace
  export  - Export the working graph (json, graphml, dot)
  stats   - Show structural analytics for the working graph
  query   - Run a path/neighbors/subgraph/pattern/analytics query
  ls      - List stored graph documents
  history - List the mutation history of a running session
  revert  - Revert a running session to a recorded version
  serve   - Start the rendering server (websocket + JSON API)
  version - Print version and build information

Examples:
  planograph import plan.json --strategy replace
  planograph stats
  planograph query "path req-1 task-9"
  planograph export --format dot -o plan.dot
  planograph serve --addr :8787 --watch plan.json`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if err := logger.Initialize(jsonLogs, verbosity); err != nil {
			return fmt.Errorf("failed to initialize logger: %w", err)
		}
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVar(&jsonLogs, "json-logs", false, "Emit JSON logs instead of console output")
	rootCmd.PersistentFlags().CountVarP(&verbosity, "verbose", "v", "Increase log verbosity (-v, -vv, -vvv)")
	rootCmd.PersistentFlags().StringVar(&commands.DBPath, "db", "", "Workspace database path (default planograph.db, or config)")

	rootCmd.AddCommand(commands.ImportCmd)
	rootCmd.AddCommand(commands.ExportCmd)
	rootCmd.AddCommand(commands.StatsCmd)
	rootCmd.AddCommand(commands.QueryCmd)
	rootCmd.AddCommand(commands.LsCmd)
	rootCmd.AddCommand(commands.HistoryCmd)
	rootCmd.AddCommand(commands.RevertCmd)
	rootCmd.AddCommand(commands.ServeCmd)
	rootCmd.AddCommand(commands.VersionCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
