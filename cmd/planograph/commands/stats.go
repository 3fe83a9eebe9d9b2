package commands

import (
	"fmt"
	"strings"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"github.com/planograph/planograph/graph"
)

// StatsCmd shows structural analytics for the working graph
var StatsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show structural analytics for the working graph",
	Long: `Compute and display the structural metrics of the working graph:
degree statistics, density, connected clusters, the critical path
(topological order), and bottleneck nodes.`,
	RunE: runStats,
}

var statsDocID string

func init() {
	StatsCmd.Flags().StringVar(&statsDocID, "doc", "", "Document id (default most recent)")
}

func runStats(cmd *cobra.Command, args []string) error {
	store, _, db, err := openWorkspace(statsDocID)
	if err != nil {
		return err
	}
	defer db.Close()

	snap := store.Snapshot()
	m := graph.Analyze(snap)

	pterm.DefaultSection.Printf("Graph: %s (v%d)", snap.Name, snap.Version)

	rows := pterm.TableData{
		{"Metric", "Value"},
		{"Nodes", fmt.Sprintf("%d", m.NodeCount)},
		{"Edges", fmt.Sprintf("%d", m.EdgeCount)},
		{"Density", fmt.Sprintf("%.3f", m.Density)},
		{"Average degree", fmt.Sprintf("%.2f", m.AverageDegree)},
		{"Max degree", fmt.Sprintf("%d", m.MaxDegree)},
		{"Min degree", fmt.Sprintf("%d", m.MinDegree)},
		{"Isolated nodes", fmt.Sprintf("%d", m.IsolatedCount)},
		{"Clusters", fmt.Sprintf("%d", m.ClusterCount)},
	}
	if err := pterm.DefaultTable.WithHasHeader().WithData(rows).Render(); err != nil {
		return err
	}

	if len(m.CriticalPath) > 0 {
		pterm.DefaultSection.Println("Critical path")
		pterm.Println(strings.Join(m.CriticalPath, " -> "))
	} else if m.NodeCount > 0 {
		pterm.Warning.Println("No critical path: the dependency graph is cyclic")
	}

	if len(m.Bottlenecks) > 0 {
		pterm.DefaultSection.Println("Bottlenecks")
		for _, id := range m.Bottlenecks {
			deg := m.Degrees[id]
			pterm.Printf("  %s (in %d, out %d)\n", id, deg.In, deg.Out)
		}
	}
	return nil
}
