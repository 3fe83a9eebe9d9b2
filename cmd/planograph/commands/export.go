package commands

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/planograph/planograph/codec"
)

// ExportCmd exports the working graph in an exchange format
var ExportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export the working graph (json, graphml, dot)",
	Long: `Serialize the working graph to an exchange format.

The json document is canonical and round-trips losslessly. graphml carries
id/label/kind per element and drops other metadata. dot is export-only and
meant for rendering with graphviz.

Examples:
  planograph export --format json -o plan.json
  planograph export --format dot | dot -Tsvg > plan.svg`,
	RunE: runExport,
}

var (
	exportFormat string
	exportOut    string
	exportDocID  string
)

func init() {
	ExportCmd.Flags().StringVar(&exportFormat, "format", "", "Export format: json, graphml, or dot (default from config)")
	ExportCmd.Flags().StringVarP(&exportOut, "out", "o", "", "Output file (default stdout)")
	ExportCmd.Flags().StringVar(&exportDocID, "doc", "", "Document id (default most recent)")
}

func runExport(cmd *cobra.Command, args []string) error {
	store, _, db, err := openWorkspace(exportDocID)
	if err != nil {
		return err
	}
	defer db.Close()

	format := exportFormat
	if format == "" {
		format = viper.GetString("export.format")
	}

	data, err := codec.Export(store.Snapshot(), codec.Format(format))
	if err != nil {
		return err
	}

	if exportOut == "" {
		fmt.Print(string(data))
		return nil
	}
	return os.WriteFile(exportOut, data, 0o644)
}
