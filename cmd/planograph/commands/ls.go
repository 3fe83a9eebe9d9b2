package commands

import (
	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"github.com/planograph/planograph/logger"
	"github.com/planograph/planograph/persist"
)

// LsCmd lists stored graph documents
var LsCmd = &cobra.Command{
	Use:   "ls",
	Short: "List stored graph documents",
	RunE:  runLs,
}

func runLs(cmd *cobra.Command, args []string) error {
	loadConfig()
	db, err := persist.Open(databasePath(), logger.Logger)
	if err != nil {
		return err
	}
	defer db.Close()

	entries, err := persist.List(db)
	if err != nil {
		return err
	}
	if len(entries) == 0 {
		pterm.Info.Println("No stored documents")
		return nil
	}

	rows := pterm.TableData{{"ID", "Name", "Saved"}}
	for _, e := range entries {
		rows = append(rows, []string{e.ID, e.Name, e.SavedAt.Format("2006-01-02 15:04:05")})
	}
	return pterm.DefaultTable.WithHasHeader().WithData(rows).Render()
}
