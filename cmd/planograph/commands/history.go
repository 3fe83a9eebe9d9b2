package commands

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"github.com/planograph/planograph/errors"
	"github.com/planograph/planograph/graph"
)

// History lives in the serve session, so these commands talk to a running
// server rather than the workspace database.

// HistoryCmd lists the mutation history of a running session
var HistoryCmd = &cobra.Command{
	Use:   "history",
	Short: "List the mutation history of a running session",
	Long: `List the version history of the graph session held by a running
planograph server. Each entry shows the version string, timestamp, and
the ids the mutation touched.

Examples:
  planograph history
  planograph history --server http://localhost:9000`,
	RunE: runHistory,
}

// RevertCmd reverts a running session to a recorded version
var RevertCmd = &cobra.Command{
	Use:   "revert <version>",
	Short: "Revert a running session to a recorded version",
	Long: `Revert the graph session held by a running planograph server to the
state recorded at the given version (or record id).

Examples:
  planograph revert 0.1.7`,
	Args: cobra.ExactArgs(1),
	RunE: runRevert,
}

var serverURL string

func init() {
	HistoryCmd.Flags().StringVar(&serverURL, "server", "http://localhost:8787", "Base URL of the running server")
	RevertCmd.Flags().StringVar(&serverURL, "server", "http://localhost:8787", "Base URL of the running server")
}

func runHistory(cmd *cobra.Command, args []string) error {
	client := &http.Client{Timeout: 10 * time.Second}
	resp, err := client.Get(serverURL + "/api/history")
	if err != nil {
		return errors.Wrap(err, "is a planograph server running?")
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return decodeServerError(resp)
	}

	var records []struct {
		ID        string          `json:"id"`
		Version   string          `json:"version"`
		Timestamp string          `json:"timestamp"`
		Message   string          `json:"message"`
		Changes   graph.ChangeSet `json:"changes"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&records); err != nil {
		return errors.Wrap(err, "decoding history response")
	}

	if len(records) == 0 {
		pterm.Info.Println("No history recorded in this session")
		return nil
	}

	rows := pterm.TableData{{"Version", "Time", "Message", "Touched"}}
	for _, rec := range records {
		touched := len(rec.Changes.NodesAdded) + len(rec.Changes.NodesModified) +
			len(rec.Changes.NodesRemoved) + len(rec.Changes.EdgesAdded) +
			len(rec.Changes.EdgesModified) + len(rec.Changes.EdgesRemoved)
		rows = append(rows, []string{rec.Version, rec.Timestamp, rec.Message, fmt.Sprintf("%d", touched)})
	}
	return pterm.DefaultTable.WithHasHeader().WithData(rows).Render()
}

func runRevert(cmd *cobra.Command, args []string) error {
	body, err := json.Marshal(map[string]string{"version": args[0]})
	if err != nil {
		return err
	}
	client := &http.Client{Timeout: 10 * time.Second}
	resp, err := client.Post(serverURL+"/api/revert", "application/json", bytes.NewReader(body))
	if err != nil {
		return errors.Wrap(err, "is a planograph server running?")
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return decodeServerError(resp)
	}

	var result struct {
		RevertedTo string `json:"reverted_to"`
		Version    int64  `json:"version"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return errors.Wrap(err, "decoding revert response")
	}
	pterm.Success.Printf("Reverted to %s (counter now %d)\n", result.RevertedTo, result.Version)
	return nil
}

func decodeServerError(resp *http.Response) error {
	data, _ := io.ReadAll(resp.Body)
	var payload struct {
		Error string `json:"error"`
	}
	if json.Unmarshal(data, &payload) == nil && payload.Error != "" {
		return errors.Newf("server: %s", payload.Error)
	}
	return errors.Newf("server returned %s", resp.Status)
}
