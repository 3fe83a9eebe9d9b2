package commands

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/planograph/planograph/codec"
	"github.com/planograph/planograph/logger"
	"github.com/planograph/planograph/persist"
	"github.com/planograph/planograph/server"
)

// ServeCmd starts the rendering server
var ServeCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the rendering server (websocket + JSON API)",
	Long: `Start the graph session server. Rendering backends connect over
/ws and receive data-update snapshots; the JSON API exposes snapshot,
query, history, revert, import, and export endpoints.

With --watch the server re-imports the given document file whenever it
changes on disk, replacing the in-memory graph.

Examples:
  planograph serve
  planograph serve --addr :9000 --watch plan.json`,
	RunE: runServe,
}

var (
	serveAddr  string
	serveWatch string
	serveDocID string
)

func init() {
	ServeCmd.Flags().StringVar(&serveAddr, "addr", "", "Listen address (default from config, :8787)")
	ServeCmd.Flags().StringVar(&serveWatch, "watch", "", "Re-import this document file when it changes")
	ServeCmd.Flags().StringVar(&serveDocID, "doc", "", "Document id to load (default most recent)")
}

func runServe(cmd *cobra.Command, args []string) error {
	store, mgr, db, err := openWorkspace(serveDocID)
	if err != nil {
		return err
	}
	defer db.Close()

	srv := server.New(store, mgr, logger.Logger)

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if serveWatch != "" {
		if err := watchImports(ctx, srv, serveWatch); err != nil {
			return err
		}
	}

	// Drain input events from rendering clients; a richer embedding would
	// route these into selection state.
	go func() {
		for {
			select {
			case <-ctx.Done():
				return
			case event := <-srv.Hub().Events():
				logger.Logger.Debugw("Input event", "type", event.Type, "id", event.ID)
			}
		}
	}()

	addr := serveAddr
	if addr == "" {
		addr = viper.GetString("serve.addr")
	}

	err = srv.ListenAndServe(ctx, addr)

	// Persist the final state of the session
	if saveErr := persist.Save(db, store.Snapshot()); saveErr != nil {
		logger.Logger.Errorw("Failed to save document on shutdown", "error", saveErr)
	}
	return err
}

// watchImports re-imports path on every write event until ctx is done.
func watchImports(ctx context.Context, srv *server.Server, path string) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	if err := watcher.Add(path); err != nil {
		watcher.Close()
		return err
	}
	logger.Logger.Infow("Watching document file", "path", path)

	go func() {
		defer watcher.Close()
		for {
			select {
			case <-ctx.Done():
				return
			case event, ok := <-watcher.Events:
				if !ok {
					return
				}
				if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
					continue
				}
				data, err := os.ReadFile(path)
				if err != nil {
					logger.Logger.Warnw("Failed to read watched file", "path", path, "error", err)
					continue
				}
				version, err := srv.ApplyImport(data, codec.FormatDocument, codec.StrategyReplace)
				if err != nil {
					logger.Logger.Warnw("Watched import failed", "path", path, "error", err)
					continue
				}
				logger.Logger.Infow("Watched document re-imported", "path", path, "version", version)
			case err, ok := <-watcher.Errors:
				if !ok {
					return
				}
				logger.Logger.Warnw("Watcher error", "error", err)
			}
		}
	}()
	return nil
}
