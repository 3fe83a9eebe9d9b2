package commands

import (
	"database/sql"

	"github.com/spf13/viper"

	"github.com/planograph/planograph/errors"
	"github.com/planograph/planograph/graph"
	"github.com/planograph/planograph/history"
	"github.com/planograph/planograph/logger"
	"github.com/planograph/planograph/persist"
)

// DBPath is the --db persistent flag; empty means config or default.
var DBPath = ""

func init() {
	viper.SetConfigName("planograph")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(".")
	viper.AddConfigPath("$HOME/.config/planograph")
	viper.SetEnvPrefix("PLANOGRAPH")
	viper.AutomaticEnv()

	viper.SetDefault("db", "planograph.db")
	viper.SetDefault("serve.addr", ":8787")
	viper.SetDefault("export.format", "json")
}

// loadConfig reads the optional config file; absence is not an error.
func loadConfig() {
	if err := viper.ReadInConfig(); err == nil {
		logger.Logger.Debugw("Config loaded", "file", viper.ConfigFileUsed())
	}
}

func databasePath() string {
	if DBPath != "" {
		return DBPath
	}
	return viper.GetString("db")
}

// openWorkspace opens the workspace database and builds a store with its
// history manager, loading the named document (or the most recent one)
// when present.
func openWorkspace(docID string) (*graph.Store, *history.Manager, *sql.DB, error) {
	loadConfig()
	db, err := persist.Open(databasePath(), logger.Logger)
	if err != nil {
		return nil, nil, nil, err
	}

	mgr := history.NewManager(logger.Logger)
	store := graph.NewStore("workspace", logger.Logger, graph.WithRecorder(mgr))

	if docID == "" {
		entries, err := persist.List(db)
		if err != nil {
			db.Close()
			return nil, nil, nil, err
		}
		if len(entries) > 0 {
			docID = entries[0].ID
		}
	}
	if docID != "" {
		doc, err := persist.Load(db, docID)
		if err != nil && !errors.IsNotFound(err) {
			db.Close()
			return nil, nil, nil, err
		}
		if err == nil {
			store.Restore(doc)
		}
	}
	return store, mgr, db, nil
}
