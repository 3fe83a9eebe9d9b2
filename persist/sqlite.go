// Package persist is the local persistence shim: it stores canonical
// document exports in a SQLite file. The graph core never imports this
// package; the CLI wires it in where a caller wants durability.
package persist

import (
	"database/sql"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"go.uber.org/zap"

	"github.com/planograph/planograph/codec"
	"github.com/planograph/planograph/errors"
	"github.com/planograph/planograph/graph"
)

const schema = `
CREATE TABLE IF NOT EXISTS documents (
	id       TEXT PRIMARY KEY,
	name     TEXT NOT NULL,
	data     TEXT NOT NULL,
	saved_at TIMESTAMP NOT NULL
)`

// Open opens the SQLite file at path and ensures the schema exists.
func Open(path string, logger *zap.SugaredLogger) (*sql.DB, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, errors.Wrap(err, "open database")
	}

	// WAL allows concurrent reads while a save is in flight
	if _, err := db.Exec("PRAGMA journal_mode = WAL"); err != nil {
		db.Close()
		return nil, errors.Wrap(err, "enable WAL mode")
	}
	if _, err := db.Exec("PRAGMA busy_timeout = 5000"); err != nil {
		db.Close()
		return nil, errors.Wrap(err, "set busy timeout")
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, errors.Wrap(err, "create schema")
	}

	if logger != nil {
		logger.Debugw("Persistence database opened", "path", path)
	}
	return db, nil
}

// Save upserts a snapshot under its document id.
func Save(db *sql.DB, doc graph.Document) error {
	data, err := codec.ExportDocument(doc)
	if err != nil {
		return err
	}
	_, err = db.Exec(
		`INSERT INTO documents (id, name, data, saved_at) VALUES (?, ?, ?, ?)
		 ON CONFLICT(id) DO UPDATE SET name = excluded.name, data = excluded.data, saved_at = excluded.saved_at`,
		doc.ID, doc.Name, string(data), time.Now().UTC(),
	)
	return errors.Wrap(err, "save document")
}

// Load reads the snapshot stored under the given document id.
func Load(db *sql.DB, id string) (graph.Document, error) {
	var data string
	err := db.QueryRow(`SELECT data FROM documents WHERE id = ?`, id).Scan(&data)
	if err == sql.ErrNoRows {
		return graph.Document{}, errors.NotFoundf("document %q", id)
	}
	if err != nil {
		return graph.Document{}, errors.Wrap(err, "load document")
	}
	return codec.ParseDocument([]byte(data))
}

// Entry describes one stored document.
type Entry struct {
	ID      string
	Name    string
	SavedAt time.Time
}

// List returns the stored documents, most recent first.
func List(db *sql.DB) ([]Entry, error) {
	rows, err := db.Query(`SELECT id, name, saved_at FROM documents ORDER BY saved_at DESC`)
	if err != nil {
		return nil, errors.Wrap(err, "list documents")
	}
	defer rows.Close()

	var out []Entry
	for rows.Next() {
		var e Entry
		if err := rows.Scan(&e.ID, &e.Name, &e.SavedAt); err != nil {
			return nil, errors.Wrap(err, "scan document row")
		}
		out = append(out, e)
	}
	return out, rows.Err()
}
