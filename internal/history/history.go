// Package history keeps a SQLite log of the distinct revisions a previewed
// post went through.
package history

import (
	"context"
	"database/sql"
	"fmt"

	_ "github.com/mattn/go-sqlite3"

	"github.com/starford/quill/internal/preview"
)

const schemaSQL = `
CREATE TABLE IF NOT EXISTS revisions (
	id         INTEGER PRIMARY KEY AUTOINCREMENT,
	path       TEXT NOT NULL,
	checksum   TEXT NOT NULL,
	slug       TEXT NOT NULL DEFAULT '',
	title      TEXT NOT NULL DEFAULT '',
	bytes      INTEGER NOT NULL DEFAULT 0,
	created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
	UNIQUE(path, checksum)
);

CREATE INDEX IF NOT EXISTS idx_revisions_path ON revisions(path, id);
`

// Log defines the revision history operations.
// Consumers should depend on this interface rather than the concrete *DB type.
type Log interface {
	preview.Recorder
	List(ctx context.Context, path string, limit int) ([]Revision, error)
	Count(ctx context.Context, path string) (int, error)
	Close() error
}

// Verify *DB satisfies Log at compile time.
var _ Log = (*DB)(nil)

// DB wraps a sql.DB with revision-specific operations.
type DB struct {
	conn *sql.DB
}

// Open opens (or creates) the SQLite database and applies the schema.
func Open(dsn string) (*DB, error) {
	conn, err := sql.Open("sqlite3", dsn+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("history: open db: %w", err)
	}
	if err := conn.Ping(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("history: ping: %w", err)
	}
	if _, err := conn.Exec(schemaSQL); err != nil {
		conn.Close()
		return nil, fmt.Errorf("history: apply schema: %w", err)
	}
	return &DB{conn: conn}, nil
}

// Close closes the underlying database connection.
func (db *DB) Close() error {
	return db.conn.Close()
}
