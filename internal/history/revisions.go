package history

import (
	"context"
	"fmt"
	"time"

	"github.com/starford/quill/internal/preview"
)

// DefaultListLimit is used when List is called with a non-positive limit.
const DefaultListLimit = 50

// Revision is one recorded state of a post.
type Revision struct {
	ID        int64     `json:"id"`
	Path      string    `json:"path"`
	Checksum  string    `json:"checksum"`
	Slug      string    `json:"slug"`
	Title     string    `json:"title"`
	Bytes     int64     `json:"bytes"`
	CreatedAt time.Time `json:"createdAt"`
}

// Record stores snap unless a revision with the same path and checksum
// already exists.
func (db *DB) Record(ctx context.Context, snap *preview.Snapshot) error {
	created := snap.BuiltAt
	if created.IsZero() {
		created = time.Now()
	}
	_, err := db.conn.ExecContext(ctx, `
		INSERT OR IGNORE INTO revisions (path, checksum, slug, title, bytes, created_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`, snap.Path, snap.Checksum, snap.Message.Slug, snap.Message.Title, snap.Size, created.UTC())
	if err != nil {
		return fmt.Errorf("history: record: %w", err)
	}
	return nil
}

// List returns the most recent revisions of path, newest first.
func (db *DB) List(ctx context.Context, path string, limit int) ([]Revision, error) {
	if limit <= 0 {
		limit = DefaultListLimit
	}
	rows, err := db.conn.QueryContext(ctx, `
		SELECT id, path, checksum, slug, title, bytes, created_at
		FROM revisions
		WHERE path = ?
		ORDER BY id DESC
		LIMIT ?
	`, path, limit)
	if err != nil {
		return nil, fmt.Errorf("history: list: %w", err)
	}
	defer rows.Close()

	out := []Revision{}
	for rows.Next() {
		var r Revision
		if err := rows.Scan(&r.ID, &r.Path, &r.Checksum, &r.Slug, &r.Title, &r.Bytes, &r.CreatedAt); err != nil {
			return nil, fmt.Errorf("history: scan: %w", err)
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

// Count returns the number of revisions recorded for path.
func (db *DB) Count(ctx context.Context, path string) (int, error) {
	var n int
	if err := db.conn.QueryRowContext(ctx, `SELECT count(*) FROM revisions WHERE path = ?`, path).Scan(&n); err != nil {
		return 0, fmt.Errorf("history: count: %w", err)
	}
	return n, nil
}
