//go:build !sqlite_fts5

package index

import (
	"database/sql"
	"fmt"
)

func initFTS(_ *sql.DB) error {
	// FTS5 not compiled in; search uses LIKE over the containers table.
	return nil
}

func ftsClear(_ *sql.Tx) {}

func ftsUpsert(_ *sql.Tx, _, _, _, _ string) error {
	// Body is already stored in the containers table; nothing extra to do.
	return nil
}

// Search performs a LIKE-based substring search (fallback when FTS5 is not
// compiled in). This matches the lenient matching the original search
// tooling offered: id, heading, description, tags, and item text all count.
func (db *DB) Search(query string, limit int) ([]SearchResult, error) {
	if limit <= 0 {
		limit = 20
	}
	like := "%" + query + "%"
	rows, err := db.conn.Query(`
		SELECT id, parent, heading, substr(body, 1, 200)
		FROM containers
		WHERE id LIKE ? OR heading LIKE ? OR body LIKE ? OR tags LIKE ?
		LIMIT ?
	`, like, like, like, like, limit)
	if err != nil {
		return nil, fmt.Errorf("index: search: %w", err)
	}
	defer rows.Close()

	var out []SearchResult
	for rows.Next() {
		var r SearchResult
		if err := rows.Scan(&r.ID, &r.Parent, &r.Heading, &r.Snippet); err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}
