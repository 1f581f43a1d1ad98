package index

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/eivindn/inventar/internal/models"
)

const sourceChecksumKey = "source_checksum"

// SearchResult represents one search hit: a container whose id, heading,
// description, tags, or item text matched.
type SearchResult struct {
	ID      string
	Parent  string
	Heading string
	Snippet string
}

// Rebuild replaces the whole cache with the given parse inside a single
// transaction and records the source checksum it was built from.
func (db *DB) Rebuild(doc *models.Document, sourceChecksum string) error {
	tx, err := db.conn.Begin()
	if err != nil {
		return fmt.Errorf("index: begin tx: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // best-effort on failure path

	if _, err := tx.Exec(`DELETE FROM containers`); err != nil {
		return fmt.Errorf("index: clear containers: %w", err)
	}
	ftsClear(tx)

	stmt, err := tx.Prepare(`
		INSERT INTO containers (id, parent, heading, description, tags, item_count, body)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO NOTHING
	`)
	if err != nil {
		return fmt.Errorf("index: prepare insert: %w", err)
	}
	defer stmt.Close()

	for _, c := range doc.Containers {
		tagsJSON, _ := json.Marshal(c.Metadata.Tags)
		body := containerBody(c)
		tags := strings.Join(c.Metadata.Tags, " ")

		if _, err := stmt.Exec(c.ID, c.ParentID(), c.Heading, c.Description,
			string(tagsJSON), len(c.Items), body); err != nil {
			return fmt.Errorf("index: insert container %s: %w", c.ID, err)
		}
		if err := ftsUpsert(tx, c.ID, c.Heading, body, tags); err != nil {
			return err
		}
	}

	if _, err := tx.Exec(`
		INSERT INTO meta (key, value) VALUES (?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value
	`, sourceChecksumKey, sourceChecksum); err != nil {
		return fmt.Errorf("index: record checksum: %w", err)
	}

	return tx.Commit()
}

// SourceChecksum returns the checksum of the source text the cache was
// last rebuilt from, or "" when the cache has never been built.
func (db *DB) SourceChecksum() (string, error) {
	var cs string
	err := db.conn.QueryRow(`SELECT value FROM meta WHERE key = ?`, sourceChecksumKey).Scan(&cs)
	if errors.Is(err, sql.ErrNoRows) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("index: source checksum: %w", err)
	}
	return cs, nil
}

// containerBody flattens the searchable text of one container: its
// description followed by every item's raw text.
func containerBody(c *models.Container) string {
	parts := make([]string, 0, len(c.Items)+1)
	if c.Description != "" {
		parts = append(parts, c.Description)
	}
	for _, it := range c.Items {
		parts = append(parts, it.RawText)
	}
	return strings.Join(parts, "\n")
}
