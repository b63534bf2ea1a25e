// Package sqlite backs the usage store with a local SQLite file, used in
// standalone mode when no Postgres DSN is configured.
package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"github.com/mvngu/signalstock/internal/store"
)

const schema = `
CREATE TABLE IF NOT EXISTS usage_records (
	id         TEXT PRIMARY KEY,
	sender     TEXT NOT NULL,
	command    TEXT NOT NULL,
	args       TEXT NOT NULL DEFAULT '[]',
	group_id   TEXT,
	created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
);
CREATE INDEX IF NOT EXISTS idx_usage_records_sender ON usage_records(sender);
`

// UsageStore implements store.UsageStore on SQLite.
type UsageStore struct {
	db *sql.DB
}

// Open opens (creating if needed) the database at path and ensures the schema.
func Open(path string) (*UsageStore, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("create db dir: %w", err)
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("ensure schema: %w", err)
	}
	return &UsageStore{db: db}, nil
}

// Append implements store.UsageStore.
func (s *UsageStore) Append(ctx context.Context, rec store.UsageRecord) error {
	id := rec.ID
	if id == "" {
		id = uuid.Must(uuid.NewV7()).String()
	}
	argsJSON, err := json.Marshal(rec.Args)
	if err != nil {
		return fmt.Errorf("marshal args: %w", err)
	}

	_, err = s.db.ExecContext(ctx,
		`INSERT INTO usage_records (id, sender, command, args, group_id)
		 VALUES (?, ?, ?, ?, ?)`,
		id, rec.Sender, rec.Command, string(argsJSON), nullable(rec.GroupID),
	)
	if err != nil {
		return fmt.Errorf("insert usage record: %w", err)
	}
	return nil
}

// Close closes the database.
func (s *UsageStore) Close() error { return s.db.Close() }

func nullable(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
