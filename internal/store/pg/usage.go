// Package pg backs the usage store with Postgres.
package pg

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	_ "github.com/jackc/pgx/v5/stdlib"

	"github.com/mvngu/signalstock/internal/store"
)

// UsageStore implements store.UsageStore on Postgres.
type UsageStore struct {
	db *sql.DB
}

// Open connects to Postgres and verifies the connection.
// Schema is managed by `signalstock migrate`, not here.
func Open(dsn string) (*UsageStore, error) {
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}
	db.SetMaxOpenConns(5)
	db.SetConnMaxIdleTime(5 * time.Minute)
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}
	return &UsageStore{db: db}, nil
}

// Append implements store.UsageStore. The timestamp is assigned by the
// database at write time.
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
		`INSERT INTO usage_records (id, sender, command, args, group_id, created_at)
		 VALUES ($1, $2, $3, $4, $5, now())`,
		id, rec.Sender, rec.Command, argsJSON, nullable(rec.GroupID),
	)
	if err != nil {
		return fmt.Errorf("insert usage record: %w", err)
	}
	return nil
}

// Close releases the connection pool.
func (s *UsageStore) Close() error { return s.db.Close() }

func nullable(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
