// Package store persists command-usage records.
package store

import (
	"context"
	"time"
)

// UsageRecord is one processed command invocation. Rows are append-only;
// nothing in this system updates or deletes them.
type UsageRecord struct {
	ID        string
	Sender    string
	Command   string
	Args      []string
	GroupID   string
	CreatedAt time.Time
}

// UsageStore appends usage records. Callers treat failures as advisory:
// a failed append never blocks or rolls back command processing.
type UsageStore interface {
	Append(ctx context.Context, rec UsageRecord) error
	Close() error
}
