package patrol

import (
	"context"
	"time"
)

// LogRepository defines the append-only patrol log store. There is
// deliberately no update or delete: recorded events are immutable.
type LogRepository interface {
	Append(ctx context.Context, entry *LogEntry) error

	// ListByUserBetween returns the user's rows with CreatedAt in [from, to),
	// ordered by CreatedAt ascending.
	ListByUserBetween(ctx context.Context, username string, from, to time.Time) ([]*LogEntry, error)

	// ListTimeRecordsBetween returns every TIME-IN and TIME-OUT row with
	// CreatedAt in [from, to) across all users, ordered by CreatedAt ascending.
	// The availability derivation reduces these to one entry per tanod.
	ListTimeRecordsBetween(ctx context.Context, from, to time.Time) ([]*LogEntry, error)

	// ListRecent returns the newest rows first, optionally filtered by user.
	ListRecent(ctx context.Context, username string, limit int) ([]*LogEntry, error)
}

// DutyStatusRepository holds the one-row-per-tanod roster projection.
type DutyStatusRepository interface {
	Upsert(ctx context.Context, status *DutyStatus) error
	GetByUsername(ctx context.Context, username string) (*DutyStatus, error)
	List(ctx context.Context) ([]*DutyStatus, error)
}
