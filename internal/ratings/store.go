// Package ratings persists user ratings of catalog books.
package ratings

import (
	"context"
	"database/sql"
	"fmt"
)

// Ratings CSV column names.
const (
	ColumnUserID    = "userId"
	ColumnBookIndex = "bookIndex"
	ColumnScore     = "score"
)

// Supported storage backends.
const (
	BackendCSV    = "csv"
	BackendSQLite = "sqlite"
)

// Rating is one user's score for one catalog book. Score is invalid when the
// stored value could not be read as a number.
type Rating struct {
	UserID    int
	BookIndex int
	Score     sql.NullFloat64
}

// UpsertResult tells whether an upsert inserted a new rating or replaced an
// existing one.
type UpsertResult struct {
	Created bool
}

// Store is the persistence interface for ratings. At most one rating exists
// per (userID, bookIndex) after an Upsert for that key.
type Store interface {
	// Load returns every readable rating in storage order.
	Load(ctx context.Context) ([]Rating, error)

	// Upsert replaces the score of an existing (userID, bookIndex) rating or
	// appends a new one.
	Upsert(ctx context.Context, userID, bookIndex int, score float64) (UpsertResult, error)

	// Close releases any resources held by the store.
	Close() error
}

// Options selects and configures a ratings backend.
type Options struct {
	Backend string // "csv" (default) or "sqlite"
	Path    string
}

// Open creates the store for the configured backend.
func Open(opts Options) (Store, error) {
	switch opts.Backend {
	case "", BackendCSV:
		return NewCSVStore(opts.Path), nil
	case BackendSQLite:
		return OpenSQLite(opts.Path)
	default:
		return nil, fmt.Errorf("unknown ratings backend %q (expected %q or %q)", opts.Backend, BackendCSV, BackendSQLite)
	}
}
