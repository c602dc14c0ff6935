// Package datastore exports the joined book view and author statistics to a
// local SQLite database or a remote Datasette instance.
package datastore

import "context"

// Store defines the interface for export destinations
type Store interface {
	// Connect establishes a connection to the data store
	Connect() error

	// CreateTable creates the table if it doesn't exist
	CreateTable(ctx context.Context, table Table) error

	// BatchInsert inserts or replaces records in the specified table
	BatchInsert(ctx context.Context, database string, table Table, records []map[string]any) error

	// Close closes the connection to the data store
	Close() error
}

// Table describes an export table. Rows with the same primary key replace
// each other.
type Table struct {
	Name       string
	Schema     string
	PrimaryKey []string
}

// JoinedBooksTable holds one row per rating joined with its catalog entry.
var JoinedBooksTable = Table{
	Name: "joined_books",
	Schema: `CREATE TABLE IF NOT EXISTS joined_books (
		user_id INTEGER NOT NULL,
		book_index INTEGER NOT NULL,
		name TEXT NOT NULL,
		author TEXT NOT NULL,
		score REAL,
		vote_count INTEGER NOT NULL,
		rating REAL,
		rating_imputed INTEGER NOT NULL,
		PRIMARY KEY (user_id, book_index)
	)`,
	PrimaryKey: []string{"user_id", "book_index"},
}

// AuthorStatsTable holds the per-author aggregates.
var AuthorStatsTable = Table{
	Name: "author_stats",
	Schema: `CREATE TABLE IF NOT EXISTS author_stats (
		author TEXT PRIMARY KEY,
		number_of_books INTEGER NOT NULL,
		total_score REAL NOT NULL
	)`,
	PrimaryKey: []string{"author"},
}
