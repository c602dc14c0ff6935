// Package catalog loads the read-only book catalog.
package catalog

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"strconv"

	"github.com/lepinkainen/bookdash/internal/csvutil"
	apperrors "github.com/lepinkainen/bookdash/internal/errors"
)

// Catalog CSV column names.
const (
	ColumnIndex     = "Index"
	ColumnName      = "Book Name"
	ColumnAuthor    = "Author"
	ColumnScore     = "Score"
	ColumnVoteCount = "Number of Votes"
)

// Entry is one book of the catalog. Score and VoteCount are invalid when the
// source cell could not be read as a number.
type Entry struct {
	Index     int
	Name      string
	Author    string
	Score     sql.NullFloat64
	VoteCount sql.NullInt64
}

// Options configures how the catalog file is read.
type Options struct {
	// SkipInvalid drops malformed rows with a warning instead of failing the load.
	SkipInvalid bool
}

// Store reads the catalog from a CSV file. It has no write operations; the
// catalog is maintained outside of this program.
type Store struct {
	path string
	opts Options
}

// NewStore creates a catalog store for the CSV file at path.
func NewStore(path string, opts Options) *Store {
	return &Store{path: path, opts: opts}
}

// Path returns the backing file of the store.
func (s *Store) Path() string {
	return s.path
}

// Load reads every entry of the catalog in file order.
// A missing file is a NotFoundError and a malformed row is a ParseError
// (unless SkipInvalid is set, in which case the row is dropped).
func (s *Store) Load(ctx context.Context) ([]Entry, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	source := "catalog"
	seen := make(map[int]int)
	parser := func(record csvutil.Record) (Entry, error) {
		entry, err := ParseRecord(source, record)
		if err != nil {
			return Entry{}, err
		}
		if firstLine, dup := seen[entry.Index]; dup {
			return Entry{}, apperrors.NewParseError(source, record.Line, ColumnIndex, strconv.Itoa(entry.Index),
				fmt.Sprintf("duplicate index, first defined on line %d", firstLine))
		}
		seen[entry.Index] = record.Line
		return entry, nil
	}

	entries, err := csvutil.ProcessCSV(s.path, parser, csvutil.ProcessorOptions{
		Source:          source,
		RequiredColumns: []string{ColumnIndex, ColumnName, ColumnAuthor, ColumnScore, ColumnVoteCount},
		SkipInvalid:     s.opts.SkipInvalid,
		LazyQuotes:      true,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to load catalog %s: %w", s.path, err)
	}

	slog.Debug("Catalog loaded", "path", s.path, "entries", len(entries))
	return entries, nil
}

// ParseRecord converts a catalog row. Index, Book Name and Author are required;
// Score and Number of Votes are coerced and left invalid when not numeric.
func ParseRecord(source string, record csvutil.Record) (Entry, error) {
	rawIndex := record.Get(ColumnIndex)
	index, err := strconv.Atoi(rawIndex)
	if err != nil {
		return Entry{}, apperrors.NewParseError(source, record.Line, ColumnIndex, rawIndex, "not an integer")
	}

	name := record.Get(ColumnName)
	if name == "" {
		return Entry{}, apperrors.NewParseError(source, record.Line, ColumnName, "", "required field is empty")
	}

	author := record.Get(ColumnAuthor)
	if author == "" {
		return Entry{}, apperrors.NewParseError(source, record.Line, ColumnAuthor, "", "required field is empty")
	}

	return Entry{
		Index:     index,
		Name:      name,
		Author:    author,
		Score:     csvutil.ParseNullFloat(record.Get(ColumnScore)),
		VoteCount: csvutil.ParseNullInt(record.Get(ColumnVoteCount)),
	}, nil
}
