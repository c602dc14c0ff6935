package ratings

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"sync"

	"github.com/lepinkainen/bookdash/internal/csvutil"
	apperrors "github.com/lepinkainen/bookdash/internal/errors"
	"github.com/lepinkainen/bookdash/internal/fileutil"
)

// row keeps the cells of a ratings line exactly as read so rewriting the file
// reproduces lines the store did not touch, including rows whose ids are not
// integers. Files the CSV reader rejects never get this far.
type row struct {
	cells  []string
	rating Rating
	valid  bool
}

// CSVStore keeps ratings in a CSV file with the columns userId, bookIndex and
// score. Every upsert rewrites the whole file atomically.
//
// The mutex only serialises writers inside this process. Two processes
// writing the same file race and the last full rewrite wins.
type CSVStore struct {
	path string

	mu         sync.Mutex
	loaded     bool
	header     []string
	headerLine string
	rows       []row
}

// NewCSVStore creates a store backed by the CSV file at path. The file is read
// on the first Load or Upsert.
func NewCSVStore(path string) *CSVStore {
	return &CSVStore{path: path}
}

// Path returns the backing file of the store.
func (s *CSVStore) Path() string {
	return s.path
}

// Load reads the ratings file and returns the readable ratings in file order.
// Rows with a non-integer userId or bookIndex are logged and left out of the
// result, but are kept for rewrites. A missing file is a NotFoundError. Broken
// quoting, or a line break inside userId, bookIndex or score, is a ParseError
// and the file is left alone.
func (s *CSVStore) Load(ctx context.Context) ([]Rating, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.read(); err != nil {
		return nil, err
	}
	return s.ratings(), nil
}

// Upsert sets the score for (userID, bookIndex). The first matching row is
// updated in place and later duplicates of the same key are removed; without
// a match a new row is appended. The file is then rewritten in full.
func (s *CSVStore) Upsert(ctx context.Context, userID, bookIndex int, score float64) (UpsertResult, error) {
	if err := ctx.Err(); err != nil {
		return UpsertResult{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.loaded {
		if err := s.read(); err != nil {
			return UpsertResult{}, err
		}
	}

	rows := make([]row, 0, len(s.rows)+1)
	found := false
	for _, r := range s.rows {
		if r.valid && r.rating.UserID == userID && r.rating.BookIndex == bookIndex {
			if found {
				slog.Debug("Removing duplicate rating", "user_id", userID, "book_index", bookIndex)
				continue
			}
			found = true
			r = s.withScore(r, score)
		}
		rows = append(rows, r)
	}

	if !found {
		rows = append(rows, s.newRow(userID, bookIndex, score))
	}

	if err := s.write(rows); err != nil {
		return UpsertResult{}, err
	}
	s.rows = rows

	slog.Debug("Rating upserted", "path", s.path, "user_id", userID, "book_index", bookIndex, "score", score, "created", !found)
	return UpsertResult{Created: !found}, nil
}

// Close is a no-op for the CSV backend.
func (s *CSVStore) Close() error {
	return nil
}

func (s *CSVStore) read() error {
	table, err := csvutil.ReadTable(s.path, csvutil.ProcessorOptions{
		Source:          "ratings",
		RequiredColumns: []string{ColumnUserID, ColumnBookIndex, ColumnScore},
	})
	if err != nil {
		return fmt.Errorf("failed to load ratings %s: %w", s.path, err)
	}

	rows := make([]row, 0, len(table.Records))
	for _, record := range table.Records {
		if err := checkSingleLine(table.Source, record); err != nil {
			return fmt.Errorf("failed to load ratings %s: %w", s.path, err)
		}

		r := row{cells: append([]string(nil), record.Fields()...)}
		rating, err := parseRecord(table.Source, record)
		if err != nil {
			slog.Warn("Keeping unreadable rating row as is", "line", record.Line, "error", err)
		} else {
			r.rating = rating
			r.valid = true
		}
		rows = append(rows, r)
	}

	s.header = table.Header
	s.headerLine = table.HeaderLine
	s.rows = rows
	s.loaded = true

	slog.Debug("Ratings loaded", "path", s.path, "rows", len(rows))
	return nil
}

func (s *CSVStore) ratings() []Rating {
	result := make([]Rating, 0, len(s.rows))
	for _, r := range s.rows {
		if r.valid {
			result = append(result, r.rating)
		}
	}
	return result
}

func (s *CSVStore) column(name string) int {
	for i, h := range s.header {
		if h == name {
			return i
		}
	}
	return -1
}

func (s *CSVStore) withScore(r row, score float64) row {
	cells := append([]string(nil), r.cells...)
	i := s.column(ColumnScore)
	for len(cells) <= i {
		cells = append(cells, "")
	}
	cells[i] = csvutil.FormatFloat(score)

	r.cells = cells
	r.rating.Score.Float64 = score
	r.rating.Score.Valid = true
	return r
}

func (s *CSVStore) newRow(userID, bookIndex int, score float64) row {
	cells := make([]string, len(s.header))
	cells[s.column(ColumnUserID)] = strconv.Itoa(userID)
	cells[s.column(ColumnBookIndex)] = strconv.Itoa(bookIndex)
	cells[s.column(ColumnScore)] = csvutil.FormatFloat(score)

	rating := Rating{UserID: userID, BookIndex: bookIndex}
	rating.Score.Float64 = score
	rating.Score.Valid = true
	return row{cells: cells, rating: rating, valid: true}
}

func (s *CSVStore) write(rows []row) error {
	records := make([][]string, len(rows))
	for i, r := range rows {
		records[i] = r.cells
	}

	var buf bytes.Buffer
	buf.WriteString(s.headerLine)
	if !strings.HasSuffix(s.headerLine, "\n") {
		buf.WriteString("\n")
	}
	if err := csvutil.WriteRecords(&buf, records); err != nil {
		return fmt.Errorf("failed to encode ratings: %w", err)
	}
	if err := fileutil.WriteFileAtomic(s.path, buf.Bytes(), 0o644); err != nil {
		return fmt.Errorf("failed to write ratings %s: %w", s.path, err)
	}
	return nil
}

// checkSingleLine rejects key cells spanning lines. Such a cell is what a quote
// left open by hand looks like, with the following rows folded into it.
func checkSingleLine(source string, record csvutil.Record) error {
	for _, column := range []string{ColumnUserID, ColumnBookIndex, ColumnScore} {
		if value := record.Get(column); strings.ContainsAny(value, "\r\n") {
			return apperrors.NewParseError(source, record.Line, column, value, "line break inside a quoted cell")
		}
	}
	return nil
}

func parseRecord(source string, record csvutil.Record) (Rating, error) {
	rawUser := record.Get(ColumnUserID)
	userID, err := strconv.Atoi(rawUser)
	if err != nil {
		return Rating{}, apperrors.NewParseError(source, record.Line, ColumnUserID, rawUser, "not an integer")
	}

	rawBook := record.Get(ColumnBookIndex)
	bookIndex, err := strconv.Atoi(rawBook)
	if err != nil {
		return Rating{}, apperrors.NewParseError(source, record.Line, ColumnBookIndex, rawBook, "not an integer")
	}

	return Rating{
		UserID:    userID,
		BookIndex: bookIndex,
		Score:     csvutil.ParseNullFloat(record.Get(ColumnScore)),
	}, nil
}
