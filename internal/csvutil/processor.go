package csvutil

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	apperrors "github.com/lepinkainen/bookdash/internal/errors"
)

// ProcessorOptions configures CSV processing behavior.
type ProcessorOptions struct {
	// Source names the data set in errors and logs. Defaults to the file's base name.
	Source string

	// RequiredColumns lists header names that must be present.
	RequiredColumns []string

	// SkipInvalid controls whether to skip invalid records or return an error.
	SkipInvalid bool

	// LazyQuotes accepts bare and unterminated quotes. An unterminated quote
	// then runs to the end of the file as a single cell.
	LazyQuotes bool
}

// Record is a single CSV row addressed by header name.
type Record struct {
	// Line is the 1-based line number where the record starts.
	Line   int
	fields []string
	index  map[string]int
}

// Get returns the trimmed value of the named column, or "" when the column is
// absent or the row is short.
func (r Record) Get(column string) string {
	i, ok := r.index[column]
	if !ok || i >= len(r.fields) {
		return ""
	}
	return strings.TrimSpace(r.fields[i])
}

// Fields returns the raw cell values of the record.
func (r Record) Fields() []string {
	return r.fields
}

// Table is a fully read CSV file.
type Table struct {
	Source string
	// Header holds the column names with the BOM and surrounding spaces removed.
	Header []string
	// HeaderLine is the header exactly as it appears in the file, line ending included.
	HeaderLine string
	Records    []Record
}

// ReadTable reads the whole file. A missing file is a NotFoundError. An empty
// file, a header without the required columns or a record the CSV reader
// rejects is a ParseError.
func ReadTable(filename string, opts ProcessorOptions) (*Table, error) {
	source := opts.Source
	if source == "" {
		source = filepath.Base(filename)
	}

	data, err := os.ReadFile(filename)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, apperrors.NewNotFoundError(source, err)
		}
		return nil, fmt.Errorf("failed to open CSV file: %w", err)
	}

	return readTable(data, source, opts)
}

func readTable(data []byte, source string, opts ProcessorOptions) (*Table, error) {
	reader := csv.NewReader(bytes.NewReader(data))
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = opts.LazyQuotes

	raw, err := reader.Read()
	if err == io.EOF {
		return nil, apperrors.NewParseError(source, 0, "", "", "file is empty")
	}
	if err != nil {
		return nil, recordError(source, err)
	}

	header := make([]string, len(raw))
	index := make(map[string]int, len(raw))
	for i, name := range raw {
		name = strings.TrimSpace(strings.TrimPrefix(name, "\ufeff"))
		header[i] = name
		if _, dup := index[name]; !dup {
			index[name] = i
		}
	}

	for _, column := range opts.RequiredColumns {
		if _, ok := index[column]; !ok {
			return nil, apperrors.NewParseError(source, 1, column, "", "required column is missing")
		}
	}

	table := &Table{Source: source, Header: header, HeaderLine: string(data[:reader.InputOffset()])}
	for {
		fields, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, recordError(source, err)
		}
		line, _ := reader.FieldPos(0)
		table.Records = append(table.Records, Record{Line: line, fields: fields, index: index})
	}

	return table, nil
}

func recordError(source string, err error) error {
	var csvErr *csv.ParseError
	if errors.As(err, &csvErr) {
		return apperrors.NewParseError(source, csvErr.StartLine, "", "", csvErr.Err.Error())
	}
	return fmt.Errorf("failed to read %s: %w", source, err)
}

// ProcessCSV reads a CSV file and parses each record into type T.
// The parser function converts a header-addressed Record into the target type.
// Parser errors either skip the record (SkipInvalid) or abort processing.
func ProcessCSV[T any](filename string, parser func(Record) (T, error), opts ProcessorOptions) ([]T, error) {
	table, err := ReadTable(filename, opts)
	if err != nil {
		return nil, err
	}

	items := make([]T, 0, len(table.Records))
	for _, record := range table.Records {
		item, err := parser(record)
		if err != nil {
			if opts.SkipInvalid {
				slog.Warn("Skipping invalid record", "source", table.Source, "line", record.Line, "error", err)
				continue
			}
			return nil, fmt.Errorf("invalid record: %w", err)
		}
		items = append(items, item)
	}

	return items, nil
}
