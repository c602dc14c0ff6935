package datastore

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/lepinkainen/bookdash/internal/books"
	"github.com/lepinkainen/bookdash/internal/stats"
)

// ExportResult counts the rows written per table.
type ExportResult struct {
	JoinedBooks int
	AuthorStats int
}

// Export writes the joined view and author statistics to the store. The
// store must already be connected.
func Export(ctx context.Context, store Store, database string, joined []books.JoinedBook, authors []stats.AuthorStat) (ExportResult, error) {
	var result ExportResult

	tables := []struct {
		table   Table
		records []map[string]any
		count   *int
	}{
		{JoinedBooksTable, ToRecords(joined), &result.JoinedBooks},
		{AuthorStatsTable, ToRecords(authors), &result.AuthorStats},
	}

	for _, t := range tables {
		if err := store.CreateTable(ctx, t.table); err != nil {
			return result, err
		}
		if err := store.BatchInsert(ctx, database, t.table, t.records); err != nil {
			return result, fmt.Errorf("failed to export %s: %w", t.table.Name, err)
		}
		*t.count = len(t.records)
		slog.Debug("Exported table", "table", t.table.Name, "rows", len(t.records))
	}

	return result, nil
}
