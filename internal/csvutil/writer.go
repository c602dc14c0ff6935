package csvutil

import (
	"encoding/csv"
	"fmt"
	"io"
)

// WriteRecords writes rows as CSV without a header.
func WriteRecords(w io.Writer, rows [][]string) error {
	if err := csv.NewWriter(w).WriteAll(rows); err != nil {
		return fmt.Errorf("failed to write records: %w", err)
	}
	return nil
}
