package csvutil

import (
	"database/sql"
	"math"
	"strconv"
	"strings"
)

// ParseNullFloat coerces a cell to a number. Empty, non-numeric, NaN and
// infinite values are invalid.
func ParseNullFloat(value string) sql.NullFloat64 {
	value = strings.TrimSpace(value)
	if value == "" {
		return sql.NullFloat64{}
	}
	f, err := strconv.ParseFloat(value, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return sql.NullFloat64{}
	}
	return sql.NullFloat64{Float64: f, Valid: true}
}

// ParseNullInt coerces a cell to an integer. Integral floats such as "1200.0"
// are accepted.
func ParseNullInt(value string) sql.NullInt64 {
	value = strings.TrimSpace(value)
	if i, err := strconv.ParseInt(value, 10, 64); err == nil {
		return sql.NullInt64{Int64: i, Valid: true}
	}
	f := ParseNullFloat(value)
	if !f.Valid || f.Float64 != math.Trunc(f.Float64) {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: int64(f.Float64), Valid: true}
}

// FormatFloat renders a number the shortest way that round-trips, so whole
// scores are written as "4" rather than "4.0".
func FormatFloat(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}
