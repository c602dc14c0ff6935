package csvutil

import (
	"database/sql"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseNullFloat(t *testing.T) {
	tests := []struct {
		input string
		want  sql.NullFloat64
	}{
		{"4.5", sql.NullFloat64{Float64: 4.5, Valid: true}},
		{" 3 ", sql.NullFloat64{Float64: 3, Valid: true}},
		{"", sql.NullFloat64{}},
		{"abc", sql.NullFloat64{}},
		{"NaN", sql.NullFloat64{}},
		{"inf", sql.NullFloat64{}},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assert.Equal(t, tt.want, ParseNullFloat(tt.input))
		})
	}
}

func TestParseNullInt(t *testing.T) {
	tests := []struct {
		input string
		want  sql.NullInt64
	}{
		{"1200", sql.NullInt64{Int64: 1200, Valid: true}},
		{"1200.0", sql.NullInt64{Int64: 1200, Valid: true}},
		{"12.5", sql.NullInt64{}},
		{"1,200", sql.NullInt64{}},
		{"", sql.NullInt64{}},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assert.Equal(t, tt.want, ParseNullInt(tt.input))
		})
	}
}

func TestFormatFloat(t *testing.T) {
	assert.Equal(t, "4", FormatFloat(4))
	assert.Equal(t, "3.5", FormatFloat(3.5))
}
