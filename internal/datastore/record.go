package datastore

import (
	"database/sql/driver"
	"reflect"
	"slices"
	"strings"
	"unicode"
)

var valuerType = reflect.TypeOf((*driver.Valuer)(nil)).Elem()

// ToRecord converts a struct into a row keyed by column name. The column is
// taken from the `db` tag, falling back to the snake_case field name. Fields
// tagged `db:"-"` are skipped. sql.Null* values become nil when invalid.
func ToRecord(value any) map[string]any {
	result := make(map[string]any)
	v := reflect.ValueOf(value)
	if v.Kind() == reflect.Pointer {
		if v.IsNil() {
			return result
		}
		v = v.Elem()
	}

	appendStructFields(v, result)
	return result
}

// ToRecords converts every item with ToRecord.
func ToRecords[T any](items []T) []map[string]any {
	records := make([]map[string]any, len(items))
	for i, item := range items {
		records[i] = ToRecord(item)
	}
	return records
}

func appendStructFields(v reflect.Value, result map[string]any) {
	if v.Kind() != reflect.Struct {
		return
	}

	t := v.Type()
	for i := 0; i < v.NumField(); i++ {
		field := t.Field(i)
		if field.PkgPath != "" {
			continue
		}

		value := v.Field(i)
		tag, _, _ := strings.Cut(field.Tag.Get("db"), ",")
		if tag == "-" {
			continue
		}
		if field.Anonymous && tag == "" && value.Kind() == reflect.Struct && !value.Type().Implements(valuerType) {
			appendStructFields(value, result)
			continue
		}

		key := tag
		if key == "" {
			key = toSnakeCase(field.Name)
		}
		result[key] = normalizeValue(value)
	}
}

func normalizeValue(value reflect.Value) any {
	if value.Kind() == reflect.Pointer {
		if value.IsNil() {
			return nil
		}
		value = value.Elem()
	}

	if value.Type().Implements(valuerType) {
		v, err := value.Interface().(driver.Valuer).Value()
		if err != nil {
			return nil
		}
		return v
	}

	if value.Kind() == reflect.Bool {
		if value.Bool() {
			return 1
		}
		return 0
	}

	return value.Interface()
}

func toSnakeCase(input string) string {
	runes := []rune(input)
	var builder strings.Builder
	builder.Grow(len(runes) + 4)

	for i, r := range runes {
		if unicode.IsUpper(r) && i > 0 {
			prev := runes[i-1]
			nextLower := i+1 < len(runes) && unicode.IsLower(runes[i+1])
			if unicode.IsLower(prev) || unicode.IsDigit(prev) || (unicode.IsUpper(prev) && nextLower) {
				builder.WriteRune('_')
			}
		}
		builder.WriteRune(unicode.ToLower(r))
	}

	return builder.String()
}

// columns returns the record keys in sorted order.
func columns(record map[string]any) []string {
	cols := make([]string, 0, len(record))
	for col := range record {
		cols = append(cols, col)
	}
	slices.Sort(cols)
	return cols
}
