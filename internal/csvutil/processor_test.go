package csvutil

import (
	"bytes"
	"errors"
	"strconv"
	"testing"

	apperrors "github.com/lepinkainen/bookdash/internal/errors"
	"github.com/lepinkainen/bookdash/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type person struct {
	Name string
	Age  int
	City string
}

func parsePerson(record Record) (person, error) {
	age, err := strconv.Atoi(record.Get("age"))
	if err != nil {
		return person{}, apperrors.NewParseError("people.csv", record.Line, "age", record.Get("age"), "not an integer")
	}
	return person{Name: record.Get("name"), Age: age, City: record.Get("city")}, nil
}

func TestProcessCSV(t *testing.T) {
	env := testutil.NewTestEnv(t)

	// Columns in a different order than the struct fields
	env.WriteFileString("test.csv", `city,name,age
NYC,Alice,30
LA,Bob,25
Chicago,Charlie,35
`)

	people, err := ProcessCSV(env.Path("test.csv"), parsePerson, ProcessorOptions{})
	require.NoError(t, err)

	expected := []person{
		{"Alice", 30, "NYC"},
		{"Bob", 25, "LA"},
		{"Charlie", 35, "Chicago"},
	}
	assert.Equal(t, expected, people)
}

func TestProcessCSV_SkipInvalid(t *testing.T) {
	env := testutil.NewTestEnv(t)
	env.WriteFileString("test.csv", "name,age,city\nAlice,30,NYC\nBob,unknown,LA\nCharlie,35,Chicago\n")

	people, err := ProcessCSV(env.Path("test.csv"), parsePerson, ProcessorOptions{SkipInvalid: true})
	require.NoError(t, err)
	require.Len(t, people, 2)
	assert.Equal(t, "Charlie", people[1].Name)
}

func TestProcessCSV_InvalidRecordFails(t *testing.T) {
	env := testutil.NewTestEnv(t)
	env.WriteFileString("test.csv", "name,age,city\nAlice,30,NYC\nBob,unknown,LA\n")

	_, err := ProcessCSV(env.Path("test.csv"), parsePerson, ProcessorOptions{})
	require.Error(t, err)
	assert.True(t, apperrors.IsParseError(err))

	var parseErr *apperrors.ParseError
	require.True(t, errors.As(err, &parseErr))
	assert.Equal(t, 3, parseErr.Line)
}

func TestProcessCSV_EmptyFile(t *testing.T) {
	env := testutil.NewTestEnv(t)
	env.WriteFileString("empty.csv", "")

	_, err := ProcessCSV(env.Path("empty.csv"), parsePerson, ProcessorOptions{})
	require.Error(t, err)
	assert.True(t, apperrors.IsParseError(err))
}

func TestProcessCSV_FileNotFound(t *testing.T) {
	_, err := ProcessCSV("/nonexistent/file.csv", parsePerson, ProcessorOptions{})
	require.Error(t, err)
	assert.True(t, apperrors.IsNotFoundError(err))
}

func TestReadTable_MissingRequiredColumn(t *testing.T) {
	env := testutil.NewTestEnv(t)
	env.WriteFileString("test.csv", "name,city\nAlice,NYC\n")

	_, err := ReadTable(env.Path("test.csv"), ProcessorOptions{RequiredColumns: []string{"name", "age"}})
	require.Error(t, err)
	assert.Contains(t, err.Error(), `field "age"`)
}

func TestReadTable_ShortRowsAndBOM(t *testing.T) {
	env := testutil.NewTestEnv(t)
	env.WriteFileString("test.csv", "\ufeffname, age ,city\nAlice,30\n")

	table, err := ReadTable(env.Path("test.csv"), ProcessorOptions{Source: "people"})
	require.NoError(t, err)

	assert.Equal(t, "people", table.Source)
	assert.Equal(t, []string{"name", "age", "city"}, table.Header)
	assert.Equal(t, "\ufeffname, age ,city\n", table.HeaderLine)
	require.Len(t, table.Records, 1)
	assert.Equal(t, "Alice", table.Records[0].Get("name"))
	assert.Equal(t, "30", table.Records[0].Get("age"))
	assert.Equal(t, "", table.Records[0].Get("city"))
	assert.Equal(t, "", table.Records[0].Get("missing"))
}

func TestWriteRecords(t *testing.T) {
	var buf bytes.Buffer
	err := WriteRecords(&buf, [][]string{
		{"1", "2", "5"},
		{"3", "4", "needs, quoting"},
	})
	require.NoError(t, err)
	assert.Equal(t, "1,2,5\n3,4,\"needs, quoting\"\n", buf.String())
}

func TestReadTable_UnterminatedQuote(t *testing.T) {
	env := testutil.NewTestEnv(t)
	env.WriteFileString("test.csv", "name,age,city\nAlice,30,NYC\nBob,\"25\nCharlie,35,Chicago\n")

	_, err := ReadTable(env.Path("test.csv"), ProcessorOptions{Source: "people"})
	require.Error(t, err)
	assert.True(t, apperrors.IsParseError(err))

	var parseErr *apperrors.ParseError
	require.True(t, errors.As(err, &parseErr))
	assert.Equal(t, 3, parseErr.Line)
}

func TestReadTable_BareQuote(t *testing.T) {
	env := testutil.NewTestEnv(t)
	env.WriteFileString("test.csv", "name,age,city\nThe \"Kid\" Smith,30,NYC\n")

	_, err := ReadTable(env.Path("test.csv"), ProcessorOptions{})
	require.Error(t, err)
	assert.True(t, apperrors.IsParseError(err))

	table, err := ReadTable(env.Path("test.csv"), ProcessorOptions{LazyQuotes: true})
	require.NoError(t, err)
	require.Len(t, table.Records, 1)
	assert.Equal(t, `The "Kid" Smith`, table.Records[0].Get("name"))
}
