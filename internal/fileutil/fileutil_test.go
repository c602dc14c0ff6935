package fileutil

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/lepinkainen/bookdash/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSanitizeFilename(t *testing.T) {
	testCases := []struct {
		input    string
		expected string
	}{
		{"Dune", "Dune"},
		{"Dune: Messiah", "Dune - Messiah"},
		{"AC/DC", "AC-DC"},
		{`back\slash`, "back-slash"},
	}

	for _, tc := range testCases {
		t.Run(tc.input, func(t *testing.T) {
			assert.Equal(t, tc.expected, SanitizeFilename(tc.input))
		})
	}
}

func TestFileExists(t *testing.T) {
	env := testutil.NewTestEnv(t)
	env.WriteFileString("present.txt", "x")

	assert.True(t, FileExists(env.Path("present.txt")))
	assert.False(t, FileExists(env.Path("absent.txt")))
	assert.False(t, FileExists(env.RootDir()), "directories are not files")
}

func TestWriteFileAtomic_ReplacesContent(t *testing.T) {
	env := testutil.NewTestEnv(t)
	env.WriteFileString("ratings.csv", "old content that is longer than the new one\n")
	path := env.Path("ratings.csv")
	require.NoError(t, os.Chmod(path, 0o600))

	require.NoError(t, WriteFileAtomic(path, []byte("new\n"), 0o644))

	env.AssertFileEquals("ratings.csv", "new\n")
	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), info.Mode().Perm(), "existing permissions are kept")

	entries, err := os.ReadDir(env.RootDir())
	require.NoError(t, err)
	assert.Len(t, entries, 1, "no temp files are left behind")
}

func TestWriteFileAtomic_NewFile(t *testing.T) {
	env := testutil.NewTestEnv(t)
	path := env.Path("fresh.csv")

	require.NoError(t, WriteFileAtomic(path, []byte("a,b\n"), 0o644))
	env.AssertFileEquals("fresh.csv", "a,b\n")
}

func TestWriteFileAtomic_MissingDirectory(t *testing.T) {
	env := testutil.NewTestEnv(t)

	err := WriteFileAtomic(filepath.Join(env.RootDir(), "missing", "file.csv"), []byte("x"), 0o644)
	require.Error(t, err)
}

func TestWriteJSONFile(t *testing.T) {
	env := testutil.NewTestEnv(t)
	path := env.Path("out", "stats.json")

	written, err := WriteJSONFile(map[string]int{"books": 2}, path, false)
	require.NoError(t, err)
	assert.True(t, written)

	var decoded map[string]int
	require.NoError(t, json.Unmarshal([]byte(env.ReadFileString("out/stats.json")), &decoded))
	assert.Equal(t, 2, decoded["books"])

	written, err = WriteJSONFile(map[string]int{"books": 3}, path, false)
	require.NoError(t, err)
	assert.False(t, written, "existing file is kept without overwrite")

	written, err = WriteJSONFile(map[string]int{"books": 3}, path, true)
	require.NoError(t, err)
	assert.True(t, written)
}
