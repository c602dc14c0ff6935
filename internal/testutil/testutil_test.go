package testutil

import (
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTestEnv_Path(t *testing.T) {
	env := NewTestEnv(t)

	path := env.Path("subdir", "file.txt")
	assert.True(t, strings.HasPrefix(path, env.RootDir()))
	assert.Equal(t, filepath.Join(env.RootDir(), "subdir", "file.txt"), path)
}

func TestTestEnv_WriteReadFileString(t *testing.T) {
	env := NewTestEnv(t)

	env.WriteFileString("nested/dir/test.txt", "hello")
	assert.True(t, env.FileExists("nested/dir/test.txt"))
	assert.Equal(t, "hello", env.ReadFileString("nested/dir/test.txt"))
	env.AssertFileEquals("nested/dir/test.txt", "hello")
}

func TestTestEnv_WriteSampleData(t *testing.T) {
	env := NewTestEnv(t)

	catalogPath, ratingsPath := env.WriteSampleData()
	require.FileExists(t, catalogPath)
	require.FileExists(t, ratingsPath)
	assert.True(t, strings.HasPrefix(env.ReadFileString("books.csv"), CatalogHeader))
	assert.True(t, strings.HasPrefix(env.ReadFileString("ratings.csv"), RatingsHeader))
}

func TestGoldenHelper_AssertGolden(t *testing.T) {
	t.Setenv("UPDATE_GOLDEN", "")
	env := NewTestEnv(t)
	env.WriteFileString("golden/out.txt", "expected\n")

	g := NewGoldenHelper(t, env.Path("golden"))
	assert.Equal(t, env.Path("golden", "out.txt"), g.GoldenPath("out.txt"))
	g.AssertGolden("out.txt", []byte("expected\n"))
}

func TestGoldenHelper_AssertGoldenJSON(t *testing.T) {
	t.Setenv("UPDATE_GOLDEN", "")
	env := NewTestEnv(t)
	env.WriteFileString("golden/out.json", `{"a": 1, "b": [1, 2]}`)

	g := NewGoldenHelper(t, env.Path("golden"))
	g.AssertGoldenJSON("out.json", []byte(`{"b":[1,2],"a":1}`))
}

func TestGoldenHelper_UpdateMode(t *testing.T) {
	t.Setenv("UPDATE_GOLDEN", "true")
	env := NewTestEnv(t)

	g := NewGoldenHelper(t, env.Path("golden"))
	g.AssertGolden("new.txt", []byte("fresh"))
	assert.Equal(t, "fresh", env.ReadFileString("golden/new.txt"))
}
