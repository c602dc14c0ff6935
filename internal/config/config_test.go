package config

import (
	"os"
	"testing"
	"time"

	"github.com/lepinkainen/bookdash/internal/testutil"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	env := testutil.NewTestEnv(t)
	v := viper.New()
	require.NoError(t, Init(v, env.RootDir()))

	cfg, err := Load(v)
	require.NoError(t, err)

	assert.Equal(t, "books_of_the_decade.csv", cfg.Data.CatalogFile)
	assert.Equal(t, "user_reviews_dataset.csv", cfg.Data.RatingsFile)
	assert.True(t, cfg.Data.SkipInvalid)
	assert.Equal(t, "csv", cfg.Ratings.Backend)
	assert.Equal(t, 0, cfg.Ratings.UserID)
	assert.Equal(t, 10, cfg.Stats.Top)
	assert.Equal(t, 10*time.Second, cfg.Lookup.Timeout)
	assert.Equal(t, []string{"googlebooks", "openlibrary"}, cfg.Lookup.Providers)
	assert.Equal(t, 720*time.Hour, cfg.Cache.TTL)
	assert.Equal(t, 168*time.Hour, cfg.Cache.NegativeTTL)
	assert.Equal(t, "bookdash", cfg.Datastore.Database)
}

func TestLoad_ConfigFile(t *testing.T) {
	env := testutil.NewTestEnv(t)
	env.WriteFileString("config.yaml", `
data:
  catalog: catalog.csv
  skip_invalid: false
ratings:
  backend: sqlite
  userid: 123456
stats:
  top: 3
lookup:
  timeout: 2s
`)

	v := viper.New()
	require.NoError(t, Init(v, env.RootDir()))

	cfg, err := Load(v)
	require.NoError(t, err)

	assert.Equal(t, "catalog.csv", cfg.Data.CatalogFile)
	assert.False(t, cfg.Data.SkipInvalid)
	assert.Equal(t, "sqlite", cfg.Ratings.Backend)
	assert.Equal(t, 123456, cfg.Ratings.UserID)
	assert.Equal(t, 3, cfg.Stats.Top)
	assert.Equal(t, 2*time.Second, cfg.Lookup.Timeout)
}

func TestInit_EnvFile(t *testing.T) {
	env := testutil.NewTestEnv(t)
	env.WriteFileString(".env", "BOOKDASH_DATA_CATALOG=from-dotenv.csv\n")
	t.Cleanup(func() { _ = os.Unsetenv("BOOKDASH_DATA_CATALOG") })

	v := viper.New()
	require.NoError(t, Init(v, env.RootDir()))

	cfg, err := Load(v)
	require.NoError(t, err)
	assert.Equal(t, "from-dotenv.csv", cfg.Data.CatalogFile)
}

func TestInit_Environment(t *testing.T) {
	env := testutil.NewTestEnv(t)
	t.Setenv("GOOGLE_BOOKS_API_KEY", "secret")
	t.Setenv("BOOKDASH_STATS_TOP", "5")

	v := viper.New()
	require.NoError(t, Init(v, env.RootDir()))

	cfg, err := Load(v)
	require.NoError(t, err)
	assert.Equal(t, "secret", cfg.Lookup.GoogleBooksAPIKey)
	assert.Equal(t, 5, cfg.Stats.Top)
}

func TestLoad_Invalid(t *testing.T) {
	tests := []struct {
		name  string
		key   string
		value any
	}{
		{"bad ttl", "cache.ttl", "forever"},
		{"bad timeout", "lookup.timeout", "soon"},
		{"zero timeout", "lookup.timeout", "0s"},
		{"zero top", "stats.top", 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := viper.New()
			SetDefaults(v)
			v.Set(tt.key, tt.value)

			_, err := Load(v)
			require.Error(t, err)
		})
	}
}
