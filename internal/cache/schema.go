package cache

// Cache tables share one layout keyed by cache_key. expires_at is a Unix
// timestamp so entries can carry their own TTL.
const cacheTableLayout = `
CREATE TABLE IF NOT EXISTS %[1]s (
	cache_key TEXT PRIMARY KEY NOT NULL,
	data TEXT NOT NULL,
	cached_at INTEGER NOT NULL,
	expires_at INTEGER NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_%[1]s_expires_at ON %[1]s(expires_at);
`

// Cache table names.
const (
	GoogleBooksTable = "googlebooks_cache"
	OpenLibraryTable = "openlibrary_cache"
)

// ValidCacheTableNames is the whitelist of table names that may be
// interpolated into queries.
var ValidCacheTableNames = map[string]bool{
	GoogleBooksTable: true,
	OpenLibraryTable: true,
}

// SourceTables maps the user-facing source names to their cache tables.
var SourceTables = map[string]string{
	"googlebooks": GoogleBooksTable,
	"openlibrary": OpenLibraryTable,
}
