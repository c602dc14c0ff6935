package lookup

import (
	"context"
	"errors"
	"net/http"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/lepinkainen/bookdash/internal/cache"
	"github.com/lepinkainen/bookdash/internal/config"
	apperrors "github.com/lepinkainen/bookdash/internal/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const googleBooksDune = `{
	"totalItems": 1,
	"items": [{
		"volumeInfo": {
			"title": "Dune",
			"description": "Set on the desert planet Arrakis.",
			"imageLinks": {
				"smallThumbnail": "http://books.google.com/books/content?id=dune&zoom=5",
				"thumbnail": "http://books.google.com/books/content?id=dune&zoom=1"
			}
		}
	}]
}`

const openLibraryDune = `{
	"numFound": 1,
	"docs": [{
		"title": "Dune",
		"cover_i": 12345,
		"first_sentence": ["In the week before their departure to Arrakis."]
	}]
}`

type stubProvider struct {
	name  string
	md    *Metadata
	err   error
	calls int
}

func (s *stubProvider) Name() string { return s.name }

func (s *stubProvider) Lookup(ctx context.Context, _ string) (*Metadata, error) {
	s.calls++
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return s.md, s.err
}

func TestGoogleBooksLookup(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/volumes", func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "intitle:Dune", r.URL.Query().Get("q"))
		require.Equal(t, "secret", r.URL.Query().Get("key"))
		_, _ = w.Write([]byte(googleBooksDune))
	})
	server := newIPv4TestServer(t, mux)

	provider := NewGoogleBooks(ProviderOptions{BaseURL: server.URL, APIKey: "secret", HTTPClient: server.Client()})

	md, err := provider.Lookup(context.Background(), "Dune")
	require.NoError(t, err)
	assert.Equal(t, "Dune", md.Title)
	assert.Equal(t, "https://books.google.com/books/content?id=dune&zoom=1", md.CoverURL)
	assert.Equal(t, "Set on the desert planet Arrakis.", md.Summary)
	assert.Equal(t, "googlebooks", md.Source)
}

func TestGoogleBooksLookup_NoMatch(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/volumes", func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"totalItems": 0}`))
	})
	server := newIPv4TestServer(t, mux)

	provider := NewGoogleBooks(ProviderOptions{BaseURL: server.URL, HTTPClient: server.Client()})

	_, err := provider.Lookup(context.Background(), "Nothing")
	require.Error(t, err)

	var failure *apperrors.LookupFailure
	require.True(t, errors.As(err, &failure))
	assert.True(t, failure.NoMatch)
}

func TestGoogleBooksLookup_ServerError(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/volumes", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	})
	server := newIPv4TestServer(t, mux)

	provider := NewGoogleBooks(ProviderOptions{BaseURL: server.URL, HTTPClient: server.Client()})

	_, err := provider.Lookup(context.Background(), "Dune")
	require.Error(t, err)
	assert.True(t, apperrors.IsLookupFailure(err))
	assert.Contains(t, err.Error(), "429")
}

func TestOpenLibraryLookup(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/search.json", func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "Dune", r.URL.Query().Get("title"))
		require.Equal(t, "1", r.URL.Query().Get("limit"))
		_, _ = w.Write([]byte(openLibraryDune))
	})
	server := newIPv4TestServer(t, mux)

	provider := NewOpenLibrary(ProviderOptions{BaseURL: server.URL, HTTPClient: server.Client()})

	md, err := provider.Lookup(context.Background(), "Dune")
	require.NoError(t, err)
	assert.Equal(t, "https://covers.openlibrary.org/b/id/12345-L.jpg", md.CoverURL)
	assert.Equal(t, "In the week before their departure to Arrakis.", md.Summary)
}

func TestLookup_UsesCache(t *testing.T) {
	var requests atomic.Int32
	mux := http.NewServeMux()
	mux.HandleFunc("/volumes", func(w http.ResponseWriter, r *http.Request) {
		requests.Add(1)
		if r.URL.Query().Get("q") == "intitle:Unknown" {
			_, _ = w.Write([]byte(`{"totalItems": 0}`))
			return
		}
		_, _ = w.Write([]byte(googleBooksDune))
	})
	server := newIPv4TestServer(t, mux)

	cacheDB, err := cache.Open(filepath.Join(t.TempDir(), "cache.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = cacheDB.Close() })

	provider := NewGoogleBooks(ProviderOptions{BaseURL: server.URL, HTTPClient: server.Client(), Cache: cacheDB})
	ctx := context.Background()

	_, err = provider.Lookup(ctx, "Dune")
	require.NoError(t, err)
	md, err := provider.Lookup(ctx, "  dune ")
	require.NoError(t, err)
	assert.Equal(t, "Dune", md.Title)

	_, err = provider.Lookup(ctx, "Unknown")
	require.Error(t, err)
	_, err = provider.Lookup(ctx, "Unknown")
	require.Error(t, err)

	assert.Equal(t, int32(2), requests.Load(), "hits and misses are both cached")
}

func TestClientDescribe_FillsFromLaterProviders(t *testing.T) {
	first := &stubProvider{name: "first", md: &Metadata{Title: "Dune", Summary: "Spice.", Source: "first"}}
	second := &stubProvider{name: "second", md: &Metadata{CoverURL: "https://example.com/dune.jpg", Summary: "Ignored.", Source: "second"}}
	third := &stubProvider{name: "third", md: &Metadata{Summary: "Never asked."}}

	md := NewClient(time.Second, first, second, third).Describe(context.Background(), "Dune")

	assert.Equal(t, Metadata{
		Title:    "Dune",
		CoverURL: "https://example.com/dune.jpg",
		Summary:  "Spice.",
		Source:   "first",
	}, md)
	assert.Zero(t, third.calls)
}

func TestClientDescribe_FailsSoft(t *testing.T) {
	failing := &stubProvider{name: "failing", err: apperrors.NewLookupFailure("failing", "Dune", errors.New("connection refused"))}
	missing := &stubProvider{name: "missing", err: apperrors.NewNoMatchFailure("missing", "Dune")}

	md := NewClient(time.Second, failing, missing).Describe(context.Background(), "Dune")

	assert.Equal(t, Metadata{Summary: NoSummary}, md)
	assert.Equal(t, 1, failing.calls)
	assert.Equal(t, 1, missing.calls)
}

func TestClientDescribe_Timeout(t *testing.T) {
	block := make(chan struct{})
	t.Cleanup(func() { close(block) })

	mux := http.NewServeMux()
	mux.HandleFunc("/volumes", func(_ http.ResponseWriter, r *http.Request) {
		select {
		case <-block:
		case <-r.Context().Done():
		}
	})
	server := newIPv4TestServer(t, mux)

	slow := NewGoogleBooks(ProviderOptions{BaseURL: server.URL, HTTPClient: server.Client()})
	next := &stubProvider{name: "next", md: &Metadata{Summary: "Too late."}}

	start := time.Now()
	md := NewClient(50*time.Millisecond, slow, next).Describe(context.Background(), "Dune")

	assert.Equal(t, NoSummary, md.Summary)
	assert.Less(t, time.Since(start), 5*time.Second)
	assert.Zero(t, next.calls, "no provider is asked after the deadline")
}

func TestNewFromConfig(t *testing.T) {
	client, err := NewFromConfig(config.LookupConfig{
		Providers: []string{"openlibrary", "googlebooks"},
		Timeout:   time.Second,
	}, config.CacheConfig{}, nil)
	require.NoError(t, err)
	require.Len(t, client.providers, 2)
	assert.Equal(t, "openlibrary", client.providers[0].Name())
	assert.Equal(t, time.Second, client.timeout)

	_, err = NewFromConfig(config.LookupConfig{Providers: []string{"amazon"}}, config.CacheConfig{}, nil)
	require.Error(t, err)
}

func TestCacheKey(t *testing.T) {
	assert.Equal(t, "the fall of hyperion", cacheKey("  The Fall   of HYPERION "))
}
