package lookup

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"strings"

	"github.com/lepinkainen/bookdash/internal/cache"
	apperrors "github.com/lepinkainen/bookdash/internal/errors"
)

// Open Library endpoints.
const (
	DefaultOpenLibraryURL = "https://openlibrary.org"
	DefaultCoversURL      = "https://covers.openlibrary.org"
)

// OpenLibrarySearchResponse is the subset of search.json we use.
type OpenLibrarySearchResponse struct {
	NumFound int `json:"numFound"`
	Docs     []struct {
		Title         string   `json:"title"`
		CoverID       int      `json:"cover_i"`
		FirstSentence []string `json:"first_sentence"`
	} `json:"docs"`
}

// OpenLibrary searches works by title.
type OpenLibrary struct {
	opts      ProviderOptions
	coversURL string
}

// NewOpenLibrary creates the Open Library provider.
func NewOpenLibrary(opts ProviderOptions) *OpenLibrary {
	opts.setDefaults(DefaultOpenLibraryURL, "openlibrary")
	return &OpenLibrary{opts: opts, coversURL: DefaultCoversURL}
}

// Name implements Provider.
func (o *OpenLibrary) Name() string {
	return "openlibrary"
}

// Lookup implements Provider. Open Library has no descriptions in search
// results, so the summary is the work's first sentence when known.
func (o *OpenLibrary) Lookup(ctx context.Context, title string) (*Metadata, error) {
	result, fromCache, err := cache.GetOrFetch(o.opts.Cache, cache.OpenLibraryTable, cacheKey(title),
		func() (cachedResult, error) { return o.fetch(ctx, title) },
		o.opts.ttlPolicy())
	if err != nil {
		return nil, apperrors.NewLookupFailure(o.Name(), title, err)
	}

	slog.Debug("Open Library lookup", "title", title, "from_cache", fromCache, "not_found", result.NotFound)
	if result.NotFound || result.Metadata == nil {
		return nil, apperrors.NewNoMatchFailure(o.Name(), title)
	}
	return result.Metadata, nil
}

func (o *OpenLibrary) fetch(ctx context.Context, title string) (cachedResult, error) {
	if err := o.opts.Limiter.Wait(ctx); err != nil {
		return cachedResult{}, err
	}

	params := url.Values{}
	params.Set("title", title)
	params.Set("limit", "1")
	params.Set("fields", "title,cover_i,first_sentence")
	endpoint := fmt.Sprintf("%s/search.json?%s", o.opts.BaseURL, params.Encode())

	var response OpenLibrarySearchResponse
	if err := getJSON(ctx, o.opts.HTTPClient, endpoint, &response); err != nil {
		return cachedResult{}, fmt.Errorf("open Library API request failed: %w", err)
	}

	if len(response.Docs) == 0 {
		return cachedResult{NotFound: true}, nil
	}

	doc := response.Docs[0]
	md := &Metadata{Title: doc.Title, Source: o.Name()}
	if doc.CoverID > 0 {
		md.CoverURL = fmt.Sprintf("%s/b/id/%d-L.jpg", o.coversURL, doc.CoverID)
	}
	if len(doc.FirstSentence) > 0 {
		md.Summary = strings.TrimSpace(doc.FirstSentence[0])
	}
	return cachedResult{Metadata: md}, nil
}
