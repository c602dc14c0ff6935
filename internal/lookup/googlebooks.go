package lookup

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strings"

	"github.com/lepinkainen/bookdash/internal/cache"
	apperrors "github.com/lepinkainen/bookdash/internal/errors"
)

// DefaultGoogleBooksURL is the public Google Books API root.
const DefaultGoogleBooksURL = "https://www.googleapis.com/books/v1"

// GoogleBooksResponse is the subset of the volumes search response we use.
type GoogleBooksResponse struct {
	TotalItems int `json:"totalItems"`
	Items      []struct {
		VolumeInfo struct {
			Title       string `json:"title"`
			Description string `json:"description"`
			ImageLinks  struct {
				Thumbnail      string `json:"thumbnail"`
				SmallThumbnail string `json:"smallThumbnail"`
			} `json:"imageLinks"`
		} `json:"volumeInfo"`
	} `json:"items"`
}

// GoogleBooks searches volumes by title.
type GoogleBooks struct {
	opts ProviderOptions
}

// NewGoogleBooks creates the Google Books provider.
func NewGoogleBooks(opts ProviderOptions) *GoogleBooks {
	opts.setDefaults(DefaultGoogleBooksURL, "googlebooks")
	return &GoogleBooks{opts: opts}
}

// Name implements Provider.
func (g *GoogleBooks) Name() string {
	return "googlebooks"
}

// Lookup implements Provider. The first search result is used.
func (g *GoogleBooks) Lookup(ctx context.Context, title string) (*Metadata, error) {
	result, fromCache, err := cache.GetOrFetch(g.opts.Cache, cache.GoogleBooksTable, cacheKey(title),
		func() (cachedResult, error) { return g.fetch(ctx, title) },
		g.opts.ttlPolicy())
	if err != nil {
		return nil, apperrors.NewLookupFailure(g.Name(), title, err)
	}

	slog.Debug("Google Books lookup", "title", title, "from_cache", fromCache, "not_found", result.NotFound)
	if result.NotFound || result.Metadata == nil {
		return nil, apperrors.NewNoMatchFailure(g.Name(), title)
	}
	return result.Metadata, nil
}

func (g *GoogleBooks) fetch(ctx context.Context, title string) (cachedResult, error) {
	if err := g.opts.Limiter.Wait(ctx); err != nil {
		return cachedResult{}, err
	}

	params := url.Values{}
	params.Set("q", "intitle:"+title)
	if g.opts.APIKey != "" {
		params.Set("key", g.opts.APIKey)
	}
	endpoint := fmt.Sprintf("%s/volumes?%s", g.opts.BaseURL, params.Encode())

	var response GoogleBooksResponse
	if err := getJSON(ctx, g.opts.HTTPClient, endpoint, &response); err != nil {
		return cachedResult{}, fmt.Errorf("google Books API request failed: %w", err)
	}

	if response.TotalItems == 0 || len(response.Items) == 0 {
		return cachedResult{NotFound: true}, nil
	}

	info := response.Items[0].VolumeInfo
	cover := info.ImageLinks.Thumbnail
	if cover == "" {
		cover = info.ImageLinks.SmallThumbnail
	}

	return cachedResult{Metadata: &Metadata{
		Title:    info.Title,
		CoverURL: secureURL(cover),
		Summary:  strings.TrimSpace(info.Description),
		Source:   g.Name(),
	}}, nil
}

// secureURL upgrades the http image links Google Books returns.
func secureURL(raw string) string {
	if strings.HasPrefix(raw, "http://") {
		return "https://" + strings.TrimPrefix(raw, "http://")
	}
	return raw
}

func getJSON(ctx context.Context, client *http.Client, endpoint string, target any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := client.Do(req)
	if err != nil {
		return err
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("unexpected status code: %d", resp.StatusCode)
	}

	if err := json.NewDecoder(resp.Body).Decode(target); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}
