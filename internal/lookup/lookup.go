// Package lookup fetches cover images and summaries for book titles from
// external catalogs. Lookups are best effort: failures degrade to a
// placeholder summary.
package lookup

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	apperrors "github.com/lepinkainen/bookdash/internal/errors"
)

// NoSummary is shown when no provider returned a description.
const NoSummary = "No summary available."

// DefaultTimeout bounds a whole Describe call.
const DefaultTimeout = 10 * time.Second

// Metadata is what a provider knows about a title.
type Metadata struct {
	Title    string `json:"title,omitempty"`
	CoverURL string `json:"cover_url,omitempty"`
	Summary  string `json:"summary,omitempty"`
	Source   string `json:"source,omitempty"`
}

// Provider looks up a single title in one external catalog. Implementations
// return a LookupFailure when the title is unknown or the service fails.
type Provider interface {
	Name() string
	Lookup(ctx context.Context, title string) (*Metadata, error)
}

// Client queries providers in priority order.
type Client struct {
	providers []Provider
	timeout   time.Duration
}

// NewClient creates a client. A non-positive timeout uses DefaultTimeout.
func NewClient(timeout time.Duration, providers ...Provider) *Client {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Client{providers: providers, timeout: timeout}
}

// Describe returns the cover and summary for title. It never fails: missing
// fields from the first provider are filled from later ones, and when no
// provider has a summary the result carries NoSummary.
func (c *Client) Describe(ctx context.Context, title string) Metadata {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	var result Metadata
	for _, p := range c.providers {
		if result.CoverURL != "" && result.Summary != "" {
			break
		}

		md, err := p.Lookup(ctx, title)
		if err != nil {
			logFailure(p.Name(), title, err)
			if ctx.Err() != nil {
				break
			}
			continue
		}

		merge(&result, md)
	}

	if result.Summary == "" {
		result.Summary = NoSummary
	}
	return result
}

// merge fills empty fields of dst from src.
func merge(dst *Metadata, src *Metadata) {
	if src == nil {
		return
	}
	if dst.Title == "" {
		dst.Title = src.Title
	}
	if dst.CoverURL == "" {
		dst.CoverURL = src.CoverURL
	}
	if dst.Summary == "" && src.Summary != "" {
		dst.Summary = src.Summary
		dst.Source = src.Source
	}
	if dst.Source == "" {
		dst.Source = src.Source
	}
}

func logFailure(source, title string, err error) {
	var failure *apperrors.LookupFailure
	if errors.As(err, &failure) && failure.NoMatch {
		slog.Debug("No metadata match", "source", source, "title", title)
		return
	}
	slog.Warn("Metadata lookup failed", "source", source, "title", title, "error", err)
}

// cacheKey normalizes a title so lookups differing only in case or spacing
// share a cache entry.
func cacheKey(title string) string {
	return strings.ToLower(strings.Join(strings.Fields(title), " "))
}

// cachedResult is the cached form of a provider response, including misses.
type cachedResult struct {
	Metadata *Metadata `json:"metadata,omitempty"`
	NotFound bool      `json:"not_found"`
}
