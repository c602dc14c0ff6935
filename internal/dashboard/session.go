// Package dashboard holds the state of one dashboard session: the loaded
// catalog, the ratings store and the collaborators that act on them.
package dashboard

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	"github.com/lepinkainen/bookdash/internal/books"
	"github.com/lepinkainen/bookdash/internal/catalog"
	apperrors "github.com/lepinkainen/bookdash/internal/errors"
	"github.com/lepinkainen/bookdash/internal/lookup"
	"github.com/lepinkainen/bookdash/internal/ratings"
	"github.com/lepinkainen/bookdash/internal/stats"
	"github.com/lepinkainen/bookdash/internal/submit"
)

// Describer returns metadata for a title without failing.
type Describer interface {
	Describe(ctx context.Context, title string) lookup.Metadata
}

// Options wires a session.
type Options struct {
	Catalog  *catalog.Store
	Ratings  ratings.Store
	Lookup   Describer
	Identity submit.IdentityFunc
}

// Match is one search hit.
type Match struct {
	BookIndex int    `json:"book_index"`
	Name      string `json:"name"`
	Author    string `json:"author"`
}

// BookDetails describes a selected book.
type BookDetails struct {
	BookIndex int
	Name      string
	Author    string
	Score     sql.NullFloat64
	Rating    sql.NullFloat64
	Metadata  *lookup.Metadata
}

// Session is a loaded catalog plus a live ratings store. Every read joins
// the catalog with the ratings as they are at that moment.
type Session struct {
	entries []catalog.Entry
	ratings ratings.Store
	lookup  Describer
	flow    *submit.Flow
}

// New loads the catalog and checks that the ratings can be read. Load errors
// are returned unchanged so callers can test for NotFoundError and
// ParseError.
func New(ctx context.Context, opts Options) (*Session, error) {
	if opts.Catalog == nil || opts.Ratings == nil {
		return nil, fmt.Errorf("dashboard session needs a catalog and a ratings store")
	}

	entries, err := opts.Catalog.Load(ctx)
	if err != nil {
		return nil, err
	}

	rs, err := opts.Ratings.Load(ctx)
	if err != nil {
		return nil, err
	}

	slog.Info("Session loaded", "books", len(entries), "ratings", len(rs))
	return &Session{
		entries: entries,
		ratings: opts.Ratings,
		lookup:  opts.Lookup,
		flow:    submit.NewFlow(opts.Ratings, opts.Identity),
	}, nil
}

// Catalog returns the loaded catalog entries.
func (s *Session) Catalog() []catalog.Entry {
	return s.entries
}

// Books joins the catalog with the current ratings.
func (s *Session) Books(ctx context.Context) ([]books.JoinedBook, error) {
	rs, err := s.ratings.Load(ctx)
	if err != nil {
		return nil, err
	}
	return books.Join(s.entries, rs), nil
}

// Summary computes the statistics views over the current ratings.
func (s *Session) Summary(ctx context.Context, n int) (stats.Summary, error) {
	joined, err := s.Books(ctx)
	if err != nil {
		return stats.Summary{}, err
	}
	return stats.Summarize(s.entries, joined, n), nil
}

// SearchByTitle finds rated books whose title contains term, ignoring case.
func (s *Session) SearchByTitle(ctx context.Context, term string) ([]Match, error) {
	return s.search(ctx, term, func(b books.JoinedBook) string { return b.Name })
}

// SearchByAuthor finds rated books whose author contains term, ignoring case.
func (s *Session) SearchByAuthor(ctx context.Context, term string) ([]Match, error) {
	return s.search(ctx, term, func(b books.JoinedBook) string { return b.Author })
}

// search scans the joined view, so books nobody rated are never found. Each
// book appears once, in the order of its first joined row.
func (s *Session) search(ctx context.Context, term string, field func(books.JoinedBook) string) ([]Match, error) {
	joined, err := s.Books(ctx)
	if err != nil {
		return nil, err
	}

	needle := strings.ToLower(strings.TrimSpace(term))
	seen := make(map[int]bool)
	matches := make([]Match, 0)
	for _, b := range joined {
		if seen[b.Index] || !strings.Contains(strings.ToLower(field(b)), needle) {
			continue
		}
		seen[b.Index] = true
		matches = append(matches, Match{BookIndex: b.Index, Name: b.Name, Author: b.Author})
	}

	slog.Debug("Search finished", "term", term, "matches", len(matches))
	return matches, nil
}

// Select returns the details of the first joined row for bookIndex.
func (s *Session) Select(ctx context.Context, bookIndex int) (*BookDetails, error) {
	joined, err := s.Books(ctx)
	if err != nil {
		return nil, err
	}

	for _, b := range joined {
		if b.Index == bookIndex {
			return &BookDetails{
				BookIndex: b.Index,
				Name:      b.Name,
				Author:    b.Author,
				Score:     b.Score,
				Rating:    b.Rating,
			}, nil
		}
	}
	return nil, apperrors.NewNotFoundError("book "+strconv.Itoa(bookIndex), nil)
}

// Details selects a book and attaches its metadata. Metadata lookups never
// fail; without a lookup client the summary is the placeholder.
func (s *Session) Details(ctx context.Context, bookIndex int) (*BookDetails, error) {
	details, err := s.Select(ctx, bookIndex)
	if err != nil {
		return nil, err
	}

	md := lookup.Metadata{Summary: lookup.NoSummary}
	if s.lookup != nil {
		md = s.lookup.Describe(ctx, details.Name)
	}
	details.Metadata = &md
	return details, nil
}

// Submit records a rating for bookIndex. It does not depend on metadata
// lookups.
func (s *Session) Submit(ctx context.Context, bookIndex int, value float64) (submit.Result, error) {
	return s.flow.Submit(ctx, bookIndex, value)
}
