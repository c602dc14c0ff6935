// Package report renders statistics summaries for the terminal or for other
// programs.
package report

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"io"
	"math"

	"gopkg.in/yaml.v3"

	"github.com/lepinkainen/bookdash/internal/catalog"
	"github.com/lepinkainen/bookdash/internal/stats"
)

// Output formats.
const (
	FormatText = "text"
	FormatJSON = "json"
	FormatYAML = "yaml"
)

// Formats lists the supported output formats.
var Formats = []string{FormatText, FormatJSON, FormatYAML}

// Book is the serialized form of a catalog entry. Missing values are null.
type Book struct {
	Index     int      `json:"index" yaml:"index"`
	Name      string   `json:"name" yaml:"name"`
	Author    string   `json:"author" yaml:"author"`
	Score     *float64 `json:"score" yaml:"score"`
	VoteCount *int64   `json:"vote_count" yaml:"vote_count"`
}

// Correlation is one cell of the correlation matrix. Value is null when the
// correlation is undefined.
type Correlation struct {
	X     string   `json:"x" yaml:"x"`
	Y     string   `json:"y" yaml:"y"`
	Value *float64 `json:"value" yaml:"value"`
}

// Document is the serialized form of a stats.Summary.
type Document struct {
	CatalogSize       int                  `json:"catalog_size" yaml:"catalog_size"`
	RatingRows        int                  `json:"rating_rows" yaml:"rating_rows"`
	ImputedRatings    int                  `json:"imputed_ratings" yaml:"imputed_ratings"`
	MeanRating        *float64             `json:"mean_rating" yaml:"mean_rating"`
	TopByScore        []Book               `json:"top_by_score" yaml:"top_by_score"`
	TopByVotes        []Book               `json:"top_by_votes" yaml:"top_by_votes"`
	TopAuthorsByScore []stats.AuthorStat   `json:"top_authors_by_score" yaml:"top_authors_by_score"`
	TopAuthorsByBooks []stats.AuthorStat   `json:"top_authors_by_books" yaml:"top_authors_by_books"`
	MultiTitleAuthors []string             `json:"multi_title_authors" yaml:"multi_title_authors"`
	Distribution      []stats.RatingBucket `json:"rating_distribution" yaml:"rating_distribution"`
	AuthorShares      []stats.AuthorShare  `json:"author_shares" yaml:"author_shares"`
	Correlations      []Correlation        `json:"correlations" yaml:"correlations"`
}

// NewDocument converts a summary into its serializable form.
func NewDocument(s stats.Summary) Document {
	doc := Document{
		CatalogSize:       s.CatalogSize,
		RatingRows:        s.RatingRows,
		ImputedRatings:    s.ImputedRatings,
		TopByScore:        newBooks(s.TopByScore),
		TopByVotes:        newBooks(s.TopByVotes),
		TopAuthorsByScore: nonNil(s.TopAuthorsByScore),
		TopAuthorsByBooks: nonNil(s.TopAuthorsByBooks),
		MultiTitleAuthors: nonNil(s.MultiTitleAuthors),
		Distribution:      nonNil(s.Distribution),
		AuthorShares:      nonNil(s.AuthorShares),
		Correlations:      make([]Correlation, 0),
	}
	if s.HasRatings {
		mean := s.MeanRating
		doc.MeanRating = &mean
	}

	for i, x := range s.Correlations.Columns {
		for j, y := range s.Correlations.Columns {
			c := Correlation{X: x, Y: y}
			if v := s.Correlations.Values[i][j]; !math.IsNaN(v) {
				c.Value = &v
			}
			doc.Correlations = append(doc.Correlations, c)
		}
	}
	return doc
}

// NewBook converts a catalog entry.
func NewBook(e catalog.Entry) Book {
	return Book{
		Index:     e.Index,
		Name:      e.Name,
		Author:    e.Author,
		Score:     floatPtr(e.Score),
		VoteCount: intPtr(e.VoteCount),
	}
}

func newBooks(entries []catalog.Entry) []Book {
	result := make([]Book, len(entries))
	for i, e := range entries {
		result[i] = NewBook(e)
	}
	return result
}

func floatPtr(v sql.NullFloat64) *float64 {
	if !v.Valid {
		return nil
	}
	return &v.Float64
}

func intPtr(v sql.NullInt64) *int64 {
	if !v.Valid {
		return nil
	}
	return &v.Int64
}

func nonNil[T any](items []T) []T {
	if items == nil {
		return []T{}
	}
	return items
}

// Write renders the summary in the given format.
func Write(w io.Writer, format string, s stats.Summary) error {
	switch format {
	case FormatText, "":
		return WriteText(w, s)
	case FormatJSON:
		encoder := json.NewEncoder(w)
		encoder.SetIndent("", "  ")
		if err := encoder.Encode(NewDocument(s)); err != nil {
			return fmt.Errorf("failed to encode JSON report: %w", err)
		}
		return nil
	case FormatYAML:
		encoder := yaml.NewEncoder(w)
		encoder.SetIndent(2)
		if err := encoder.Encode(NewDocument(s)); err != nil {
			return fmt.Errorf("failed to encode YAML report: %w", err)
		}
		return encoder.Close()
	default:
		return fmt.Errorf("unknown report format %q", format)
	}
}
