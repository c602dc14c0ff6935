// Package stats derives rankings and aggregates from the catalog and the
// joined ratings view. Every function is pure and returns empty results for
// empty input.
package stats

import (
	"cmp"
	"database/sql"
	"slices"

	"github.com/lepinkainen/bookdash/internal/books"
	"github.com/lepinkainen/bookdash/internal/catalog"
)

// Field selects the catalog column TopByField ranks by.
type Field int

const (
	FieldScore Field = iota
	FieldVoteCount
)

func (f Field) String() string {
	switch f {
	case FieldScore:
		return "score"
	case FieldVoteCount:
		return "votes"
	default:
		return "unknown"
	}
}

// AuthorStat aggregates the joined rows of one author. NumberOfBooks counts
// rating rows, so a book rated three times counts three times.
type AuthorStat struct {
	Author        string  `json:"author" yaml:"author" db:"author"`
	NumberOfBooks int     `json:"number_of_books" yaml:"number_of_books" db:"number_of_books"`
	TotalScore    float64 `json:"total_score" yaml:"total_score" db:"total_score"`
}

// TopByField returns at most n entries sorted descending by field. Ties keep
// catalog order and entries without a value sort last.
func TopByField(entries []catalog.Entry, field Field, n int) []catalog.Entry {
	sorted := slices.Clone(entries)
	slices.SortStableFunc(sorted, func(a, b catalog.Entry) int {
		return compareDesc(fieldValue(a, field), fieldValue(b, field))
	})
	return head(sorted, n)
}

func fieldValue(e catalog.Entry, field Field) sql.NullFloat64 {
	switch field {
	case FieldVoteCount:
		return sql.NullFloat64{Float64: float64(e.VoteCount.Int64), Valid: e.VoteCount.Valid}
	default:
		return e.Score
	}
}

// compareDesc orders present values descending and missing values last.
func compareDesc(a, b sql.NullFloat64) int {
	switch {
	case a.Valid && b.Valid:
		return cmp.Compare(b.Float64, a.Float64)
	case a.Valid:
		return -1
	case b.Valid:
		return 1
	default:
		return 0
	}
}

// AuthorStats groups the joined view by author, in ascending author order.
// TotalScore sums the catalog Score of every row; missing scores add nothing.
func AuthorStats(joined []books.JoinedBook) []AuthorStat {
	byAuthor := make(map[string]*AuthorStat)
	for _, b := range joined {
		stat, ok := byAuthor[b.Author]
		if !ok {
			stat = &AuthorStat{Author: b.Author}
			byAuthor[b.Author] = stat
		}
		stat.NumberOfBooks++
		if b.Score.Valid {
			stat.TotalScore += b.Score.Float64
		}
	}

	result := make([]AuthorStat, 0, len(byAuthor))
	for _, stat := range byAuthor {
		result = append(result, *stat)
	}
	slices.SortFunc(result, func(a, b AuthorStat) int {
		return cmp.Compare(a.Author, b.Author)
	})
	return result
}

// TopAuthorsByTotalScore returns at most n authors by descending total score.
func TopAuthorsByTotalScore(stats []AuthorStat, n int) []AuthorStat {
	sorted := slices.Clone(stats)
	slices.SortStableFunc(sorted, func(a, b AuthorStat) int {
		return cmp.Compare(b.TotalScore, a.TotalScore)
	})
	return head(sorted, n)
}

// TopAuthorsByBookCount returns at most n authors by descending row count.
func TopAuthorsByBookCount(stats []AuthorStat, n int) []AuthorStat {
	sorted := slices.Clone(stats)
	slices.SortStableFunc(sorted, func(a, b AuthorStat) int {
		return cmp.Compare(b.NumberOfBooks, a.NumberOfBooks)
	})
	return head(sorted, n)
}

// AuthorsWithMultipleBooks returns the authors with more than one joined row.
func AuthorsWithMultipleBooks(joined []books.JoinedBook) map[string]struct{} {
	counts := make(map[string]int)
	for _, b := range joined {
		counts[b.Author]++
	}

	result := make(map[string]struct{})
	for author, count := range counts {
		if count > 1 {
			result[author] = struct{}{}
		}
	}
	return result
}

// FilterByAuthors keeps the joined rows whose author is in authors.
func FilterByAuthors(joined []books.JoinedBook, authors map[string]struct{}) []books.JoinedBook {
	result := make([]books.JoinedBook, 0)
	for _, b := range joined {
		if _, ok := authors[b.Author]; ok {
			result = append(result, b)
		}
	}
	return result
}

func head[T any](items []T, n int) []T {
	if n < 0 {
		n = 0
	}
	if n < len(items) {
		return items[:n]
	}
	return items
}
