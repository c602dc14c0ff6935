package stats

import (
	"slices"

	"github.com/lepinkainen/bookdash/internal/books"
	"github.com/lepinkainen/bookdash/internal/catalog"
	"gonum.org/v1/gonum/stat"
)

// Summary bundles every statistics view of one session snapshot.
type Summary struct {
	CatalogSize       int
	RatingRows        int
	ImputedRatings    int
	MeanRating        float64
	HasRatings        bool
	TopByScore        []catalog.Entry
	TopByVotes        []catalog.Entry
	TopAuthorsByScore []AuthorStat
	TopAuthorsByBooks []AuthorStat
	MultiTitleAuthors []string
	Distribution      []RatingBucket
	AuthorShares      []AuthorShare
	Correlations      CorrelationMatrix
}

// Summarize computes all views with n as the length of the top-N lists.
func Summarize(entries []catalog.Entry, joined []books.JoinedBook, n int) Summary {
	authorStats := AuthorStats(joined)

	var present []float64
	imputed := 0
	for _, b := range joined {
		if b.RatingImputed {
			imputed++
		}
		if b.Rating.Valid {
			present = append(present, b.Rating.Float64)
		}
	}

	multi := make([]string, 0)
	for author := range AuthorsWithMultipleBooks(joined) {
		multi = append(multi, author)
	}
	slices.Sort(multi)

	summary := Summary{
		CatalogSize:       len(entries),
		RatingRows:        len(joined),
		ImputedRatings:    imputed,
		TopByScore:        TopByField(entries, FieldScore, n),
		TopByVotes:        TopByField(entries, FieldVoteCount, n),
		TopAuthorsByScore: TopAuthorsByTotalScore(authorStats, n),
		TopAuthorsByBooks: TopAuthorsByBookCount(authorStats, n),
		MultiTitleAuthors: multi,
		Distribution:      RatingDistribution(joined),
		AuthorShares:      TopAuthorShares(joined, n),
		Correlations:      Correlations(joined),
	}
	if len(present) > 0 {
		summary.HasRatings = true
		summary.MeanRating = stat.Mean(present, nil)
	}
	return summary
}
