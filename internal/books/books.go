// Package books joins ratings with catalog metadata into the working view
// every statistic is computed from.
package books

import (
	"database/sql"
	"log/slog"
	"slices"

	"github.com/lepinkainen/bookdash/internal/catalog"
	"github.com/lepinkainen/bookdash/internal/ratings"
)

// JoinedBook is one rating enriched with the catalog entry it refers to.
// Rating holds the normalized score: a missing rating is replaced by the
// median of the present ones (RatingImputed reports this) and stays invalid
// only when no rating is present at all. VoteCount is never missing after
// normalization.
type JoinedBook struct {
	Index         int             `db:"book_index"`
	Name          string          `db:"name"`
	Author        string          `db:"author"`
	Score         sql.NullFloat64 `db:"score"`
	VoteCount     int64           `db:"vote_count"`
	UserID        int             `db:"user_id"`
	Rating        sql.NullFloat64 `db:"rating"`
	RatingImputed bool            `db:"rating_imputed"`
}

// Join inner-joins ratings with the catalog on bookIndex. The result has one
// row per rating whose book exists, in ratings order; ratings that refer to
// unknown books are dropped.
func Join(entries []catalog.Entry, rs []ratings.Rating) []JoinedBook {
	byIndex := make(map[int]catalog.Entry, len(entries))
	for _, e := range entries {
		if _, ok := byIndex[e.Index]; !ok {
			byIndex[e.Index] = e
		}
	}

	joined := make([]JoinedBook, 0, len(rs))
	dropped := 0
	for _, r := range rs {
		entry, ok := byIndex[r.BookIndex]
		if !ok {
			dropped++
			continue
		}
		joined = append(joined, JoinedBook{
			Index:     entry.Index,
			Name:      entry.Name,
			Author:    entry.Author,
			Score:     entry.Score,
			VoteCount: voteCount(entry.VoteCount),
			UserID:    r.UserID,
			Rating:    r.Score,
		})
	}

	if dropped > 0 {
		slog.Debug("Ratings without a catalog entry dropped from join", "count", dropped)
	}

	normalizeRatings(joined)
	return joined
}

func voteCount(v sql.NullInt64) int64 {
	if !v.Valid {
		return 0
	}
	return v.Int64
}

// normalizeRatings fills missing ratings with the median of the present ones.
func normalizeRatings(joined []JoinedBook) {
	present := make([]float64, 0, len(joined))
	for _, b := range joined {
		if b.Rating.Valid {
			present = append(present, b.Rating.Float64)
		}
	}

	median, ok := Median(present)
	if !ok {
		return
	}

	for i := range joined {
		if !joined[i].Rating.Valid {
			joined[i].Rating = sql.NullFloat64{Float64: median, Valid: true}
			joined[i].RatingImputed = true
		}
	}
}

// Median returns the median of values, averaging the two middle values for an
// even count. ok is false for an empty slice.
func Median(values []float64) (median float64, ok bool) {
	if len(values) == 0 {
		return 0, false
	}

	sorted := slices.Clone(values)
	slices.Sort(sorted)

	mid := len(sorted) / 2
	if len(sorted)%2 == 1 {
		return sorted[mid], true
	}
	return (sorted[mid-1] + sorted[mid]) / 2, true
}
