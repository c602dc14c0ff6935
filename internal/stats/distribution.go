package stats

import (
	"cmp"
	"math"
	"slices"

	"github.com/lepinkainen/bookdash/internal/books"
	"gonum.org/v1/gonum/stat"
)

// RatingBucket counts joined rows with a given normalized rating.
type RatingBucket struct {
	Rating float64 `json:"rating" yaml:"rating"`
	Count  int     `json:"count" yaml:"count"`
}

// AuthorShare is an author's part of the rating rows among the top authors.
type AuthorShare struct {
	Author  string  `json:"author" yaml:"author"`
	Count   int     `json:"count" yaml:"count"`
	Percent float64 `json:"percent" yaml:"percent"`
}

// Correlation column names, in matrix order.
const (
	ColumnRating    = "Rating"
	ColumnVoteCount = "Number of Votes"
	ColumnScore     = "Score"
)

// CorrelationMatrix holds pairwise Pearson correlations. Values[i][j] is NaN
// when fewer than two rows have both columns or a column has no variance.
type CorrelationMatrix struct {
	Columns []string
	Values  [][]float64
}

// RatingDistribution counts rows per rating value, ascending by rating. Rows
// whose rating is still missing after normalization are not counted.
func RatingDistribution(joined []books.JoinedBook) []RatingBucket {
	counts := make(map[float64]int)
	for _, b := range joined {
		if b.Rating.Valid {
			counts[b.Rating.Float64]++
		}
	}

	result := make([]RatingBucket, 0, len(counts))
	for rating, count := range counts {
		result = append(result, RatingBucket{Rating: rating, Count: count})
	}
	slices.SortFunc(result, func(a, b RatingBucket) int {
		return cmp.Compare(a.Rating, b.Rating)
	})
	return result
}

// TopAuthorShares takes the n authors with the most rating rows and reports
// each one's percentage of the rows those n authors have together. Ties keep
// the order in which authors first appear.
func TopAuthorShares(joined []books.JoinedBook, n int) []AuthorShare {
	var order []string
	counts := make(map[string]int)
	for _, b := range joined {
		if _, seen := counts[b.Author]; !seen {
			order = append(order, b.Author)
		}
		counts[b.Author]++
	}

	shares := make([]AuthorShare, 0, len(order))
	for _, author := range order {
		shares = append(shares, AuthorShare{Author: author, Count: counts[author]})
	}
	slices.SortStableFunc(shares, func(a, b AuthorShare) int {
		return cmp.Compare(b.Count, a.Count)
	})
	shares = head(shares, n)

	total := 0
	for _, s := range shares {
		total += s.Count
	}
	for i := range shares {
		shares[i].Percent = 100 * float64(shares[i].Count) / float64(total)
	}
	return shares
}

// Correlations computes the Pearson correlation of Rating, Number of Votes
// and Score over the joined rows. Each pair uses the rows where both values
// are present.
func Correlations(joined []books.JoinedBook) CorrelationMatrix {
	columns := []string{ColumnRating, ColumnVoteCount, ColumnScore}
	values := func(b books.JoinedBook) [3]float64 {
		rating := math.NaN()
		if b.Rating.Valid {
			rating = b.Rating.Float64
		}
		score := math.NaN()
		if b.Score.Valid {
			score = b.Score.Float64
		}
		return [3]float64{rating, float64(b.VoteCount), score}
	}

	rows := make([][3]float64, len(joined))
	for i, b := range joined {
		rows[i] = values(b)
	}

	matrix := make([][]float64, len(columns))
	for i := range columns {
		matrix[i] = make([]float64, len(columns))
		for j := range columns {
			matrix[i][j] = pairCorrelation(rows, i, j)
		}
	}

	return CorrelationMatrix{Columns: columns, Values: matrix}
}

func pairCorrelation(rows [][3]float64, i, j int) float64 {
	var x, y []float64
	for _, row := range rows {
		if math.IsNaN(row[i]) || math.IsNaN(row[j]) {
			continue
		}
		x = append(x, row[i])
		y = append(y, row[j])
	}

	if len(x) < 2 || stat.Variance(x, nil) == 0 || stat.Variance(y, nil) == 0 {
		return math.NaN()
	}
	return stat.Correlation(x, y, nil)
}
