package report

import (
	"bytes"
	"database/sql"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/lepinkainen/bookdash/internal/catalog"
	"github.com/lepinkainen/bookdash/internal/stats"
	"github.com/lepinkainen/bookdash/internal/testutil"
)

func sampleSummary() stats.Summary {
	dune := catalog.Entry{
		Index:     1,
		Name:      "Dune",
		Author:    "Frank Herbert",
		Score:     sql.NullFloat64{Float64: 950, Valid: true},
		VoteCount: sql.NullInt64{Int64: 4000, Valid: true},
	}
	hyperion := catalog.Entry{
		Index:  2,
		Name:   "Hyperion",
		Author: "Dan Simmons",
		Score:  sql.NullFloat64{Float64: 870, Valid: true},
	}
	herbert := stats.AuthorStat{Author: "Frank Herbert", NumberOfBooks: 2, TotalScore: 1900}

	return stats.Summary{
		CatalogSize:       2,
		RatingRows:        3,
		ImputedRatings:    1,
		MeanRating:        4,
		HasRatings:        true,
		TopByScore:        []catalog.Entry{dune, hyperion},
		TopByVotes:        []catalog.Entry{dune},
		TopAuthorsByScore: []stats.AuthorStat{herbert},
		TopAuthorsByBooks: []stats.AuthorStat{herbert},
		MultiTitleAuthors: []string{"Frank Herbert"},
		Distribution:      []stats.RatingBucket{{Rating: 4, Count: 1}, {Rating: 5, Count: 2}},
		AuthorShares:      []stats.AuthorShare{{Author: "Frank Herbert", Count: 2, Percent: 100}},
		Correlations: stats.CorrelationMatrix{
			Columns: []string{stats.ColumnRating, stats.ColumnScore},
			Values:  [][]float64{{1, math.NaN()}, {math.NaN(), 1}},
		},
	}
}

func TestWrite_JSON(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Write(&buf, FormatJSON, sampleSummary()))

	testutil.NewGoldenHelper(t, "testdata").AssertGoldenJSON("summary.json", buf.Bytes())
}

func TestWrite_YAML(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Write(&buf, FormatYAML, sampleSummary()))

	var decoded Document
	require.NoError(t, yaml.Unmarshal(buf.Bytes(), &decoded))
	assert.Equal(t, 3, decoded.RatingRows)
	require.Len(t, decoded.TopByScore, 2)
	assert.Nil(t, decoded.TopByScore[1].VoteCount)
	assert.Equal(t, "Frank Herbert", decoded.TopAuthorsByScore[0].Author)
	assert.Equal(t, []string{"Frank Herbert"}, decoded.MultiTitleAuthors)
	require.Len(t, decoded.Correlations, 4)
	assert.Nil(t, decoded.Correlations[1].Value)
}

func TestWrite_Text(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Write(&buf, FormatText, sampleSummary()))

	out := buf.String()
	assert.Contains(t, out, "Top books by score")
	assert.Contains(t, out, "Dune")
	assert.Contains(t, out, "Hyperion")
	assert.Contains(t, out, "Mean rating")
	assert.Contains(t, out, "4.00")
	assert.Contains(t, out, "100.0%")
	assert.Contains(t, out, "n/a")
}

func TestWrite_EmptySummary(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Write(&buf, FormatJSON, stats.Summarize(nil, nil, 10)))
	assert.Contains(t, buf.String(), `"mean_rating": null`)
	assert.Contains(t, buf.String(), `"top_by_score": []`)

	buf.Reset()
	require.NoError(t, Write(&buf, FormatText, stats.Summary{}))
	assert.Contains(t, buf.String(), "no data")
}

func TestWrite_UnknownFormat(t *testing.T) {
	require.Error(t, Write(&bytes.Buffer{}, "xml", sampleSummary()))
}
