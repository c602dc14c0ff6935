package report

import (
	"database/sql"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/lepinkainen/bookdash/internal/catalog"
	"github.com/lepinkainen/bookdash/internal/stats"
)

var (
	sectionStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("214")).
			MarginTop(1)

	headerCellStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("110"))

	mutedStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("244"))
)

// WriteText renders the summary as aligned tables.
func WriteText(w io.Writer, s stats.Summary) error {
	var sections []string

	mean := "n/a"
	if s.HasRatings {
		mean = strconv.FormatFloat(s.MeanRating, 'f', 2, 64)
	}
	sections = append(sections, table("Overview",
		[]string{"Metric", "Value"},
		[][]string{
			{"Books in catalog", strconv.Itoa(s.CatalogSize)},
			{"Rating rows", strconv.Itoa(s.RatingRows)},
			{"Imputed ratings", strconv.Itoa(s.ImputedRatings)},
			{"Mean rating", mean},
		}))

	sections = append(sections,
		table("Top books by score", bookHeader, bookRows(s.TopByScore)),
		table("Top books by votes", bookHeader, bookRows(s.TopByVotes)),
		table("Top authors by total score", authorHeader, authorRows(s.TopAuthorsByScore)),
		table("Top authors by number of books", authorHeader, authorRows(s.TopAuthorsByBooks)),
	)

	multi := mutedStyle.Render("none")
	if len(s.MultiTitleAuthors) > 0 {
		multi = strings.Join(s.MultiTitleAuthors, ", ")
	}
	sections = append(sections, lipgloss.JoinVertical(lipgloss.Left,
		sectionStyle.Render("Authors with more than one rated book"), multi))

	distribution := make([][]string, len(s.Distribution))
	for i, b := range s.Distribution {
		distribution[i] = []string{formatFloat(b.Rating), strconv.Itoa(b.Count), strings.Repeat("#", min(b.Count, 50))}
	}
	sections = append(sections, table("Rating distribution", []string{"Rating", "Count", ""}, distribution))

	shares := make([][]string, len(s.AuthorShares))
	for i, a := range s.AuthorShares {
		shares[i] = []string{a.Author, strconv.Itoa(a.Count), fmt.Sprintf("%.1f%%", a.Percent)}
	}
	sections = append(sections, table("Rating share of top authors", []string{"Author", "Ratings", "Share"}, shares))

	corr := make([][]string, len(s.Correlations.Columns))
	for i, name := range s.Correlations.Columns {
		row := []string{name}
		for _, v := range s.Correlations.Values[i] {
			if math.IsNaN(v) {
				row = append(row, "n/a")
				continue
			}
			row = append(row, strconv.FormatFloat(v, 'f', 2, 64))
		}
		corr[i] = row
	}
	sections = append(sections, table("Correlation matrix", append([]string{""}, s.Correlations.Columns...), corr))

	_, err := fmt.Fprintln(w, lipgloss.JoinVertical(lipgloss.Left, sections...))
	return err
}

var (
	bookHeader   = []string{"#", "Book", "Author", "Score", "Votes"}
	authorHeader = []string{"Author", "Books", "Total score"}
)

func bookRows(entries []catalog.Entry) [][]string {
	rows := make([][]string, len(entries))
	for i, e := range entries {
		rows[i] = []string{
			strconv.Itoa(e.Index),
			e.Name,
			e.Author,
			nullFloat(e.Score),
			nullInt(e.VoteCount),
		}
	}
	return rows
}

func authorRows(authors []stats.AuthorStat) [][]string {
	rows := make([][]string, len(authors))
	for i, a := range authors {
		rows[i] = []string{a.Author, strconv.Itoa(a.NumberOfBooks), formatFloat(a.TotalScore)}
	}
	return rows
}

// table renders a titled table with columns padded to their widest cell.
func table(title string, header []string, rows [][]string) string {
	if len(rows) == 0 {
		return lipgloss.JoinVertical(lipgloss.Left, sectionStyle.Render(title), mutedStyle.Render("no data"))
	}

	widths := make([]int, len(header))
	for i, h := range header {
		widths[i] = lipgloss.Width(h)
	}
	for _, row := range rows {
		for i, cell := range row {
			if i < len(widths) {
				widths[i] = max(widths[i], lipgloss.Width(cell))
			}
		}
	}

	lines := []string{sectionStyle.Render(title), headerCellStyle.Render(formatRow(header, widths))}
	for _, row := range rows {
		lines = append(lines, formatRow(row, widths))
	}
	return lipgloss.JoinVertical(lipgloss.Left, lines...)
}

func formatRow(cells []string, widths []int) string {
	padded := make([]string, len(cells))
	for i, cell := range cells {
		padded[i] = cell + strings.Repeat(" ", widths[i]-lipgloss.Width(cell))
	}
	return strings.TrimRight(strings.Join(padded, "  "), " ")
}

func formatFloat(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}

func nullFloat(v sql.NullFloat64) string {
	if !v.Valid {
		return "-"
	}
	return formatFloat(v.Float64)
}

func nullInt(v sql.NullInt64) string {
	if !v.Valid {
		return "-"
	}
	return strconv.FormatInt(v.Int64, 10)
}
