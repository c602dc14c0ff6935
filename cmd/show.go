package cmd

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"strconv"

	"github.com/charmbracelet/lipgloss"

	"github.com/lepinkainen/bookdash/internal/config"
	"github.com/lepinkainen/bookdash/internal/fileutil"
)

var (
	titleStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("214"))
	labelStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("244")).Width(9)
)

var downloadCover = fileutil.DownloadCover

// ShowCmd shows a single book
type ShowCmd struct {
	BookIndex    int    `arg:"" help:"Catalog index of the book"`
	CoverDir     string `help:"Download the cover into this directory" type:"path"`
	UpdateCovers bool   `help:"Re-download the cover even if it already exists"`
}

func (s *ShowCmd) Run(ctx context.Context, cfg *config.Config) error {
	session, cleanup, err := openSession(ctx, cfg, sessionOptions{lookup: true})
	defer cleanup()
	if err != nil {
		return err
	}

	details, err := session.Details(ctx, s.BookIndex)
	if err != nil {
		return err
	}
	md := details.Metadata

	lines := []string{
		titleStyle.Render(details.Name),
		field("Author", details.Author),
		field("Score", nullString(details.Score)),
		field("Rating", nullString(details.Rating)),
	}
	if md.CoverURL != "" {
		lines = append(lines, field("Cover", md.CoverURL))
	}
	if md.Source != "" {
		lines = append(lines, field("Source", md.Source))
	}
	lines = append(lines, "", md.Summary)

	if s.CoverDir != "" && md.CoverURL != "" {
		result, err := downloadCover(ctx, fileutil.CoverDownloadOptions{
			URL:          md.CoverURL,
			OutputDir:    s.CoverDir,
			Filename:     fileutil.BuildCoverFilename(details.Name),
			UpdateCovers: s.UpdateCovers,
		})
		if err != nil {
			slog.Warn("Failed to download cover", "url", md.CoverURL, "error", err)
		} else if result != nil {
			lines = append(lines, "", field("Saved", result.LocalPath))
		}
	}

	_, err = fmt.Fprintln(output, lipgloss.JoinVertical(lipgloss.Left, lines...))
	return err
}

func field(label, value string) string {
	return lipgloss.JoinHorizontal(lipgloss.Top, labelStyle.Render(label), value)
}

func nullString(v sql.NullFloat64) string {
	if !v.Valid {
		return "n/a"
	}
	return strconv.FormatFloat(v.Float64, 'f', -1, 64)
}
