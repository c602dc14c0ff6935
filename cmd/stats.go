package cmd

import (
	"context"
	"fmt"
	"strings"

	"github.com/lepinkainen/bookdash/internal/config"
	"github.com/lepinkainen/bookdash/internal/report"
	"github.com/lepinkainen/bookdash/internal/stats"
)

// StatsCmd prints the statistics views
type StatsCmd struct {
	Top        int    `short:"n" help:"Number of entries in each top list (defaults to stats.top)"`
	Format     string `short:"F" help:"Output format: text, json or yaml" enum:"text,json,yaml" default:"text"`
	MultiTitle bool   `help:"Only count ratings of authors with more than one rated book"`
}

func (s *StatsCmd) Run(ctx context.Context, cfg *config.Config) error {
	top := cfg.Stats.Top
	if s.Top != 0 {
		top = s.Top
	}
	if top <= 0 {
		return fmt.Errorf("--top must be positive, got %d", top)
	}

	session, cleanup, err := openSession(ctx, cfg, sessionOptions{})
	defer cleanup()
	if err != nil {
		return err
	}

	joined, err := session.Books(ctx)
	if err != nil {
		return err
	}
	if s.MultiTitle {
		joined = stats.FilterByAuthors(joined, stats.AuthorsWithMultipleBooks(joined))
	}

	summary := stats.Summarize(session.Catalog(), joined, top)
	if err := report.Write(output, strings.ToLower(s.Format), summary); err != nil {
		return fmt.Errorf("failed to write report: %w", err)
	}
	return nil
}
