package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"math"

	"github.com/lepinkainen/bookdash/internal/config"
	"github.com/lepinkainen/bookdash/internal/dashboard"
	"github.com/lepinkainen/bookdash/internal/tui"
)

var (
	selectBook   = tui.Select
	promptRating = tui.PromptRating
)

// SearchCmd represents the search command and its subcommands
type SearchCmd struct {
	Title  SearchTitleCmd  `cmd:"" help:"Search by book title"`
	Author SearchAuthorCmd `cmd:"" help:"Search by author"`
}

// SearchFlags are shared by both search subcommands
type SearchFlags struct {
	Interactive bool    `short:"i" help:"Pick a match in an interactive list and rate it"`
	Rate        float64 `help:"Rating to submit for the single (or picked) match"`
	UserID      int     `help:"User id to record the rating under (defaults to ratings.userid or a random id)"`
}

// SearchTitleCmd searches by title
type SearchTitleCmd struct {
	Term string `arg:"" help:"Case-insensitive part of the title"`
	SearchFlags `embed:""`
}

// SearchAuthorCmd searches by author
type SearchAuthorCmd struct {
	Term string `arg:"" help:"Case-insensitive part of the author name"`
	SearchFlags `embed:""`
}

func (s *SearchTitleCmd) Run(ctx context.Context, cfg *config.Config) error {
	return runSearch(ctx, cfg, s.Term, s.SearchFlags, (*dashboard.Session).SearchByTitle)
}

func (s *SearchAuthorCmd) Run(ctx context.Context, cfg *config.Config) error {
	return runSearch(ctx, cfg, s.Term, s.SearchFlags, (*dashboard.Session).SearchByAuthor)
}

type searchFunc func(*dashboard.Session, context.Context, string) ([]dashboard.Match, error)

func runSearch(ctx context.Context, cfg *config.Config, term string, flags SearchFlags, search searchFunc) error {
	session, cleanup, err := openSession(ctx, cfg, sessionOptions{userID: flags.UserID})
	defer cleanup()
	if err != nil {
		return err
	}

	matches, err := search(session, ctx, term)
	if err != nil {
		return err
	}

	if !flags.Interactive {
		printMatches(term, matches)
		if flags.Rate == 0 {
			return nil
		}
		if len(matches) != 1 {
			return fmt.Errorf("--rate needs exactly one match, %q matched %d books", term, len(matches))
		}
		return submitRating(ctx, session, matches[0], flags.Rate)
	}

	result, err := selectBook(term, matches)
	if err != nil {
		return fmt.Errorf("book selection failed: %w", err)
	}
	if result.Action != tui.ActionSelected || result.Selection == nil {
		slog.Info("No book selected", "term", term, "matches", len(matches))
		return nil
	}
	match := *result.Selection

	value := flags.Rate
	if value == 0 {
		details, err := session.Select(ctx, match.BookIndex)
		if err != nil {
			return err
		}
		initial := 3
		if details.Rating.Valid {
			initial = int(math.Round(details.Rating.Float64))
		}

		rating, err := promptRating(match.Name, initial)
		if err != nil {
			return fmt.Errorf("rating prompt failed: %w", err)
		}
		if rating.Action != tui.ActionSelected {
			slog.Info("Rating skipped", "book_index", match.BookIndex)
			return nil
		}
		value = float64(rating.Value)
	}

	return submitRating(ctx, session, match, value)
}

func printMatches(term string, matches []dashboard.Match) {
	if len(matches) == 0 {
		fmt.Fprintf(output, "No rated books match %q\n", term)
		return
	}
	for _, m := range matches {
		fmt.Fprintf(output, "%5d  %s by %s\n", m.BookIndex, m.Name, m.Author)
	}
}

func submitRating(ctx context.Context, session *dashboard.Session, match dashboard.Match, value float64) error {
	result, err := session.Submit(ctx, match.BookIndex, value)
	if err != nil {
		return err
	}

	verb := "Updated"
	if result.Created {
		verb = "Saved"
	}
	fmt.Fprintf(output, "%s rating %g for %q (user %d)\n", verb, value, match.Name, result.UserID)
	return nil
}
