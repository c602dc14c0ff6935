package cmd

import (
	"context"
	"strconv"

	"github.com/lepinkainen/bookdash/internal/config"
	"github.com/lepinkainen/bookdash/internal/dashboard"
)

// RateCmd records a rating
type RateCmd struct {
	BookIndex int     `arg:"" help:"Catalog index of the book"`
	Value     float64 `arg:"" help:"Whole-number rating from 1 to 5"`
	UserID    int     `help:"User id to record the rating under (defaults to ratings.userid or a random id)"`
}

func (r *RateCmd) Run(ctx context.Context, cfg *config.Config) error {
	session, cleanup, err := openSession(ctx, cfg, sessionOptions{userID: r.UserID})
	defer cleanup()
	if err != nil {
		return err
	}

	match := dashboard.Match{BookIndex: r.BookIndex}
	if details, err := session.Select(ctx, r.BookIndex); err == nil {
		match.Name = details.Name
		match.Author = details.Author
	} else {
		match.Name = "book " + strconv.Itoa(r.BookIndex)
	}

	return submitRating(ctx, session, match, r.Value)
}
