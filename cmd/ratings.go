package cmd

import (
	"context"
	"fmt"

	"github.com/lepinkainen/bookdash/internal/config"
	"github.com/lepinkainen/bookdash/internal/ratings"
)

// MigrateCmd copies the ratings CSV into a SQLite ratings database
type MigrateCmd struct {
	To string `help:"SQLite ratings database to create or extend (defaults to ratings.dbfile)" type:"path"`
}

func (m *MigrateCmd) Run(ctx context.Context, cfg *config.Config) error {
	source := ratings.NewCSVStore(cfg.Data.RatingsFile)
	rs, err := source.Load(ctx)
	if err != nil {
		return err
	}

	target := cfg.Ratings.DBFile
	if m.To != "" {
		target = m.To
	}

	db, err := ratings.CreateSQLite(target)
	if err != nil {
		return err
	}
	defer func() { _ = db.Close() }()

	inserted, err := db.Import(ctx, rs)
	if err != nil {
		return err
	}

	fmt.Fprintf(output, "Imported %d of %d ratings from %s into %s\n", inserted, len(rs), source.Path(), target)
	if inserted < len(rs) {
		fmt.Fprintf(output, "%d ratings were already present or duplicated\n", len(rs)-inserted)
	}
	return nil
}
