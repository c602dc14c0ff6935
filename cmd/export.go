package cmd

import (
	"context"
	"fmt"

	"github.com/lepinkainen/bookdash/internal/config"
	"github.com/lepinkainen/bookdash/internal/datastore"
	"github.com/lepinkainen/bookdash/internal/fileutil"
	"github.com/lepinkainen/bookdash/internal/stats"
)

// ExportCmd exports the joined view and author statistics
type ExportCmd struct {
	DB           string `help:"SQLite database to export into (defaults to datastore.dbfile)" xor:"target" type:"path"`
	DatasetteURL string `help:"Datasette instance to export into (defaults to datastore.datasette_url)" xor:"target"`
	Database     string `help:"Datasette database name (defaults to datastore.database)"`
	JSON         string `help:"Also write the joined view to this JSON file" type:"path"`
	Overwrite    bool   `help:"Overwrite an existing JSON file"`
}

func (e *ExportCmd) Run(ctx context.Context, cfg *config.Config) error {
	session, cleanup, err := openSession(ctx, cfg, sessionOptions{})
	defer cleanup()
	if err != nil {
		return err
	}

	joined, err := session.Books(ctx)
	if err != nil {
		return err
	}

	store, target := e.store(cfg)
	if err := store.Connect(); err != nil {
		return err
	}
	defer func() { _ = store.Close() }()

	database := cfg.Datastore.Database
	if e.Database != "" {
		database = e.Database
	}

	result, err := datastore.Export(ctx, store, database, joined, stats.AuthorStats(joined))
	if err != nil {
		return err
	}

	fmt.Fprintf(output, "Exported %d joined rows and %d authors to %s\n", result.JoinedBooks, result.AuthorStats, target)

	if e.JSON != "" {
		written, err := fileutil.WriteJSONFile(datastore.ToRecords(joined), e.JSON, e.Overwrite)
		if err != nil {
			return err
		}
		if written {
			fmt.Fprintf(output, "Wrote %d joined rows to %s\n", len(joined), e.JSON)
		}
	}
	return nil
}

// store picks the export target: an explicit flag wins, then a configured
// Datasette URL, then the SQLite file.
func (e *ExportCmd) store(cfg *config.Config) (datastore.Store, string) {
	switch {
	case e.DB != "":
		return datastore.NewSQLiteStore(e.DB), e.DB
	case e.DatasetteURL != "":
		return datastore.NewDatasetteClient(e.DatasetteURL, cfg.Datastore.DatasetteToken), e.DatasetteURL
	case cfg.Datastore.DatasetteURL != "":
		return datastore.NewDatasetteClient(cfg.Datastore.DatasetteURL, cfg.Datastore.DatasetteToken), cfg.Datastore.DatasetteURL
	default:
		return datastore.NewSQLiteStore(cfg.Datastore.DBFile), cfg.Datastore.DBFile
	}
}
