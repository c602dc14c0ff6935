package cmd

import (
	"context"
	"io"
	"log/slog"

	"github.com/lepinkainen/bookdash/internal/cache"
	"github.com/lepinkainen/bookdash/internal/catalog"
	"github.com/lepinkainen/bookdash/internal/config"
	"github.com/lepinkainen/bookdash/internal/dashboard"
	"github.com/lepinkainen/bookdash/internal/lookup"
	"github.com/lepinkainen/bookdash/internal/ratings"
	"github.com/lepinkainen/bookdash/internal/submit"
)

// sessionOptions selects the optional collaborators of a session.
type sessionOptions struct {
	lookup bool
	userID int
}

// openSession wires a dashboard session from the configuration. The returned
// cleanup closes every store that was opened.
func openSession(ctx context.Context, cfg *config.Config, opts sessionOptions) (*dashboard.Session, func(), error) {
	var closers []io.Closer
	cleanup := func() {
		for i := len(closers) - 1; i >= 0; i-- {
			if err := closers[i].Close(); err != nil {
				slog.Warn("Failed to close store", "error", err)
			}
		}
	}

	store, err := ratings.Open(ratings.Options{Backend: cfg.Ratings.Backend, Path: ratingsPath(cfg)})
	if err != nil {
		return nil, cleanup, err
	}
	closers = append(closers, store)

	userID := cfg.Ratings.UserID
	if opts.userID != 0 {
		userID = opts.userID
	}
	var identity submit.IdentityFunc
	if userID != 0 {
		identity = submit.FixedIdentity(userID)
	}

	dashOpts := dashboard.Options{
		Catalog:  catalog.NewStore(cfg.Data.CatalogFile, catalog.Options{SkipInvalid: cfg.Data.SkipInvalid}),
		Ratings:  store,
		Identity: identity,
	}

	if opts.lookup && cfg.Lookup.Enabled {
		var cacheDB *cache.CacheDB
		if cfg.Cache.Enabled {
			cacheDB, err = cache.Open(cfg.Cache.DBFile)
			if err != nil {
				slog.Warn("Lookup cache unavailable, continuing without it", "error", err)
				cacheDB = nil
			} else {
				closers = append(closers, cacheDB)
			}
		}

		client, err := lookup.NewFromConfig(cfg.Lookup, cfg.Cache, cacheDB)
		if err != nil {
			return nil, cleanup, err
		}
		dashOpts.Lookup = client
	}

	session, err := dashboard.New(ctx, dashOpts)
	if err != nil {
		return nil, cleanup, err
	}
	return session, cleanup, nil
}

func ratingsPath(cfg *config.Config) string {
	if cfg.Ratings.Backend == ratings.BackendSQLite {
		return cfg.Ratings.DBFile
	}
	return cfg.Data.RatingsFile
}
