package cache

import (
	"fmt"
	"log/slog"
	"slices"
	"strings"

	"github.com/lepinkainen/bookdash/internal/config"
)

// InvalidateCacheCmd represents the cache invalidate subcommand
type InvalidateCacheCmd struct {
	Source string `arg:"" help:"Cache source to invalidate: googlebooks, openlibrary, all" required:""`
}

func (i *InvalidateCacheCmd) Run(cfg *config.Config) error {
	tables, err := tablesForSource(i.Source)
	if err != nil {
		return err
	}

	slog.Info("Invalidating cache", "source", i.Source, "database", cfg.Cache.DBFile)

	cacheInstance, err := Open(cfg.Cache.DBFile)
	if err != nil {
		return fmt.Errorf("failed to open cache database: %w", err)
	}
	defer func() { _ = cacheInstance.Close() }()

	for _, table := range tables {
		rowsDeleted, err := cacheInstance.InvalidateSource(table)
		if err != nil {
			return fmt.Errorf("failed to invalidate cache: %w", err)
		}
		slog.Info("Cache invalidated", "table", table, "rows_deleted", rowsDeleted)
	}
	return nil
}

// PruneCacheCmd represents the cache prune subcommand
type PruneCacheCmd struct{}

func (p *PruneCacheCmd) Run(cfg *config.Config) error {
	cacheInstance, err := Open(cfg.Cache.DBFile)
	if err != nil {
		return fmt.Errorf("failed to open cache database: %w", err)
	}
	defer func() { _ = cacheInstance.Close() }()

	tables, _ := tablesForSource("all")
	for _, table := range tables {
		rowsDeleted, err := cacheInstance.ClearExpired(table)
		if err != nil {
			return err
		}
		slog.Info("Expired cache entries removed", "table", table, "rows_deleted", rowsDeleted)
	}
	return nil
}

func tablesForSource(source string) ([]string, error) {
	if source == "all" {
		tables := make([]string, 0, len(SourceTables))
		for _, table := range SourceTables {
			tables = append(tables, table)
		}
		slices.Sort(tables)
		return tables, nil
	}

	table, ok := SourceTables[source]
	if !ok {
		names := make([]string, 0, len(SourceTables))
		for name := range SourceTables {
			names = append(names, name)
		}
		slices.Sort(names)
		return nil, fmt.Errorf("invalid cache source '%s'; valid sources are: %s, all", source, strings.Join(names, ", "))
	}
	return []string{table}, nil
}
