package cmd

import (
	"context"
	"io"
	"log/slog"
	"os"
	"os/signal"

	"github.com/alecthomas/kong"
	"github.com/google/uuid"
	"github.com/lepinkainen/humanlog"
	"github.com/spf13/viper"

	"github.com/lepinkainen/bookdash/internal/cache"
	"github.com/lepinkainen/bookdash/internal/config"
)

// output receives everything commands print for the user. Logs go to stderr.
var output io.Writer = os.Stdout

// CLI represents the complete command structure for the bookdash application
type CLI struct {
	// Global flags
	Debug       bool   `help:"Enable debug logging"`
	ConfigDir   string `help:"Directory containing config.yaml and .env" default:"." type:"path"`
	CatalogFile string `name:"catalog" help:"Path to the books catalog CSV (overrides data.catalog)"`
	RatingsFile string `name:"ratings-file" help:"Path to the ratings CSV (overrides data.ratings)"`
	Backend     string `help:"Ratings backend: csv or sqlite (overrides ratings.backend)"`

	Stats   StatsCmd   `cmd:"" help:"Show catalog and rating statistics"`
	Search  SearchCmd  `cmd:"" help:"Search rated books by title or author"`
	Show    ShowCmd    `cmd:"" help:"Show a book with its cover and summary"`
	Rate    RateCmd    `cmd:"" help:"Rate a book from 1 to 5"`
	Export  ExportCmd  `cmd:"" help:"Export the joined view and author statistics to SQLite or Datasette"`
	Ratings RatingsCmd `cmd:"" help:"Manage the ratings store"`
	Cache   CacheCmd   `cmd:"" help:"Manage the metadata lookup cache"`
}

// RatingsCmd groups the ratings store subcommands
type RatingsCmd struct {
	Migrate MigrateCmd `cmd:"" help:"Copy the ratings CSV into a SQLite ratings database"`
}

// CacheCmd groups the cache subcommands
type CacheCmd struct {
	Invalidate cache.InvalidateCacheCmd `cmd:"" help:"Invalidate cached metadata for a source"`
	Prune      cache.PruneCacheCmd      `cmd:"" help:"Remove expired cache entries"`
}

func newParser(cli *CLI, options ...kong.Option) (*kong.Kong, error) {
	options = append([]kong.Option{
		kong.Name("bookdash"),
		kong.Description("Explore a books catalog, its ratings and the authors behind them."),
		kong.UsageOnError(),
	}, options...)
	return kong.New(cli, options...)
}

// Execute runs the Kong-based CLI
func Execute() {
	var cli CLI
	parser, err := newParser(&cli)
	if err != nil {
		panic(err)
	}

	kctx, err := parser.Parse(os.Args[1:])
	parser.FatalIfErrorf(err)

	initLogging(os.Stderr, cli.Debug)

	cfg, err := loadConfig(viper.GetViper(), &cli)
	if err != nil {
		slog.Error("Failed to load configuration", "error", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	kctx.BindTo(ctx, (*context.Context)(nil))

	if err := kctx.Run(cfg); err != nil {
		slog.Error("Command failed", "error", err)
		stop()
		os.Exit(1)
	}
}

// loadConfig resolves the configuration and applies the global flag
// overrides on top of it.
func loadConfig(v *viper.Viper, cli *CLI) (*config.Config, error) {
	if err := config.Init(v, cli.ConfigDir); err != nil {
		return nil, err
	}

	if cli.CatalogFile != "" {
		v.Set("data.catalog", cli.CatalogFile)
	}
	if cli.RatingsFile != "" {
		v.Set("data.ratings", cli.RatingsFile)
	}
	if cli.Backend != "" {
		v.Set("ratings.backend", cli.Backend)
	}

	return config.Load(v)
}

func initLogging(w io.Writer, debug bool) {
	level := slog.LevelInfo
	if debug {
		level = slog.LevelDebug
	}

	handler := humanlog.NewHandler(w, &humanlog.Options{
		Level: level,
	})

	slog.SetDefault(slog.New(handler).With("session", uuid.NewString()))
}
