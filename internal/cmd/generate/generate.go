// Package generate parses generator flags and produces the review site.
package generate

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"strings"

	"github.com/louisbranch/game-reviews/internal/igdb"
	"github.com/louisbranch/game-reviews/internal/igdb/cache"
	cachesqlite "github.com/louisbranch/game-reviews/internal/igdb/cache/sqlite"
	entrypoint "github.com/louisbranch/game-reviews/internal/platform/cmd"
	"github.com/louisbranch/game-reviews/internal/reviews/sqlite"
	"github.com/louisbranch/game-reviews/internal/site"
)

// Output formats accepted by the -format flag.
const (
	FormatHTML     = "html"
	FormatMarkdown = "markdown"
)

// Config holds generate command configuration.
type Config struct {
	DBPath            string `env:"GAME_REVIEWS_DB" envDefault:"games.db"`
	CacheDBPath       string `env:"GAME_REVIEWS_CACHE_DB"`
	Output            string `env:"GAME_REVIEWS_OUTPUT"`
	Format            string `env:"GAME_REVIEWS_FORMAT" envDefault:"html"`
	RequestsPerSecond int    `env:"GAME_REVIEWS_IGDB_RATE" envDefault:"4"`
	NoCache           bool   `env:"GAME_REVIEWS_NO_CACHE"`

	ClientID     string `env:"IGDB_TWITCH_CLIENT_ID"`
	ClientSecret string `env:"IGDB_TWITCH_CLIENT_SECRET"`
	AccessToken  string `env:"TWITCH_ACCESS_TOKEN"`

	// APIBaseURL and TokenURL override the production IGDB endpoints in
	// tests.
	APIBaseURL string
	TokenURL   string
}

// ParseConfig parses environment and flags into Config.
func ParseConfig(fs *flag.FlagSet, args []string) (Config, error) {
	var cfg Config
	if err := entrypoint.ParseConfig(&cfg); err != nil {
		return Config{}, err
	}
	fs.StringVar(&cfg.DBPath, "db", cfg.DBPath, "Path to the review catalog database")
	fs.StringVar(&cfg.CacheDBPath, "cache-db", cfg.CacheDBPath, "Path to the metadata cache database (defaults to the catalog database)")
	fs.StringVar(&cfg.Output, "out", cfg.Output, "Output file (defaults to stdout)")
	fs.StringVar(&cfg.Format, "format", cfg.Format, "Output format: html or markdown")
	fs.IntVar(&cfg.RequestsPerSecond, "rate", cfg.RequestsPerSecond, "IGDB requests per second")
	fs.BoolVar(&cfg.NoCache, "no-cache", cfg.NoCache, "Skip the metadata cache and always fetch")
	if err := entrypoint.ParseArgs(fs, args); err != nil {
		return Config{}, err
	}
	if cfg.CacheDBPath == "" {
		cfg.CacheDBPath = cfg.DBPath
	}
	return cfg, nil
}

// Run generates the site under the entrypoint telemetry lifecycle. Output
// goes to cfg.Output when set, otherwise to out.
func Run(ctx context.Context, cfg Config, out io.Writer) error {
	return entrypoint.RunWithTelemetry(ctx, entrypoint.ServiceGenerate, func(ctx context.Context) error {
		return generate(ctx, cfg, out)
	})
}

func generate(ctx context.Context, cfg Config, out io.Writer) error {
	format := strings.ToLower(strings.TrimSpace(cfg.Format))
	switch format {
	case FormatHTML, FormatMarkdown:
	default:
		return fmt.Errorf("unknown output format %q", cfg.Format)
	}
	if strings.TrimSpace(cfg.ClientID) == "" {
		return igdb.ErrMissingCredentials
	}
	if strings.TrimSpace(cfg.ClientSecret) == "" && strings.TrimSpace(cfg.AccessToken) == "" {
		return igdb.ErrMissingCredentials
	}

	catalog, err := sqlite.Open(cfg.DBPath)
	if err != nil {
		return fmt.Errorf("open catalog: %w", err)
	}
	defer catalog.Close()

	var store cache.Store
	if !cfg.NoCache {
		cacheStore, err := cachesqlite.Open(cfg.CacheDBPath)
		if err != nil {
			return fmt.Errorf("open cache: %w", err)
		}
		defer cacheStore.Close()
		store = cacheStore
	}

	client, err := igdb.NewClient(ctx, igdb.ClientConfig{
		ClientID:     cfg.ClientID,
		ClientSecret: cfg.ClientSecret,
		AccessToken:  cfg.AccessToken,
		APIBaseURL:   cfg.APIBaseURL,
		TokenURL:     cfg.TokenURL,
		Limiter:      igdb.NewLimiter(cfg.RequestsPerSecond),
	})
	if err != nil {
		return fmt.Errorf("igdb client: %w", err)
	}
	resolver := igdb.NewResolver(client, store)

	sections, err := site.BuildSections(ctx, catalog, resolver)
	if err != nil {
		return fmt.Errorf("build sections: %w", err)
	}

	if cfg.Output != "" {
		f, err := os.Create(cfg.Output)
		if err != nil {
			return fmt.Errorf("create output: %w", err)
		}
		defer f.Close()
		out = f
	}

	switch format {
	case FormatMarkdown:
		err = site.WriteMarkdown(out, sections)
	default:
		err = site.Render(out, sections)
	}
	if err != nil {
		return err
	}

	total := 0
	for _, section := range sections {
		total += len(section.Reviews)
	}
	log.Printf("generated %s output: %d sections, %d reviews", format, len(sections), total)
	return nil
}
