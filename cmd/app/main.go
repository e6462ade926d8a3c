package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	_ "github.com/joho/godotenv/autoload"
	"github.com/urfave/cli/v3"

	"github.com/starford/patterns-sync/internal"
	pkgconfig "github.com/starford/patterns-sync/pkg/config"
)

func run(ctx context.Context, cmd *cli.Command) error {
	configPath := cmd.String("config")

	cfg := internal.NewDefaultConfig()
	if err := pkgconfig.Load(configPath, cfg, func(c *internal.Config) {
		applyFlags(cmd, c)
	}); err != nil {
		return fmt.Errorf("failed to parse config: %w", err)
	}

	opts := []internal.Option{
		internal.WithConfig(cfg),
	}

	if err := internal.Run(ctx, opts...); err != nil {
		return fmt.Errorf("app run error: %w", err)
	}

	return nil
}

// applyFlags copies explicitly set flags (or their env sources) over the
// file and default values.
func applyFlags(cmd *cli.Command, c *internal.Config) {
	if cmd.IsSet("content-root") {
		c.Source.ContentRoot = cmd.String("content-root")
	}
	if cmd.IsSet("pattern") {
		c.Source.Pattern = cmd.String("pattern")
	}
	if cmd.IsSet("output") {
		c.Snapshot.Path = cmd.String("output")
	}
	if cmd.IsSet("index-path") {
		c.Index.Path = cmd.String("index-path")
	}
	if cmd.IsSet("api-url") {
		c.Catalog.APIURL = cmd.String("api-url")
	}
	if cmd.IsSet("api-key") {
		c.Catalog.APIKey = cmd.String("api-key")
	}
	if cmd.Bool("skip-publish") {
		c.Catalog.Enabled = false
	}
}

func search(ctx context.Context, cmd *cli.Command) error {
	query := cmd.Args().First()
	if query == "" {
		return fmt.Errorf("search: query argument is required")
	}
	return internal.Search(ctx, os.Stdout, cmd.String("db"), query, int(cmd.Int("limit")))
}

func main() {
	cmd := &cli.Command{
		Name:   "patterns-sync",
		Usage:  "Extract glossary entries from Markdown and publish them to the knowledge-base catalog",
		Action: run,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "Path to an optional config file",
				Sources: cli.EnvVars("APP_CONFIG_FILE"),
			},
			&cli.StringFlag{
				Name:  "content-root",
				Usage: "Directory document paths are made relative to",
			},
			&cli.StringFlag{
				Name:  "pattern",
				Usage: "Glob, relative to the content root, selecting documents",
			},
			&cli.StringFlag{
				Name:    "output",
				Aliases: []string{"o"},
				Usage:   "Snapshot file path",
			},
			&cli.StringFlag{
				Name:  "index-path",
				Usage: "SQLite file to mirror records into (disabled when empty)",
			},
			&cli.StringFlag{
				Name:    "api-url",
				Usage:   "Knowledge-base API base URL",
				Sources: cli.EnvVars(internal.EnvAPIURL),
			},
			&cli.StringFlag{
				Name:    "api-key",
				Usage:   "Knowledge-base API key",
				Sources: cli.EnvVars(internal.EnvAPIKey),
			},
			&cli.BoolFlag{
				Name:  "skip-publish",
				Usage: "Write the snapshot (and index) without publishing",
			},
		},
		Commands: []*cli.Command{
			{
				Name:      "search",
				Usage:     "Search the local record index",
				ArgsUsage: "<query>",
				Action:    search,
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:  "db",
						Usage: "SQLite index file",
						Value: "patterns.db",
					},
					&cli.IntFlag{
						Name:  "limit",
						Usage: "Maximum number of results",
						Value: 20,
					},
				},
			},
		},
	}

	if err := cmd.Run(context.Background(), os.Args); err != nil {
		slog.Error("application error", slog.String("error", err.Error()))
		os.Exit(1)
	}
}
