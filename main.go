package main

import (
	"fmt"
	"os"

	"github.com/dtnitsch/codehub/internal/db"
	"github.com/dtnitsch/codehub/internal/fetch"
	"github.com/dtnitsch/codehub/models"
	"github.com/dtnitsch/codehub/pkg/view"
	"github.com/urfave/cli/v2"
)

func main() {
	if err := newApp().Run(os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func newApp() *cli.App {
	return &cli.App{
		Name:  "codehub",
		Usage: "Aggregate coding-challenge submission statistics",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "config",
				Value: "config.yaml",
				Usage: "Path to the YAML config file (missing file = defaults)",
			},
			&cli.BoolFlag{
				Name:  "quiet",
				Usage: "Only log errors",
			},
			&cli.StringFlag{
				Name:  "format",
				Value: "text",
				Usage: "Output format: text, json, yaml",
			},
			&cli.DurationFlag{
				Name:  "timeout",
				Usage: "Overall deadline for network work (e.g. 30s, 0 = none)",
			},
			&cli.BoolFlag{
				Name:  "refresh",
				Usage: "Drop cached pages and snapshot before aggregating",
			},
			&cli.StringFlag{
				Name:  "cache",
				Usage: "Cache backend: sqlite, file, memory, redis (overrides config)",
			},
			&cli.StringFlag{
				Name:  "cache-path",
				Usage: "SQLite database file or file cache directory (overrides config)",
			},
			&cli.IntFlag{
				Name:  "pages",
				Usage: fmt.Sprintf("Number of submission pages to fetch (default %d)", models.DefaultPageCount),
			},
			&cli.IntFlag{
				Name:  "concurrency",
				Usage: "Maximum concurrent page fetches (0 = all at once)",
			},
		},
		Commands: []*cli.Command{
			{
				Name:   "stats",
				Usage:  "Show total submissions, top languages, most attempted problems and per-level counts",
				Action: fetch.StatsAction,
			},
			{
				Name:   "images",
				Usage:  "Show the language to compiler icon mapping",
				Action: fetch.ImagesAction,
			},
			{
				Name:      "page",
				Usage:     "Fetch a single submissions page",
				ArgsUsage: "<n>",
				Action:    fetch.PageAction,
			},
			{
				Name:  "submissions",
				Usage: "List submissions with status, search and pagination filters",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:  "status",
						Usage: "Comma-separated statuses (" + view.StatusChoices() + ")",
					},
					&cli.StringFlag{
						Name:  "search",
						Usage: "Case-insensitive text matched against title, language and level",
					},
					&cli.IntFlag{
						Name:  "page",
						Value: 1,
						Usage: "Page of results to show (1-based)",
					},
					&cli.IntFlag{
						Name:  "page-size",
						Usage: fmt.Sprintf("Results per page (default %d)", models.DefaultPageSize),
					},
				},
				Action: fetch.SubmissionsAction,
			},
			{
				Name:  "cache",
				Usage: "Inspect or clear cached pages, images and snapshot",
				Subcommands: []*cli.Command{
					{
						Name:   "list",
						Usage:  "List cache entries",
						Action: db.CacheListAction,
					},
					{
						Name:      "clear",
						Usage:     "Delete cache entries (all when no keys are given)",
						ArgsUsage: "[key...]",
						Action:    db.CacheClearAction,
					},
				},
			},
		},
	}
}
