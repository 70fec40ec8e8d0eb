// submodule cmd contains command definitions
package main

import (
	"github.com/urfave/cli/v3"
)

func newApp(r *Runner) *cli.Command {
	return &cli.Command{
		Name:    "moodset",
		Usage:   "Build mood-labeled audio feature datasets from playlist search",
		Version: "0.1.0",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "Path to configuration file",
				Value:   "config.toml",
			},
			&cli.StringFlag{
				Name:  "log-level",
				Usage: "Override logging.level (debug, info, warn, error)",
			},
		},
		Before:   r.before,
		Commands: r.register(),
	}
}

// collectCommand runs the dataset pipeline
func collectCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "collect",
		Usage: "Search playlists per mood, fetch audio features, and write the labeled dataset",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "output",
				Aliases: []string{"o"},
				Usage:   "Dataset path (default: output.path)",
			},
			&cli.StringFlag{
				Name:  "format",
				Usage: "Dataset format: csv or json (default: output.format, then the file extension)",
			},
			&cli.StringFlag{
				Name:    "keywords",
				Aliases: []string{"k"},
				Usage:   "YAML keyword file overriding the configured catalog",
			},
			&cli.IntFlag{
				Name:    "workers",
				Aliases: []string{"w"},
				Usage:   "Concurrent searches and playlist listings (default: pipeline.workers)",
			},
			&cli.IntFlag{
				Name:  "fetch-workers",
				Usage: "Concurrent batch requests per fetch phase (default: pipeline.fetch_workers)",
			},
			&cli.DurationFlag{
				Name:  "task-timeout",
				Usage: "Deadline for a single search, playlist listing, or batch",
			},
			&cli.BoolFlag{
				Name:  "deterministic",
				Usage: "Label shared tracks by discovery order instead of listing completion order",
			},
			&cli.BoolFlag{
				Name:  "skip-failed",
				Usage: "Skip failed searches and listings instead of aborting",
			},
			&cli.BoolFlag{
				Name:  "no-manifest",
				Usage: "Do not write the run manifest",
			},
			&cli.BoolFlag{
				Name:  "save",
				Usage: "Persist the run and its rows to the database",
			},
			&cli.BoolFlag{
				Name:  "tui",
				Usage: "Show the interactive progress view",
			},
		},
		Action: r.Collect,
	}
}

// searchCommand previews discovery for one phrase
func searchCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "search",
		Usage: "List the playlists a phrase discovers",
		Arguments: []cli.Argument{
			&cli.StringArg{
				Name: "phrase",
			},
		},
		Flags: []cli.Flag{
			&cli.IntFlag{
				Name:  "limit",
				Usage: "Maximum number of playlists (default: catalog.search_limit)",
			},
			&cli.BoolFlag{
				Name:  "json",
				Usage: "Output raw JSON",
			},
		},
		Action: r.Search,
	}
}

// keywordsCommand prints the resolved keyword catalog
func keywordsCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "keywords",
		Usage: "Show the mood labels and search phrases a collect run would use",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "keywords",
				Aliases: []string{"k"},
				Usage:   "YAML keyword file overriding the configured catalog",
			},
			&cli.BoolFlag{
				Name:  "json",
				Usage: "Output raw JSON",
			},
		},
		Action: r.Keywords,
	}
}

// runsCommand inspects persisted runs
func runsCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "runs",
		Usage: "Inspect runs saved with collect --save",
		Commands: []*cli.Command{
			{
				Name:  "list",
				Usage: "List saved runs, newest first",
				Flags: []cli.Flag{
					&cli.IntFlag{
						Name:  "limit",
						Usage: "Maximum number of runs (0 for all)",
						Value: 20,
					},
					&cli.BoolFlag{
						Name:  "json",
						Usage: "Output raw JSON",
					},
				},
				Action: r.RunsList,
			},
			{
				Name:  "show",
				Usage: "Show one run by sequence number or ID",
				Arguments: []cli.Argument{
					&cli.StringArg{
						Name: "run",
					},
				},
				Flags: []cli.Flag{
					&cli.BoolFlag{
						Name:  "json",
						Usage: "Output raw JSON",
					},
					&cli.StringFlag{
						Name:    "export",
						Aliases: []string{"o"},
						Usage:   "Write the run's rows to this dataset path",
					},
					&cli.StringFlag{
						Name:  "format",
						Usage: "Export format: csv or json",
					},
				},
				Action: r.RunsShow,
			},
			{
				Name:  "delete",
				Usage: "Delete a run and its rows",
				Arguments: []cli.Argument{
					&cli.StringArg{
						Name: "run",
					},
				},
				Action: r.RunsDelete,
			},
		},
	}
}

// setupCommand prepares config and database
func setupCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "setup",
		Usage: "Create the config file and database",
		Commands: []*cli.Command{
			{
				Name:   "config",
				Usage:  "Write config.toml from the bundled template if it does not exist",
				Action: r.SetupConfig,
			},
			{
				Name:  "database",
				Usage: "Initialize the database and run migrations",
				Flags: []cli.Flag{
					&cli.BoolFlag{
						Name:  "rollback",
						Usage: "Roll back the most recent migration instead",
					},
				},
				Action: r.SetupDatabase,
			},
		},
	}
}

// serveCommand starts the webhook and metrics server
func serveCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "serve",
		Usage: "Serve the webhook receiver, health check, and Prometheus metrics",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "host",
				Usage: "Listen host (default: server.host)",
			},
			&cli.IntFlag{
				Name:    "port",
				Aliases: []string{"p"},
				Usage:   "Listen port (default: server.port)",
			},
		},
		Action: r.Serve,
	}
}
