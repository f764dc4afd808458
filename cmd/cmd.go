// submodule cmd contains command definitions
package main

import "github.com/urfave/cli/v3"

func serviceFlag() cli.Flag {
	return &cli.StringFlag{
		Name:     "service",
		Aliases:  []string{"s"},
		Usage:    "Target service (spotify, ytmusic)",
		Required: true,
	}
}

func collectionFlag() cli.Flag {
	return &cli.StringFlag{
		Name:    "collection",
		Aliases: []string{"p"},
		Usage:   "Playlist ID, or liked/LM for the favorites collection (asks when omitted)",
	}
}

func reportFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:  "report",
			Usage: "Write a report file (.json, .csv, .md or .txt)",
		},
		&cli.BoolFlag{
			Name:  "json",
			Usage: "Output the raw result as JSON",
		},
	}
}

func setupCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "setup",
		Usage: "Create the config file or initialize the run history database",
		Commands: []*cli.Command{
			{
				Name:   "config",
				Usage:  "Write config.toml from the bundled template",
				Action: r.SetupConfig,
			},
			{
				Name:   "database",
				Usage:  "Initialize the database and run migrations",
				Action: r.SetupDatabase,
			},
			{
				Name:   "rollback",
				Usage:  "Roll back the most recent database migration",
				Action: r.SetupRollback,
			},
		},
	}
}

func authCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "auth",
		Usage: "Authenticate with remote services",
		Commands: []*cli.Command{
			{
				Name:   "spotify",
				Usage:  "Authorize with Spotify using OAuth2 and save the token",
				Action: r.SpotifyAuth,
			},
		},
	}
}

func playlistsCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "playlists",
		Usage: "List or create playlists to use with --collection",
		Commands: []*cli.Command{
			{
				Name:  "list",
				Usage: "List the playlists in your library",
				Flags: []cli.Flag{
					serviceFlag(),
					&cli.BoolFlag{Name: "json", Usage: "Output raw JSON"},
				},
				Action: r.PlaylistsList,
			},
			{
				Name:  "create",
				Usage: "Create an empty playlist",
				Flags: []cli.Flag{
					serviceFlag(),
					&cli.StringFlag{Name: "name", Aliases: []string{"n"}, Usage: "Playlist name", Required: true},
					&cli.StringFlag{Name: "description", Aliases: []string{"d"}, Usage: "Playlist description"},
					&cli.BoolFlag{Name: "public", Usage: "Make the playlist public"},
					&cli.BoolFlag{Name: "json", Usage: "Output raw JSON"},
				},
				Action: r.PlaylistsCreate,
			},
		},
	}
}

func reconcileCommand(r *Runner) *cli.Command {
	flags := []cli.Flag{
		serviceFlag(),
		collectionFlag(),
		&cli.StringFlag{
			Name:  "from-dir",
			Usage: "Build the batch from the tags of audio files under a directory",
		},
		&cli.StringFlag{
			Name:  "from-playlist",
			Usage: "Build the batch from a playlist (or liked/LM) on the source service",
		},
		&cli.StringFlag{
			Name:  "from-service",
			Usage: "Service holding --from-playlist (defaults to --service)",
		},
		&cli.BoolFlag{
			Name:    "yes",
			Aliases: []string{"y"},
			Usage:   "Take the best candidate without asking",
		},
		&cli.StringFlag{
			Name:  "prompt",
			Usage: "Confirmation prompt style (tui, plain)",
			Value: "tui",
		},
		&cli.BoolFlag{
			Name:  "clean",
			Usage: "Strip bracketed suffixes and featured artists before searching",
			Value: true,
		},
	}

	return &cli.Command{
		Name:   "reconcile",
		Usage:  "Add the tracks of a source batch that are missing from a collection",
		Flags:  append(flags, reportFlags()...),
		Action: r.Reconcile,
	}
}

func dedupeCommand(r *Runner) *cli.Command {
	flags := []cli.Flag{
		serviceFlag(),
		collectionFlag(),
		&cli.BoolFlag{
			Name:  "dry-run",
			Usage: "List the entries that would be removed without removing them",
		},
	}

	return &cli.Command{
		Name:   "dedupe",
		Usage:  "Remove repeated tracks from a playlist, keeping the earliest entry",
		Flags:  append(flags, reportFlags()...),
		Action: r.Dedupe,
	}
}

func tagsCommand(r *Runner) *cli.Command {
	pathFlag := func() cli.Flag {
		return &cli.StringFlag{
			Name:  "path",
			Usage: "Directory to scan for audio files (defaults to [tags] media_path)",
		}
	}

	update := []cli.Flag{
		pathFlag(),
		&cli.BoolFlag{Name: "overwrite-genre", Usage: "Replace an existing genre"},
		&cli.BoolFlag{Name: "overwrite-year", Usage: "Replace an existing year"},
		&cli.BoolFlag{Name: "embed-cover", Usage: "Download and embed cover art"},
		&cli.BoolFlag{Name: "overwrite-cover", Usage: "Replace existing cover art"},
		&cli.BoolFlag{Name: "rename", Usage: "Rename files to \"Artist - Title\" after tagging"},
	}

	return &cli.Command{
		Name:  "tags",
		Usage: "Local file tagging",
		Commands: []*cli.Command{
			{
				Name:   "update",
				Usage:  "Fill genre, year and cover art from the release catalog",
				Flags:  append(update, reportFlags()...),
				Action: r.TagsUpdate,
			},
			{
				Name:   "rename",
				Usage:  "Rename files to \"Artist - Title\" from their tags",
				Flags:  append([]cli.Flag{pathFlag()}, reportFlags()...),
				Action: r.TagsRename,
			},
		},
	}
}

func historyCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "history",
		Usage: "List past runs",
		Flags: []cli.Flag{
			&cli.IntFlag{
				Name:    "limit",
				Aliases: []string{"n"},
				Usage:   "Maximum number of runs to list",
				Value:   20,
			},
			&cli.StringFlag{
				Name:  "kind",
				Usage: "Only list runs of this kind (reconcile, dedupe, tags, rename)",
			},
			&cli.StringFlag{
				Name:  "service",
				Usage: "Only list runs against this service",
			},
			&cli.StringFlag{
				Name:  "run",
				Usage: "Show the events of one run",
			},
			&cli.BoolFlag{
				Name:  "json",
				Usage: "Output raw JSON",
			},
		},
		Action: r.History,
	}
}
