// submodule cmd contains command definitions
package main

import "github.com/urfave/cli/v3"

func jsonFlag() cli.Flag {
	return &cli.BoolFlag{Name: "json", Usage: "Output raw JSON"}
}

func prettyFlag() cli.Flag {
	return &cli.BoolFlag{Name: "pretty", Usage: "Pretty-print JSON output"}
}

func formatFlag() cli.Flag {
	return &cli.StringFlag{
		Name:    "format",
		Aliases: []string{"f"},
		Usage:   "Export format: json, csv, markdown, txt",
		Value:   "json",
	}
}

func loadFlags() []cli.Flag {
	return []cli.Flag{
		&cli.IntFlag{
			Name:  "pages",
			Usage: "Number of pages to load (page size comes from the tracks_per_load preference)",
			Value: 1,
		},
		&cli.BoolFlag{
			Name:  "all",
			Usage: "Load every liked song",
		},
	}
}

// setupCommand writes configuration and prepares the database
func setupCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "setup",
		Usage: "Create the config file and initialize the database",
		Commands: []*cli.Command{
			{
				Name:   "config",
				Usage:  "Write the example configuration file",
				Action: r.SetupConfig,
			},
			{
				Name:  "database",
				Usage: "Create the database and run migrations",
				Flags: []cli.Flag{
					&cli.BoolFlag{
						Name:  "rollback",
						Usage: "Roll back the most recent migration",
					},
				},
				Action: r.SetupDatabase,
			},
		},
	}
}

// authCommand handles the Spotify session
func authCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "auth",
		Usage: "Manage the Spotify session",
		Commands: []*cli.Command{
			{
				Name:  "login",
				Usage: "Authenticate with Spotify using OAuth2",
				Flags: []cli.Flag{
					&cli.BoolFlag{
						Name:  "no-browser",
						Usage: "Print the authorization URL instead of opening a browser",
					},
				},
				Action: r.AuthLogin,
			},
			{
				Name:   "logout",
				Usage:  "Forget the stored token and cached catalog",
				Action: r.AuthLogout,
			},
			{
				Name:   "status",
				Usage:  "Show the logged-in Spotify user",
				Flags:  []cli.Flag{jsonFlag()},
				Action: r.AuthStatus,
			},
		},
	}
}

// tracksCommand handles liked songs
func tracksCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:    "tracks",
		Aliases: []string{"liked"},
		Usage:   "Liked songs operations",
		Commands: []*cli.Command{
			{
				Name:   "list",
				Usage:  "List liked songs",
				Flags:  append(loadFlags(), jsonFlag(), prettyFlag()),
				Action: r.TracksList,
			},
			{
				Name:  "export",
				Usage: "Export liked songs to a file",
				Flags: append(loadFlags(),
					formatFlag(),
					&cli.StringFlag{
						Name:    "output",
						Aliases: []string{"o"},
						Usage:   "Output directory",
						Value:   ".",
					},
				),
				Action: r.TracksExport,
			},
			{
				Name:  "cache",
				Usage: "Inspect the liked-songs cache",
				Commands: []*cli.Command{
					{
						Name:   "status",
						Usage:  "Show cache age and size",
						Action: r.CacheStatus,
					},
					{
						Name:   "clear",
						Usage:  "Remove the cached catalog",
						Action: r.CacheClear,
					},
				},
			},
		},
	}
}

// playlistsCommand handles playlist browsing and export
func playlistsCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:    "playlists",
		Aliases: []string{"pl"},
		Usage:   "Spotify playlist operations",
		Commands: []*cli.Command{
			{
				Name:   "list",
				Usage:  "List playlists",
				Flags:  []cli.Flag{jsonFlag(), prettyFlag()},
				Action: r.PlaylistsList,
			},
			{
				Name:  "show",
				Usage: "Show a playlist and its tracks",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:     "id",
						Usage:    "Playlist ID",
						Required: true,
					},
					jsonFlag(),
					prettyFlag(),
				},
				Action: r.PlaylistsShow,
			},
			{
				Name:  "export",
				Usage: "Export playlists with a manifest",
				Flags: []cli.Flag{
					formatFlag(),
					&cli.StringSliceFlag{
						Name:  "id",
						Usage: "Playlist ID to export (repeatable, default: all)",
					},
					&cli.StringFlag{
						Name:    "output",
						Aliases: []string{"o"},
						Usage:   "Output directory (default: playlists_export_{timestamp})",
					},
					&cli.IntFlag{
						Name:  "workers",
						Usage: "Concurrent export workers (1-10)",
						Value: 5,
					},
					&cli.FloatFlag{
						Name:  "rate",
						Usage: "Playlist fetches per second",
						Value: 5,
					},
				},
				Action: r.PlaylistsExport,
			},
		},
	}
}

// collageCommand handles album-art collages
func collageCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "collage",
		Usage: "Album-art collages",
		Commands: []*cli.Command{
			{
				Name:  "generate",
				Usage: "Build a color-sorted collage from liked songs",
				Flags: append(loadFlags(),
					&cli.IntFlag{Name: "width", Usage: "Collage width in pixels (default: preference)"},
					&cli.IntFlag{Name: "height", Usage: "Collage height in pixels (default: preference)"},
					&cli.FloatFlag{Name: "hue-shift", Usage: "Hue rotation in degrees (default: preference)"},
					&cli.BoolFlag{Name: "unique", Usage: "Skip duplicate album art"},
					&cli.StringFlag{
						Name:    "output",
						Aliases: []string{"o"},
						Usage:   "Output directory",
					},
					jsonFlag(),
				),
				Action: r.CollageGenerate,
			},
			{
				Name:  "list",
				Usage: "List generated collages",
				Flags: []cli.Flag{
					&cli.IntFlag{
						Name:  "limit",
						Usage: "Maximum number of collages to show",
						Value: 20,
					},
					jsonFlag(),
				},
				Action: r.CollageList,
			},
		},
	}
}

// prefsCommand reads and writes preferences
func prefsCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:    "prefs",
		Aliases: []string{"preferences"},
		Usage:   "View and change preferences",
		Commands: []*cli.Command{
			{
				Name:   "show",
				Usage:  "Show all preferences",
				Flags:  []cli.Flag{jsonFlag()},
				Action: r.PrefsShow,
			},
			{
				Name:      "set",
				Usage:     "Set a preference",
				ArgsUsage: "<key> <value>",
				Arguments: []cli.Argument{
					&cli.StringArg{Name: "key"},
					&cli.StringArg{Name: "value"},
				},
				Action: r.PrefsSet,
			},
		},
	}
}

// tuiCommand launches the terminal UI
func tuiCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:   "tui",
		Usage:  "Browse liked songs in an interactive terminal UI",
		Action: r.TUI,
	}
}
