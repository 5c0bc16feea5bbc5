// submodule cmd contains command definitions
package main

import (
	"strings"

	"github.com/urfave/cli/v3"

	"github.com/desertthunder/tunetx/internal/services"
)

var (
	originUsage      = "Origin service (" + strings.Join(services.OriginTokens(), ", ") + ")"
	destinationUsage = "Destination service (" + strings.Join(services.DestinationTokens(), ", ") + ")"
)

// transferCommand copies playlists and liked songs between services
func transferCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:      "transfer",
		Aliases:   []string{"tx"},
		Usage:     "Transfer playlists and liked songs between services",
		ArgsUsage: " ",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "from",
				Aliases: []string{"f"},
				Usage:   originUsage + "; prompted when omitted",
			},
			&cli.StringFlag{
				Name:    "to",
				Aliases: []string{"t"},
				Usage:   destinationUsage + "; prompted when omitted",
			},
			&cli.StringSliceFlag{
				Name:    "playlist",
				Aliases: []string{"p"},
				Usage:   "Playlist name or ID to transfer (repeatable)",
			},
			&cli.StringSliceFlag{
				Name:    "exclude",
				Aliases: []string{"x"},
				Usage:   "Playlist name or ID to skip (repeatable)",
			},
			&cli.BoolFlag{
				Name:  "all",
				Usage: "Transfer every playlist without prompting",
			},
			&cli.BoolFlag{
				Name:    "liked",
				Aliases: []string{"l"},
				Usage:   "Also transfer liked songs",
			},
			&cli.BoolFlag{
				Name:    "dry",
				Aliases: []string{"n"},
				Usage:   "Search only; create and add nothing on the destination",
			},
			&cli.StringFlag{
				Name:    "report",
				Aliases: []string{"o"},
				Usage:   "Write unmatched songs to a .csv, .md or .txt file",
			},
			&cli.BoolFlag{
				Name:    "interactive",
				Aliases: []string{"i"},
				Usage:   "Pick playlists in the terminal UI",
			},
		},
		Action: r.Transfer,
	}
}

// servicesCommand lists the supported backends
func servicesCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:   "services",
		Usage:  "List supported services and what they can do",
		Action: r.Services,
	}
}

// playlistsCommand lists the playlists of one service
func playlistsCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "playlists",
		Usage: "List playlists on a service",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:     "service",
				Aliases:  []string{"s"},
				Usage:    originUsage,
				Required: true,
			},
			&cli.BoolFlag{
				Name:  "tracks",
				Usage: "Include each playlist's songs",
			},
			&cli.BoolFlag{
				Name:  "json",
				Usage: "Output raw JSON",
			},
			&cli.BoolFlag{
				Name:  "pretty",
				Usage: "Pretty-print JSON output",
			},
		},
		Action: r.Playlists,
	}
}

// searchCommand runs a single catalog search the way a transfer would
func searchCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:      "search",
		Usage:     "Search a service for a song and show the match ratio",
		ArgsUsage: "<name> [artist]",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:     "service",
				Aliases:  []string{"s"},
				Usage:    originUsage,
				Required: true,
			},
			&cli.BoolFlag{
				Name:  "json",
				Usage: "Output raw JSON",
			},
		},
		Action: r.Search,
	}
}

// spotifyCommand handles Spotify operations
func spotifyCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:    "spotify",
		Aliases: []string{"spot"},
		Usage:   "Spotify account operations",
		Commands: []*cli.Command{
			{
				Name:   "auth",
				Usage:  "Authenticate with Spotify using OAuth2",
				Action: r.SpotifyAuth,
			},
			{
				Name:   "whoami",
				Usage:  "Show the authenticated Spotify user",
				Action: r.SpotifyWhoAmI,
			},
		},
	}
}

// setupCommand prepares config and storage
func setupCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "setup",
		Usage: "Create the configuration file and local library",
		Commands: []*cli.Command{
			{
				Name:   "config",
				Usage:  "Write an example config.toml",
				Action: r.SetupConfig,
			},
			{
				Name:   "local",
				Usage:  "Create the local library database and run migrations",
				Action: r.SetupLocal,
			},
		},
	}
}

// localCommand manages the local library
func localCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "local",
		Usage: "Local library operations",
		Commands: []*cli.Command{
			{
				Name:      "import",
				Usage:     "Import a CSV of songs as a local playlist",
				ArgsUsage: "<file.csv>",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:    "playlist",
						Aliases: []string{"p"},
						Usage:   "Playlist name (defaults to the file name)",
					},
					&cli.BoolFlag{
						Name:  "liked",
						Usage: "Add the songs to liked songs instead of a playlist",
					},
				},
				Action: r.LocalImport,
			},
		},
	}
}

// tuiCommand starts the terminal UI
func tuiCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "tui",
		Usage: "Pick and transfer playlists in an interactive terminal UI",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "from",
				Aliases: []string{"f"},
				Usage:   originUsage,
			},
			&cli.StringFlag{
				Name:    "to",
				Aliases: []string{"t"},
				Usage:   destinationUsage,
			},
			&cli.BoolFlag{
				Name:    "dry",
				Aliases: []string{"n"},
				Usage:   "Search only; create and add nothing on the destination",
			},
		},
		Action: r.TUI,
	}
}
