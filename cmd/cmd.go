// submodule cmd contains command definitions
package main

import (
	"time"

	"github.com/urfave/cli/v3"
)

func formatFlag(usage string) cli.Flag {
	return &cli.StringFlag{
		Name:    "format",
		Aliases: []string{"f"},
		Usage:   usage + " (tokens: %a %b %p %t %h %u %d %v %r %f %s)",
	}
}

func limitFlag() cli.Flag {
	return &cli.StringFlag{
		Name:  "limit",
		Usage: "Number of results to fetch (1-50)",
	}
}

// setupCommand creates the config file and the track cache.
func setupCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:   "setup",
		Usage:  "Create the config file and initialize the track cache",
		Action: r.Setup,
	}
}

// authCommand handles authentication operations
func authCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "auth",
		Usage: "Authorize this client with Spotify using OAuth2",
		Flags: []cli.Flag{
			&cli.DurationFlag{
				Name:  "timeout",
				Usage: "How long to wait for the authorization callback",
				Value: 5 * time.Minute,
			},
		},
		Action: r.Auth,
		Commands: []*cli.Command{
			{
				Name:   "refresh",
				Usage:  "Exchange the stored refresh token for a new access token",
				Action: r.AuthRefresh,
			},
		},
	}
}

// playbackCommand controls the active player.
func playbackCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:    "playback",
		Aliases: []string{"pb"},
		Usage:   "Interact with the playback of a device",
		Flags: []cli.Flag{
			&cli.BoolFlag{Name: "toggle", Aliases: []string{"t"}, Usage: "Pause/resume playback"},
			&cli.BoolFlag{Name: "status", Aliases: []string{"s"}, Usage: "Print the current status"},
			&cli.BoolFlag{Name: "next", Aliases: []string{"n"}, Usage: "Jump to the next song"},
			&cli.BoolFlag{Name: "previous", Aliases: []string{"p"}, Usage: "Jump to the previous song"},
			&cli.BoolFlag{Name: "like", Usage: "Like the current song"},
			&cli.BoolFlag{Name: "dislike", Usage: "Remove the current song from liked songs"},
			&cli.BoolFlag{Name: "shuffle", Usage: "Toggle shuffle mode"},
			&cli.BoolFlag{Name: "repeat", Aliases: []string{"r"}, Usage: "Cycle repeat mode (off, context, track)"},
			&cli.BoolFlag{Name: "share-track", Usage: "Print a web URL for the current song"},
			&cli.BoolFlag{Name: "share-album", Usage: "Print a web URL for the current album"},
			&cli.StringFlag{Name: "volume", Usage: "Set the volume to a percentage (0-100)"},
			&cli.StringFlag{Name: "seek", Usage: "Seek to a position: seconds, or +/- seconds relative to now"},
			&cli.StringFlag{Name: "transfer", Usage: "Transfer playback to the named device"},
			formatFlag("Status line template"),
		},
		Action: r.Playback,
	}
}

// playCommand starts or queues a track, album, artist, playlist or show.
func playCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "play",
		Usage: "Play a uri, or the first search result for a name",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "uri", Aliases: []string{"u"}, Usage: "Spotify uri to play"},
			&cli.StringFlag{Name: "name", Aliases: []string{"n"}, Usage: "Name to search for"},
			&cli.BoolFlag{Name: "track", Usage: "Search for a track"},
			&cli.BoolFlag{Name: "album", Usage: "Search for an album"},
			&cli.BoolFlag{Name: "artist", Usage: "Search for an artist"},
			&cli.BoolFlag{Name: "playlist", Usage: "Search for a playlist"},
			&cli.BoolFlag{Name: "show", Usage: "Search for a show"},
			&cli.BoolFlag{Name: "queue", Aliases: []string{"q"}, Usage: "Add to the queue instead of playing"},
			&cli.BoolFlag{Name: "random", Usage: "Start a playlist or album at a random track"},
		},
		Action: r.Play,
	}
}

// listCommand prints devices, playlists or liked songs.
func listCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "list",
		Usage: "List devices, playlists or liked songs",
		Flags: []cli.Flag{
			&cli.BoolFlag{Name: "devices", Usage: "List available devices"},
			&cli.BoolFlag{Name: "playlists", Usage: "List your playlists"},
			&cli.BoolFlag{Name: "liked", Usage: "List your liked songs"},
			&cli.BoolFlag{Name: "csv", Usage: "Write liked songs as CSV"},
			formatFlag("Line template"),
			limitFlag(),
		},
		Action: r.List,
	}
}

// searchCommand searches the catalog.
func searchCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "search",
		Usage: "Search the catalog for tracks, albums, artists, playlists or shows",
		Arguments: []cli.Argument{
			&cli.StringArg{Name: "term"},
		},
		Flags: []cli.Flag{
			&cli.BoolFlag{Name: "tracks", Usage: "Print matching tracks"},
			&cli.BoolFlag{Name: "albums", Usage: "Print matching albums"},
			&cli.BoolFlag{Name: "artists", Usage: "Print matching artists"},
			&cli.BoolFlag{Name: "playlists", Usage: "Print matching playlists"},
			&cli.BoolFlag{Name: "shows", Usage: "Print matching shows"},
			formatFlag("Line template"),
			limitFlag(),
		},
		Action: r.Search,
	}
}

// cacheCommand inspects the local track cache.
func cacheCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "cache",
		Usage: "Inspect the local track cache",
		Commands: []*cli.Command{
			{
				Name:   "stats",
				Usage:  "Summarize the cache",
				Action: r.CacheStats,
			},
			{
				Name:  "list",
				Usage: "List cached tracks",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "query", Usage: "Filter by name, artist or album"},
					&cli.IntFlag{Name: "limit", Usage: "Maximum number of tracks", Value: 50},
					&cli.StringFlag{Name: "order", Usage: "sequence, recent or seen", Value: "sequence"},
					formatFlag("Line template"),
				},
				Action: r.CacheList,
			},
			{
				Name:   "clear",
				Usage:  "Remove every cached track",
				Action: r.CacheClear,
			},
		},
	}
}

// tuiCommand returns the top-level TUI command.
func tuiCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:    "tui",
		Aliases: []string{"ui"},
		Usage:   "Launch the interactive player",
		Action:  r.TUI,
	}
}
