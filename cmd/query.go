package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/urfave/cli/v3"

	"github.com/desertthunder/spt/internal/formatter"
	"github.com/desertthunder/spt/internal/models"
	"github.com/desertthunder/spt/internal/playback"
	"github.com/desertthunder/spt/internal/shared"
	"github.com/desertthunder/spt/internal/tasks"
)

const (
	deviceFormat   = "%v% %d"
	playlistFormat = "%p (%u)"
	trackFormat    = "%t - %a (%u)"
)

// searchFormats are the default templates of `spt search`, by result kind.
var searchFormats = map[models.Kind]string{
	models.KindTrack:    trackFormat,
	models.KindAlbum:    "%b - %a (%u)",
	models.KindArtist:   "%a (%u)",
	models.KindPlaylist: playlistFormat,
	models.KindShow:     "%h - %a (%u)",
}

// List prints devices, playlists or liked songs.
func (r *Runner) List(ctx context.Context, cmd *cli.Command) error {
	engine, err := r.ready(ctx, nil)
	if err != nil {
		return err
	}
	if err := r.applyLimit(ctx, engine, cmd); err != nil {
		return err
	}

	switch {
	case cmd.Bool("devices"):
		devices, err := r.fetchDevices(ctx, engine)
		if err != nil {
			return err
		}
		if len(devices) == 0 {
			return r.writePlainln("No devices available")
		}
		entries := make([][]formatter.Field, len(devices))
		for i, d := range devices {
			entries[i] = formatter.FromDevice(d)
		}
		return r.writeLines(formatOr(cmd, deviceFormat), entries)

	case cmd.Bool("playlists"):
		if err := engine.Execute(ctx, tasks.FetchPlaylists{}); err != nil {
			return err
		}
		playlists := engine.Store().Snapshot().Playlists.Items()
		if len(playlists) == 0 {
			return r.writePlainln("No playlists found")
		}
		entries := make([][]formatter.Field, len(playlists))
		for i, p := range playlists {
			entries[i] = formatter.FromPlaylist(p)
		}
		return r.writeLines(formatOr(cmd, playlistFormat), entries)

	case cmd.Bool("liked"):
		if err := engine.Execute(ctx, tasks.FetchSavedTracks{}); err != nil {
			return err
		}
		tracks := engine.Store().Snapshot().TrackTable.Tracks
		if len(tracks) == 0 {
			return r.writePlainln("No liked songs found")
		}
		if cmd.Bool("csv") {
			return formatter.WriteTracksCSV(r.output, tracks)
		}
		return r.writeLines(formatOr(cmd, trackFormat), trackEntries(tracks))
	}

	return fmt.Errorf("%w: one of --devices/--playlists/--liked", shared.ErrMissingArgument)
}

// Search prints the results of one category for TERM.
func (r *Runner) Search(ctx context.Context, cmd *cli.Command) error {
	term := strings.TrimSpace(cmd.StringArg("term"))
	if term == "" {
		return fmt.Errorf("%w: search term", shared.ErrMissingArgument)
	}
	kind, err := selectedKind(cmd, "tracks", "albums", "artists", "playlists", "shows")
	if err != nil {
		return err
	}

	engine, err := r.ready(ctx, nil)
	if err != nil {
		return err
	}
	if err := r.applyLimit(ctx, engine, cmd); err != nil {
		return err
	}
	if err := engine.Execute(ctx, tasks.SearchAll{Term: term}); err != nil {
		return err
	}

	res := engine.Store().Snapshot().Search
	var entries [][]formatter.Field
	switch kind {
	case models.KindTrack:
		entries = trackEntries(res.Tracks.Items)
	case models.KindAlbum:
		for _, a := range res.Albums.Items {
			entries = append(entries, formatter.FromAlbum(a))
		}
	case models.KindArtist:
		for _, a := range res.Artists.Items {
			entries = append(entries, formatter.FromArtist(a))
		}
	case models.KindPlaylist:
		for _, p := range res.Playlists.Items {
			entries = append(entries, formatter.FromPlaylist(p))
		}
	case models.KindShow:
		for _, s := range res.Shows.Items {
			entries = append(entries, formatter.FromShow(s))
		}
	}

	if len(entries) == 0 {
		return r.writePlainln("no %ss with name '%s'", kind, term)
	}
	return r.writeLines(formatOr(cmd, searchFormats[kind]), entries)
}

// applyLimit sets both search limits from --limit when given.
func (r *Runner) applyLimit(ctx context.Context, engine *tasks.Engine, cmd *cli.Command) error {
	if !cmd.IsSet("limit") {
		return nil
	}
	limit, err := playback.ParseSearchLimit(cmd.String("limit"))
	if err != nil {
		return err
	}
	return engine.Execute(ctx, tasks.UpdateSearchLimits{Small: limit, Large: limit})
}

func trackEntries(tracks []models.Track) [][]formatter.Field {
	entries := make([][]formatter.Field, len(tracks))
	for i, t := range tracks {
		entries[i] = formatter.FromTrack(t)
	}
	return entries
}

// format returns --format, or the configured status format.
func (r *Runner) format(cmd *cli.Command) string {
	return formatOr(cmd, r.currentConfig().Player.Format)
}

func formatOr(cmd *cli.Command, fallback string) string {
	if f := cmd.String("format"); f != "" {
		return f
	}
	return fallback
}

func kindOf(flag string) models.Kind {
	return models.Kind(strings.TrimSuffix(flag, "s"))
}

func joinFlags(flags []string) string {
	return strings.Join(flags, "/--")
}
