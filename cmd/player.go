package main

import (
	"context"
	"fmt"

	"github.com/urfave/cli/v3"

	"github.com/desertthunder/spt/internal/formatter"
	"github.com/desertthunder/spt/internal/models"
	"github.com/desertthunder/spt/internal/playback"
	"github.com/desertthunder/spt/internal/shared"
	"github.com/desertthunder/spt/internal/state"
	"github.com/desertthunder/spt/internal/tasks"
)

// Playback applies the requested player changes in a fixed order, then prints the status line.
//
// --share-track and --share-album print a URL instead and change nothing.
func (r *Runner) Playback(ctx context.Context, cmd *cli.Command) error {
	engine, err := r.execute(ctx, tasks.FetchPlayback{})
	if err != nil {
		return err
	}

	if cmd.Bool("share-track") || cmd.Bool("share-album") {
		url, err := shareURL(engine.Store(), cmd.Bool("share-album"))
		if err != nil {
			return err
		}
		return r.writePlainln("%s", url)
	}

	var intents []tasks.Intent
	switch {
	case cmd.Bool("like"), cmd.Bool("dislike"):
		intents = append(intents, tasks.SetCurrentSaved{Saved: cmd.Bool("like")})
	}
	if cmd.Bool("shuffle") {
		intents = append(intents, tasks.ToggleShuffle{})
	}
	if cmd.Bool("repeat") {
		intents = append(intents, tasks.CycleRepeat{})
	}
	if cmd.Bool("toggle") {
		intents = append(intents, tasks.TogglePlayback{})
	}
	switch {
	case cmd.Bool("next"):
		intents = append(intents, tasks.NextTrack{})
	case cmd.Bool("previous"):
		intents = append(intents, tasks.PreviousTrack{})
	}
	if raw := cmd.String("volume"); raw != "" {
		percent, err := playback.ParseVolume(raw)
		if err != nil {
			return err
		}
		intents = append(intents, tasks.ChangeVolume{Percent: percent})
	}

	for _, in := range intents {
		if err := engine.Execute(ctx, in); err != nil {
			return err
		}
	}

	if name := cmd.String("transfer"); name != "" {
		if err := r.transfer(ctx, engine, name); err != nil {
			return err
		}
	}
	if raw := cmd.String("seek"); raw != "" {
		if err := engine.Execute(ctx, tasks.SeekRelative{Raw: raw}); err != nil {
			return err
		}
	}

	return r.status(ctx, engine, r.format(cmd))
}

func (r *Runner) transfer(ctx context.Context, engine *tasks.Engine, name string) error {
	devices, err := r.fetchDevices(ctx, engine)
	if err != nil {
		return err
	}
	d, err := resolveDevice(name, devices)
	if err != nil {
		return err
	}
	if err := engine.Execute(ctx, tasks.TransferPlayback{DeviceID: d.ID}); err != nil {
		return err
	}
	r.persistDevice(d.ID)
	return nil
}

// seek moves within the current item, or skips to the next one when the target is past its end.
func (r *Runner) status(ctx context.Context, engine *tasks.Engine, format string) error {
	if err := engine.Execute(ctx, tasks.FetchPlayback{}); err != nil {
		return err
	}

	snap := engine.Store().Snapshot()
	if snap.Playback == nil || snap.Playback.Item == nil {
		return shared.ErrNoPlayback
	}
	pb := *snap.Playback
	liked := pb.Item.Track != nil && snap.LikedTracks.Contains(pb.Item.Track.ID)
	return r.writeLines(format, [][]formatter.Field{formatter.FromPlayback(pb, liked)})
}

// shareURL links the playing item, or its album or show.
func shareURL(store *state.Store, album bool) (string, error) {
	pb, ok := store.Playback()
	if !ok || pb.Item == nil {
		return "", fmt.Errorf("%w: failed to generate a shareable url for the current song", shared.ErrNoPlayback)
	}

	switch {
	case pb.Item.Track != nil && album:
		if pb.Item.Track.Album.ID == "" {
			return "", fmt.Errorf("%w: no id for album", shared.ErrNotFound)
		}
		return models.ShareURL(models.KindAlbum, pb.Item.Track.Album.ID), nil
	case pb.Item.Track != nil:
		if pb.Item.Track.ID == "" {
			return "", fmt.Errorf("%w: no id for track", shared.ErrNotFound)
		}
		return models.ShareURL(models.KindTrack, pb.Item.Track.ID), nil
	case pb.Item.Episode != nil && album:
		if pb.Item.Episode.Show == nil {
			return "", fmt.Errorf("%w: no show for episode", shared.ErrNotFound)
		}
		return models.ShareURL(models.KindShow, pb.Item.Episode.Show.ID), nil
	default:
		return models.ShareURL(models.KindEpisode, pb.Item.Episode.ID), nil
	}
}

// Play starts or queues a URI, or the first search hit for --name.
func (r *Runner) Play(ctx context.Context, cmd *cli.Command) error {
	engine, err := r.ready(ctx, nil)
	if err != nil {
		return err
	}

	uri := cmd.String("uri")
	if uri == "" {
		name := cmd.String("name")
		if name == "" {
			return fmt.Errorf("%w: --uri or --name", shared.ErrMissingArgument)
		}
		kind, err := selectedKind(cmd, "track", "album", "artist", "playlist", "show")
		if err != nil {
			return err
		}
		if uri, err = r.findURI(ctx, engine, name, kind); err != nil {
			return err
		}
	}

	return r.playURI(ctx, engine, uri, cmd.Bool("queue"), cmd.Bool("random"))
}

// selectedKind returns the kind of the first set flag. Flag names are kinds, optionally plural.
func selectedKind(cmd *cli.Command, flags ...string) (models.Kind, error) {
	for _, flag := range flags {
		if cmd.Bool(flag) {
			return kindOf(flag), nil
		}
	}
	return "", fmt.Errorf("%w: one of --%s", shared.ErrMissingArgument, joinFlags(flags))
}

func (r *Runner) findURI(ctx context.Context, engine *tasks.Engine, name string, kind models.Kind) (string, error) {
	if err := engine.Execute(ctx, tasks.SearchAll{Term: name}); err != nil {
		return "", err
	}

	res := engine.Store().Snapshot().Search
	var id string
	switch kind {
	case models.KindTrack:
		if len(res.Tracks.Items) > 0 {
			id = res.Tracks.Items[0].ID
		}
	case models.KindAlbum:
		if len(res.Albums.Items) > 0 {
			id = res.Albums.Items[0].ID
		}
	case models.KindArtist:
		if len(res.Artists.Items) > 0 {
			id = res.Artists.Items[0].ID
		}
	case models.KindPlaylist:
		if len(res.Playlists.Items) > 0 {
			id = res.Playlists.Items[0].ID
		}
	case models.KindShow:
		if len(res.Shows.Items) > 0 {
			id = res.Shows.Items[0].ID
		}
	}

	if id == "" {
		return "", fmt.Errorf("%w: no %ss with name '%s'", shared.ErrNotFound, kind, name)
	}
	return models.BuildURI(kind, id), nil
}

func (r *Runner) playURI(ctx context.Context, engine *tasks.Engine, uri string, queue, random bool) error {
	kind, _, err := models.ParseURI(uri)
	if err != nil {
		return fmt.Errorf("%w: Cannot play '%s'", shared.ErrInvalidArgument, uri)
	}
	if queue {
		return engine.Execute(ctx, tasks.AddToQueue{URI: uri})
	}

	in := tasks.StartPlayback{}
	switch {
	case kind.Playable():
		in.URIs = []string{uri}
	case kind.Context():
		in.ContextURI = uri
	default:
		return fmt.Errorf("%w: Cannot play '%s'", shared.ErrInvalidArgument, uri)
	}

	in.Random = random && (kind == models.KindPlaylist || kind == models.KindAlbum)

	if err := engine.Execute(ctx, in); err != nil {
		return err
	}
	r.logger.Info("playing", "uri", uri)
	return nil
}
