package tasks

import (
	"context"
	"fmt"

	"github.com/desertthunder/spt/internal/models"
	"github.com/desertthunder/spt/internal/playback"
	"github.com/desertthunder/spt/internal/shared"
	"github.com/desertthunder/spt/internal/state"
)

func (e *Engine) fetchPlayback(ctx context.Context) error {
	pb, err := e.client.CurrentPlayback(ctx)
	if err != nil {
		return err
	}

	e.store.Update(func(s *state.State) { s.Playback = pb })

	if pb == nil || pb.Item == nil || pb.Item.Track == nil {
		return nil
	}
	track := *pb.Item.Track
	e.cacheTracks(ctx, []models.Track{track})
	e.enrich("saved tracks", e.checkSavedTracks(ctx, trackIDs([]models.Track{track})))
	return nil
}

// refetch is the follow-up of every command whose effect is not patched locally.
func (e *Engine) refetch(ctx context.Context) error {
	return e.fetchPlayback(ctx)
}

func (e *Engine) startPlayback(ctx context.Context, in StartPlayback) error {
	req := models.PlayRequest{ContextURI: in.ContextURI, URIs: in.URIs}
	if in.Random {
		offset, err := e.randomOffset(ctx, in.ContextURI)
		if err != nil {
			return err
		}
		in.Offset = &offset
	}
	if in.Offset != nil {
		if *in.Offset < 0 {
			return fmt.Errorf("%w: offset must not be negative", shared.ErrInvalidArgument)
		}
		req.Offset = &models.PlayOffset{Position: *in.Offset}
	}

	if err := e.client.StartPlayback(ctx, e.store.DeviceID(), req); err != nil {
		return err
	}

	e.store.Update(func(s *state.State) {
		if s.Playback != nil {
			pb := playback.ResetProgress(*s.Playback)
			s.Playback = &pb
		}
	})
	return e.refetch(ctx)
}

// randomOffset picks a track position in a playlist or album context.
func (e *Engine) randomOffset(ctx context.Context, uri string) (int, error) {
	kind, id, err := models.ParseURI(uri)
	if err != nil {
		return 0, fmt.Errorf("%w: Cannot play '%s'", shared.ErrInvalidArgument, uri)
	}

	var total int
	switch kind {
	case models.KindPlaylist:
		page, err := e.client.PlaylistTracks(ctx, id, 1, 0)
		if err != nil {
			return 0, err
		}
		total = page.Total
	case models.KindAlbum:
		page, err := e.client.AlbumTracks(ctx, id, 1, 0)
		if err != nil {
			return 0, err
		}
		total = page.Total
	default:
		return 0, fmt.Errorf("%w: cannot pick a random track from a %s", shared.ErrInvalidArgument, kind)
	}
	return playback.RandomOffset(total)
}

func (e *Engine) pause(ctx context.Context) error {
	if err := e.client.Pause(ctx, e.store.DeviceID()); err != nil {
		return err
	}
	return e.refetch(ctx)
}

func (e *Engine) togglePlayback(ctx context.Context) error {
	if pb, ok := e.store.Playback(); ok && pb.IsPlaying {
		return e.pause(ctx)
	}
	return e.startPlayback(ctx, StartPlayback{})
}

func (e *Engine) nextTrack(ctx context.Context) error {
	if err := e.client.Next(ctx, e.store.DeviceID()); err != nil {
		return err
	}
	return e.refetch(ctx)
}

func (e *Engine) previousTrack(ctx context.Context) error {
	if err := e.client.Previous(ctx, e.store.DeviceID()); err != nil {
		return err
	}
	return e.refetch(ctx)
}

func (e *Engine) seek(ctx context.Context, in Seek) error {
	if in.PositionMs < 0 {
		return fmt.Errorf("%w: seek position must not be negative", shared.ErrInvalidArgument)
	}
	if err := e.client.Seek(ctx, e.store.DeviceID(), in.PositionMs); err != nil {
		return err
	}
	if err := e.sleep(ctx, e.seekDelay); err != nil {
		return err
	}
	return e.refetch(ctx)
}

func (e *Engine) seekRelative(ctx context.Context, in SeekRelative) error {
	pb, ok := e.store.Playback()
	if !ok || pb.Item == nil {
		return shared.ErrNoPlayback
	}

	target, err := playback.ComputeSeekTarget(in.Raw, pb.Progress(), pb.Item.Duration())
	if err != nil {
		return err
	}
	if target.Next {
		return e.nextTrack(ctx)
	}
	return e.seek(ctx, Seek{PositionMs: int(target.Position.Milliseconds())})
}

func (e *Engine) stepVolume(ctx context.Context, in StepVolume) error {
	pb, ok := e.store.Playback()
	if !ok {
		return shared.ErrNoPlayback
	}
	percent := min(max(pb.Device.VolumePercent+in.Delta, 0), 100)
	return e.changeVolume(ctx, ChangeVolume{Percent: percent})
}

func (e *Engine) changeVolume(ctx context.Context, in ChangeVolume) error {
	if err := playback.ValidateVolume(in.Percent); err != nil {
		return err
	}
	if err := e.client.SetVolume(ctx, e.store.DeviceID(), in.Percent); err != nil {
		return err
	}

	e.store.Update(func(s *state.State) {
		if s.Playback != nil {
			pb := playback.PatchVolume(*s.Playback, in.Percent)
			s.Playback = &pb
		}
	})
	return nil
}

func (e *Engine) toggleShuffle(ctx context.Context) error {
	pb, ok := e.store.Playback()
	if !ok {
		return shared.ErrNoPlayback
	}

	shuffle := !pb.ShuffleState
	if err := e.client.SetShuffle(ctx, e.store.DeviceID(), shuffle); err != nil {
		return err
	}

	e.store.Update(func(s *state.State) {
		if s.Playback != nil {
			patched := playback.PatchShuffle(*s.Playback, shuffle)
			s.Playback = &patched
		}
	})
	return nil
}

func (e *Engine) cycleRepeat(ctx context.Context) error {
	pb, ok := e.store.Playback()
	if !ok {
		return shared.ErrNoPlayback
	}

	next := playback.NextRepeat(pb.RepeatState)
	if err := e.client.SetRepeat(ctx, e.store.DeviceID(), next); err != nil {
		return err
	}

	e.store.Update(func(s *state.State) {
		if s.Playback != nil {
			patched := playback.PatchRepeat(*s.Playback, next)
			s.Playback = &patched
		}
	})
	return nil
}

func (e *Engine) transferPlayback(ctx context.Context, in TransferPlayback) error {
	if err := requireID("device", in.DeviceID); err != nil {
		return err
	}
	if err := e.client.TransferPlayback(ctx, in.DeviceID, true); err != nil {
		return err
	}

	e.store.Update(func(s *state.State) {
		s.DeviceID = in.DeviceID
		if s.Route().ID == state.RouteSelectDevice {
			s.Pop()
		}
	})
	return e.refetch(ctx)
}

func (e *Engine) addToQueue(ctx context.Context, in AddToQueue) error {
	kind, _, err := models.ParseURI(in.URI)
	if err != nil || !kind.Playable() {
		return fmt.Errorf("%w: Cannot queue '%s'", shared.ErrInvalidArgument, in.URI)
	}
	return e.client.AddToQueue(ctx, e.store.DeviceID(), in.URI)
}

func (e *Engine) fetchDevices(ctx context.Context, in FetchDevices) error {
	devices, err := e.client.Devices(ctx)
	if err != nil {
		return err
	}

	e.store.Update(func(s *state.State) {
		s.Devices = devices
		s.SelectedDevice = 0
		if !in.KeepRoute && s.Route().ID != state.RouteSelectDevice {
			s.Push(state.Route{ID: state.RouteSelectDevice, Block: state.BlockSelectDevice})
		}
	})
	return nil
}

func (e *Engine) selectDevice(in SelectDevice) error {
	if err := requireID("device", in.ID); err != nil {
		return err
	}
	e.store.Update(func(s *state.State) { s.DeviceID = in.ID })
	return nil
}

func (e *Engine) popRoute(in PopRoute) error {
	e.store.Update(func(s *state.State) {
		if s.Route().ID == in.ID {
			s.Pop()
		}
	})
	return nil
}
