package tasks

import (
	"context"
	"fmt"
	"slices"

	"golang.org/x/sync/errgroup"

	"github.com/desertthunder/spt/internal/shared"
	"github.com/desertthunder/spt/internal/state"
)

// maxContainsIDs is the largest id list one containment request accepts.
const maxContainsIDs = 50

type containsFunc func(ctx context.Context, ids []string) ([]bool, error)

// contains answers a containment query for any number of ids, issuing one request per
// chunk of [maxContainsIDs] concurrently. Answers are in id order.
func contains(ctx context.Context, ids []string, query containsFunc) ([]bool, error) {
	answers := make([]bool, len(ids))
	g, gctx := errgroup.WithContext(ctx)

	for start := 0; start < len(ids); start += maxContainsIDs {
		end := min(start+maxContainsIDs, len(ids))
		g.Go(func() error {
			chunk, err := query(gctx, ids[start:end])
			if err != nil {
				return err
			}
			if len(chunk) != end-start {
				return fmt.Errorf("%w: expected %d containment answers, got %d", shared.ErrAPIRequest, end-start, len(chunk))
			}
			copy(answers[start:end], chunk)
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return answers, nil
}

// check runs a containment query and applies the answers to the set chosen by pick.
func (e *Engine) check(ctx context.Context, ids []string, query containsFunc, pick func(s *state.State) *state.ContainmentSet) error {
	ids = slices.DeleteFunc(slices.Clone(ids), func(id string) bool { return id == "" })
	if len(ids) == 0 {
		return nil
	}

	answers, err := contains(ctx, ids, query)
	if err != nil {
		return err
	}

	e.store.Update(func(s *state.State) { pick(s).Apply(ids, answers) })
	return nil
}

func (e *Engine) checkSavedTracks(ctx context.Context, ids []string) error {
	return e.check(ctx, ids, e.client.ContainsSavedTracks, func(s *state.State) *state.ContainmentSet { return &s.LikedTracks })
}

func (e *Engine) checkSavedAlbums(ctx context.Context, ids []string) error {
	return e.check(ctx, ids, e.client.ContainsSavedAlbums, func(s *state.State) *state.ContainmentSet { return &s.SavedAlbumIDs })
}

func (e *Engine) checkSavedShows(ctx context.Context, ids []string) error {
	return e.check(ctx, ids, e.client.ContainsSavedShows, func(s *state.State) *state.ContainmentSet { return &s.SavedShowIDs })
}

func (e *Engine) checkFollowedArtists(ctx context.Context, ids []string) error {
	return e.check(ctx, ids, e.client.ContainsFollowedArtists, func(s *state.State) *state.ContainmentSet { return &s.FollowedArtistIDs })
}

// isMember asks the remote whether a single id is in a collection.
func isMember(ctx context.Context, id string, query containsFunc) (bool, error) {
	answers, err := query(ctx, []string{id})
	if err != nil {
		return false, err
	}
	if len(answers) != 1 {
		return false, fmt.Errorf("%w: expected 1 containment answer, got %d", shared.ErrAPIRequest, len(answers))
	}
	return answers[0], nil
}

func (e *Engine) toggleSaveTrack(ctx context.Context, in ToggleSaveTrack) error {
	if err := requireID("track", in.ID); err != nil {
		return err
	}
	saved, err := isMember(ctx, in.ID, e.client.ContainsSavedTracks)
	if err != nil {
		return err
	}
	return e.writeTrackSaved(ctx, in.ID, saved, !saved)
}

func (e *Engine) setTrackSaved(ctx context.Context, in SetTrackSaved) error {
	if err := requireID("track", in.ID); err != nil {
		return err
	}
	saved, err := isMember(ctx, in.ID, e.client.ContainsSavedTracks)
	if err != nil {
		return err
	}
	return e.writeTrackSaved(ctx, in.ID, saved, in.Saved)
}

func (e *Engine) toggleLikeCurrent(ctx context.Context) error {
	id, err := e.currentTrackID()
	if err != nil {
		return err
	}
	return e.toggleSaveTrack(ctx, ToggleSaveTrack{ID: id})
}

func (e *Engine) setCurrentSaved(ctx context.Context, in SetCurrentSaved) error {
	id, err := e.currentTrackID()
	if err != nil {
		return err
	}
	return e.setTrackSaved(ctx, SetTrackSaved{ID: id, Saved: in.Saved})
}

// currentTrackID is the id of the playing track. Episodes cannot be liked.
func (e *Engine) currentTrackID() (string, error) {
	pb, ok := e.store.Playback()
	if !ok || pb.Item == nil {
		return "", shared.ErrNoPlayback
	}
	if pb.Item.Track == nil || pb.Item.Track.ID == "" {
		return "", fmt.Errorf("%w: only tracks can be liked", shared.ErrInvalidArgument)
	}
	return pb.Item.Track.ID, nil
}

// writeTrackSaved moves a track from its remote state to want, skipping the call when they match.
func (e *Engine) writeTrackSaved(ctx context.Context, id string, saved, want bool) error {
	if saved != want {
		var err error
		if want {
			err = e.client.SaveTracks(ctx, []string{id})
		} else {
			err = e.client.RemoveSavedTracks(ctx, []string{id})
		}
		if err != nil {
			return err
		}
	}

	e.store.Update(func(s *state.State) { s.LikedTracks.Set(id, want) })
	return nil
}

func (e *Engine) toggleSaveAlbum(ctx context.Context, in ToggleSaveAlbum) error {
	if err := requireID("album", in.ID); err != nil {
		return err
	}
	saved, err := isMember(ctx, in.ID, e.client.ContainsSavedAlbums)
	if err != nil {
		return err
	}

	ids := []string{in.ID}
	if saved {
		err = e.client.RemoveSavedAlbums(ctx, ids)
	} else {
		err = e.client.SaveAlbums(ctx, ids)
	}
	if err != nil {
		return err
	}

	e.store.Update(func(s *state.State) { s.SavedAlbumIDs.Set(in.ID, !saved) })
	if saved {
		return e.fetchSavedAlbums(ctx, FetchSavedAlbums{})
	}
	return nil
}

func (e *Engine) toggleSaveShow(ctx context.Context, in ToggleSaveShow) error {
	if err := requireID("show", in.ID); err != nil {
		return err
	}
	saved, err := isMember(ctx, in.ID, e.client.ContainsSavedShows)
	if err != nil {
		return err
	}

	ids := []string{in.ID}
	if saved {
		err = e.client.RemoveSavedShows(ctx, ids)
	} else {
		err = e.client.SaveShows(ctx, ids)
	}
	if err != nil {
		return err
	}

	e.store.Update(func(s *state.State) { s.SavedShowIDs.Set(in.ID, !saved) })
	if saved {
		return e.fetchSavedShows(ctx, FetchSavedShows{})
	}
	return nil
}

func (e *Engine) toggleFollowArtist(ctx context.Context, in ToggleFollowArtist) error {
	if err := requireID("artist", in.ID); err != nil {
		return err
	}
	followed, err := isMember(ctx, in.ID, e.client.ContainsFollowedArtists)
	if err != nil {
		return err
	}

	ids := []string{in.ID}
	if followed {
		err = e.client.UnfollowArtists(ctx, ids)
	} else {
		err = e.client.FollowArtists(ctx, ids)
	}
	if err != nil {
		return err
	}

	e.store.Update(func(s *state.State) { s.FollowedArtistIDs.Set(in.ID, !followed) })
	if followed {
		return e.fetchFollowedArtists(ctx, FetchFollowedArtists{})
	}
	return nil
}

func (e *Engine) toggleFollowPlaylist(ctx context.Context, in ToggleFollowPlaylist) error {
	if err := requireID("playlist", in.ID); err != nil {
		return err
	}

	user, ok := e.store.User()
	if !ok {
		u, err := e.client.CurrentUser(ctx)
		if err != nil {
			return err
		}
		user = *u
	}

	followed, err := e.client.PlaylistFollowedBy(ctx, in.ID, user.ID)
	if err != nil {
		return err
	}
	if followed {
		err = e.client.UnfollowPlaylist(ctx, in.ID)
	} else {
		err = e.client.FollowPlaylist(ctx, in.ID)
	}
	if err != nil {
		return err
	}

	e.store.Update(func(s *state.State) {
		if s.User == nil {
			s.User = &user
		}
	})
	return e.fetchPlaylists(ctx, FetchPlaylists{})
}
