package tasks

import (
	"context"
	"fmt"

	"github.com/desertthunder/spt/internal/models"
	"github.com/desertthunder/spt/internal/shared"
	"github.com/desertthunder/spt/internal/state"
)

// spotifyOwnerID owns the curated made-for-you playlists.
const spotifyOwnerID = "spotify"

// addPage caches page and moves the cursor onto it.
func addPage[T any](p *state.Pages[T], page models.Page[T]) {
	p.Add(page)
	if i, ok := p.Find(page.Offset); ok {
		p.SetIndex(i)
	}
}

func checkOffset(offset int) error {
	if offset < 0 {
		return fmt.Errorf("%w: offset must not be negative", shared.ErrInvalidArgument)
	}
	return nil
}

func (e *Engine) fetchPlaylists(ctx context.Context, in FetchPlaylists) error {
	if err := checkOffset(in.Offset); err != nil {
		return err
	}
	page, err := e.client.CurrentUserPlaylists(ctx, e.limits().Large, in.Offset)
	if err != nil {
		return err
	}

	e.store.Update(func(s *state.State) {
		if in.Offset == 0 {
			s.Playlists.Reset()
		}
		addPage(&s.Playlists, *page)
	})
	return nil
}

func (e *Engine) fetchPlaylistTracks(ctx context.Context, in FetchPlaylistTracks) error {
	if err := requireID("playlist", in.PlaylistID); err != nil {
		return err
	}
	if err := checkOffset(in.Offset); err != nil {
		return err
	}
	page, err := e.client.PlaylistTracks(ctx, in.PlaylistID, e.limits().Large, in.Offset)
	if err != nil {
		return err
	}

	tracks := playlistTracks(page.Items)
	e.store.Update(func(s *state.State) {
		if s.PlaylistID != in.PlaylistID {
			s.PlaylistTracks.Reset()
			s.PlaylistID = in.PlaylistID
		}
		addPage(&s.PlaylistTracks, *page)
		s.TrackTable = state.TrackTable{Tracks: tracks, Context: state.ContextMyPlaylists}
	})

	e.cacheTracks(ctx, tracks)
	e.enrich("saved tracks", e.checkSavedTracks(ctx, trackIDs(tracks)))
	return nil
}

func (e *Engine) fetchMadeForYouTracks(ctx context.Context, in FetchMadeForYouTracks) error {
	if err := requireID("playlist", in.PlaylistID); err != nil {
		return err
	}
	if err := checkOffset(in.Offset); err != nil {
		return err
	}
	page, err := e.client.PlaylistTracks(ctx, in.PlaylistID, e.limits().Large, in.Offset)
	if err != nil {
		return err
	}

	tracks := playlistTracks(page.Items)
	e.store.Update(func(s *state.State) {
		if s.MadeForYouID != in.PlaylistID {
			s.MadeForYouTracks.Reset()
			s.MadeForYouID = in.PlaylistID
		}
		addPage(&s.MadeForYouTracks, *page)
		s.TrackTable = state.TrackTable{Tracks: tracks, Context: state.ContextMadeForYou}
	})

	e.cacheTracks(ctx, tracks)
	e.enrich("saved tracks", e.checkSavedTracks(ctx, trackIDs(tracks)))
	return nil
}

// fetchSavedTracks needs no enrichment: every saved track is liked.
func (e *Engine) fetchSavedTracks(ctx context.Context, in FetchSavedTracks) error {
	if err := checkOffset(in.Offset); err != nil {
		return err
	}
	page, err := e.client.SavedTracks(ctx, e.limits().Large, in.Offset)
	if err != nil {
		return err
	}

	tracks := savedTracks(page.Items)
	ids := trackIDs(tracks)
	e.store.Update(func(s *state.State) {
		addPage(&s.SavedTracks, *page)
		s.TrackTable = state.TrackTable{Tracks: tracks, Context: state.ContextSavedTracks}
		for _, id := range ids {
			s.LikedTracks.Set(id, true)
		}
	})

	e.cacheTracks(ctx, tracks)
	return nil
}

// fetchSavedAlbums leaves the cache alone when the page is empty.
func (e *Engine) fetchSavedAlbums(ctx context.Context, in FetchSavedAlbums) error {
	if err := checkOffset(in.Offset); err != nil {
		return err
	}
	page, err := e.client.SavedAlbums(ctx, e.limits().Large, in.Offset)
	if err != nil {
		return err
	}
	if len(page.Items) == 0 {
		return nil
	}

	e.store.Update(func(s *state.State) {
		if in.Offset == 0 {
			s.SavedAlbums.Reset()
		}
		addPage(&s.SavedAlbums, *page)
		for _, item := range page.Items {
			s.SavedAlbumIDs.Set(item.Album.ID, true)
		}
	})
	return nil
}

// fetchSavedShows leaves the cache alone when the page is empty.
func (e *Engine) fetchSavedShows(ctx context.Context, in FetchSavedShows) error {
	if err := checkOffset(in.Offset); err != nil {
		return err
	}
	page, err := e.client.SavedShows(ctx, e.limits().Large, in.Offset)
	if err != nil {
		return err
	}
	if len(page.Items) == 0 {
		return nil
	}

	e.store.Update(func(s *state.State) {
		if in.Offset == 0 {
			s.SavedShows.Reset()
		}
		addPage(&s.SavedShows, *page)
		for _, item := range page.Items {
			s.SavedShowIDs.Set(item.Show.ID, true)
		}
	})
	return nil
}

// fetchFollowedArtists pages by cursor. An empty cursor starts over; otherwise the page is
// cached at the offset following the artists already loaded.
func (e *Engine) fetchFollowedArtists(ctx context.Context, in FetchFollowedArtists) error {
	cursor, err := e.client.FollowedArtists(ctx, e.limits().Large, in.After)
	if err != nil {
		return err
	}

	e.store.Update(func(s *state.State) {
		offset := 0
		if in.After == "" {
			s.FollowedArtists.Reset()
		} else {
			offset = s.FollowedArtists.Count()
		}
		addPage(&s.FollowedArtists, models.Page[models.Artist]{
			Items:  cursor.Items,
			Total:  cursor.Total,
			Offset: offset,
			Limit:  cursor.Limit,
			Next:   cursor.Next,
		})
		for _, a := range cursor.Items {
			s.FollowedArtistIDs.Set(a.ID, true)
		}
	})
	return nil
}

func (e *Engine) fetchShowEpisodes(ctx context.Context, in FetchShowEpisodes) error {
	if err := requireID("show", in.ShowID); err != nil {
		return err
	}
	if err := checkOffset(in.Offset); err != nil {
		return err
	}
	page, err := e.client.ShowEpisodes(ctx, in.ShowID, e.limits().Large, in.Offset)
	if err != nil {
		return err
	}

	e.store.Update(func(s *state.State) {
		if s.ShowID != in.ShowID {
			s.ShowEpisodes.Reset()
			s.ShowID = in.ShowID
		}
		addPage(&s.ShowEpisodes, *page)
		if s.Route().ID != state.RouteEpisodeTable {
			s.Push(state.Route{ID: state.RouteEpisodeTable, Block: state.BlockEpisodeTable})
		}
	})
	return nil
}

func (e *Engine) fetchRecentlyPlayed(ctx context.Context) error {
	cursor, err := e.client.RecentlyPlayed(ctx, e.limits().Large)
	if err != nil {
		return err
	}

	tracks := make([]models.Track, len(cursor.Items))
	for i, h := range cursor.Items {
		tracks[i] = h.Track
	}

	e.store.Update(func(s *state.State) {
		s.RecentlyPlayed = cursor.Items
		if s.Route().ID != state.RouteRecentlyPlayed {
			s.Push(state.Route{ID: state.RouteRecentlyPlayed, Block: state.BlockRecentlyPlayed})
		}
	})

	e.cacheTracks(ctx, tracks)
	e.enrich("saved tracks", e.checkSavedTracks(ctx, trackIDs(tracks)))
	return nil
}

// madeForYouSearchAndAdd keeps only curated playlists whose name matches exactly. Matches are
// appended to the first cached page, or become the first page.
func (e *Engine) madeForYouSearchAndAdd(ctx context.Context, in MadeForYouSearchAndAdd) error {
	if in.Name == "" {
		return fmt.Errorf("%w: playlist name", shared.ErrMissingArgument)
	}
	results, err := e.client.Search(ctx, in.Name, []models.Kind{models.KindPlaylist}, e.limits().Large, 0)
	if err != nil {
		return err
	}

	var matches []models.Playlist
	for _, p := range results.Playlists.Items {
		if p.Owner.ID == spotifyOwnerID && p.Name == in.Name {
			matches = append(matches, p)
		}
	}

	e.store.Update(func(s *state.State) {
		if s.MadeForYou.Extend(0, matches...) {
			return
		}
		page := results.Playlists
		page.Items = matches
		page.Total = len(matches)
		s.MadeForYou.Add(page)
	})
	return nil
}
