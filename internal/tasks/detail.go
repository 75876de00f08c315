package tasks

import (
	"context"

	"golang.org/x/sync/errgroup"

	"github.com/desertthunder/spt/internal/models"
	"github.com/desertthunder/spt/internal/state"
)

// fromToken asks the remote to pick the market of the current user.
const fromToken = "from_token"

// withAlbum fills the album of tracks listed under it.
func withAlbum(tracks []models.Track, album models.SimplifiedAlbum) []models.Track {
	out := make([]models.Track, len(tracks))
	for i, t := range tracks {
		if t.Album.ID == "" {
			t.Album = album
		}
		out[i] = t
	}
	return out
}

func (e *Engine) showAlbum(ctx context.Context, album models.SimplifiedAlbum, page models.Page[models.Track], selected int) {
	page.Items = withAlbum(page.Items, album)

	e.store.Update(func(s *state.State) {
		s.Album = &state.AlbumView{Album: album, Tracks: page, Selected: selected}
		if s.Route().ID != state.RouteAlbumTracks {
			s.Push(state.Route{ID: state.RouteAlbumTracks, Block: state.BlockAlbumTracks})
		}
	})

	e.cacheTracks(ctx, page.Items)
	e.enrich("saved tracks", e.checkSavedTracks(ctx, trackIDs(page.Items)))
	e.enrich("saved albums", e.checkSavedAlbums(ctx, []string{album.ID}))
}

func (e *Engine) fetchAlbum(ctx context.Context, in FetchAlbum) error {
	if err := requireID("album", in.AlbumID); err != nil {
		return err
	}
	album, err := e.client.Album(ctx, in.AlbumID)
	if err != nil {
		return err
	}
	e.showAlbum(ctx, album.SimplifiedAlbum, album.Tracks, 0)
	return nil
}

func (e *Engine) fetchAlbumTracks(ctx context.Context, in FetchAlbumTracks) error {
	if err := requireID("album", in.Album.ID); err != nil {
		return err
	}
	if err := checkOffset(in.Offset); err != nil {
		return err
	}
	page, err := e.client.AlbumTracks(ctx, in.Album.ID, e.limits().Large, in.Offset)
	if err != nil {
		return err
	}
	e.showAlbum(ctx, in.Album, *page, 0)
	return nil
}

// fetchAlbumForTrack selects the track by its position on the album.
func (e *Engine) fetchAlbumForTrack(ctx context.Context, in FetchAlbumForTrack) error {
	if err := requireID("track", in.TrackID); err != nil {
		return err
	}
	track, err := e.client.Track(ctx, in.TrackID)
	if err != nil {
		return err
	}
	if err := requireID("album", track.Album.ID); err != nil {
		return err
	}
	album, err := e.client.Album(ctx, track.Album.ID)
	if err != nil {
		return err
	}
	e.showAlbum(ctx, album.SimplifiedAlbum, album.Tracks, max(track.TrackNumber-1, 0))
	return nil
}

// fetchArtist loads the three artist views together; any failure leaves the store untouched.
func (e *Engine) fetchArtist(ctx context.Context, in FetchArtist) error {
	if err := requireID("artist", in.ArtistID); err != nil {
		return err
	}

	market := fromToken
	if user, ok := e.store.User(); ok && user.Country != "" {
		market = user.Country
	}

	var (
		albums    *models.Page[models.SimplifiedAlbum]
		topTracks []models.Track
		related   []models.Artist
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		albums, err = e.client.ArtistAlbums(gctx, in.ArtistID, e.limits().Large)
		return err
	})
	g.Go(func() (err error) {
		topTracks, err = e.client.ArtistTopTracks(gctx, in.ArtistID, market)
		return err
	})
	g.Go(func() (err error) {
		related, err = e.client.RelatedArtists(gctx, in.ArtistID)
		return err
	})
	if err := g.Wait(); err != nil {
		return err
	}

	e.store.Update(func(s *state.State) {
		s.Artist = &state.ArtistView{
			ID:        in.ArtistID,
			Name:      in.Name,
			Albums:    albums.Items,
			TopTracks: topTracks,
			Related:   related,
		}
		if s.Route().ID != state.RouteArtist {
			s.Push(state.Route{ID: state.RouteArtist, Block: state.BlockArtistBlock})
		}
	})

	albumIDs := make([]string, len(albums.Items))
	for i, a := range albums.Items {
		albumIDs[i] = a.ID
	}
	artistIDs := []string{in.ArtistID}
	for _, a := range related {
		artistIDs = append(artistIDs, a.ID)
	}

	e.cacheTracks(ctx, topTracks)
	e.enrich("saved tracks", e.checkSavedTracks(ctx, trackIDs(topTracks)))
	e.enrich("saved albums", e.checkSavedAlbums(ctx, albumIDs))
	e.enrich("followed artists", e.checkFollowedArtists(ctx, artistIDs))
	return nil
}

func (e *Engine) fetchShow(ctx context.Context, in FetchShow) error {
	if err := requireID("show", in.ShowID); err != nil {
		return err
	}
	show, err := e.client.Show(ctx, in.ShowID)
	if err != nil {
		return err
	}
	episodes, err := e.client.ShowEpisodes(ctx, in.ShowID, e.limits().Large, 0)
	if err != nil {
		return err
	}

	e.store.Update(func(s *state.State) {
		s.Show = show
		s.ShowID = in.ShowID
		s.ShowEpisodes.Reset()
		addPage(&s.ShowEpisodes, *episodes)
		if s.Route().ID != state.RouteEpisodeTable {
			s.Push(state.Route{ID: state.RouteEpisodeTable, Block: state.BlockEpisodeTable})
		}
	})

	e.enrich("saved shows", e.checkSavedShows(ctx, []string{in.ShowID}))
	return nil
}

func (e *Engine) fetchUser(ctx context.Context) error {
	user, err := e.client.CurrentUser(ctx)
	if err != nil {
		return err
	}
	e.store.Update(func(s *state.State) { s.User = user })
	return nil
}

func (e *Engine) fetchRecommendations(ctx context.Context, in FetchRecommendations) error {
	seeds := models.RecommendationSeeds{Artists: in.SeedArtists, Tracks: in.SeedTracks}
	tracks, err := e.client.Recommendations(ctx, seeds, e.limits().Large)
	if err != nil {
		return err
	}
	return e.playRecommendations(ctx, tracks)
}

// fetchRecommendationsForTrack plays the seed track ahead of its recommendations.
func (e *Engine) fetchRecommendationsForTrack(ctx context.Context, in FetchRecommendationsForTrack) error {
	if err := requireID("track", in.TrackID); err != nil {
		return err
	}
	seed, err := e.client.Track(ctx, in.TrackID)
	if err != nil {
		return err
	}
	seeds := models.RecommendationSeeds{Tracks: []string{in.TrackID}}
	tracks, err := e.client.Recommendations(ctx, seeds, e.limits().Large)
	if err != nil {
		return err
	}
	return e.playRecommendations(ctx, append([]models.Track{*seed}, tracks...))
}

func (e *Engine) playRecommendations(ctx context.Context, tracks []models.Track) error {
	e.store.Update(func(s *state.State) {
		s.Recommended = tracks
		s.TrackTable = state.TrackTable{Tracks: tracks, Context: state.ContextRecommendedTracks}
		if s.Route().ID != state.RouteTrackTable {
			s.Push(state.Route{ID: state.RouteTrackTable, Block: state.BlockTrackTable})
		}
	})

	e.cacheTracks(ctx, tracks)
	e.enrich("saved tracks", e.checkSavedTracks(ctx, trackIDs(tracks)))

	uris := trackURIs(tracks)
	if len(uris) == 0 {
		return nil
	}
	offset := 0
	return e.startPlayback(ctx, StartPlayback{URIs: uris, Offset: &offset})
}
