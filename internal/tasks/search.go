package tasks

import (
	"context"
	"fmt"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/desertthunder/spt/internal/models"
	"github.com/desertthunder/spt/internal/playback"
	"github.com/desertthunder/spt/internal/shared"
	"github.com/desertthunder/spt/internal/state"
)

// searchKinds are the categories of a combined search, one request each.
var searchKinds = []models.Kind{
	models.KindTrack,
	models.KindAlbum,
	models.KindArtist,
	models.KindPlaylist,
	models.KindShow,
}

// searchAll issues one search per kind concurrently and stores the merged results only when
// every category succeeded.
func (e *Engine) searchAll(ctx context.Context, in SearchAll) error {
	term := strings.TrimSpace(in.Term)
	if term == "" {
		return fmt.Errorf("%w: search term", shared.ErrMissingArgument)
	}
	limit := e.limits().Small

	parts := make([]*models.SearchResults, len(searchKinds))
	g, gctx := errgroup.WithContext(ctx)
	for i, kind := range searchKinds {
		g.Go(func() error {
			res, err := e.client.Search(gctx, term, []models.Kind{kind}, limit, 0)
			if err != nil {
				return fmt.Errorf("search %s: %w", kind, err)
			}
			parts[i] = res
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	results := models.SearchResults{
		Tracks:    parts[0].Tracks,
		Albums:    parts[1].Albums,
		Artists:   parts[2].Artists,
		Playlists: parts[3].Playlists,
		Shows:     parts[4].Shows,
	}

	e.store.Update(func(s *state.State) {
		s.Search = results
		if s.Route().ID != state.RouteSearch {
			s.Push(state.Route{ID: state.RouteSearch, Block: state.BlockSearchResults})
		}
	})

	albumIDs := make([]string, len(results.Albums.Items))
	for i, a := range results.Albums.Items {
		albumIDs[i] = a.ID
	}
	artistIDs := make([]string, len(results.Artists.Items))
	for i, a := range results.Artists.Items {
		artistIDs[i] = a.ID
	}
	showIDs := make([]string, len(results.Shows.Items))
	for i, sh := range results.Shows.Items {
		showIDs[i] = sh.ID
	}

	e.cacheTracks(ctx, results.Tracks.Items)
	e.enrich("saved tracks", e.checkSavedTracks(ctx, trackIDs(results.Tracks.Items)))
	e.enrich("saved albums", e.checkSavedAlbums(ctx, albumIDs))
	e.enrich("followed artists", e.checkFollowedArtists(ctx, artistIDs))
	e.enrich("saved shows", e.checkSavedShows(ctx, showIDs))
	return nil
}

func (e *Engine) updateSearchLimits(in UpdateSearchLimits) error {
	if err := playback.ValidateSearchLimit(in.Small); err != nil {
		return err
	}
	if err := playback.ValidateSearchLimit(in.Large); err != nil {
		return err
	}
	e.store.Update(func(s *state.State) {
		s.SearchLimits = state.SearchLimits{Small: in.Small, Large: in.Large}
	})
	return nil
}
