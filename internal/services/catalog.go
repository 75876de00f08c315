package services

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/desertthunder/spt/internal/models"
	"github.com/desertthunder/spt/internal/shared"
)

// Album retrieves an album with its first page of tracks.
func (s *SpotifyService) Album(ctx context.Context, albumID string) (*models.Album, error) {
	var album models.Album
	if err := s.doRequest(ctx, http.MethodGet, "/albums/"+url.PathEscape(albumID), nil, nil, &album); err != nil {
		return nil, err
	}
	return &album, nil
}

// AlbumTracks retrieves one page of an album's tracks.
func (s *SpotifyService) AlbumTracks(ctx context.Context, albumID string, limit, offset int) (*models.Page[models.Track], error) {
	var page models.Page[models.Track]
	endpoint := fmt.Sprintf("/albums/%s/tracks", url.PathEscape(albumID))
	if err := s.doRequest(ctx, http.MethodGet, endpoint, pageQuery(limit, offset), nil, &page); err != nil {
		return nil, err
	}
	return &page, nil
}

// Track retrieves a single track by ID.
func (s *SpotifyService) Track(ctx context.Context, trackID string) (*models.Track, error) {
	var track models.Track
	if err := s.doRequest(ctx, http.MethodGet, "/tracks/"+url.PathEscape(trackID), nil, nil, &track); err != nil {
		return nil, err
	}
	return &track, nil
}

// Show retrieves a podcast by ID.
func (s *SpotifyService) Show(ctx context.Context, showID string) (*models.Show, error) {
	var show models.Show
	if err := s.doRequest(ctx, http.MethodGet, "/shows/"+url.PathEscape(showID), nil, nil, &show); err != nil {
		return nil, err
	}
	return &show, nil
}

// ArtistAlbums retrieves an artist's albums and singles.
func (s *SpotifyService) ArtistAlbums(ctx context.Context, artistID string, limit int) (*models.Page[models.SimplifiedAlbum], error) {
	q := pageQuery(limit, 0)
	q.Set("include_groups", "album,single")

	var page models.Page[models.SimplifiedAlbum]
	endpoint := fmt.Sprintf("/artists/%s/albums", url.PathEscape(artistID))
	if err := s.doRequest(ctx, http.MethodGet, endpoint, q, nil, &page); err != nil {
		return nil, err
	}
	return &page, nil
}

// ArtistTopTracks retrieves an artist's most popular tracks in market.
func (s *SpotifyService) ArtistTopTracks(ctx context.Context, artistID, market string) ([]models.Track, error) {
	if market == "" {
		market = "from_token"
	}

	var response struct {
		Tracks []models.Track `json:"tracks"`
	}
	endpoint := fmt.Sprintf("/artists/%s/top-tracks", url.PathEscape(artistID))
	if err := s.doRequest(ctx, http.MethodGet, endpoint, url.Values{"market": {market}}, nil, &response); err != nil {
		return nil, err
	}
	return response.Tracks, nil
}

// RelatedArtists retrieves artists similar to artistID.
func (s *SpotifyService) RelatedArtists(ctx context.Context, artistID string) ([]models.Artist, error) {
	var response struct {
		Artists []models.Artist `json:"artists"`
	}
	endpoint := fmt.Sprintf("/artists/%s/related-artists", url.PathEscape(artistID))
	if err := s.doRequest(ctx, http.MethodGet, endpoint, nil, nil, &response); err != nil {
		return nil, err
	}
	return response.Artists, nil
}

// Recommendations retrieves tracks generated from seeds.
func (s *SpotifyService) Recommendations(ctx context.Context, seeds models.RecommendationSeeds, limit int) ([]models.Track, error) {
	if seeds.Empty() {
		return nil, fmt.Errorf("%w: recommendation seed", shared.ErrMissingArgument)
	}

	q := url.Values{"limit": {strconv.Itoa(clampLimit(limit))}}
	if len(seeds.Artists) > 0 {
		q.Set("seed_artists", strings.Join(seeds.Artists, ","))
	}
	if len(seeds.Tracks) > 0 {
		q.Set("seed_tracks", strings.Join(seeds.Tracks, ","))
	}
	if len(seeds.Genres) > 0 {
		q.Set("seed_genres", strings.Join(seeds.Genres, ","))
	}

	var response struct {
		Tracks []models.Track `json:"tracks"`
	}
	if err := s.doRequest(ctx, http.MethodGet, "/recommendations", q, nil, &response); err != nil {
		return nil, err
	}
	return response.Tracks, nil
}

// Search runs query against the given kinds. Results for kinds not requested are empty pages.
func (s *SpotifyService) Search(ctx context.Context, query string, kinds []models.Kind, limit, offset int) (*models.SearchResults, error) {
	if strings.TrimSpace(query) == "" {
		return nil, fmt.Errorf("%w: search term", shared.ErrMissingArgument)
	}
	if len(kinds) == 0 {
		return nil, fmt.Errorf("%w: search type", shared.ErrMissingArgument)
	}

	types := make([]string, len(kinds))
	for i, k := range kinds {
		types[i] = string(k)
	}

	q := pageQuery(limit, offset)
	q.Set("q", query)
	q.Set("type", strings.Join(types, ","))

	var results models.SearchResults
	if err := s.doRequest(ctx, http.MethodGet, "/search", q, nil, &results); err != nil {
		return nil, err
	}
	return &results, nil
}
