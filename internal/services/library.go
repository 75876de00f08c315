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

// clampLimit keeps limit within the API's 1..50, defaulting to 20.
func clampLimit(limit int) int {
	if limit <= 0 {
		return 20
	}
	if limit > 50 {
		return 50
	}
	return limit
}

func pageQuery(limit, offset int) url.Values {
	q := url.Values{}
	q.Set("limit", strconv.Itoa(clampLimit(limit)))
	q.Set("offset", strconv.Itoa(max(offset, 0)))
	return q
}

func idsQuery(ids []string) (url.Values, error) {
	if len(ids) == 0 {
		return nil, fmt.Errorf("%w: no ids provided", shared.ErrMissingArgument)
	}
	if len(ids) > MaxIDsPerRequest {
		return nil, fmt.Errorf("%w: maximum %d ids allowed", shared.ErrInvalidArgument, MaxIDsPerRequest)
	}
	return url.Values{"ids": {strings.Join(ids, ",")}}, nil
}

// CurrentUser retrieves the authenticated user's profile.
func (s *SpotifyService) CurrentUser(ctx context.Context) (*models.User, error) {
	var user models.User
	if err := s.doRequest(ctx, http.MethodGet, "/me", nil, nil, &user); err != nil {
		return nil, err
	}
	return &user, nil
}

// CurrentUserPlaylists retrieves one page of the user's playlists.
func (s *SpotifyService) CurrentUserPlaylists(ctx context.Context, limit, offset int) (*models.Page[models.Playlist], error) {
	var page models.Page[models.Playlist]
	if err := s.doRequest(ctx, http.MethodGet, "/me/playlists", pageQuery(limit, offset), nil, &page); err != nil {
		return nil, err
	}
	return &page, nil
}

// PlaylistTracks retrieves one page of a playlist's items.
func (s *SpotifyService) PlaylistTracks(ctx context.Context, playlistID string, limit, offset int) (*models.Page[models.PlaylistItem], error) {
	var page models.Page[models.PlaylistItem]
	endpoint := fmt.Sprintf("/playlists/%s/tracks", url.PathEscape(playlistID))
	if err := s.doRequest(ctx, http.MethodGet, endpoint, pageQuery(limit, offset), nil, &page); err != nil {
		return nil, err
	}
	return &page, nil
}

// SavedTracks retrieves one page of the user's liked songs.
func (s *SpotifyService) SavedTracks(ctx context.Context, limit, offset int) (*models.Page[models.SavedTrack], error) {
	var page models.Page[models.SavedTrack]
	if err := s.doRequest(ctx, http.MethodGet, "/me/tracks", pageQuery(limit, offset), nil, &page); err != nil {
		return nil, err
	}
	return &page, nil
}

// SavedAlbums retrieves one page of the user's saved albums.
func (s *SpotifyService) SavedAlbums(ctx context.Context, limit, offset int) (*models.Page[models.SavedAlbum], error) {
	var page models.Page[models.SavedAlbum]
	if err := s.doRequest(ctx, http.MethodGet, "/me/albums", pageQuery(limit, offset), nil, &page); err != nil {
		return nil, err
	}
	return &page, nil
}

// SavedShows retrieves one page of the user's followed podcasts.
func (s *SpotifyService) SavedShows(ctx context.Context, limit, offset int) (*models.Page[models.SavedShow], error) {
	var page models.Page[models.SavedShow]
	if err := s.doRequest(ctx, http.MethodGet, "/me/shows", pageQuery(limit, offset), nil, &page); err != nil {
		return nil, err
	}
	return &page, nil
}

// FollowedArtists retrieves one cursor page of followed artists, starting after the given artist id.
func (s *SpotifyService) FollowedArtists(ctx context.Context, limit int, after string) (*models.CursorPage[models.Artist], error) {
	q := url.Values{"type": {"artist"}, "limit": {strconv.Itoa(clampLimit(limit))}}
	if after != "" {
		q.Set("after", after)
	}

	var response struct {
		Artists models.CursorPage[models.Artist] `json:"artists"`
	}
	if err := s.doRequest(ctx, http.MethodGet, "/me/following", q, nil, &response); err != nil {
		return nil, err
	}
	return &response.Artists, nil
}

// ShowEpisodes retrieves one page of a show's episodes.
func (s *SpotifyService) ShowEpisodes(ctx context.Context, showID string, limit, offset int) (*models.Page[models.Episode], error) {
	var page models.Page[models.Episode]
	endpoint := fmt.Sprintf("/shows/%s/episodes", url.PathEscape(showID))
	if err := s.doRequest(ctx, http.MethodGet, endpoint, pageQuery(limit, offset), nil, &page); err != nil {
		return nil, err
	}
	return &page, nil
}

// RecentlyPlayed retrieves the most recently played tracks.
func (s *SpotifyService) RecentlyPlayed(ctx context.Context, limit int) (*models.CursorPage[models.PlayHistory], error) {
	q := url.Values{"limit": {strconv.Itoa(clampLimit(limit))}}

	var page models.CursorPage[models.PlayHistory]
	if err := s.doRequest(ctx, http.MethodGet, "/me/player/recently-played", q, nil, &page); err != nil {
		return nil, err
	}
	return &page, nil
}

func (s *SpotifyService) contains(ctx context.Context, endpoint string, ids []string, extra url.Values) ([]bool, error) {
	q, err := idsQuery(ids)
	if err != nil {
		return nil, err
	}
	for k, v := range extra {
		q[k] = v
	}

	var answers []bool
	if err := s.doRequest(ctx, http.MethodGet, endpoint, q, nil, &answers); err != nil {
		return nil, err
	}
	if len(answers) != len(ids) {
		return nil, fmt.Errorf("%w: expected %d answers, got %d", shared.ErrAPIRequest, len(ids), len(answers))
	}
	return answers, nil
}

func (s *SpotifyService) modify(ctx context.Context, method, endpoint string, ids []string, extra url.Values) error {
	q, err := idsQuery(ids)
	if err != nil {
		return err
	}
	for k, v := range extra {
		q[k] = v
	}
	return s.doRequest(ctx, method, endpoint, q, nil, nil)
}

var artistType = url.Values{"type": {"artist"}}

// ContainsSavedTracks reports, per id, whether the track is in the user's liked songs.
func (s *SpotifyService) ContainsSavedTracks(ctx context.Context, ids []string) ([]bool, error) {
	return s.contains(ctx, "/me/tracks/contains", ids, nil)
}

// ContainsSavedAlbums reports, per id, whether the album is saved.
func (s *SpotifyService) ContainsSavedAlbums(ctx context.Context, ids []string) ([]bool, error) {
	return s.contains(ctx, "/me/albums/contains", ids, nil)
}

// ContainsSavedShows reports, per id, whether the show is followed.
func (s *SpotifyService) ContainsSavedShows(ctx context.Context, ids []string) ([]bool, error) {
	return s.contains(ctx, "/me/shows/contains", ids, nil)
}

// ContainsFollowedArtists reports, per id, whether the artist is followed.
func (s *SpotifyService) ContainsFollowedArtists(ctx context.Context, ids []string) ([]bool, error) {
	return s.contains(ctx, "/me/following/contains", ids, artistType)
}

// SaveTracks adds tracks to liked songs.
func (s *SpotifyService) SaveTracks(ctx context.Context, ids []string) error {
	return s.modify(ctx, http.MethodPut, "/me/tracks", ids, nil)
}

// RemoveSavedTracks removes tracks from liked songs.
func (s *SpotifyService) RemoveSavedTracks(ctx context.Context, ids []string) error {
	return s.modify(ctx, http.MethodDelete, "/me/tracks", ids, nil)
}

// SaveAlbums adds albums to the library.
func (s *SpotifyService) SaveAlbums(ctx context.Context, ids []string) error {
	return s.modify(ctx, http.MethodPut, "/me/albums", ids, nil)
}

// RemoveSavedAlbums removes albums from the library.
func (s *SpotifyService) RemoveSavedAlbums(ctx context.Context, ids []string) error {
	return s.modify(ctx, http.MethodDelete, "/me/albums", ids, nil)
}

// SaveShows follows shows.
func (s *SpotifyService) SaveShows(ctx context.Context, ids []string) error {
	return s.modify(ctx, http.MethodPut, "/me/shows", ids, nil)
}

// RemoveSavedShows unfollows shows.
func (s *SpotifyService) RemoveSavedShows(ctx context.Context, ids []string) error {
	return s.modify(ctx, http.MethodDelete, "/me/shows", ids, nil)
}

// FollowArtists follows artists.
func (s *SpotifyService) FollowArtists(ctx context.Context, ids []string) error {
	return s.modify(ctx, http.MethodPut, "/me/following", ids, artistType)
}

// UnfollowArtists unfollows artists.
func (s *SpotifyService) UnfollowArtists(ctx context.Context, ids []string) error {
	return s.modify(ctx, http.MethodDelete, "/me/following", ids, artistType)
}

// PlaylistFollowedBy reports whether userID follows the playlist.
func (s *SpotifyService) PlaylistFollowedBy(ctx context.Context, playlistID, userID string) (bool, error) {
	endpoint := fmt.Sprintf("/playlists/%s/followers/contains", url.PathEscape(playlistID))
	answers, err := s.contains(ctx, endpoint, []string{userID}, nil)
	if err != nil {
		return false, err
	}
	return answers[0], nil
}

// FollowPlaylist follows a playlist.
func (s *SpotifyService) FollowPlaylist(ctx context.Context, playlistID string) error {
	endpoint := fmt.Sprintf("/playlists/%s/followers", url.PathEscape(playlistID))
	return s.doRequest(ctx, http.MethodPut, endpoint, nil, nil, nil)
}

// UnfollowPlaylist unfollows a playlist.
func (s *SpotifyService) UnfollowPlaylist(ctx context.Context, playlistID string) error {
	endpoint := fmt.Sprintf("/playlists/%s/followers", url.PathEscape(playlistID))
	return s.doRequest(ctx, http.MethodDelete, endpoint, nil, nil, nil)
}
