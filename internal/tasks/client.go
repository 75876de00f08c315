package tasks

import (
	"context"

	"github.com/desertthunder/spt/internal/models"
)

// Client is everything the engine needs from the remote API. Implemented by services.SpotifyService.
type Client interface {
	CurrentPlayback(ctx context.Context) (*models.Playback, error)
	Devices(ctx context.Context) ([]models.Device, error)
	StartPlayback(ctx context.Context, deviceID string, req models.PlayRequest) error
	Pause(ctx context.Context, deviceID string) error
	Next(ctx context.Context, deviceID string) error
	Previous(ctx context.Context, deviceID string) error
	Seek(ctx context.Context, deviceID string, positionMs int) error
	SetVolume(ctx context.Context, deviceID string, percent int) error
	SetShuffle(ctx context.Context, deviceID string, state bool) error
	SetRepeat(ctx context.Context, deviceID string, state models.RepeatState) error
	TransferPlayback(ctx context.Context, deviceID string, play bool) error
	AddToQueue(ctx context.Context, deviceID, uri string) error

	CurrentUser(ctx context.Context) (*models.User, error)
	CurrentUserPlaylists(ctx context.Context, limit, offset int) (*models.Page[models.Playlist], error)
	PlaylistTracks(ctx context.Context, playlistID string, limit, offset int) (*models.Page[models.PlaylistItem], error)
	SavedTracks(ctx context.Context, limit, offset int) (*models.Page[models.SavedTrack], error)
	SavedAlbums(ctx context.Context, limit, offset int) (*models.Page[models.SavedAlbum], error)
	SavedShows(ctx context.Context, limit, offset int) (*models.Page[models.SavedShow], error)
	FollowedArtists(ctx context.Context, limit int, after string) (*models.CursorPage[models.Artist], error)
	ShowEpisodes(ctx context.Context, showID string, limit, offset int) (*models.Page[models.Episode], error)
	RecentlyPlayed(ctx context.Context, limit int) (*models.CursorPage[models.PlayHistory], error)

	Album(ctx context.Context, albumID string) (*models.Album, error)
	AlbumTracks(ctx context.Context, albumID string, limit, offset int) (*models.Page[models.Track], error)
	Track(ctx context.Context, trackID string) (*models.Track, error)
	Show(ctx context.Context, showID string) (*models.Show, error)
	ArtistAlbums(ctx context.Context, artistID string, limit int) (*models.Page[models.SimplifiedAlbum], error)
	ArtistTopTracks(ctx context.Context, artistID, market string) ([]models.Track, error)
	RelatedArtists(ctx context.Context, artistID string) ([]models.Artist, error)
	Recommendations(ctx context.Context, seeds models.RecommendationSeeds, limit int) ([]models.Track, error)
	Search(ctx context.Context, query string, kinds []models.Kind, limit, offset int) (*models.SearchResults, error)

	ContainsSavedTracks(ctx context.Context, ids []string) ([]bool, error)
	ContainsSavedAlbums(ctx context.Context, ids []string) ([]bool, error)
	ContainsSavedShows(ctx context.Context, ids []string) ([]bool, error)
	ContainsFollowedArtists(ctx context.Context, ids []string) ([]bool, error)
	SaveTracks(ctx context.Context, ids []string) error
	RemoveSavedTracks(ctx context.Context, ids []string) error
	SaveAlbums(ctx context.Context, ids []string) error
	RemoveSavedAlbums(ctx context.Context, ids []string) error
	SaveShows(ctx context.Context, ids []string) error
	RemoveSavedShows(ctx context.Context, ids []string) error
	FollowArtists(ctx context.Context, ids []string) error
	UnfollowArtists(ctx context.Context, ids []string) error
	PlaylistFollowedBy(ctx context.Context, playlistID, userID string) (bool, error)
	FollowPlaylist(ctx context.Context, playlistID string) error
	UnfollowPlaylist(ctx context.Context, playlistID string) error

	RefreshToken(ctx context.Context) error
}

// TrackCacher persists tracks seen by the engine. Implemented by repositories.TrackCacheAdapter.
type TrackCacher interface {
	CacheTracks(ctx context.Context, tracks []models.Track) error
}
