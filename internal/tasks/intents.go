package tasks

import (
	"fmt"
	"strings"

	"github.com/desertthunder/spt/internal/models"
	"github.com/desertthunder/spt/internal/state"
)

// Intent is a request for the [Engine] to do one thing. The set of intents is closed:
// only types in this package implement it.
type Intent interface {
	intent()
}

// Name returns the intent's type name, used as the log key.
func Name(in Intent) string {
	return strings.TrimPrefix(fmt.Sprintf("%T", in), "tasks.")
}

// Playback

type (
	// FetchPlayback replaces the cached playback with the remote player state.
	FetchPlayback struct{}

	// StartPlayback plays a context (album, playlist, artist, show) or an explicit list of URIs.
	// Offset selects the starting item; nil starts at the beginning or the remote default.
	// Random starts a playlist or album context at a random track and ignores Offset.
	StartPlayback struct {
		ContextURI string
		URIs       []string
		Offset     *int
		Random     bool
	}

	// Resume continues the current context.
	Resume struct{}

	Pause struct{}

	// TogglePlayback pauses when playing, otherwise resumes.
	TogglePlayback struct{}

	NextTrack struct{}

	PreviousTrack struct{}

	// Seek moves to an absolute position in the current item.
	Seek struct{ PositionMs int }

	// SeekRelative reads Raw as seconds, "+n" and "-n" relative to the current position.
	// A target past the end of the item skips to the next one.
	SeekRelative struct{ Raw string }

	// ChangeVolume sets the volume of the playing device, 0 to 100.
	ChangeVolume struct{ Percent int }

	// StepVolume moves the volume by Delta, clamped to 0 and 100.
	StepVolume struct{ Delta int }

	ToggleShuffle struct{}

	// CycleRepeat moves repeat through off, context, track.
	CycleRepeat struct{}

	// TransferPlayback moves playback to another device and makes it the command target.
	TransferPlayback struct{ DeviceID string }

	// AddToQueue queues a track or episode URI.
	AddToQueue struct{ URI string }

	// FetchDevices loads the available devices and opens the device picker. KeepRoute
	// leaves navigation alone, for callers without a picker.
	FetchDevices struct{ KeepRoute bool }

	// SelectDevice makes a device the command target without transferring playback.
	SelectDevice struct{ ID string }

	// PopRoute closes the current view when it is ID.
	PopRoute struct{ ID state.RouteID }
)

// Library and pagination

type (
	FetchPlaylists struct{ Offset int }

	FetchPlaylistTracks struct {
		PlaylistID string
		Offset     int
	}

	// FetchMadeForYouTracks loads a page of a curated playlist into its own cache.
	FetchMadeForYouTracks struct {
		PlaylistID string
		Offset     int
	}

	FetchSavedTracks struct{ Offset int }

	FetchSavedAlbums struct{ Offset int }

	FetchSavedShows struct{ Offset int }

	// FetchFollowedArtists pages by cursor; After is the last artist id of the previous page.
	FetchFollowedArtists struct{ After string }

	FetchShowEpisodes struct {
		ShowID string
		Offset int
	}

	FetchRecentlyPlayed struct{}

	// MadeForYouSearchAndAdd finds the curated playlist with exactly this name and adds it
	// to the made-for-you cache.
	MadeForYouSearchAndAdd struct{ Name string }
)

// Detail views

type (
	FetchAlbum struct{ AlbumID string }

	// FetchAlbumTracks loads a page of tracks for an album already known from a listing.
	FetchAlbumTracks struct {
		Album  models.SimplifiedAlbum
		Offset int
	}

	// FetchAlbumForTrack opens the album of a track with the track selected.
	FetchAlbumForTrack struct{ TrackID string }

	// FetchArtist loads albums, top tracks and related artists together.
	FetchArtist struct {
		ArtistID string
		Name     string
	}

	FetchShow struct{ ShowID string }

	FetchUser struct{}

	// FetchRecommendations loads tracks seeded by artists and tracks and starts playing them.
	FetchRecommendations struct {
		SeedArtists []string
		SeedTracks  []string
	}

	// FetchRecommendationsForTrack is FetchRecommendations seeded by one track, which is played first.
	FetchRecommendationsForTrack struct{ TrackID string }
)

// Search

type (
	// SearchAll searches tracks, albums, artists, playlists and shows with the small limit.
	SearchAll struct{ Term string }

	UpdateSearchLimits struct {
		Small int
		Large int
	}
)

// Containment queries

type (
	CheckSavedTracks struct{ IDs []string }

	CheckSavedAlbums struct{ IDs []string }

	CheckSavedShows struct{ IDs []string }

	CheckFollowedArtists struct{ IDs []string }
)

// Toggles

type (
	ToggleSaveTrack struct{ ID string }

	// SetTrackSaved likes or unlikes a track, doing nothing remotely when it is already in that state.
	SetTrackSaved struct {
		ID    string
		Saved bool
	}

	ToggleSaveAlbum struct{ ID string }

	ToggleSaveShow struct{ ID string }

	ToggleFollowArtist struct{ ID string }

	ToggleFollowPlaylist struct{ ID string }

	// ToggleLikeCurrent likes or unlikes the playing track.
	ToggleLikeCurrent struct{}

	// SetCurrentSaved is SetTrackSaved for the playing track.
	SetCurrentSaved struct{ Saved bool }
)

// RefreshAuthentication renews the access token. It never touches the store.
type RefreshAuthentication struct{}

func (FetchPlayback) intent()                {}
func (StartPlayback) intent()                {}
func (Resume) intent()                       {}
func (Pause) intent()                        {}
func (TogglePlayback) intent()               {}
func (NextTrack) intent()                    {}
func (PreviousTrack) intent()                {}
func (Seek) intent()                         {}
func (SeekRelative) intent()                 {}
func (ChangeVolume) intent()                 {}
func (StepVolume) intent()                   {}
func (ToggleShuffle) intent()                {}
func (CycleRepeat) intent()                  {}
func (TransferPlayback) intent()             {}
func (AddToQueue) intent()                   {}
func (FetchDevices) intent()                 {}
func (SelectDevice) intent()                 {}
func (PopRoute) intent()                     {}
func (FetchPlaylists) intent()               {}
func (FetchPlaylistTracks) intent()          {}
func (FetchMadeForYouTracks) intent()        {}
func (FetchSavedTracks) intent()             {}
func (FetchSavedAlbums) intent()             {}
func (FetchSavedShows) intent()              {}
func (FetchFollowedArtists) intent()         {}
func (FetchShowEpisodes) intent()            {}
func (FetchRecentlyPlayed) intent()          {}
func (MadeForYouSearchAndAdd) intent()       {}
func (FetchAlbum) intent()                   {}
func (FetchAlbumTracks) intent()             {}
func (FetchAlbumForTrack) intent()           {}
func (FetchArtist) intent()                  {}
func (FetchShow) intent()                    {}
func (FetchUser) intent()                    {}
func (FetchRecommendations) intent()         {}
func (FetchRecommendationsForTrack) intent() {}
func (SearchAll) intent()                    {}
func (UpdateSearchLimits) intent()           {}
func (CheckSavedTracks) intent()             {}
func (CheckSavedAlbums) intent()             {}
func (CheckSavedShows) intent()              {}
func (CheckFollowedArtists) intent()         {}
func (ToggleSaveTrack) intent()              {}
func (SetTrackSaved) intent()                {}
func (ToggleSaveAlbum) intent()              {}
func (ToggleSaveShow) intent()               {}
func (ToggleFollowArtist) intent()           {}
func (ToggleFollowPlaylist) intent()         {}
func (ToggleLikeCurrent) intent()            {}
func (SetCurrentSaved) intent()              {}
func (RefreshAuthentication) intent()        {}

// All returns one zero value of every intent, in declaration order.
func All() []Intent {
	return []Intent{
		FetchPlayback{}, StartPlayback{}, Resume{}, Pause{}, TogglePlayback{}, NextTrack{}, PreviousTrack{},
		Seek{}, SeekRelative{}, ChangeVolume{}, StepVolume{}, ToggleShuffle{}, CycleRepeat{}, TransferPlayback{},
		AddToQueue{}, FetchDevices{}, SelectDevice{}, PopRoute{},
		FetchPlaylists{}, FetchPlaylistTracks{}, FetchMadeForYouTracks{}, FetchSavedTracks{}, FetchSavedAlbums{},
		FetchSavedShows{}, FetchFollowedArtists{}, FetchShowEpisodes{}, FetchRecentlyPlayed{}, MadeForYouSearchAndAdd{},
		FetchAlbum{}, FetchAlbumTracks{}, FetchAlbumForTrack{}, FetchArtist{}, FetchShow{}, FetchUser{},
		FetchRecommendations{}, FetchRecommendationsForTrack{},
		SearchAll{}, UpdateSearchLimits{},
		CheckSavedTracks{}, CheckSavedAlbums{}, CheckSavedShows{}, CheckFollowedArtists{},
		ToggleSaveTrack{}, SetTrackSaved{}, ToggleSaveAlbum{}, ToggleSaveShow{}, ToggleFollowArtist{}, ToggleFollowPlaylist{},
		ToggleLikeCurrent{}, SetCurrentSaved{},
		RefreshAuthentication{},
	}
}
