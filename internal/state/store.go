package state

import (
	"sync"

	"github.com/desertthunder/spt/internal/models"
)

// SearchLimits are the page sizes used by remote listing calls.
// Small is used per category by the combined search, Large by every single-collection fetch.
type SearchLimits struct {
	Small int
	Large int
}

// TrackTableContext records which collection the flat track table was filled from.
type TrackTableContext int

const (
	ContextNone TrackTableContext = iota
	ContextMyPlaylists
	ContextSavedTracks
	ContextAlbumSearch
	ContextPlaylistSearch
	ContextRecommendedTracks
	ContextMadeForYou
)

// TrackTable is the flat list of tracks shown by track-oriented views.
type TrackTable struct {
	Tracks   []models.Track
	Context  TrackTableContext
	Selected int
}

// AlbumView is the album whose tracks are being shown.
type AlbumView struct {
	Album    models.SimplifiedAlbum
	Tracks   models.Page[models.Track]
	Selected int
}

// ArtistView is the artist detail page.
type ArtistView struct {
	ID        string
	Name      string
	Albums    []models.SimplifiedAlbum
	TopTracks []models.Track
	Related   []models.Artist
}

// State is the client's view of the remote account.
//
// Exported fields are plain data; navigation and transient flags go through methods so the
// root route and the loading flag keep their invariants.
type State struct {
	Playback       *models.Playback
	Devices        []models.Device
	SelectedDevice int
	DeviceID       string
	User           *models.User

	// PlaylistID and MadeForYouID name the playlists whose items are cached in
	// PlaylistTracks and MadeForYouTracks. ShowID names the show of ShowEpisodes.
	PlaylistID   string
	MadeForYouID string
	ShowID       string

	Playlists        Pages[models.Playlist]
	SavedTracks      Pages[models.SavedTrack]
	SavedAlbums      Pages[models.SavedAlbum]
	SavedShows       Pages[models.SavedShow]
	FollowedArtists  Pages[models.Artist]
	MadeForYou       Pages[models.Playlist]
	PlaylistTracks   Pages[models.PlaylistItem]
	MadeForYouTracks Pages[models.PlaylistItem]
	ShowEpisodes     Pages[models.Episode]

	LikedTracks       ContainmentSet
	SavedAlbumIDs     ContainmentSet
	SavedShowIDs      ContainmentSet
	FollowedArtistIDs ContainmentSet

	Search       models.SearchResults
	SearchLimits SearchLimits

	TrackTable     TrackTable
	Album          *AlbumView
	Artist         *ArtistView
	Show           *models.Show
	RecentlyPlayed []models.PlayHistory
	Recommended    []models.Track

	navigation []Route
	loading    bool
	lastErr    error
}

// Push makes r the current route.
func (s *State) Push(r Route) {
	s.navigation = append(s.navigation, r)
}

// Pop removes the current route unless it is the root.
func (s *State) Pop() (Route, bool) {
	if len(s.navigation) <= 1 {
		return s.Route(), false
	}
	top := s.navigation[len(s.navigation)-1]
	s.navigation = s.navigation[:len(s.navigation)-1]
	return top, true
}

// Route returns the current route.
func (s State) Route() Route {
	if len(s.navigation) == 0 {
		return HomeRoute
	}
	return s.navigation[len(s.navigation)-1]
}

// Depth is the number of frames on the navigation stack.
func (s State) Depth() int {
	return len(s.navigation)
}

// SetLoading marks whether an intent is executing.
func (s *State) SetLoading(loading bool) { s.loading = loading }

// Loading reports whether an intent is executing.
func (s State) Loading() bool { return s.loading }

// SetError records the most recent failure.
func (s *State) SetError(err error) { s.lastErr = err }

// ClearError forgets the most recent failure.
func (s *State) ClearError() { s.lastErr = nil }

// LastError returns the most recent failure, if any.
func (s State) LastError() error { return s.lastErr }

// CurrentDevice returns the device at the selection cursor.
func (s State) CurrentDevice() (models.Device, bool) {
	if s.SelectedDevice < 0 || s.SelectedDevice >= len(s.Devices) {
		return models.Device{}, false
	}
	return s.Devices[s.SelectedDevice], true
}

// SelectedTrack returns the track at the track table cursor.
func (s State) SelectedTrack() (models.Track, bool) {
	t := s.TrackTable
	if t.Selected < 0 || t.Selected >= len(t.Tracks) {
		return models.Track{}, false
	}
	return t.Tracks[t.Selected], true
}

func (s State) clone() State {
	out := s

	if s.Playback != nil {
		pb := *s.Playback
		out.Playback = &pb
	}
	if s.User != nil {
		u := *s.User
		out.User = &u
	}
	if s.Album != nil {
		a := *s.Album
		out.Album = &a
	}
	if s.Artist != nil {
		a := *s.Artist
		out.Artist = &a
	}
	if s.Show != nil {
		sh := *s.Show
		out.Show = &sh
	}

	out.Devices = append([]models.Device(nil), s.Devices...)
	out.RecentlyPlayed = append([]models.PlayHistory(nil), s.RecentlyPlayed...)
	out.Recommended = append([]models.Track(nil), s.Recommended...)
	out.TrackTable.Tracks = append([]models.Track(nil), s.TrackTable.Tracks...)
	out.navigation = append([]Route(nil), s.navigation...)

	out.Playlists = s.Playlists.clone()
	out.SavedTracks = s.SavedTracks.clone()
	out.SavedAlbums = s.SavedAlbums.clone()
	out.SavedShows = s.SavedShows.clone()
	out.FollowedArtists = s.FollowedArtists.clone()
	out.MadeForYou = s.MadeForYou.clone()
	out.PlaylistTracks = s.PlaylistTracks.clone()
	out.MadeForYouTracks = s.MadeForYouTracks.clone()
	out.ShowEpisodes = s.ShowEpisodes.clone()

	out.LikedTracks = s.LikedTracks.clone()
	out.SavedAlbumIDs = s.SavedAlbumIDs.clone()
	out.SavedShowIDs = s.SavedShowIDs.clone()
	out.FollowedArtistIDs = s.FollowedArtistIDs.clone()

	return out
}

// Store guards the single [State] of a process.
//
// Writers go through [Store.Update], whose closure must not block or perform I/O.
// The only writers are the intent handlers of the tasks engine.
// Readers take a [Store.Snapshot], which is a deep copy safe to keep.
type Store struct {
	mu    sync.Mutex
	state State
}

// NewStore returns a store positioned on the home route.
func NewStore(limits SearchLimits) *Store {
	return &Store{state: State{
		SearchLimits: limits,
		navigation:   []Route{HomeRoute},
	}}
}

// Update applies fn to the live state under the lock.
//
// Update is reserved for the tasks engine. Views and commands change state by
// executing an intent; tests may use Update to seed a state.
func (st *Store) Update(fn func(s *State)) {
	st.mu.Lock()
	defer st.mu.Unlock()
	fn(&st.state)
}

// Snapshot returns a copy of the current state.
func (st *Store) Snapshot() State {
	st.mu.Lock()
	defer st.mu.Unlock()
	return st.state.clone()
}

// Playback returns a copy of the cached playback, if any.
func (st *Store) Playback() (models.Playback, bool) {
	st.mu.Lock()
	defer st.mu.Unlock()
	if st.state.Playback == nil {
		return models.Playback{}, false
	}
	return *st.state.Playback, true
}

// IsLoading reports whether an intent is executing.
func (st *Store) IsLoading() bool {
	st.mu.Lock()
	defer st.mu.Unlock()
	return st.state.loading
}

// LastError returns the most recent recorded failure.
func (st *Store) LastError() error {
	st.mu.Lock()
	defer st.mu.Unlock()
	return st.state.lastErr
}

// Limits returns the current search limits.
func (st *Store) Limits() SearchLimits {
	st.mu.Lock()
	defer st.mu.Unlock()
	return st.state.SearchLimits
}

// DeviceID returns the device playback commands are sent to. Empty means the active device.
func (st *Store) DeviceID() string {
	st.mu.Lock()
	defer st.mu.Unlock()
	return st.state.DeviceID
}

// User returns a copy of the cached user profile, if any.
func (st *Store) User() (models.User, bool) {
	st.mu.Lock()
	defer st.mu.Unlock()
	if st.state.User == nil {
		return models.User{}, false
	}
	return *st.state.User, true
}

// Route returns the current navigation route.
func (st *Store) Route() Route {
	st.mu.Lock()
	defer st.mu.Unlock()
	return st.state.Route()
}
