package models

import (
	"encoding/json"
	"fmt"
	"time"
)

// Image is cover art at a given size.
type Image struct {
	URL    string `json:"url"`
	Height int    `json:"height"`
	Width  int    `json:"width"`
}

// SimplifiedArtist is the artist reference nested in tracks and albums.
type SimplifiedArtist struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	URI  string `json:"uri"`
}

// Artist is a full artist object.
type Artist struct {
	ID         string   `json:"id"`
	Name       string   `json:"name"`
	URI        string   `json:"uri"`
	Genres     []string `json:"genres"`
	Popularity int      `json:"popularity"`
	Followers  struct {
		Total int `json:"total"`
	} `json:"followers"`
}

// SimplifiedAlbum is the album reference nested in tracks and search results.
type SimplifiedAlbum struct {
	ID          string             `json:"id"`
	Name        string             `json:"name"`
	URI         string             `json:"uri"`
	AlbumType   string             `json:"album_type"`
	Artists     []SimplifiedArtist `json:"artists"`
	ReleaseDate string             `json:"release_date"`
	TotalTracks int                `json:"total_tracks"`
	Images      []Image            `json:"images"`
}

// Album is a full album including its first page of tracks.
type Album struct {
	SimplifiedAlbum
	Label  string      `json:"label"`
	Tracks Page[Track] `json:"tracks"`
}

// Track is a song.
//
// Tracks nested in an album omit the Album field.
type Track struct {
	ID          string             `json:"id"`
	Name        string             `json:"name"`
	URI         string             `json:"uri"`
	Artists     []SimplifiedArtist `json:"artists"`
	Album       SimplifiedAlbum    `json:"album"`
	DurationMs  int                `json:"duration_ms"`
	TrackNumber int                `json:"track_number"`
	DiscNumber  int                `json:"disc_number"`
	Explicit    bool               `json:"explicit"`
	IsLocal     bool               `json:"is_local"`
}

// Duration returns the track length.
func (t Track) Duration() time.Duration {
	return time.Duration(t.DurationMs) * time.Millisecond
}

// SavedTrack is a track in the user's library.
type SavedTrack struct {
	AddedAt time.Time `json:"added_at"`
	Track   Track     `json:"track"`
}

// SavedAlbum is an album in the user's library.
type SavedAlbum struct {
	AddedAt time.Time `json:"added_at"`
	Album   Album     `json:"album"`
}

// SavedShow is a show the user follows.
type SavedShow struct {
	AddedAt time.Time `json:"added_at"`
	Show    Show      `json:"show"`
}

// User is a Spotify account.
type User struct {
	ID          string `json:"id"`
	DisplayName string `json:"display_name"`
	URI         string `json:"uri"`
	Country     string `json:"country"`
	Product     string `json:"product"`
}

// Playlist is playlist metadata. The track listing is fetched separately.
type Playlist struct {
	ID            string `json:"id"`
	Name          string `json:"name"`
	URI           string `json:"uri"`
	Description   string `json:"description"`
	Owner         User   `json:"owner"`
	Public        bool   `json:"public"`
	Collaborative bool   `json:"collaborative"`
	Tracks        struct {
		Total int `json:"total"`
	} `json:"tracks"`
}

// PlaylistItem is one entry of a playlist's track listing. Track is nil for unavailable entries.
type PlaylistItem struct {
	AddedAt time.Time `json:"added_at"`
	Track   *Track    `json:"track"`
}

// Show is a podcast.
type Show struct {
	ID            string  `json:"id"`
	Name          string  `json:"name"`
	URI           string  `json:"uri"`
	Publisher     string  `json:"publisher"`
	Description   string  `json:"description"`
	TotalEpisodes int     `json:"total_episodes"`
	Images        []Image `json:"images"`
}

// Episode is a podcast episode. Show is nil when the episode is listed under its show.
type Episode struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	URI         string `json:"uri"`
	Description string `json:"description"`
	DurationMs  int    `json:"duration_ms"`
	ReleaseDate string `json:"release_date"`
	Show        *Show  `json:"show,omitempty"`
}

// Device is a Spotify Connect playback target.
type Device struct {
	ID            string `json:"id"`
	Name          string `json:"name"`
	Type          string `json:"type"`
	IsActive      bool   `json:"is_active"`
	IsRestricted  bool   `json:"is_restricted"`
	VolumePercent int    `json:"volume_percent"`
}

// Context is the collection a playback was started from.
type Context struct {
	URI  string `json:"uri"`
	Type string `json:"type"`
}

// PlayHistory is one entry of the recently played list.
type PlayHistory struct {
	Track    Track     `json:"track"`
	PlayedAt time.Time `json:"played_at"`
	Context  *Context  `json:"context"`
}

// RepeatState is the player's repeat mode.
type RepeatState string

const (
	RepeatOff     RepeatState = "off"
	RepeatContext RepeatState = "context"
	RepeatTrack   RepeatState = "track"
)

func (r RepeatState) String() string {
	switch r {
	case RepeatContext:
		return "Context"
	case RepeatTrack:
		return "Track"
	default:
		return "Off"
	}
}

// Playback is the current player state of the account.
type Playback struct {
	Device       Device        `json:"device"`
	RepeatState  RepeatState   `json:"repeat_state"`
	ShuffleState bool          `json:"shuffle_state"`
	Context      *Context      `json:"context"`
	Timestamp    int64         `json:"timestamp"`
	ProgressMs   int           `json:"progress_ms"`
	IsPlaying    bool          `json:"is_playing"`
	Item         *PlayableItem `json:"item"`
}

// Progress returns the playback position.
func (p Playback) Progress() time.Duration {
	return time.Duration(p.ProgressMs) * time.Millisecond
}

// PlayableItem is the currently playing track or episode. Exactly one field is set.
type PlayableItem struct {
	Track   *Track
	Episode *Episode
}

// UnmarshalJSON selects the variant using the "type" field.
func (p *PlayableItem) UnmarshalJSON(data []byte) error {
	var head struct {
		Type string `json:"type"`
	}
	if err := json.Unmarshal(data, &head); err != nil {
		return err
	}

	switch head.Type {
	case "episode":
		var e Episode
		if err := json.Unmarshal(data, &e); err != nil {
			return err
		}
		p.Episode = &e
	case "track", "":
		var t Track
		if err := json.Unmarshal(data, &t); err != nil {
			return err
		}
		p.Track = &t
	default:
		return fmt.Errorf("unsupported playable type %q", head.Type)
	}
	return nil
}

// MarshalJSON encodes whichever variant is set.
func (p PlayableItem) MarshalJSON() ([]byte, error) {
	if p.Episode != nil {
		return json.Marshal(p.Episode)
	}
	return json.Marshal(p.Track)
}

// ID returns the id of whichever variant is set.
func (p PlayableItem) ID() string {
	if p.Episode != nil {
		return p.Episode.ID
	}
	if p.Track != nil {
		return p.Track.ID
	}
	return ""
}

// Name returns the item's title.
func (p PlayableItem) Name() string {
	if p.Episode != nil {
		return p.Episode.Name
	}
	if p.Track != nil {
		return p.Track.Name
	}
	return ""
}

// URI returns the item's URI.
func (p PlayableItem) URI() string {
	if p.Episode != nil {
		return p.Episode.URI
	}
	if p.Track != nil {
		return p.Track.URI
	}
	return ""
}

// Duration returns the item's length.
func (p PlayableItem) Duration() time.Duration {
	switch {
	case p.Episode != nil:
		return time.Duration(p.Episode.DurationMs) * time.Millisecond
	case p.Track != nil:
		return p.Track.Duration()
	default:
		return 0
	}
}

// Page is one page of an offset-paginated collection.
type Page[T any] struct {
	Items  []T    `json:"items"`
	Total  int    `json:"total"`
	Offset int    `json:"offset"`
	Limit  int    `json:"limit"`
	Next   string `json:"next"`
}

// Cursors holds the continuation cursor of a [CursorPage].
type Cursors struct {
	After  string `json:"after"`
	Before string `json:"before"`
}

// CursorPage is one page of a cursor-paginated collection.
type CursorPage[T any] struct {
	Items   []T     `json:"items"`
	Total   int     `json:"total"`
	Limit   int     `json:"limit"`
	Next    string  `json:"next"`
	Cursors Cursors `json:"cursors"`
}

// SearchResults holds one page per searchable kind. Kinds not requested stay empty.
type SearchResults struct {
	Tracks    Page[Track]           `json:"tracks"`
	Albums    Page[SimplifiedAlbum] `json:"albums"`
	Artists   Page[Artist]          `json:"artists"`
	Playlists Page[Playlist]        `json:"playlists"`
	Shows     Page[Show]            `json:"shows"`
}

// PlayOffset selects the starting item within a context or URI list.
type PlayOffset struct {
	Position int `json:"position"`
}

// PlayRequest describes what to start playing. The zero value resumes the current context.
type PlayRequest struct {
	ContextURI string      `json:"context_uri,omitempty"`
	URIs       []string    `json:"uris,omitempty"`
	Offset     *PlayOffset `json:"offset,omitempty"`
}

// Empty reports whether the request resumes rather than starts something new.
func (r PlayRequest) Empty() bool {
	return r.ContextURI == "" && len(r.URIs) == 0 && r.Offset == nil
}

// RecommendationSeeds are the artist and track ids a recommendation request is based on.
type RecommendationSeeds struct {
	Artists []string
	Tracks  []string
	Genres  []string
}

// Empty reports whether no seed is set.
func (s RecommendationSeeds) Empty() bool {
	return len(s.Artists) == 0 && len(s.Tracks) == 0 && len(s.Genres) == 0
}
