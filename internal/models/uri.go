package models

import (
	"fmt"
	"strings"
)

// Kind is the entity type segment of a Spotify URI.
type Kind string

const (
	KindTrack    Kind = "track"
	KindAlbum    Kind = "album"
	KindArtist   Kind = "artist"
	KindPlaylist Kind = "playlist"
	KindShow     Kind = "show"
	KindEpisode  Kind = "episode"
	KindUser     Kind = "user"
)

// Playable reports whether an item of this kind can be passed as a list of URIs to start playback.
func (k Kind) Playable() bool {
	return k == KindTrack || k == KindEpisode
}

// Context reports whether this kind can be used as a playback context.
func (k Kind) Context() bool {
	return k == KindAlbum || k == KindArtist || k == KindPlaylist || k == KindShow
}

// BuildURI returns spotify:<kind>:<id>.
func BuildURI(kind Kind, id string) string {
	return fmt.Sprintf("spotify:%s:%s", kind, id)
}

// ParseURI splits a spotify:<kind>:<id> URI. Legacy user-scoped playlist URIs
// (spotify:user:<owner>:playlist:<id>) resolve to the playlist.
func ParseURI(uri string) (Kind, string, error) {
	parts := strings.Split(uri, ":")
	if len(parts) < 3 || parts[0] != "spotify" {
		return "", "", fmt.Errorf("invalid spotify uri %q", uri)
	}

	if len(parts) == 5 && parts[1] == string(KindUser) && parts[3] == string(KindPlaylist) {
		return KindPlaylist, parts[4], nil
	}
	if len(parts) != 3 || parts[2] == "" {
		return "", "", fmt.Errorf("invalid spotify uri %q", uri)
	}

	kind := Kind(parts[1])
	switch kind {
	case KindTrack, KindAlbum, KindArtist, KindPlaylist, KindShow, KindEpisode, KindUser:
		return kind, parts[2], nil
	default:
		return "", "", fmt.Errorf("unknown spotify uri kind %q", parts[1])
	}
}

// ShareURL returns the public web link for an entity.
func ShareURL(kind Kind, id string) string {
	return fmt.Sprintf("https://open.spotify.com/%s/%s", kind, id)
}
