// Package models defines the remote entities exchanged with the Spotify Web API.
//
// The package contains three groups of types:
//
// 1. Catalog entities: [Track], [Album], [Artist], [Playlist], [Show], [Episode]
//   - Simplified variants ([SimplifiedAlbum], [SimplifiedArtist]) appear nested inside full entities
//   - Saved variants ([SavedTrack], [SavedAlbum], [SavedShow]) wrap an entity with the time it was added
//
// 2. Player entities: [Playback], [Device], [PlayableItem], [RepeatState]
//   - [PlayableItem] holds either a track or an episode and decodes the remote "type" discriminator
//
// 3. Paging: [Page] for offset pagination and [CursorPage] for cursor pagination
//
// URIs and share links are built and parsed by [BuildURI], [ParseURI] and [ShareURL].
package models
