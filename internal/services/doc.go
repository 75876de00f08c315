// Package services implements the Spotify Web API client used by the dispatch engine.
//
// # Spotify Client
//
// [SpotifyService] uses OAuth2 for authentication with automatic token refresh.
//
// The [oauth2.Client] refreshes expired tokens using the refresh token; every new token is passed to the
// [TokenRefreshCallback] so the command layer can persist it. [SpotifyService.RefreshToken] forces a refresh.
//
// Requests are paced by a [rate.Limiter] and mapped onto [models] types:
//   - player.go : playback state, transport controls, devices, queue
//   - library.go : the user's playlists, saved items, follows and containment checks
//   - catalog.go : albums, tracks, artists, shows, recommendations and search
//
// # Error Handling
//
// Non-2xx responses become a [StatusError] that unwraps to a sentinel from the shared package:
//   - [shared.ErrTokenExpired] : 401, the token was rejected
//   - [shared.ErrNotAuthenticated] : 403, missing scope or premium, or no token installed
//   - [shared.ErrNotFound] : 404, unknown id or no active device
//   - [shared.ErrRateLimited] : 429, RetryAfter holds the server's hint in seconds
//   - [shared.ErrAPIRequest] : transport failures and other statuses
package services
