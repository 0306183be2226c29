// Package services wraps the Spotify Web API and plain HTTP image downloads.
//
// # Spotify
//
// [SpotifyService] authenticates with OAuth2. Tokens are refreshed by the [oauth2] client, and
// [SpotifyService.SetTokenRefreshCallback] lets callers persist each new token.
//
// Responses are decoded into the Spotify* types and converted to models with [ToTrack],
// [TracksFromPage] and [ToPlaylist].
//
// # Error Handling
//
// Services use sentinel errors from the shared package:
//   - [shared.ErrNotAuthenticated] : no token has been supplied
//   - [shared.ErrUnauthorized] : the API answered 401 or the token could not be refreshed
//   - [shared.ErrAPIRequest] : any other non-2xx answer
//   - [shared.ErrDecode] : the body was not the expected JSON
//
// # Images
//
// [ImageService] downloads album art for the collage generator.
package services
