// Package services defines the [Service] capability interface for music backends and implements it for
// Spotify, YouTube Music, Deezer and the local SQLite library.
//
// # Capabilities
//
// Each backend advertises a static [Descriptor]. SupportsAuth marks backends that can act as a user
// and therefore receive writes; CanBulkAdd marks backends whose playlist population may be committed
// in a single call. The transfer engine reads these flags from the destination only.
//
// # Spotify
//
// [SpotifyService] talks to the Web API with an [oauth2] client. Refreshed tokens are handed to a
// callback so the CLI can persist them. Adds are sent in chunks of 100 and likes in chunks of 50.
//
// # YouTube Music
//
// [YouTubeService] communicates with the FastAPI proxy wrapping ytmusicapi. The auth file path is
// sent via the X-Auth-File header on each request. The proxy has no bulk endpoint the engine relies
// on, so adds and likes are issued one track at a time.
//
// # Deezer
//
// [DeezerService] reads a public profile through api.deezer.com. It is read-only: every mutating
// call fails with [shared.ErrUnsupported]. Requests are throttled to the public quota.
//
// # Local library
//
// [LocalService] serves the SQLite catalog in the repositories package. Bulk adds run in one transaction.
//
// # Errors
//
// Remote adapters share one HTTP transport that retries 429 and 5xx responses and maps statuses:
//   - 401 : [shared.ErrNotAuthenticated]
//   - 403 : [shared.ErrForbidden], which only affects the playlist or song at hand
//   - 404 : [shared.ErrPlaylistNotFound]
//   - exhausted retries on 5xx : [shared.ErrServiceUnavailable]
//   - anything else non-2xx : [shared.ErrAPIRequest]
package services
