// Package services implements the remote collaborators of a reconciliation run.
//
// # Interfaces
//
// A [Service] is a streaming platform: a [Catalog] to search and [Collections] to read and
// mutate. It also classifies its own errors so the retrying operation knows which failures
// are rate limits. A [ReleaseCatalog] supplies genre, year and artwork for local files.
//
// # Spotify
//
// [SpotifyService] wraps github.com/zmb3/spotify/v2. Tokens come from the OAuth2 flow in
// spotifyauth and are persisted with [SaveToken]; the client returned by the authenticator
// refreshes them automatically. The "liked" collection maps to the user's saved tracks.
//
// # YouTube Music
//
// [YouTubeService] talks to the FastAPI proxy wrapping ytmusicapi through [APIService]. The
// "LM" collection maps to liked songs, where adding means rating a song LIKE.
//
// # Discogs
//
// [DiscogsService] searches master releases and reads their genres, year and images. It waits
// on a golang.org/x/time/rate limiter before every request.
//
// # Error Handling
//
// [APIService] turns HTTP failures into typed errors from the shared package:
//   - 429 : [shared.RateLimitError], which matches [shared.ErrRateLimited]
//   - other non-2xx : [shared.HTTPStatusError], unwrapping to [shared.ErrNotAuthenticated],
//     [shared.ErrPlaylistNotFound], [shared.ErrServiceUnavailable] or [shared.ErrAPIRequest]
//
// Spotify failures arrive as [spotify.Error] values and are classified by their status.
package services
