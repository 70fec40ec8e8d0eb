// Package services defines the [Catalog] interface for the remote music catalog and implements it for Spotify.
//
// # Authentication
//
// [SpotifyService] uses the OAuth2 client-credentials grant. [SpotifyService.Authenticate] fetches the first
// token eagerly so bad credentials fail before any collection work starts; later refreshes happen inside the
// [oauth2] transport.
//
// # Transport
//
// Requests go through a resty client wrapping the oauth2 HTTP client. Every attempt, retries included,
// waits on a shared [rate.Limiter]. Responses with 429 or 5xx are retried with backoff, honoring Retry-After.
//
// # Error Handling
//
// Services use typed errors from the shared package:
//   - [shared.ErrNotAuthenticated] : Authenticate() not called
//   - [shared.ErrAuthFailed] : token exchange failed or the API returned 401
//   - [shared.ErrRateLimited] : the API returned 429 after retries
//   - [shared.ErrAPIRequest] : transport failure, timeout, non-2xx status, or undecodable body
//   - [shared.ErrBatchTooLarge] : more ids than the endpoint accepts
//   - [shared.ErrMisaligned] : a batch response whose length differs from the request
//
// # API Mappings
//
// Search results map to [models.PlaylistSummary]; null result slots are dropped. Playlist entries map to
// [models.PlaylistItem], with nil tracks for removed, local, and episode entries. Batch lookups map to
// [models.FeatureRecord] and [models.InfoRecord] pointers, nil where the catalog returned null.
package services
