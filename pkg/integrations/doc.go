// Package integrations provides the HTTP plumbing for talking to remote
// hosts.
//
// [Client] wraps an http.Client with default headers, an optional response
// cache ([cache.Cache]) and optional retries ([httputil.Retry]). It is used
// by:
//
//   - [moddb]: reads mod pages and downloads release archives
//   - the webhook notification destination, through [Client.PostJSON]
//
// Failures map onto two sentinels, [ErrNotFound] for 404 responses and
// [ErrNetwork] for everything else; 5xx responses and connection errors are
// additionally marked retryable.
package integrations
