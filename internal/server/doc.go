// Package server runs the local HTTP endpoint that completes browser-based OAuth logins.
//
// # Router Infrastructure
//
// The [Router] interface defines HTTP routing with middleware support.
//
// [Middleware] wraps handlers in reverse order (last added executes first). [RequestLogger]
// is the only middleware the CLI installs.
//
// The [BasicRouter] implementation uses [http.ServeMux] internally with method filtering.
//
// # OAuth Callback Handler
//
// [OAuthHandler] validates the state parameter, hands the authorization code to an
// [Exchanger], and publishes exactly one result. A second callback is rejected.
//
// `tunetx spotify auth` binds [Serve] to the host and port of the configured redirect URI,
// opens the browser, waits on [OAuthHandler.Wait], and shuts the server down.
package server
