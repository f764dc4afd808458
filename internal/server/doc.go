// Package server provides HTTP routing, middleware, and OAuth callback handling for the CLI.
//
// # Router Infrastructure
//
// The [Router] interface defines HTTP routing with middleware support.
//
// [Middleware] wraps handlers in reverse order (last added executes first), following the standard Go pattern.
//
// The [BasicRouter] implementation uses [http.ServeMux] internally with method filtering.
//
// # OAuth Callback Handler
//
// [OAuthHandler] completes the authorization code flow through an [Exchanger], which checks the state
// parameter and exchanges the code for a token, and sends the result through a channel.
//
// It only processes one callback to prevent replay attacks.
//
// # Current Usage
//
// `tunesync auth spotify` starts a [CallbackServer] on the host of the configured redirect URI, opens the
// browser, waits for the token and shuts the server down.
package server
