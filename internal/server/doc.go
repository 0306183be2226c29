// Package server hosts the short-lived HTTP listener behind `tessera auth login`.
//
// # Router
//
// [BasicRouter] wraps [http.ServeMux] with method patterns and a [Middleware] stack.
// Middleware added first runs outermost.
//
// # OAuth Callback
//
// [OAuthHandler] receives the redirect from the Spotify authorize page. It checks the
// state parameter against the one it was created with, trades the code for a token
// through an [Exchanger] and delivers exactly one [OAuthResult]. Later callbacks are
// rejected.
//
// [AwaitToken] binds the listener (127.0.0.1:3000 by default), waits for that result
// and shuts the server down again.
package server
