// Package middleware contains the fiber middleware of the request pipeline.
//
// The server composes them in a fixed order:
//
//	Metrics -> Trace -> RequestContext -> RecoverWithSentry ->
//	SentryMiddleware -> CORS -> RequestTimeout -> routes
//
// Trace owns error handling for everything beneath it: it hands any
// returned error to ErrorHandler exactly once and then logs the request.
// ErrorHandler is also installed as the fiber error handler so that
// transport-level rejections, which never reach the middleware chain,
// produce the same envelope.
package middleware
