// Package clientip resolves the address of the client behind a request.
//
// Only headers named when building the Resolver are trusted; everything
// else falls back to the TCP peer. Middleware stores the result in the
// request context where the rate limiter (KeyFunc) and the logger
// (LogExtractor) pick it up.
package clientip
