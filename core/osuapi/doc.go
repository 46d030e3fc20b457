// Package osuapi provides the HTTP client for the upstream beatmap catalogue.
//
// The catalogue is the authoritative source of beatmap metadata. It is slow
// and rate limited, so this client is only ever reached through the caching
// layers in feature/beatmap; nothing should call it on a hot path.
//
// # Error semantics
//
// A 404 from the api is a definitive "does not exist" and is surfaced as
// ErrNotFound. Everything else (timeouts, 5xx, decode failures) is a
// transient error: callers must not treat it as confirmation of absence, and
// in particular must never delete local data because of it.
//
// # Rate limiting and retries
//
// All requests share a token-bucket limiter (golang.org/x/time/rate) sized
// from configuration, and transient failures are retried up to the configured
// attempt count before giving up.
package osuapi
