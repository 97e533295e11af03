// Package authkit is the authentication and session-lifecycle core of
// the restaurant-management admin dashboard. It owns the single
// authoritative session: how credentials become one, how its expiry is
// tracked, how protected views are gated, and how expiration surfaces
// as a forced logout.
//
// The package is designed for event-driven UI shells. Manager methods
// are safe to call from multiple goroutines after initialization
// through [Builder.Build], but the session has exactly one writer (the
// Manager) and everything else reads derived snapshots.
//
// # Architecture boundaries
//
// authkit is the public surface. It exposes [Manager], [Builder],
// [Guard], [Client], [Config], and value types (SessionInfo, AuditEvent,
// MetricsSnapshot). Persistence lives in session and kv, the identity
// service client in identity, token expiry extraction in jwt, and route
// gating in middleware. Internal coordination (audit dispatch, metric
// storage) lives under internal/ and is never exported directly.
//
// # What this package must NOT do
//
//   - Verify or mint tokens; the bearer token is opaque beyond its exp
//     claim. The identity service is authoritative.
//   - Expose the raw durable stores or serialized session blobs.
//   - Force a logout anywhere but through [Guard]; every other
//     component reads state or requests logout explicitly.
package authkit
