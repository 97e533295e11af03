// Package session provides the persisted session model, its JSON codec,
// and the two-scope store that moves sessions between memory and the
// durable client stores.
//
// # Encoding
//
// Sessions are serialized as versioned JSON: {v, user:{...}, token,
// issuedAt, expiresAt, mode} with epoch-millisecond timestamps. The
// schema is append-only: new versions add fields but never reinterpret
// old ones. Decoding is strict: a blob missing its token, user ID, or
// expiry is corrupt and treated as absent by callers.
//
// # Architecture boundaries
//
// This package owns the [Session] model, the codec, and [Store]. It does
// NOT talk to the identity service, decide expiry policy, or force
// logouts; those responsibilities belong to the Manager and its guard.
//
// # What this package must NOT do
//
//   - Import authkit, identity, or middleware (no upward imports).
//   - Surface a corrupt stored blob as an error to load callers.
//   - Mutate ExpiresAt after issuance; sessions are replaced, not patched.
package session
