// Package kv provides the durable client-side key-value stores that back
// session persistence.
//
// Two scopes exist by convention: an ephemeral store that lives for the
// process (the analogue of sessionStorage) and a long-lived store that
// survives restarts (the analogue of localStorage). [Memory] serves the
// first; [File] and [Redis] serve the second.
//
// # Architecture boundaries
//
// This package owns raw byte persistence only. It does NOT interpret
// session blobs, check expiry, or make authentication decisions; those
// responsibilities belong to the session package and the Manager.
//
// # What this package must NOT do
//
//   - Import authkit or any sibling package (no upward imports).
//   - Return partial values: a write is observable fully or not at all.
//   - Treat a missing key as an error other than [ErrNotFound].
package kv
