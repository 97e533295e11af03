// Package identity is the HTTP client for the external identity service
// that exchanges credentials for bearer tokens.
//
// The service is a collaborator, not part of this repo: this package
// only builds requests, maps responses into a normalized [Grant], and
// translates failures into the three typed sentinel errors the UI
// renders inline ([ErrInvalidCredentials], [ErrNetworkFailure],
// [ErrServerError]).
//
// # Normalization
//
// The legacy service answers with duck-typed payloads: the token under
// access_token, access, or token; user names split across snake_case
// and camelCase fields. All of that is collapsed here, once, into
// [User]; downstream consumers never write defensive fallback chains.
//
// # What this package must NOT do
//
//   - Persist anything or touch session state.
//   - Validate tokens; it hands grants to the Manager as-is.
//   - Import authkit or session (no upward imports).
package identity
