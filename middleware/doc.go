// Package middleware provides HTTP route gating on top of an authkit
// Manager.
//
// [Gate] is the browser-facing guard: while the authentication outcome
// is still pending it answers with a neutral placeholder instead of
// redirecting, so a user restoring a valid session is never bounced to
// the sign-in view. [RequireSession] is the API-facing variant that
// answers 401 JSON instead of redirecting.
package middleware
