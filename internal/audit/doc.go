// Package audit provides the asynchronous event pipeline for session
// lifecycle observability: logins, logouts, forced logouts, hydration
// outcomes, and corrupt stored sessions.
//
// Events flow Manager -> Dispatcher -> Sink. The dispatcher decouples
// sink latency from the auth path: emission never blocks a login when
// DropIfFull is set.
//
// # What this package must NOT do
//
//   - Import authkit or any sibling package.
//   - Carry secrets: events never contain tokens or passwords.
package audit
