// Package jwt extracts expiry metadata from bearer tokens without
// verifying them.
//
// The dashboard treats its token as opaque: it is never validated
// locally beyond expiry bookkeeping, and signature verification is the
// identity service's job. [Expiry] therefore parses the token
// unverified and reads only the registered exp claim.
//
// # What this package must NOT do
//
//   - Verify signatures or accept/reject tokens.
//   - Read any claim other than exp.
//   - Import authkit or session (no upward imports).
package jwt
