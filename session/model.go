package session

import "time"

// Mode selects which durable scope holds the serialized session.
type Mode uint8

const (
	// Ephemeral sessions live in the process-scoped store and vanish on
	// restart (the "keep me logged in" box left unchecked).
	Ephemeral Mode = iota
	// Remembered sessions live in the long-lived store and survive
	// restarts.
	Remembered
)

// String returns the mode name used in audit events.
func (m Mode) String() string {
	if m == Remembered {
		return "remembered"
	}
	return "ephemeral"
}

// User is the normalized identity record carried by a [Session]. It is
// produced once at session creation; downstream consumers never see the
// identity service's duck-typed payload variants.
type User struct {
	ID          string
	Username    string
	Email       string
	DisplayName string
	Role        string
}

// Session is the authoritative record of a logged-in user: identity,
// opaque bearer token, and expiry bookkeeping. Instances are immutable
// after creation; re-issuance replaces the whole value.
type Session struct {
	SessionID string
	User      User
	Token     string

	// RefreshToken is stored opaquely when the identity service issues
	// one. The client never rotates it; refresh is server-owned.
	RefreshToken string

	// IssuedAt and ExpiresAt are epoch milliseconds.
	IssuedAt  int64
	ExpiresAt int64

	Mode Mode
}

// ExpiresTime returns ExpiresAt as a time.Time.
func (s *Session) ExpiresTime() time.Time {
	return time.UnixMilli(s.ExpiresAt)
}

// ExpiredAt reports whether the session is expired at the given instant,
// applying leeway as a safety buffer: a session within leeway of its
// expiry already counts as expired.
func (s *Session) ExpiredAt(now time.Time, leeway time.Duration) bool {
	if s == nil {
		return true
	}
	return now.Add(leeway).UnixMilli() >= s.ExpiresAt
}
