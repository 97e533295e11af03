package authkit

import (
	"context"
	"io"
	"time"

	"github.com/restodash/authkit/identity"
	"github.com/restodash/authkit/internal/audit"
	"github.com/restodash/authkit/session"
)

// State is the lifecycle phase of a [Manager].
type State uint8

const (
	// StateUninitialized means Hydrate has not been called yet.
	StateUninitialized State = iota

	// StateHydrating means the stored session is being restored.
	StateHydrating

	// StateAuthenticated means a live session is held in memory.
	StateAuthenticated

	// StateAnonymous means no session is held.
	StateAnonymous
)

func (s State) String() string {
	switch s {
	case StateUninitialized:
		return "uninitialized"
	case StateHydrating:
		return "hydrating"
	case StateAuthenticated:
		return "authenticated"
	case StateAnonymous:
		return "anonymous"
	default:
		return "unknown"
	}
}

// LogoutReason classifies why a session ended.
type LogoutReason string

const (
	// ReasonUserLogout is an explicit logout requested by the caller.
	ReasonUserLogout LogoutReason = "user_logout"

	// ReasonTokenExpired is a forced logout because the token's expiry
	// passed (or entered the leeway window).
	ReasonTokenExpired LogoutReason = "token_expired"

	// ReasonUnauthorized is a forced logout because the backend rejected
	// the token with 401.
	ReasonUnauthorized LogoutReason = "unauthorized"

	// ReasonHydrateExpired is a stored session discarded during
	// hydration because it was already expired.
	ReasonHydrateExpired LogoutReason = "hydrate_expired"
)

// ForcedLogoutHook runs after a forced logout has completed, meaning
// the in-memory session is gone and the stores are cleared. UI shells
// typically redirect to the sign-in view here.
type ForcedLogoutHook func(reason LogoutReason)

// User aliases the session user model.
type User = session.User

// RegisterRequest aliases the identity service registration payload.
type RegisterRequest = identity.RegisterRequest

// SessionInfo is a read-only snapshot of the current session. The
// bearer token is deliberately absent; use [Manager.Token] or [Client].
type SessionInfo struct {
	SessionID string
	User      User
	IssuedAt  time.Time
	ExpiresAt time.Time
	Mode      session.Mode
}

// IdentityClient is the credential-exchange surface the Manager
// depends on. *identity.Client satisfies it.
type IdentityClient interface {
	Login(ctx context.Context, identifier, secret string) (*identity.Grant, error)
	GoogleLogin(ctx context.Context, providerToken string) (*identity.Grant, error)
	Register(ctx context.Context, req identity.RegisterRequest) (*identity.Grant, error)
}

// Audit surface, aliased from the internal dispatcher model.
type (
	AuditEvent     = audit.Event
	AuditSink      = audit.Sink
	NoOpSink       = audit.NoOpSink
	ChannelSink    = audit.ChannelSink
	JSONWriterSink = audit.JSONWriterSink
)

// NewChannelSink returns a sink backed by a buffered channel.
func NewChannelSink(buffer int) *ChannelSink {
	return audit.NewChannelSink(buffer)
}

// NewJSONWriterSink returns a sink writing one JSON object per line.
func NewJSONWriterSink(w io.Writer) *JSONWriterSink {
	return audit.NewJSONWriterSink(w)
}
