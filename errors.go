package authkit

import (
	"errors"

	"github.com/restodash/authkit/identity"
	"github.com/restodash/authkit/session"
)

// Identity service failures are re-exported so callers can classify
// login outcomes without importing the identity package.
var (
	ErrInvalidCredentials = identity.ErrInvalidCredentials
	ErrNetworkFailure     = identity.ErrNetworkFailure
	ErrServerError        = identity.ErrServerError
)

// ErrCorruptSession is re-exported for callers inspecting audit events
// or store reports.
var ErrCorruptSession = session.ErrCorruptBlob

var (
	// ErrTokenExpired is returned by [Client] when the local session is
	// known to be expired; the request is never sent.
	ErrTokenExpired = errors.New("authkit: session token expired")

	// ErrUnauthorized is returned by [Client] when the backend answered
	// 401 Unauthorized. The session has already been terminated.
	ErrUnauthorized = errors.New("authkit: unauthorized")

	// ErrLoginInFlight is returned when a credential exchange is started
	// while another one has not finished.
	ErrLoginInFlight = errors.New("authkit: login already in flight")

	// ErrBuilderConsumed is returned when Build is called twice on the
	// same Builder.
	ErrBuilderConsumed = errors.New("authkit: builder already consumed")

	// ErrIdentityClientRequired is returned by Build when no identity
	// client was supplied.
	ErrIdentityClientRequired = errors.New("authkit: identity client required")

	// ErrRememberedStoreRequired is returned by Build when no durable
	// store for remembered sessions was supplied.
	ErrRememberedStoreRequired = errors.New("authkit: remembered store required")
)
