package authkit

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/restodash/authkit/identity"
	"github.com/restodash/authkit/internal/audit"
	"github.com/restodash/authkit/internal/metrics"
	"github.com/restodash/authkit/jwt"
	"github.com/restodash/authkit/session"
)

// Manager owns the authoritative session and drives the lifecycle
// state machine:
//
//	Uninitialized -> Hydrating -> Authenticated | Anonymous
//
// Hydrate runs exactly once. Afterwards the state toggles between
// Authenticated and Anonymous through logins and logouts; it never
// returns to Uninitialized or Hydrating.
type Manager struct {
	cfg      Config
	identity IdentityClient
	store    *session.Store
	audit    *audit.Dispatcher
	metrics  *metrics.Metrics
	guard    *Guard
	hook     ForcedLogoutHook

	// now is the clock; tests substitute it.
	now func() time.Time

	mu       sync.Mutex
	state    State
	current  *session.Session
	inFlight bool
	hydrated bool
}

// Guard returns the expiration guard bound to this manager.
func (m *Manager) Guard() *Guard {
	return m.guard
}

// Hydrate restores any persisted session and resolves the initial
// state. A stored session that is already expired (leeway included) is
// discarded without ever becoming observable as authenticated. Hydrate
// runs at most once; later calls return the current state unchanged.
func (m *Manager) Hydrate(ctx context.Context) State {
	m.mu.Lock()
	if m.hydrated {
		state := m.state
		m.mu.Unlock()
		return state
	}
	m.hydrated = true
	m.state = StateHydrating
	m.mu.Unlock()

	sess := m.store.Load(ctx)
	if sess == nil {
		m.setState(StateAnonymous, nil)
		m.metrics.Inc(metrics.MetricHydrateAnonymous)
		m.emit(AuditEvent{EventType: "hydrate", Success: true, Reason: "anonymous"})
		return StateAnonymous
	}

	if sess.ExpiredAt(m.now(), m.cfg.Guard.ExpiryLeeway) {
		if err := m.store.Clear(ctx); err != nil {
			m.emit(AuditEvent{EventType: "store_clear_failed", SessionID: sess.SessionID, Error: err.Error()})
		}
		m.setState(StateAnonymous, nil)
		m.metrics.Inc(metrics.MetricHydrateExpired)
		m.emit(AuditEvent{
			EventType: "forced_logout",
			UserID:    sess.User.ID,
			SessionID: sess.SessionID,
			Mode:      sess.Mode.String(),
			Reason:    string(ReasonHydrateExpired),
			Success:   true,
		})
		if m.hook != nil {
			m.hook(ReasonHydrateExpired)
		}
		return StateAnonymous
	}

	m.setState(StateAuthenticated, sess)
	m.metrics.Inc(metrics.MetricHydrateAuthenticated)
	m.emit(AuditEvent{
		EventType: "hydrate",
		UserID:    sess.User.ID,
		SessionID: sess.SessionID,
		Mode:      sess.Mode.String(),
		Success:   true,
	})
	return StateAuthenticated
}

// Login exchanges credentials for a session. identifier may be an email
// address or a username; derivation and retry against the identity
// service happen inside the client. remember selects the durable scope.
//
// At most one exchange runs at a time; a second call while one is in
// flight fails fast with [ErrLoginInFlight].
func (m *Manager) Login(ctx context.Context, identifier, secret string, remember bool) (SessionInfo, error) {
	mode := session.Ephemeral
	if remember {
		mode = session.Remembered
	}
	return m.exchange(ctx, "login", identifier, mode,
		func(ctx context.Context) (*identity.Grant, error) {
			return m.identity.Login(ctx, identifier, secret)
		},
		metrics.MetricLoginSuccess, metrics.MetricLoginFailure)
}

// GoogleLogin exchanges a Google-issued token for a session. Provider
// logins are always remembered, matching the persistence the dashboard
// has always given them.
func (m *Manager) GoogleLogin(ctx context.Context, providerToken string) (SessionInfo, error) {
	return m.exchange(ctx, "google_login", "", session.Remembered,
		func(ctx context.Context) (*identity.Grant, error) {
			return m.identity.GoogleLogin(ctx, providerToken)
		},
		metrics.MetricGoogleLoginSuccess, metrics.MetricGoogleLoginFailure)
}

// Register creates an account and signs the new user in.
func (m *Manager) Register(ctx context.Context, req RegisterRequest, remember bool) (SessionInfo, error) {
	mode := session.Ephemeral
	if remember {
		mode = session.Remembered
	}
	return m.exchange(ctx, "register", req.Email, mode,
		func(ctx context.Context) (*identity.Grant, error) {
			return m.identity.Register(ctx, req)
		},
		metrics.MetricRegisterSuccess, metrics.MetricRegisterFailure)
}

func (m *Manager) exchange(ctx context.Context, op, identifier string, mode session.Mode,
	call func(context.Context) (*identity.Grant, error), okID, failID metrics.MetricID) (SessionInfo, error) {

	m.mu.Lock()
	if m.inFlight {
		m.mu.Unlock()
		m.metrics.Inc(metrics.MetricLoginRejectedInFlight)
		m.emit(AuditEvent{EventType: op, Identifier: identifier, Error: ErrLoginInFlight.Error()})
		return SessionInfo{}, ErrLoginInFlight
	}
	m.inFlight = true
	m.mu.Unlock()

	defer func() {
		m.mu.Lock()
		m.inFlight = false
		m.mu.Unlock()
	}()

	start := m.now()
	grant, err := call(ctx)
	if err != nil {
		// Failure leaves the previous state untouched: a failed login
		// never logs anyone out.
		m.metrics.Inc(failID)
		m.emit(AuditEvent{EventType: op, Identifier: identifier, Error: err.Error()})
		return SessionInfo{}, err
	}

	sess := m.newSession(grant, mode)
	m.setState(StateAuthenticated, sess)

	// The in-memory session is live even if persistence fails; the user
	// just will not survive a restart.
	if err := m.store.Save(ctx, sess); err != nil {
		m.metrics.Inc(metrics.MetricStoreSaveFailure)
		m.emit(AuditEvent{
			EventType: "store_save_failed",
			UserID:    sess.User.ID,
			SessionID: sess.SessionID,
			Mode:      mode.String(),
			Error:     err.Error(),
		})
	}

	m.metrics.Inc(okID)
	m.metrics.Observe(metrics.MetricLoginLatency, m.now().Sub(start))
	m.emit(AuditEvent{
		EventType:  op,
		UserID:     sess.User.ID,
		Identifier: identifier,
		SessionID:  sess.SessionID,
		Mode:       mode.String(),
		Success:    true,
	})
	return m.info(sess), nil
}

// newSession builds the session record from a grant. Expiry resolution
// order: explicit expires_in from the service, then the token's exp
// claim, then the configured default TTL.
func (m *Manager) newSession(grant *identity.Grant, mode session.Mode) *session.Session {
	now := m.now()

	expiresAt := now.Add(m.cfg.Session.DefaultTTL)
	if grant.ExpiresIn > 0 {
		expiresAt = now.Add(grant.ExpiresIn)
	} else if exp, err := jwt.Expiry(grant.Token); err == nil {
		expiresAt = exp
	}

	return &session.Session{
		SessionID: uuid.NewString(),
		User: session.User{
			ID:          grant.User.ID,
			Username:    grant.User.Username,
			Email:       grant.User.Email,
			DisplayName: grant.User.DisplayName,
			Role:        grant.User.Role,
		},
		Token:        grant.Token,
		RefreshToken: grant.RefreshToken,
		IssuedAt:     now.UnixMilli(),
		ExpiresAt:    expiresAt.UnixMilli(),
		Mode:         mode,
	}
}

// Logout ends the session explicitly. It is idempotent: logging out
// while anonymous is a no-op success. The forced-logout hook does not
// run; the caller initiated this transition and handles its own UI.
func (m *Manager) Logout(ctx context.Context) error {
	m.mu.Lock()
	sess := m.current
	m.current = nil
	m.state = StateAnonymous
	m.hydrated = true
	m.mu.Unlock()

	err := m.store.Clear(ctx)

	if sess != nil {
		m.metrics.Inc(metrics.MetricLogout)
		m.emit(AuditEvent{
			EventType: "logout",
			UserID:    sess.User.ID,
			SessionID: sess.SessionID,
			Mode:      sess.Mode.String(),
			Reason:    string(ReasonUserLogout),
			Success:   err == nil,
		})
	}
	return err
}

// forceLogout terminates the session for the given reason. The hook
// runs only after the in-memory session is gone and the stores are
// cleared, so anything it triggers observes the anonymous state.
func (m *Manager) forceLogout(ctx context.Context, reason LogoutReason) bool {
	m.mu.Lock()
	sess := m.current
	if sess == nil {
		m.mu.Unlock()
		return false
	}
	m.current = nil
	m.state = StateAnonymous
	m.mu.Unlock()

	if err := m.store.Clear(ctx); err != nil {
		m.emit(AuditEvent{EventType: "store_clear_failed", SessionID: sess.SessionID, Error: err.Error()})
	}

	switch reason {
	case ReasonTokenExpired:
		m.metrics.Inc(metrics.MetricForcedLogoutExpired)
	case ReasonUnauthorized:
		m.metrics.Inc(metrics.MetricForcedLogoutUnauthorized)
	}
	m.emit(AuditEvent{
		EventType: "forced_logout",
		UserID:    sess.User.ID,
		SessionID: sess.SessionID,
		Mode:      sess.Mode.String(),
		Reason:    string(reason),
		Success:   true,
	})

	if m.hook != nil {
		m.hook(reason)
	}
	return true
}

// State returns the current lifecycle state.
func (m *Manager) State() State {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state
}

// IsLoading reports whether an authentication outcome is still pending:
// hydration has not resolved, or a credential exchange is in flight.
func (m *Manager) IsLoading() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state == StateUninitialized || m.state == StateHydrating || m.inFlight
}

// IsAuthenticated reports whether a live, non-expired session is held.
func (m *Manager) IsAuthenticated() bool {
	m.mu.Lock()
	sess := m.current
	ok := m.state == StateAuthenticated
	m.mu.Unlock()
	return ok && !sess.ExpiredAt(m.now(), m.cfg.Guard.ExpiryLeeway)
}

// Current returns a snapshot of the session, if one is held.
func (m *Manager) Current() (SessionInfo, bool) {
	m.mu.Lock()
	sess := m.current
	m.mu.Unlock()
	if sess == nil {
		return SessionInfo{}, false
	}
	return m.info(sess), true
}

// Token returns the current bearer token, or "" when anonymous.
func (m *Manager) Token() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.current == nil {
		return ""
	}
	return m.current.Token
}

// Close flushes and stops the audit pipeline. The Manager remains
// usable for reads but emits no further audit events.
func (m *Manager) Close() {
	m.audit.Close()
}

// MetricsSnapshot returns a point-in-time copy of all metrics. Empty
// when metrics are disabled.
func (m *Manager) MetricsSnapshot() MetricsSnapshot {
	return m.metrics.Snapshot()
}

// AuditDropped returns how many audit events were discarded because the
// buffer was full.
func (m *Manager) AuditDropped() uint64 {
	return m.audit.Dropped()
}

// setState records a resolved lifecycle state. Any resolved state ends
// the hydration window: a login that lands before Hydrate must not let
// a later Hydrate overwrite the live session from the store.
func (m *Manager) setState(state State, sess *session.Session) {
	m.mu.Lock()
	m.state = state
	m.current = sess
	m.hydrated = true
	m.mu.Unlock()
}

func (m *Manager) info(sess *session.Session) SessionInfo {
	return SessionInfo{
		SessionID: sess.SessionID,
		User:      sess.User,
		IssuedAt:  time.UnixMilli(sess.IssuedAt),
		ExpiresAt: time.UnixMilli(sess.ExpiresAt),
		Mode:      sess.Mode,
	}
}

func (m *Manager) snapshot() *session.Session {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.current
}

func (m *Manager) emit(event AuditEvent) {
	if m.audit == nil {
		return
	}
	event.Timestamp = m.now()
	m.audit.Emit(context.Background(), event)
}

// reportCorrupt is the session store's load-defect hook.
func (m *Manager) reportCorrupt(err error) {
	m.metrics.Inc(metrics.MetricHydrateCorrupt)
	m.emit(AuditEvent{EventType: "session_corrupt", Error: err.Error()})
}
