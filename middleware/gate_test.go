package middleware

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/restodash/authkit"
	"github.com/restodash/authkit/identity"
	"github.com/restodash/authkit/kv"
	"github.com/restodash/authkit/session"
)

type noIdentity struct{}

func (noIdentity) Login(context.Context, string, string) (*identity.Grant, error) {
	return nil, errors.New("unexpected Login call")
}

func (noIdentity) GoogleLogin(context.Context, string) (*identity.Grant, error) {
	return nil, errors.New("unexpected GoogleLogin call")
}

func (noIdentity) Register(context.Context, identity.RegisterRequest) (*identity.Grant, error) {
	return nil, errors.New("unexpected Register call")
}

// newManager builds a manager over fresh in-memory stores. seed, when
// non-nil, is persisted before the manager sees the stores.
func newManager(t *testing.T, seed *session.Session) *authkit.Manager {
	t.Helper()

	ephemeral := kv.NewMemory()
	remembered := kv.NewMemory()
	if seed != nil {
		store := session.NewStore(ephemeral, remembered, session.DefaultKey, nil)
		if err := store.Save(context.Background(), seed); err != nil {
			t.Fatalf("seed session: %v", err)
		}
	}

	m, err := authkit.New().
		WithIdentityClient(noIdentity{}).
		WithEphemeralStore(ephemeral).
		WithRememberedStore(remembered).
		Build()
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	t.Cleanup(m.Close)
	return m
}

func validSession() *session.Session {
	now := time.Now()
	return &session.Session{
		SessionID: "s-1",
		User:      session.User{ID: "u-1", Username: "admin", Role: "manager"},
		Token:     "bearer-token",
		IssuedAt:  now.UnixMilli(),
		ExpiresAt: now.Add(time.Hour).UnixMilli(),
		Mode:      session.Remembered,
	}
}

func protectedHandler(t *testing.T, called *bool) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		*called = true
		info, ok := FromContext(r.Context())
		if !ok {
			t.Error("no session in protected handler context")
		}
		if info.User.Username != "admin" {
			t.Errorf("context user = %q, want admin", info.User.Username)
		}
	})
}

func TestGatePendingOutcomeDoesNotRedirect(t *testing.T) {
	m := newManager(t, validSession())
	// Hydrate not called: the outcome is still pending.

	var called bool
	handler := Gate(m, "/signin")(protectedHandler(t, &called))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/dashboard", nil))

	if called {
		t.Error("protected handler ran before the outcome resolved")
	}
	if rec.Code != http.StatusServiceUnavailable {
		t.Errorf("status = %d, want 503 placeholder", rec.Code)
	}
	if loc := rec.Header().Get("Location"); loc != "" {
		t.Errorf("got redirect to %q; a pending outcome must never redirect", loc)
	}

	// Once hydration resolves the same session, the route opens.
	if got := m.Hydrate(context.Background()); got != authkit.StateAuthenticated {
		t.Fatalf("Hydrate = %v, want authenticated", got)
	}
	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/dashboard", nil))
	if !called {
		t.Error("protected handler did not run after hydration")
	}
}

func TestGateRedirectsAnonymous(t *testing.T) {
	m := newManager(t, nil)
	m.Hydrate(context.Background())

	var called bool
	handler := Gate(m, "/signin")(protectedHandler(t, &called))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/dashboard", nil))

	if called {
		t.Error("protected handler ran for an anonymous request")
	}
	if rec.Code != http.StatusSeeOther {
		t.Errorf("status = %d, want 303", rec.Code)
	}
	if loc := rec.Header().Get("Location"); loc != "/signin" {
		t.Errorf("Location = %q, want /signin", loc)
	}
}

func TestGatePassesAuthenticated(t *testing.T) {
	m := newManager(t, validSession())
	m.Hydrate(context.Background())

	var called bool
	handler := Gate(m, "/signin")(protectedHandler(t, &called))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/dashboard", nil))

	if !called {
		t.Fatal("protected handler did not run")
	}
	if rec.Code != http.StatusOK {
		t.Errorf("status = %d, want 200", rec.Code)
	}
}

func TestGateRedirectsExpiredSession(t *testing.T) {
	sess := validSession()
	sess.ExpiresAt = time.Now().Add(-time.Hour).UnixMilli()
	m := newManager(t, sess)
	m.Hydrate(context.Background())

	var called bool
	handler := Gate(m, "/signin")(protectedHandler(t, &called))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/dashboard", nil))

	if called {
		t.Error("protected handler ran with an expired session")
	}
	if rec.Code != http.StatusSeeOther {
		t.Errorf("status = %d, want 303", rec.Code)
	}
}

func TestRequireSessionAnswers401JSON(t *testing.T) {
	m := newManager(t, nil)
	m.Hydrate(context.Background())

	handler := RequireSession(m)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Error("protected handler ran for an anonymous request")
	}))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/orders", nil))

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", rec.Code)
	}
	var body map[string]string
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	if body["error"] == "" {
		t.Error("expected an error message in the JSON body")
	}
}

func TestRequireSessionPassesAuthenticated(t *testing.T) {
	m := newManager(t, validSession())
	m.Hydrate(context.Background())

	var called bool
	handler := RequireSession(m)(protectedHandler(t, &called))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/orders", nil))

	if !called {
		t.Fatal("protected handler did not run")
	}
}
