package middleware

import (
	"context"
	"io"
	"net/http"

	"github.com/restodash/authkit"
)

type sessionContextKey struct{}

// FromContext returns the session snapshot that Gate or RequireSession
// attached to the request context.
func FromContext(ctx context.Context) (authkit.SessionInfo, bool) {
	info, ok := ctx.Value(sessionContextKey{}).(authkit.SessionInfo)
	return info, ok
}

// Gate protects a route subtree. Decision order matters:
//
//  1. Outcome pending (hydrating, or an exchange in flight): answer
//     503 with Retry-After. The protected handler never runs, and no
//     redirect is issued; redirecting here would bounce users whose
//     stored session is about to restore.
//  2. Anonymous: redirect to signinPath with 303 See Other.
//  3. Authenticated: attach the session snapshot to the context and
//     run the protected handler.
func Gate(manager *authkit.Manager, signinPath string) func(http.Handler) http.Handler {
	if signinPath == "" {
		signinPath = "/signin"
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if manager.IsLoading() {
				w.Header().Set("Cache-Control", "no-store")
				w.Header().Set("Retry-After", "1")
				w.WriteHeader(http.StatusServiceUnavailable)
				io.WriteString(w, "restoring session\n")
				return
			}

			info, ok := manager.Current()
			if !ok || !manager.IsAuthenticated() {
				http.Redirect(w, r, signinPath, http.StatusSeeOther)
				return
			}

			ctx := context.WithValue(r.Context(), sessionContextKey{}, info)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
