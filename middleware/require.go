package middleware

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/restodash/authkit"
)

// RequireSession is the API variant of [Gate]: instead of redirecting
// it answers 401 with a JSON body, and a pending outcome answers 503.
func RequireSession(manager *authkit.Manager) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if manager.IsLoading() {
				writeJSONError(w, http.StatusServiceUnavailable, "session restoring")
				return
			}

			info, ok := manager.Current()
			if !ok || !manager.IsAuthenticated() {
				writeJSONError(w, http.StatusUnauthorized, "authentication required")
				return
			}

			ctx := context.WithValue(r.Context(), sessionContextKey{}, info)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func writeJSONError(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": message})
}
