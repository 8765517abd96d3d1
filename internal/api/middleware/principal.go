package middleware

import (
	"net/http"
	"strings"

	"github.com/Project-Sylos/Canopy/internal/auth"
)

// APIKeyHeader carries the caller's API key.
const APIKeyHeader = "X-API-KEY"

// Principal resolves the caller from the X-API-KEY header (or a bearer
// token) and stores the principal in the request context. Requests without
// a valid key continue as anonymous; the handlers decide what that allows.
func Principal(authenticator *auth.Authenticator) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			p := authenticator.Authenticate(presentedKey(r))
			next.ServeHTTP(w, r.WithContext(auth.WithPrincipal(r.Context(), p)))
		})
	}
}

func presentedKey(r *http.Request) string {
	if key := r.Header.Get(APIKeyHeader); key != "" {
		return key
	}
	if token, ok := strings.CutPrefix(r.Header.Get("Authorization"), "Bearer "); ok {
		return strings.TrimSpace(token)
	}
	return ""
}
