package middleware

import (
	"net/http"
	"strings"

	"github.com/proflow/proflow-back/internal/auth"
)

// Auth gates mutations behind an anonymous session token. Reads stay open so
// a client whose sign-in failed still gets a read-only dashboard instead of
// a dead one.
func Auth(sessions *auth.Sessions) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !strings.HasPrefix(r.URL.Path, "/v1/") {
				next.ServeHTTP(w, r)
				return
			}
			if r.URL.Path == "/v1/auth/anonymous" {
				next.ServeHTTP(w, r)
				return
			}
			if !isMutation(r.Method) {
				next.ServeHTTP(w, r)
				return
			}

			authorization := r.Header.Get("Authorization")
			const prefix = "Bearer "
			if !strings.HasPrefix(authorization, prefix) {
				writeUnauthorized(w, r)
				return
			}

			token := strings.TrimSpace(strings.TrimPrefix(authorization, prefix))
			if !sessions.Valid(token) {
				writeUnauthorized(w, r)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

func isMutation(method string) bool {
	switch method {
	case http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete:
		return true
	}
	return false
}

func writeUnauthorized(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	_, _ = w.Write([]byte(`{"error":{"code":"auth_required","message":"authentication required"},"request_id":"` + GetRequestID(r.Context()) + `"}`))
}
