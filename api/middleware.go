package api

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/gorilla/mux"

	"cinelist/internal/auth"
	"cinelist/models"
)

// Re-export from auth package so handlers only import api.
var (
	GetSessionID = auth.GetSessionID
	GetSession   = auth.GetSession
	GetUsername  = auth.GetUsername
)

// SessionLookup resolves a session id to its current state.
type SessionLookup interface {
	Get(id string) (models.Session, error)
}

// SessionMiddleware resolves the caller's session and injects it into the
// request context. Requests without a known session get 401.
// The id can be provided via Authorization: Bearer or X-Session-ID.
func SessionMiddleware(sessions SessionLookup) mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			// Always allow OPTIONS for CORS
			if r.Method == http.MethodOptions {
				next.ServeHTTP(w, r)
				return
			}

			id := extractSessionID(r)
			if id == "" {
				writeError(w, http.StatusUnauthorized, "session required")
				return
			}

			session, err := sessions.Get(id)
			if err != nil {
				writeError(w, http.StatusUnauthorized, "unknown session")
				return
			}

			next.ServeHTTP(w, r.WithContext(auth.WithSession(r.Context(), session)))
		})
	}
}

// OptionalSessionMiddleware injects the caller's session when one is supplied
// and known, and otherwise lets the request through anonymously.
func OptionalSessionMiddleware(sessions SessionLookup) mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if id := extractSessionID(r); id != "" {
				if session, err := sessions.Get(id); err == nil {
					r = r.WithContext(auth.WithSession(r.Context(), session))
				}
			}
			next.ServeHTTP(w, r)
		})
	}
}

// RequireAuthMiddleware rejects sessions that are not logged in.
func RequireAuthMiddleware() mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.Method == http.MethodOptions {
				next.ServeHTTP(w, r)
				return
			}

			if GetUsername(r) == "" {
				writeError(w, http.StatusUnauthorized, "login required")
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// extractSessionID reads the session id from headers.
// Priority: Authorization header > X-Session-ID header
func extractSessionID(r *http.Request) string {
	if authHeader := r.Header.Get("Authorization"); authHeader != "" {
		scheme, token, ok := strings.Cut(authHeader, " ")
		if ok && strings.EqualFold(scheme, "bearer") {
			if token = strings.TrimSpace(token); token != "" {
				return token
			}
		}
	}

	return strings.TrimSpace(r.Header.Get("X-Session-ID"))
}

func writeError(w http.ResponseWriter, status int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]string{"error": msg})
}
