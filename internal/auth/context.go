package auth

import (
	"context"
	"net/http"

	"cinelist/models"
)

// ContextKey is the type used for context keys
type ContextKey string

const (
	// ContextKeySessionID is the key for the caller's session id
	ContextKeySessionID ContextKey = "sessionID"
	// ContextKeySession is the key for the session snapshot taken when the request arrived
	ContextKeySession ContextKey = "session"
)

// WithSession returns a copy of ctx carrying session.
func WithSession(ctx context.Context, session models.Session) context.Context {
	ctx = context.WithValue(ctx, ContextKeySessionID, session.ID)
	return context.WithValue(ctx, ContextKeySession, session)
}

// GetSessionID retrieves the session id from the request context.
func GetSessionID(r *http.Request) string {
	if id, ok := r.Context().Value(ContextKeySessionID).(string); ok {
		return id
	}
	return ""
}

// GetSession retrieves the session snapshot from the request context.
func GetSession(r *http.Request) (models.Session, bool) {
	session, ok := r.Context().Value(ContextKeySession).(models.Session)
	return session, ok
}

// GetUsername returns the logged-in username or "" for anonymous callers.
func GetUsername(r *http.Request) string {
	session, ok := GetSession(r)
	if !ok || !session.IsAuthenticated() {
		return ""
	}
	return session.Username()
}
