package models

import "time"

// SessionState is the authentication state of a connected client.
type SessionState string

const (
	SessionAnonymous      SessionState = "anonymous"
	SessionAuthenticating SessionState = "authenticating"
	SessionAuthenticated  SessionState = "authenticated"
)

// Session is the per-client context: who is logged in and which list they
// are building.
type Session struct {
	ID              string        `json:"id"`
	State           SessionState  `json:"state"`
	Identity        *UserIdentity `json:"identity,omitempty"`
	WorkingList     string        `json:"workingList,omitempty"`
	ConnectedAt     time.Time     `json:"connectedAt"`
	AuthenticatedAt time.Time     `json:"authenticatedAt,omitempty"`
}

// IsAuthenticated returns true once a login or signup has succeeded.
func (s Session) IsAuthenticated() bool {
	return s.State == SessionAuthenticated && s.Identity != nil
}

// Username returns the logged-in username or "".
func (s Session) Username() string {
	if s.Identity == nil {
		return ""
	}
	return s.Identity.Username
}
