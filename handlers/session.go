package handlers

import (
	"net/http"

	"cinelist/api"
	"cinelist/models"
)

type sessionRegistry interface {
	Connect() models.Session
	Disconnect(id string)
}

// SessionHandler manages the connect/disconnect lifecycle.
type SessionHandler struct {
	sessions sessionRegistry
}

func NewSessionHandler(sessions sessionRegistry) *SessionHandler {
	return &SessionHandler{sessions: sessions}
}

// Connect opens a new anonymous session and returns its id.
func (h *SessionHandler) Connect(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusCreated, h.sessions.Connect())
}

// Disconnect drops the caller's session.
func (h *SessionHandler) Disconnect(w http.ResponseWriter, r *http.Request) {
	h.sessions.Disconnect(api.GetSessionID(r))
	writeJSON(w, http.StatusOK, map[string]string{"status": "disconnected"})
}
