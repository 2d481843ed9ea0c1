package handlers

import (
	"encoding/json"
	"net/http"

	"cinelist/api"
	"cinelist/models"
	"cinelist/services/sessions"
)

type authSessions interface {
	Signup(id, username, password string) (models.Session, error)
	Login(id, username, password string) (models.Session, error)
	Logout(id string) (models.Session, error)
	Get(id string) (models.Session, error)
}

var _ authSessions = (*sessions.Service)(nil)

// AuthHandler handles signup, login and logout for the caller's session.
type AuthHandler struct {
	sessions authSessions
}

func NewAuthHandler(sessionsSvc authSessions) *AuthHandler {
	return &AuthHandler{sessions: sessionsSvc}
}

// CredentialsRequest is the signup and login body.
type CredentialsRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

func (h *AuthHandler) decode(w http.ResponseWriter, r *http.Request) (CredentialsRequest, bool) {
	var req CredentialsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return req, false
	}
	return req, true
}

// Signup registers the user and logs the session in.
func (h *AuthHandler) Signup(w http.ResponseWriter, r *http.Request) {
	req, ok := h.decode(w, r)
	if !ok {
		return
	}

	session, err := h.sessions.Signup(api.GetSessionID(r), req.Username, req.Password)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, session)
}

// Login authenticates the session.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	req, ok := h.decode(w, r)
	if !ok {
		return
	}

	session, err := h.sessions.Login(api.GetSessionID(r), req.Username, req.Password)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, session)
}

// Logout returns the session to anonymous.
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	session, err := h.sessions.Logout(api.GetSessionID(r))
	if err != nil {
		respondServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, session)
}

// Me returns the caller's current session.
func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	session, err := h.sessions.Get(api.GetSessionID(r))
	if err != nil {
		respondServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, session)
}
