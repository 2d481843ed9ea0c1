package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/url"

	"cinelist/models"
	"cinelist/services/credentials"
	"cinelist/services/lists"
	"cinelist/services/omdb"
	"cinelist/services/search"
	"cinelist/services/sessions"
)

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

// statusForError maps service errors onto HTTP status codes.
func statusForError(err error) int {
	var normErr *omdb.NormalizationError
	var httpErr *omdb.HTTPStatusError
	var urlErr *url.Error

	switch {
	case errors.Is(err, lists.ErrValidation),
		errors.Is(err, lists.ErrOwnerRequired),
		errors.Is(err, sessions.ErrCredentialsRequired),
		errors.Is(err, search.ErrTitleRequired),
		errors.Is(err, models.ErrInvalidCriteria),
		errors.Is(err, models.ErrInvalidRecord),
		errors.Is(err, credentials.ErrInvalidUsername),
		errors.Is(err, credentials.ErrInvalidPassword),
		errors.Is(err, credentials.ErrUsernameRequired),
		errors.Is(err, credentials.ErrPasswordRequired):
		return http.StatusBadRequest
	case errors.Is(err, credentials.ErrUnknownUser),
		errors.Is(err, credentials.ErrInvalidCredential),
		errors.Is(err, sessions.ErrNotAuthenticated),
		errors.Is(err, sessions.ErrSessionNotFound):
		return http.StatusUnauthorized
	case errors.Is(err, lists.ErrNotOwner):
		return http.StatusForbidden
	case errors.Is(err, omdb.ErrNotFound), errors.Is(err, lists.ErrListNotFound):
		return http.StatusNotFound
	case errors.Is(err, credentials.ErrDuplicateUser),
		errors.Is(err, sessions.ErrAuthInProgress):
		return http.StatusConflict
	case errors.Is(err, omdb.ErrAPIKeyRequired):
		return http.StatusServiceUnavailable
	case errors.Is(err, context.DeadlineExceeded),
		errors.As(err, &urlErr) && urlErr.Timeout():
		return http.StatusGatewayTimeout
	case errors.As(err, &normErr), errors.As(err, &httpErr), errors.As(err, &urlErr),
		errors.Is(err, search.ErrLookupPanicked):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

func respondServiceError(w http.ResponseWriter, err error) {
	writeError(w, statusForError(err), err.Error())
}
