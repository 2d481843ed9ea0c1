package handlers_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/spf13/afero"

	"cinelist/internal/auth"
	"cinelist/models"
	"cinelist/services/credentials"
	"cinelist/services/lists"
	"cinelist/services/sessions"
)

type testEnv struct {
	sessions *sessions.Service
	lists    *lists.Service
}

func setupTestEnv(t *testing.T) *testEnv {
	t.Helper()
	provider, err := credentials.NewFileProvider(afero.NewMemMapFs(), "creds.txt")
	if err != nil {
		t.Fatalf("failed to create provider: %v", err)
	}
	store, err := lists.NewService(afero.NewMemMapFs(), "")
	if err != nil {
		t.Fatalf("failed to create list store: %v", err)
	}
	return &testEnv{sessions: sessions.NewService(provider, store), lists: store}
}

// loggedIn connects a session and signs username up.
func (e *testEnv) loggedIn(t *testing.T, username string) models.Session {
	t.Helper()
	id := e.sessions.Connect().ID
	session, err := e.sessions.Signup(id, username, "pw")
	if err != nil {
		t.Fatalf("Signup failed: %v", err)
	}
	return session
}

// withSession attaches the session's current state the way the session
// middleware does.
func (e *testEnv) withSession(t *testing.T, req *http.Request, id string) *http.Request {
	t.Helper()
	session, err := e.sessions.Get(id)
	if err != nil {
		t.Fatalf("Get session failed: %v", err)
	}
	return req.WithContext(auth.WithSession(req.Context(), session))
}

func jsonBody(t *testing.T, v any) *bytes.Reader {
	t.Helper()
	data, err := json.Marshal(v)
	if err != nil {
		t.Fatalf("marshal body: %v", err)
	}
	return bytes.NewReader(data)
}

func decodeError(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	var body map[string]string
	if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
		t.Fatalf("decode error body: %v", err)
	}
	return body["error"]
}
