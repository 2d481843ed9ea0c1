package sessions

import (
	"errors"
	"fmt"
	"log"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"cinelist/models"
	"cinelist/services/credentials"
	"cinelist/services/lists"
)

var (
	ErrSessionNotFound     = errors.New("session not found")
	ErrNotAuthenticated    = errors.New("login required")
	ErrCredentialsRequired = errors.New("username and password are required")
	ErrAuthInProgress      = errors.New("authentication already in progress")
)

// ListStore is the subset of the list store the session layer needs.
type ListStore interface {
	Get(name string) (models.MovieList, bool)
	EnsureList(name string, privacy models.Privacy, owner string) (models.MovieList, error)
	Append(name string, record models.MovieRecord, requester string) (models.MovieList, error)
}

// Service is the registry of connected clients and their auth state.
type Service struct {
	mu       sync.RWMutex
	sessions map[string]*models.Session
	provider credentials.Provider
	lists    ListStore
	now      func() time.Time
}

func NewService(provider credentials.Provider, store ListStore) *Service {
	return &Service{
		sessions: make(map[string]*models.Session),
		provider: provider,
		lists:    store,
		now:      func() time.Time { return time.Now().UTC() },
	}
}

// Connect registers a new anonymous session.
func (s *Service) Connect() models.Session {
	session := &models.Session{
		ID:          uuid.NewString(),
		State:       models.SessionAnonymous,
		ConnectedAt: s.now(),
	}

	s.mu.Lock()
	s.sessions[session.ID] = session
	s.mu.Unlock()

	return *session
}

// Disconnect drops the session. Unknown ids are ignored.
func (s *Service) Disconnect(id string) {
	s.mu.Lock()
	delete(s.sessions, id)
	s.mu.Unlock()
}

// Get returns a snapshot of the session.
func (s *Service) Get(id string) (models.Session, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	session, ok := s.sessions[id]
	if !ok {
		return models.Session{}, ErrSessionNotFound
	}
	return snapshot(session), nil
}

// Count returns the number of connected sessions.
func (s *Service) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.sessions)
}

// Signup registers a new user and logs the session in as that user.
func (s *Service) Signup(id, username, password string) (models.Session, error) {
	username = strings.TrimSpace(username)
	if username == "" || password == "" {
		return models.Session{}, ErrCredentialsRequired
	}

	prev, err := s.beginAuth(id)
	if err != nil {
		return models.Session{}, err
	}

	if err := s.register(username, password); err != nil {
		s.failAuth(id, prev)
		log.Printf("[sessions] signup failed for %q: %v", username, err)
		return models.Session{}, err
	}

	return s.completeAuth(id, username)
}

// Login authenticates the session against the credential provider.
func (s *Service) Login(id, username, password string) (models.Session, error) {
	username = strings.TrimSpace(username)
	if username == "" || password == "" {
		return models.Session{}, ErrCredentialsRequired
	}

	prev, err := s.beginAuth(id)
	if err != nil {
		return models.Session{}, err
	}

	ok, err := s.provider.Verify(username, password)
	if err == nil && !ok {
		err = credentials.ErrInvalidCredential
	}
	if err != nil {
		s.failAuth(id, prev)
		log.Printf("[sessions] login failed for %q: %v", username, err)
		return models.Session{}, err
	}

	return s.completeAuth(id, username)
}

// Logout returns the session to the anonymous state.
func (s *Service) Logout(id string) (models.Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	session, ok := s.sessions[id]
	if !ok {
		return models.Session{}, ErrSessionNotFound
	}

	if session.Identity != nil {
		log.Printf("[sessions] %s logged out", session.Identity.Username)
	}
	session.State = models.SessionAnonymous
	session.Identity = nil
	session.WorkingList = ""
	session.AuthenticatedAt = time.Time{}

	return snapshot(session), nil
}

// SetWorkingList changes the list that AddToList targets by default.
func (s *Service) SetWorkingList(id, name string) (models.Session, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return models.Session{}, lists.ErrValidation
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	session, err := s.authenticatedLocked(id)
	if err != nil {
		return models.Session{}, err
	}
	session.WorkingList = name
	return snapshot(session), nil
}

// AddToList appends record to listName on behalf of the session's user,
// creating the list with privacy if needed. An empty listName targets the
// working list.
func (s *Service) AddToList(id, listName string, privacy models.Privacy, record models.MovieRecord) (models.MovieList, error) {
	s.mu.RLock()
	session, err := s.authenticatedLocked(id)
	var username, working string
	if err == nil {
		username = session.Identity.Username
		working = session.WorkingList
	}
	s.mu.RUnlock()
	if err != nil {
		return models.MovieList{}, err
	}
	if err := record.Validate(); err != nil {
		return models.MovieList{}, err
	}

	listName = strings.TrimSpace(listName)
	if listName == "" {
		listName = working
	}

	if _, err := s.lists.EnsureList(listName, privacy, username); err != nil {
		return models.MovieList{}, err
	}
	list, err := s.lists.Append(listName, record, username)
	if err != nil {
		return models.MovieList{}, err
	}

	s.mu.Lock()
	if current, ok := s.sessions[id]; ok && current.Username() == username {
		current.WorkingList = listName
	}
	s.mu.Unlock()

	return list, nil
}

func (s *Service) register(username, password string) error {
	exists, err := s.provider.Exists(username)
	if err != nil {
		return fmt.Errorf("check username: %w", err)
	}
	if exists {
		return credentials.ErrDuplicateUser
	}
	return s.provider.Register(username, password)
}

// beginAuth marks the session as authenticating and returns its prior state
// so a failed attempt can put it back.
func (s *Service) beginAuth(id string) (models.Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	session, ok := s.sessions[id]
	if !ok {
		return models.Session{}, ErrSessionNotFound
	}
	if session.State == models.SessionAuthenticating {
		return models.Session{}, ErrAuthInProgress
	}

	prev := snapshot(session)
	session.State = models.SessionAuthenticating
	session.Identity = nil
	session.WorkingList = ""
	session.AuthenticatedAt = time.Time{}
	return prev, nil
}

// failAuth restores the state captured by beginAuth. A user who was logged in
// stays logged in after a rejected signup or login.
func (s *Service) failAuth(id string, prev models.Session) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if session, ok := s.sessions[id]; ok {
		session.State = prev.State
		session.Identity = prev.Identity
		session.WorkingList = prev.WorkingList
		session.AuthenticatedAt = prev.AuthenticatedAt
	}
}

func (s *Service) completeAuth(id, username string) (models.Session, error) {
	// The working list is named after the user. If someone else already owns
	// that name the user has to pick another list before appending.
	working := username
	if list, ok := s.lists.Get(username); ok {
		if list.Owner == username {
			log.Printf("[sessions] restored working list %q for %s", list.Name, username)
		} else {
			working = ""
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	session, ok := s.sessions[id]
	if !ok {
		return models.Session{}, ErrSessionNotFound
	}

	session.State = models.SessionAuthenticated
	session.Identity = &models.UserIdentity{Username: username}
	session.WorkingList = working
	session.AuthenticatedAt = s.now()

	log.Printf("[sessions] %s authenticated", username)
	return snapshot(session), nil
}

func (s *Service) authenticatedLocked(id string) (*models.Session, error) {
	session, ok := s.sessions[id]
	if !ok {
		return nil, ErrSessionNotFound
	}
	if !session.IsAuthenticated() {
		return nil, ErrNotAuthenticated
	}
	return session, nil
}

func snapshot(session *models.Session) models.Session {
	out := *session
	if session.Identity != nil {
		identity := *session.Identity
		out.Identity = &identity
	}
	return out
}
