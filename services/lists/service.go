package lists

import (
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/afero"

	"cinelist/models"
)

var (
	ErrValidation    = errors.New("list name cannot be empty")
	ErrOwnerRequired = errors.New("list owner is required")
	ErrNotOwner      = errors.New("list belongs to another user")
	ErrListNotFound  = errors.New("list not found")
)

// Service owns every movie list, keyed by list name. Names are global: the
// first user to reference a name owns that list.
type Service struct {
	mu    sync.RWMutex
	fs    afero.Fs
	path  string
	lists map[string]*models.MovieList
	order []string
	now   func() time.Time
}

// NewService creates a list store. When storageDir is empty the store lives in
// memory only; otherwise a lists.json snapshot is loaded from and written to
// that directory on fs.
func NewService(fs afero.Fs, storageDir string) (*Service, error) {
	if fs == nil {
		fs = afero.NewOsFs()
	}

	svc := &Service{
		fs:    fs,
		lists: make(map[string]*models.MovieList),
		now:   func() time.Time { return time.Now().UTC() },
	}

	if strings.TrimSpace(storageDir) != "" {
		if err := fs.MkdirAll(storageDir, 0o755); err != nil {
			return nil, fmt.Errorf("create lists dir: %w", err)
		}
		svc.path = filepath.Join(storageDir, "lists.json")
		if err := svc.load(); err != nil {
			return nil, err
		}
	}

	return svc, nil
}

// EnsureList returns the list called name, creating it with the given
// privacy and owner if it does not exist yet. An existing list is returned
// unchanged even if privacy or owner differ.
func (s *Service) EnsureList(name string, privacy models.Privacy, owner string) (models.MovieList, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return models.MovieList{}, ErrValidation
	}
	owner = strings.TrimSpace(owner)
	if owner == "" {
		return models.MovieList{}, ErrOwnerRequired
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	list, created := s.ensureLocked(name, privacy, owner)
	if created {
		if err := s.saveLocked(); err != nil {
			s.dropLocked(name)
			return models.MovieList{}, err
		}
		log.Printf("[lists] created %q owner=%s privacy=%s", name, owner, list.Privacy)
	}
	return list.Clone(), nil
}

// Append adds record to the end of the list called name. The list is created
// (Private, owned by requester) if it does not exist. Duplicates are kept.
func (s *Service) Append(name string, record models.MovieRecord, requester string) (models.MovieList, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return models.MovieList{}, ErrValidation
	}
	requester = strings.TrimSpace(requester)
	if requester == "" {
		return models.MovieList{}, ErrOwnerRequired
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if existing, ok := s.lists[name]; ok && existing.Owner != requester {
		return models.MovieList{}, fmt.Errorf("%w: %q", ErrNotOwner, name)
	}

	list, created := s.ensureLocked(name, models.PrivacyPrivate, requester)
	prevMovies := list.Movies
	prevUpdated := list.UpdatedAt

	list.Movies = append(list.Movies, record.Clone())
	list.UpdatedAt = s.now()

	if err := s.saveLocked(); err != nil {
		if created {
			s.dropLocked(name)
		} else {
			list.Movies = prevMovies
			list.UpdatedAt = prevUpdated
		}
		return models.MovieList{}, err
	}

	log.Printf("[lists] appended %q to %q (%d titles)", record.Title, name, len(list.Movies))
	return list.Clone(), nil
}

// Get returns a snapshot of the list called name.
func (s *Service) Get(name string) (models.MovieList, bool) {
	name = strings.TrimSpace(name)
	if name == "" {
		return models.MovieList{}, false
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	list, ok := s.lists[name]
	if !ok {
		return models.MovieList{}, false
	}
	return list.Clone(), true
}

// ListsForUser returns the lists owned by owner in creation order.
func (s *Service) ListsForUser(owner string) []models.MovieList {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]models.MovieList, 0)
	for _, name := range s.order {
		if list := s.lists[name]; list.Owner == owner {
			result = append(result, list.Clone())
		}
	}
	return result
}

// VisibleLists returns every list viewer may see, in creation order.
func (s *Service) VisibleLists(viewer string) []models.MovieList {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]models.MovieList, 0)
	for _, name := range s.order {
		if list := s.lists[name]; VisibleTo(*list, viewer) {
			result = append(result, list.Clone())
		}
	}
	return result
}

// Count returns the number of lists.
func (s *Service) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.lists)
}

// VisibleTo reports whether viewer may see list. Owners always see their
// lists; Public lists are visible to everyone.
func VisibleTo(list models.MovieList, viewer string) bool {
	if viewer != "" && list.Owner == viewer {
		return true
	}
	return list.Privacy == models.PrivacyPublic
}

func (s *Service) ensureLocked(name string, privacy models.Privacy, owner string) (*models.MovieList, bool) {
	if list, ok := s.lists[name]; ok {
		return list, false
	}

	if privacy != models.PrivacyPublic {
		privacy = models.PrivacyPrivate
	}

	now := s.now()
	list := &models.MovieList{
		ID:        uuid.NewString(),
		Name:      name,
		Owner:     owner,
		Privacy:   privacy,
		Movies:    []models.MovieRecord{},
		CreatedAt: now,
		UpdatedAt: now,
	}
	s.lists[name] = list
	s.order = append(s.order, name)
	return list, true
}

func (s *Service) dropLocked(name string) {
	delete(s.lists, name)
	for i, n := range s.order {
		if n == name {
			s.order = append(s.order[:i], s.order[i+1:]...)
			break
		}
	}
}

func (s *Service) load() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	file, err := s.fs.Open(s.path)
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("open lists file: %w", err)
	}
	defer file.Close()

	var stored []models.MovieList
	if err := json.NewDecoder(file).Decode(&stored); err != nil {
		return fmt.Errorf("decode lists: %w", err)
	}

	s.lists = make(map[string]*models.MovieList, len(stored))
	s.order = s.order[:0]
	for i := range stored {
		list := stored[i]
		if strings.TrimSpace(list.Name) == "" {
			continue
		}
		if _, dup := s.lists[list.Name]; dup {
			continue
		}
		if list.ID == "" {
			list.ID = uuid.NewString()
		}
		if list.Movies == nil {
			list.Movies = []models.MovieRecord{}
		}
		s.lists[list.Name] = &list
		s.order = append(s.order, list.Name)
	}

	return nil
}

func (s *Service) saveLocked() error {
	if s.path == "" {
		return nil
	}

	stored := make([]models.MovieList, 0, len(s.order))
	for _, name := range s.order {
		stored = append(stored, *s.lists[name])
	}

	tmp := s.path + ".tmp"
	file, err := s.fs.Create(tmp)
	if err != nil {
		return fmt.Errorf("create lists temp file: %w", err)
	}

	enc := json.NewEncoder(file)
	enc.SetIndent("", "  ")
	if err := enc.Encode(stored); err != nil {
		file.Close()
		_ = s.fs.Remove(tmp)
		return fmt.Errorf("encode lists: %w", err)
	}

	if err := file.Sync(); err != nil {
		file.Close()
		_ = s.fs.Remove(tmp)
		return fmt.Errorf("sync lists: %w", err)
	}

	if err := file.Close(); err != nil {
		_ = s.fs.Remove(tmp)
		return fmt.Errorf("close lists temp file: %w", err)
	}

	if err := s.fs.Rename(tmp, s.path); err != nil {
		return fmt.Errorf("replace lists file: %w", err)
	}

	return nil
}
