package credentials

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/spf13/afero"
	"golang.org/x/crypto/bcrypt"

	"cinelist/models"
)

var ErrStorageDirRequired = errors.New("storage directory not provided")

// dummyHash is compared against when the username is unknown so lookups of
// missing and present users take similar time.
var dummyHash = []byte("$2a$10$7EqJtq98hPqEX7fNZaFWoOhi5BWX4Z7YMrZW4Yqs3HjWJKaH6vC2S")

// HashedProvider stores bcrypt password hashes in credentials.json.
type HashedProvider struct {
	mu    sync.RWMutex
	fs    afero.Fs
	path  string
	cost  int
	creds map[string]models.CredentialStorage
}

// NewHashedProvider creates a provider storing data inside storageDir on fs.
func NewHashedProvider(fs afero.Fs, storageDir string) (*HashedProvider, error) {
	if strings.TrimSpace(storageDir) == "" {
		return nil, ErrStorageDirRequired
	}
	if fs == nil {
		fs = afero.NewOsFs()
	}

	if err := fs.MkdirAll(storageDir, 0o755); err != nil {
		return nil, fmt.Errorf("create credentials dir: %w", err)
	}

	p := &HashedProvider{
		fs:    fs,
		path:  filepath.Join(storageDir, "credentials.json"),
		cost:  bcrypt.DefaultCost,
		creds: make(map[string]models.CredentialStorage),
	}

	if err := p.load(); err != nil {
		return nil, err
	}
	return p, nil
}

func (p *HashedProvider) Register(username, password string) error {
	if err := validate(username, password); err != nil {
		return err
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	if _, ok := p.creds[username]; ok {
		return ErrDuplicateUser
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), p.cost)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}

	p.creds[username] = models.CredentialStorage{
		Username:     username,
		PasswordHash: string(hash),
		CreatedAt:    time.Now().UTC(),
	}

	if err := p.saveLocked(); err != nil {
		delete(p.creds, username)
		return err
	}
	return nil
}

func (p *HashedProvider) Verify(username, password string) (bool, error) {
	p.mu.RLock()
	stored, ok := p.creds[username]
	p.mu.RUnlock()

	if !ok {
		_ = bcrypt.CompareHashAndPassword(dummyHash, []byte(password))
		return false, ErrUnknownUser
	}

	return checkHash(stored.PasswordHash, password)
}

func (p *HashedProvider) Exists(username string) (bool, error) {
	p.mu.RLock()
	defer p.mu.RUnlock()

	_, ok := p.creds[username]
	return ok, nil
}

func checkHash(hash, password string) (bool, error) {
	err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password))
	switch {
	case err == nil:
		return true, nil
	case errors.Is(err, bcrypt.ErrMismatchedHashAndPassword):
		return false, nil
	default:
		return false, fmt.Errorf("compare password: %w", err)
	}
}

func (p *HashedProvider) load() error {
	file, err := p.fs.Open(p.path)
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("open credentials file: %w", err)
	}
	defer file.Close()

	var stored []models.CredentialStorage
	if err := json.NewDecoder(file).Decode(&stored); err != nil {
		return fmt.Errorf("decode credentials: %w", err)
	}

	for _, c := range stored {
		if c.Username == "" || c.PasswordHash == "" {
			continue
		}
		p.creds[c.Username] = c
	}
	return nil
}

func (p *HashedProvider) saveLocked() error {
	stored := make([]models.CredentialStorage, 0, len(p.creds))
	for _, c := range p.creds {
		stored = append(stored, c)
	}
	sort.Slice(stored, func(i, j int) bool {
		return stored[i].CreatedAt.Before(stored[j].CreatedAt)
	})

	tmp := p.path + ".tmp"
	file, err := p.fs.OpenFile(tmp, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, 0o600)
	if err != nil {
		return fmt.Errorf("create credentials temp file: %w", err)
	}

	enc := json.NewEncoder(file)
	enc.SetIndent("", "  ")
	if err := enc.Encode(stored); err != nil {
		file.Close()
		_ = p.fs.Remove(tmp)
		return fmt.Errorf("encode credentials: %w", err)
	}

	if err := file.Sync(); err != nil {
		file.Close()
		_ = p.fs.Remove(tmp)
		return fmt.Errorf("sync credentials: %w", err)
	}

	if err := file.Close(); err != nil {
		_ = p.fs.Remove(tmp)
		return fmt.Errorf("close credentials temp file: %w", err)
	}

	if err := p.fs.Rename(tmp, p.path); err != nil {
		return fmt.Errorf("replace credentials file: %w", err)
	}
	return nil
}
