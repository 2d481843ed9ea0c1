// Package credentials stores usernames and passwords behind a pluggable
// Provider. Three backends are available: a plaintext line file, bcrypt
// hashes in a JSON file and bcrypt hashes in SQLite.
package credentials

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/afero"

	"cinelist/internal/database"
)

var (
	ErrDuplicateUser     = errors.New("username already exists")
	ErrUnknownUser       = errors.New("unknown username")
	ErrInvalidCredential = errors.New("incorrect password")
	ErrUsernameRequired  = errors.New("username is required")
	ErrPasswordRequired  = errors.New("password is required")
	ErrInvalidUsername   = errors.New("username contains a reserved character")
	ErrInvalidPassword   = errors.New("password contains a line break")
	ErrUnknownBackend    = errors.New("unknown credentials backend")
)

// Provider is the authentication backend contract.
//
// Verify returns ErrUnknownUser when the username is not registered and
// (false, nil) when the password does not match.
type Provider interface {
	Register(username, password string) error
	Verify(username, password string) (bool, error)
	Exists(username string) (bool, error)
}

// Backend names accepted by Open.
const (
	BackendFile   = "file"
	BackendHashed = "hashed"
	BackendSQLite = "sqlite"
)

func validate(username, password string) error {
	if username == "" {
		return ErrUsernameRequired
	}
	if password == "" {
		return ErrPasswordRequired
	}
	if strings.ContainsAny(username, ":\r\n") {
		return fmt.Errorf("%w: %q", ErrInvalidUsername, username)
	}
	if strings.ContainsAny(password, "\r\n") {
		return ErrInvalidPassword
	}
	return nil
}

// Open builds the provider named by backend rooted at dataDir. The returned
// close func releases any resources held by the backend.
func Open(backend, dataDir string, fs afero.Fs) (Provider, func() error, error) {
	noop := func() error { return nil }
	if fs == nil {
		fs = afero.NewOsFs()
	}

	switch strings.ToLower(strings.TrimSpace(backend)) {
	case BackendFile:
		if err := mkdir(fs, dataDir); err != nil {
			return nil, nil, err
		}
		p, err := NewFileProvider(fs, filepath.Join(dataDir, DefaultCredentialsFile))
		if err != nil {
			return nil, nil, err
		}
		return p, noop, nil
	case BackendHashed, "":
		p, err := NewHashedProvider(fs, dataDir)
		if err != nil {
			return nil, nil, err
		}
		return p, noop, nil
	case BackendSQLite:
		db, err := database.NewDB(database.Config{DatabasePath: filepath.Join(dataDir, "cinelist.db")})
		if err != nil {
			return nil, nil, err
		}
		return NewDatabaseProvider(db), db.Close, nil
	default:
		return nil, nil, fmt.Errorf("%w: %q", ErrUnknownBackend, backend)
	}
}

func mkdir(fs afero.Fs, dir string) error {
	if strings.TrimSpace(dir) == "" {
		return nil
	}
	if err := fs.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create credentials dir: %w", err)
	}
	return nil
}
