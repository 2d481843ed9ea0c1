package credentials

import (
	"bufio"
	"errors"
	"fmt"
	"log"
	"os"
	"strings"
	"sync"

	"github.com/spf13/afero"
)

// DefaultCredentialsFile is the file name used by FileProvider.
const DefaultCredentialsFile = "user_credentials.txt"

// FileProvider keeps plaintext username:password lines. The file is read
// once at open and appended to on every registration.
type FileProvider struct {
	mu    sync.RWMutex
	fs    afero.Fs
	path  string
	users map[string]string
}

// NewFileProvider loads path from fs. A missing file is treated as empty.
func NewFileProvider(fs afero.Fs, path string) (*FileProvider, error) {
	if fs == nil {
		fs = afero.NewOsFs()
	}
	if strings.TrimSpace(path) == "" {
		path = DefaultCredentialsFile
	}

	p := &FileProvider{
		fs:    fs,
		path:  path,
		users: make(map[string]string),
	}
	if err := p.load(); err != nil {
		return nil, err
	}
	return p, nil
}

func (p *FileProvider) load() error {
	file, err := p.fs.Open(p.path)
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("open credentials file: %w", err)
	}
	defer file.Close()

	scanner := bufio.NewScanner(file)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		username, password, ok := strings.Cut(line, ":")
		if !ok || username == "" {
			log.Printf("[credentials] skipping malformed line %d in %s", lineNo, p.path)
			continue
		}
		p.users[username] = password
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("read credentials file: %w", err)
	}
	return nil
}

func (p *FileProvider) Register(username, password string) error {
	if err := validate(username, password); err != nil {
		return err
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	if _, ok := p.users[username]; ok {
		return ErrDuplicateUser
	}

	file, err := p.fs.OpenFile(p.path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o600)
	if err != nil {
		return fmt.Errorf("open credentials file: %w", err)
	}
	if _, err := fmt.Fprintf(file, "%s:%s\n", username, password); err != nil {
		file.Close()
		return fmt.Errorf("append credential: %w", err)
	}
	if err := file.Close(); err != nil {
		return fmt.Errorf("close credentials file: %w", err)
	}

	p.users[username] = password
	return nil
}

func (p *FileProvider) Verify(username, password string) (bool, error) {
	p.mu.RLock()
	defer p.mu.RUnlock()

	stored, ok := p.users[username]
	if !ok {
		return false, ErrUnknownUser
	}
	return stored == password, nil
}

func (p *FileProvider) Exists(username string) (bool, error) {
	p.mu.RLock()
	defer p.mu.RUnlock()

	_, ok := p.users[username]
	return ok, nil
}
