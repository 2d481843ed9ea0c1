package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/netip"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"time"
)

var ErrInvalidSettings = errors.New("invalid settings")

// Environment overrides applied on top of the settings file.
const (
	EnvPort               = "CINELIST_PORT"
	EnvOMDbAPIKey         = "CINELIST_OMDB_API_KEY"
	EnvOMDbBaseURL        = "CINELIST_OMDB_BASE_URL"
	EnvDataDir            = "CINELIST_DATA_DIR"
	EnvCredentialsBackend = "CINELIST_CREDENTIALS_BACKEND"
	EnvLogFile            = "CINELIST_LOG_FILE"
)

type ServerSettings struct {
	Host string `json:"host"`
	Port int    `json:"port"`
}

type OMDbSettings struct {
	APIKey         string `json:"apiKey"`
	BaseURL        string `json:"baseUrl"`
	TimeoutSeconds int    `json:"timeoutSeconds"`
}

// Timeout returns the lookup timeout as a duration.
func (o OMDbSettings) Timeout() time.Duration {
	return time.Duration(o.TimeoutSeconds) * time.Second
}

type StorageSettings struct {
	DataDir            string `json:"dataDir"`
	CredentialsBackend string `json:"credentialsBackend"` // file, hashed or sqlite
	PersistLists       bool   `json:"persistLists"`
}

type SearchSettings struct {
	RequestsPerMinute int `json:"requestsPerMinute"`
	Burst             int `json:"burst"`
	// TrustedProxies lists IPs or CIDRs whose forwarding headers identify
	// the client for rate limiting.
	TrustedProxies []string `json:"trustedProxies,omitempty"`
}

// TrustedProxyPrefixes parses TrustedProxies. Bare addresses become
// single-host prefixes.
func (s SearchSettings) TrustedProxyPrefixes() ([]netip.Prefix, error) {
	prefixes := make([]netip.Prefix, 0, len(s.TrustedProxies))
	for _, entry := range s.TrustedProxies {
		entry = strings.TrimSpace(entry)
		if strings.Contains(entry, "/") {
			prefix, err := netip.ParsePrefix(entry)
			if err != nil {
				return nil, fmt.Errorf("%w: trusted proxy %q", ErrInvalidSettings, entry)
			}
			prefixes = append(prefixes, prefix.Masked())
			continue
		}
		addr, err := netip.ParseAddr(entry)
		if err != nil {
			return nil, fmt.Errorf("%w: trusted proxy %q", ErrInvalidSettings, entry)
		}
		addr = addr.Unmap()
		prefixes = append(prefixes, netip.PrefixFrom(addr, addr.BitLen()))
	}
	return prefixes, nil
}

type LogSettings struct {
	File       string `json:"file"`
	MaxSizeMB  int    `json:"maxSizeMb"`
	MaxBackups int    `json:"maxBackups"`
	MaxAgeDays int    `json:"maxAgeDays"`
	Compress   bool   `json:"compress"`
}

// Settings is the full server configuration.
type Settings struct {
	Server  ServerSettings  `json:"server"`
	OMDb    OMDbSettings    `json:"omdb"`
	Storage StorageSettings `json:"storage"`
	Search  SearchSettings  `json:"search"`
	Log     LogSettings     `json:"log"`
}

// DefaultSettings returns the settings used when no file exists.
func DefaultSettings() Settings {
	return Settings{
		Server: ServerSettings{Host: "0.0.0.0", Port: 7777},
		OMDb: OMDbSettings{
			BaseURL:        "http://www.omdbapi.com/",
			TimeoutSeconds: 10,
		},
		Storage: StorageSettings{
			DataDir:            "data",
			CredentialsBackend: "hashed",
			PersistLists:       true,
		},
		Search: SearchSettings{RequestsPerMinute: 30, Burst: 10},
		Log: LogSettings{
			File:       filepath.Join("logs", "cinelist.log"),
			MaxSizeMB:  10,
			MaxBackups: 3,
			MaxAgeDays: 28,
			Compress:   true,
		},
	}
}

// Validate checks values main relies on.
func (s Settings) Validate() error {
	if s.Server.Port < 1 || s.Server.Port > 65535 {
		return fmt.Errorf("%w: port %d out of range", ErrInvalidSettings, s.Server.Port)
	}
	switch s.Storage.CredentialsBackend {
	case "file", "hashed", "sqlite":
	default:
		return fmt.Errorf("%w: unknown credentials backend %q", ErrInvalidSettings, s.Storage.CredentialsBackend)
	}
	if strings.TrimSpace(s.Storage.DataDir) == "" {
		return fmt.Errorf("%w: data directory is required", ErrInvalidSettings)
	}
	if s.OMDb.TimeoutSeconds <= 0 {
		return fmt.Errorf("%w: omdb timeout must be positive", ErrInvalidSettings)
	}
	if s.Search.RequestsPerMinute <= 0 || s.Search.Burst <= 0 {
		return fmt.Errorf("%w: search rate limit must be positive", ErrInvalidSettings)
	}
	if _, err := s.Search.TrustedProxyPrefixes(); err != nil {
		return err
	}
	return nil
}

// Manager loads and saves settings.json.
type Manager struct {
	mu     sync.RWMutex
	path   string
	lookup func(string) (string, bool)
}

func NewManager(path string) *Manager {
	return &Manager{path: path, lookup: os.LookupEnv}
}

// Path returns the settings file location.
func (m *Manager) Path() string {
	return m.path
}

// Load reads the settings file over the defaults and applies environment
// overrides. A missing file yields the defaults.
func (m *Manager) Load() (Settings, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	settings := DefaultSettings()

	data, err := os.ReadFile(m.path)
	switch {
	case errors.Is(err, os.ErrNotExist):
	case err != nil:
		return Settings{}, fmt.Errorf("read settings: %w", err)
	default:
		if err := json.Unmarshal(data, &settings); err != nil {
			return Settings{}, fmt.Errorf("decode settings: %w", err)
		}
	}

	if err := m.applyEnv(&settings); err != nil {
		return Settings{}, err
	}
	return settings, nil
}

// Save writes s to the settings file.
func (m *Manager) Save(s Settings) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if dir := filepath.Dir(m.path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create settings dir: %w", err)
		}
	}

	data, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return fmt.Errorf("encode settings: %w", err)
	}

	tmp := m.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o600); err != nil {
		return fmt.Errorf("write settings: %w", err)
	}
	if err := os.Rename(tmp, m.path); err != nil {
		return fmt.Errorf("replace settings: %w", err)
	}
	return nil
}

func (m *Manager) applyEnv(s *Settings) error {
	if v, ok := m.env(EnvPort); ok {
		port, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("%w: %s=%q", ErrInvalidSettings, EnvPort, v)
		}
		s.Server.Port = port
	}
	if v, ok := m.env(EnvOMDbAPIKey); ok {
		s.OMDb.APIKey = v
	}
	if v, ok := m.env(EnvOMDbBaseURL); ok {
		s.OMDb.BaseURL = v
	}
	if v, ok := m.env(EnvDataDir); ok {
		s.Storage.DataDir = v
	}
	if v, ok := m.env(EnvCredentialsBackend); ok {
		s.Storage.CredentialsBackend = strings.ToLower(v)
	}
	if v, ok := m.env(EnvLogFile); ok {
		s.Log.File = v
	}
	return nil
}

func (m *Manager) env(key string) (string, bool) {
	v, ok := m.lookup(key)
	v = strings.TrimSpace(v)
	return v, ok && v != ""
}
