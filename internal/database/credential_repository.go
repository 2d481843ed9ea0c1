package database

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/mattn/go-sqlite3"
)

var (
	ErrCredentialExists   = errors.New("credential already exists")
	ErrCredentialNotFound = errors.New("credential not found")
)

// Credential is a row of the credentials table.
type Credential struct {
	ID           int64
	Username     string
	PasswordHash string
	CreatedAt    time.Time
	LastLogin    *time.Time
}

// CredentialRepository reads and writes credential rows.
type CredentialRepository struct {
	db *sql.DB
}

func NewCredentialRepository(db *sql.DB) *CredentialRepository {
	return &CredentialRepository{db: db}
}

// Create inserts c and fills in its ID and CreatedAt.
func (r *CredentialRepository) Create(c *Credential) error {
	now := time.Now().UTC()
	res, err := r.db.Exec(
		`INSERT INTO credentials (username, password_hash, created_at) VALUES (?, ?, ?)`,
		c.Username, c.PasswordHash, now,
	)
	if err != nil {
		var sqliteErr sqlite3.Error
		if errors.As(err, &sqliteErr) && sqliteErr.ExtendedCode == sqlite3.ErrConstraintUnique {
			return fmt.Errorf("%w: %s", ErrCredentialExists, c.Username)
		}
		return fmt.Errorf("insert credential: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("read credential id: %w", err)
	}
	c.ID = id
	c.CreatedAt = now
	return nil
}

// GetByUsername returns the credential for username, or nil if none exists.
func (r *CredentialRepository) GetByUsername(username string) (*Credential, error) {
	row := r.db.QueryRow(
		`SELECT id, username, password_hash, created_at, last_login FROM credentials WHERE username = ?`,
		username,
	)

	var (
		c         Credential
		lastLogin sql.NullTime
	)
	if err := row.Scan(&c.ID, &c.Username, &c.PasswordHash, &c.CreatedAt, &lastLogin); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("query credential: %w", err)
	}
	if lastLogin.Valid {
		t := lastLogin.Time
		c.LastLogin = &t
	}
	return &c, nil
}

// UpdateLastLogin stamps the credential's last successful login.
func (r *CredentialRepository) UpdateLastLogin(username string) error {
	res, err := r.db.Exec(
		`UPDATE credentials SET last_login = ? WHERE username = ?`,
		time.Now().UTC(), username,
	)
	if err != nil {
		return fmt.Errorf("update last login: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("update last login: %w", err)
	}
	if n == 0 {
		return ErrCredentialNotFound
	}
	return nil
}

// Count returns the number of stored credentials.
func (r *CredentialRepository) Count() (int, error) {
	var n int
	if err := r.db.QueryRow(`SELECT COUNT(*) FROM credentials`).Scan(&n); err != nil {
		return 0, fmt.Errorf("count credentials: %w", err)
	}
	return n, nil
}
