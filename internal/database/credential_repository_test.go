package database

import (
	"errors"
	"path/filepath"
	"testing"
)

// setupTestCredentialRepo creates a test database and credential repository.
func setupTestCredentialRepo(t *testing.T) (*DB, *CredentialRepository) {
	t.Helper()
	tmpDir := t.TempDir()
	dbPath := filepath.Join(tmpDir, "test.db")
	db, err := NewDB(Config{DatabasePath: dbPath})
	if err != nil {
		t.Fatalf("failed to create test database: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	repo := NewCredentialRepository(db.Connection())
	return db, repo
}

func TestNewDB_EmptyPath(t *testing.T) {
	_, err := NewDB(Config{})
	if !errors.Is(err, ErrDatabasePathRequired) {
		t.Errorf("expected ErrDatabasePathRequired, got %v", err)
	}
}

func TestNewDB_ReopenKeepsData(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "nested", "cinelist.db")

	db1, err := NewDB(Config{DatabasePath: dbPath})
	if err != nil {
		t.Fatalf("NewDB failed: %v", err)
	}
	if err := NewCredentialRepository(db1.Connection()).Create(&Credential{Username: "alice", PasswordHash: "h"}); err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	db1.Close()

	db2, err := NewDB(Config{DatabasePath: dbPath})
	if err != nil {
		t.Fatalf("reopen failed: %v", err)
	}
	defer db2.Close()

	n, err := NewCredentialRepository(db2.Connection()).Count()
	if err != nil {
		t.Fatalf("Count failed: %v", err)
	}
	if n != 1 {
		t.Errorf("expected 1 credential after reopen, got %d", n)
	}
}

func TestCreateCredential_Success(t *testing.T) {
	_, repo := setupTestCredentialRepo(t)

	c := &Credential{Username: "alice", PasswordHash: "$2a$10$hashedpassword"}
	if err := repo.Create(c); err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	if c.ID == 0 {
		t.Error("expected non-zero ID after insert")
	}
	if c.CreatedAt.IsZero() {
		t.Error("expected non-zero CreatedAt")
	}
}

func TestCreateCredential_Duplicate(t *testing.T) {
	_, repo := setupTestCredentialRepo(t)

	if err := repo.Create(&Credential{Username: "alice", PasswordHash: "a"}); err != nil {
		t.Fatalf("first Create failed: %v", err)
	}

	err := repo.Create(&Credential{Username: "alice", PasswordHash: "b"})
	if !errors.Is(err, ErrCredentialExists) {
		t.Errorf("expected ErrCredentialExists, got %v", err)
	}
}

func TestGetByUsername_Found(t *testing.T) {
	_, repo := setupTestCredentialRepo(t)

	if err := repo.Create(&Credential{Username: "alice", PasswordHash: "secret-hash"}); err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	retrieved, err := repo.GetByUsername("alice")
	if err != nil {
		t.Fatalf("GetByUsername failed: %v", err)
	}
	if retrieved == nil {
		t.Fatal("expected credential to exist")
	}
	if retrieved.PasswordHash != "secret-hash" {
		t.Errorf("expected hash 'secret-hash', got %q", retrieved.PasswordHash)
	}
	if retrieved.LastLogin != nil {
		t.Error("expected nil LastLogin before any login")
	}
}

func TestGetByUsername_NotFound(t *testing.T) {
	_, repo := setupTestCredentialRepo(t)

	retrieved, err := repo.GetByUsername("nonexistent")
	if err != nil {
		t.Fatalf("GetByUsername failed: %v", err)
	}
	if retrieved != nil {
		t.Error("expected nil for non-existent credential")
	}
}

func TestUpdateLastLogin(t *testing.T) {
	_, repo := setupTestCredentialRepo(t)

	if err := repo.Create(&Credential{Username: "alice", PasswordHash: "h"}); err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	if err := repo.UpdateLastLogin("alice"); err != nil {
		t.Fatalf("UpdateLastLogin failed: %v", err)
	}

	retrieved, _ := repo.GetByUsername("alice")
	if retrieved.LastLogin == nil {
		t.Error("expected LastLogin to be set")
	}
}

func TestUpdateLastLogin_NotFound(t *testing.T) {
	_, repo := setupTestCredentialRepo(t)

	err := repo.UpdateLastLogin("nobody")
	if !errors.Is(err, ErrCredentialNotFound) {
		t.Errorf("expected ErrCredentialNotFound, got %v", err)
	}
}

func TestUsernamesMatchExactly(t *testing.T) {
	_, repo := setupTestCredentialRepo(t)

	if err := repo.Create(&Credential{Username: "alice", PasswordHash: "h"}); err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	retrieved, err := repo.GetByUsername(" alice ")
	if err != nil {
		t.Fatalf("GetByUsername failed: %v", err)
	}
	if retrieved != nil {
		t.Error("expected padded username not to match")
	}
	if err := repo.UpdateLastLogin(" alice "); !errors.Is(err, ErrCredentialNotFound) {
		t.Errorf("expected ErrCredentialNotFound for padded username, got %v", err)
	}

	if err := repo.Create(&Credential{Username: " alice ", PasswordHash: "h2"}); err != nil {
		t.Fatalf("Create padded username failed: %v", err)
	}
	retrieved, err = repo.GetByUsername(" alice ")
	if err != nil || retrieved == nil || retrieved.PasswordHash != "h2" {
		t.Errorf("expected padded username to round-trip, got %+v, %v", retrieved, err)
	}
}
