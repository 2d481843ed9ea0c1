package credentials

import (
	"errors"
	"fmt"
	"log"

	"golang.org/x/crypto/bcrypt"

	"cinelist/internal/database"
)

// DatabaseProvider stores bcrypt password hashes in the credentials table.
type DatabaseProvider struct {
	repo *database.CredentialRepository
	cost int
}

func NewDatabaseProvider(db *database.DB) *DatabaseProvider {
	return &DatabaseProvider{
		repo: database.NewCredentialRepository(db.Connection()),
		cost: bcrypt.DefaultCost,
	}
}

func (p *DatabaseProvider) Register(username, password string) error {
	if err := validate(username, password); err != nil {
		return err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), p.cost)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}

	err = p.repo.Create(&database.Credential{Username: username, PasswordHash: string(hash)})
	if errors.Is(err, database.ErrCredentialExists) {
		return ErrDuplicateUser
	}
	return err
}

func (p *DatabaseProvider) Verify(username, password string) (bool, error) {
	cred, err := p.repo.GetByUsername(username)
	if err != nil {
		return false, err
	}
	if cred == nil {
		_ = bcrypt.CompareHashAndPassword(dummyHash, []byte(password))
		return false, ErrUnknownUser
	}

	ok, err := checkHash(cred.PasswordHash, password)
	if err != nil || !ok {
		return ok, err
	}

	if err := p.repo.UpdateLastLogin(username); err != nil {
		log.Printf("[credentials] failed to record login for %s: %v", username, err)
	}
	return true, nil
}

func (p *DatabaseProvider) Exists(username string) (bool, error) {
	cred, err := p.repo.GetByUsername(username)
	if err != nil {
		return false, err
	}
	return cred != nil, nil
}
