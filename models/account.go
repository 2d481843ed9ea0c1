package models

import "time"

// UserIdentity identifies an authenticated user.
type UserIdentity struct {
	Username string `json:"username"`
}

// CredentialStorage is the on-disk record of a hashed credential.
type CredentialStorage struct {
	Username     string    `json:"username"`
	PasswordHash string    `json:"passwordHash"`
	CreatedAt    time.Time `json:"createdAt"`
}
