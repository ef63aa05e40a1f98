package service

import (
	"context"
	"crypto/subtle"
	"fmt"

	"golang.org/x/crypto/bcrypt"
)

// CredentialVerifier checks admin credentials.
type CredentialVerifier interface {
	Verify(ctx context.Context, username, password string) error
}

type bcryptVerifier struct {
	username string
	hash     []byte
}

// NewBcryptVerifier accepts a single admin account whose password is stored
// as a bcrypt hash.
func NewBcryptVerifier(username, hash string) (CredentialVerifier, error) {
	if username == "" {
		return nil, fmt.Errorf("admin username is empty")
	}
	if _, err := bcrypt.Cost([]byte(hash)); err != nil {
		return nil, fmt.Errorf("admin password hash: %w", err)
	}
	return &bcryptVerifier{username: username, hash: []byte(hash)}, nil
}

func (v *bcryptVerifier) Verify(ctx context.Context, username, password string) error {
	userOK := subtle.ConstantTimeCompare([]byte(username), []byte(v.username)) == 1
	// Compare the password even for a wrong username so both paths cost the same.
	passErr := bcrypt.CompareHashAndPassword(v.hash, []byte(password))
	if !userOK || passErr != nil {
		return ErrInvalidCredentials
	}
	return nil
}

type denyAll struct{}

// DenyAll rejects every login. It stands in when no admin hash is configured.
func DenyAll() CredentialVerifier {
	return denyAll{}
}

func (denyAll) Verify(context.Context, string, string) error {
	return ErrInvalidCredentials
}
