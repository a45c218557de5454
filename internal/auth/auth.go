// Package auth replaces the back office's placeholder login with a
// pluggable credential check against stored bcrypt hashes.
package auth

import (
	"context"
	"errors"
	"fmt"

	"github.com/gofrs/uuid"
	"golang.org/x/crypto/bcrypt"
)

var ErrInvalidCredentials = errors.New("invalid username or password")

// Verifier checks a username/password pair. Implementations must not
// reveal whether the username or the password was wrong.
type Verifier interface {
	Verify(ctx context.Context, username, password string) error
}

// StaticVerifier holds bcrypt hashes keyed by username, seeded from
// configuration at startup.
type StaticVerifier struct {
	hashes map[string]string
}

func NewStaticVerifier(credentials map[string]string) *StaticVerifier {
	hashes := make(map[string]string, len(credentials))
	for username, hash := range credentials {
		hashes[username] = hash
	}
	return &StaticVerifier{hashes: hashes}
}

func (v *StaticVerifier) Verify(_ context.Context, username, password string) error {
	hash, ok := v.hashes[username]
	if !ok {
		// Burn a comparison anyway so unknown usernames cost the same.
		_ = bcrypt.CompareHashAndPassword([]byte("$2a$10$7EqJtq98hPqEX7fNZaFWoOhi5B0u5z1y5mFqv0mKq9yq0n0m0n0mW"), []byte(password))
		return ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)); err != nil {
		return ErrInvalidCredentials
	}
	return nil
}

// HashPassword produces a bcrypt hash suitable for StaticVerifier seeding.
func HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("auth: failed to hash password: %w", err)
	}
	return string(hash), nil
}

// NewSessionToken returns an opaque token for a successful login. Sessions
// are not persisted; the token is only a correlation handle for the UI.
func NewSessionToken() (string, error) {
	token, err := uuid.NewV4()
	if err != nil {
		return "", fmt.Errorf("auth: failed to generate session token: %w", err)
	}
	return token.String(), nil
}
