// Package credentials creates and checks the temporary passwords handed to
// invited candidates.
package credentials

import (
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"

	"golang.org/x/crypto/bcrypt"

	dErrors "estudios/pkg/domain-errors"
)

// TempPasswordBytes is the entropy behind a generated temporary password.
const TempPasswordBytes = 9

// GenerateTempPassword returns a random URL-safe password of 12 characters.
func GenerateTempPassword() (string, error) {
	buf := make([]byte, TempPasswordBytes)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("could not generate password: %w", err)
	}
	return base64.RawURLEncoding.EncodeToString(buf), nil
}

// Hash creates a bcrypt hash of the password.
func Hash(password string) ([]byte, error) {
	if password == "" {
		return nil, dErrors.New(dErrors.CodeInvalidInput, "password cannot be empty")
	}
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		if errors.Is(err, bcrypt.ErrPasswordTooLong) {
			return nil, dErrors.New(dErrors.CodeInvalidInput, "password is too long")
		}
		return nil, fmt.Errorf("could not hash password: %w", err)
	}
	return hashed, nil
}

// Verify checks a plaintext password against a bcrypt hash.
func Verify(password string, hash []byte) error {
	if err := bcrypt.CompareHashAndPassword(hash, []byte(password)); err != nil {
		if errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
			return dErrors.New(dErrors.CodeInvalidInput, "invalid password")
		}
		return fmt.Errorf("could not verify password: %w", err)
	}
	return nil
}
