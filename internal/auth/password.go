package auth

import (
	"errors"

	"golang.org/x/crypto/bcrypt"
)

// ErrBadPassword is returned by CheckPassword on a mismatch.
var ErrBadPassword = errors.New("invalid email or password")

// HashPassword returns the bcrypt hash of password.
func HashPassword(password string) (string, error) {
	b, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// CheckPassword compares password against a stored bcrypt hash. Accounts
// without a password (single sign-on only) never match.
func CheckPassword(hash, password string) error {
	if hash == "" {
		return ErrBadPassword
	}
	if err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)); err != nil {
		return ErrBadPassword
	}
	return nil
}
