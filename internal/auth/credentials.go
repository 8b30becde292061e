package auth

import (
	"crypto/subtle"

	"github.com/juju/errors"
	"golang.org/x/crypto/bcrypt"
)

// Credentials is the single admin account, configured through the
// environment as a username and a bcrypt hash.
type Credentials struct {
	Username     string
	PasswordHash string
}

// HashPassword returns the bcrypt hash to put in ADMIN_PASSWORD_HASH.
func HashPassword(plaintext string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(plaintext), bcrypt.DefaultCost)
	if err != nil {
		return "", errors.Trace(err)
	}
	return string(hash), nil
}

// Matches reports whether username and password are the admin's.
func (c Credentials) Matches(username, password string) (bool, error) {
	if c.Username == "" || c.PasswordHash == "" {
		return false, nil
	}
	userOK := subtle.ConstantTimeCompare([]byte(username), []byte(c.Username)) == 1

	err := bcrypt.CompareHashAndPassword([]byte(c.PasswordHash), []byte(password))
	if err != nil {
		if errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
			return false, nil
		}
		return false, errors.Trace(err)
	}
	return userOK, nil
}
