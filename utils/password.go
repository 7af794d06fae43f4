package utils

import (
	"errors"
	"strings"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

const saltLength = 10

// MaxPasswordLength is the longest password, in bytes, that still fits in
// bcrypt's 72 byte input once the salt is prepended.
const MaxPasswordLength = 72 - saltLength

// NewSalt returns a short random salt. bcrypt only reads 72 bytes, so the
// salt is kept short to leave room for the password itself.
func NewSalt() string {
	return strings.ReplaceAll(uuid.NewString(), "-", "")[:saltLength]
}

// NewToken returns a random single-use token for email and reset links.
func NewToken() string {
	return strings.ReplaceAll(uuid.NewString(), "-", "")
}

// PasswordTooLong reports whether password cannot be hashed with a salt.
func PasswordTooLong(password string) bool {
	return len(password) > MaxPasswordLength
}

func HashPassword(salt, password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(salt+password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

// VerifyPassword reports whether salt+password matches the stored hash. A
// mismatch or an input too long to have been hashed is reported as false;
// any other bcrypt failure is returned.
func VerifyPassword(hashedPassword, salt, password string) (bool, error) {
	err := bcrypt.CompareHashAndPassword([]byte(hashedPassword), []byte(salt+password))
	if err == nil {
		return true, nil
	}
	if errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) || errors.Is(err, bcrypt.ErrPasswordTooLong) {
		return false, nil
	}
	return false, err
}
