package auth

import (
	"errors"
	"fmt"

	"golang.org/x/crypto/bcrypt"
)

// bcryptCost matches the cost existing password hashes were created with.
const bcryptCost = 10

// maxPasswordBytes is the bcrypt input limit. Longer passwords are cut to it,
// the same way existing hashes in the users table were produced.
const maxPasswordBytes = 72

var ErrHashFailed = errors.New("failed to hash password")

// HashPassword returns a salted bcrypt hash of plain. Only the first 72 bytes
// take part in the hash.
func HashPassword(plain string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword(passwordBytes(plain), bcryptCost)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrHashFailed, err)
	}
	return string(hash), nil
}

// VerifyPassword reports whether plain matches hash. A malformed hash is a
// mismatch.
func VerifyPassword(plain, hash string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), passwordBytes(plain)) == nil
}

func passwordBytes(plain string) []byte {
	b := []byte(plain)
	if len(b) > maxPasswordBytes {
		b = b[:maxPasswordBytes]
	}
	return b
}
