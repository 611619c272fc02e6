// Package passpkg hashes and checks secrets with bcrypt.
package passpkg

import "golang.org/x/crypto/bcrypt"

// Hash returns the salted bcrypt hash of the given secret.
func Hash(secret string) ([]byte, error) {
	return bcrypt.GenerateFromPassword([]byte(secret), bcrypt.DefaultCost)
}

// Check compares the secret with its hash.
// It returns bcrypt.ErrMismatchedHashAndPassword on mismatch.
func Check(secret string, hashed []byte) error {
	return bcrypt.CompareHashAndPassword(hashed, []byte(secret))
}
