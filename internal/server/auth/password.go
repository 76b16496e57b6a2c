// Package auth handles credential hashing. Passwords are stored as bcrypt
// digests, which embed a per-password salt and a configurable work factor.
package auth

import "golang.org/x/crypto/bcrypt"

// HashPassword returns a bcrypt digest of password. The cost is clamped by
// bcrypt itself; bcrypt.DefaultCost is a reasonable choice.
func HashPassword(password string, cost int) (string, error) {
	digest, err := bcrypt.GenerateFromPassword([]byte(password), cost)
	if err != nil {
		return "", err
	}
	return string(digest), nil
}

// VerifyPassword reports whether password matches the stored bcrypt digest.
func VerifyPassword(digest string, password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(digest), []byte(password)) == nil
}
