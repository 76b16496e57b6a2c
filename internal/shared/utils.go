// Package shared provides utility helpers for generating random strings.
package shared

import (
	"crypto/rand"
	"math/big"
)

// tokenAlphabet is the set of symbols session tokens are drawn from.
const tokenAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789"

// MakeRandString generates a random alphanumeric string of the given
// length using crypto/rand. Each position is sampled uniformly from a
// 62-symbol alphabet, so a 32-character string carries roughly 190 bits
// of entropy.
//
// It returns an error if the random number generator fails.
func MakeRandString(length int) (string, error) {
	max := big.NewInt(int64(len(tokenAlphabet)))

	b := make([]byte, length)
	for i := range b {
		n, err := rand.Int(rand.Reader, max)
		if err != nil {
			return "", err
		}
		b[i] = tokenAlphabet[n.Int64()]
	}

	return string(b), nil
}
