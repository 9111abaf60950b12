package utils

import (
	"crypto/rand"
	"math/big"
	"regexp"
	"strings"
)

// TokenLength is the size of a team join token.
const TokenLength = 8

// tokenAlphabet omits I, 1, 0 and O so tokens survive being read aloud or
// retyped by hand.
const tokenAlphabet = "ABCDEFGHJKLMNPQRSTUVWXYZabcdefghijkmnopqrstuvwxyz23456789"

var nonAlphanumeric = regexp.MustCompile(`[^A-Za-z0-9]+`)

// GenerateToken returns a random join token. Uniqueness against existing
// teams is the caller's job; the alphabet only makes collisions unlikely.
func GenerateToken() (string, error) {
	var b strings.Builder
	max := big.NewInt(int64(len(tokenAlphabet)))
	for i := 0; i < TokenLength; i++ {
		n, err := rand.Int(rand.Reader, max)
		if err != nil {
			return "", err
		}
		b.WriteByte(tokenAlphabet[n.Int64()])
	}
	return b.String(), nil
}

// NormalizeGuess reduces a raw guess to its canonical form: every character
// outside [A-Za-z0-9] is stripped and the remainder lowercased. This is the
// only transform applied to guesses; the response rule table stores guesses
// in the same form.
func NormalizeGuess(raw string) string {
	return strings.ToLower(nonAlphanumeric.ReplaceAllString(raw, ""))
}
