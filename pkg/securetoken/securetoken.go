package securetoken

import (
	"crypto/rand"
	"crypto/subtle"
	"encoding/hex"
	"fmt"
)

// MinBytes is the smallest amount of entropy a caller may request.
// Verification, reset and CSRF tokens all use the same generator, so the
// floor applies uniformly.
const MinBytes = 32

// Generate returns a hex-encoded token backed by n bytes from the
// cryptographically secure random source. n below MinBytes is rejected.
func Generate(n int) (string, error) {
	if n < MinBytes {
		return "", fmt.Errorf("token length %d below minimum of %d bytes", n, MinBytes)
	}

	b := make([]byte, n)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("failed to read random bytes: %w", err)
	}
	return hex.EncodeToString(b), nil
}

// MustGenerate is like Generate but panics on failure. Use only during
// initialization where a dead random source should be fatal.
func MustGenerate(n int) string {
	token, err := Generate(n)
	if err != nil {
		panic(err)
	}
	return token
}

// Equal compares two tokens in constant time. Length is leaked by
// ConstantTimeCompare, which is acceptable: all tokens of a given kind
// share one length.
func Equal(a, b string) bool {
	if len(a) == 0 || len(b) == 0 {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(a), []byte(b)) == 1
}
