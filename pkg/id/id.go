package id

import (
	"crypto/rand"
	"encoding/hex"
)

// NewToken returns exactly 64 hex characters (no separators/prefixes).
// Used for registration tokens embedded in email links.
func NewToken() string {
	b := make([]byte, 32)
	_, _ = rand.Read(b)
	return hex.EncodeToString(b)
}
