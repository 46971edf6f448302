package security

import (
	"crypto/rand"
	"encoding/hex"
)

// RandomSecret returns 32 cryptographically random bytes hex-encoded.
func RandomSecret() string {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		panic(err)
	}
	return hex.EncodeToString(b)
}
