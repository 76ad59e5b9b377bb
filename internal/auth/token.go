package auth

import (
	"crypto/rand"
	"encoding/hex"
)

// opaqueTokenBytes gives 256 bits of entropy, hex-encoded to 64 characters.
const opaqueTokenBytes = 32

// GenerateOpaqueToken returns a random one-time lookup token for email
// verification and password reset links.
func GenerateOpaqueToken() (string, error) {
	buf := make([]byte, opaqueTokenBytes)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return hex.EncodeToString(buf), nil
}
