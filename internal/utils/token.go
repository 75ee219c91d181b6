package utils

import (
	"crypto/rand"
	"encoding/base64"
)

// secureTokenBytes is the entropy of invitation and password-reset token
// values. 48 random bytes encode to a 64-character URL-safe string.
const secureTokenBytes = 48

// GenerateSecureToken returns a URL-safe opaque token value suitable for
// single-use credential tokens.
func GenerateSecureToken() (string, error) {
	buf := make([]byte, secureTokenBytes)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(buf), nil
}
