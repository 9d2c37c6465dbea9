package model

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"
)

// Credential is what the OAuth sign-in flow hands over for one identity
type Credential struct {
	AccessToken string
	UserID      string
}

// Valid reports whether the credential carries a token
func (c Credential) Valid() bool {
	return strings.TrimSpace(c.AccessToken) != ""
}

// Fingerprint identifies the credential without exposing the token (cache keys, logs)
func (c Credential) Fingerprint() string {
	sum := sha256.Sum256([]byte(c.AccessToken))
	return hex.EncodeToString(sum[:8])
}
