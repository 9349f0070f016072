package security

import (
	"crypto/rand"
	"encoding/base64"
)

// GenerateInviteToken generates a secure random opaque token for admin invites
func GenerateInviteToken() (string, error) {
	b := make([]byte, 32)
	_, err := rand.Read(b)
	if err != nil {
		return "", err
	}
	return base64.URLEncoding.EncodeToString(b), nil
}
