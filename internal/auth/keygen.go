package auth

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"strings"
)

// AdminKeyPrefix starts every generated admin key.
const AdminKeyPrefix = "mtk_"

// adminSecretBytes is the entropy of a generated key.
const adminSecretBytes = 24

// GeneratedKey is a new admin key with its hash.
type GeneratedKey struct {
	Plaintext string // shown once
	Hash      string // value for ADMIN_KEY_HASH
}

// GenerateAdminKey creates a random admin key and hashes it.
func GenerateAdminKey() (*GeneratedKey, error) {
	secret := make([]byte, adminSecretBytes)
	if _, err := rand.Read(secret); err != nil {
		return nil, fmt.Errorf("generate secret: %w", err)
	}

	plaintext := AdminKeyPrefix + hex.EncodeToString(secret)
	hash, err := HashKey(plaintext)
	if err != nil {
		return nil, fmt.Errorf("hash key: %w", err)
	}

	return &GeneratedKey{Plaintext: plaintext, Hash: hash}, nil
}

// ExtractBearer returns the token of an "Authorization: Bearer <token>" value.
func ExtractBearer(header string) string {
	const scheme = "bearer "
	if len(header) > len(scheme) && strings.EqualFold(header[:len(scheme)], scheme) {
		return strings.TrimSpace(header[len(scheme):])
	}
	return ""
}
