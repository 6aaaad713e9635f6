// Package security provides secure random generation and token utilities
package security

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"

	"github.com/google/uuid"
	"github.com/oklog/ulid/v2"
)

// GenerateULID generates a new ULID string, used for append-only row ids.
func GenerateULID() string {
	return ulid.Make().String()
}

// GenerateVisitorID mints a new visitor identifier: a random, hyphenated
// 128-bit UUID v4, matching the format persisted in visitors' browsers.
func GenerateVisitorID() string {
	return uuid.NewString()
}

// GenerateSecureKey creates a cryptographically secure random key and returns
// it as a hex string. Suitable for JWT secrets.
func GenerateSecureKey(length int) (string, error) {
	bytes := make([]byte, length/2) // Each byte becomes two hex characters
	if _, err := rand.Read(bytes); err != nil {
		return "", fmt.Errorf("failed to generate secure key: %w", err)
	}
	return hex.EncodeToString(bytes), nil
}
