package crypto

import (
	"crypto/rand"
	"encoding/base64"
	"encoding/hex"
	"fmt"
)

const (
	// APIKeySize is the number of random bytes in a generated tenant API key
	APIKeySize = 32
)

var randomRead = rand.Read

// GenerateRandomToken generates a random token of specified length
func GenerateRandomToken(length int) (string, error) {
	bytes := make([]byte, length)
	if _, err := randomRead(bytes); err != nil {
		return "", fmt.Errorf("failed to generate random token: %w", err)
	}
	return hex.EncodeToString(bytes), nil
}

// GenerateAPIKey returns 32 random bytes, base64 encoded
func GenerateAPIKey() (string, error) {
	bytes := make([]byte, APIKeySize)
	if _, err := randomRead(bytes); err != nil {
		return "", fmt.Errorf("failed to generate api key: %w", err)
	}
	return base64.StdEncoding.EncodeToString(bytes), nil
}
