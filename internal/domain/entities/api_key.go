package entities

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	domainerrors "payment-broker.backend/internal/domain/errors"
)

const apiKeyPrefixLen = 6

// MinApiKeyLength keeps the stored prefix a small part of the key
const MinApiKeyLength = 16

// Hasher produces the deterministic lookup digest for a secret value
type Hasher interface {
	Hash(plaintext string) string
}

// ApiKey is the credential a tenant uses to call the broker.
// Only the digest of the key value is kept.
type ApiKey struct {
	ID          uuid.UUID `json:"id"`
	TenantID    uuid.UUID `json:"tenantId"`
	KeyPrefix   string    `json:"keyPrefix"`
	KeyHash     string    `json:"-"`
	Description string    `json:"description"`
	IsActive    bool      `json:"isActive"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// NewApiKey builds an active API key from its plaintext value
func NewApiKey(value, description string, hasher Hasher) (*ApiKey, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return nil, domainerrors.FieldError("apiKey", "api key value is required")
	}
	if len(value) < MinApiKeyLength {
		return nil, domainerrors.FieldError("apiKey", fmt.Sprintf("api key must be at least %d characters", MinApiKeyLength))
	}

	now := time.Now().UTC()
	return &ApiKey{
		ID:          newID(),
		KeyPrefix:   keyPrefix(value),
		KeyHash:     hasher.Hash(value),
		Description: description,
		IsActive:    true,
		CreatedAt:   now,
		UpdatedAt:   now,
	}, nil
}

func keyPrefix(value string) string {
	return value[:apiKeyPrefixLen]
}

// CreateApiKeyInput is the admin request to bind a key to a tenant
type CreateApiKeyInput struct {
	ApiKey      string `json:"apiKey" binding:"required"`
	Description string `json:"description"`
}
