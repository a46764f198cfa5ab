package entities

import (
	"time"

	"github.com/google/uuid"
)

// Secret is a versioned value held by the external secret vault
type Secret struct {
	ARN           string    `json:"arn"`
	Name          string    `json:"name"`
	SecretString  string    `json:"secretString,omitempty"`
	VersionID     string    `json:"versionId,omitempty"`
	VersionStages []string  `json:"versionStages,omitempty"`
	CreatedAt     time.Time `json:"createdAt,omitempty"`
}

// SecretSummary is a list entry; it never carries the value
type SecretSummary struct {
	ARN         string     `json:"arn"`
	Name        string     `json:"name"`
	Description string     `json:"description,omitempty"`
	LastChanged *time.Time `json:"lastChangedAt,omitempty"`
}

// SecretList is one page of secret summaries
type SecretList struct {
	Secrets   []SecretSummary `json:"secrets"`
	NextToken string          `json:"nextToken,omitempty"`
}

// GetSecretInput addresses a secret by id and optional version or stage
type GetSecretInput struct {
	SecretID     string `form:"-"`
	VersionID    string `form:"versionId"`
	VersionStage string `form:"versionStage"`
}

// CreateSecretInput creates a new vault secret
type CreateSecretInput struct {
	Name         string     `json:"name" binding:"required"`
	SecretString string     `json:"secretString" binding:"required"`
	Description  string     `json:"description"`
	TerminalID   *uuid.UUID `json:"terminalId"`
}

// UpdateSecretInput stores a new value for an existing secret
type UpdateSecretInput struct {
	SecretID     string     `json:"-"`
	SecretString string     `json:"secretString" binding:"required"`
	Description  string     `json:"description"`
	TerminalID   *uuid.UUID `json:"terminalId"`
}

// ListSecretsInput pages through vault secrets
type ListSecretsInput struct {
	MaxResults int32  `form:"maxResults"`
	NextToken  string `form:"nextToken"`
}
