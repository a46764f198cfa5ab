package entities

import (
	"strings"
	"time"

	"github.com/google/uuid"
	domainerrors "payment-broker.backend/internal/domain/errors"
	"payment-broker.backend/pkg/utils"
)

// DefaultApiKeyDescription labels the key generated with a tenant
const DefaultApiKeyDescription = "default"

// Tenant is a merchant account, the top-level multi-tenancy boundary
type Tenant struct {
	ID          uuid.UUID `json:"id"`
	CompanyName string    `json:"companyName"`
	CompanyCode string    `json:"companyCode"`
	IsActive    bool      `json:"isActive"`
	ApiKey      *ApiKey   `json:"apiKey,omitempty"`
	Terminal    *Terminal `json:"terminal,omitempty"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

var newID = utils.NewID

// NormalizeCompanyCode trims and upper-cases a company code
func NormalizeCompanyCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}

// NewTenant creates an active tenant holding its first API key
func NewTenant(companyName, companyCode, apiKeyValue string, hasher Hasher) (*Tenant, []DomainEvent, error) {
	fields := map[string]string{}
	companyName = strings.TrimSpace(companyName)
	companyCode = NormalizeCompanyCode(companyCode)
	if companyName == "" {
		fields["companyName"] = "company name is required"
	}
	if companyCode == "" {
		fields["companyCode"] = "company code is required"
	}
	if len(fields) > 0 {
		return nil, nil, domainerrors.Validation("invalid tenant", fields)
	}

	now := time.Now().UTC()
	t := &Tenant{
		ID:          newID(),
		CompanyName: companyName,
		CompanyCode: companyCode,
		IsActive:    true,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	events := []DomainEvent{t.event(EventTenantCreated)}

	key, err := NewApiKey(apiKeyValue, DefaultApiKeyDescription, hasher)
	if err != nil {
		return nil, nil, err
	}
	added, err := t.AddApiKey(key)
	if err != nil {
		return nil, nil, err
	}

	return t, append(events, added...), nil
}

// AddApiKey binds key to the tenant. A tenant holds at most one key and the
// same key value can never be added twice.
func (t *Tenant) AddApiKey(key *ApiKey) ([]DomainEvent, error) {
	if key == nil {
		return nil, domainerrors.FieldError("apiKey", "api key is required")
	}
	if t.ApiKey != nil {
		if t.ApiKey.KeyHash == key.KeyHash {
			return nil, domainerrors.FieldError("apiKey", "api key already exists for this tenant")
		}
		return nil, domainerrors.FieldError("apiKey", "tenant already has an api key")
	}

	key.TenantID = t.ID
	t.ApiKey = key
	t.touch()

	return []DomainEvent{ApiKeyAddedEvent{
		BaseEvent: newBaseEvent(EventApiKeyAdded, t.ID),
		ApiKeyID:  key.ID,
		KeyPrefix: key.KeyPrefix,
	}}, nil
}

// Activate is idempotent: an active tenant yields no event
func (t *Tenant) Activate() []DomainEvent {
	if t.IsActive {
		return nil
	}
	t.IsActive = true
	t.touch()
	return []DomainEvent{t.event(EventTenantActivated)}
}

// Deactivate is idempotent: an inactive tenant yields no event
func (t *Tenant) Deactivate() []DomainEvent {
	if !t.IsActive {
		return nil
	}
	t.IsActive = false
	t.touch()
	return []DomainEvent{t.event(EventTenantDeactivated)}
}

// Rename changes the company name; a blank name keeps the current one
func (t *Tenant) Rename(companyName string) []DomainEvent {
	companyName = strings.TrimSpace(companyName)
	if companyName == "" || companyName == t.CompanyName {
		return nil
	}
	t.CompanyName = companyName
	t.touch()
	return []DomainEvent{t.event(EventTenantUpdated)}
}

// HasTerminal reports whether a terminal is bound
func (t *Tenant) HasTerminal() bool {
	return t.Terminal != nil
}

func (t *Tenant) touch() {
	t.UpdatedAt = time.Now().UTC()
}

func (t *Tenant) event(name string) TenantEvent {
	return TenantEvent{BaseEvent: newBaseEvent(name, t.ID), CompanyCode: t.CompanyCode}
}

// CreateTenantInput represents input for tenant creation
type CreateTenantInput struct {
	CompanyName string `json:"companyName" binding:"required,max=255"`
	CompanyCode string `json:"companyCode" binding:"required,max=50"`
}

// UpdateTenantInput is a partial update; nil fields are left unchanged
type UpdateTenantInput struct {
	CompanyName string `json:"companyName" binding:"max=255"`
	IsActive    *bool  `json:"isActive"`
}

// CreateTenantResponse returns the generated API key exactly once
type CreateTenantResponse struct {
	Tenant *Tenant `json:"tenant"`
	ApiKey string  `json:"apiKey"`
}
