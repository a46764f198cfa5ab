package entities

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/volatiletech/null/v8"
	domainerrors "payment-broker.backend/internal/domain/errors"
)

// SecretProtector encrypts and hashes a terminal secret before it is stored
type SecretProtector interface {
	Hasher
	Encrypt(plaintext string) (string, error)
}

// Terminal is the gateway-facing endpoint bound to one tenant. The plaintext
// secret is never held on the entity.
type Terminal struct {
	ID               uuid.UUID   `json:"id"`
	TenantID         uuid.UUID   `json:"tenantId"`
	Name             string      `json:"name"`
	SecretEncrypted  string      `json:"-"`
	SecretHash       string      `json:"-"`
	SecretIdentifier null.String `json:"secretIdentifier"`
	IsActive         bool        `json:"isActive"`
	CreatedAt        time.Time   `json:"createdAt"`
	UpdatedAt        time.Time   `json:"updatedAt"`
}

// TerminalUpdate is partial: empty strings and nil pointers keep current values
type TerminalUpdate struct {
	Name     string
	Secret   string
	IsActive *bool
}

// NewTerminal validates its input and protects the secret
func NewTerminal(name, secret string, tenantID uuid.UUID, protector SecretProtector) (*Terminal, []DomainEvent, error) {
	name = strings.TrimSpace(name)

	fields := map[string]string{}
	if name == "" {
		fields["name"] = "terminal name is required"
	}
	if strings.TrimSpace(secret) == "" {
		fields["secret"] = "terminal secret is required"
	}
	if tenantID == uuid.Nil {
		fields["tenantId"] = "tenant id is required"
	}
	if len(fields) > 0 {
		return nil, nil, domainerrors.Validation("invalid terminal", fields)
	}

	encrypted, err := protector.Encrypt(secret)
	if err != nil {
		return nil, nil, domainerrors.InternalError(err)
	}

	now := time.Now().UTC()
	t := &Terminal{
		ID:              newID(),
		TenantID:        tenantID,
		Name:            name,
		SecretEncrypted: encrypted,
		SecretHash:      protector.Hash(secret),
		IsActive:        true,
		CreatedAt:       now,
		UpdatedAt:       now,
	}

	return t, []DomainEvent{t.event(EventTerminalCreated)}, nil
}

// Update applies a partial update
func (t *Terminal) Update(in TerminalUpdate, protector SecretProtector) ([]DomainEvent, error) {
	var events []DomainEvent
	changed := false

	if name := strings.TrimSpace(in.Name); name != "" && name != t.Name {
		t.Name = name
		changed = true
	}
	if in.IsActive != nil && *in.IsActive != t.IsActive {
		t.IsActive = *in.IsActive
		changed = true
	}
	if strings.TrimSpace(in.Secret) != "" {
		hash := protector.Hash(in.Secret)
		if hash != t.SecretHash {
			encrypted, err := protector.Encrypt(in.Secret)
			if err != nil {
				return nil, domainerrors.InternalError(err)
			}
			t.SecretEncrypted = encrypted
			t.SecretHash = hash
			events = append(events, t.event(EventTerminalSecretRotated))
		}
	}

	if changed {
		events = append(events, t.event(EventTerminalUpdated))
	}
	if len(events) > 0 {
		t.touch()
	}
	return events, nil
}

// AssignSecretIdentifier points the terminal at its vault secret
func (t *Terminal) AssignSecretIdentifier(identifier string) ([]DomainEvent, error) {
	identifier = strings.TrimSpace(identifier)
	if identifier == "" {
		return nil, domainerrors.FieldError("secretIdentifier", "secret identifier is required")
	}
	if t.SecretIdentifier.Valid && t.SecretIdentifier.String == identifier {
		return nil, nil
	}
	t.SecretIdentifier = null.StringFrom(identifier)
	t.touch()
	return []DomainEvent{t.event(EventTerminalSecretLinked)}, nil
}

func (t *Terminal) touch() {
	t.UpdatedAt = time.Now().UTC()
}

func (t *Terminal) event(name string) TerminalEvent {
	return TerminalEvent{
		BaseEvent:        newBaseEvent(name, t.ID),
		TenantID:         t.TenantID,
		SecretIdentifier: t.SecretIdentifier.String,
	}
}

// CreateTerminalInput represents input for terminal creation
type CreateTerminalInput struct {
	TenantID uuid.UUID `json:"tenantId" binding:"required"`
	Name     string    `json:"name" binding:"required,max=255"`
	Secret   string    `json:"secret" binding:"required"`
}

// UpdateTerminalInput represents a partial terminal update
type UpdateTerminalInput struct {
	Name     string `json:"name" binding:"max=255"`
	Secret   string `json:"secret"`
	IsActive *bool  `json:"isActive"`
}

// SyncSecretInput links a vault secret to a terminal
type SyncSecretInput struct {
	SecretIdentifier string `json:"secretIdentifier" binding:"required"`
}
