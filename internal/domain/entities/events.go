package entities

import (
	"time"

	"github.com/google/uuid"
)

// Event names
const (
	EventTenantCreated         = "tenant.created"
	EventTenantUpdated         = "tenant.updated"
	EventTenantActivated       = "tenant.activated"
	EventTenantDeactivated     = "tenant.deactivated"
	EventApiKeyAdded           = "tenant.api_key_added"
	EventTerminalCreated       = "terminal.created"
	EventTerminalUpdated       = "terminal.updated"
	EventTerminalSecretRotated = "terminal.secret_rotated"
	EventTerminalSecretLinked  = "terminal.secret_linked"
	EventTransactionRequested  = "transaction.requested"
	EventTransactionCompleted  = "transaction.completed"
)

// DomainEvent is a fact about a completed state change. Entity methods return
// the events they produce; the unit of work dispatches them at commit time.
type DomainEvent interface {
	EventName() string
	AggregateID() uuid.UUID
	OccurredAt() time.Time
}

// BaseEvent carries the fields every event has
type BaseEvent struct {
	Name      string    `json:"name"`
	Aggregate uuid.UUID `json:"aggregateId"`
	At        time.Time `json:"occurredAt"`
}

func newBaseEvent(name string, aggregateID uuid.UUID) BaseEvent {
	return BaseEvent{Name: name, Aggregate: aggregateID, At: time.Now().UTC()}
}

func (e BaseEvent) EventName() string { return e.Name }
func (e BaseEvent) AggregateID() uuid.UUID { return e.Aggregate }
func (e BaseEvent) OccurredAt() time.Time { return e.At }

// TenantEvent covers tenant lifecycle changes
type TenantEvent struct {
	BaseEvent
	CompanyCode string `json:"companyCode"`
}

// ApiKeyAddedEvent never carries the key value
type ApiKeyAddedEvent struct {
	BaseEvent
	ApiKeyID  uuid.UUID `json:"apiKeyId"`
	KeyPrefix string    `json:"keyPrefix"`
}

// TerminalEvent covers terminal lifecycle changes
type TerminalEvent struct {
	BaseEvent
	TenantID         uuid.UUID `json:"tenantId"`
	SecretIdentifier string    `json:"secretIdentifier,omitempty"`
}

// TransactionEvent is raised around each gateway call
type TransactionEvent struct {
	BaseEvent
	TenantID      uuid.UUID       `json:"tenantId"`
	Type          TransactionType `json:"type"`
	OrderID       string          `json:"orderId,omitempty"`
	Status        string          `json:"status,omitempty"`
	TransactionID string          `json:"transactionId,omitempty"`
}

// NewTransactionRequestedEvent is raised when a request log is written
func NewTransactionRequestedEvent(log *TransactionRequestLog) TransactionEvent {
	return TransactionEvent{
		BaseEvent: newBaseEvent(EventTransactionRequested, log.ID),
		TenantID:  log.TenantID,
		Type:      log.Type,
		OrderID:   log.OrderID,
	}
}

// NewTransactionCompletedEvent is raised when a response log is written
func NewTransactionCompletedEvent(req *TransactionRequestLog, resp *TransactionResponseLog) TransactionEvent {
	return TransactionEvent{
		BaseEvent:     newBaseEvent(EventTransactionCompleted, req.ID),
		TenantID:      req.TenantID,
		Type:          req.Type,
		OrderID:       req.OrderID,
		Status:        resp.Status,
		TransactionID: resp.TransactionID.String,
	}
}
