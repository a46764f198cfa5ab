package entities

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/volatiletech/null/v8"
)

// Response log statuses besides the gateway's own response codes
const (
	ResponseStatusOK    = "ok"
	ResponseStatusError = "error"
)

// TransactionRequestLog is the audit record written before a gateway call.
// Payload and RawContent only ever hold sanitized data.
type TransactionRequestLog struct {
	ID         uuid.UUID       `json:"id"`
	TenantID   uuid.UUID       `json:"tenantId"`
	Type       TransactionType `json:"type"`
	Payload    json.RawMessage `json:"payload"`
	OrderID    string          `json:"orderId"`
	RawContent string          `json:"rawContent"`
	CreatedAt  time.Time       `json:"createdAt"`
}

// NewTransactionRequestLog builds a request log from sanitized data
func NewTransactionRequestLog(tenantID uuid.UUID, txType TransactionType, orderID string, payload json.RawMessage, rawContent string) *TransactionRequestLog {
	return &TransactionRequestLog{
		ID:         newID(),
		TenantID:   tenantID,
		Type:       txType,
		Payload:    payload,
		OrderID:    orderID,
		RawContent: rawContent,
		CreatedAt:  time.Now().UTC(),
	}
}

// TransactionResponseLog records the gateway reply for a request log
type TransactionResponseLog struct {
	ID            uuid.UUID   `json:"id"`
	RequestID     uuid.UUID   `json:"requestId"`
	Status        string      `json:"status"`
	Message       string      `json:"message"`
	TransactionID null.String `json:"transactionId"`
	RawResponse   string      `json:"rawResponse"`
	CreatedAt     time.Time   `json:"createdAt"`
}

// NewTransactionResponseLog links a reply to its request log
func NewTransactionResponseLog(requestID uuid.UUID, status, message, transactionID, raw string) *TransactionResponseLog {
	return &TransactionResponseLog{
		ID:            newID(),
		RequestID:     requestID,
		Status:        status,
		Message:       message,
		TransactionID: null.NewString(transactionID, transactionID != ""),
		RawResponse:   raw,
		CreatedAt:     time.Now().UTC(),
	}
}

// TransactionResult is returned to the tenant after a gateway call
type TransactionResult struct {
	RequestID uuid.UUID            `json:"requestId"`
	Response  *TransactionResponse `json:"response"`
}

// QueryResult is returned to the tenant after a gateway query
type QueryResult struct {
	RequestID uuid.UUID      `json:"requestId"`
	Response  *QueryResponse `json:"response"`
}

// TransactionDetail is a request log with the replies recorded for it
type TransactionDetail struct {
	Request   *TransactionRequestLog    `json:"request"`
	Responses []*TransactionResponseLog `json:"responses"`
}
