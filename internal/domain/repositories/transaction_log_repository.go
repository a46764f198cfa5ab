package repositories

import (
	"context"

	"github.com/google/uuid"
	"payment-broker.backend/internal/domain/entities"
)

// TransactionLogRepository stores the audit trail of gateway calls
type TransactionLogRepository interface {
	CreateRequest(ctx context.Context, log *entities.TransactionRequestLog) error
	CreateResponse(ctx context.Context, log *entities.TransactionResponseLog) error
	GetRequestByID(ctx context.Context, id uuid.UUID) (*entities.TransactionRequestLog, error)
	GetResponsesByRequestID(ctx context.Context, requestID uuid.UUID) ([]*entities.TransactionResponseLog, error)
	ListRequestsByTenant(ctx context.Context, tenantID uuid.UUID, limit, offset int) ([]*entities.TransactionRequestLog, int64, error)
}
