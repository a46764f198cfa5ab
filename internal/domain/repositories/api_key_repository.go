package repositories

import (
	"context"

	"github.com/google/uuid"
	"payment-broker.backend/internal/domain/entities"
)

// ApiKeyRepository defines api key data operations
type ApiKeyRepository interface {
	Create(ctx context.Context, apiKey *entities.ApiKey) error
	GetByKeyHash(ctx context.Context, keyHash string) (*entities.ApiKey, error)
	GetByTenantID(ctx context.Context, tenantID uuid.UUID) (*entities.ApiKey, error)
	Update(ctx context.Context, apiKey *entities.ApiKey) error
}
