package repositories

import (
	"context"

	"github.com/google/uuid"
	"payment-broker.backend/internal/domain/entities"
)

// TenantRepository defines tenant data operations.
// Tenants are returned with their api key and terminal loaded.
type TenantRepository interface {
	Create(ctx context.Context, tenant *entities.Tenant) error
	GetByID(ctx context.Context, id uuid.UUID) (*entities.Tenant, error)
	GetByCode(ctx context.Context, companyCode string) (*entities.Tenant, error)
	GetByApiKeyHash(ctx context.Context, keyHash string) (*entities.Tenant, error)
	ExistsByCode(ctx context.Context, companyCode string) (bool, error)
	Update(ctx context.Context, tenant *entities.Tenant) error
	List(ctx context.Context, limit, offset int) ([]*entities.Tenant, int64, error)
}
