package repositories

import (
	"context"

	"github.com/google/uuid"
	"payment-broker.backend/internal/domain/entities"
)

// TerminalRepository defines terminal data operations
type TerminalRepository interface {
	Create(ctx context.Context, terminal *entities.Terminal) error
	GetByID(ctx context.Context, id uuid.UUID) (*entities.Terminal, error)
	GetByTenantID(ctx context.Context, tenantID uuid.UUID) (*entities.Terminal, error)
	GetBySecretHash(ctx context.Context, secretHash string) (*entities.Terminal, error)
	ExistsByTenantID(ctx context.Context, tenantID uuid.UUID) (bool, error)
	Update(ctx context.Context, terminal *entities.Terminal) error
}
