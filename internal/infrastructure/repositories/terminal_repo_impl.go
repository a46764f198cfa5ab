package repositories

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/volatiletech/null/v8"
	"gorm.io/gorm"
	"payment-broker.backend/internal/domain/entities"
	domainerrors "payment-broker.backend/internal/domain/errors"
	"payment-broker.backend/internal/infrastructure/models"
)

const terminalConflictMessage = "terminal already exists for tenant or secret is already in use"

// TerminalRepository implements terminal data operations
type TerminalRepository struct {
	db *gorm.DB
}

// NewTerminalRepository creates a new terminal repository
func NewTerminalRepository(db *gorm.DB) *TerminalRepository {
	return &TerminalRepository{db: db}
}

// Create creates a new terminal
func (r *TerminalRepository) Create(ctx context.Context, terminal *entities.Terminal) error {
	if err := GetDB(ctx, r.db).Create(toTerminalModel(terminal)).Error; err != nil {
		return translateError(err, terminalConflictMessage)
	}
	return nil
}

// GetByID gets a terminal by ID
func (r *TerminalRepository) GetByID(ctx context.Context, id uuid.UUID) (*entities.Terminal, error) {
	return r.first(ctx, "id = ?", id)
}

// GetByTenantID gets the terminal bound to a tenant
func (r *TerminalRepository) GetByTenantID(ctx context.Context, tenantID uuid.UUID) (*entities.Terminal, error) {
	return r.first(ctx, "tenant_id = ?", tenantID)
}

// GetBySecretHash finds a terminal by the digest of its secret
func (r *TerminalRepository) GetBySecretHash(ctx context.Context, secretHash string) (*entities.Terminal, error) {
	return r.first(ctx, "secret_hash = ?", secretHash)
}

func (r *TerminalRepository) first(ctx context.Context, cond string, arg interface{}) (*entities.Terminal, error) {
	var m models.Terminal
	if err := GetDB(ctx, r.db).Where(cond, arg).First(&m).Error; err != nil {
		return nil, translateError(err, "")
	}
	return toTerminalEntity(&m), nil
}

// ExistsByTenantID reports whether the tenant already has a terminal
func (r *TerminalRepository) ExistsByTenantID(ctx context.Context, tenantID uuid.UUID) (bool, error) {
	var count int64
	if err := GetDB(ctx, r.db).Model(&models.Terminal{}).Where("tenant_id = ?", tenantID).Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// Update writes every mutable terminal field
func (r *TerminalRepository) Update(ctx context.Context, terminal *entities.Terminal) error {
	if terminal.UpdatedAt.IsZero() {
		terminal.UpdatedAt = time.Now().UTC()
	}
	updates := map[string]interface{}{
		"name":              terminal.Name,
		"secret_encrypted":  terminal.SecretEncrypted,
		"secret_hash":       terminal.SecretHash,
		"secret_identifier": terminal.SecretIdentifier.Ptr(),
		"is_active":         terminal.IsActive,
		"updated_at":        terminal.UpdatedAt,
	}

	result := GetDB(ctx, r.db).Model(&models.Terminal{}).Where("id = ?", terminal.ID).Updates(updates)
	if result.Error != nil {
		return translateError(result.Error, terminalConflictMessage)
	}
	if result.RowsAffected == 0 {
		return domainerrors.ErrNotFound
	}
	return nil
}

func toTerminalModel(e *entities.Terminal) *models.Terminal {
	return &models.Terminal{
		ID:               e.ID,
		TenantID:         e.TenantID,
		Name:             e.Name,
		SecretEncrypted:  e.SecretEncrypted,
		SecretHash:       e.SecretHash,
		SecretIdentifier: e.SecretIdentifier.Ptr(),
		IsActive:         e.IsActive,
		CreatedAt:        e.CreatedAt,
		UpdatedAt:        e.UpdatedAt,
	}
}

func toTerminalEntity(m *models.Terminal) *entities.Terminal {
	return &entities.Terminal{
		ID:               m.ID,
		TenantID:         m.TenantID,
		Name:             m.Name,
		SecretEncrypted:  m.SecretEncrypted,
		SecretHash:       m.SecretHash,
		SecretIdentifier: null.StringFromPtr(m.SecretIdentifier),
		IsActive:         m.IsActive,
		CreatedAt:        m.CreatedAt,
		UpdatedAt:        m.UpdatedAt,
	}
}
