package repositories

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"payment-broker.backend/internal/domain/entities"
	domainerrors "payment-broker.backend/internal/domain/errors"
	"payment-broker.backend/internal/infrastructure/models"
)

type ApiKeyRepository struct {
	db *gorm.DB
}

func NewApiKeyRepository(db *gorm.DB) *ApiKeyRepository {
	return &ApiKeyRepository{db: db}
}

func (r *ApiKeyRepository) Create(ctx context.Context, apiKey *entities.ApiKey) error {
	if err := GetDB(ctx, r.db).Create(toApiKeyModel(apiKey)).Error; err != nil {
		return translateError(err, "api key already exists")
	}
	return nil
}

func (r *ApiKeyRepository) GetByKeyHash(ctx context.Context, keyHash string) (*entities.ApiKey, error) {
	var m models.ApiKey
	if err := GetDB(ctx, r.db).Where("key_hash = ?", keyHash).First(&m).Error; err != nil {
		return nil, translateError(err, "")
	}
	return toApiKeyEntity(&m), nil
}

func (r *ApiKeyRepository) GetByTenantID(ctx context.Context, tenantID uuid.UUID) (*entities.ApiKey, error) {
	var m models.ApiKey
	if err := GetDB(ctx, r.db).Where("tenant_id = ?", tenantID).First(&m).Error; err != nil {
		return nil, translateError(err, "")
	}
	return toApiKeyEntity(&m), nil
}

func (r *ApiKeyRepository) Update(ctx context.Context, apiKey *entities.ApiKey) error {
	apiKey.UpdatedAt = time.Now().UTC()
	result := GetDB(ctx, r.db).Model(&models.ApiKey{}).Where("id = ?", apiKey.ID).Updates(map[string]interface{}{
		"description": apiKey.Description,
		"is_active":   apiKey.IsActive,
		"updated_at":  apiKey.UpdatedAt,
	})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return domainerrors.ErrNotFound
	}
	return nil
}

func toApiKeyModel(e *entities.ApiKey) *models.ApiKey {
	return &models.ApiKey{
		ID:          e.ID,
		TenantID:    e.TenantID,
		KeyPrefix:   e.KeyPrefix,
		KeyHash:     e.KeyHash,
		Description: e.Description,
		IsActive:    e.IsActive,
		CreatedAt:   e.CreatedAt,
		UpdatedAt:   e.UpdatedAt,
	}
}

func toApiKeyEntity(m *models.ApiKey) *entities.ApiKey {
	return &entities.ApiKey{
		ID:          m.ID,
		TenantID:    m.TenantID,
		KeyPrefix:   m.KeyPrefix,
		KeyHash:     m.KeyHash,
		Description: m.Description,
		IsActive:    m.IsActive,
		CreatedAt:   m.CreatedAt,
		UpdatedAt:   m.UpdatedAt,
	}
}
