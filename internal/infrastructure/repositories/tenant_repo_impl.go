package repositories

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"payment-broker.backend/internal/domain/entities"
	domainerrors "payment-broker.backend/internal/domain/errors"
	"payment-broker.backend/internal/infrastructure/models"
)

// TenantRepository implements tenant data operations
type TenantRepository struct {
	db *gorm.DB
}

// NewTenantRepository creates a new tenant repository
func NewTenantRepository(db *gorm.DB) *TenantRepository {
	return &TenantRepository{db: db}
}

// Create stores the tenant together with its api key and terminal, if set.
// Associations are written explicitly so a key collision surfaces as a conflict.
func (r *TenantRepository) Create(ctx context.Context, tenant *entities.Tenant) error {
	db := GetDB(ctx, r.db)

	m := toTenantModel(tenant)
	if err := db.Omit(clause.Associations).Create(m).Error; err != nil {
		return translateError(err, "company code already exists")
	}
	if tenant.ApiKey != nil {
		if err := db.Create(toApiKeyModel(tenant.ApiKey)).Error; err != nil {
			return translateError(err, "api key already exists")
		}
	}
	if tenant.Terminal != nil {
		if err := db.Create(toTerminalModel(tenant.Terminal)).Error; err != nil {
			return translateError(err, "terminal already exists")
		}
	}
	return nil
}

func (r *TenantRepository) loaded(ctx context.Context) *gorm.DB {
	return GetDB(ctx, r.db).Model(&models.Tenant{}).Preload("ApiKey").Preload("Terminal")
}

// GetByID gets a tenant by ID
func (r *TenantRepository) GetByID(ctx context.Context, id uuid.UUID) (*entities.Tenant, error) {
	var m models.Tenant
	if err := r.loaded(ctx).Where("tenants.id = ?", id).First(&m).Error; err != nil {
		return nil, translateError(err, "")
	}
	return toTenantEntity(&m), nil
}

// GetByCode gets a tenant by its normalized company code
func (r *TenantRepository) GetByCode(ctx context.Context, companyCode string) (*entities.Tenant, error) {
	var m models.Tenant
	code := entities.NormalizeCompanyCode(companyCode)
	if err := r.loaded(ctx).Where("tenants.company_code = ?", code).First(&m).Error; err != nil {
		return nil, translateError(err, "")
	}
	return toTenantEntity(&m), nil
}

// GetByApiKeyHash finds the tenant owning the api key digest
func (r *TenantRepository) GetByApiKeyHash(ctx context.Context, keyHash string) (*entities.Tenant, error) {
	var m models.Tenant
	err := r.loaded(ctx).
		Joins("JOIN api_keys ON api_keys.tenant_id = tenants.id").
		Where("api_keys.key_hash = ?", keyHash).
		First(&m).Error
	if err != nil {
		return nil, translateError(err, "")
	}
	return toTenantEntity(&m), nil
}

// ExistsByCode reports whether the company code is taken
func (r *TenantRepository) ExistsByCode(ctx context.Context, companyCode string) (bool, error) {
	var count int64
	err := GetDB(ctx, r.db).Model(&models.Tenant{}).
		Where("company_code = ?", entities.NormalizeCompanyCode(companyCode)).
		Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

// Update updates the mutable tenant fields
func (r *TenantRepository) Update(ctx context.Context, tenant *entities.Tenant) error {
	if tenant.UpdatedAt.IsZero() {
		tenant.UpdatedAt = time.Now().UTC()
	}
	updates := map[string]interface{}{
		"company_name": tenant.CompanyName,
		"is_active":    tenant.IsActive,
		"updated_at":   tenant.UpdatedAt,
	}

	result := GetDB(ctx, r.db).Model(&models.Tenant{}).Where("id = ?", tenant.ID).Updates(updates)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return domainerrors.ErrNotFound
	}
	return nil
}

// List returns a page of tenants, newest first, and the total count
func (r *TenantRepository) List(ctx context.Context, limit, offset int) ([]*entities.Tenant, int64, error) {
	var total int64
	if err := GetDB(ctx, r.db).Model(&models.Tenant{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var rows []models.Tenant
	q := applyPage(r.loaded(ctx).Order("tenants.created_at DESC"), limit, offset)
	if err := q.Find(&rows).Error; err != nil {
		return nil, 0, err
	}

	tenants := make([]*entities.Tenant, 0, len(rows))
	for i := range rows {
		tenants = append(tenants, toTenantEntity(&rows[i]))
	}
	return tenants, total, nil
}

func toTenantModel(e *entities.Tenant) *models.Tenant {
	return &models.Tenant{
		ID:          e.ID,
		CompanyName: e.CompanyName,
		CompanyCode: e.CompanyCode,
		IsActive:    e.IsActive,
		CreatedAt:   e.CreatedAt,
		UpdatedAt:   e.UpdatedAt,
	}
}

func toTenantEntity(m *models.Tenant) *entities.Tenant {
	t := &entities.Tenant{
		ID:          m.ID,
		CompanyName: m.CompanyName,
		CompanyCode: m.CompanyCode,
		IsActive:    m.IsActive,
		CreatedAt:   m.CreatedAt,
		UpdatedAt:   m.UpdatedAt,
	}
	if m.ApiKey != nil {
		t.ApiKey = toApiKeyEntity(m.ApiKey)
	}
	if m.Terminal != nil {
		t.Terminal = toTerminalEntity(m.Terminal)
	}
	return t
}
