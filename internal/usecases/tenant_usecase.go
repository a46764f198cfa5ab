package usecases

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"payment-broker.backend/internal/domain/entities"
	domainerrors "payment-broker.backend/internal/domain/errors"
	"payment-broker.backend/internal/domain/repositories"
	"payment-broker.backend/pkg/crypto"
	"payment-broker.backend/pkg/logger"
	"payment-broker.backend/pkg/utils"
)

var generateAPIKey = crypto.GenerateAPIKey

type TenantUsecase struct {
	tenantRepo repositories.TenantRepository
	apiKeyRepo repositories.ApiKeyRepository
	uow        repositories.UnitOfWork
	hasher     entities.Hasher
}

func NewTenantUsecase(
	tenantRepo repositories.TenantRepository,
	apiKeyRepo repositories.ApiKeyRepository,
	uow repositories.UnitOfWork,
	hasher entities.Hasher,
) *TenantUsecase {
	return &TenantUsecase{
		tenantRepo: tenantRepo,
		apiKeyRepo: apiKeyRepo,
		uow:        uow,
		hasher:     hasher,
	}
}

// CreateTenant registers a tenant with a freshly generated API key.
// The plaintext key is only ever returned here.
func (u *TenantUsecase) CreateTenant(ctx context.Context, input *entities.CreateTenantInput) (*entities.CreateTenantResponse, error) {
	code := entities.NormalizeCompanyCode(input.CompanyCode)
	if code != "" {
		exists, err := u.tenantRepo.ExistsByCode(ctx, code)
		if err != nil {
			return nil, err
		}
		if exists {
			return nil, domainerrors.Conflict("company code already exists")
		}
	}

	apiKey, err := generateAPIKey()
	if err != nil {
		return nil, domainerrors.InternalError(err)
	}

	tenant, events, err := entities.NewTenant(input.CompanyName, code, apiKey, u.hasher)
	if err != nil {
		return nil, err
	}

	err = u.uow.Do(ctx, func(txCtx context.Context) error {
		if err := u.tenantRepo.Create(txCtx, tenant); err != nil {
			return err
		}
		u.uow.Record(txCtx, events...)
		return nil
	})
	if err != nil {
		return nil, err
	}

	logger.Info(ctx, "Tenant created",
		zap.String("tenant_id", tenant.ID.String()),
		zap.String("company_code", tenant.CompanyCode),
	)

	return &entities.CreateTenantResponse{Tenant: tenant, ApiKey: apiKey}, nil
}

func (u *TenantUsecase) GetTenant(ctx context.Context, id uuid.UUID) (*entities.Tenant, error) {
	tenant, err := u.tenantRepo.GetByID(ctx, id)
	if err != nil {
		return nil, notFoundAs(err, "tenant not found")
	}
	return tenant, nil
}

// ListTenants returns one page of tenants, newest first
func (u *TenantUsecase) ListTenants(ctx context.Context, page, limit int) ([]*entities.Tenant, utils.PaginationMeta, error) {
	params := utils.GetPaginationParams(page, limit)
	tenants, total, err := u.tenantRepo.List(ctx, params.Limit, params.CalculateOffset())
	if err != nil {
		return nil, utils.PaginationMeta{}, err
	}
	return tenants, utils.CalculateMeta(total, params.Page, params.Limit), nil
}

// UpdateTenant applies a partial update
func (u *TenantUsecase) UpdateTenant(ctx context.Context, id uuid.UUID, input *entities.UpdateTenantInput) (*entities.Tenant, error) {
	return u.mutate(ctx, id, func(t *entities.Tenant) []entities.DomainEvent {
		events := t.Rename(input.CompanyName)
		if input.IsActive != nil {
			if *input.IsActive {
				events = append(events, t.Activate()...)
			} else {
				events = append(events, t.Deactivate()...)
			}
		}
		return events
	})
}

func (u *TenantUsecase) ActivateTenant(ctx context.Context, id uuid.UUID) (*entities.Tenant, error) {
	return u.mutate(ctx, id, (*entities.Tenant).Activate)
}

func (u *TenantUsecase) DeactivateTenant(ctx context.Context, id uuid.UUID) (*entities.Tenant, error) {
	return u.mutate(ctx, id, (*entities.Tenant).Deactivate)
}

// mutate loads a tenant, applies change and persists it when change produced events
func (u *TenantUsecase) mutate(ctx context.Context, id uuid.UUID, change func(*entities.Tenant) []entities.DomainEvent) (*entities.Tenant, error) {
	var tenant *entities.Tenant
	err := u.uow.Do(ctx, func(txCtx context.Context) error {
		t, err := u.tenantRepo.GetByID(txCtx, id)
		if err != nil {
			return notFoundAs(err, "tenant not found")
		}
		tenant = t

		events := change(t)
		if len(events) == 0 {
			return nil
		}
		if err := u.tenantRepo.Update(txCtx, t); err != nil {
			return err
		}
		u.uow.Record(txCtx, events...)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return tenant, nil
}

// AddApiKey binds a caller-supplied key value to a tenant without one
func (u *TenantUsecase) AddApiKey(ctx context.Context, tenantID uuid.UUID, input *entities.CreateApiKeyInput) (*entities.ApiKey, error) {
	key, err := entities.NewApiKey(input.ApiKey, input.Description, u.hasher)
	if err != nil {
		return nil, err
	}

	err = u.uow.Do(ctx, func(txCtx context.Context) error {
		tenant, err := u.tenantRepo.GetByID(txCtx, tenantID)
		if err != nil {
			return notFoundAs(err, "tenant not found")
		}
		events, err := tenant.AddApiKey(key)
		if err != nil {
			return err
		}
		if err := u.apiKeyRepo.Create(txCtx, key); err != nil {
			return err
		}
		u.uow.Record(txCtx, events...)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return key, nil
}

// ValidateByApiKey resolves the tenant owning key. No match is not an
// error: it returns nil, nil.
func (u *TenantUsecase) ValidateByApiKey(ctx context.Context, key string) (*entities.Tenant, error) {
	key = strings.TrimSpace(key)
	if key == "" {
		return nil, nil
	}
	tenant, err := u.tenantRepo.GetByApiKeyHash(ctx, u.hasher.Hash(key))
	if errors.Is(err, domainerrors.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return tenant, nil
}

// notFoundAs replaces a bare not-found sentinel with a described one
func notFoundAs(err error, message string) error {
	if _, ok := domainerrors.As(err); ok {
		return err
	}
	if errors.Is(err, domainerrors.ErrNotFound) {
		return domainerrors.NotFound(message)
	}
	return err
}
