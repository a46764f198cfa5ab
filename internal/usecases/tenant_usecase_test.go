package usecases_test

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"payment-broker.backend/internal/domain/entities"
	domainerrors "payment-broker.backend/internal/domain/errors"
	"payment-broker.backend/internal/usecases"
	"payment-broker.backend/pkg/crypto"
)

func newProtector(t *testing.T) *crypto.EncryptionService {
	t.Helper()
	svc, err := crypto.NewEncryptionService("usecase-test-secret", "usecase-test-salt")
	require.NoError(t, err)
	return svc
}

type tenantFixture struct {
	tenants   *MockTenantRepository
	apiKeys   *MockApiKeyRepository
	uow       *MockUnitOfWork
	protector *crypto.EncryptionService
	uc        *usecases.TenantUsecase
}

func newTenantFixture(t *testing.T) *tenantFixture {
	f := &tenantFixture{
		tenants:   new(MockTenantRepository),
		apiKeys:   new(MockApiKeyRepository),
		uow:       newMockUoW(),
		protector: newProtector(t),
	}
	f.uc = usecases.NewTenantUsecase(f.tenants, f.apiKeys, f.uow, f.protector)
	return f
}

func TestTenantUsecase_CreateTenant(t *testing.T) {
	f := newTenantFixture(t)
	ctx := context.Background()

	f.tenants.On("ExistsByCode", ctx, "ACME01").Return(false, nil)
	f.tenants.On("Create", ctx, mock.AnythingOfType("*entities.Tenant")).Return(nil)

	resp, err := f.uc.CreateTenant(ctx, &entities.CreateTenantInput{CompanyName: "Acme", CompanyCode: " acme01 "})
	require.NoError(t, err)
	require.NotNil(t, resp)

	assert.Equal(t, "ACME01", resp.Tenant.CompanyCode)
	assert.True(t, resp.Tenant.IsActive)
	assert.NotEmpty(t, resp.ApiKey)
	require.NotNil(t, resp.Tenant.ApiKey)
	assert.Equal(t, f.protector.Hash(resp.ApiKey), resp.Tenant.ApiKey.KeyHash)
	assert.Equal(t, resp.Tenant.ID, resp.Tenant.ApiKey.TenantID)
	assert.Equal(t, []string{entities.EventTenantCreated, entities.EventApiKeyAdded}, f.uow.eventNames())

	f.tenants.AssertExpectations(t)
	f.uow.AssertNumberOfCalls(t, "Do", 1)
}

func TestTenantUsecase_CreateTenant_DuplicateCode(t *testing.T) {
	f := newTenantFixture(t)
	ctx := context.Background()

	f.tenants.On("ExistsByCode", ctx, "ACME").Return(true, nil)

	_, err := f.uc.CreateTenant(ctx, &entities.CreateTenantInput{CompanyName: "Acme", CompanyCode: "acme"})
	assert.ErrorIs(t, err, domainerrors.ErrAlreadyExists)
	f.tenants.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	assert.Empty(t, f.uow.recorded)
}

func TestTenantUsecase_CreateTenant_Validation(t *testing.T) {
	f := newTenantFixture(t)

	_, err := f.uc.CreateTenant(context.Background(), &entities.CreateTenantInput{CompanyName: "  ", CompanyCode: ""})
	require.ErrorIs(t, err, domainerrors.ErrInvalidInput)

	appErr, ok := domainerrors.As(err)
	require.True(t, ok)
	assert.Contains(t, appErr.Fields, "companyName")
	assert.Contains(t, appErr.Fields, "companyCode")
	f.tenants.AssertNotCalled(t, "ExistsByCode", mock.Anything, mock.Anything)
}

func TestTenantUsecase_CreateTenant_RaceOnUniqueIndex(t *testing.T) {
	f := newTenantFixture(t)
	ctx := context.Background()

	f.tenants.On("ExistsByCode", ctx, "ACME").Return(false, nil)
	f.tenants.On("Create", ctx, mock.Anything).Return(domainerrors.Conflict("tenant already exists"))

	_, err := f.uc.CreateTenant(ctx, &entities.CreateTenantInput{CompanyName: "Acme", CompanyCode: "ACME"})
	assert.ErrorIs(t, err, domainerrors.ErrAlreadyExists)
	assert.Empty(t, f.uow.recorded)
}

func TestTenantUsecase_ValidateByApiKey(t *testing.T) {
	f := newTenantFixture(t)
	ctx := context.Background()

	var created *entities.Tenant
	f.tenants.On("ExistsByCode", ctx, "ACME01").Return(false, nil)
	f.tenants.On("Create", ctx, mock.AnythingOfType("*entities.Tenant")).
		Run(func(args mock.Arguments) { created = args.Get(1).(*entities.Tenant) }).
		Return(nil)

	resp, err := f.uc.CreateTenant(ctx, &entities.CreateTenantInput{CompanyName: "Acme", CompanyCode: "ACME01"})
	require.NoError(t, err)
	require.NotNil(t, created)

	f.tenants.On("GetByApiKeyHash", ctx, f.protector.Hash(resp.ApiKey)).Return(created, nil)
	f.tenants.On("GetByApiKeyHash", ctx, f.protector.Hash("not-a-key")).Return(nil, domainerrors.ErrNotFound)

	got, err := f.uc.ValidateByApiKey(ctx, resp.ApiKey)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "ACME01", got.CompanyCode)

	got, err = f.uc.ValidateByApiKey(ctx, "not-a-key")
	assert.NoError(t, err)
	assert.Nil(t, got)

	got, err = f.uc.ValidateByApiKey(ctx, "   ")
	assert.NoError(t, err)
	assert.Nil(t, got)
}

func TestTenantUsecase_ListTenants(t *testing.T) {
	f := newTenantFixture(t)
	ctx := context.Background()

	page := []*entities.Tenant{{ID: uuid.New()}, {ID: uuid.New()}, {ID: uuid.New()}}
	f.tenants.On("List", ctx, 20, 20).Return(page, int64(23), nil)

	tenants, meta, err := f.uc.ListTenants(ctx, 2, 0)
	require.NoError(t, err)
	assert.Len(t, tenants, 3)
	assert.Equal(t, 2, meta.Page)
	assert.Equal(t, 20, meta.Limit)
	assert.Equal(t, int64(23), meta.TotalCount)
	assert.Equal(t, 2, meta.TotalPages)
}

func TestTenantUsecase_UpdateTenant(t *testing.T) {
	f := newTenantFixture(t)
	ctx := context.Background()
	tenant := &entities.Tenant{ID: uuid.New(), CompanyName: "Acme", CompanyCode: "ACME", IsActive: true}

	f.tenants.On("GetByID", ctx, tenant.ID).Return(tenant, nil)
	f.tenants.On("Update", ctx, tenant).Return(nil)

	inactive := false
	got, err := f.uc.UpdateTenant(ctx, tenant.ID, &entities.UpdateTenantInput{CompanyName: "Acme Corp", IsActive: &inactive})
	require.NoError(t, err)
	assert.Equal(t, "Acme Corp", got.CompanyName)
	assert.False(t, got.IsActive)
	assert.Equal(t, []string{entities.EventTenantUpdated, entities.EventTenantDeactivated}, f.uow.eventNames())
}

func TestTenantUsecase_ActivateIsIdempotent(t *testing.T) {
	f := newTenantFixture(t)
	ctx := context.Background()
	tenant := &entities.Tenant{ID: uuid.New(), CompanyName: "Acme", IsActive: true}

	f.tenants.On("GetByID", ctx, tenant.ID).Return(tenant, nil)

	got, err := f.uc.ActivateTenant(ctx, tenant.ID)
	require.NoError(t, err)
	assert.True(t, got.IsActive)
	f.tenants.AssertNotCalled(t, "Update", mock.Anything, mock.Anything)
	assert.Empty(t, f.uow.recorded)

	f.tenants.On("Update", ctx, tenant).Return(nil)
	got, err = f.uc.DeactivateTenant(ctx, tenant.ID)
	require.NoError(t, err)
	assert.False(t, got.IsActive)
	assert.Equal(t, []string{entities.EventTenantDeactivated}, f.uow.eventNames())
}

func TestTenantUsecase_GetTenant_NotFound(t *testing.T) {
	f := newTenantFixture(t)
	ctx := context.Background()
	id := uuid.New()

	f.tenants.On("GetByID", ctx, id).Return(nil, domainerrors.ErrNotFound)

	_, err := f.uc.GetTenant(ctx, id)
	require.ErrorIs(t, err, domainerrors.ErrNotFound)
	appErr, ok := domainerrors.As(err)
	require.True(t, ok)
	assert.Equal(t, "tenant not found", appErr.Message)

	_, err = f.uc.DeactivateTenant(ctx, id)
	assert.ErrorIs(t, err, domainerrors.ErrNotFound)
}

func TestTenantUsecase_AddApiKey(t *testing.T) {
	f := newTenantFixture(t)
	ctx := context.Background()
	tenant := &entities.Tenant{ID: uuid.New(), CompanyName: "Acme", IsActive: true}

	f.tenants.On("GetByID", ctx, tenant.ID).Return(tenant, nil)
	f.apiKeys.On("Create", ctx, mock.AnythingOfType("*entities.ApiKey")).Return(nil)

	key, err := f.uc.AddApiKey(ctx, tenant.ID, &entities.CreateApiKeyInput{ApiKey: "manual-key-value", Description: "ci"})
	require.NoError(t, err)
	assert.Equal(t, tenant.ID, key.TenantID)
	assert.Equal(t, "manual", key.KeyPrefix)
	assert.Equal(t, f.protector.Hash("manual-key-value"), key.KeyHash)
	assert.Equal(t, []string{entities.EventApiKeyAdded}, f.uow.eventNames())

	// same value again
	_, err = f.uc.AddApiKey(ctx, tenant.ID, &entities.CreateApiKeyInput{ApiKey: "manual-key-value"})
	assert.ErrorIs(t, err, domainerrors.ErrInvalidInput)
	f.apiKeys.AssertNumberOfCalls(t, "Create", 1)

	_, err = f.uc.AddApiKey(ctx, tenant.ID, &entities.CreateApiKeyInput{ApiKey: " "})
	assert.ErrorIs(t, err, domainerrors.ErrInvalidInput)
}
