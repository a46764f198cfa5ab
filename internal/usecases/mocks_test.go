package usecases_test

import (
	"context"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
	"payment-broker.backend/internal/domain/entities"
)

// Mock UnitOfWork
type MockUnitOfWork struct {
	mock.Mock
	recorded []entities.DomainEvent
}

func (m *MockUnitOfWork) Do(ctx context.Context, f func(context.Context) error) error {
	m.Called(ctx, f)
	return f(ctx)
}

func (m *MockUnitOfWork) Begin(ctx context.Context) (context.Context, error) {
	args := m.Called(ctx)
	return ctx, args.Error(0)
}

func (m *MockUnitOfWork) Record(_ context.Context, events ...entities.DomainEvent) {
	m.recorded = append(m.recorded, events...)
}

func (m *MockUnitOfWork) Commit(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

func (m *MockUnitOfWork) Rollback(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

func (m *MockUnitOfWork) eventNames() []string {
	names := make([]string, 0, len(m.recorded))
	for _, e := range m.recorded {
		names = append(names, e.EventName())
	}
	return names
}

func newMockUoW() *MockUnitOfWork {
	m := new(MockUnitOfWork)
	m.On("Do", mock.Anything, mock.Anything).Return(nil)
	return m
}

// Mock TenantRepository
type MockTenantRepository struct {
	mock.Mock
}

func (m *MockTenantRepository) Create(ctx context.Context, tenant *entities.Tenant) error {
	args := m.Called(ctx, tenant)
	return args.Error(0)
}

func (m *MockTenantRepository) GetByID(ctx context.Context, id uuid.UUID) (*entities.Tenant, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.Tenant), args.Error(1)
}

func (m *MockTenantRepository) GetByCode(ctx context.Context, companyCode string) (*entities.Tenant, error) {
	args := m.Called(ctx, companyCode)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.Tenant), args.Error(1)
}

func (m *MockTenantRepository) GetByApiKeyHash(ctx context.Context, keyHash string) (*entities.Tenant, error) {
	args := m.Called(ctx, keyHash)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.Tenant), args.Error(1)
}

func (m *MockTenantRepository) ExistsByCode(ctx context.Context, companyCode string) (bool, error) {
	args := m.Called(ctx, companyCode)
	return args.Bool(0), args.Error(1)
}

func (m *MockTenantRepository) Update(ctx context.Context, tenant *entities.Tenant) error {
	args := m.Called(ctx, tenant)
	return args.Error(0)
}

func (m *MockTenantRepository) List(ctx context.Context, limit, offset int) ([]*entities.Tenant, int64, error) {
	args := m.Called(ctx, limit, offset)
	if args.Get(0) == nil {
		return nil, 0, args.Error(2)
	}
	return args.Get(0).([]*entities.Tenant), args.Get(1).(int64), args.Error(2)
}

// Mock ApiKeyRepository
type MockApiKeyRepository struct {
	mock.Mock
}

func (m *MockApiKeyRepository) Create(ctx context.Context, apiKey *entities.ApiKey) error {
	args := m.Called(ctx, apiKey)
	return args.Error(0)
}

func (m *MockApiKeyRepository) GetByKeyHash(ctx context.Context, keyHash string) (*entities.ApiKey, error) {
	args := m.Called(ctx, keyHash)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.ApiKey), args.Error(1)
}

func (m *MockApiKeyRepository) GetByTenantID(ctx context.Context, tenantID uuid.UUID) (*entities.ApiKey, error) {
	args := m.Called(ctx, tenantID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.ApiKey), args.Error(1)
}

func (m *MockApiKeyRepository) Update(ctx context.Context, apiKey *entities.ApiKey) error {
	args := m.Called(ctx, apiKey)
	return args.Error(0)
}

// Mock TerminalRepository
type MockTerminalRepository struct {
	mock.Mock
}

func (m *MockTerminalRepository) Create(ctx context.Context, terminal *entities.Terminal) error {
	args := m.Called(ctx, terminal)
	return args.Error(0)
}

func (m *MockTerminalRepository) GetByID(ctx context.Context, id uuid.UUID) (*entities.Terminal, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.Terminal), args.Error(1)
}

func (m *MockTerminalRepository) GetByTenantID(ctx context.Context, tenantID uuid.UUID) (*entities.Terminal, error) {
	args := m.Called(ctx, tenantID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.Terminal), args.Error(1)
}

func (m *MockTerminalRepository) GetBySecretHash(ctx context.Context, secretHash string) (*entities.Terminal, error) {
	args := m.Called(ctx, secretHash)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.Terminal), args.Error(1)
}

func (m *MockTerminalRepository) ExistsByTenantID(ctx context.Context, tenantID uuid.UUID) (bool, error) {
	args := m.Called(ctx, tenantID)
	return args.Bool(0), args.Error(1)
}

func (m *MockTerminalRepository) Update(ctx context.Context, terminal *entities.Terminal) error {
	args := m.Called(ctx, terminal)
	return args.Error(0)
}

// Mock TransactionLogRepository
type MockTransactionLogRepository struct {
	mock.Mock
}

func (m *MockTransactionLogRepository) CreateRequest(ctx context.Context, log *entities.TransactionRequestLog) error {
	args := m.Called(ctx, log)
	return args.Error(0)
}

func (m *MockTransactionLogRepository) CreateResponse(ctx context.Context, log *entities.TransactionResponseLog) error {
	args := m.Called(ctx, log)
	return args.Error(0)
}

func (m *MockTransactionLogRepository) GetRequestByID(ctx context.Context, id uuid.UUID) (*entities.TransactionRequestLog, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.TransactionRequestLog), args.Error(1)
}

func (m *MockTransactionLogRepository) GetResponsesByRequestID(ctx context.Context, requestID uuid.UUID) ([]*entities.TransactionResponseLog, error) {
	args := m.Called(ctx, requestID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*entities.TransactionResponseLog), args.Error(1)
}

func (m *MockTransactionLogRepository) ListRequestsByTenant(ctx context.Context, tenantID uuid.UUID, limit, offset int) ([]*entities.TransactionRequestLog, int64, error) {
	args := m.Called(ctx, tenantID, limit, offset)
	if args.Get(0) == nil {
		return nil, 0, args.Error(2)
	}
	return args.Get(0).([]*entities.TransactionRequestLog), args.Get(1).(int64), args.Error(2)
}

// Mock SecretVault
type MockSecretVault struct {
	mock.Mock
}

func (m *MockSecretVault) Get(ctx context.Context, in entities.GetSecretInput) (*entities.Secret, error) {
	args := m.Called(ctx, in)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.Secret), args.Error(1)
}

func (m *MockSecretVault) Create(ctx context.Context, in entities.CreateSecretInput) (*entities.Secret, error) {
	args := m.Called(ctx, in)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.Secret), args.Error(1)
}

func (m *MockSecretVault) Update(ctx context.Context, in entities.UpdateSecretInput) (*entities.Secret, error) {
	args := m.Called(ctx, in)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.Secret), args.Error(1)
}

func (m *MockSecretVault) List(ctx context.Context, in entities.ListSecretsInput) (*entities.SecretList, error) {
	args := m.Called(ctx, in)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.SecretList), args.Error(1)
}

// Mock PaymentGateway
type MockPaymentGateway struct {
	mock.Mock
}

func (m *MockPaymentGateway) AuditPayload(req *entities.TransactionRequest) string {
	return "type=" + string(req.Type)
}

func (m *MockPaymentGateway) AuditQuery(req *entities.QueryRequest) string {
	return "transaction_id=" + req.TransactionID
}

func (m *MockPaymentGateway) Transact(ctx context.Context, securityKey string, req *entities.TransactionRequest) (*entities.TransactionResponse, string, error) {
	args := m.Called(ctx, securityKey, req)
	if args.Get(0) == nil {
		return nil, args.String(1), args.Error(2)
	}
	return args.Get(0).(*entities.TransactionResponse), args.String(1), args.Error(2)
}

func (m *MockPaymentGateway) Query(ctx context.Context, securityKey string, req *entities.QueryRequest) (*entities.QueryResponse, string, error) {
	args := m.Called(ctx, securityKey, req)
	if args.Get(0) == nil {
		return nil, args.String(1), args.Error(2)
	}
	return args.Get(0).(*entities.QueryResponse), args.String(1), args.Error(2)
}
