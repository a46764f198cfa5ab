package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"payment-broker.backend/internal/domain/entities"
	"payment-broker.backend/pkg/utils"
)

func doJSON(r http.Handler, method, path string, body interface{}) *httptest.ResponseRecorder {
	var reader io.Reader
	switch b := body.(type) {
	case nil:
	case string:
		reader = bytes.NewBufferString(b)
	default:
		raw, _ := json.Marshal(b)
		reader = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var out map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out), w.Body.String())
	return out
}

func newTestRouter() *gin.Engine {
	gin.SetMode(gin.TestMode)
	return gin.New()
}

type tenantServiceStub struct {
	createFn     func(*entities.CreateTenantInput) (*entities.CreateTenantResponse, error)
	getFn        func(uuid.UUID) (*entities.Tenant, error)
	listFn       func(page, limit int) ([]*entities.Tenant, utils.PaginationMeta, error)
	updateFn     func(uuid.UUID, *entities.UpdateTenantInput) (*entities.Tenant, error)
	activateFn   func(uuid.UUID) (*entities.Tenant, error)
	deactivateFn func(uuid.UUID) (*entities.Tenant, error)
	addKeyFn     func(uuid.UUID, *entities.CreateApiKeyInput) (*entities.ApiKey, error)
}

func (s *tenantServiceStub) CreateTenant(_ context.Context, in *entities.CreateTenantInput) (*entities.CreateTenantResponse, error) {
	return s.createFn(in)
}

func (s *tenantServiceStub) GetTenant(_ context.Context, id uuid.UUID) (*entities.Tenant, error) {
	return s.getFn(id)
}

func (s *tenantServiceStub) ListTenants(_ context.Context, page, limit int) ([]*entities.Tenant, utils.PaginationMeta, error) {
	return s.listFn(page, limit)
}

func (s *tenantServiceStub) UpdateTenant(_ context.Context, id uuid.UUID, in *entities.UpdateTenantInput) (*entities.Tenant, error) {
	return s.updateFn(id, in)
}

func (s *tenantServiceStub) ActivateTenant(_ context.Context, id uuid.UUID) (*entities.Tenant, error) {
	return s.activateFn(id)
}

func (s *tenantServiceStub) DeactivateTenant(_ context.Context, id uuid.UUID) (*entities.Tenant, error) {
	return s.deactivateFn(id)
}

func (s *tenantServiceStub) AddApiKey(_ context.Context, id uuid.UUID, in *entities.CreateApiKeyInput) (*entities.ApiKey, error) {
	return s.addKeyFn(id, in)
}

type terminalServiceStub struct {
	createFn func(*entities.CreateTerminalInput) (*entities.Terminal, error)
	getFn    func(uuid.UUID) (*entities.Terminal, error)
	updateFn func(uuid.UUID, *entities.UpdateTerminalInput) (*entities.Terminal, error)
	lookupFn func(string) (*entities.Terminal, error)
}

func (s *terminalServiceStub) CreateTerminal(_ context.Context, in *entities.CreateTerminalInput) (*entities.Terminal, error) {
	return s.createFn(in)
}

func (s *terminalServiceStub) GetTerminal(_ context.Context, id uuid.UUID) (*entities.Terminal, error) {
	return s.getFn(id)
}

func (s *terminalServiceStub) UpdateTerminal(_ context.Context, id uuid.UUID, in *entities.UpdateTerminalInput) (*entities.Terminal, error) {
	return s.updateFn(id, in)
}

func (s *terminalServiceStub) GetBySecretHash(_ context.Context, secret string) (*entities.Terminal, error) {
	return s.lookupFn(secret)
}

type secretSyncerStub struct {
	terminalID uuid.UUID
	identifier string
	err        error
}

func (s *secretSyncerStub) SyncSecretToTerminal(_ context.Context, terminalID uuid.UUID, identifier string) error {
	s.terminalID = terminalID
	s.identifier = identifier
	return s.err
}

type secretServiceStub struct {
	getFn    func(entities.GetSecretInput, bool) (*entities.Secret, error)
	createFn func(*entities.CreateSecretInput) (*entities.Secret, error)
	updateFn func(*entities.UpdateSecretInput) (*entities.Secret, error)
	listFn   func(entities.ListSecretsInput) (*entities.SecretList, error)
}

func (s *secretServiceStub) GetSecret(_ context.Context, in entities.GetSecretInput, force bool) (*entities.Secret, error) {
	return s.getFn(in, force)
}

func (s *secretServiceStub) CreateSecret(_ context.Context, in *entities.CreateSecretInput) (*entities.Secret, error) {
	return s.createFn(in)
}

func (s *secretServiceStub) UpdateSecret(_ context.Context, in *entities.UpdateSecretInput) (*entities.Secret, error) {
	return s.updateFn(in)
}

func (s *secretServiceStub) ListSecrets(_ context.Context, in entities.ListSecretsInput) (*entities.SecretList, error) {
	return s.listFn(in)
}

type paymentServiceStub struct {
	processFn func(tenant *entities.Tenant, req *entities.TransactionRequest) (*entities.TransactionResult, error)
	queryFn   func(tenant *entities.Tenant, req *entities.QueryRequest) (*entities.QueryResult, error)
	listFn    func(tenantID uuid.UUID, page, limit int) ([]*entities.TransactionRequestLog, utils.PaginationMeta, error)
	getFn     func(tenantID, requestID uuid.UUID) (*entities.TransactionDetail, error)
}

func (s *paymentServiceStub) ProcessPaymentForTenant(_ context.Context, tenant *entities.Tenant, req *entities.TransactionRequest) (*entities.TransactionResult, error) {
	return s.processFn(tenant, req)
}

func (s *paymentServiceStub) QueryTransactionForTenant(_ context.Context, tenant *entities.Tenant, req *entities.QueryRequest) (*entities.QueryResult, error) {
	return s.queryFn(tenant, req)
}

func (s *paymentServiceStub) ListTransactions(_ context.Context, tenantID uuid.UUID, page, limit int) ([]*entities.TransactionRequestLog, utils.PaginationMeta, error) {
	return s.listFn(tenantID, page, limit)
}

func (s *paymentServiceStub) GetTransaction(_ context.Context, tenantID, requestID uuid.UUID) (*entities.TransactionDetail, error) {
	return s.getFn(tenantID, requestID)
}
