package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"payment-broker.backend/internal/domain/entities"
	"payment-broker.backend/internal/interfaces/http/response"
	"payment-broker.backend/internal/usecases"
	"payment-broker.backend/pkg/utils"
)

type tenantService interface {
	CreateTenant(ctx context.Context, input *entities.CreateTenantInput) (*entities.CreateTenantResponse, error)
	GetTenant(ctx context.Context, id uuid.UUID) (*entities.Tenant, error)
	ListTenants(ctx context.Context, page, limit int) ([]*entities.Tenant, utils.PaginationMeta, error)
	UpdateTenant(ctx context.Context, id uuid.UUID, input *entities.UpdateTenantInput) (*entities.Tenant, error)
	ActivateTenant(ctx context.Context, id uuid.UUID) (*entities.Tenant, error)
	DeactivateTenant(ctx context.Context, id uuid.UUID) (*entities.Tenant, error)
	AddApiKey(ctx context.Context, tenantID uuid.UUID, input *entities.CreateApiKeyInput) (*entities.ApiKey, error)
}

// TenantHandler handles tenant administration endpoints
type TenantHandler struct {
	tenantUsecase tenantService
}

// NewTenantHandler creates a new tenant handler
func NewTenantHandler(tenantUsecase *usecases.TenantUsecase) *TenantHandler {
	return &TenantHandler{tenantUsecase: tenantUsecase}
}

// CreateTenant registers a tenant and returns its first API key once
// POST /api/v1/admin/tenants
func (h *TenantHandler) CreateTenant(c *gin.Context) {
	var input entities.CreateTenantInput
	if err := c.ShouldBindJSON(&input); err != nil {
		response.Error(c, bindError(err))
		return
	}

	result, err := h.tenantUsecase.CreateTenant(c.Request.Context(), &input)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusCreated, result)
}

// ListTenants lists tenants
// GET /api/v1/admin/tenants?page=1&limit=20
func (h *TenantHandler) ListTenants(c *gin.Context) {
	params := paginationFromQuery(c)

	tenants, meta, err := h.tenantUsecase.ListTenants(c.Request.Context(), params.Page, params.Limit)
	if err != nil {
		response.Error(c, err)
		return
	}
	if tenants == nil {
		tenants = []*entities.Tenant{}
	}

	response.Paginated(c, tenants, meta)
}

// GetTenant gets a tenant by ID
// GET /api/v1/admin/tenants/:id
func (h *TenantHandler) GetTenant(c *gin.Context) {
	id, err := parseIDParam(c, "id", "invalid tenant id")
	if err != nil {
		response.Error(c, err)
		return
	}

	tenant, err := h.tenantUsecase.GetTenant(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusOK, tenant)
}

// UpdateTenant renames a tenant or toggles its state
// PUT /api/v1/admin/tenants/:id
func (h *TenantHandler) UpdateTenant(c *gin.Context) {
	id, err := parseIDParam(c, "id", "invalid tenant id")
	if err != nil {
		response.Error(c, err)
		return
	}

	var input entities.UpdateTenantInput
	if err := c.ShouldBindJSON(&input); err != nil {
		response.Error(c, bindError(err))
		return
	}

	tenant, err := h.tenantUsecase.UpdateTenant(c.Request.Context(), id, &input)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusOK, tenant)
}

// ActivateTenant POST /api/v1/admin/tenants/:id/activate
func (h *TenantHandler) ActivateTenant(c *gin.Context) {
	h.toggle(c, h.tenantUsecase.ActivateTenant)
}

// DeactivateTenant POST /api/v1/admin/tenants/:id/deactivate
func (h *TenantHandler) DeactivateTenant(c *gin.Context) {
	h.toggle(c, h.tenantUsecase.DeactivateTenant)
}

func (h *TenantHandler) toggle(c *gin.Context, apply func(context.Context, uuid.UUID) (*entities.Tenant, error)) {
	id, err := parseIDParam(c, "id", "invalid tenant id")
	if err != nil {
		response.Error(c, err)
		return
	}

	tenant, err := apply(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusOK, tenant)
}

// AddApiKey attaches a caller-supplied API key to a tenant without one
// POST /api/v1/admin/tenants/:id/api-keys
func (h *TenantHandler) AddApiKey(c *gin.Context) {
	id, err := parseIDParam(c, "id", "invalid tenant id")
	if err != nil {
		response.Error(c, err)
		return
	}

	var input entities.CreateApiKeyInput
	if err := c.ShouldBindJSON(&input); err != nil {
		response.Error(c, bindError(err))
		return
	}

	key, err := h.tenantUsecase.AddApiKey(c.Request.Context(), id, &input)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusCreated, key)
}
