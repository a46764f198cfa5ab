package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"payment-broker.backend/internal/domain/entities"
	domainerrors "payment-broker.backend/internal/domain/errors"
	"payment-broker.backend/internal/interfaces/http/middleware"
	"payment-broker.backend/internal/interfaces/http/response"
	"payment-broker.backend/internal/usecases"
	"payment-broker.backend/pkg/utils"
)

type paymentService interface {
	ProcessPaymentForTenant(ctx context.Context, tenant *entities.Tenant, req *entities.TransactionRequest) (*entities.TransactionResult, error)
	QueryTransactionForTenant(ctx context.Context, tenant *entities.Tenant, req *entities.QueryRequest) (*entities.QueryResult, error)
	ListTransactions(ctx context.Context, tenantID uuid.UUID, page, limit int) ([]*entities.TransactionRequestLog, utils.PaginationMeta, error)
	GetTransaction(ctx context.Context, tenantID, requestID uuid.UUID) (*entities.TransactionDetail, error)
}

// PaymentHandler forwards tenant transactions to the gateway
type PaymentHandler struct {
	paymentUsecase paymentService
}

// NewPaymentHandler creates a new payment handler
func NewPaymentHandler(paymentUsecase *usecases.PaymentUsecase) *PaymentHandler {
	return &PaymentHandler{paymentUsecase: paymentUsecase}
}

// ProcessPayment runs a sale, auth, capture, void or refund.
// A declined transaction is still a 200: the decision is in the body.
// POST /api/v1/payments
func (h *PaymentHandler) ProcessPayment(c *gin.Context) {
	tenant, ok := middleware.GetTenant(c)
	if !ok {
		response.Error(c, domainerrors.Unauthorized("tenant not authenticated"))
		return
	}
	var req entities.TransactionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, bindError(err))
		return
	}

	result, err := h.paymentUsecase.ProcessPaymentForTenant(c.Request.Context(), tenant, &req)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusOK, result)
}

// QueryTransactions looks transactions up at the gateway
// POST /api/v1/payments/query
func (h *PaymentHandler) QueryTransactions(c *gin.Context) {
	tenant, ok := middleware.GetTenant(c)
	if !ok {
		response.Error(c, domainerrors.Unauthorized("tenant not authenticated"))
		return
	}
	var req entities.QueryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, bindError(err))
		return
	}

	result, err := h.paymentUsecase.QueryTransactionForTenant(c.Request.Context(), tenant, &req)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusOK, result)
}

// ListTransactions lists the caller's logged requests, newest first
// GET /api/v1/transactions?page=1&limit=20
func (h *PaymentHandler) ListTransactions(c *gin.Context) {
	tenant, ok := middleware.GetTenant(c)
	if !ok {
		response.Error(c, domainerrors.Unauthorized("tenant not authenticated"))
		return
	}
	params := paginationFromQuery(c)

	logs, meta, err := h.paymentUsecase.ListTransactions(c.Request.Context(), tenant.ID, params.Page, params.Limit)
	if err != nil {
		response.Error(c, err)
		return
	}
	if logs == nil {
		logs = []*entities.TransactionRequestLog{}
	}

	response.Paginated(c, logs, meta)
}

// GetTransaction returns one logged request with its responses
// GET /api/v1/transactions/:id
func (h *PaymentHandler) GetTransaction(c *gin.Context) {
	tenant, ok := middleware.GetTenant(c)
	if !ok {
		response.Error(c, domainerrors.Unauthorized("tenant not authenticated"))
		return
	}
	id, err := parseIDParam(c, "id", "invalid transaction id")
	if err != nil {
		response.Error(c, err)
		return
	}

	detail, err := h.paymentUsecase.GetTransaction(c.Request.Context(), tenant.ID, id)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusOK, detail)
}
