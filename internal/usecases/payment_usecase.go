package usecases

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"payment-broker.backend/internal/domain/entities"
	domainerrors "payment-broker.backend/internal/domain/errors"
	"payment-broker.backend/internal/domain/repositories"
	"payment-broker.backend/pkg/logger"
	"payment-broker.backend/pkg/utils"
)

// PaymentUsecase brokers tenant calls to the card gateway. Every call is
// logged before it is sent and its outcome is logged after.
type PaymentUsecase struct {
	tenantRepo repositories.TenantRepository
	logRepo    repositories.TransactionLogRepository
	uow        repositories.UnitOfWork
	protector  Protector
	secrets    *SecretUsecase
	gateway    PaymentGateway
}

func NewPaymentUsecase(
	tenantRepo repositories.TenantRepository,
	logRepo repositories.TransactionLogRepository,
	uow repositories.UnitOfWork,
	protector Protector,
	secrets *SecretUsecase,
	gateway PaymentGateway,
) *PaymentUsecase {
	return &PaymentUsecase{
		tenantRepo: tenantRepo,
		logRepo:    logRepo,
		uow:        uow,
		protector:  protector,
		secrets:    secrets,
		gateway:    gateway,
	}
}

// ProcessPayment runs a sale, auth, capture, void or refund for the tenant owning apiKey
func (u *PaymentUsecase) ProcessPayment(ctx context.Context, apiKey string, req *entities.TransactionRequest) (*entities.TransactionResult, error) {
	tenant, err := u.Authorize(ctx, apiKey)
	if err != nil {
		return nil, err
	}
	return u.processPayment(ctx, tenant, req)
}

// ProcessPaymentForTenant is ProcessPayment for a tenant the API-key
// middleware already loaded. The status checks of Authorize still apply.
func (u *PaymentUsecase) ProcessPaymentForTenant(ctx context.Context, tenant *entities.Tenant, req *entities.TransactionRequest) (*entities.TransactionResult, error) {
	if err := CheckTenant(tenant); err != nil {
		return nil, err
	}
	return u.processPayment(ctx, tenant, req)
}

func (u *PaymentUsecase) processPayment(ctx context.Context, tenant *entities.Tenant, req *entities.TransactionRequest) (*entities.TransactionResult, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	securityKey, err := u.securityKey(ctx, tenant.Terminal)
	if err != nil {
		return nil, err
	}

	payload, err := json.Marshal(req.SanitizeForLogging())
	if err != nil {
		return nil, domainerrors.InternalError(err)
	}
	reqLog := entities.NewTransactionRequestLog(tenant.ID, req.Type, req.OrderID, payload, u.gateway.AuditPayload(req))
	if err := u.logRequest(ctx, reqLog); err != nil {
		return nil, err
	}

	resp, raw, callErr := u.gateway.Transact(ctx, securityKey, req)
	if callErr != nil {
		_ = u.logResponse(ctx, reqLog, entities.NewTransactionResponseLog(reqLog.ID, entities.ResponseStatusError, callErr.Error(), "", raw))
		return nil, callErr
	}

	respLog := entities.NewTransactionResponseLog(reqLog.ID, resp.Response, resp.ResponseText, resp.TransactionID, raw)
	if err := u.logResponse(ctx, reqLog, respLog); err != nil {
		return nil, err
	}

	logger.Info(ctx, "Gateway transaction completed",
		zap.String("request_log_id", reqLog.ID.String()),
		zap.String("type", string(req.Type)),
		zap.String("response", resp.Response),
	)
	return &entities.TransactionResult{RequestID: reqLog.ID, Response: resp}, nil
}

// QueryTransaction looks transactions up at the gateway for the tenant owning apiKey
func (u *PaymentUsecase) QueryTransaction(ctx context.Context, apiKey string, req *entities.QueryRequest) (*entities.QueryResult, error) {
	tenant, err := u.Authorize(ctx, apiKey)
	if err != nil {
		return nil, err
	}
	return u.queryTransaction(ctx, tenant, req)
}

// QueryTransactionForTenant is QueryTransaction for an already loaded tenant
func (u *PaymentUsecase) QueryTransactionForTenant(ctx context.Context, tenant *entities.Tenant, req *entities.QueryRequest) (*entities.QueryResult, error) {
	if err := CheckTenant(tenant); err != nil {
		return nil, err
	}
	return u.queryTransaction(ctx, tenant, req)
}

func (u *PaymentUsecase) queryTransaction(ctx context.Context, tenant *entities.Tenant, req *entities.QueryRequest) (*entities.QueryResult, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	securityKey, err := u.securityKey(ctx, tenant.Terminal)
	if err != nil {
		return nil, err
	}

	payload, err := json.Marshal(req)
	if err != nil {
		return nil, domainerrors.InternalError(err)
	}
	reqLog := entities.NewTransactionRequestLog(tenant.ID, entities.TransactionTypeQuery, req.OrderID, payload, u.gateway.AuditQuery(req))
	if err := u.logRequest(ctx, reqLog); err != nil {
		return nil, err
	}

	resp, raw, callErr := u.gateway.Query(ctx, securityKey, req)
	if callErr != nil {
		message := callErr.Error()
		if resp != nil && resp.ErrorResponse != "" {
			message = resp.ErrorResponse
		}
		_ = u.logResponse(ctx, reqLog, entities.NewTransactionResponseLog(reqLog.ID, entities.ResponseStatusError, message, "", raw))
		return nil, callErr
	}

	respLog := entities.NewTransactionResponseLog(reqLog.ID, entities.ResponseStatusOK,
		fmt.Sprintf("%d transactions", len(resp.Transactions)), req.TransactionID, raw)
	if err := u.logResponse(ctx, reqLog, respLog); err != nil {
		return nil, err
	}
	return &entities.QueryResult{RequestID: reqLog.ID, Response: resp}, nil
}

// ListTransactions pages through a tenant's request logs
func (u *PaymentUsecase) ListTransactions(ctx context.Context, tenantID uuid.UUID, page, limit int) ([]*entities.TransactionRequestLog, utils.PaginationMeta, error) {
	params := utils.GetPaginationParams(page, limit)
	logs, total, err := u.logRepo.ListRequestsByTenant(ctx, tenantID, params.Limit, params.CalculateOffset())
	if err != nil {
		return nil, utils.PaginationMeta{}, err
	}
	return logs, utils.CalculateMeta(total, params.Page, params.Limit), nil
}

// GetTransaction returns a request log of tenantID with its replies
func (u *PaymentUsecase) GetTransaction(ctx context.Context, tenantID, requestID uuid.UUID) (*entities.TransactionDetail, error) {
	reqLog, err := u.logRepo.GetRequestByID(ctx, requestID)
	if err != nil {
		return nil, notFoundAs(err, "transaction not found")
	}
	if reqLog.TenantID != tenantID {
		return nil, domainerrors.NotFound("transaction not found")
	}
	responses, err := u.logRepo.GetResponsesByRequestID(ctx, requestID)
	if err != nil {
		return nil, err
	}
	return &entities.TransactionDetail{Request: reqLog, Responses: responses}, nil
}

// Authorize resolves an active tenant with an active key and terminal.
// Every failure is reported as unauthorized.
func (u *PaymentUsecase) Authorize(ctx context.Context, apiKey string) (*entities.Tenant, error) {
	apiKey = strings.TrimSpace(apiKey)
	if apiKey == "" {
		return nil, domainerrors.Unauthorized("api key is required")
	}

	tenant, err := u.tenantRepo.GetByApiKeyHash(ctx, u.protector.Hash(apiKey))
	if errors.Is(err, domainerrors.ErrNotFound) {
		return nil, domainerrors.Unauthorized("invalid api key")
	}
	if err != nil {
		return nil, err
	}
	if err := CheckTenant(tenant); err != nil {
		return nil, err
	}
	return tenant, nil
}

// CheckTenant reports whether a loaded tenant may transact: it must be
// active and hold an active key and an active terminal
func CheckTenant(tenant *entities.Tenant) error {
	switch {
	case tenant == nil:
		return domainerrors.Unauthorized("tenant not authenticated")
	case !tenant.IsActive:
		return domainerrors.Unauthorized("tenant is inactive")
	case tenant.ApiKey == nil || !tenant.ApiKey.IsActive:
		return domainerrors.Unauthorized("api key is inactive")
	case tenant.Terminal == nil:
		return domainerrors.Unauthorized("no terminal bound to tenant")
	case !tenant.Terminal.IsActive:
		return domainerrors.Unauthorized("terminal is inactive")
	}
	return nil
}

func (u *PaymentUsecase) securityKey(ctx context.Context, terminal *entities.Terminal) (string, error) {
	if terminal.SecretIdentifier.Valid && u.secrets != nil {
		secret, err := u.secrets.GetSecret(ctx, entities.GetSecretInput{SecretID: terminal.SecretIdentifier.String}, false)
		if err != nil {
			return "", err
		}
		if secret == nil || secret.SecretString == "" {
			return "", domainerrors.InternalError(errors.New("vault returned an empty security key"))
		}
		return secret.SecretString, nil
	}

	key, err := u.protector.Decrypt(terminal.SecretEncrypted)
	if err != nil {
		return "", domainerrors.InternalError(fmt.Errorf("decrypt terminal secret: %w", err))
	}
	return key, nil
}

func (u *PaymentUsecase) logRequest(ctx context.Context, reqLog *entities.TransactionRequestLog) error {
	return u.uow.Do(ctx, func(txCtx context.Context) error {
		if err := u.logRepo.CreateRequest(txCtx, reqLog); err != nil {
			return err
		}
		u.uow.Record(txCtx, entities.NewTransactionRequestedEvent(reqLog))
		return nil
	})
}

// logResponse survives cancellation of ctx so a failed call is still recorded
func (u *PaymentUsecase) logResponse(ctx context.Context, reqLog *entities.TransactionRequestLog, respLog *entities.TransactionResponseLog) error {
	err := u.uow.Do(context.WithoutCancel(ctx), func(txCtx context.Context) error {
		if err := u.logRepo.CreateResponse(txCtx, respLog); err != nil {
			return err
		}
		u.uow.Record(txCtx, entities.NewTransactionCompletedEvent(reqLog, respLog))
		return nil
	})
	if err != nil {
		logger.Error(ctx, "Failed to write transaction response log",
			zap.String("request_log_id", reqLog.ID.String()),
			zap.Error(err),
		)
	}
	return err
}
