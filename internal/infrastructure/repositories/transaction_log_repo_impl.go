package repositories

import (
	"context"
	"encoding/json"

	"github.com/google/uuid"
	"github.com/volatiletech/null/v8"
	"gorm.io/datatypes"
	"gorm.io/gorm"
	"payment-broker.backend/internal/domain/entities"
	domainerrors "payment-broker.backend/internal/domain/errors"
	"payment-broker.backend/internal/infrastructure/models"
)

// TransactionLogRepository stores request and response logs of gateway calls
type TransactionLogRepository struct {
	db *gorm.DB
}

// NewTransactionLogRepository creates a new transaction log repository
func NewTransactionLogRepository(db *gorm.DB) *TransactionLogRepository {
	return &TransactionLogRepository{db: db}
}

// CreateRequest stores a sanitized request log
func (r *TransactionLogRepository) CreateRequest(ctx context.Context, log *entities.TransactionRequestLog) error {
	payload := datatypes.JSON(log.Payload)
	if len(payload) == 0 {
		payload = datatypes.JSON("{}")
	}
	m := &models.TransactionRequestLog{
		ID:         log.ID,
		TenantID:   log.TenantID,
		Type:       string(log.Type),
		Payload:    payload,
		OrderID:    log.OrderID,
		RawContent: log.RawContent,
		CreatedAt:  log.CreatedAt,
	}
	if err := GetDB(ctx, r.db).Create(m).Error; err != nil {
		return translateError(err, "request log already exists")
	}
	return nil
}

// CreateResponse stores a response log; its request log must exist
func (r *TransactionLogRepository) CreateResponse(ctx context.Context, log *entities.TransactionResponseLog) error {
	db := GetDB(ctx, r.db)

	var count int64
	if err := db.Model(&models.TransactionRequestLog{}).Where("id = ?", log.RequestID).Count(&count).Error; err != nil {
		return err
	}
	if count == 0 {
		return domainerrors.NotFound("transaction request log not found")
	}

	m := &models.TransactionResponseLog{
		ID:            log.ID,
		RequestID:     log.RequestID,
		Status:        log.Status,
		Message:       log.Message,
		TransactionID: log.TransactionID.Ptr(),
		RawResponse:   log.RawResponse,
		CreatedAt:     log.CreatedAt,
	}
	if err := db.Omit("Request").Create(m).Error; err != nil {
		return translateError(err, "response log already exists")
	}
	return nil
}

// GetRequestByID gets a request log by ID
func (r *TransactionLogRepository) GetRequestByID(ctx context.Context, id uuid.UUID) (*entities.TransactionRequestLog, error) {
	var m models.TransactionRequestLog
	if err := GetDB(ctx, r.db).Where("id = ?", id).First(&m).Error; err != nil {
		return nil, translateError(err, "")
	}
	return toRequestLogEntity(&m), nil
}

// GetResponsesByRequestID lists the replies recorded for a request log
func (r *TransactionLogRepository) GetResponsesByRequestID(ctx context.Context, requestID uuid.UUID) ([]*entities.TransactionResponseLog, error) {
	var rows []models.TransactionResponseLog
	if err := GetDB(ctx, r.db).Where("request_id = ?", requestID).Order("created_at ASC").Find(&rows).Error; err != nil {
		return nil, err
	}
	out := make([]*entities.TransactionResponseLog, 0, len(rows))
	for i := range rows {
		m := rows[i]
		out = append(out, &entities.TransactionResponseLog{
			ID:            m.ID,
			RequestID:     m.RequestID,
			Status:        m.Status,
			Message:       m.Message,
			TransactionID: null.StringFromPtr(m.TransactionID),
			RawResponse:   m.RawResponse,
			CreatedAt:     m.CreatedAt,
		})
	}
	return out, nil
}

// ListRequestsByTenant returns a page of a tenant's request logs, newest first
func (r *TransactionLogRepository) ListRequestsByTenant(ctx context.Context, tenantID uuid.UUID, limit, offset int) ([]*entities.TransactionRequestLog, int64, error) {
	base := GetDB(ctx, r.db).Model(&models.TransactionRequestLog{}).Where("tenant_id = ?", tenantID)

	var total int64
	if err := base.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var rows []models.TransactionRequestLog
	q := applyPage(GetDB(ctx, r.db).Where("tenant_id = ?", tenantID).Order("created_at DESC"), limit, offset)
	if err := q.Find(&rows).Error; err != nil {
		return nil, 0, err
	}

	out := make([]*entities.TransactionRequestLog, 0, len(rows))
	for i := range rows {
		out = append(out, toRequestLogEntity(&rows[i]))
	}
	return out, total, nil
}

func toRequestLogEntity(m *models.TransactionRequestLog) *entities.TransactionRequestLog {
	return &entities.TransactionRequestLog{
		ID:         m.ID,
		TenantID:   m.TenantID,
		Type:       entities.TransactionType(m.Type),
		Payload:    json.RawMessage(m.Payload),
		OrderID:    m.OrderID,
		RawContent: m.RawContent,
		CreatedAt:  m.CreatedAt,
	}
}
