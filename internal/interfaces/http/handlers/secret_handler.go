package handlers

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"payment-broker.backend/internal/domain/entities"
	domainerrors "payment-broker.backend/internal/domain/errors"
	"payment-broker.backend/internal/interfaces/http/response"
	"payment-broker.backend/internal/usecases"
)

type secretService interface {
	GetSecret(ctx context.Context, input entities.GetSecretInput, forceRefresh bool) (*entities.Secret, error)
	CreateSecret(ctx context.Context, input *entities.CreateSecretInput) (*entities.Secret, error)
	UpdateSecret(ctx context.Context, input *entities.UpdateSecretInput) (*entities.Secret, error)
	ListSecrets(ctx context.Context, input entities.ListSecretsInput) (*entities.SecretList, error)
}

// SecretHandler exposes the secret vault to administrators
type SecretHandler struct {
	secretUsecase secretService
}

// NewSecretHandler creates a new secret handler
func NewSecretHandler(secretUsecase *usecases.SecretUsecase) *SecretHandler {
	return &SecretHandler{secretUsecase: secretUsecase}
}

// GetSecret GET /api/v1/admin/secrets/:id?versionId=&versionStage=&forceRefresh=true
func (h *SecretHandler) GetSecret(c *gin.Context) {
	var input entities.GetSecretInput
	if err := c.ShouldBindQuery(&input); err != nil {
		response.Error(c, bindError(err))
		return
	}
	input.SecretID = c.Param("id")
	forceRefresh, _ := strconv.ParseBool(c.Query("forceRefresh"))

	secret, err := h.secretUsecase.GetSecret(c.Request.Context(), input, forceRefresh)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusOK, secret)
}

// ListSecrets GET /api/v1/admin/secrets?maxResults=&nextToken=
func (h *SecretHandler) ListSecrets(c *gin.Context) {
	var input entities.ListSecretsInput
	if err := c.ShouldBindQuery(&input); err != nil {
		response.Error(c, bindError(err))
		return
	}

	list, err := h.secretUsecase.ListSecrets(c.Request.Context(), input)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusOK, list)
}

// CreateSecret POST /api/v1/admin/secrets
func (h *SecretHandler) CreateSecret(c *gin.Context) {
	var input entities.CreateSecretInput
	if err := c.ShouldBindJSON(&input); err != nil {
		response.Error(c, bindError(err))
		return
	}

	secret, err := h.secretUsecase.CreateSecret(c.Request.Context(), &input)
	if err != nil {
		respondWrite(c, secret, err)
		return
	}

	response.Success(c, http.StatusCreated, secret)
}

// UpdateSecret PUT /api/v1/admin/secrets/:id
func (h *SecretHandler) UpdateSecret(c *gin.Context) {
	var input entities.UpdateSecretInput
	if err := c.ShouldBindJSON(&input); err != nil {
		response.Error(c, bindError(err))
		return
	}
	input.SecretID = c.Param("id")

	secret, err := h.secretUsecase.UpdateSecret(c.Request.Context(), &input)
	if err != nil {
		respondWrite(c, secret, err)
		return
	}

	response.Success(c, http.StatusOK, secret)
}

// respondWrite reports a failed write. When the vault accepted the secret
// but the terminal link failed, the stored secret is returned alongside the
// error so the caller can re-drive the link.
func respondWrite(c *gin.Context, secret *entities.Secret, err error) {
	appErr, ok := domainerrors.As(err)
	if secret == nil || !ok || !errors.Is(err, domainerrors.ErrInconsistent) {
		response.Error(c, err)
		return
	}

	secret.SecretString = ""
	c.JSON(appErr.Status, gin.H{
		"code":    appErr.Code,
		"message": appErr.Message,
		"error":   appErr.Message,
		"secret":  secret,
	})
}
