package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"payment-broker.backend/internal/domain/entities"
	"payment-broker.backend/internal/interfaces/http/response"
	"payment-broker.backend/internal/usecases"
)

type terminalService interface {
	CreateTerminal(ctx context.Context, input *entities.CreateTerminalInput) (*entities.Terminal, error)
	GetTerminal(ctx context.Context, id uuid.UUID) (*entities.Terminal, error)
	UpdateTerminal(ctx context.Context, id uuid.UUID, input *entities.UpdateTerminalInput) (*entities.Terminal, error)
	GetBySecretHash(ctx context.Context, secret string) (*entities.Terminal, error)
}

type secretSyncer interface {
	SyncSecretToTerminal(ctx context.Context, terminalID uuid.UUID, secretIdentifier string) error
}

// TerminalHandler handles terminal administration endpoints
type TerminalHandler struct {
	terminalUsecase terminalService
	secretSync      secretSyncer
}

// NewTerminalHandler creates a new terminal handler
func NewTerminalHandler(terminalUsecase *usecases.TerminalUsecase, secretUsecase *usecases.SecretUsecase) *TerminalHandler {
	return &TerminalHandler{terminalUsecase: terminalUsecase, secretSync: secretUsecase}
}

// CreateTerminal binds a terminal to a tenant
// POST /api/v1/admin/terminals
func (h *TerminalHandler) CreateTerminal(c *gin.Context) {
	var input entities.CreateTerminalInput
	if err := c.ShouldBindJSON(&input); err != nil {
		response.Error(c, bindError(err))
		return
	}

	terminal, err := h.terminalUsecase.CreateTerminal(c.Request.Context(), &input)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusCreated, terminal)
}

// GetTerminal GET /api/v1/admin/terminals/:id
func (h *TerminalHandler) GetTerminal(c *gin.Context) {
	id, err := parseIDParam(c, "id", "invalid terminal id")
	if err != nil {
		response.Error(c, err)
		return
	}

	terminal, err := h.terminalUsecase.GetTerminal(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusOK, terminal)
}

// UpdateTerminal PUT /api/v1/admin/terminals/:id
func (h *TerminalHandler) UpdateTerminal(c *gin.Context) {
	id, err := parseIDParam(c, "id", "invalid terminal id")
	if err != nil {
		response.Error(c, err)
		return
	}

	var input entities.UpdateTerminalInput
	if err := c.ShouldBindJSON(&input); err != nil {
		response.Error(c, bindError(err))
		return
	}

	terminal, err := h.terminalUsecase.UpdateTerminal(c.Request.Context(), id, &input)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusOK, terminal)
}

type lookupTerminalInput struct {
	Secret string `json:"secret" binding:"required"`
}

// LookupTerminal finds the terminal holding a plaintext secret. The secret
// travels in the body so it never lands in access logs.
// POST /api/v1/admin/terminals/lookup
func (h *TerminalHandler) LookupTerminal(c *gin.Context) {
	var input lookupTerminalInput
	if err := c.ShouldBindJSON(&input); err != nil {
		response.Error(c, bindError(err))
		return
	}

	terminal, err := h.terminalUsecase.GetBySecretHash(c.Request.Context(), input.Secret)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusOK, terminal)
}

// SyncSecret points a terminal at a vault secret
// POST /api/v1/admin/terminals/:id/sync-secret
func (h *TerminalHandler) SyncSecret(c *gin.Context) {
	id, err := parseIDParam(c, "id", "invalid terminal id")
	if err != nil {
		response.Error(c, err)
		return
	}

	var input entities.SyncSecretInput
	if err := c.ShouldBindJSON(&input); err != nil {
		response.Error(c, bindError(err))
		return
	}

	if err := h.secretSync.SyncSecretToTerminal(c.Request.Context(), id, input.SecretIdentifier); err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{
		"terminalId":       id,
		"secretIdentifier": input.SecretIdentifier,
	})
}
