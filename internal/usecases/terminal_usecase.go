package usecases

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"payment-broker.backend/internal/domain/entities"
	domainerrors "payment-broker.backend/internal/domain/errors"
	"payment-broker.backend/internal/domain/repositories"
	"payment-broker.backend/pkg/logger"
)

type TerminalUsecase struct {
	terminalRepo repositories.TerminalRepository
	tenantRepo   repositories.TenantRepository
	uow          repositories.UnitOfWork
	protector    entities.SecretProtector
}

func NewTerminalUsecase(
	terminalRepo repositories.TerminalRepository,
	tenantRepo repositories.TenantRepository,
	uow repositories.UnitOfWork,
	protector entities.SecretProtector,
) *TerminalUsecase {
	return &TerminalUsecase{
		terminalRepo: terminalRepo,
		tenantRepo:   tenantRepo,
		uow:          uow,
		protector:    protector,
	}
}

// CreateTerminal binds the only terminal a tenant may have
func (u *TerminalUsecase) CreateTerminal(ctx context.Context, input *entities.CreateTerminalInput) (*entities.Terminal, error) {
	terminal, events, err := entities.NewTerminal(input.Name, input.Secret, input.TenantID, u.protector)
	if err != nil {
		return nil, err
	}

	err = u.uow.Do(ctx, func(txCtx context.Context) error {
		if _, err := u.tenantRepo.GetByID(txCtx, input.TenantID); err != nil {
			return notFoundAs(err, "tenant not found")
		}

		exists, err := u.terminalRepo.ExistsByTenantID(txCtx, input.TenantID)
		if err != nil {
			return err
		}
		if exists {
			return domainerrors.Conflict("tenant already has a terminal")
		}

		if err := u.terminalRepo.Create(txCtx, terminal); err != nil {
			return err
		}
		u.uow.Record(txCtx, events...)
		return nil
	})
	if err != nil {
		return nil, err
	}

	logger.Info(ctx, "Terminal created",
		zap.String("terminal_id", terminal.ID.String()),
		zap.String("tenant_id", terminal.TenantID.String()),
	)
	return terminal, nil
}

func (u *TerminalUsecase) GetTerminal(ctx context.Context, id uuid.UUID) (*entities.Terminal, error) {
	terminal, err := u.terminalRepo.GetByID(ctx, id)
	if err != nil {
		return nil, notFoundAs(err, "terminal not found")
	}
	return terminal, nil
}

// UpdateTerminal applies a partial update; a new secret is re-encrypted
func (u *TerminalUsecase) UpdateTerminal(ctx context.Context, id uuid.UUID, input *entities.UpdateTerminalInput) (*entities.Terminal, error) {
	var terminal *entities.Terminal
	err := u.uow.Do(ctx, func(txCtx context.Context) error {
		t, err := u.terminalRepo.GetByID(txCtx, id)
		if err != nil {
			return notFoundAs(err, "terminal not found")
		}
		terminal = t

		events, err := t.Update(entities.TerminalUpdate{
			Name:     input.Name,
			Secret:   input.Secret,
			IsActive: input.IsActive,
		}, u.protector)
		if err != nil {
			return err
		}
		if len(events) == 0 {
			return nil
		}
		if err := u.terminalRepo.Update(txCtx, t); err != nil {
			return err
		}
		u.uow.Record(txCtx, events...)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return terminal, nil
}

// GetBySecretHash finds the terminal whose secret is secret
func (u *TerminalUsecase) GetBySecretHash(ctx context.Context, secret string) (*entities.Terminal, error) {
	if strings.TrimSpace(secret) == "" {
		return nil, domainerrors.FieldError("secret", "terminal secret is required")
	}
	terminal, err := u.terminalRepo.GetBySecretHash(ctx, u.protector.Hash(secret))
	if err != nil {
		return nil, notFoundAs(err, "terminal not found")
	}
	return terminal, nil
}
