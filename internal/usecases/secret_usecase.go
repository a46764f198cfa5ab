package usecases

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"payment-broker.backend/internal/domain/entities"
	domainerrors "payment-broker.backend/internal/domain/errors"
	"payment-broker.backend/internal/domain/repositories"
	"payment-broker.backend/pkg/logger"
)

// SecretSyncService points terminals at their vault secret
type SecretSyncService struct {
	terminalRepo repositories.TerminalRepository
	uow          repositories.UnitOfWork
}

func NewSecretSyncService(terminalRepo repositories.TerminalRepository, uow repositories.UnitOfWork) *SecretSyncService {
	return &SecretSyncService{terminalRepo: terminalRepo, uow: uow}
}

// SyncSecretToTerminal stores secretIdentifier on the terminal. A missing
// terminal is logged and ignored so the call can be re-driven safely.
func (s *SecretSyncService) SyncSecretToTerminal(ctx context.Context, terminalID uuid.UUID, secretIdentifier string) error {
	return s.uow.Do(ctx, func(txCtx context.Context) error {
		terminal, err := s.terminalRepo.GetByID(txCtx, terminalID)
		if errors.Is(err, domainerrors.ErrNotFound) {
			logger.Warn(ctx, "Secret sync skipped, terminal not found",
				zap.String("terminal_id", terminalID.String()))
			return nil
		}
		if err != nil {
			return err
		}

		events, err := terminal.AssignSecretIdentifier(secretIdentifier)
		if err != nil {
			return err
		}
		if len(events) == 0 {
			return nil
		}
		if err := s.terminalRepo.Update(txCtx, terminal); err != nil {
			return err
		}
		s.uow.Record(txCtx, events...)
		return nil
	})
}

// SecretUsecase fronts the vault with the cache and keeps terminals in sync
type SecretUsecase struct {
	vault SecretVault
	cache SecretCache
	sync  *SecretSyncService
}

func NewSecretUsecase(vault SecretVault, cache SecretCache, sync *SecretSyncService) *SecretUsecase {
	return &SecretUsecase{vault: vault, cache: cache, sync: sync}
}

// GetSecret reads through the cache; forceRefresh bypasses a live entry
func (u *SecretUsecase) GetSecret(ctx context.Context, input entities.GetSecretInput, forceRefresh bool) (*entities.Secret, error) {
	input.SecretID = strings.TrimSpace(input.SecretID)
	if input.SecretID == "" {
		return nil, domainerrors.FieldError("secretId", "secret id is required")
	}
	return u.cache.GetOrFetch(ctx, input.SecretID, input.VersionID, input.VersionStage,
		func(fetchCtx context.Context) (*entities.Secret, error) {
			return u.vault.Get(fetchCtx, input)
		}, forceRefresh)
}

// CreateSecret stores a new secret and, when a terminal is named, links it
func (u *SecretUsecase) CreateSecret(ctx context.Context, input *entities.CreateSecretInput) (*entities.Secret, error) {
	secret, err := u.vault.Create(ctx, *input)
	if err != nil {
		return nil, err
	}
	if err := u.syncTerminal(ctx, input.TerminalID, secret); err != nil {
		return secret, err
	}
	return secret, nil
}

// UpdateSecret writes a new version. Cached copies are dropped before it
// returns.
func (u *SecretUsecase) UpdateSecret(ctx context.Context, input *entities.UpdateSecretInput) (*entities.Secret, error) {
	secret, err := u.vault.Update(ctx, *input)
	if err != nil {
		return nil, err
	}

	u.cache.Invalidate(input.SecretID)
	if secret.ARN != "" && secret.ARN != input.SecretID {
		u.cache.Invalidate(secret.ARN)
	}
	if secret.Name != "" && secret.Name != input.SecretID {
		u.cache.Invalidate(secret.Name)
	}

	if err := u.syncTerminal(ctx, input.TerminalID, secret); err != nil {
		return secret, err
	}
	return secret, nil
}

func (u *SecretUsecase) ListSecrets(ctx context.Context, input entities.ListSecretsInput) (*entities.SecretList, error) {
	return u.vault.List(ctx, input)
}

// SyncSecretToTerminal re-drives a link that failed after a vault write
func (u *SecretUsecase) SyncSecretToTerminal(ctx context.Context, terminalID uuid.UUID, secretIdentifier string) error {
	return u.sync.SyncSecretToTerminal(ctx, terminalID, secretIdentifier)
}

func (u *SecretUsecase) syncTerminal(ctx context.Context, terminalID *uuid.UUID, secret *entities.Secret) error {
	if terminalID == nil || u.sync == nil {
		return nil
	}
	identifier := secret.ARN
	if identifier == "" {
		identifier = secret.Name
	}
	if err := u.sync.SyncSecretToTerminal(ctx, *terminalID, identifier); err != nil {
		logger.Warn(ctx, "Vault write succeeded but terminal sync failed",
			zap.String("terminal_id", terminalID.String()),
			zap.String("secret_identifier", identifier),
			zap.Error(err),
		)
		return domainerrors.Consistency("secret stored but terminal was not updated", err)
	}
	return nil
}
