package repositories

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"payment-broker.backend/internal/domain/entities"
	domainerrors "payment-broker.backend/internal/domain/errors"
)

func TestTerminalRepository_CRUD(t *testing.T) {
	db := newTestDB(t)
	createTenantTables(t, db)
	repo := NewTerminalRepository(db)
	ctx := context.Background()
	tenantID := uuid.New()

	term, _, err := entities.NewTerminal("Front desk", "s3cret", tenantID, prefixHasher{})
	require.NoError(t, err)
	require.NoError(t, repo.Create(ctx, term))

	exists, err := repo.ExistsByTenantID(ctx, tenantID)
	require.NoError(t, err)
	require.True(t, exists)

	byID, err := repo.GetByID(ctx, term.ID)
	require.NoError(t, err)
	require.Equal(t, "enc:s3cret", byID.SecretEncrypted)
	require.False(t, byID.SecretIdentifier.Valid)

	byTenant, err := repo.GetByTenantID(ctx, tenantID)
	require.NoError(t, err)
	require.Equal(t, term.ID, byTenant.ID)

	byHash, err := repo.GetBySecretHash(ctx, "h:s3cret")
	require.NoError(t, err)
	require.Equal(t, term.ID, byHash.ID)

	_, err = byID.AssignSecretIdentifier("arn:aws:secretsmanager:us-east-1:1:secret:t")
	require.NoError(t, err)
	_, err = byID.Update(entities.TerminalUpdate{Name: "Back office", Secret: "rotated"}, prefixHasher{})
	require.NoError(t, err)
	require.NoError(t, repo.Update(ctx, byID))

	got, err := repo.GetByID(ctx, term.ID)
	require.NoError(t, err)
	require.Equal(t, "Back office", got.Name)
	require.Equal(t, "h:rotated", got.SecretHash)
	require.Equal(t, "arn:aws:secretsmanager:us-east-1:1:secret:t", got.SecretIdentifier.String)

	_, err = repo.GetBySecretHash(ctx, "h:s3cret")
	require.ErrorIs(t, err, domainerrors.ErrNotFound)
}

func TestTerminalRepository_OnePerTenantAndUniqueSecret(t *testing.T) {
	db := newTestDB(t)
	createTenantTables(t, db)
	repo := NewTerminalRepository(db)
	ctx := context.Background()
	tenantID := uuid.New()

	first, _, err := entities.NewTerminal("T1", "secret-1", tenantID, prefixHasher{})
	require.NoError(t, err)
	require.NoError(t, repo.Create(ctx, first))

	second, _, err := entities.NewTerminal("T2", "secret-2", tenantID, prefixHasher{})
	require.NoError(t, err)
	require.ErrorIs(t, repo.Create(ctx, second), domainerrors.ErrAlreadyExists)

	sameSecret, _, err := entities.NewTerminal("T3", "secret-1", uuid.New(), prefixHasher{})
	require.NoError(t, err)
	require.ErrorIs(t, repo.Create(ctx, sameSecret), domainerrors.ErrAlreadyExists)
}

func TestTerminalRepository_NotFoundBranches(t *testing.T) {
	db := newTestDB(t)
	createTenantTables(t, db)
	repo := NewTerminalRepository(db)
	ctx := context.Background()

	_, err := repo.GetByID(ctx, uuid.New())
	require.ErrorIs(t, err, domainerrors.ErrNotFound)

	_, err = repo.GetByTenantID(ctx, uuid.New())
	require.ErrorIs(t, err, domainerrors.ErrNotFound)

	exists, err := repo.ExistsByTenantID(ctx, uuid.New())
	require.NoError(t, err)
	require.False(t, exists)

	err = repo.Update(ctx, &entities.Terminal{ID: uuid.New(), Name: "x"})
	require.ErrorIs(t, err, domainerrors.ErrNotFound)
}

func TestApiKeyRepository_CRUD(t *testing.T) {
	db := newTestDB(t)
	createTenantTables(t, db)
	repo := NewApiKeyRepository(db)
	ctx := context.Background()

	key, err := entities.NewApiKey("key-value-000001", "ci", prefixHasher{})
	require.NoError(t, err)
	key.TenantID = uuid.New()
	require.NoError(t, repo.Create(ctx, key))

	byHash, err := repo.GetByKeyHash(ctx, "h:key-value-000001")
	require.NoError(t, err)
	require.Equal(t, key.ID, byHash.ID)
	require.Equal(t, "key-va", byHash.KeyPrefix)

	byTenant, err := repo.GetByTenantID(ctx, key.TenantID)
	require.NoError(t, err)
	require.Equal(t, key.ID, byTenant.ID)

	byTenant.IsActive = false
	byTenant.Description = "revoked"
	require.NoError(t, repo.Update(ctx, byTenant))

	got, err := repo.GetByKeyHash(ctx, "h:key-value-000001")
	require.NoError(t, err)
	require.False(t, got.IsActive)
	require.Equal(t, "revoked", got.Description)

	dup, err := entities.NewApiKey("key-value-000001", "dup", prefixHasher{})
	require.NoError(t, err)
	dup.TenantID = uuid.New()
	require.ErrorIs(t, repo.Create(ctx, dup), domainerrors.ErrAlreadyExists)

	_, err = repo.GetByKeyHash(ctx, "h:missing")
	require.ErrorIs(t, err, domainerrors.ErrNotFound)
	_, err = repo.GetByTenantID(ctx, uuid.New())
	require.ErrorIs(t, err, domainerrors.ErrNotFound)
	require.ErrorIs(t, repo.Update(ctx, &entities.ApiKey{ID: uuid.New()}), domainerrors.ErrNotFound)
}
