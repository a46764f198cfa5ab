package usecases_test

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"payment-broker.backend/internal/domain/entities"
	domainerrors "payment-broker.backend/internal/domain/errors"
	"payment-broker.backend/internal/infrastructure/secrets"
	"payment-broker.backend/internal/usecases"
)

const secretARN = "arn:aws:secretsmanager:us-east-1:000000000000:secret:terminal-key"

type secretFixture struct {
	vault     *MockSecretVault
	cache     *secrets.Cache
	terminals *MockTerminalRepository
	uow       *MockUnitOfWork
	uc        *usecases.SecretUsecase
}

func newSecretFixture() *secretFixture {
	f := &secretFixture{
		vault:     new(MockSecretVault),
		cache:     secrets.NewCache(secrets.DefaultCacheTTL, nil),
		terminals: new(MockTerminalRepository),
		uow:       newMockUoW(),
	}
	sync := usecases.NewSecretSyncService(f.terminals, f.uow)
	f.uc = usecases.NewSecretUsecase(f.vault, f.cache, sync)
	return f
}

func TestSecretSyncService_LinksTerminal(t *testing.T) {
	terminals := new(MockTerminalRepository)
	uow := newMockUoW()
	svc := usecases.NewSecretSyncService(terminals, uow)
	ctx := context.Background()

	term := &entities.Terminal{ID: uuid.New(), TenantID: uuid.New(), Name: "T1", IsActive: true}
	terminals.On("GetByID", ctx, term.ID).Return(term, nil)
	terminals.On("Update", ctx, term).Return(nil)

	require.NoError(t, svc.SyncSecretToTerminal(ctx, term.ID, secretARN))
	assert.Equal(t, secretARN, term.SecretIdentifier.String)
	assert.Equal(t, []string{entities.EventTerminalSecretLinked}, uow.eventNames())

	// already linked
	require.NoError(t, svc.SyncSecretToTerminal(ctx, term.ID, secretARN))
	terminals.AssertNumberOfCalls(t, "Update", 1)
}

func TestSecretSyncService_MissingTerminalIsNoop(t *testing.T) {
	terminals := new(MockTerminalRepository)
	uow := newMockUoW()
	svc := usecases.NewSecretSyncService(terminals, uow)
	ctx := context.Background()
	id := uuid.New()

	terminals.On("GetByID", ctx, id).Return(nil, domainerrors.ErrNotFound)

	assert.NoError(t, svc.SyncSecretToTerminal(ctx, id, secretARN))
	terminals.AssertNotCalled(t, "Update", mock.Anything, mock.Anything)
	assert.Empty(t, uow.recorded)
}

func TestSecretSyncService_PropagatesLookupErrors(t *testing.T) {
	terminals := new(MockTerminalRepository)
	svc := usecases.NewSecretSyncService(terminals, newMockUoW())
	ctx := context.Background()
	id := uuid.New()

	terminals.On("GetByID", ctx, id).Return(nil, errors.New("db down"))
	assert.EqualError(t, svc.SyncSecretToTerminal(ctx, id, secretARN), "db down")
}

func TestSecretUsecase_GetSecret_UsesCache(t *testing.T) {
	f := newSecretFixture()
	ctx := context.Background()
	in := entities.GetSecretInput{SecretID: secretARN}

	f.vault.On("Get", ctx, in).Return(&entities.Secret{ARN: secretARN, SecretString: "v1"}, nil).Once()

	got, err := f.uc.GetSecret(ctx, in, false)
	require.NoError(t, err)
	assert.Equal(t, "v1", got.SecretString)

	got, err = f.uc.GetSecret(ctx, in, false)
	require.NoError(t, err)
	assert.Equal(t, "v1", got.SecretString)
	f.vault.AssertNumberOfCalls(t, "Get", 1)

	f.vault.On("Get", ctx, in).Return(&entities.Secret{ARN: secretARN, SecretString: "v2"}, nil).Once()
	got, err = f.uc.GetSecret(ctx, in, true)
	require.NoError(t, err)
	assert.Equal(t, "v2", got.SecretString)

	_, err = f.uc.GetSecret(ctx, entities.GetSecretInput{SecretID: " "}, false)
	assert.ErrorIs(t, err, domainerrors.ErrInvalidInput)
}

func TestSecretUsecase_UpdateSecret_InvalidatesAndSyncs(t *testing.T) {
	f := newSecretFixture()
	ctx := context.Background()
	get := entities.GetSecretInput{SecretID: secretARN}

	f.vault.On("Get", ctx, get).Return(&entities.Secret{ARN: secretARN, SecretString: "old"}, nil).Once()
	_, err := f.uc.GetSecret(ctx, get, false)
	require.NoError(t, err)
	require.Equal(t, 1, f.cache.Len())

	term := &entities.Terminal{ID: uuid.New(), TenantID: uuid.New(), IsActive: true}
	f.terminals.On("GetByID", ctx, term.ID).Return(term, nil)
	f.terminals.On("Update", ctx, term).Return(nil)

	update := entities.UpdateSecretInput{SecretID: secretARN, SecretString: "new", TerminalID: &term.ID}
	f.vault.On("Update", ctx, update).Return(&entities.Secret{ARN: secretARN, Name: "terminal-key", VersionID: "v2"}, nil)

	secret, err := f.uc.UpdateSecret(ctx, &update)
	require.NoError(t, err)
	assert.Equal(t, "v2", secret.VersionID)
	assert.Zero(t, f.cache.Len(), "cached copies are dropped before returning")
	assert.Equal(t, secretARN, term.SecretIdentifier.String)

	f.vault.On("Get", ctx, get).Return(&entities.Secret{ARN: secretARN, SecretString: "new"}, nil).Once()
	got, err := f.uc.GetSecret(ctx, get, false)
	require.NoError(t, err)
	assert.Equal(t, "new", got.SecretString)
}

func TestSecretUsecase_CreateSecret_SyncFailureIsConsistencyError(t *testing.T) {
	f := newSecretFixture()
	ctx := context.Background()
	termID := uuid.New()

	in := entities.CreateSecretInput{Name: "terminal-key", SecretString: "value", TerminalID: &termID}
	f.vault.On("Create", ctx, in).Return(&entities.Secret{ARN: secretARN, Name: "terminal-key"}, nil)
	f.terminals.On("GetByID", ctx, termID).Return(nil, errors.New("db down"))

	secret, err := f.uc.CreateSecret(ctx, &in)
	require.ErrorIs(t, err, domainerrors.ErrInconsistent)
	require.NotNil(t, secret, "the vault write is still reported")
	assert.Equal(t, secretARN, secret.ARN)
}

func TestSecretUsecase_CreateSecret_WithoutTerminal(t *testing.T) {
	f := newSecretFixture()
	ctx := context.Background()

	in := entities.CreateSecretInput{Name: "standalone", SecretString: "value"}
	f.vault.On("Create", ctx, in).Return(&entities.Secret{ARN: secretARN, Name: "standalone"}, nil)

	_, err := f.uc.CreateSecret(ctx, &in)
	require.NoError(t, err)
	f.terminals.AssertNotCalled(t, "GetByID", mock.Anything, mock.Anything)
}

func TestSecretUsecase_VaultErrorsPassThrough(t *testing.T) {
	f := newSecretFixture()
	ctx := context.Background()

	update := entities.UpdateSecretInput{SecretID: "missing", SecretString: "x"}
	f.vault.On("Update", ctx, update).Return(nil, domainerrors.NotFound("secret not found"))
	_, err := f.uc.UpdateSecret(ctx, &update)
	assert.ErrorIs(t, err, domainerrors.ErrNotFound)

	list := entities.ListSecretsInput{MaxResults: 10}
	f.vault.On("List", ctx, list).Return(nil, domainerrors.Transient("vault unavailable", errors.New("timeout")))
	_, err = f.uc.ListSecrets(ctx, list)
	assert.ErrorIs(t, err, domainerrors.ErrTransient)
}
