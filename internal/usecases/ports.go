package usecases

import (
	"context"

	"payment-broker.backend/internal/domain/entities"
)

// Protector is the symmetric cipher and lookup hash used for stored secrets
type Protector interface {
	entities.SecretProtector
	Decrypt(ciphertext string) (string, error)
}

// SecretVault is the external store of terminal security keys
type SecretVault interface {
	Get(ctx context.Context, in entities.GetSecretInput) (*entities.Secret, error)
	Create(ctx context.Context, in entities.CreateSecretInput) (*entities.Secret, error)
	Update(ctx context.Context, in entities.UpdateSecretInput) (*entities.Secret, error)
	List(ctx context.Context, in entities.ListSecretsInput) (*entities.SecretList, error)
}

// SecretCache memoizes vault reads
type SecretCache interface {
	GetOrFetch(ctx context.Context, secretID, version, stage string, fetch func(ctx context.Context) (*entities.Secret, error), forceRefresh bool) (*entities.Secret, error)
	Invalidate(secretID string)
}

// PaymentGateway posts transactions and queries to the card gateway
type PaymentGateway interface {
	// AuditPayload renders the request the way it is logged: no CVV, no security key
	AuditPayload(req *entities.TransactionRequest) string
	AuditQuery(req *entities.QueryRequest) string
	Transact(ctx context.Context, securityKey string, req *entities.TransactionRequest) (*entities.TransactionResponse, string, error)
	Query(ctx context.Context, securityKey string, req *entities.QueryRequest) (*entities.QueryResponse, string, error)
}
