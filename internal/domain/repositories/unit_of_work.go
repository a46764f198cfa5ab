package repositories

import (
	"context"
	"errors"

	"payment-broker.backend/internal/domain/entities"
)

var (
	ErrTransactionAlreadyOpen = errors.New("unit of work: transaction already open")
	ErrNoTransaction          = errors.New("unit of work: no open transaction")
)

// UnitOfWork defines the interface for atomic operations.
// Persistence and domain-event dispatch commit together: Commit drains the
// recorded events, dispatches each once, then commits the transaction.
type UnitOfWork interface {
	// Do executes the given function within a transaction scope
	Do(ctx context.Context, fn func(ctx context.Context) error) error
	// Begin opens a transaction and returns the context that carries it
	Begin(ctx context.Context) (context.Context, error)
	// Record queues events on the unit carried by ctx
	Record(ctx context.Context, events ...entities.DomainEvent)
	Commit(ctx context.Context) error
	// Rollback reverts the open transaction, or discards recorded events when none is open
	Rollback(ctx context.Context) error
}
