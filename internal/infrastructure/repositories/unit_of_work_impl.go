package repositories

import (
	"context"
	"fmt"
	"sync"

	"go.uber.org/zap"
	"gorm.io/gorm"
	"payment-broker.backend/internal/domain/entities"
	domainRepos "payment-broker.backend/internal/domain/repositories"
	"payment-broker.backend/pkg/logger"
)

type contextKey string

const (
	unitKey contextKey = "uow_unit"
)

// UnitState is the lifecycle of one logical operation
type UnitState int

const (
	UnitIdle UnitState = iota
	UnitOpen
	UnitCommitted
	UnitRolledBack
)

func (s UnitState) String() string {
	switch s {
	case UnitOpen:
		return "open"
	case UnitCommitted:
		return "committed"
	case UnitRolledBack:
		return "rolled_back"
	default:
		return "idle"
	}
}

// EventDispatcher delivers one domain event to its subscribers
type EventDispatcher interface {
	Dispatch(ctx context.Context, event entities.DomainEvent) error
}

var (
	beginTx  = func(db *gorm.DB) *gorm.DB { return db.Begin() }
	commitTx = func(tx *gorm.DB) error { return tx.Commit().Error }
)

// unit is the per-operation state carried in the context
type unit struct {
	mu      sync.Mutex
	state   UnitState
	tx      *gorm.DB
	pending []entities.DomainEvent
}

func (s *unit) drain() []entities.DomainEvent {
	s.mu.Lock()
	defer s.mu.Unlock()
	events := s.pending
	s.pending = nil
	return events
}

func (s *unit) isOpen() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state == UnitOpen
}

func (s *unit) setState(state UnitState) {
	s.mu.Lock()
	s.state = state
	s.mu.Unlock()
}

func unitFrom(ctx context.Context) *unit {
	if ctx == nil {
		return nil
	}
	s, _ := ctx.Value(unitKey).(*unit)
	return s
}

// UnitOfWorkImpl implements UnitOfWork using GORM
type UnitOfWorkImpl struct {
	db         *gorm.DB
	dispatcher EventDispatcher
}

// NewUnitOfWork creates a new UnitOfWork. A nil dispatcher drops events.
func NewUnitOfWork(db *gorm.DB, dispatcher EventDispatcher) domainRepos.UnitOfWork {
	return &UnitOfWorkImpl{db: db, dispatcher: dispatcher}
}

// Do executes the given function within a transaction scope.
// A Do nested inside an open unit joins it instead of opening a second one.
func (u *UnitOfWorkImpl) Do(ctx context.Context, fn func(ctx context.Context) error) (err error) {
	if s := unitFrom(ctx); s != nil && s.isOpen() {
		return fn(ctx)
	}

	txCtx, err := u.Begin(ctx)
	if err != nil {
		return err
	}

	defer func() {
		if r := recover(); r != nil {
			_ = u.Rollback(txCtx)
			panic(r)
		}
	}()

	if err := fn(txCtx); err != nil {
		if rbErr := u.Rollback(txCtx); rbErr != nil {
			logger.Error(ctx, "Unit of work rollback failed", zap.Error(rbErr))
		}
		return err
	}

	return u.Commit(txCtx)
}

// Begin opens a transaction; it fails if ctx already carries an open one
func (u *UnitOfWorkImpl) Begin(ctx context.Context) (context.Context, error) {
	if s := unitFrom(ctx); s != nil && s.isOpen() {
		return ctx, domainRepos.ErrTransactionAlreadyOpen
	}

	tx := beginTx(u.db.WithContext(ctx))
	if tx.Error != nil {
		return ctx, fmt.Errorf("failed to begin transaction: %w", tx.Error)
	}

	s := &unit{state: UnitOpen, tx: tx}
	return context.WithValue(ctx, unitKey, s), nil
}

// Record queues events on the unit carried by ctx
func (u *UnitOfWorkImpl) Record(ctx context.Context, events ...entities.DomainEvent) {
	if len(events) == 0 {
		return
	}
	s := unitFrom(ctx)
	if s == nil {
		logger.Warn(ctx, "Domain events recorded outside a unit of work were dropped", zap.Int("count", len(events)))
		return
	}
	s.mu.Lock()
	s.pending = append(s.pending, events...)
	s.mu.Unlock()
}

// Commit drains and dispatches the recorded events, then commits.
// Dispatch failures are logged; they never undo the data change. If the
// commit itself fails the transaction is rolled back and the drained events
// are lost.
func (u *UnitOfWorkImpl) Commit(ctx context.Context) error {
	s := unitFrom(ctx)
	if s == nil || !s.isOpen() {
		return domainRepos.ErrNoTransaction
	}

	if ctxErr := ctx.Err(); ctxErr != nil {
		s.drain()
		s.tx.Rollback()
		s.setState(UnitRolledBack)
		return fmt.Errorf("unit of work cancelled before commit: %w", ctxErr)
	}

	events := s.drain()
	for _, event := range events {
		u.dispatch(ctx, event)
	}

	if err := commitTx(s.tx); err != nil {
		s.tx.Rollback()
		s.setState(UnitRolledBack)
		if len(events) > 0 {
			logger.Error(ctx, "Commit failed after dispatching domain events",
				zap.Int("events", len(events)), zap.Error(err))
		}
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	s.setState(UnitCommitted)
	return nil
}

func (u *UnitOfWorkImpl) dispatch(ctx context.Context, event entities.DomainEvent) {
	if u.dispatcher == nil {
		return
	}
	if err := u.dispatcher.Dispatch(ctx, event); err != nil {
		logger.Warn(ctx, "Domain event dispatch failed",
			zap.String("event", event.EventName()),
			zap.String("aggregate_id", event.AggregateID().String()),
			zap.Error(err))
	}
}

// Rollback reverts the open transaction. With nothing open it discards the
// recorded events so a later commit cannot deliver them.
func (u *UnitOfWorkImpl) Rollback(ctx context.Context) error {
	s := unitFrom(ctx)
	if s == nil {
		return nil
	}

	s.drain()
	if !s.isOpen() {
		return nil
	}

	s.setState(UnitRolledBack)
	if err := s.tx.Rollback().Error; err != nil {
		return fmt.Errorf("failed to rollback transaction: %w", err)
	}
	return nil
}

// State reports the unit state carried by ctx
func State(ctx context.Context) UnitState {
	s := unitFrom(ctx)
	if s == nil {
		return UnitIdle
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// GetDB returns the open transaction carried by ctx, otherwise fallback
func GetDB(ctx context.Context, fallback *gorm.DB) *gorm.DB {
	if s := unitFrom(ctx); s != nil && s.isOpen() {
		return s.tx
	}
	return fallback.WithContext(ctx)
}
