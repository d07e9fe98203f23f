package ledger

import (
	"context"
	"errors"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"

	"github.com/hktikhin/personal-budget/internal/domain"
)

// MockEnvelopeRepository is a mock implementation of EnvelopeRepository for testing
type MockEnvelopeRepository struct {
	mock.Mock
}

func (m *MockEnvelopeRepository) List(ctx context.Context) ([]*domain.Envelope, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.Envelope), args.Error(1)
}

func (m *MockEnvelopeRepository) GetByID(ctx context.Context, id int64) (*domain.Envelope, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Envelope), args.Error(1)
}

func (m *MockEnvelopeRepository) Create(ctx context.Context, envelope *domain.Envelope) error {
	args := m.Called(ctx, envelope)
	return args.Error(0)
}

func (m *MockEnvelopeRepository) Replace(ctx context.Context, envelope *domain.Envelope) error {
	args := m.Called(ctx, envelope)
	return args.Error(0)
}

func (m *MockEnvelopeRepository) Count(ctx context.Context) (int, error) {
	args := m.Called(ctx)
	return args.Int(0), args.Error(1)
}

// MockTransactionRepository is a mock implementation of TransactionRepository for testing
type MockTransactionRepository struct {
	mock.Mock
}

func (m *MockTransactionRepository) List(ctx context.Context) ([]*domain.Transaction, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.Transaction), args.Error(1)
}

func (m *MockTransactionRepository) GetByID(ctx context.Context, id int64) (*domain.Transaction, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Transaction), args.Error(1)
}

func (m *MockTransactionRepository) ListByEnvelope(ctx context.Context, envelopeID int64) ([]*domain.Transaction, error) {
	args := m.Called(ctx, envelopeID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.Transaction), args.Error(1)
}

func (m *MockTransactionRepository) Count(ctx context.Context) (int, error) {
	args := m.Called(ctx)
	return args.Int(0), args.Error(1)
}

// MockUnitOfWork is a mock implementation of UnitOfWork for testing
type MockUnitOfWork struct {
	mock.Mock
}

func (m *MockUnitOfWork) RunAtomically(ctx context.Context, work func(ctx context.Context, tx domain.LedgerTx) error) error {
	args := m.Called(ctx, work)
	return args.Error(0)
}

var errInjected = errors.New("injected store failure")

// faultyUnit wraps a real unit of work and fails the Nth mutating statement
type faultyUnit struct {
	inner  domain.UnitOfWork
	failAt int
}

func (f *faultyUnit) RunAtomically(ctx context.Context, work func(ctx context.Context, tx domain.LedgerTx) error) error {
	return f.inner.RunAtomically(ctx, func(ctx context.Context, tx domain.LedgerTx) error {
		return work(ctx, &faultyTx{LedgerTx: tx, failAt: f.failAt})
	})
}

type faultyTx struct {
	domain.LedgerTx
	calls  int
	failAt int
}

func (f *faultyTx) step() error {
	f.calls++
	if f.calls == f.failAt {
		return errInjected
	}
	return nil
}

func (f *faultyTx) InsertTransaction(ctx context.Context, tx *domain.Transaction) error {
	if err := f.step(); err != nil {
		return err
	}
	return f.LedgerTx.InsertTransaction(ctx, tx)
}

func (f *faultyTx) UpdateTransaction(ctx context.Context, tx *domain.Transaction) error {
	if err := f.step(); err != nil {
		return err
	}
	return f.LedgerTx.UpdateTransaction(ctx, tx)
}

func (f *faultyTx) DeleteTransaction(ctx context.Context, id int64) error {
	if err := f.step(); err != nil {
		return err
	}
	return f.LedgerTx.DeleteTransaction(ctx, id)
}

func (f *faultyTx) AdjustBudget(ctx context.Context, envelopeID int64, delta decimal.Decimal) error {
	if err := f.step(); err != nil {
		return err
	}
	return f.LedgerTx.AdjustBudget(ctx, envelopeID, delta)
}
