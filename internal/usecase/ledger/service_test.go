package ledger

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/hktikhin/personal-budget/internal/adapter/repository/sqlstore"
	"github.com/hktikhin/personal-budget/internal/adapter/repository/sqlstore/sqlitetest"
	"github.com/hktikhin/personal-budget/internal/domain"
)

func int64Ptr(v int64) *int64 {
	return &v
}

func stringPtr(v string) *string {
	return &v
}

func amountPtr(v int64) *decimal.Decimal {
	d := decimal.NewFromInt(v)
	return &d
}

// fixture is a ledger backed by a real SQLite store
type fixture struct {
	db           *sqlstore.DB
	envelopes    domain.EnvelopeRepository
	transactions domain.TransactionRepository
	executor     *sqlstore.Executor
	service      *Service
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	db := sqlitetest.New(t)
	f := &fixture{
		db:           db,
		envelopes:    sqlstore.NewEnvelopeRepository(db),
		transactions: sqlstore.NewTransactionRepository(db),
		executor:     sqlstore.NewExecutor(db, zap.NewNop()),
	}
	f.service = NewService(f.envelopes, f.transactions, f.executor, zap.NewNop())
	return f
}

// withUnit swaps the unit of work the service runs its mutations through
func (f *fixture) withUnit(uow domain.UnitOfWork) *Service {
	return NewService(f.envelopes, f.transactions, uow, zap.NewNop())
}

func (f *fixture) envelope(t *testing.T, title string, budget int64) int64 {
	t.Helper()
	e := &domain.Envelope{Title: title, Budget: decimal.NewFromInt(budget)}
	require.NoError(t, f.envelopes.Create(context.Background(), e))
	return e.ID
}

func (f *fixture) assertBudget(t *testing.T, id int64, want int64) {
	t.Helper()
	e, err := f.envelopes.GetByID(context.Background(), id)
	require.NoError(t, err)
	assert.True(t, e.Budget.Equal(decimal.NewFromInt(want)), "envelope %d: want %d, got %s", id, want, e.Budget)
}

func (f *fixture) assertTransactionCount(t *testing.T, want int) {
	t.Helper()
	count, err := f.transactions.Count(context.Background())
	require.NoError(t, err)
	assert.Equal(t, want, count)
}

func TestLedger_Scenario(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	a := f.envelope(t, "Food", 1500)
	b := f.envelope(t, "Game", 500)

	tx, err := f.service.Create(ctx, domain.TransactionInput{
		Title:        stringPtr("Food is expensive"),
		FromEnvelope: int64Ptr(a),
		ToEnvelope:   int64Ptr(b),
		Amount:       amountPtr(500),
	})
	require.NoError(t, err)
	assert.Positive(t, tx.ID)
	f.assertBudget(t, a, 1000)
	f.assertBudget(t, b, 1000)

	updated, err := f.service.Update(ctx, tx.ID, domain.TransactionInput{
		FromEnvelope: int64Ptr(a),
		ToEnvelope:   int64Ptr(b),
		Amount:       amountPtr(700),
	})
	require.NoError(t, err)
	assert.True(t, updated.Amount.Equal(decimal.NewFromInt(700)))
	assert.Equal(t, "Food is expensive", updated.Title, "title is kept when omitted")
	f.assertBudget(t, a, 800)
	f.assertBudget(t, b, 1200)

	require.NoError(t, f.service.Delete(ctx, tx.ID))
	f.assertBudget(t, a, 1500)
	f.assertBudget(t, b, 500)
	f.assertTransactionCount(t, 0)
}

func TestLedger_Create(t *testing.T) {
	ctx := context.Background()

	t.Run("Extraction debits only the source", func(t *testing.T) {
		f := newFixture(t)
		a := f.envelope(t, "Food", 100)

		tx, err := f.service.Extract(ctx, a, amountPtr(40), stringPtr("groceries"))
		require.NoError(t, err)
		assert.Nil(t, tx.ToEnvelope)
		assert.Equal(t, "groceries", tx.Title)
		f.assertBudget(t, a, 60)
	})

	t.Run("Transfer moves the whole balance", func(t *testing.T) {
		f := newFixture(t)
		a := f.envelope(t, "Food", 100)
		b := f.envelope(t, "Game", 1)

		tx, err := f.service.Transfer(ctx, a, b, amountPtr(100), nil)
		require.NoError(t, err)
		assert.Empty(t, tx.Title)
		f.assertBudget(t, a, 0)
		f.assertBudget(t, b, 101)
	})

	t.Run("Amount above the source balance is rejected", func(t *testing.T) {
		f := newFixture(t)
		a := f.envelope(t, "Food", 100)
		b := f.envelope(t, "Game", 10)

		_, err := f.service.Transfer(ctx, a, b, amountPtr(101), nil)
		assert.ErrorIs(t, err, domain.ErrInsufficientFunds)
		f.assertBudget(t, a, 100)
		f.assertBudget(t, b, 10)
		f.assertTransactionCount(t, 0)
	})

	t.Run("Missing source envelope is NotFound", func(t *testing.T) {
		f := newFixture(t)
		_, err := f.service.Extract(ctx, 42, amountPtr(1), nil)
		assert.ErrorIs(t, err, domain.ErrNotFound)
	})

	t.Run("Missing destination envelope is NotFound", func(t *testing.T) {
		f := newFixture(t)
		a := f.envelope(t, "Food", 100)

		_, err := f.service.Transfer(ctx, a, 42, amountPtr(1), nil)
		assert.ErrorIs(t, err, domain.ErrNotFound)
		f.assertBudget(t, a, 100)
	})

	t.Run("Self transfer is invalid", func(t *testing.T) {
		f := newFixture(t)
		a := f.envelope(t, "Food", 100)

		_, err := f.service.Transfer(ctx, a, a, amountPtr(1), nil)
		assert.ErrorIs(t, err, domain.ErrInvalidInput)
	})
}

func TestLedger_Update(t *testing.T) {
	ctx := context.Background()

	t.Run("Different destination is a stakeholder mismatch", func(t *testing.T) {
		f := newFixture(t)
		a := f.envelope(t, "Food", 1000)
		b := f.envelope(t, "Game", 0)
		c := f.envelope(t, "Travel", 0)

		tx, err := f.service.Transfer(ctx, a, b, amountPtr(100), nil)
		require.NoError(t, err)

		_, err = f.service.Update(ctx, tx.ID, domain.TransactionInput{
			FromEnvelope: int64Ptr(a),
			ToEnvelope:   int64Ptr(c),
			Amount:       amountPtr(100),
		})
		assert.ErrorIs(t, err, domain.ErrStakeholderMismatch)
		f.assertBudget(t, a, 900)
		f.assertBudget(t, b, 100)
		f.assertBudget(t, c, 0)
	})

	t.Run("Dropping the destination is a stakeholder mismatch", func(t *testing.T) {
		f := newFixture(t)
		a := f.envelope(t, "Food", 1000)
		b := f.envelope(t, "Game", 0)

		tx, err := f.service.Transfer(ctx, a, b, amountPtr(100), nil)
		require.NoError(t, err)

		_, err = f.service.Update(ctx, tx.ID, domain.TransactionInput{
			FromEnvelope: int64Ptr(a),
			Amount:       amountPtr(100),
		})
		assert.ErrorIs(t, err, domain.ErrStakeholderMismatch)
	})

	t.Run("Increase beyond the source headroom is rejected", func(t *testing.T) {
		f := newFixture(t)
		a := f.envelope(t, "Food", 150)
		b := f.envelope(t, "Game", 0)

		tx, err := f.service.Transfer(ctx, a, b, amountPtr(100), nil)
		require.NoError(t, err)

		// 50 left in the source, the increase is 60
		_, err = f.service.Update(ctx, tx.ID, domain.TransactionInput{
			FromEnvelope: int64Ptr(a),
			ToEnvelope:   int64Ptr(b),
			Amount:       amountPtr(160),
		})
		assert.ErrorIs(t, err, domain.ErrInsufficientFunds)
		f.assertBudget(t, a, 50)
		f.assertBudget(t, b, 100)
	})

	t.Run("Decrease beyond the destination headroom is rejected", func(t *testing.T) {
		f := newFixture(t)
		a := f.envelope(t, "Food", 100)
		b := f.envelope(t, "Game", 0)
		c := f.envelope(t, "Travel", 0)

		tx, err := f.service.Transfer(ctx, a, b, amountPtr(100), nil)
		require.NoError(t, err)
		// the destination spends most of what it received
		_, err = f.service.Transfer(ctx, b, c, amountPtr(90), nil)
		require.NoError(t, err)

		_, err = f.service.Update(ctx, tx.ID, domain.TransactionInput{
			FromEnvelope: int64Ptr(a),
			ToEnvelope:   int64Ptr(b),
			Amount:       amountPtr(50),
		})
		assert.ErrorIs(t, err, domain.ErrInsufficientFunds)
		f.assertBudget(t, a, 0)
		f.assertBudget(t, b, 10)
	})

	t.Run("Decreasing an extraction refunds the source", func(t *testing.T) {
		f := newFixture(t)
		a := f.envelope(t, "Food", 100)

		tx, err := f.service.Extract(ctx, a, amountPtr(80), nil)
		require.NoError(t, err)

		updated, err := f.service.Update(ctx, tx.ID, domain.TransactionInput{
			Title:        stringPtr("cheaper"),
			FromEnvelope: int64Ptr(a),
			Amount:       amountPtr(30),
		})
		require.NoError(t, err)
		assert.Equal(t, "cheaper", updated.Title)
		f.assertBudget(t, a, 70)
	})

	t.Run("Same amount only rewrites the title", func(t *testing.T) {
		f := newFixture(t)
		a := f.envelope(t, "Food", 100)
		b := f.envelope(t, "Game", 0)

		tx, err := f.service.Transfer(ctx, a, b, amountPtr(25), nil)
		require.NoError(t, err)

		updated, err := f.service.Update(ctx, tx.ID, domain.TransactionInput{
			Title:        stringPtr("renamed"),
			FromEnvelope: int64Ptr(a),
			ToEnvelope:   int64Ptr(b),
			Amount:       amountPtr(25),
		})
		require.NoError(t, err)
		assert.Equal(t, "renamed", updated.Title)
		f.assertBudget(t, a, 75)
		f.assertBudget(t, b, 25)
	})

	t.Run("Missing transaction is NotFound", func(t *testing.T) {
		f := newFixture(t)
		_, err := f.service.Update(ctx, 9, domain.TransactionInput{FromEnvelope: int64Ptr(1), Amount: amountPtr(1)})
		assert.ErrorIs(t, err, domain.ErrNotFound)
	})
}

func TestLedger_Delete(t *testing.T) {
	ctx := context.Background()

	t.Run("Extraction delete refunds the source", func(t *testing.T) {
		f := newFixture(t)
		a := f.envelope(t, "Food", 100)

		tx, err := f.service.Extract(ctx, a, amountPtr(100), nil)
		require.NoError(t, err)
		f.assertBudget(t, a, 0)

		require.NoError(t, f.service.Delete(ctx, tx.ID))
		f.assertBudget(t, a, 100)
	})

	t.Run("Destination that spent the funds blocks the delete", func(t *testing.T) {
		f := newFixture(t)
		a := f.envelope(t, "Food", 100)
		b := f.envelope(t, "Game", 0)

		tx, err := f.service.Transfer(ctx, a, b, amountPtr(100), nil)
		require.NoError(t, err)
		_, err = f.service.Extract(ctx, b, amountPtr(1), nil)
		require.NoError(t, err)

		err = f.service.Delete(ctx, tx.ID)
		assert.ErrorIs(t, err, domain.ErrInsufficientFunds)
		f.assertBudget(t, a, 0)
		f.assertBudget(t, b, 99)
		f.assertTransactionCount(t, 2)
	})

	t.Run("Invalid id", func(t *testing.T) {
		f := newFixture(t)
		assert.ErrorIs(t, f.service.Delete(ctx, 0), domain.ErrInvalidID)
	})
}

func TestLedger_Atomicity(t *testing.T) {
	ctx := context.Background()

	t.Run("Create failing on the second statement leaves nothing behind", func(t *testing.T) {
		f := newFixture(t)
		a := f.envelope(t, "Food", 1500)
		b := f.envelope(t, "Game", 500)

		service := f.withUnit(&faultyUnit{inner: f.executor, failAt: 2})
		_, err := service.Transfer(ctx, a, b, amountPtr(500), nil)
		assert.ErrorIs(t, err, errInjected)

		f.assertBudget(t, a, 1500)
		f.assertBudget(t, b, 500)
		f.assertTransactionCount(t, 0)
	})

	t.Run("Create failing on the destination credit rolls back the debit", func(t *testing.T) {
		f := newFixture(t)
		a := f.envelope(t, "Food", 1500)
		b := f.envelope(t, "Game", 500)

		service := f.withUnit(&faultyUnit{inner: f.executor, failAt: 3})
		_, err := service.Transfer(ctx, a, b, amountPtr(500), nil)
		assert.ErrorIs(t, err, errInjected)

		f.assertBudget(t, a, 1500)
		f.assertBudget(t, b, 500)
		f.assertTransactionCount(t, 0)
	})

	t.Run("Update failing on the second statement keeps the old amount", func(t *testing.T) {
		f := newFixture(t)
		a := f.envelope(t, "Food", 1500)
		b := f.envelope(t, "Game", 500)

		tx, err := f.service.Transfer(ctx, a, b, amountPtr(500), nil)
		require.NoError(t, err)

		service := f.withUnit(&faultyUnit{inner: f.executor, failAt: 2})
		_, err = service.Update(ctx, tx.ID, domain.TransactionInput{
			FromEnvelope: int64Ptr(a),
			ToEnvelope:   int64Ptr(b),
			Amount:       amountPtr(700),
		})
		assert.ErrorIs(t, err, errInjected)

		stored, err := f.transactions.GetByID(ctx, tx.ID)
		require.NoError(t, err)
		assert.True(t, stored.Amount.Equal(decimal.NewFromInt(500)))
		f.assertBudget(t, a, 1000)
		f.assertBudget(t, b, 1000)
	})

	t.Run("Delete failing on the second statement keeps the row", func(t *testing.T) {
		f := newFixture(t)
		a := f.envelope(t, "Food", 1500)
		b := f.envelope(t, "Game", 500)

		tx, err := f.service.Transfer(ctx, a, b, amountPtr(500), nil)
		require.NoError(t, err)

		service := f.withUnit(&faultyUnit{inner: f.executor, failAt: 2})
		err = service.Delete(ctx, tx.ID)
		assert.ErrorIs(t, err, errInjected)

		f.assertTransactionCount(t, 1)
		f.assertBudget(t, a, 1000)
		f.assertBudget(t, b, 1000)
	})
}

func TestLedger_FailuresBeforeTheUnitHaveNoSideEffects(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name    string
		setup   func(envelopes *MockEnvelopeRepository, transactions *MockTransactionRepository)
		run     func(s *Service) error
		wantErr error
	}{
		{
			name:  "Invalid payload",
			setup: func(*MockEnvelopeRepository, *MockTransactionRepository) {},
			run: func(s *Service) error {
				_, err := s.Create(ctx, domain.TransactionInput{FromEnvelope: int64Ptr(1)})
				return err
			},
			wantErr: domain.ErrInvalidInput,
		},
		{
			name: "Source lookup failure",
			setup: func(envelopes *MockEnvelopeRepository, _ *MockTransactionRepository) {
				envelopes.On("GetByID", ctx, int64(1)).Return(nil, domain.ErrNotFound)
			},
			run: func(s *Service) error {
				_, err := s.Create(ctx, domain.TransactionInput{FromEnvelope: int64Ptr(1), Amount: amountPtr(5)})
				return err
			},
			wantErr: domain.ErrNotFound,
		},
		{
			name: "Destination lookup failure",
			setup: func(envelopes *MockEnvelopeRepository, _ *MockTransactionRepository) {
				envelopes.On("GetByID", ctx, int64(1)).Return(&domain.Envelope{ID: 1, Title: "Food", Budget: decimal.NewFromInt(10)}, nil)
				envelopes.On("GetByID", ctx, int64(2)).Return(nil, domain.ErrStoreFailure)
			},
			run: func(s *Service) error {
				_, err := s.Create(ctx, domain.TransactionInput{FromEnvelope: int64Ptr(1), ToEnvelope: int64Ptr(2), Amount: amountPtr(5)})
				return err
			},
			wantErr: domain.ErrStoreFailure,
		},
		{
			name: "Insufficient funds",
			setup: func(envelopes *MockEnvelopeRepository, _ *MockTransactionRepository) {
				envelopes.On("GetByID", ctx, int64(1)).Return(&domain.Envelope{ID: 1, Title: "Food", Budget: decimal.NewFromInt(4)}, nil)
			},
			run: func(s *Service) error {
				_, err := s.Create(ctx, domain.TransactionInput{FromEnvelope: int64Ptr(1), Amount: amountPtr(5)})
				return err
			},
			wantErr: domain.ErrInsufficientFunds,
		},
		{
			name: "Stakeholder mismatch",
			setup: func(envelopes *MockEnvelopeRepository, transactions *MockTransactionRepository) {
				transactions.On("GetByID", ctx, int64(7)).Return(&domain.Transaction{ID: 7, FromEnvelope: 1, Amount: decimal.NewFromInt(5)}, nil)
				envelopes.On("GetByID", ctx, int64(2)).Return(&domain.Envelope{ID: 2, Title: "Game", Budget: decimal.NewFromInt(10)}, nil)
			},
			run: func(s *Service) error {
				_, err := s.Update(ctx, 7, domain.TransactionInput{FromEnvelope: int64Ptr(2), Amount: amountPtr(5)})
				return err
			},
			wantErr: domain.ErrStakeholderMismatch,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			envelopes := new(MockEnvelopeRepository)
			transactions := new(MockTransactionRepository)
			uow := new(MockUnitOfWork)
			tt.setup(envelopes, transactions)

			err := tt.run(NewService(envelopes, transactions, uow, zap.NewNop()))

			assert.ErrorIs(t, err, tt.wantErr)
			uow.AssertNotCalled(t, "RunAtomically", mock.Anything, mock.Anything)
			envelopes.AssertExpectations(t)
			transactions.AssertExpectations(t)
		})
	}
}

func TestLedger_LogsCommittedMutations(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	a := f.envelope(t, "Food", 100)

	core, logs := observer.New(zap.InfoLevel)
	service := NewService(f.envelopes, f.transactions, f.executor, zap.New(core))

	_, err := service.Extract(ctx, a, amountPtr(10), nil)
	require.NoError(t, err)

	entries := logs.FilterMessage("transaction created").All()
	require.Len(t, entries, 1)
	assert.Equal(t, "10", entries[0].ContextMap()["amount"])
}

func TestLedger_ListByEnvelope(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	a := f.envelope(t, "Food", 100)
	b := f.envelope(t, "Game", 100)

	_, err := f.service.Transfer(ctx, a, b, amountPtr(10), nil)
	require.NoError(t, err)
	_, err = f.service.Extract(ctx, b, amountPtr(5), nil)
	require.NoError(t, err)

	forA, err := f.service.ListByEnvelope(ctx, a)
	require.NoError(t, err)
	assert.Len(t, forA, 1)

	forB, err := f.service.ListByEnvelope(ctx, b)
	require.NoError(t, err)
	assert.Len(t, forB, 2)

	_, err = f.service.ListByEnvelope(ctx, 99)
	assert.ErrorIs(t, err, domain.ErrNotFound)

	all, err := f.service.List(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 2)
}

func TestLedger_FractionalAmountsStayExact(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	cents := func(v string) *decimal.Decimal {
		d := decimal.RequireFromString(v)
		return &d
	}
	budgetOf := func(id int64) decimal.Decimal {
		e, err := f.envelopes.GetByID(ctx, id)
		require.NoError(t, err)
		return e.Budget
	}

	coffee := &domain.Envelope{Title: "Coffee", Budget: decimal.RequireFromString("0.30")}
	require.NoError(t, f.envelopes.Create(ctx, coffee))
	snacks := f.envelope(t, "Snacks", 1)

	for i := 0; i < 3; i++ {
		_, err := f.service.Extract(ctx, coffee.ID, cents("0.1"), nil)
		require.NoError(t, err, "extraction %d", i+1)
	}
	assert.True(t, budgetOf(coffee.ID).IsZero(), "got %s", budgetOf(coffee.ID))

	_, err := f.service.Extract(ctx, coffee.ID, cents("0.01"), nil)
	assert.ErrorIs(t, err, domain.ErrInsufficientFunds)

	tx, err := f.service.Transfer(ctx, snacks, coffee.ID, cents("0.07"), nil)
	require.NoError(t, err)
	assert.True(t, tx.Amount.Equal(decimal.RequireFromString("0.07")))
	assert.True(t, budgetOf(snacks).Equal(decimal.RequireFromString("0.93")))

	_, err = f.service.Update(ctx, tx.ID, domain.TransactionInput{
		FromEnvelope: int64Ptr(snacks),
		ToEnvelope:   int64Ptr(coffee.ID),
		Amount:       cents("0.33"),
	})
	require.NoError(t, err)
	assert.True(t, budgetOf(snacks).Equal(decimal.RequireFromString("0.67")))
	assert.True(t, budgetOf(coffee.ID).Equal(decimal.RequireFromString("0.33")))

	require.NoError(t, f.service.Delete(ctx, tx.ID))
	assert.True(t, budgetOf(snacks).Equal(decimal.NewFromInt(1)))
	assert.True(t, budgetOf(coffee.ID).IsZero())

	_, err = f.service.Extract(ctx, snacks, cents("0.005"), nil)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}
