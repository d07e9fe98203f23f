package sqlstore

import (
	"context"

	"go.uber.org/zap"

	"github.com/hktikhin/personal-budget/internal/domain"
)

// Executor implements domain.UnitOfWork with database transactions
type Executor struct {
	db     *DB
	logger *zap.Logger
}

// NewExecutor creates a new unit of work executor
func NewExecutor(db *DB, logger *zap.Logger) *Executor {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Executor{db: db, logger: logger}
}

// RunAtomically begins a database transaction, hands work a LedgerTx bound to it
// and commits when work returns nil. On error or panic the transaction is rolled
// back and the failure is surfaced unchanged.
func (e *Executor) RunAtomically(ctx context.Context, work func(ctx context.Context, tx domain.LedgerTx) error) (err error) {
	// A client disconnect must not abort a unit halfway through its statements
	ctx = context.WithoutCancel(ctx)

	dbTx, err := e.db.BeginTx(ctx, nil)
	if err != nil {
		return storeError("begin transaction", err)
	}

	committed := false
	defer func() {
		if committed {
			return
		}
		if rbErr := dbTx.Rollback(); rbErr != nil {
			e.logger.Error("rollback failed", zap.Error(rbErr))
		}
		if r := recover(); r != nil {
			e.logger.Error("unit of work panicked, rolled back", zap.Any("panic", r))
			panic(r)
		}
	}()

	if err := work(ctx, newLedgerTx(dbTx, e.db.Driver)); err != nil {
		e.logger.Warn("unit of work rolled back", zap.Error(err))
		return err
	}

	committed = true
	if err := dbTx.Commit(); err != nil {
		return storeError("commit transaction", err)
	}

	return nil
}

var _ domain.UnitOfWork = (*Executor)(nil)
