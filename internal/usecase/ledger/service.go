package ledger

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/hktikhin/personal-budget/internal/domain"
)

// Service records transactions and keeps envelope balances consistent with them.
// Every mutation runs its row change and its balance adjustments in one unit of work.
type Service struct {
	EnvelopeRepo    domain.EnvelopeRepository
	TransactionRepo domain.TransactionRepository
	UnitOfWork      domain.UnitOfWork
	logger          *zap.Logger
}

// NewService creates a new ledger Service instance
func NewService(
	envelopeRepo domain.EnvelopeRepository,
	transactionRepo domain.TransactionRepository,
	uow domain.UnitOfWork,
	logger *zap.Logger,
) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		EnvelopeRepo:    envelopeRepo,
		TransactionRepo: transactionRepo,
		UnitOfWork:      uow,
		logger:          logger,
	}
}

// List returns every transaction ordered by id
func (s *Service) List(ctx context.Context) ([]*domain.Transaction, error) {
	return s.TransactionRepo.List(ctx)
}

// Get returns one transaction
func (s *Service) Get(ctx context.Context, id int64) (*domain.Transaction, error) {
	if err := domain.CheckID(id); err != nil {
		return nil, err
	}
	return s.TransactionRepo.GetByID(ctx, id)
}

// ListByEnvelope returns the transactions where the envelope is the source or the destination
func (s *Service) ListByEnvelope(ctx context.Context, envelopeID int64) ([]*domain.Transaction, error) {
	if err := domain.CheckID(envelopeID); err != nil {
		return nil, err
	}
	if _, err := s.EnvelopeRepo.GetByID(ctx, envelopeID); err != nil {
		return nil, err
	}
	return s.TransactionRepo.ListByEnvelope(ctx, envelopeID)
}

// Create records a new transaction
// Logic:
//  1. Validate the payload
//  2. Resolve the source and, if present, the destination envelope
//  3. Check the amount against the source balance
//  4. In one unit: insert the row, debit the source, credit the destination
func (s *Service) Create(ctx context.Context, input domain.TransactionInput) (*domain.Transaction, error) {
	nt, err := domain.ValidateTransactionInput(input)
	if err != nil {
		return nil, err
	}

	from, to, err := s.resolveParties(ctx, nt.FromEnvelope, nt.ToEnvelope)
	if err != nil {
		return nil, err
	}

	amount, err := domain.ValidateAmount(nt.Amount, from.Budget)
	if err != nil {
		return nil, fmt.Errorf("envelope %d: %w", from.ID, err)
	}

	tx := &domain.Transaction{
		Title:        nt.Title,
		FromEnvelope: from.ID,
		ToEnvelope:   nt.ToEnvelope,
		Amount:       amount,
	}

	err = s.UnitOfWork.RunAtomically(ctx, func(ctx context.Context, ltx domain.LedgerTx) error {
		if err := ltx.InsertTransaction(ctx, tx); err != nil {
			return err
		}
		return applyDelta(ctx, ltx, from.ID, to, amount)
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("transaction created",
		zap.Int64("transaction_id", tx.ID),
		zap.Int64("from_envelope", tx.FromEnvelope),
		zap.Bool("transfer", tx.IsTransfer()),
		zap.String("amount", tx.Amount.String()),
	)
	return tx, nil
}

// Extract records money leaving the system from one envelope
func (s *Service) Extract(ctx context.Context, envelopeID int64, amount *decimal.Decimal, title *string) (*domain.Transaction, error) {
	return s.Create(ctx, domain.TransactionInput{
		Title:        title,
		FromEnvelope: &envelopeID,
		Amount:       amount,
	})
}

// Transfer records money moving from one envelope to another
func (s *Service) Transfer(ctx context.Context, fromID, toID int64, amount *decimal.Decimal, title *string) (*domain.Transaction, error) {
	return s.Create(ctx, domain.TransactionInput{
		Title:        title,
		FromEnvelope: &fromID,
		ToEnvelope:   &toID,
		Amount:       amount,
	})
}

// Update changes the amount and title of a transaction, applying only the
// difference to the envelope balances. The parties of a transaction never change.
// Logic:
//  1. Load the stored row, validate the payload and resolve the parties
//  2. Refuse any change of source or destination
//  3. diff = new amount - old amount
//     diff > 0: the source must cover diff
//     diff < 0: the destination, if any, must give back |diff|
//  4. In one unit: update the row, then move diff from source to destination
func (s *Service) Update(ctx context.Context, id int64, input domain.TransactionInput) (*domain.Transaction, error) {
	if err := domain.CheckID(id); err != nil {
		return nil, err
	}

	existing, err := s.TransactionRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	nt, err := domain.ValidateTransactionInput(input)
	if err != nil {
		return nil, err
	}

	from, to, err := s.resolveParties(ctx, nt.FromEnvelope, nt.ToEnvelope)
	if err != nil {
		return nil, err
	}

	if !existing.SameParties(nt.FromEnvelope, nt.ToEnvelope) {
		return nil, fmt.Errorf("%w: transaction %d cannot change its source or destination envelope",
			domain.ErrStakeholderMismatch, id)
	}

	diff := nt.Amount.Sub(existing.Amount)
	switch {
	case diff.IsPositive():
		if _, err := domain.ValidateAmount(diff, from.Budget); err != nil {
			return nil, fmt.Errorf("envelope %d: %w", from.ID, err)
		}
	case diff.IsNegative() && to != nil:
		if _, err := domain.ValidateAmount(diff.Neg(), to.Budget); err != nil {
			return nil, fmt.Errorf("envelope %d: %w", to.ID, err)
		}
	}

	updated := *existing
	updated.Amount = nt.Amount
	if input.Title != nil {
		updated.Title = nt.Title
	}

	err = s.UnitOfWork.RunAtomically(ctx, func(ctx context.Context, ltx domain.LedgerTx) error {
		if err := ltx.UpdateTransaction(ctx, &updated); err != nil {
			return err
		}
		if diff.IsZero() {
			return nil
		}
		return applyDelta(ctx, ltx, from.ID, to, diff)
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("transaction updated",
		zap.Int64("transaction_id", updated.ID),
		zap.String("amount", updated.Amount.String()),
		zap.String("diff", diff.String()),
	)
	return &updated, nil
}

// Delete removes a transaction and reverses its effect on the envelope balances.
// The destination must still hold the amount it received.
func (s *Service) Delete(ctx context.Context, id int64) error {
	if err := domain.CheckID(id); err != nil {
		return err
	}

	existing, err := s.TransactionRepo.GetByID(ctx, id)
	if err != nil {
		return err
	}

	from, to, err := s.resolveParties(ctx, existing.FromEnvelope, existing.ToEnvelope)
	if err != nil {
		return err
	}

	if to != nil && to.Budget.LessThan(existing.Amount) {
		return fmt.Errorf("envelope %d cannot give back %s (holds %s): %w",
			to.ID, existing.Amount, to.Budget, domain.ErrInsufficientFunds)
	}

	err = s.UnitOfWork.RunAtomically(ctx, func(ctx context.Context, ltx domain.LedgerTx) error {
		if err := ltx.DeleteTransaction(ctx, existing.ID); err != nil {
			return err
		}
		return applyDelta(ctx, ltx, from.ID, to, existing.Amount.Neg())
	})
	if err != nil {
		return err
	}

	s.logger.Info("transaction deleted",
		zap.Int64("transaction_id", existing.ID),
		zap.String("amount", existing.Amount.String()),
	)
	return nil
}

// resolveParties loads the source envelope and, when toID is set, the destination
func (s *Service) resolveParties(ctx context.Context, fromID int64, toID *int64) (*domain.Envelope, *domain.Envelope, error) {
	from, err := s.EnvelopeRepo.GetByID(ctx, fromID)
	if err != nil {
		return nil, nil, fmt.Errorf("from_envelope: %w", err)
	}

	if toID == nil {
		return from, nil, nil
	}

	to, err := s.EnvelopeRepo.GetByID(ctx, *toID)
	if err != nil {
		return nil, nil, fmt.Errorf("to_envelope: %w", err)
	}

	return from, to, nil
}

// applyDelta moves amount from the source to the destination (if any).
// A negative amount moves money back.
func applyDelta(ctx context.Context, ltx domain.LedgerTx, fromID int64, to *domain.Envelope, amount decimal.Decimal) error {
	if err := ltx.AdjustBudget(ctx, fromID, amount.Neg()); err != nil {
		return err
	}
	if to == nil {
		return nil
	}
	return ltx.AdjustBudget(ctx, to.ID, amount)
}
