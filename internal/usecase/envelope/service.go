package envelope

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/hktikhin/personal-budget/internal/domain"
)

// DeletePolicy decides what happens to transactions that reference a deleted envelope
type DeletePolicy string

const (
	// DeleteRestrict refuses to delete an envelope that any transaction references
	DeleteRestrict DeletePolicy = "restrict"
	// DeleteCascade deletes the referencing transactions first, reversing their
	// effect on the surviving counterparty envelope
	DeleteCascade DeletePolicy = "cascade"
)

// ParseDeletePolicy validates a policy name coming from configuration
func ParseDeletePolicy(name string) (DeletePolicy, error) {
	switch DeletePolicy(strings.ToLower(strings.TrimSpace(name))) {
	case "", DeleteRestrict:
		return DeleteRestrict, nil
	case DeleteCascade:
		return DeleteCascade, nil
	default:
		return "", fmt.Errorf("unknown envelope delete policy %q", name)
	}
}

// Service handles envelope commands
type Service struct {
	EnvelopeRepo domain.EnvelopeRepository
	UnitOfWork   domain.UnitOfWork
	Policy       DeletePolicy
	logger       *zap.Logger
}

// NewService creates a new envelope Service instance
func NewService(envelopeRepo domain.EnvelopeRepository, uow domain.UnitOfWork, policy DeletePolicy, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		EnvelopeRepo: envelopeRepo,
		UnitOfWork:   uow,
		Policy:       policy,
		logger:       logger,
	}
}

// List returns every envelope ordered by id
func (s *Service) List(ctx context.Context) ([]*domain.Envelope, error) {
	return s.EnvelopeRepo.List(ctx)
}

// Get returns one envelope
func (s *Service) Get(ctx context.Context, id int64) (*domain.Envelope, error) {
	if err := domain.CheckID(id); err != nil {
		return nil, err
	}
	return s.EnvelopeRepo.GetByID(ctx, id)
}

// Create validates the payload and stores a new envelope
func (s *Service) Create(ctx context.Context, input domain.EnvelopeInput) (*domain.Envelope, error) {
	fields, err := domain.ValidateEnvelopeInput(input)
	if err != nil {
		return nil, err
	}

	envelope := &domain.Envelope{Title: fields.Title, Budget: fields.Budget}
	if err := envelope.Validate(); err != nil {
		return nil, err
	}

	if err := s.EnvelopeRepo.Create(ctx, envelope); err != nil {
		return nil, err
	}

	s.logger.Info("envelope created",
		zap.Int64("envelope_id", envelope.ID),
		zap.String("budget", envelope.Budget.String()),
	)
	return envelope, nil
}

// Replace overwrites the title and budget of an envelope.
// Balances set here do not go through the ledger.
func (s *Service) Replace(ctx context.Context, id int64, input domain.EnvelopeInput) (*domain.Envelope, error) {
	if err := domain.CheckID(id); err != nil {
		return nil, err
	}

	fields, err := domain.ValidateEnvelopeInput(input)
	if err != nil {
		return nil, err
	}

	envelope := &domain.Envelope{ID: id, Title: fields.Title, Budget: fields.Budget}
	if err := s.EnvelopeRepo.Replace(ctx, envelope); err != nil {
		return nil, err
	}

	s.logger.Info("envelope replaced",
		zap.Int64("envelope_id", envelope.ID),
		zap.String("budget", envelope.Budget.String()),
	)
	return envelope, nil
}

// Delete removes an envelope following the configured DeletePolicy.
// Logic:
//  1. Resolve the envelope (NotFound aborts before any unit opens)
//  2. Inside one unit, list the transactions that reference it
//  3. Restrict: refuse when there are any
//     Cascade: delete each one, giving the surviving counterparty its money back
//  4. Delete the envelope row
func (s *Service) Delete(ctx context.Context, id int64) error {
	if err := domain.CheckID(id); err != nil {
		return err
	}

	if _, err := s.EnvelopeRepo.GetByID(ctx, id); err != nil {
		return err
	}

	var removed int
	err := s.UnitOfWork.RunAtomically(ctx, func(ctx context.Context, tx domain.LedgerTx) error {
		refs, err := tx.ListTransactionsByEnvelope(ctx, id)
		if err != nil {
			return err
		}

		if len(refs) > 0 && s.Policy != DeleteCascade {
			return fmt.Errorf("envelope %d has %d transactions: %w", id, len(refs), domain.ErrReferencedByTransaction)
		}

		for _, ref := range refs {
			if err := reverseForSurvivor(ctx, tx, id, ref); err != nil {
				return err
			}
			if err := tx.DeleteTransaction(ctx, ref.ID); err != nil {
				return err
			}
		}
		removed = len(refs)

		return tx.DeleteEnvelope(ctx, id)
	})
	if err != nil {
		return err
	}

	s.logger.Info("envelope deleted",
		zap.Int64("envelope_id", id),
		zap.Int("transactions_removed", removed),
	)
	return nil
}

// reverseForSurvivor undoes the effect of ref on the envelope that outlives the deletion
func reverseForSurvivor(ctx context.Context, tx domain.LedgerTx, deletedID int64, ref *domain.Transaction) error {
	if ref.FromEnvelope != deletedID {
		// The deleted envelope received the funds; the source gets them back
		return tx.AdjustBudget(ctx, ref.FromEnvelope, ref.Amount)
	}

	if !ref.IsTransfer() {
		return nil
	}

	// The deleted envelope paid; the destination has to give the funds back
	survivor, err := tx.GetEnvelope(ctx, *ref.ToEnvelope)
	if err != nil {
		return err
	}
	if survivor.Budget.LessThan(ref.Amount) {
		return fmt.Errorf("envelope %d cannot return %s of transaction %d: %w",
			survivor.ID, ref.Amount, ref.ID, domain.ErrInsufficientFunds)
	}
	return tx.AdjustBudget(ctx, survivor.ID, ref.Amount.Neg())
}
