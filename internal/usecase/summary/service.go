package summary

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/hktikhin/personal-budget/internal/domain"
)

// Result is a point-in-time view of the ledger
type Result struct {
	Envelopes    int
	Transactions int
	TotalBudget  decimal.Decimal
}

// Service computes ledger totals
type Service struct {
	EnvelopeRepo    domain.EnvelopeRepository
	TransactionRepo domain.TransactionRepository
}

// NewService creates a new summary Service instance
func NewService(envelopeRepo domain.EnvelopeRepository, transactionRepo domain.TransactionRepository) *Service {
	return &Service{
		EnvelopeRepo:    envelopeRepo,
		TransactionRepo: transactionRepo,
	}
}

// Get computes the summary
// Logic:
//   - TotalBudget: sum of every envelope budget
//   - Envelopes / Transactions: row counts
func (s *Service) Get(ctx context.Context) (*Result, error) {
	envelopes, err := s.EnvelopeRepo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list envelopes: %w", err)
	}

	total := decimal.Zero
	for _, envelope := range envelopes {
		total = total.Add(envelope.Budget)
	}

	transactions, err := s.TransactionRepo.Count(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to count transactions: %w", err)
	}

	return &Result{
		Envelopes:    len(envelopes),
		Transactions: transactions,
		TotalBudget:  total,
	}, nil
}
