package domain

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// Transaction represents a transfer or an extraction in the domain layer.
// It is a directed edge from FromEnvelope to ToEnvelope, or out of the
// system when ToEnvelope is nil.
type Transaction struct {
	ID           int64
	Title        string
	FromEnvelope int64
	ToEnvelope   *int64          // NULL for an extraction
	Amount       decimal.Decimal // Always positive
}

// Validate ensures the transaction adheres to domain rules
// Returns an error if validation fails
func (t *Transaction) Validate() error {
	if t.FromEnvelope <= 0 {
		return fmt.Errorf("%w: from_envelope must be a positive integer", ErrInvalidID)
	}

	if t.ToEnvelope != nil {
		if *t.ToEnvelope <= 0 {
			return fmt.Errorf("%w: to_envelope must be a positive integer", ErrInvalidID)
		}
		if *t.ToEnvelope == t.FromEnvelope {
			return fmt.Errorf("%w: from_envelope and to_envelope must differ", ErrInvalidInput)
		}
	}

	if !t.Amount.IsPositive() {
		return fmt.Errorf("%w: amount must be positive", ErrInvalidInput)
	}

	return nil
}

// IsTransfer reports whether the transaction credits a destination envelope
func (t *Transaction) IsTransfer() bool {
	return t.ToEnvelope != nil
}

// SameParties reports whether t moves money from the envelope from to the
// envelope to (nil meaning no destination).
func (t *Transaction) SameParties(from int64, to *int64) bool {
	if t.FromEnvelope != from {
		return false
	}
	if t.ToEnvelope == nil || to == nil {
		return t.ToEnvelope == nil && to == nil
	}
	return *t.ToEnvelope == *to
}

// TransactionInput is the raw transaction payload received by a transport.
// Nil fields were absent from the request.
type TransactionInput struct {
	Title        *string
	FromEnvelope *int64
	ToEnvelope   *int64
	Amount       *decimal.Decimal
}

// NewTransaction is the normalized result of ValidateTransactionInput
type NewTransaction struct {
	Title        string
	FromEnvelope int64
	ToEnvelope   *int64
	Amount       decimal.Decimal
}
