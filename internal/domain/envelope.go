package domain

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// Envelope represents a named budget bucket in the domain layer
type Envelope struct {
	ID     int64
	Title  string
	Budget decimal.Decimal // Never negative once an operation commits
}

// Validate ensures the envelope adheres to domain rules
// Returns an error if validation fails
func (e *Envelope) Validate() error {
	if strings.TrimSpace(e.Title) == "" {
		return fmt.Errorf("%w: envelope title cannot be empty", ErrInvalidInput)
	}

	if e.Budget.IsNegative() {
		return fmt.Errorf("%w: envelope budget cannot be negative", ErrInvalidInput)
	}

	return nil
}

// EnvelopeInput is the raw envelope payload received by a transport.
// Nil fields were absent from the request.
type EnvelopeInput struct {
	Title  *string
	Budget *decimal.Decimal
}

// EnvelopeFields is the normalized result of ValidateEnvelopeInput
type EnvelopeFields struct {
	Title  string
	Budget decimal.Decimal
}
