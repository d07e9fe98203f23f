package domain

import "errors"

// Error kinds shared by every layer. Callers wrap them with context using
// fmt.Errorf("...: %w", ...) and classify them with errors.Is.
var (
	// ErrInvalidInput reports malformed or missing fields
	ErrInvalidInput = errors.New("invalid input")

	// ErrInvalidID reports an identifier that is not a positive integer
	ErrInvalidID = errors.New("invalid id")

	// ErrNotFound reports that no record exists for an identifier
	ErrNotFound = errors.New("not found")

	// ErrInsufficientFunds reports an amount larger than the balance of the
	// envelope that has to pay it
	ErrInsufficientFunds = errors.New("insufficient funds")

	// ErrStakeholderMismatch reports an update that tries to change the
	// source or destination envelope of a transaction
	ErrStakeholderMismatch = errors.New("stakeholder mismatch")

	// ErrReferencedByTransaction reports an envelope deletion refused because
	// transactions still point at the envelope
	ErrReferencedByTransaction = errors.New("envelope referenced by transactions")

	// ErrStoreFailure wraps any error coming from the underlying store
	ErrStoreFailure = errors.New("store failure")
)
