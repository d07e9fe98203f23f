package domain

import (
	"context"

	"github.com/shopspring/decimal"
)

// EnvelopeRepository defines the interface for envelope persistence operations
type EnvelopeRepository interface {
	// List retrieves all envelopes ordered by ID ascending
	List(ctx context.Context) ([]*Envelope, error)

	// GetByID retrieves an envelope by its ID
	// Returns ErrNotFound if no envelope matches
	GetByID(ctx context.Context, id int64) (*Envelope, error)

	// Create inserts a new envelope and sets its store-assigned ID
	Create(ctx context.Context, envelope *Envelope) error

	// Replace overwrites the title and budget of an existing envelope.
	// This is a full replace; transaction effects never go through it.
	Replace(ctx context.Context, envelope *Envelope) error

	// Count returns the number of envelopes
	Count(ctx context.Context) (int, error)
}

// TransactionRepository defines the interface for transaction read operations.
// Writes happen only inside a unit of work through LedgerTx.
type TransactionRepository interface {
	// List retrieves all transactions ordered by ID ascending
	List(ctx context.Context) ([]*Transaction, error)

	// GetByID retrieves a transaction by its ID
	// Returns ErrNotFound if no transaction matches
	GetByID(ctx context.Context, id int64) (*Transaction, error)

	// ListByEnvelope retrieves the transactions where the envelope is the
	// source or the destination, ordered by ID ascending
	ListByEnvelope(ctx context.Context, envelopeID int64) ([]*Transaction, error)

	// Count returns the number of transactions
	Count(ctx context.Context) (int, error)
}

// LedgerTx is a handle bound to one unit of work. Statements issued through
// it are invisible outside the unit until it commits.
type LedgerTx interface {
	// GetEnvelope reads an envelope as seen inside the unit
	GetEnvelope(ctx context.Context, id int64) (*Envelope, error)

	// InsertTransaction inserts a transaction row and sets its store-assigned ID
	InsertTransaction(ctx context.Context, tx *Transaction) error

	// UpdateTransaction overwrites the title and amount of a transaction row
	UpdateTransaction(ctx context.Context, tx *Transaction) error

	// DeleteTransaction removes a transaction row
	DeleteTransaction(ctx context.Context, id int64) error

	// ListTransactionsByEnvelope is ListByEnvelope evaluated inside the unit
	ListTransactionsByEnvelope(ctx context.Context, envelopeID int64) ([]*Transaction, error)

	// AdjustBudget applies budget = budget + delta in a single statement
	AdjustBudget(ctx context.Context, envelopeID int64, delta decimal.Decimal) error

	// DeleteEnvelope removes an envelope row
	DeleteEnvelope(ctx context.Context, id int64) error
}

// UnitOfWork runs a sequence of store statements atomically
type UnitOfWork interface {
	// RunAtomically commits everything work issued through tx when work
	// returns nil. Otherwise it rolls back and returns work's error unchanged.
	RunAtomically(ctx context.Context, work func(ctx context.Context, tx LedgerTx) error) error
}
