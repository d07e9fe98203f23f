package sqlstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/hktikhin/personal-budget/internal/domain"
)

// transactionRepository implements domain.TransactionRepository
type transactionRepository struct {
	conn conn
}

// NewTransactionRepository creates a new transaction repository
func NewTransactionRepository(db *DB) domain.TransactionRepository {
	return &transactionRepository{conn: conn{q: db.DB, driver: db.Driver}}
}

// List retrieves all transactions
func (r *transactionRepository) List(ctx context.Context) ([]*domain.Transaction, error) {
	query := `SELECT ` + transactionColumns + ` FROM "transaction" ORDER BY id`

	rows, err := r.conn.query(ctx, query)
	if err != nil {
		return nil, storeError("list transactions", err)
	}
	defer rows.Close()

	txs, err := scanTransactions(rows, r.conn.driver)
	if err != nil {
		return nil, storeError("scan transactions", err)
	}
	return txs, nil
}

// GetByID retrieves a transaction by its ID
func (r *transactionRepository) GetByID(ctx context.Context, id int64) (*domain.Transaction, error) {
	query := `SELECT ` + transactionColumns + ` FROM "transaction" WHERE id = $1`

	tx, err := scanTransaction(r.conn.queryRow(ctx, query, id), r.conn.driver)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("transaction %d: %w", id, domain.ErrNotFound)
		}
		return nil, storeError("get transaction", err)
	}
	return tx, nil
}

// ListByEnvelope retrieves the transactions touching an envelope
func (r *transactionRepository) ListByEnvelope(ctx context.Context, envelopeID int64) ([]*domain.Transaction, error) {
	return listByEnvelope(ctx, r.conn, envelopeID)
}

// Count returns the number of transactions
func (r *transactionRepository) Count(ctx context.Context) (int, error) {
	var count int
	if err := r.conn.queryRow(ctx, `SELECT COUNT(*) FROM "transaction"`).Scan(&count); err != nil {
		return 0, storeError("count transactions", err)
	}
	return count, nil
}

func listByEnvelope(ctx context.Context, c conn, envelopeID int64) ([]*domain.Transaction, error) {
	query := `
		SELECT ` + transactionColumns + `
		FROM "transaction"
		WHERE from_envelope = $1 OR to_envelope = $1
		ORDER BY id`

	rows, err := c.query(ctx, query, envelopeID)
	if err != nil {
		return nil, storeError("list transactions by envelope", err)
	}
	defer rows.Close()

	txs, err := scanTransactions(rows, c.driver)
	if err != nil {
		return nil, storeError("scan transactions", err)
	}
	return txs, nil
}
