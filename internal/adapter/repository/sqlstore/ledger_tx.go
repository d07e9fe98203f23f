package sqlstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/hktikhin/personal-budget/internal/domain"
)

// ledgerTx implements domain.LedgerTx on top of one *sql.Tx
type ledgerTx struct {
	conn conn
}

func newLedgerTx(tx *sql.Tx, driver Driver) *ledgerTx {
	return &ledgerTx{conn: conn{q: tx, driver: driver}}
}

// GetEnvelope reads an envelope inside the unit
func (l *ledgerTx) GetEnvelope(ctx context.Context, id int64) (*domain.Envelope, error) {
	return getEnvelope(ctx, l.conn, id)
}

// InsertTransaction inserts a transaction row
func (l *ledgerTx) InsertTransaction(ctx context.Context, tx *domain.Transaction) error {
	query := `
		INSERT INTO "transaction" (title, from_envelope, to_envelope, amount)
		VALUES ($1, $2, $3, $4)
		RETURNING ` + transactionColumns

	stored, err := scanTransaction(l.conn.queryRow(ctx, query,
		tx.Title,
		tx.FromEnvelope,
		nullableID(tx.ToEnvelope),
		l.conn.driver.amountArg(tx.Amount),
	), l.conn.driver)
	if err != nil {
		if isForeignKeyViolation(err) {
			return fmt.Errorf("transaction references a missing envelope: %w", domain.ErrNotFound)
		}
		return storeError("insert transaction", err)
	}

	*tx = *stored
	return nil
}

// UpdateTransaction overwrites the title and amount of a transaction row.
// The parties are never rewritten.
func (l *ledgerTx) UpdateTransaction(ctx context.Context, tx *domain.Transaction) error {
	query := `
		UPDATE "transaction"
		SET title = $2, amount = $3
		WHERE id = $1
		RETURNING ` + transactionColumns

	stored, err := scanTransaction(l.conn.queryRow(ctx, query, tx.ID, tx.Title, l.conn.driver.amountArg(tx.Amount)), l.conn.driver)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return fmt.Errorf("transaction %d: %w", tx.ID, domain.ErrNotFound)
		}
		return storeError("update transaction", err)
	}

	*tx = *stored
	return nil
}

// DeleteTransaction removes a transaction row
func (l *ledgerTx) DeleteTransaction(ctx context.Context, id int64) error {
	result, err := l.conn.exec(ctx, `DELETE FROM "transaction" WHERE id = $1`, id)
	if err != nil {
		return storeError("delete transaction", err)
	}
	return requireAffected(result, "transaction", id)
}

// ListTransactionsByEnvelope lists the transactions touching an envelope inside the unit
func (l *ledgerTx) ListTransactionsByEnvelope(ctx context.Context, envelopeID int64) ([]*domain.Transaction, error) {
	return listByEnvelope(ctx, l.conn, envelopeID)
}

// AdjustBudget applies budget = budget + delta in one statement
func (l *ledgerTx) AdjustBudget(ctx context.Context, envelopeID int64, delta decimal.Decimal) error {
	result, err := l.conn.exec(ctx, `UPDATE envelope SET budget = budget + $2 WHERE id = $1`, envelopeID, l.conn.driver.amountArg(delta))
	if err != nil {
		if isCheckViolation(err) {
			return fmt.Errorf("envelope %d cannot absorb %s: %w", envelopeID, delta, domain.ErrInsufficientFunds)
		}
		return storeError("adjust budget", err)
	}
	return requireAffected(result, "envelope", envelopeID)
}

// DeleteEnvelope removes an envelope row
func (l *ledgerTx) DeleteEnvelope(ctx context.Context, id int64) error {
	result, err := l.conn.exec(ctx, `DELETE FROM envelope WHERE id = $1`, id)
	if err != nil {
		if isForeignKeyViolation(err) {
			return fmt.Errorf("envelope %d: %w", id, domain.ErrReferencedByTransaction)
		}
		return storeError("delete envelope", err)
	}
	return requireAffected(result, "envelope", id)
}

func requireAffected(result sql.Result, entity string, id int64) error {
	affected, err := result.RowsAffected()
	if err != nil {
		return storeError("read affected rows", err)
	}
	if affected == 0 {
		return fmt.Errorf("%s %d: %w", entity, id, domain.ErrNotFound)
	}
	return nil
}
