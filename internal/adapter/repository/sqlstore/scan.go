package sqlstore

import (
	"database/sql"
	"fmt"

	"github.com/hktikhin/personal-budget/internal/domain"
)

const (
	envelopeColumns    = `id, title, budget`
	transactionColumns = `id, title, from_envelope, to_envelope, amount`
)

// rowScanner is satisfied by *sql.Row and *sql.Rows
type rowScanner interface {
	Scan(dest ...any) error
}

func scanEnvelope(row rowScanner, driver Driver) (*domain.Envelope, error) {
	var envelope domain.Envelope
	var budgetStr string

	if err := row.Scan(&envelope.ID, &envelope.Title, &budgetStr); err != nil {
		return nil, err
	}

	// Parse budget (NUMERIC, or minor units on SQLite)
	budget, err := driver.parseAmount(budgetStr)
	if err != nil {
		return nil, fmt.Errorf("failed to parse budget: %w", err)
	}
	envelope.Budget = budget

	return &envelope, nil
}

func scanTransaction(row rowScanner, driver Driver) (*domain.Transaction, error) {
	var tx domain.Transaction
	var toEnvelope sql.NullInt64
	var amountStr string

	if err := row.Scan(&tx.ID, &tx.Title, &tx.FromEnvelope, &toEnvelope, &amountStr); err != nil {
		return nil, err
	}

	// Parse to_envelope (nullable)
	if toEnvelope.Valid {
		to := toEnvelope.Int64
		tx.ToEnvelope = &to
	}

	// Parse amount (NUMERIC, or minor units on SQLite)
	amount, err := driver.parseAmount(amountStr)
	if err != nil {
		return nil, fmt.Errorf("failed to parse amount: %w", err)
	}
	tx.Amount = amount

	return &tx, nil
}

func scanTransactions(rows *sql.Rows, driver Driver) ([]*domain.Transaction, error) {
	var txs []*domain.Transaction
	for rows.Next() {
		tx, err := scanTransaction(rows, driver)
		if err != nil {
			return nil, err
		}
		txs = append(txs, tx)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return txs, nil
}

// nullableID converts an optional envelope reference to a driver value
func nullableID(id *int64) any {
	if id == nil {
		return nil
	}
	return *id
}
