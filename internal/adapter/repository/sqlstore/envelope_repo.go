package sqlstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/hktikhin/personal-budget/internal/domain"
)

// envelopeRepository implements domain.EnvelopeRepository
type envelopeRepository struct {
	conn conn
}

// NewEnvelopeRepository creates a new envelope repository
func NewEnvelopeRepository(db *DB) domain.EnvelopeRepository {
	return &envelopeRepository{conn: conn{q: db.DB, driver: db.Driver}}
}

// List retrieves all envelopes
func (r *envelopeRepository) List(ctx context.Context) ([]*domain.Envelope, error) {
	query := `SELECT ` + envelopeColumns + ` FROM envelope ORDER BY id`

	rows, err := r.conn.query(ctx, query)
	if err != nil {
		return nil, storeError("list envelopes", err)
	}
	defer rows.Close()

	var envelopes []*domain.Envelope
	for rows.Next() {
		envelope, err := scanEnvelope(rows, r.conn.driver)
		if err != nil {
			return nil, storeError("scan envelope", err)
		}
		envelopes = append(envelopes, envelope)
	}
	if err := rows.Err(); err != nil {
		return nil, storeError("iterate envelopes", err)
	}

	return envelopes, nil
}

// GetByID retrieves an envelope by its ID
func (r *envelopeRepository) GetByID(ctx context.Context, id int64) (*domain.Envelope, error) {
	return getEnvelope(ctx, r.conn, id)
}

// Create inserts a new envelope and reads back the stored row
func (r *envelopeRepository) Create(ctx context.Context, envelope *domain.Envelope) error {
	query := `
		INSERT INTO envelope (title, budget)
		VALUES ($1, $2)
		RETURNING ` + envelopeColumns

	stored, err := scanEnvelope(r.conn.queryRow(ctx, query, envelope.Title, r.conn.driver.amountArg(envelope.Budget)), r.conn.driver)
	if err != nil {
		return storeError("create envelope", err)
	}

	*envelope = *stored
	return nil
}

// Replace overwrites the title and budget of an envelope
func (r *envelopeRepository) Replace(ctx context.Context, envelope *domain.Envelope) error {
	query := `
		UPDATE envelope
		SET title = $2, budget = $3
		WHERE id = $1
		RETURNING ` + envelopeColumns

	stored, err := scanEnvelope(r.conn.queryRow(ctx, query, envelope.ID, envelope.Title, r.conn.driver.amountArg(envelope.Budget)), r.conn.driver)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return fmt.Errorf("envelope %d: %w", envelope.ID, domain.ErrNotFound)
		}
		return storeError("replace envelope", err)
	}

	*envelope = *stored
	return nil
}

// Count returns the number of envelopes
func (r *envelopeRepository) Count(ctx context.Context) (int, error) {
	var count int
	if err := r.conn.queryRow(ctx, `SELECT COUNT(*) FROM envelope`).Scan(&count); err != nil {
		return 0, storeError("count envelopes", err)
	}
	return count, nil
}

func getEnvelope(ctx context.Context, c conn, id int64) (*domain.Envelope, error) {
	query := `SELECT ` + envelopeColumns + ` FROM envelope WHERE id = $1`

	envelope, err := scanEnvelope(c.queryRow(ctx, query, id), c.driver)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("envelope %d: %w", id, domain.ErrNotFound)
		}
		return nil, storeError("get envelope", err)
	}

	return envelope, nil
}
