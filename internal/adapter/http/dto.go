package http

import (
	"github.com/shopspring/decimal"

	"github.com/hktikhin/personal-budget/internal/domain"
	"github.com/hktikhin/personal-budget/internal/usecase/summary"
)

func init() {
	// Amounts go out as JSON numbers, matching what clients send
	decimal.MarshalJSONWithoutQuotes = true
}

// envelopeRequest is the body of POST /envelopes and PUT /envelopes/:id
type envelopeRequest struct {
	Title  *string          `json:"title"`
	Budget *decimal.Decimal `json:"budget"`
}

func (r envelopeRequest) input() domain.EnvelopeInput {
	return domain.EnvelopeInput{Title: r.Title, Budget: r.Budget}
}

// transactionRequest is the body of POST /transactions and PUT /transactions/:id
type transactionRequest struct {
	Title        *string          `json:"title"`
	FromEnvelope *int64           `json:"from_envelope"`
	ToEnvelope   *int64           `json:"to_envelope"`
	Amount       *decimal.Decimal `json:"amount"`
}

func (r transactionRequest) input() domain.TransactionInput {
	return domain.TransactionInput{
		Title:        r.Title,
		FromEnvelope: r.FromEnvelope,
		ToEnvelope:   r.ToEnvelope,
		Amount:       r.Amount,
	}
}

// amountRequest is the body of the extract and transfer shortcuts
type amountRequest struct {
	TransactionAmount *decimal.Decimal `json:"transactionAmount"`
	Title             *string          `json:"title"`
}

type envelopeResponse struct {
	ID     int64           `json:"id"`
	Title  string          `json:"title"`
	Budget decimal.Decimal `json:"budget"`
}

func newEnvelopeResponse(e *domain.Envelope) envelopeResponse {
	return envelopeResponse{ID: e.ID, Title: e.Title, Budget: e.Budget}
}

func newEnvelopeResponses(envelopes []*domain.Envelope) []envelopeResponse {
	out := make([]envelopeResponse, 0, len(envelopes))
	for _, e := range envelopes {
		out = append(out, newEnvelopeResponse(e))
	}
	return out
}

type transactionResponse struct {
	ID           int64           `json:"id"`
	Title        string          `json:"title"`
	FromEnvelope int64           `json:"from_envelope"`
	ToEnvelope   *int64          `json:"to_envelope"`
	Amount       decimal.Decimal `json:"amount"`
}

func newTransactionResponse(tx *domain.Transaction) transactionResponse {
	return transactionResponse{
		ID:           tx.ID,
		Title:        tx.Title,
		FromEnvelope: tx.FromEnvelope,
		ToEnvelope:   tx.ToEnvelope,
		Amount:       tx.Amount,
	}
}

func newTransactionResponses(txs []*domain.Transaction) []transactionResponse {
	out := make([]transactionResponse, 0, len(txs))
	for _, tx := range txs {
		out = append(out, newTransactionResponse(tx))
	}
	return out
}

type summaryResponse struct {
	Envelopes    int             `json:"envelopes"`
	Transactions int             `json:"transactions"`
	TotalBudget  decimal.Decimal `json:"total_budget"`
}

func newSummaryResponse(r *summary.Result) summaryResponse {
	return summaryResponse{
		Envelopes:    r.Envelopes,
		Transactions: r.Transactions,
		TotalBudget:  r.TotalBudget,
	}
}
