package grpc

import (
	"fmt"
	"math"
	"strconv"

	"github.com/shopspring/decimal"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/hktikhin/personal-budget/internal/domain"
	"github.com/hktikhin/personal-budget/internal/usecase/summary"
)

// field returns the named value, or nil when it is absent or null
func field(in *structpb.Struct, name string) *structpb.Value {
	if in == nil {
		return nil
	}
	v, ok := in.GetFields()[name]
	if !ok {
		return nil
	}
	if _, isNull := v.GetKind().(*structpb.Value_NullValue); isNull {
		return nil
	}
	return v
}

func stringField(in *structpb.Struct, name string) (*string, error) {
	v := field(in, name)
	if v == nil {
		return nil, nil
	}
	s, ok := v.GetKind().(*structpb.Value_StringValue)
	if !ok {
		return nil, fmt.Errorf("%w: %s must be a string", domain.ErrInvalidInput, name)
	}
	return &s.StringValue, nil
}

// idField accepts integral numbers and decimal strings
func idField(in *structpb.Struct, name string) (*int64, error) {
	v := field(in, name)
	if v == nil {
		return nil, nil
	}
	switch k := v.GetKind().(type) {
	case *structpb.Value_NumberValue:
		n := k.NumberValue
		if n != math.Trunc(n) || math.Abs(n) > 1<<53 {
			return nil, fmt.Errorf("%w: %s must be an integer", domain.ErrInvalidID, name)
		}
		id := int64(n)
		return &id, nil
	case *structpb.Value_StringValue:
		id, err := strconv.ParseInt(k.StringValue, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("%w: %s must be an integer", domain.ErrInvalidID, name)
		}
		return &id, nil
	default:
		return nil, fmt.Errorf("%w: %s must be an integer", domain.ErrInvalidID, name)
	}
}

func requiredID(in *structpb.Struct, name string) (int64, error) {
	id, err := idField(in, name)
	if err != nil {
		return 0, err
	}
	if id == nil {
		return 0, fmt.Errorf("%w: %s is required", domain.ErrInvalidID, name)
	}
	return *id, nil
}

// decimalField accepts decimal strings and numbers. Strings keep the exact value.
func decimalField(in *structpb.Struct, name string) (*decimal.Decimal, error) {
	v := field(in, name)
	if v == nil {
		return nil, nil
	}
	switch k := v.GetKind().(type) {
	case *structpb.Value_NumberValue:
		if math.IsNaN(k.NumberValue) || math.IsInf(k.NumberValue, 0) {
			return nil, fmt.Errorf("%w: %s must be a finite number", domain.ErrInvalidInput, name)
		}
		d := decimal.NewFromFloat(k.NumberValue)
		return &d, nil
	case *structpb.Value_StringValue:
		d, err := decimal.NewFromString(k.StringValue)
		if err != nil {
			return nil, fmt.Errorf("%w: %s must be a decimal number", domain.ErrInvalidInput, name)
		}
		return &d, nil
	default:
		return nil, fmt.Errorf("%w: %s must be a decimal number", domain.ErrInvalidInput, name)
	}
}

func envelopeInput(in *structpb.Struct) (domain.EnvelopeInput, error) {
	title, err := stringField(in, "title")
	if err != nil {
		return domain.EnvelopeInput{}, err
	}
	budget, err := decimalField(in, "budget")
	if err != nil {
		return domain.EnvelopeInput{}, err
	}
	return domain.EnvelopeInput{Title: title, Budget: budget}, nil
}

func transactionInput(in *structpb.Struct) (domain.TransactionInput, error) {
	var (
		input domain.TransactionInput
		err   error
	)
	if input.Title, err = stringField(in, "title"); err != nil {
		return input, err
	}
	if input.FromEnvelope, err = idField(in, "from_envelope"); err != nil {
		return input, err
	}
	if input.ToEnvelope, err = idField(in, "to_envelope"); err != nil {
		return input, err
	}
	if input.Amount, err = decimalField(in, "amount"); err != nil {
		return input, err
	}
	return input, nil
}

func envelopeMap(e *domain.Envelope) map[string]any {
	return map[string]any{
		"id":     e.ID,
		"title":  e.Title,
		"budget": e.Budget.String(),
	}
}

func transactionMap(tx *domain.Transaction) map[string]any {
	var to any
	if tx.ToEnvelope != nil {
		to = *tx.ToEnvelope
	}
	return map[string]any{
		"id":            tx.ID,
		"title":         tx.Title,
		"from_envelope": tx.FromEnvelope,
		"to_envelope":   to,
		"amount":        tx.Amount.String(),
	}
}

func envelopeStruct(e *domain.Envelope) (*structpb.Struct, error) {
	return structpb.NewStruct(envelopeMap(e))
}

func envelopeListStruct(envelopes []*domain.Envelope) (*structpb.Struct, error) {
	items := make([]any, 0, len(envelopes))
	for _, e := range envelopes {
		items = append(items, envelopeMap(e))
	}
	return structpb.NewStruct(map[string]any{"envelopes": items})
}

func transactionStruct(tx *domain.Transaction) (*structpb.Struct, error) {
	return structpb.NewStruct(transactionMap(tx))
}

func transactionListStruct(txs []*domain.Transaction) (*structpb.Struct, error) {
	items := make([]any, 0, len(txs))
	for _, tx := range txs {
		items = append(items, transactionMap(tx))
	}
	return structpb.NewStruct(map[string]any{"transactions": items})
}

func summaryStruct(r *summary.Result) (*structpb.Struct, error) {
	return structpb.NewStruct(map[string]any{
		"envelopes":    r.Envelopes,
		"transactions": r.Transactions,
		"total_budget": r.TotalBudget.String(),
	})
}
