package domain

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

const (
	// AmountScale is the number of decimal places every amount carries
	AmountScale = 2

	maxAmountExponent = 18
	maxAmountDigits   = 18
)

// MaxAmount is the exclusive upper bound of a budget or transaction amount
var MaxAmount = decimal.New(1, 12)

// CheckAmount rejects amounts out of range or finer than AmountScale.
// The range checks run before the value is ever formatted, so oversized
// input such as 1e9000000 is refused without expanding it.
func CheckAmount(field string, v decimal.Decimal) error {
	exp := v.Exponent()
	if exp > maxAmountExponent || exp < -maxAmountExponent || v.NumDigits() > maxAmountDigits {
		return fmt.Errorf("%w: %s is out of range", ErrInvalidInput, field)
	}

	if v.Abs().GreaterThanOrEqual(MaxAmount) {
		return fmt.Errorf("%w: %s must be less than %s", ErrInvalidInput, field, MaxAmount)
	}

	if !v.Equal(v.Truncate(AmountScale)) {
		return fmt.Errorf("%w: %s must have at most %d decimal places", ErrInvalidInput, field, AmountScale)
	}

	return nil
}

// ValidateEnvelopeInput checks an envelope payload and returns its normalized form.
// Title must be a non-empty string and budget a positive amount.
func ValidateEnvelopeInput(in EnvelopeInput) (EnvelopeFields, error) {
	if in.Title == nil || in.Budget == nil {
		return EnvelopeFields{}, fmt.Errorf("%w: title or budget field missing", ErrInvalidInput)
	}

	title := strings.TrimSpace(*in.Title)
	if title == "" {
		return EnvelopeFields{}, fmt.Errorf("%w: title must be a non-empty string", ErrInvalidInput)
	}

	if err := CheckAmount("budget", *in.Budget); err != nil {
		return EnvelopeFields{}, err
	}

	if !in.Budget.IsPositive() {
		return EnvelopeFields{}, fmt.Errorf("%w: budget must be a positive number", ErrInvalidInput)
	}

	return EnvelopeFields{Title: title, Budget: *in.Budget}, nil
}

// ValidateAmount checks that amount is positive and does not exceed available
func ValidateAmount(amount, available decimal.Decimal) (decimal.Decimal, error) {
	if err := CheckAmount("amount", amount); err != nil {
		return decimal.Zero, err
	}

	if !amount.IsPositive() {
		return decimal.Zero, fmt.Errorf("%w: amount must be a positive number", ErrInvalidInput)
	}

	if amount.GreaterThan(available) {
		return decimal.Zero, fmt.Errorf("%w: %s requested, %s available", ErrInsufficientFunds, amount, available)
	}

	return amount, nil
}

// ValidateTransactionInput checks a transaction payload and returns its normalized form.
// It does not check that the referenced envelopes exist; that lookup belongs to the ledger.
func ValidateTransactionInput(in TransactionInput) (NewTransaction, error) {
	if in.FromEnvelope == nil || in.Amount == nil {
		return NewTransaction{}, fmt.Errorf("%w: amount or from_envelope field missing", ErrInvalidInput)
	}

	if err := CheckAmount("amount", *in.Amount); err != nil {
		return NewTransaction{}, err
	}

	tx := Transaction{
		FromEnvelope: *in.FromEnvelope,
		ToEnvelope:   in.ToEnvelope,
		Amount:       *in.Amount,
	}
	if in.Title != nil {
		tx.Title = strings.TrimSpace(*in.Title)
	}

	if err := tx.Validate(); err != nil {
		return NewTransaction{}, err
	}

	return NewTransaction{
		Title:        tx.Title,
		FromEnvelope: tx.FromEnvelope,
		ToEnvelope:   tx.ToEnvelope,
		Amount:       tx.Amount,
	}, nil
}
