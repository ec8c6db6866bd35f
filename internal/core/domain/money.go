package domain

import (
	"fmt"
	"strings"

	"github.com/SscSPs/pricing_engine/internal/apperrors"
	"github.com/shopspring/decimal"
)

// MaxDecimalPlaces is the largest scale a currency may declare.
const MaxDecimalPlaces = 4

// Money is a fixed-point amount tagged with an ISO-4217 currency code.
type Money struct {
	Amount   decimal.Decimal `json:"amount"`
	Currency string          `json:"currency"`
}

// NewMoney creates a Money value with an upper-cased currency code.
func NewMoney(amount decimal.Decimal, currency string) Money {
	return Money{Amount: amount, Currency: strings.ToUpper(currency)}
}

// RoundAmount rounds half-up (away from zero on the midpoint) to decimalPlaces.
// Never banker's rounding.
func RoundAmount(amount decimal.Decimal, decimalPlaces int) decimal.Decimal {
	return amount.Round(int32(decimalPlaces))
}

// Round returns m rounded to decimalPlaces. The receiver is not modified.
func (m Money) Round(decimalPlaces int) Money {
	return Money{Amount: RoundAmount(m.Amount, decimalPlaces), Currency: m.Currency}
}

// Mul multiplies by a quantity without rounding. Negative quantities are
// rejected here so they never get masked by a later rounding step.
func (m Money) Mul(quantity decimal.Decimal) (Money, error) {
	if quantity.IsNegative() {
		return Money{}, fmt.Errorf("%w: %s", apperrors.ErrNegativeQuantity, quantity.String())
	}
	return Money{Amount: m.Amount.Mul(quantity), Currency: m.Currency}, nil
}

// Convert multiplies m by rate and rounds to toDecimalPlaces, returning a new
// Money in toCurrency. The source value is left untouched.
func Convert(m Money, toCurrency string, rate decimal.Decimal, toDecimalPlaces int) (Money, error) {
	if !rate.IsPositive() {
		return Money{}, fmt.Errorf("%w: conversion rate must be positive, got %s", apperrors.ErrValidation, rate.String())
	}
	if err := ValidateDecimalPlaces(toDecimalPlaces); err != nil {
		return Money{}, err
	}
	converted := m.Amount.Mul(rate)
	return Money{Amount: RoundAmount(converted, toDecimalPlaces), Currency: strings.ToUpper(toCurrency)}, nil
}

// ValidateDecimalPlaces checks a currency scale is within 0..MaxDecimalPlaces.
func ValidateDecimalPlaces(decimalPlaces int) error {
	if decimalPlaces < 0 || decimalPlaces > MaxDecimalPlaces {
		return fmt.Errorf("%w: decimal places must be between 0 and %d, got %d", apperrors.ErrValidation, MaxDecimalPlaces, decimalPlaces)
	}
	return nil
}

// Equal compares amount numerically and currency exactly.
func (m Money) Equal(other Money) bool {
	return m.Currency == other.Currency && m.Amount.Equal(other.Amount)
}

// IsNegative reports whether the amount is below zero.
func (m Money) IsNegative() bool {
	return m.Amount.IsNegative()
}

// String renders e.g. "150.00 NZD" using the amount's own scale.
func (m Money) String() string {
	places := -m.Amount.Exponent()
	if places < 0 {
		places = 0
	}
	return m.Amount.StringFixed(places) + " " + m.Currency
}

// Format renders the amount with exactly decimalPlaces digits.
func (m Money) Format(decimalPlaces int) string {
	return m.Amount.StringFixed(int32(decimalPlaces))
}
