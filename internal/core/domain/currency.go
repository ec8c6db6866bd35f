package domain

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Currency represents a supported currency in the domain.
type Currency struct {
	CurrencyCode  string `json:"currencyCode"` // Primary Key (e.g., "NZD")
	Symbol        string `json:"symbol"`
	Name          string `json:"name"`
	DecimalPlaces int    `json:"decimalPlaces"` // 0..4
	IsActive      bool   `json:"isActive"`
	AuditFields
}

// FX rate sources with special meaning.
const (
	FXSourceIdentity      = "identity"
	FXSourceDerivedPrefix = "derived:"
)

// ExchangeRate is an append-only FX row, unique per (base, quote, effectiveFrom).
type ExchangeRate struct {
	ExchangeRateID string          `json:"exchangeRateID"`
	BaseCurrency   string          `json:"baseCurrency"`
	QuoteCurrency  string          `json:"quoteCurrency"`
	Rate           decimal.Decimal `json:"rate"`
	EffectiveFrom  time.Time       `json:"effectiveFrom"`
	Source         string          `json:"source"`
	Verified       bool            `json:"verified"`
	AuditFields
}

// IsDerived reports whether the rate was synthesized from its inverse.
func (r ExchangeRate) IsDerived() bool {
	return strings.HasPrefix(r.Source, FXSourceDerivedPrefix)
}

// Inverse synthesizes the reciprocal rate. Provenance is preserved in Source.
func (r ExchangeRate) Inverse() ExchangeRate {
	inv := r
	inv.BaseCurrency = r.QuoteCurrency
	inv.QuoteCurrency = r.BaseCurrency
	inv.Rate = decimal.NewFromInt(1).DivRound(r.Rate, fxDivisionPrecision)
	inv.Source = FXSourceDerivedPrefix + r.Source
	return inv
}

// fxDivisionPrecision is the scale kept when inverting a rate.
const fxDivisionPrecision = 12

// FXSnapshot is the point-in-time rate attached to a persisted quote or invoice.
type FXSnapshot struct {
	BaseCurrency  string          `json:"baseCurrency"`
	QuoteCurrency string          `json:"quoteCurrency"`
	Rate          decimal.Decimal `json:"rate"`
	Source        string          `json:"source"`
	Verified      bool            `json:"verified"`
	EffectiveFrom time.Time       `json:"effectiveFrom"`
	AsOf          time.Time       `json:"asOf"`
}

// SnapshotOf captures rate as seen on asOf.
func SnapshotOf(rate ExchangeRate, asOf time.Time) FXSnapshot {
	return FXSnapshot{
		BaseCurrency:  rate.BaseCurrency,
		QuoteCurrency: rate.QuoteCurrency,
		Rate:          rate.Rate,
		Source:        rate.Source,
		Verified:      rate.Verified,
		EffectiveFrom: rate.EffectiveFrom,
		AsOf:          asOf,
	}
}

// DateOnly truncates t to its UTC calendar date.
func DateOnly(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
