package dto

import (
	"time"

	"github.com/SscSPs/pricing_engine/internal/core/domain"
	"github.com/shopspring/decimal"
)

// CreateExchangeRateRequest defines the structure for appending a new exchange rate.
type CreateExchangeRateRequest struct {
	BaseCurrency  string          `json:"baseCurrency" binding:"required,iso4217"`
	QuoteCurrency string          `json:"quoteCurrency" binding:"required,iso4217,nefield=BaseCurrency"`
	Rate          decimal.Decimal `json:"rate" binding:"required,gt=0"`
	EffectiveFrom time.Time       `json:"effectiveFrom" binding:"required"`
	Source        string          `json:"source" binding:"required,max=64"`
	Verified      bool            `json:"verified"`
}

// ExchangeRateResponse defines the structure for API responses containing exchange rate details.
type ExchangeRateResponse struct {
	ExchangeRateID string          `json:"exchangeRateID"`
	BaseCurrency   string          `json:"baseCurrency"`
	QuoteCurrency  string          `json:"quoteCurrency"`
	Rate           decimal.Decimal `json:"rate"`
	EffectiveFrom  string          `json:"effectiveFrom"`
	Source         string          `json:"source"`
	Verified       bool            `json:"verified"`
	CreatedAt      time.Time       `json:"createdAt"`
	CreatedBy      string          `json:"createdBy"`
}

// ToExchangeRateResponse converts a domain.ExchangeRate to ExchangeRateResponse DTO
func ToExchangeRateResponse(rate *domain.ExchangeRate) ExchangeRateResponse {
	return ExchangeRateResponse{
		ExchangeRateID: rate.ExchangeRateID,
		BaseCurrency:   rate.BaseCurrency,
		QuoteCurrency:  rate.QuoteCurrency,
		Rate:           rate.Rate,
		EffectiveFrom:  rate.EffectiveFrom.Format(time.DateOnly),
		Source:         rate.Source,
		Verified:       rate.Verified,
		CreatedAt:      rate.CreatedAt,
		CreatedBy:      rate.CreatedBy,
	}
}

// FXSnapshotResponse is the point-in-time rate a quote or invoice stores.
type FXSnapshotResponse struct {
	BaseCurrency  string          `json:"baseCurrency"`
	QuoteCurrency string          `json:"quoteCurrency"`
	Rate          decimal.Decimal `json:"rate"`
	Source        string          `json:"source"`
	Verified      bool            `json:"verified"`
	Derived       bool            `json:"derived"`
	EffectiveFrom string          `json:"effectiveFrom"`
	AsOf          string          `json:"asOf"`
}

// ToFXSnapshotResponse converts a domain.FXSnapshot to its DTO.
func ToFXSnapshotResponse(s domain.FXSnapshot) FXSnapshotResponse {
	return FXSnapshotResponse{
		BaseCurrency:  s.BaseCurrency,
		QuoteCurrency: s.QuoteCurrency,
		Rate:          s.Rate,
		Source:        s.Source,
		Verified:      s.Verified,
		Derived:       domain.ExchangeRate{Source: s.Source}.IsDerived(),
		EffectiveFrom: s.EffectiveFrom.Format(time.DateOnly),
		AsOf:          s.AsOf.Format(time.DateOnly),
	}
}
