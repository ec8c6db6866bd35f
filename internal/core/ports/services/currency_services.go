package services

import (
	"context"
	"time"

	"github.com/SscSPs/pricing_engine/internal/core/domain"
	"github.com/SscSPs/pricing_engine/internal/dto"
)

// CurrencyResolverSvc resolves currency reference data.
type CurrencyResolverSvc interface {
	// GetCurrency fails with apperrors.ErrUnknownCurrency when the code is
	// unrecognized or inactive.
	GetCurrency(ctx context.Context, currencyCode string) (*domain.Currency, error)

	// GetDecimalPlaces is a convenience accessor over GetCurrency.
	GetDecimalPlaces(ctx context.Context, currencyCode string) (int, error)
}

// CurrencyAdminSvc maintains currency reference data.
type CurrencyAdminSvc interface {
	// ListCurrencies returns every currency, active or not, ordered by code.
	ListCurrencies(ctx context.Context) ([]domain.Currency, error)

	// SaveCurrency upserts a currency and busts its cached lookup.
	SaveCurrency(ctx context.Context, currencyCode string, req dto.SaveCurrencyRequest, userID string) (*domain.Currency, error)
}

// FXResolverSvc resolves exchange rates as of a date.
type FXResolverSvc interface {
	// GetFxRate performs the exact-pair lookup. Fails with apperrors.ErrRateNotFound.
	GetFxRate(ctx context.Context, base, quote string, asOf time.Time) (*domain.ExchangeRate, error)

	// GetFxRateWithFallback tries the exact pair, then derives from the inverse pair.
	GetFxRateWithFallback(ctx context.Context, base, quote string, asOf time.Time) (*domain.ExchangeRate, error)

	// GetFxSnapshot captures the fallback rate for attaching to a document.
	GetFxSnapshot(ctx context.Context, base, quote string, asOf time.Time) (*domain.FXSnapshot, error)
}

// CurrencySvcFacade combines all currency-related service interfaces
type CurrencySvcFacade interface {
	CurrencyResolverSvc
	FXResolverSvc
}

// ExchangeRateWriterSvc defines write operations for exchange rate data
type ExchangeRateWriterSvc interface {
	// CreateExchangeRate appends a new exchange rate and busts cached lookups for the pair.
	CreateExchangeRate(ctx context.Context, req dto.CreateExchangeRateRequest, creatorUserID string) (*domain.ExchangeRate, error)
}
