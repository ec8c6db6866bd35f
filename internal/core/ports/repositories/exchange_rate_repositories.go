package repositories

import (
	"context"
	"time"

	"github.com/SscSPs/pricing_engine/internal/core/domain"
)

// ExchangeRateReader defines read operations for exchange rate data
type ExchangeRateReader interface {
	// FindLatestExchangeRate returns the row with the greatest effective_from
	// not after asOf for the exact (base, quote) pair.
	// Returns apperrors.ErrNotFound when none exists.
	FindLatestExchangeRate(ctx context.Context, baseCurrency, quoteCurrency string, asOf time.Time) (*domain.ExchangeRate, error)
}

// ExchangeRateWriter defines write operations for exchange rate data
type ExchangeRateWriter interface {
	// InsertExchangeRate appends a new rate. Rows are never updated in place;
	// a duplicate (base, quote, effectiveFrom) yields apperrors.ErrDuplicate.
	InsertExchangeRate(ctx context.Context, rate domain.ExchangeRate) error
}

// ExchangeRateRepositoryFacade combines all exchange rate-related repository interfaces
// This is a facade for clients that need access to all operations
type ExchangeRateRepositoryFacade interface {
	ExchangeRateReader
	ExchangeRateWriter
}
