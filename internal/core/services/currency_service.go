package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/SscSPs/pricing_engine/internal/apperrors"
	"github.com/SscSPs/pricing_engine/internal/core/domain"
	portsrepo "github.com/SscSPs/pricing_engine/internal/core/ports/repositories"
	portssvc "github.com/SscSPs/pricing_engine/internal/core/ports/services"
	"github.com/SscSPs/pricing_engine/internal/platform/cache"
	"github.com/shopspring/decimal"
)

// currencyService resolves currency metadata and FX rates through the cache.
type currencyService struct {
	BaseService
	currencyRepo portsrepo.CurrencyReader
	rateRepo     portsrepo.ExchangeRateReader
	cache        *cache.Coordinator
	policy       CachePolicy
}

// NewCurrencyService creates the Currency & FX resolver.
func NewCurrencyService(currencyRepo portsrepo.CurrencyReader, rateRepo portsrepo.ExchangeRateReader, c *cache.Coordinator, policy CachePolicy) portssvc.CurrencySvcFacade {
	return &currencyService{
		currencyRepo: currencyRepo,
		rateRepo:     rateRepo,
		cache:        c,
		policy:       policy,
	}
}

var _ portssvc.CurrencySvcFacade = (*currencyService)(nil)

func (s *currencyService) GetCurrency(ctx context.Context, currencyCode string) (*domain.Currency, error) {
	code := normalizeCode(currencyCode)
	if len(code) != 3 {
		return nil, fmt.Errorf("%w: %q", apperrors.ErrUnknownCurrency, currencyCode)
	}

	cached, err := cache.GetOrLoad(ctx, s.cache, currencyKey(code), s.policy.CurrencyTTL,
		func(ctx context.Context) (*domain.Currency, error) {
			currency, err := s.currencyRepo.FindCurrencyByCode(ctx, code)
			if err != nil {
				if errors.Is(err, apperrors.ErrNotFound) {
					return nil, fmt.Errorf("%w: %s", apperrors.ErrUnknownCurrency, code)
				}
				return nil, fmt.Errorf("failed to find currency %s: %w", code, err)
			}
			return currency, nil
		})
	if err != nil {
		return nil, err
	}

	if !cached.IsActive {
		return nil, fmt.Errorf("%w: %s is inactive", apperrors.ErrUnknownCurrency, code)
	}
	if err := domain.ValidateDecimalPlaces(cached.DecimalPlaces); err != nil {
		s.LogError(ctx, err, "Currency has invalid decimal places", slog.String("currency_code", code))
		return nil, fmt.Errorf("%w: %s: %w", apperrors.ErrUnknownCurrency, code, err)
	}

	currency := *cached
	return &currency, nil
}

func (s *currencyService) GetDecimalPlaces(ctx context.Context, currencyCode string) (int, error) {
	currency, err := s.GetCurrency(ctx, currencyCode)
	if err != nil {
		return 0, err
	}
	return currency.DecimalPlaces, nil
}

func (s *currencyService) GetFxRate(ctx context.Context, base, quote string, asOf time.Time) (*domain.ExchangeRate, error) {
	base, quote = normalizeCode(base), normalizeCode(quote)
	asOf = domain.DateOnly(asOf)

	if base == quote {
		return identityRate(base, asOf), nil
	}

	cached, err := cache.GetOrLoad(ctx, s.cache, fxKey(base, quote, asOf), s.policy.FxTTL,
		func(ctx context.Context) (*domain.ExchangeRate, error) {
			return s.findRate(ctx, base, quote, asOf)
		})
	if err != nil {
		return nil, err
	}
	rate := *cached
	return &rate, nil
}

func (s *currencyService) GetFxRateWithFallback(ctx context.Context, base, quote string, asOf time.Time) (*domain.ExchangeRate, error) {
	base, quote = normalizeCode(base), normalizeCode(quote)
	asOf = domain.DateOnly(asOf)

	if base == quote {
		return identityRate(base, asOf), nil
	}

	cached, err := cache.GetOrLoad(ctx, s.cache, fxFallbackKey(base, quote, asOf), s.policy.FxTTL,
		func(ctx context.Context) (*domain.ExchangeRate, error) {
			direct, err := s.findRate(ctx, base, quote, asOf)
			if err == nil {
				return direct, nil
			}
			if !errors.Is(err, apperrors.ErrRateNotFound) {
				return nil, err
			}

			inverse, invErr := s.findRate(ctx, quote, base, asOf)
			if invErr != nil {
				if errors.Is(invErr, apperrors.ErrRateNotFound) {
					return nil, fmt.Errorf("%w: %s/%s as of %s in either direction", apperrors.ErrRateNotFound, base, quote, dateKey(asOf))
				}
				return nil, invErr
			}

			derived := inverse.Inverse()
			s.LogDebug(ctx, "Derived FX rate from inverse pair",
				slog.String("base", base),
				slog.String("quote", quote),
				slog.String("source", derived.Source))
			return &derived, nil
		})
	if err != nil {
		return nil, err
	}
	rate := *cached
	return &rate, nil
}

func (s *currencyService) GetFxSnapshot(ctx context.Context, base, quote string, asOf time.Time) (*domain.FXSnapshot, error) {
	rate, err := s.GetFxRateWithFallback(ctx, base, quote, asOf)
	if err != nil {
		return nil, err
	}
	snapshot := domain.SnapshotOf(*rate, domain.DateOnly(asOf))
	return &snapshot, nil
}

// findRate is the uncached exact-pair lookup.
func (s *currencyService) findRate(ctx context.Context, base, quote string, asOf time.Time) (*domain.ExchangeRate, error) {
	rate, err := s.rateRepo.FindLatestExchangeRate(ctx, base, quote, asOf)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, fmt.Errorf("%w: %s/%s as of %s", apperrors.ErrRateNotFound, base, quote, dateKey(asOf))
		}
		return nil, fmt.Errorf("failed to find exchange rate %s/%s: %w", base, quote, err)
	}
	return rate, nil
}

func identityRate(code string, asOf time.Time) *domain.ExchangeRate {
	return &domain.ExchangeRate{
		BaseCurrency:  code,
		QuoteCurrency: code,
		Rate:          decimal.NewFromInt(1),
		EffectiveFrom: asOf,
		Source:        domain.FXSourceIdentity,
		Verified:      true,
	}
}
