package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/SscSPs/pricing_engine/internal/apperrors"
	"github.com/SscSPs/pricing_engine/internal/core/domain"
	portsrepo "github.com/SscSPs/pricing_engine/internal/core/ports/repositories"
	portssvc "github.com/SscSPs/pricing_engine/internal/core/ports/services"
	"github.com/SscSPs/pricing_engine/internal/dto"
	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
)

// ExchangeRateService provides the write path for exchange rates.
type ExchangeRateService struct {
	BaseService
	rateRepo   portsrepo.ExchangeRateWriter
	currencies portssvc.CurrencyResolverSvc
	cacheAdmin portssvc.CacheAdminSvc
	audit      portssvc.AuditLoggerSvc
	clock      clockwork.Clock
}

// NewExchangeRateService creates a new ExchangeRateService.
func NewExchangeRateService(rateRepo portsrepo.ExchangeRateWriter, currencies portssvc.CurrencyResolverSvc, cacheAdmin portssvc.CacheAdminSvc, audit portssvc.AuditLoggerSvc, clock clockwork.Clock) *ExchangeRateService {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	return &ExchangeRateService{
		rateRepo:   rateRepo,
		currencies: currencies,
		cacheAdmin: cacheAdmin,
		audit:      audit,
		clock:      clock,
	}
}

var _ portssvc.ExchangeRateWriterSvc = (*ExchangeRateService)(nil)

// CreateExchangeRate appends a new rate and busts every cached lookup of the pair.
func (s *ExchangeRateService) CreateExchangeRate(ctx context.Context, req dto.CreateExchangeRateRequest, creatorUserID string) (*domain.ExchangeRate, error) {
	base, quote := normalizeCode(req.BaseCurrency), normalizeCode(req.QuoteCurrency)

	// Additional Service-Level Validations
	if !req.Rate.IsPositive() {
		return nil, fmt.Errorf("%w: exchange rate must be positive", apperrors.ErrValidation)
	}
	if base == quote {
		return nil, fmt.Errorf("%w: base and quote currency codes cannot be the same", apperrors.ErrValidation)
	}
	if req.EffectiveFrom.IsZero() {
		return nil, fmt.Errorf("%w: effectiveFrom is required", apperrors.ErrValidation)
	}

	for _, code := range []string{base, quote} {
		if _, err := s.currencies.GetCurrency(ctx, code); err != nil {
			if errors.Is(err, apperrors.ErrUnknownCurrency) {
				return nil, fmt.Errorf("%w: currency code '%s' not found", apperrors.ErrValidation, code)
			}
			return nil, fmt.Errorf("failed to validate currency '%s': %w", code, err)
		}
	}

	now := s.clock.Now().UTC()
	rate := domain.ExchangeRate{
		ExchangeRateID: uuid.NewString(),
		BaseCurrency:   base,
		QuoteCurrency:  quote,
		Rate:           req.Rate,
		EffectiveFrom:  domain.DateOnly(req.EffectiveFrom),
		Source:         req.Source,
		Verified:       req.Verified,
		AuditFields: domain.AuditFields{
			CreatedAt:     now,
			CreatedBy:     creatorUserID,
			LastUpdatedAt: now,
			LastUpdatedBy: creatorUserID,
		},
	}

	if err := s.rateRepo.InsertExchangeRate(ctx, rate); err != nil {
		s.LogError(ctx, err, "Failed to insert exchange rate",
			slog.String("base", base),
			slog.String("quote", quote),
			slog.String("effective_from", dateKey(rate.EffectiveFrom)))
		return nil, fmt.Errorf("failed to create exchange rate in service: %w", err)
	}

	s.cacheAdmin.BustFxRate(ctx, base, quote)

	s.audit.Record(ctx, domain.AuditEntry{
		Action:     domain.AuditExchangeRateCreated,
		EntityID:   rate.ExchangeRateID,
		ActorID:    creatorUserID,
		OccurredAt: now,
		Notes: map[string]string{
			"pair":           base + "/" + quote,
			"rate":           rate.Rate.String(),
			"effective_from": dateKey(rate.EffectiveFrom),
			"source":         rate.Source,
		},
	})

	s.LogInfo(ctx, "Exchange rate created",
		slog.String("exchange_rate_id", rate.ExchangeRateID),
		slog.String("pair", base+"/"+quote))
	return &rate, nil
}
