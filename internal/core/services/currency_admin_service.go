package services

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	"github.com/SscSPs/pricing_engine/internal/apperrors"
	"github.com/SscSPs/pricing_engine/internal/core/domain"
	portsrepo "github.com/SscSPs/pricing_engine/internal/core/ports/repositories"
	portssvc "github.com/SscSPs/pricing_engine/internal/core/ports/services"
	"github.com/SscSPs/pricing_engine/internal/dto"
	"github.com/jonboulle/clockwork"
)

// CurrencyAdminService maintains the currencies table.
type CurrencyAdminService struct {
	BaseService
	currencyRepo portsrepo.CurrencyRepositoryFacade
	cacheAdmin   portssvc.CacheAdminSvc
	audit        portssvc.AuditLoggerSvc
	clock        clockwork.Clock
}

// NewCurrencyAdminService creates a new CurrencyAdminService.
func NewCurrencyAdminService(currencyRepo portsrepo.CurrencyRepositoryFacade, cacheAdmin portssvc.CacheAdminSvc, audit portssvc.AuditLoggerSvc, clock clockwork.Clock) *CurrencyAdminService {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	return &CurrencyAdminService{
		currencyRepo: currencyRepo,
		cacheAdmin:   cacheAdmin,
		audit:        audit,
		clock:        clock,
	}
}

var _ portssvc.CurrencyAdminSvc = (*CurrencyAdminService)(nil)

func (s *CurrencyAdminService) ListCurrencies(ctx context.Context) ([]domain.Currency, error) {
	currencies, err := s.currencyRepo.ListCurrencies(ctx)
	if err != nil {
		s.LogError(ctx, err, "Failed to list currencies")
		return nil, fmt.Errorf("failed to list currencies: %w", err)
	}
	return currencies, nil
}

// SaveCurrency upserts the currency and busts its cached lookup, so a scale
// change or deactivation is visible to the next resolution.
func (s *CurrencyAdminService) SaveCurrency(ctx context.Context, currencyCode string, req dto.SaveCurrencyRequest, userID string) (*domain.Currency, error) {
	code := normalizeCode(currencyCode)
	if len(code) != 3 {
		return nil, fmt.Errorf("%w: currency code must be 3 letters, got %q", apperrors.ErrValidation, currencyCode)
	}
	if req.DecimalPlaces == nil {
		return nil, fmt.Errorf("%w: decimalPlaces is required", apperrors.ErrValidation)
	}
	if err := domain.ValidateDecimalPlaces(*req.DecimalPlaces); err != nil {
		return nil, err
	}
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, fmt.Errorf("%w: name is required", apperrors.ErrValidation)
	}

	isActive := true
	if req.IsActive != nil {
		isActive = *req.IsActive
	}

	now := s.clock.Now().UTC()
	currency := domain.Currency{
		CurrencyCode:  code,
		Symbol:        strings.TrimSpace(req.Symbol),
		Name:          name,
		DecimalPlaces: *req.DecimalPlaces,
		IsActive:      isActive,
		AuditFields: domain.AuditFields{
			CreatedAt:     now,
			CreatedBy:     userID,
			LastUpdatedAt: now,
			LastUpdatedBy: userID,
		},
	}

	saved, err := s.currencyRepo.SaveCurrency(ctx, currency)
	if err != nil {
		s.LogError(ctx, err, "Failed to save currency", slog.String("currency_code", code))
		return nil, fmt.Errorf("failed to save currency in service: %w", err)
	}

	s.cacheAdmin.BustCurrency(ctx, code)

	s.audit.Record(ctx, domain.AuditEntry{
		Action:     domain.AuditCurrencySaved,
		EntityID:   code,
		ActorID:    userID,
		OccurredAt: now,
		Notes: map[string]string{
			"decimal_places": strconv.Itoa(saved.DecimalPlaces),
			"is_active":      strconv.FormatBool(saved.IsActive),
		},
	})

	s.LogInfo(ctx, "Currency saved",
		slog.String("currency_code", code),
		slog.Int("decimal_places", saved.DecimalPlaces),
		slog.Bool("is_active", saved.IsActive))
	return saved, nil
}
