package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"github.com/SscSPs/pricing_engine/internal/apperrors"
	"github.com/SscSPs/pricing_engine/internal/core/domain"
	portsrepo "github.com/SscSPs/pricing_engine/internal/core/ports/repositories"
	portssvc "github.com/SscSPs/pricing_engine/internal/core/ports/services"
	"github.com/SscSPs/pricing_engine/internal/dto"
	"github.com/SscSPs/pricing_engine/internal/platform/cache"
	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
)

// rateCardService resolves an organization's active rate card and its items,
// and owns the rate card write path.
type rateCardService struct {
	BaseService
	rateCardRepo   portsrepo.RateCardRepositoryFacade
	currencies     portssvc.CurrencyResolverSvc
	cacheAdmin     portssvc.CacheAdminSvc
	audit          portssvc.AuditLoggerSvc
	cache          *cache.Coordinator
	policy         CachePolicy
	matchThreshold float64
	clock          clockwork.Clock
}

// RateCardOption configures the rate card service.
type RateCardOption func(*rateCardService)

// WithDescriptionMatchThreshold overrides DefaultDescriptionMatchThreshold.
func WithDescriptionMatchThreshold(threshold float64) RateCardOption {
	return func(s *rateCardService) {
		if threshold > 0 && threshold <= 1 {
			s.matchThreshold = threshold
		}
	}
}

// WithRateCardWriteDeps wires the collaborators the write path needs.
func WithRateCardWriteDeps(currencies portssvc.CurrencyResolverSvc, cacheAdmin portssvc.CacheAdminSvc, audit portssvc.AuditLoggerSvc) RateCardOption {
	return func(s *rateCardService) {
		s.currencies = currencies
		s.cacheAdmin = cacheAdmin
		s.audit = audit
	}
}

// WithRateCardClock sets the clock used for audit fields.
func WithRateCardClock(clock clockwork.Clock) RateCardOption {
	return func(s *rateCardService) {
		s.clock = clock
	}
}

// RateCardService is the full surface of the rate card service.
type RateCardService interface {
	portssvc.RateCardResolverSvc
	portssvc.RateCardWriterSvc
}

// NewRateCardService creates the rate card resolver and writer.
func NewRateCardService(repo portsrepo.RateCardRepositoryFacade, c *cache.Coordinator, policy CachePolicy, options ...RateCardOption) RateCardService {
	svc := &rateCardService{
		rateCardRepo:   repo,
		cache:          c,
		policy:         policy,
		matchThreshold: DefaultDescriptionMatchThreshold,
		clock:          clockwork.NewRealClock(),
	}

	// Apply all options
	for _, option := range options {
		option(svc)
	}

	return svc
}

var _ RateCardService = (*rateCardService)(nil)

func (s *rateCardService) GetActiveRateCard(ctx context.Context, organizationID string, asOf time.Time) (*domain.RateCard, error) {
	asOf = domain.DateOnly(asOf)

	cached, err := cache.GetOrLoad(ctx, s.cache, activeRateCardKey(organizationID, asOf), s.policy.ActiveRateCardTTL,
		func(ctx context.Context) (*domain.RateCard, error) {
			cards, err := s.rateCardRepo.FindRateCardsCovering(ctx, organizationID, asOf)
			if err != nil {
				return nil, fmt.Errorf("failed to find rate cards for organization %s: %w", organizationID, err)
			}
			card := selectActiveRateCard(cards, asOf)
			if card == nil {
				return nil, fmt.Errorf("%w: organization %s as of %s", apperrors.ErrNoActiveRateCard, organizationID, dateKey(asOf))
			}
			return card, nil
		})
	if err != nil {
		return nil, err
	}

	card := *cached
	return &card, nil
}

// selectActiveRateCard prefers the default card, then the latest
// EffectiveFrom, then the smallest ID.
func selectActiveRateCard(cards []domain.RateCard, asOf time.Time) *domain.RateCard {
	var best *domain.RateCard
	for i := range cards {
		card := &cards[i]
		if !card.Covers(asOf) {
			continue
		}
		if best == nil || preferCard(card, best) {
			best = card
		}
	}
	if best == nil {
		return nil
	}
	selected := *best
	return &selected
}

func preferCard(a, b *domain.RateCard) bool {
	if a.IsDefault != b.IsDefault {
		return a.IsDefault
	}
	if !a.EffectiveFrom.Equal(b.EffectiveFrom) {
		return a.EffectiveFrom.After(b.EffectiveFrom)
	}
	return a.RateCardID < b.RateCardID
}

func (s *rateCardService) GetItems(ctx context.Context, rateCardID string) ([]domain.RateCardItem, error) {
	cached, err := cache.GetOrLoad(ctx, s.cache, rateCardItemsKey(rateCardID), s.policy.RateCardItemsTTL,
		func(ctx context.Context) ([]domain.RateCardItem, error) {
			items, err := s.rateCardRepo.ListRateCardItems(ctx, rateCardID)
			if err != nil {
				return nil, fmt.Errorf("failed to list items of rate card %s: %w", rateCardID, err)
			}
			active := make([]domain.RateCardItem, 0, len(items))
			for _, item := range items {
				if item.IsActive {
					active = append(active, item)
				}
			}
			sort.SliceStable(active, func(i, j int) bool {
				return newerItem(&active[i], &active[j])
			})
			return active, nil
		})
	if err != nil {
		return nil, err
	}

	// callers get their own slice; the cached one is shared
	items := make([]domain.RateCardItem, len(cached))
	copy(items, cached)
	return items, nil
}

func (s *rateCardService) FindByCategory(ctx context.Context, rateCardID, serviceCategoryID string) (*domain.RateCardItem, error) {
	items, err := s.GetItems(ctx, rateCardID)
	if err != nil {
		return nil, err
	}

	// items are sorted newest first, so the first hit wins the tie-break
	for i := range items {
		if items[i].HasCategory(serviceCategoryID) {
			item := items[i]
			return &item, nil
		}
	}
	return nil, nil
}

func (s *rateCardService) FindByDescription(ctx context.Context, rateCardID, description string) (*domain.RateCardItem, error) {
	items, err := s.GetItems(ctx, rateCardID)
	if err != nil {
		return nil, err
	}

	best, score := bestDescriptionMatch(description, items, s.matchThreshold)
	if best == nil {
		return nil, nil
	}
	s.LogDebug(ctx, "Description matched rate card item",
		slog.String("rate_card_item_id", best.RateCardItemID),
		slog.Float64("score", score))
	item := *best
	return &item, nil
}

// --- write path ---

func (s *rateCardService) loadCard(ctx context.Context, rateCardID string) (*domain.RateCard, error) {
	card, err := s.rateCardRepo.FindRateCardByID(ctx, rateCardID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, apperrors.NewNotFoundError("rate card " + rateCardID)
		}
		return nil, fmt.Errorf("failed to find rate card %s: %w", rateCardID, err)
	}
	return card, nil
}

func (s *rateCardService) SaveRateCardItem(ctx context.Context, rateCardID string, req dto.SaveRateCardItemRequest, userID string) (*domain.RateCardItem, error) {
	if _, err := s.loadCard(ctx, rateCardID); err != nil {
		return nil, err
	}

	code := normalizeCode(req.CurrencyCode)
	currency, err := s.currencies.GetCurrency(ctx, code)
	if err != nil {
		if errors.Is(err, apperrors.ErrUnknownCurrency) {
			return nil, fmt.Errorf("%w: currency code '%s' not found", apperrors.ErrValidation, code)
		}
		return nil, err
	}
	if req.UnitRate.IsNegative() {
		return nil, fmt.Errorf("%w: unit rate cannot be negative", apperrors.ErrValidation)
	}
	if !domain.RoundAmount(req.UnitRate, currency.DecimalPlaces).Equal(req.UnitRate) {
		return nil, fmt.Errorf("%w: unit rate %s has more than %d decimal places for %s",
			apperrors.ErrValidation, req.UnitRate.String(), currency.DecimalPlaces, code)
	}

	now := s.clock.Now().UTC()
	item := domain.RateCardItem{
		RateCardItemID:    req.RateCardItemID,
		RateCardID:        rateCardID,
		ServiceCategoryID: req.ServiceCategoryID,
		Description:       req.Description,
		UnitRate:          domain.NewMoney(req.UnitRate, code),
		IsActive:          true,
		AuditFields: domain.AuditFields{
			CreatedAt:     now,
			CreatedBy:     userID,
			LastUpdatedAt: now,
			LastUpdatedBy: userID,
		},
	}
	if item.RateCardItemID == "" {
		item.RateCardItemID = uuid.NewString()
	}

	saved, err := s.rateCardRepo.SaveRateCardItem(ctx, item)
	if err != nil {
		s.LogError(ctx, err, "Failed to save rate card item",
			slog.String("rate_card_id", rateCardID),
			slog.String("rate_card_item_id", item.RateCardItemID))
		return nil, fmt.Errorf("failed to save rate card item: %w", err)
	}

	s.cacheAdmin.BustRateCard(ctx, rateCardID)
	s.audit.Record(ctx, domain.AuditEntry{
		Action:     domain.AuditRateCardItemSaved,
		EntityID:   saved.RateCardItemID,
		ActorID:    userID,
		OccurredAt: now,
		Notes: map[string]string{
			"rate_card_id": rateCardID,
			"unit_rate":    saved.UnitRate.String(),
			"created_at":   saved.CreatedAt.UTC().Format(time.RFC3339),
		},
	})
	return saved, nil
}

func (s *rateCardService) DeactivateRateCardItem(ctx context.Context, rateCardID, rateCardItemID, userID string) error {
	if err := s.rateCardRepo.DeactivateRateCardItem(ctx, rateCardID, rateCardItemID, userID); err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return apperrors.NewNotFoundError("rate card item " + rateCardItemID)
		}
		s.LogError(ctx, err, "Failed to deactivate rate card item",
			slog.String("rate_card_id", rateCardID),
			slog.String("rate_card_item_id", rateCardItemID))
		return fmt.Errorf("failed to deactivate rate card item: %w", err)
	}

	s.cacheAdmin.BustRateCard(ctx, rateCardID)
	s.audit.Record(ctx, domain.AuditEntry{
		Action:     domain.AuditRateCardItemDisabled,
		EntityID:   rateCardItemID,
		ActorID:    userID,
		OccurredAt: s.clock.Now().UTC(),
		Notes:      map[string]string{"rate_card_id": rateCardID},
	})
	return nil
}

func (s *rateCardService) SetRateCardActive(ctx context.Context, rateCardID string, active bool, userID string) error {
	card, err := s.loadCard(ctx, rateCardID)
	if err != nil {
		return err
	}

	if err := s.rateCardRepo.SetRateCardActive(ctx, rateCardID, active, userID); err != nil {
		s.LogError(ctx, err, "Failed to change rate card state", slog.String("rate_card_id", rateCardID))
		return fmt.Errorf("failed to set rate card active=%t: %w", active, err)
	}

	s.cacheAdmin.BustActiveRateCards(ctx, card.OrganizationID)
	s.cacheAdmin.BustRateCard(ctx, rateCardID)
	s.audit.Record(ctx, domain.AuditEntry{
		Action:     domain.AuditRateCardActiveChanged,
		EntityID:   rateCardID,
		ActorID:    userID,
		OccurredAt: s.clock.Now().UTC(),
		Notes: map[string]string{
			"organization_id": card.OrganizationID,
			"is_active":       fmt.Sprintf("%t", active),
		},
	})
	return nil
}
