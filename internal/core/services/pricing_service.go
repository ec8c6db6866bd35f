package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/SscSPs/pricing_engine/internal/apperrors"
	"github.com/SscSPs/pricing_engine/internal/core/domain"
	portsrepo "github.com/SscSPs/pricing_engine/internal/core/ports/repositories"
	portssvc "github.com/SscSPs/pricing_engine/internal/core/ports/services"
	"github.com/SscSPs/pricing_engine/internal/platform/cache"
	"github.com/SscSPs/pricing_engine/internal/platform/metrics"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"
)

const (
	pricingTracerName = "github.com/SscSPs/pricing_engine/internal/core/services"

	defaultPricingConcurrency = 8
	unmatchedReason           = "no override, category or description match"
)

// pricingService applies the three-tier policy (override, category match,
// description fallback) to every line item of a batch.
type pricingService struct {
	BaseService
	currencies  portssvc.CurrencySvcFacade
	rateCards   portssvc.RateCardResolverSvc
	permissions portssvc.PermissionCheckerSvc
	orgRepo     portsrepo.OrganizationReader
	cache       *cache.Coordinator
	policy      CachePolicy

	metrics     metrics.Sink
	tracer      trace.Tracer
	deadline    time.Duration
	concurrency int
}

// PricingOption configures the pricing service.
type PricingOption func(*pricingService)

// WithPricingDeadline bounds a whole ResolvePricing call.
func WithPricingDeadline(d time.Duration) PricingOption {
	return func(s *pricingService) {
		s.deadline = d
	}
}

// WithPricingConcurrency caps how many line items resolve in parallel.
func WithPricingConcurrency(n int) PricingOption {
	return func(s *pricingService) {
		if n > 0 {
			s.concurrency = n
		}
	}
}

// WithPricingMetrics sets the metrics sink.
func WithPricingMetrics(sink metrics.Sink) PricingOption {
	return func(s *pricingService) {
		if sink != nil {
			s.metrics = sink
		}
	}
}

// WithPricingTracer overrides the tracer taken from the global provider.
func WithPricingTracer(tracer trace.Tracer) PricingOption {
	return func(s *pricingService) {
		if tracer != nil {
			s.tracer = tracer
		}
	}
}

// NewPricingService creates the pricing resolver.
func NewPricingService(
	currencies portssvc.CurrencySvcFacade,
	rateCards portssvc.RateCardResolverSvc,
	permissions portssvc.PermissionCheckerSvc,
	orgRepo portsrepo.OrganizationReader,
	c *cache.Coordinator,
	policy CachePolicy,
	options ...PricingOption,
) portssvc.PricingSvc {
	svc := &pricingService{
		currencies:  currencies,
		rateCards:   rateCards,
		permissions: permissions,
		orgRepo:     orgRepo,
		cache:       c,
		policy:      policy,
		metrics:     metrics.Nop{},
		tracer:      otel.Tracer(pricingTracerName),
		concurrency: defaultPricingConcurrency,
	}

	for _, option := range options {
		option(svc)
	}

	return svc
}

var _ portssvc.PricingSvc = (*pricingService)(nil)

func (s *pricingService) ResolvePricing(ctx context.Context, req domain.PricingRequest) (*domain.PricingResult, error) {
	start := time.Now()
	defer func() {
		s.metrics.Observe(metrics.PricingDuration, "resolve", time.Since(start))
	}()

	if s.deadline > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.deadline)
		defer cancel()
	}

	ctx, span := s.tracer.Start(ctx, "PricingService.ResolvePricing", trace.WithAttributes(
		attribute.String("organization.id", req.OrganizationID),
		attribute.String("pricing.as_of", dateKey(req.AsOfDate)),
		attribute.Int("pricing.line_items", len(req.LineItems)),
	))
	defer span.End()

	result, err := s.resolve(ctx, req)
	if err != nil {
		span.RecordError(err)
		if !errors.Is(err, apperrors.ErrUnmatchedLineItem) {
			span.SetStatus(codes.Error, err.Error())
		}
		s.metrics.Inc(metrics.PricingBatchFailed, failureReason(err))
		s.LogDebug(ctx, "Pricing resolution failed",
			slog.String("organization_id", req.OrganizationID),
			slog.String("error", err.Error()))
	}
	return result, err
}

func (s *pricingService) resolve(ctx context.Context, req domain.PricingRequest) (*domain.PricingResult, error) {
	if err := validatePricingRequest(req); err != nil {
		return nil, err
	}
	asOf := domain.DateOnly(req.AsOfDate)

	org, err := s.organization(ctx, req.OrganizationID)
	if err != nil {
		return nil, err
	}

	billing, err := s.currencies.GetCurrency(ctx, org.BillingCurrencyCode)
	if err != nil {
		return nil, fmt.Errorf("billing currency of organization %s: %w", org.OrganizationID, err)
	}

	card, err := s.rateCards.GetActiveRateCard(ctx, org.OrganizationID, asOf)
	if err != nil {
		return nil, err
	}

	call := &pricingCall{
		svc:         s,
		actorID:     req.ActorID,
		asOf:        asOf,
		card:        card,
		billing:     billing,
		category:    make(map[string]*domain.RateCardItem),
		description: make(map[string]*domain.RateCardItem),
		snapshots:   make(map[string]domain.FXSnapshot),
	}

	outcomes := make([]itemOutcome, len(req.LineItems))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.concurrency)
	for i, in := range req.LineItems {
		g.Go(func() error {
			out, err := call.resolveItem(gctx, i, in)
			if err != nil {
				return err
			}
			outcomes[i] = out
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("pricing resolution for organization %s: %w", org.OrganizationID, err)
	}
	// a batch that ran past its deadline is never returned, even if every item made it
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("pricing resolution for organization %s: %w", org.OrganizationID, err)
	}

	result := &domain.PricingResult{
		Resolved:             make([]domain.ResolvedLineItem, 0, len(outcomes)),
		RateCardID:           card.RateCardID,
		BillingCurrency:      billing.CurrencyCode,
		BillingDecimalPlaces: billing.DecimalPlaces,
		FXSnapshots:          call.snapshotList(),
	}
	unmatched := &apperrors.UnmatchedLineItemsError{}
	for i, out := range outcomes {
		if out.reason != "" {
			unmatched.Add(i, req.LineItems[i].Description, out.reason)
			s.metrics.Inc(metrics.PricingItemUnmatched, "pricing")
			continue
		}
		result.Resolved = append(result.Resolved, out.item)
		s.metrics.Inc(metrics.PricingItemResolved, string(out.item.Source))
	}

	if unmatched.HasErrors() {
		return result, unmatched
	}
	return result, nil
}

func validatePricingRequest(req domain.PricingRequest) error {
	if strings.TrimSpace(req.OrganizationID) == "" {
		return apperrors.NewValidationError("organization id is required")
	}
	if req.AsOfDate.IsZero() {
		return apperrors.NewValidationError("as-of date is required")
	}
	if len(req.LineItems) == 0 {
		return apperrors.NewValidationError("at least one line item is required")
	}
	for i, in := range req.LineItems {
		if in.Quantity.IsNegative() {
			return fmt.Errorf("%w: line item %d has quantity %s", apperrors.ErrNegativeQuantity, i, in.Quantity.String())
		}
	}
	return nil
}

func (s *pricingService) organization(ctx context.Context, organizationID string) (*domain.Organization, error) {
	cached, err := cache.GetOrLoad(ctx, s.cache, organizationKey(organizationID), s.policy.OrganizationTTL,
		func(ctx context.Context) (*domain.Organization, error) {
			org, err := s.orgRepo.FindOrganizationByID(ctx, organizationID)
			if err != nil {
				if errors.Is(err, apperrors.ErrNotFound) {
					return nil, apperrors.NewNotFoundError("organization " + organizationID)
				}
				return nil, fmt.Errorf("failed to find organization %s: %w", organizationID, err)
			}
			return org, nil
		})
	if err != nil {
		return nil, err
	}
	org := *cached
	return &org, nil
}

func failureReason(err error) string {
	switch {
	case errors.Is(err, apperrors.ErrNoActiveRateCard):
		return "no_active_rate_card"
	case errors.Is(err, apperrors.ErrUnmatchedLineItem):
		return "unmatched"
	case errors.Is(err, context.DeadlineExceeded):
		return "timeout"
	case errors.Is(err, apperrors.ErrValidation), errors.Is(err, apperrors.ErrNegativeQuantity):
		return "invalid"
	default:
		return "error"
	}
}

// itemOutcome is either a resolved item or the reason it stayed unmatched.
type itemOutcome struct {
	item   domain.ResolvedLineItem
	reason string
}

// pricingCall holds the state of one ResolvePricing call: the selected card,
// the billing currency and the per-call memoized lookups.
type pricingCall struct {
	svc     *pricingService
	actorID string
	asOf    time.Time
	card    *domain.RateCard
	billing *domain.Currency

	overrideOnce    sync.Once
	overrideAllowed bool
	overrideErr     error

	mu          sync.Mutex
	category    map[string]*domain.RateCardItem
	description map[string]*domain.RateCardItem
	snapshots   map[string]domain.FXSnapshot
}

// resolveItem returns a non-nil error only for failures that must abort the
// batch. Lookup failures scoped to this item come back as a reason.
func (c *pricingCall) resolveItem(ctx context.Context, index int, in domain.LineItemInput) (itemOutcome, error) {
	ctx, span := c.svc.tracer.Start(ctx, "PricingService.resolveLineItem",
		trace.WithAttributes(attribute.Int("line_item.index", index)))
	defer span.End()

	var (
		price  *domain.Money
		source domain.PriceSource
		itemID *string
	)

	if in.ExplicitUnitPrice != nil {
		allowed, err := c.canOverride(ctx)
		if err != nil {
			return itemOutcome{}, err
		}
		if allowed {
			p := *in.ExplicitUnitPrice
			price, source = &p, domain.PriceSourceOverride
		} else {
			c.svc.LogDebug(ctx, "Explicit unit price ignored, actor lacks override permission",
				slog.Int("line_item_index", index),
				slog.String("actor_id", c.actorID))
		}
	}

	if price == nil && in.ServiceCategoryID != nil && *in.ServiceCategoryID != "" {
		item, err := c.byCategory(ctx, *in.ServiceCategoryID)
		if err != nil {
			if abortsBatch(ctx, err) {
				return itemOutcome{}, err
			}
			return itemOutcome{reason: "category lookup failed: " + err.Error()}, nil
		}
		if item != nil {
			id := item.RateCardItemID
			price, source, itemID = &item.UnitRate, domain.PriceSourceCategoryMatch, &id
		}
	}

	if price == nil && strings.TrimSpace(in.Description) != "" {
		item, err := c.byDescription(ctx, in.Description)
		if err != nil {
			if abortsBatch(ctx, err) {
				return itemOutcome{}, err
			}
			return itemOutcome{reason: "description lookup failed: " + err.Error()}, nil
		}
		if item != nil {
			id := item.RateCardItemID
			price, source, itemID = &item.UnitRate, domain.PriceSourceDescriptionFallback, &id
		}
	}

	if price == nil {
		return itemOutcome{reason: unmatchedReason}, nil
	}

	unitPrice, reason, err := c.toBilling(ctx, *price)
	if err != nil || reason != "" {
		return itemOutcome{reason: reason}, err
	}

	total, err := unitPrice.Mul(in.Quantity)
	if err != nil {
		return itemOutcome{}, err
	}

	span.SetAttributes(attribute.String("pricing.source", string(source)))
	return itemOutcome{item: domain.ResolvedLineItem{
		Index:          index,
		LineItemInput:  in,
		UnitPrice:      unitPrice,
		LineTotal:      total.Round(c.billing.DecimalPlaces),
		Source:         source,
		RateCardItemID: itemID,
	}}, nil
}

// abortsBatch reports whether a lookup error is the request running out of
// time rather than a problem with this one item.
func abortsBatch(ctx context.Context, err error) bool {
	return ctx.Err() != nil || errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled)
}

// canOverride checks the override permission once per call.
func (c *pricingCall) canOverride(ctx context.Context) (bool, error) {
	c.overrideOnce.Do(func() {
		c.overrideAllowed, c.overrideErr = c.svc.permissions.HasPermission(ctx, c.actorID, domain.PermissionOverridePrice)
	})
	return c.overrideAllowed, c.overrideErr
}

func (c *pricingCall) byCategory(ctx context.Context, categoryID string) (*domain.RateCardItem, error) {
	return c.memoized(c.category, categoryID, func() (*domain.RateCardItem, error) {
		return c.svc.rateCards.FindByCategory(ctx, c.card.RateCardID, categoryID)
	})
}

func (c *pricingCall) byDescription(ctx context.Context, description string) (*domain.RateCardItem, error) {
	key := strings.Join(tokenize(description), " ")
	return c.memoized(c.description, key, func() (*domain.RateCardItem, error) {
		return c.svc.rateCards.FindByDescription(ctx, c.card.RateCardID, description)
	})
}

// memoized caches successful lookups, misses included, for the rest of the call.
func (c *pricingCall) memoized(m map[string]*domain.RateCardItem, key string, lookup func() (*domain.RateCardItem, error)) (*domain.RateCardItem, error) {
	c.mu.Lock()
	item, ok := m[key]
	c.mu.Unlock()
	if ok {
		return item, nil
	}

	item, err := lookup()
	if err != nil {
		return nil, err
	}
	c.mu.Lock()
	m[key] = item
	c.mu.Unlock()
	return item, nil
}

// toBilling rounds a price already in the billing currency, or converts it
// with the as-of FX rate and records the snapshot used.
func (c *pricingCall) toBilling(ctx context.Context, price domain.Money) (domain.Money, string, error) {
	dp := c.billing.DecimalPlaces
	price.Currency = normalizeCode(price.Currency)
	if price.Currency == c.billing.CurrencyCode {
		return price.Round(dp), "", nil
	}

	rate, err := c.svc.currencies.GetFxRateWithFallback(ctx, price.Currency, c.billing.CurrencyCode, c.asOf)
	if err != nil {
		if abortsBatch(ctx, err) {
			return domain.Money{}, "", err
		}
		return domain.Money{}, fmt.Sprintf("no exchange rate %s/%s: %v", price.Currency, c.billing.CurrencyCode, err), nil
	}

	converted, err := domain.Convert(price, c.billing.CurrencyCode, rate.Rate, dp)
	if err != nil {
		return domain.Money{}, "conversion failed: " + err.Error(), nil
	}

	c.mu.Lock()
	c.snapshots[rate.BaseCurrency+"/"+rate.QuoteCurrency] = domain.SnapshotOf(*rate, c.asOf)
	c.mu.Unlock()
	return converted, "", nil
}

func (c *pricingCall) snapshotList() []domain.FXSnapshot {
	c.mu.Lock()
	defer c.mu.Unlock()
	if len(c.snapshots) == 0 {
		return nil
	}
	keys := make([]string, 0, len(c.snapshots))
	for k := range c.snapshots {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	out := make([]domain.FXSnapshot, len(keys))
	for i, k := range keys {
		out[i] = c.snapshots[k]
	}
	return out
}
