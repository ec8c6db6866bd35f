package services

import (
	portsrepo "github.com/SscSPs/pricing_engine/internal/core/ports/repositories"
	portssvc "github.com/SscSPs/pricing_engine/internal/core/ports/services"
	"github.com/SscSPs/pricing_engine/internal/platform/cache"
	"github.com/SscSPs/pricing_engine/internal/platform/config"
	"github.com/SscSPs/pricing_engine/internal/platform/metrics"
	"github.com/jonboulle/clockwork"
)

// CachePolicyFromConfig maps the configured TTLs onto a CachePolicy.
func CachePolicyFromConfig(cfg *config.Config) CachePolicy {
	policy := DefaultCachePolicy()
	if cfg.CurrencyCacheTTL > 0 {
		policy.CurrencyTTL = cfg.CurrencyCacheTTL
	}
	if cfg.FxCacheTTL > 0 {
		policy.FxTTL = cfg.FxCacheTTL
	}
	if cfg.ActiveRateCardCacheTTL > 0 {
		policy.ActiveRateCardTTL = cfg.ActiveRateCardCacheTTL
	}
	if cfg.RateCardItemsCacheTTL > 0 {
		policy.RateCardItemsTTL = cfg.RateCardItemsCacheTTL
	}
	if cfg.OrganizationCacheTTL > 0 {
		policy.OrganizationTTL = cfg.OrganizationCacheTTL
	}
	return policy
}

// NewServiceContainer creates a new service container with properly initialized dependencies
func NewServiceContainer(cfg *config.Config, repos portsrepo.RepositoryProvider, coordinator *cache.Coordinator, sink metrics.Sink) *portssvc.ServiceContainer {
	container := &portssvc.ServiceContainer{}
	policy := CachePolicyFromConfig(cfg)
	clock := clockwork.NewRealClock()
	audit := NewSlogAuditLogger()

	// Cache admin first since every write path busts through it
	container.CacheAdmin = NewCacheAdminService(coordinator)

	container.Currency = NewCurrencyService(repos.CurrencyRepo, repos.ExchangeRateRepo, coordinator, policy)
	container.CurrencyAdmin = NewCurrencyAdminService(repos.CurrencyRepo, container.CacheAdmin, audit, clock)
	container.ExchangeRate = NewExchangeRateService(repos.ExchangeRateRepo, container.Currency, container.CacheAdmin, audit, clock)

	rateCards := NewRateCardService(repos.RateCardRepo, coordinator, policy,
		WithDescriptionMatchThreshold(cfg.DescriptionMatchThreshold),
		WithRateCardWriteDeps(container.Currency, container.CacheAdmin, audit),
		WithRateCardClock(clock),
	)
	container.RateCard = rateCards
	container.RateCardWriter = rateCards

	container.Permission = NewPermissionService(repos.PermissionRepo)
	container.OrganizationAccess = NewOrganizationAccessService(repos.OrganizationRepo)

	container.Pricing = NewPricingService(
		container.Currency,
		container.RateCard,
		container.Permission,
		repos.OrganizationRepo,
		coordinator,
		policy,
		WithPricingDeadline(cfg.PricingDeadline),
		WithPricingConcurrency(cfg.PricingConcurrency),
		WithPricingMetrics(sink),
	)

	return container
}
