package services

import (
	"context"
	"log/slog"

	portssvc "github.com/SscSPs/pricing_engine/internal/core/ports/services"
	"github.com/SscSPs/pricing_engine/internal/platform/cache"
)

// cacheAdminService translates write-side events into cache busts.
type cacheAdminService struct {
	BaseService
	cache *cache.Coordinator
}

// NewCacheAdminService creates the bust hooks over c.
func NewCacheAdminService(c *cache.Coordinator) portssvc.CacheAdminSvc {
	return &cacheAdminService{cache: c}
}

var _ portssvc.CacheAdminSvc = (*cacheAdminService)(nil)

func (s *cacheAdminService) BustRateCard(ctx context.Context, rateCardID string) {
	n := s.cache.BustPrefix(ctx, prefix(nsRateCard, rateCardID))
	n += s.cache.BustPrefix(ctx, prefix(nsActiveRateCard))
	s.LogDebug(ctx, "Busted rate card cache", slog.String("rate_card_id", rateCardID), slog.Int("removed", n))
}

func (s *cacheAdminService) BustActiveRateCards(ctx context.Context, organizationID string) {
	n := s.cache.BustPrefix(ctx, prefix(nsActiveRateCard, organizationID))
	s.LogDebug(ctx, "Busted active rate card cache", slog.String("organization_id", organizationID), slog.Int("removed", n))
}

// BustFxRate drops the exact pair and the fallback lookups in both
// directions, since a new base->quote row also changes the derived
// quote->base rate.
func (s *cacheAdminService) BustFxRate(ctx context.Context, base, quote string) {
	base, quote = normalizeCode(base), normalizeCode(quote)
	n := s.cache.BustPrefix(ctx, prefix(nsFx, base, quote))
	n += s.cache.BustPrefix(ctx, prefix(nsFxFallback, base, quote))
	n += s.cache.BustPrefix(ctx, prefix(nsFxFallback, quote, base))
	s.LogDebug(ctx, "Busted FX cache", slog.String("base", base), slog.String("quote", quote), slog.Int("removed", n))
}

func (s *cacheAdminService) BustCurrency(ctx context.Context, currencyCode string) {
	s.cache.Bust(ctx, currencyKey(normalizeCode(currencyCode)))
}

func (s *cacheAdminService) BustOrganization(ctx context.Context, organizationID string) {
	s.cache.Bust(ctx, organizationKey(organizationID))
	s.cache.BustPrefix(ctx, prefix(nsActiveRateCard, organizationID))
}
