package services

import (
	"strings"
	"time"

	"github.com/SscSPs/pricing_engine/internal/core/domain"
	"github.com/SscSPs/pricing_engine/internal/platform/cache"
)

// Cache key namespaces. The namespace doubles as the metrics operation label.
const (
	nsCurrency       = "currency"
	nsFx             = "fx"
	nsFxFallback     = "fx_fallback"
	nsActiveRateCard = "active_rate_card"
	nsRateCard       = "rate_card"
	nsOrganization   = "org"
)

// CachePolicy holds the base TTL per key family. Jitter is applied by the coordinator.
type CachePolicy struct {
	CurrencyTTL       time.Duration
	FxTTL             time.Duration
	ActiveRateCardTTL time.Duration
	RateCardItemsTTL  time.Duration
	OrganizationTTL   time.Duration
}

// DefaultCachePolicy returns the TTLs used when configuration is silent.
func DefaultCachePolicy() CachePolicy {
	return CachePolicy{
		CurrencyTTL:       time.Hour,
		FxTTL:             5 * time.Minute,
		ActiveRateCardTTL: 60 * time.Second,
		RateCardItemsTTL:  5 * time.Minute,
		OrganizationTTL:   5 * time.Minute,
	}
}

func normalizeCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}

func dateKey(t time.Time) string {
	return domain.DateOnly(t).Format(time.DateOnly)
}

func currencyKey(code string) string {
	return cache.Key(nsCurrency, code)
}

func fxKey(base, quote string, asOf time.Time) string {
	return cache.Key(nsFx, base, quote, dateKey(asOf))
}

func fxFallbackKey(base, quote string, asOf time.Time) string {
	return cache.Key(nsFxFallback, base, quote, dateKey(asOf))
}

func activeRateCardKey(organizationID string, asOf time.Time) string {
	return cache.Key(nsActiveRateCard, organizationID, dateKey(asOf))
}

func rateCardItemsKey(rateCardID string) string {
	return cache.Key(nsRateCard, rateCardID, "items")
}

func organizationKey(organizationID string) string {
	return cache.Key(nsOrganization, organizationID)
}

// prefix returns the bust prefix covering every key under parts.
func prefix(parts ...string) string {
	return cache.Key(parts...) + ":"
}
