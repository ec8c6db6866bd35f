package config

import (
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
)

func TestFromViper_Defaults(t *testing.T) {
	v := viper.New()
	setDefaults(v)

	cfg := fromViper(v)

	assert.Equal(t, "8080", cfg.Port)
	assert.NotEmpty(t, cfg.JWTSecret)
	assert.Equal(t, 0.15, cfg.CacheJitterFraction)
	assert.Equal(t, time.Hour, cfg.CurrencyCacheTTL)
	assert.Equal(t, 5*time.Minute, cfg.FxCacheTTL)
	assert.Equal(t, 60*time.Second, cfg.ActiveRateCardCacheTTL)
	assert.Equal(t, 10*time.Second, cfg.CacheLoadTimeout)
	assert.Equal(t, 0.5, cfg.DescriptionMatchThreshold)
	assert.Equal(t, 5*time.Second, cfg.PricingDeadline)
	assert.Equal(t, []string{"http://localhost:3000"}, cfg.CORSAllowedOrigins)
}

func TestFromViper_Overrides(t *testing.T) {
	v := viper.New()
	setDefaults(v)
	v.Set("FX_CACHE_TTL", "30s")
	v.Set("CACHE_JITTER_FRACTION", 0.9)
	v.Set("PRICING_DEADLINE", "not-a-duration")
	v.Set("DESCRIPTION_MATCH_THRESHOLD", 0.7)
	v.Set("CORS_ALLOWED_ORIGINS", "https://a.example, https://b.example ,")

	cfg := fromViper(v)

	assert.Equal(t, 30*time.Second, cfg.FxCacheTTL)
	assert.Equal(t, 0.15, cfg.CacheJitterFraction)
	assert.Equal(t, 5*time.Second, cfg.PricingDeadline)
	assert.Equal(t, 0.7, cfg.DescriptionMatchThreshold)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.CORSAllowedOrigins)
}
