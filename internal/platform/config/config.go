package config

import (
	"log"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds application configuration.
type Config struct {
	DatabaseURL   string
	Port          string
	IsProduction  bool
	EnableDBCheck bool
	JWTSecret     string

	RedisAddress     string
	RedisBustChannel string

	// Cache
	CacheJitterFraction    float64
	CacheLoadTimeout       time.Duration
	CacheSweepInterval     time.Duration
	CurrencyCacheTTL       time.Duration
	FxCacheTTL             time.Duration
	ActiveRateCardCacheTTL time.Duration
	RateCardItemsCacheTTL  time.Duration
	OrganizationCacheTTL   time.Duration

	// Pricing
	DescriptionMatchThreshold float64
	PricingDeadline           time.Duration
	PricingConcurrency        int

	RateLimit          string
	CORSAllowedOrigins []string
}

// LoadConfig loads configuration from environment variables and .env file if present.
func LoadConfig() (*Config, error) {
	// Attempt to load .env file, ignore error if it doesn't exist
	_ = godotenv.Load()

	v := viper.New()
	setDefaults(v)
	v.AutomaticEnv()

	return fromViper(v), nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("PGSQL_URL", "")
	v.SetDefault("PORT", "8080")
	v.SetDefault("IS_PRODUCTION", false)
	v.SetDefault("ENABLE_DB_CHECK", false)
	v.SetDefault("JWT_SECRET", "")
	v.SetDefault("REDIS_ADDRESS", "")
	v.SetDefault("REDIS_BUST_CHANNEL", "pricing_engine:cache_bust")
	v.SetDefault("CACHE_JITTER_FRACTION", 0.15)
	v.SetDefault("CACHE_LOAD_TIMEOUT", "10s")
	v.SetDefault("CACHE_SWEEP_INTERVAL", "1m")
	v.SetDefault("CURRENCY_CACHE_TTL", "1h")
	v.SetDefault("FX_CACHE_TTL", "5m")
	v.SetDefault("ACTIVE_RATE_CARD_CACHE_TTL", "60s")
	v.SetDefault("RATE_CARD_ITEMS_CACHE_TTL", "5m")
	v.SetDefault("ORGANIZATION_CACHE_TTL", "5m")
	v.SetDefault("DESCRIPTION_MATCH_THRESHOLD", 0.5)
	v.SetDefault("PRICING_DEADLINE", "5s")
	v.SetDefault("PRICING_CONCURRENCY", 8)
	v.SetDefault("RATE_LIMIT", "100-M")
	v.SetDefault("CORS_ALLOWED_ORIGINS", "http://localhost:3000")
}

func fromViper(v *viper.Viper) *Config {
	cfg := &Config{}

	cfg.DatabaseURL = v.GetString("PGSQL_URL")
	if cfg.DatabaseURL == "" {
		log.Println("Warning: PGSQL_URL environment variable not set.")
	}

	cfg.Port = v.GetString("PORT")
	if cfg.Port == "" {
		cfg.Port = "8080"
		log.Printf("Warning: PORT environment variable not set. Defaulting to %s\n", cfg.Port)
	}

	cfg.JWTSecret = v.GetString("JWT_SECRET")
	if cfg.JWTSecret == "" {
		cfg.JWTSecret = "a-very-secret-key-should-be-longer-and-random" // !! CHANGE IN PRODUCTION !!
		log.Println("Warning: JWT_SECRET environment variable not set. Using default insecure key.")
	}

	cfg.IsProduction = v.GetBool("IS_PRODUCTION")
	cfg.EnableDBCheck = v.GetBool("ENABLE_DB_CHECK")

	cfg.RedisAddress = v.GetString("REDIS_ADDRESS")
	if cfg.RedisAddress == "" {
		log.Println("Warning: REDIS_ADDRESS not set. Cache busts stay local to this instance.")
	}
	cfg.RedisBustChannel = v.GetString("REDIS_BUST_CHANNEL")

	cfg.CacheJitterFraction = v.GetFloat64("CACHE_JITTER_FRACTION")
	if cfg.CacheJitterFraction < 0 || cfg.CacheJitterFraction > 0.5 {
		log.Printf("Warning: CACHE_JITTER_FRACTION (%v) outside [0, 0.5]. Defaulting to 0.15.\n", cfg.CacheJitterFraction)
		cfg.CacheJitterFraction = 0.15
	}

	cfg.CacheLoadTimeout = duration(v, "CACHE_LOAD_TIMEOUT", 10*time.Second)
	cfg.CacheSweepInterval = duration(v, "CACHE_SWEEP_INTERVAL", time.Minute)
	cfg.CurrencyCacheTTL = duration(v, "CURRENCY_CACHE_TTL", time.Hour)
	cfg.FxCacheTTL = duration(v, "FX_CACHE_TTL", 5*time.Minute)
	cfg.ActiveRateCardCacheTTL = duration(v, "ACTIVE_RATE_CARD_CACHE_TTL", 60*time.Second)
	cfg.RateCardItemsCacheTTL = duration(v, "RATE_CARD_ITEMS_CACHE_TTL", 5*time.Minute)
	cfg.OrganizationCacheTTL = duration(v, "ORGANIZATION_CACHE_TTL", 5*time.Minute)

	cfg.DescriptionMatchThreshold = v.GetFloat64("DESCRIPTION_MATCH_THRESHOLD")
	if cfg.DescriptionMatchThreshold <= 0 || cfg.DescriptionMatchThreshold > 1 {
		log.Printf("Warning: DESCRIPTION_MATCH_THRESHOLD (%v) outside (0, 1]. Defaulting to 0.5.\n", cfg.DescriptionMatchThreshold)
		cfg.DescriptionMatchThreshold = 0.5
	}
	cfg.PricingDeadline = duration(v, "PRICING_DEADLINE", 5*time.Second)
	cfg.PricingConcurrency = v.GetInt("PRICING_CONCURRENCY")
	if cfg.PricingConcurrency < 1 {
		cfg.PricingConcurrency = 8
	}

	cfg.RateLimit = v.GetString("RATE_LIMIT")
	for _, origin := range strings.Split(v.GetString("CORS_ALLOWED_ORIGINS"), ",") {
		if origin = strings.TrimSpace(origin); origin != "" {
			cfg.CORSAllowedOrigins = append(cfg.CORSAllowedOrigins, origin)
		}
	}

	return cfg
}

// duration parses a Go duration string (e.g. "60s", "1h"), falling back to def.
func duration(v *viper.Viper, key string, def time.Duration) time.Duration {
	raw := v.GetString(key)
	d, err := time.ParseDuration(raw)
	if err != nil || d <= 0 {
		if raw != "" {
			log.Printf("Warning: Invalid value for %s ('%s'). Defaulting to %s.\n", key, raw, def.String())
		}
		return def
	}
	return d
}
