package handlers

import (
	"log/slog"

	portssvc "github.com/SscSPs/pricing_engine/internal/core/ports/services"
	"github.com/SscSPs/pricing_engine/internal/middleware"
	"github.com/SscSPs/pricing_engine/internal/platform/config"
	"github.com/gin-gonic/gin"
)

// RegisterRoutes sets up all application routes, injecting dependencies using interfaces
func RegisterRoutes(
	r *gin.Engine,
	cfg *config.Config,
	services *portssvc.ServiceContainer,
) {
	registerValidators()

	registerOpsRoutes(r)

	// Setup API v1 routes with Auth Middleware, passing service interfaces
	setupAPIV1Routes(r, cfg, services)
}

// setupAPIV1Routes configures the /api/v1 group and delegates to specific entity route registrations
func setupAPIV1Routes(
	r *gin.Engine,
	cfg *config.Config,
	service *portssvc.ServiceContainer,
) {
	v1 := r.Group("/api/v1", middleware.AuthMiddleware(cfg.JWTSecret))

	// Limit per actor, so this runs after auth
	if cfg.RateLimit != "" {
		limiterInstance, err := middleware.NewRateLimiter(cfg.RateLimit)
		if err != nil {
			slog.Warn("Rate limiting disabled", slog.String("error", err.Error()))
		} else {
			v1.Use(middleware.RateLimit(limiterInstance))
		}
	}

	registerCurrencyRoutes(v1, service.Currency, service.CurrencyAdmin, service.Permission)
	registerExchangeRateRoutes(v1, service.ExchangeRate, service.Currency, service.Permission)
	registerRateCardRoutes(v1, service.RateCardWriter, service.Permission)
	registerPricingRoutes(v1, service.Pricing, service.OrganizationAccess)
	registerCacheAdminRoutes(v1, service.CacheAdmin, service.Permission)
}
