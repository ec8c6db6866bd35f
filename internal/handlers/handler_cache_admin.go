package handlers

import (
	"log/slog"
	"net/http"

	"github.com/SscSPs/pricing_engine/internal/core/domain"
	portssvc "github.com/SscSPs/pricing_engine/internal/core/ports/services"
	"github.com/SscSPs/pricing_engine/internal/dto"
	"github.com/SscSPs/pricing_engine/internal/middleware"
	"github.com/gin-gonic/gin"
)

// Cache bust kinds accepted by the admin endpoint.
const (
	bustKindRateCard     = "rate_card"
	bustKindFxRate       = "fx_rate"
	bustKindCurrency     = "currency"
	bustKindOrganization = "organization"
)

type cacheAdminHandler struct {
	cacheAdmin portssvc.CacheAdminSvc
}

func registerCacheAdminRoutes(rg *gin.RouterGroup, cacheAdmin portssvc.CacheAdminSvc, permissions portssvc.PermissionCheckerSvc) {
	h := &cacheAdminHandler{cacheAdmin: cacheAdmin}
	rg.POST("/cache/bust", middleware.RequirePermission(permissions, domain.PermissionCacheAdmin), h.bust)
}

// bust godoc
// @Summary Drop cached pricing reference data
// @Description Busts locally and, when Redis is configured, on every other instance.
// @Tags cache
// @Accept  json
// @Param   request body dto.CacheBustRequest true "What to bust"
// @Success 204 "No Content"
// @Failure 400 {object} map[string]string "Invalid input"
// @Failure 403 {object} map[string]string "Forbidden"
// @Security BearerAuth
// @Router /cache/bust [post]
func (h *cacheAdminHandler) bust(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	var req dto.CacheBustRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("Failed to bind JSON for cache bust", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
		return
	}

	ctx := c.Request.Context()
	switch req.Kind {
	case bustKindRateCard:
		h.cacheAdmin.BustRateCard(ctx, req.RateCardID)
	case bustKindFxRate:
		h.cacheAdmin.BustFxRate(ctx, req.BaseCurrency, req.QuoteCurrency)
	case bustKindCurrency:
		h.cacheAdmin.BustCurrency(ctx, req.CurrencyCode)
	case bustKindOrganization:
		h.cacheAdmin.BustOrganization(ctx, req.OrganizationID)
	}

	logger.Info("Cache bust requested", slog.String("kind", req.Kind))
	c.Status(http.StatusNoContent)
}
