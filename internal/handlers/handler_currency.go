package handlers

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/SscSPs/pricing_engine/internal/core/domain"
	portssvc "github.com/SscSPs/pricing_engine/internal/core/ports/services"
	"github.com/SscSPs/pricing_engine/internal/dto"
	"github.com/SscSPs/pricing_engine/internal/middleware"
	"github.com/gin-gonic/gin"
)

// currencyHandler handles HTTP requests related to currencies.
type currencyHandler struct {
	currencyService portssvc.CurrencyResolverSvc
	adminService    portssvc.CurrencyAdminSvc
}

// newCurrencyHandler creates a new currencyHandler.
func newCurrencyHandler(cs portssvc.CurrencyResolverSvc, admin portssvc.CurrencyAdminSvc) *currencyHandler {
	return &currencyHandler{
		currencyService: cs,
		adminService:    admin,
	}
}

// registerCurrencyRoutes registers routes related to currencies.
// Upserting a currency requires the manage-rates permission.
func registerCurrencyRoutes(rg *gin.RouterGroup, currencyService portssvc.CurrencyResolverSvc, admin portssvc.CurrencyAdminSvc, permissions portssvc.PermissionCheckerSvc) {
	h := newCurrencyHandler(currencyService, admin)

	currencies := rg.Group("/currencies")
	{
		currencies.GET("", h.listCurrencies)
		currencies.GET("/:code", h.getCurrencyByCode)
		currencies.PUT("/:code", middleware.RequirePermission(permissions, domain.PermissionManageRates), h.saveCurrency)
	}
}

// listCurrencies godoc
// @Summary List currencies
// @Description Lists every currency, including inactive ones, ordered by code
// @Tags currencies
// @Produce  json
// @Success 200 {array} dto.CurrencyResponse
// @Failure 500 {object} map[string]string "Failed to list currencies"
// @Security BearerAuth
// @Router /currencies [get]
func (h *currencyHandler) listCurrencies(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	currencies, err := h.adminService.ListCurrencies(c.Request.Context())
	if err != nil {
		respondError(c, logger, err, "Failed to list currencies")
		return
	}

	c.JSON(http.StatusOK, dto.ToCurrencyListResponse(currencies))
}

// saveCurrency godoc
// @Summary Create or update a currency
// @Description Upserts a currency and drops its cached lookup so the new scale or status applies immediately
// @Tags currencies
// @Accept  json
// @Produce  json
// @Param   code path string true "Currency Code (3 letters)" MinLength(3) MaxLength(3)
// @Param   currency body dto.SaveCurrencyRequest true "Currency details"
// @Success 200 {object} dto.CurrencyResponse
// @Failure 400 {object} map[string]string "Invalid input"
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 403 {object} map[string]string "Forbidden"
// @Failure 500 {object} map[string]string "Failed to save currency"
// @Security BearerAuth
// @Router /currencies/{code} [put]
func (h *currencyHandler) saveCurrency(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	currencyCode := strings.ToUpper(c.Param("code"))

	if len(currencyCode) != 3 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Currency code must be 3 letters"})
		return
	}

	var req dto.SaveCurrencyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("Failed to bind JSON for SaveCurrency", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
		return
	}

	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		logger.Error("User ID not found in context")
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	logger = logger.With(slog.String("currency_code", currencyCode), slog.String("user_id", userID))
	logger.Info("Received request to save currency")

	saved, err := h.adminService.SaveCurrency(c.Request.Context(), currencyCode, req, userID)
	if err != nil {
		respondError(c, logger, err, "Failed to save currency")
		return
	}

	c.JSON(http.StatusOK, dto.ToCurrencyResponse(saved))
}

// getCurrencyByCode godoc
// @Summary Get a currency by code
// @Description Retrieves an active currency and its minor-unit scale
// @Tags currencies
// @Produce  json
// @Param   code path string true "Currency Code (3 letters)" MinLength(3) MaxLength(3)
// @Success 200 {object} dto.CurrencyResponse
// @Failure 404 {object} map[string]string "Currency not found"
// @Failure 500 {object} map[string]string "Failed to retrieve currency"
// @Security BearerAuth
// @Router /currencies/{code} [get]
func (h *currencyHandler) getCurrencyByCode(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	currencyCode := strings.ToUpper(c.Param("code"))

	if len(currencyCode) != 3 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Currency code must be 3 letters"})
		return
	}

	logger = logger.With(slog.String("currency_code", currencyCode))
	logger.Info("Received request to get currency by code")

	currency, err := h.currencyService.GetCurrency(c.Request.Context(), currencyCode)
	if err != nil {
		respondError(c, logger, err, "Failed to retrieve currency")
		return
	}

	c.JSON(http.StatusOK, dto.ToCurrencyResponse(currency))
}
