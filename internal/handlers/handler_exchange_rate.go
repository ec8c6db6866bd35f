package handlers

import (
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/SscSPs/pricing_engine/internal/core/domain"
	portssvc "github.com/SscSPs/pricing_engine/internal/core/ports/services"
	"github.com/SscSPs/pricing_engine/internal/dto"
	"github.com/SscSPs/pricing_engine/internal/middleware"
	"github.com/gin-gonic/gin"
)

// exchangeRateHandler handles HTTP requests related to exchange rates.
type exchangeRateHandler struct {
	exchangeRateService portssvc.ExchangeRateWriterSvc
	fxService           portssvc.FXResolverSvc
}

// newExchangeRateHandler creates a new exchangeRateHandler.
func newExchangeRateHandler(ers portssvc.ExchangeRateWriterSvc, fx portssvc.FXResolverSvc) *exchangeRateHandler {
	return &exchangeRateHandler{
		exchangeRateService: ers,
		fxService:           fx,
	}
}

// registerExchangeRateRoutes registers routes related to exchange rates.
// Appending a rate requires the manage-rates permission.
func registerExchangeRateRoutes(rg *gin.RouterGroup, ers portssvc.ExchangeRateWriterSvc, fx portssvc.FXResolverSvc, permissions portssvc.PermissionCheckerSvc) {
	h := newExchangeRateHandler(ers, fx)

	rates := rg.Group("/fx")
	{
		rates.POST("/rates", middleware.RequirePermission(permissions, domain.PermissionManageRates), h.createExchangeRate)
		rates.GET("/snapshot/:base/:quote", h.getFxSnapshot)
	}
}

// createExchangeRate godoc
// @Summary Append an exchange rate
// @Description Adds a new rate for a currency pair effective from a date. Rates are append-only.
// @Tags exchange-rates
// @Accept  json
// @Produce  json
// @Param   exchangeRate body dto.CreateExchangeRateRequest true "Exchange Rate details"
// @Success 201 {object} dto.ExchangeRateResponse
// @Failure 400 {object} map[string]string "Invalid input"
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 403 {object} map[string]string "Forbidden"
// @Failure 404 {object} map[string]string "Unknown currency"
// @Failure 409 {object} map[string]string "Rate already exists for the pair and date"
// @Failure 500 {object} map[string]string "Failed to create exchange rate"
// @Security BearerAuth
// @Router /fx/rates [post]
func (h *exchangeRateHandler) createExchangeRate(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	var req dto.CreateExchangeRateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("Failed to bind JSON for CreateExchangeRate", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
		return
	}

	creatorUserID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		logger.Error("Creator user ID not found in context")
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	logger = logger.With(slog.String("creator_user_id", creatorUserID))
	logger.Info("Received request to create exchange rate", slog.String("from", req.BaseCurrency), slog.String("to", req.QuoteCurrency))

	createdRate, err := h.exchangeRateService.CreateExchangeRate(c.Request.Context(), req, creatorUserID)
	if err != nil {
		respondError(c, logger, err, "Failed to create exchange rate")
		return
	}

	logger.Info("Exchange rate created successfully", slog.String("rate_id", createdRate.ExchangeRateID))
	c.JSON(http.StatusCreated, dto.ToExchangeRateResponse(createdRate))
}

// getFxSnapshot godoc
// @Summary Capture an FX snapshot
// @Description Returns the rate for a pair as of a date, derived from the inverse pair when only that exists.
// @Tags exchange-rates
// @Produce  json
// @Param   base path string true "Base currency code"
// @Param   quote path string true "Quote currency code"
// @Param   asOf query string false "Date (YYYY-MM-DD), defaults to today (UTC)"
// @Success 200 {object} dto.FXSnapshotResponse
// @Failure 400 {object} map[string]string "Invalid date"
// @Failure 404 {object} map[string]string "Exchange rate not found"
// @Failure 500 {object} map[string]string "Failed to retrieve exchange rate"
// @Security BearerAuth
// @Router /fx/snapshot/{base}/{quote} [get]
func (h *exchangeRateHandler) getFxSnapshot(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	base := strings.ToUpper(c.Param("base"))
	quote := strings.ToUpper(c.Param("quote"))

	if len(base) != 3 || len(quote) != 3 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Currency codes must be 3 letters"})
		return
	}

	asOf := domain.DateOnly(time.Now().UTC())
	if raw := c.Query("asOf"); raw != "" {
		parsed, err := time.Parse(time.DateOnly, raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "asOf must be formatted as YYYY-MM-DD"})
			return
		}
		asOf = parsed
	}

	logger = logger.With(slog.String("from", base), slog.String("to", quote), slog.String("as_of", asOf.Format(time.DateOnly)))
	logger.Info("Received request to get FX snapshot")

	snapshot, err := h.fxService.GetFxSnapshot(c.Request.Context(), base, quote, asOf)
	if err != nil {
		respondError(c, logger, err, "Failed to retrieve exchange rate")
		return
	}

	c.JSON(http.StatusOK, dto.ToFXSnapshotResponse(*snapshot))
}
