package handlers

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/SscSPs/pricing_engine/internal/apperrors"
	portssvc "github.com/SscSPs/pricing_engine/internal/core/ports/services"
	"github.com/SscSPs/pricing_engine/internal/dto"
	"github.com/SscSPs/pricing_engine/internal/middleware"
	"github.com/gin-gonic/gin"
)

// pricingHandler handles HTTP requests related to line item pricing.
type pricingHandler struct {
	pricingService portssvc.PricingSvc
}

// newPricingHandler creates a new pricingHandler.
func newPricingHandler(ps portssvc.PricingSvc) *pricingHandler {
	return &pricingHandler{
		pricingService: ps,
	}
}

// registerPricingRoutes registers routes related to pricing resolution.
func registerPricingRoutes(rg *gin.RouterGroup, pricingService portssvc.PricingSvc, access portssvc.OrganizationAccessSvc) {
	h := newPricingHandler(pricingService)

	organizations := rg.Group("/organizations/:organizationID", middleware.RequireOrganizationAccess(access, "organizationID"))
	{
		organizations.POST("/pricing/resolve", h.resolvePricing)
	}
}

// resolvePricing godoc
// @Summary Resolve unit prices for a batch of line items
// @Description Prices every line item against the organization's active rate card, converting into its billing currency.
// @Tags pricing
// @Accept  json
// @Produce  json
// @Param   organizationID path string true "Organization ID"
// @Param   request body dto.ResolvePricingRequest true "Line items to price"
// @Success 200 {object} dto.ResolvePricingResponse
// @Failure 400 {object} map[string]string "Invalid input"
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 404 {object} map[string]string "Organization not found"
// @Failure 422 {object} dto.UnmatchedLineItemsResponse "Some line items could not be priced"
// @Failure 500 {object} map[string]string "Failed to resolve pricing"
// @Security BearerAuth
// @Router /organizations/{organizationID}/pricing/resolve [post]
func (h *pricingHandler) resolvePricing(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	organizationID := c.Param("organizationID")

	actorID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		logger.Error("Actor ID not found in context for resolvePricing")
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	var req dto.ResolvePricingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("Failed to bind JSON for ResolvePricing", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
		return
	}

	pricingReq, err := req.ToDomain(organizationID, actorID)
	if err != nil {
		logger.Warn("Invalid pricing request", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	logger = logger.With(slog.String("organization_id", organizationID))
	logger.Info("Received request to resolve pricing", slog.Int("line_items", len(req.LineItems)))

	result, err := h.pricingService.ResolvePricing(c.Request.Context(), pricingReq)
	var unmatched *apperrors.UnmatchedLineItemsError
	if errors.As(err, &unmatched) {
		logger.Warn("Some line items could not be priced", slog.Int("unmatched", len(unmatched.Unmatched)))
		resp := dto.UnmatchedLineItemsResponse{
			Error:     err.Error(),
			Unmatched: unmatched.Unmatched,
		}
		if result != nil {
			resp.Resolved = dto.ToResolvePricingResponse(result).LineItems
		}
		c.JSON(http.StatusUnprocessableEntity, resp)
		return
	}
	if err != nil {
		respondError(c, logger, err, "Failed to resolve pricing")
		return
	}

	logger.Info("Pricing resolved successfully", slog.String("rate_card_id", result.RateCardID))
	c.JSON(http.StatusOK, dto.ToResolvePricingResponse(result))
}
