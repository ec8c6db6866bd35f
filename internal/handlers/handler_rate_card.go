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

type rateCardHandler struct {
	rateCardService portssvc.RateCardWriterSvc
}

func newRateCardHandler(rs portssvc.RateCardWriterSvc) *rateCardHandler {
	return &rateCardHandler{
		rateCardService: rs,
	}
}

// registerRateCardRoutes registers the rate card write routes. All of them
// require the manage-rates permission.
func registerRateCardRoutes(rg *gin.RouterGroup, rs portssvc.RateCardWriterSvc, permissions portssvc.PermissionCheckerSvc) {
	h := newRateCardHandler(rs)

	cards := rg.Group("/rate-cards/:rateCardID", middleware.RequirePermission(permissions, domain.PermissionManageRates))
	{
		cards.POST("/items", h.saveRateCardItem)
		cards.DELETE("/items/:itemID", h.deactivateRateCardItem)
		cards.PUT("/active", h.setRateCardActive)
	}
}

// saveRateCardItem godoc
// @Summary Create or update a rate card item
// @Tags rate-cards
// @Accept  json
// @Produce  json
// @Param   rateCardID path string true "Rate Card ID"
// @Param   item body dto.SaveRateCardItemRequest true "Item details; set rateCardItemID to update"
// @Success 200 {object} dto.RateCardItemResponse "Updated"
// @Success 201 {object} dto.RateCardItemResponse "Created"
// @Failure 400 {object} map[string]string "Invalid input"
// @Failure 403 {object} map[string]string "Forbidden"
// @Failure 404 {object} map[string]string "Rate card or currency not found"
// @Failure 500 {object} map[string]string "Failed to save rate card item"
// @Security BearerAuth
// @Router /rate-cards/{rateCardID}/items [post]
func (h *rateCardHandler) saveRateCardItem(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	rateCardID := c.Param("rateCardID")

	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	var req dto.SaveRateCardItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("Failed to bind JSON for SaveRateCardItem", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
		return
	}

	logger = logger.With(slog.String("rate_card_id", rateCardID))
	item, err := h.rateCardService.SaveRateCardItem(c.Request.Context(), rateCardID, req, userID)
	if err != nil {
		respondError(c, logger, err, "Failed to save rate card item")
		return
	}

	status := http.StatusOK
	if req.RateCardItemID == "" {
		status = http.StatusCreated
	}
	logger.Info("Rate card item saved", slog.String("rate_card_item_id", item.RateCardItemID))
	c.JSON(status, dto.ToRateCardItemResponse(item))
}

// deactivateRateCardItem godoc
// @Summary Deactivate a rate card item
// @Tags rate-cards
// @Param   rateCardID path string true "Rate Card ID"
// @Param   itemID path string true "Rate Card Item ID"
// @Success 204 "No Content"
// @Failure 403 {object} map[string]string "Forbidden"
// @Failure 404 {object} map[string]string "Item not found"
// @Failure 500 {object} map[string]string "Failed to deactivate rate card item"
// @Security BearerAuth
// @Router /rate-cards/{rateCardID}/items/{itemID} [delete]
func (h *rateCardHandler) deactivateRateCardItem(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	rateCardID := c.Param("rateCardID")
	itemID := c.Param("itemID")

	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	logger = logger.With(slog.String("rate_card_id", rateCardID), slog.String("rate_card_item_id", itemID))
	if err := h.rateCardService.DeactivateRateCardItem(c.Request.Context(), rateCardID, itemID, userID); err != nil {
		respondError(c, logger, err, "Failed to deactivate rate card item")
		return
	}

	logger.Info("Rate card item deactivated")
	c.Status(http.StatusNoContent)
}

// setRateCardActive godoc
// @Summary Activate or deactivate a rate card
// @Tags rate-cards
// @Accept  json
// @Param   rateCardID path string true "Rate Card ID"
// @Param   body body dto.SetRateCardActiveRequest true "Desired state"
// @Success 204 "No Content"
// @Failure 400 {object} map[string]string "Invalid input"
// @Failure 403 {object} map[string]string "Forbidden"
// @Failure 404 {object} map[string]string "Rate card not found"
// @Security BearerAuth
// @Router /rate-cards/{rateCardID}/active [put]
func (h *rateCardHandler) setRateCardActive(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	rateCardID := c.Param("rateCardID")

	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	var req dto.SetRateCardActiveRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
		return
	}

	logger = logger.With(slog.String("rate_card_id", rateCardID), slog.Bool("is_active", *req.IsActive))
	if err := h.rateCardService.SetRateCardActive(c.Request.Context(), rateCardID, *req.IsActive, userID); err != nil {
		respondError(c, logger, err, "Failed to update rate card")
		return
	}

	logger.Info("Rate card state updated")
	c.Status(http.StatusNoContent)
}
