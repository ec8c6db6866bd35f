package dto

import (
	"time"

	"github.com/SscSPs/pricing_engine/internal/core/domain"
	"github.com/shopspring/decimal"
)

// --- Rate card DTOs ---

// SaveRateCardItemRequest creates an item, or updates it when RateCardItemID is set.
type SaveRateCardItemRequest struct {
	RateCardItemID    string          `json:"rateCardItemID" binding:"omitempty,uuid"`
	ServiceCategoryID *string         `json:"serviceCategoryID" binding:"omitempty,min=1,max=64"`
	Description       string          `json:"description" binding:"required,max=500"`
	UnitRate          decimal.Decimal `json:"unitRate" binding:"required,gte=0"`
	CurrencyCode      string          `json:"currencyCode" binding:"required,iso4217"`
}

// SetRateCardActiveRequest toggles a card. A pointer so an explicit false passes "required".
type SetRateCardActiveRequest struct {
	IsActive *bool `json:"isActive" binding:"required"`
}

// RateCardItemResponse defines data returned for a rate card item.
type RateCardItemResponse struct {
	RateCardItemID    string          `json:"rateCardItemID"`
	RateCardID        string          `json:"rateCardID"`
	ServiceCategoryID *string         `json:"serviceCategoryID,omitempty"`
	Description       string          `json:"description"`
	UnitRate          decimal.Decimal `json:"unitRate"`
	CurrencyCode      string          `json:"currencyCode"`
	IsActive          bool            `json:"isActive"`
	CreatedAt         time.Time       `json:"createdAt"`
	CreatedBy         string          `json:"createdBy"`
	LastUpdatedAt     time.Time       `json:"lastUpdatedAt"`
	LastUpdatedBy     string          `json:"lastUpdatedBy"`
}

// ToRateCardItemResponse converts domain.RateCardItem to DTO.
func ToRateCardItemResponse(item *domain.RateCardItem) RateCardItemResponse {
	return RateCardItemResponse{
		RateCardItemID:    item.RateCardItemID,
		RateCardID:        item.RateCardID,
		ServiceCategoryID: item.ServiceCategoryID,
		Description:       item.Description,
		UnitRate:          item.UnitRate.Amount,
		CurrencyCode:      item.UnitRate.Currency,
		IsActive:          item.IsActive,
		CreatedAt:         item.CreatedAt,
		CreatedBy:         item.CreatedBy,
		LastUpdatedAt:     item.LastUpdatedAt,
		LastUpdatedBy:     item.LastUpdatedBy,
	}
}

// CacheBustRequest is the body of the cache administration endpoint.
type CacheBustRequest struct {
	Kind           string `json:"kind" binding:"required,oneof=rate_card fx_rate currency organization"`
	RateCardID     string `json:"rateCardID" binding:"required_if=Kind rate_card"`
	BaseCurrency   string `json:"baseCurrency" binding:"required_if=Kind fx_rate,omitempty,iso4217"`
	QuoteCurrency  string `json:"quoteCurrency" binding:"required_if=Kind fx_rate,omitempty,iso4217"`
	CurrencyCode   string `json:"currencyCode" binding:"required_if=Kind currency,omitempty,iso4217"`
	OrganizationID string `json:"organizationID" binding:"required_if=Kind organization"`
}
