package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// PriceSource records which resolution tier produced a unit price.
type PriceSource string

const (
	PriceSourceOverride            PriceSource = "override"
	PriceSourceCategoryMatch       PriceSource = "category_match"
	PriceSourceDescriptionFallback PriceSource = "description_fallback"
)

// PermissionOverridePrice is checked before honouring an explicit unit price.
const PermissionOverridePrice = "pricing.override_unit_price"

// Permissions guarding the write and cache administration endpoints.
const (
	PermissionManageRates = "pricing.manage_rates"
	PermissionCacheAdmin  = "pricing.cache_admin"
)

// LineItemInput is a caller-supplied quote or invoice line.
type LineItemInput struct {
	Description       string          `json:"description"`
	Quantity          decimal.Decimal `json:"quantity"`
	ServiceCategoryID *string         `json:"serviceCategoryID,omitempty"`
	ExplicitUnitPrice *Money          `json:"explicitUnitPrice,omitempty"`
	Unit              string          `json:"unit"`
}

// ResolvedLineItem is produced fresh on every resolution call.
type ResolvedLineItem struct {
	Index int `json:"index"` // position in the request
	LineItemInput
	UnitPrice      Money       `json:"unitPrice"`
	LineTotal      Money       `json:"lineTotal"`
	Source         PriceSource `json:"source"`
	RateCardItemID *string     `json:"rateCardItemID,omitempty"`
}

// PricingRequest is the input of a batch resolution.
type PricingRequest struct {
	OrganizationID string
	AsOfDate       time.Time
	ActorID        string
	LineItems      []LineItemInput
}

// PricingResult is returned when every line item resolved.
type PricingResult struct {
	Resolved             []ResolvedLineItem `json:"resolved"`
	RateCardID           string             `json:"rateCardID"`
	BillingCurrency      string             `json:"billingCurrency"`
	BillingDecimalPlaces int                `json:"billingDecimalPlaces"`
	FXSnapshots          []FXSnapshot       `json:"fxSnapshots,omitempty"`
}
