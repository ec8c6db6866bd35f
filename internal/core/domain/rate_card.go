package domain

import (
	"time"
)

// Organization is the billing owner of rate cards, quotes and invoices.
type Organization struct {
	OrganizationID      string `json:"organizationID"`
	Name                string `json:"name"`
	BillingCurrencyCode string `json:"billingCurrencyCode"`
	AuditFields
}

// RateCard is a priced catalog of service categories, versioned by an
// effective date range.
type RateCard struct {
	RateCardID     string     `json:"rateCardID"`
	OrganizationID string     `json:"organizationID"`
	Name           string     `json:"name"`
	IsActive       bool       `json:"isActive"`
	IsDefault      bool       `json:"isDefault"`
	EffectiveFrom  time.Time  `json:"effectiveFrom"`
	EffectiveUntil *time.Time `json:"effectiveUntil,omitempty"` // nil means open-ended
	AuditFields
}

// Covers reports whether the card is active and asOf falls in
// [EffectiveFrom, EffectiveUntil).
func (rc RateCard) Covers(asOf time.Time) bool {
	if !rc.IsActive {
		return false
	}
	if asOf.Before(rc.EffectiveFrom) {
		return false
	}
	if rc.EffectiveUntil != nil && !asOf.Before(*rc.EffectiveUntil) {
		return false
	}
	return true
}

// RateCardItem is owned by exactly one RateCard.
type RateCardItem struct {
	RateCardItemID    string  `json:"rateCardItemID"`
	RateCardID        string  `json:"rateCardID"`
	ServiceCategoryID *string `json:"serviceCategoryID,omitempty"`
	Description       string  `json:"description"`
	UnitRate          Money   `json:"unitRate"`
	IsActive          bool    `json:"isActive"`
	AuditFields
}

// HasCategory reports whether the item is tagged with categoryID.
func (i RateCardItem) HasCategory(categoryID string) bool {
	return i.ServiceCategoryID != nil && *i.ServiceCategoryID == categoryID
}
