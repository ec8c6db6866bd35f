package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Organization owns rate cards and bills in a single currency.
type Organization struct {
	OrganizationID      string `db:"organization_id"`
	Name                string `db:"name"`
	BillingCurrencyCode string `db:"billing_currency_code"`
	AuditFields
}

// RateCard is a versioned price catalog.
type RateCard struct {
	RateCardID     string     `db:"rate_card_id"`
	OrganizationID string     `db:"organization_id"`
	Name           string     `db:"name"`
	IsActive       bool       `db:"is_active"`
	IsDefault      bool       `db:"is_default"`
	EffectiveFrom  time.Time  `db:"effective_from"`
	EffectiveUntil *time.Time `db:"effective_until"` // Nullable, exclusive
	AuditFields
}

// RateCardItem is one priced line of a rate card.
type RateCardItem struct {
	RateCardItemID    string          `db:"rate_card_item_id"`
	RateCardID        string          `db:"rate_card_id"`
	ServiceCategoryID *string         `db:"service_category_id"` // Nullable
	Description       string          `db:"description"`
	UnitRate          decimal.Decimal `db:"unit_rate"`
	CurrencyCode      string          `db:"currency_code"`
	IsActive          bool            `db:"is_active"`
	AuditFields
}
