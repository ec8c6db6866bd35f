package dto

import (
	"fmt"
	"time"

	"github.com/SscSPs/pricing_engine/internal/apperrors"
	"github.com/SscSPs/pricing_engine/internal/core/domain"
	"github.com/shopspring/decimal"
)

// MoneyRequest is an amount with its ISO-4217 currency.
type MoneyRequest struct {
	Amount       decimal.Decimal `json:"amount" binding:"gte=0"`
	CurrencyCode string          `json:"currencyCode" binding:"required,iso4217"`
}

// LineItemRequest is one quote or invoice line to price.
type LineItemRequest struct {
	Description       string          `json:"description" binding:"required,max=500"`
	Quantity          decimal.Decimal `json:"quantity" binding:"gte=0"`
	ServiceCategoryID *string         `json:"serviceCategoryID"`
	ExplicitUnitPrice *MoneyRequest   `json:"explicitUnitPrice"`
	Unit              string          `json:"unit" binding:"max=32"`
}

// ResolvePricingRequest defines the body of the pricing resolution endpoint.
type ResolvePricingRequest struct {
	AsOfDate  string            `json:"asOfDate" binding:"required,datetime=2006-01-02"`
	LineItems []LineItemRequest `json:"lineItems" binding:"required,min=1,max=500,dive"`
}

// ToDomain builds the resolver input. The actor comes from the authenticated caller.
func (r ResolvePricingRequest) ToDomain(organizationID, actorID string) (domain.PricingRequest, error) {
	asOf, err := time.Parse(time.DateOnly, r.AsOfDate)
	if err != nil {
		return domain.PricingRequest{}, fmt.Errorf("%w: invalid asOfDate %q", apperrors.ErrValidation, r.AsOfDate)
	}

	items := make([]domain.LineItemInput, len(r.LineItems))
	for i, li := range r.LineItems {
		items[i] = domain.LineItemInput{
			Description:       li.Description,
			Quantity:          li.Quantity,
			ServiceCategoryID: li.ServiceCategoryID,
			Unit:              li.Unit,
		}
		if li.ExplicitUnitPrice != nil {
			price := domain.NewMoney(li.ExplicitUnitPrice.Amount, li.ExplicitUnitPrice.CurrencyCode)
			items[i].ExplicitUnitPrice = &price
		}
	}

	return domain.PricingRequest{
		OrganizationID: organizationID,
		AsOfDate:       asOf,
		ActorID:        actorID,
		LineItems:      items,
	}, nil
}

// MoneyResponse renders an amount at its currency's scale, e.g. "150.00".
type MoneyResponse struct {
	Amount       string `json:"amount"`
	CurrencyCode string `json:"currencyCode"`
}

// ResolvedLineItemResponse is one priced line, in request order.
type ResolvedLineItemResponse struct {
	Index             int           `json:"index"`
	Description       string        `json:"description"`
	Quantity          string        `json:"quantity"`
	Unit              string        `json:"unit,omitempty"`
	ServiceCategoryID *string       `json:"serviceCategoryID,omitempty"`
	UnitPrice         MoneyResponse `json:"unitPrice"`
	LineTotal         MoneyResponse `json:"lineTotal"`
	Source            string        `json:"source"`
	RateCardItemID    *string       `json:"rateCardItemID,omitempty"`
}

// ResolvePricingResponse is returned when every line item resolved.
type ResolvePricingResponse struct {
	RateCardID      string                     `json:"rateCardID"`
	BillingCurrency string                     `json:"billingCurrency"`
	LineItems       []ResolvedLineItemResponse `json:"lineItems"`
	FXSnapshots     []FXSnapshotResponse       `json:"fxSnapshots"`
}

// ToResolvePricingResponse converts a domain.PricingResult to DTO.
func ToResolvePricingResponse(res *domain.PricingResult) ResolvePricingResponse {
	dp := res.BillingDecimalPlaces
	items := make([]ResolvedLineItemResponse, len(res.Resolved))
	for i, r := range res.Resolved {
		items[i] = ResolvedLineItemResponse{
			Index:             r.Index,
			Description:       r.Description,
			Quantity:          r.Quantity.String(),
			Unit:              r.Unit,
			ServiceCategoryID: r.ServiceCategoryID,
			UnitPrice:         MoneyResponse{Amount: r.UnitPrice.Format(dp), CurrencyCode: r.UnitPrice.Currency},
			LineTotal:         MoneyResponse{Amount: r.LineTotal.Format(dp), CurrencyCode: r.LineTotal.Currency},
			Source:            string(r.Source),
			RateCardItemID:    r.RateCardItemID,
		}
	}

	snapshots := make([]FXSnapshotResponse, len(res.FXSnapshots))
	for i, s := range res.FXSnapshots {
		snapshots[i] = ToFXSnapshotResponse(s)
	}

	return ResolvePricingResponse{
		RateCardID:      res.RateCardID,
		BillingCurrency: res.BillingCurrency,
		LineItems:       items,
		FXSnapshots:     snapshots,
	}
}

// UnmatchedLineItemsResponse lists every line item that could not be priced,
// alongside the ones that did.
type UnmatchedLineItemsResponse struct {
	Error     string                        `json:"error"`
	Unmatched []apperrors.UnmatchedLineItem `json:"unmatched"`
	Resolved  []ResolvedLineItemResponse    `json:"resolved,omitempty"`
}
