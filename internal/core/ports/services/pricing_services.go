package services

import (
	"context"

	"github.com/SscSPs/pricing_engine/internal/core/domain"
)

// PricingSvc is exposed to the quote/invoice calculation flow.
type PricingSvc interface {
	// ResolvePricing returns every line item priced, in input order. When some
	// items cannot be priced the error is *apperrors.UnmatchedLineItemsError
	// and the result still carries the items that did resolve, each tagged
	// with its input index. apperrors.ErrNoActiveRateCard aborts the batch.
	ResolvePricing(ctx context.Context, req domain.PricingRequest) (*domain.PricingResult, error)
}

// PermissionCheckerSvc answers whether an actor holds a named permission.
type PermissionCheckerSvc interface {
	HasPermission(ctx context.Context, actorID, permissionName string) (bool, error)
}

// OrganizationAccessSvc authorizes an actor against an organization's pricing data.
type OrganizationAccessSvc interface {
	// AuthorizeOrganizationAccess returns nil for members and an error wrapping
	// apperrors.ErrNotFound otherwise, so a non-member cannot tell whether the
	// organization exists.
	AuthorizeOrganizationAccess(ctx context.Context, actorID, organizationID string) error
}

// AuditLoggerSvc is notified by write-path flows after a mutation.
type AuditLoggerSvc interface {
	Record(ctx context.Context, entry domain.AuditEntry)
}

// CacheAdminSvc exposes the bust hooks write-path collaborators call after a mutation.
type CacheAdminSvc interface {
	// BustRateCard drops the card's items and every cached active-card
	// selection, since the owning organization is not known here.
	BustRateCard(ctx context.Context, rateCardID string)
	// BustActiveRateCards drops the organization's cached active-card selections.
	BustActiveRateCards(ctx context.Context, organizationID string)
	BustFxRate(ctx context.Context, base, quote string)
	BustCurrency(ctx context.Context, currencyCode string)
	BustOrganization(ctx context.Context, organizationID string)
}
