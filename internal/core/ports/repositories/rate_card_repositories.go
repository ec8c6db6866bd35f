package repositories

import (
	"context"
	"time"

	"github.com/SscSPs/pricing_engine/internal/core/domain"
)

// RateCardReader defines read operations for rate cards and their items
type RateCardReader interface {
	// FindRateCardsCovering returns the organization's active cards whose
	// effective range contains asOf. Selection among them is the caller's job.
	FindRateCardsCovering(ctx context.Context, organizationID string, asOf time.Time) ([]domain.RateCard, error)

	// FindRateCardByID retrieves a single card.
	FindRateCardByID(ctx context.Context, rateCardID string) (*domain.RateCard, error)

	// ListRateCardItems returns every item of a card, active or not.
	ListRateCardItems(ctx context.Context, rateCardID string) ([]domain.RateCardItem, error)
}

// RateCardWriter defines write operations for rate cards and their items
type RateCardWriter interface {
	// SaveRateCardItem inserts or updates an item and returns the stored row.
	SaveRateCardItem(ctx context.Context, item domain.RateCardItem) (*domain.RateCardItem, error)

	// DeactivateRateCardItem flips is_active to false.
	DeactivateRateCardItem(ctx context.Context, rateCardID, rateCardItemID, userID string) error

	// SetRateCardActive flips is_active on a card.
	SetRateCardActive(ctx context.Context, rateCardID string, active bool, userID string) error
}

// RateCardRepositoryFacade combines all rate card-related repository interfaces
type RateCardRepositoryFacade interface {
	RateCardReader
	RateCardWriter
}

// RateCardRepositoryWithTx extends RateCardRepositoryFacade with transaction capabilities
type RateCardRepositoryWithTx interface {
	RateCardRepositoryFacade
	TransactionManager
}

// OrganizationReader resolves the organization's billing currency.
type OrganizationReader interface {
	FindOrganizationByID(ctx context.Context, organizationID string) (*domain.Organization, error)
}

// OrganizationMembershipReader answers whether an actor belongs to an organization.
type OrganizationMembershipReader interface {
	IsOrganizationMember(ctx context.Context, organizationID, actorID string) (bool, error)
}

// OrganizationRepositoryFacade combines organization lookups and membership checks
type OrganizationRepositoryFacade interface {
	OrganizationReader
	OrganizationMembershipReader
}
