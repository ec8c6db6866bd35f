package services

import (
	"context"
	"time"

	"github.com/SscSPs/pricing_engine/internal/core/domain"
	"github.com/SscSPs/pricing_engine/internal/dto"
)

// RateCardResolverSvc defines read operations used by pricing.
type RateCardResolverSvc interface {
	// GetActiveRateCard fails with apperrors.ErrNoActiveRateCard when no card qualifies.
	GetActiveRateCard(ctx context.Context, organizationID string, asOf time.Time) (*domain.RateCard, error)

	// GetItems returns the card's active items.
	GetItems(ctx context.Context, rateCardID string) ([]domain.RateCardItem, error)

	// FindByCategory returns nil when no active item carries the category.
	FindByCategory(ctx context.Context, rateCardID, serviceCategoryID string) (*domain.RateCardItem, error)

	// FindByDescription returns nil when no item clears the similarity threshold.
	FindByDescription(ctx context.Context, rateCardID, description string) (*domain.RateCardItem, error)
}

// RateCardWriterSvc defines write operations for rate cards. Each write busts
// the affected cache entries.
type RateCardWriterSvc interface {
	SaveRateCardItem(ctx context.Context, rateCardID string, req dto.SaveRateCardItemRequest, userID string) (*domain.RateCardItem, error)
	DeactivateRateCardItem(ctx context.Context, rateCardID, rateCardItemID, userID string) error
	SetRateCardActive(ctx context.Context, rateCardID string, active bool, userID string) error
}
