package mapping

import (
	"github.com/SscSPs/pricing_engine/internal/core/domain"
	"github.com/SscSPs/pricing_engine/internal/models"
)

// ToDomainOrganization converts a model Organization to a domain Organization
func ToDomainOrganization(m models.Organization) domain.Organization {
	return domain.Organization{
		OrganizationID:      m.OrganizationID,
		Name:                m.Name,
		BillingCurrencyCode: m.BillingCurrencyCode,
		AuditFields:         ToDomainAuditFields(m.AuditFields),
	}
}

// ToDomainRateCard converts a model RateCard to a domain RateCard
func ToDomainRateCard(m models.RateCard) domain.RateCard {
	card := domain.RateCard{
		RateCardID:     m.RateCardID,
		OrganizationID: m.OrganizationID,
		Name:           m.Name,
		IsActive:       m.IsActive,
		IsDefault:      m.IsDefault,
		EffectiveFrom:  domain.DateOnly(m.EffectiveFrom),
		AuditFields:    ToDomainAuditFields(m.AuditFields),
	}
	if m.EffectiveUntil != nil {
		until := domain.DateOnly(*m.EffectiveUntil)
		card.EffectiveUntil = &until
	}
	return card
}

// ToDomainRateCardSlice converts a slice of model RateCards to domain RateCards
func ToDomainRateCardSlice(ms []models.RateCard) []domain.RateCard {
	ds := make([]domain.RateCard, len(ms))
	for i, m := range ms {
		ds[i] = ToDomainRateCard(m)
	}
	return ds
}

// ToModelRateCardItem converts a domain RateCardItem to a model RateCardItem
func ToModelRateCardItem(d domain.RateCardItem) models.RateCardItem {
	return models.RateCardItem{
		RateCardItemID:    d.RateCardItemID,
		RateCardID:        d.RateCardID,
		ServiceCategoryID: d.ServiceCategoryID,
		Description:       d.Description,
		UnitRate:          d.UnitRate.Amount,
		CurrencyCode:      d.UnitRate.Currency,
		IsActive:          d.IsActive,
		AuditFields:       ToModelAuditFields(d.AuditFields),
	}
}

// ToDomainRateCardItem converts a model RateCardItem to a domain RateCardItem
func ToDomainRateCardItem(m models.RateCardItem) domain.RateCardItem {
	return domain.RateCardItem{
		RateCardItemID:    m.RateCardItemID,
		RateCardID:        m.RateCardID,
		ServiceCategoryID: m.ServiceCategoryID,
		Description:       m.Description,
		UnitRate:          domain.NewMoney(m.UnitRate, m.CurrencyCode),
		IsActive:          m.IsActive,
		AuditFields:       ToDomainAuditFields(m.AuditFields),
	}
}

// ToDomainRateCardItemSlice converts a slice of model items to domain items
func ToDomainRateCardItemSlice(ms []models.RateCardItem) []domain.RateCardItem {
	ds := make([]domain.RateCardItem, len(ms))
	for i, m := range ms {
		ds[i] = ToDomainRateCardItem(m)
	}
	return ds
}
