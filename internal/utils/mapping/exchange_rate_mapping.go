package mapping

import (
	"github.com/SscSPs/pricing_engine/internal/core/domain"
	"github.com/SscSPs/pricing_engine/internal/models"
)

// ToModelExchangeRate converts a domain ExchangeRate to a model ExchangeRate
func ToModelExchangeRate(d domain.ExchangeRate) models.ExchangeRate {
	return models.ExchangeRate{
		ExchangeRateID: d.ExchangeRateID,
		BaseCurrency:   d.BaseCurrency,
		QuoteCurrency:  d.QuoteCurrency,
		Rate:           d.Rate,
		EffectiveFrom:  domain.DateOnly(d.EffectiveFrom),
		Source:         d.Source,
		Verified:       d.Verified,
		AuditFields:    ToModelAuditFields(d.AuditFields),
	}
}

// ToDomainExchangeRate converts a model ExchangeRate to a domain ExchangeRate
func ToDomainExchangeRate(m models.ExchangeRate) domain.ExchangeRate {
	return domain.ExchangeRate{
		ExchangeRateID: m.ExchangeRateID,
		BaseCurrency:   m.BaseCurrency,
		QuoteCurrency:  m.QuoteCurrency,
		Rate:           m.Rate,
		EffectiveFrom:  domain.DateOnly(m.EffectiveFrom),
		Source:         m.Source,
		Verified:       m.Verified,
		AuditFields:    ToDomainAuditFields(m.AuditFields),
	}
}
