package pgsql

import (
	portsrepo "github.com/SscSPs/pricing_engine/internal/core/ports/repositories"
)

// NewRepositoryProvider wires every repository over the same pool.
func NewRepositoryProvider(dbPool DB) portsrepo.RepositoryProvider {
	return portsrepo.RepositoryProvider{
		CurrencyRepo:     newPgxCurrencyRepository(dbPool),
		ExchangeRateRepo: newPgxExchangeRateRepository(dbPool),
		RateCardRepo:     newPgxRateCardRepository(dbPool),
		OrganizationRepo: newPgxOrganizationRepository(dbPool),
		PermissionRepo:   newPgxPermissionRepository(dbPool),
	}
}
