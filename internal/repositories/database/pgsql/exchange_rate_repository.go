package pgsql

import (
	"context"
	"time"

	"github.com/SscSPs/pricing_engine/internal/core/domain"
	portsrepo "github.com/SscSPs/pricing_engine/internal/core/ports/repositories"
	"github.com/SscSPs/pricing_engine/internal/models"
	"github.com/SscSPs/pricing_engine/internal/utils/mapping"
)

// PgxExchangeRateRepository stores the append-only FX history.
type PgxExchangeRateRepository struct {
	BaseRepository
}

// newPgxExchangeRateRepository creates a new PgxExchangeRateRepository.
func newPgxExchangeRateRepository(db DB) *PgxExchangeRateRepository {
	return &PgxExchangeRateRepository{
		BaseRepository: BaseRepository{Pool: db},
	}
}

var _ portsrepo.ExchangeRateRepositoryFacade = (*PgxExchangeRateRepository)(nil)

// FindLatestExchangeRate returns the newest row for the exact pair whose
// effective_from is on or before asOf.
func (r *PgxExchangeRateRepository) FindLatestExchangeRate(ctx context.Context, baseCurrency, quoteCurrency string, asOf time.Time) (*domain.ExchangeRate, error) {
	query := `
		SELECT
			exchange_rate_id, base_currency, quote_currency, rate, effective_from, source, verified,
			created_at, created_by, last_updated_at, last_updated_by
		FROM exchange_rates
		WHERE base_currency = $1 AND quote_currency = $2 AND effective_from <= $3
		ORDER BY effective_from DESC
		LIMIT 1;
	`

	var m models.ExchangeRate
	err := r.Pool.QueryRow(ctx, query, baseCurrency, quoteCurrency, domain.DateOnly(asOf)).Scan(
		&m.ExchangeRateID,
		&m.BaseCurrency,
		&m.QuoteCurrency,
		&m.Rate,
		&m.EffectiveFrom,
		&m.Source,
		&m.Verified,
		&m.CreatedAt,
		&m.CreatedBy,
		&m.LastUpdatedAt,
		&m.LastUpdatedBy,
	)
	if err != nil {
		return nil, mapPgError("exchange rate", baseCurrency+"/"+quoteCurrency, err)
	}

	rate := mapping.ToDomainExchangeRate(m)
	return &rate, nil
}

// InsertExchangeRate appends a rate. Existing rows are never updated; a
// second row for the same pair and date violates the unique key.
func (r *PgxExchangeRateRepository) InsertExchangeRate(ctx context.Context, rate domain.ExchangeRate) error {
	m := mapping.ToModelExchangeRate(rate)

	query := `
		INSERT INTO exchange_rates (
			exchange_rate_id, base_currency, quote_currency, rate, effective_from, source, verified,
			created_at, created_by, last_updated_at, last_updated_by
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11);
	`

	_, err := r.Pool.Exec(ctx, query,
		m.ExchangeRateID, m.BaseCurrency, m.QuoteCurrency, m.Rate, m.EffectiveFrom, m.Source, m.Verified,
		m.CreatedAt, m.CreatedBy, m.LastUpdatedAt, m.LastUpdatedBy,
	)
	if err != nil {
		return mapPgError("exchange rate", m.BaseCurrency+"/"+m.QuoteCurrency+"@"+m.EffectiveFrom.Format(time.DateOnly), err)
	}
	return nil
}
