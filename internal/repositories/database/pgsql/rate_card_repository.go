package pgsql

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/SscSPs/pricing_engine/internal/apperrors"
	"github.com/SscSPs/pricing_engine/internal/core/domain"
	portsrepo "github.com/SscSPs/pricing_engine/internal/core/ports/repositories"
	"github.com/SscSPs/pricing_engine/internal/models"
	"github.com/SscSPs/pricing_engine/internal/utils/mapping"
	"github.com/jackc/pgx/v5"
)

var psql = squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)

// PgxRateCardRepository stores rate cards and their items.
type PgxRateCardRepository struct {
	BaseRepository
}

func newPgxRateCardRepository(db DB) *PgxRateCardRepository {
	return &PgxRateCardRepository{
		BaseRepository: BaseRepository{Pool: db},
	}
}

var _ portsrepo.RateCardRepositoryWithTx = (*PgxRateCardRepository)(nil)

const rateCardColumns = `rate_card_id, organization_id, name, is_active, is_default, effective_from, effective_until,
	created_at, created_by, last_updated_at, last_updated_by`

const rateCardItemColumns = `rate_card_item_id, rate_card_id, service_category_id, description, unit_rate, currency_code, is_active,
	created_at, created_by, last_updated_at, last_updated_by`

func scanRateCard(row pgx.Row) (models.RateCard, error) {
	var m models.RateCard
	err := row.Scan(
		&m.RateCardID,
		&m.OrganizationID,
		&m.Name,
		&m.IsActive,
		&m.IsDefault,
		&m.EffectiveFrom,
		&m.EffectiveUntil,
		&m.CreatedAt,
		&m.CreatedBy,
		&m.LastUpdatedAt,
		&m.LastUpdatedBy,
	)
	return m, err
}

func scanRateCardItem(row pgx.Row) (models.RateCardItem, error) {
	var m models.RateCardItem
	err := row.Scan(
		&m.RateCardItemID,
		&m.RateCardID,
		&m.ServiceCategoryID,
		&m.Description,
		&m.UnitRate,
		&m.CurrencyCode,
		&m.IsActive,
		&m.CreatedAt,
		&m.CreatedBy,
		&m.LastUpdatedAt,
		&m.LastUpdatedBy,
	)
	return m, err
}

// FindRateCardsCovering returns the organization's active cards whose
// [effective_from, effective_until) range contains asOf.
func (r *PgxRateCardRepository) FindRateCardsCovering(ctx context.Context, organizationID string, asOf time.Time) ([]domain.RateCard, error) {
	day := domain.DateOnly(asOf)
	query, args, err := psql.
		Select(rateCardColumns).
		From("rate_cards").
		Where(squirrel.Eq{"organization_id": organizationID}).
		Where(squirrel.Eq{"is_active": true}).
		Where(squirrel.LtOrEq{"effective_from": day}).
		Where(squirrel.Or{
			squirrel.Eq{"effective_until": nil},
			squirrel.Gt{"effective_until": day},
		}).
		OrderBy("is_default DESC", "effective_from DESC", "rate_card_id ASC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build rate card query: %w", err)
	}

	rows, err := r.Pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query rate cards for organization %s: %w", organizationID, err)
	}
	defer rows.Close()

	cards, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (models.RateCard, error) {
		return scanRateCard(row)
	})
	if err != nil {
		return nil, fmt.Errorf("failed to scan rate cards: %w", err)
	}
	return mapping.ToDomainRateCardSlice(cards), nil
}

// FindRateCardByID retrieves a single card.
func (r *PgxRateCardRepository) FindRateCardByID(ctx context.Context, rateCardID string) (*domain.RateCard, error) {
	query := `SELECT ` + rateCardColumns + ` FROM rate_cards WHERE rate_card_id = $1;`

	m, err := scanRateCard(r.Pool.QueryRow(ctx, query, rateCardID))
	if err != nil {
		return nil, mapPgError("rate card", rateCardID, err)
	}
	card := mapping.ToDomainRateCard(m)
	return &card, nil
}

// ListRateCardItems returns every item of a card, active or not.
func (r *PgxRateCardRepository) ListRateCardItems(ctx context.Context, rateCardID string) ([]domain.RateCardItem, error) {
	query := `
		SELECT ` + rateCardItemColumns + `
		FROM rate_card_items
		WHERE rate_card_id = $1
		ORDER BY created_at DESC, rate_card_item_id ASC;
	`
	rows, err := r.Pool.Query(ctx, query, rateCardID)
	if err != nil {
		return nil, fmt.Errorf("failed to query items of rate card %s: %w", rateCardID, err)
	}
	defer rows.Close()

	items, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (models.RateCardItem, error) {
		return scanRateCardItem(row)
	})
	if err != nil {
		return nil, fmt.Errorf("failed to scan rate card items: %w", err)
	}
	return mapping.ToDomainRateCardItemSlice(items), nil
}

// SaveRateCardItem inserts or updates an item and returns the stored row, so
// an update reports the original created_at. The owning card row is locked
// for the duration so a concurrent deactivation cannot interleave.
func (r *PgxRateCardRepository) SaveRateCardItem(ctx context.Context, item domain.RateCardItem) (*domain.RateCardItem, error) {
	m := mapping.ToModelRateCardItem(item)

	var stored models.RateCardItem
	err := r.withRetry(ctx, func() error {
		var txErr error
		stored, txErr = r.saveRateCardItemTx(ctx, m)
		return txErr
	})
	if err != nil {
		return nil, err
	}

	saved := mapping.ToDomainRateCardItem(stored)
	return &saved, nil
}

func (r *PgxRateCardRepository) saveRateCardItemTx(ctx context.Context, m models.RateCardItem) (models.RateCardItem, error) {
	tx, err := r.Begin(ctx)
	if err != nil {
		return models.RateCardItem{}, err
	}
	defer func() { _ = r.Rollback(ctx, tx) }()

	var locked string
	err = tx.QueryRow(ctx, `SELECT rate_card_id FROM rate_cards WHERE rate_card_id = $1 FOR UPDATE;`, m.RateCardID).Scan(&locked)
	if err != nil {
		return models.RateCardItem{}, mapPgError("rate card", m.RateCardID, err)
	}

	query := `
		INSERT INTO rate_card_items (` + rateCardItemColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		ON CONFLICT (rate_card_item_id) DO UPDATE SET
			service_category_id = EXCLUDED.service_category_id,
			description = EXCLUDED.description,
			unit_rate = EXCLUDED.unit_rate,
			currency_code = EXCLUDED.currency_code,
			is_active = EXCLUDED.is_active,
			last_updated_at = EXCLUDED.last_updated_at,
			last_updated_by = EXCLUDED.last_updated_by
		WHERE rate_card_items.rate_card_id = EXCLUDED.rate_card_id
		RETURNING ` + rateCardItemColumns + `;
	`
	stored, err := scanRateCardItem(tx.QueryRow(ctx, query,
		m.RateCardItemID, m.RateCardID, m.ServiceCategoryID, m.Description, m.UnitRate, m.CurrencyCode, m.IsActive,
		m.CreatedAt, m.CreatedBy, m.LastUpdatedAt, m.LastUpdatedBy,
	))
	if errors.Is(err, pgx.ErrNoRows) {
		// the ID exists under a different card
		return models.RateCardItem{}, fmt.Errorf("rate card item %s: %w: belongs to another rate card", m.RateCardItemID, apperrors.ErrValidation)
	}
	if err != nil {
		return models.RateCardItem{}, mapPgError("rate card item", m.RateCardItemID, err)
	}

	if err := r.Commit(ctx, tx); err != nil {
		return models.RateCardItem{}, err
	}
	return stored, nil
}

// DeactivateRateCardItem flips is_active to false.
func (r *PgxRateCardRepository) DeactivateRateCardItem(ctx context.Context, rateCardID, rateCardItemID, userID string) error {
	query := `
		UPDATE rate_card_items
		SET is_active = FALSE, last_updated_at = NOW(), last_updated_by = $3
		WHERE rate_card_id = $1 AND rate_card_item_id = $2;
	`
	tag, err := r.Pool.Exec(ctx, query, rateCardID, rateCardItemID, userID)
	if err != nil {
		return mapPgError("rate card item", rateCardItemID, err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}

// SetRateCardActive flips is_active on a card.
func (r *PgxRateCardRepository) SetRateCardActive(ctx context.Context, rateCardID string, active bool, userID string) error {
	query := `
		UPDATE rate_cards
		SET is_active = $2, last_updated_at = NOW(), last_updated_by = $3
		WHERE rate_card_id = $1;
	`
	tag, err := r.Pool.Exec(ctx, query, rateCardID, active, userID)
	if err != nil {
		return mapPgError("rate card", rateCardID, err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}
