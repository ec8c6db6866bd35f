package pgsql

import (
	"context"
	"fmt"

	"github.com/SscSPs/pricing_engine/internal/core/domain"
	portsrepo "github.com/SscSPs/pricing_engine/internal/core/ports/repositories"
	"github.com/SscSPs/pricing_engine/internal/models"
	"github.com/SscSPs/pricing_engine/internal/utils/mapping"
)

// PgxOrganizationRepository reads organizations and their billing currency.
type PgxOrganizationRepository struct {
	BaseRepository
}

func newPgxOrganizationRepository(db DB) *PgxOrganizationRepository {
	return &PgxOrganizationRepository{
		BaseRepository: BaseRepository{Pool: db},
	}
}

var _ portsrepo.OrganizationRepositoryFacade = (*PgxOrganizationRepository)(nil)

// FindOrganizationByID retrieves an organization.
func (r *PgxOrganizationRepository) FindOrganizationByID(ctx context.Context, organizationID string) (*domain.Organization, error) {
	query := `
		SELECT organization_id, name, billing_currency_code, created_at, created_by, last_updated_at, last_updated_by
		FROM organizations
		WHERE organization_id = $1;
	`
	var m models.Organization
	err := r.Pool.QueryRow(ctx, query, organizationID).Scan(
		&m.OrganizationID,
		&m.Name,
		&m.BillingCurrencyCode,
		&m.CreatedAt,
		&m.CreatedBy,
		&m.LastUpdatedAt,
		&m.LastUpdatedBy,
	)
	if err != nil {
		return nil, mapPgError("organization", organizationID, err)
	}

	org := mapping.ToDomainOrganization(m)
	return &org, nil
}

// IsOrganizationMember reports whether the actor is listed in organization_members.
func (r *PgxOrganizationRepository) IsOrganizationMember(ctx context.Context, organizationID, actorID string) (bool, error) {
	query := `SELECT EXISTS (SELECT 1 FROM organization_members WHERE organization_id = $1 AND actor_id = $2);`

	var member bool
	if err := r.Pool.QueryRow(ctx, query, organizationID, actorID).Scan(&member); err != nil {
		return false, fmt.Errorf("failed to check membership of actor %s in organization %s: %w", actorID, organizationID, err)
	}
	return member, nil
}
