package pgsql

import (
	"context"
	"fmt"

	portsrepo "github.com/SscSPs/pricing_engine/internal/core/ports/repositories"
)

// PgxPermissionRepository answers grant lookups from actor_permissions and
// role_permissions.
type PgxPermissionRepository struct {
	BaseRepository
}

func newPgxPermissionRepository(db DB) *PgxPermissionRepository {
	return &PgxPermissionRepository{
		BaseRepository: BaseRepository{Pool: db},
	}
}

var _ portsrepo.PermissionReader = (*PgxPermissionRepository)(nil)

// HasPermission reports whether the actor holds the permission directly or through a role.
func (r *PgxPermissionRepository) HasPermission(ctx context.Context, actorID, permissionName string) (bool, error) {
	query := `
		SELECT EXISTS (
			SELECT 1 FROM actor_permissions
			WHERE actor_id = $1 AND permission_name = $2
			UNION ALL
			SELECT 1 FROM actor_roles ar
			JOIN role_permissions rp ON rp.role_name = ar.role_name
			WHERE ar.actor_id = $1 AND rp.permission_name = $2
		);
	`
	var granted bool
	if err := r.Pool.QueryRow(ctx, query, actorID, permissionName).Scan(&granted); err != nil {
		return false, fmt.Errorf("failed to check permission %s for actor %s: %w", permissionName, actorID, err)
	}
	return granted, nil
}
