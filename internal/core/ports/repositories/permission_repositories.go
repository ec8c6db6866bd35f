package repositories

import "context"

// PermissionReader answers grant lookups for actors.
type PermissionReader interface {
	// HasPermission reports whether actorID holds permissionName, either
	// directly or through one of its roles.
	HasPermission(ctx context.Context, actorID, permissionName string) (bool, error)
}
