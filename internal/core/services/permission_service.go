package services

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/SscSPs/pricing_engine/internal/apperrors"
	portsrepo "github.com/SscSPs/pricing_engine/internal/core/ports/repositories"
	portssvc "github.com/SscSPs/pricing_engine/internal/core/ports/services"
)

// permissionService answers grant lookups. Grants are not cached so that a
// revoked override permission takes effect on the next request.
type permissionService struct {
	BaseService
	repo portsrepo.PermissionReader
}

// NewPermissionService creates the permission checker.
func NewPermissionService(repo portsrepo.PermissionReader) portssvc.PermissionCheckerSvc {
	return &permissionService{repo: repo}
}

var _ portssvc.PermissionCheckerSvc = (*permissionService)(nil)

func (s *permissionService) HasPermission(ctx context.Context, actorID, permissionName string) (bool, error) {
	if actorID == "" {
		return false, nil
	}
	ok, err := s.repo.HasPermission(ctx, actorID, permissionName)
	if err != nil {
		return false, fmt.Errorf("failed to check permission %s: %w", permissionName, err)
	}
	return ok, nil
}

// organizationAccessService gates per-organization routes on membership.
type organizationAccessService struct {
	BaseService
	repo portsrepo.OrganizationMembershipReader
}

// NewOrganizationAccessService creates the membership gate.
func NewOrganizationAccessService(repo portsrepo.OrganizationMembershipReader) portssvc.OrganizationAccessSvc {
	return &organizationAccessService{repo: repo}
}

func (s *organizationAccessService) AuthorizeOrganizationAccess(ctx context.Context, actorID, organizationID string) error {
	if actorID == "" {
		return fmt.Errorf("%w: missing actor", apperrors.ErrForbidden)
	}

	member, err := s.repo.IsOrganizationMember(ctx, organizationID, actorID)
	if err != nil {
		s.LogError(ctx, err, "Failed to check organization membership",
			slog.String("actor_id", actorID),
			slog.String("organization_id", organizationID))
		return fmt.Errorf("failed to check authorization: %w", err)
	}
	if !member {
		s.LogWarn(ctx, "Authorization failed: actor is not a member of the organization",
			slog.String("actor_id", actorID),
			slog.String("organization_id", organizationID))
		return fmt.Errorf("organization %s: %w", organizationID, apperrors.ErrNotFound)
	}
	return nil
}
