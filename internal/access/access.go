// Package access holds the single capability check every mutating endpoint
// goes through.
package access

import (
	apperrors "tourism/pkg/errors"
	"tourism/pkg/model"
)

// Check authorizes p against a resource owned by ownerID.
//
// Admins always pass. When ownerID is set the caller must own the resource.
// When ownerID is empty the caller's role must be one of roles, or any
// authenticated caller passes if no roles are given.
func Check(p *model.Principal, ownerID string, roles ...model.Role) error {
	if p == nil || p.UserID == "" {
		return apperrors.Unauthorized("Authentication required")
	}
	if p.IsAdmin() {
		return nil
	}
	if ownerID != "" {
		if p.UserID == ownerID {
			return nil
		}
		return apperrors.Forbidden("Only the owner or an administrator may perform this action")
	}
	if len(roles) == 0 {
		return nil
	}
	for _, r := range roles {
		if p.Role == r {
			return nil
		}
	}
	return apperrors.Forbidden("Insufficient privileges for this action")
}

// Owner authorizes p against an existing resource. A resource stored without
// an owner can only be changed by an admin.
func Owner(p *model.Principal, ownerID string) error {
	if ownerID == "" {
		return Check(p, "", model.RoleAdmin)
	}
	return Check(p, ownerID)
}

// Self authorizes p to act on a record belonging to userID. It differs from
// Check only in its error message.
func Self(p *model.Principal, userID string) error {
	if p == nil || p.UserID == "" {
		return apperrors.Unauthorized("Authentication required")
	}
	if p.IsAdmin() || p.UserID == userID {
		return nil
	}
	return apperrors.Forbidden("You do not have access to this record")
}
