package auth

import (
	"fmt"
	"strings"
)

// Principal is the acting identity resolved for a request: who is calling,
// which organization they belong to, and what they may do.
type Principal struct {
	UserID         string
	OrganizationID string
	Role           string
	SuperAdmin     bool
	Permissions    map[string]struct{}
}

// NewPrincipal builds a principal from a stored user.
func NewPrincipal(u *User) Principal {
	return Principal{
		UserID:         u.ID,
		OrganizationID: u.OrganizationID,
		Role:           u.Role,
		SuperAdmin:     u.IsSuperAdmin,
		Permissions:    PermissionSet(u.Permissions),
	}
}

// HasPermission reports whether the principal holds the permission key.
func (p Principal) HasPermission(key string) bool {
	_, ok := p.Permissions[key]
	return ok
}

// hasWildcard is the super-admin bypass condition: the flag alone is not
// enough, the wildcard grant must also be present.
func (p Principal) hasWildcard() bool {
	return p.SuperAdmin && p.HasPermission(PermWildcard)
}

// Authorize is the capability check: a wildcard super-admin passes
// unconditionally, everyone else must hold every required permission.
func Authorize(p Principal, required ...string) error {
	if p.hasWildcard() {
		return nil
	}
	if len(required) == 0 {
		return fmt.Errorf("%w: access denied", ErrForbidden)
	}
	var missing []string
	for _, perm := range required {
		if !p.HasPermission(perm) {
			missing = append(missing, perm)
		}
	}
	if len(missing) > 0 {
		return fmt.Errorf("%w: insufficient permissions: %s", ErrForbidden, strings.Join(missing, ", "))
	}
	return nil
}

// PreventEscalation rejects any invite that would grant permissions the
// inviter does not hold. This guard runs on every invite-creation path: a
// staff member can never mint a grant exceeding their own.
func PreventEscalation(p Principal, grant []string) error {
	if p.hasWildcard() {
		return nil
	}
	if !p.HasPermission(PermUserInvite) {
		return fmt.Errorf("%w: missing %s permission", ErrForbidden, PermUserInvite)
	}
	var exceeding []string
	for _, perm := range grant {
		if !p.HasPermission(perm) {
			exceeding = append(exceeding, perm)
		}
	}
	if len(exceeding) > 0 {
		return fmt.Errorf("%w: cannot grant permissions you do not hold: %s", ErrForbidden, strings.Join(exceeding, ", "))
	}
	return nil
}

// RequireRole is the coarser role allow-list gate. It coexists with the
// permission-based check; endpoints pick one.
func RequireRole(p Principal, allowed ...string) error {
	if p.SuperAdmin {
		return nil
	}
	if len(allowed) == 0 {
		return fmt.Errorf("%w: access denied", ErrForbidden)
	}
	for _, role := range allowed {
		if strings.EqualFold(p.Role, role) {
			return nil
		}
	}
	return fmt.Errorf("%w: role %q is not permitted", ErrForbidden, p.Role)
}
