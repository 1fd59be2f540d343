package auth

import "strings"

// PermWildcard grants everything. It is assigned exactly once per
// organization, to the founding super-admin, and is never grantable through
// an invite.
const PermWildcard = "*"

// Permission keys, namespaced resource:action.
const (
	PermUserCreate = "user:create"
	PermUserRead   = "user:read"
	PermUserUpdate = "user:update"
	PermUserDelete = "user:delete"
	PermUserInvite = "user:invite"

	PermProductCreate = "product:create"
	PermProductRead   = "product:read"
	PermProductUpdate = "product:update"
	PermProductDelete = "product:delete"

	PermInventoryRead     = "inventory:read"
	PermInventoryUpdate   = "inventory:update"
	PermInventoryTransfer = "inventory:transfer"
)

// Catalog is the closed set of grantable permissions. The wildcard is
// deliberately absent: it cannot be granted, only minted at registration.
var Catalog = []string{
	PermUserCreate,
	PermUserRead,
	PermUserUpdate,
	PermUserDelete,
	PermUserInvite,
	PermProductCreate,
	PermProductRead,
	PermProductUpdate,
	PermProductDelete,
	PermInventoryRead,
	PermInventoryUpdate,
	PermInventoryTransfer,
}

var catalogSet = func() map[string]struct{} {
	set := make(map[string]struct{}, len(Catalog))
	for _, p := range Catalog {
		set[p] = struct{}{}
	}
	return set
}()

// ValidPermission reports whether key names a catalog permission.
func ValidPermission(key string) bool {
	_, ok := catalogSet[strings.TrimSpace(key)]
	return ok
}

// InvalidPermissions returns the entries of keys that are not in the catalog.
// An empty result means every entry is recognized.
func InvalidPermissions(keys []string) []string {
	var invalid []string
	for _, key := range keys {
		if !ValidPermission(key) {
			invalid = append(invalid, key)
		}
	}
	return invalid
}

// NormalizePermissions trims, lower-cases and deduplicates a permission list
// while preserving first-seen order.
func NormalizePermissions(keys []string) []string {
	seen := make(map[string]struct{}, len(keys))
	var out []string
	for _, key := range keys {
		key = strings.TrimSpace(strings.ToLower(key))
		if key == "" {
			continue
		}
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, key)
	}
	return out
}

// PermissionSet converts a permission list into membership form.
func PermissionSet(keys []string) map[string]struct{} {
	set := make(map[string]struct{}, len(keys))
	for _, key := range keys {
		set[key] = struct{}{}
	}
	return set
}
