package auth

import (
	"slices"

	"github.com/isdelr/itemdesk-be/internal/models"
)

// Policy decides whether a caller may act on a resource.
type Policy[R any] func(caller models.Caller, resource R) bool

// Allows reports whether p permits caller to act on resource.
func (p Policy[R]) Allows(caller models.Caller, resource R) bool {
	return p(caller, resource)
}

// Or combines policies so that any one of them granting access is enough.
func Or[R any](policies ...Policy[R]) Policy[R] {
	return func(caller models.Caller, resource R) bool {
		for _, p := range policies {
			if p(caller, resource) {
				return true
			}
		}
		return false
	}
}

// HasRole grants access when the caller's role is in roles, whatever the resource.
func HasRole[R any](roles ...models.Role) Policy[R] {
	return func(caller models.Caller, _ R) bool {
		return slices.Contains(roles, caller.Role)
	}
}

// OwnsItem grants access to the item's owner.
func OwnsItem(caller models.Caller, item models.Item) bool {
	return item.OwnerID == caller.ID
}

// CanModifyItem is the rule shared by item update and delete.
var CanModifyItem = Or[models.Item](OwnsItem, HasRole[models.Item](models.RoleAdmin))

// ItemOwnerScope returns the owner id that item queries must be restricted to,
// or "" when the caller may see every item.
func ItemOwnerScope(caller models.Caller) string {
	if caller.IsAdmin() {
		return ""
	}
	return caller.ID
}
