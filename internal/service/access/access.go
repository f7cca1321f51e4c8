package access

import (
	"strings"

	"github.com/omniclinic/clinic-api/internal/model"
)

// Visible filters the navigation registry for one member of one tenant. An
// item passes when the role matches (or the item is wildcarded) and, for
// department items, the tenant has that department enabled. A department
// missing from the settings map hides the item. Order is preserved; the
// registry is never re-sorted.
func Visible(role model.Role, settings model.OrganizationSettings) []model.NavItem {
	items := make([]model.NavItem, 0, len(model.DefaultNavItems))
	for _, item := range model.DefaultNavItems {
		if !roleAllowed(item, role) {
			continue
		}
		if item.Department != "" && !settings.DepartmentEnabled(item.Department) {
			continue
		}
		items = append(items, item)
	}
	return items
}

// CanSee reports whether one item id survives the filter for this member.
func CanSee(role model.Role, settings model.OrganizationSettings, itemID string) bool {
	for _, item := range Visible(role, settings) {
		if item.ID == itemID {
			return true
		}
	}
	return false
}

func roleAllowed(item model.NavItem, role model.Role) bool {
	for _, r := range item.Roles {
		if r == model.RoleWildcard {
			return true
		}
		if strings.EqualFold(r, string(role)) {
			return true
		}
	}
	return false
}
