package access

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/omniclinic/clinic-api/internal/model"
)

func itemIDs(items []model.NavItem) []string {
	ids := make([]string, 0, len(items))
	for _, item := range items {
		ids = append(ids, item.ID)
	}
	return ids
}

func TestVisibleWildcardReachesEveryRole(t *testing.T) {
	for _, role := range []model.Role{model.RoleOwner, model.RoleViewer, model.RoleCashier, model.RoleLab} {
		items := Visible(role, model.OrganizationSettings{})
		assert.Contains(t, itemIDs(items), "dashboard", "role %s", role)
	}
}

func TestVisibleFiltersByRole(t *testing.T) {
	ids := itemIDs(Visible(model.RoleNurse, model.OrganizationSettings{}))
	assert.Contains(t, ids, "patients")
	assert.Contains(t, ids, "triage")
	assert.NotContains(t, ids, "consultation")
	assert.NotContains(t, ids, "billing")
	assert.NotContains(t, ids, "settings")
}

func TestVisibleDepartmentGating(t *testing.T) {
	// No departments configured: every department item is hidden, even for
	// a role that would otherwise see it.
	ids := itemIDs(Visible(model.RoleAdmin, model.OrganizationSettings{}))
	assert.NotContains(t, ids, "lab")
	assert.NotContains(t, ids, "pharmacy")
	assert.NotContains(t, ids, "maternity")

	settings := model.OrganizationSettings{
		EnabledDepartments: map[string]bool{
			model.DepartmentLaboratory: true,
			model.DepartmentPharmacy:   false,
		},
	}
	ids = itemIDs(Visible(model.RoleAdmin, settings))
	assert.Contains(t, ids, "lab")
	assert.NotContains(t, ids, "pharmacy", "explicit false stays hidden")
}

func TestVisibleDepartmentDoesNotOverrideRole(t *testing.T) {
	settings := model.OrganizationSettings{
		EnabledDepartments: map[string]bool{model.DepartmentLaboratory: true},
	}
	// The cashier role is not on the lab item; enabling the department
	// must not reveal it.
	assert.NotContains(t, itemIDs(Visible(model.RoleCashier, settings)), "lab")
}

func TestVisiblePreservesRegistryOrder(t *testing.T) {
	settings := model.OrganizationSettings{
		EnabledDepartments: map[string]bool{
			model.DepartmentLaboratory: true,
			model.DepartmentPharmacy:   true,
		},
	}
	items := Visible(model.RoleOwner, settings)

	pos := make(map[string]int, len(model.DefaultNavItems))
	for i, item := range model.DefaultNavItems {
		pos[item.ID] = i
	}
	for i := 1; i < len(items); i++ {
		assert.Less(t, pos[items[i-1].ID], pos[items[i].ID])
	}
}

func TestCanSee(t *testing.T) {
	settings := model.OrganizationSettings{
		EnabledDepartments: map[string]bool{model.DepartmentPharmacy: true},
	}
	assert.True(t, CanSee(model.RolePharmacy, settings, "pharmacy"))
	assert.True(t, CanSee(model.RolePharmacy, settings, "dashboard"))
	assert.False(t, CanSee(model.RolePharmacy, settings, "billing"))
	assert.False(t, CanSee(model.RolePharmacy, settings, "lab"))
}
