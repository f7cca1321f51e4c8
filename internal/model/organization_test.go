package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDepartmentEnabledFailsClosed(t *testing.T) {
	var settings OrganizationSettings
	assert.False(t, settings.DepartmentEnabled(DepartmentLaboratory), "nil map")

	settings.EnabledDepartments = map[string]bool{
		DepartmentLaboratory: true,
		DepartmentPharmacy:   false,
	}
	assert.True(t, settings.DepartmentEnabled(DepartmentLaboratory))
	assert.False(t, settings.DepartmentEnabled(DepartmentPharmacy), "explicit false")
	assert.False(t, settings.DepartmentEnabled(DepartmentMaternity), "missing key")
}

func TestDefaultOrganizationSettings(t *testing.T) {
	s := DefaultOrganizationSettings()
	assert.True(t, s.TriageRequired)
	assert.Equal(t, CurrencySSP, s.DefaultCurrency)
	assert.False(t, s.WhatsappEnabled)
	assert.Empty(t, s.EnabledDepartments)
}
