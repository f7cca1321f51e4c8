package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseRoleCanonicalizes(t *testing.T) {
	cases := map[string]Role{
		"owner":    RoleOwner,
		"OWNER":    RoleOwner,
		" Admin ":  RoleAdmin,
		"Doctor":   RoleDoctor,
		"nurse":    RoleNurse,
		"LAB":      RoleLab,
		"Pharmacy": RolePharmacy,
		"cashier":  RoleCashier,
		"viewer":   RoleViewer,
	}
	for input, want := range cases {
		got, err := ParseRole(input)
		require.NoError(t, err, "input %q", input)
		assert.Equal(t, want, got)
	}
}

func TestParseRoleRejectsUnknown(t *testing.T) {
	for _, input := range []string{"", "superuser", "admin;", "nurse2", "practitioner"} {
		_, err := ParseRole(input)
		assert.Error(t, err, "input %q", input)
	}
}

func TestRoleValid(t *testing.T) {
	assert.True(t, RoleOwner.Valid())
	assert.True(t, RoleViewer.Valid())
	assert.False(t, Role("Owner").Valid())
	assert.False(t, Role("root").Valid())
}
