package models

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestParseCapability(t *testing.T) {
	t.Parallel()

	c, err := ParseCapability("manage:users")
	require.NoError(t, err)
	require.Equal(t, CapManageUsers, c)

	_, err = ParseCapability("manage:everything")
	require.Error(t, err)

	_, err = ParseCapability("")
	require.Error(t, err)
}

func TestPermissionsFor(t *testing.T) {
	t.Parallel()

	require.Empty(t, PermissionsFor(RoleUser))

	admin := PermissionsFor(RoleAdmin)
	require.False(t, admin[CapManageUsers])
	require.True(t, admin[CapManageSupport])
	require.True(t, admin[CapViewReports])

	super := PermissionsFor(RoleSuperAdmin)
	for c := range allCapabilities {
		require.True(t, super[c], string(c))
	}
}

func TestHasCapability(t *testing.T) {
	t.Parallel()

	require.True(t, HasCapability(RoleSuperAdmin, CapManageUsers))
	require.False(t, HasCapability(RoleAdmin, CapManageUsers))
	require.True(t, HasCapability(RoleAdmin, CapManageStories))
	require.False(t, HasCapability(RoleUser, CapViewReports))
}

func TestValidateRoleTables(t *testing.T) {
	t.Parallel()

	require.NoError(t, ValidateRoleTables())
}
