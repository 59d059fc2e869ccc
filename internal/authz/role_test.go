package authz

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRoleRoundTrip(t *testing.T) {
	for _, name := range []string{"user", "admin", "superadmin"} {
		role, err := ParseRole(name)
		require.NoError(t, err)
		assert.Equal(t, name, role.String())
	}
}

func TestParseRoleRejectsUnknown(t *testing.T) {
	for _, name := range []string{"", "root", "Admin", "SUPERADMIN", "users"} {
		_, err := ParseRole(name)
		assert.Error(t, err, "role %q should not parse", name)
		assert.False(t, IsValidRole(name))
	}
}

func TestRoleJSON(t *testing.T) {
	out, err := json.Marshal(RoleAdmin)
	require.NoError(t, err)
	assert.Equal(t, `"admin"`, string(out))

	var r Role
	require.NoError(t, json.Unmarshal([]byte(`"superadmin"`), &r))
	assert.Equal(t, RoleSuperAdmin, r)

	assert.Error(t, json.Unmarshal([]byte(`"owner"`), &r))
	assert.Error(t, json.Unmarshal([]byte(`42`), &r))
}

func TestDominatesIsStrict(t *testing.T) {
	all := []Role{RoleUser, RoleAdmin, RoleSuperAdmin}
	for _, r := range all {
		assert.False(t, Dominates(r, r), "%s must not dominate itself", r)
	}
	assert.True(t, Dominates(RoleSuperAdmin, RoleAdmin))
	assert.True(t, Dominates(RoleSuperAdmin, RoleUser))
	assert.True(t, Dominates(RoleAdmin, RoleUser))
	assert.False(t, Dominates(RoleUser, RoleAdmin))
	assert.False(t, Dominates(RoleAdmin, RoleSuperAdmin))
}

func TestLowerRoles(t *testing.T) {
	assert.Equal(t, []Role{RoleAdmin, RoleUser}, LowerRoles(RoleSuperAdmin))
	assert.Equal(t, []Role{RoleUser}, LowerRoles(RoleAdmin))
	assert.Empty(t, LowerRoles(RoleUser))
}

// LowerRoles must agree with Dominates for every pair.
func TestLowerRolesMatchesDominates(t *testing.T) {
	all := []Role{RoleUser, RoleAdmin, RoleSuperAdmin}
	for _, a := range all {
		for _, b := range all {
			assert.Equal(t, Dominates(a, b), RoleAmong(b, LowerRoles(a)),
				"%s vs %s", a, b)
		}
	}
}

func TestParseStatus(t *testing.T) {
	for _, name := range []string{"enabled", "disabled"} {
		status, err := ParseStatus(name)
		require.NoError(t, err)
		assert.Equal(t, Status(name), status)
	}
	_, err := ParseStatus("suspended")
	assert.Error(t, err)
	assert.False(t, IsValidStatus("active"))
}

func TestHierarchicallyAllowed(t *testing.T) {
	admin := Actor{ID: 10, Role: RoleAdmin}

	assert.True(t, HierarchicallyAllowed(admin, Principal{ID: 20, Role: RoleUser}))
	assert.True(t, HierarchicallyAllowed(admin, Principal{ID: 10, Role: RoleAdmin}), "self always passes")
	assert.False(t, HierarchicallyAllowed(admin, Principal{ID: 11, Role: RoleAdmin}), "peers do not")
	assert.False(t, HierarchicallyAllowed(admin, Principal{ID: 1, Role: RoleSuperAdmin}))
}
