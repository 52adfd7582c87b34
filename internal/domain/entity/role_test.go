package entity

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRole_IsValid(t *testing.T) {
	assert.True(t, RoleUser.IsValid())
	assert.True(t, RoleArtist.IsValid())
	assert.True(t, RoleAdmin.IsValid())
	assert.False(t, Role("superuser").IsValid())
	assert.False(t, Role("").IsValid())
}

func TestRoles_Intersects(t *testing.T) {
	roles := Roles{RoleUser, RoleArtist}

	assert.True(t, roles.Intersects(Roles{RoleArtist, RoleAdmin}))
	assert.False(t, roles.Intersects(Roles{RoleAdmin}))
	assert.False(t, roles.Intersects(nil))
}

func TestRolesFromStrings_FiltersUnknown(t *testing.T) {
	roles := RolesFromStrings([]string{"user", "superuser", "admin"})
	assert.Equal(t, Roles{RoleUser, RoleAdmin}, roles)
}

func TestNormalizeEmail(t *testing.T) {
	assert.Equal(t, "alice@example.com", NormalizeEmail("  Alice@Example.COM "))
}
