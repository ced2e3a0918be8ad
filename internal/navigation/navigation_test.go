package navigation

import (
	"testing"

	"umuhinzilink/internal/domain/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMenuFor(t *testing.T) {
	menu := MenuFor(model.RoleFarmer)
	require.NotEmpty(t, menu)
	assert.Equal(t, "/dashboard/farmer", menu[0].Path)
	assert.Equal(t, "My Produce", menu[1].Label)
	assert.Equal(t, "/dashboard/farmer/products", menu[1].Path)

	for _, it := range menu {
		assert.NotEqual(t, SectionUsers, it.Section)
	}

	gov := MenuFor(model.RoleGovernment)
	var sections []Section
	for _, it := range gov {
		sections = append(sections, it.Section)
	}
	assert.Contains(t, sections, SectionReports)
	assert.NotContains(t, sections, SectionMessages)
	assert.NotContains(t, sections, SectionSuppliers)

	assert.Empty(t, MenuFor("PIRATE"))
}

func TestRolesFor(t *testing.T) {
	assert.Equal(t, []model.Role{model.RoleAdmin}, RolesFor(SectionUsers))
	assert.Nil(t, RolesFor("nope"))
	assert.True(t, Allowed(model.RoleBuyer, SectionOrders))
	assert.False(t, Allowed(model.RoleBuyer, SectionAudit))
}

func TestResolve_LegacyDuplicates(t *testing.T) {
	for _, p := range []string{"/admin/orders", "/dashboard/admin/orders", "/adminorders", "/AdminOrders/"} {
		role, it, ok := Resolve(p)
		require.True(t, ok, p)
		assert.Equal(t, model.RoleAdmin, role)
		assert.Equal(t, "/dashboard/admin/orders", it.Path)
	}

	role, it, ok := Resolve("/dashboard/admin")
	require.True(t, ok)
	assert.Equal(t, model.RoleAdmin, role)
	assert.Equal(t, SectionDashboard, it.Section)

	_, _, ok = Resolve("/buyer/users")
	assert.False(t, ok)
	_, _, ok = Resolve("/shop/cart")
	assert.False(t, ok)
	_, _, ok = Resolve("/")
	assert.False(t, ok)
}
