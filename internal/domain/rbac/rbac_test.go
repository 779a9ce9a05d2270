package rbac_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/tienda-backoffice/internal/domain/rbac"
)

// expected codifica la tabla de permisos: recurso -> acciones concedidas por rol.
var expected = map[rbac.Role]map[rbac.Resource][]rbac.Action{
	rbac.RoleCustomers: {
		rbac.ResourceProduct:   {rbac.ActionView},
		rbac.ResourceCategory:  {rbac.ActionView},
		rbac.ResourceOrder:     {rbac.ActionAdd, rbac.ActionView, rbac.ActionChange, rbac.ActionDelete},
		rbac.ResourceOrderItem: {rbac.ActionAdd, rbac.ActionView, rbac.ActionChange, rbac.ActionDelete},
	},
	rbac.RoleStaff: {
		rbac.ResourceProduct:   {rbac.ActionAdd, rbac.ActionView, rbac.ActionChange, rbac.ActionDelete},
		rbac.ResourceCategory:  {rbac.ActionAdd, rbac.ActionView, rbac.ActionChange, rbac.ActionDelete},
		rbac.ResourceOrder:     {rbac.ActionView},
		rbac.ResourceOrderItem: {rbac.ActionView},
		rbac.ResourceUser:      {rbac.ActionAdd, rbac.ActionView, rbac.ActionChange, rbac.ActionDelete},
	},
	rbac.RoleStockPersonnel: {
		rbac.ResourceProduct:  {rbac.ActionView, rbac.ActionChange},
		rbac.ResourceCategory: {rbac.ActionView},
	},
	rbac.RoleShiftManager: {
		rbac.ResourceProduct:   {rbac.ActionAdd, rbac.ActionView, rbac.ActionChange, rbac.ActionDelete},
		rbac.ResourceCategory:  {rbac.ActionAdd, rbac.ActionView, rbac.ActionChange, rbac.ActionDelete},
		rbac.ResourceOrder:     {rbac.ActionAdd, rbac.ActionView, rbac.ActionChange, rbac.ActionDelete},
		rbac.ResourceOrderItem: {rbac.ActionAdd, rbac.ActionView, rbac.ActionChange, rbac.ActionDelete},
		rbac.ResourceUser:      {rbac.ActionAdd, rbac.ActionView, rbac.ActionChange, rbac.ActionDelete},
	},
}

func contains(actions []rbac.Action, a rbac.Action) bool {
	for _, x := range actions {
		if x == a {
			return true
		}
	}
	return false
}

func TestHasPermission_TablaCompleta(t *testing.T) {
	reg := rbac.MustDefault()
	for _, role := range rbac.AllRoles {
		for _, res := range rbac.AllResources {
			for _, act := range rbac.AllActions {
				want := contains(expected[role][res], act)
				got := reg.HasPermission([]rbac.Role{role}, res, act)
				assert.Equal(t, want, got, "%s %s %s", role, res, act)
			}
		}
	}
}

func TestHasPermission_UnionDeRoles(t *testing.T) {
	reg := rbac.MustDefault()
	roles := []rbac.Role{rbac.RoleCustomers, rbac.RoleStockPersonnel}

	assert.True(t, reg.HasPermission(roles, rbac.ResourceProduct, rbac.ActionChange))
	assert.True(t, reg.HasPermission(roles, rbac.ResourceOrder, rbac.ActionAdd))
	assert.False(t, reg.HasPermission(roles, rbac.ResourceUser, rbac.ActionView))
}

func TestHasPermission_SinRolesNiegaTodo(t *testing.T) {
	reg := rbac.MustDefault()
	assert.False(t, reg.HasPermission(nil, rbac.ResourceProduct, rbac.ActionView))
	assert.False(t, reg.HasPermission([]rbac.Role{"desconocido"}, rbac.ResourceProduct, rbac.ActionView))
}

func TestRequiresOwnership(t *testing.T) {
	reg := rbac.MustDefault()

	assert.True(t, reg.RequiresOwnership([]rbac.Role{rbac.RoleCustomers}, rbac.ResourceOrder, rbac.ActionView))
	assert.True(t, reg.RequiresOwnership([]rbac.Role{rbac.RoleCustomers}, rbac.ResourceOrderItem, rbac.ActionDelete))
	assert.False(t, reg.RequiresOwnership([]rbac.Role{rbac.RoleCustomers}, rbac.ResourceProduct, rbac.ActionView))
	assert.False(t, reg.RequiresOwnership([]rbac.Role{rbac.RoleShiftManager}, rbac.ResourceOrder, rbac.ActionView))

	// Un permiso amplio de otro rol prevalece sobre el de solo-dueño.
	assert.False(t, reg.RequiresOwnership([]rbac.Role{rbac.RoleCustomers, rbac.RoleStaff}, rbac.ResourceOrder, rbac.ActionView))
	// Staff no concede "change" de pedidos: solo queda el de customers.
	assert.True(t, reg.RequiresOwnership([]rbac.Role{rbac.RoleCustomers, rbac.RoleStaff}, rbac.ResourceOrder, rbac.ActionChange))
}

func TestAllowedFields(t *testing.T) {
	reg := rbac.MustDefault()

	fields, all := reg.AllowedFields([]rbac.Role{rbac.RoleStockPersonnel}, rbac.ResourceProduct, rbac.ActionChange)
	assert.False(t, all)
	assert.Equal(t, []string{"stock"}, fields)

	_, all = reg.AllowedFields([]rbac.Role{rbac.RoleStockPersonnel, rbac.RoleStaff}, rbac.ResourceProduct, rbac.ActionChange)
	assert.True(t, all)

	_, all = reg.AllowedFields([]rbac.Role{rbac.RoleShiftManager}, rbac.ResourceProduct, rbac.ActionChange)
	assert.True(t, all)
}

func TestShiftManager_EsUnionDeCustomersYStaff(t *testing.T) {
	reg := rbac.MustDefault()
	union := []rbac.Role{rbac.RoleCustomers, rbac.RoleStaff}
	for _, res := range rbac.AllResources {
		for _, act := range rbac.AllActions {
			assert.Equal(t,
				reg.HasPermission(union, res, act),
				reg.HasPermission([]rbac.Role{rbac.RoleShiftManager}, res, act),
				"%s %s", res, act)
		}
	}
}

func TestNewRegistryFromGrants_RoundTrip(t *testing.T) {
	reg := rbac.MustDefault()
	rebuilt, err := rbac.NewRegistryFromGrants(reg.Grants())
	require.NoError(t, err)
	assert.Equal(t, reg.Grants(), rebuilt.Grants())
}

func TestNewRegistry_Errores(t *testing.T) {
	_, err := rbac.NewRegistry([]rbac.RoleDefinition{{Role: "admin"}})
	assert.Error(t, err, "rol desconocido")

	_, err = rbac.NewRegistry([]rbac.RoleDefinition{
		{Role: rbac.RoleStaff, Inherits: []rbac.Role{rbac.RoleShiftManager}},
		{Role: rbac.RoleShiftManager, Inherits: []rbac.Role{rbac.RoleStaff}},
	})
	assert.Error(t, err, "herencia cíclica")

	_, err = rbac.NewRegistry([]rbac.RoleDefinition{
		{Role: rbac.RoleShiftManager, Inherits: []rbac.Role{rbac.RoleStaff}},
	})
	assert.Error(t, err, "hereda de rol no definido")
}

func TestRolesFromStrings_DescartaDesconocidos(t *testing.T) {
	got := rbac.RolesFromStrings([]string{"staff", "root", "customers"})
	assert.Equal(t, []rbac.Role{rbac.RoleStaff, rbac.RoleCustomers}, got)
}
