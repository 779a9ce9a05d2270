// Package rbac define los roles del back office y la tabla declarativa de permisos.
//
// La tabla se carga una vez al arrancar y se comparte por referencia; un Registry
// no se modifica después de construido.
package rbac

import (
	"fmt"
	"sort"
)

// Role nombre de grupo.
type Role string

// Roles conocidos.
const (
	RoleCustomers      Role = "customers"
	RoleStaff          Role = "staff"
	RoleStockPersonnel Role = "stock_personnel"
	RoleShiftManager   Role = "shift_manager"
)

// Resource tipo de recurso protegido.
type Resource string

// Recursos protegidos.
const (
	ResourceProduct   Resource = "product"
	ResourceCategory  Resource = "category"
	ResourceOrder     Resource = "order"
	ResourceOrderItem Resource = "orderitem"
	ResourceUser      Resource = "user"
)

// Action acción sobre un recurso.
type Action string

// Acciones.
const (
	ActionView   Action = "view"
	ActionAdd    Action = "add"
	ActionChange Action = "change"
	ActionDelete Action = "delete"
)

// AllRoles, AllResources y AllActions enumeran los valores válidos.
var (
	AllRoles     = []Role{RoleCustomers, RoleStaff, RoleStockPersonnel, RoleShiftManager}
	AllResources = []Resource{ResourceProduct, ResourceCategory, ResourceOrder, ResourceOrderItem, ResourceUser}
	AllActions   = []Action{ActionView, ActionAdd, ActionChange, ActionDelete}
)

// ParseRole valida un nombre de rol.
func ParseRole(s string) (Role, bool) {
	for _, r := range AllRoles {
		if string(r) == s {
			return r, true
		}
	}
	return "", false
}

// ParseResource valida un nombre de recurso.
func ParseResource(s string) (Resource, bool) {
	for _, r := range AllResources {
		if string(r) == s {
			return r, true
		}
	}
	return "", false
}

// ParseAction valida un nombre de acción.
func ParseAction(s string) (Action, bool) {
	for _, a := range AllActions {
		if string(a) == s {
			return a, true
		}
	}
	return "", false
}

// Grant tripleta (rol, recurso, acción).
// OwnOnly exige que el solicitante sea dueño de la instancia; Fields limita los campos modificables.
type Grant struct {
	Role     Role
	Resource Resource
	Action   Action
	OwnOnly  bool
	Fields   []string
}

// RoleDefinition definición declarativa de un rol.
// Inherits agrega los permisos de otros roles sin heredar OwnOnly ni FieldLimits.
type RoleDefinition struct {
	Role        Role
	Grants      map[Resource][]Action
	OwnOnly     []Resource
	FieldLimits map[Resource][]string // aplica a ActionChange
	Inherits    []Role
}

// DefaultRoleTable tabla de permisos del back office.
func DefaultRoleTable() []RoleDefinition {
	crud := []Action{ActionAdd, ActionView, ActionChange, ActionDelete}
	return []RoleDefinition{
		{
			Role: RoleCustomers,
			Grants: map[Resource][]Action{
				ResourceProduct:   {ActionView},
				ResourceCategory:  {ActionView},
				ResourceOrder:     crud,
				ResourceOrderItem: crud,
			},
			OwnOnly: []Resource{ResourceOrder, ResourceOrderItem},
		},
		{
			Role: RoleStaff,
			Grants: map[Resource][]Action{
				ResourceProduct:   crud,
				ResourceCategory:  crud,
				ResourceOrder:     {ActionView},
				ResourceOrderItem: {ActionView},
				ResourceUser:      crud,
			},
		},
		{
			Role: RoleStockPersonnel,
			Grants: map[Resource][]Action{
				ResourceProduct:  {ActionView, ActionChange},
				ResourceCategory: {ActionView},
			},
			FieldLimits: map[Resource][]string{
				ResourceProduct: {"stock"},
			},
		},
		{
			Role:     RoleShiftManager,
			Inherits: []Role{RoleCustomers, RoleStaff},
		},
	}
}

type grantKey struct {
	role     Role
	resource Resource
	action   Action
}

type grantValue struct {
	ownOnly bool
	fields  []string // nil = todos los campos
}

// Registry tabla de permisos resuelta. Seguro para uso concurrente (solo lectura).
type Registry struct {
	grants map[grantKey]grantValue
}

// NewRegistry resuelve herencias y construye el registro.
// Devuelve error si un rol hereda de un rol desconocido o si hay ciclos.
func NewRegistry(defs []RoleDefinition) (*Registry, error) {
	byRole := make(map[Role]RoleDefinition, len(defs))
	for _, d := range defs {
		if _, ok := ParseRole(string(d.Role)); !ok {
			return nil, fmt.Errorf("rbac: rol desconocido %q", d.Role)
		}
		if _, dup := byRole[d.Role]; dup {
			return nil, fmt.Errorf("rbac: rol %q definido dos veces", d.Role)
		}
		byRole[d.Role] = d
	}

	reg := &Registry{grants: make(map[grantKey]grantValue)}
	for _, d := range defs {
		if err := reg.addOwn(d); err != nil {
			return nil, err
		}
	}
	for _, d := range defs {
		inherited, err := collectInherited(byRole, d.Role, map[Role]bool{})
		if err != nil {
			return nil, err
		}
		for _, parent := range inherited {
			for res, actions := range byRole[parent].Grants {
				for _, act := range actions {
					k := grantKey{d.Role, res, act}
					// lo heredado se concede sin restricción de dueño ni de campos
					reg.grants[k] = grantValue{}
				}
			}
		}
	}
	return reg, nil
}

func (r *Registry) addOwn(d RoleDefinition) error {
	own := make(map[Resource]bool, len(d.OwnOnly))
	for _, res := range d.OwnOnly {
		own[res] = true
	}
	for res, actions := range d.Grants {
		if _, ok := ParseResource(string(res)); !ok {
			return fmt.Errorf("rbac: recurso desconocido %q en rol %q", res, d.Role)
		}
		for _, act := range actions {
			if _, ok := ParseAction(string(act)); !ok {
				return fmt.Errorf("rbac: acción desconocida %q en rol %q", act, d.Role)
			}
			v := grantValue{ownOnly: own[res]}
			if act == ActionChange {
				if fields, ok := d.FieldLimits[res]; ok {
					v.fields = append([]string(nil), fields...)
				}
			}
			r.grants[grantKey{d.Role, res, act}] = v
		}
	}
	return nil
}

func collectInherited(byRole map[Role]RoleDefinition, role Role, visiting map[Role]bool) ([]Role, error) {
	if visiting[role] {
		return nil, fmt.Errorf("rbac: herencia cíclica en %q", role)
	}
	visiting[role] = true
	defer delete(visiting, role)

	var out []Role
	for _, parent := range byRole[role].Inherits {
		if _, ok := byRole[parent]; !ok {
			return nil, fmt.Errorf("rbac: %q hereda de rol no definido %q", role, parent)
		}
		out = append(out, parent)
		more, err := collectInherited(byRole, parent, visiting)
		if err != nil {
			return nil, err
		}
		out = append(out, more...)
	}
	return out, nil
}

// NewRegistryFromGrants reconstruye el registro a partir de filas persistidas (role_permissions).
func NewRegistryFromGrants(grants []Grant) (*Registry, error) {
	reg := &Registry{grants: make(map[grantKey]grantValue, len(grants))}
	for _, g := range grants {
		if _, ok := ParseRole(string(g.Role)); !ok {
			return nil, fmt.Errorf("rbac: rol desconocido %q", g.Role)
		}
		if _, ok := ParseResource(string(g.Resource)); !ok {
			return nil, fmt.Errorf("rbac: recurso desconocido %q", g.Resource)
		}
		if _, ok := ParseAction(string(g.Action)); !ok {
			return nil, fmt.Errorf("rbac: acción desconocida %q", g.Action)
		}
		v := grantValue{ownOnly: g.OwnOnly}
		if len(g.Fields) > 0 {
			v.fields = append([]string(nil), g.Fields...)
		}
		reg.grants[grantKey{g.Role, g.Resource, g.Action}] = v
	}
	return reg, nil
}

// MustDefault construye el registro con DefaultRoleTable; la tabla por defecto siempre es válida.
func MustDefault() *Registry {
	reg, err := NewRegistry(DefaultRoleTable())
	if err != nil {
		panic(err)
	}
	return reg
}

// HasPermission indica si alguno de los roles concede la acción sobre el recurso.
// Roles desconocidos no conceden nada.
func (r *Registry) HasPermission(roles []Role, res Resource, act Action) bool {
	for _, role := range roles {
		if _, ok := r.grants[grantKey{role, res, act}]; ok {
			return true
		}
	}
	return false
}

// RequiresOwnership es verdadero cuando todos los roles que conceden el permiso son de solo-dueño.
// Si ningún rol lo concede devuelve false (HasPermission ya lo niega).
func (r *Registry) RequiresOwnership(roles []Role, res Resource, act Action) bool {
	granted := false
	for _, role := range roles {
		v, ok := r.grants[grantKey{role, res, act}]
		if !ok {
			continue
		}
		if !v.ownOnly {
			return false
		}
		granted = true
	}
	return granted
}

// AllowedFields devuelve los campos modificables. all=true si algún rol concede sin límite.
func (r *Registry) AllowedFields(roles []Role, res Resource, act Action) (fields []string, all bool) {
	seen := map[string]bool{}
	for _, role := range roles {
		v, ok := r.grants[grantKey{role, res, act}]
		if !ok {
			continue
		}
		if v.fields == nil {
			return nil, true
		}
		for _, f := range v.fields {
			if !seen[f] {
				seen[f] = true
				fields = append(fields, f)
			}
		}
	}
	sort.Strings(fields)
	return fields, false
}

// Grants devuelve la tabla aplanada y ordenada (rol, recurso, acción).
func (r *Registry) Grants() []Grant {
	out := make([]Grant, 0, len(r.grants))
	for k, v := range r.grants {
		out = append(out, Grant{
			Role:     k.role,
			Resource: k.resource,
			Action:   k.action,
			OwnOnly:  v.ownOnly,
			Fields:   append([]string(nil), v.fields...),
		})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Role != out[j].Role {
			return out[i].Role < out[j].Role
		}
		if out[i].Resource != out[j].Resource {
			return out[i].Resource < out[j].Resource
		}
		return out[i].Action < out[j].Action
	})
	return out
}

// RolesFromStrings convierte nombres a Role descartando los desconocidos.
func RolesFromStrings(names []string) []Role {
	out := make([]Role, 0, len(names))
	for _, n := range names {
		if r, ok := ParseRole(n); ok {
			out = append(out, r)
		}
	}
	return out
}
