// Package authz implementa el gate de autorización: permiso estático por rol más
// verificación de dueño para los roles que la exigen.
package authz

import (
	"context"
	"errors"

	"github.com/jhoicas/tienda-backoffice/internal/domain"
	"github.com/jhoicas/tienda-backoffice/internal/domain/rbac"
	"github.com/jhoicas/tienda-backoffice/internal/domain/validation"
	"github.com/jhoicas/tienda-backoffice/pkg/logger"
)

// Subject usuario autenticado que solicita la operación.
type Subject struct {
	UserID string
	Roles  []rbac.Role
}

// NewSubject construye el sujeto desde los nombres de rol del token.
func NewSubject(userID string, roles []string) Subject {
	return Subject{UserID: userID, Roles: rbac.RolesFromStrings(roles)}
}

// DenyReason motivo de una denegación.
type DenyReason int

const (
	ReasonNone DenyReason = iota
	ReasonNoPermission
	ReasonNotOwner
)

func (r DenyReason) String() string {
	switch r {
	case ReasonNoPermission:
		return "no_permission"
	case ReasonNotOwner:
		return "not_owner"
	default:
		return "none"
	}
}

// Decision resultado de Authorize. Scoped indica que el acceso está restringido a instancias propias.
type Decision struct {
	Allowed bool
	Reason  DenyReason
	Scoped  bool
}

// Err traduce la decisión a un error de dominio (nil si se permite).
// NoPermission y NotOwner se distinguen aquí; la capa HTTP los presenta igual.
func (d Decision) Err() error {
	switch {
	case d.Allowed:
		return nil
	case d.Reason == ReasonNotOwner:
		return domain.ErrNotOwner
	default:
		return domain.ErrForbidden
	}
}

// OwnerResolver resuelve el usuario dueño de una instancia.
// Devuelve domain.ErrNotFound si la instancia no existe.
type OwnerResolver interface {
	ResolveOwner(ctx context.Context, id string) (string, error)
}

// OwnerResolverFunc adapta una función a OwnerResolver.
type OwnerResolverFunc func(ctx context.Context, id string) (string, error)

// ResolveOwner implementa OwnerResolver.
func (f OwnerResolverFunc) ResolveOwner(ctx context.Context, id string) (string, error) {
	return f(ctx, id)
}

// Gate aplica la tabla de permisos y los resolvers de dueño registrados por recurso.
type Gate struct {
	registry  *rbac.Registry
	resolvers map[rbac.Resource]OwnerResolver
	log       *logger.Logger
}

// NewGate construye el gate con el registro inmutable de permisos.
func NewGate(registry *rbac.Registry, log *logger.Logger) *Gate {
	if log == nil {
		log = logger.Nop()
	}
	return &Gate{registry: registry, resolvers: map[rbac.Resource]OwnerResolver{}, log: log}
}

// RegisterResolver asocia un resolver de dueño a un tipo de recurso. Se llama solo al arrancar.
func (g *Gate) RegisterResolver(res rbac.Resource, r OwnerResolver) {
	g.resolvers[res] = r
}

// Registry devuelve la tabla de permisos.
func (g *Gate) Registry() *rbac.Registry { return g.registry }

// Authorize decide si sub puede ejecutar act sobre la instancia id de res.
// id vacío significa una acción de colección (listar, crear).
// Una instancia inexistente, un id mal formado o un fallo al resolver el dueño
// se tratan como NotOwner cuando la verificación de dueño aplica.
func (g *Gate) Authorize(ctx context.Context, sub Subject, res rbac.Resource, act rbac.Action, id string) Decision {
	if !g.registry.HasPermission(sub.Roles, res, act) {
		return g.deny(sub, res, act, id, ReasonNoPermission)
	}
	if !g.registry.RequiresOwnership(sub.Roles, res, act) {
		return Decision{Allowed: true}
	}
	if id == "" {
		return Decision{Allowed: true, Scoped: true}
	}
	if !g.owns(ctx, sub, res, id) {
		return g.deny(sub, res, act, id, ReasonNotOwner)
	}
	return Decision{Allowed: true, Scoped: true}
}

// AuthorizeChild decide sobre una acción en res cuya instancia cuelga de parentRes/parentID
// (ej. agregar un ítem a un pedido): permiso estático sobre res y, si aplica, dueño del padre.
func (g *Gate) AuthorizeChild(ctx context.Context, sub Subject, res rbac.Resource, act rbac.Action, parentRes rbac.Resource, parentID string) Decision {
	if !g.registry.HasPermission(sub.Roles, res, act) {
		return g.deny(sub, res, act, parentID, ReasonNoPermission)
	}
	if !g.registry.RequiresOwnership(sub.Roles, res, act) {
		return Decision{Allowed: true}
	}
	if !g.owns(ctx, sub, parentRes, parentID) {
		return g.deny(sub, res, act, parentID, ReasonNotOwner)
	}
	return Decision{Allowed: true, Scoped: true}
}

// Scope devuelve el filtro de dueño para listados: el UserID si el sujeto solo ve lo propio, "" si ve todo.
func (g *Gate) Scope(sub Subject, res rbac.Resource) string {
	if g.registry.RequiresOwnership(sub.Roles, res, rbac.ActionView) {
		return sub.UserID
	}
	return ""
}

// FieldsAllowed verifica que todos los campos pedidos estén permitidos para la acción.
func (g *Gate) FieldsAllowed(sub Subject, res rbac.Resource, act rbac.Action, requested []string) bool {
	allowed, all := g.registry.AllowedFields(sub.Roles, res, act)
	if all {
		return true
	}
	set := make(map[string]bool, len(allowed))
	for _, f := range allowed {
		set[f] = true
	}
	for _, f := range requested {
		if !set[f] {
			return false
		}
	}
	return true
}

func (g *Gate) owns(ctx context.Context, sub Subject, res rbac.Resource, id string) bool {
	if sub.UserID == "" {
		return false
	}
	if !validation.IsID(id) {
		return false
	}
	resolver, ok := g.resolvers[res]
	if !ok {
		g.log.Error().Str("resource", string(res)).Msg("authz: recurso sin resolver de dueño")
		return false
	}
	owner, err := resolver.ResolveOwner(ctx, id)
	if err != nil {
		if !errors.Is(err, domain.ErrNotFound) {
			g.log.Error().Err(err).Str("resource", string(res)).Str("id", id).Msg("authz: resolver dueño")
		}
		return false
	}
	return owner != "" && owner == sub.UserID
}

func (g *Gate) deny(sub Subject, res rbac.Resource, act rbac.Action, id string, reason DenyReason) Decision {
	g.log.Warn().
		Str("user_id", sub.UserID).
		Str("resource", string(res)).
		Str("action", string(act)).
		Str("id", id).
		Str("reason", reason.String()).
		Msg("permiso denegado")
	return Decision{Allowed: false, Reason: reason}
}
