package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/tienda-backoffice/internal/application/authz"
	"github.com/jhoicas/tienda-backoffice/internal/domain"
	"github.com/jhoicas/tienda-backoffice/internal/domain/rbac"
)

// authorizeInstance aplica el gate sobre la instancia :id y valida su formato.
// Con acceso limitado a lo propio, un id inexistente o mal formado se presenta como denegación.
func authorizeInstance(c *fiber.Ctx, gate *authz.Gate, res rbac.Resource, act rbac.Action) (string, authz.Decision, error) {
	id := c.Params("id")
	d := gate.Authorize(c.UserContext(), GetSubject(c), res, act, id)
	if !d.Allowed {
		return id, d, d.Err()
	}
	if _, err := pathID(c, "id"); err != nil {
		return id, d, hideMissing(d, err)
	}
	return id, d, nil
}

// authorizeChild aplica el gate a una acción sobre res dentro del padre :id.
func authorizeChild(c *fiber.Ctx, gate *authz.Gate, res rbac.Resource, act rbac.Action, parent rbac.Resource) (string, authz.Decision, error) {
	id := c.Params("id")
	d := gate.AuthorizeChild(c.UserContext(), GetSubject(c), res, act, parent, id)
	if !d.Allowed {
		return id, d, d.Err()
	}
	if _, err := pathID(c, "id"); err != nil {
		return id, d, hideMissing(d, domain.ErrNotFound)
	}
	return id, d, nil
}
