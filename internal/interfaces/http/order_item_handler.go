package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/tienda-backoffice/internal/application/authz"
	"github.com/jhoicas/tienda-backoffice/internal/application/dto"
	"github.com/jhoicas/tienda-backoffice/internal/application/ordering"
	"github.com/jhoicas/tienda-backoffice/internal/domain/rbac"
	"github.com/jhoicas/tienda-backoffice/pkg/logger"
)

// OrderItemHandler maneja los ítems de pedido por ID.
type OrderItemHandler struct {
	uc     *ordering.OrderUseCase
	engine *ordering.Engine
	gate   *authz.Gate
	log    *logger.Logger
}

// NewOrderItemHandler construye el handler.
func NewOrderItemHandler(uc *ordering.OrderUseCase, engine *ordering.Engine, gate *authz.Gate, log *logger.Logger) *OrderItemHandler {
	return &OrderItemHandler{uc: uc, engine: engine, gate: gate, log: log}
}

// List godoc
// @Summary      Listar ítems (customers solo ven los de sus pedidos)
// @Tags         order-items
// @Security     Bearer
// @Produce      json
// @Param        limit   query  int  false  "Límite"  default(20)
// @Param        offset  query  int  false  "Offset"  default(0)
// @Success      200     {object}  dto.OrderItemListResponse
// @Router       /api/order-items [get]
func (h *OrderItemHandler) List(c *fiber.Ctx) error {
	owner := h.gate.Scope(GetSubject(c), rbac.ResourceOrderItem)
	out, err := h.uc.ListAllItems(c.UserContext(), owner, pageFromQuery(c))
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(out)
}

// GetByID godoc
// @Summary      Obtener ítem
// @Tags         order-items
// @Security     Bearer
// @Produce      json
// @Param        id   path  string  true  "ID del ítem"
// @Success      200  {object}  dto.OrderItemResponse
// @Failure      403  {object}  dto.ErrorResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/order-items/{id} [get]
func (h *OrderItemHandler) GetByID(c *fiber.Ctx) error {
	id, d, err := authorizeInstance(c, h.gate, rbac.ResourceOrderItem, rbac.ActionView)
	if err != nil {
		return writeError(c, h.log, err)
	}
	out, err := h.uc.GetItem(c.UserContext(), id)
	if err != nil {
		return writeError(c, h.log, hideMissing(d, err))
	}
	return c.JSON(out)
}

// Update godoc
// @Summary      Actualizar ítem
// @Description  quantity mueve stock y recalcula price; price explícito se guarda después sin mover stock.
// @Tags         order-items
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path  string  true  "ID del ítem"
// @Param        body  body  dto.UpdateOrderItemRequest  true  "Campos a actualizar"
// @Success      302   {object}  dto.OrderItemResponse
// @Failure      400   {object}  dto.ErrorResponse  "validación o stock insuficiente"
// @Failure      403   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Router       /api/order-items/{id} [put]
func (h *OrderItemHandler) Update(c *fiber.Ctx) error {
	id, d, err := authorizeInstance(c, h.gate, rbac.ResourceOrderItem, rbac.ActionChange)
	if err != nil {
		return writeError(c, h.log, err)
	}
	var in dto.UpdateOrderItemRequest
	if err := parseBody(c, &in); err != nil {
		return writeError(c, h.log, err)
	}
	item, err := h.engine.UpdateOrderItem(c.UserContext(), id, ordering.UpdateOrderItemInput{
		Quantity: in.Quantity,
		Price:    in.Price,
		ActorID:  GetUserID(c),
	})
	if err != nil {
		return writeError(c, h.log, hideMissing(d, err))
	}
	return redirectTo(c, orderItemsPath, ordering.ToOrderItemResponse(item, h.engine.PricePlaces()))
}

// Delete godoc
// @Summary      Eliminar ítem (devuelve el stock)
// @Tags         order-items
// @Security     Bearer
// @Produce      json
// @Param        id   path  string  true  "ID del ítem"
// @Success      302  {object}  dto.DeletedResponse
// @Failure      403  {object}  dto.ErrorResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/order-items/{id} [delete]
func (h *OrderItemHandler) Delete(c *fiber.Ctx) error {
	id, d, err := authorizeInstance(c, h.gate, rbac.ResourceOrderItem, rbac.ActionDelete)
	if err != nil {
		return writeError(c, h.log, err)
	}
	if err := h.engine.DeleteOrderItem(c.UserContext(), id, GetUserID(c)); err != nil {
		return writeError(c, h.log, hideMissing(d, err))
	}
	return redirectTo(c, orderItemsPath, dto.DeletedResponse{ID: id, Deleted: true})
}
