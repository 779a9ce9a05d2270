package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/tienda-backoffice/internal/application/authz"
	"github.com/jhoicas/tienda-backoffice/internal/application/dto"
	"github.com/jhoicas/tienda-backoffice/internal/application/ordering"
	"github.com/jhoicas/tienda-backoffice/internal/domain/rbac"
	"github.com/jhoicas/tienda-backoffice/pkg/logger"
)

// OrderHandler maneja pedidos y la creación de ítems dentro de un pedido.
type OrderHandler struct {
	uc     *ordering.OrderUseCase
	engine *ordering.Engine
	docs   *ordering.DocumentUseCase
	gate   *authz.Gate
	log    *logger.Logger
}

// NewOrderHandler construye el handler.
func NewOrderHandler(
	uc *ordering.OrderUseCase,
	engine *ordering.Engine,
	docs *ordering.DocumentUseCase,
	gate *authz.Gate,
	log *logger.Logger,
) *OrderHandler {
	return &OrderHandler{uc: uc, engine: engine, docs: docs, gate: gate, log: log}
}

// Create godoc
// @Summary      Crear pedido (el dueño es el solicitante)
// @Tags         orders
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.CreateOrderRequest  false  "is_paid opcional"
// @Success      302   {object}  dto.OrderResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      403   {object}  dto.ErrorResponse
// @Router       /api/orders [post]
func (h *OrderHandler) Create(c *fiber.Ctx) error {
	var in dto.CreateOrderRequest
	if len(c.Body()) > 0 {
		if err := parseBody(c, &in); err != nil {
			return writeError(c, h.log, err)
		}
	}
	out, err := h.uc.Create(c.UserContext(), GetUserID(c), in)
	if err != nil {
		return writeError(c, h.log, err)
	}
	return redirectTo(c, ordersPath, out)
}

// List godoc
// @Summary      Listar pedidos (customers solo ven los propios)
// @Tags         orders
// @Security     Bearer
// @Produce      json
// @Param        limit   query  int  false  "Límite"  default(20)
// @Param        offset  query  int  false  "Offset"  default(0)
// @Success      200     {object}  dto.OrderListResponse
// @Router       /api/orders [get]
func (h *OrderHandler) List(c *fiber.Ctx) error {
	owner := h.gate.Scope(GetSubject(c), rbac.ResourceOrder)
	out, err := h.uc.List(c.UserContext(), owner, pageFromQuery(c))
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(out)
}

// GetByID godoc
// @Summary      Obtener pedido con ítems y total
// @Tags         orders
// @Security     Bearer
// @Produce      json
// @Param        id   path  string  true  "ID del pedido"
// @Success      200  {object}  dto.OrderResponse
// @Failure      403  {object}  dto.ErrorResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/orders/{id} [get]
func (h *OrderHandler) GetByID(c *fiber.Ctx) error {
	id, d, err := authorizeInstance(c, h.gate, rbac.ResourceOrder, rbac.ActionView)
	if err != nil {
		return writeError(c, h.log, err)
	}
	out, err := h.uc.Get(c.UserContext(), id)
	if err != nil {
		return writeError(c, h.log, hideMissing(d, err))
	}
	return c.JSON(out)
}

// Update godoc
// @Summary      Cambiar estado de pago
// @Description  is_paid acepta true/false, "True"/"False", 1/0.
// @Tags         orders
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path  string  true  "ID del pedido"
// @Param        body  body  dto.UpdateOrderRequest  true  "is_paid"
// @Success      302   {object}  dto.OrderResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      403   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Router       /api/orders/{id} [put]
func (h *OrderHandler) Update(c *fiber.Ctx) error {
	id, d, err := authorizeInstance(c, h.gate, rbac.ResourceOrder, rbac.ActionChange)
	if err != nil {
		return writeError(c, h.log, err)
	}
	var in dto.UpdateOrderRequest
	if err := parseBody(c, &in); err != nil {
		return writeError(c, h.log, err)
	}
	out, err := h.uc.UpdatePaid(c.UserContext(), id, in)
	if err != nil {
		return writeError(c, h.log, hideMissing(d, err))
	}
	return redirectTo(c, ordersPath, out)
}

// Delete godoc
// @Summary      Eliminar pedido (devuelve el stock de todos sus ítems)
// @Tags         orders
// @Security     Bearer
// @Produce      json
// @Param        id   path  string  true  "ID del pedido"
// @Success      302  {object}  dto.DeletedResponse
// @Failure      403  {object}  dto.ErrorResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/orders/{id} [delete]
func (h *OrderHandler) Delete(c *fiber.Ctx) error {
	id, d, err := authorizeInstance(c, h.gate, rbac.ResourceOrder, rbac.ActionDelete)
	if err != nil {
		return writeError(c, h.log, err)
	}
	if err := h.engine.DeleteOrder(c.UserContext(), id, GetUserID(c)); err != nil {
		return writeError(c, h.log, hideMissing(d, err))
	}
	return redirectTo(c, ordersPath, dto.DeletedResponse{ID: id, Deleted: true})
}

// Total godoc
// @Summary      Total del pedido (0 si no tiene ítems)
// @Tags         orders
// @Security     Bearer
// @Produce      json
// @Param        id   path  string  true  "ID del pedido"
// @Success      200  {object}  dto.OrderTotalResponse
// @Failure      403  {object}  dto.ErrorResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/orders/{id}/total [get]
func (h *OrderHandler) Total(c *fiber.Ctx) error {
	id, d, err := authorizeInstance(c, h.gate, rbac.ResourceOrder, rbac.ActionView)
	if err != nil {
		return writeError(c, h.log, err)
	}
	total, err := h.engine.GetTotalPrice(c.UserContext(), id)
	if err != nil {
		return writeError(c, h.log, hideMissing(d, err))
	}
	return c.JSON(dto.OrderTotalResponse{OrderID: id, TotalPrice: dto.NewMoney(total, h.engine.PricePlaces())})
}

// Receipt godoc
// @Summary      Comprobante PDF del pedido
// @Tags         orders
// @Security     Bearer
// @Produce      application/pdf
// @Param        id   path  string  true  "ID del pedido"
// @Success      200  {file}  binary
// @Failure      403  {object}  dto.ErrorResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/orders/{id}/receipt.pdf [get]
func (h *OrderHandler) Receipt(c *fiber.Ctx) error {
	id, d, err := authorizeInstance(c, h.gate, rbac.ResourceOrder, rbac.ActionView)
	if err != nil {
		return writeError(c, h.log, err)
	}
	data, err := h.docs.Receipt(c.UserContext(), id)
	if err != nil {
		return writeError(c, h.log, hideMissing(d, err))
	}
	c.Set(fiber.HeaderContentType, "application/pdf")
	c.Set(fiber.HeaderContentDisposition, `inline; filename="pedido-`+id+`.pdf"`)
	return c.Send(data)
}

// ExportXML godoc
// @Summary      Exportación XML canónica del pedido
// @Description  El header X-Content-Digest lleva el SHA-256 (hex) del cuerpo.
// @Tags         orders
// @Security     Bearer
// @Produce      application/xml
// @Param        id   path  string  true  "ID del pedido"
// @Success      200  {file}  binary
// @Failure      403  {object}  dto.ErrorResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/orders/{id}/export.xml [get]
func (h *OrderHandler) ExportXML(c *fiber.Ctx) error {
	id, d, err := authorizeInstance(c, h.gate, rbac.ResourceOrder, rbac.ActionView)
	if err != nil {
		return writeError(c, h.log, err)
	}
	data, digest, err := h.docs.ExportXML(c.UserContext(), id)
	if err != nil {
		return writeError(c, h.log, hideMissing(d, err))
	}
	c.Set(fiber.HeaderContentType, fiber.MIMEApplicationXMLCharsetUTF8)
	c.Set("X-Content-Digest", "sha-256="+digest)
	return c.Send(data)
}

// Items godoc
// @Summary      Ítems de un pedido
// @Tags         orders
// @Security     Bearer
// @Produce      json
// @Param        id   path  string  true  "ID del pedido"
// @Success      200  {object}  dto.OrderItemListResponse
// @Failure      403  {object}  dto.ErrorResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/orders/{id}/items [get]
func (h *OrderHandler) Items(c *fiber.Ctx) error {
	id, d, err := authorizeChild(c, h.gate, rbac.ResourceOrderItem, rbac.ActionView, rbac.ResourceOrder)
	if err != nil {
		return writeError(c, h.log, err)
	}
	out, err := h.uc.ListItems(c.UserContext(), id)
	if err != nil {
		return writeError(c, h.log, hideMissing(d, err))
	}
	return c.JSON(out)
}

// AddItem godoc
// @Summary      Agregar ítem al pedido (descuenta stock)
// @Tags         orders
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path  string  true  "ID del pedido"
// @Param        body  body  dto.CreateOrderItemRequest  true  "Producto (id o nombre) y cantidad"
// @Success      302   {object}  dto.OrderItemResponse
// @Failure      400   {object}  dto.ErrorResponse  "validación o stock insuficiente"
// @Failure      403   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Router       /api/orders/{id}/items [post]
func (h *OrderHandler) AddItem(c *fiber.Ctx) error {
	id, d, err := authorizeChild(c, h.gate, rbac.ResourceOrderItem, rbac.ActionAdd, rbac.ResourceOrder)
	if err != nil {
		return writeError(c, h.log, err)
	}
	var in dto.CreateOrderItemRequest
	if err := parseBody(c, &in); err != nil {
		return writeError(c, h.log, err)
	}
	item, err := h.engine.CreateOrderItem(c.UserContext(), ordering.CreateOrderItemInput{
		OrderID:     id,
		ProductID:   in.ProductID,
		ProductName: in.ProductName,
		Quantity:    in.Quantity,
		ActorID:     GetUserID(c),
	})
	if err != nil {
		return writeError(c, h.log, hideMissing(d, err))
	}
	return redirectTo(c, orderItemsPath, ordering.ToOrderItemResponse(item, h.engine.PricePlaces()))
}
