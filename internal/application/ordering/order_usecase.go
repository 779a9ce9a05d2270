package ordering

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/jhoicas/tienda-backoffice/internal/application/dto"
	"github.com/jhoicas/tienda-backoffice/internal/domain"
	"github.com/jhoicas/tienda-backoffice/internal/domain/entity"
	"github.com/jhoicas/tienda-backoffice/internal/domain/repository"
)

// OrderUseCase casos de uso de pedidos que no mueven stock.
type OrderUseCase struct {
	orderRepo repository.OrderRepository
	itemRepo  repository.OrderItemRepository
	engine    *Engine
	now       func() time.Time
}

// NewOrderUseCase construye el caso de uso.
func NewOrderUseCase(orderRepo repository.OrderRepository, itemRepo repository.OrderItemRepository, engine *Engine) *OrderUseCase {
	return &OrderUseCase{orderRepo: orderRepo, itemRepo: itemRepo, engine: engine, now: time.Now}
}

// Create crea un pedido cuyo dueño es el solicitante.
func (uc *OrderUseCase) Create(ctx context.Context, userID string, in dto.CreateOrderRequest) (*dto.OrderResponse, error) {
	if userID == "" {
		return nil, domain.ErrUnauthorized
	}
	now := uc.now()
	order := &entity.Order{
		ID:        uuid.New().String(),
		UserID:    userID,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if in.IsPaid != nil {
		order.IsPaid = bool(*in.IsPaid)
	}
	if err := uc.orderRepo.Create(ctx, order); err != nil {
		return nil, err
	}
	return ToOrderResponse(order), nil
}

// Get devuelve el pedido con sus ítems y total.
func (uc *OrderUseCase) Get(ctx context.Context, id string) (*dto.OrderResponse, error) {
	order, err := uc.orderRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if order == nil {
		return nil, domain.ErrNotFound
	}
	items, err := uc.itemRepo.ListByOrder(ctx, id)
	if err != nil {
		return nil, err
	}
	total, err := uc.engine.GetTotalPrice(ctx, id)
	if err != nil {
		return nil, err
	}
	out := ToOrderResponse(order)
	out.Items = make([]dto.OrderItemResponse, 0, len(items))
	for _, it := range items {
		out.Items = append(out.Items, *ToOrderItemResponse(it, uc.engine.priceplaces))
	}
	money := dto.NewMoney(total, uc.engine.priceplaces)
	out.TotalPrice = &money
	return out, nil
}

// List lista pedidos; ownerFilter no vacío restringe a los pedidos de ese usuario.
func (uc *OrderUseCase) List(ctx context.Context, ownerFilter string, page dto.PageRequest) (*dto.OrderListResponse, error) {
	page.DefaultPage()
	list, err := uc.orderRepo.List(ctx, repository.OrderFilter{UserID: ownerFilter, Limit: page.Limit, Offset: page.Offset})
	if err != nil {
		return nil, err
	}
	items := make([]dto.OrderResponse, 0, len(list))
	for _, o := range list {
		items = append(items, *ToOrderResponse(o))
	}
	return &dto.OrderListResponse{Items: items, Page: dto.PageResponse{Limit: page.Limit, Offset: page.Offset}}, nil
}

// UpdatePaid cambia el estado de pago. Es el único campo modificable de un pedido.
func (uc *OrderUseCase) UpdatePaid(ctx context.Context, id string, in dto.UpdateOrderRequest) (*dto.OrderResponse, error) {
	if in.IsPaid == nil {
		return nil, domain.NewValidationError("is_paid", "es obligatorio")
	}
	order, err := uc.orderRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if order == nil {
		return nil, domain.ErrNotFound
	}
	order.IsPaid = bool(*in.IsPaid)
	order.UpdatedAt = uc.now()
	if err := uc.orderRepo.Update(ctx, order); err != nil {
		return nil, err
	}
	return ToOrderResponse(order), nil
}

// ListItems lista los ítems de un pedido existente.
func (uc *OrderUseCase) ListItems(ctx context.Context, orderID string) (*dto.OrderItemListResponse, error) {
	order, err := uc.orderRepo.GetByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if order == nil {
		return nil, domain.ErrNotFound
	}
	list, err := uc.itemRepo.ListByOrder(ctx, orderID)
	if err != nil {
		return nil, err
	}
	return uc.toItemList(list, dto.PageResponse{Limit: len(list)}), nil
}

// ListAllItems lista ítems de todos los pedidos visibles para el solicitante.
func (uc *OrderUseCase) ListAllItems(ctx context.Context, ownerFilter string, page dto.PageRequest) (*dto.OrderItemListResponse, error) {
	page.DefaultPage()
	list, err := uc.itemRepo.List(ctx, repository.OrderFilter{UserID: ownerFilter, Limit: page.Limit, Offset: page.Offset})
	if err != nil {
		return nil, err
	}
	return uc.toItemList(list, dto.PageResponse{Limit: page.Limit, Offset: page.Offset}), nil
}

// GetItem obtiene un ítem por ID.
func (uc *OrderUseCase) GetItem(ctx context.Context, id string) (*dto.OrderItemResponse, error) {
	item, err := uc.itemRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if item == nil {
		return nil, domain.ErrNotFound
	}
	return ToOrderItemResponse(item, uc.engine.priceplaces), nil
}

func (uc *OrderUseCase) toItemList(list []*entity.OrderItem, page dto.PageResponse) *dto.OrderItemListResponse {
	items := make([]dto.OrderItemResponse, 0, len(list))
	for _, it := range list {
		items = append(items, *ToOrderItemResponse(it, uc.engine.priceplaces))
	}
	return &dto.OrderItemListResponse{Items: items, Page: page}
}

// ToOrderResponse convierte la entidad a DTO (sin ítems).
func ToOrderResponse(o *entity.Order) *dto.OrderResponse {
	if o == nil {
		return nil
	}
	return &dto.OrderResponse{
		ID:        o.ID,
		UserID:    o.UserID,
		IsPaid:    o.IsPaid,
		CreatedAt: o.CreatedAt,
		UpdatedAt: o.UpdatedAt,
	}
}

// ToOrderItemResponse convierte la entidad a DTO con los montos a places decimales.
func ToOrderItemResponse(it *entity.OrderItem, places int32) *dto.OrderItemResponse {
	if it == nil {
		return nil
	}
	return &dto.OrderItemResponse{
		ID:          it.ID,
		OrderID:     it.OrderID,
		ProductID:   it.ProductID,
		ProductName: it.ProductName,
		UnitPrice:   dto.NewMoney(it.UnitPrice, places),
		Quantity:    it.Quantity,
		Price:       dto.NewMoney(it.Price, places),
		CreatedAt:   it.CreatedAt,
		UpdatedAt:   it.UpdatedAt,
	}
}
