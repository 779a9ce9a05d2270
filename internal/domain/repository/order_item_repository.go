package repository

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/tienda-backoffice/internal/domain/entity"
)

// OrderItemRepository define el puerto de persistencia para OrderItem (DIP).
type OrderItemRepository interface {
	Create(ctx context.Context, item *entity.OrderItem) error
	GetByID(ctx context.Context, id string) (*entity.OrderItem, error)
	GetForUpdate(ctx context.Context, id string) (*entity.OrderItem, error)
	ListByOrder(ctx context.Context, orderID string) ([]*entity.OrderItem, error)
	// List lista ítems de todos los pedidos; con UserID solo los de pedidos de ese usuario.
	List(ctx context.Context, filter OrderFilter) ([]*entity.OrderItem, error)
	// OwnerOf devuelve el dueño del pedido que contiene el ítem ("" si no existe).
	OwnerOf(ctx context.Context, itemID string) (string, error)
	Update(ctx context.Context, item *entity.OrderItem) error
	Delete(ctx context.Context, id string) error
	SumPrice(ctx context.Context, orderID string) (decimal.Decimal, error)
}
