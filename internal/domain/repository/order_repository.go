package repository

import (
	"context"

	"github.com/jhoicas/tienda-backoffice/internal/domain/entity"
)

// OrderFilter filtros de listado; UserID vacío lista todos los pedidos.
type OrderFilter struct {
	UserID string
	Limit  int
	Offset int
}

// OrderRepository define el puerto de persistencia para Order (DIP).
type OrderRepository interface {
	Create(ctx context.Context, order *entity.Order) error
	GetByID(ctx context.Context, id string) (*entity.Order, error)
	GetForUpdate(ctx context.Context, id string) (*entity.Order, error)
	List(ctx context.Context, filter OrderFilter) ([]*entity.Order, error)
	// Update persiste IsPaid y UpdatedAt; UserID es inmutable.
	Update(ctx context.Context, order *entity.Order) error
	Delete(ctx context.Context, id string) error
}
