package repository

import (
	"context"

	"github.com/jhoicas/tienda-backoffice/internal/domain/entity"
)

// ProductFilter filtros de listado de productos.
type ProductFilter struct {
	CategoryID string
	Limit      int
	Offset     int
}

// ProductRepository define el puerto de persistencia para Product (DIP).
type ProductRepository interface {
	Create(ctx context.Context, product *entity.Product) error
	GetByID(ctx context.Context, id string) (*entity.Product, error)
	GetByName(ctx context.Context, name string) (*entity.Product, error)
	// GetForUpdate y GetByNameForUpdate bloquean la fila (SELECT ... FOR UPDATE) dentro de una tx.
	GetForUpdate(ctx context.Context, id string) (*entity.Product, error)
	GetByNameForUpdate(ctx context.Context, name string) (*entity.Product, error)
	// Update no modifica Stock; el stock solo cambia vía UpdateStock desde el libro de inventario.
	Update(ctx context.Context, product *entity.Product) error
	UpdateStock(ctx context.Context, productID string, stock int) error
	List(ctx context.Context, filter ProductFilter) ([]*entity.Product, error)
	IsReferenced(ctx context.Context, productID string) (bool, error)
	Delete(ctx context.Context, id string) error
}
