package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/tienda-backoffice/internal/domain"
	"github.com/jhoicas/tienda-backoffice/internal/domain/entity"
	"github.com/jhoicas/tienda-backoffice/internal/domain/repository"
)

var _ repository.OrderItemRepository = (*OrderItemRepo)(nil)

const itemColumns = `i.id, i.order_id, i.product_id, i.product_name, i.unit_price, i.quantity, i.price, i.created_at, i.updated_at`

// OrderItemRepo implementación del puerto OrderItemRepository sobre PostgreSQL.
type OrderItemRepo struct {
	q Querier
}

// NewOrderItemRepository construye el adaptador de persistencia para ítems de pedido.
func NewOrderItemRepository(q Querier) *OrderItemRepo {
	return &OrderItemRepo{q: q}
}

func scanItem(s scanner) (*entity.OrderItem, error) {
	var it entity.OrderItem
	err := s.Scan(&it.ID, &it.OrderID, &it.ProductID, &it.ProductName, &it.UnitPrice,
		&it.Quantity, &it.Price, &it.CreatedAt, &it.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &it, nil
}

// Create persiste un ítem con la instantánea de nombre y precio unitario del producto.
func (r *OrderItemRepo) Create(ctx context.Context, it *entity.OrderItem) error {
	_, err := r.q.Exec(ctx, `
		INSERT INTO order_items (id, order_id, product_id, product_name, unit_price, quantity, price, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		it.ID, it.OrderID, it.ProductID, it.ProductName, it.UnitPrice, it.Quantity, it.Price, it.CreatedAt, it.UpdatedAt,
	)
	if err != nil {
		if mapped := writeErr(err); mapped != nil {
			return mapped
		}
		return fmt.Errorf("insert order item: %w", err)
	}
	return nil
}

func (r *OrderItemRepo) getOne(ctx context.Context, query, id string) (*entity.OrderItem, error) {
	it, err := scanItem(r.q.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get order item: %w", err)
	}
	return it, nil
}

// GetByID obtiene un ítem por ID.
func (r *OrderItemRepo) GetByID(ctx context.Context, id string) (*entity.OrderItem, error) {
	return r.getOne(ctx, `SELECT `+itemColumns+` FROM order_items i WHERE i.id = $1`, id)
}

// GetForUpdate obtiene y bloquea el ítem. El pedido debe estar bloqueado antes.
func (r *OrderItemRepo) GetForUpdate(ctx context.Context, id string) (*entity.OrderItem, error) {
	return r.getOne(ctx, `SELECT `+itemColumns+` FROM order_items i WHERE i.id = $1 FOR UPDATE`, id)
}

func (r *OrderItemRepo) list(ctx context.Context, query string, args ...any) ([]*entity.OrderItem, error) {
	rows, err := r.q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list order items: %w", err)
	}
	defer rows.Close()
	var list []*entity.OrderItem
	for rows.Next() {
		it, err := scanItem(rows)
		if err != nil {
			return nil, fmt.Errorf("scan order item: %w", err)
		}
		list = append(list, it)
	}
	return list, rows.Err()
}

// ListByOrder lista los ítems de un pedido por fecha de creación.
func (r *OrderItemRepo) ListByOrder(ctx context.Context, orderID string) ([]*entity.OrderItem, error) {
	return r.list(ctx, `
		SELECT `+itemColumns+` FROM order_items i
		WHERE i.order_id = $1 ORDER BY i.created_at, i.id`, orderID)
}

// List lista ítems de todos los pedidos; UserID restringe a los pedidos de ese usuario.
func (r *OrderItemRepo) List(ctx context.Context, f repository.OrderFilter) ([]*entity.OrderItem, error) {
	return r.list(ctx, `
		SELECT `+itemColumns+` FROM order_items i
		JOIN orders o ON o.id = i.order_id
		WHERE ($1::uuid IS NULL OR o.user_id = $1::uuid)
		ORDER BY i.created_at, i.id LIMIT $2 OFFSET $3`,
		nullable(f.UserID), f.Limit, f.Offset)
}

// OwnerOf devuelve el user_id del pedido que contiene el ítem ("" si no existe).
func (r *OrderItemRepo) OwnerOf(ctx context.Context, itemID string) (string, error) {
	var owner string
	err := r.q.QueryRow(ctx, `
		SELECT o.user_id FROM order_items i
		JOIN orders o ON o.id = i.order_id
		WHERE i.id = $1`, itemID,
	).Scan(&owner)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return "", nil
		}
		return "", fmt.Errorf("order item owner: %w", err)
	}
	return owner, nil
}

// Update persiste cantidad, precios e instantánea del producto.
func (r *OrderItemRepo) Update(ctx context.Context, it *entity.OrderItem) error {
	cmd, err := r.q.Exec(ctx, `
		UPDATE order_items
		SET product_name = $2, unit_price = $3, quantity = $4, price = $5, updated_at = $6
		WHERE id = $1`,
		it.ID, it.ProductName, it.UnitPrice, it.Quantity, it.Price, it.UpdatedAt,
	)
	if err != nil {
		if mapped := writeErr(err); mapped != nil {
			return mapped
		}
		return fmt.Errorf("update order item: %w", err)
	}
	if cmd.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// Delete elimina un ítem. El stock lo devuelve el motor antes de llamar aquí.
func (r *OrderItemRepo) Delete(ctx context.Context, id string) error {
	if _, err := r.q.Exec(ctx, `DELETE FROM order_items WHERE id = $1`, id); err != nil {
		return fmt.Errorf("delete order item: %w", err)
	}
	return nil
}

// SumPrice suma los precios de línea del pedido (0 si no tiene ítems).
func (r *OrderItemRepo) SumPrice(ctx context.Context, orderID string) (decimal.Decimal, error) {
	var total decimal.Decimal
	err := r.q.QueryRow(ctx,
		`SELECT COALESCE(SUM(price), 0) FROM order_items WHERE order_id = $1`, orderID,
	).Scan(&total)
	if err != nil {
		return decimal.Zero, fmt.Errorf("sum order items: %w", err)
	}
	return total, nil
}
