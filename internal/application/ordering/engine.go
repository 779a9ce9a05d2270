// Package ordering contiene el motor transaccional de pedidos: cada operación sobre
// ítems mueve el stock del producto y el ítem en una sola transacción.
package ordering

import (
	"context"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/tienda-backoffice/internal/domain"
	"github.com/jhoicas/tienda-backoffice/internal/domain/entity"
	"github.com/jhoicas/tienda-backoffice/internal/domain/inventory"
	"github.com/jhoicas/tienda-backoffice/internal/domain/repository"
	"github.com/jhoicas/tienda-backoffice/internal/domain/validation"
)

// LinePriceDigits dígitos totales de un precio de línea (order_items.price NUMERIC(12,2)).
const LinePriceDigits = 12

// Engine aplica las operaciones de ítems de pedido.
// Orden de bloqueo dentro de una tx: pedido, ítem, producto (productos por ID ascendente).
type Engine struct {
	txRunner    TxRunner
	ledger      StockLedger
	orderRepo   repository.OrderRepository
	itemRepo    repository.OrderItemRepository
	priceplaces int32
	now         func() time.Time
}

// NewEngine construye el motor. priceplaces son los decimales a los que se truncan los precios.
func NewEngine(
	txRunner TxRunner,
	ledger StockLedger,
	orderRepo repository.OrderRepository,
	itemRepo repository.OrderItemRepository,
	priceplaces int32,
) *Engine {
	return &Engine{
		txRunner:    txRunner,
		ledger:      ledger,
		orderRepo:   orderRepo,
		itemRepo:    itemRepo,
		priceplaces: priceplaces,
		now:         time.Now,
	}
}

// PricePlaces decimales a los que se truncan los montos.
func (e *Engine) PricePlaces() int32 { return e.priceplaces }

// linePrice quantity × unitPrice, rechazado si no cabe en la columna de precio de línea.
func (e *Engine) linePrice(unitPrice decimal.Decimal, quantity int) (decimal.Decimal, error) {
	price := inventory.LinePrice(unitPrice, quantity)
	if err := validation.Price("quantity", price, e.priceplaces, LinePriceDigits); err != nil {
		return decimal.Zero, domain.NewValidationError("quantity", "el precio de línea excede el máximo permitido")
	}
	return price, nil
}

// CreateOrderItemInput entrada de CreateOrderItem. El producto se indica por ID o por nombre.
type CreateOrderItemInput struct {
	OrderID     string
	ProductID   string
	ProductName string
	Quantity    int
	ActorID     string
}

// UpdateOrderItemInput campos modificables de un ítem.
// Quantity mueve stock y recalcula Price; Price, si viene, se guarda después sin más efectos.
type UpdateOrderItemInput struct {
	Quantity *int
	Price    *decimal.Decimal
	ActorID  string
}

// CreateOrderItem descuenta stock y crea el ítem con price = quantity × precio unitario.
// Errores esperados: ErrNotFound (pedido), ErrProductNotFound, ErrInsufficientStock, ValidationError.
func (e *Engine) CreateOrderItem(ctx context.Context, in CreateOrderItemInput) (*entity.OrderItem, error) {
	if err := validation.Quantity("quantity", in.Quantity); err != nil {
		return nil, err
	}
	if in.ProductID == "" && in.ProductName == "" {
		return nil, domain.NewValidationError("product", "es obligatorio")
	}
	var out *entity.OrderItem
	err := e.txRunner.RunOrders(ctx, func(
		productRepo repository.ProductRepository,
		orderRepo repository.OrderRepository,
		itemRepo repository.OrderItemRepository,
		movRepo repository.StockMovementRepository,
	) error {
		order, err := orderRepo.GetForUpdate(ctx, in.OrderID)
		if err != nil {
			return err
		}
		if order == nil {
			return domain.ErrNotFound
		}
		product, err := lockProduct(ctx, productRepo, in.ProductID, in.ProductName)
		if err != nil {
			return err
		}
		price, err := e.linePrice(product.Price, in.Quantity)
		if err != nil {
			return err
		}
		now := e.now()
		item := &entity.OrderItem{
			ID:          uuid.New().String(),
			OrderID:     order.ID,
			ProductID:   product.ID,
			ProductName: product.Name,
			UnitPrice:   product.Price,
			Quantity:    in.Quantity,
			Price:       price,
			CreatedAt:   now,
			UpdatedAt:   now,
		}
		if err := e.ledger.ApplyInTx(ctx, productRepo, movRepo, product, -in.Quantity,
			entity.MovementOrderItemCreated, item.ID, in.ActorID); err != nil {
			return err
		}
		if err := itemRepo.Create(ctx, item); err != nil {
			return err
		}
		order.UpdatedAt = now
		if err := orderRepo.Update(ctx, order); err != nil {
			return err
		}
		out = item
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// UpdateOrderItem aplica un cambio de cantidad con delta = anterior - nueva sobre el stock,
// recalcula el precio de línea y luego aplica el resto de campos.
func (e *Engine) UpdateOrderItem(ctx context.Context, itemID string, in UpdateOrderItemInput) (*entity.OrderItem, error) {
	if in.Quantity != nil {
		if err := validation.Quantity("quantity", *in.Quantity); err != nil {
			return nil, err
		}
	}
	if in.Price != nil {
		if err := validation.Price("price", *in.Price, e.priceplaces, LinePriceDigits); err != nil {
			return nil, err
		}
	}
	var out *entity.OrderItem
	err := e.txRunner.RunOrders(ctx, func(
		productRepo repository.ProductRepository,
		orderRepo repository.OrderRepository,
		itemRepo repository.OrderItemRepository,
		movRepo repository.StockMovementRepository,
	) error {
		order, item, err := lockItem(ctx, orderRepo, itemRepo, itemID)
		if err != nil {
			return err
		}
		now := e.now()
		if in.Quantity != nil {
			product, err := productRepo.GetForUpdate(ctx, item.ProductID)
			if err != nil {
				return err
			}
			if product == nil {
				return domain.ErrProductNotFound
			}
			price, err := e.linePrice(product.Price, *in.Quantity)
			if err != nil {
				return err
			}
			delta := inventory.QuantityDelta(item.Quantity, *in.Quantity)
			if err := e.ledger.ApplyInTx(ctx, productRepo, movRepo, product, delta,
				entity.MovementOrderItemUpdated, item.ID, in.ActorID); err != nil {
				return err
			}
			item.Quantity = *in.Quantity
			item.UnitPrice = product.Price
			item.ProductName = product.Name
			item.Price = price
		}
		if in.Price != nil {
			item.Price = inventory.TruncatePrice(*in.Price, e.priceplaces)
		}
		item.UpdatedAt = now
		if err := itemRepo.Update(ctx, item); err != nil {
			return err
		}
		order.UpdatedAt = now
		if err := orderRepo.Update(ctx, order); err != nil {
			return err
		}
		out = item
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// DeleteOrderItem elimina el ítem y devuelve su cantidad al stock del producto.
func (e *Engine) DeleteOrderItem(ctx context.Context, itemID, actorID string) error {
	return e.txRunner.RunOrders(ctx, func(
		productRepo repository.ProductRepository,
		orderRepo repository.OrderRepository,
		itemRepo repository.OrderItemRepository,
		movRepo repository.StockMovementRepository,
	) error {
		order, item, err := lockItem(ctx, orderRepo, itemRepo, itemID)
		if err != nil {
			return err
		}
		if err := e.deleteItemInTx(ctx, productRepo, itemRepo, movRepo, item, actorID); err != nil {
			return err
		}
		order.UpdatedAt = e.now()
		return orderRepo.Update(ctx, order)
	})
}

// DeleteOrder elimina cada ítem por la misma ruta que devuelve stock y luego el pedido.
// Cualquier fallo revierte la operación completa.
func (e *Engine) DeleteOrder(ctx context.Context, orderID, actorID string) error {
	return e.txRunner.RunOrders(ctx, func(
		productRepo repository.ProductRepository,
		orderRepo repository.OrderRepository,
		itemRepo repository.OrderItemRepository,
		movRepo repository.StockMovementRepository,
	) error {
		order, err := orderRepo.GetForUpdate(ctx, orderID)
		if err != nil {
			return err
		}
		if order == nil {
			return domain.ErrNotFound
		}
		items, err := itemRepo.ListByOrder(ctx, order.ID)
		if err != nil {
			return err
		}
		sort.Slice(items, func(i, j int) bool {
			if items[i].ProductID != items[j].ProductID {
				return items[i].ProductID < items[j].ProductID
			}
			return items[i].ID < items[j].ID
		})
		for _, it := range items {
			locked, err := itemRepo.GetForUpdate(ctx, it.ID)
			if err != nil {
				return err
			}
			if locked == nil {
				return domain.ErrConflict
			}
			if err := e.deleteItemInTx(ctx, productRepo, itemRepo, movRepo, locked, actorID); err != nil {
				return err
			}
		}
		return orderRepo.Delete(ctx, order.ID)
	})
}

// GetTotalPrice suma los precios de línea del pedido; 0 si no tiene ítems.
func (e *Engine) GetTotalPrice(ctx context.Context, orderID string) (decimal.Decimal, error) {
	order, err := e.orderRepo.GetByID(ctx, orderID)
	if err != nil {
		return decimal.Zero, err
	}
	if order == nil {
		return decimal.Zero, domain.ErrNotFound
	}
	return e.itemRepo.SumPrice(ctx, orderID)
}

func (e *Engine) deleteItemInTx(
	ctx context.Context,
	productRepo repository.ProductRepository,
	itemRepo repository.OrderItemRepository,
	movRepo repository.StockMovementRepository,
	item *entity.OrderItem,
	actorID string,
) error {
	product, err := productRepo.GetForUpdate(ctx, item.ProductID)
	if err != nil {
		return err
	}
	if product == nil {
		return domain.ErrProductNotFound
	}
	if err := e.ledger.ApplyInTx(ctx, productRepo, movRepo, product, item.Quantity,
		entity.MovementOrderItemDeleted, item.ID, actorID); err != nil {
		return err
	}
	return itemRepo.Delete(ctx, item.ID)
}

// lockItem bloquea el pedido y después el ítem, respetando el orden de bloqueo.
func lockItem(
	ctx context.Context,
	orderRepo repository.OrderRepository,
	itemRepo repository.OrderItemRepository,
	itemID string,
) (*entity.Order, *entity.OrderItem, error) {
	peek, err := itemRepo.GetByID(ctx, itemID)
	if err != nil {
		return nil, nil, err
	}
	if peek == nil {
		return nil, nil, domain.ErrNotFound
	}
	order, err := orderRepo.GetForUpdate(ctx, peek.OrderID)
	if err != nil {
		return nil, nil, err
	}
	if order == nil {
		return nil, nil, domain.ErrNotFound
	}
	item, err := itemRepo.GetForUpdate(ctx, itemID)
	if err != nil {
		return nil, nil, err
	}
	if item == nil {
		return nil, nil, domain.ErrNotFound
	}
	return order, item, nil
}

func lockProduct(ctx context.Context, productRepo repository.ProductRepository, id, name string) (*entity.Product, error) {
	var (
		p   *entity.Product
		err error
	)
	if id != "" {
		if !validation.IsID(id) {
			return nil, domain.ErrProductNotFound
		}
		p, err = productRepo.GetForUpdate(ctx, id)
	} else {
		p, err = productRepo.GetByNameForUpdate(ctx, name)
	}
	if err != nil {
		return nil, err
	}
	if p == nil {
		return nil, domain.ErrProductNotFound
	}
	return p, nil
}
