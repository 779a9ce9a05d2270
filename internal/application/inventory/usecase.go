package inventory

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/jhoicas/tienda-backoffice/internal/application/dto"
	"github.com/jhoicas/tienda-backoffice/internal/domain"
	"github.com/jhoicas/tienda-backoffice/internal/domain/entity"
	"github.com/jhoicas/tienda-backoffice/internal/domain/inventory"
	"github.com/jhoicas/tienda-backoffice/internal/domain/repository"
	"github.com/jhoicas/tienda-backoffice/internal/domain/validation"
)

// LedgerUseCase es el único punto que escribe Product.Stock.
// Cada cambio deja un StockMovement en la misma transacción.
type LedgerUseCase struct {
	txRunner TxRunner
	movRepo  repository.StockMovementRepository
	now      func() time.Time
}

// NewLedgerUseCase construye el caso de uso.
func NewLedgerUseCase(txRunner TxRunner, movRepo repository.StockMovementRepository) *LedgerUseCase {
	return &LedgerUseCase{txRunner: txRunner, movRepo: movRepo, now: time.Now}
}

// ApplyInTx aplica delta al stock de product usando los repositorios del caller (misma transacción).
// product debe haberse leído con GetForUpdate. Si retorna error el caller debe hacer rollback.
func (uc *LedgerUseCase) ApplyInTx(
	ctx context.Context,
	productRepo repository.ProductRepository,
	movRepo repository.StockMovementRepository,
	product *entity.Product,
	delta int,
	reason, orderItemID, userID string,
) error {
	if delta == 0 {
		return nil
	}
	next, err := inventory.ApplyDelta(product.ID, product.Stock, delta)
	if err != nil {
		return err
	}
	if err := productRepo.UpdateStock(ctx, product.ID, next); err != nil {
		return err
	}
	product.Stock = next
	return movRepo.Create(ctx, &entity.StockMovement{
		ID:          uuid.New().String(),
		ProductID:   product.ID,
		OrderItemID: orderItemID,
		Reason:      reason,
		Delta:       delta,
		StockAfter:  next,
		CreatedBy:   userID,
		CreatedAt:   uc.now(),
	})
}

// Adjust fija el stock de un producto en newStock con un movimiento ADJUSTMENT.
func (uc *LedgerUseCase) Adjust(ctx context.Context, productID string, newStock int, userID string) (*entity.Product, error) {
	if err := validation.Stock("stock", newStock); err != nil {
		return nil, err
	}
	var out *entity.Product
	err := uc.txRunner.Run(ctx, func(productRepo repository.ProductRepository, movRepo repository.StockMovementRepository) error {
		p, err := productRepo.GetForUpdate(ctx, productID)
		if err != nil {
			return err
		}
		if p == nil {
			return domain.ErrNotFound
		}
		if err := uc.ApplyInTx(ctx, productRepo, movRepo, p, newStock-p.Stock, entity.MovementAdjustment, "", userID); err != nil {
			return err
		}
		out = p
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// ListMovements lista los movimientos de un producto (más recientes primero).
func (uc *LedgerUseCase) ListMovements(ctx context.Context, productID string, page dto.PageRequest) (*dto.StockMovementListResponse, error) {
	page.DefaultPage()
	list, err := uc.movRepo.ListByProduct(ctx, productID, page.Limit, page.Offset)
	if err != nil {
		return nil, err
	}
	items := make([]dto.StockMovementResponse, 0, len(list))
	for _, m := range list {
		items = append(items, dto.StockMovementResponse{
			ID:          m.ID,
			ProductID:   m.ProductID,
			OrderItemID: m.OrderItemID,
			Reason:      m.Reason,
			Delta:       m.Delta,
			StockAfter:  m.StockAfter,
			CreatedBy:   m.CreatedBy,
			CreatedAt:   m.CreatedAt,
		})
	}
	return &dto.StockMovementListResponse{
		Items: items,
		Page:  dto.PageResponse{Limit: page.Limit, Offset: page.Offset},
	}, nil
}
