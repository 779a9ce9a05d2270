package usecase

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/tienda-backoffice/internal/application/dto"
	"github.com/jhoicas/tienda-backoffice/internal/application/inventory"
	"github.com/jhoicas/tienda-backoffice/internal/domain"
	"github.com/jhoicas/tienda-backoffice/internal/domain/entity"
	domaininv "github.com/jhoicas/tienda-backoffice/internal/domain/inventory"
	"github.com/jhoicas/tienda-backoffice/internal/domain/repository"
	"github.com/jhoicas/tienda-backoffice/internal/domain/validation"
)

// CatalogRules reglas de precio del catálogo (ver config.CatalogConfig).
type CatalogRules struct {
	PriceDecimalPlaces int32
	MaxPriceDigits     int
}

// StockLedger escribe el stock de un producto dejando su movimiento en la misma transacción.
type StockLedger interface {
	ApplyInTx(
		ctx context.Context,
		productRepo repository.ProductRepository,
		movRepo repository.StockMovementRepository,
		product *entity.Product,
		delta int,
		reason, orderItemID, userID string,
	) error
}

// ProductUseCase casos de uso CRUD para productos. El stock solo cambia vía el libro de inventario.
type ProductUseCase struct {
	repo       repository.ProductRepository
	categories repository.CategoryRepository
	txRunner   inventory.TxRunner
	ledger     StockLedger
	rules      CatalogRules
	now        func() time.Time
}

// NewProductUseCase construye el caso de uso.
func NewProductUseCase(
	repo repository.ProductRepository,
	categories repository.CategoryRepository,
	txRunner inventory.TxRunner,
	ledger StockLedger,
	rules CatalogRules,
) *ProductUseCase {
	return &ProductUseCase{
		repo:       repo,
		categories: categories,
		txRunner:   txRunner,
		ledger:     ledger,
		rules:      rules,
		now:        time.Now,
	}
}

// Create crea un producto. El stock inicial queda registrado como movimiento ADJUSTMENT.
func (uc *ProductUseCase) Create(ctx context.Context, in dto.CreateProductRequest, actorID string) (*dto.ProductResponse, error) {
	name, err := validation.Name("name", in.Name)
	if err != nil {
		return nil, err
	}
	price, err := uc.price(in.Price)
	if err != nil {
		return nil, err
	}
	if err := validation.Stock("stock", in.Stock); err != nil {
		return nil, err
	}
	if err := uc.checkCategory(ctx, in.CategoryID); err != nil {
		return nil, err
	}
	now := uc.now()
	product := &entity.Product{
		ID:          uuid.New().String(),
		Name:        name,
		Description: in.Description,
		Price:       price,
		CategoryID:  in.CategoryID,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	err = uc.txRunner.Run(ctx, func(productRepo repository.ProductRepository, movRepo repository.StockMovementRepository) error {
		existing, err := productRepo.GetByName(ctx, name)
		if err != nil {
			return err
		}
		if existing != nil {
			return domain.ErrDuplicate
		}
		if err := productRepo.Create(ctx, product); err != nil {
			return err
		}
		return uc.ledger.ApplyInTx(ctx, productRepo, movRepo, product, in.Stock, entity.MovementAdjustment, "", actorID)
	})
	if err != nil {
		return nil, err
	}
	return uc.toResponse(product), nil
}

// GetByID obtiene un producto; ErrNotFound si no existe.
func (uc *ProductUseCase) GetByID(ctx context.Context, id string) (*dto.ProductResponse, error) {
	if !validation.IsID(id) {
		return nil, domain.ErrNotFound
	}
	p, err := uc.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if p == nil {
		return nil, domain.ErrNotFound
	}
	return uc.toResponse(p), nil
}

// Update aplica los campos presentes. Un cambio de stock se registra como ADJUSTMENT
// en la misma transacción que el resto de campos.
func (uc *ProductUseCase) Update(ctx context.Context, id string, in dto.UpdateProductRequest, actorID string) (*dto.ProductResponse, error) {
	if !validation.IsID(id) {
		return nil, domain.ErrNotFound
	}
	var (
		name  string
		price decimal.Decimal
		err   error
	)
	if in.Name != nil {
		if name, err = validation.Name("name", *in.Name); err != nil {
			return nil, err
		}
	}
	if in.Price != nil {
		if price, err = uc.price(*in.Price); err != nil {
			return nil, err
		}
	}
	if in.Stock != nil {
		if err := validation.Stock("stock", *in.Stock); err != nil {
			return nil, err
		}
	}
	if in.CategoryID != nil {
		if err := uc.checkCategory(ctx, *in.CategoryID); err != nil {
			return nil, err
		}
	}

	var out *entity.Product
	err = uc.txRunner.Run(ctx, func(productRepo repository.ProductRepository, movRepo repository.StockMovementRepository) error {
		p, err := productRepo.GetForUpdate(ctx, id)
		if err != nil {
			return err
		}
		if p == nil {
			return domain.ErrNotFound
		}
		changed := false
		if in.Name != nil {
			other, err := productRepo.GetByName(ctx, name)
			if err != nil {
				return err
			}
			if other != nil && other.ID != p.ID {
				return domain.ErrDuplicate
			}
			p.Name = name
			changed = true
		}
		if in.Description != nil {
			p.Description = *in.Description
			changed = true
		}
		if in.Price != nil {
			p.Price = price
			changed = true
		}
		if in.CategoryID != nil {
			p.CategoryID = *in.CategoryID
			changed = true
		}
		p.UpdatedAt = uc.now()
		if changed {
			if err := productRepo.Update(ctx, p); err != nil {
				return err
			}
		}
		if in.Stock != nil {
			if err := uc.ledger.ApplyInTx(ctx, productRepo, movRepo, p, *in.Stock-p.Stock,
				entity.MovementAdjustment, "", actorID); err != nil {
				return err
			}
		}
		out = p
		return nil
	})
	if err != nil {
		return nil, err
	}
	return uc.toResponse(out), nil
}

// List lista productos ordenados por nombre; categoryID vacío lista todos.
func (uc *ProductUseCase) List(ctx context.Context, categoryID string, page dto.PageRequest) (*dto.ProductListResponse, error) {
	page.DefaultPage()
	if categoryID != "" {
		if !validation.IsID(categoryID) {
			return nil, domain.NewValidationError("category_id", "debe ser un UUID")
		}
	}
	list, err := uc.repo.List(ctx, repository.ProductFilter{CategoryID: categoryID, Limit: page.Limit, Offset: page.Offset})
	if err != nil {
		return nil, err
	}
	items := make([]dto.ProductResponse, 0, len(list))
	for _, p := range list {
		items = append(items, *uc.toResponse(p))
	}
	return &dto.ProductListResponse{
		Items: items,
		Page:  dto.PageResponse{Limit: page.Limit, Offset: page.Offset},
	}, nil
}

// Delete elimina un producto. ErrConflict mientras algún ítem de pedido lo referencie.
func (uc *ProductUseCase) Delete(ctx context.Context, id string) error {
	if _, err := uc.GetByID(ctx, id); err != nil {
		return err
	}
	referenced, err := uc.repo.IsReferenced(ctx, id)
	if err != nil {
		return err
	}
	if referenced {
		return domain.ErrConflict
	}
	return uc.repo.Delete(ctx, id)
}

// price valida y trunca (nunca redondea) a los decimales del catálogo.
func (uc *ProductUseCase) price(raw decimal.Decimal) (decimal.Decimal, error) {
	if err := validation.Price("price", raw, uc.rules.PriceDecimalPlaces, uc.rules.MaxPriceDigits); err != nil {
		return decimal.Zero, err
	}
	return domaininv.TruncatePrice(raw, uc.rules.PriceDecimalPlaces), nil
}

func (uc *ProductUseCase) checkCategory(ctx context.Context, categoryID string) error {
	if !validation.IsID(categoryID) {
		return domain.NewValidationError("category_id", "no existe")
	}
	c, err := uc.categories.GetByID(ctx, categoryID)
	if err != nil {
		return err
	}
	if c == nil {
		return domain.NewValidationError("category_id", "no existe")
	}
	return nil
}

func (uc *ProductUseCase) toResponse(p *entity.Product) *dto.ProductResponse {
	if p == nil {
		return nil
	}
	return &dto.ProductResponse{
		ID:          p.ID,
		Name:        p.Name,
		Description: p.Description,
		Price:       dto.NewMoney(p.Price, uc.rules.PriceDecimalPlaces),
		CategoryID:  p.CategoryID,
		Stock:       p.Stock,
		CreatedAt:   p.CreatedAt,
		UpdatedAt:   p.UpdatedAt,
	}
}
