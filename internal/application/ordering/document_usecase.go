package ordering

import (
	"context"

	"github.com/jhoicas/tienda-backoffice/internal/domain"
	"github.com/jhoicas/tienda-backoffice/internal/domain/repository"
)

// DocumentUseCase genera el comprobante PDF y la exportación XML de un pedido.
type DocumentUseCase struct {
	orderRepo   repository.OrderRepository
	itemRepo    repository.OrderItemRepository
	userRepo    repository.UserRepository
	renderer    ReceiptRenderer
	exporter    XMLExporter
	priceplaces int32
}

// NewDocumentUseCase construye el caso de uso.
func NewDocumentUseCase(
	orderRepo repository.OrderRepository,
	itemRepo repository.OrderItemRepository,
	userRepo repository.UserRepository,
	renderer ReceiptRenderer,
	exporter XMLExporter,
	priceplaces int32,
) *DocumentUseCase {
	return &DocumentUseCase{
		orderRepo:   orderRepo,
		itemRepo:    itemRepo,
		userRepo:    userRepo,
		renderer:    renderer,
		exporter:    exporter,
		priceplaces: priceplaces,
	}
}

// Receipt devuelve el PDF del pedido.
func (uc *DocumentUseCase) Receipt(ctx context.Context, orderID string) ([]byte, error) {
	doc, err := uc.load(ctx, orderID)
	if err != nil {
		return nil, err
	}
	return uc.renderer.RenderReceipt(ctx, *doc)
}

// ExportXML devuelve el XML canónico del pedido y su digest.
func (uc *DocumentUseCase) ExportXML(ctx context.Context, orderID string) ([]byte, string, error) {
	doc, err := uc.load(ctx, orderID)
	if err != nil {
		return nil, "", err
	}
	return uc.exporter.ExportOrderXML(ctx, *doc)
}

func (uc *DocumentUseCase) load(ctx context.Context, orderID string) (*Document, error) {
	order, err := uc.orderRepo.GetByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if order == nil {
		return nil, domain.ErrNotFound
	}
	items, err := uc.itemRepo.ListByOrder(ctx, orderID)
	if err != nil {
		return nil, err
	}
	total, err := uc.itemRepo.SumPrice(ctx, orderID)
	if err != nil {
		return nil, err
	}
	owner, err := uc.userRepo.GetByID(ctx, order.UserID)
	if err != nil {
		return nil, err
	}
	return &Document{
		Order: order,
		Owner: owner,
		Items: items,
		Total: total.StringFixed(uc.priceplaces),
	}, nil
}
