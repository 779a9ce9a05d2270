package ordering

import (
	"context"

	"github.com/jhoicas/tienda-backoffice/internal/domain/entity"
	"github.com/jhoicas/tienda-backoffice/internal/domain/repository"
)

// TxRunner ejecuta una función dentro de una transacción con los repos de pedidos e inventario.
// Si fn devuelve error se hace rollback completo.
type TxRunner interface {
	RunOrders(ctx context.Context, fn func(
		productRepo repository.ProductRepository,
		orderRepo repository.OrderRepository,
		itemRepo repository.OrderItemRepository,
		movRepo repository.StockMovementRepository,
	) error) error
}

// StockLedger integra pedidos con el libro de stock.
// ApplyInTx usa los repositorios del caller (misma transacción); si retorna error
// (ej. ErrInsufficientStock) el caller debe hacer rollback.
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

// Document datos de un pedido para su representación (PDF, XML).
type Document struct {
	Order *entity.Order
	Owner *entity.User
	Items []*entity.OrderItem
	Total string // total ya formateado con los decimales del catálogo
}

// ReceiptRenderer genera el comprobante PDF de un pedido.
type ReceiptRenderer interface {
	RenderReceipt(ctx context.Context, doc Document) ([]byte, error)
}

// XMLExporter serializa el pedido en XML canónico y devuelve su digest SHA-256 (hex).
type XMLExporter interface {
	ExportOrderXML(ctx context.Context, doc Document) (xml []byte, digest string, err error)
}
