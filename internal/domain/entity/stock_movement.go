package entity

import "time"

// Motivos de movimiento de stock.
const (
	MovementOrderItemCreated = "ORDER_ITEM_CREATED"
	MovementOrderItemUpdated = "ORDER_ITEM_UPDATED"
	MovementOrderItemDeleted = "ORDER_ITEM_DELETED"
	MovementAdjustment       = "ADJUSTMENT"
)

// StockMovement registro auditable de un cambio de stock.
// Delta es positivo cuando se devuelven unidades y negativo cuando se consumen.
type StockMovement struct {
	ID          string
	ProductID   string
	OrderItemID string // vacío para ajustes manuales
	Reason      string
	Delta       int
	StockAfter  int
	CreatedBy   string // UserID
	CreatedAt   time.Time
}
