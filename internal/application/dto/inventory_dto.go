package dto

import "time"

// StockMovementResponse movimiento del libro de stock.
type StockMovementResponse struct {
	ID          string    `json:"id"`
	ProductID   string    `json:"product_id"`
	OrderItemID string    `json:"order_item_id,omitempty"`
	Reason      string    `json:"reason"`
	Delta       int       `json:"delta"`
	StockAfter  int       `json:"stock_after"`
	CreatedBy   string    `json:"created_by"`
	CreatedAt   time.Time `json:"created_at"`
}

// StockMovementListResponse lista paginada de movimientos de un producto.
type StockMovementListResponse struct {
	Items []StockMovementResponse `json:"items"`
	Page  PageResponse            `json:"page"`
}
