package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// CreateOrderRequest entrada para crear un pedido. El dueño es siempre el solicitante.
type CreateOrderRequest struct {
	IsPaid *StrictBool `json:"is_paid"`
}

// UpdateOrderRequest único campo modificable de un pedido.
type UpdateOrderRequest struct {
	IsPaid *StrictBool `json:"is_paid" validate:"required"`
}

// OrderResponse salida de un pedido; Items y TotalPrice solo en el detalle.
type OrderResponse struct {
	ID         string              `json:"id"`
	UserID     string              `json:"user_id"`
	IsPaid     bool                `json:"is_paid"`
	Items      []OrderItemResponse `json:"items,omitempty"`
	TotalPrice *Money              `json:"total_price,omitempty"`
	CreatedAt  time.Time           `json:"created_at"`
	UpdatedAt  time.Time           `json:"updated_at"`
}

// OrderListResponse lista paginada de pedidos.
type OrderListResponse struct {
	Items []OrderResponse `json:"items"`
	Page  PageResponse    `json:"page"`
}

// OrderTotalResponse total de un pedido.
type OrderTotalResponse struct {
	OrderID    string `json:"order_id"`
	TotalPrice Money  `json:"total_price"`
}

// CreateOrderItemRequest entrada para agregar una línea. Producto por ID o por nombre (uno de los dos).
type CreateOrderItemRequest struct {
	ProductID   string `json:"product_id" validate:"omitempty,uuid"`
	ProductName string `json:"product_name" validate:"omitempty,max=100"`
	Quantity    int    `json:"quantity" validate:"required,min=1"`
}

// UpdateOrderItemRequest campos modificables de una línea.
// Solo Quantity mueve stock; Price se guarda tal cual después del recálculo.
type UpdateOrderItemRequest struct {
	Quantity *int             `json:"quantity" validate:"omitempty,min=1"`
	Price    *decimal.Decimal `json:"price"`
}

// OrderItemResponse salida de una línea.
type OrderItemResponse struct {
	ID          string    `json:"id"`
	OrderID     string    `json:"order_id"`
	ProductID   string    `json:"product_id"`
	ProductName string    `json:"product_name"`
	UnitPrice   Money     `json:"unit_price"`
	Quantity    int       `json:"quantity"`
	Price       Money     `json:"price"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// OrderItemListResponse lista de líneas.
type OrderItemListResponse struct {
	Items []OrderItemResponse `json:"items"`
	Page  PageResponse        `json:"page"`
}
