package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// OrderItem línea de un pedido.
// Price es el total de la línea (Quantity × UnitPrice) capturado en el último cambio de cantidad;
// ProductName y UnitPrice conservan el producto tal como estaba en ese momento.
type OrderItem struct {
	ID          string
	OrderID     string
	ProductID   string
	ProductName string
	UnitPrice   decimal.Decimal
	Quantity    int
	Price       decimal.Decimal
	CreatedAt   time.Time
	UpdatedAt   time.Time
}
