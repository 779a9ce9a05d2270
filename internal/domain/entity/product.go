package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Product representa un producto del catálogo.
// Stock solo cambia a través del ciclo de vida de los ítems de pedido o de un ajuste auditado.
type Product struct {
	ID          string
	Name        string // único en el catálogo
	Description string
	Price       decimal.Decimal // precio unitario, truncado a los decimales configurados
	CategoryID  string
	Stock       int
	CreatedAt   time.Time
	UpdatedAt   time.Time
}
