// Package inventory contiene las reglas puras del libro de stock y del cálculo de precios.
package inventory

import (
	"github.com/shopspring/decimal"

	"github.com/jhoicas/tienda-backoffice/internal/domain"
)

// ApplyDelta aplica delta al stock actual. Falla con *domain.StockError si el resultado es negativo.
// delta negativo consume unidades; positivo las devuelve.
func ApplyDelta(productID string, stock, delta int) (int, error) {
	next := stock + delta
	if next < 0 {
		return stock, &domain.StockError{ProductID: productID, Available: stock, Requested: -delta}
	}
	return next, nil
}

// QuantityDelta devuelve el delta de stock al cambiar la cantidad de una línea (old - new).
func QuantityDelta(oldQty, newQty int) int {
	return oldQty - newQty
}

// LinePrice precio de la línea: cantidad × precio unitario.
func LinePrice(unitPrice decimal.Decimal, quantity int) decimal.Decimal {
	return unitPrice.Mul(decimal.NewFromInt(int64(quantity)))
}

// TruncatePrice deja exactamente places decimales cortando, nunca redondeando.
func TruncatePrice(price decimal.Decimal, places int32) decimal.Decimal {
	return price.Truncate(places)
}

// Total suma los precios de línea; 0 si no hay líneas.
func Total(prices []decimal.Decimal) decimal.Decimal {
	total := decimal.Zero
	for _, p := range prices {
		total = total.Add(p)
	}
	return total
}
