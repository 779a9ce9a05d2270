// Package validation reúne las reglas de entrada del catálogo y los pedidos.
// Los valores que llegan como texto se aceptan solo en sus formas literales exactas.
package validation

import (
	"strings"
	"unicode/utf8"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/tienda-backoffice/internal/domain"
)

// IsID indica si s es un UUID en forma canónica de 36 caracteres.
// uuid.Parse también acepta urn:uuid: y llaves, que PostgreSQL rechaza.
func IsID(s string) bool {
	return len(s) == 36 && uuid.Validate(s) == nil
}

// MaxNameLength longitud máxima de nombres de producto y categoría.
const MaxNameLength = 100

// ParseBool acepta únicamente "True", "False", "1" y "0".
// Cualquier otro valor (ej. "15", "yes", "") es un error de validación.
func ParseBool(field, s string) (bool, error) {
	switch s {
	case "True", "1":
		return true, nil
	case "False", "0":
		return false, nil
	}
	return false, domain.NewValidationError(field, "debe ser True o False")
}

// Name valida un nombre obligatorio y devuelve su forma recortada.
func Name(field, s string) (string, error) {
	name := strings.TrimSpace(s)
	if name == "" {
		return "", domain.NewValidationError(field, "es obligatorio")
	}
	if utf8.RuneCountInString(name) > MaxNameLength {
		return "", domain.NewValidationError(field, "supera 100 caracteres")
	}
	return name, nil
}

// Price valida que el precio sea no negativo y quepa en maxDigits dígitos con places decimales
// una vez truncado.
func Price(field string, price decimal.Decimal, places int32, maxDigits int) error {
	if price.IsNegative() {
		return domain.NewValidationError(field, "no puede ser negativo")
	}
	intDigits := len(price.Truncate(0).Abs().String())
	if price.Truncate(0).IsZero() {
		intDigits = 1
	}
	if intDigits > maxDigits-int(places) {
		return domain.NewValidationError(field, "excede el número de dígitos permitido")
	}
	return nil
}

// Stock valida un stock no negativo.
func Stock(field string, stock int) error {
	if stock < 0 {
		return domain.NewValidationError(field, "no puede ser negativo")
	}
	return nil
}

// Quantity valida una cantidad de línea estrictamente positiva.
func Quantity(field string, qty int) error {
	if qty <= 0 {
		return domain.NewValidationError(field, "debe ser mayor que cero")
	}
	return nil
}
