package entity

import "time"

// Category representa una categoría de productos. Borrarla elimina sus productos.
type Category struct {
	ID          string
	Name        string // único, no vacío
	Description string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}
