package entity

import "time"

// Order representa un pedido. UserID es el dueño y no se reasigna tras la creación.
type Order struct {
	ID        string
	UserID    string
	IsPaid    bool
	CreatedAt time.Time
	UpdatedAt time.Time
}
