package entity

import "time"

// User representa un usuario del back office. Roles son nombres de grupo (customers, staff, ...).
type User struct {
	ID           string
	Username     string
	Email        string
	PasswordHash string // bcrypt hash, nunca plano en dominio después de persistir
	FirstName    string
	LastName     string
	Address      string
	PhoneNumber  string
	Roles        []string
	IsActive     bool
	CreatedAt    time.Time
	UpdatedAt    time.Time
}
