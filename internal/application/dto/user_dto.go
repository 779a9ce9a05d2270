package dto

import "time"

// CreateUserRequest entrada para crear un usuario (password en texto, se hashea en use case).
type CreateUserRequest struct {
	Username    string      `json:"username" validate:"required,min=3,max=150"`
	Email       string      `json:"email" validate:"required,email"`
	Password    string      `json:"password" validate:"required,min=8"`
	FirstName   string      `json:"first_name" validate:"omitempty,max=150"`
	LastName    string      `json:"last_name" validate:"omitempty,max=150"`
	Address     string      `json:"address" validate:"omitempty,max=255"`
	PhoneNumber string      `json:"phone_number" validate:"omitempty,max=15"`
	Roles       []string    `json:"roles" validate:"dive,oneof=customers staff stock_personnel shift_manager"`
	IsActive    *StrictBool `json:"is_active"`
}

// UpdateUserRequest campos modificables de un usuario. Roles nil no modifica los roles.
type UpdateUserRequest struct {
	Email       *string     `json:"email" validate:"omitempty,email"`
	Password    *string     `json:"password" validate:"omitempty,min=8"`
	FirstName   *string     `json:"first_name" validate:"omitempty,max=150"`
	LastName    *string     `json:"last_name" validate:"omitempty,max=150"`
	Address     *string     `json:"address" validate:"omitempty,max=255"`
	PhoneNumber *string     `json:"phone_number" validate:"omitempty,max=15"`
	Roles       []string    `json:"roles" validate:"omitempty,dive,oneof=customers staff stock_personnel shift_manager"`
	IsActive    *StrictBool `json:"is_active"`
}

// RegisterRequest entrada para el alta pública; el usuario queda con rol customers.
type RegisterRequest struct {
	Username    string `json:"username" validate:"required,min=3,max=150"`
	Email       string `json:"email" validate:"required,email"`
	Password    string `json:"password" validate:"required,min=8"`
	FirstName   string `json:"first_name" validate:"omitempty,max=150"`
	LastName    string `json:"last_name" validate:"omitempty,max=150"`
	Address     string `json:"address" validate:"omitempty,max=255"`
	PhoneNumber string `json:"phone_number" validate:"omitempty,max=15"`
}

// UserResponse salida de un usuario (sin password).
type UserResponse struct {
	ID          string    `json:"id"`
	Username    string    `json:"username"`
	Email       string    `json:"email"`
	FirstName   string    `json:"first_name"`
	LastName    string    `json:"last_name"`
	Address     string    `json:"address"`
	PhoneNumber string    `json:"phone_number"`
	Roles       []string  `json:"roles"`
	IsActive    bool      `json:"is_active"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// UserListResponse lista paginada de usuarios.
type UserListResponse struct {
	Items []UserResponse `json:"items"`
	Page  PageResponse   `json:"page"`
}

// LoginRequest entrada para login.
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// LoginResponse salida con token JWT.
type LoginResponse struct {
	Token string       `json:"token"`
	User  UserResponse `json:"user"`
}
