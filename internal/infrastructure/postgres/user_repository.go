package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/tienda-backoffice/internal/domain"
	"github.com/jhoicas/tienda-backoffice/internal/domain/entity"
	"github.com/jhoicas/tienda-backoffice/internal/domain/repository"
)

var _ repository.UserRepository = (*UserRepo)(nil)

const userSelect = `
	SELECT u.id, u.username, u.email, u.password_hash, u.first_name, u.last_name, u.address,
	       u.phone_number, u.is_active, u.created_at, u.updated_at,
	       COALESCE(array_agg(r.role ORDER BY r.role) FILTER (WHERE r.role IS NOT NULL), '{}')
	FROM users u
	LEFT JOIN user_roles r ON r.user_id = u.id`

// UserRepo implementación del puerto UserRepository sobre PostgreSQL.
// Los roles viven en user_roles y se escriben en la misma transacción que el usuario.
type UserRepo struct {
	q Querier
}

// NewUserRepository construye el adaptador de persistencia para usuarios.
func NewUserRepository(q Querier) *UserRepo {
	return &UserRepo{q: q}
}

func scanUser(s scanner) (*entity.User, error) {
	var u entity.User
	err := s.Scan(&u.ID, &u.Username, &u.Email, &u.PasswordHash, &u.FirstName, &u.LastName, &u.Address,
		&u.PhoneNumber, &u.IsActive, &u.CreatedAt, &u.UpdatedAt, &u.Roles)
	if err != nil {
		return nil, err
	}
	return &u, nil
}

// userWriteErr distingue email y username duplicados por el nombre del índice.
func userWriteErr(err error) error {
	if code, constraint := pgCode(err); code == "23505" {
		if constraint == "users_email_key" {
			return domain.ErrEmailAlreadyExists
		}
		return domain.ErrDuplicate
	}
	return writeErr(err)
}

// Create persiste un nuevo usuario con sus roles.
func (r *UserRepo) Create(ctx context.Context, u *entity.User) error {
	return r.inTx(ctx, func(tx pgx.Tx) error {
		_, err := tx.Exec(ctx, `
			INSERT INTO users (id, username, email, password_hash, first_name, last_name, address,
			                   phone_number, is_active, created_at, updated_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`,
			u.ID, u.Username, u.Email, u.PasswordHash, u.FirstName, u.LastName, u.Address,
			u.PhoneNumber, u.IsActive, u.CreatedAt, u.UpdatedAt,
		)
		if err != nil {
			if mapped := userWriteErr(err); mapped != nil {
				return mapped
			}
			return fmt.Errorf("insert user: %w", err)
		}
		return writeRoles(ctx, tx, u.ID, u.Roles)
	})
}

func (r *UserRepo) getOne(ctx context.Context, where string, arg any) (*entity.User, error) {
	u, err := scanUser(r.q.QueryRow(ctx, userSelect+` WHERE `+where+` GROUP BY u.id`, arg))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get user: %w", err)
	}
	return u, nil
}

// GetByID obtiene un usuario por ID.
func (r *UserRepo) GetByID(ctx context.Context, id string) (*entity.User, error) {
	return r.getOne(ctx, `u.id = $1`, id)
}

// GetByEmail obtiene un usuario por email (sin distinguir mayúsculas).
func (r *UserRepo) GetByEmail(ctx context.Context, email string) (*entity.User, error) {
	return r.getOne(ctx, `lower(u.email) = lower($1)`, email)
}

// GetByUsername obtiene un usuario por username (sin distinguir mayúsculas).
func (r *UserRepo) GetByUsername(ctx context.Context, username string) (*entity.User, error) {
	return r.getOne(ctx, `lower(u.username) = lower($1)`, username)
}

// Update actualiza el usuario y reemplaza sus roles.
func (r *UserRepo) Update(ctx context.Context, u *entity.User) error {
	return r.inTx(ctx, func(tx pgx.Tx) error {
		cmd, err := tx.Exec(ctx, `
			UPDATE users SET email = $2, password_hash = $3, first_name = $4, last_name = $5,
			       address = $6, phone_number = $7, is_active = $8, updated_at = $9
			WHERE id = $1`,
			u.ID, u.Email, u.PasswordHash, u.FirstName, u.LastName, u.Address, u.PhoneNumber,
			u.IsActive, u.UpdatedAt,
		)
		if err != nil {
			if mapped := userWriteErr(err); mapped != nil {
				return mapped
			}
			return fmt.Errorf("update user: %w", err)
		}
		if cmd.RowsAffected() == 0 {
			return domain.ErrNotFound
		}
		if _, err := tx.Exec(ctx, `DELETE FROM user_roles WHERE user_id = $1`, u.ID); err != nil {
			return fmt.Errorf("clear user roles: %w", err)
		}
		return writeRoles(ctx, tx, u.ID, u.Roles)
	})
}

// List lista usuarios ordenados por username.
func (r *UserRepo) List(ctx context.Context, limit, offset int) ([]*entity.User, error) {
	rows, err := r.q.Query(ctx, userSelect+`
		GROUP BY u.id ORDER BY u.username LIMIT $1 OFFSET $2`, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	defer rows.Close()
	var list []*entity.User
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, fmt.Errorf("scan user: %w", err)
		}
		list = append(list, u)
	}
	return list, rows.Err()
}

// Delete elimina un usuario. Con pedidos (ON DELETE RESTRICT) devuelve ErrConflict.
func (r *UserRepo) Delete(ctx context.Context, id string) error {
	_, err := r.q.Exec(ctx, `DELETE FROM users WHERE id = $1`, id)
	if err != nil {
		if isForeignKeyViolation(err) {
			return domain.ErrConflict
		}
		return fmt.Errorf("delete user: %w", err)
	}
	return nil
}

func (r *UserRepo) inTx(ctx context.Context, fn func(tx pgx.Tx) error) error {
	tx, err := r.q.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()
	if err := fn(tx); err != nil {
		return err
	}
	return tx.Commit(ctx)
}

func writeRoles(ctx context.Context, tx pgx.Tx, userID string, roles []string) error {
	for _, role := range roles {
		if _, err := tx.Exec(ctx,
			`INSERT INTO user_roles (user_id, role) VALUES ($1, $2) ON CONFLICT DO NOTHING`,
			userID, role,
		); err != nil {
			return fmt.Errorf("insert user role: %w", err)
		}
	}
	return nil
}
