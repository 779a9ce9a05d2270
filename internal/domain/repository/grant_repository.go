package repository

import (
	"context"

	"github.com/jhoicas/tienda-backoffice/internal/domain/rbac"
)

// GrantRepository persiste la tabla de permisos que carga el seeder.
type GrantRepository interface {
	ListAll(ctx context.Context) ([]rbac.Grant, error)
	// ReplaceAll sustituye la tabla completa de forma atómica (idempotente).
	ReplaceAll(ctx context.Context, grants []rbac.Grant) error
}
