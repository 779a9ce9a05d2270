package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/tienda-backoffice/internal/domain/rbac"
	"github.com/jhoicas/tienda-backoffice/internal/domain/repository"
)

var _ repository.GrantRepository = (*GrantRepo)(nil)

// GrantRepo tabla role_permissions.
type GrantRepo struct {
	q Querier
}

// NewGrantRepository construye el adaptador.
func NewGrantRepository(q Querier) *GrantRepo {
	return &GrantRepo{q: q}
}

// ListAll devuelve todas las filas de permisos.
func (r *GrantRepo) ListAll(ctx context.Context) ([]rbac.Grant, error) {
	rows, err := r.q.Query(ctx, `
		SELECT role, resource, action, own_only, fields
		FROM role_permissions ORDER BY role, resource, action`)
	if err != nil {
		return nil, fmt.Errorf("list role permissions: %w", err)
	}
	defer rows.Close()
	var out []rbac.Grant
	for rows.Next() {
		var (
			g                      rbac.Grant
			role, resource, action string
		)
		if err := rows.Scan(&role, &resource, &action, &g.OwnOnly, &g.Fields); err != nil {
			return nil, fmt.Errorf("scan role permission: %w", err)
		}
		g.Role, g.Resource, g.Action = rbac.Role(role), rbac.Resource(resource), rbac.Action(action)
		if len(g.Fields) == 0 {
			g.Fields = nil
		}
		out = append(out, g)
	}
	return out, rows.Err()
}

// ReplaceAll sustituye la tabla completa en una transacción (COPY para la carga).
func (r *GrantRepo) ReplaceAll(ctx context.Context, grants []rbac.Grant) error {
	tx, err := r.q.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if _, err := tx.Exec(ctx, `DELETE FROM role_permissions`); err != nil {
		return fmt.Errorf("clear role permissions: %w", err)
	}
	_, err = tx.CopyFrom(ctx,
		pgx.Identifier{"role_permissions"},
		[]string{"role", "resource", "action", "own_only", "fields"},
		pgx.CopyFromSlice(len(grants), func(i int) ([]any, error) {
			g := grants[i]
			fields := g.Fields
			if fields == nil {
				fields = []string{}
			}
			return []any{string(g.Role), string(g.Resource), string(g.Action), g.OwnOnly, fields}, nil
		}),
	)
	if err != nil {
		return fmt.Errorf("copy role permissions: %w", err)
	}
	return tx.Commit(ctx)
}
