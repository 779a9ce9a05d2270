package authz

import (
	"context"

	"github.com/jhoicas/tienda-backoffice/internal/domain"
	"github.com/jhoicas/tienda-backoffice/internal/domain/rbac"
	"github.com/jhoicas/tienda-backoffice/internal/domain/repository"
)

// OrderOwner resuelve el dueño de un pedido (orders.user_id).
func OrderOwner(orders repository.OrderRepository) OwnerResolver {
	return OwnerResolverFunc(func(ctx context.Context, id string) (string, error) {
		o, err := orders.GetByID(ctx, id)
		if err != nil {
			return "", err
		}
		if o == nil {
			return "", domain.ErrNotFound
		}
		return o.UserID, nil
	})
}

// OrderItemOwner resuelve el dueño de un ítem a través de su pedido.
func OrderItemOwner(items repository.OrderItemRepository) OwnerResolver {
	return OwnerResolverFunc(func(ctx context.Context, id string) (string, error) {
		owner, err := items.OwnerOf(ctx, id)
		if err != nil {
			return "", err
		}
		if owner == "" {
			return "", domain.ErrNotFound
		}
		return owner, nil
	})
}

// RegisterStoreResolvers registra los resolvers de pedidos e ítems.
func (g *Gate) RegisterStoreResolvers(orders repository.OrderRepository, items repository.OrderItemRepository) {
	g.RegisterResolver(rbac.ResourceOrder, OrderOwner(orders))
	g.RegisterResolver(rbac.ResourceOrderItem, OrderItemOwner(items))
}
