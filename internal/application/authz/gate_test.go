package authz_test

import (
	"bytes"
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/tienda-backoffice/internal/application/authz"
	"github.com/jhoicas/tienda-backoffice/internal/domain"
	"github.com/jhoicas/tienda-backoffice/internal/domain/entity"
	"github.com/jhoicas/tienda-backoffice/internal/domain/rbac"
	"github.com/jhoicas/tienda-backoffice/internal/infrastructure/memory/memorytest"
	"github.com/jhoicas/tienda-backoffice/pkg/logger"
)

const (
	userA   = "00000000-0000-0000-0000-00000000000a"
	userB   = "00000000-0000-0000-0000-00000000000b"
	orderA  = "10000000-0000-0000-0000-000000000001"
	itemA   = "20000000-0000-0000-0000-000000000001"
	missing = "99999999-0000-0000-0000-000000000000"
)

func newGate(t *testing.T, buf *bytes.Buffer) *authz.Gate {
	t.Helper()
	var log *logger.Logger
	if buf != nil {
		log = logger.NewWithWriter(buf, "debug")
	}
	g := authz.NewGate(rbac.MustDefault(), log)
	orders := map[string]string{orderA: userA}
	items := map[string]string{itemA: orderA}
	g.RegisterResolver(rbac.ResourceOrder, authz.OwnerResolverFunc(func(_ context.Context, id string) (string, error) {
		owner, ok := orders[id]
		if !ok {
			return "", domain.ErrNotFound
		}
		return owner, nil
	}))
	g.RegisterResolver(rbac.ResourceOrderItem, authz.OwnerResolverFunc(func(_ context.Context, id string) (string, error) {
		orderID, ok := items[id]
		if !ok {
			return "", domain.ErrNotFound
		}
		return orders[orderID], nil
	}))
	return g
}

func customer(id string) authz.Subject {
	return authz.NewSubject(id, []string{"customers"})
}

func TestAuthorize_SinPermisoEstatico(t *testing.T) {
	g := newGate(t, nil)
	d := g.Authorize(context.Background(), customer(userA), rbac.ResourceProduct, rbac.ActionDelete, "")
	assert.False(t, d.Allowed)
	assert.Equal(t, authz.ReasonNoPermission, d.Reason)
	assert.True(t, errors.Is(d.Err(), domain.ErrForbidden))
}

func TestAuthorize_DuenoAccedeASuPedido(t *testing.T) {
	g := newGate(t, nil)
	d := g.Authorize(context.Background(), customer(userA), rbac.ResourceOrder, rbac.ActionView, orderA)
	assert.True(t, d.Allowed)
	assert.True(t, d.Scoped)
	assert.NoError(t, d.Err())
}

func TestAuthorize_OpacidadDePropiedad(t *testing.T) {
	g := newGate(t, nil)
	ctx := context.Background()

	ajeno := g.Authorize(ctx, customer(userB), rbac.ResourceOrder, rbac.ActionView, orderA)
	inexistente := g.Authorize(ctx, customer(userB), rbac.ResourceOrder, rbac.ActionView, missing)
	malformado := g.Authorize(ctx, customer(userB), rbac.ResourceOrder, rbac.ActionView, "no-es-uuid")

	assert.Equal(t, ajeno, inexistente, "pedido ajeno e inexistente deben ser indistinguibles")
	assert.Equal(t, ajeno, malformado)
	assert.Equal(t, ajeno, g.Authorize(ctx, customer(userB), rbac.ResourceOrder, rbac.ActionView, "urn:uuid:"+orderA))
	assert.False(t, g.Authorize(ctx, customer(userA), rbac.ResourceOrder, rbac.ActionView, "{"+orderA+"}").Allowed)
	assert.Equal(t, authz.ReasonNotOwner, ajeno.Reason)
	assert.True(t, errors.Is(ajeno.Err(), domain.ErrNotOwner))
}

func TestAuthorize_ItemResuelveDuenoPorPedido(t *testing.T) {
	g := newGate(t, nil)
	ctx := context.Background()
	assert.True(t, g.Authorize(ctx, customer(userA), rbac.ResourceOrderItem, rbac.ActionChange, itemA).Allowed)
	assert.False(t, g.Authorize(ctx, customer(userB), rbac.ResourceOrderItem, rbac.ActionChange, itemA).Allowed)
}

func TestAuthorize_RolesPrivilegiadosNoVerificanDueno(t *testing.T) {
	g := newGate(t, nil)
	ctx := context.Background()

	manager := authz.NewSubject(userB, []string{"shift_manager"})
	d := g.Authorize(ctx, manager, rbac.ResourceOrder, rbac.ActionView, orderA)
	assert.True(t, d.Allowed)
	assert.False(t, d.Scoped)

	// instancia inexistente: el gate permite y el handler responde 404
	assert.True(t, g.Authorize(ctx, manager, rbac.ResourceOrder, rbac.ActionDelete, missing).Allowed)

	staff := authz.NewSubject(userB, []string{"staff"})
	assert.True(t, g.Authorize(ctx, staff, rbac.ResourceOrder, rbac.ActionView, orderA).Allowed)
	assert.False(t, g.Authorize(ctx, staff, rbac.ResourceOrder, rbac.ActionDelete, orderA).Allowed)
}

func TestAuthorize_IdempotenciaDeDenegacion(t *testing.T) {
	g := newGate(t, nil)
	ctx := context.Background()
	first := g.Authorize(ctx, customer(userB), rbac.ResourceOrder, rbac.ActionDelete, orderA)
	second := g.Authorize(ctx, customer(userB), rbac.ResourceOrder, rbac.ActionDelete, orderA)
	assert.Equal(t, first, second)
}

func TestAuthorize_RegistraDenegacionEnWarn(t *testing.T) {
	var buf bytes.Buffer
	g := newGate(t, &buf)
	g.Authorize(context.Background(), customer(userB), rbac.ResourceUser, rbac.ActionView, "")

	out := buf.String()
	require.NotEmpty(t, out)
	assert.Contains(t, out, `"level":"warn"`)
	assert.Contains(t, out, `"reason":"no_permission"`)
}

func TestAuthorizeChild_AgregarItemEnPedidoAjeno(t *testing.T) {
	g := newGate(t, nil)
	ctx := context.Background()
	assert.True(t, g.AuthorizeChild(ctx, customer(userA), rbac.ResourceOrderItem, rbac.ActionAdd, rbac.ResourceOrder, orderA).Allowed)

	d := g.AuthorizeChild(ctx, customer(userB), rbac.ResourceOrderItem, rbac.ActionAdd, rbac.ResourceOrder, orderA)
	assert.False(t, d.Allowed)
	assert.Equal(t, authz.ReasonNotOwner, d.Reason)

	staff := authz.NewSubject(userB, []string{"staff"})
	d = g.AuthorizeChild(ctx, staff, rbac.ResourceOrderItem, rbac.ActionAdd, rbac.ResourceOrder, orderA)
	assert.Equal(t, authz.ReasonNoPermission, d.Reason)
}

func TestScope(t *testing.T) {
	g := newGate(t, nil)
	assert.Equal(t, userA, g.Scope(customer(userA), rbac.ResourceOrder))
	assert.Equal(t, "", g.Scope(authz.NewSubject(userA, []string{"staff"}), rbac.ResourceOrder))
	assert.Equal(t, "", g.Scope(authz.NewSubject(userA, []string{"customers", "shift_manager"}), rbac.ResourceOrder))
}

func TestFieldsAllowed(t *testing.T) {
	g := newGate(t, nil)
	stock := authz.NewSubject(userA, []string{"stock_personnel"})
	assert.True(t, g.FieldsAllowed(stock, rbac.ResourceProduct, rbac.ActionChange, []string{"stock"}))
	assert.False(t, g.FieldsAllowed(stock, rbac.ResourceProduct, rbac.ActionChange, []string{"stock", "price"}))

	staff := authz.NewSubject(userA, []string{"staff"})
	assert.True(t, g.FieldsAllowed(staff, rbac.ResourceProduct, rbac.ActionChange, []string{"price"}))
}

func TestStoreResolvers_ConMemoria(t *testing.T) {
	store := memorytest.NewStore()
	ctx := context.Background()
	now := time.Now()
	require.NoError(t, store.Categories().Create(ctx, &entity.Category{ID: "c1", Name: "Ropa", CreatedAt: now, UpdatedAt: now}))
	require.NoError(t, store.Products().Create(ctx, &entity.Product{ID: "p1", Name: "Camisa", CategoryID: "c1", Stock: 5, CreatedAt: now, UpdatedAt: now}))
	require.NoError(t, store.Orders().Create(ctx, &entity.Order{ID: orderA, UserID: userA, CreatedAt: now, UpdatedAt: now}))
	require.NoError(t, store.OrderItems().Create(ctx, &entity.OrderItem{ID: itemA, OrderID: orderA, ProductID: "p1", Quantity: 1, CreatedAt: now, UpdatedAt: now}))

	g := authz.NewGate(rbac.MustDefault(), nil)
	g.RegisterStoreResolvers(store.Orders(), store.OrderItems())

	assert.True(t, g.Authorize(ctx, customer(userA), rbac.ResourceOrderItem, rbac.ActionChange, itemA).Allowed)
	assert.False(t, g.Authorize(ctx, customer(userB), rbac.ResourceOrderItem, rbac.ActionChange, itemA).Allowed)
	assert.False(t, g.Authorize(ctx, customer(userA), rbac.ResourceOrder, rbac.ActionView, missing).Allowed)
}
