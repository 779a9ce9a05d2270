//go:build integration

package postgres_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	tcpostgres "github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"

	appinv "github.com/jhoicas/tienda-backoffice/internal/application/inventory"
	"github.com/jhoicas/tienda-backoffice/internal/application/ordering"
	"github.com/jhoicas/tienda-backoffice/internal/domain"
	"github.com/jhoicas/tienda-backoffice/internal/domain/entity"
	"github.com/jhoicas/tienda-backoffice/internal/domain/rbac"
	"github.com/jhoicas/tienda-backoffice/internal/infrastructure/postgres"
	"github.com/jhoicas/tienda-backoffice/pkg/config"
)

func setupDB(t *testing.T) *pgxpool.Pool {
	t.Helper()
	ctx := context.Background()

	pgContainer, err := tcpostgres.Run(ctx,
		"postgres:16-alpine",
		tcpostgres.WithDatabase("tienda_test"),
		tcpostgres.WithUsername("tienda"),
		tcpostgres.WithPassword("tienda"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(60*time.Second)),
	)
	require.NoError(t, err, "start postgres container")
	t.Cleanup(func() {
		if err := pgContainer.Terminate(ctx); err != nil {
			t.Logf("terminate container: %v", err)
		}
	})

	connStr, err := pgContainer.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)
	require.NoError(t, postgres.Migrate(connStr))
	// segunda vez: sin cambios no es error
	require.NoError(t, postgres.Migrate(connStr))

	pool, err := postgres.NewPool(ctx, config.DBConfig{DatabaseURL: connStr})
	require.NoError(t, err)
	t.Cleanup(pool.Close)
	return pool
}

type world struct {
	ctx    context.Context
	pool   *pgxpool.Pool
	engine *ordering.Engine
	user   *entity.User
}

func newWorld(t *testing.T) *world {
	t.Helper()
	pool := setupDB(t)
	ctx := context.Background()
	txRunner := postgres.NewTxRunner(pool)
	ledger := appinv.NewLedgerUseCase(txRunner, postgres.NewStockMovementRepository(pool))
	w := &world{
		ctx:    ctx,
		pool:   pool,
		engine: ordering.NewEngine(txRunner, ledger, postgres.NewOrderRepository(pool), postgres.NewOrderItemRepository(pool), 2),
	}
	now := time.Now()
	w.user = &entity.User{
		ID: uuid.New().String(), Username: "cliente", Email: "cliente@tienda.com", PasswordHash: "x",
		Roles: []string{"customers"}, IsActive: true, CreatedAt: now, UpdatedAt: now,
	}
	require.NoError(t, postgres.NewUserRepository(pool).Create(ctx, w.user))
	return w
}

func (w *world) product(t *testing.T, name string, stock int) *entity.Product {
	t.Helper()
	now := time.Now()
	cat := &entity.Category{ID: uuid.New().String(), Name: "cat-" + name, CreatedAt: now, UpdatedAt: now}
	require.NoError(t, postgres.NewCategoryRepository(w.pool).Create(w.ctx, cat))
	p := &entity.Product{
		ID: uuid.New().String(), Name: name, Price: decimal.RequireFromString("12.50"),
		CategoryID: cat.ID, Stock: stock, CreatedAt: now, UpdatedAt: now,
	}
	require.NoError(t, postgres.NewProductRepository(w.pool).Create(w.ctx, p))
	return p
}

func (w *world) order(t *testing.T) *entity.Order {
	t.Helper()
	o := &entity.Order{ID: uuid.New().String(), UserID: w.user.ID, CreatedAt: time.Now(), UpdatedAt: time.Now()}
	require.NoError(t, postgres.NewOrderRepository(w.pool).Create(w.ctx, o))
	return o
}

func (w *world) stock(t *testing.T, id string) int {
	t.Helper()
	p, err := postgres.NewProductRepository(w.pool).GetByID(w.ctx, id)
	require.NoError(t, err)
	require.NotNil(t, p)
	return p.Stock
}

func TestIntegration_MotorDePedidos(t *testing.T) {
	w := newWorld(t)
	p := w.product(t, "Camisa", 10)
	o := w.order(t)

	item, err := w.engine.CreateOrderItem(w.ctx, ordering.CreateOrderItemInput{OrderID: o.ID, ProductID: p.ID, Quantity: 4})
	require.NoError(t, err)
	assert.Equal(t, 6, w.stock(t, p.ID))
	assert.True(t, decimal.RequireFromString("50").Equal(item.Price))

	_, err = w.engine.CreateOrderItem(w.ctx, ordering.CreateOrderItemInput{OrderID: o.ID, ProductID: p.ID, Quantity: 7})
	assert.True(t, errors.Is(err, domain.ErrInsufficientStock))
	assert.Equal(t, 6, w.stock(t, p.ID))

	total, err := w.engine.GetTotalPrice(w.ctx, o.ID)
	require.NoError(t, err)
	assert.True(t, decimal.RequireFromString("50").Equal(total))

	err = postgres.NewProductRepository(w.pool).Delete(w.ctx, p.ID)
	assert.True(t, errors.Is(err, domain.ErrConflict), "producto referenciado")

	err = postgres.NewUserRepository(w.pool).Delete(w.ctx, w.user.ID)
	assert.True(t, errors.Is(err, domain.ErrConflict), "usuario con pedidos")

	require.NoError(t, w.engine.DeleteOrder(w.ctx, o.ID, w.user.ID))
	assert.Equal(t, 10, w.stock(t, p.ID))

	movs, err := postgres.NewStockMovementRepository(w.pool).ListByProduct(w.ctx, p.ID, 10, 0)
	require.NoError(t, err)
	require.Len(t, movs, 2)
	assert.Equal(t, entity.MovementOrderItemDeleted, movs[0].Reason)
	assert.Equal(t, item.ID, movs[0].OrderItemID)
}

func TestIntegration_TotalDePedidoVacio(t *testing.T) {
	w := newWorld(t)
	o := w.order(t)
	total, err := w.engine.GetTotalPrice(w.ctx, o.ID)
	require.NoError(t, err)
	assert.True(t, total.IsZero())
}

func TestIntegration_NombresUnicosSinMayusculas(t *testing.T) {
	w := newWorld(t)
	w.product(t, "Gorra", 1)

	cats := postgres.NewCategoryRepository(w.pool)
	got, err := cats.GetByName(w.ctx, "CAT-GORRA")
	require.NoError(t, err)
	require.NotNil(t, got)

	err = cats.Create(w.ctx, &entity.Category{ID: uuid.New().String(), Name: "Cat-Gorra", CreatedAt: time.Now(), UpdatedAt: time.Now()})
	assert.True(t, errors.Is(err, domain.ErrDuplicate))
}

func TestIntegration_CascadaDeCategoria(t *testing.T) {
	w := newWorld(t)
	p := w.product(t, "Media", 3)

	require.NoError(t, postgres.NewCategoryRepository(w.pool).Delete(w.ctx, p.CategoryID))
	got, err := postgres.NewProductRepository(w.pool).GetByID(w.ctx, p.ID)
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestIntegration_UsuariosYRoles(t *testing.T) {
	w := newWorld(t)
	users := postgres.NewUserRepository(w.pool)

	got, err := users.GetByEmail(w.ctx, "CLIENTE@tienda.com")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, []string{"customers"}, got.Roles)

	got.Roles = []string{"staff", "stock_personnel"}
	got.UpdatedAt = time.Now()
	require.NoError(t, users.Update(w.ctx, got))
	again, err := users.GetByID(w.ctx, got.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{"staff", "stock_personnel"}, again.Roles)

	dup := &entity.User{ID: uuid.New().String(), Username: "otro", Email: "Cliente@Tienda.com", PasswordHash: "x"}
	assert.True(t, errors.Is(users.Create(w.ctx, dup), domain.ErrEmailAlreadyExists))
	dup = &entity.User{ID: uuid.New().String(), Username: "CLIENTE", Email: "otro@tienda.com", PasswordHash: "x"}
	assert.True(t, errors.Is(users.Create(w.ctx, dup), domain.ErrDuplicate))
}

func TestIntegration_TablaDePermisos(t *testing.T) {
	w := newWorld(t)
	grants := postgres.NewGrantRepository(w.pool)
	want := rbac.MustDefault().Grants()

	require.NoError(t, grants.ReplaceAll(w.ctx, want))
	require.NoError(t, grants.ReplaceAll(w.ctx, want))

	got, err := grants.ListAll(w.ctx)
	require.NoError(t, err)
	reg, err := rbac.NewRegistryFromGrants(got)
	require.NoError(t, err)
	assert.Equal(t, want, reg.Grants())
}
