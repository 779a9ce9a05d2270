package inventory_test

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/tienda-backoffice/internal/application/dto"
	"github.com/jhoicas/tienda-backoffice/internal/application/inventory"
	"github.com/jhoicas/tienda-backoffice/internal/domain"
	"github.com/jhoicas/tienda-backoffice/internal/domain/entity"
	"github.com/jhoicas/tienda-backoffice/internal/infrastructure/memory/memorytest"
)

func seed(t *testing.T, store *memorytest.Store, stock int) *entity.Product {
	t.Helper()
	ctx := context.Background()
	cat := &entity.Category{ID: uuid.New().String(), Name: "General"}
	require.NoError(t, store.Categories().Create(ctx, cat))
	p := &entity.Product{ID: uuid.New().String(), Name: "Lápiz", Price: decimal.NewFromInt(1), CategoryID: cat.ID, Stock: stock}
	require.NoError(t, store.Products().Create(ctx, p))
	return p
}

func TestAdjust_RegistraMovimiento(t *testing.T) {
	store := memorytest.NewStore()
	uc := inventory.NewLedgerUseCase(store, store.Movements())
	p := seed(t, store, 5)

	got, err := uc.Adjust(context.Background(), p.ID, 12, "user-1")
	require.NoError(t, err)
	assert.Equal(t, 12, got.Stock)

	list, err := uc.ListMovements(context.Background(), p.ID, dto.PageRequest{})
	require.NoError(t, err)
	require.Len(t, list.Items, 1)
	assert.Equal(t, entity.MovementAdjustment, list.Items[0].Reason)
	assert.Equal(t, 7, list.Items[0].Delta)
	assert.Equal(t, 12, list.Items[0].StockAfter)
	assert.Equal(t, "user-1", list.Items[0].CreatedBy)
	assert.Equal(t, 20, list.Page.Limit)
}

func TestAdjust_MismoStockNoRegistraNada(t *testing.T) {
	store := memorytest.NewStore()
	uc := inventory.NewLedgerUseCase(store, store.Movements())
	p := seed(t, store, 5)

	_, err := uc.Adjust(context.Background(), p.ID, 5, "user-1")
	require.NoError(t, err)

	list, err := uc.ListMovements(context.Background(), p.ID, dto.PageRequest{})
	require.NoError(t, err)
	assert.Empty(t, list.Items)
}

func TestAdjust_Errores(t *testing.T) {
	store := memorytest.NewStore()
	uc := inventory.NewLedgerUseCase(store, store.Movements())
	p := seed(t, store, 5)

	_, err := uc.Adjust(context.Background(), p.ID, -1, "user-1")
	assert.True(t, errors.Is(err, domain.ErrInvalidInput))

	_, err = uc.Adjust(context.Background(), uuid.New().String(), 3, "user-1")
	assert.True(t, errors.Is(err, domain.ErrNotFound))
}

func TestAdjust_FalloDelMovimientoRevierteElStock(t *testing.T) {
	store := memorytest.NewStore()
	uc := inventory.NewLedgerUseCase(store, store.Movements())
	p := seed(t, store, 5)

	boom := errors.New("fallo simulado")
	store.FailAfter("movement.create", 0, boom)
	_, err := uc.Adjust(context.Background(), p.ID, 9, "user-1")
	assert.True(t, errors.Is(err, boom))
	store.ClearFaults()

	got, err := store.Products().GetByID(context.Background(), p.ID)
	require.NoError(t, err)
	assert.Equal(t, 5, got.Stock)
}
