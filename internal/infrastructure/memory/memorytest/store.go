// Package memorytest implementa los repositorios y el TxRunner en memoria
// como doble de pruebas. Solo lo importan archivos _test.go.
// Una transacción trabaja sobre una copia del estado y la publica solo en Commit;
// las transacciones se serializan, lo que equivale a bloquear todas las filas.
package memorytest

import (
	"context"
	"fmt"
	"sync"

	"github.com/jhoicas/tienda-backoffice/internal/application/inventory"
	"github.com/jhoicas/tienda-backoffice/internal/application/ordering"
	"github.com/jhoicas/tienda-backoffice/internal/domain/entity"
	"github.com/jhoicas/tienda-backoffice/internal/domain/rbac"
	"github.com/jhoicas/tienda-backoffice/internal/domain/repository"
)

var (
	_ inventory.TxRunner = (*Store)(nil)
	_ ordering.TxRunner  = (*Store)(nil)
)

type state struct {
	categories map[string]entity.Category
	products   map[string]entity.Product
	orders     map[string]entity.Order
	items      map[string]entity.OrderItem
	users      map[string]entity.User
	movements  []entity.StockMovement
	grants     []rbac.Grant
}

func newState() *state {
	return &state{
		categories: map[string]entity.Category{},
		products:   map[string]entity.Product{},
		orders:     map[string]entity.Order{},
		items:      map[string]entity.OrderItem{},
		users:      map[string]entity.User{},
	}
}

func (s *state) clone() *state {
	c := newState()
	for k, v := range s.categories {
		c.categories[k] = v
	}
	for k, v := range s.products {
		c.products[k] = v
	}
	for k, v := range s.orders {
		c.orders[k] = v
	}
	for k, v := range s.items {
		c.items[k] = v
	}
	for k, v := range s.users {
		v.Roles = append([]string(nil), v.Roles...)
		c.users[k] = v
	}
	c.movements = append([]entity.StockMovement(nil), s.movements...)
	c.grants = append([]rbac.Grant(nil), s.grants...)
	return c
}

type fault struct {
	remaining int
	err       error
}

// Store estado en memoria compartido por los repositorios.
type Store struct {
	mu     sync.Mutex
	st     *state
	faults map[string]*fault
}

// NewStore crea un store vacío.
func NewStore() *Store {
	return &Store{st: newState(), faults: map[string]*fault{}}
}

// FailAfter hace que la operación op (ej. "orderitem.delete") falle con err
// después de n llamadas exitosas. Sirve para simular fallos a mitad de transacción.
func (s *Store) FailAfter(op string, n int, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.faults[op] = &fault{remaining: n, err: err}
}

// ClearFaults elimina los fallos inyectados.
func (s *Store) ClearFaults() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.faults = map[string]*fault{}
}

// check se llama con el lock tomado (directo o vía transacción).
func (s *Store) check(op string) error {
	f, ok := s.faults[op]
	if !ok {
		return nil
	}
	if f.remaining > 0 {
		f.remaining--
		return nil
	}
	return fmt.Errorf("memory: %s: %w", op, f.err)
}

// view acceso a un estado: el publicado (con lock por operación) o la copia de una transacción.
type view struct {
	store  *Store
	st     func() *state
	locker sync.Locker
}

func (s *Store) direct() *view {
	return &view{store: s, st: func() *state { return s.st }, locker: &s.mu}
}

type noLock struct{}

func (noLock) Lock()   {}
func (noLock) Unlock() {}

// Run ejecuta fn en una transacción con repos de productos y movimientos.
func (s *Store) Run(ctx context.Context, fn func(
	productRepo repository.ProductRepository,
	movRepo repository.StockMovementRepository,
) error) error {
	return s.tx(ctx, func(v *view) error {
		return fn(&ProductRepo{v: v}, &StockMovementRepo{v: v})
	})
}

// RunOrders ejecuta fn en una transacción con los repos de pedidos e inventario.
func (s *Store) RunOrders(ctx context.Context, fn func(
	productRepo repository.ProductRepository,
	orderRepo repository.OrderRepository,
	itemRepo repository.OrderItemRepository,
	movRepo repository.StockMovementRepository,
) error) error {
	return s.tx(ctx, func(v *view) error {
		return fn(&ProductRepo{v: v}, &OrderRepo{v: v}, &OrderItemRepo{v: v}, &StockMovementRepo{v: v})
	})
}

func (s *Store) tx(ctx context.Context, fn func(v *view) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	work := s.st.clone()
	v := &view{store: s, st: func() *state { return work }, locker: noLock{}}
	if err := fn(v); err != nil {
		return err
	}
	s.st = work
	return nil
}

// Repositorios sobre el estado publicado.

func (s *Store) Categories() *CategoryRepo { return &CategoryRepo{v: s.direct()} }
func (s *Store) Products() *ProductRepo { return &ProductRepo{v: s.direct()} }
func (s *Store) Orders() *OrderRepo { return &OrderRepo{v: s.direct()} }
func (s *Store) OrderItems() *OrderItemRepo { return &OrderItemRepo{v: s.direct()} }
func (s *Store) Movements() *StockMovementRepo { return &StockMovementRepo{v: s.direct()} }
func (s *Store) Users() *UserRepo { return &UserRepo{v: s.direct()} }
func (s *Store) Grants() *GrantRepo { return &GrantRepo{v: s.direct()} }
