package memorytest

import (
	"context"
	"sort"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/tienda-backoffice/internal/domain"
	"github.com/jhoicas/tienda-backoffice/internal/domain/entity"
	"github.com/jhoicas/tienda-backoffice/internal/domain/rbac"
	"github.com/jhoicas/tienda-backoffice/internal/domain/repository"
)

var (
	_ repository.CategoryRepository      = (*CategoryRepo)(nil)
	_ repository.ProductRepository       = (*ProductRepo)(nil)
	_ repository.OrderRepository         = (*OrderRepo)(nil)
	_ repository.OrderItemRepository     = (*OrderItemRepo)(nil)
	_ repository.StockMovementRepository = (*StockMovementRepo)(nil)
	_ repository.UserRepository          = (*UserRepo)(nil)
	_ repository.GrantRepository         = (*GrantRepo)(nil)
)

func (v *view) do(op string, fn func(st *state) error) error {
	v.locker.Lock()
	defer v.locker.Unlock()
	if op != "" {
		if err := v.store.check(op); err != nil {
			return err
		}
	}
	return fn(v.st())
}

func page[T any](list []T, limit, offset int) []T {
	if offset >= len(list) {
		return nil
	}
	list = list[offset:]
	if limit > 0 && limit < len(list) {
		list = list[:limit]
	}
	return list
}

// ── Categorías ────────────────────────────────────────────────────────────────

// CategoryRepo repositorio de categorías en memoria.
type CategoryRepo struct{ v *view }

func (r *CategoryRepo) Create(_ context.Context, c *entity.Category) error {
	return r.v.do("category.create", func(st *state) error {
		for _, x := range st.categories {
			if strings.EqualFold(x.Name, c.Name) {
				return domain.ErrDuplicate
			}
		}
		st.categories[c.ID] = *c
		return nil
	})
}

func (r *CategoryRepo) GetByID(_ context.Context, id string) (*entity.Category, error) {
	var out *entity.Category
	err := r.v.do("", func(st *state) error {
		if c, ok := st.categories[id]; ok {
			out = &c
		}
		return nil
	})
	return out, err
}

func (r *CategoryRepo) GetByName(_ context.Context, name string) (*entity.Category, error) {
	var out *entity.Category
	err := r.v.do("", func(st *state) error {
		for _, c := range st.categories {
			if strings.EqualFold(c.Name, name) {
				c := c
				out = &c
			}
		}
		return nil
	})
	return out, err
}

func (r *CategoryRepo) Update(_ context.Context, c *entity.Category) error {
	return r.v.do("category.update", func(st *state) error {
		if _, ok := st.categories[c.ID]; !ok {
			return domain.ErrNotFound
		}
		for _, x := range st.categories {
			if x.ID != c.ID && strings.EqualFold(x.Name, c.Name) {
				return domain.ErrDuplicate
			}
		}
		st.categories[c.ID] = *c
		return nil
	})
}

func (r *CategoryRepo) List(_ context.Context, limit, offset int) ([]*entity.Category, error) {
	var out []*entity.Category
	err := r.v.do("", func(st *state) error {
		for _, c := range st.categories {
			c := c
			out = append(out, &c)
		}
		return nil
	})
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return page(out, limit, offset), err
}

// Delete elimina la categoría y sus productos; falla con ErrConflict si algún producto tiene ítems.
func (r *CategoryRepo) Delete(_ context.Context, id string) error {
	return r.v.do("category.delete", func(st *state) error {
		for _, p := range st.products {
			if p.CategoryID == id && referenced(st, p.ID) {
				return domain.ErrConflict
			}
		}
		for pid, p := range st.products {
			if p.CategoryID == id {
				delete(st.products, pid)
			}
		}
		delete(st.categories, id)
		return nil
	})
}

// ── Productos ─────────────────────────────────────────────────────────────────

// ProductRepo repositorio de productos en memoria.
type ProductRepo struct{ v *view }

func referenced(st *state, productID string) bool {
	for _, it := range st.items {
		if it.ProductID == productID {
			return true
		}
	}
	return false
}

func (r *ProductRepo) Create(_ context.Context, p *entity.Product) error {
	return r.v.do("product.create", func(st *state) error {
		if _, ok := st.categories[p.CategoryID]; !ok {
			return domain.ErrConflict
		}
		for _, x := range st.products {
			if strings.EqualFold(x.Name, p.Name) {
				return domain.ErrDuplicate
			}
		}
		st.products[p.ID] = *p
		return nil
	})
}

func (r *ProductRepo) GetByID(_ context.Context, id string) (*entity.Product, error) {
	var out *entity.Product
	err := r.v.do("", func(st *state) error {
		if p, ok := st.products[id]; ok {
			out = &p
		}
		return nil
	})
	return out, err
}

func (r *ProductRepo) GetByName(_ context.Context, name string) (*entity.Product, error) {
	var out *entity.Product
	err := r.v.do("", func(st *state) error {
		for _, p := range st.products {
			if strings.EqualFold(p.Name, name) {
				p := p
				out = &p
			}
		}
		return nil
	})
	return out, err
}

func (r *ProductRepo) GetForUpdate(ctx context.Context, id string) (*entity.Product, error) {
	return r.GetByID(ctx, id)
}

func (r *ProductRepo) GetByNameForUpdate(ctx context.Context, name string) (*entity.Product, error) {
	return r.GetByName(ctx, name)
}

// Update conserva el stock almacenado.
func (r *ProductRepo) Update(_ context.Context, p *entity.Product) error {
	return r.v.do("product.update", func(st *state) error {
		cur, ok := st.products[p.ID]
		if !ok {
			return domain.ErrNotFound
		}
		if _, ok := st.categories[p.CategoryID]; !ok {
			return domain.ErrConflict
		}
		for _, x := range st.products {
			if x.ID != p.ID && strings.EqualFold(x.Name, p.Name) {
				return domain.ErrDuplicate
			}
		}
		next := *p
		next.Stock = cur.Stock
		st.products[p.ID] = next
		return nil
	})
}

func (r *ProductRepo) UpdateStock(_ context.Context, productID string, stock int) error {
	return r.v.do("product.update_stock", func(st *state) error {
		p, ok := st.products[productID]
		if !ok {
			return domain.ErrNotFound
		}
		if stock < 0 {
			return domain.ErrConflict
		}
		p.Stock = stock
		st.products[productID] = p
		return nil
	})
}

func (r *ProductRepo) List(_ context.Context, f repository.ProductFilter) ([]*entity.Product, error) {
	var out []*entity.Product
	err := r.v.do("", func(st *state) error {
		for _, p := range st.products {
			if f.CategoryID != "" && p.CategoryID != f.CategoryID {
				continue
			}
			p := p
			out = append(out, &p)
		}
		return nil
	})
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return page(out, f.Limit, f.Offset), err
}

func (r *ProductRepo) IsReferenced(_ context.Context, productID string) (bool, error) {
	var ref bool
	err := r.v.do("", func(st *state) error {
		ref = referenced(st, productID)
		return nil
	})
	return ref, err
}

func (r *ProductRepo) Delete(_ context.Context, id string) error {
	return r.v.do("product.delete", func(st *state) error {
		if referenced(st, id) {
			return domain.ErrConflict
		}
		delete(st.products, id)
		return nil
	})
}

// ── Pedidos ───────────────────────────────────────────────────────────────────

// OrderRepo repositorio de pedidos en memoria.
type OrderRepo struct{ v *view }

func (r *OrderRepo) Create(_ context.Context, o *entity.Order) error {
	return r.v.do("order.create", func(st *state) error {
		st.orders[o.ID] = *o
		return nil
	})
}

func (r *OrderRepo) GetByID(_ context.Context, id string) (*entity.Order, error) {
	var out *entity.Order
	err := r.v.do("", func(st *state) error {
		if o, ok := st.orders[id]; ok {
			out = &o
		}
		return nil
	})
	return out, err
}

func (r *OrderRepo) GetForUpdate(ctx context.Context, id string) (*entity.Order, error) {
	return r.GetByID(ctx, id)
}

func (r *OrderRepo) List(_ context.Context, f repository.OrderFilter) ([]*entity.Order, error) {
	var out []*entity.Order
	err := r.v.do("", func(st *state) error {
		for _, o := range st.orders {
			if f.UserID != "" && o.UserID != f.UserID {
				continue
			}
			o := o
			out = append(out, &o)
		}
		return nil
	})
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.After(out[j].CreatedAt)
		}
		return out[i].ID < out[j].ID
	})
	return page(out, f.Limit, f.Offset), err
}

// Update persiste IsPaid y UpdatedAt.
func (r *OrderRepo) Update(_ context.Context, o *entity.Order) error {
	return r.v.do("order.update", func(st *state) error {
		cur, ok := st.orders[o.ID]
		if !ok {
			return domain.ErrNotFound
		}
		cur.IsPaid = o.IsPaid
		cur.UpdatedAt = o.UpdatedAt
		st.orders[o.ID] = cur
		return nil
	})
}

// Delete elimina el pedido; sus ítems se borran en cascada como en la BD.
func (r *OrderRepo) Delete(_ context.Context, id string) error {
	return r.v.do("order.delete", func(st *state) error {
		for iid, it := range st.items {
			if it.OrderID == id {
				delete(st.items, iid)
			}
		}
		delete(st.orders, id)
		return nil
	})
}

// ── Ítems ─────────────────────────────────────────────────────────────────────

// OrderItemRepo repositorio de ítems en memoria.
type OrderItemRepo struct{ v *view }

func (r *OrderItemRepo) Create(_ context.Context, it *entity.OrderItem) error {
	return r.v.do("orderitem.create", func(st *state) error {
		if _, ok := st.orders[it.OrderID]; !ok {
			return domain.ErrConflict
		}
		if _, ok := st.products[it.ProductID]; !ok {
			return domain.ErrConflict
		}
		st.items[it.ID] = *it
		return nil
	})
}

func (r *OrderItemRepo) GetByID(_ context.Context, id string) (*entity.OrderItem, error) {
	var out *entity.OrderItem
	err := r.v.do("", func(st *state) error {
		if it, ok := st.items[id]; ok {
			out = &it
		}
		return nil
	})
	return out, err
}

func (r *OrderItemRepo) GetForUpdate(ctx context.Context, id string) (*entity.OrderItem, error) {
	return r.GetByID(ctx, id)
}

func sortItems(list []*entity.OrderItem) {
	sort.Slice(list, func(i, j int) bool {
		if !list[i].CreatedAt.Equal(list[j].CreatedAt) {
			return list[i].CreatedAt.Before(list[j].CreatedAt)
		}
		return list[i].ID < list[j].ID
	})
}

func (r *OrderItemRepo) ListByOrder(_ context.Context, orderID string) ([]*entity.OrderItem, error) {
	var out []*entity.OrderItem
	err := r.v.do("", func(st *state) error {
		for _, it := range st.items {
			if it.OrderID == orderID {
				it := it
				out = append(out, &it)
			}
		}
		return nil
	})
	sortItems(out)
	return out, err
}

func (r *OrderItemRepo) List(_ context.Context, f repository.OrderFilter) ([]*entity.OrderItem, error) {
	var out []*entity.OrderItem
	err := r.v.do("", func(st *state) error {
		for _, it := range st.items {
			if f.UserID != "" && st.orders[it.OrderID].UserID != f.UserID {
				continue
			}
			it := it
			out = append(out, &it)
		}
		return nil
	})
	sortItems(out)
	return page(out, f.Limit, f.Offset), err
}

func (r *OrderItemRepo) OwnerOf(_ context.Context, itemID string) (string, error) {
	var owner string
	err := r.v.do("", func(st *state) error {
		if it, ok := st.items[itemID]; ok {
			owner = st.orders[it.OrderID].UserID
		}
		return nil
	})
	return owner, err
}

func (r *OrderItemRepo) Update(_ context.Context, it *entity.OrderItem) error {
	return r.v.do("orderitem.update", func(st *state) error {
		if _, ok := st.items[it.ID]; !ok {
			return domain.ErrNotFound
		}
		st.items[it.ID] = *it
		return nil
	})
}

func (r *OrderItemRepo) Delete(_ context.Context, id string) error {
	return r.v.do("orderitem.delete", func(st *state) error {
		delete(st.items, id)
		return nil
	})
}

func (r *OrderItemRepo) SumPrice(_ context.Context, orderID string) (decimal.Decimal, error) {
	total := decimal.Zero
	err := r.v.do("", func(st *state) error {
		for _, it := range st.items {
			if it.OrderID == orderID {
				total = total.Add(it.Price)
			}
		}
		return nil
	})
	return total, err
}

// ── Movimientos ───────────────────────────────────────────────────────────────

// StockMovementRepo registro de movimientos en memoria.
type StockMovementRepo struct{ v *view }

func (r *StockMovementRepo) Create(_ context.Context, m *entity.StockMovement) error {
	return r.v.do("movement.create", func(st *state) error {
		st.movements = append(st.movements, *m)
		return nil
	})
}

// ListByProduct devuelve los movimientos del más reciente al más antiguo.
func (r *StockMovementRepo) ListByProduct(_ context.Context, productID string, limit, offset int) ([]*entity.StockMovement, error) {
	var out []*entity.StockMovement
	err := r.v.do("", func(st *state) error {
		for i := len(st.movements) - 1; i >= 0; i-- {
			if m := st.movements[i]; m.ProductID == productID {
				out = append(out, &m)
			}
		}
		return nil
	})
	return page(out, limit, offset), err
}

// ── Usuarios ──────────────────────────────────────────────────────────────────

// UserRepo repositorio de usuarios en memoria.
type UserRepo struct{ v *view }

func checkUserUnique(st *state, u *entity.User) error {
	for _, x := range st.users {
		if x.ID == u.ID {
			continue
		}
		if strings.EqualFold(x.Email, u.Email) {
			return domain.ErrEmailAlreadyExists
		}
		if strings.EqualFold(x.Username, u.Username) {
			return domain.ErrDuplicate
		}
	}
	return nil
}

func copyUser(u entity.User) *entity.User {
	u.Roles = append([]string(nil), u.Roles...)
	return &u
}

func (r *UserRepo) Create(_ context.Context, u *entity.User) error {
	return r.v.do("user.create", func(st *state) error {
		if err := checkUserUnique(st, u); err != nil {
			return err
		}
		st.users[u.ID] = *copyUser(*u)
		return nil
	})
}

func (r *UserRepo) find(match func(u entity.User) bool) (*entity.User, error) {
	var out *entity.User
	err := r.v.do("", func(st *state) error {
		for _, u := range st.users {
			if match(u) {
				out = copyUser(u)
			}
		}
		return nil
	})
	return out, err
}

func (r *UserRepo) GetByID(_ context.Context, id string) (*entity.User, error) {
	return r.find(func(u entity.User) bool { return u.ID == id })
}

func (r *UserRepo) GetByEmail(_ context.Context, email string) (*entity.User, error) {
	return r.find(func(u entity.User) bool { return strings.EqualFold(u.Email, email) })
}

func (r *UserRepo) GetByUsername(_ context.Context, username string) (*entity.User, error) {
	return r.find(func(u entity.User) bool { return strings.EqualFold(u.Username, username) })
}

func (r *UserRepo) Update(_ context.Context, u *entity.User) error {
	return r.v.do("user.update", func(st *state) error {
		if _, ok := st.users[u.ID]; !ok {
			return domain.ErrNotFound
		}
		if err := checkUserUnique(st, u); err != nil {
			return err
		}
		st.users[u.ID] = *copyUser(*u)
		return nil
	})
}

func (r *UserRepo) List(_ context.Context, limit, offset int) ([]*entity.User, error) {
	var out []*entity.User
	err := r.v.do("", func(st *state) error {
		for _, u := range st.users {
			out = append(out, copyUser(u))
		}
		return nil
	})
	sort.Slice(out, func(i, j int) bool { return out[i].Username < out[j].Username })
	return page(out, limit, offset), err
}

// Delete falla con ErrConflict si el usuario tiene pedidos.
func (r *UserRepo) Delete(_ context.Context, id string) error {
	return r.v.do("user.delete", func(st *state) error {
		for _, o := range st.orders {
			if o.UserID == id {
				return domain.ErrConflict
			}
		}
		delete(st.users, id)
		return nil
	})
}

// ── Permisos ──────────────────────────────────────────────────────────────────

// GrantRepo tabla de permisos en memoria.
type GrantRepo struct{ v *view }

func (r *GrantRepo) ListAll(_ context.Context) ([]rbac.Grant, error) {
	var out []rbac.Grant
	err := r.v.do("", func(st *state) error {
		out = append(out, st.grants...)
		return nil
	})
	return out, err
}

func (r *GrantRepo) ReplaceAll(_ context.Context, grants []rbac.Grant) error {
	return r.v.do("grant.replace", func(st *state) error {
		st.grants = append([]rbac.Grant(nil), grants...)
		return nil
	})
}
