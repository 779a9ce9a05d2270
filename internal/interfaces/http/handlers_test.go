package http_test

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/tienda-backoffice/internal/application/auth"
	"github.com/jhoicas/tienda-backoffice/internal/application/authz"
	"github.com/jhoicas/tienda-backoffice/internal/application/dto"
	appinv "github.com/jhoicas/tienda-backoffice/internal/application/inventory"
	"github.com/jhoicas/tienda-backoffice/internal/application/ordering"
	"github.com/jhoicas/tienda-backoffice/internal/application/usecase"
	"github.com/jhoicas/tienda-backoffice/internal/domain/entity"
	"github.com/jhoicas/tienda-backoffice/internal/domain/rbac"
	"github.com/jhoicas/tienda-backoffice/internal/infrastructure/memory/memorytest"
	"github.com/jhoicas/tienda-backoffice/internal/infrastructure/pdf"
	"github.com/jhoicas/tienda-backoffice/internal/infrastructure/xmlexport"
	apphttp "github.com/jhoicas/tienda-backoffice/internal/interfaces/http"
	"github.com/jhoicas/tienda-backoffice/pkg/money"
)

const (
	customerA  = "00000000-0000-0000-0000-00000000000a"
	customerB  = "00000000-0000-0000-0000-00000000000b"
	staffID    = "00000000-0000-0000-0000-00000000000c"
	stockID    = "00000000-0000-0000-0000-00000000000d"
	managerID  = "00000000-0000-0000-0000-00000000000e"
	categoryID = "c0000000-0000-0000-0000-000000000001"
	productID  = "b0000000-0000-0000-0000-000000000001"
	orderA     = "a0000000-0000-0000-0000-000000000001"
	missingID  = "99999999-0000-0000-0000-000000000000"
)

type fixture struct {
	t     *testing.T
	app   *fiber.App
	store *memorytest.Store
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	store := memorytest.NewStore()
	ctx := context.Background()
	now := time.Now()

	for id, name := range map[string]string{customerA: "ana", customerB: "beto"} {
		require.NoError(t, store.Users().Create(ctx, &entity.User{
			ID: id, Username: name, Email: name + "@tienda.com", PasswordHash: "x",
			Roles: []string{"customers"}, IsActive: true, CreatedAt: now, UpdatedAt: now,
		}))
	}
	require.NoError(t, store.Categories().Create(ctx, &entity.Category{ID: categoryID, Name: "Ropa", CreatedAt: now, UpdatedAt: now}))
	require.NoError(t, store.Products().Create(ctx, &entity.Product{
		ID: productID, Name: "Camisa", Price: decimal.RequireFromString("1.40"),
		CategoryID: categoryID, Stock: 4, CreatedAt: now, UpdatedAt: now,
	}))
	require.NoError(t, store.Orders().Create(ctx, &entity.Order{ID: orderA, UserID: customerA, CreatedAt: now, UpdatedAt: now}))

	gate := authz.NewGate(rbac.MustDefault(), nil)
	gate.RegisterStoreResolvers(store.Orders(), store.OrderItems())

	ledger := appinv.NewLedgerUseCase(store, store.Movements())
	userUC := usecase.NewUserUseCase(store.Users())
	engine := ordering.NewEngine(store, ledger, store.Orders(), store.OrderItems(), 2)
	deps := apphttp.RouterDeps{
		Gate:       gate,
		CategoryUC: usecase.NewCategoryUseCase(store.Categories()),
		ProductUC: usecase.NewProductUseCase(store.Products(), store.Categories(), store, ledger,
			usecase.CatalogRules{PriceDecimalPlaces: 2, MaxPriceDigits: 10}),
		ExportUC: usecase.NewExportUseCase(store.Products(), store.Categories()),
		UserUC:   userUC,
		Ledger:   ledger,
		OrderUC:  ordering.NewOrderUseCase(store.Orders(), store.OrderItems(), engine),
		Engine:   engine,
		DocsUC: ordering.NewDocumentUseCase(store.Orders(), store.OrderItems(), store.Users(),
			pdf.NewReceiptGenerator("Tienda", money.NewFormatter("es-CO", 2)), xmlexport.NewOrderExporter(2), 2),
		AuthUC:    auth.NewAuthUseCase(store.Users(), userUC, auth.JWTConfig{Secret: testJWTSecret, ExpMinutes: testExpMin, Issuer: testIssuer}),
		JWTSecret: testJWTSecret,
	}
	app := fiber.New()
	apphttp.Router(app, deps)
	return &fixture{t: t, app: app, store: store}
}

func (f *fixture) do(method, path, body, userID string, roles ...string) (*http.Response, string) {
	f.t.Helper()
	contentType := ""
	if body != "" {
		contentType = "application/json"
	}
	return f.send(method, path, contentType, body, userID, roles...)
}

func (f *fixture) send(method, path, contentType, body, userID string, roles ...string) (*http.Response, string) {
	f.t.Helper()
	var r io.Reader
	if body != "" {
		r = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, r)
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	if userID != "" {
		req.Header.Set("Authorization", bearer(f.t, userID, roles...))
	}
	resp, err := f.app.Test(req, -1)
	require.NoError(f.t, err)
	defer resp.Body.Close()
	raw, _ := io.ReadAll(resp.Body)
	return resp, string(raw)
}

func (f *fixture) stock() int {
	f.t.Helper()
	p, err := f.store.Products().GetByID(context.Background(), productID)
	require.NoError(f.t, err)
	return p.Stock
}

func TestPedido_OpacidadDeDueño(t *testing.T) {
	f := newFixture(t)

	ajeno, ajenoBody := f.do(http.MethodGet, "/api/orders/"+orderA, "", customerB, "customers")
	inexistente, inexistenteBody := f.do(http.MethodGet, "/api/orders/"+missingID, "", customerB, "customers")
	malformado, malformadoBody := f.do(http.MethodGet, "/api/orders/no-es-uuid", "", customerB, "customers")

	assert.Equal(t, http.StatusForbidden, ajeno.StatusCode)
	assert.Equal(t, http.StatusForbidden, inexistente.StatusCode)
	assert.Equal(t, http.StatusForbidden, malformado.StatusCode)
	assert.JSONEq(t, ajenoBody, inexistenteBody)
	assert.JSONEq(t, ajenoBody, malformadoBody)

	// la denegación es idempotente
	again, againBody := f.do(http.MethodGet, "/api/orders/"+orderA, "", customerB, "customers")
	assert.Equal(t, ajeno.StatusCode, again.StatusCode)
	assert.JSONEq(t, ajenoBody, againBody)
}

func TestPedido_DueñoYShiftManager(t *testing.T) {
	f := newFixture(t)

	resp, _ := f.do(http.MethodGet, "/api/orders/"+orderA, "", customerA, "customers")
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	resp, _ = f.do(http.MethodGet, "/api/orders/"+orderA, "", managerID, "shift_manager")
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	resp, _ = f.do(http.MethodGet, "/api/orders/"+missingID, "", managerID, "shift_manager")
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestPedido_ListadoFiltradoPorDueño(t *testing.T) {
	f := newFixture(t)

	resp, body := f.do(http.MethodGet, "/api/orders", "", customerB, "customers")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var list dto.OrderListResponse
	require.NoError(t, json.Unmarshal([]byte(body), &list))
	assert.Empty(t, list.Items)

	resp, body = f.do(http.MethodGet, "/api/orders", "", staffID, "staff")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.NoError(t, json.Unmarshal([]byte(body), &list))
	assert.Len(t, list.Items, 1)
}

func TestPedido_CrearRedirigeAlListado(t *testing.T) {
	f := newFixture(t)

	resp, body := f.do(http.MethodPost, "/api/orders", "", customerB, "customers")
	require.Equal(t, http.StatusFound, resp.StatusCode)
	assert.Equal(t, "/api/orders", resp.Header.Get("Location"))

	var out dto.OrderResponse
	require.NoError(t, json.Unmarshal([]byte(body), &out))
	assert.Equal(t, customerB, out.UserID)
	assert.False(t, out.IsPaid)
}

func TestPedido_IsPaidEstricto(t *testing.T) {
	f := newFixture(t)

	resp, body := f.do(http.MethodPut, "/api/orders/"+orderA, `{"is_paid": 15}`, customerA, "customers")
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Contains(t, body, "VALIDATION")

	resp, _ = f.do(http.MethodPut, "/api/orders/"+orderA, `{"is_paid": "True"}`, customerA, "customers")
	assert.Equal(t, http.StatusFound, resp.StatusCode)

	o, err := f.store.Orders().GetByID(context.Background(), orderA)
	require.NoError(t, err)
	assert.True(t, o.IsPaid)
}

func TestPedido_IsPaidSoloAceptaJSON(t *testing.T) {
	f := newFixture(t)
	form := "application/x-www-form-urlencoded"

	for _, body := range []string{"IsPaid=t", "IsPaid=TRUE", "is_paid=True"} {
		resp, out := f.send(http.MethodPut, "/api/orders/"+orderA, form, body, customerA, "customers")
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode, body)
		assert.Contains(t, out, "VALIDATION", body)
	}

	o, err := f.store.Orders().GetByID(context.Background(), orderA)
	require.NoError(t, err)
	assert.False(t, o.IsPaid)
}

func TestPedido_IDNoCanonicoNoExiste(t *testing.T) {
	f := newFixture(t)

	resp, _ := f.do(http.MethodGet, "/api/orders/urn:uuid:"+orderA, "", managerID, "shift_manager")
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	resp, _ = f.do(http.MethodDelete, "/api/orders/urn:uuid:"+orderA, "", managerID, "shift_manager")
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	resp, _ = f.do(http.MethodGet, "/api/orders/urn:uuid:"+orderA, "", customerA, "customers")
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
}

func TestItems_CicloDeStock(t *testing.T) {
	f := newFixture(t)

	resp, body := f.do(http.MethodPost, "/api/orders/"+orderA+"/items",
		`{"product_id":"`+productID+`","quantity":1}`, customerA, "customers")
	require.Equal(t, http.StatusFound, resp.StatusCode, body)
	assert.Equal(t, "/api/order-items", resp.Header.Get("Location"))
	assert.Equal(t, 3, f.stock())

	assert.Contains(t, body, `"unit_price":"1.40"`)
	assert.Contains(t, body, `"price":"1.40"`)

	var item dto.OrderItemResponse
	require.NoError(t, json.Unmarshal([]byte(body), &item))
	assert.True(t, decimal.RequireFromString("1.40").Equal(item.Price.Decimal))

	resp, body = f.do(http.MethodPut, "/api/order-items/"+item.ID, `{"quantity":2}`, customerA, "customers")
	require.Equal(t, http.StatusFound, resp.StatusCode, body)
	assert.Equal(t, 2, f.stock())
	require.NoError(t, json.Unmarshal([]byte(body), &item))
	assert.True(t, decimal.RequireFromString("2.80").Equal(item.Price.Decimal))

	// otro cliente no puede tocar el ítem
	resp, _ = f.do(http.MethodDelete, "/api/order-items/"+item.ID, "", customerB, "customers")
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
	assert.Equal(t, 2, f.stock())

	resp, _ = f.do(http.MethodDelete, "/api/order-items/"+item.ID, "", customerA, "customers")
	assert.Equal(t, http.StatusFound, resp.StatusCode)
	assert.Equal(t, 4, f.stock())
}

func TestItems_StockInsuficienteNoCreaNada(t *testing.T) {
	f := newFixture(t)

	resp, body := f.do(http.MethodPost, "/api/orders/"+orderA+"/items",
		`{"product_name":"Camisa","quantity":100}`, customerA, "customers")
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Contains(t, body, "INSUFFICIENT_STOCK")
	assert.Equal(t, 4, f.stock())

	items, err := f.store.OrderItems().ListByOrder(context.Background(), orderA)
	require.NoError(t, err)
	assert.Empty(t, items)
}

func TestItems_PedidoAjenoEsOpaco(t *testing.T) {
	f := newFixture(t)

	resp, _ := f.do(http.MethodPost, "/api/orders/"+orderA+"/items",
		`{"product_id":"`+productID+`","quantity":1}`, customerB, "customers")
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
	assert.Equal(t, 4, f.stock())
}

func TestPedido_TotalYEliminar(t *testing.T) {
	f := newFixture(t)

	resp, body := f.do(http.MethodGet, "/api/orders/"+orderA+"/total", "", customerA, "customers")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var total dto.OrderTotalResponse
	require.NoError(t, json.Unmarshal([]byte(body), &total))
	assert.True(t, total.TotalPrice.IsZero())
	assert.Contains(t, body, `"total_price":"0.00"`)

	resp, _ = f.do(http.MethodPost, "/api/orders/"+orderA+"/items",
		`{"product_id":"`+productID+`","quantity":3}`, customerA, "customers")
	require.Equal(t, http.StatusFound, resp.StatusCode)
	assert.Equal(t, 1, f.stock())

	resp, _ = f.do(http.MethodDelete, "/api/orders/"+orderA, "", customerA, "customers")
	assert.Equal(t, http.StatusFound, resp.StatusCode)
	assert.Equal(t, "/api/orders", resp.Header.Get("Location"))
	assert.Equal(t, 4, f.stock())
}

func TestPedido_Documentos(t *testing.T) {
	f := newFixture(t)

	resp, body := f.do(http.MethodGet, "/api/orders/"+orderA+"/receipt.pdf", "", customerA, "customers")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "application/pdf", resp.Header.Get("Content-Type"))
	assert.True(t, strings.HasPrefix(body, "%PDF"))

	resp, body = f.do(http.MethodGet, "/api/orders/"+orderA+"/export.xml", "", managerID, "shift_manager")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.True(t, strings.HasPrefix(resp.Header.Get("X-Content-Digest"), "sha-256="))
	assert.Contains(t, body, orderA)

	resp, _ = f.do(http.MethodGet, "/api/orders/"+orderA+"/receipt.pdf", "", customerB, "customers")
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
}

func TestCategoria_CrearRedirige(t *testing.T) {
	f := newFixture(t)

	resp, _ := f.do(http.MethodPost, "/api/categories", `{"name":"Calzado"}`, staffID, "staff")
	assert.Equal(t, http.StatusFound, resp.StatusCode)
	assert.Equal(t, "/api/categories", resp.Header.Get("Location"))

	resp, body := f.do(http.MethodPost, "/api/categories", `{"name":"calzado"}`, staffID, "staff")
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Contains(t, body, "DUPLICATE")

	resp, _ = f.do(http.MethodPost, "/api/categories", `{"name":"Gorras"}`, customerA, "customers")
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
}

func TestProducto_PrecioTruncado(t *testing.T) {
	f := newFixture(t)

	resp, body := f.do(http.MethodPost, "/api/products",
		`{"name":"Pantalón","price":"19.999","category_id":"`+categoryID+`","stock":2}`, staffID, "staff")
	require.Equal(t, http.StatusFound, resp.StatusCode, body)

	var out dto.ProductResponse
	require.NoError(t, json.Unmarshal([]byte(body), &out))
	assert.Equal(t, "19.99", out.Price.StringFixed(2))
}

func TestProducto_PrecioNegativoFraccionalEs400(t *testing.T) {
	f := newFixture(t)

	resp, body := f.do(http.MethodPost, "/api/products",
		`{"name":"Gorra","price":"-0.004","category_id":"`+categoryID+`","stock":1}`, staffID, "staff")
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode, body)
	assert.Contains(t, body, "VALIDATION")

	resp, body = f.do(http.MethodPost, "/api/products",
		`{"name":"Gorra","price":"0","category_id":"`+categoryID+`","stock":1}`, staffID, "staff")
	require.Equal(t, http.StatusFound, resp.StatusCode, body)
	assert.Contains(t, body, `"price":"0.00"`)
}

func TestProducto_StockPersonnelSoloStock(t *testing.T) {
	f := newFixture(t)

	resp, _ := f.do(http.MethodPut, "/api/products/"+productID, `{"price":"3.00"}`, stockID, "stock_personnel")
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)

	resp, body := f.do(http.MethodPut, "/api/products/"+productID, `{"stock":9}`, stockID, "stock_personnel")
	require.Equal(t, http.StatusFound, resp.StatusCode, body)
	assert.Equal(t, 9, f.stock())

	resp, body = f.do(http.MethodGet, "/api/products/"+productID+"/movements", "", stockID, "stock_personnel")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var movs dto.StockMovementListResponse
	require.NoError(t, json.Unmarshal([]byte(body), &movs))
	require.Len(t, movs.Items, 1)
	assert.Equal(t, 5, movs.Items[0].Delta)
}

func TestProducto_EliminarInexistenteEs404(t *testing.T) {
	f := newFixture(t)

	resp, body := f.do(http.MethodDelete, "/api/products/"+missingID, "", staffID, "staff")
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	assert.Contains(t, body, "NOT_FOUND")
}

func TestAuth_RegistroYLogin(t *testing.T) {
	f := newFixture(t)

	resp, body := f.do(http.MethodPost, "/api/auth/register",
		`{"username":"carla","email":"carla@tienda.com","password":"secreto123"}`, "")
	require.Equal(t, http.StatusCreated, resp.StatusCode, body)

	resp, body = f.do(http.MethodPost, "/api/auth/login", `{"email":"carla@tienda.com","password":"secreto123"}`, "")
	require.Equal(t, http.StatusOK, resp.StatusCode, body)
	var login dto.LoginResponse
	require.NoError(t, json.Unmarshal([]byte(body), &login))
	assert.NotEmpty(t, login.Token)
	assert.Equal(t, []string{"customers"}, login.User.Roles)

	resp, _ = f.do(http.MethodPost, "/api/auth/login", `{"email":"carla@tienda.com","password":"otra-clave"}`, "")
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	resp, body = f.do(http.MethodPost, "/api/auth/register", `{"username":"x","email":"no-email","password":"1"}`, "")
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Contains(t, body, "fields")
}
