package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/tienda-backoffice/internal/application/auth"
	"github.com/jhoicas/tienda-backoffice/internal/application/authz"
	appinv "github.com/jhoicas/tienda-backoffice/internal/application/inventory"
	"github.com/jhoicas/tienda-backoffice/internal/application/ordering"
	"github.com/jhoicas/tienda-backoffice/internal/application/usecase"
	"github.com/jhoicas/tienda-backoffice/internal/domain/rbac"
	"github.com/jhoicas/tienda-backoffice/pkg/logger"
)

// RouterDeps dependencias para el router.
type RouterDeps struct {
	Gate       *authz.Gate
	CategoryUC *usecase.CategoryUseCase
	ProductUC  *usecase.ProductUseCase
	ExportUC   *usecase.ExportUseCase
	UserUC     *usecase.UserUseCase
	Ledger     *appinv.LedgerUseCase
	OrderUC    *ordering.OrderUseCase
	Engine     *ordering.Engine
	DocsUC     *ordering.DocumentUseCase
	AuthUC     *auth.AuthUseCase
	JWTSecret  string
	Log        *logger.Logger
}

// Router registra las rutas de la API.
func Router(app *fiber.App, deps RouterDeps) {
	log := deps.Log
	if log == nil {
		log = logger.Nop()
	}
	can := func(res rbac.Resource, act rbac.Action) fiber.Handler {
		return RequirePermission(deps.Gate, res, act)
	}

	api := app.Group("/api")

	// Auth (registro y login públicos)
	authHandler := NewAuthHandler(deps.AuthUC, log)
	authGroup := api.Group("/auth")
	authGroup.Post("/register", authHandler.Register)
	authGroup.Post("/login", authHandler.Login)
	authGroup.Get("/me", AuthMiddleware(deps.JWTSecret), authHandler.Me)

	// Rutas protegidas (requieren Bearer Token)
	protected := api.Group("/", AuthMiddleware(deps.JWTSecret))

	categories := protected.Group("/categories")
	categoryHandler := NewCategoryHandler(deps.CategoryUC, log)
	categories.Get("/", can(rbac.ResourceCategory, rbac.ActionView), categoryHandler.List)
	categories.Post("/", can(rbac.ResourceCategory, rbac.ActionAdd), categoryHandler.Create)
	categories.Get("/:id", can(rbac.ResourceCategory, rbac.ActionView), categoryHandler.GetByID)
	categories.Put("/:id", can(rbac.ResourceCategory, rbac.ActionChange), categoryHandler.Update)
	categories.Delete("/:id", can(rbac.ResourceCategory, rbac.ActionDelete), categoryHandler.Delete)

	products := protected.Group("/products")
	productHandler := NewProductHandler(deps.ProductUC, deps.Ledger, deps.ExportUC, deps.Gate, log)
	products.Get("/", can(rbac.ResourceProduct, rbac.ActionView), productHandler.List)
	products.Post("/", can(rbac.ResourceProduct, rbac.ActionAdd), productHandler.Create)
	products.Get("/export.xlsx", can(rbac.ResourceProduct, rbac.ActionView), productHandler.ExportXLSX)
	products.Get("/:id", can(rbac.ResourceProduct, rbac.ActionView), productHandler.GetByID)
	products.Put("/:id", can(rbac.ResourceProduct, rbac.ActionChange), productHandler.Update)
	products.Delete("/:id", can(rbac.ResourceProduct, rbac.ActionDelete), productHandler.Delete)
	products.Get("/:id/movements", can(rbac.ResourceProduct, rbac.ActionView), productHandler.Movements)

	// Pedidos e ítems: el handler verifica además el dueño de la instancia.
	orders := protected.Group("/orders")
	orderHandler := NewOrderHandler(deps.OrderUC, deps.Engine, deps.DocsUC, deps.Gate, log)
	orders.Get("/", can(rbac.ResourceOrder, rbac.ActionView), orderHandler.List)
	orders.Post("/", can(rbac.ResourceOrder, rbac.ActionAdd), orderHandler.Create)
	orders.Get("/:id", orderHandler.GetByID)
	orders.Put("/:id", orderHandler.Update)
	orders.Delete("/:id", orderHandler.Delete)
	orders.Get("/:id/total", orderHandler.Total)
	orders.Get("/:id/receipt.pdf", orderHandler.Receipt)
	orders.Get("/:id/export.xml", orderHandler.ExportXML)
	orders.Get("/:id/items", orderHandler.Items)
	orders.Post("/:id/items", orderHandler.AddItem)

	items := protected.Group("/order-items")
	itemHandler := NewOrderItemHandler(deps.OrderUC, deps.Engine, deps.Gate, log)
	items.Get("/", can(rbac.ResourceOrderItem, rbac.ActionView), itemHandler.List)
	items.Get("/:id", itemHandler.GetByID)
	items.Put("/:id", itemHandler.Update)
	items.Delete("/:id", itemHandler.Delete)

	users := protected.Group("/users")
	userHandler := NewUserHandler(deps.UserUC, log)
	users.Get("/", can(rbac.ResourceUser, rbac.ActionView), userHandler.List)
	users.Post("/", can(rbac.ResourceUser, rbac.ActionAdd), userHandler.Create)
	users.Get("/:id", can(rbac.ResourceUser, rbac.ActionView), userHandler.GetByID)
	users.Put("/:id", can(rbac.ResourceUser, rbac.ActionChange), userHandler.Update)
	users.Delete("/:id", can(rbac.ResourceUser, rbac.ActionDelete), userHandler.Delete)
}
