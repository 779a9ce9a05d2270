package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/contrib/swagger"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"

	_ "github.com/jhoicas/tienda-backoffice/docs"
	"github.com/jhoicas/tienda-backoffice/internal/application/auth"
	"github.com/jhoicas/tienda-backoffice/internal/application/authz"
	appinv "github.com/jhoicas/tienda-backoffice/internal/application/inventory"
	"github.com/jhoicas/tienda-backoffice/internal/application/ordering"
	"github.com/jhoicas/tienda-backoffice/internal/application/usecase"
	"github.com/jhoicas/tienda-backoffice/internal/domain/rbac"
	infrapdf "github.com/jhoicas/tienda-backoffice/internal/infrastructure/pdf"
	"github.com/jhoicas/tienda-backoffice/internal/infrastructure/postgres"
	"github.com/jhoicas/tienda-backoffice/internal/infrastructure/xmlexport"
	httpRouter "github.com/jhoicas/tienda-backoffice/internal/interfaces/http"
	"github.com/jhoicas/tienda-backoffice/pkg/config"
	"github.com/jhoicas/tienda-backoffice/pkg/logger"
	"github.com/jhoicas/tienda-backoffice/pkg/money"
)

// @title        Tienda Back Office API
// @version      1.0
// @description  Catálogo, pedidos con control de stock y permisos por rol.
// @BasePath     /
// @securityDefinitions.apikey  Bearer
// @in                          header
// @name                        Authorization
func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("cargar configuración: " + err.Error())
	}

	log := logger.New(logger.Config{
		Env:     cfg.App.Env,
		Level:   cfg.Log.Level,
		Service: cfg.App.Name,
	})
	log.Info().Str("env", cfg.App.Env).Msg("iniciando aplicación")

	ctx := context.Background()
	pool, err := postgres.NewPool(ctx, cfg.DB)
	if err != nil {
		log.Fatal().Err(err).Msg("conexión a PostgreSQL")
	}
	defer pool.Close()

	registry := loadRegistry(ctx, postgres.NewGrantRepository(pool), log)

	categoryRepo := postgres.NewCategoryRepository(pool)
	productRepo := postgres.NewProductRepository(pool)
	orderRepo := postgres.NewOrderRepository(pool)
	itemRepo := postgres.NewOrderItemRepository(pool)
	movRepo := postgres.NewStockMovementRepository(pool)
	userRepo := postgres.NewUserRepository(pool)
	txRunner := postgres.NewTxRunner(pool)

	gate := authz.NewGate(registry, log.Named("authz"))
	gate.RegisterStoreResolvers(orderRepo, itemRepo)

	places := cfg.Catalog.PriceDecimalPlaces
	ledger := appinv.NewLedgerUseCase(txRunner, movRepo)
	engine := ordering.NewEngine(txRunner, ledger, orderRepo, itemRepo, places)
	userUC := usecase.NewUserUseCase(userRepo)
	formatter := money.NewFormatter(cfg.App.Locale, places)

	deps := httpRouter.RouterDeps{
		Gate:       gate,
		CategoryUC: usecase.NewCategoryUseCase(categoryRepo),
		ProductUC: usecase.NewProductUseCase(productRepo, categoryRepo, txRunner, ledger, usecase.CatalogRules{
			PriceDecimalPlaces: places,
			MaxPriceDigits:     cfg.Catalog.MaxPriceDigits,
		}),
		ExportUC: usecase.NewExportUseCase(productRepo, categoryRepo),
		UserUC:   userUC,
		Ledger:   ledger,
		OrderUC:  ordering.NewOrderUseCase(orderRepo, itemRepo, engine),
		Engine:   engine,
		DocsUC: ordering.NewDocumentUseCase(orderRepo, itemRepo, userRepo,
			infrapdf.NewReceiptGenerator(cfg.App.Name, formatter),
			xmlexport.NewOrderExporter(places),
			places,
		),
		AuthUC: auth.NewAuthUseCase(userRepo, userUC, auth.JWTConfig{
			Secret:     cfg.JWT.Secret,
			ExpMinutes: cfg.JWT.Expiration,
			Issuer:     cfg.JWT.Issuer,
		}),
		JWTSecret: cfg.JWT.Secret,
		Log:       log.Named("http"),
	}

	app := fiber.New(fiber.Config{
		AppName:      cfg.App.Name,
		ReadTimeout:  time.Second * 10,
		WriteTimeout: time.Second * 10,
		IdleTimeout:  time.Second * 60,
	})
	app.Use(recover.New())
	app.Use(cors.New(cors.Config{AllowOrigins: cfg.HTTP.CORSOrigins}))
	app.Use(httpRouter.RequestLogger(log.Named("http")))

	// Swagger UI en local: http://localhost:<port>/docs
	app.Use(swagger.New(swagger.Config{
		BasePath: "/",
		FilePath: "./docs/swagger.json",
		Path:     "docs",
		Title:    "Tienda Back Office API",
	}))

	app.Get("/health", func(c *fiber.Ctx) error {
		if err := pool.Ping(c.UserContext()); err != nil {
			return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{"status": "degraded", "service": cfg.App.Name})
		}
		return c.JSON(fiber.Map{"status": "ok", "service": cfg.App.Name})
	})

	httpRouter.Router(app, deps)

	go func() {
		if err := app.Listen(cfg.HTTP.Addr()); err != nil {
			log.Error().Err(err).Msg("servidor HTTP finalizado")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("señal de apagado recibida, cerrando servidor...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("apagado del servidor")
	}

	log.Info().Msg("aplicación detenida")
}

type grantLister interface {
	ListAll(ctx context.Context) ([]rbac.Grant, error)
}

// loadRegistry carga la tabla de permisos una sola vez; sin filas sembradas usa la tabla por defecto.
func loadRegistry(ctx context.Context, grants grantLister, log *logger.Logger) *rbac.Registry {
	rows, err := grants.ListAll(ctx)
	if err != nil {
		log.Fatal().Err(err).Msg("leer role_permissions")
	}
	if len(rows) == 0 {
		log.Warn().Msg("role_permissions vacía: usando la tabla por defecto (ejecute seed_permissions)")
		return rbac.MustDefault()
	}
	registry, err := rbac.NewRegistryFromGrants(rows)
	if err != nil {
		log.Fatal().Err(err).Msg("tabla de permisos inválida")
	}
	log.Info().Int("grants", len(rows)).Msg("tabla de permisos cargada")
	return registry
}
