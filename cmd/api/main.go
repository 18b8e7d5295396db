package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/contrib/swagger"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"

	"github.com/jhoicas/stock-ledger/internal/application/inventory"
	"github.com/jhoicas/stock-ledger/internal/application/usecase"
	"github.com/jhoicas/stock-ledger/internal/domain/repository"
	"github.com/jhoicas/stock-ledger/internal/infrastructure/cache"
	"github.com/jhoicas/stock-ledger/internal/infrastructure/memory"
	infrapdf "github.com/jhoicas/stock-ledger/internal/infrastructure/pdf"
	"github.com/jhoicas/stock-ledger/internal/infrastructure/postgres"
	httpRouter "github.com/jhoicas/stock-ledger/internal/interfaces/http"
	"github.com/jhoicas/stock-ledger/pkg/config"
	"github.com/jhoicas/stock-ledger/pkg/logger"
)

// storage adaptadores de persistencia del driver elegido.
type storage struct {
	tx         inventory.TxRunner
	products   repository.ProductRepository
	categories repository.CategoryRepository
	warehouses repository.WarehouseRepository
	rules      repository.ReorderRuleRepository
	quants     repository.QuantRepository
	moves      repository.MoveRepository
	docs       repository.DocumentRepository
	close      func()
}

func openStorage(ctx context.Context, cfg *config.Config) (*storage, error) {
	if cfg.App.Storage == config.StorageMemory {
		st := memory.NewStore()
		return &storage{
			tx:         st,
			products:   st.Products(),
			categories: st.Categories(),
			warehouses: st.Warehouses(),
			rules:      st.ReorderRules(),
			quants:     st.Quants(),
			moves:      st.Moves(),
			docs:       st.Documents(),
			close:      func() {},
		}, nil
	}

	pool, err := postgres.NewPool(ctx, cfg.DB)
	if err != nil {
		return nil, err
	}
	if err := postgres.Migrate(ctx, pool); err != nil {
		pool.Close()
		return nil, err
	}
	return &storage{
		tx:         postgres.NewTxRunner(pool, cfg.DB.StatementTimeout),
		products:   postgres.NewProductRepository(pool),
		categories: postgres.NewCategoryRepository(pool),
		warehouses: postgres.NewWarehouseRepository(pool),
		rules:      postgres.NewReorderRuleRepository(pool),
		quants:     postgres.NewQuantRepository(pool),
		moves:      postgres.NewMoveRepository(pool),
		docs:       postgres.NewDocumentRepository(pool),
		close:      pool.Close,
	}, nil
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("cargar configuración: " + err.Error())
	}

	log := logger.New(logger.Config{
		Env:   cfg.App.Env,
		Level: cfg.App.LogLevel,
	})
	log.Info().
		Str("env", cfg.App.Env).
		Str("app", cfg.App.Name).
		Str("storage", cfg.App.Storage).
		Msg("iniciando aplicación")

	ctx := context.Background()
	st, err := openStorage(ctx, cfg)
	if err != nil {
		log.Fatal().Err(err).Str("storage", cfg.App.Storage).Msg("almacenamiento")
	}
	defer st.close()

	ledger := inventory.NewLedger(st.tx, log)
	slips := infrapdf.NewSlipGenerator("es")
	documentUC := inventory.NewDocumentUseCase(st.tx, st.docs, st.products, st.warehouses, ledger, slips, log)
	queryUC := inventory.NewQueryUseCase(st.quants, st.moves, st.rules, st.docs)

	deps := httpRouter.RouterDeps{
		ProductUC:     usecase.NewProductUseCase(st.products, st.categories, documentUC),
		WarehouseUC:   usecase.NewWarehouseUseCase(st.warehouses),
		CategoryUC:    usecase.NewCategoryUseCase(st.categories),
		ReorderRuleUC: usecase.NewReorderRuleUseCase(st.rules, st.products, st.warehouses),
		DocumentUC:    documentUC,
		QueryUC:       queryUC,
		Logger:        log,
		JWTSecret:     cfg.JWT.Secret,
	}

	// Idempotency-Key solo con Redis configurado; sin Redis las creaciones no se deduplican.
	if cfg.Redis.Enabled() {
		client, err := cache.New(ctx, cfg.Redis)
		if err != nil {
			log.Fatal().Err(err).Msg("conexión a Redis")
		}
		defer client.Close()
		deps.Idempotency = cache.NewIdempotency(client, cfg.Idempotency.TTL)
	} else {
		log.Warn().Msg("REDIS_ADDR vacío: Idempotency-Key deshabilitado")
	}

	app := fiber.New(fiber.Config{
		AppName:      cfg.App.Name,
		ReadTimeout:  time.Second * 10,
		WriteTimeout: time.Second * 10,
		IdleTimeout:  time.Second * 60,
	})
	app.Use(recover.New())
	app.Use(httpRouter.RequestLogger(log))

	// Swagger UI en local: http://localhost:<port>/docs (requiere haber generado docs/swagger.json con swag)
	const swaggerFile = "./docs/swagger.json"
	if _, err := os.Stat(swaggerFile); err == nil {
		app.Use(swagger.New(swagger.Config{
			BasePath: "/",
			FilePath: swaggerFile,
			Path:     "docs",
			Title:    "Stock Ledger API",
		}))
	}

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok", "service": cfg.App.Name, "storage": cfg.App.Storage})
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
