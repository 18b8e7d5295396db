package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/stock-ledger/internal/application/inventory"
	"github.com/jhoicas/stock-ledger/internal/application/usecase"
	"github.com/jhoicas/stock-ledger/internal/domain/entity"
	"github.com/jhoicas/stock-ledger/pkg/jwt"
	"github.com/jhoicas/stock-ledger/pkg/logger"
)

// RouterDeps dependencias para el router. Idempotency nil = sin soporte de Idempotency-Key.
type RouterDeps struct {
	ProductUC     *usecase.ProductUseCase
	WarehouseUC   *usecase.WarehouseUseCase
	CategoryUC    *usecase.CategoryUseCase
	ReorderRuleUC *usecase.ReorderRuleUseCase
	DocumentUC    *inventory.DocumentUseCase
	QueryUC       *inventory.QueryUseCase
	Idempotency   idempotencyStore
	Logger        *logger.Logger
	JWTSecret     string
}

// documentRoutes segmento de URL de cada tipo de documento.
var documentRoutes = []struct {
	path string
	kind entity.DocumentKind
}{
	{"/receipts", entity.KindReceipt},
	{"/deliveries", entity.KindDelivery},
	{"/transfers", entity.KindTransfer},
	{"/adjustments", entity.KindAdjustment},
}

// Router registra las rutas de la API.
func Router(app *fiber.App, deps RouterDeps) {
	log := deps.Logger
	if log == nil {
		log = logger.Nop()
	}

	// Rutas protegidas (requieren Bearer Token)
	api := app.Group("/api", AuthMiddleware(deps.JWTSecret))
	if deps.Idempotency != nil {
		api.Use(Idempotency(deps.Idempotency, log))
	}

	manager := RequireRole(jwt.RoleInventoryManager)
	operator := RequireRole(jwt.RoleInventoryManager, jwt.RoleWarehouseStaff)

	// Catálogo
	productHandler := NewProductHandler(deps.ProductUC)
	api.Post("/products", manager, productHandler.Create)
	api.Get("/products", productHandler.List)
	api.Get("/products/:id", productHandler.GetByID)

	warehouseHandler := NewWarehouseHandler(deps.WarehouseUC)
	api.Post("/warehouses", manager, warehouseHandler.Create)
	api.Get("/warehouses", warehouseHandler.List)
	api.Get("/warehouses/:id", warehouseHandler.GetByID)
	api.Post("/warehouses/:id/locations", manager, warehouseHandler.AddLocation)

	categoryHandler := NewCategoryHandler(deps.CategoryUC)
	api.Post("/categories", manager, categoryHandler.Create)
	api.Get("/categories", categoryHandler.List)

	ruleHandler := NewReorderRuleHandler(deps.ReorderRuleUC)
	api.Post("/reorder-rules", manager, ruleHandler.Create)
	api.Get("/reorder-rules", ruleHandler.List)

	// Documentos de stock
	docHandler := NewDocumentHandler(deps.DocumentUC)
	creators := map[entity.DocumentKind]fiber.Handler{
		entity.KindReceipt:    docHandler.CreateReceipt,
		entity.KindDelivery:   docHandler.CreateDelivery,
		entity.KindTransfer:   docHandler.CreateTransfer,
		entity.KindAdjustment: docHandler.CreateAdjustment,
	}
	for _, r := range documentRoutes {
		g := api.Group(r.path)
		g.Post("/", operator, creators[r.kind])
		g.Get("/", docHandler.List(r.kind))
		g.Get("/:id", docHandler.Get(r.kind))
		g.Get("/:id/slip", docHandler.Slip(r.kind))
		g.Post("/:id/validate", manager, docHandler.Validate(r.kind))
	}

	// Consultas
	invHandler := NewInventoryHandler(deps.QueryUC)
	api.Get("/quants", invHandler.ListQuants)
	api.Get("/quants/totals", invHandler.Totals)
	api.Get("/moves", operator, invHandler.Moves)
	api.Get("/alerts/low-stock", operator, invHandler.LowStock)

	dashboardHandler := NewDashboardHandler(deps.QueryUC)
	api.Get("/dashboard", operator, dashboardHandler.GetSummary)
}
