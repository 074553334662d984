package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/stock-reconciliation/internal/application/inventory"
	"github.com/jhoicas/stock-reconciliation/internal/application/reconciliation"
	"github.com/jhoicas/stock-reconciliation/internal/application/usecase"
)

// RouterDeps dependencias para el router.
type RouterDeps struct {
	CatalogUC      *usecase.CatalogUseCase
	Ledger         *inventory.Ledger
	Replenishment  *inventory.ReplenishmentUseCase
	Orchestrator   *reconciliation.Orchestrator
	ReportRenderer reconciliation.ReportRenderer
	JWTSecret      string
}

// Router registra las rutas de la API. Todas requieren Bearer Token.
func Router(app *fiber.App, deps RouterDeps) {
	api := app.Group("/api", AuthMiddleware(deps.JWTSecret))

	// Catálogo
	catalog := api.Group("/catalog")
	catalogHandler := NewCatalogHandler(deps.CatalogUC, deps.Ledger)
	catalog.Post("/", catalogHandler.Create)
	catalog.Get("/", catalogHandler.List)
	catalog.Get("/:id", catalogHandler.GetByID)
	catalog.Put("/:id", catalogHandler.Update)
	catalog.Delete("/:id", RequireRole(RoleAdmin), catalogHandler.Deactivate)
	catalog.Get("/:id/movements", catalogHandler.Movements)

	// Movimientos y stock bajo
	invGroup := api.Group("/inventory")
	inventoryHandler := NewInventoryHandler(deps.Ledger, deps.Replenishment)
	invGroup.Post("/movements", inventoryHandler.RegisterMovement)
	invGroup.Get("/low-stock", inventoryHandler.GetLowStock)

	// Conciliación de documentos de proveedor
	rec := api.Group("/reconciliations")
	recHandler := NewReconciliationHandler(deps.Orchestrator, deps.ReportRenderer)
	rec.Post("/match", recHandler.Match)
	rec.Post("/commit", recHandler.Commit)
	rec.Post("/report.pdf", recHandler.ReportPDF)
}
