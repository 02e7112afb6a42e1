package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/bodega-stock/internal/application/inventory"
	"github.com/jhoicas/bodega-stock/pkg/jwt"
	"github.com/jhoicas/bodega-stock/pkg/logger"
)

// RouterDeps dependencias para el router.
type RouterDeps struct {
	RecordMovement *inventory.RecordMovementUseCase
	Transfer       *inventory.TransferUseCase
	Reconcile      *inventory.ReconcileUseCase
	AreaMigration  *inventory.AreaMigrationUseCase
	Import         *inventory.ImportUseCase
	Query          *inventory.QueryUseCase
	Report         *inventory.ReportUseCase
	JWTSecret      string
	Log            *logger.Logger
}

// Router registra las rutas de la API.
func Router(app *fiber.App, deps RouterDeps) {
	log := deps.Log
	if log == nil {
		log = logger.NewNop()
	}

	api := app.Group("/api")

	// Rutas protegidas (requieren Bearer Token)
	manager := api.Group("/manager", AuthMiddleware(deps.JWTSecret))

	allRoles := RequireRole(jwt.RoleManager, jwt.RoleBodega, jwt.RoleSurtido, jwt.RoleDescargue)
	floorRoles := RequireRole(jwt.RoleManager, jwt.RoleBodega, jwt.RoleSurtido)
	managerOnly := RequireRole(jwt.RoleManager)

	invHandler := NewInventoryHandler(deps.RecordMovement, deps.Transfer, deps.Query, deps.Report, log.Named("http.inventory"))
	maintHandler := NewMaintenanceHandler(deps.Reconcile, deps.AreaMigration, deps.Import, log.Named("http.maintenance"))

	// Inventario
	inv := manager.Group("/inventory")
	inv.Post("/movement", allRoles, invHandler.RecordMovement)
	inv.Post("/transfer", floorRoles, invHandler.Transfer)
	inv.Get("/stock", floorRoles, invHandler.ListStock)
	inv.Get("/summary", managerOnly, invHandler.Summary)
	inv.Get("/report.pdf", managerOnly, invHandler.StockReportPDF)

	// Mantenimiento de la proyección
	inv.Post("/rebuild-stock", managerOnly, maintHandler.RebuildStock)
	inv.Get("/drift", managerOnly, maintHandler.Drift)
	inv.Get("/verify", managerOnly, maintHandler.Verify)
	inv.Post("/move-all-to-bodega", managerOnly, maintHandler.MoveAllToBodega)
	manager.Post("/import", managerOnly, maintHandler.Import)

	// Productos
	manager.Get("/products/:id/activity", allRoles, invHandler.ProductActivity)
}
