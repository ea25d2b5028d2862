package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/inventario-ledger/internal/application/inventory"
	"github.com/jhoicas/inventario-ledger/internal/application/usecase"
	"github.com/jhoicas/inventario-ledger/pkg/jwt"
)

// RouterDeps dependencias para el router.
type RouterDeps struct {
	WarehouseUC      *usecase.WarehouseUseCase
	ProductUC        *usecase.ProductUseCase
	Ledger           *inventory.Ledger
	Reservations     *inventory.ReservationService
	Transactions     *inventory.StockTransactionService
	Transfers        *inventory.StockTransferService
	Alerts           *inventory.AlertsUseCase
	Documents        *inventory.DocumentsUseCase
	ExpiryWindowDays int
	JWTSecret        string
}

// Router registra las rutas de la API. Todo /api exige Bearer Token.
func Router(app *fiber.App, deps RouterDeps) {
	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok"})
	})

	api := app.Group("/api", AuthMiddleware(deps.JWTSecret))
	approvers := RequireRole(jwt.RoleAdmin, jwt.RoleSupervisor)
	operators := RequireRole(jwt.RoleAdmin, jwt.RoleSupervisor, jwt.RoleBodeguero)

	warehouses := api.Group("/warehouses")
	warehouseHandler := NewWarehouseHandler(deps.WarehouseUC)
	warehouses.Post("/", RequireRole(jwt.RoleAdmin), warehouseHandler.Create)
	warehouses.Get("/", warehouseHandler.List)
	warehouses.Get("/:id", warehouseHandler.GetByID)

	products := api.Group("/products")
	productHandler := NewProductHandler(deps.ProductUC)
	products.Post("/", RequireRole(jwt.RoleAdmin), productHandler.Create)
	products.Get("/", productHandler.List)
	products.Get("/:id", productHandler.GetByID)

	inv := api.Group("/inventory")
	inventoryHandler := NewInventoryHandler(deps.Ledger, deps.Reservations, deps.Alerts, deps.ExpiryWindowDays)
	inv.Get("/records", inventoryHandler.ListRecords)
	inv.Post("/availability", inventoryHandler.Availability)
	inv.Post("/adjust", approvers, inventoryHandler.Adjust)
	inv.Post("/set", approvers, inventoryHandler.SetQuantity)
	inv.Post("/reservations", inventoryHandler.Reserve)
	inv.Post("/reservations/release", inventoryHandler.Release)
	inv.Get("/movements", inventoryHandler.Movements)
	inv.Get("/alerts/low-stock", inventoryHandler.LowStock)
	inv.Get("/alerts/expiring", inventoryHandler.ExpiringLots)

	txs := api.Group("/stock-transactions")
	txHandler := NewStockTransactionHandler(deps.Transactions, deps.Documents)
	txs.Get("/", txHandler.List)
	txs.Get("/:id", txHandler.GetByID)
	txs.Get("/:id/pdf", txHandler.PDF)
	txs.Post("/:id/submit", operators, txHandler.Submit)
	txs.Post("/:id/approve", approvers, txHandler.Approve)
	txs.Post("/:id/cancel", operators, txHandler.Cancel)
	txs.Post("/:type", operators, txHandler.Create)

	transfers := api.Group("/stock-transfers")
	trHandler := NewStockTransferHandler(deps.Transfers, deps.Documents)
	transfers.Post("/", operators, trHandler.Create)
	transfers.Get("/", trHandler.List)
	transfers.Get("/:id", trHandler.GetByID)
	transfers.Get("/:id/pdf", trHandler.PDF)
	transfers.Post("/:id/approve", approvers, trHandler.Approve)
	transfers.Post("/:id/complete", operators, trHandler.Complete)
	transfers.Post("/:id/cancel", operators, trHandler.Cancel)
}
