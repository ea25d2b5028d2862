// @title        Inventario Ledger API
// @version      1.0
// @description  Ledger de existencias por bodega, documentos de inventario y traslados.
// @BasePath     /
// @securityDefinitions.apikey  Bearer
// @in                          header
// @name                        Authorization
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

	"github.com/jhoicas/inventario-ledger/internal/app"
	"github.com/jhoicas/inventario-ledger/internal/application/inventory"
	"github.com/jhoicas/inventario-ledger/internal/application/usecase"
	infrapdf "github.com/jhoicas/inventario-ledger/internal/infrastructure/pdf"
	httpRouter "github.com/jhoicas/inventario-ledger/internal/interfaces/http"
	"github.com/jhoicas/inventario-ledger/internal/scheduler"
	"github.com/jhoicas/inventario-ledger/pkg/config"
	"github.com/jhoicas/inventario-ledger/pkg/logger"
)

const swaggerFile = "./docs/swagger.json"

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
		Str("storage", cfg.Storage.Driver).
		Str("transfer_debit_at", cfg.Inventory.TransferDebitAt).
		Msg("iniciando aplicación")

	ctx := context.Background()
	st, err := app.OpenStorage(ctx, cfg, log.Component("storage"))
	if err != nil {
		log.Fatal().Err(err).Msg("abrir almacenamiento")
	}
	defer st.Close()

	svc := app.NewServices(st, cfg.Inventory, log.Zerolog())
	documentsUC := inventory.NewDocumentsUseCase(
		st.Transactions, st.Transfers, st.Products, st.Warehouses,
		infrapdf.NewMarotoRenderer(cfg.App.Name),
	)

	var alertsJob *scheduler.Scheduler
	if cfg.Inventory.AlertsCron != "" {
		alertsJob = scheduler.New(scheduler.Config{
			Spec:       cfg.Inventory.AlertsCron,
			ExpiryDays: cfg.Inventory.ExpiryWindowDays,
		}, svc.Alerts, log.Zerolog())
		if err := alertsJob.Start(); err != nil {
			log.Fatal().Err(err).Msg("scheduler de alertas")
		}
	}

	fiberApp := fiber.New(fiber.Config{
		AppName:      cfg.App.Name,
		ReadTimeout:  time.Second * 10,
		WriteTimeout: time.Second * 10,
		IdleTimeout:  time.Second * 60,
	})
	fiberApp.Use(recover.New())

	// Swagger UI: http://localhost:<port>/docs (swag init -g cmd/api/main.go)
	if _, err := os.Stat(swaggerFile); err == nil {
		fiberApp.Use(swagger.New(swagger.Config{
			BasePath: "/",
			FilePath: swaggerFile,
			Path:     "docs",
			Title:    cfg.App.Name,
		}))
	} else {
		log.Warn().Str("file", swaggerFile).Msg("sin swagger.json, /docs deshabilitado")
	}

	httpRouter.Router(fiberApp, httpRouter.RouterDeps{
		WarehouseUC:      usecase.NewWarehouseUseCase(st.Warehouses),
		ProductUC:        usecase.NewProductUseCase(st.Products),
		Ledger:           svc.Ledger,
		Reservations:     svc.Reservations,
		Transactions:     svc.Transactions,
		Transfers:        svc.Transfers,
		Alerts:           svc.Alerts,
		Documents:        documentsUC,
		ExpiryWindowDays: cfg.Inventory.ExpiryWindowDays,
		JWTSecret:        cfg.JWT.Secret,
	})

	go func() {
		if err := fiberApp.Listen(cfg.HTTP.Addr()); err != nil {
			log.Error().Err(err).Msg("servidor HTTP finalizado")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("señal de apagado recibida, cerrando servidor...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if alertsJob != nil {
		alertsJob.Stop()
	}
	if err := fiberApp.ShutdownWithContext(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("apagado del servidor")
	}

	log.Info().Msg("aplicación detenida")
}
