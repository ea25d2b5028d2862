package app

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/jhoicas/inventario-ledger/internal/application/inventory"
	"github.com/jhoicas/inventario-ledger/internal/domain/repository"
	"github.com/jhoicas/inventario-ledger/internal/infrastructure/memory"
	"github.com/jhoicas/inventario-ledger/internal/infrastructure/postgres"
	"github.com/jhoicas/inventario-ledger/pkg/config"
)

// Storage reúne el TxRunner y los repositorios de lectura del backend elegido.
type Storage struct {
	Driver       string
	TxRunner     inventory.TxRunner
	Records      repository.InventoryRecordRepository
	Movements    repository.InventoryMovementRepository
	Transactions repository.StockTransactionRepository
	Transfers    repository.StockTransferRepository
	Warehouses   repository.WarehouseRepository
	Products     repository.ProductRepository

	close func()
}

// Close libera el pool (no-op en memoria).
func (s *Storage) Close() {
	if s.close != nil {
		s.close()
	}
}

// OpenStorage abre el backend según STORAGE_DRIVER. Con postgres aplica el esquema si AutoMigrate.
func OpenStorage(ctx context.Context, cfg *config.Config, log zerolog.Logger) (*Storage, error) {
	switch cfg.Storage.Driver {
	case config.StorageDriverMemory:
		store := memory.NewStore()
		log.Warn().Msg("almacenamiento en memoria: los datos se pierden al reiniciar")
		return &Storage{
			Driver:       config.StorageDriverMemory,
			TxRunner:     store,
			Records:      store.Records(),
			Movements:    store.Movements(),
			Transactions: store.Transactions(),
			Transfers:    store.Transfers(),
			Warehouses:   store.Warehouses(),
			Products:     store.Products(),
		}, nil

	case config.StorageDriverPostgres:
		pool, err := postgres.NewPool(ctx, cfg.DB)
		if err != nil {
			return nil, fmt.Errorf("conexión a PostgreSQL: %w", err)
		}
		if cfg.Storage.AutoMigrate {
			if err := postgres.Migrate(ctx, pool); err != nil {
				pool.Close()
				return nil, err
			}
			log.Info().Msg("esquema de inventario aplicado")
		}
		return &Storage{
			Driver:       config.StorageDriverPostgres,
			TxRunner:     postgres.NewTxRunner(pool),
			Records:      postgres.NewInventoryRecordRepository(pool),
			Movements:    postgres.NewInventoryMovementRepository(pool),
			Transactions: postgres.NewStockTransactionRepository(pool),
			Transfers:    postgres.NewStockTransferRepository(pool),
			Warehouses:   postgres.NewWarehouseRepository(pool),
			Products:     postgres.NewProductRepository(pool),
			close:        pool.Close,
		}, nil

	default:
		return nil, fmt.Errorf("STORAGE_DRIVER no soportado: %q", cfg.Storage.Driver)
	}
}

// Services casos de uso del inventario construidos sobre un Storage.
type Services struct {
	Ledger       *inventory.Ledger
	Reservations *inventory.ReservationService
	Transactions *inventory.StockTransactionService
	Transfers    *inventory.StockTransferService
	Alerts       *inventory.AlertsUseCase
}

// NewServices arma el ledger y los motores de documentos.
func NewServices(st *Storage, cfg config.InventoryConfig, log zerolog.Logger) *Services {
	ledger := inventory.NewLedger(st.TxRunner, st.Records, st.Movements, st.Products, st.Warehouses, log)
	return &Services{
		Ledger:       ledger,
		Reservations: inventory.NewReservationService(ledger, st.TxRunner, log),
		Transactions: inventory.NewStockTransactionService(st.TxRunner, st.Transactions, st.Products, st.Warehouses, log),
		Transfers:    inventory.NewStockTransferService(st.TxRunner, st.Transfers, st.Products, st.Warehouses, cfg.TransferDebitAt, log),
		Alerts:       inventory.NewAlertsUseCase(st.Records, st.Transactions),
	}
}
