package inventory_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/inventario-ledger/internal/application/inventory"
	"github.com/jhoicas/inventario-ledger/internal/domain/entity"
	"github.com/jhoicas/inventario-ledger/internal/domain/repository"
	"github.com/jhoicas/inventario-ledger/internal/infrastructure/memory"
)

const (
	whA = "wh-a"
	whB = "wh-b"
	p1  = "p-1"
	p2  = "p-2"
	p3  = "p-3"
)

// fixture arma el ledger y los motores sobre el store en memoria con dos bodegas y tres productos.
type fixture struct {
	store        *memory.Store
	runner       inventory.TxRunner
	ledger       *inventory.Ledger
	transactions *inventory.StockTransactionService
	transfers    *inventory.StockTransferService
	reservations *inventory.ReservationService
}

func newFixture(t *testing.T) *fixture {
	return newFixtureWith(t, nil, entity.TransferDebitAtApprove)
}

// newFixtureWith permite reemplazar el TxRunner (p. ej. para inyectar fallas) y el momento de débito de traslados.
func newFixtureWith(t *testing.T, wrap func(*memory.Store) inventory.TxRunner, debitAt string) *fixture {
	t.Helper()
	ctx := context.Background()
	store := memory.NewStore()
	now := time.Now()

	for _, id := range []string{whA, whB} {
		require.NoError(t, store.Warehouses().Create(ctx, &entity.Warehouse{ID: id, Code: id, Name: "Bodega " + id, Active: true, CreatedAt: now}))
	}
	for _, id := range []string{p1, p2, p3} {
		require.NoError(t, store.Products().Create(ctx, &entity.Product{ID: id, SKU: "SKU-" + id, Name: "Producto " + id, Active: true, CreatedAt: now}))
	}

	var runner inventory.TxRunner = store
	if wrap != nil {
		runner = wrap(store)
	}
	log := zerolog.Nop()
	ledger := inventory.NewLedger(runner, store.Records(), store.Movements(), store.Products(), store.Warehouses(), log)
	return &fixture{
		store:        store,
		runner:       runner,
		ledger:       ledger,
		transactions: inventory.NewStockTransactionService(runner, store.Transactions(), store.Products(), store.Warehouses(), log),
		transfers:    inventory.NewStockTransferService(runner, store.Transfers(), store.Products(), store.Warehouses(), debitAt, log),
		reservations: inventory.NewReservationService(ledger, runner, log),
	}
}

func dec(v int64) decimal.Decimal { return decimal.NewFromInt(v) }

func decp(v int64) *decimal.Decimal {
	d := decimal.NewFromInt(v)
	return &d
}

// seed deja el par con quantity y reserved exactos, escribiendo directo al store.
func (f *fixture) seed(t *testing.T, warehouseID, productID string, quantity, reserved int64) {
	t.Helper()
	rec := entity.NewInventoryRecord(warehouseID, productID)
	rec.Quantity = dec(quantity)
	rec.ReservedQuantity = dec(reserved)
	require.NoError(t, f.store.Records().Upsert(context.Background(), rec))
}

func (f *fixture) record(t *testing.T, warehouseID, productID string) *entity.InventoryRecord {
	t.Helper()
	rec, err := f.ledger.Get(context.Background(), warehouseID, productID)
	require.NoError(t, err)
	return rec
}

func (f *fixture) movements(t *testing.T, filter repository.MovementFilter) []*entity.InventoryMovement {
	t.Helper()
	movs, err := f.ledger.Movements(context.Background(), filter)
	require.NoError(t, err)
	return movs
}

var errUpsertFailed = errors.New("upsert falló")

// failingRecords hace fallar Upsert sobre una llave concreta, después de que las anteriores ya se aplicaron.
type failingRecords struct {
	repository.InventoryRecordRepository
	failOn entity.StockKey
}

func (r failingRecords) Upsert(ctx context.Context, rec *entity.InventoryRecord) error {
	if rec.Key() == r.failOn {
		return errUpsertFailed
	}
	return r.InventoryRecordRepository.Upsert(ctx, rec)
}

type failingRunner struct {
	store  *memory.Store
	failOn entity.StockKey
}

func (r failingRunner) Run(ctx context.Context, fn func(repos inventory.TxRepos) error) error {
	return r.store.Run(ctx, func(repos inventory.TxRepos) error {
		repos.Records = failingRecords{InventoryRecordRepository: repos.Records, failOn: r.failOn}
		return fn(repos)
	})
}

func failOn(warehouseID, productID string) func(*memory.Store) inventory.TxRunner {
	return func(s *memory.Store) inventory.TxRunner {
		return failingRunner{store: s, failOn: entity.StockKey{WarehouseID: warehouseID, ProductID: productID}}
	}
}

var errDetailInsert = errors.New("insert de líneas falló")

// partialTransactions guarda la cabecera y luego falla, como un insert de líneas que se cae a mitad.
type partialTransactions struct {
	repository.StockTransactionRepository
}

func (r partialTransactions) Create(ctx context.Context, tx *entity.StockTransaction) error {
	if err := r.StockTransactionRepository.Create(ctx, tx); err != nil {
		return err
	}
	return errDetailInsert
}

type partialTransfers struct {
	repository.StockTransferRepository
}

func (r partialTransfers) Create(ctx context.Context, t *entity.StockTransfer) error {
	if err := r.StockTransferRepository.Create(ctx, t); err != nil {
		return err
	}
	return errDetailInsert
}

type partialDocumentsRunner struct {
	store *memory.Store
}

func (r partialDocumentsRunner) Run(ctx context.Context, fn func(repos inventory.TxRepos) error) error {
	return r.store.Run(ctx, func(repos inventory.TxRepos) error {
		repos.Transactions = partialTransactions{StockTransactionRepository: repos.Transactions}
		repos.Transfers = partialTransfers{StockTransferRepository: repos.Transfers}
		return fn(repos)
	})
}

func partialDocuments(s *memory.Store) inventory.TxRunner { return partialDocumentsRunner{store: s} }

// delayedRunner espera antes de abrir la tx, de modo que llamadas concurrentes alcanzan a leer antes de que alguna aplique.
type delayedRunner struct {
	store *memory.Store
	delay time.Duration
}

func (r delayedRunner) Run(ctx context.Context, fn func(repos inventory.TxRepos) error) error {
	time.Sleep(r.delay)
	return r.store.Run(ctx, fn)
}
