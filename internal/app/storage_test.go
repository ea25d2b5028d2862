package app_test

import (
	"context"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/inventario-ledger/internal/app"
	"github.com/jhoicas/inventario-ledger/internal/application/inventory"
	"github.com/jhoicas/inventario-ledger/internal/domain/entity"
	"github.com/jhoicas/inventario-ledger/pkg/config"
)

func memoryConfig() *config.Config {
	return &config.Config{
		Storage:   config.StorageConfig{Driver: config.StorageDriverMemory},
		Inventory: config.InventoryConfig{TransferDebitAt: entity.TransferDebitAtComplete},
	}
}

func TestOpenStorage_DriverDesconocido(t *testing.T) {
	cfg := memoryConfig()
	cfg.Storage.Driver = "sqlite"
	_, err := app.OpenStorage(context.Background(), cfg, zerolog.Nop())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "sqlite")
}

func TestOpenStorage_MemoriaCompartidaEntreServicios(t *testing.T) {
	ctx := context.Background()
	cfg := memoryConfig()
	st, err := app.OpenStorage(ctx, cfg, zerolog.Nop())
	require.NoError(t, err)
	defer st.Close()
	assert.Equal(t, config.StorageDriverMemory, st.Driver)

	now := time.Now()
	require.NoError(t, st.Warehouses.Create(ctx, &entity.Warehouse{ID: "w1", Code: "W1", Name: "Principal", Active: true, CreatedAt: now}))
	require.NoError(t, st.Products.Create(ctx, &entity.Product{ID: "p1", SKU: "P1", Name: "Panela", Active: true, CreatedAt: now}))

	svc := app.NewServices(st, cfg.Inventory, zerolog.Nop())
	tx, err := svc.Transactions.CreateImport(ctx, inventory.CreateTransactionInput{
		WarehouseID: "w1",
		RequestedBy: "u-1",
		Lines:       []inventory.TransactionLineInput{{ProductID: "p1", Quantity: decimal.NewFromInt(12)}},
	})
	require.NoError(t, err)
	_, err = svc.Transactions.Approve(ctx, tx.ID, "sup-1", "")
	require.NoError(t, err)

	rec, err := svc.Ledger.Get(ctx, "w1", "p1")
	require.NoError(t, err)
	assert.True(t, rec.Quantity.Equal(decimal.NewFromInt(12)))
}
