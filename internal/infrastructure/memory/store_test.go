package memory

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/inventario-ledger/internal/application/inventory"
	"github.com/jhoicas/inventario-ledger/internal/domain/entity"
	"github.com/jhoicas/inventario-ledger/internal/domain/repository"
)

func TestRun_ErrorRestauraEstado(t *testing.T) {
	s := NewStore()
	ctx := context.Background()

	rec := entity.NewInventoryRecord("wh-1", "p-1")
	rec.Quantity = decimal.NewFromInt(10)
	require.NoError(t, s.Records().Upsert(ctx, rec))

	boom := errors.New("boom")
	err := s.Run(ctx, func(repos inventory.TxRepos) error {
		r, err := repos.Records.GetForUpdate(ctx, "wh-1", "p-1")
		require.NoError(t, err)
		r.Quantity = decimal.NewFromInt(99)
		require.NoError(t, repos.Records.Upsert(ctx, r))
		require.NoError(t, repos.Movements.Create(ctx, &entity.InventoryMovement{ID: "m-1", WarehouseID: "wh-1", ProductID: "p-1"}))
		return boom
	})
	require.ErrorIs(t, err, boom)

	got, err := s.Records().Get(ctx, "wh-1", "p-1")
	require.NoError(t, err)
	assert.True(t, got.Quantity.Equal(decimal.NewFromInt(10)))

	movs, err := s.Movements().List(ctx, repository.MovementFilter{})
	require.NoError(t, err)
	assert.Empty(t, movs)
}

func TestRun_CommitPersiste(t *testing.T) {
	s := NewStore()
	ctx := context.Background()

	err := s.Run(ctx, func(repos inventory.TxRepos) error {
		r, _ := repos.Records.GetForUpdate(ctx, "wh-1", "p-1")
		r.Quantity = decimal.NewFromInt(5)
		return repos.Records.Upsert(ctx, r)
	})
	require.NoError(t, err)

	got, _ := s.Records().Get(ctx, "wh-1", "p-1")
	assert.True(t, got.Quantity.Equal(decimal.NewFromInt(5)))
}

func TestRun_AppendDespuesDeRollbackNoReapareceMovimiento(t *testing.T) {
	s := NewStore()
	ctx := context.Background()
	require.NoError(t, s.Movements().Create(ctx, &entity.InventoryMovement{ID: "m-0"}))

	_ = s.Run(ctx, func(repos inventory.TxRepos) error {
		_ = repos.Movements.Create(ctx, &entity.InventoryMovement{ID: "m-fallido"})
		return errors.New("rollback")
	})
	require.NoError(t, s.Movements().Create(ctx, &entity.InventoryMovement{ID: "m-1"}))

	movs, err := s.Movements().List(ctx, repository.MovementFilter{})
	require.NoError(t, err)
	require.Len(t, movs, 2)
	assert.Equal(t, "m-0", movs[0].ID)
	assert.Equal(t, "m-1", movs[1].ID)
}

func TestUpdateStatus_NoTocaLineas(t *testing.T) {
	s := NewStore()
	ctx := context.Background()
	doc := &entity.StockTransaction{
		ID:        "tx-1",
		Type:      entity.TransactionTypeImport,
		Status:    entity.TransactionStatusPending,
		CreatedAt: time.Now(),
		Details:   []entity.StockTransactionDetail{{ID: "d-1", ProductID: "p-1", Quantity: decimal.NewFromInt(3)}},
	}
	require.NoError(t, s.Transactions().Create(ctx, doc))

	upd := *doc
	upd.Status = entity.TransactionStatusApproved
	upd.Details = nil
	require.NoError(t, s.Transactions().UpdateStatus(ctx, &upd))

	got, err := s.Transactions().GetByID(ctx, "tx-1")
	require.NoError(t, err)
	assert.Equal(t, entity.TransactionStatusApproved, got.Status)
	require.Len(t, got.Details, 1)
	assert.Equal(t, "d-1", got.Details[0].ID)
}

func TestOutstandingReservations_SumaPorEtiqueta(t *testing.T) {
	s := NewStore()
	ctx := context.Background()
	mk := func(id, typ string, delta int64, refID string) *entity.InventoryMovement {
		return &entity.InventoryMovement{
			ID: id, WarehouseID: "wh-1", ProductID: "p-1", Type: typ,
			ReservedDelta: decimal.NewFromInt(delta), ReferenceType: "sales_order", ReferenceID: refID,
		}
	}
	require.NoError(t, s.Movements().Create(ctx, mk("1", entity.MovementTypeReserve, 10, "SO-1")))
	require.NoError(t, s.Movements().Create(ctx, mk("2", entity.MovementTypeRelease, -4, "SO-1")))
	require.NoError(t, s.Movements().Create(ctx, mk("3", entity.MovementTypeReserve, 7, "SO-2")))

	bal, err := s.Movements().OutstandingReservations(ctx, "sales_order", "SO-1")
	require.NoError(t, err)
	require.Len(t, bal, 1)
	assert.True(t, bal[0].Outstanding.Equal(decimal.NewFromInt(6)))
}
