package inventory_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/inventario-ledger/internal/application/inventory"
	"github.com/jhoicas/inventario-ledger/internal/domain"
	"github.com/jhoicas/inventario-ledger/internal/domain/entity"
	"github.com/jhoicas/inventario-ledger/internal/domain/repository"
	"github.com/jhoicas/inventario-ledger/internal/infrastructure/memory"
)

func orderHold(ref string, items ...inventory.OrderItem) inventory.OrderHoldInput {
	return inventory.OrderHoldInput{
		WarehouseID:   whA,
		Items:         items,
		ReferenceType: "sales_order",
		ReferenceID:   ref,
		UserID:        "u-1",
	}
}

func TestCheckAvailability_UsaBodegaDeLaOrden(t *testing.T) {
	f := newFixture(t)
	f.seed(t, whA, p1, 10, 2)
	f.seed(t, whB, p1, 50, 0)

	res, err := f.reservations.CheckAvailability(context.Background(), whA, []inventory.OrderItem{
		{ProductID: p1, Quantity: dec(8)},
		{ProductID: p1, WarehouseID: whB, Quantity: dec(30)},
	})
	require.NoError(t, err)
	assert.True(t, res.AllAvailable)
	assert.Equal(t, whA, res.Items[0].WarehouseID)
	assert.True(t, res.Items[0].Available.Equal(dec(8)))
	assert.Equal(t, whB, res.Items[1].WarehouseID)
}

func TestCheckAvailability_SinNingunaBodega(t *testing.T) {
	f := newFixture(t)
	_, err := f.reservations.CheckAvailability(context.Background(), "", []inventory.OrderItem{{ProductID: p1, Quantity: dec(1)}})
	require.ErrorIs(t, err, domain.ErrValidation)
}

func TestReserveForOrder_TodoONada(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.seed(t, whA, p1, 10, 0)
	f.seed(t, whA, p2, 3, 0)

	_, err := f.reservations.ReserveForOrder(ctx, orderHold("SO-1",
		inventory.OrderItem{ProductID: p1, Quantity: dec(5)},
		inventory.OrderItem{ProductID: p2, Quantity: dec(4)},
	))
	require.ErrorIs(t, err, domain.ErrInsufficientInventory)
	shortage, _ := domain.ShortageOf(err)
	assert.True(t, shortage.Equal(dec(1)))

	assert.True(t, f.record(t, whA, p1).ReservedQuantity.IsZero(), "la primera reserva se revierte")
	assert.True(t, f.record(t, whA, p2).ReservedQuantity.IsZero())
	assert.Empty(t, f.movements(t, repository.MovementFilter{ReferenceID: "SO-1"}))
}

func TestReserveForOrder_MismoProductoDosLineasAcumula(t *testing.T) {
	f := newFixture(t)
	f.seed(t, whA, p1, 10, 0)

	_, err := f.reservations.ReserveForOrder(context.Background(), orderHold("SO-2",
		inventory.OrderItem{ProductID: p1, Quantity: dec(6)},
		inventory.OrderItem{ProductID: p1, Quantity: dec(6)},
	))
	require.ErrorIs(t, err, domain.ErrInsufficientInventory)
	assert.True(t, f.record(t, whA, p1).ReservedQuantity.IsZero())
}

func TestReserveAndReleaseForOrder(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.seed(t, whA, p1, 10, 0)
	f.seed(t, whA, p2, 10, 0)

	recs, err := f.reservations.ReserveForOrder(ctx, orderHold("SO-3",
		inventory.OrderItem{ProductID: p1, Quantity: dec(2)},
		inventory.OrderItem{ProductID: p2, Quantity: dec(3)},
	))
	require.NoError(t, err)
	require.Len(t, recs, 2)
	assert.True(t, recs[1].ReservedQuantity.Equal(dec(3)))

	_, err = f.reservations.ReleaseForOrder(ctx, orderHold("SO-3",
		inventory.OrderItem{ProductID: p1, Quantity: dec(2)},
		inventory.OrderItem{ProductID: p2, Quantity: dec(3)},
	))
	require.NoError(t, err)
	assert.True(t, f.record(t, whA, p1).ReservedQuantity.IsZero())
	assert.True(t, f.record(t, whA, p2).ReservedQuantity.IsZero())
}

func TestReleaseAllForReference_LiberaSoloLaEtiqueta(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.seed(t, whA, p1, 20, 0)
	f.seed(t, whB, p2, 20, 0)

	_, err := f.reservations.ReserveForOrder(ctx, orderHold("SO-4",
		inventory.OrderItem{ProductID: p1, Quantity: dec(5)},
		inventory.OrderItem{ProductID: p2, WarehouseID: whB, Quantity: dec(7)},
	))
	require.NoError(t, err)
	_, err = f.reservations.ReserveForOrder(ctx, orderHold("SO-5", inventory.OrderItem{ProductID: p1, Quantity: dec(3)}))
	require.NoError(t, err)
	_, err = f.reservations.ReleaseForOrder(ctx, orderHold("SO-4", inventory.OrderItem{ProductID: p1, Quantity: dec(1)}))
	require.NoError(t, err)

	recs, err := f.reservations.ReleaseAllForReference(ctx, "sales_order", "SO-4", "u-1")
	require.NoError(t, err)
	assert.Len(t, recs, 2)

	assert.True(t, f.record(t, whA, p1).ReservedQuantity.Equal(dec(3)), "queda solo SO-5")
	assert.True(t, f.record(t, whB, p2).ReservedQuantity.IsZero())

	again, err := f.reservations.ReleaseAllForReference(ctx, "sales_order", "SO-4", "u-1")
	require.NoError(t, err)
	assert.Empty(t, again)
}

func TestReleaseAllForReference_ConcurrenteNoTocaOtraEtiqueta(t *testing.T) {
	f := newFixtureWith(t, func(s *memory.Store) inventory.TxRunner {
		return delayedRunner{store: s, delay: 20 * time.Millisecond}
	}, entity.TransferDebitAtApprove)
	ctx := context.Background()
	f.seed(t, whA, p1, 20, 0)

	_, err := f.reservations.ReserveForOrder(ctx, orderHold("A", inventory.OrderItem{ProductID: p1, Quantity: dec(10)}))
	require.NoError(t, err)
	_, err = f.reservations.ReserveForOrder(ctx, orderHold("B", inventory.OrderItem{ProductID: p1, Quantity: dec(5)}))
	require.NoError(t, err)

	var wg sync.WaitGroup
	errs := make([]error, 2)
	for i := range errs {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = f.reservations.ReleaseAllForReference(ctx, "sales_order", "A", "u-1")
		}(i)
	}
	wg.Wait()
	for _, err := range errs {
		require.NoError(t, err)
	}

	assert.True(t, f.record(t, whA, p1).ReservedQuantity.Equal(dec(5)), "la reserva de B sigue intacta")
	releases := f.movements(t, repository.MovementFilter{ReferenceType: "sales_order", ReferenceID: "A"})
	assert.Len(t, releases, 2, "una reserva y una sola liberación")
}

func TestReserveForOrder_RechazaMasDeCuatroDecimales(t *testing.T) {
	f := newFixture(t)
	f.seed(t, whA, p1, 20, 0)

	_, err := f.reservations.ReserveForOrder(context.Background(), orderHold("SO-7",
		inventory.OrderItem{ProductID: p1, Quantity: decimal.RequireFromString("1.00005")}))
	require.ErrorIs(t, err, domain.ErrValidation)
	assert.True(t, f.record(t, whA, p1).ReservedQuantity.IsZero())
}

func TestReserveForOrder_Validaciones(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.reservations.ReserveForOrder(ctx, orderHold("SO-6"))
	assert.ErrorIs(t, err, domain.ErrValidation)

	in := orderHold("", inventory.OrderItem{ProductID: p1, Quantity: dec(1)})
	_, err = f.reservations.ReserveForOrder(ctx, in)
	assert.ErrorIs(t, err, domain.ErrValidation)

	_, err = f.reservations.ReserveForOrder(ctx, orderHold("SO-6", inventory.OrderItem{ProductID: p1, Quantity: dec(0)}))
	assert.ErrorIs(t, err, domain.ErrValidation)

	_, err = f.reservations.ReserveForOrder(ctx, orderHold("SO-6", inventory.OrderItem{ProductID: "no-existe", Quantity: dec(1)}))
	assert.ErrorIs(t, err, domain.ErrNotFound)
}
