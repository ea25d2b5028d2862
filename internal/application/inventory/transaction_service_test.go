package inventory_test

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/inventario-ledger/internal/application/inventory"
	"github.com/jhoicas/inventario-ledger/internal/domain"
	"github.com/jhoicas/inventario-ledger/internal/domain/entity"
	"github.com/jhoicas/inventario-ledger/internal/domain/repository"
)

func line(prod string, qty int64) inventory.TransactionLineInput {
	return inventory.TransactionLineInput{ProductID: prod, Quantity: dec(qty)}
}

// ── Creación y validación ────────────────────────────────────────────────────

func TestCreate_ValidacionesAntesDePersistir(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	cases := []struct {
		name string
		typ  entity.StockTransactionType
		in   inventory.CreateTransactionInput
	}{
		{"sin líneas", entity.TransactionTypeImport, inventory.CreateTransactionInput{WarehouseID: whA, RequestedBy: "u-1"}},
		{"cantidad cero", entity.TransactionTypeExport, inventory.CreateTransactionInput{WarehouseID: whA, RequestedBy: "u-1", Lines: []inventory.TransactionLineInput{line(p1, 0)}}},
		{"cantidad negativa", entity.TransactionTypeImport, inventory.CreateTransactionInput{WarehouseID: whA, RequestedBy: "u-1", Lines: []inventory.TransactionLineInput{line(p1, -3)}}},
		{"baja sin motivo", entity.TransactionTypeDisposal, inventory.CreateTransactionInput{WarehouseID: whA, RequestedBy: "u-1", Lines: []inventory.TransactionLineInput{line(p1, 1)}}},
		{"sin bodega", entity.TransactionTypeImport, inventory.CreateTransactionInput{RequestedBy: "u-1", Lines: []inventory.TransactionLineInput{line(p1, 1)}}},
		{"conteo sin cantidades", entity.TransactionTypeStocktake, inventory.CreateTransactionInput{WarehouseID: whA, RequestedBy: "u-1", Lines: []inventory.TransactionLineInput{{ProductID: p1}}}},
		{"traslado misma bodega", entity.TransactionTypeTransfer, inventory.CreateTransactionInput{SourceWarehouseID: whA, DestinationWarehouseID: whA, RequestedBy: "u-1", Lines: []inventory.TransactionLineInput{line(p1, 1)}}},
		{"tipo desconocido", entity.StockTransactionType("gift"), inventory.CreateTransactionInput{WarehouseID: whA, RequestedBy: "u-1", Lines: []inventory.TransactionLineInput{line(p1, 1)}}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := f.transactions.Create(ctx, tc.typ, tc.in)
			require.ErrorIs(t, err, domain.ErrValidation)
		})
	}

	list, err := f.transactions.List(ctx, repository.DocumentFilter{})
	require.NoError(t, err)
	assert.Empty(t, list)
}

func TestCreate_ProductoInexistente(t *testing.T) {
	f := newFixture(t)
	_, err := f.transactions.CreateImport(context.Background(), inventory.CreateTransactionInput{
		WarehouseID: whA, RequestedBy: "u-1", Lines: []inventory.TransactionLineInput{line("no-existe", 1)},
	})
	require.ErrorIs(t, err, domain.ErrNotFound)
}

func TestCreate_NoTocaElLedger(t *testing.T) {
	f := newFixture(t)
	tx, err := f.transactions.CreateImport(context.Background(), inventory.CreateTransactionInput{
		WarehouseID: whA, RequestedBy: "u-1", Lines: []inventory.TransactionLineInput{line(p1, 10)},
	})
	require.NoError(t, err)
	assert.Equal(t, entity.TransactionStatusPending, tx.Status)
	assert.Contains(t, tx.Number, "IMP-")
	assert.True(t, f.record(t, whA, p1).Quantity.IsZero())
}

func TestCreate_FallaAMitadNoDejaDocumento(t *testing.T) {
	f := newFixtureWith(t, partialDocuments, entity.TransferDebitAtApprove)
	ctx := context.Background()

	_, err := f.transactions.CreateImport(ctx, inventory.CreateTransactionInput{
		WarehouseID: whA, RequestedBy: "u-1", Lines: []inventory.TransactionLineInput{line(p1, 10), line(p2, 4)},
	})
	require.ErrorIs(t, err, errDetailInsert)

	list, err := f.transactions.List(ctx, repository.DocumentFilter{})
	require.NoError(t, err)
	assert.Empty(t, list)
}

func TestCreate_RechazaMasDeCuatroDecimales(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	fine := decimal.RequireFromString("1.00001")

	cases := []struct {
		name string
		typ  entity.StockTransactionType
		ln   inventory.TransactionLineInput
	}{
		{"cantidad", entity.TransactionTypeImport, inventory.TransactionLineInput{ProductID: p1, Quantity: fine}},
		{"precio", entity.TransactionTypeImport, inventory.TransactionLineInput{ProductID: p1, Quantity: dec(1), UnitPrice: &fine}},
		{"conteo real", entity.TransactionTypeStocktake, inventory.TransactionLineInput{ProductID: p1, SystemQuantity: decp(1), ActualQuantity: &fine}},
		{"conteo sistema", entity.TransactionTypeStocktake, inventory.TransactionLineInput{ProductID: p1, SystemQuantity: &fine, ActualQuantity: decp(1)}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := f.transactions.Create(ctx, tc.typ, inventory.CreateTransactionInput{
				WarehouseID: whA, RequestedBy: "u-1", Lines: []inventory.TransactionLineInput{tc.ln},
			})
			require.ErrorIs(t, err, domain.ErrValidation)
		})
	}

	tx, err := f.transactions.CreateImport(ctx, inventory.CreateTransactionInput{
		WarehouseID: whA, RequestedBy: "u-1",
		Lines: []inventory.TransactionLineInput{{ProductID: p1, Quantity: decimal.RequireFromString("2.5000")}},
	})
	require.NoError(t, err)
	assert.True(t, tx.Details[0].Quantity.Equal(decimal.RequireFromString("2.5")))
}

// ── Aprobación ───────────────────────────────────────────────────────────────

func TestApprove_ImportSumaYDejaDiario(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	tx, err := f.transactions.CreateImport(ctx, inventory.CreateTransactionInput{
		WarehouseID: whA, RequestedBy: "u-1", Reason: "OC-77",
		Lines: []inventory.TransactionLineInput{line(p1, 10), line(p2, 4)},
	})
	require.NoError(t, err)

	approved, err := f.transactions.Approve(ctx, tx.ID, "sup-1", "ok")
	require.NoError(t, err)
	assert.Equal(t, entity.TransactionStatusApproved, approved.Status)
	require.NotNil(t, approved.ApprovedBy)
	assert.Equal(t, "sup-1", *approved.ApprovedBy)
	assert.NotNil(t, approved.ApprovedAt)

	assert.True(t, f.record(t, whA, p1).Quantity.Equal(dec(10)))
	assert.True(t, f.record(t, whA, p2).Quantity.Equal(dec(4)))

	movs := f.movements(t, repository.MovementFilter{ReferenceType: inventory.ReferenceStockTransaction, ReferenceID: tx.ID})
	require.Len(t, movs, 2)
	for _, m := range movs {
		assert.Equal(t, entity.MovementTypeImport, m.Type)
		assert.Equal(t, "sup-1", m.CreatedBy)
	}
}

func TestApprove_ExportAtomico(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.seed(t, whA, p1, 20, 0)
	f.seed(t, whA, p2, 5, 0)
	f.seed(t, whA, p3, 20, 0)

	tx, err := f.transactions.CreateExport(ctx, inventory.CreateTransactionInput{
		WarehouseID: whA, RequestedBy: "u-1",
		Lines: []inventory.TransactionLineInput{line(p1, 10), line(p2, 8), line(p3, 1)},
	})
	require.NoError(t, err)

	_, err = f.transactions.Approve(ctx, tx.ID, "sup-1", "")
	require.ErrorIs(t, err, domain.ErrInsufficientInventory)
	shortage, ok := domain.ShortageOf(err)
	require.True(t, ok)
	assert.True(t, shortage.Equal(dec(3)))

	assert.True(t, f.record(t, whA, p1).Quantity.Equal(dec(20)), "la línea 1 no debe quedar aplicada")
	assert.True(t, f.record(t, whA, p2).Quantity.Equal(dec(5)))
	assert.True(t, f.record(t, whA, p3).Quantity.Equal(dec(20)))
	assert.Empty(t, f.movements(t, repository.MovementFilter{ReferenceID: tx.ID}))

	got, err := f.transactions.GetByID(ctx, tx.ID)
	require.NoError(t, err)
	assert.Equal(t, entity.TransactionStatusPending, got.Status)
	assert.Nil(t, got.ApprovedBy)
}

func TestApprove_StocktakeAplicaVarianza(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.seed(t, whA, p1, 50, 0)

	tx, err := f.transactions.CreateStocktake(ctx, inventory.CreateTransactionInput{
		WarehouseID: whA, RequestedBy: "u-1",
		Lines: []inventory.TransactionLineInput{{ProductID: p1, SystemQuantity: decp(50), ActualQuantity: decp(42)}},
	})
	require.NoError(t, err)
	require.Len(t, tx.Details, 1)
	assert.True(t, tx.Details[0].Quantity.Equal(dec(-8)))

	_, err = f.transactions.Approve(ctx, tx.ID, "sup-1", "")
	require.NoError(t, err)
	assert.True(t, f.record(t, whA, p1).Quantity.Equal(dec(42)))
}

func TestApprove_StocktakeSinDiferenciaNoMueve(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.seed(t, whA, p1, 7, 0)

	tx, err := f.transactions.CreateStocktake(ctx, inventory.CreateTransactionInput{
		WarehouseID: whA, RequestedBy: "u-1",
		Lines: []inventory.TransactionLineInput{{ProductID: p1, SystemQuantity: decp(7), ActualQuantity: decp(7)}},
	})
	require.NoError(t, err)
	_, err = f.transactions.Approve(ctx, tx.ID, "sup-1", "")
	require.NoError(t, err)
	assert.Empty(t, f.movements(t, repository.MovementFilter{ReferenceID: tx.ID}))
}

func TestApprove_DisposalDescuenta(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.seed(t, whA, p1, 9, 0)

	tx, err := f.transactions.CreateDisposal(ctx, inventory.CreateTransactionInput{
		WarehouseID: whA, RequestedBy: "u-1", Reason: "vencido",
		Lines: []inventory.TransactionLineInput{line(p1, 4)},
	})
	require.NoError(t, err)
	_, err = f.transactions.Approve(ctx, tx.ID, "sup-1", "")
	require.NoError(t, err)

	assert.True(t, f.record(t, whA, p1).Quantity.Equal(dec(5)))
	movs := f.movements(t, repository.MovementFilter{ReferenceID: tx.ID})
	require.Len(t, movs, 1)
	assert.Equal(t, entity.MovementTypeDisposal, movs[0].Type)
	assert.Equal(t, "vencido", movs[0].Reason)
}

func TestApprove_DosVecesEsTransicionInvalida(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	tx, err := f.transactions.CreateImport(ctx, inventory.CreateTransactionInput{
		WarehouseID: whA, RequestedBy: "u-1", Lines: []inventory.TransactionLineInput{line(p1, 3)},
	})
	require.NoError(t, err)
	_, err = f.transactions.Approve(ctx, tx.ID, "sup-1", "")
	require.NoError(t, err)

	_, err = f.transactions.Approve(ctx, tx.ID, "sup-1", "")
	require.ErrorIs(t, err, domain.ErrInvalidStateTransition)
	assert.True(t, f.record(t, whA, p1).Quantity.Equal(dec(3)), "no se aplica dos veces")
}

func TestApprove_Inexistente(t *testing.T) {
	f := newFixture(t)
	_, err := f.transactions.Approve(context.Background(), "no-existe", "sup-1", "")
	require.ErrorIs(t, err, domain.ErrNotFound)
}

// ── Borrador, envío y cancelación ────────────────────────────────────────────

func TestDraft_RequiereSubmitAntesDeAprobar(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	tx, err := f.transactions.CreateImport(ctx, inventory.CreateTransactionInput{
		WarehouseID: whA, RequestedBy: "u-1", Draft: true, Lines: []inventory.TransactionLineInput{line(p1, 2)},
	})
	require.NoError(t, err)
	assert.Equal(t, entity.TransactionStatusDraft, tx.Status)

	_, err = f.transactions.Approve(ctx, tx.ID, "sup-1", "")
	require.ErrorIs(t, err, domain.ErrInvalidStateTransition)

	sub, err := f.transactions.Submit(ctx, tx.ID, "u-1")
	require.NoError(t, err)
	assert.Equal(t, entity.TransactionStatusPending, sub.Status)

	_, err = f.transactions.Submit(ctx, tx.ID, "u-1")
	require.ErrorIs(t, err, domain.ErrInvalidStateTransition)

	_, err = f.transactions.Approve(ctx, tx.ID, "sup-1", "")
	require.NoError(t, err)
}

func TestCancel_PendienteYAprobado(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	pending, err := f.transactions.CreateImport(ctx, inventory.CreateTransactionInput{
		WarehouseID: whA, RequestedBy: "u-1", Lines: []inventory.TransactionLineInput{line(p1, 2)},
	})
	require.NoError(t, err)

	_, err = f.transactions.Cancel(ctx, pending.ID, "u-1", "")
	require.ErrorIs(t, err, domain.ErrValidation)

	cancelled, err := f.transactions.Cancel(ctx, pending.ID, "u-1", "duplicado")
	require.NoError(t, err)
	assert.Equal(t, entity.TransactionStatusCancelled, cancelled.Status)
	assert.Equal(t, "duplicado", cancelled.CancelReason)

	_, err = f.transactions.Approve(ctx, pending.ID, "sup-1", "")
	require.ErrorIs(t, err, domain.ErrInvalidStateTransition)

	approved, err := f.transactions.CreateImport(ctx, inventory.CreateTransactionInput{
		WarehouseID: whA, RequestedBy: "u-1", Lines: []inventory.TransactionLineInput{line(p1, 2)},
	})
	require.NoError(t, err)
	_, err = f.transactions.Approve(ctx, approved.ID, "sup-1", "")
	require.NoError(t, err)
	_, err = f.transactions.Cancel(ctx, approved.ID, "u-1", "tarde")
	require.ErrorIs(t, err, domain.ErrInvalidStateTransition)
	assert.True(t, f.record(t, whA, p1).Quantity.Equal(dec(2)))
}

// ── Traslado inmediato ───────────────────────────────────────────────────────

func TestApprove_TransferMueveEntreBodegas(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.seed(t, whA, p1, 10, 0)

	tx, err := f.transactions.CreateTransfer(ctx, inventory.CreateTransactionInput{
		SourceWarehouseID: whA, DestinationWarehouseID: whB, RequestedBy: "u-1",
		Lines: []inventory.TransactionLineInput{line(p1, 6)},
	})
	require.NoError(t, err)
	_, err = f.transactions.Approve(ctx, tx.ID, "sup-1", "")
	require.NoError(t, err)

	assert.True(t, f.record(t, whA, p1).Quantity.Equal(dec(4)))
	assert.True(t, f.record(t, whB, p1).Quantity.Equal(dec(6)))
}

func TestApprove_TransferFallaCreditoDestinoRevierteOrigen(t *testing.T) {
	f := newFixtureWith(t, failOn(whB, p2), entity.TransferDebitAtApprove)
	ctx := context.Background()
	f.seed(t, whA, p1, 10, 0)
	f.seed(t, whA, p2, 10, 0)

	tx, err := f.transactions.CreateTransfer(ctx, inventory.CreateTransactionInput{
		SourceWarehouseID: whA, DestinationWarehouseID: whB, RequestedBy: "u-1",
		Lines: []inventory.TransactionLineInput{line(p1, 3), line(p2, 4)},
	})
	require.NoError(t, err)

	_, err = f.transactions.Approve(ctx, tx.ID, "sup-1", "")
	require.ErrorIs(t, err, errUpsertFailed)

	assert.True(t, f.record(t, whA, p1).Quantity.Equal(dec(10)))
	assert.True(t, f.record(t, whA, p2).Quantity.Equal(dec(10)))
	assert.True(t, f.record(t, whB, p1).Quantity.IsZero())
	assert.Empty(t, f.movements(t, repository.MovementFilter{ReferenceID: tx.ID}))

	got, err := f.transactions.GetByID(ctx, tx.ID)
	require.NoError(t, err)
	assert.Equal(t, entity.TransactionStatusPending, got.Status)
}

// ── Consultas ────────────────────────────────────────────────────────────────

func TestList_FiltraPorTipoEstadoYProducto(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	imp, err := f.transactions.CreateImport(ctx, inventory.CreateTransactionInput{
		WarehouseID: whA, RequestedBy: "u-1", Lines: []inventory.TransactionLineInput{line(p1, 1)},
	})
	require.NoError(t, err)
	_, err = f.transactions.CreateImport(ctx, inventory.CreateTransactionInput{
		WarehouseID: whB, RequestedBy: "u-1", Lines: []inventory.TransactionLineInput{line(p2, 1)},
	})
	require.NoError(t, err)
	_, err = f.transactions.Approve(ctx, imp.ID, "sup-1", "")
	require.NoError(t, err)

	approved, err := f.transactions.List(ctx, repository.DocumentFilter{Status: string(entity.TransactionStatusApproved)})
	require.NoError(t, err)
	require.Len(t, approved, 1)
	assert.Equal(t, imp.ID, approved[0].ID)

	byProduct, err := f.transactions.List(ctx, repository.DocumentFilter{ProductID: p2})
	require.NoError(t, err)
	require.Len(t, byProduct, 1)
	assert.Equal(t, whB, byProduct[0].WarehouseID)

	future := time.Now().Add(time.Hour)
	none, err := f.transactions.List(ctx, repository.DocumentFilter{From: &future})
	require.NoError(t, err)
	assert.Empty(t, none)

	_, err = f.transactions.List(ctx, repository.DocumentFilter{Type: "gift"})
	require.ErrorIs(t, err, domain.ErrValidation)
}
