package inventory_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/inventario-ledger/internal/application/inventory"
	"github.com/jhoicas/inventario-ledger/internal/domain"
)

type captureRenderer struct {
	transfer    *inventory.TransferDocument
	transaction *inventory.TransactionDocument
}

func (r *captureRenderer) RenderTransfer(_ context.Context, doc inventory.TransferDocument) ([]byte, error) {
	r.transfer = &doc
	return []byte("%PDF-transfer"), nil
}

func (r *captureRenderer) RenderTransaction(_ context.Context, doc inventory.TransactionDocument) ([]byte, error) {
	r.transaction = &doc
	return []byte("%PDF-transaction"), nil
}

func TestTransferPDF_ResuelveBodegasYProductos(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	tr, err := f.transfers.Create(ctx, transferInput(tline(p1, 2, 10)))
	require.NoError(t, err)

	r := &captureRenderer{}
	uc := inventory.NewDocumentsUseCase(f.store.Transactions(), f.store.Transfers(), f.store.Products(), f.store.Warehouses(), r)
	pdf, name, err := uc.TransferPDF(ctx, tr.ID)
	require.NoError(t, err)
	assert.Equal(t, []byte("%PDF-transfer"), pdf)
	assert.Equal(t, "traslado_"+tr.Number+".pdf", name)

	require.NotNil(t, r.transfer)
	assert.Equal(t, "Bodega "+whA, r.transfer.Source.Name)
	assert.Equal(t, "Bodega "+whB, r.transfer.Destination.Name)
	assert.Equal(t, "SKU-p-1 Producto p-1", r.transfer.ProductNames[p1])
}

func TestTransactionPDF_Inexistente(t *testing.T) {
	f := newFixture(t)
	uc := inventory.NewDocumentsUseCase(f.store.Transactions(), f.store.Transfers(), f.store.Products(), f.store.Warehouses(), &captureRenderer{})
	_, _, err := uc.TransactionPDF(context.Background(), "no-existe")
	require.ErrorIs(t, err, domain.ErrNotFound)
}

func TestTransactionPDF_NombreSegunTipo(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	tx, err := f.transactions.CreateImport(ctx, inventory.CreateTransactionInput{
		WarehouseID: whA, RequestedBy: "u-1", Lines: []inventory.TransactionLineInput{line(p1, 1)},
	})
	require.NoError(t, err)

	r := &captureRenderer{}
	uc := inventory.NewDocumentsUseCase(f.store.Transactions(), f.store.Transfers(), f.store.Products(), f.store.Warehouses(), r)
	_, name, err := uc.TransactionPDF(ctx, tx.ID)
	require.NoError(t, err)
	assert.Equal(t, "import_"+tx.Number+".pdf", name)
	require.NotNil(t, r.transaction)
	assert.Contains(t, r.transaction.Warehouses, whA)
}
