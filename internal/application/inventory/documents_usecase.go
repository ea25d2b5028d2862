package inventory

import (
	"context"
	"fmt"

	"github.com/jhoicas/inventario-ledger/internal/domain"
	"github.com/jhoicas/inventario-ledger/internal/domain/entity"
	"github.com/jhoicas/inventario-ledger/internal/domain/repository"
)

// DocumentsUseCase genera la representación imprimible (PDF) de traslados y documentos de inventario.
type DocumentsUseCase struct {
	transactions repository.StockTransactionRepository
	transfers    repository.StockTransferRepository
	catalog      catalog
	renderer     DocumentRenderer
}

// NewDocumentsUseCase construye el caso de uso inyectando todas sus dependencias.
func NewDocumentsUseCase(
	transactions repository.StockTransactionRepository,
	transfers repository.StockTransferRepository,
	products repository.ProductRepository,
	warehouses repository.WarehouseRepository,
	renderer DocumentRenderer,
) *DocumentsUseCase {
	return &DocumentsUseCase{
		transactions: transactions,
		transfers:    transfers,
		catalog:      catalog{products: products, warehouses: warehouses},
		renderer:     renderer,
	}
}

// TransferPDF devuelve la remisión del traslado y el nombre de archivo sugerido.
func (uc *DocumentsUseCase) TransferPDF(ctx context.Context, id string) (pdfBytes []byte, filename string, err error) {
	// ── 1. Cargar traslado ────────────────────────────────────────────────────
	t, err := uc.transfers.GetByID(ctx, id)
	if err != nil {
		return nil, "", fmt.Errorf("pdf: obtener traslado: %w", err)
	}
	if t == nil {
		return nil, "", domain.NewNotFound("traslado", id)
	}

	// ── 2. Bodegas y nombres de producto ──────────────────────────────────────
	source, err := uc.warehouse(ctx, t.SourceWarehouseID)
	if err != nil {
		return nil, "", err
	}
	dest, err := uc.warehouse(ctx, t.DestinationWarehouseID)
	if err != nil {
		return nil, "", err
	}
	ids := make([]string, 0, len(t.Details))
	for _, d := range t.Details {
		ids = append(ids, d.ProductID)
	}

	// ── 3. Generar PDF ────────────────────────────────────────────────────────
	pdfBytes, err = uc.renderer.RenderTransfer(ctx, TransferDocument{
		Transfer:     t,
		Source:       source,
		Destination:  dest,
		ProductNames: uc.catalog.productNames(ctx, ids),
	})
	if err != nil {
		return nil, "", fmt.Errorf("pdf: generación fallida: %w", err)
	}
	return pdfBytes, fmt.Sprintf("traslado_%s.pdf", t.Number), nil
}

// TransactionPDF devuelve el comprobante del documento de inventario.
func (uc *DocumentsUseCase) TransactionPDF(ctx context.Context, id string) (pdfBytes []byte, filename string, err error) {
	tx, err := uc.transactions.GetByID(ctx, id)
	if err != nil {
		return nil, "", fmt.Errorf("pdf: obtener documento: %w", err)
	}
	if tx == nil {
		return nil, "", domain.NewNotFound("documento", id)
	}

	warehouses := make(map[string]*entity.Warehouse, 2)
	for _, whID := range tx.Warehouses() {
		wh, err := uc.warehouse(ctx, whID)
		if err != nil {
			return nil, "", err
		}
		warehouses[whID] = wh
	}
	ids := make([]string, 0, len(tx.Details))
	for _, d := range tx.Details {
		ids = append(ids, d.ProductID)
	}

	pdfBytes, err = uc.renderer.RenderTransaction(ctx, TransactionDocument{
		Transaction:  tx,
		Warehouses:   warehouses,
		ProductNames: uc.catalog.productNames(ctx, ids),
	})
	if err != nil {
		return nil, "", fmt.Errorf("pdf: generación fallida: %w", err)
	}
	return pdfBytes, fmt.Sprintf("%s_%s.pdf", tx.Type, tx.Number), nil
}

// warehouse resuelve la bodega; si fue eliminada del catálogo se imprime solo el ID.
func (uc *DocumentsUseCase) warehouse(ctx context.Context, id string) (*entity.Warehouse, error) {
	wh, err := uc.catalog.warehouses.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("pdf: obtener bodega: %w", err)
	}
	if wh == nil {
		wh = &entity.Warehouse{ID: id, Name: id}
	}
	return wh, nil
}
