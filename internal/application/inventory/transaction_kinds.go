package inventory

import (
	"fmt"
	"strings"

	"github.com/jhoicas/inventario-ledger/internal/domain"
	"github.com/jhoicas/inventario-ledger/internal/domain/entity"
	rules "github.com/jhoicas/inventario-ledger/internal/domain/inventory"
)

// transactionKind es una variante cerrada de documento: valida su entrada y traduce sus líneas
// a primitivas del ledger al aprobar.
type transactionKind interface {
	prefix() string
	validateHeader(in *CreateTransactionInput) error
	validateLine(i int, line *TransactionLineInput) error
	// quantityFor devuelve la cantidad que se guarda en la línea (varianza en stocktake).
	quantityFor(line TransactionLineInput) lineQuantity
	ledgerOps(tx *entity.StockTransaction) []ledgerOp
}

var transactionKinds = map[entity.StockTransactionType]transactionKind{
	entity.TransactionTypeImport:    importKind{},
	entity.TransactionTypeExport:    exportKind{},
	entity.TransactionTypeDisposal:  disposalKind{},
	entity.TransactionTypeStocktake: stocktakeKind{},
	entity.TransactionTypeTransfer:  transferKind{},
}

func kindOf(t entity.StockTransactionType) (transactionKind, error) {
	k, ok := transactionKinds[t]
	if !ok {
		return nil, domain.NewValidationError("type", fmt.Sprintf("tipo de documento desconocido: %q", t))
	}
	return k, nil
}

func lineField(i int, name string) string { return fmt.Sprintf("lines[%d].%s", i, name) }

// singleWarehouse: import/export/disposal/stocktake operan sobre una sola bodega.
type singleWarehouse struct{}

func (singleWarehouse) validateHeader(in *CreateTransactionInput) error {
	if strings.TrimSpace(in.WarehouseID) == "" {
		return domain.NewValidationError("warehouse_id", "requerido")
	}
	return nil
}

// positiveLine: la cantidad de la línea debe ser > 0.
type positiveLine struct{}

func (positiveLine) validateLine(i int, line *TransactionLineInput) error {
	if strings.TrimSpace(line.ProductID) == "" {
		return domain.NewValidationError(lineField(i, "product_id"), "requerido")
	}
	if !line.Quantity.IsPositive() {
		return domain.NewValidationError(lineField(i, "quantity"), "debe ser mayor que cero")
	}
	if err := rules.CheckScale(lineField(i, "quantity"), line.Quantity); err != nil {
		return err
	}
	if line.UnitPrice != nil {
		if line.UnitPrice.IsNegative() {
			return domain.NewValidationError(lineField(i, "unit_price"), "no puede ser negativo")
		}
		if err := rules.CheckScale(lineField(i, "unit_price"), *line.UnitPrice); err != nil {
			return err
		}
	}
	return nil
}

func (positiveLine) quantityFor(line TransactionLineInput) lineQuantity {
	return lineQuantity{Quantity: line.Quantity}
}

// singleOps genera una primitiva por línea sobre la bodega del documento.
func singleOps(tx *entity.StockTransaction, sign int64, movementType string) []ledgerOp {
	ops := make([]ledgerOp, 0, len(tx.Details))
	for _, d := range tx.Details {
		q := d.Quantity
		if sign < 0 {
			q = q.Neg()
		}
		if q.IsZero() {
			continue
		}
		ops = append(ops, ledgerOp{
			Key:           entity.StockKey{WarehouseID: tx.WarehouseID, ProductID: d.ProductID},
			Kind:          opDelta,
			Quantity:      q,
			MovementType:  movementType,
			ReferenceType: ReferenceStockTransaction,
			ReferenceID:   tx.ID,
			Reason:        tx.Reason,
		})
	}
	return ops
}

type importKind struct {
	singleWarehouse
	positiveLine
}

func (importKind) prefix() string { return "IMP" }

func (importKind) ledgerOps(tx *entity.StockTransaction) []ledgerOp {
	return singleOps(tx, 1, entity.MovementTypeImport)
}

type exportKind struct {
	singleWarehouse
	positiveLine
}

func (exportKind) prefix() string { return "EXP" }

func (exportKind) ledgerOps(tx *entity.StockTransaction) []ledgerOp {
	return singleOps(tx, -1, entity.MovementTypeExport)
}

// disposalKind: baja de mercancía; siempre exige motivo.
type disposalKind struct {
	positiveLine
}

func (disposalKind) prefix() string { return "BAJ" }

func (disposalKind) validateHeader(in *CreateTransactionInput) error {
	if err := (singleWarehouse{}).validateHeader(in); err != nil {
		return err
	}
	if strings.TrimSpace(in.Reason) == "" {
		return domain.NewValidationError("reason", "requerido para bajas")
	}
	return nil
}

func (disposalKind) ledgerOps(tx *entity.StockTransaction) []ledgerOp {
	return singleOps(tx, -1, entity.MovementTypeDisposal)
}

// stocktakeKind: la línea registra cantidad de sistema y contada; se guarda la varianza como delta.
type stocktakeKind struct {
	singleWarehouse
}

func (stocktakeKind) prefix() string { return "INV" }

func (stocktakeKind) validateLine(i int, line *TransactionLineInput) error {
	if strings.TrimSpace(line.ProductID) == "" {
		return domain.NewValidationError(lineField(i, "product_id"), "requerido")
	}
	if line.SystemQuantity == nil {
		return domain.NewValidationError(lineField(i, "system_quantity"), "requerido en conteo físico")
	}
	if line.ActualQuantity == nil {
		return domain.NewValidationError(lineField(i, "actual_quantity"), "requerido en conteo físico")
	}
	if line.SystemQuantity.IsNegative() || line.ActualQuantity.IsNegative() {
		return domain.NewValidationError(lineField(i, "actual_quantity"), "no puede ser negativa")
	}
	if err := rules.CheckScale(lineField(i, "system_quantity"), *line.SystemQuantity); err != nil {
		return err
	}
	return rules.CheckScale(lineField(i, "actual_quantity"), *line.ActualQuantity)
}

func (stocktakeKind) quantityFor(line TransactionLineInput) lineQuantity {
	return lineQuantity{
		Quantity:       rules.Variance(*line.SystemQuantity, *line.ActualQuantity),
		SystemQuantity: line.SystemQuantity,
		ActualQuantity: line.ActualQuantity,
	}
}

func (stocktakeKind) ledgerOps(tx *entity.StockTransaction) []ledgerOp {
	return singleOps(tx, 1, entity.MovementTypeStocktake)
}

// transferKind: traslado inmediato (sin tránsito). Primero descuenta el origen de todas las líneas
// y luego acredita el destino; ambos dentro de la misma transacción.
type transferKind struct {
	positiveLine
}

func (transferKind) prefix() string { return "TRA" }

func (transferKind) validateHeader(in *CreateTransactionInput) error {
	if strings.TrimSpace(in.SourceWarehouseID) == "" {
		return domain.NewValidationError("source_warehouse_id", "requerido")
	}
	if strings.TrimSpace(in.DestinationWarehouseID) == "" {
		return domain.NewValidationError("destination_warehouse_id", "requerido")
	}
	if in.SourceWarehouseID == in.DestinationWarehouseID {
		return domain.NewValidationError("destination_warehouse_id", "debe ser distinta de la bodega origen")
	}
	return nil
}

func (transferKind) ledgerOps(tx *entity.StockTransaction) []ledgerOp {
	ops := make([]ledgerOp, 0, 2*len(tx.Details))
	for _, d := range tx.Details {
		ops = append(ops, ledgerOp{
			Key:           entity.StockKey{WarehouseID: tx.SourceWarehouseID, ProductID: d.ProductID},
			Kind:          opDelta,
			Quantity:      d.Quantity.Neg(),
			MovementType:  entity.MovementTypeTransferOut,
			ReferenceType: ReferenceStockTransaction,
			ReferenceID:   tx.ID,
			Reason:        tx.Reason,
		})
	}
	for _, d := range tx.Details {
		ops = append(ops, ledgerOp{
			Key:           entity.StockKey{WarehouseID: tx.DestinationWarehouseID, ProductID: d.ProductID},
			Kind:          opDelta,
			Quantity:      d.Quantity,
			MovementType:  entity.MovementTypeTransferIn,
			ReferenceType: ReferenceStockTransaction,
			ReferenceID:   tx.ID,
			Reason:        tx.Reason,
		})
	}
	return ops
}
