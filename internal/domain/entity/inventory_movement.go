package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Tipos de movimiento del diario del ledger.
const (
	MovementTypeImport      = "IMPORT"          // entrada aprobada
	MovementTypeExport      = "EXPORT"          // salida aprobada
	MovementTypeDisposal    = "DISPOSAL"        // baja
	MovementTypeStocktake   = "STOCKTAKE"       // diferencia de conteo físico
	MovementTypeTransferOut = "TRANSFER_OUT"    // salida de bodega origen
	MovementTypeTransferIn  = "TRANSFER_IN"     // entrada en bodega destino
	MovementTypeTransferRet = "TRANSFER_RETURN" // devolución al origen al cancelar un traslado
	MovementTypeAdjustment  = "ADJUSTMENT"      // corrección manual relativa
	MovementTypeSet         = "SET"             // corrección manual absoluta
	MovementTypeReserve     = "RESERVE"
	MovementTypeRelease     = "RELEASE"
)

// InventoryMovement es una entrada inmutable del diario: cada primitiva del ledger deja una.
// Guarda el antes/después para poder reconstruir cualquier registro.
type InventoryMovement struct {
	ID             string
	WarehouseID    string
	ProductID      string
	Type           string
	QuantityDelta  decimal.Decimal
	ReservedDelta  decimal.Decimal
	QuantityBefore decimal.Decimal
	QuantityAfter  decimal.Decimal
	ReservedBefore decimal.Decimal
	ReservedAfter  decimal.Decimal
	ReferenceType  string // stock_transaction, stock_transfer, sales_order, ...
	ReferenceID    string
	Reason         string
	CreatedBy      string
	CreatedAt      time.Time
}

// ReservationBalance es lo que queda retenido para una etiqueta (referenceType, referenceID)
// en un par (bodega, producto).
type ReservationBalance struct {
	WarehouseID   string
	ProductID     string
	ReferenceType string
	ReferenceID   string
	Outstanding   decimal.Decimal
}
