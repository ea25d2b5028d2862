package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// InventoryRecord es el estado de existencias de un par (bodega, producto).
// Se crea de forma perezosa en el primer movimiento que lo toca y nunca se elimina.
// Solo el Ledger (application/inventory) debe modificar Quantity y ReservedQuantity.
//
// Invariante: 0 <= ReservedQuantity <= Quantity.
type InventoryRecord struct {
	WarehouseID      string
	ProductID        string
	Quantity         decimal.Decimal // existencia física
	ReservedQuantity decimal.Decimal // retenido para compromisos pendientes
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

// NewInventoryRecord devuelve el registro en cero para un par sin historia.
func NewInventoryRecord(warehouseID, productID string) *InventoryRecord {
	return &InventoryRecord{
		WarehouseID:      warehouseID,
		ProductID:        productID,
		Quantity:         decimal.Zero,
		ReservedQuantity: decimal.Zero,
	}
}

// Available = Quantity - ReservedQuantity. Siempre se recalcula, nunca se persiste.
func (r *InventoryRecord) Available() decimal.Decimal {
	return r.Quantity.Sub(r.ReservedQuantity)
}

// Key identifica el registro.
func (r *InventoryRecord) Key() StockKey {
	return StockKey{WarehouseID: r.WarehouseID, ProductID: r.ProductID}
}

// Clone copia el registro (los decimal son inmutables).
func (r *InventoryRecord) Clone() *InventoryRecord {
	c := *r
	return &c
}

// StockKey es la llave de serialización del ledger.
type StockKey struct {
	WarehouseID string
	ProductID   string
}

// Less ordena por (bodega, producto); se usa para adquirir bloqueos siempre en el mismo orden.
func (k StockKey) Less(o StockKey) bool {
	if k.WarehouseID != o.WarehouseID {
		return k.WarehouseID < o.WarehouseID
	}
	return k.ProductID < o.ProductID
}
