package repository

import (
	"time"

	"github.com/shopspring/decimal"
)

// DocumentFilter filtros para listar documentos (transacciones y traslados).
// Campos vacíos/nil no filtran. WarehouseID coincide con bodega, origen o destino.
type DocumentFilter struct {
	WarehouseID string
	ProductID   string
	Type        string
	Status      string
	From        *time.Time
	To          *time.Time
	Limit       int
	Offset      int
}

// MovementFilter filtros para el diario de movimientos.
type MovementFilter struct {
	WarehouseID   string
	ProductID     string
	ReferenceType string
	ReferenceID   string
	From          *time.Time
	To            *time.Time
	Limit         int
	Offset        int
}

// ExpiryFilter ventana de vencimiento.
type ExpiryFilter struct {
	WarehouseID string
	From        time.Time
	To          time.Time
}

// LowStockItem producto con disponible por debajo de su punto de reorden.
type LowStockItem struct {
	WarehouseID  string
	ProductID    string
	SKU          string
	ProductName  string
	Quantity     decimal.Decimal
	Reserved     decimal.Decimal
	Available    decimal.Decimal
	ReorderPoint decimal.Decimal
}

// NormalizeLimit aplica límites por defecto a la paginación.
func NormalizeLimit(limit int) int {
	if limit <= 0 {
		return 50
	}
	if limit > 500 {
		return 500
	}
	return limit
}
