package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Product es la vista mínima del catálogo que necesita el ledger: existencia y punto de reorden.
// Precios y costos los maneja el catálogo (fuera de este servicio).
type Product struct {
	ID           string
	SKU          string
	Name         string
	UnitMeasure  string
	ReorderPoint decimal.Decimal // 0 = sin alerta de stock bajo
	Active       bool
	CreatedAt    time.Time
	UpdatedAt    time.Time
}
