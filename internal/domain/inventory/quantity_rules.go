package inventory

import (
	"github.com/shopspring/decimal"

	"github.com/jhoicas/inventario-ledger/internal/domain"
	"github.com/jhoicas/inventario-ledger/internal/domain/entity"
)

// Reglas puras de cantidad sobre un InventoryRecord (servicio de dominio).
// No persisten nada: el ledger las aplica sobre el registro bloqueado y luego guarda.
// Todas preservan 0 <= reservado <= cantidad; si no pueden, devuelven error y no tocan el registro.

// Scale decimales que guarda la BD (NUMERIC(18,4)).
const Scale = 4

// CheckScale rechaza valores con más de Scale decimales significativos; la columna los redondearía sin avisar.
func CheckScale(field string, v decimal.Decimal) error {
	if !v.Equal(v.Truncate(Scale)) {
		return domain.NewValidationError(field, "admite como máximo 4 decimales")
	}
	return nil
}

// Change describe el efecto de una primitiva, para el diario de movimientos.
type Change struct {
	QuantityDelta  decimal.Decimal
	ReservedDelta  decimal.Decimal
	QuantityBefore decimal.Decimal
	QuantityAfter  decimal.Decimal
	ReservedBefore decimal.Decimal
	ReservedAfter  decimal.Decimal
}

func newChange(r *entity.InventoryRecord) Change {
	return Change{QuantityBefore: r.Quantity, ReservedBefore: r.ReservedQuantity}
}

func (c *Change) close(r *entity.InventoryRecord) {
	c.QuantityAfter = r.Quantity
	c.ReservedAfter = r.ReservedQuantity
	c.QuantityDelta = c.QuantityAfter.Sub(c.QuantityBefore)
	c.ReservedDelta = c.ReservedAfter.Sub(c.ReservedBefore)
}

// ApplyDelta: cantidad += delta.
// Un descuento solo puede tomar lo disponible: lo reservado no se puede sacar por debajo.
func ApplyDelta(r *entity.InventoryRecord, delta decimal.Decimal) (Change, error) {
	ch := newChange(r)
	if delta.IsNegative() {
		requested := delta.Neg()
		if requested.GreaterThan(r.Available()) {
			return Change{}, domain.NewInsufficientInventory(r.WarehouseID, r.ProductID, requested, r.Available())
		}
	}
	r.Quantity = r.Quantity.Add(delta)
	ch.close(r)
	return ch, nil
}

// SetQuantity sobrescribe la cantidad. Falla si quedaría por debajo de lo ya reservado.
func SetQuantity(r *entity.InventoryRecord, newQuantity decimal.Decimal) (Change, error) {
	if newQuantity.IsNegative() {
		return Change{}, domain.NewValidationError("quantity", "no puede ser negativa")
	}
	if newQuantity.LessThan(r.ReservedQuantity) {
		return Change{}, domain.NewInsufficientInventory(r.WarehouseID, r.ProductID, r.ReservedQuantity, newQuantity)
	}
	ch := newChange(r)
	r.Quantity = newQuantity
	ch.close(r)
	return ch, nil
}

// Reserve incrementa lo reservado si hay disponible suficiente.
// No es idempotente: cada llamada suma.
func Reserve(r *entity.InventoryRecord, quantity decimal.Decimal) (Change, error) {
	if !quantity.IsPositive() {
		return Change{}, domain.NewValidationError("quantity", "debe ser mayor que cero")
	}
	if quantity.GreaterThan(r.Available()) {
		return Change{}, domain.NewInsufficientInventory(r.WarehouseID, r.ProductID, quantity, r.Available())
	}
	ch := newChange(r)
	r.ReservedQuantity = r.ReservedQuantity.Add(quantity)
	ch.close(r)
	return ch, nil
}

// Release descuenta min(quantity, reservado). Liberar de más no es error.
func Release(r *entity.InventoryRecord, quantity decimal.Decimal) (Change, error) {
	if !quantity.IsPositive() {
		return Change{}, domain.NewValidationError("quantity", "debe ser mayor que cero")
	}
	ch := newChange(r)
	r.ReservedQuantity = r.ReservedQuantity.Sub(decimal.Min(quantity, r.ReservedQuantity))
	ch.close(r)
	return ch, nil
}

// Variance = actual - sistema (stocktake).
func Variance(systemQuantity, actualQuantity decimal.Decimal) decimal.Decimal {
	return actualQuantity.Sub(systemQuantity)
}

// Shortage = max(0, requested - available).
func Shortage(requested, available decimal.Decimal) decimal.Decimal {
	s := requested.Sub(available)
	if s.IsNegative() {
		return decimal.Zero
	}
	return s
}
