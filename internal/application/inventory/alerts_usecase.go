package inventory

import (
	"context"
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/inventario-ledger/internal/application/dto"
	"github.com/jhoicas/inventario-ledger/internal/domain"
	"github.com/jhoicas/inventario-ledger/internal/domain/repository"
)

// AlertsUseCase arma las listas que consumen reportes y el job de alertas:
// stock bajo (disponible < punto de reorden) y lotes próximos a vencer.
type AlertsUseCase struct {
	records      repository.InventoryRecordRepository
	transactions repository.StockTransactionRepository
	now          func() time.Time
}

// NewAlertsUseCase construye el caso de uso de alertas.
func NewAlertsUseCase(
	records repository.InventoryRecordRepository,
	transactions repository.StockTransactionRepository,
) *AlertsUseCase {
	return &AlertsUseCase{records: records, transactions: transactions, now: time.Now}
}

// LowStock devuelve los productos bajo punto de reorden con la cantidad sugerida de reposición,
// ordenados por déficit relativo. warehouseID vacío = todas las bodegas.
func (uc *AlertsUseCase) LowStock(ctx context.Context, warehouseID string) ([]dto.LowStockAlertDTO, error) {
	rawItems, err := uc.records.ListBelowReorderPoint(ctx, warehouseID)
	if err != nil {
		return nil, err
	}
	if len(rawItems) == 0 {
		return []dto.LowStockAlertDTO{}, nil
	}

	factor := decimal.NewFromFloat(1.5)
	alerts := make([]dto.LowStockAlertDTO, 0, len(rawItems))
	for _, item := range rawItems {
		idealStock := item.ReorderPoint.Mul(factor)
		suggestedQty := idealStock.Sub(item.Available)
		if suggestedQty.IsNegative() {
			suggestedQty = decimal.Zero
		}
		alerts = append(alerts, dto.LowStockAlertDTO{
			WarehouseID:       item.WarehouseID,
			ProductID:         item.ProductID,
			SKU:               item.SKU,
			ProductName:       item.ProductName,
			Quantity:          item.Quantity,
			Reserved:          item.Reserved,
			Available:         item.Available,
			ReorderPoint:      item.ReorderPoint,
			IdealStock:        idealStock,
			SuggestedOrderQty: suggestedQty,
		})
	}

	// Mayor déficit relativo primero (disponible / reorden más bajo); empate por déficit absoluto.
	sort.SliceStable(alerts, func(i, j int) bool {
		a, b := alerts[i], alerts[j]
		ra := a.Available.Div(a.ReorderPoint)
		rb := b.Available.Div(b.ReorderPoint)
		if !ra.Equal(rb) {
			return ra.LessThan(rb)
		}
		return a.ReorderPoint.Sub(a.Available).GreaterThan(b.ReorderPoint.Sub(b.Available))
	})
	for i := range alerts {
		alerts[i].Priority = i + 1
	}
	return alerts, nil
}

// ExpiringLots devuelve las líneas de entradas aprobadas que vencen entre hoy y hoy+withinDays (inclusive).
func (uc *AlertsUseCase) ExpiringLots(ctx context.Context, warehouseID string, withinDays int) ([]dto.ExpiringLotDTO, error) {
	if withinDays <= 0 {
		return nil, domain.NewValidationError("days", "debe ser mayor que cero")
	}
	now := uc.now()
	from := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	to := from.AddDate(0, 0, withinDays+1).Add(-time.Nanosecond)

	lots, err := uc.transactions.ListExpiringLots(ctx, repository.ExpiryFilter{
		WarehouseID: warehouseID,
		From:        from,
		To:          to,
	})
	if err != nil {
		return nil, err
	}
	out := make([]dto.ExpiringLotDTO, 0, len(lots))
	for _, l := range lots {
		out = append(out, dto.ExpiringLotDTO{
			TransactionID: l.TransactionID,
			WarehouseID:   l.WarehouseID,
			ProductID:     l.ProductID,
			BatchNumber:   l.BatchNumber,
			Quantity:      l.Quantity,
			ExpiryDate:    l.ExpiryDate,
			DaysToExpiry:  int(l.ExpiryDate.Sub(from).Hours() / 24),
		})
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].ExpiryDate.Before(out[j].ExpiryDate) })
	return out, nil
}
