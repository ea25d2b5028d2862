package memory

import (
	"context"
	"sort"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/inventario-ledger/internal/domain/entity"
	"github.com/jhoicas/inventario-ledger/internal/domain/repository"
)

var (
	_ repository.InventoryRecordRepository   = (*InventoryRecordRepo)(nil)
	_ repository.InventoryMovementRepository = (*InventoryMovementRepo)(nil)
)

// InventoryRecordRepo existencias por (bodega, producto).
type InventoryRecordRepo struct {
	store *Store
	inTx  bool
}

func (r *InventoryRecordRepo) Get(_ context.Context, warehouseID, productID string) (*entity.InventoryRecord, error) {
	var out *entity.InventoryRecord
	r.store.read(r.inTx, func(st *state) {
		if rec, ok := st.records[entity.StockKey{WarehouseID: warehouseID, ProductID: productID}]; ok {
			out = &rec
		}
	})
	if out == nil {
		return entity.NewInventoryRecord(warehouseID, productID), nil
	}
	return out, nil
}

// GetForUpdate dentro de Run el mutex global ya serializa; fuera de Run equivale a Get.
func (r *InventoryRecordRepo) GetForUpdate(ctx context.Context, warehouseID, productID string) (*entity.InventoryRecord, error) {
	return r.Get(ctx, warehouseID, productID)
}

func (r *InventoryRecordRepo) Upsert(_ context.Context, record *entity.InventoryRecord) error {
	return r.store.write(r.inTx, func(st *state) error {
		st.records[record.Key()] = *record
		return nil
	})
}

func (r *InventoryRecordRepo) ListByWarehouse(_ context.Context, warehouseID string, limit, offset int) ([]*entity.InventoryRecord, error) {
	var list []*entity.InventoryRecord
	r.store.read(r.inTx, func(st *state) {
		for k, rec := range st.records {
			if k.WarehouseID == warehouseID {
				rec := rec
				list = append(list, &rec)
			}
		}
	})
	sortRecords(list)
	return page(list, limit, offset), nil
}

func (r *InventoryRecordRepo) ListByProduct(_ context.Context, productID string) ([]*entity.InventoryRecord, error) {
	list := []*entity.InventoryRecord{}
	r.store.read(r.inTx, func(st *state) {
		for k, rec := range st.records {
			if k.ProductID == productID {
				rec := rec
				list = append(list, &rec)
			}
		}
	})
	sortRecords(list)
	return list, nil
}

func (r *InventoryRecordRepo) ListBelowReorderPoint(_ context.Context, warehouseID string) ([]repository.LowStockItem, error) {
	var items []repository.LowStockItem
	r.store.read(r.inTx, func(st *state) {
		for k, rec := range st.records {
			if warehouseID != "" && k.WarehouseID != warehouseID {
				continue
			}
			p, ok := st.products[k.ProductID]
			if !ok || !p.Active || !p.ReorderPoint.IsPositive() {
				continue
			}
			if rec.Available().GreaterThanOrEqual(p.ReorderPoint) {
				continue
			}
			items = append(items, repository.LowStockItem{
				WarehouseID:  k.WarehouseID,
				ProductID:    k.ProductID,
				SKU:          p.SKU,
				ProductName:  p.Name,
				Quantity:     rec.Quantity,
				Reserved:     rec.ReservedQuantity,
				Available:    rec.Available(),
				ReorderPoint: p.ReorderPoint,
			})
		}
	})
	sort.Slice(items, func(i, j int) bool {
		a := entity.StockKey{WarehouseID: items[i].WarehouseID, ProductID: items[i].ProductID}
		return a.Less(entity.StockKey{WarehouseID: items[j].WarehouseID, ProductID: items[j].ProductID})
	})
	return items, nil
}

func sortRecords(list []*entity.InventoryRecord) {
	sort.Slice(list, func(i, j int) bool { return list[i].Key().Less(list[j].Key()) })
}

// InventoryMovementRepo diario del ledger (solo inserción).
type InventoryMovementRepo struct {
	store *Store
	inTx  bool
}

func (r *InventoryMovementRepo) Create(_ context.Context, movement *entity.InventoryMovement) error {
	return r.store.write(r.inTx, func(st *state) error {
		st.movements = append(st.movements, *movement)
		return nil
	})
}

// List devuelve el diario en orden cronológico.
func (r *InventoryMovementRepo) List(_ context.Context, f repository.MovementFilter) ([]*entity.InventoryMovement, error) {
	var list []*entity.InventoryMovement
	r.store.read(r.inTx, func(st *state) {
		for _, m := range st.movements {
			if f.WarehouseID != "" && m.WarehouseID != f.WarehouseID {
				continue
			}
			if f.ProductID != "" && m.ProductID != f.ProductID {
				continue
			}
			if f.ReferenceType != "" && m.ReferenceType != f.ReferenceType {
				continue
			}
			if f.ReferenceID != "" && m.ReferenceID != f.ReferenceID {
				continue
			}
			if f.From != nil && m.CreatedAt.Before(*f.From) {
				continue
			}
			if f.To != nil && m.CreatedAt.After(*f.To) {
				continue
			}
			m := m
			list = append(list, &m)
		}
	})
	return page(list, f.Limit, f.Offset), nil
}

func (r *InventoryMovementRepo) OutstandingReservations(_ context.Context, referenceType, referenceID string) ([]entity.ReservationBalance, error) {
	sums := make(map[entity.StockKey]decimal.Decimal)
	r.store.read(r.inTx, func(st *state) {
		for _, m := range st.movements {
			if m.ReferenceType != referenceType || m.ReferenceID != referenceID {
				continue
			}
			if m.Type != entity.MovementTypeReserve && m.Type != entity.MovementTypeRelease {
				continue
			}
			k := entity.StockKey{WarehouseID: m.WarehouseID, ProductID: m.ProductID}
			sums[k] = sums[k].Add(m.ReservedDelta)
		}
	})
	keys := make([]entity.StockKey, 0, len(sums))
	for k, v := range sums {
		if v.IsPositive() {
			keys = append(keys, k)
		}
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i].Less(keys[j]) })
	out := make([]entity.ReservationBalance, 0, len(keys))
	for _, k := range keys {
		out = append(out, entity.ReservationBalance{
			WarehouseID:   k.WarehouseID,
			ProductID:     k.ProductID,
			ReferenceType: referenceType,
			ReferenceID:   referenceID,
			Outstanding:   sums[k],
		})
	}
	return out, nil
}
