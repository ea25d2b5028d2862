package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/inventario-ledger/internal/domain/entity"
	"github.com/jhoicas/inventario-ledger/internal/domain/repository"
)

var _ repository.InventoryRecordRepository = (*InventoryRecordRepo)(nil)

const recordColumns = `warehouse_id, product_id, quantity, reserved_quantity, created_at, updated_at`

// InventoryRecordRepo existencias por (bodega, producto) sobre PostgreSQL (usable con pool o tx).
type InventoryRecordRepo struct {
	q Querier
}

// NewInventoryRecordRepository construye el adaptador. Pasar pool o tx (Querier).
func NewInventoryRecordRepository(q Querier) *InventoryRecordRepo {
	return &InventoryRecordRepo{q: q}
}

func scanRecord(row pgx.Row) (*entity.InventoryRecord, error) {
	var rec entity.InventoryRecord
	if err := row.Scan(&rec.WarehouseID, &rec.ProductID, &rec.Quantity, &rec.ReservedQuantity,
		&rec.CreatedAt, &rec.UpdatedAt); err != nil {
		return nil, err
	}
	return &rec, nil
}

// Get devuelve el registro o uno en cero si el par no tiene historia.
func (r *InventoryRecordRepo) Get(ctx context.Context, warehouseID, productID string) (*entity.InventoryRecord, error) {
	query := `SELECT ` + recordColumns + ` FROM inventory_records WHERE warehouse_id = $1 AND product_id = $2`
	rec, err := scanRecord(r.q.QueryRow(ctx, query, warehouseID, productID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return entity.NewInventoryRecord(warehouseID, productID), nil
		}
		return nil, fmt.Errorf("get inventory record: %w", err)
	}
	return rec, nil
}

// GetForUpdate inserta la fila en cero si falta y la bloquea con FOR UPDATE.
// Sin el INSERT previo dos transacciones podrían "bloquear" una fila inexistente a la vez.
func (r *InventoryRecordRepo) GetForUpdate(ctx context.Context, warehouseID, productID string) (*entity.InventoryRecord, error) {
	_, err := r.q.Exec(ctx, `
		INSERT INTO inventory_records (warehouse_id, product_id, quantity, reserved_quantity, created_at, updated_at)
		VALUES ($1, $2, 0, 0, NOW(), NOW())
		ON CONFLICT (warehouse_id, product_id) DO NOTHING`, warehouseID, productID)
	if err != nil {
		return nil, fmt.Errorf("ensure inventory record: %w", err)
	}
	query := `SELECT ` + recordColumns + ` FROM inventory_records
		WHERE warehouse_id = $1 AND product_id = $2 FOR UPDATE`
	rec, err := scanRecord(r.q.QueryRow(ctx, query, warehouseID, productID))
	if err != nil {
		return nil, fmt.Errorf("lock inventory record: %w", err)
	}
	return rec, nil
}

// Upsert persiste cantidades. La restricción CHECK de la tabla rechaza cualquier estado inválido.
func (r *InventoryRecordRepo) Upsert(ctx context.Context, record *entity.InventoryRecord) error {
	query := `
		INSERT INTO inventory_records (warehouse_id, product_id, quantity, reserved_quantity, created_at, updated_at)
		VALUES ($1, $2, $3, $4, NOW(), NOW())
		ON CONFLICT (warehouse_id, product_id)
		DO UPDATE SET quantity = EXCLUDED.quantity,
		              reserved_quantity = EXCLUDED.reserved_quantity,
		              updated_at = NOW()
		RETURNING created_at, updated_at`
	err := r.q.QueryRow(ctx, query,
		record.WarehouseID, record.ProductID, record.Quantity, record.ReservedQuantity,
	).Scan(&record.CreatedAt, &record.UpdatedAt)
	if err != nil {
		return fmt.Errorf("upsert inventory record: %w", err)
	}
	return nil
}

func (r *InventoryRecordRepo) ListByWarehouse(ctx context.Context, warehouseID string, limit, offset int) ([]*entity.InventoryRecord, error) {
	w := &whereBuilder{}
	w.add("warehouse_id = $%d", warehouseID)
	query := `SELECT ` + recordColumns + ` FROM inventory_records` + w.sql() +
		` ORDER BY product_id` + w.page(limit, offset)
	return r.list(ctx, query, w.args...)
}

func (r *InventoryRecordRepo) ListByProduct(ctx context.Context, productID string) ([]*entity.InventoryRecord, error) {
	query := `SELECT ` + recordColumns + ` FROM inventory_records WHERE product_id = $1 ORDER BY warehouse_id`
	list, err := r.list(ctx, query, productID)
	if list == nil && err == nil {
		list = []*entity.InventoryRecord{}
	}
	return list, err
}

func (r *InventoryRecordRepo) list(ctx context.Context, query string, args ...any) ([]*entity.InventoryRecord, error) {
	rows, err := r.q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list inventory records: %w", err)
	}
	defer rows.Close()
	var list []*entity.InventoryRecord
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, fmt.Errorf("scan inventory record: %w", err)
		}
		list = append(list, rec)
	}
	return list, rows.Err()
}

// ListBelowReorderPoint cruza existencias con el punto de reorden del producto activo.
func (r *InventoryRecordRepo) ListBelowReorderPoint(ctx context.Context, warehouseID string) ([]repository.LowStockItem, error) {
	w := &whereBuilder{}
	w.clauses = append(w.clauses,
		"p.active",
		"p.reorder_point > 0",
		"(ir.quantity - ir.reserved_quantity) < p.reorder_point",
	)
	if warehouseID != "" {
		w.add("ir.warehouse_id = $%d", warehouseID)
	}
	query := `
		SELECT ir.warehouse_id, ir.product_id, p.sku, p.name,
		       ir.quantity, ir.reserved_quantity, ir.quantity - ir.reserved_quantity, p.reorder_point
		FROM inventory_records ir
		JOIN products p ON p.id = ir.product_id` + w.sql() + `
		ORDER BY ir.warehouse_id, ir.product_id`
	rows, err := r.q.Query(ctx, query, w.args...)
	if err != nil {
		return nil, fmt.Errorf("list below reorder point: %w", err)
	}
	defer rows.Close()
	var items []repository.LowStockItem
	for rows.Next() {
		var it repository.LowStockItem
		if err := rows.Scan(&it.WarehouseID, &it.ProductID, &it.SKU, &it.ProductName,
			&it.Quantity, &it.Reserved, &it.Available, &it.ReorderPoint); err != nil {
			return nil, fmt.Errorf("scan low stock: %w", err)
		}
		items = append(items, it)
	}
	return items, rows.Err()
}
