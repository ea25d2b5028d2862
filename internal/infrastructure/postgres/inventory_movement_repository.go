package postgres

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/inventario-ledger/internal/domain/entity"
	"github.com/jhoicas/inventario-ledger/internal/domain/repository"
)

var _ repository.InventoryMovementRepository = (*InventoryMovementRepo)(nil)

const movementColumns = `id, warehouse_id, product_id, type, quantity_delta, reserved_delta,
	quantity_before, quantity_after, reserved_before, reserved_after,
	reference_type, reference_id, reason, created_by, created_at`

// InventoryMovementRepo diario del ledger sobre PostgreSQL (solo INSERT y SELECT).
type InventoryMovementRepo struct {
	q Querier
}

// NewInventoryMovementRepository construye el adaptador. Pasar pool o tx (Querier).
func NewInventoryMovementRepository(q Querier) *InventoryMovementRepo {
	return &InventoryMovementRepo{q: q}
}

// Create persiste un movimiento del diario.
func (r *InventoryMovementRepo) Create(ctx context.Context, m *entity.InventoryMovement) error {
	if m.ID == "" {
		m.ID = uuid.New().String()
	}
	query := `INSERT INTO inventory_movements (` + movementColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)`
	_, err := r.q.Exec(ctx, query,
		m.ID, m.WarehouseID, m.ProductID, m.Type, m.QuantityDelta, m.ReservedDelta,
		m.QuantityBefore, m.QuantityAfter, m.ReservedBefore, m.ReservedAfter,
		nullable(m.ReferenceType), nullable(m.ReferenceID), nullable(m.Reason), nullable(m.CreatedBy), m.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("create inventory movement: %w", err)
	}
	return nil
}

func scanMovement(row pgx.Row) (*entity.InventoryMovement, error) {
	var m entity.InventoryMovement
	var refType, refID, reason, createdBy *string
	if err := row.Scan(&m.ID, &m.WarehouseID, &m.ProductID, &m.Type, &m.QuantityDelta, &m.ReservedDelta,
		&m.QuantityBefore, &m.QuantityAfter, &m.ReservedBefore, &m.ReservedAfter,
		&refType, &refID, &reason, &createdBy, &m.CreatedAt); err != nil {
		return nil, err
	}
	m.ReferenceType = deref(refType)
	m.ReferenceID = deref(refID)
	m.Reason = deref(reason)
	m.CreatedBy = deref(createdBy)
	return &m, nil
}

// List devuelve el diario en orden cronológico (seq preserva el orden de inserción).
func (r *InventoryMovementRepo) List(ctx context.Context, f repository.MovementFilter) ([]*entity.InventoryMovement, error) {
	w := &whereBuilder{}
	if f.WarehouseID != "" {
		w.add("warehouse_id = $%d", f.WarehouseID)
	}
	if f.ProductID != "" {
		w.add("product_id = $%d", f.ProductID)
	}
	if f.ReferenceType != "" {
		w.add("reference_type = $%d", f.ReferenceType)
	}
	if f.ReferenceID != "" {
		w.add("reference_id = $%d", f.ReferenceID)
	}
	w.addRange("created_at", f.From, f.To)
	query := `SELECT ` + movementColumns + ` FROM inventory_movements` + w.sql() +
		` ORDER BY seq` + w.page(f.Limit, f.Offset)

	rows, err := r.q.Query(ctx, query, w.args...)
	if err != nil {
		return nil, fmt.Errorf("list movements: %w", err)
	}
	defer rows.Close()
	var list []*entity.InventoryMovement
	for rows.Next() {
		m, err := scanMovement(rows)
		if err != nil {
			return nil, fmt.Errorf("scan movement: %w", err)
		}
		list = append(list, m)
	}
	return list, rows.Err()
}

// OutstandingReservations suma reservas menos liberaciones de una etiqueta por (bodega, producto).
func (r *InventoryMovementRepo) OutstandingReservations(ctx context.Context, referenceType, referenceID string) ([]entity.ReservationBalance, error) {
	query := `
		SELECT warehouse_id, product_id, SUM(reserved_delta)
		FROM inventory_movements
		WHERE reference_type = $1 AND reference_id = $2 AND type IN ($3, $4)
		GROUP BY warehouse_id, product_id
		HAVING SUM(reserved_delta) > 0
		ORDER BY warehouse_id, product_id`
	rows, err := r.q.Query(ctx, query, referenceType, referenceID,
		entity.MovementTypeReserve, entity.MovementTypeRelease)
	if err != nil {
		return nil, fmt.Errorf("outstanding reservations: %w", err)
	}
	defer rows.Close()
	out := []entity.ReservationBalance{}
	for rows.Next() {
		b := entity.ReservationBalance{ReferenceType: referenceType, ReferenceID: referenceID}
		if err := rows.Scan(&b.WarehouseID, &b.ProductID, &b.Outstanding); err != nil {
			return nil, fmt.Errorf("scan reservation balance: %w", err)
		}
		out = append(out, b)
	}
	return out, rows.Err()
}
