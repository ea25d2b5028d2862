package repository

import (
	"context"

	"github.com/jhoicas/inventario-ledger/internal/domain/entity"
)

// InventoryMovementRepository define el puerto del diario inmutable del ledger (solo inserción).
type InventoryMovementRepository interface {
	Create(ctx context.Context, movement *entity.InventoryMovement) error
	List(ctx context.Context, filter MovementFilter) ([]*entity.InventoryMovement, error)
	// OutstandingReservations suma RESERVE/RELEASE por (bodega, producto) para una etiqueta.
	// Solo devuelve pares con saldo positivo.
	OutstandingReservations(ctx context.Context, referenceType, referenceID string) ([]entity.ReservationBalance, error)
}
