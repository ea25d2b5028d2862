package repository

import (
	"context"

	"github.com/jhoicas/inventario-ledger/internal/domain/entity"
)

// InventoryRecordRepository define el puerto de persistencia de existencias por (bodega, producto).
// Dentro de una transacción, GetForUpdate es la frontera de serialización por llave.
type InventoryRecordRepository interface {
	// Get devuelve el registro o uno en cero si el par no existe (lectura sin bloqueo).
	Get(ctx context.Context, warehouseID, productID string) (*entity.InventoryRecord, error)
	// GetForUpdate crea el registro en cero si no existe y lo bloquea hasta el fin de la tx.
	GetForUpdate(ctx context.Context, warehouseID, productID string) (*entity.InventoryRecord, error)
	Upsert(ctx context.Context, record *entity.InventoryRecord) error
	ListByWarehouse(ctx context.Context, warehouseID string, limit, offset int) ([]*entity.InventoryRecord, error)
	ListByProduct(ctx context.Context, productID string) ([]*entity.InventoryRecord, error)
	// ListBelowReorderPoint devuelve los registros cuyo disponible está por debajo del punto de reorden.
	// warehouseID vacío = todas las bodegas.
	ListBelowReorderPoint(ctx context.Context, warehouseID string) ([]LowStockItem, error)
}
