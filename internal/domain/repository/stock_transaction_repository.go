package repository

import (
	"context"

	"github.com/jhoicas/inventario-ledger/internal/domain/entity"
)

// StockTransactionRepository define el puerto de persistencia de documentos de inventario.
type StockTransactionRepository interface {
	// Create persiste cabecera y líneas.
	Create(ctx context.Context, tx *entity.StockTransaction) error
	// GetByID devuelve el documento con sus líneas, o nil si no existe.
	GetByID(ctx context.Context, id string) (*entity.StockTransaction, error)
	// GetForUpdate igual que GetByID pero bloquea la cabecera (dos aprobaciones no se cruzan).
	GetForUpdate(ctx context.Context, id string) (*entity.StockTransaction, error)
	// UpdateStatus persiste estado, aprobador, motivos y timestamps. Las líneas son inmutables.
	UpdateStatus(ctx context.Context, tx *entity.StockTransaction) error
	List(ctx context.Context, filter DocumentFilter) ([]*entity.StockTransaction, error)
	// ListExpiringLots líneas de entradas aprobadas con vencimiento dentro de [from, to].
	ListExpiringLots(ctx context.Context, filter ExpiryFilter) ([]entity.ExpiringLot, error)
}
