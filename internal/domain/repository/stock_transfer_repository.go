package repository

import (
	"context"

	"github.com/jhoicas/inventario-ledger/internal/domain/entity"
)

// StockTransferRepository define el puerto de persistencia de traslados con tránsito.
type StockTransferRepository interface {
	Create(ctx context.Context, transfer *entity.StockTransfer) error
	GetByID(ctx context.Context, id string) (*entity.StockTransfer, error)
	GetForUpdate(ctx context.Context, id string) (*entity.StockTransfer, error)
	UpdateStatus(ctx context.Context, transfer *entity.StockTransfer) error
	List(ctx context.Context, filter DocumentFilter) ([]*entity.StockTransfer, error)
}
