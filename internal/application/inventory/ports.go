package inventory

import (
	"context"

	"github.com/jhoicas/inventario-ledger/internal/domain/entity"
	"github.com/jhoicas/inventario-ledger/internal/domain/repository"
)

// TxRepos repositorios atados a una misma transacción de BD.
type TxRepos struct {
	Records      repository.InventoryRecordRepository
	Movements    repository.InventoryMovementRepository
	Transactions repository.StockTransactionRepository
	Transfers    repository.StockTransferRepository
}

// TxRunner ejecuta una función dentro de una transacción de BD, pasando repositorios atados a esa tx.
// Si fn devuelve error se hace Rollback: ningún cambio parcial sobrevive.
// Garantiza atomicidad para el ledger y los motores de documentos.
type TxRunner interface {
	Run(ctx context.Context, fn func(repos TxRepos) error) error
}

// DocumentRenderer genera la representación imprimible de los documentos.
type DocumentRenderer interface {
	RenderTransfer(ctx context.Context, doc TransferDocument) ([]byte, error)
	RenderTransaction(ctx context.Context, doc TransactionDocument) ([]byte, error)
}

// TransferDocument datos para imprimir una remisión de traslado.
type TransferDocument struct {
	Transfer     *entity.StockTransfer
	Source       *entity.Warehouse
	Destination  *entity.Warehouse
	ProductNames map[string]string
}

// TransactionDocument datos para imprimir un comprobante de movimiento.
type TransactionDocument struct {
	Transaction  *entity.StockTransaction
	Warehouses   map[string]*entity.Warehouse
	ProductNames map[string]string
}
