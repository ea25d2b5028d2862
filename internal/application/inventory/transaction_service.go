package inventory

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/inventario-ledger/internal/domain"
	"github.com/jhoicas/inventario-ledger/internal/domain/entity"
	"github.com/jhoicas/inventario-ledger/internal/domain/repository"
)

const documentStockTransaction = "stock_transaction"

// StockTransactionService construye y ejecuta documentos de inventario
// (import, export, transfer, disposal, stocktake) con flujo de aprobación.
// Ningún documento toca el ledger hasta Approve; Approve aplica todas sus líneas o ninguna.
type StockTransactionService struct {
	txRunner     TxRunner
	transactions repository.StockTransactionRepository
	catalog      catalog
	log          zerolog.Logger
	now          func() time.Time
}

// NewStockTransactionService construye el motor de documentos.
func NewStockTransactionService(
	txRunner TxRunner,
	transactions repository.StockTransactionRepository,
	products repository.ProductRepository,
	warehouses repository.WarehouseRepository,
	log zerolog.Logger,
) *StockTransactionService {
	return &StockTransactionService{
		txRunner:     txRunner,
		transactions: transactions,
		catalog:      catalog{products: products, warehouses: warehouses},
		log:          log.With().Str("component", "stock_transactions").Logger(),
		now:          time.Now,
	}
}

// TransactionLineInput una línea del documento.
// En stocktake se usan SystemQuantity y ActualQuantity; Quantity se ignora.
type TransactionLineInput struct {
	ProductID      string
	Quantity       decimal.Decimal
	UnitPrice      *decimal.Decimal
	BatchNumber    string
	ExpiryDate     *time.Time
	Notes          string
	SystemQuantity *decimal.Decimal
	ActualQuantity *decimal.Decimal
}

// CreateTransactionInput entrada común a todos los tipos de documento.
// Draft = true deja el documento en borrador (requiere Submit antes de aprobar).
type CreateTransactionInput struct {
	WarehouseID            string
	SourceWarehouseID      string
	DestinationWarehouseID string
	Reason                 string
	Notes                  string
	RequestedBy            string
	Draft                  bool
	Lines                  []TransactionLineInput
}

type lineQuantity struct {
	Quantity       decimal.Decimal
	SystemQuantity *decimal.Decimal
	ActualQuantity *decimal.Decimal
}

// CreateImport documento de entrada (recepción de compra, devolución de cliente, ...).
func (s *StockTransactionService) CreateImport(ctx context.Context, in CreateTransactionInput) (*entity.StockTransaction, error) {
	return s.Create(ctx, entity.TransactionTypeImport, in)
}

// CreateExport documento de salida.
func (s *StockTransactionService) CreateExport(ctx context.Context, in CreateTransactionInput) (*entity.StockTransaction, error) {
	return s.Create(ctx, entity.TransactionTypeExport, in)
}

// CreateDisposal documento de baja; exige motivo.
func (s *StockTransactionService) CreateDisposal(ctx context.Context, in CreateTransactionInput) (*entity.StockTransaction, error) {
	return s.Create(ctx, entity.TransactionTypeDisposal, in)
}

// CreateStocktake documento de conteo físico; guarda la varianza por línea.
func (s *StockTransactionService) CreateStocktake(ctx context.Context, in CreateTransactionInput) (*entity.StockTransaction, error) {
	return s.Create(ctx, entity.TransactionTypeStocktake, in)
}

// CreateTransfer traslado inmediato entre dos bodegas.
func (s *StockTransactionService) CreateTransfer(ctx context.Context, in CreateTransactionInput) (*entity.StockTransaction, error) {
	return s.Create(ctx, entity.TransactionTypeTransfer, in)
}

// Create valida y persiste un documento del tipo indicado en estado pending (o draft). Sin efecto en el ledger.
func (s *StockTransactionService) Create(ctx context.Context, typ entity.StockTransactionType, in CreateTransactionInput) (*entity.StockTransaction, error) {
	kind, err := kindOf(typ)
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(in.RequestedBy) == "" {
		return nil, domain.NewValidationError("requested_by", "requerido")
	}
	if len(in.Lines) == 0 {
		return nil, domain.NewValidationError("lines", "el documento debe tener al menos una línea")
	}
	if err := kind.validateHeader(&in); err != nil {
		return nil, err
	}
	for i := range in.Lines {
		if err := kind.validateLine(i, &in.Lines[i]); err != nil {
			return nil, err
		}
	}

	// Referencias (fuera de la tx, solo lectura)
	if typ == entity.TransactionTypeTransfer {
		if _, err := s.catalog.requireWarehouse(ctx, "source_warehouse_id", in.SourceWarehouseID); err != nil {
			return nil, err
		}
		if _, err := s.catalog.requireWarehouse(ctx, "destination_warehouse_id", in.DestinationWarehouseID); err != nil {
			return nil, err
		}
	} else if _, err := s.catalog.requireWarehouse(ctx, "warehouse_id", in.WarehouseID); err != nil {
		return nil, err
	}
	for i, line := range in.Lines {
		if _, err := s.catalog.requireProduct(ctx, lineField(i, "product_id"), line.ProductID); err != nil {
			return nil, err
		}
	}

	now := s.now()
	status := entity.TransactionStatusPending
	if in.Draft {
		status = entity.TransactionStatusDraft
	}
	tx := &entity.StockTransaction{
		ID:          uuid.New().String(),
		Number:      documentNumber(kind.prefix(), now),
		Type:        typ,
		Status:      status,
		Reason:      strings.TrimSpace(in.Reason),
		Notes:       in.Notes,
		RequestedBy: in.RequestedBy,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if typ == entity.TransactionTypeTransfer {
		tx.SourceWarehouseID = in.SourceWarehouseID
		tx.DestinationWarehouseID = in.DestinationWarehouseID
	} else {
		tx.WarehouseID = in.WarehouseID
	}
	tx.Details = make([]entity.StockTransactionDetail, 0, len(in.Lines))
	for i, line := range in.Lines {
		q := kind.quantityFor(line)
		tx.Details = append(tx.Details, entity.StockTransactionDetail{
			ID:             uuid.New().String(),
			TransactionID:  tx.ID,
			LineNo:         i + 1,
			ProductID:      line.ProductID,
			Quantity:       q.Quantity,
			UnitPrice:      line.UnitPrice,
			BatchNumber:    line.BatchNumber,
			ExpiryDate:     line.ExpiryDate,
			Notes:          line.Notes,
			SystemQuantity: q.SystemQuantity,
			ActualQuantity: q.ActualQuantity,
		})
	}

	// Cabecera y líneas en la misma tx: un insert parcial no deja documento sin detalle.
	err = s.txRunner.Run(ctx, func(repos TxRepos) error {
		return repos.Transactions.Create(ctx, tx)
	})
	if err != nil {
		return nil, err
	}
	s.log.Info().
		Str("transaction_id", tx.ID).
		Str("number", tx.Number).
		Str("type", string(tx.Type)).
		Str("status", string(tx.Status)).
		Int("lines", len(tx.Details)).
		Msg("documento creado")
	return tx, nil
}

// Submit draft -> pending.
func (s *StockTransactionService) Submit(ctx context.Context, id, userID string) (*entity.StockTransaction, error) {
	return s.transition(ctx, id, "enviar", func(_ TxRepos, tx *entity.StockTransaction, now time.Time) error {
		if !tx.Status.CanSubmit() {
			return invalidTransaction(tx, "enviar")
		}
		tx.Status = entity.TransactionStatusPending
		return nil
	})
}

// Approve pending -> approved. Aplica en una sola transacción la primitiva del ledger de cada línea;
// si alguna falla (p. ej. InsufficientInventory) el documento queda pending y no sobrevive ningún cambio.
func (s *StockTransactionService) Approve(ctx context.Context, id, approverID, notes string) (*entity.StockTransaction, error) {
	if strings.TrimSpace(approverID) == "" {
		return nil, domain.NewValidationError("approver_id", "requerido")
	}
	return s.transition(ctx, id, "aprobar", func(repos TxRepos, tx *entity.StockTransaction, now time.Time) error {
		if !tx.Status.CanApprove() {
			return invalidTransaction(tx, "aprobar")
		}
		kind, err := kindOf(tx.Type)
		if err != nil {
			return err
		}
		if err := newLedgerSession(repos, approverID, now).applyAll(ctx, kind.ledgerOps(tx)); err != nil {
			return err
		}
		tx.Status = entity.TransactionStatusApproved
		tx.ApprovedBy = &approverID
		tx.ApprovedAt = &now
		tx.ApprovalNotes = notes
		return nil
	})
}

// Cancel draft/pending -> cancelled. Nunca se aplicó nada al ledger, así que no hay nada que revertir.
func (s *StockTransactionService) Cancel(ctx context.Context, id, userID, reason string) (*entity.StockTransaction, error) {
	if strings.TrimSpace(reason) == "" {
		return nil, domain.NewValidationError("reason", "requerido para cancelar")
	}
	return s.transition(ctx, id, "cancelar", func(_ TxRepos, tx *entity.StockTransaction, now time.Time) error {
		if !tx.Status.CanCancel() {
			return invalidTransaction(tx, "cancelar")
		}
		tx.Status = entity.TransactionStatusCancelled
		tx.CancelReason = reason
		tx.CancelledAt = &now
		return nil
	})
}

// transition bloquea la cabecera, aplica fn y persiste el nuevo estado en la misma tx.
func (s *StockTransactionService) transition(
	ctx context.Context,
	id, action string,
	fn func(repos TxRepos, tx *entity.StockTransaction, now time.Time) error,
) (*entity.StockTransaction, error) {
	var out *entity.StockTransaction
	now := s.now()
	err := s.txRunner.Run(ctx, func(repos TxRepos) error {
		tx, err := repos.Transactions.GetForUpdate(ctx, id)
		if err != nil {
			return err
		}
		if tx == nil {
			return domain.NewNotFound("documento", id)
		}
		if err := fn(repos, tx, now); err != nil {
			return err
		}
		tx.UpdatedAt = now
		if err := repos.Transactions.UpdateStatus(ctx, tx); err != nil {
			return err
		}
		out = tx
		return nil
	})
	if err != nil {
		ev := s.log.Error()
		if errors.Is(err, domain.ErrInsufficientInventory) || errors.Is(err, domain.ErrInvalidStateTransition) ||
			errors.Is(err, domain.ErrNotFound) || errors.Is(err, domain.ErrValidation) {
			ev = s.log.Warn()
		}
		ev.Err(err).Str("transaction_id", id).Str("action", action).Msg("transición rechazada")
		return nil, err
	}
	s.log.Info().
		Str("transaction_id", out.ID).
		Str("action", action).
		Str("status", string(out.Status)).
		Msg("documento actualizado")
	return out, nil
}

func invalidTransaction(tx *entity.StockTransaction, action string) error {
	return &domain.InvalidStateTransitionError{
		Document: documentStockTransaction,
		ID:       tx.ID,
		From:     string(tx.Status),
		Action:   action,
	}
}

// GetByID devuelve el documento con sus líneas.
func (s *StockTransactionService) GetByID(ctx context.Context, id string) (*entity.StockTransaction, error) {
	tx, err := s.transactions.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("consultar documento: %w", err)
	}
	if tx == nil {
		return nil, domain.NewNotFound("documento", id)
	}
	return tx, nil
}

// List lista documentos por bodega, producto, tipo, estado y rango de fechas.
func (s *StockTransactionService) List(ctx context.Context, filter repository.DocumentFilter) ([]*entity.StockTransaction, error) {
	if filter.Type != "" && !entity.StockTransactionType(filter.Type).Valid() {
		return nil, domain.NewValidationError("type", "tipo de documento desconocido")
	}
	filter.Limit = repository.NormalizeLimit(filter.Limit)
	return s.transactions.List(ctx, filter)
}
