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
	rules "github.com/jhoicas/inventario-ledger/internal/domain/inventory"
	"github.com/jhoicas/inventario-ledger/internal/domain/repository"
)

const documentStockTransfer = "stock_transfer"

// StockTransferService maneja traslados con estado intermedio de tránsito:
// pending -> in_transit -> completed, o pending/in_transit -> cancelled.
type StockTransferService struct {
	txRunner  TxRunner
	transfers repository.StockTransferRepository
	catalog   catalog
	debitAt   string
	log       zerolog.Logger
	now       func() time.Time
}

// NewStockTransferService construye el motor de traslados.
// debitAt indica cuándo sale la mercancía del origen: entity.TransferDebitAtApprove (por defecto)
// o entity.TransferDebitAtComplete.
func NewStockTransferService(
	txRunner TxRunner,
	transfers repository.StockTransferRepository,
	products repository.ProductRepository,
	warehouses repository.WarehouseRepository,
	debitAt string,
	log zerolog.Logger,
) *StockTransferService {
	if debitAt != entity.TransferDebitAtComplete {
		debitAt = entity.TransferDebitAtApprove
	}
	return &StockTransferService{
		txRunner:  txRunner,
		transfers: transfers,
		catalog:   catalog{products: products, warehouses: warehouses},
		debitAt:   debitAt,
		log:       log.With().Str("component", "stock_transfers").Logger(),
		now:       time.Now,
	}
}

// TransferLineInput una línea del traslado.
type TransferLineInput struct {
	ProductID   string
	Quantity    decimal.Decimal
	UnitPrice   decimal.Decimal
	BatchNumber string
	ExpiryDate  *time.Time
	Notes       string
}

// CreateTransferInput entrada para crear un traslado.
type CreateTransferInput struct {
	SourceWarehouseID      string
	DestinationWarehouseID string
	Reason                 string
	Notes                  string
	RequestedBy            string
	Lines                  []TransferLineInput
}

func (in CreateTransferInput) validate() error {
	if strings.TrimSpace(in.SourceWarehouseID) == "" {
		return domain.NewValidationError("source_warehouse_id", "requerido")
	}
	if strings.TrimSpace(in.DestinationWarehouseID) == "" {
		return domain.NewValidationError("destination_warehouse_id", "requerido")
	}
	if in.SourceWarehouseID == in.DestinationWarehouseID {
		return domain.NewValidationError("destination_warehouse_id", "debe ser distinta de la bodega origen")
	}
	if strings.TrimSpace(in.RequestedBy) == "" {
		return domain.NewValidationError("requested_by", "requerido")
	}
	if len(in.Lines) == 0 {
		return domain.NewValidationError("lines", "el traslado debe tener al menos una línea")
	}
	for i, l := range in.Lines {
		if strings.TrimSpace(l.ProductID) == "" {
			return domain.NewValidationError(lineField(i, "product_id"), "requerido")
		}
		if !l.Quantity.IsPositive() {
			return domain.NewValidationError(lineField(i, "quantity"), "debe ser mayor que cero")
		}
		if l.UnitPrice.IsNegative() {
			return domain.NewValidationError(lineField(i, "unit_price"), "no puede ser negativo")
		}
		if err := rules.CheckScale(lineField(i, "quantity"), l.Quantity); err != nil {
			return err
		}
		if err := rules.CheckScale(lineField(i, "unit_price"), l.UnitPrice); err != nil {
			return err
		}
	}
	return nil
}

// Create valida y persiste el traslado en pending. Calcula TotalValue = Σ cantidad × precio.
func (s *StockTransferService) Create(ctx context.Context, in CreateTransferInput) (*entity.StockTransfer, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}
	if _, err := s.catalog.requireWarehouse(ctx, "source_warehouse_id", in.SourceWarehouseID); err != nil {
		return nil, err
	}
	if _, err := s.catalog.requireWarehouse(ctx, "destination_warehouse_id", in.DestinationWarehouseID); err != nil {
		return nil, err
	}
	for i, l := range in.Lines {
		if _, err := s.catalog.requireProduct(ctx, lineField(i, "product_id"), l.ProductID); err != nil {
			return nil, err
		}
	}

	now := s.now()
	t := &entity.StockTransfer{
		ID:                     uuid.New().String(),
		Number:                 documentNumber("TRS", now),
		SourceWarehouseID:      in.SourceWarehouseID,
		DestinationWarehouseID: in.DestinationWarehouseID,
		Status:                 entity.TransferStatusPending,
		Reason:                 strings.TrimSpace(in.Reason),
		Notes:                  in.Notes,
		RequestedBy:            in.RequestedBy,
		CreatedAt:              now,
		UpdatedAt:              now,
		Details:                make([]entity.StockTransferDetail, 0, len(in.Lines)),
	}
	for i, l := range in.Lines {
		t.Details = append(t.Details, entity.StockTransferDetail{
			ID:          uuid.New().String(),
			TransferID:  t.ID,
			LineNo:      i + 1,
			ProductID:   l.ProductID,
			Quantity:    l.Quantity,
			UnitPrice:   l.UnitPrice,
			BatchNumber: l.BatchNumber,
			ExpiryDate:  l.ExpiryDate,
			Notes:       l.Notes,
		})
	}
	t.ComputeTotalValue()

	err := s.txRunner.Run(ctx, func(repos TxRepos) error {
		return repos.Transfers.Create(ctx, t)
	})
	if err != nil {
		return nil, err
	}
	s.log.Info().
		Str("transfer_id", t.ID).
		Str("number", t.Number).
		Str("source", t.SourceWarehouseID).
		Str("destination", t.DestinationWarehouseID).
		Str("total_value", t.TotalValue.String()).
		Msg("traslado creado")
	return t, nil
}

// Approve pending -> in_transit. Con debitAt=approve descuenta el origen de todas las líneas en la misma tx.
func (s *StockTransferService) Approve(ctx context.Context, id, approverID string) (*entity.StockTransfer, error) {
	if strings.TrimSpace(approverID) == "" {
		return nil, domain.NewValidationError("approver_id", "requerido")
	}
	return s.transition(ctx, id, "aprobar", func(repos TxRepos, t *entity.StockTransfer, now time.Time) error {
		if !t.Status.CanApprove() {
			return invalidTransfer(t, "aprobar")
		}
		if s.debitAt == entity.TransferDebitAtApprove {
			if err := newLedgerSession(repos, approverID, now).applyAll(ctx, transferLegs(t, entity.MovementTypeTransferOut)); err != nil {
				return err
			}
			t.SourceDebited = true
		}
		t.Status = entity.TransferStatusInTransit
		t.ApprovedBy = &approverID
		t.ApprovedAt = &now
		return nil
	})
}

// Complete in_transit -> completed. Acredita el destino; si el origen aún no se había descontado,
// lo descuenta primero. Débitos y créditos van en la misma tx.
func (s *StockTransferService) Complete(ctx context.Context, id, userID string) (*entity.StockTransfer, error) {
	return s.transition(ctx, id, "completar", func(repos TxRepos, t *entity.StockTransfer, now time.Time) error {
		if !t.Status.CanComplete() {
			return invalidTransfer(t, "completar")
		}
		var ops []ledgerOp
		if !t.SourceDebited {
			ops = append(ops, transferLegs(t, entity.MovementTypeTransferOut)...)
		}
		ops = append(ops, transferLegs(t, entity.MovementTypeTransferIn)...)
		if err := newLedgerSession(repos, userID, now).applyAll(ctx, ops); err != nil {
			return err
		}
		t.SourceDebited = true
		t.Status = entity.TransferStatusCompleted
		t.CompletedBy = &userID
		t.CompletedAt = &now
		return nil
	})
}

// Cancel pending/in_transit -> cancelled. Si el origen ya se había descontado, devuelve la mercancía.
func (s *StockTransferService) Cancel(ctx context.Context, id, userID, reason string) (*entity.StockTransfer, error) {
	if strings.TrimSpace(reason) == "" {
		return nil, domain.NewValidationError("reason", "requerido para cancelar")
	}
	return s.transition(ctx, id, "cancelar", func(repos TxRepos, t *entity.StockTransfer, now time.Time) error {
		if !t.Status.CanCancel() {
			return invalidTransfer(t, "cancelar")
		}
		if t.SourceDebited {
			if err := newLedgerSession(repos, userID, now).applyAll(ctx, transferLegs(t, entity.MovementTypeTransferRet)); err != nil {
				return err
			}
			t.SourceDebited = false
		}
		t.Status = entity.TransferStatusCancelled
		t.CancelReason = reason
		t.CancelledAt = &now
		return nil
	})
}

// transferLegs genera una primitiva por línea según el tramo:
// TRANSFER_OUT descuenta origen, TRANSFER_IN acredita destino, TRANSFER_RETURN devuelve al origen.
func transferLegs(t *entity.StockTransfer, movementType string) []ledgerOp {
	ops := make([]ledgerOp, 0, len(t.Details))
	for _, d := range t.Details {
		op := ledgerOp{
			Kind:          opDelta,
			MovementType:  movementType,
			ReferenceType: ReferenceStockTransfer,
			ReferenceID:   t.ID,
			Reason:        t.Reason,
		}
		switch movementType {
		case entity.MovementTypeTransferOut:
			op.Key = entity.StockKey{WarehouseID: t.SourceWarehouseID, ProductID: d.ProductID}
			op.Quantity = d.Quantity.Neg()
		case entity.MovementTypeTransferIn:
			op.Key = entity.StockKey{WarehouseID: t.DestinationWarehouseID, ProductID: d.ProductID}
			op.Quantity = d.Quantity
		default:
			op.Key = entity.StockKey{WarehouseID: t.SourceWarehouseID, ProductID: d.ProductID}
			op.Quantity = d.Quantity
		}
		ops = append(ops, op)
	}
	return ops
}

func (s *StockTransferService) transition(
	ctx context.Context,
	id, action string,
	fn func(repos TxRepos, t *entity.StockTransfer, now time.Time) error,
) (*entity.StockTransfer, error) {
	var out *entity.StockTransfer
	now := s.now()
	err := s.txRunner.Run(ctx, func(repos TxRepos) error {
		t, err := repos.Transfers.GetForUpdate(ctx, id)
		if err != nil {
			return err
		}
		if t == nil {
			return domain.NewNotFound("traslado", id)
		}
		if err := fn(repos, t, now); err != nil {
			return err
		}
		t.UpdatedAt = now
		if err := repos.Transfers.UpdateStatus(ctx, t); err != nil {
			return err
		}
		out = t
		return nil
	})
	if err != nil {
		ev := s.log.Error()
		if errors.Is(err, domain.ErrInsufficientInventory) || errors.Is(err, domain.ErrInvalidStateTransition) ||
			errors.Is(err, domain.ErrNotFound) {
			ev = s.log.Warn()
		}
		ev.Err(err).Str("transfer_id", id).Str("action", action).Msg("transición de traslado rechazada")
		return nil, err
	}
	s.log.Info().
		Str("transfer_id", out.ID).
		Str("action", action).
		Str("status", string(out.Status)).
		Bool("source_debited", out.SourceDebited).
		Msg("traslado actualizado")
	return out, nil
}

func invalidTransfer(t *entity.StockTransfer, action string) error {
	return &domain.InvalidStateTransitionError{
		Document: documentStockTransfer,
		ID:       t.ID,
		From:     string(t.Status),
		Action:   action,
	}
}

// GetByID devuelve el traslado con sus líneas.
func (s *StockTransferService) GetByID(ctx context.Context, id string) (*entity.StockTransfer, error) {
	t, err := s.transfers.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("consultar traslado: %w", err)
	}
	if t == nil {
		return nil, domain.NewNotFound("traslado", id)
	}
	return t, nil
}

// List lista traslados por bodega (origen o destino), producto, estado y fechas.
func (s *StockTransferService) List(ctx context.Context, filter repository.DocumentFilter) ([]*entity.StockTransfer, error) {
	filter.Limit = repository.NormalizeLimit(filter.Limit)
	return s.transfers.List(ctx, filter)
}

// DebitAt expone el momento configurado de descuento del origen.
func (s *StockTransferService) DebitAt() string { return s.debitAt }
