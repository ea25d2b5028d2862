package inventory

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/inventario-ledger/internal/domain"
	"github.com/jhoicas/inventario-ledger/internal/domain/entity"
	rules "github.com/jhoicas/inventario-ledger/internal/domain/inventory"
	"github.com/jhoicas/inventario-ledger/internal/domain/repository"
)

// Tipos de referencia usados en el diario cuando el cambio lo origina un documento propio.
const (
	ReferenceStockTransaction = "stock_transaction"
	ReferenceStockTransfer    = "stock_transfer"
	ReferenceManual           = "manual"
)

// Ledger es el único escritor de InventoryRecord. Cada primitiva corre en su propia transacción
// con el registro bloqueado (SELECT FOR UPDATE), así dos llamadas sobre el mismo par nunca se intercalan.
type Ledger struct {
	txRunner  TxRunner
	records   repository.InventoryRecordRepository
	movements repository.InventoryMovementRepository
	catalog   catalog
	log       zerolog.Logger
	now       func() time.Time
}

// NewLedger construye el ledger. records y movements son los repos sin tx (lecturas).
func NewLedger(
	txRunner TxRunner,
	records repository.InventoryRecordRepository,
	movements repository.InventoryMovementRepository,
	products repository.ProductRepository,
	warehouses repository.WarehouseRepository,
	log zerolog.Logger,
) *Ledger {
	return &Ledger{
		txRunner:  txRunner,
		records:   records,
		movements: movements,
		catalog:   catalog{products: products, warehouses: warehouses},
		log:       log.With().Str("component", "ledger").Logger(),
		now:       time.Now,
	}
}

// AvailabilityItem una línea a consultar. WarehouseID es obligatorio a este nivel.
type AvailabilityItem struct {
	ProductID   string
	WarehouseID string
	Quantity    decimal.Decimal
}

// ItemAvailability veredicto por línea.
type ItemAvailability struct {
	ProductID   string
	WarehouseID string
	Requested   decimal.Decimal
	Quantity    decimal.Decimal
	Reserved    decimal.Decimal
	Available   decimal.Decimal
	Shortage    decimal.Decimal
	Sufficient  bool
}

// AvailabilityResult veredicto por línea y agregado.
type AvailabilityResult struct {
	Items        []ItemAvailability
	AllAvailable bool
}

// GetAvailability resuelve cantidad/reservado de cada línea (registro ausente = ceros) y calcula
// disponible y faltante. Solo lectura: un valor momentáneamente viejo es aceptable porque
// Reserve vuelve a validar bajo bloqueo.
func (l *Ledger) GetAvailability(ctx context.Context, items []AvailabilityItem) (*AvailabilityResult, error) {
	if len(items) == 0 {
		return nil, domain.NewValidationError("items", "lista vacía")
	}
	for i, it := range items {
		if strings.TrimSpace(it.WarehouseID) == "" {
			return nil, domain.NewValidationError(fmt.Sprintf("items[%d].warehouse_id", i), "requerido")
		}
		if strings.TrimSpace(it.ProductID) == "" {
			return nil, domain.NewValidationError(fmt.Sprintf("items[%d].product_id", i), "requerido")
		}
		if it.Quantity.IsNegative() {
			return nil, domain.NewValidationError(fmt.Sprintf("items[%d].quantity", i), "no puede ser negativa")
		}
		if err := rules.CheckScale(fmt.Sprintf("items[%d].quantity", i), it.Quantity); err != nil {
			return nil, err
		}
	}

	res := &AvailabilityResult{Items: make([]ItemAvailability, 0, len(items)), AllAvailable: true}
	for _, it := range items {
		rec, err := l.records.Get(ctx, it.WarehouseID, it.ProductID)
		if err != nil {
			return nil, fmt.Errorf("consultar existencias: %w", err)
		}
		if rec == nil {
			rec = entity.NewInventoryRecord(it.WarehouseID, it.ProductID)
		}
		available := rec.Available()
		ok := available.GreaterThanOrEqual(it.Quantity)
		if !ok {
			res.AllAvailable = false
		}
		res.Items = append(res.Items, ItemAvailability{
			ProductID:   it.ProductID,
			WarehouseID: it.WarehouseID,
			Requested:   it.Quantity,
			Quantity:    rec.Quantity,
			Reserved:    rec.ReservedQuantity,
			Available:   available,
			Shortage:    rules.Shortage(it.Quantity, available),
			Sufficient:  ok,
		})
	}
	return res, nil
}

// AdjustInput corrección relativa: cantidad += Delta.
type AdjustInput struct {
	WarehouseID string
	ProductID   string
	Delta       decimal.Decimal
	Reason      string
	UserID      string
}

// AdjustQuantity aplica quantity += delta. Falla con InsufficientInventory si el disponible no alcanza.
func (l *Ledger) AdjustQuantity(ctx context.Context, in AdjustInput) (*entity.InventoryRecord, error) {
	if in.Delta.IsZero() {
		return nil, domain.NewValidationError("delta", "no puede ser cero")
	}
	if err := rules.CheckScale("delta", in.Delta); err != nil {
		return nil, err
	}
	if strings.TrimSpace(in.Reason) == "" {
		return nil, domain.NewValidationError("reason", "requerido")
	}
	return l.single(ctx, in.UserID, ledgerOp{
		Key:           entity.StockKey{WarehouseID: in.WarehouseID, ProductID: in.ProductID},
		Kind:          opDelta,
		Quantity:      in.Delta,
		MovementType:  entity.MovementTypeAdjustment,
		ReferenceType: ReferenceManual,
		Reason:        in.Reason,
	})
}

// SetInput corrección absoluta.
type SetInput struct {
	WarehouseID string
	ProductID   string
	Quantity    decimal.Decimal
	Reason      string
	UserID      string
}

// SetQuantity sobrescribe la cantidad; falla si queda por debajo de lo reservado.
func (l *Ledger) SetQuantity(ctx context.Context, in SetInput) (*entity.InventoryRecord, error) {
	if strings.TrimSpace(in.Reason) == "" {
		return nil, domain.NewValidationError("reason", "requerido")
	}
	if err := rules.CheckScale("quantity", in.Quantity); err != nil {
		return nil, err
	}
	return l.single(ctx, in.UserID, ledgerOp{
		Key:           entity.StockKey{WarehouseID: in.WarehouseID, ProductID: in.ProductID},
		Kind:          opSet,
		Quantity:      in.Quantity,
		MovementType:  entity.MovementTypeSet,
		ReferenceType: ReferenceManual,
		Reason:        in.Reason,
	})
}

// HoldInput reserva o liberación etiquetada por (ReferenceType, ReferenceID).
type HoldInput struct {
	WarehouseID   string
	ProductID     string
	Quantity      decimal.Decimal
	ReferenceType string
	ReferenceID   string
	UserID        string
}

func (in HoldInput) validate() error {
	if strings.TrimSpace(in.ReferenceType) == "" {
		return domain.NewValidationError("reference_type", "requerido")
	}
	if strings.TrimSpace(in.ReferenceID) == "" {
		return domain.NewValidationError("reference_id", "requerido")
	}
	if !in.Quantity.IsPositive() {
		return domain.NewValidationError("quantity", "debe ser mayor que cero")
	}
	return rules.CheckScale("quantity", in.Quantity)
}

// Reserve incrementa lo reservado. No es idempotente: el caller no debe reservar dos veces la misma retención.
func (l *Ledger) Reserve(ctx context.Context, in HoldInput) (*entity.InventoryRecord, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}
	return l.single(ctx, in.UserID, holdOp(in, opReserve))
}

// Release descuenta min(quantity, reservado); liberar de más se recorta, no es error.
func (l *Ledger) Release(ctx context.Context, in HoldInput) (*entity.InventoryRecord, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}
	return l.single(ctx, in.UserID, holdOp(in, opRelease))
}

func holdOp(in HoldInput, kind opKind) ledgerOp {
	movType := entity.MovementTypeReserve
	if kind == opRelease {
		movType = entity.MovementTypeRelease
	}
	return ledgerOp{
		Key:           entity.StockKey{WarehouseID: in.WarehouseID, ProductID: in.ProductID},
		Kind:          kind,
		Quantity:      in.Quantity,
		MovementType:  movType,
		ReferenceType: in.ReferenceType,
		ReferenceID:   in.ReferenceID,
	}
}

// Get devuelve el registro actual (en cero si el par no tiene historia).
func (l *Ledger) Get(ctx context.Context, warehouseID, productID string) (*entity.InventoryRecord, error) {
	rec, err := l.records.Get(ctx, warehouseID, productID)
	if err != nil {
		return nil, fmt.Errorf("consultar existencias: %w", err)
	}
	if rec == nil {
		rec = entity.NewInventoryRecord(warehouseID, productID)
	}
	return rec, nil
}

// ListByWarehouse lista existencias de una bodega.
func (l *Ledger) ListByWarehouse(ctx context.Context, warehouseID string, limit, offset int) ([]*entity.InventoryRecord, error) {
	if strings.TrimSpace(warehouseID) == "" {
		return nil, domain.NewValidationError("warehouse_id", "requerido")
	}
	return l.records.ListByWarehouse(ctx, warehouseID, repository.NormalizeLimit(limit), offset)
}

// ListByProduct lista existencias de un producto en todas las bodegas.
func (l *Ledger) ListByProduct(ctx context.Context, productID string) ([]*entity.InventoryRecord, error) {
	if strings.TrimSpace(productID) == "" {
		return nil, domain.NewValidationError("product_id", "requerido")
	}
	return l.records.ListByProduct(ctx, productID)
}

// Movements consulta el diario.
func (l *Ledger) Movements(ctx context.Context, filter repository.MovementFilter) ([]*entity.InventoryMovement, error) {
	filter.Limit = repository.NormalizeLimit(filter.Limit)
	return l.movements.List(ctx, filter)
}

// single valida referencias y aplica una primitiva en su propia transacción.
func (l *Ledger) single(ctx context.Context, userID string, op ledgerOp) (*entity.InventoryRecord, error) {
	if _, err := l.catalog.requireWarehouse(ctx, "warehouse_id", op.Key.WarehouseID); err != nil {
		return nil, err
	}
	if _, err := l.catalog.requireProduct(ctx, "product_id", op.Key.ProductID); err != nil {
		return nil, err
	}

	var out *entity.InventoryRecord
	err := l.txRunner.Run(ctx, func(repos TxRepos) error {
		rec, err := newLedgerSession(repos, userID, l.now()).apply(ctx, op)
		if err != nil {
			return err
		}
		out = rec
		return nil
	})
	if err != nil {
		if errors.Is(err, domain.ErrInsufficientInventory) {
			l.log.Warn().Err(err).
				Str("movement", op.MovementType).
				Str("warehouse_id", op.Key.WarehouseID).
				Str("product_id", op.Key.ProductID).
				Msg("primitiva rechazada")
		}
		return nil, err
	}
	return out, nil
}
