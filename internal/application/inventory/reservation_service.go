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
)

// ReservationService es la fachada que usan los flujos de pedidos de venta y producción:
// consulta de disponibilidad y reservas por grupo (todo o nada) para una orden.
type ReservationService struct {
	ledger   *Ledger
	txRunner TxRunner
	log      zerolog.Logger
	now      func() time.Time
}

// NewReservationService construye la fachada sobre el ledger.
func NewReservationService(ledger *Ledger, txRunner TxRunner, log zerolog.Logger) *ReservationService {
	return &ReservationService{
		ledger:   ledger,
		txRunner: txRunner,
		log:      log.With().Str("component", "reservations").Logger(),
		now:      time.Now,
	}
}

// OrderItem una línea de la orden. WarehouseID vacío toma la bodega de la orden.
type OrderItem struct {
	ProductID   string
	WarehouseID string
	Quantity    decimal.Decimal
}

// OrderHoldInput grupo de reservas etiquetado por (ReferenceType, ReferenceID).
type OrderHoldInput struct {
	WarehouseID   string
	Items         []OrderItem
	ReferenceType string
	ReferenceID   string
	UserID        string
}

// CheckAvailability delega en el ledger. Los ítems sin bodega usan warehouseID;
// si ambos están vacíos la llamada es inválida.
func (s *ReservationService) CheckAvailability(ctx context.Context, warehouseID string, items []OrderItem) (*AvailabilityResult, error) {
	if len(items) == 0 {
		return nil, domain.NewValidationError("items", "lista vacía")
	}
	req := make([]AvailabilityItem, 0, len(items))
	for i, it := range items {
		wh, err := resolveWarehouse(i, warehouseID, it.WarehouseID)
		if err != nil {
			return nil, err
		}
		req = append(req, AvailabilityItem{ProductID: it.ProductID, WarehouseID: wh, Quantity: it.Quantity})
	}
	return s.ledger.GetAvailability(ctx, req)
}

// ReserveForOrder reserva todos los ítems en una sola transacción. Si uno falla (p. ej. faltante)
// no queda ninguna reserva del grupo.
func (s *ReservationService) ReserveForOrder(ctx context.Context, in OrderHoldInput) ([]*entity.InventoryRecord, error) {
	return s.hold(ctx, in, opReserve)
}

// ReleaseForOrder libera los ítems del grupo; liberar más de lo reservado se recorta a cero.
func (s *ReservationService) ReleaseForOrder(ctx context.Context, in OrderHoldInput) ([]*entity.InventoryRecord, error) {
	return s.hold(ctx, in, opRelease)
}

func (s *ReservationService) hold(ctx context.Context, in OrderHoldInput, kind opKind) ([]*entity.InventoryRecord, error) {
	if strings.TrimSpace(in.ReferenceType) == "" {
		return nil, domain.NewValidationError("reference_type", "requerido")
	}
	if strings.TrimSpace(in.ReferenceID) == "" {
		return nil, domain.NewValidationError("reference_id", "requerido")
	}
	if len(in.Items) == 0 {
		return nil, domain.NewValidationError("items", "lista vacía")
	}

	ops := make([]ledgerOp, 0, len(in.Items))
	for i, it := range in.Items {
		wh, err := resolveWarehouse(i, in.WarehouseID, it.WarehouseID)
		if err != nil {
			return nil, err
		}
		if !it.Quantity.IsPositive() {
			return nil, domain.NewValidationError(fmt.Sprintf("items[%d].quantity", i), "debe ser mayor que cero")
		}
		if err := rules.CheckScale(fmt.Sprintf("items[%d].quantity", i), it.Quantity); err != nil {
			return nil, err
		}
		if _, err := s.ledger.catalog.requireWarehouse(ctx, fmt.Sprintf("items[%d].warehouse_id", i), wh); err != nil {
			return nil, err
		}
		if _, err := s.ledger.catalog.requireProduct(ctx, fmt.Sprintf("items[%d].product_id", i), it.ProductID); err != nil {
			return nil, err
		}
		ops = append(ops, holdOp(HoldInput{
			WarehouseID:   wh,
			ProductID:     it.ProductID,
			Quantity:      it.Quantity,
			ReferenceType: in.ReferenceType,
			ReferenceID:   in.ReferenceID,
		}, kind))
	}
	return s.applyGroup(ctx, in.ReferenceType, in.ReferenceID, in.UserID, func(*ledgerSession) ([]ledgerOp, error) {
		return ops, nil
	})
}

// ReleaseAllForReference libera todo lo que siga retenido para la etiqueta, según el diario.
// Sin saldo pendiente no hace nada.
func (s *ReservationService) ReleaseAllForReference(ctx context.Context, referenceType, referenceID, userID string) ([]*entity.InventoryRecord, error) {
	if strings.TrimSpace(referenceType) == "" {
		return nil, domain.NewValidationError("reference_type", "requerido")
	}
	if strings.TrimSpace(referenceID) == "" {
		return nil, domain.NewValidationError("reference_id", "requerido")
	}
	return s.applyGroup(ctx, referenceType, referenceID, userID, func(session *ledgerSession) ([]ledgerOp, error) {
		ops, err := outstandingReleases(ctx, session.repos, referenceType, referenceID)
		if err != nil {
			return nil, err
		}
		if err := session.lockFor(ctx, ops); err != nil {
			return nil, err
		}
		// Releer con los registros ya bloqueados: una liberación concurrente pudo consumir el saldo.
		return outstandingReleases(ctx, session.repos, referenceType, referenceID)
	})
}

func outstandingReleases(ctx context.Context, repos TxRepos, referenceType, referenceID string) ([]ledgerOp, error) {
	balances, err := repos.Movements.OutstandingReservations(ctx, referenceType, referenceID)
	if err != nil {
		return nil, fmt.Errorf("consultar reservas pendientes: %w", err)
	}
	ops := make([]ledgerOp, 0, len(balances))
	for _, b := range balances {
		ops = append(ops, holdOp(HoldInput{
			WarehouseID:   b.WarehouseID,
			ProductID:     b.ProductID,
			Quantity:      b.Outstanding,
			ReferenceType: referenceType,
			ReferenceID:   referenceID,
		}, opRelease))
	}
	return ops, nil
}

// applyGroup arma las operaciones con plan dentro de la tx y las aplica todas o ninguna.
func (s *ReservationService) applyGroup(
	ctx context.Context,
	refType, refID, userID string,
	plan func(session *ledgerSession) ([]ledgerOp, error),
) ([]*entity.InventoryRecord, error) {
	var ops []ledgerOp
	out := make([]*entity.InventoryRecord, 0)
	err := s.txRunner.Run(ctx, func(repos TxRepos) error {
		out = out[:0]
		session := newLedgerSession(repos, userID, s.now())
		var err error
		if ops, err = plan(session); err != nil {
			return err
		}
		if err := session.lockFor(ctx, ops); err != nil {
			return err
		}
		for _, op := range ops {
			rec, err := session.apply(ctx, op)
			if err != nil {
				return err
			}
			out = append(out, rec)
		}
		return nil
	})
	if err != nil {
		if errors.Is(err, domain.ErrInsufficientInventory) {
			s.log.Warn().Err(err).
				Str("reference_type", refType).
				Str("reference_id", refID).
				Msg("reserva de orden rechazada")
		}
		return nil, err
	}
	if len(ops) == 0 {
		return out, nil
	}
	s.log.Info().
		Str("reference_type", refType).
		Str("reference_id", refID).
		Int("items", len(ops)).
		Str("movement", ops[0].MovementType).
		Msg("grupo de reservas aplicado")
	return out, nil
}

func resolveWarehouse(i int, orderWarehouse, itemWarehouse string) (string, error) {
	if strings.TrimSpace(itemWarehouse) != "" {
		return itemWarehouse, nil
	}
	if strings.TrimSpace(orderWarehouse) != "" {
		return orderWarehouse, nil
	}
	return "", domain.NewValidationError(fmt.Sprintf("items[%d].warehouse_id", i), "requerido: indique la bodega del ítem o de la orden")
}
