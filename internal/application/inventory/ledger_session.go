package inventory

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/inventario-ledger/internal/domain/entity"
	rules "github.com/jhoicas/inventario-ledger/internal/domain/inventory"
)

type opKind int

const (
	opDelta opKind = iota
	opSet
	opReserve
	opRelease
)

// ledgerOp es una primitiva pendiente de aplicar sobre un registro.
type ledgerOp struct {
	Key           entity.StockKey
	Kind          opKind
	Quantity      decimal.Decimal // delta para opDelta, valor absoluto para opSet
	MovementType  string
	ReferenceType string
	ReferenceID   string
	Reason        string
}

// ledgerSession aplica primitivas dentro de una transacción ya abierta.
// Bloquea cada registro una sola vez (SELECT FOR UPDATE) y lo mantiene en memoria hasta el commit,
// de modo que varias líneas sobre el mismo par ven el efecto de las anteriores.
type ledgerSession struct {
	repos  TxRepos
	userID string
	now    time.Time
	locked map[entity.StockKey]*entity.InventoryRecord
}

func newLedgerSession(repos TxRepos, userID string, now time.Time) *ledgerSession {
	return &ledgerSession{
		repos:  repos,
		userID: userID,
		now:    now,
		locked: make(map[entity.StockKey]*entity.InventoryRecord),
	}
}

// lockFor bloquea todas las llaves de ops en orden (bodega, producto) para evitar deadlocks
// entre aprobaciones concurrentes que tocan los mismos pares.
func (s *ledgerSession) lockFor(ctx context.Context, ops []ledgerOp) error {
	keys := make([]entity.StockKey, 0, len(ops))
	seen := make(map[entity.StockKey]bool, len(ops))
	for _, op := range ops {
		if seen[op.Key] {
			continue
		}
		seen[op.Key] = true
		keys = append(keys, op.Key)
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i].Less(keys[j]) })
	for _, k := range keys {
		if _, err := s.record(ctx, k); err != nil {
			return err
		}
	}
	return nil
}

func (s *ledgerSession) record(ctx context.Context, key entity.StockKey) (*entity.InventoryRecord, error) {
	if rec, ok := s.locked[key]; ok {
		return rec, nil
	}
	rec, err := s.repos.Records.GetForUpdate(ctx, key.WarehouseID, key.ProductID)
	if err != nil {
		return nil, fmt.Errorf("bloquear registro %s/%s: %w", key.WarehouseID, key.ProductID, err)
	}
	s.locked[key] = rec
	return rec, nil
}

// apply ejecuta op sobre el registro bloqueado, lo persiste y deja el movimiento en el diario.
// Si la regla falla el registro en memoria no cambia y el caller debe abortar la tx.
func (s *ledgerSession) apply(ctx context.Context, op ledgerOp) (*entity.InventoryRecord, error) {
	rec, err := s.record(ctx, op.Key)
	if err != nil {
		return nil, err
	}
	work := rec.Clone()

	var ch rules.Change
	switch op.Kind {
	case opDelta:
		ch, err = rules.ApplyDelta(work, op.Quantity)
	case opSet:
		ch, err = rules.SetQuantity(work, op.Quantity)
	case opReserve:
		ch, err = rules.Reserve(work, op.Quantity)
	case opRelease:
		ch, err = rules.Release(work, op.Quantity)
	default:
		err = fmt.Errorf("operación de ledger desconocida: %d", op.Kind)
	}
	if err != nil {
		return nil, err
	}

	if work.CreatedAt.IsZero() {
		work.CreatedAt = s.now
	}
	work.UpdatedAt = s.now
	if err := s.repos.Records.Upsert(ctx, work); err != nil {
		return nil, err
	}
	*rec = *work

	mov := &entity.InventoryMovement{
		ID:             uuid.New().String(),
		WarehouseID:    op.Key.WarehouseID,
		ProductID:      op.Key.ProductID,
		Type:           op.MovementType,
		QuantityDelta:  ch.QuantityDelta,
		ReservedDelta:  ch.ReservedDelta,
		QuantityBefore: ch.QuantityBefore,
		QuantityAfter:  ch.QuantityAfter,
		ReservedBefore: ch.ReservedBefore,
		ReservedAfter:  ch.ReservedAfter,
		ReferenceType:  op.ReferenceType,
		ReferenceID:    op.ReferenceID,
		Reason:         op.Reason,
		CreatedBy:      s.userID,
		CreatedAt:      s.now,
	}
	if err := s.repos.Movements.Create(ctx, mov); err != nil {
		return nil, err
	}
	return rec.Clone(), nil
}

// applyAll bloquea en orden y aplica ops en el orden recibido; la primera falla aborta.
func (s *ledgerSession) applyAll(ctx context.Context, ops []ledgerOp) error {
	if err := s.lockFor(ctx, ops); err != nil {
		return err
	}
	for _, op := range ops {
		if _, err := s.apply(ctx, op); err != nil {
			return err
		}
	}
	return nil
}
