// Package memory implementa los repositorios y el TxRunner en memoria (desarrollo y tests).
// Las transacciones se serializan con un mutex global y se revierten restaurando una instantánea,
// así que ofrecen las mismas garantías de todo-o-nada que el TxRunner de PostgreSQL.
package memory

import (
	"context"
	"sync"

	"github.com/jhoicas/inventario-ledger/internal/application/inventory"
	"github.com/jhoicas/inventario-ledger/internal/domain/entity"
)

var _ inventory.TxRunner = (*Store)(nil)

// Store guarda todo el estado del servicio.
type Store struct {
	mu sync.RWMutex
	st state
}

type state struct {
	warehouses   map[string]entity.Warehouse
	products     map[string]entity.Product
	records      map[entity.StockKey]entity.InventoryRecord
	movements    []entity.InventoryMovement
	transactions map[string]*entity.StockTransaction
	txOrder      []string
	transfers    map[string]*entity.StockTransfer
	trOrder      []string
}

// NewStore crea un store vacío.
func NewStore() *Store {
	return &Store{st: state{
		warehouses:   make(map[string]entity.Warehouse),
		products:     make(map[string]entity.Product),
		records:      make(map[entity.StockKey]entity.InventoryRecord),
		transactions: make(map[string]*entity.StockTransaction),
		transfers:    make(map[string]*entity.StockTransfer),
	}}
}

// snapshot copia los mapas. Los documentos guardados nunca se mutan en sitio
// (cada escritura reemplaza el puntero), así que basta una copia superficial.
func (s state) snapshot() state {
	c := state{
		warehouses:   make(map[string]entity.Warehouse, len(s.warehouses)),
		products:     make(map[string]entity.Product, len(s.products)),
		records:      make(map[entity.StockKey]entity.InventoryRecord, len(s.records)),
		movements:    s.movements[:len(s.movements):len(s.movements)],
		transactions: make(map[string]*entity.StockTransaction, len(s.transactions)),
		txOrder:      s.txOrder[:len(s.txOrder):len(s.txOrder)],
		transfers:    make(map[string]*entity.StockTransfer, len(s.transfers)),
		trOrder:      s.trOrder[:len(s.trOrder):len(s.trOrder)],
	}
	for k, v := range s.warehouses {
		c.warehouses[k] = v
	}
	for k, v := range s.products {
		c.products[k] = v
	}
	for k, v := range s.records {
		c.records[k] = v
	}
	for k, v := range s.transactions {
		c.transactions[k] = v
	}
	for k, v := range s.transfers {
		c.transfers[k] = v
	}
	return c
}

// Run ejecuta fn con repositorios atados a una transacción exclusiva.
// Si fn devuelve error el estado vuelve a la instantánea tomada al inicio.
func (s *Store) Run(ctx context.Context, fn func(repos inventory.TxRepos) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	snap := s.st.snapshot()
	if err := fn(s.repos(true)); err != nil {
		s.st = snap
		return err
	}
	return nil
}

func (s *Store) repos(inTx bool) inventory.TxRepos {
	return inventory.TxRepos{
		Records:      &InventoryRecordRepo{store: s, inTx: inTx},
		Movements:    &InventoryMovementRepo{store: s, inTx: inTx},
		Transactions: &StockTransactionRepo{store: s, inTx: inTx},
		Transfers:    &StockTransferRepo{store: s, inTx: inTx},
	}
}

// Records repositorio de existencias fuera de transacción.
func (s *Store) Records() *InventoryRecordRepo { return &InventoryRecordRepo{store: s} }

// Movements repositorio del diario fuera de transacción.
func (s *Store) Movements() *InventoryMovementRepo { return &InventoryMovementRepo{store: s} }

// Transactions repositorio de documentos fuera de transacción.
func (s *Store) Transactions() *StockTransactionRepo { return &StockTransactionRepo{store: s} }

// Transfers repositorio de traslados fuera de transacción.
func (s *Store) Transfers() *StockTransferRepo { return &StockTransferRepo{store: s} }

// Warehouses repositorio de bodegas.
func (s *Store) Warehouses() *WarehouseRepo { return &WarehouseRepo{store: s} }

// Products repositorio de productos.
func (s *Store) Products() *ProductRepo { return &ProductRepo{store: s} }

// read/write toman el mutex solo fuera de Run (dentro, Run ya lo tiene).
func (s *Store) read(inTx bool, fn func(st *state)) {
	if !inTx {
		s.mu.RLock()
		defer s.mu.RUnlock()
	}
	fn(&s.st)
}

func (s *Store) write(inTx bool, fn func(st *state) error) error {
	if !inTx {
		s.mu.Lock()
		defer s.mu.Unlock()
	}
	return fn(&s.st)
}

func page[T any](items []T, limit, offset int) []T {
	if offset >= len(items) {
		return []T{}
	}
	if offset < 0 {
		offset = 0
	}
	end := len(items)
	if limit > 0 && offset+limit < end {
		end = offset + limit
	}
	return items[offset:end]
}
