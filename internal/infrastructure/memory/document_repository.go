package memory

import (
	"context"
	"fmt"
	"time"

	"github.com/jhoicas/inventario-ledger/internal/domain/entity"
	"github.com/jhoicas/inventario-ledger/internal/domain/repository"
)

var (
	_ repository.StockTransactionRepository = (*StockTransactionRepo)(nil)
	_ repository.StockTransferRepository    = (*StockTransferRepo)(nil)
)

// StockTransactionRepo documentos de inventario.
type StockTransactionRepo struct {
	store *Store
	inTx  bool
}

func copyTransaction(t *entity.StockTransaction) *entity.StockTransaction {
	c := *t
	c.Details = append([]entity.StockTransactionDetail(nil), t.Details...)
	return &c
}

func (r *StockTransactionRepo) Create(_ context.Context, tx *entity.StockTransaction) error {
	return r.store.write(r.inTx, func(st *state) error {
		if _, ok := st.transactions[tx.ID]; ok {
			return fmt.Errorf("documento %s ya existe", tx.ID)
		}
		st.transactions[tx.ID] = copyTransaction(tx)
		st.txOrder = append(st.txOrder, tx.ID)
		return nil
	})
}

func (r *StockTransactionRepo) GetByID(_ context.Context, id string) (*entity.StockTransaction, error) {
	var out *entity.StockTransaction
	r.store.read(r.inTx, func(st *state) {
		if t, ok := st.transactions[id]; ok {
			out = copyTransaction(t)
		}
	})
	return out, nil
}

func (r *StockTransactionRepo) GetForUpdate(ctx context.Context, id string) (*entity.StockTransaction, error) {
	return r.GetByID(ctx, id)
}

// UpdateStatus reemplaza la cabecera; las líneas guardadas no cambian.
func (r *StockTransactionRepo) UpdateStatus(_ context.Context, tx *entity.StockTransaction) error {
	return r.store.write(r.inTx, func(st *state) error {
		cur, ok := st.transactions[tx.ID]
		if !ok {
			return fmt.Errorf("documento %s no existe", tx.ID)
		}
		c := copyTransaction(tx)
		c.Details = cur.Details
		st.transactions[tx.ID] = c
		return nil
	})
}

func (r *StockTransactionRepo) List(_ context.Context, f repository.DocumentFilter) ([]*entity.StockTransaction, error) {
	var list []*entity.StockTransaction
	r.store.read(r.inTx, func(st *state) {
		// más recientes primero
		for i := len(st.txOrder) - 1; i >= 0; i-- {
			t := st.transactions[st.txOrder[i]]
			if f.WarehouseID != "" && t.WarehouseID != f.WarehouseID &&
				t.SourceWarehouseID != f.WarehouseID && t.DestinationWarehouseID != f.WarehouseID {
				continue
			}
			if f.Type != "" && string(t.Type) != f.Type {
				continue
			}
			if f.Status != "" && string(t.Status) != f.Status {
				continue
			}
			if !inRange(t.CreatedAt, f.From, f.To) {
				continue
			}
			if f.ProductID != "" && !transactionHasProduct(t, f.ProductID) {
				continue
			}
			list = append(list, copyTransaction(t))
		}
	})
	return page(list, f.Limit, f.Offset), nil
}

func (r *StockTransactionRepo) ListExpiringLots(_ context.Context, f repository.ExpiryFilter) ([]entity.ExpiringLot, error) {
	var lots []entity.ExpiringLot
	r.store.read(r.inTx, func(st *state) {
		for _, id := range st.txOrder {
			t := st.transactions[id]
			if t.Type != entity.TransactionTypeImport || t.Status != entity.TransactionStatusApproved {
				continue
			}
			if f.WarehouseID != "" && t.WarehouseID != f.WarehouseID {
				continue
			}
			for _, d := range t.Details {
				if d.ExpiryDate == nil || d.ExpiryDate.Before(f.From) || d.ExpiryDate.After(f.To) {
					continue
				}
				lots = append(lots, entity.ExpiringLot{
					TransactionID: t.ID,
					WarehouseID:   t.WarehouseID,
					ProductID:     d.ProductID,
					BatchNumber:   d.BatchNumber,
					Quantity:      d.Quantity,
					ExpiryDate:    *d.ExpiryDate,
				})
			}
		}
	})
	return lots, nil
}

func transactionHasProduct(t *entity.StockTransaction, productID string) bool {
	for _, d := range t.Details {
		if d.ProductID == productID {
			return true
		}
	}
	return false
}

func inRange(ts time.Time, from, to *time.Time) bool {
	if from != nil && ts.Before(*from) {
		return false
	}
	if to != nil && ts.After(*to) {
		return false
	}
	return true
}

// StockTransferRepo traslados con tránsito.
type StockTransferRepo struct {
	store *Store
	inTx  bool
}

func copyTransfer(t *entity.StockTransfer) *entity.StockTransfer {
	c := *t
	c.Details = append([]entity.StockTransferDetail(nil), t.Details...)
	return &c
}

func (r *StockTransferRepo) Create(_ context.Context, t *entity.StockTransfer) error {
	return r.store.write(r.inTx, func(st *state) error {
		if _, ok := st.transfers[t.ID]; ok {
			return fmt.Errorf("traslado %s ya existe", t.ID)
		}
		st.transfers[t.ID] = copyTransfer(t)
		st.trOrder = append(st.trOrder, t.ID)
		return nil
	})
}

func (r *StockTransferRepo) GetByID(_ context.Context, id string) (*entity.StockTransfer, error) {
	var out *entity.StockTransfer
	r.store.read(r.inTx, func(st *state) {
		if t, ok := st.transfers[id]; ok {
			out = copyTransfer(t)
		}
	})
	return out, nil
}

func (r *StockTransferRepo) GetForUpdate(ctx context.Context, id string) (*entity.StockTransfer, error) {
	return r.GetByID(ctx, id)
}

func (r *StockTransferRepo) UpdateStatus(_ context.Context, t *entity.StockTransfer) error {
	return r.store.write(r.inTx, func(st *state) error {
		cur, ok := st.transfers[t.ID]
		if !ok {
			return fmt.Errorf("traslado %s no existe", t.ID)
		}
		c := copyTransfer(t)
		c.Details = cur.Details
		st.transfers[t.ID] = c
		return nil
	})
}

func (r *StockTransferRepo) List(_ context.Context, f repository.DocumentFilter) ([]*entity.StockTransfer, error) {
	var list []*entity.StockTransfer
	r.store.read(r.inTx, func(st *state) {
		for i := len(st.trOrder) - 1; i >= 0; i-- {
			t := st.transfers[st.trOrder[i]]
			if f.WarehouseID != "" && t.SourceWarehouseID != f.WarehouseID && t.DestinationWarehouseID != f.WarehouseID {
				continue
			}
			if f.Status != "" && string(t.Status) != f.Status {
				continue
			}
			if !inRange(t.CreatedAt, f.From, f.To) {
				continue
			}
			if f.ProductID != "" {
				found := false
				for _, d := range t.Details {
					if d.ProductID == f.ProductID {
						found = true
						break
					}
				}
				if !found {
					continue
				}
			}
			list = append(list, copyTransfer(t))
		}
	})
	return page(list, f.Limit, f.Offset), nil
}
