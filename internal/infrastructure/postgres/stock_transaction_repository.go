package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/inventario-ledger/internal/domain"
	"github.com/jhoicas/inventario-ledger/internal/domain/entity"
	"github.com/jhoicas/inventario-ledger/internal/domain/repository"
)

var _ repository.StockTransactionRepository = (*StockTransactionRepo)(nil)

const transactionColumns = `id, number, type, status, warehouse_id, source_warehouse_id, destination_warehouse_id,
	reason, notes, requested_by, approved_by, approval_notes, cancel_reason,
	created_at, updated_at, approved_at, cancelled_at`

const transactionDetailColumns = `id, transaction_id, line_no, product_id, quantity, unit_price,
	batch_number, expiry_date, notes, system_quantity, actual_quantity`

// StockTransactionRepo documentos de inventario (cabecera + líneas) sobre PostgreSQL.
type StockTransactionRepo struct {
	q Querier
}

// NewStockTransactionRepository construye el adaptador. Pasar pool o tx (Querier).
func NewStockTransactionRepository(q Querier) *StockTransactionRepo {
	return &StockTransactionRepo{q: q}
}

// Create persiste cabecera y líneas. Para que sea atómico debe llamarse con una tx.
func (r *StockTransactionRepo) Create(ctx context.Context, t *entity.StockTransaction) error {
	query := `INSERT INTO stock_transactions (` + transactionColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17)`
	_, err := r.q.Exec(ctx, query,
		t.ID, t.Number, string(t.Type), string(t.Status),
		nullable(t.WarehouseID), nullable(t.SourceWarehouseID), nullable(t.DestinationWarehouseID),
		nullable(t.Reason), nullable(t.Notes), t.RequestedBy, t.ApprovedBy, nullable(t.ApprovalNotes), nullable(t.CancelReason),
		t.CreatedAt, t.UpdatedAt, t.ApprovedAt, t.CancelledAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("documento %s: %w", t.Number, domain.ErrDuplicate)
		}
		return fmt.Errorf("insert stock transaction: %w", err)
	}

	detailQuery := `INSERT INTO stock_transaction_details (` + transactionDetailColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`
	for _, d := range t.Details {
		_, err := r.q.Exec(ctx, detailQuery,
			d.ID, t.ID, d.LineNo, d.ProductID, d.Quantity, d.UnitPrice,
			nullable(d.BatchNumber), d.ExpiryDate, nullable(d.Notes), d.SystemQuantity, d.ActualQuantity,
		)
		if err != nil {
			return fmt.Errorf("insert stock transaction detail: %w", err)
		}
	}
	return nil
}

func scanTransaction(row pgx.Row) (*entity.StockTransaction, error) {
	var t entity.StockTransaction
	var typ, status string
	var wh, src, dst, reason, notes, approvalNotes, cancelReason *string
	if err := row.Scan(&t.ID, &t.Number, &typ, &status, &wh, &src, &dst,
		&reason, &notes, &t.RequestedBy, &t.ApprovedBy, &approvalNotes, &cancelReason,
		&t.CreatedAt, &t.UpdatedAt, &t.ApprovedAt, &t.CancelledAt); err != nil {
		return nil, err
	}
	t.Type = entity.StockTransactionType(typ)
	t.Status = entity.StockTransactionStatus(status)
	t.WarehouseID = deref(wh)
	t.SourceWarehouseID = deref(src)
	t.DestinationWarehouseID = deref(dst)
	t.Reason = deref(reason)
	t.Notes = deref(notes)
	t.ApprovalNotes = deref(approvalNotes)
	t.CancelReason = deref(cancelReason)
	return &t, nil
}

func (r *StockTransactionRepo) GetByID(ctx context.Context, id string) (*entity.StockTransaction, error) {
	return r.get(ctx, `SELECT `+transactionColumns+` FROM stock_transactions WHERE id = $1`, id)
}

// GetForUpdate bloquea la cabecera: dos aprobaciones del mismo documento se serializan
// y la segunda ve el estado approved.
func (r *StockTransactionRepo) GetForUpdate(ctx context.Context, id string) (*entity.StockTransaction, error) {
	return r.get(ctx, `SELECT `+transactionColumns+` FROM stock_transactions WHERE id = $1 FOR UPDATE`, id)
}

func (r *StockTransactionRepo) get(ctx context.Context, query, id string) (*entity.StockTransaction, error) {
	t, err := scanTransaction(r.q.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get stock transaction: %w", err)
	}
	if t.Details, err = r.details(ctx, t.ID); err != nil {
		return nil, err
	}
	return t, nil
}

func (r *StockTransactionRepo) details(ctx context.Context, transactionID string) ([]entity.StockTransactionDetail, error) {
	rows, err := r.q.Query(ctx, `SELECT `+transactionDetailColumns+`
		FROM stock_transaction_details WHERE transaction_id = $1 ORDER BY line_no`, transactionID)
	if err != nil {
		return nil, fmt.Errorf("list stock transaction details: %w", err)
	}
	defer rows.Close()
	var list []entity.StockTransactionDetail
	for rows.Next() {
		var d entity.StockTransactionDetail
		var batch, notes *string
		if err := rows.Scan(&d.ID, &d.TransactionID, &d.LineNo, &d.ProductID, &d.Quantity, &d.UnitPrice,
			&batch, &d.ExpiryDate, &notes, &d.SystemQuantity, &d.ActualQuantity); err != nil {
			return nil, fmt.Errorf("scan stock transaction detail: %w", err)
		}
		d.BatchNumber = deref(batch)
		d.Notes = deref(notes)
		list = append(list, d)
	}
	return list, rows.Err()
}

// UpdateStatus solo toca la cabecera; las líneas no cambian después de crear el documento.
func (r *StockTransactionRepo) UpdateStatus(ctx context.Context, t *entity.StockTransaction) error {
	query := `
		UPDATE stock_transactions
		SET status = $2, approved_by = $3, approval_notes = $4, cancel_reason = $5,
		    updated_at = $6, approved_at = $7, cancelled_at = $8
		WHERE id = $1`
	cmd, err := r.q.Exec(ctx, query,
		t.ID, string(t.Status), t.ApprovedBy, nullable(t.ApprovalNotes), nullable(t.CancelReason),
		t.UpdatedAt, t.ApprovedAt, t.CancelledAt,
	)
	if err != nil {
		return fmt.Errorf("update stock transaction: %w", err)
	}
	if cmd.RowsAffected() == 0 {
		return domain.NewNotFound("documento", t.ID)
	}
	return nil
}

// List más recientes primero. Las líneas se cargan por documento.
func (r *StockTransactionRepo) List(ctx context.Context, f repository.DocumentFilter) ([]*entity.StockTransaction, error) {
	w := &whereBuilder{}
	if f.WarehouseID != "" {
		w.add("$%d IN (warehouse_id, source_warehouse_id, destination_warehouse_id)", f.WarehouseID)
	}
	if f.Type != "" {
		w.add("type = $%d", f.Type)
	}
	if f.Status != "" {
		w.add("status = $%d", f.Status)
	}
	if f.ProductID != "" {
		w.add("EXISTS (SELECT 1 FROM stock_transaction_details d WHERE d.transaction_id = stock_transactions.id AND d.product_id = $%d)", f.ProductID)
	}
	w.addRange("created_at", f.From, f.To)
	query := `SELECT ` + transactionColumns + ` FROM stock_transactions` + w.sql() +
		` ORDER BY created_at DESC, id` + w.page(f.Limit, f.Offset)

	rows, err := r.q.Query(ctx, query, w.args...)
	if err != nil {
		return nil, fmt.Errorf("list stock transactions: %w", err)
	}
	var list []*entity.StockTransaction
	for rows.Next() {
		t, err := scanTransaction(rows)
		if err != nil {
			rows.Close()
			return nil, fmt.Errorf("scan stock transaction: %w", err)
		}
		list = append(list, t)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list stock transactions: %w", err)
	}
	// una tx de pgx no admite otra consulta con rows abiertos: las líneas van después
	for _, t := range list {
		if t.Details, err = r.details(ctx, t.ID); err != nil {
			return nil, err
		}
	}
	return list, nil
}

// ListExpiringLots líneas de entradas aprobadas con vencimiento dentro de [From, To].
func (r *StockTransactionRepo) ListExpiringLots(ctx context.Context, f repository.ExpiryFilter) ([]entity.ExpiringLot, error) {
	w := &whereBuilder{}
	w.add("t.type = $%d", string(entity.TransactionTypeImport))
	w.add("t.status = $%d", string(entity.TransactionStatusApproved))
	w.add("d.expiry_date >= $%d", f.From)
	w.add("d.expiry_date <= $%d", f.To)
	if f.WarehouseID != "" {
		w.add("t.warehouse_id = $%d", f.WarehouseID)
	}
	query := `
		SELECT t.id, t.warehouse_id, d.product_id, COALESCE(d.batch_number, ''), d.quantity, d.expiry_date
		FROM stock_transaction_details d
		JOIN stock_transactions t ON t.id = d.transaction_id` + w.sql() + `
		ORDER BY d.expiry_date, t.id, d.line_no`
	rows, err := r.q.Query(ctx, query, w.args...)
	if err != nil {
		return nil, fmt.Errorf("list expiring lots: %w", err)
	}
	defer rows.Close()
	var lots []entity.ExpiringLot
	for rows.Next() {
		var l entity.ExpiringLot
		if err := rows.Scan(&l.TransactionID, &l.WarehouseID, &l.ProductID, &l.BatchNumber, &l.Quantity, &l.ExpiryDate); err != nil {
			return nil, fmt.Errorf("scan expiring lot: %w", err)
		}
		lots = append(lots, l)
	}
	return lots, rows.Err()
}
