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

var _ repository.StockTransferRepository = (*StockTransferRepo)(nil)

const transferColumns = `id, number, source_warehouse_id, destination_warehouse_id, status, total_value, source_debited,
	reason, notes, requested_by, approved_by, completed_by, cancel_reason,
	created_at, updated_at, approved_at, completed_at, cancelled_at`

// StockTransferRepo traslados con tránsito sobre PostgreSQL.
type StockTransferRepo struct {
	q Querier
}

// NewStockTransferRepository construye el adaptador. Pasar pool o tx (Querier).
func NewStockTransferRepository(q Querier) *StockTransferRepo {
	return &StockTransferRepo{q: q}
}

func (r *StockTransferRepo) Create(ctx context.Context, t *entity.StockTransfer) error {
	query := `INSERT INTO stock_transfers (` + transferColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18)`
	_, err := r.q.Exec(ctx, query,
		t.ID, t.Number, t.SourceWarehouseID, t.DestinationWarehouseID, string(t.Status), t.TotalValue, t.SourceDebited,
		nullable(t.Reason), nullable(t.Notes), t.RequestedBy, t.ApprovedBy, t.CompletedBy, nullable(t.CancelReason),
		t.CreatedAt, t.UpdatedAt, t.ApprovedAt, t.CompletedAt, t.CancelledAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("traslado %s: %w", t.Number, domain.ErrDuplicate)
		}
		return fmt.Errorf("insert stock transfer: %w", err)
	}
	detailQuery := `
		INSERT INTO stock_transfer_details (id, transfer_id, line_no, product_id, quantity, unit_price, batch_number, expiry_date, notes)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`
	for _, d := range t.Details {
		_, err := r.q.Exec(ctx, detailQuery,
			d.ID, t.ID, d.LineNo, d.ProductID, d.Quantity, d.UnitPrice,
			nullable(d.BatchNumber), d.ExpiryDate, nullable(d.Notes),
		)
		if err != nil {
			return fmt.Errorf("insert stock transfer detail: %w", err)
		}
	}
	return nil
}

func scanTransfer(row pgx.Row) (*entity.StockTransfer, error) {
	var t entity.StockTransfer
	var status string
	var reason, notes, cancelReason *string
	if err := row.Scan(&t.ID, &t.Number, &t.SourceWarehouseID, &t.DestinationWarehouseID, &status, &t.TotalValue, &t.SourceDebited,
		&reason, &notes, &t.RequestedBy, &t.ApprovedBy, &t.CompletedBy, &cancelReason,
		&t.CreatedAt, &t.UpdatedAt, &t.ApprovedAt, &t.CompletedAt, &t.CancelledAt); err != nil {
		return nil, err
	}
	t.Status = entity.StockTransferStatus(status)
	t.Reason = deref(reason)
	t.Notes = deref(notes)
	t.CancelReason = deref(cancelReason)
	return &t, nil
}

func (r *StockTransferRepo) GetByID(ctx context.Context, id string) (*entity.StockTransfer, error) {
	return r.get(ctx, `SELECT `+transferColumns+` FROM stock_transfers WHERE id = $1`, id)
}

func (r *StockTransferRepo) GetForUpdate(ctx context.Context, id string) (*entity.StockTransfer, error) {
	return r.get(ctx, `SELECT `+transferColumns+` FROM stock_transfers WHERE id = $1 FOR UPDATE`, id)
}

func (r *StockTransferRepo) get(ctx context.Context, query, id string) (*entity.StockTransfer, error) {
	t, err := scanTransfer(r.q.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get stock transfer: %w", err)
	}
	if t.Details, err = r.details(ctx, t.ID); err != nil {
		return nil, err
	}
	return t, nil
}

func (r *StockTransferRepo) details(ctx context.Context, transferID string) ([]entity.StockTransferDetail, error) {
	rows, err := r.q.Query(ctx, `
		SELECT id, transfer_id, line_no, product_id, quantity, unit_price, batch_number, expiry_date, notes
		FROM stock_transfer_details WHERE transfer_id = $1 ORDER BY line_no`, transferID)
	if err != nil {
		return nil, fmt.Errorf("list stock transfer details: %w", err)
	}
	defer rows.Close()
	var list []entity.StockTransferDetail
	for rows.Next() {
		var d entity.StockTransferDetail
		var batch, notes *string
		if err := rows.Scan(&d.ID, &d.TransferID, &d.LineNo, &d.ProductID, &d.Quantity, &d.UnitPrice,
			&batch, &d.ExpiryDate, &notes); err != nil {
			return nil, fmt.Errorf("scan stock transfer detail: %w", err)
		}
		d.BatchNumber = deref(batch)
		d.Notes = deref(notes)
		list = append(list, d)
	}
	return list, rows.Err()
}

func (r *StockTransferRepo) UpdateStatus(ctx context.Context, t *entity.StockTransfer) error {
	query := `
		UPDATE stock_transfers
		SET status = $2, source_debited = $3, approved_by = $4, completed_by = $5, cancel_reason = $6,
		    updated_at = $7, approved_at = $8, completed_at = $9, cancelled_at = $10
		WHERE id = $1`
	cmd, err := r.q.Exec(ctx, query,
		t.ID, string(t.Status), t.SourceDebited, t.ApprovedBy, t.CompletedBy, nullable(t.CancelReason),
		t.UpdatedAt, t.ApprovedAt, t.CompletedAt, t.CancelledAt,
	)
	if err != nil {
		return fmt.Errorf("update stock transfer: %w", err)
	}
	if cmd.RowsAffected() == 0 {
		return domain.NewNotFound("traslado", t.ID)
	}
	return nil
}

func (r *StockTransferRepo) List(ctx context.Context, f repository.DocumentFilter) ([]*entity.StockTransfer, error) {
	w := &whereBuilder{}
	if f.WarehouseID != "" {
		w.add("$%d IN (source_warehouse_id, destination_warehouse_id)", f.WarehouseID)
	}
	if f.Status != "" {
		w.add("status = $%d", f.Status)
	}
	if f.ProductID != "" {
		w.add("EXISTS (SELECT 1 FROM stock_transfer_details d WHERE d.transfer_id = stock_transfers.id AND d.product_id = $%d)", f.ProductID)
	}
	w.addRange("created_at", f.From, f.To)
	query := `SELECT ` + transferColumns + ` FROM stock_transfers` + w.sql() +
		` ORDER BY created_at DESC, id` + w.page(f.Limit, f.Offset)

	rows, err := r.q.Query(ctx, query, w.args...)
	if err != nil {
		return nil, fmt.Errorf("list stock transfers: %w", err)
	}
	var list []*entity.StockTransfer
	for rows.Next() {
		t, err := scanTransfer(rows)
		if err != nil {
			rows.Close()
			return nil, fmt.Errorf("scan stock transfer: %w", err)
		}
		list = append(list, t)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list stock transfers: %w", err)
	}
	for _, t := range list {
		if t.Details, err = r.details(ctx, t.ID); err != nil {
			return nil, err
		}
	}
	return list, nil
}
