package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// StockTransferStatus: pending -> in_transit -> completed, o pending/in_transit -> cancelled.
type StockTransferStatus string

const (
	TransferStatusPending   StockTransferStatus = "pending"
	TransferStatusInTransit StockTransferStatus = "in_transit"
	TransferStatusCompleted StockTransferStatus = "completed"
	TransferStatusCancelled StockTransferStatus = "cancelled"
)

// CanApprove solo desde pending.
func (s StockTransferStatus) CanApprove() bool { return s == TransferStatusPending }

// CanComplete solo con la mercancía en tránsito.
func (s StockTransferStatus) CanComplete() bool { return s == TransferStatusInTransit }

// CanCancel desde pending o in_transit.
func (s StockTransferStatus) CanCancel() bool {
	return s == TransferStatusPending || s == TransferStatusInTransit
}

// Momento en que se descuenta la bodega origen.
const (
	TransferDebitAtApprove  = "approve"
	TransferDebitAtComplete = "complete"
)

// StockTransfer modela mercancía en camino entre dos bodegas.
// SourceDebited queda en true desde que se descontó el origen; cancel lo usa para devolver el stock.
type StockTransfer struct {
	ID                     string
	Number                 string
	SourceWarehouseID      string
	DestinationWarehouseID string
	Status                 StockTransferStatus
	TotalValue             decimal.Decimal // Σ cantidad × precio unitario
	SourceDebited          bool
	Reason                 string
	Notes                  string
	RequestedBy            string
	ApprovedBy             *string
	CompletedBy            *string
	CancelReason           string
	CreatedAt              time.Time
	UpdatedAt              time.Time
	ApprovedAt             *time.Time
	CompletedAt            *time.Time
	CancelledAt            *time.Time
	Details                []StockTransferDetail
}

// StockTransferDetail es una línea del traslado.
type StockTransferDetail struct {
	ID          string
	TransferID  string
	LineNo      int
	ProductID   string
	Quantity    decimal.Decimal
	UnitPrice   decimal.Decimal
	BatchNumber string
	ExpiryDate  *time.Time
	Notes       string
}

// LineValue = Quantity × UnitPrice.
func (d StockTransferDetail) LineValue() decimal.Decimal {
	return d.Quantity.Mul(d.UnitPrice)
}

// ComputeTotalValue recalcula TotalValue desde las líneas.
func (t *StockTransfer) ComputeTotalValue() decimal.Decimal {
	total := decimal.Zero
	for _, d := range t.Details {
		total = total.Add(d.LineValue())
	}
	t.TotalValue = total
	return total
}
