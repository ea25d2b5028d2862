package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// StockTransactionType es el conjunto cerrado de documentos de inventario.
type StockTransactionType string

const (
	TransactionTypeImport    StockTransactionType = "import"
	TransactionTypeExport    StockTransactionType = "export"
	TransactionTypeTransfer  StockTransactionType = "transfer"
	TransactionTypeDisposal  StockTransactionType = "disposal"
	TransactionTypeStocktake StockTransactionType = "stocktake"
)

// Valid indica si t pertenece al conjunto cerrado.
func (t StockTransactionType) Valid() bool {
	switch t {
	case TransactionTypeImport, TransactionTypeExport, TransactionTypeTransfer,
		TransactionTypeDisposal, TransactionTypeStocktake:
		return true
	}
	return false
}

// StockTransactionStatus: draft -> pending -> approved, o draft/pending -> cancelled.
type StockTransactionStatus string

const (
	TransactionStatusDraft     StockTransactionStatus = "draft"
	TransactionStatusPending   StockTransactionStatus = "pending"
	TransactionStatusApproved  StockTransactionStatus = "approved"
	TransactionStatusCancelled StockTransactionStatus = "cancelled"
)

// Terminal: approved y cancelled no admiten más transiciones.
func (s StockTransactionStatus) Terminal() bool {
	return s == TransactionStatusApproved || s == TransactionStatusCancelled
}

// CanSubmit solo desde draft.
func (s StockTransactionStatus) CanSubmit() bool { return s == TransactionStatusDraft }

// CanApprove solo desde pending.
func (s StockTransactionStatus) CanApprove() bool { return s == TransactionStatusPending }

// CanCancel desde draft o pending; un documento aprobado no se cancela.
func (s StockTransactionStatus) CanCancel() bool {
	return s == TransactionStatusDraft || s == TransactionStatusPending
}

// StockTransaction es un documento auditable de movimiento de existencias.
// WarehouseID se usa en import/export/disposal/stocktake; transfer usa Source/Destination.
// Su efecto sobre el ledger se aplica una sola vez, al aprobar.
type StockTransaction struct {
	ID                     string
	Number                 string
	Type                   StockTransactionType
	Status                 StockTransactionStatus
	WarehouseID            string
	SourceWarehouseID      string
	DestinationWarehouseID string
	Reason                 string
	Notes                  string
	RequestedBy            string
	ApprovedBy             *string
	ApprovalNotes          string
	CancelReason           string
	CreatedAt              time.Time
	UpdatedAt              time.Time
	ApprovedAt             *time.Time
	CancelledAt            *time.Time
	Details                []StockTransactionDetail
}

// Warehouses devuelve las bodegas que toca el documento.
func (t *StockTransaction) Warehouses() []string {
	if t.Type == TransactionTypeTransfer {
		return []string{t.SourceWarehouseID, t.DestinationWarehouseID}
	}
	return []string{t.WarehouseID}
}

// StockTransactionDetail es una línea del documento.
// En stocktake, Quantity guarda la varianza (actual - sistema) que se aplica como delta.
type StockTransactionDetail struct {
	ID             string
	TransactionID  string
	LineNo         int
	ProductID      string
	Quantity       decimal.Decimal
	UnitPrice      *decimal.Decimal
	BatchNumber    string
	ExpiryDate     *time.Time
	Notes          string
	SystemQuantity *decimal.Decimal // solo stocktake
	ActualQuantity *decimal.Decimal // solo stocktake
}

// ExpiringLot es una línea de entrada aprobada con fecha de vencimiento (alimenta alertas).
type ExpiringLot struct {
	TransactionID string
	WarehouseID   string
	ProductID     string
	BatchNumber   string
	Quantity      decimal.Decimal
	ExpiryDate    time.Time
}
