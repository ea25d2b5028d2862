package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// TransactionLineDTO línea de un documento de inventario.
// En stocktake se envían system_quantity y actual_quantity en lugar de quantity.
type TransactionLineDTO struct {
	ProductID      string           `json:"product_id"`
	Quantity       decimal.Decimal  `json:"quantity"`
	UnitPrice      *decimal.Decimal `json:"unit_price,omitempty"`
	BatchNumber    string           `json:"batch_number,omitempty"`
	ExpiryDate     *time.Time       `json:"expiry_date,omitempty"`
	Notes          string           `json:"notes,omitempty"`
	SystemQuantity *decimal.Decimal `json:"system_quantity,omitempty"`
	ActualQuantity *decimal.Decimal `json:"actual_quantity,omitempty"`
}

// CreateTransactionRequest body para POST /api/stock-transactions/{tipo}.
type CreateTransactionRequest struct {
	WarehouseID            string               `json:"warehouse_id,omitempty"`
	SourceWarehouseID      string               `json:"source_warehouse_id,omitempty"`
	DestinationWarehouseID string               `json:"destination_warehouse_id,omitempty"`
	Reason                 string               `json:"reason"`
	Notes                  string               `json:"notes"`
	Draft                  bool                 `json:"draft"`
	Lines                  []TransactionLineDTO `json:"lines"`
}

// ApproveRequest body opcional de aprobación.
type ApproveRequest struct {
	Notes string `json:"notes"`
}

// CancelRequest body de cancelación.
type CancelRequest struct {
	Reason string `json:"reason"`
}

// TransactionResponse documento con sus líneas.
type TransactionResponse struct {
	ID                     string               `json:"id"`
	Number                 string               `json:"number"`
	Type                   string               `json:"type"`
	Status                 string               `json:"status"`
	WarehouseID            string               `json:"warehouse_id,omitempty"`
	SourceWarehouseID      string               `json:"source_warehouse_id,omitempty"`
	DestinationWarehouseID string               `json:"destination_warehouse_id,omitempty"`
	Reason                 string               `json:"reason,omitempty"`
	Notes                  string               `json:"notes,omitempty"`
	RequestedBy            string               `json:"requested_by"`
	ApprovedBy             *string              `json:"approved_by,omitempty"`
	ApprovalNotes          string               `json:"approval_notes,omitempty"`
	CancelReason           string               `json:"cancel_reason,omitempty"`
	CreatedAt              time.Time            `json:"created_at"`
	UpdatedAt              time.Time            `json:"updated_at"`
	ApprovedAt             *time.Time           `json:"approved_at,omitempty"`
	CancelledAt            *time.Time           `json:"cancelled_at,omitempty"`
	Lines                  []TransactionLineDTO `json:"lines"`
}

// TransactionListResponse lista paginada de documentos.
type TransactionListResponse struct {
	Items []TransactionResponse `json:"items"`
	Page  PageResponse          `json:"page"`
}

// TransferLineDTO línea de un traslado.
type TransferLineDTO struct {
	ProductID   string          `json:"product_id"`
	Quantity    decimal.Decimal `json:"quantity"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
	BatchNumber string          `json:"batch_number,omitempty"`
	ExpiryDate  *time.Time      `json:"expiry_date,omitempty"`
	Notes       string          `json:"notes,omitempty"`
}

// CreateTransferRequest body para POST /api/stock-transfers.
type CreateTransferRequest struct {
	SourceWarehouseID      string            `json:"source_warehouse_id"`
	DestinationWarehouseID string            `json:"destination_warehouse_id"`
	Reason                 string            `json:"reason"`
	Notes                  string            `json:"notes"`
	Lines                  []TransferLineDTO `json:"lines"`
}

// TransferResponse traslado con sus líneas.
type TransferResponse struct {
	ID                     string            `json:"id"`
	Number                 string            `json:"number"`
	Status                 string            `json:"status"`
	SourceWarehouseID      string            `json:"source_warehouse_id"`
	DestinationWarehouseID string            `json:"destination_warehouse_id"`
	TotalValue             decimal.Decimal   `json:"total_value"`
	SourceDebited          bool              `json:"source_debited"`
	Reason                 string            `json:"reason,omitempty"`
	Notes                  string            `json:"notes,omitempty"`
	RequestedBy            string            `json:"requested_by"`
	ApprovedBy             *string           `json:"approved_by,omitempty"`
	CompletedBy            *string           `json:"completed_by,omitempty"`
	CancelReason           string            `json:"cancel_reason,omitempty"`
	CreatedAt              time.Time         `json:"created_at"`
	UpdatedAt              time.Time         `json:"updated_at"`
	ApprovedAt             *time.Time        `json:"approved_at,omitempty"`
	CompletedAt            *time.Time        `json:"completed_at,omitempty"`
	CancelledAt            *time.Time        `json:"cancelled_at,omitempty"`
	Lines                  []TransferLineDTO `json:"lines"`
}

// TransferListResponse lista paginada de traslados.
type TransferListResponse struct {
	Items []TransferResponse `json:"items"`
	Page  PageResponse       `json:"page"`
}
