package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// OrderItemDTO línea de consulta/reserva. warehouse_id vacío toma la bodega del request.
type OrderItemDTO struct {
	ProductID   string          `json:"product_id"`
	WarehouseID string          `json:"warehouse_id,omitempty"`
	Quantity    decimal.Decimal `json:"quantity"`
}

// AvailabilityRequest body para POST /api/inventory/availability.
type AvailabilityRequest struct {
	WarehouseID string         `json:"warehouse_id"`
	Items       []OrderItemDTO `json:"items"`
}

// ItemAvailabilityDTO veredicto por línea.
type ItemAvailabilityDTO struct {
	ProductID   string          `json:"product_id"`
	WarehouseID string          `json:"warehouse_id"`
	Requested   decimal.Decimal `json:"requested"`
	Quantity    decimal.Decimal `json:"quantity"`
	Reserved    decimal.Decimal `json:"reserved_quantity"`
	Available   decimal.Decimal `json:"available_quantity"`
	Shortage    decimal.Decimal `json:"shortage"`
	Sufficient  bool            `json:"sufficient"`
}

// AvailabilityResponse veredicto por línea y agregado.
type AvailabilityResponse struct {
	AllAvailable bool                  `json:"all_available"`
	Items        []ItemAvailabilityDTO `json:"items"`
}

// AdjustRequest body para POST /api/inventory/adjust.
type AdjustRequest struct {
	WarehouseID string          `json:"warehouse_id"`
	ProductID   string          `json:"product_id"`
	Delta       decimal.Decimal `json:"delta"`
	Reason      string          `json:"reason"`
}

// SetQuantityRequest body para POST /api/inventory/set.
type SetQuantityRequest struct {
	WarehouseID string          `json:"warehouse_id"`
	ProductID   string          `json:"product_id"`
	Quantity    decimal.Decimal `json:"quantity"`
	Reason      string          `json:"reason"`
}

// ReservationRequest body para reservar/liberar el grupo de una orden.
// En /reservations/release, all=true libera todo lo pendiente de la etiqueta e ignora items.
type ReservationRequest struct {
	WarehouseID   string         `json:"warehouse_id"`
	ReferenceType string         `json:"reference_type"`
	ReferenceID   string         `json:"reference_id"`
	Items         []OrderItemDTO `json:"items"`
	All           bool           `json:"all,omitempty"`
}

// InventoryRecordResponse existencias de un par (bodega, producto).
type InventoryRecordResponse struct {
	WarehouseID       string          `json:"warehouse_id"`
	ProductID         string          `json:"product_id"`
	Quantity          decimal.Decimal `json:"quantity"`
	ReservedQuantity  decimal.Decimal `json:"reserved_quantity"`
	AvailableQuantity decimal.Decimal `json:"available_quantity"`
	UpdatedAt         time.Time       `json:"updated_at"`
}

// InventoryRecordListResponse lista de existencias.
type InventoryRecordListResponse struct {
	Items []InventoryRecordResponse `json:"items"`
	Page  PageResponse              `json:"page"`
}

// MovementResponse entrada del diario.
type MovementResponse struct {
	ID             string          `json:"id"`
	WarehouseID    string          `json:"warehouse_id"`
	ProductID      string          `json:"product_id"`
	Type           string          `json:"type"`
	QuantityDelta  decimal.Decimal `json:"quantity_delta"`
	ReservedDelta  decimal.Decimal `json:"reserved_delta"`
	QuantityBefore decimal.Decimal `json:"quantity_before"`
	QuantityAfter  decimal.Decimal `json:"quantity_after"`
	ReservedBefore decimal.Decimal `json:"reserved_before"`
	ReservedAfter  decimal.Decimal `json:"reserved_after"`
	ReferenceType  string          `json:"reference_type,omitempty"`
	ReferenceID    string          `json:"reference_id,omitempty"`
	Reason         string          `json:"reason,omitempty"`
	CreatedBy      string          `json:"created_by,omitempty"`
	CreatedAt      time.Time       `json:"created_at"`
}

// MovementListResponse página del diario.
type MovementListResponse struct {
	Items []MovementResponse `json:"items"`
	Page  PageResponse       `json:"page"`
}

// LowStockAlertDTO producto por debajo de su punto de reorden con la cantidad sugerida de reposición.
type LowStockAlertDTO struct {
	WarehouseID       string          `json:"warehouse_id"`
	ProductID         string          `json:"product_id"`
	SKU               string          `json:"sku"`
	ProductName       string          `json:"product_name"`
	Quantity          decimal.Decimal `json:"quantity"`
	Reserved          decimal.Decimal `json:"reserved_quantity"`
	Available         decimal.Decimal `json:"available_quantity"`
	ReorderPoint      decimal.Decimal `json:"reorder_point"`
	IdealStock        decimal.Decimal `json:"ideal_stock"`         // ReorderPoint * 1.5
	SuggestedOrderQty decimal.Decimal `json:"suggested_order_qty"` // IdealStock - Available
	Priority          int             `json:"priority"`            // 1 = más urgente
}

// ExpiringLotDTO lote recibido que vence dentro de la ventana consultada.
type ExpiringLotDTO struct {
	TransactionID string          `json:"transaction_id"`
	WarehouseID   string          `json:"warehouse_id"`
	ProductID     string          `json:"product_id"`
	BatchNumber   string          `json:"batch_number"`
	Quantity      decimal.Decimal `json:"quantity"`
	ExpiryDate    time.Time       `json:"expiry_date"`
	DaysToExpiry  int             `json:"days_to_expiry"`
}
