package http

import (
	"github.com/jhoicas/inventario-ledger/internal/application/dto"
	"github.com/jhoicas/inventario-ledger/internal/application/inventory"
	"github.com/jhoicas/inventario-ledger/internal/domain/entity"
)

func toRecordResponse(r *entity.InventoryRecord) dto.InventoryRecordResponse {
	return dto.InventoryRecordResponse{
		WarehouseID:       r.WarehouseID,
		ProductID:         r.ProductID,
		Quantity:          r.Quantity,
		ReservedQuantity:  r.ReservedQuantity,
		AvailableQuantity: r.Available(),
		UpdatedAt:         r.UpdatedAt,
	}
}

func toRecordResponses(list []*entity.InventoryRecord) []dto.InventoryRecordResponse {
	out := make([]dto.InventoryRecordResponse, 0, len(list))
	for _, r := range list {
		out = append(out, toRecordResponse(r))
	}
	return out
}

func toAvailabilityResponse(res *inventory.AvailabilityResult) dto.AvailabilityResponse {
	out := dto.AvailabilityResponse{AllAvailable: res.AllAvailable, Items: make([]dto.ItemAvailabilityDTO, 0, len(res.Items))}
	for _, it := range res.Items {
		out.Items = append(out.Items, dto.ItemAvailabilityDTO{
			ProductID:   it.ProductID,
			WarehouseID: it.WarehouseID,
			Requested:   it.Requested,
			Quantity:    it.Quantity,
			Reserved:    it.Reserved,
			Available:   it.Available,
			Shortage:    it.Shortage,
			Sufficient:  it.Sufficient,
		})
	}
	return out
}

func toOrderItems(items []dto.OrderItemDTO) []inventory.OrderItem {
	out := make([]inventory.OrderItem, 0, len(items))
	for _, it := range items {
		out = append(out, inventory.OrderItem{ProductID: it.ProductID, WarehouseID: it.WarehouseID, Quantity: it.Quantity})
	}
	return out
}

func toMovementResponse(m *entity.InventoryMovement) dto.MovementResponse {
	return dto.MovementResponse{
		ID:             m.ID,
		WarehouseID:    m.WarehouseID,
		ProductID:      m.ProductID,
		Type:           m.Type,
		QuantityDelta:  m.QuantityDelta,
		ReservedDelta:  m.ReservedDelta,
		QuantityBefore: m.QuantityBefore,
		QuantityAfter:  m.QuantityAfter,
		ReservedBefore: m.ReservedBefore,
		ReservedAfter:  m.ReservedAfter,
		ReferenceType:  m.ReferenceType,
		ReferenceID:    m.ReferenceID,
		Reason:         m.Reason,
		CreatedBy:      m.CreatedBy,
		CreatedAt:      m.CreatedAt,
	}
}

func toTransactionInput(in dto.CreateTransactionRequest, userID string) inventory.CreateTransactionInput {
	lines := make([]inventory.TransactionLineInput, 0, len(in.Lines))
	for _, l := range in.Lines {
		lines = append(lines, inventory.TransactionLineInput{
			ProductID:      l.ProductID,
			Quantity:       l.Quantity,
			UnitPrice:      l.UnitPrice,
			BatchNumber:    l.BatchNumber,
			ExpiryDate:     l.ExpiryDate,
			Notes:          l.Notes,
			SystemQuantity: l.SystemQuantity,
			ActualQuantity: l.ActualQuantity,
		})
	}
	return inventory.CreateTransactionInput{
		WarehouseID:            in.WarehouseID,
		SourceWarehouseID:      in.SourceWarehouseID,
		DestinationWarehouseID: in.DestinationWarehouseID,
		Reason:                 in.Reason,
		Notes:                  in.Notes,
		RequestedBy:            userID,
		Draft:                  in.Draft,
		Lines:                  lines,
	}
}

func toTransactionResponse(t *entity.StockTransaction) dto.TransactionResponse {
	out := dto.TransactionResponse{
		ID:                     t.ID,
		Number:                 t.Number,
		Type:                   string(t.Type),
		Status:                 string(t.Status),
		WarehouseID:            t.WarehouseID,
		SourceWarehouseID:      t.SourceWarehouseID,
		DestinationWarehouseID: t.DestinationWarehouseID,
		Reason:                 t.Reason,
		Notes:                  t.Notes,
		RequestedBy:            t.RequestedBy,
		ApprovedBy:             t.ApprovedBy,
		ApprovalNotes:          t.ApprovalNotes,
		CancelReason:           t.CancelReason,
		CreatedAt:              t.CreatedAt,
		UpdatedAt:              t.UpdatedAt,
		ApprovedAt:             t.ApprovedAt,
		CancelledAt:            t.CancelledAt,
		Lines:                  make([]dto.TransactionLineDTO, 0, len(t.Details)),
	}
	for _, d := range t.Details {
		out.Lines = append(out.Lines, dto.TransactionLineDTO{
			ProductID:      d.ProductID,
			Quantity:       d.Quantity,
			UnitPrice:      d.UnitPrice,
			BatchNumber:    d.BatchNumber,
			ExpiryDate:     d.ExpiryDate,
			Notes:          d.Notes,
			SystemQuantity: d.SystemQuantity,
			ActualQuantity: d.ActualQuantity,
		})
	}
	return out
}

func toTransferInput(in dto.CreateTransferRequest, userID string) inventory.CreateTransferInput {
	lines := make([]inventory.TransferLineInput, 0, len(in.Lines))
	for _, l := range in.Lines {
		lines = append(lines, inventory.TransferLineInput{
			ProductID:   l.ProductID,
			Quantity:    l.Quantity,
			UnitPrice:   l.UnitPrice,
			BatchNumber: l.BatchNumber,
			ExpiryDate:  l.ExpiryDate,
			Notes:       l.Notes,
		})
	}
	return inventory.CreateTransferInput{
		SourceWarehouseID:      in.SourceWarehouseID,
		DestinationWarehouseID: in.DestinationWarehouseID,
		Reason:                 in.Reason,
		Notes:                  in.Notes,
		RequestedBy:            userID,
		Lines:                  lines,
	}
}

func toTransferResponse(t *entity.StockTransfer) dto.TransferResponse {
	out := dto.TransferResponse{
		ID:                     t.ID,
		Number:                 t.Number,
		Status:                 string(t.Status),
		SourceWarehouseID:      t.SourceWarehouseID,
		DestinationWarehouseID: t.DestinationWarehouseID,
		TotalValue:             t.TotalValue,
		SourceDebited:          t.SourceDebited,
		Reason:                 t.Reason,
		Notes:                  t.Notes,
		RequestedBy:            t.RequestedBy,
		ApprovedBy:             t.ApprovedBy,
		CompletedBy:            t.CompletedBy,
		CancelReason:           t.CancelReason,
		CreatedAt:              t.CreatedAt,
		UpdatedAt:              t.UpdatedAt,
		ApprovedAt:             t.ApprovedAt,
		CompletedAt:            t.CompletedAt,
		CancelledAt:            t.CancelledAt,
		Lines:                  make([]dto.TransferLineDTO, 0, len(t.Details)),
	}
	for _, d := range t.Details {
		out.Lines = append(out.Lines, dto.TransferLineDTO{
			ProductID:   d.ProductID,
			Quantity:    d.Quantity,
			UnitPrice:   d.UnitPrice,
			BatchNumber: d.BatchNumber,
			ExpiryDate:  d.ExpiryDate,
			Notes:       d.Notes,
		})
	}
	return out
}
