package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/inventario-ledger/internal/application/dto"
	"github.com/jhoicas/inventario-ledger/internal/application/inventory"
	"github.com/jhoicas/inventario-ledger/internal/domain"
	"github.com/jhoicas/inventario-ledger/internal/domain/entity"
)

// InventoryHandler expone las primitivas del ledger, las reservas y las alertas (protegido).
type InventoryHandler struct {
	ledger       *inventory.Ledger
	reservations *inventory.ReservationService
	alerts       *inventory.AlertsUseCase
	expiryDays   int
}

// NewInventoryHandler construye el handler. expiryDays es la ventana por defecto de /alerts/expiring.
func NewInventoryHandler(ledger *inventory.Ledger, reservations *inventory.ReservationService, alerts *inventory.AlertsUseCase, expiryDays int) *InventoryHandler {
	return &InventoryHandler{ledger: ledger, reservations: reservations, alerts: alerts, expiryDays: expiryDays}
}

// ListRecords godoc
// @Summary      Existencias por bodega o por producto
// @Tags         inventory
// @Security     Bearer
// @Produce      json
// @Param        warehouse_id  query  string  false  "Bodega"
// @Param        product_id    query  string  false  "Producto (todas las bodegas)"
// @Success      200  {object}  dto.InventoryRecordListResponse
// @Failure      400  {object}  dto.ErrorResponse
// @Router       /api/inventory/records [get]
func (h *InventoryHandler) ListRecords(c *fiber.Ctx) error {
	warehouseID, productID := c.Query("warehouse_id"), c.Query("product_id")
	page := parsePage(c)
	var (
		list []*entity.InventoryRecord
		err  error
	)
	switch {
	case warehouseID != "" && productID != "":
		var rec *entity.InventoryRecord
		rec, err = h.ledger.Get(c.UserContext(), warehouseID, productID)
		if rec != nil {
			list = []*entity.InventoryRecord{rec}
		}
	case warehouseID != "":
		list, err = h.ledger.ListByWarehouse(c.UserContext(), warehouseID, page.Limit, page.Offset)
	case productID != "":
		list, err = h.ledger.ListByProduct(c.UserContext(), productID)
	default:
		err = domain.NewValidationError("warehouse_id", "indique warehouse_id o product_id")
	}
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(dto.InventoryRecordListResponse{Items: toRecordResponses(list), Page: dto.PageResponse{Limit: page.Limit, Offset: page.Offset, Total: len(list)}})
}

// Availability godoc
// @Summary      Consultar disponibilidad de una lista de productos
// @Tags         inventory
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.AvailabilityRequest  true  "warehouse_id por defecto e items"
// @Success      200   {object}  dto.AvailabilityResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Router       /api/inventory/availability [post]
func (h *InventoryHandler) Availability(c *fiber.Ctx) error {
	var in dto.AvailabilityRequest
	if err := c.BodyParser(&in); err != nil {
		return invalidBody(c)
	}
	res, err := h.reservations.CheckAvailability(c.UserContext(), in.WarehouseID, toOrderItems(in.Items))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(toAvailabilityResponse(res))
}

// Adjust godoc
// @Summary      Ajuste relativo de existencias
// @Tags         inventory
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.AdjustRequest  true  "delta con signo y motivo"
// @Success      200   {object}  dto.InventoryRecordResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/inventory/adjust [post]
func (h *InventoryHandler) Adjust(c *fiber.Ctx) error {
	userID, err := requireUser(c)
	if err != nil {
		return writeError(c, err)
	}
	var in dto.AdjustRequest
	if err := c.BodyParser(&in); err != nil {
		return invalidBody(c)
	}
	rec, err := h.ledger.AdjustQuantity(c.UserContext(), inventory.AdjustInput{
		WarehouseID: in.WarehouseID,
		ProductID:   in.ProductID,
		Delta:       in.Delta,
		Reason:      in.Reason,
		UserID:      userID,
	})
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(toRecordResponse(rec))
}

// SetQuantity godoc
// @Summary      Fijar la cantidad absoluta (conteo rápido)
// @Tags         inventory
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.SetQuantityRequest  true  "cantidad y motivo"
// @Success      200   {object}  dto.InventoryRecordResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/inventory/set [post]
func (h *InventoryHandler) SetQuantity(c *fiber.Ctx) error {
	userID, err := requireUser(c)
	if err != nil {
		return writeError(c, err)
	}
	var in dto.SetQuantityRequest
	if err := c.BodyParser(&in); err != nil {
		return invalidBody(c)
	}
	rec, err := h.ledger.SetQuantity(c.UserContext(), inventory.SetInput{
		WarehouseID: in.WarehouseID,
		ProductID:   in.ProductID,
		Quantity:    in.Quantity,
		Reason:      in.Reason,
		UserID:      userID,
	})
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(toRecordResponse(rec))
}

// Reserve godoc
// @Summary      Reservar existencias para una orden (todo o nada)
// @Tags         inventory
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.ReservationRequest  true  "etiqueta de la orden e items"
// @Success      200   {object}  dto.InventoryRecordListResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/inventory/reservations [post]
func (h *InventoryHandler) Reserve(c *fiber.Ctx) error {
	userID, err := requireUser(c)
	if err != nil {
		return writeError(c, err)
	}
	var in dto.ReservationRequest
	if err := c.BodyParser(&in); err != nil {
		return invalidBody(c)
	}
	recs, err := h.reservations.ReserveForOrder(c.UserContext(), inventory.OrderHoldInput{
		WarehouseID:   in.WarehouseID,
		Items:         toOrderItems(in.Items),
		ReferenceType: in.ReferenceType,
		ReferenceID:   in.ReferenceID,
		UserID:        userID,
	})
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(dto.InventoryRecordListResponse{Items: toRecordResponses(recs), Page: dto.PageResponse{Total: len(recs)}})
}

// Release godoc
// @Summary      Liberar reservas de una orden
// @Description  Con all=true libera todo lo pendiente de la etiqueta e ignora items.
// @Tags         inventory
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.ReservationRequest  true  "etiqueta de la orden e items"
// @Success      200   {object}  dto.InventoryRecordListResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Router       /api/inventory/reservations/release [post]
func (h *InventoryHandler) Release(c *fiber.Ctx) error {
	userID, err := requireUser(c)
	if err != nil {
		return writeError(c, err)
	}
	var in dto.ReservationRequest
	if err := c.BodyParser(&in); err != nil {
		return invalidBody(c)
	}
	var recs []*entity.InventoryRecord
	if in.All {
		recs, err = h.reservations.ReleaseAllForReference(c.UserContext(), in.ReferenceType, in.ReferenceID, userID)
	} else {
		recs, err = h.reservations.ReleaseForOrder(c.UserContext(), inventory.OrderHoldInput{
			WarehouseID:   in.WarehouseID,
			Items:         toOrderItems(in.Items),
			ReferenceType: in.ReferenceType,
			ReferenceID:   in.ReferenceID,
			UserID:        userID,
		})
	}
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(dto.InventoryRecordListResponse{Items: toRecordResponses(recs), Page: dto.PageResponse{Total: len(recs)}})
}

// Movements godoc
// @Summary      Diario de movimientos del ledger
// @Tags         inventory
// @Security     Bearer
// @Produce      json
// @Param        warehouse_id    query  string  false  "Bodega"
// @Param        product_id      query  string  false  "Producto"
// @Param        reference_type  query  string  false  "Tipo de referencia"
// @Param        reference_id    query  string  false  "Referencia"
// @Param        from            query  string  false  "Desde (YYYY-MM-DD)"
// @Param        to              query  string  false  "Hasta (YYYY-MM-DD)"
// @Success      200  {object}  dto.MovementListResponse
// @Router       /api/inventory/movements [get]
func (h *InventoryHandler) Movements(c *fiber.Ctx) error {
	filter, page, err := parseMovementFilter(c)
	if err != nil {
		return writeError(c, err)
	}
	list, err := h.ledger.Movements(c.UserContext(), filter)
	if err != nil {
		return writeError(c, err)
	}
	items := make([]dto.MovementResponse, 0, len(list))
	for _, m := range list {
		items = append(items, toMovementResponse(m))
	}
	return c.JSON(dto.MovementListResponse{Items: items, Page: dto.PageResponse{Limit: page.Limit, Offset: page.Offset, Total: len(items)}})
}

// LowStock godoc
// @Summary      Productos por debajo del punto de reorden
// @Tags         inventory
// @Security     Bearer
// @Produce      json
// @Param        warehouse_id  query  string  false  "Bodega (vacío = todas)"
// @Success      200  {array}  dto.LowStockAlertDTO
// @Router       /api/inventory/alerts/low-stock [get]
func (h *InventoryHandler) LowStock(c *fiber.Ctx) error {
	list, err := h.alerts.LowStock(c.UserContext(), c.Query("warehouse_id"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(fiber.Map{"total": len(list), "items": list})
}

// ExpiringLots godoc
// @Summary      Lotes recibidos próximos a vencer
// @Tags         inventory
// @Security     Bearer
// @Produce      json
// @Param        warehouse_id  query  string  false  "Bodega (vacío = todas)"
// @Param        days          query  int     false  "Ventana en días"
// @Success      200  {array}  dto.ExpiringLotDTO
// @Failure      400  {object}  dto.ErrorResponse
// @Router       /api/inventory/alerts/expiring [get]
func (h *InventoryHandler) ExpiringLots(c *fiber.Ctx) error {
	days := c.QueryInt("days", h.expiryDays)
	list, err := h.alerts.ExpiringLots(c.UserContext(), c.Query("warehouse_id"), days)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(fiber.Map{"total": len(list), "days": days, "items": list})
}
