package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/inventario-ledger/internal/application/dto"
	"github.com/jhoicas/inventario-ledger/internal/application/inventory"
)

// StockTransferHandler traslados con tránsito entre bodegas.
type StockTransferHandler struct {
	svc  *inventory.StockTransferService
	docs *inventory.DocumentsUseCase
}

// NewStockTransferHandler construye el handler.
func NewStockTransferHandler(svc *inventory.StockTransferService, docs *inventory.DocumentsUseCase) *StockTransferHandler {
	return &StockTransferHandler{svc: svc, docs: docs}
}

// Create godoc
// @Summary      Crear traslado (pending)
// @Tags         stock-transfers
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.CreateTransferRequest  true  "Origen, destino y líneas"
// @Success      201   {object}  dto.TransferResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Router       /api/stock-transfers [post]
func (h *StockTransferHandler) Create(c *fiber.Ctx) error {
	userID, err := requireUser(c)
	if err != nil {
		return writeError(c, err)
	}
	var in dto.CreateTransferRequest
	if err := c.BodyParser(&in); err != nil {
		return invalidBody(c)
	}
	t, err := h.svc.Create(c.UserContext(), toTransferInput(in, userID))
	if err != nil {
		return writeError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(toTransferResponse(t))
}

// List godoc
// @Summary      Listar traslados
// @Tags         stock-transfers
// @Security     Bearer
// @Produce      json
// @Param        warehouse_id  query  string  false  "Origen o destino"
// @Param        status        query  string  false  "Estado"
// @Success      200  {object}  dto.TransferListResponse
// @Router       /api/stock-transfers [get]
func (h *StockTransferHandler) List(c *fiber.Ctx) error {
	filter, page, err := parseDocumentFilter(c)
	if err != nil {
		return writeError(c, err)
	}
	list, err := h.svc.List(c.UserContext(), filter)
	if err != nil {
		return writeError(c, err)
	}
	items := make([]dto.TransferResponse, 0, len(list))
	for _, t := range list {
		items = append(items, toTransferResponse(t))
	}
	return c.JSON(dto.TransferListResponse{Items: items, Page: dto.PageResponse{Limit: page.Limit, Offset: page.Offset, Total: len(items)}})
}

// GetByID godoc
// @Summary      Obtener traslado
// @Tags         stock-transfers
// @Security     Bearer
// @Produce      json
// @Param        id   path  string  true  "ID del traslado"
// @Success      200  {object}  dto.TransferResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/stock-transfers/{id} [get]
func (h *StockTransferHandler) GetByID(c *fiber.Ctx) error {
	t, err := h.svc.GetByID(c.UserContext(), c.Params("id"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(toTransferResponse(t))
}

// Approve godoc
// @Summary      Aprobar traslado (pending → in_transit)
// @Tags         stock-transfers
// @Security     Bearer
// @Produce      json
// @Param        id   path  string  true  "ID del traslado"
// @Success      200  {object}  dto.TransferResponse
// @Failure      403  {object}  dto.ErrorResponse
// @Failure      409  {object}  dto.ErrorResponse
// @Router       /api/stock-transfers/{id}/approve [post]
func (h *StockTransferHandler) Approve(c *fiber.Ctx) error {
	userID, err := requireUser(c)
	if err != nil {
		return writeError(c, err)
	}
	t, err := h.svc.Approve(c.UserContext(), c.Params("id"), userID)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(toTransferResponse(t))
}

// Complete godoc
// @Summary      Recibir traslado en destino (in_transit → completed)
// @Tags         stock-transfers
// @Security     Bearer
// @Produce      json
// @Param        id   path  string  true  "ID del traslado"
// @Success      200  {object}  dto.TransferResponse
// @Failure      409  {object}  dto.ErrorResponse
// @Router       /api/stock-transfers/{id}/complete [post]
func (h *StockTransferHandler) Complete(c *fiber.Ctx) error {
	userID, err := requireUser(c)
	if err != nil {
		return writeError(c, err)
	}
	t, err := h.svc.Complete(c.UserContext(), c.Params("id"), userID)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(toTransferResponse(t))
}

// Cancel godoc
// @Summary      Cancelar traslado; si ya salió del origen, el stock vuelve
// @Tags         stock-transfers
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path  string             true  "ID del traslado"
// @Param        body  body  dto.CancelRequest  true  "Motivo"
// @Success      200   {object}  dto.TransferResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/stock-transfers/{id}/cancel [post]
func (h *StockTransferHandler) Cancel(c *fiber.Ctx) error {
	userID, err := requireUser(c)
	if err != nil {
		return writeError(c, err)
	}
	var in dto.CancelRequest
	if err := c.BodyParser(&in); err != nil {
		return invalidBody(c)
	}
	t, err := h.svc.Cancel(c.UserContext(), c.Params("id"), userID, in.Reason)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(toTransferResponse(t))
}

// PDF godoc
// @Summary      Remisión PDF del traslado
// @Tags         stock-transfers
// @Security     Bearer
// @Produce      application/pdf
// @Param        id   path  string  true  "ID del traslado"
// @Success      200  {file}    binary
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/stock-transfers/{id}/pdf [get]
func (h *StockTransferHandler) PDF(c *fiber.Ctx) error {
	pdf, filename, err := h.docs.TransferPDF(c.UserContext(), c.Params("id"))
	if err != nil {
		return writeError(c, err)
	}
	return sendPDF(c, pdf, filename)
}
