package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/inventario-ledger/internal/application/dto"
	"github.com/jhoicas/inventario-ledger/internal/application/inventory"
	"github.com/jhoicas/inventario-ledger/internal/domain/entity"
)

// StockTransactionHandler documentos de inventario: import, export, disposal, stocktake, transfer.
type StockTransactionHandler struct {
	svc  *inventory.StockTransactionService
	docs *inventory.DocumentsUseCase
}

// NewStockTransactionHandler construye el handler.
func NewStockTransactionHandler(svc *inventory.StockTransactionService, docs *inventory.DocumentsUseCase) *StockTransactionHandler {
	return &StockTransactionHandler{svc: svc, docs: docs}
}

// Create godoc
// @Summary      Crear documento de inventario
// @Description  El tipo va en la ruta: import, export, disposal, stocktake o transfer.
// @Description  Nace en pending (o draft si draft=true); no toca existencias hasta aprobarse.
// @Tags         stock-transactions
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        type  path  string                        true  "Tipo de documento"
// @Param        body  body  dto.CreateTransactionRequest  true  "Cabecera y líneas"
// @Success      201   {object}  dto.TransactionResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Router       /api/stock-transactions/{type} [post]
func (h *StockTransactionHandler) Create(c *fiber.Ctx) error {
	userID, err := requireUser(c)
	if err != nil {
		return writeError(c, err)
	}
	var in dto.CreateTransactionRequest
	if err := c.BodyParser(&in); err != nil {
		return invalidBody(c)
	}
	tx, err := h.svc.Create(c.UserContext(), entity.StockTransactionType(c.Params("type")), toTransactionInput(in, userID))
	if err != nil {
		return writeError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(toTransactionResponse(tx))
}

// List godoc
// @Summary      Listar documentos de inventario
// @Tags         stock-transactions
// @Security     Bearer
// @Produce      json
// @Param        warehouse_id  query  string  false  "Bodega (propia, origen o destino)"
// @Param        product_id    query  string  false  "Producto en alguna línea"
// @Param        type          query  string  false  "Tipo"
// @Param        status        query  string  false  "Estado"
// @Param        from          query  string  false  "Desde (YYYY-MM-DD)"
// @Param        to            query  string  false  "Hasta (YYYY-MM-DD)"
// @Param        limit         query  int     false  "Límite"  default(50)
// @Param        offset        query  int     false  "Offset"  default(0)
// @Success      200  {object}  dto.TransactionListResponse
// @Router       /api/stock-transactions [get]
func (h *StockTransactionHandler) List(c *fiber.Ctx) error {
	filter, page, err := parseDocumentFilter(c)
	if err != nil {
		return writeError(c, err)
	}
	list, err := h.svc.List(c.UserContext(), filter)
	if err != nil {
		return writeError(c, err)
	}
	items := make([]dto.TransactionResponse, 0, len(list))
	for _, t := range list {
		items = append(items, toTransactionResponse(t))
	}
	return c.JSON(dto.TransactionListResponse{Items: items, Page: dto.PageResponse{Limit: page.Limit, Offset: page.Offset, Total: len(items)}})
}

// GetByID godoc
// @Summary      Obtener documento de inventario
// @Tags         stock-transactions
// @Security     Bearer
// @Produce      json
// @Param        id   path  string  true  "ID del documento"
// @Success      200  {object}  dto.TransactionResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/stock-transactions/{id} [get]
func (h *StockTransactionHandler) GetByID(c *fiber.Ctx) error {
	tx, err := h.svc.GetByID(c.UserContext(), c.Params("id"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(toTransactionResponse(tx))
}

// Submit godoc
// @Summary      Enviar borrador a aprobación (draft → pending)
// @Tags         stock-transactions
// @Security     Bearer
// @Produce      json
// @Param        id   path  string  true  "ID del documento"
// @Success      200  {object}  dto.TransactionResponse
// @Failure      409  {object}  dto.ErrorResponse
// @Router       /api/stock-transactions/{id}/submit [post]
func (h *StockTransactionHandler) Submit(c *fiber.Ctx) error {
	userID, err := requireUser(c)
	if err != nil {
		return writeError(c, err)
	}
	tx, err := h.svc.Submit(c.UserContext(), c.Params("id"), userID)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(toTransactionResponse(tx))
}

// Approve godoc
// @Summary      Aprobar documento y aplicar su efecto al ledger
// @Description  Todas las líneas se aplican en una sola transacción; si una falla no se aplica ninguna.
// @Tags         stock-transactions
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path  string              true   "ID del documento"
// @Param        body  body  dto.ApproveRequest  false  "Notas de aprobación"
// @Success      200   {object}  dto.TransactionResponse
// @Failure      403   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/stock-transactions/{id}/approve [post]
func (h *StockTransactionHandler) Approve(c *fiber.Ctx) error {
	userID, err := requireUser(c)
	if err != nil {
		return writeError(c, err)
	}
	var in dto.ApproveRequest
	if len(c.Body()) > 0 {
		if err := c.BodyParser(&in); err != nil {
			return invalidBody(c)
		}
	}
	tx, err := h.svc.Approve(c.UserContext(), c.Params("id"), userID, in.Notes)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(toTransactionResponse(tx))
}

// Cancel godoc
// @Summary      Cancelar documento (draft o pending)
// @Tags         stock-transactions
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path  string             true  "ID del documento"
// @Param        body  body  dto.CancelRequest  true  "Motivo"
// @Success      200   {object}  dto.TransactionResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/stock-transactions/{id}/cancel [post]
func (h *StockTransactionHandler) Cancel(c *fiber.Ctx) error {
	userID, err := requireUser(c)
	if err != nil {
		return writeError(c, err)
	}
	var in dto.CancelRequest
	if err := c.BodyParser(&in); err != nil {
		return invalidBody(c)
	}
	tx, err := h.svc.Cancel(c.UserContext(), c.Params("id"), userID, in.Reason)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(toTransactionResponse(tx))
}

// PDF godoc
// @Summary      Comprobante PDF del documento
// @Tags         stock-transactions
// @Security     Bearer
// @Produce      application/pdf
// @Param        id   path  string  true  "ID del documento"
// @Success      200  {file}    binary
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/stock-transactions/{id}/pdf [get]
func (h *StockTransactionHandler) PDF(c *fiber.Ctx) error {
	pdf, filename, err := h.docs.TransactionPDF(c.UserContext(), c.Params("id"))
	if err != nil {
		return writeError(c, err)
	}
	return sendPDF(c, pdf, filename)
}

func sendPDF(c *fiber.Ctx, pdf []byte, filename string) error {
	c.Set(fiber.HeaderContentType, "application/pdf")
	c.Set(fiber.HeaderContentDisposition, `inline; filename="`+filename+`"`)
	return c.Send(pdf)
}
