package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/stock-ledger/internal/application/dto"
	"github.com/jhoicas/stock-ledger/internal/application/inventory"
	"github.com/jhoicas/stock-ledger/internal/domain/entity"
)

// DocumentHandler recepciones, entregas, traslados y ajustes. Get, List, Validate y Slip
// son comunes; el tipo se fija al registrar la ruta.
type DocumentHandler struct {
	uc *inventory.DocumentUseCase
}

func NewDocumentHandler(uc *inventory.DocumentUseCase) *DocumentHandler {
	return &DocumentHandler{uc: uc}
}

// CreateReceipt godoc
// @Summary      Crear recepción (borrador)
// @Tags         documents
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.CreateReceiptRequest  true  "Bodega y líneas"
// @Success      201   {object}  dto.DocumentResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Router       /api/receipts [post]
func (h *DocumentHandler) CreateReceipt(c *fiber.Ctx) error {
	var in dto.CreateReceiptRequest
	if !bindJSON(c, &in) {
		return nil
	}
	return h.created(c)(h.uc.CreateReceipt(c.UserContext(), GetUserID(c), in))
}

// CreateDelivery godoc
// @Summary      Crear entrega (borrador)
// @Tags         documents
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.CreateDeliveryRequest  true  "Bodega y líneas"
// @Success      201   {object}  dto.DocumentResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Router       /api/deliveries [post]
func (h *DocumentHandler) CreateDelivery(c *fiber.Ctx) error {
	var in dto.CreateDeliveryRequest
	if !bindJSON(c, &in) {
		return nil
	}
	return h.created(c)(h.uc.CreateDelivery(c.UserContext(), GetUserID(c), in))
}

// CreateTransfer godoc
// @Summary      Crear traslado (borrador)
// @Tags         documents
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.CreateTransferRequest  true  "Bodegas origen/destino y líneas"
// @Success      201   {object}  dto.DocumentResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Router       /api/transfers [post]
func (h *DocumentHandler) CreateTransfer(c *fiber.Ctx) error {
	var in dto.CreateTransferRequest
	if !bindJSON(c, &in) {
		return nil
	}
	return h.created(c)(h.uc.CreateTransfer(c.UserContext(), GetUserID(c), in))
}

// CreateAdjustment godoc
// @Summary      Crear ajuste (borrador)
// @Tags         documents
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.CreateAdjustmentRequest  true  "Bodega, motivo y líneas con signo"
// @Success      201   {object}  dto.DocumentResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Router       /api/adjustments [post]
func (h *DocumentHandler) CreateAdjustment(c *fiber.Ctx) error {
	var in dto.CreateAdjustmentRequest
	if !bindJSON(c, &in) {
		return nil
	}
	return h.created(c)(h.uc.CreateAdjustment(c.UserContext(), GetUserID(c), in))
}

func (h *DocumentHandler) created(c *fiber.Ctx) func(*dto.DocumentResponse, error) error {
	return func(out *dto.DocumentResponse, err error) error {
		if err != nil {
			return writeError(c, err)
		}
		return c.Status(fiber.StatusCreated).JSON(out)
	}
}

// Get godoc
// @Summary      Obtener documento con sus líneas
// @Tags         documents
// @Security     Bearer
// @Produce      json
// @Param        kind  path  string  true  "receipts | deliveries | transfers | adjustments"
// @Param        id    path  string  true  "ID del documento"
// @Success      200   {object}  dto.DocumentResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Router       /api/{kind}/{id} [get]
func (h *DocumentHandler) Get(kind entity.DocumentKind) fiber.Handler {
	return func(c *fiber.Ctx) error {
		out, err := h.uc.Get(c.UserContext(), kind, c.Params("id"))
		if err != nil {
			return writeError(c, err)
		}
		return c.JSON(out)
	}
}

// List godoc
// @Summary      Listar documentos de un tipo
// @Tags         documents
// @Security     Bearer
// @Produce      json
// @Param        kind    path   string  true   "receipts | deliveries | transfers | adjustments"
// @Param        status  query  string  false  "draft | waiting | ready | done | cancelled"
// @Param        limit   query  int     false  "Límite"  default(20)
// @Param        offset  query  int     false  "Offset"  default(0)
// @Success      200  {object}  dto.DocumentListResponse
// @Router       /api/{kind} [get]
func (h *DocumentHandler) List(kind entity.DocumentKind) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var in dto.DocumentListRequest
		if !bindQuery(c, &in) {
			return nil
		}
		out, err := h.uc.List(c.UserContext(), kind, in)
		if err != nil {
			return writeError(c, err)
		}
		return c.JSON(out)
	}
}

// Validate godoc
// @Summary      Validar (aplicar) documento
// @Description  Aplica todas las líneas en una sola transacción y deja el documento en done.
// @Tags         documents
// @Security     Bearer
// @Produce      json
// @Param        kind  path  string  true  "receipts | deliveries | transfers | adjustments"
// @Param        id    path  string  true  "ID del documento"
// @Success      200   {object}  dto.DocumentResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse  "INVALID_TRANSITION o INSUFFICIENT_STOCK"
// @Failure      500   {object}  dto.ErrorResponse  "STORE_FAILURE"
// @Router       /api/{kind}/{id}/validate [post]
func (h *DocumentHandler) Validate(kind entity.DocumentKind) fiber.Handler {
	return func(c *fiber.Ctx) error {
		out, err := h.uc.Validate(c.UserContext(), kind, c.Params("id"), GetUserID(c))
		if err != nil {
			return writeError(c, err)
		}
		return c.JSON(out)
	}
}

// Slip godoc
// @Summary      Comprobante PDF del documento
// @Tags         documents
// @Security     Bearer
// @Produce      application/pdf
// @Param        kind  path  string  true  "receipts | deliveries | transfers | adjustments"
// @Param        id    path  string  true  "ID del documento"
// @Success      200
// @Failure      404   {object}  dto.ErrorResponse
// @Router       /api/{kind}/{id}/slip [get]
func (h *DocumentHandler) Slip(kind entity.DocumentKind) fiber.Handler {
	return func(c *fiber.Ctx) error {
		pdf, err := h.uc.Slip(c.UserContext(), kind, c.Params("id"))
		if err != nil {
			return writeError(c, err)
		}
		c.Set(fiber.HeaderContentType, "application/pdf")
		c.Set(fiber.HeaderContentDisposition, `inline; filename="`+string(kind)+"-"+c.Params("id")+`.pdf"`)
		return c.Send(pdf)
	}
}
