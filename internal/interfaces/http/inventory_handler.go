package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/stock-ledger/internal/application/dto"
	"github.com/jhoicas/stock-ledger/internal/application/inventory"
)

// InventoryHandler consultas de saldos, historial, alertas y tablero.
type InventoryHandler struct {
	uc *inventory.QueryUseCase
}

func NewInventoryHandler(uc *inventory.QueryUseCase) *InventoryHandler {
	return &InventoryHandler{uc: uc}
}

// ListQuants godoc
// @Summary      Saldos por cuenta
// @Tags         inventory
// @Security     Bearer
// @Produce      json
// @Param        product_id    query  string  false  "Producto"
// @Param        warehouse_id  query  string  false  "Bodega"
// @Param        location_id   query  string  false  "Ubicación"
// @Success      200  {array}  dto.QuantResponse
// @Router       /api/quants [get]
func (h *InventoryHandler) ListQuants(c *fiber.Ctx) error {
	var in dto.QuantFilterRequest
	if !bindQuery(c, &in) {
		return nil
	}
	out, err := h.uc.ListQuants(c.UserContext(), in)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

// Totals godoc
// @Summary      Saldos agregados
// @Tags         inventory
// @Security     Bearer
// @Produce      json
// @Param        group_by      query  string  false  "product | warehouse"  default(product)
// @Param        product_id    query  string  false  "Producto"
// @Param        warehouse_id  query  string  false  "Bodega"
// @Success      200  {array}  dto.QuantTotalResponse
// @Router       /api/quants/totals [get]
func (h *InventoryHandler) Totals(c *fiber.Ctx) error {
	var in dto.QuantFilterRequest
	if !bindQuery(c, &in) {
		return nil
	}
	out, err := h.uc.Totals(c.UserContext(), in)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

// Moves godoc
// @Summary      Historial de movimientos
// @Tags         inventory
// @Security     Bearer
// @Produce      json
// @Param        product_id     query  string  false  "Producto"
// @Param        warehouse_id   query  string  false  "Bodega (origen o destino)"
// @Param        location_id    query  string  false  "Ubicación (origen o destino)"
// @Param        document_type  query  string  false  "receipt | delivery | transfer | adjustment"
// @Param        category_id    query  string  false  "Categoría del producto"
// @Param        from           query  string  false  "Desde (RFC3339)"
// @Param        to             query  string  false  "Hasta (RFC3339)"
// @Param        sort           query  string  false  "asc | desc"  default(desc)
// @Param        limit          query  int     false  "Límite"      default(100)
// @Param        page           query  int     false  "Página"      default(1)
// @Success      200  {object}  dto.MoveHistoryResponse
// @Failure      400  {object}  dto.ErrorResponse
// @Router       /api/moves [get]
func (h *InventoryHandler) Moves(c *fiber.Ctx) error {
	var in dto.MoveHistoryRequest
	if !bindQuery(c, &in) {
		return nil
	}
	out, err := h.uc.MoveHistory(c.UserContext(), in)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

// LowStock godoc
// @Summary      Alertas de stock bajo
// @Description  Reglas cuyo saldo en bodega está bajo el mínimo, con la cantidad sugerida a pedir.
// @Tags         inventory
// @Security     Bearer
// @Produce      json
// @Success      200  {object}  map[string]interface{}
// @Router       /api/alerts/low-stock [get]
func (h *InventoryHandler) LowStock(c *fiber.Ctx) error {
	alerts, err := h.uc.LowStockAlerts(c.UserContext())
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(fiber.Map{
		"total":  len(alerts),
		"alerts": alerts,
	})
}
