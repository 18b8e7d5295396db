package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/stock-ledger/internal/application/inventory"
)

// DashboardHandler indicadores del tablero de inventario.
type DashboardHandler struct {
	uc *inventory.QueryUseCase
}

// NewDashboardHandler construye el handler.
func NewDashboardHandler(uc *inventory.QueryUseCase) *DashboardHandler {
	return &DashboardHandler{uc: uc}
}

// GetSummary productos con stock, valor del stock, alertas y documentos pendientes por tipo.
// GET /api/dashboard
//
// Respuesta: DashboardDTO. Los valores se recalculan en cada llamada.
func (h *DashboardHandler) GetSummary(c *fiber.Ctx) error {
	summary, err := h.uc.Dashboard(c.UserContext())
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(summary)
}
