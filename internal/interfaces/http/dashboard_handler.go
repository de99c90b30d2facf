package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/StantonMatt/coab-platform/internal/application/admin"
)

// DashboardHandler maneja los indicadores del panel.
type DashboardHandler struct {
	uc *admin.DashboardUseCase
}

// NewDashboardHandler construye el handler.
func NewDashboardHandler(uc *admin.DashboardUseCase) *DashboardHandler {
	return &DashboardHandler{uc: uc}
}

// Stats devuelve clientes, morosos, deuda total, pagos del mes y solicitudes pendientes.
// GET /api/admin/dashboard
//
// No requiere parámetros; el mes en curso se calcula en el servidor (America/Santiago).
//
// @Summary      Indicadores del panel
// @Tags         admin-dashboard
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  dto.DashboardStatsResponse
// @Router       /api/admin/dashboard [get]
func (h *DashboardHandler) Stats(c *fiber.Ctx) error {
	stats, err := h.uc.Stats(c.UserContext())
	if err != nil {
		return handleError(c, err)
	}
	return c.JSON(stats)
}
