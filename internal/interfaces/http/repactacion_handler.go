package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/StantonMatt/coab-platform/internal/application/admin"
	"github.com/StantonMatt/coab-platform/internal/application/dto"
)

// RepactacionHandler revisión de solicitudes y gestión de convenios.
type RepactacionHandler struct {
	uc *admin.RepactacionUseCase
}

// NewRepactacionHandler construye el handler.
func NewRepactacionHandler(uc *admin.RepactacionUseCase) *RepactacionHandler {
	return &RepactacionHandler{uc: uc}
}

// ListSolicitudes godoc
// @Summary      Listar solicitudes de repactación
// @Tags         admin-repactaciones
// @Produce      json
// @Security     BearerAuth
// @Param        estado  query  string  false  "pendiente | aprobada | rechazada"
// @Param        limit   query  int     false  "máximo 100, por defecto 20"
// @Param        cursor  query  string  false  "cursor de la página siguiente"
// @Success      200  {object}  dto.Page[dto.SolicitudResponse]
// @Router       /api/admin/repactaciones/solicitudes [get]
func (h *RepactacionHandler) ListSolicitudes(c *fiber.Ctx) error {
	page, err := parsePage(c)
	if err != nil {
		return handleError(c, err)
	}
	out, err := h.uc.ListSolicitudes(c.UserContext(), c.Query("estado"), page)
	if err != nil {
		return handleError(c, err)
	}
	return c.JSON(out)
}

// Aprobar godoc
// @Summary      Aprobar solicitud
// @Description  Crea el convenio activo. La cuota se redondea al peso y la última absorbe la diferencia.
// @Tags         admin-repactaciones
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id    path  string                       true  "ID de la solicitud"
// @Param        body  body  dto.RevisarSolicitudRequest  false  "comentario y cuotas"
// @Success      201  {object}  dto.RepactacionResponse
// @Failure      409  {object}  dto.ErrorResponse  "INVALID_TRANSITION"
// @Router       /api/admin/repactaciones/solicitudes/{id}/aprobar [post]
func (h *RepactacionHandler) Aprobar(c *fiber.Ctx) error {
	in, err := parseRevision(c)
	if err != nil {
		return handleError(c, err)
	}
	out, err := h.uc.Aprobar(c.UserContext(), c.Params("id"), GetUserID(c), in)
	if err != nil {
		return handleError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(out)
}

// Rechazar godoc
// @Summary      Rechazar solicitud
// @Tags         admin-repactaciones
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id    path  string                       true  "ID de la solicitud"
// @Param        body  body  dto.RevisarSolicitudRequest  false  "comentario"
// @Success      200  {object}  dto.SolicitudResponse
// @Failure      409  {object}  dto.ErrorResponse  "INVALID_TRANSITION"
// @Router       /api/admin/repactaciones/solicitudes/{id}/rechazar [post]
func (h *RepactacionHandler) Rechazar(c *fiber.Ctx) error {
	in, err := parseRevision(c)
	if err != nil {
		return handleError(c, err)
	}
	out, err := h.uc.Rechazar(c.UserContext(), c.Params("id"), GetUserID(c), in)
	if err != nil {
		return handleError(c, err)
	}
	return c.JSON(out)
}

// ListRepactaciones godoc
// @Summary      Listar convenios
// @Tags         admin-repactaciones
// @Produce      json
// @Security     BearerAuth
// @Param        estado  query  string  false  "activo | completado | cancelado"
// @Param        limit   query  int     false  "máximo 100, por defecto 20"
// @Param        cursor  query  string  false  "cursor de la página siguiente"
// @Success      200  {object}  dto.Page[dto.RepactacionResponse]
// @Router       /api/admin/repactaciones [get]
func (h *RepactacionHandler) ListRepactaciones(c *fiber.Ctx) error {
	page, err := parsePage(c)
	if err != nil {
		return handleError(c, err)
	}
	out, err := h.uc.ListRepactaciones(c.UserContext(), c.Query("estado"), page)
	if err != nil {
		return handleError(c, err)
	}
	return c.JSON(out)
}

// Completar godoc
// @Summary      Completar convenio
// @Tags         admin-repactaciones
// @Produce      json
// @Security     BearerAuth
// @Param        id  path  string  true  "ID del convenio"
// @Success      200  {object}  dto.RepactacionResponse
// @Failure      409  {object}  dto.ErrorResponse  "INVALID_TRANSITION"
// @Router       /api/admin/repactaciones/{id}/completar [post]
func (h *RepactacionHandler) Completar(c *fiber.Ctx) error {
	out, err := h.uc.Completar(c.UserContext(), c.Params("id"))
	if err != nil {
		return handleError(c, err)
	}
	return c.JSON(out)
}

// Cancelar godoc
// @Summary      Cancelar convenio
// @Tags         admin-repactaciones
// @Produce      json
// @Security     BearerAuth
// @Param        id  path  string  true  "ID del convenio"
// @Success      200  {object}  dto.RepactacionResponse
// @Failure      409  {object}  dto.ErrorResponse  "INVALID_TRANSITION"
// @Router       /api/admin/repactaciones/{id}/cancelar [post]
func (h *RepactacionHandler) Cancelar(c *fiber.Ctx) error {
	out, err := h.uc.Cancelar(c.UserContext(), c.Params("id"))
	if err != nil {
		return handleError(c, err)
	}
	return c.JSON(out)
}

// parseRevision el cuerpo es opcional al revisar una solicitud.
func parseRevision(c *fiber.Ctx) (dto.RevisarSolicitudRequest, error) {
	var in dto.RevisarSolicitudRequest
	if len(c.Body()) == 0 {
		return in, nil
	}
	err := parseBody(c, &in)
	return in, err
}
