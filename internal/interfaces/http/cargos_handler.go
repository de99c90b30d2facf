package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/StantonMatt/coab-platform/internal/application/admin"
	"github.com/StantonMatt/coab-platform/internal/application/dto"
	"github.com/StantonMatt/coab-platform/internal/domain/repository"
)

// CargosHandler multas y subsidios.
type CargosHandler struct {
	multas    *admin.MultaUseCase
	subsidios *admin.SubsidioUseCase
}

// NewCargosHandler construye el handler.
func NewCargosHandler(multas *admin.MultaUseCase, subsidios *admin.SubsidioUseCase) *CargosHandler {
	return &CargosHandler{multas: multas, subsidios: subsidios}
}

// ListMultas godoc
// @Summary      Listar multas
// @Tags         admin-multas
// @Produce      json
// @Security     BearerAuth
// @Param        estado     query  string  false  "pendiente | aplicada | cancelada"
// @Param        clienteId  query  string  false  "filtrar por cliente"
// @Param        limit      query  int     false  "máximo 100, por defecto 20"
// @Param        cursor     query  string  false  "cursor de la página siguiente"
// @Success      200  {object}  dto.Page[dto.MultaResponse]
// @Router       /api/admin/multas [get]
func (h *CargosHandler) ListMultas(c *fiber.Ctx) error {
	page, err := parsePage(c)
	if err != nil {
		return handleError(c, err)
	}
	f := repository.MultaFilter{Estado: c.Query("estado"), ClienteID: c.Query("clienteId")}
	out, err := h.multas.List(c.UserContext(), f, page)
	if err != nil {
		return handleError(c, err)
	}
	return c.JSON(out)
}

// CreateMulta godoc
// @Summary      Crear multa
// @Tags         admin-multas
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body  dto.CreateMultaRequest  true  "multa"
// @Success      201  {object}  dto.MultaResponse
// @Failure      400  {object}  dto.ErrorResponse
// @Router       /api/admin/multas [post]
func (h *CargosHandler) CreateMulta(c *fiber.Ctx) error {
	var in dto.CreateMultaRequest
	if err := parseBody(c, &in); err != nil {
		return handleError(c, err)
	}
	out, err := h.multas.Create(c.UserContext(), in)
	if err != nil {
		return handleError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(out)
}

// AplicarMulta godoc
// @Summary      Aplicar multa
// @Tags         admin-multas
// @Produce      json
// @Security     BearerAuth
// @Param        id  path  string  true  "ID de la multa"
// @Success      200  {object}  dto.MultaResponse
// @Failure      409  {object}  dto.ErrorResponse  "INVALID_TRANSITION"
// @Router       /api/admin/multas/{id}/aplicar [post]
func (h *CargosHandler) AplicarMulta(c *fiber.Ctx) error {
	out, err := h.multas.Aplicar(c.UserContext(), c.Params("id"))
	if err != nil {
		return handleError(c, err)
	}
	return c.JSON(out)
}

// CancelarMulta godoc
// @Summary      Cancelar multa
// @Tags         admin-multas
// @Produce      json
// @Security     BearerAuth
// @Param        id  path  string  true  "ID de la multa"
// @Success      200  {object}  dto.MultaResponse
// @Failure      409  {object}  dto.ErrorResponse  "INVALID_TRANSITION"
// @Router       /api/admin/multas/{id}/cancelar [post]
func (h *CargosHandler) CancelarMulta(c *fiber.Ctx) error {
	out, err := h.multas.Cancelar(c.UserContext(), c.Params("id"))
	if err != nil {
		return handleError(c, err)
	}
	return c.JSON(out)
}

// ── Subsidios ──

// ListSubsidios godoc
// @Summary      Listar subsidios
// @Tags         admin-subsidios
// @Produce      json
// @Security     BearerAuth
// @Param        estado  query  string  false  "activo | inactivo"
// @Param        limit   query  int     false  "máximo 100, por defecto 20"
// @Param        cursor  query  string  false  "cursor de la página siguiente"
// @Success      200  {object}  dto.Page[dto.SubsidioResponse]
// @Router       /api/admin/subsidios [get]
func (h *CargosHandler) ListSubsidios(c *fiber.Ctx) error {
	page, err := parsePage(c)
	if err != nil {
		return handleError(c, err)
	}
	out, err := h.subsidios.List(c.UserContext(), c.Query("estado"), page)
	if err != nil {
		return handleError(c, err)
	}
	return c.JSON(out)
}

// CreateSubsidio godoc
// @Summary      Crear subsidio
// @Tags         admin-subsidios
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body  dto.CreateSubsidioRequest  true  "subsidio"
// @Success      201  {object}  dto.SubsidioResponse
// @Failure      400  {object}  dto.ErrorResponse
// @Router       /api/admin/subsidios [post]
func (h *CargosHandler) CreateSubsidio(c *fiber.Ctx) error {
	var in dto.CreateSubsidioRequest
	if err := parseBody(c, &in); err != nil {
		return handleError(c, err)
	}
	out, err := h.subsidios.Create(c.UserContext(), in)
	if err != nil {
		return handleError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(out)
}

// DesactivarSubsidio godoc
// @Summary      Desactivar subsidio
// @Tags         admin-subsidios
// @Produce      json
// @Security     BearerAuth
// @Param        id  path  string  true  "ID del subsidio"
// @Success      200  {object}  dto.SubsidioResponse
// @Failure      409  {object}  dto.ErrorResponse  "INVALID_TRANSITION"
// @Router       /api/admin/subsidios/{id}/desactivar [post]
func (h *CargosHandler) DesactivarSubsidio(c *fiber.Ctx) error {
	out, err := h.subsidios.Desactivar(c.UserContext(), c.Params("id"))
	if err != nil {
		return handleError(c, err)
	}
	return c.JSON(out)
}
