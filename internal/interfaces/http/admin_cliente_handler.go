package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/StantonMatt/coab-platform/internal/application/admin"
	"github.com/StantonMatt/coab-platform/internal/application/dto"
)

// AdminClienteHandler gestión de clientes y pagos desde el panel.
type AdminClienteHandler struct {
	clientes *admin.ClienteUseCase
	pagos    *admin.PagoUseCase
}

// NewAdminClienteHandler construye el handler.
func NewAdminClienteHandler(clientes *admin.ClienteUseCase, pagos *admin.PagoUseCase) *AdminClienteHandler {
	return &AdminClienteHandler{clientes: clientes, pagos: pagos}
}

// Search godoc
// @Summary      Buscar clientes
// @Description  Busca por RUT, número de cliente o nombre (sin distinguir tildes).
// @Tags         admin-clientes
// @Produce      json
// @Security     BearerAuth
// @Param        q             query  string  false  "texto a buscar"
// @Param        estadoCuenta  query  string  false  "AL_DIA | MOROSO"
// @Param        limit         query  int     false  "máximo 100, por defecto 20"
// @Param        cursor        query  string  false  "cursor de la página siguiente"
// @Success      200  {object}  dto.Page[dto.ClienteListItem]
// @Router       /api/admin/clientes [get]
func (h *AdminClienteHandler) Search(c *fiber.Ctx) error {
	page, err := parsePage(c)
	if err != nil {
		return handleError(c, err)
	}
	out, err := h.clientes.Search(c.UserContext(), c.Query("q"), c.Query("estadoCuenta"), page)
	if err != nil {
		return handleError(c, err)
	}
	return c.JSON(out)
}

// Ficha godoc
// @Summary      Ficha del cliente
// @Tags         admin-clientes
// @Produce      json
// @Security     BearerAuth
// @Param        id  path  string  true  "ID del cliente"
// @Success      200  {object}  dto.ClienteFichaResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/admin/clientes/{id} [get]
func (h *AdminClienteHandler) Ficha(c *fiber.Ctx) error {
	out, err := h.clientes.Ficha(c.UserContext(), c.Params("id"))
	if err != nil {
		return handleError(c, err)
	}
	return c.JSON(out)
}

// Update godoc
// @Summary      Editar cliente
// @Tags         admin-clientes
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id    path  string                    true  "ID del cliente"
// @Param        body  body  dto.UpdateClienteRequest  true  "datos"
// @Success      200  {object}  dto.ClienteFichaResponse
// @Failure      400  {object}  dto.ErrorResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/admin/clientes/{id} [put]
func (h *AdminClienteHandler) Update(c *fiber.Ctx) error {
	var in dto.UpdateClienteRequest
	if err := parseBody(c, &in); err != nil {
		return handleError(c, err)
	}
	out, err := h.clientes.Update(c.UserContext(), c.Params("id"), in)
	if err != nil {
		return handleError(c, err)
	}
	return c.JSON(out)
}

// Desbloquear godoc
// @Summary      Desbloquear cuenta
// @Description  Limpia el bloqueo y el contador de intentos fallidos.
// @Tags         admin-clientes
// @Produce      json
// @Security     BearerAuth
// @Param        id  path  string  true  "ID del cliente"
// @Success      200  {object}  dto.MessageResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/admin/clientes/{id}/desbloquear [post]
func (h *AdminClienteHandler) Desbloquear(c *fiber.Ctx) error {
	if err := h.clientes.Desbloquear(c.UserContext(), c.Params("id"), GetUserID(c)); err != nil {
		return handleError(c, err)
	}
	return c.JSON(dto.MessageResponse{Message: "cuenta desbloqueada"})
}

// EnviarLinkSetup godoc
// @Summary      Enviar link de activación
// @Description  Envía el link por SMS. Sin teléfono responde NO_PHONE con el link en data para copiarlo.
// @Tags         admin-clientes
// @Produce      json
// @Security     BearerAuth
// @Param        id  path  string  true  "ID del cliente"
// @Success      200  {object}  dto.SetupLinkResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Failure      422  {object}  dto.ErrorResponse  "NO_PHONE"
// @Router       /api/admin/clientes/{id}/enviar-link [post]
func (h *AdminClienteHandler) EnviarLinkSetup(c *fiber.Ctx) error {
	out, err := h.clientes.EnviarLinkSetup(c.UserContext(), c.Params("id"))
	if err != nil {
		return handleErrorWithData(c, err, out)
	}
	return c.JSON(out)
}

// ── Pagos ──

// PagosCliente godoc
// @Summary      Pagos de un cliente
// @Tags         admin-pagos
// @Produce      json
// @Security     BearerAuth
// @Param        id      path   string  true   "ID del cliente"
// @Param        limit   query  int     false  "máximo 100, por defecto 20"
// @Param        cursor  query  string  false  "cursor de la página siguiente"
// @Success      200  {object}  dto.Page[dto.PagoResponse]
// @Router       /api/admin/clientes/{id}/pagos [get]
func (h *AdminClienteHandler) PagosCliente(c *fiber.Ctx) error {
	page, err := parsePage(c)
	if err != nil {
		return handleError(c, err)
	}
	out, err := h.pagos.ListByCliente(c.UserContext(), c.Params("id"), page)
	if err != nil {
		return handleError(c, err)
	}
	return c.JSON(out)
}

// RegistrarPago godoc
// @Summary      Registrar pago manual
// @Description  Inserta el pago y reconcilia el estado de las boletas en una sola transacción.
// @Tags         admin-pagos
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body  dto.RegistrarPagoRequest  true  "pago"
// @Success      201  {object}  dto.RegistrarPagoResponse
// @Failure      400  {object}  dto.ErrorResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/admin/pagos [post]
func (h *AdminClienteHandler) RegistrarPago(c *fiber.Ctx) error {
	var in dto.RegistrarPagoRequest
	if err := parseBody(c, &in); err != nil {
		return handleError(c, err)
	}
	out, err := h.pagos.Registrar(c.UserContext(), GetUserID(c), in)
	if err != nil {
		return handleError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(out)
}

// AnularPago godoc
// @Summary      Anular pago
// @Tags         admin-pagos
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id    path  string                 true  "ID del pago"
// @Param        body  body  dto.AnularPagoRequest  true  "motivo"
// @Success      200  {object}  dto.RegistrarPagoResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Failure      409  {object}  dto.ErrorResponse
// @Router       /api/admin/pagos/{id}/anular [post]
func (h *AdminClienteHandler) AnularPago(c *fiber.Ctx) error {
	var in dto.AnularPagoRequest
	if err := parseBody(c, &in); err != nil {
		return handleError(c, err)
	}
	out, err := h.pagos.Anular(c.UserContext(), c.Params("id"), GetUserID(c), in)
	if err != nil {
		return handleError(c, err)
	}
	return c.JSON(out)
}
