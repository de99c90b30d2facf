package http

import (
	"fmt"

	"github.com/gofiber/fiber/v2"

	"github.com/StantonMatt/coab-platform/internal/application/cliente"
	"github.com/StantonMatt/coab-platform/internal/application/dto"
)

// ClienteHandler portal del cliente (/clientes/me/*). El ID del cliente sale siempre del token.
type ClienteHandler struct {
	uc *cliente.UseCase
}

// NewClienteHandler construye el handler del portal.
func NewClienteHandler(uc *cliente.UseCase) *ClienteHandler {
	return &ClienteHandler{uc: uc}
}

// Perfil godoc
// @Summary      Perfil del cliente
// @Tags         portal
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  dto.PerfilResponse
// @Failure      401  {object}  dto.ErrorResponse
// @Router       /api/clientes/me [get]
func (h *ClienteHandler) Perfil(c *fiber.Ctx) error {
	out, err := h.uc.Perfil(c.UserContext(), GetUserID(c))
	if err != nil {
		return handleError(c, err)
	}
	return c.JSON(out)
}

// UpdateContacto godoc
// @Summary      Actualizar email y teléfono
// @Tags         portal
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body  dto.UpdateContactoRequest  true  "email, telefono"
// @Success      200  {object}  dto.PerfilResponse
// @Failure      400  {object}  dto.ErrorResponse
// @Router       /api/clientes/me/contacto [patch]
func (h *ClienteHandler) UpdateContacto(c *fiber.Ctx) error {
	var in dto.UpdateContactoRequest
	if err := parseBody(c, &in); err != nil {
		return handleError(c, err)
	}
	out, err := h.uc.UpdateContacto(c.UserContext(), GetUserID(c), in)
	if err != nil {
		return handleError(c, err)
	}
	return c.JSON(out)
}

// Saldo godoc
// @Summary      Saldo actual
// @Description  Saldo adeudado, estado de cuenta y próximo vencimiento.
// @Tags         portal
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  dto.SaldoResponse
// @Router       /api/clientes/me/saldo [get]
func (h *ClienteHandler) Saldo(c *fiber.Ctx) error {
	out, err := h.uc.Saldo(c.UserContext(), GetUserID(c))
	if err != nil {
		return handleError(c, err)
	}
	return c.JSON(out)
}

// Boletas godoc
// @Summary      Boletas del cliente
// @Tags         portal
// @Produce      json
// @Security     BearerAuth
// @Param        limit   query  int     false  "máximo 100, por defecto 20"
// @Param        cursor  query  string  false  "cursor de la página siguiente"
// @Success      200  {object}  dto.Page[dto.BoletaResponse]
// @Router       /api/clientes/me/boletas [get]
func (h *ClienteHandler) Boletas(c *fiber.Ctx) error {
	page, err := parsePage(c)
	if err != nil {
		return handleError(c, err)
	}
	out, err := h.uc.Boletas(c.UserContext(), GetUserID(c), page)
	if err != nil {
		return handleError(c, err)
	}
	return c.JSON(out)
}

// Boleta godoc
// @Summary      Detalle de boleta
// @Tags         portal
// @Produce      json
// @Security     BearerAuth
// @Param        id  path  string  true  "ID de la boleta"
// @Success      200  {object}  dto.BoletaDetalleResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/clientes/me/boletas/{id} [get]
func (h *ClienteHandler) Boleta(c *fiber.Ctx) error {
	out, err := h.uc.Boleta(c.UserContext(), GetUserID(c), c.Params("id"))
	if err != nil {
		return handleError(c, err)
	}
	return c.JSON(out)
}

// BoletaPDF godoc
// @Summary      Descargar boleta en PDF
// @Tags         portal
// @Produce      application/pdf
// @Security     BearerAuth
// @Param        id  path  string  true  "ID de la boleta"
// @Success      200  {file}    binary
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/clientes/me/boletas/{id}/pdf [get]
func (h *ClienteHandler) BoletaPDF(c *fiber.Ctx) error {
	pdfBytes, filename, err := h.uc.BoletaPDF(c.UserContext(), GetUserID(c), c.Params("id"))
	if err != nil {
		return handleError(c, err)
	}
	c.Set(fiber.HeaderContentType, "application/pdf")
	c.Set(fiber.HeaderContentDisposition, fmt.Sprintf(`attachment; filename="%s"`, filename))
	return c.Send(pdfBytes)
}

// Pagos godoc
// @Summary      Historial de pagos
// @Tags         portal
// @Produce      json
// @Security     BearerAuth
// @Param        limit   query  int     false  "máximo 100, por defecto 20"
// @Param        cursor  query  string  false  "cursor de la página siguiente"
// @Success      200  {object}  dto.Page[dto.PagoResponse]
// @Router       /api/clientes/me/pagos [get]
func (h *ClienteHandler) Pagos(c *fiber.Ctx) error {
	page, err := parsePage(c)
	if err != nil {
		return handleError(c, err)
	}
	out, err := h.uc.Pagos(c.UserContext(), GetUserID(c), page)
	if err != nil {
		return handleError(c, err)
	}
	return c.JSON(out)
}

// Autopago godoc
// @Summary      Estado del pago automático
// @Tags         portal
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  dto.AutopagoResponse
// @Router       /api/clientes/me/autopago [get]
func (h *ClienteHandler) Autopago(c *fiber.Ctx) error {
	out, err := h.uc.Autopago(c.UserContext(), GetUserID(c))
	if err != nil {
		return handleError(c, err)
	}
	return c.JSON(out)
}

// InscribirAutopago godoc
// @Summary      Inscribir tarjeta para pago automático
// @Description  Solo se almacenan marca, últimos 4 dígitos y token.
// @Tags         portal
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body  dto.AutopagoRequest  true  "tarjeta"
// @Success      201  {object}  dto.AutopagoResponse
// @Failure      400  {object}  dto.ErrorResponse
// @Router       /api/clientes/me/autopago [post]
func (h *ClienteHandler) InscribirAutopago(c *fiber.Ctx) error {
	var in dto.AutopagoRequest
	if err := parseBody(c, &in); err != nil {
		return handleError(c, err)
	}
	out, err := h.uc.InscribirAutopago(c.UserContext(), GetUserID(c), in)
	if err != nil {
		return handleError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(out)
}

// DesactivarAutopago godoc
// @Summary      Desactivar pago automático
// @Tags         portal
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  dto.AutopagoResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/clientes/me/autopago [delete]
func (h *ClienteHandler) DesactivarAutopago(c *fiber.Ctx) error {
	out, err := h.uc.DesactivarAutopago(c.UserContext(), GetUserID(c))
	if err != nil {
		return handleError(c, err)
	}
	return c.JSON(out)
}

// CrearSolicitud godoc
// @Summary      Solicitar repactación de deuda
// @Tags         portal
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body  dto.CreateSolicitudRequest  true  "cuotas y motivo"
// @Success      201  {object}  dto.SolicitudResponse
// @Failure      409  {object}  dto.ErrorResponse  "SOLICITUD_PENDIENTE"
// @Router       /api/clientes/me/solicitudes-repactacion [post]
func (h *ClienteHandler) CrearSolicitud(c *fiber.Ctx) error {
	var in dto.CreateSolicitudRequest
	if err := parseBody(c, &in); err != nil {
		return handleError(c, err)
	}
	out, err := h.uc.CrearSolicitud(c.UserContext(), GetUserID(c), in)
	if err != nil {
		return handleError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(out)
}

// Solicitudes godoc
// @Summary      Solicitudes de repactación del cliente
// @Tags         portal
// @Produce      json
// @Security     BearerAuth
// @Success      200  {array}  dto.SolicitudResponse
// @Router       /api/clientes/me/solicitudes-repactacion [get]
func (h *ClienteHandler) Solicitudes(c *fiber.Ctx) error {
	out, err := h.uc.Solicitudes(c.UserContext(), GetUserID(c))
	if err != nil {
		return handleError(c, err)
	}
	return c.JSON(out)
}
