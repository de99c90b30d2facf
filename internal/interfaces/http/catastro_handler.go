package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/StantonMatt/coab-platform/internal/application/admin"
	"github.com/StantonMatt/coab-platform/internal/application/dto"
	"github.com/StantonMatt/coab-platform/internal/domain/repository"
)

// CatastroHandler medidores, lecturas y rutas de lectura.
type CatastroHandler struct {
	medidores *admin.MedidorUseCase
	rutas     *admin.RutaUseCase
}

// NewCatastroHandler construye el handler.
func NewCatastroHandler(medidores *admin.MedidorUseCase, rutas *admin.RutaUseCase) *CatastroHandler {
	return &CatastroHandler{medidores: medidores, rutas: rutas}
}

// ListMedidores godoc
// @Summary      Listar medidores
// @Tags         admin-medidores
// @Produce      json
// @Security     BearerAuth
// @Param        clienteId  query  string  false  "filtrar por cliente"
// @Param        estado     query  string  false  "activo | inactivo | reemplazado"
// @Param        limit      query  int     false  "máximo 100, por defecto 20"
// @Param        cursor     query  string  false  "cursor de la página siguiente"
// @Success      200  {object}  dto.Page[dto.MedidorResponse]
// @Router       /api/admin/medidores [get]
func (h *CatastroHandler) ListMedidores(c *fiber.Ctx) error {
	page, err := parsePage(c)
	if err != nil {
		return handleError(c, err)
	}
	f := repository.MedidorFilter{ClienteID: c.Query("clienteId"), Estado: c.Query("estado")}
	out, err := h.medidores.List(c.UserContext(), f, page)
	if err != nil {
		return handleError(c, err)
	}
	return c.JSON(out)
}

// CreateMedidor godoc
// @Summary      Crear medidor
// @Tags         admin-medidores
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body  dto.CreateMedidorRequest  true  "medidor"
// @Success      201  {object}  dto.MedidorResponse
// @Failure      400  {object}  dto.ErrorResponse
// @Failure      409  {object}  dto.ErrorResponse
// @Router       /api/admin/medidores [post]
func (h *CatastroHandler) CreateMedidor(c *fiber.Ctx) error {
	var in dto.CreateMedidorRequest
	if err := parseBody(c, &in); err != nil {
		return handleError(c, err)
	}
	out, err := h.medidores.Create(c.UserContext(), in)
	if err != nil {
		return handleError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(out)
}

// UpdateMedidor godoc
// @Summary      Editar medidor
// @Tags         admin-medidores
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id    path  string                    true  "ID del medidor"
// @Param        body  body  dto.UpdateMedidorRequest  true  "medidor"
// @Success      200  {object}  dto.MedidorResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/admin/medidores/{id} [put]
func (h *CatastroHandler) UpdateMedidor(c *fiber.Ctx) error {
	var in dto.UpdateMedidorRequest
	if err := parseBody(c, &in); err != nil {
		return handleError(c, err)
	}
	out, err := h.medidores.Update(c.UserContext(), c.Params("id"), in)
	if err != nil {
		return handleError(c, err)
	}
	return c.JSON(out)
}

// CambiarEstadoMedidor godoc
// @Summary      Cambiar estado del medidor
// @Tags         admin-medidores
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id    path  string                    true  "ID del medidor"
// @Param        body  body  dto.CambiarEstadoRequest  true  "estado"
// @Success      200  {object}  dto.MedidorResponse
// @Failure      400  {object}  dto.ErrorResponse
// @Router       /api/admin/medidores/{id}/estado [patch]
func (h *CatastroHandler) CambiarEstadoMedidor(c *fiber.Ctx) error {
	var in dto.CambiarEstadoRequest
	if err := parseBody(c, &in); err != nil {
		return handleError(c, err)
	}
	out, err := h.medidores.CambiarEstado(c.UserContext(), c.Params("id"), in.Estado)
	if err != nil {
		return handleError(c, err)
	}
	return c.JSON(out)
}

// RegistrarLectura godoc
// @Summary      Registrar lectura mensual
// @Description  El consumo es lectura actual menos la anterior; una lectura menor que la anterior se rechaza.
// @Tags         admin-medidores
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id    path  string                       true  "ID del medidor"
// @Param        body  body  dto.RegistrarLecturaRequest  true  "lectura"
// @Success      201  {object}  dto.LecturaResponse
// @Failure      400  {object}  dto.ErrorResponse
// @Failure      409  {object}  dto.ErrorResponse
// @Router       /api/admin/medidores/{id}/lecturas [post]
func (h *CatastroHandler) RegistrarLectura(c *fiber.Ctx) error {
	var in dto.RegistrarLecturaRequest
	if err := parseBody(c, &in); err != nil {
		return handleError(c, err)
	}
	out, err := h.medidores.RegistrarLectura(c.UserContext(), c.Params("id"), in)
	if err != nil {
		return handleError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(out)
}

// Lecturas godoc
// @Summary      Lecturas del medidor
// @Tags         admin-medidores
// @Produce      json
// @Security     BearerAuth
// @Param        id      path   string  true   "ID del medidor"
// @Param        limit   query  int     false  "máximo 100, por defecto 20"
// @Param        cursor  query  string  false  "cursor de la página siguiente"
// @Success      200  {object}  dto.Page[dto.LecturaResponse]
// @Router       /api/admin/medidores/{id}/lecturas [get]
func (h *CatastroHandler) Lecturas(c *fiber.Ctx) error {
	page, err := parsePage(c)
	if err != nil {
		return handleError(c, err)
	}
	out, err := h.medidores.Lecturas(c.UserContext(), c.Params("id"), page)
	if err != nil {
		return handleError(c, err)
	}
	return c.JSON(out)
}

// ── Rutas ──

// ListRutas godoc
// @Summary      Listar rutas de lectura
// @Tags         admin-rutas
// @Produce      json
// @Security     BearerAuth
// @Success      200  {array}  dto.RutaResponse
// @Router       /api/admin/rutas [get]
func (h *CatastroHandler) ListRutas(c *fiber.Ctx) error {
	out, err := h.rutas.List(c.UserContext())
	if err != nil {
		return handleError(c, err)
	}
	return c.JSON(out)
}

// CreateRuta godoc
// @Summary      Crear ruta
// @Tags         admin-rutas
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body  dto.RutaRequest  true  "ruta"
// @Success      201  {object}  dto.RutaResponse
// @Failure      409  {object}  dto.ErrorResponse
// @Router       /api/admin/rutas [post]
func (h *CatastroHandler) CreateRuta(c *fiber.Ctx) error {
	var in dto.RutaRequest
	if err := parseBody(c, &in); err != nil {
		return handleError(c, err)
	}
	out, err := h.rutas.Create(c.UserContext(), in)
	if err != nil {
		return handleError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(out)
}

// UpdateRuta godoc
// @Summary      Editar ruta
// @Tags         admin-rutas
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id    path  string           true  "ID de la ruta"
// @Param        body  body  dto.RutaRequest  true  "ruta"
// @Success      200  {object}  dto.RutaResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/admin/rutas/{id} [put]
func (h *CatastroHandler) UpdateRuta(c *fiber.Ctx) error {
	var in dto.RutaRequest
	if err := parseBody(c, &in); err != nil {
		return handleError(c, err)
	}
	out, err := h.rutas.Update(c.UserContext(), c.Params("id"), in)
	if err != nil {
		return handleError(c, err)
	}
	return c.JSON(out)
}

// AsignarDirecciones godoc
// @Summary      Asignar direcciones a la ruta
// @Description  Reemplaza las direcciones de la ruta; el orden del arreglo es el orden de recorrido.
// @Tags         admin-rutas
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id    path  string                         true  "ID de la ruta"
// @Param        body  body  dto.AsignarDireccionesRequest  true  "direcciones"
// @Success      200  {object}  dto.RutaResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/admin/rutas/{id}/direcciones [put]
func (h *CatastroHandler) AsignarDirecciones(c *fiber.Ctx) error {
	var in dto.AsignarDireccionesRequest
	if err := parseBody(c, &in); err != nil {
		return handleError(c, err)
	}
	out, err := h.rutas.AsignarDirecciones(c.UserContext(), c.Params("id"), in)
	if err != nil {
		return handleError(c, err)
	}
	return c.JSON(out)
}
