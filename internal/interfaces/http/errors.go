package http

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"github.com/StantonMatt/coab-platform/internal/application/dto"
	"github.com/StantonMatt/coab-platform/internal/domain"
)

// LocalError guarda el error interno para que el logger de requests lo registre.
const LocalError = "error"

type errorMapping struct {
	target error
	status int
	code   string
}

// El orden importa: el primer errors.Is que coincide gana.
var errorMappings = []errorMapping{
	{domain.ErrInvalidInput, fiber.StatusBadRequest, "VALIDATION"},
	{domain.ErrLecturaMenorAnterior, fiber.StatusBadRequest, "VALIDATION"},
	{domain.ErrTarjetaInvalida, fiber.StatusBadRequest, "VALIDATION"},
	{domain.ErrSetupTokenInvalid, fiber.StatusBadRequest, "SETUP_TOKEN_INVALID"},
	{domain.ErrNotFound, fiber.StatusNotFound, "NOT_FOUND"},
	{domain.ErrUnauthorized, fiber.StatusUnauthorized, "UNAUTHORIZED"},
	{domain.ErrSetupRequired, fiber.StatusForbidden, "SETUP_REQUIRED"},
	{domain.ErrForbidden, fiber.StatusForbidden, "FORBIDDEN"},
	{domain.ErrSolicitudPendiente, fiber.StatusConflict, "SOLICITUD_PENDIENTE"},
	{domain.ErrJobEnCurso, fiber.StatusConflict, "JOB_EN_CURSO"},
	{domain.ErrInvalidTransition, fiber.StatusConflict, "INVALID_TRANSITION"},
	{domain.ErrDuplicate, fiber.StatusConflict, "CONFLICT"},
	{domain.ErrConflict, fiber.StatusConflict, "CONFLICT"},
	{domain.ErrAccountLocked, fiber.StatusLocked, "ACCOUNT_LOCKED"},
	{domain.ErrNoPhone, fiber.StatusUnprocessableEntity, "NO_PHONE"},
	{domain.ErrStorageNotConfigured, fiber.StatusServiceUnavailable, "STORAGE_NOT_CONFIGURED"},
}

// handleError traduce un error de la capa de aplicación a respuesta HTTP.
func handleError(c *fiber.Ctx, err error) error {
	return handleErrorWithData(c, err, nil)
}

// handleErrorWithData igual que handleError, adjuntando data al cuerpo (por ejemplo el link
// de activación cuando el cliente no tiene teléfono).
func handleErrorWithData(c *fiber.Ctx, err error, data any) error {
	for _, m := range errorMappings {
		if !errors.Is(err, m.target) {
			continue
		}
		msg := m.target.Error()
		if m.code == "VALIDATION" {
			msg = err.Error()
		}
		body := dto.NewError(m.code, msg)
		body.Data = data
		return c.Status(m.status).JSON(body)
	}
	c.Locals(LocalError, err)
	return writeError(c, fiber.StatusInternalServerError, "INTERNAL", "error interno del servidor")
}

// ErrorHandler manejador global de Fiber para errores no capturados por los handlers.
func ErrorHandler(c *fiber.Ctx, err error) error {
	var fe *fiber.Error
	if errors.As(err, &fe) {
		return writeError(c, fe.Code, "HTTP_ERROR", fe.Message)
	}
	return handleError(c, err)
}
