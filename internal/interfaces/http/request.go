package http

import (
	"fmt"

	"github.com/gofiber/fiber/v2"

	"github.com/StantonMatt/coab-platform/internal/application/dto"
	"github.com/StantonMatt/coab-platform/internal/domain"
	"github.com/StantonMatt/coab-platform/pkg/validator"
)

// parseBody parsea el JSON del body en out y lo valida.
func parseBody(c *fiber.Ctx, out any) error {
	if err := c.BodyParser(out); err != nil {
		return fmt.Errorf("cuerpo inválido: %w", domain.ErrInvalidInput)
	}
	return validator.ValidateRequest(out)
}

// parsePage lee limit y cursor de la query string.
func parsePage(c *fiber.Ctx) (dto.PageRequest, error) {
	var req dto.PageRequest
	if err := c.QueryParser(&req); err != nil {
		return req, fmt.Errorf("parámetros de paginación inválidos: %w", domain.ErrInvalidInput)
	}
	if err := validator.ValidateRequest(&req); err != nil {
		return req, err
	}
	return req, nil
}
