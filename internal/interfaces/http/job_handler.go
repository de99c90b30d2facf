package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/StantonMatt/coab-platform/internal/application/dto"
	"github.com/StantonMatt/coab-platform/internal/application/jobs"
)

// JobHandler procesos batch de generación de PDF.
type JobHandler struct {
	svc *jobs.PDFJobService
}

// NewJobHandler construye el handler.
func NewJobHandler(svc *jobs.PDFJobService) *JobHandler {
	return &JobHandler{svc: svc}
}

// GenerarPDFs godoc
// @Summary      Generar PDFs de un periodo
// @Description  Crea el proceso y responde de inmediato; el avance se consulta en /admin/jobs/{id}.
// @Tags         admin-jobs
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body  dto.GenerarPDFsRequest  true  "periodo YYYY-MM"
// @Success      202  {object}  dto.JobResponse
// @Failure      400  {object}  dto.ErrorResponse
// @Failure      409  {object}  dto.ErrorResponse  "JOB_EN_CURSO"
// @Failure      503  {object}  dto.ErrorResponse  "STORAGE_NOT_CONFIGURED"
// @Router       /api/admin/boletas/generar-pdfs [post]
func (h *JobHandler) GenerarPDFs(c *fiber.Ctx) error {
	var in dto.GenerarPDFsRequest
	if err := parseBody(c, &in); err != nil {
		return handleError(c, err)
	}
	out, err := h.svc.Start(c.UserContext(), in, GetUserID(c))
	if err != nil {
		return handleError(c, err)
	}
	return c.Status(fiber.StatusAccepted).JSON(out)
}

// Get godoc
// @Summary      Estado del proceso
// @Tags         admin-jobs
// @Produce      json
// @Security     BearerAuth
// @Param        id  path  string  true  "ID del proceso"
// @Success      200  {object}  dto.JobResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/admin/jobs/{id} [get]
func (h *JobHandler) Get(c *fiber.Ctx) error {
	out, err := h.svc.Get(c.UserContext(), c.Params("id"))
	if err != nil {
		return handleError(c, err)
	}
	return c.JSON(out)
}

// Cancel godoc
// @Summary      Cancelar proceso
// @Description  Marca la cancelación; el proceso se detiene antes de la siguiente boleta.
// @Tags         admin-jobs
// @Produce      json
// @Security     BearerAuth
// @Param        id  path  string  true  "ID del proceso"
// @Success      200  {object}  dto.JobResponse
// @Failure      409  {object}  dto.ErrorResponse  "INVALID_TRANSITION"
// @Router       /api/admin/jobs/{id}/cancel [post]
func (h *JobHandler) Cancel(c *fiber.Ctx) error {
	out, err := h.svc.Cancel(c.UserContext(), c.Params("id"))
	if err != nil {
		return handleError(c, err)
	}
	return c.JSON(out)
}
