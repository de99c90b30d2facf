package repository

import (
	"context"

	"github.com/StantonMatt/coab-platform/internal/domain/entity"
)

// JobRepository puerto de persistencia para procesos batch de PDF.
type JobRepository interface {
	Create(ctx context.Context, j *entity.JobPDF) error
	GetByID(ctx context.Context, id string) (*entity.JobPDF, error)
	// ExistsActivo indica si hay un job pendiente o procesando para el periodo.
	ExistsActivo(ctx context.Context, periodo string) (bool, error)
	// Update persiste estado, contadores y fechas. No modifica el flag de cancelación.
	Update(ctx context.Context, j *entity.JobPDF) error
	RequestCancel(ctx context.Context, id string) error
	IsCancelRequested(ctx context.Context, id string) (bool, error)
	// FailActivos cierra con error todos los jobs pendientes o procesando.
	FailActivos(ctx context.Context, msg string) (int64, error)
}
