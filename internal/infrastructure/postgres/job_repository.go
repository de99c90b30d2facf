package postgres

import (
	"context"
	"fmt"

	"github.com/StantonMatt/coab-platform/internal/domain"
	"github.com/StantonMatt/coab-platform/internal/domain/entity"
	"github.com/StantonMatt/coab-platform/internal/domain/repository"
)

var _ repository.JobRepository = (*JobRepo)(nil)

// JobRepo implementación de JobRepository.
type JobRepo struct {
	q Querier
}

// NewJobRepository construye el adaptador.
func NewJobRepository(q Querier) *JobRepo {
	return &JobRepo{q: q}
}

// Create persiste un job. El índice parcial rechaza un segundo job activo del mismo periodo.
func (r *JobRepo) Create(ctx context.Context, j *entity.JobPDF) error {
	_, err := r.q.Exec(ctx, `
		INSERT INTO jobs_pdf (id, periodo, regenerar, estado, iniciado_por, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)`,
		j.ID, j.Periodo, j.Regenerar, j.Estado, nullIfEmpty(j.IniciadoPor), j.CreatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicate
		}
		return fmt.Errorf("insert job: %w", err)
	}
	return nil
}

// GetByID obtiene un job.
func (r *JobRepo) GetByID(ctx context.Context, id string) (*entity.JobPDF, error) {
	var (
		j           entity.JobPDF
		iniciadoPor *string
	)
	err := r.q.QueryRow(ctx, `
		SELECT id, periodo, regenerar, estado, total, procesados, exitosos, fallidos, omitidos,
			cancelar, error_mensaje, iniciado_por, created_at, started_at, finished_at
		FROM jobs_pdf WHERE id = $1`, id).Scan(
		&j.ID, &j.Periodo, &j.Regenerar, &j.Estado, &j.Total, &j.Procesados, &j.Exitosos, &j.Fallidos, &j.Omitidos,
		&j.Cancelar, &j.ErrorMensaje, &iniciadoPor, &j.CreatedAt, &j.StartedAt, &j.FinishedAt,
	)
	if err != nil {
		if isNoRows(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("get job: %w", err)
	}
	j.IniciadoPor = deref(iniciadoPor)
	return &j, nil
}

// ExistsActivo indica si hay un job pendiente o procesando para el periodo.
func (r *JobRepo) ExistsActivo(ctx context.Context, periodo string) (bool, error) {
	var exists bool
	err := r.q.QueryRow(ctx, `SELECT EXISTS (
		SELECT 1 FROM jobs_pdf WHERE periodo = $1 AND estado IN ($2, $3))`,
		periodo, entity.JobPendiente, entity.JobProcesando).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("exists job activo: %w", err)
	}
	return exists, nil
}

// Update persiste estado, contadores y fechas.
func (r *JobRepo) Update(ctx context.Context, j *entity.JobPDF) error {
	_, err := r.q.Exec(ctx, `
		UPDATE jobs_pdf SET estado = $2, total = $3, procesados = $4, exitosos = $5, fallidos = $6,
			omitidos = $7, error_mensaje = $8, started_at = $9, finished_at = $10
		WHERE id = $1`,
		j.ID, j.Estado, j.Total, j.Procesados, j.Exitosos, j.Fallidos,
		j.Omitidos, j.ErrorMensaje, j.StartedAt, j.FinishedAt,
	)
	if err != nil {
		return fmt.Errorf("update job: %w", err)
	}
	return nil
}

// RequestCancel marca el flag de cancelación.
func (r *JobRepo) RequestCancel(ctx context.Context, id string) error {
	tag, err := r.q.Exec(ctx, `UPDATE jobs_pdf SET cancelar = TRUE WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("cancel job: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// IsCancelRequested lee el flag de cancelación.
func (r *JobRepo) IsCancelRequested(ctx context.Context, id string) (bool, error) {
	var cancelar bool
	if err := r.q.QueryRow(ctx, `SELECT cancelar FROM jobs_pdf WHERE id = $1`, id).Scan(&cancelar); err != nil {
		return false, fmt.Errorf("read cancel flag: %w", err)
	}
	return cancelar, nil
}

// FailActivos marca con error los jobs que no alcanzaron un estado final.
func (r *JobRepo) FailActivos(ctx context.Context, msg string) (int64, error) {
	tag, err := r.q.Exec(ctx, `
		UPDATE jobs_pdf SET estado = 'error', error_mensaje = $1, finished_at = now()
		WHERE estado IN ('pendiente', 'procesando')`, msg)
	if err != nil {
		return 0, fmt.Errorf("fail jobs activos: %w", err)
	}
	return tag.RowsAffected(), nil
}
