package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/StantonMatt/coab-platform/internal/domain"
	"github.com/StantonMatt/coab-platform/internal/domain/entity"
	"github.com/StantonMatt/coab-platform/internal/domain/repository"
)

var (
	_ repository.SolicitudRepository   = (*SolicitudRepo)(nil)
	_ repository.RepactacionRepository = (*RepactacionRepo)(nil)
)

// ── Solicitudes ──

const solicitudColumns = `
	id, cliente_id, monto_deuda, cuotas_solicitadas, motivo, estado,
	revisado_por, comentario_admin, created_at, revisado_at`

var solicitudesKeyset = keyset{col: "created_at", id: "id", cast: "timestamptz", desc: true}

// SolicitudRepo implementación de SolicitudRepository.
type SolicitudRepo struct {
	q Querier
}

// NewSolicitudRepository construye el adaptador.
func NewSolicitudRepository(q Querier) *SolicitudRepo {
	return &SolicitudRepo{q: q}
}

func scanSolicitud(row pgx.Row) (*entity.SolicitudRepactacion, error) {
	var s entity.SolicitudRepactacion
	err := row.Scan(
		&s.ID, &s.ClienteID, &s.MontoDeuda, &s.CuotasSolicitadas, &s.Motivo, &s.Estado,
		&s.RevisadoPor, &s.ComentarioAdmin, &s.CreatedAt, &s.RevisadoAt,
	)
	if err != nil {
		return nil, err
	}
	return &s, nil
}

func scanSolicitudes(rows pgx.Rows) ([]*entity.SolicitudRepactacion, error) {
	return collect(rows, func(row pgx.Rows) (*entity.SolicitudRepactacion, error) {
		s, err := scanSolicitud(row)
		if err != nil {
			return nil, fmt.Errorf("scan solicitud: %w", err)
		}
		return s, nil
	})
}

// Create persiste la solicitud. El índice parcial impide una segunda pendiente.
func (r *SolicitudRepo) Create(ctx context.Context, s *entity.SolicitudRepactacion) error {
	_, err := r.q.Exec(ctx, `
		INSERT INTO solicitudes_repactacion (id, cliente_id, monto_deuda, cuotas_solicitadas, motivo, estado, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		s.ID, s.ClienteID, s.MontoDeuda, s.CuotasSolicitadas, s.Motivo, s.Estado, s.CreatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicate
		}
		return fmt.Errorf("insert solicitud: %w", err)
	}
	return nil
}

// GetByID obtiene una solicitud.
func (r *SolicitudRepo) GetByID(ctx context.Context, id string) (*entity.SolicitudRepactacion, error) {
	s, err := scanSolicitud(r.q.QueryRow(ctx,
		`SELECT `+solicitudColumns+` FROM solicitudes_repactacion WHERE id = $1`, id))
	if err != nil {
		if isNoRows(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("get solicitud: %w", err)
	}
	return s, nil
}

// ExistsPendiente indica si el cliente tiene una solicitud pendiente.
func (r *SolicitudRepo) ExistsPendiente(ctx context.Context, clienteID string) (bool, error) {
	var exists bool
	err := r.q.QueryRow(ctx, `SELECT EXISTS (
		SELECT 1 FROM solicitudes_repactacion WHERE cliente_id = $1 AND estado = $2)`,
		clienteID, entity.SolicitudPendiente).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("exists solicitud pendiente: %w", err)
	}
	return exists, nil
}

// ListByCliente solicitudes del cliente, más recientes primero.
func (r *SolicitudRepo) ListByCliente(ctx context.Context, clienteID string) ([]*entity.SolicitudRepactacion, error) {
	rows, err := r.q.Query(ctx, `SELECT `+solicitudColumns+` FROM solicitudes_repactacion
		WHERE cliente_id = $1 ORDER BY created_at DESC, id DESC`, clienteID)
	if err != nil {
		return nil, fmt.Errorf("list solicitudes cliente: %w", err)
	}
	return scanSolicitudes(rows)
}

// List página de solicitudes, opcionalmente filtradas por estado.
func (r *SolicitudRepo) List(ctx context.Context, estado string, page repository.PageQuery) ([]*entity.SolicitudRepactacion, error) {
	query, args, err := solicitudesKeyset.paginate(
		`SELECT `+solicitudColumns+` FROM solicitudes_repactacion WHERE ($1::text = '' OR estado = $1::text)`,
		page, []any{estado})
	if err != nil {
		return nil, err
	}
	rows, err := r.q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list solicitudes: %w", err)
	}
	return scanSolicitudes(rows)
}

// UpdateRevision persiste el resultado de la revisión. Solo actualiza si la
// solicitud sigue pendiente; si otra revisión ganó devuelve ErrInvalidTransition.
func (r *SolicitudRepo) UpdateRevision(ctx context.Context, s *entity.SolicitudRepactacion) error {
	tag, err := r.q.Exec(ctx, `
		UPDATE solicitudes_repactacion
		SET estado = $2, revisado_por = $3, comentario_admin = $4, revisado_at = $5
		WHERE id = $1 AND estado = 'pendiente'`,
		s.ID, s.Estado, s.RevisadoPor, s.ComentarioAdmin, s.RevisadoAt,
	)
	if err != nil {
		return fmt.Errorf("update revision solicitud: %w", err)
	}
	return expectOne(tag, "solicitud ya revisada")
}

// ── Convenios ──

const repactacionColumns = `
	id, solicitud_id, cliente_id, monto_total, cuotas, monto_cuota,
	cuotas_pagadas, fecha_inicio, estado, created_at, updated_at`

var repactacionesKeyset = keyset{col: "created_at", id: "id", cast: "timestamptz", desc: true}

// RepactacionRepo implementación de RepactacionRepository.
type RepactacionRepo struct {
	q Querier
}

// NewRepactacionRepository construye el adaptador.
func NewRepactacionRepository(q Querier) *RepactacionRepo {
	return &RepactacionRepo{q: q}
}

func scanRepactacion(row pgx.Row) (*entity.Repactacion, error) {
	var rp entity.Repactacion
	err := row.Scan(
		&rp.ID, &rp.SolicitudID, &rp.ClienteID, &rp.MontoTotal, &rp.Cuotas, &rp.MontoCuota,
		&rp.CuotasPagadas, &rp.FechaInicio, &rp.Estado, &rp.CreatedAt, &rp.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &rp, nil
}

// Create persiste un convenio.
func (r *RepactacionRepo) Create(ctx context.Context, rp *entity.Repactacion) error {
	_, err := r.q.Exec(ctx, `
		INSERT INTO repactaciones (id, solicitud_id, cliente_id, monto_total, cuotas, monto_cuota,
			cuotas_pagadas, fecha_inicio, estado, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`,
		rp.ID, rp.SolicitudID, rp.ClienteID, rp.MontoTotal, rp.Cuotas, rp.MontoCuota,
		rp.CuotasPagadas, rp.FechaInicio, rp.Estado, rp.CreatedAt, rp.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert repactacion: %w", err)
	}
	return nil
}

// GetByID obtiene un convenio.
func (r *RepactacionRepo) GetByID(ctx context.Context, id string) (*entity.Repactacion, error) {
	rp, err := scanRepactacion(r.q.QueryRow(ctx,
		`SELECT `+repactacionColumns+` FROM repactaciones WHERE id = $1`, id))
	if err != nil {
		if isNoRows(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("get repactacion: %w", err)
	}
	return rp, nil
}

// List página de convenios, opcionalmente filtrados por estado.
func (r *RepactacionRepo) List(ctx context.Context, estado string, page repository.PageQuery) ([]*entity.Repactacion, error) {
	query, args, err := repactacionesKeyset.paginate(
		`SELECT `+repactacionColumns+` FROM repactaciones WHERE ($1::text = '' OR estado = $1::text)`,
		page, []any{estado})
	if err != nil {
		return nil, err
	}
	rows, err := r.q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list repactaciones: %w", err)
	}
	return collect(rows, func(row pgx.Rows) (*entity.Repactacion, error) {
		rp, err := scanRepactacion(row)
		if err != nil {
			return nil, fmt.Errorf("scan repactacion: %w", err)
		}
		return rp, nil
	})
}

// UpdateEstado persiste estado y cuotas pagadas.
func (r *RepactacionRepo) UpdateEstado(ctx context.Context, rp *entity.Repactacion) error {
	tag, err := r.q.Exec(ctx, `
		UPDATE repactaciones SET estado = $2, cuotas_pagadas = $3, updated_at = $4
		WHERE id = $1 AND estado = 'activo'`,
		rp.ID, rp.Estado, rp.CuotasPagadas, rp.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("update repactacion: %w", err)
	}
	return expectOne(tag, "convenio ya cerrado")
}
