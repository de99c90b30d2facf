package admin

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/StantonMatt/coab-platform/internal/application/cliente"
	"github.com/StantonMatt/coab-platform/internal/application/dto"
	"github.com/StantonMatt/coab-platform/internal/application/pagination"
	"github.com/StantonMatt/coab-platform/internal/application/ports"
	"github.com/StantonMatt/coab-platform/internal/domain"
	"github.com/StantonMatt/coab-platform/internal/domain/entity"
	"github.com/StantonMatt/coab-platform/internal/domain/repactacion"
	"github.com/StantonMatt/coab-platform/internal/domain/repository"
	"github.com/StantonMatt/coab-platform/pkg/logger"
)

// RepactacionUseCase revisión de solicitudes y gestión de convenios.
type RepactacionUseCase struct {
	tx              ports.TxRunner
	solicitudRepo   repository.SolicitudRepository
	repactacionRepo repository.RepactacionRepository
	log             *logger.Logger
	now             func() time.Time
}

// NewRepactacionUseCase construye el caso de uso.
func NewRepactacionUseCase(
	tx ports.TxRunner,
	solicitudRepo repository.SolicitudRepository,
	repactacionRepo repository.RepactacionRepository,
	log *logger.Logger,
) *RepactacionUseCase {
	return &RepactacionUseCase{
		tx:              tx,
		solicitudRepo:   solicitudRepo,
		repactacionRepo: repactacionRepo,
		log:             log.Named("admin.repactaciones"),
		now:             time.Now,
	}
}

// ListSolicitudes solicitudes filtradas por estado.
func (uc *RepactacionUseCase) ListSolicitudes(ctx context.Context, estado string, req dto.PageRequest) (*dto.Page[dto.SolicitudResponse], error) {
	q, err := pagination.Query(req)
	if err != nil {
		return nil, err
	}
	rows, err := uc.solicitudRepo.List(ctx, estado, q)
	if err != nil {
		return nil, err
	}
	page := pagination.Build(rows, q.Limit, pagination.SolicitudKey, cliente.ToSolicitudResponse)
	return &page, nil
}

// Aprobar marca la solicitud aprobada y crea el convenio activo en la misma transacción.
func (uc *RepactacionUseCase) Aprobar(ctx context.Context, solicitudID, adminID string, in dto.RevisarSolicitudRequest) (*dto.RepactacionResponse, error) {
	now := uc.now()
	var (
		convenio *entity.Repactacion
		ultima   decimal.Decimal
	)
	err := uc.tx.RunInTx(ctx, func(r ports.TxRepos) error {
		s, err := r.Solicitudes.GetByID(ctx, solicitudID)
		if err != nil {
			return err
		}
		if s == nil {
			return domain.ErrNotFound
		}
		if err := repactacion.TransicionarSolicitud(s, entity.SolicitudAprobada, adminID, in.Comentario, now); err != nil {
			return err
		}
		cuotas := s.CuotasSolicitadas
		if in.Cuotas > 0 {
			cuotas = in.Cuotas
		}
		cuota, ult, err := repactacion.CalcularCuota(s.MontoDeuda, cuotas)
		if err != nil {
			return err
		}
		ultima = ult
		sid := s.ID
		convenio = &entity.Repactacion{
			ID:          uuid.New().String(),
			SolicitudID: &sid,
			ClienteID:   s.ClienteID,
			MontoTotal:  s.MontoDeuda,
			Cuotas:      cuotas,
			MontoCuota:  cuota,
			FechaInicio: now,
			Estado:      entity.RepactacionActivo,
			CreatedAt:   now,
			UpdatedAt:   now,
		}
		if err := r.Solicitudes.UpdateRevision(ctx, s); err != nil {
			return err
		}
		return r.Repactaciones.Create(ctx, convenio)
	})
	if err != nil {
		return nil, err
	}
	uc.log.Info().
		Str("solicitud_id", solicitudID).
		Str("repactacion_id", convenio.ID).
		Int("cuotas", convenio.Cuotas).
		Msg("repactación aprobada")
	resp := toRepactacionResponse(convenio)
	resp.MontoUltima = ultima
	return &resp, nil
}

// Rechazar pendiente → rechazada.
func (uc *RepactacionUseCase) Rechazar(ctx context.Context, solicitudID, adminID string, in dto.RevisarSolicitudRequest) (*dto.SolicitudResponse, error) {
	s, err := uc.solicitudRepo.GetByID(ctx, solicitudID)
	if err != nil {
		return nil, err
	}
	if s == nil {
		return nil, domain.ErrNotFound
	}
	if err := repactacion.TransicionarSolicitud(s, entity.SolicitudRechazada, adminID, in.Comentario, uc.now()); err != nil {
		return nil, err
	}
	if err := uc.solicitudRepo.UpdateRevision(ctx, s); err != nil {
		return nil, err
	}
	resp := cliente.ToSolicitudResponse(s)
	return &resp, nil
}

// ListRepactaciones convenios filtrados por estado.
func (uc *RepactacionUseCase) ListRepactaciones(ctx context.Context, estado string, req dto.PageRequest) (*dto.Page[dto.RepactacionResponse], error) {
	q, err := pagination.Query(req)
	if err != nil {
		return nil, err
	}
	rows, err := uc.repactacionRepo.List(ctx, estado, q)
	if err != nil {
		return nil, err
	}
	page := pagination.Build(rows, q.Limit, pagination.RepactacionKey, toRepactacionResponse)
	return &page, nil
}

// Completar activo → completado.
func (uc *RepactacionUseCase) Completar(ctx context.Context, id string) (*dto.RepactacionResponse, error) {
	return uc.transicionar(ctx, id, entity.RepactacionCompletado)
}

// Cancelar activo → cancelado.
func (uc *RepactacionUseCase) Cancelar(ctx context.Context, id string) (*dto.RepactacionResponse, error) {
	return uc.transicionar(ctx, id, entity.RepactacionCancelado)
}

func (uc *RepactacionUseCase) transicionar(ctx context.Context, id, hacia string) (*dto.RepactacionResponse, error) {
	r, err := uc.repactacionRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if r == nil {
		return nil, domain.ErrNotFound
	}
	if err := repactacion.TransicionarConvenio(r, hacia, uc.now()); err != nil {
		return nil, err
	}
	if err := uc.repactacionRepo.UpdateEstado(ctx, r); err != nil {
		return nil, err
	}
	resp := toRepactacionResponse(r)
	return &resp, nil
}

func toRepactacionResponse(r *entity.Repactacion) dto.RepactacionResponse {
	resp := dto.RepactacionResponse{
		ID:            r.ID,
		SolicitudID:   r.SolicitudID,
		ClienteID:     r.ClienteID,
		MontoTotal:    r.MontoTotal,
		Cuotas:        r.Cuotas,
		MontoCuota:    r.MontoCuota,
		MontoUltima:   r.MontoCuota,
		CuotasPagadas: r.CuotasPagadas,
		FechaInicio:   r.FechaInicio,
		Estado:        r.Estado,
	}
	if r.Cuotas > 1 {
		resp.MontoUltima = r.MontoTotal.Sub(r.MontoCuota.Mul(decimal.NewFromInt(int64(r.Cuotas - 1))))
	}
	return resp
}
