package admin

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/samber/lo"

	"github.com/StantonMatt/coab-platform/internal/application/dto"
	"github.com/StantonMatt/coab-platform/internal/domain"
	"github.com/StantonMatt/coab-platform/internal/domain/entity"
	"github.com/StantonMatt/coab-platform/internal/domain/repository"
)

// RutaUseCase rutas de lectura.
type RutaUseCase struct {
	rutaRepo repository.RutaRepository
	now      func() time.Time
}

// NewRutaUseCase construye el caso de uso.
func NewRutaUseCase(rutaRepo repository.RutaRepository) *RutaUseCase {
	return &RutaUseCase{rutaRepo: rutaRepo, now: time.Now}
}

// List todas las rutas.
func (uc *RutaUseCase) List(ctx context.Context) ([]dto.RutaResponse, error) {
	rutas, err := uc.rutaRepo.List(ctx)
	if err != nil {
		return nil, err
	}
	return lo.Map(rutas, func(r *entity.Ruta, _ int) dto.RutaResponse { return toRutaResponse(r) }), nil
}

// Create alta de ruta.
func (uc *RutaUseCase) Create(ctx context.Context, in dto.RutaRequest) (*dto.RutaResponse, error) {
	r := &entity.Ruta{
		ID:             uuid.New().String(),
		Nombre:         strings.TrimSpace(in.Nombre),
		Descripcion:    strings.TrimSpace(in.Descripcion),
		LectorAsignado: strings.TrimSpace(in.LectorAsignado),
		Estado:         lo.Ternary(in.Estado == "", entity.EstadoActivo, in.Estado),
		CreatedAt:      uc.now(),
	}
	if err := uc.rutaRepo.Create(ctx, r); err != nil {
		return nil, err
	}
	resp := toRutaResponse(r)
	return &resp, nil
}

// Update edición de ruta.
func (uc *RutaUseCase) Update(ctx context.Context, id string, in dto.RutaRequest) (*dto.RutaResponse, error) {
	r, err := uc.get(ctx, id)
	if err != nil {
		return nil, err
	}
	r.Nombre = strings.TrimSpace(in.Nombre)
	r.Descripcion = strings.TrimSpace(in.Descripcion)
	r.LectorAsignado = strings.TrimSpace(in.LectorAsignado)
	if in.Estado != "" {
		r.Estado = in.Estado
	}
	if err := uc.rutaRepo.Update(ctx, r); err != nil {
		return nil, err
	}
	resp := toRutaResponse(r)
	return &resp, nil
}

// AsignarDirecciones fija las direcciones de la ruta en el orden recibido.
func (uc *RutaUseCase) AsignarDirecciones(ctx context.Context, id string, in dto.AsignarDireccionesRequest) (*dto.RutaResponse, error) {
	if _, err := uc.get(ctx, id); err != nil {
		return nil, err
	}
	ids := lo.Uniq(in.DireccionIDs)
	if err := uc.rutaRepo.AsignarDirecciones(ctx, id, ids); err != nil {
		return nil, err
	}
	r, err := uc.get(ctx, id)
	if err != nil {
		return nil, err
	}
	resp := toRutaResponse(r)
	return &resp, nil
}

func (uc *RutaUseCase) get(ctx context.Context, id string) (*entity.Ruta, error) {
	r, err := uc.rutaRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if r == nil {
		return nil, domain.ErrNotFound
	}
	return r, nil
}

func toRutaResponse(r *entity.Ruta) dto.RutaResponse {
	return dto.RutaResponse{
		ID:               r.ID,
		Nombre:           r.Nombre,
		Descripcion:      r.Descripcion,
		LectorAsignado:   r.LectorAsignado,
		Estado:           r.Estado,
		TotalDirecciones: r.TotalDirecciones,
	}
}
