package admin

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/StantonMatt/coab-platform/internal/application/cliente"
	"github.com/StantonMatt/coab-platform/internal/application/dto"
	"github.com/StantonMatt/coab-platform/internal/application/pagination"
	"github.com/StantonMatt/coab-platform/internal/domain"
	"github.com/StantonMatt/coab-platform/internal/domain/entity"
	"github.com/StantonMatt/coab-platform/internal/domain/repository"
)

// Transiciones de estado de medidor. Un medidor retirado no vuelve a servicio.
var medidorTransiciones = map[string][]string{
	entity.MedidorActivo:   {entity.MedidorInactivo, entity.MedidorRetirado},
	entity.MedidorInactivo: {entity.MedidorActivo, entity.MedidorRetirado},
}

// MedidorUseCase medidores y lecturas.
type MedidorUseCase struct {
	medidorRepo repository.MedidorRepository
	lecturaRepo repository.LecturaRepository
	now         func() time.Time
}

// NewMedidorUseCase construye el caso de uso.
func NewMedidorUseCase(medidorRepo repository.MedidorRepository, lecturaRepo repository.LecturaRepository) *MedidorUseCase {
	return &MedidorUseCase{medidorRepo: medidorRepo, lecturaRepo: lecturaRepo, now: time.Now}
}

// List medidores filtrados por cliente y estado.
func (uc *MedidorUseCase) List(ctx context.Context, f repository.MedidorFilter, req dto.PageRequest) (*dto.Page[dto.MedidorResponse], error) {
	q, err := pagination.Query(req)
	if err != nil {
		return nil, err
	}
	rows, err := uc.medidorRepo.List(ctx, f, q)
	if err != nil {
		return nil, err
	}
	page := pagination.Build(rows, q.Limit, pagination.MedidorKey, cliente.ToMedidorResponse)
	return &page, nil
}

// Create registra un medidor en una dirección existente.
func (uc *MedidorUseCase) Create(ctx context.Context, in dto.CreateMedidorRequest) (*dto.MedidorResponse, error) {
	ok, err := uc.medidorRepo.DireccionExists(ctx, in.DireccionID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, fmt.Errorf("dirección: %w", domain.ErrNotFound)
	}
	now := uc.now()
	m := &entity.Medidor{
		ID:               uuid.New().String(),
		DireccionID:      in.DireccionID,
		NumeroSerie:      strings.ToUpper(strings.TrimSpace(in.NumeroSerie)),
		Marca:            strings.TrimSpace(in.Marca),
		Diametro:         strings.TrimSpace(in.Diametro),
		FechaInstalacion: in.FechaInstalacion,
		Estado:           entity.MedidorActivo,
		CreatedAt:        now,
		UpdatedAt:        now,
	}
	if err := uc.medidorRepo.Create(ctx, m); err != nil {
		return nil, err
	}
	resp := cliente.ToMedidorResponse(m)
	return &resp, nil
}

// Update edita los datos del medidor.
func (uc *MedidorUseCase) Update(ctx context.Context, id string, in dto.UpdateMedidorRequest) (*dto.MedidorResponse, error) {
	m, err := uc.get(ctx, id)
	if err != nil {
		return nil, err
	}
	m.NumeroSerie = strings.ToUpper(strings.TrimSpace(in.NumeroSerie))
	m.Marca = strings.TrimSpace(in.Marca)
	m.Diametro = strings.TrimSpace(in.Diametro)
	m.FechaInstalacion = in.FechaInstalacion
	m.UpdatedAt = uc.now()
	if err := uc.medidorRepo.Update(ctx, m); err != nil {
		return nil, err
	}
	resp := cliente.ToMedidorResponse(m)
	return &resp, nil
}

// CambiarEstado activa, desactiva o retira el medidor.
func (uc *MedidorUseCase) CambiarEstado(ctx context.Context, id, estado string) (*dto.MedidorResponse, error) {
	m, err := uc.get(ctx, id)
	if err != nil {
		return nil, err
	}
	if !transicionValida(medidorTransiciones, m.Estado, estado) {
		return nil, fmt.Errorf("medidor %s → %s: %w", m.Estado, estado, domain.ErrInvalidTransition)
	}
	m.Estado = estado
	m.UpdatedAt = uc.now()
	if err := uc.medidorRepo.Update(ctx, m); err != nil {
		return nil, err
	}
	resp := cliente.ToMedidorResponse(m)
	return &resp, nil
}

// RegistrarLectura registra la lectura del periodo. El consumo es la diferencia
// con la última lectura; una lectura menor que la anterior se rechaza.
func (uc *MedidorUseCase) RegistrarLectura(ctx context.Context, medidorID string, in dto.RegistrarLecturaRequest) (*dto.LecturaResponse, error) {
	m, err := uc.get(ctx, medidorID)
	if err != nil {
		return nil, err
	}
	if m.Estado != entity.MedidorActivo {
		return nil, fmt.Errorf("medidor %s: %w", m.Estado, domain.ErrConflict)
	}
	if in.LecturaActual.IsNegative() {
		return nil, fmt.Errorf("lecturaActual negativa: %w", domain.ErrInvalidInput)
	}
	ultima, err := uc.lecturaRepo.GetUltima(ctx, medidorID)
	if err != nil {
		return nil, err
	}
	anterior := decimal.Zero
	if ultima != nil {
		if ultima.Periodo >= in.Periodo {
			return nil, fmt.Errorf("ya existe lectura para %s: %w", ultima.Periodo, domain.ErrConflict)
		}
		anterior = ultima.LecturaActual
	}
	if in.LecturaActual.LessThan(anterior) {
		return nil, domain.ErrLecturaMenorAnterior
	}

	now := uc.now()
	fecha := now
	if in.FechaLectura != nil {
		fecha = *in.FechaLectura
	}
	l := &entity.Lectura{
		ID:              uuid.New().String(),
		MedidorID:       medidorID,
		Periodo:         in.Periodo,
		LecturaAnterior: anterior,
		LecturaActual:   in.LecturaActual,
		ConsumoM3:       in.LecturaActual.Sub(anterior),
		FechaLectura:    fecha,
		Observacion:     strings.TrimSpace(in.Observacion),
		CreatedAt:       now,
	}
	if err := uc.lecturaRepo.Create(ctx, l); err != nil {
		return nil, err
	}
	resp := toLecturaResponse(l)
	return &resp, nil
}

// Lecturas historial de lecturas del medidor, más recientes primero.
func (uc *MedidorUseCase) Lecturas(ctx context.Context, medidorID string, req dto.PageRequest) (*dto.Page[dto.LecturaResponse], error) {
	if _, err := uc.get(ctx, medidorID); err != nil {
		return nil, err
	}
	q, err := pagination.Query(req)
	if err != nil {
		return nil, err
	}
	rows, err := uc.lecturaRepo.ListByMedidor(ctx, medidorID, q)
	if err != nil {
		return nil, err
	}
	page := pagination.Build(rows, q.Limit, pagination.LecturaKey, toLecturaResponse)
	return &page, nil
}

func (uc *MedidorUseCase) get(ctx context.Context, id string) (*entity.Medidor, error) {
	m, err := uc.medidorRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if m == nil {
		return nil, domain.ErrNotFound
	}
	return m, nil
}

func toLecturaResponse(l *entity.Lectura) dto.LecturaResponse {
	return dto.LecturaResponse{
		ID:              l.ID,
		MedidorID:       l.MedidorID,
		Periodo:         l.Periodo,
		LecturaAnterior: l.LecturaAnterior,
		LecturaActual:   l.LecturaActual,
		ConsumoM3:       l.ConsumoM3,
		FechaLectura:    l.FechaLectura,
		Observacion:     l.Observacion,
	}
}

func transicionValida(tabla map[string][]string, desde, hacia string) bool {
	for _, e := range tabla[desde] {
		if e == hacia {
			return true
		}
	}
	return false
}
