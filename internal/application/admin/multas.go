package admin

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/StantonMatt/coab-platform/internal/application/dto"
	"github.com/StantonMatt/coab-platform/internal/application/pagination"
	"github.com/StantonMatt/coab-platform/internal/domain"
	"github.com/StantonMatt/coab-platform/internal/domain/entity"
	"github.com/StantonMatt/coab-platform/internal/domain/repository"
)

var multaTransiciones = map[string][]string{
	entity.MultaPendiente: {entity.MultaAplicada, entity.MultaCancelada},
}

// MultaUseCase multas a clientes.
type MultaUseCase struct {
	multaRepo   repository.MultaRepository
	clienteRepo repository.ClienteRepository
	now         func() time.Time
}

// NewMultaUseCase construye el caso de uso.
func NewMultaUseCase(multaRepo repository.MultaRepository, clienteRepo repository.ClienteRepository) *MultaUseCase {
	return &MultaUseCase{multaRepo: multaRepo, clienteRepo: clienteRepo, now: time.Now}
}

// List multas filtradas por estado y cliente, más recientes primero.
func (uc *MultaUseCase) List(ctx context.Context, f repository.MultaFilter, req dto.PageRequest) (*dto.Page[dto.MultaResponse], error) {
	q, err := pagination.Query(req)
	if err != nil {
		return nil, err
	}
	rows, err := uc.multaRepo.List(ctx, f, q)
	if err != nil {
		return nil, err
	}
	page := pagination.Build(rows, q.Limit, pagination.MultaKey, toMultaResponse)
	return &page, nil
}

// Create registra una multa pendiente de aplicar.
func (uc *MultaUseCase) Create(ctx context.Context, in dto.CreateMultaRequest) (*dto.MultaResponse, error) {
	if !in.Monto.IsPositive() {
		return nil, fmt.Errorf("monto debe ser positivo: %w", domain.ErrInvalidInput)
	}
	cli, err := uc.clienteRepo.GetByID(ctx, in.ClienteID)
	if err != nil {
		return nil, err
	}
	if cli == nil {
		return nil, fmt.Errorf("cliente: %w", domain.ErrNotFound)
	}
	now := uc.now()
	m := &entity.Multa{
		ID:                uuid.New().String(),
		ClienteID:         in.ClienteID,
		DireccionID:       in.DireccionID,
		Monto:             in.Monto.Round(0),
		Motivo:            strings.TrimSpace(in.Motivo),
		Estado:            entity.MultaPendiente,
		PeriodoAplicacion: in.PeriodoAplicacion,
		CreatedAt:         now,
		UpdatedAt:         now,
	}
	if err := uc.multaRepo.Create(ctx, m); err != nil {
		return nil, err
	}
	resp := toMultaResponse(m)
	return &resp, nil
}

// Aplicar pendiente → aplicada.
func (uc *MultaUseCase) Aplicar(ctx context.Context, id string) (*dto.MultaResponse, error) {
	return uc.transicionar(ctx, id, entity.MultaAplicada)
}

// Cancelar pendiente → cancelada.
func (uc *MultaUseCase) Cancelar(ctx context.Context, id string) (*dto.MultaResponse, error) {
	return uc.transicionar(ctx, id, entity.MultaCancelada)
}

func (uc *MultaUseCase) transicionar(ctx context.Context, id, hacia string) (*dto.MultaResponse, error) {
	m, err := uc.multaRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if m == nil {
		return nil, domain.ErrNotFound
	}
	if !transicionValida(multaTransiciones, m.Estado, hacia) {
		return nil, fmt.Errorf("multa %s → %s: %w", m.Estado, hacia, domain.ErrInvalidTransition)
	}
	m.Estado = hacia
	m.UpdatedAt = uc.now()
	if err := uc.multaRepo.UpdateEstado(ctx, m); err != nil {
		return nil, err
	}
	resp := toMultaResponse(m)
	return &resp, nil
}

func toMultaResponse(m *entity.Multa) dto.MultaResponse {
	return dto.MultaResponse{
		ID:                m.ID,
		ClienteID:         m.ClienteID,
		DireccionID:       m.DireccionID,
		Monto:             m.Monto,
		Motivo:            m.Motivo,
		Estado:            m.Estado,
		PeriodoAplicacion: m.PeriodoAplicacion,
		CreatedAt:         m.CreatedAt,
	}
}
