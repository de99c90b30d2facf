package admin

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/StantonMatt/coab-platform/internal/application/dto"
	"github.com/StantonMatt/coab-platform/internal/application/pagination"
	"github.com/StantonMatt/coab-platform/internal/domain"
	"github.com/StantonMatt/coab-platform/internal/domain/entity"
	"github.com/StantonMatt/coab-platform/internal/domain/repository"
)

var cien = decimal.NewFromInt(100)

// SubsidioUseCase subsidios de agua potable.
type SubsidioUseCase struct {
	subsidioRepo repository.SubsidioRepository
	clienteRepo  repository.ClienteRepository
	now          func() time.Time
}

// NewSubsidioUseCase construye el caso de uso.
func NewSubsidioUseCase(subsidioRepo repository.SubsidioRepository, clienteRepo repository.ClienteRepository) *SubsidioUseCase {
	return &SubsidioUseCase{subsidioRepo: subsidioRepo, clienteRepo: clienteRepo, now: time.Now}
}

// List subsidios filtrados por estado.
func (uc *SubsidioUseCase) List(ctx context.Context, estado string, req dto.PageRequest) (*dto.Page[dto.SubsidioResponse], error) {
	q, err := pagination.Query(req)
	if err != nil {
		return nil, err
	}
	rows, err := uc.subsidioRepo.List(ctx, estado, q)
	if err != nil {
		return nil, err
	}
	page := pagination.Build(rows, q.Limit, pagination.SubsidioKey, toSubsidioResponse)
	return &page, nil
}

// Create registra un subsidio activo.
func (uc *SubsidioUseCase) Create(ctx context.Context, in dto.CreateSubsidioRequest) (*dto.SubsidioResponse, error) {
	if !in.Porcentaje.IsPositive() || in.Porcentaje.GreaterThan(cien) {
		return nil, fmt.Errorf("porcentaje debe estar entre 0 y 100: %w", domain.ErrInvalidInput)
	}
	if !in.LimiteM3.IsPositive() {
		return nil, fmt.Errorf("limiteM3 debe ser positivo: %w", domain.ErrInvalidInput)
	}
	if in.FechaTermino != nil && in.FechaTermino.Before(in.FechaInicio) {
		return nil, fmt.Errorf("fechaTermino anterior a fechaInicio: %w", domain.ErrInvalidInput)
	}
	cli, err := uc.clienteRepo.GetByID(ctx, in.ClienteID)
	if err != nil {
		return nil, err
	}
	if cli == nil {
		return nil, fmt.Errorf("cliente: %w", domain.ErrNotFound)
	}
	s := &entity.Subsidio{
		ID:            uuid.New().String(),
		ClienteID:     in.ClienteID,
		Porcentaje:    in.Porcentaje,
		LimiteM3:      in.LimiteM3,
		FechaInicio:   in.FechaInicio,
		FechaTermino:  in.FechaTermino,
		NumeroDecreto: strings.TrimSpace(in.NumeroDecreto),
		Estado:        entity.EstadoActivo,
		CreatedAt:     uc.now(),
	}
	if err := uc.subsidioRepo.Create(ctx, s); err != nil {
		return nil, err
	}
	resp := toSubsidioResponse(s)
	return &resp, nil
}

// Desactivar activo → inactivo.
func (uc *SubsidioUseCase) Desactivar(ctx context.Context, id string) (*dto.SubsidioResponse, error) {
	s, err := uc.subsidioRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if s == nil {
		return nil, domain.ErrNotFound
	}
	if s.Estado != entity.EstadoActivo {
		return nil, fmt.Errorf("subsidio %s: %w", s.Estado, domain.ErrInvalidTransition)
	}
	s.Estado = entity.EstadoInactivo
	if s.FechaTermino == nil {
		t := uc.now()
		s.FechaTermino = &t
	}
	if err := uc.subsidioRepo.UpdateEstado(ctx, s); err != nil {
		return nil, err
	}
	resp := toSubsidioResponse(s)
	return &resp, nil
}

func toSubsidioResponse(s *entity.Subsidio) dto.SubsidioResponse {
	return dto.SubsidioResponse{
		ID:            s.ID,
		ClienteID:     s.ClienteID,
		Porcentaje:    s.Porcentaje,
		LimiteM3:      s.LimiteM3,
		FechaInicio:   s.FechaInicio,
		FechaTermino:  s.FechaTermino,
		NumeroDecreto: s.NumeroDecreto,
		Estado:        s.Estado,
	}
}
