package repository

import (
	"context"

	"github.com/StantonMatt/coab-platform/internal/domain/entity"
)

// SolicitudRepository puerto de persistencia para solicitudes de repactación.
type SolicitudRepository interface {
	Create(ctx context.Context, s *entity.SolicitudRepactacion) error
	GetByID(ctx context.Context, id string) (*entity.SolicitudRepactacion, error)
	ExistsPendiente(ctx context.Context, clienteID string) (bool, error)
	ListByCliente(ctx context.Context, clienteID string) ([]*entity.SolicitudRepactacion, error)
	List(ctx context.Context, estado string, page PageQuery) ([]*entity.SolicitudRepactacion, error)
	UpdateRevision(ctx context.Context, s *entity.SolicitudRepactacion) error
}

// RepactacionRepository puerto de persistencia para convenios de repactación.
type RepactacionRepository interface {
	Create(ctx context.Context, r *entity.Repactacion) error
	GetByID(ctx context.Context, id string) (*entity.Repactacion, error)
	List(ctx context.Context, estado string, page PageQuery) ([]*entity.Repactacion, error)
	UpdateEstado(ctx context.Context, r *entity.Repactacion) error
}
