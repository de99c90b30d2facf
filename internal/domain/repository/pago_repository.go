package repository

import (
	"context"

	"github.com/StantonMatt/coab-platform/internal/domain/entity"
)

// PagoRepository puerto de persistencia para pagos.
type PagoRepository interface {
	Create(ctx context.Context, p *entity.Pago) error
	GetByID(ctx context.Context, id string) (*entity.Pago, error)
	// ListByCliente página de pagos, más recientes primero.
	ListByCliente(ctx context.Context, clienteID string, page PageQuery) ([]*entity.Pago, error)
	ListAprobadosByCliente(ctx context.Context, clienteID string) ([]*entity.Pago, error)
	UpdateEstado(ctx context.Context, id, estado, observaciones string) error
}
