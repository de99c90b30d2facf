package repository

import (
	"context"

	"github.com/StantonMatt/coab-platform/internal/domain/entity"
)

// BoletaRepository puerto de persistencia para boletas.
type BoletaRepository interface {
	GetByID(ctx context.Context, id string) (*entity.Boleta, error)
	// ListByCliente página de boletas ordenadas por fecha de emisión descendente.
	ListByCliente(ctx context.Context, clienteID string, page PageQuery) ([]*entity.Boleta, error)
	// ListAllByCliente todas las boletas del cliente (cálculo de saldo).
	ListAllByCliente(ctx context.Context, clienteID string) ([]*entity.Boleta, error)
	ListByPeriodo(ctx context.Context, periodo string) ([]*entity.Boleta, error)
	UpdateEstados(ctx context.Context, estados map[string]string) error
	SetPDFKey(ctx context.Context, id, key string) error
}
