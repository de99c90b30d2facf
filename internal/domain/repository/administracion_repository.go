package repository

import (
	"context"

	"github.com/StantonMatt/coab-platform/internal/domain/entity"
)

// MultaFilter filtros del listado de multas.
type MultaFilter struct {
	Estado    string
	ClienteID string
}

// MultaRepository puerto de persistencia para multas.
type MultaRepository interface {
	Create(ctx context.Context, m *entity.Multa) error
	GetByID(ctx context.Context, id string) (*entity.Multa, error)
	List(ctx context.Context, f MultaFilter, page PageQuery) ([]*entity.Multa, error)
	UpdateEstado(ctx context.Context, m *entity.Multa) error
}

// SubsidioRepository puerto de persistencia para subsidios.
type SubsidioRepository interface {
	Create(ctx context.Context, s *entity.Subsidio) error
	GetByID(ctx context.Context, id string) (*entity.Subsidio, error)
	List(ctx context.Context, estado string, page PageQuery) ([]*entity.Subsidio, error)
	UpdateEstado(ctx context.Context, s *entity.Subsidio) error
}

// RutaRepository puerto de persistencia para rutas de lectura.
type RutaRepository interface {
	Create(ctx context.Context, r *entity.Ruta) error
	GetByID(ctx context.Context, id string) (*entity.Ruta, error)
	List(ctx context.Context) ([]*entity.Ruta, error)
	Update(ctx context.Context, r *entity.Ruta) error
	// AsignarDirecciones asigna las direcciones a la ruta en el orden recibido.
	AsignarDirecciones(ctx context.Context, rutaID string, direccionIDs []string) error
}

// MedidorFilter filtros del listado de medidores.
type MedidorFilter struct {
	ClienteID string
	Estado    string
}

// MedidorRepository puerto de persistencia para medidores.
type MedidorRepository interface {
	Create(ctx context.Context, m *entity.Medidor) error
	GetByID(ctx context.Context, id string) (*entity.Medidor, error)
	List(ctx context.Context, f MedidorFilter, page PageQuery) ([]*entity.Medidor, error)
	ListByCliente(ctx context.Context, clienteID string) ([]*entity.Medidor, error)
	Update(ctx context.Context, m *entity.Medidor) error
	DireccionExists(ctx context.Context, direccionID string) (bool, error)
}

// LecturaRepository puerto de persistencia para lecturas de medidor.
type LecturaRepository interface {
	Create(ctx context.Context, l *entity.Lectura) error
	GetUltima(ctx context.Context, medidorID string) (*entity.Lectura, error)
	ListByMedidor(ctx context.Context, medidorID string, page PageQuery) ([]*entity.Lectura, error)
}

// AutopagoRepository puerto de persistencia para la inscripción de pago automático.
type AutopagoRepository interface {
	Get(ctx context.Context, clienteID string) (*entity.Autopago, error)
	Upsert(ctx context.Context, a *entity.Autopago) error
}
