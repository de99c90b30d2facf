package pagination

import (
	"time"

	"github.com/StantonMatt/coab-platform/internal/domain/entity"
	"github.com/StantonMatt/coab-platform/internal/domain/repository"
)

// Claves de cursor por listado. Deben coincidir con la columna de orden del repositorio.

func timeKey(t time.Time, id string) repository.CursorKey {
	return repository.CursorKey{Key: t.UTC().Format(time.RFC3339Nano), ID: id}
}

// BoletaKey orden por fecha de emisión.
func BoletaKey(b *entity.Boleta) repository.CursorKey { return timeKey(b.FechaEmision, b.ID) }

// PagoKey orden por fecha de pago.
func PagoKey(p *entity.Pago) repository.CursorKey { return timeKey(p.FechaPago, p.ID) }

// ClienteKey orden por número de cliente.
func ClienteKey(c *entity.Cliente) repository.CursorKey {
	return repository.CursorKey{Key: c.NumeroCliente, ID: c.ID}
}

// MedidorKey orden por número de serie.
func MedidorKey(m *entity.Medidor) repository.CursorKey {
	return repository.CursorKey{Key: m.NumeroSerie, ID: m.ID}
}

// LecturaKey orden por periodo.
func LecturaKey(l *entity.Lectura) repository.CursorKey {
	return repository.CursorKey{Key: l.Periodo, ID: l.ID}
}

// MultaKey orden por fecha de creación.
func MultaKey(m *entity.Multa) repository.CursorKey { return timeKey(m.CreatedAt, m.ID) }

// SubsidioKey orden por fecha de creación.
func SubsidioKey(s *entity.Subsidio) repository.CursorKey { return timeKey(s.CreatedAt, s.ID) }

// SolicitudKey orden por fecha de creación.
func SolicitudKey(s *entity.SolicitudRepactacion) repository.CursorKey {
	return timeKey(s.CreatedAt, s.ID)
}

// RepactacionKey orden por fecha de creación.
func RepactacionKey(r *entity.Repactacion) repository.CursorKey { return timeKey(r.CreatedAt, r.ID) }
