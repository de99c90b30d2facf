// Package repactacion define las transiciones válidas de solicitudes y convenios de repactación.
package repactacion

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/StantonMatt/coab-platform/internal/domain"
	"github.com/StantonMatt/coab-platform/internal/domain/entity"
)

var solicitudTransiciones = map[string][]string{
	entity.SolicitudPendiente: {entity.SolicitudAprobada, entity.SolicitudRechazada},
}

var convenioTransiciones = map[string][]string{
	entity.RepactacionActivo: {entity.RepactacionCompletado, entity.RepactacionCancelado},
}

func permitido(tabla map[string][]string, desde, hacia string) bool {
	for _, e := range tabla[desde] {
		if e == hacia {
			return true
		}
	}
	return false
}

// TransicionarSolicitud cambia el estado de la solicitud si la transición es válida.
func TransicionarSolicitud(s *entity.SolicitudRepactacion, hacia, revisor, comentario string, now time.Time) error {
	if !permitido(solicitudTransiciones, s.Estado, hacia) {
		return fmt.Errorf("solicitud %s → %s: %w", s.Estado, hacia, domain.ErrInvalidTransition)
	}
	s.Estado = hacia
	s.RevisadoPor = &revisor
	s.ComentarioAdmin = comentario
	s.RevisadoAt = &now
	return nil
}

// TransicionarConvenio cambia el estado del convenio si la transición es válida.
func TransicionarConvenio(r *entity.Repactacion, hacia string, now time.Time) error {
	if !permitido(convenioTransiciones, r.Estado, hacia) {
		return fmt.Errorf("repactación %s → %s: %w", r.Estado, hacia, domain.ErrInvalidTransition)
	}
	r.Estado = hacia
	if hacia == entity.RepactacionCompletado {
		r.CuotasPagadas = r.Cuotas
	}
	r.UpdatedAt = now
	return nil
}

// CalcularCuota devuelve el valor de cada cuota truncado a pesos y el de la
// última, que absorbe la diferencia para que la suma calce con el total.
// Cada cuota debe ser de al menos un peso.
func CalcularCuota(total decimal.Decimal, cuotas int) (cuota, ultima decimal.Decimal, err error) {
	if cuotas < 1 {
		return decimal.Zero, decimal.Zero, fmt.Errorf("cuotas debe ser mayor a 0: %w", domain.ErrInvalidInput)
	}
	if !total.IsPositive() {
		return decimal.Zero, decimal.Zero, fmt.Errorf("monto debe ser positivo: %w", domain.ErrInvalidInput)
	}
	n := decimal.NewFromInt(int64(cuotas))
	if total.LessThan(n) {
		return decimal.Zero, decimal.Zero, fmt.Errorf("monto %s no alcanza para %d cuotas: %w", total, cuotas, domain.ErrInvalidInput)
	}
	cuota = total.Div(n).Floor()
	ultima = total.Sub(cuota.Mul(n.Sub(decimal.NewFromInt(1))))
	return cuota, ultima, nil
}
