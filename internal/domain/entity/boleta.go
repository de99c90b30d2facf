package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Estados de una boleta.
const (
	BoletaPendiente = "pendiente"
	BoletaParcial   = "parcial"
	BoletaPagada    = "pagada"
)

// Boleta documento de cobro mensual del servicio.
type Boleta struct {
	ID                  string
	ClienteID           string
	Periodo             string // YYYY-MM
	FechaEmision        time.Time
	FechaVencimiento    time.Time
	ConsumoM3           decimal.Decimal
	CargoFijo           decimal.Decimal
	CargoAgua           decimal.Decimal
	CargoAlcantarillado decimal.Decimal
	CargoTratamiento    decimal.Decimal
	MontoTotalMes       *decimal.Decimal // nil en boletas migradas del sistema anterior
	MontoTotal          decimal.Decimal  // acumulado (incluye saldo anterior)
	Estado              string
	PDFKey              string
	CreatedAt           time.Time
}

// MontoBoleta monto a considerar para la boleta: monto_total_mes y, si no existe, monto_total.
// Dashboard, detalle y ficha de admin dependen de este fallback.
func (b *Boleta) MontoBoleta() decimal.Decimal {
	if b.MontoTotalMes != nil {
		return *b.MontoTotalMes
	}
	return b.MontoTotal
}

// Impaga boleta pendiente o parcialmente pagada.
func (b *Boleta) Impaga() bool {
	return b.Estado == BoletaPendiente || b.Estado == BoletaParcial
}
