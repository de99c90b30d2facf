package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Estados de la solicitud de repactación.
const (
	SolicitudPendiente = "pendiente"
	SolicitudAprobada  = "aprobada"
	SolicitudRechazada = "rechazada"
)

// Estados del convenio de repactación.
const (
	RepactacionActivo     = "activo"
	RepactacionCompletado = "completado"
	RepactacionCancelado  = "cancelado"
)

// SolicitudRepactacion pedido del cliente para repactar su deuda en cuotas.
type SolicitudRepactacion struct {
	ID                string
	ClienteID         string
	MontoDeuda        decimal.Decimal
	CuotasSolicitadas int
	Motivo            string
	Estado            string
	RevisadoPor       *string
	ComentarioAdmin   string
	CreatedAt         time.Time
	RevisadoAt        *time.Time
}

// Repactacion convenio de pago en cuotas vigente.
type Repactacion struct {
	ID            string
	SolicitudID   *string
	ClienteID     string
	MontoTotal    decimal.Decimal
	Cuotas        int
	MontoCuota    decimal.Decimal
	CuotasPagadas int
	FechaInicio   time.Time
	Estado        string
	CreatedAt     time.Time
	UpdatedAt     time.Time
}
