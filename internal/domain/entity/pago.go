package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Tipos de pago.
const (
	PagoEfectivo      = "efectivo"
	PagoTransferencia = "transferencia"
	PagoTarjeta       = "tarjeta"
	PagoWebpay        = "webpay"
	PagoAutopago      = "autopago"
)

// Estados de un pago.
const (
	PagoAprobado  = "aprobado"
	PagoPendiente = "pendiente"
	PagoRechazado = "rechazado"
	PagoAnulado   = "anulado"
)

// Pago abono de un cliente. Se imputa contra la deuda total, no contra una boleta específica.
type Pago struct {
	ID                    string
	ClienteID             string
	Monto                 decimal.Decimal
	FechaPago             time.Time
	TipoPago              string
	Estado                string
	ReferenciaTransaccion string
	Observaciones         string
	OperadorID            *string
	CreatedAt             time.Time
}
