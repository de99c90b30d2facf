package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// DireccionResponse dirección de servicio.
type DireccionResponse struct {
	ID        string  `json:"id"`
	Direccion string  `json:"direccion"`
	Poblacion string  `json:"poblacion"`
	Comuna    string  `json:"comuna"`
	RutaID    *string `json:"rutaId,omitempty"`
	OrdenRuta int     `json:"ordenRuta"`
}

// PerfilResponse perfil del cliente con sus direcciones y medidores.
type PerfilResponse struct {
	ID            string              `json:"id"`
	RUT           string              `json:"rut"`
	NumeroCliente string              `json:"numeroCliente"`
	Nombre        string              `json:"nombre"`
	Apellido      string              `json:"apellido"`
	Email         string              `json:"email"`
	Telefono      string              `json:"telefono"`
	EstadoCuenta  string              `json:"estadoCuenta"`
	Direcciones   []DireccionResponse `json:"direcciones"`
	Medidores     []MedidorResponse   `json:"medidores"`
}

// UpdateContactoRequest actualización de datos de contacto por el propio cliente.
type UpdateContactoRequest struct {
	Email    string `json:"email" validate:"omitempty,email,max=200"`
	Telefono string `json:"telefono" validate:"omitempty,min=8,max=20"`
}

// SaldoResponse saldo del cliente.
type SaldoResponse struct {
	Saldo          decimal.Decimal `json:"saldo"`
	EstadoCuenta   string          `json:"estadoCuenta"`
	FechaProxVto   *time.Time      `json:"fechaVencimiento,omitempty"`
	BoletasImpagas int             `json:"boletasImpagas"`
}

// BoletaResponse boleta con el monto adeudado derivado.
type BoletaResponse struct {
	ID                 string          `json:"id"`
	Periodo            string          `json:"periodo"`
	FechaEmision       time.Time       `json:"fechaEmision"`
	FechaVencimiento   time.Time       `json:"fechaVencimiento"`
	ConsumoM3          decimal.Decimal `json:"consumoM3"`
	MontoTotal         decimal.Decimal `json:"montoTotal"`
	Monto              decimal.Decimal `json:"monto"` // monto_total_mes con fallback a monto_total
	Estado             string          `json:"estado"`
	MontoAdeudado      decimal.Decimal `json:"montoAdeudado"`
	ParcialmentePagada bool            `json:"parcialmentePagada"`
	TienePDF           bool            `json:"tienePdf"`
}

// BoletaDetalleResponse detalle con el desglose de cargos.
type BoletaDetalleResponse struct {
	BoletaResponse
	CargoFijo           decimal.Decimal `json:"cargoFijo"`
	CargoAgua           decimal.Decimal `json:"cargoAgua"`
	CargoAlcantarillado decimal.Decimal `json:"cargoAlcantarillado"`
	CargoTratamiento    decimal.Decimal `json:"cargoTratamiento"`
}

// PagoResponse pago registrado.
type PagoResponse struct {
	ID                    string          `json:"id"`
	Monto                 decimal.Decimal `json:"monto"`
	FechaPago             time.Time       `json:"fechaPago"`
	TipoPago              string          `json:"tipoPago"`
	Estado                string          `json:"estado"`
	ReferenciaTransaccion string          `json:"referenciaTransaccion,omitempty"`
	Observaciones         string          `json:"observaciones,omitempty"`
}

// AutopagoResponse estado de la inscripción de pago automático.
type AutopagoResponse struct {
	Activo       bool       `json:"activo"`
	MarcaTarjeta string     `json:"marcaTarjeta,omitempty"`
	Ultimos4     string     `json:"ultimos4,omitempty"`
	DiaCobro     int        `json:"diaCobro,omitempty"`
	UpdatedAt    *time.Time `json:"updatedAt,omitempty"`
}

// AutopagoRequest inscripción de tarjeta para pago automático.
type AutopagoRequest struct {
	NumeroTarjeta string `json:"numeroTarjeta" validate:"required,numeric,min=13,max=19"`
	DiaCobro      int    `json:"diaCobro" validate:"required,min=1,max=28"`
}

// CreateSolicitudRequest solicitud de repactación creada por el cliente.
type CreateSolicitudRequest struct {
	CuotasSolicitadas int    `json:"cuotasSolicitadas" validate:"required,min=2,max=36"`
	Motivo            string `json:"motivo" validate:"required,min=5,max=500"`
}

// SolicitudResponse solicitud de repactación.
type SolicitudResponse struct {
	ID                string          `json:"id"`
	ClienteID         string          `json:"clienteId"`
	MontoDeuda        decimal.Decimal `json:"montoDeuda"`
	CuotasSolicitadas int             `json:"cuotasSolicitadas"`
	Motivo            string          `json:"motivo"`
	Estado            string          `json:"estado"`
	ComentarioAdmin   string          `json:"comentarioAdmin,omitempty"`
	CreatedAt         time.Time       `json:"createdAt"`
	RevisadoAt        *time.Time      `json:"revisadoAt,omitempty"`
}
