package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// ── Clientes ──

// ClienteListItem fila del buscador de clientes.
type ClienteListItem struct {
	ID              string `json:"id"`
	RUT             string `json:"rut"`
	NumeroCliente   string `json:"numeroCliente"`
	Nombre          string `json:"nombre"`
	Email           string `json:"email,omitempty"`
	Telefono        string `json:"telefono,omitempty"`
	EstadoCuenta    string `json:"estadoCuenta"`
	CuentaBloqueada bool   `json:"cuentaBloqueada"`
	Activado        bool   `json:"activado"` // tiene contraseña
}

// ClienteFichaResponse ficha de cliente para el panel.
type ClienteFichaResponse struct {
	PerfilResponse
	CuentaBloqueada bool             `json:"cuentaBloqueada"`
	BloqueadoHasta  *time.Time       `json:"bloqueadoHasta,omitempty"`
	Activado        bool             `json:"activado"`
	Saldo           SaldoResponse    `json:"saldo"`
	UltimasBoletas  []BoletaResponse `json:"ultimasBoletas"`
}

// UpdateClienteRequest edición de cliente desde el panel.
type UpdateClienteRequest struct {
	Nombre   string `json:"nombre" validate:"required,max=200"`
	Apellido string `json:"apellido" validate:"omitempty,max=200"`
	Email    string `json:"email" validate:"omitempty,email,max=200"`
	Telefono string `json:"telefono" validate:"omitempty,min=8,max=20"`
}

// ── Pagos ──

// RegistrarPagoRequest pago manual ingresado por un operador.
type RegistrarPagoRequest struct {
	ClienteID             string          `json:"clienteId" validate:"required,uuid"`
	Monto                 decimal.Decimal `json:"monto"`
	FechaPago             *time.Time      `json:"fechaPago"`
	TipoPago              string          `json:"tipoPago" validate:"required,oneof=efectivo transferencia tarjeta webpay"`
	ReferenciaTransaccion string          `json:"referenciaTransaccion" validate:"omitempty,max=100"`
	Observaciones         string          `json:"observaciones" validate:"omitempty,max=500"`
}

// AnularPagoRequest motivo de anulación.
type AnularPagoRequest struct {
	Motivo string `json:"motivo" validate:"required,min=3,max=500"`
}

// RegistrarPagoResponse pago creado y saldo resultante.
type RegistrarPagoResponse struct {
	Pago  PagoResponse  `json:"pago"`
	Saldo SaldoResponse `json:"saldo"`
}

// ── Medidores ──

// MedidorResponse medidor de agua.
type MedidorResponse struct {
	ID               string     `json:"id"`
	DireccionID      string     `json:"direccionId"`
	ClienteID        string     `json:"clienteId,omitempty"`
	NumeroSerie      string     `json:"numeroSerie"`
	Marca            string     `json:"marca,omitempty"`
	Diametro         string     `json:"diametro,omitempty"`
	FechaInstalacion *time.Time `json:"fechaInstalacion,omitempty"`
	Estado           string     `json:"estado"`
}

// CreateMedidorRequest alta de medidor.
type CreateMedidorRequest struct {
	DireccionID      string     `json:"direccionId" validate:"required,uuid"`
	NumeroSerie      string     `json:"numeroSerie" validate:"required,max=50"`
	Marca            string     `json:"marca" validate:"omitempty,max=100"`
	Diametro         string     `json:"diametro" validate:"omitempty,max=20"`
	FechaInstalacion *time.Time `json:"fechaInstalacion"`
}

// UpdateMedidorRequest edición de medidor.
type UpdateMedidorRequest struct {
	NumeroSerie      string     `json:"numeroSerie" validate:"required,max=50"`
	Marca            string     `json:"marca" validate:"omitempty,max=100"`
	Diametro         string     `json:"diametro" validate:"omitempty,max=20"`
	FechaInstalacion *time.Time `json:"fechaInstalacion"`
}

// CambiarEstadoRequest cambio de estado genérico.
type CambiarEstadoRequest struct {
	Estado string `json:"estado" validate:"required"`
}

// RegistrarLecturaRequest lectura mensual de un medidor.
type RegistrarLecturaRequest struct {
	Periodo       string          `json:"periodo" validate:"required,periodo"`
	LecturaActual decimal.Decimal `json:"lecturaActual"`
	FechaLectura  *time.Time      `json:"fechaLectura"`
	Observacion   string          `json:"observacion" validate:"omitempty,max=500"`
}

// LecturaResponse lectura registrada.
type LecturaResponse struct {
	ID              string          `json:"id"`
	MedidorID       string          `json:"medidorId"`
	Periodo         string          `json:"periodo"`
	LecturaAnterior decimal.Decimal `json:"lecturaAnterior"`
	LecturaActual   decimal.Decimal `json:"lecturaActual"`
	ConsumoM3       decimal.Decimal `json:"consumoM3"`
	FechaLectura    time.Time       `json:"fechaLectura"`
	Observacion     string          `json:"observacion,omitempty"`
}

// ── Multas ──

// CreateMultaRequest alta de multa.
type CreateMultaRequest struct {
	ClienteID         string          `json:"clienteId" validate:"required,uuid"`
	DireccionID       *string         `json:"direccionId" validate:"omitempty,uuid"`
	Monto             decimal.Decimal `json:"monto"`
	Motivo            string          `json:"motivo" validate:"required,min=3,max=500"`
	PeriodoAplicacion string          `json:"periodoAplicacion" validate:"required,periodo"`
}

// MultaResponse multa.
type MultaResponse struct {
	ID                string          `json:"id"`
	ClienteID         string          `json:"clienteId"`
	DireccionID       *string         `json:"direccionId,omitempty"`
	Monto             decimal.Decimal `json:"monto"`
	Motivo            string          `json:"motivo"`
	Estado            string          `json:"estado"`
	PeriodoAplicacion string          `json:"periodoAplicacion"`
	CreatedAt         time.Time       `json:"createdAt"`
}

// ── Subsidios ──

// CreateSubsidioRequest alta de subsidio.
type CreateSubsidioRequest struct {
	ClienteID     string          `json:"clienteId" validate:"required,uuid"`
	Porcentaje    decimal.Decimal `json:"porcentaje"`
	LimiteM3      decimal.Decimal `json:"limiteM3"`
	FechaInicio   time.Time       `json:"fechaInicio" validate:"required"`
	FechaTermino  *time.Time      `json:"fechaTermino"`
	NumeroDecreto string          `json:"numeroDecreto" validate:"required,max=50"`
}

// SubsidioResponse subsidio.
type SubsidioResponse struct {
	ID            string          `json:"id"`
	ClienteID     string          `json:"clienteId"`
	Porcentaje    decimal.Decimal `json:"porcentaje"`
	LimiteM3      decimal.Decimal `json:"limiteM3"`
	FechaInicio   time.Time       `json:"fechaInicio"`
	FechaTermino  *time.Time      `json:"fechaTermino,omitempty"`
	NumeroDecreto string          `json:"numeroDecreto"`
	Estado        string          `json:"estado"`
}

// ── Rutas ──

// RutaRequest alta o edición de ruta.
type RutaRequest struct {
	Nombre         string `json:"nombre" validate:"required,max=100"`
	Descripcion    string `json:"descripcion" validate:"omitempty,max=500"`
	LectorAsignado string `json:"lectorAsignado" validate:"omitempty,max=200"`
	Estado         string `json:"estado" validate:"omitempty,oneof=activo inactivo"`
}

// AsignarDireccionesRequest direcciones de la ruta en orden de recorrido.
type AsignarDireccionesRequest struct {
	DireccionIDs []string `json:"direccionIds" validate:"required,min=1,dive,uuid"`
}

// RutaResponse ruta de lectura.
type RutaResponse struct {
	ID               string `json:"id"`
	Nombre           string `json:"nombre"`
	Descripcion      string `json:"descripcion,omitempty"`
	LectorAsignado   string `json:"lectorAsignado,omitempty"`
	Estado           string `json:"estado"`
	TotalDirecciones int    `json:"totalDirecciones"`
}

// ── Repactaciones ──

// RevisarSolicitudRequest comentario al aprobar o rechazar.
type RevisarSolicitudRequest struct {
	Comentario string `json:"comentario" validate:"omitempty,max=500"`
	Cuotas     int    `json:"cuotas" validate:"omitempty,min=2,max=36"` // si se omite se usan las solicitadas
}

// RepactacionResponse convenio de repactación.
type RepactacionResponse struct {
	ID            string          `json:"id"`
	SolicitudID   *string         `json:"solicitudId,omitempty"`
	ClienteID     string          `json:"clienteId"`
	MontoTotal    decimal.Decimal `json:"montoTotal"`
	Cuotas        int             `json:"cuotas"`
	MontoCuota    decimal.Decimal `json:"montoCuota"`
	MontoUltima   decimal.Decimal `json:"montoUltimaCuota"`
	CuotasPagadas int             `json:"cuotasPagadas"`
	FechaInicio   time.Time       `json:"fechaInicio"`
	Estado        string          `json:"estado"`
}

// ── Dashboard ──

// DashboardStatsResponse indicadores del panel.
type DashboardStatsResponse struct {
	TotalClientes         int64           `json:"totalClientes"`
	ClientesMorosos       int64           `json:"clientesMorosos"`
	TotalDeuda            decimal.Decimal `json:"totalDeuda"`
	PagosMesCantidad      int64           `json:"pagosMesCantidad"`
	PagosMesMonto         decimal.Decimal `json:"pagosMesMonto"`
	SolicitudesPendientes int64           `json:"solicitudesPendientes"`
}

// ── Jobs ──

// GenerarPDFsRequest inicio del proceso batch de PDFs.
type GenerarPDFsRequest struct {
	Periodo   string `json:"periodo" validate:"required,periodo"`
	Regenerar bool   `json:"regenerar"`
}

// JobResponse estado de un proceso batch.
type JobResponse struct {
	ID           string     `json:"id"`
	Periodo      string     `json:"periodo"`
	Estado       string     `json:"estado"`
	Total        int        `json:"total"`
	Procesados   int        `json:"procesados"`
	Exitosos     int        `json:"exitosos"`
	Fallidos     int        `json:"fallidos"`
	Omitidos     int        `json:"omitidos"`
	Cancelar     bool       `json:"cancelar"`
	ErrorMensaje string     `json:"errorMensaje,omitempty"`
	CreatedAt    time.Time  `json:"createdAt"`
	StartedAt    *time.Time `json:"startedAt,omitempty"`
	FinishedAt   *time.Time `json:"finishedAt,omitempty"`
}
