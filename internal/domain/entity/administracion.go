package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Estados de multa.
const (
	MultaPendiente = "pendiente"
	MultaAplicada  = "aplicada"
	MultaCancelada = "cancelada"
)

// Multa cargo adicional por infracción (conexión irregular, manipulación de medidor, etc.).
type Multa struct {
	ID                string
	ClienteID         string
	DireccionID       *string
	Monto             decimal.Decimal
	Motivo            string
	Estado            string
	PeriodoAplicacion string
	CreatedAt         time.Time
	UpdatedAt         time.Time
}

// Estados genéricos activo/inactivo (subsidios, rutas).
const (
	EstadoActivo   = "activo"
	EstadoInactivo = "inactivo"
)

// Subsidio descuento estatal sobre el consumo hasta un límite de m3.
type Subsidio struct {
	ID            string
	ClienteID     string
	Porcentaje    decimal.Decimal
	LimiteM3      decimal.Decimal
	FechaInicio   time.Time
	FechaTermino  *time.Time
	NumeroDecreto string
	Estado        string
	CreatedAt     time.Time
}

// Ruta recorrido de lectura de medidores.
type Ruta struct {
	ID               string
	Nombre           string
	Descripcion      string
	LectorAsignado   string
	Estado           string
	TotalDirecciones int
	CreatedAt        time.Time
}

// Estados de medidor.
const (
	MedidorActivo   = "activo"
	MedidorInactivo = "inactivo"
	MedidorRetirado = "retirado"
)

// Medidor instalado en una dirección.
type Medidor struct {
	ID               string
	DireccionID      string
	ClienteID        string // denormalizado desde la dirección para listados
	NumeroSerie      string
	Marca            string
	Diametro         string
	FechaInstalacion *time.Time
	Estado           string
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

// Lectura registro mensual del medidor.
type Lectura struct {
	ID              string
	MedidorID       string
	Periodo         string
	LecturaAnterior decimal.Decimal
	LecturaActual   decimal.Decimal
	ConsumoM3       decimal.Decimal
	FechaLectura    time.Time
	Observacion     string
	CreatedAt       time.Time
}

// Autopago inscripción de pago automático con tarjeta. Nunca se guarda el número completo.
type Autopago struct {
	ClienteID    string
	Activo       bool
	MarcaTarjeta string
	Ultimos4     string
	TokenTarjeta string
	DiaCobro     int
	UpdatedAt    time.Time
}
