package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Estados de cuenta del cliente.
const (
	EstadoCuentaAlDia  = "AL_DIA"
	EstadoCuentaMoroso = "MOROSO"
)

// Cliente titular de un servicio de agua potable.
type Cliente struct {
	ID               string
	RUT              string // normalizado: 12345678-5
	NumeroCliente    string
	Nombre           string
	Apellido         string
	Email            string
	Telefono         string
	EstadoCuenta     string // AL_DIA, MOROSO
	PasswordHash     string // vacío hasta que el cliente activa su cuenta
	CuentaBloqueada  bool
	IntentosFallidos int
	BloqueadoHasta   *time.Time
	SetupTokenHash   string
	SetupTokenExpira *time.Time
	PrimerLogin      bool
	SaldoCorteAt     *time.Time      // último punto de consolidación de pagos
	SaldoCredito     decimal.Decimal // abono no consumido por boletas pagadas al momento del corte
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

// NombreCompleto nombre y apellido.
func (c *Cliente) NombreCompleto() string {
	if c.Apellido == "" {
		return c.Nombre
	}
	return c.Nombre + " " + c.Apellido
}

// Bloqueado indica si la cuenta está bloqueada (manual o por intentos) en el instante now.
func (c *Cliente) Bloqueado(now time.Time) bool {
	if c.CuentaBloqueada {
		return true
	}
	return c.BloqueadoHasta != nil && now.Before(*c.BloqueadoHasta)
}

// Direccion punto de servicio de un cliente. Un cliente puede tener varias.
type Direccion struct {
	ID        string
	ClienteID string
	RutaID    *string
	Direccion string
	Poblacion string
	Comuna    string
	OrdenRuta int
}
