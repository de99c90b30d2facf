package entity

import "time"

// Roles válidos para UsuarioAdmin.
const (
	RoleAdmin      = "admin"
	RoleSupervisor = "supervisor"
	RoleOperador   = "operador"
	RoleCliente    = "cliente"
)

// UsuarioAdmin usuario interno de la empresa sanitaria.
type UsuarioAdmin struct {
	ID           string
	Email        string
	Nombre       string
	PasswordHash string
	Role         string
	Activo       bool
	CreatedAt    time.Time
	UpdatedAt    time.Time
}
