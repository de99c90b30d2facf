package dto

import "time"

// LoginRequest login de cliente con RUT y contraseña.
type LoginRequest struct {
	RUT      string `json:"rut" validate:"required"`
	Password string `json:"password" validate:"required"`
}

// AdminLoginRequest login de usuario del panel.
type AdminLoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// LoginResponse token de acceso y datos del sujeto autenticado.
type LoginResponse struct {
	Token     string      `json:"token"`
	ExpiresAt time.Time   `json:"expiresAt"`
	Tipo      string      `json:"tipo"`
	Cliente   *ClienteRef `json:"cliente,omitempty"`
	Admin     *AdminRef   `json:"admin,omitempty"`
}

// ClienteRef datos mínimos del cliente autenticado.
type ClienteRef struct {
	ID            string `json:"id"`
	RUT           string `json:"rut"`
	NumeroCliente string `json:"numeroCliente"`
	Nombre        string `json:"nombre"`
	PrimerLogin   bool   `json:"primerLogin"`
}

// AdminRef datos mínimos del usuario del panel.
type AdminRef struct {
	ID     string `json:"id"`
	Email  string `json:"email"`
	Nombre string `json:"nombre"`
	Role   string `json:"role"`
}

// SetupInfoResponse resultado de validar un token de activación.
type SetupInfoResponse struct {
	Valido bool   `json:"valido"`
	Nombre string `json:"nombre"`
	RUT    string `json:"rut"`
}

// SetupPasswordRequest contraseña nueva definida con el link de activación.
type SetupPasswordRequest struct {
	Password string `json:"password" validate:"required,min=8,max=72"`
}

// SetupLinkResponse link de activación generado por un administrador.
type SetupLinkResponse struct {
	Link      string    `json:"link"`
	ExpiresAt time.Time `json:"expiresAt"`
	Enviado   bool      `json:"enviado"` // true si se envió por SMS
}
