package domain

import "errors"

// Errores de dominio (sin dependencias externas).
var (
	ErrNotFound             = errors.New("recurso no encontrado")
	ErrInvalidInput         = errors.New("entrada inválida")
	ErrDuplicate            = errors.New("recurso duplicado")
	ErrUnauthorized         = errors.New("no autorizado")
	ErrForbidden            = errors.New("acceso denegado")
	ErrConflict             = errors.New("conflicto con el estado actual")
	ErrInvalidTransition    = errors.New("transición de estado no permitida")
	ErrAccountLocked        = errors.New("cuenta bloqueada temporalmente")
	ErrSetupRequired        = errors.New("la cuenta no tiene contraseña configurada")
	ErrSetupTokenInvalid    = errors.New("link de activación inválido o expirado")
	ErrNoPhone              = errors.New("el cliente no tiene teléfono registrado")
	ErrSolicitudPendiente   = errors.New("ya existe una solicitud de repactación pendiente")
	ErrJobEnCurso           = errors.New("ya hay un proceso en curso para el periodo")
	ErrLecturaMenorAnterior = errors.New("la lectura actual es menor que la anterior")
	ErrTarjetaInvalida      = errors.New("número de tarjeta inválido")
	ErrStorageNotConfigured = errors.New("almacenamiento de archivos no configurado")
)
