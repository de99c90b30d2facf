package repository

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/StantonMatt/coab-platform/internal/domain/entity"
)

// ClienteFilter filtros de búsqueda de clientes (panel admin).
type ClienteFilter struct {
	Query        string // RUT, nombre o número de cliente; sin acentos ni mayúsculas
	EstadoCuenta string
}

// ClienteRepository puerto de persistencia para Cliente y sus direcciones.
type ClienteRepository interface {
	GetByID(ctx context.Context, id string) (*entity.Cliente, error)
	// LockByID igual que GetByID pero bloquea la fila hasta el fin de la transacción.
	LockByID(ctx context.Context, id string) (*entity.Cliente, error)
	GetByRUT(ctx context.Context, rut string) (*entity.Cliente, error)
	GetBySetupTokenHash(ctx context.Context, hash string) (*entity.Cliente, error)
	Search(ctx context.Context, f ClienteFilter, page PageQuery) ([]*entity.Cliente, error)
	Update(ctx context.Context, c *entity.Cliente) error
	UpdateContacto(ctx context.Context, id, email, telefono string, now time.Time) error
	// RegistrarFallo incrementa los intentos fallidos de forma atómica y bloquea
	// hasta `hasta` al llegar a max. Devuelve si la cuenta quedó bloqueada.
	RegistrarFallo(ctx context.Context, id string, max int, hasta time.Time) (bool, error)
	RegistrarIngreso(ctx context.Context, id string) error
	GuardarSetupToken(ctx context.Context, id, tokenHash string, expira time.Time) error
	// DefinirPassword solo aplica si tokenHash sigue siendo el token vigente.
	DefinirPassword(ctx context.Context, id, tokenHash, passwordHash string) error
	Desbloquear(ctx context.Context, id string) error
	UpdateSaldo(ctx context.Context, id, estadoCuenta string, corteAt *time.Time, credito decimal.Decimal) error
	ListDirecciones(ctx context.Context, clienteID string) ([]*entity.Direccion, error)
}
