package ports

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/StantonMatt/coab-platform/internal/domain/entity"
	"github.com/StantonMatt/coab-platform/internal/domain/repository"
)

// TxRepos repositorios atados a una misma transacción.
type TxRepos struct {
	Clientes      repository.ClienteRepository
	Boletas       repository.BoletaRepository
	Pagos         repository.PagoRepository
	Solicitudes   repository.SolicitudRepository
	Repactaciones repository.RepactacionRepository
}

// TxRunner ejecuta fn dentro de una transacción; si fn retorna error se hace rollback.
type TxRunner interface {
	RunInTx(ctx context.Context, fn func(r TxRepos) error) error
}

// BoletaPDF datos para la representación impresa de una boleta.
type BoletaPDF struct {
	Boleta        *entity.Boleta
	Cliente       *entity.Cliente
	Direccion     *entity.Direccion // nil si el cliente no tiene dirección registrada
	MontoAdeudado decimal.Decimal
	SaldoCliente  decimal.Decimal
}

// BoletaPDFRenderer genera el PDF de una boleta.
type BoletaPDFRenderer interface {
	RenderBoleta(ctx context.Context, data BoletaPDF) ([]byte, error)
}

// ObjectStorage almacenamiento de archivos generados.
type ObjectStorage interface {
	Put(ctx context.Context, key string, body []byte, contentType string) error
	Get(ctx context.Context, key string) ([]byte, error)
}

// TokenBlacklist registro de tokens revocados (logout) hasta su expiración.
type TokenBlacklist interface {
	Revoke(ctx context.Context, jti string, ttl time.Duration) error
	IsRevoked(ctx context.Context, jti string) (bool, error)
}

// SMSSender envío de mensajes de texto.
type SMSSender interface {
	Send(ctx context.Context, telefono, mensaje string) error
}
