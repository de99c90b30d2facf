package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/StantonMatt/coab-platform/internal/domain"
	"github.com/StantonMatt/coab-platform/internal/domain/entity"
	"github.com/StantonMatt/coab-platform/internal/domain/repository"
)

var _ repository.PagoRepository = (*PagoRepo)(nil)

const pagoColumns = `
	id, cliente_id, monto, fecha_pago, tipo_pago, estado,
	referencia_transaccion, observaciones, operador_id, created_at`

var pagosKeyset = keyset{col: "fecha_pago", id: "id", cast: "timestamptz", desc: true}

// PagoRepo implementación de PagoRepository.
type PagoRepo struct {
	q Querier
}

// NewPagoRepository construye el adaptador.
func NewPagoRepository(q Querier) *PagoRepo {
	return &PagoRepo{q: q}
}

func scanPago(row pgx.Row) (*entity.Pago, error) {
	var (
		p   entity.Pago
		ref *string
	)
	err := row.Scan(
		&p.ID, &p.ClienteID, &p.Monto, &p.FechaPago, &p.TipoPago, &p.Estado,
		&ref, &p.Observaciones, &p.OperadorID, &p.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	p.ReferenciaTransaccion = deref(ref)
	return &p, nil
}

func scanPagos(rows pgx.Rows) ([]*entity.Pago, error) {
	return collect(rows, func(row pgx.Rows) (*entity.Pago, error) {
		p, err := scanPago(row)
		if err != nil {
			return nil, fmt.Errorf("scan pago: %w", err)
		}
		return p, nil
	})
}

// Create persiste un pago.
func (r *PagoRepo) Create(ctx context.Context, p *entity.Pago) error {
	_, err := r.q.Exec(ctx, `
		INSERT INTO pagos (id, cliente_id, monto, fecha_pago, tipo_pago, estado,
			referencia_transaccion, observaciones, operador_id, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`,
		p.ID, p.ClienteID, p.Monto, p.FechaPago, p.TipoPago, p.Estado,
		nullIfEmpty(p.ReferenciaTransaccion), p.Observaciones, p.OperadorID, p.CreatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicate
		}
		if isForeignKeyViolation(err) {
			return fmt.Errorf("cliente u operador inexistente: %w", domain.ErrNotFound)
		}
		return fmt.Errorf("insert pago: %w", err)
	}
	return nil
}

// GetByID obtiene un pago por ID.
func (r *PagoRepo) GetByID(ctx context.Context, id string) (*entity.Pago, error) {
	p, err := scanPago(r.q.QueryRow(ctx, `SELECT `+pagoColumns+` FROM pagos WHERE id = $1`, id))
	if err != nil {
		if isNoRows(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("get pago: %w", err)
	}
	return p, nil
}

// ListByCliente página de pagos, más recientes primero.
func (r *PagoRepo) ListByCliente(ctx context.Context, clienteID string, page repository.PageQuery) ([]*entity.Pago, error) {
	query, args, err := pagosKeyset.paginate(
		`SELECT `+pagoColumns+` FROM pagos WHERE cliente_id = $1`, page, []any{clienteID})
	if err != nil {
		return nil, err
	}
	rows, err := r.q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list pagos: %w", err)
	}
	return scanPagos(rows)
}

// ListAprobadosByCliente pagos aprobados del cliente (cálculo de saldo).
func (r *PagoRepo) ListAprobadosByCliente(ctx context.Context, clienteID string) ([]*entity.Pago, error) {
	rows, err := r.q.Query(ctx, `SELECT `+pagoColumns+` FROM pagos
		WHERE cliente_id = $1 AND estado = $2 ORDER BY fecha_pago DESC, id DESC`,
		clienteID, entity.PagoAprobado)
	if err != nil {
		return nil, fmt.Errorf("list pagos aprobados: %w", err)
	}
	return scanPagos(rows)
}

// UpdateEstado cambia el estado de un pago aprobado y reemplaza sus observaciones.
// Si el pago ya no está aprobado devuelve ErrInvalidTransition.
func (r *PagoRepo) UpdateEstado(ctx context.Context, id, estado, observaciones string) error {
	tag, err := r.q.Exec(ctx, `
		UPDATE pagos SET estado = $2, observaciones = $3
		WHERE id = $1 AND estado = 'aprobado'`, id, estado, observaciones)
	if err != nil {
		return fmt.Errorf("update estado pago: %w", err)
	}
	return expectOne(tag, "pago ya no está aprobado")
}
