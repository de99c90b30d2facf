package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/StantonMatt/coab-platform/internal/domain/entity"
	"github.com/StantonMatt/coab-platform/internal/domain/repository"
)

var _ repository.BoletaRepository = (*BoletaRepo)(nil)

const boletaColumns = `
	id, cliente_id, periodo, fecha_emision, fecha_vencimiento, consumo_m3,
	cargo_fijo, cargo_agua, cargo_alcantarillado, cargo_tratamiento,
	monto_total_mes, monto_total, estado, pdf_key, created_at`

var boletasKeyset = keyset{col: "fecha_emision", id: "id", cast: "timestamptz", desc: true}

// BoletaRepo implementación de BoletaRepository.
type BoletaRepo struct {
	q Querier
}

// NewBoletaRepository construye el adaptador.
func NewBoletaRepository(q Querier) *BoletaRepo {
	return &BoletaRepo{q: q}
}

func scanBoleta(row pgx.Row) (*entity.Boleta, error) {
	var (
		b      entity.Boleta
		pdfKey *string
	)
	err := row.Scan(
		&b.ID, &b.ClienteID, &b.Periodo, &b.FechaEmision, &b.FechaVencimiento, &b.ConsumoM3,
		&b.CargoFijo, &b.CargoAgua, &b.CargoAlcantarillado, &b.CargoTratamiento,
		&b.MontoTotalMes, &b.MontoTotal, &b.Estado, &pdfKey, &b.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	b.PDFKey = deref(pdfKey)
	return &b, nil
}

func scanBoletas(rows pgx.Rows) ([]*entity.Boleta, error) {
	return collect(rows, func(row pgx.Rows) (*entity.Boleta, error) {
		b, err := scanBoleta(row)
		if err != nil {
			return nil, fmt.Errorf("scan boleta: %w", err)
		}
		return b, nil
	})
}

// GetByID obtiene una boleta por ID.
func (r *BoletaRepo) GetByID(ctx context.Context, id string) (*entity.Boleta, error) {
	b, err := scanBoleta(r.q.QueryRow(ctx, `SELECT `+boletaColumns+` FROM boletas WHERE id = $1`, id))
	if err != nil {
		if isNoRows(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("get boleta: %w", err)
	}
	return b, nil
}

// ListByCliente página de boletas, más recientes primero.
func (r *BoletaRepo) ListByCliente(ctx context.Context, clienteID string, page repository.PageQuery) ([]*entity.Boleta, error) {
	query, args, err := boletasKeyset.paginate(
		`SELECT `+boletaColumns+` FROM boletas WHERE cliente_id = $1`, page, []any{clienteID})
	if err != nil {
		return nil, err
	}
	rows, err := r.q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list boletas: %w", err)
	}
	return scanBoletas(rows)
}

// ListAllByCliente todas las boletas del cliente, de la más antigua a la más reciente.
func (r *BoletaRepo) ListAllByCliente(ctx context.Context, clienteID string) ([]*entity.Boleta, error) {
	rows, err := r.q.Query(ctx,
		`SELECT `+boletaColumns+` FROM boletas WHERE cliente_id = $1 ORDER BY fecha_emision, id`, clienteID)
	if err != nil {
		return nil, fmt.Errorf("list all boletas: %w", err)
	}
	return scanBoletas(rows)
}

// ListByPeriodo boletas emitidas en el periodo, ordenadas por cliente.
func (r *BoletaRepo) ListByPeriodo(ctx context.Context, periodo string) ([]*entity.Boleta, error) {
	rows, err := r.q.Query(ctx,
		`SELECT `+boletaColumns+` FROM boletas WHERE periodo = $1 ORDER BY cliente_id, id`, periodo)
	if err != nil {
		return nil, fmt.Errorf("list boletas periodo: %w", err)
	}
	return scanBoletas(rows)
}

// UpdateEstados cambia el estado de varias boletas en un solo batch.
func (r *BoletaRepo) UpdateEstados(ctx context.Context, estados map[string]string) error {
	if len(estados) == 0 {
		return nil
	}
	ids := make([]string, 0, len(estados))
	values := make([]string, 0, len(estados))
	for id, estado := range estados {
		ids = append(ids, id)
		values = append(values, estado)
	}
	_, err := r.q.Exec(ctx, `
		UPDATE boletas b SET estado = u.estado
		FROM unnest($1::uuid[], $2::text[]) AS u(id, estado)
		WHERE b.id = u.id`, ids, values)
	if err != nil {
		return fmt.Errorf("update estados boletas: %w", err)
	}
	return nil
}

// SetPDFKey registra la ubicación del PDF almacenado.
func (r *BoletaRepo) SetPDFKey(ctx context.Context, id, key string) error {
	_, err := r.q.Exec(ctx, `UPDATE boletas SET pdf_key = $2 WHERE id = $1`, id, nullIfEmpty(key))
	if err != nil {
		return fmt.Errorf("set pdf_key: %w", err)
	}
	return nil
}
