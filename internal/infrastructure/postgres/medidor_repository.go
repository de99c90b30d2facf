package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/StantonMatt/coab-platform/internal/domain"
	"github.com/StantonMatt/coab-platform/internal/domain/entity"
	"github.com/StantonMatt/coab-platform/internal/domain/repository"
)

var (
	_ repository.MedidorRepository = (*MedidorRepo)(nil)
	_ repository.LecturaRepository = (*LecturaRepo)(nil)
)

// El cliente del medidor se obtiene de su dirección.
const medidorSelect = `
	SELECT m.id, m.direccion_id, d.cliente_id, m.numero_serie, m.marca, m.diametro,
		m.fecha_instalacion, m.estado, m.created_at, m.updated_at
	FROM medidores m JOIN direcciones d ON d.id = m.direccion_id`

var medidoresKeyset = keyset{col: "m.numero_serie", id: "m.id", cast: "text"}

// MedidorRepo implementación de MedidorRepository.
type MedidorRepo struct {
	q Querier
}

// NewMedidorRepository construye el adaptador.
func NewMedidorRepository(q Querier) *MedidorRepo {
	return &MedidorRepo{q: q}
}

func scanMedidor(row pgx.Row) (*entity.Medidor, error) {
	var m entity.Medidor
	if err := row.Scan(&m.ID, &m.DireccionID, &m.ClienteID, &m.NumeroSerie, &m.Marca, &m.Diametro,
		&m.FechaInstalacion, &m.Estado, &m.CreatedAt, &m.UpdatedAt); err != nil {
		return nil, err
	}
	return &m, nil
}

func scanMedidores(rows pgx.Rows) ([]*entity.Medidor, error) {
	return collect(rows, func(row pgx.Rows) (*entity.Medidor, error) {
		m, err := scanMedidor(row)
		if err != nil {
			return nil, fmt.Errorf("scan medidor: %w", err)
		}
		return m, nil
	})
}

// Create persiste un medidor. El número de serie es único.
func (r *MedidorRepo) Create(ctx context.Context, m *entity.Medidor) error {
	_, err := r.q.Exec(ctx, `
		INSERT INTO medidores (id, direccion_id, numero_serie, marca, diametro, fecha_instalacion, estado, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		m.ID, m.DireccionID, m.NumeroSerie, m.Marca, m.Diametro, m.FechaInstalacion, m.Estado, m.CreatedAt, m.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicate
		}
		return fmt.Errorf("insert medidor: %w", err)
	}
	return nil
}

// GetByID obtiene un medidor.
func (r *MedidorRepo) GetByID(ctx context.Context, id string) (*entity.Medidor, error) {
	m, err := scanMedidor(r.q.QueryRow(ctx, medidorSelect+` WHERE m.id = $1`, id))
	if err != nil {
		if isNoRows(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("get medidor: %w", err)
	}
	return m, nil
}

// List página de medidores por número de serie.
func (r *MedidorRepo) List(ctx context.Context, f repository.MedidorFilter, page repository.PageQuery) ([]*entity.Medidor, error) {
	query, args, err := medidoresKeyset.paginate(medidorSelect+`
		WHERE ($1::text = '' OR d.cliente_id::text = $1::text)
		AND ($2::text = '' OR m.estado = $2::text)`, page, []any{f.ClienteID, f.Estado})
	if err != nil {
		return nil, err
	}
	rows, err := r.q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list medidores: %w", err)
	}
	return scanMedidores(rows)
}

// ListByCliente medidores de todas las direcciones del cliente.
func (r *MedidorRepo) ListByCliente(ctx context.Context, clienteID string) ([]*entity.Medidor, error) {
	rows, err := r.q.Query(ctx, medidorSelect+` WHERE d.cliente_id = $1 ORDER BY m.numero_serie`, clienteID)
	if err != nil {
		return nil, fmt.Errorf("list medidores cliente: %w", err)
	}
	return scanMedidores(rows)
}

// Update persiste datos y estado del medidor.
func (r *MedidorRepo) Update(ctx context.Context, m *entity.Medidor) error {
	_, err := r.q.Exec(ctx, `
		UPDATE medidores SET numero_serie = $2, marca = $3, diametro = $4, fecha_instalacion = $5,
			estado = $6, updated_at = $7
		WHERE id = $1`,
		m.ID, m.NumeroSerie, m.Marca, m.Diametro, m.FechaInstalacion, m.Estado, m.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicate
		}
		return fmt.Errorf("update medidor: %w", err)
	}
	return nil
}

// DireccionExists indica si la dirección existe.
func (r *MedidorRepo) DireccionExists(ctx context.Context, direccionID string) (bool, error) {
	var exists bool
	if err := r.q.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM direcciones WHERE id = $1)`, direccionID).Scan(&exists); err != nil {
		return false, fmt.Errorf("exists direccion: %w", err)
	}
	return exists, nil
}

// ── Lecturas ──

const lecturaColumns = `id, medidor_id, periodo, lectura_anterior, lectura_actual, consumo_m3, fecha_lectura, observacion, created_at`

var lecturasKeyset = keyset{col: "periodo", id: "id", cast: "text", desc: true}

// LecturaRepo implementación de LecturaRepository.
type LecturaRepo struct {
	q Querier
}

// NewLecturaRepository construye el adaptador.
func NewLecturaRepository(q Querier) *LecturaRepo {
	return &LecturaRepo{q: q}
}

func scanLectura(row pgx.Row) (*entity.Lectura, error) {
	var l entity.Lectura
	if err := row.Scan(&l.ID, &l.MedidorID, &l.Periodo, &l.LecturaAnterior, &l.LecturaActual, &l.ConsumoM3,
		&l.FechaLectura, &l.Observacion, &l.CreatedAt); err != nil {
		return nil, err
	}
	return &l, nil
}

// Create persiste una lectura. Un periodo por medidor.
func (r *LecturaRepo) Create(ctx context.Context, l *entity.Lectura) error {
	_, err := r.q.Exec(ctx, `
		INSERT INTO lecturas (id, medidor_id, periodo, lectura_anterior, lectura_actual, consumo_m3, fecha_lectura, observacion, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		l.ID, l.MedidorID, l.Periodo, l.LecturaAnterior, l.LecturaActual, l.ConsumoM3, l.FechaLectura, l.Observacion, l.CreatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicate
		}
		return fmt.Errorf("insert lectura: %w", err)
	}
	return nil
}

// GetUltima lectura del periodo más reciente; nil si el medidor no tiene lecturas.
func (r *LecturaRepo) GetUltima(ctx context.Context, medidorID string) (*entity.Lectura, error) {
	l, err := scanLectura(r.q.QueryRow(ctx, `SELECT `+lecturaColumns+` FROM lecturas
		WHERE medidor_id = $1 ORDER BY periodo DESC LIMIT 1`, medidorID))
	if err != nil {
		if isNoRows(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("get ultima lectura: %w", err)
	}
	return l, nil
}

// ListByMedidor página de lecturas, periodo más reciente primero.
func (r *LecturaRepo) ListByMedidor(ctx context.Context, medidorID string, page repository.PageQuery) ([]*entity.Lectura, error) {
	query, args, err := lecturasKeyset.paginate(`SELECT `+lecturaColumns+` FROM lecturas WHERE medidor_id = $1`,
		page, []any{medidorID})
	if err != nil {
		return nil, err
	}
	rows, err := r.q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list lecturas: %w", err)
	}
	return collect(rows, func(row pgx.Rows) (*entity.Lectura, error) {
		l, err := scanLectura(row)
		if err != nil {
			return nil, fmt.Errorf("scan lectura: %w", err)
		}
		return l, nil
	})
}
