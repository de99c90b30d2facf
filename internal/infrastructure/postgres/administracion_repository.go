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
	_ repository.MultaRepository    = (*MultaRepo)(nil)
	_ repository.SubsidioRepository = (*SubsidioRepo)(nil)
	_ repository.RutaRepository     = (*RutaRepo)(nil)
	_ repository.AutopagoRepository = (*AutopagoRepo)(nil)
)

// ── Multas ──

const multaColumns = `id, cliente_id, direccion_id, monto, motivo, estado, periodo_aplicacion, created_at, updated_at`

var multasKeyset = keyset{col: "created_at", id: "id", cast: "timestamptz", desc: true}

// MultaRepo implementación de MultaRepository.
type MultaRepo struct {
	q Querier
}

// NewMultaRepository construye el adaptador.
func NewMultaRepository(q Querier) *MultaRepo {
	return &MultaRepo{q: q}
}

func scanMulta(row pgx.Row) (*entity.Multa, error) {
	var m entity.Multa
	if err := row.Scan(&m.ID, &m.ClienteID, &m.DireccionID, &m.Monto, &m.Motivo, &m.Estado,
		&m.PeriodoAplicacion, &m.CreatedAt, &m.UpdatedAt); err != nil {
		return nil, err
	}
	return &m, nil
}

// Create persiste una multa.
func (r *MultaRepo) Create(ctx context.Context, m *entity.Multa) error {
	_, err := r.q.Exec(ctx, `
		INSERT INTO multas (id, cliente_id, direccion_id, monto, motivo, estado, periodo_aplicacion, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		m.ID, m.ClienteID, m.DireccionID, m.Monto, m.Motivo, m.Estado, m.PeriodoAplicacion, m.CreatedAt, m.UpdatedAt,
	)
	if err != nil {
		if isForeignKeyViolation(err) {
			return fmt.Errorf("cliente o dirección inexistente: %w", domain.ErrNotFound)
		}
		return fmt.Errorf("insert multa: %w", err)
	}
	return nil
}

// GetByID obtiene una multa.
func (r *MultaRepo) GetByID(ctx context.Context, id string) (*entity.Multa, error) {
	m, err := scanMulta(r.q.QueryRow(ctx, `SELECT `+multaColumns+` FROM multas WHERE id = $1`, id))
	if err != nil {
		if isNoRows(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("get multa: %w", err)
	}
	return m, nil
}

// List página de multas filtradas por estado y cliente.
func (r *MultaRepo) List(ctx context.Context, f repository.MultaFilter, page repository.PageQuery) ([]*entity.Multa, error) {
	query, args, err := multasKeyset.paginate(`SELECT `+multaColumns+` FROM multas
		WHERE ($1::text = '' OR estado = $1::text)
		AND ($2::text = '' OR cliente_id::text = $2::text)`, page, []any{f.Estado, f.ClienteID})
	if err != nil {
		return nil, err
	}
	rows, err := r.q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list multas: %w", err)
	}
	return collect(rows, func(row pgx.Rows) (*entity.Multa, error) {
		m, err := scanMulta(row)
		if err != nil {
			return nil, fmt.Errorf("scan multa: %w", err)
		}
		return m, nil
	})
}

// UpdateEstado persiste el estado de la multa.
func (r *MultaRepo) UpdateEstado(ctx context.Context, m *entity.Multa) error {
	tag, err := r.q.Exec(ctx, `UPDATE multas SET estado = $2, updated_at = $3 WHERE id = $1 AND estado = 'pendiente'`,
		m.ID, m.Estado, m.UpdatedAt)
	if err != nil {
		return fmt.Errorf("update multa: %w", err)
	}
	return expectOne(tag, "multa ya resuelta")
}

// ── Subsidios ──

const subsidioColumns = `id, cliente_id, porcentaje, limite_m3, fecha_inicio, fecha_termino, numero_decreto, estado, created_at`

var subsidiosKeyset = keyset{col: "created_at", id: "id", cast: "timestamptz", desc: true}

// SubsidioRepo implementación de SubsidioRepository.
type SubsidioRepo struct {
	q Querier
}

// NewSubsidioRepository construye el adaptador.
func NewSubsidioRepository(q Querier) *SubsidioRepo {
	return &SubsidioRepo{q: q}
}

func scanSubsidio(row pgx.Row) (*entity.Subsidio, error) {
	var s entity.Subsidio
	if err := row.Scan(&s.ID, &s.ClienteID, &s.Porcentaje, &s.LimiteM3, &s.FechaInicio, &s.FechaTermino,
		&s.NumeroDecreto, &s.Estado, &s.CreatedAt); err != nil {
		return nil, err
	}
	return &s, nil
}

// Create persiste un subsidio.
func (r *SubsidioRepo) Create(ctx context.Context, s *entity.Subsidio) error {
	_, err := r.q.Exec(ctx, `
		INSERT INTO subsidios (id, cliente_id, porcentaje, limite_m3, fecha_inicio, fecha_termino, numero_decreto, estado, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		s.ID, s.ClienteID, s.Porcentaje, s.LimiteM3, s.FechaInicio, s.FechaTermino, s.NumeroDecreto, s.Estado, s.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert subsidio: %w", err)
	}
	return nil
}

// GetByID obtiene un subsidio.
func (r *SubsidioRepo) GetByID(ctx context.Context, id string) (*entity.Subsidio, error) {
	s, err := scanSubsidio(r.q.QueryRow(ctx, `SELECT `+subsidioColumns+` FROM subsidios WHERE id = $1`, id))
	if err != nil {
		if isNoRows(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("get subsidio: %w", err)
	}
	return s, nil
}

// List página de subsidios, opcionalmente filtrados por estado.
func (r *SubsidioRepo) List(ctx context.Context, estado string, page repository.PageQuery) ([]*entity.Subsidio, error) {
	query, args, err := subsidiosKeyset.paginate(`SELECT `+subsidioColumns+` FROM subsidios
		WHERE ($1::text = '' OR estado = $1::text)`, page, []any{estado})
	if err != nil {
		return nil, err
	}
	rows, err := r.q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list subsidios: %w", err)
	}
	return collect(rows, func(row pgx.Rows) (*entity.Subsidio, error) {
		s, err := scanSubsidio(row)
		if err != nil {
			return nil, fmt.Errorf("scan subsidio: %w", err)
		}
		return s, nil
	})
}

// UpdateEstado persiste estado y fecha de término.
func (r *SubsidioRepo) UpdateEstado(ctx context.Context, s *entity.Subsidio) error {
	tag, err := r.q.Exec(ctx, `UPDATE subsidios SET estado = $2, fecha_termino = $3 WHERE id = $1 AND estado = 'activo'`,
		s.ID, s.Estado, s.FechaTermino)
	if err != nil {
		return fmt.Errorf("update subsidio: %w", err)
	}
	return expectOne(tag, "subsidio ya inactivo")
}

// ── Rutas ──

const rutaSelect = `
	SELECT r.id, r.nombre, r.descripcion, r.lector_asignado, r.estado, r.created_at,
		(SELECT count(*) FROM direcciones d WHERE d.ruta_id = r.id)
	FROM rutas r`

// RutaRepo implementación de RutaRepository.
type RutaRepo struct {
	q Querier
}

// NewRutaRepository construye el adaptador.
func NewRutaRepository(q Querier) *RutaRepo {
	return &RutaRepo{q: q}
}

func scanRuta(row pgx.Row) (*entity.Ruta, error) {
	var rt entity.Ruta
	if err := row.Scan(&rt.ID, &rt.Nombre, &rt.Descripcion, &rt.LectorAsignado, &rt.Estado, &rt.CreatedAt,
		&rt.TotalDirecciones); err != nil {
		return nil, err
	}
	return &rt, nil
}

// Create persiste una ruta.
func (r *RutaRepo) Create(ctx context.Context, rt *entity.Ruta) error {
	_, err := r.q.Exec(ctx, `
		INSERT INTO rutas (id, nombre, descripcion, lector_asignado, estado, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)`,
		rt.ID, rt.Nombre, rt.Descripcion, rt.LectorAsignado, rt.Estado, rt.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert ruta: %w", err)
	}
	return nil
}

// GetByID obtiene una ruta con su cantidad de direcciones.
func (r *RutaRepo) GetByID(ctx context.Context, id string) (*entity.Ruta, error) {
	rt, err := scanRuta(r.q.QueryRow(ctx, rutaSelect+` WHERE r.id = $1`, id))
	if err != nil {
		if isNoRows(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("get ruta: %w", err)
	}
	return rt, nil
}

// List todas las rutas por nombre.
func (r *RutaRepo) List(ctx context.Context) ([]*entity.Ruta, error) {
	rows, err := r.q.Query(ctx, rutaSelect+` ORDER BY r.nombre, r.id`)
	if err != nil {
		return nil, fmt.Errorf("list rutas: %w", err)
	}
	return collect(rows, func(row pgx.Rows) (*entity.Ruta, error) {
		rt, err := scanRuta(row)
		if err != nil {
			return nil, fmt.Errorf("scan ruta: %w", err)
		}
		return rt, nil
	})
}

// Update persiste los datos editables de la ruta.
func (r *RutaRepo) Update(ctx context.Context, rt *entity.Ruta) error {
	_, err := r.q.Exec(ctx, `
		UPDATE rutas SET nombre = $2, descripcion = $3, lector_asignado = $4, estado = $5 WHERE id = $1`,
		rt.ID, rt.Nombre, rt.Descripcion, rt.LectorAsignado, rt.Estado,
	)
	if err != nil {
		return fmt.Errorf("update ruta: %w", err)
	}
	return nil
}

// AsignarDirecciones reemplaza las direcciones de la ruta en una sola sentencia:
// las que dejan la ruta quedan sin asignar y el resto toma el orden recibido.
func (r *RutaRepo) AsignarDirecciones(ctx context.Context, rutaID string, direccionIDs []string) error {
	tag, err := r.q.Exec(ctx, `
		WITH liberadas AS (
			UPDATE direcciones SET ruta_id = NULL, orden_ruta = 0
			WHERE ruta_id = $1 AND NOT (id = ANY($2::uuid[]))
		)
		UPDATE direcciones d SET ruta_id = $1, orden_ruta = u.orden
		FROM unnest($2::uuid[]) WITH ORDINALITY AS u(id, orden)
		WHERE d.id = u.id`, rutaID, direccionIDs)
	if err != nil {
		return fmt.Errorf("asignar direcciones: %w", err)
	}
	if int(tag.RowsAffected()) != len(direccionIDs) {
		return fmt.Errorf("%d de %d direcciones no existen: %w",
			len(direccionIDs)-int(tag.RowsAffected()), len(direccionIDs), domain.ErrNotFound)
	}
	return nil
}

// ── Autopago ──

// AutopagoRepo implementación de AutopagoRepository.
type AutopagoRepo struct {
	q Querier
}

// NewAutopagoRepository construye el adaptador.
func NewAutopagoRepository(q Querier) *AutopagoRepo {
	return &AutopagoRepo{q: q}
}

// Get inscripción del cliente; nil si nunca se inscribió.
func (r *AutopagoRepo) Get(ctx context.Context, clienteID string) (*entity.Autopago, error) {
	var a entity.Autopago
	err := r.q.QueryRow(ctx, `
		SELECT cliente_id, activo, marca_tarjeta, ultimos4, token_tarjeta, dia_cobro, updated_at
		FROM autopagos WHERE cliente_id = $1`, clienteID).Scan(
		&a.ClienteID, &a.Activo, &a.MarcaTarjeta, &a.Ultimos4, &a.TokenTarjeta, &a.DiaCobro, &a.UpdatedAt,
	)
	if err != nil {
		if isNoRows(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("get autopago: %w", err)
	}
	return &a, nil
}

// Upsert crea o reemplaza la inscripción.
func (r *AutopagoRepo) Upsert(ctx context.Context, a *entity.Autopago) error {
	_, err := r.q.Exec(ctx, `
		INSERT INTO autopagos (cliente_id, activo, marca_tarjeta, ultimos4, token_tarjeta, dia_cobro, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (cliente_id) DO UPDATE SET
			activo = EXCLUDED.activo, marca_tarjeta = EXCLUDED.marca_tarjeta, ultimos4 = EXCLUDED.ultimos4,
			token_tarjeta = EXCLUDED.token_tarjeta, dia_cobro = EXCLUDED.dia_cobro, updated_at = EXCLUDED.updated_at`,
		a.ClienteID, a.Activo, a.MarcaTarjeta, a.Ultimos4, a.TokenTarjeta, a.DiaCobro, a.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("upsert autopago: %w", err)
	}
	return nil
}
