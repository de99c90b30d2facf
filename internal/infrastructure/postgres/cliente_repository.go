package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	"github.com/StantonMatt/coab-platform/internal/domain"
	"github.com/StantonMatt/coab-platform/internal/domain/entity"
	"github.com/StantonMatt/coab-platform/internal/domain/repository"
)

var _ repository.ClienteRepository = (*ClienteRepo)(nil)

const clienteColumns = `
	id, rut, numero_cliente, nombre, apellido, email, telefono, estado_cuenta,
	password_hash, cuenta_bloqueada, intentos_fallidos, bloqueado_hasta,
	setup_token_hash, setup_token_expira, primer_login, saldo_corte_at, saldo_credito,
	created_at, updated_at`

var clientesKeyset = keyset{col: "numero_cliente", id: "id", cast: "text"}

// ClienteRepo implementación de ClienteRepository (usable con pool o tx).
type ClienteRepo struct {
	q Querier
}

// NewClienteRepository construye el adaptador. Pasar pool o tx (Querier).
func NewClienteRepository(q Querier) *ClienteRepo {
	return &ClienteRepo{q: q}
}

func scanCliente(row pgx.Row) (*entity.Cliente, error) {
	var (
		c            entity.Cliente
		passwordHash *string
		tokenHash    *string
	)
	err := row.Scan(
		&c.ID, &c.RUT, &c.NumeroCliente, &c.Nombre, &c.Apellido, &c.Email, &c.Telefono, &c.EstadoCuenta,
		&passwordHash, &c.CuentaBloqueada, &c.IntentosFallidos, &c.BloqueadoHasta,
		&tokenHash, &c.SetupTokenExpira, &c.PrimerLogin, &c.SaldoCorteAt, &c.SaldoCredito,
		&c.CreatedAt, &c.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	c.PasswordHash = deref(passwordHash)
	c.SetupTokenHash = deref(tokenHash)
	return &c, nil
}

func (r *ClienteRepo) getOne(ctx context.Context, what, where string, arg any) (*entity.Cliente, error) {
	c, err := scanCliente(r.q.QueryRow(ctx, `SELECT `+clienteColumns+` FROM clientes WHERE `+where, arg))
	if err != nil {
		if isNoRows(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("get cliente %s: %w", what, err)
	}
	return c, nil
}

// GetByID obtiene un cliente por ID.
func (r *ClienteRepo) GetByID(ctx context.Context, id string) (*entity.Cliente, error) {
	return r.getOne(ctx, "by id", "id = $1", id)
}

// LockByID obtiene el cliente con SELECT ... FOR UPDATE. Solo tiene efecto dentro de una tx.
func (r *ClienteRepo) LockByID(ctx context.Context, id string) (*entity.Cliente, error) {
	return r.getOne(ctx, "for update", "id = $1 FOR UPDATE", id)
}

// GetByRUT obtiene un cliente por RUT normalizado.
func (r *ClienteRepo) GetByRUT(ctx context.Context, rut string) (*entity.Cliente, error) {
	return r.getOne(ctx, "by rut", "rut = $1", rut)
}

// GetBySetupTokenHash obtiene el cliente dueño del token de activación.
func (r *ClienteRepo) GetBySetupTokenHash(ctx context.Context, hash string) (*entity.Cliente, error) {
	return r.getOne(ctx, "by setup token", "setup_token_hash = $1", hash)
}

// Search busca por prefijo de RUT o número de cliente, o por nombre sin acentos.
func (r *ClienteRepo) Search(ctx context.Context, f repository.ClienteFilter, page repository.PageQuery) ([]*entity.Cliente, error) {
	base := `SELECT ` + clienteColumns + ` FROM clientes WHERE TRUE`
	var args []any
	if f.Query != "" {
		args = append(args, f.Query)
		base += fmt.Sprintf(` AND (
			replace(lower(rut), '-', '') LIKE $%[1]d || '%%'
			OR numero_cliente LIKE $%[1]d || '%%'
			OR lower(f_unaccent(nombre || ' ' || apellido)) LIKE '%%' || $%[1]d || '%%')`, len(args))
	}
	if f.EstadoCuenta != "" {
		args = append(args, f.EstadoCuenta)
		base += fmt.Sprintf(` AND estado_cuenta = $%d`, len(args))
	}
	query, args, err := clientesKeyset.paginate(base, page, args)
	if err != nil {
		return nil, err
	}
	rows, err := r.q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("search clientes: %w", err)
	}
	return collect(rows, func(row pgx.Rows) (*entity.Cliente, error) { return scanCliente(row) })
}

// Update actualiza los datos editables desde el panel.
func (r *ClienteRepo) Update(ctx context.Context, c *entity.Cliente) error {
	_, err := r.q.Exec(ctx, `
		UPDATE clientes SET nombre = $2, apellido = $3, email = $4, telefono = $5,
			cuenta_bloqueada = $6, intentos_fallidos = $7, bloqueado_hasta = $8, updated_at = $9
		WHERE id = $1`,
		c.ID, c.Nombre, c.Apellido, c.Email, c.Telefono,
		c.CuentaBloqueada, c.IntentosFallidos, c.BloqueadoHasta, c.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("update cliente: %w", err)
	}
	return nil
}

// UpdateContacto email y teléfono editados por el propio cliente.
func (r *ClienteRepo) UpdateContacto(ctx context.Context, id, email, telefono string, now time.Time) error {
	tag, err := r.q.Exec(ctx,
		`UPDATE clientes SET email = $2, telefono = $3, updated_at = $4 WHERE id = $1`,
		id, email, telefono, now)
	if err != nil {
		return fmt.Errorf("update contacto: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// RegistrarFallo suma un intento fallido en la misma sentencia que lo lee.
// Al llegar a max deja la cuenta bloqueada hasta `hasta` y reinicia el contador;
// devuelve true en ese caso.
func (r *ClienteRepo) RegistrarFallo(ctx context.Context, id string, max int, hasta time.Time) (bool, error) {
	var bloqueada bool
	err := r.q.QueryRow(ctx, `
		UPDATE clientes SET
			intentos_fallidos = CASE WHEN intentos_fallidos + 1 >= $2 THEN 0 ELSE intentos_fallidos + 1 END,
			bloqueado_hasta = CASE WHEN intentos_fallidos + 1 >= $2 THEN $3::timestamptz ELSE bloqueado_hasta END,
			updated_at = now()
		WHERE id = $1
		RETURNING intentos_fallidos = 0`,
		id, max, hasta,
	).Scan(&bloqueada)
	if err != nil {
		if isNoRows(err) {
			return false, domain.ErrNotFound
		}
		return false, fmt.Errorf("registrar fallo: %w", err)
	}
	return bloqueada, nil
}

// RegistrarIngreso limpia intentos, bloqueo temporal y la marca de primer login.
func (r *ClienteRepo) RegistrarIngreso(ctx context.Context, id string) error {
	_, err := r.q.Exec(ctx, `
		UPDATE clientes SET intentos_fallidos = 0, bloqueado_hasta = NULL, primer_login = false, updated_at = now()
		WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("registrar ingreso: %w", err)
	}
	return nil
}

// GuardarSetupToken reemplaza el hash del token de activación y su vencimiento.
func (r *ClienteRepo) GuardarSetupToken(ctx context.Context, id, tokenHash string, expira time.Time) error {
	tag, err := r.q.Exec(ctx, `
		UPDATE clientes SET setup_token_hash = $2, setup_token_expira = $3, updated_at = now()
		WHERE id = $1`, id, tokenHash, expira)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicate
		}
		return fmt.Errorf("guardar setup token: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// DefinirPassword fija la contraseña y consume el token de activación.
// Si el token ya no es el vigente devuelve ErrSetupTokenInvalid.
func (r *ClienteRepo) DefinirPassword(ctx context.Context, id, tokenHash, passwordHash string) error {
	tag, err := r.q.Exec(ctx, `
		UPDATE clientes SET password_hash = $3, setup_token_hash = NULL, setup_token_expira = NULL,
			intentos_fallidos = 0, bloqueado_hasta = NULL, primer_login = true, updated_at = now()
		WHERE id = $1 AND setup_token_hash = $2`,
		id, tokenHash, passwordHash,
	)
	if err != nil {
		return fmt.Errorf("definir password: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrSetupTokenInvalid
	}
	return nil
}

// Desbloquear quita el bloqueo manual y el temporal.
func (r *ClienteRepo) Desbloquear(ctx context.Context, id string) error {
	tag, err := r.q.Exec(ctx, `
		UPDATE clientes SET cuenta_bloqueada = false, bloqueado_hasta = NULL, intentos_fallidos = 0, updated_at = now()
		WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("desbloquear: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// UpdateSaldo estado de cuenta y corte de consolidación de pagos.
func (r *ClienteRepo) UpdateSaldo(ctx context.Context, id, estadoCuenta string, corteAt *time.Time, credito decimal.Decimal) error {
	_, err := r.q.Exec(ctx, `
		UPDATE clientes SET estado_cuenta = $2, saldo_corte_at = $3, saldo_credito = $4, updated_at = now()
		WHERE id = $1`,
		id, estadoCuenta, corteAt, credito,
	)
	if err != nil {
		return fmt.Errorf("update saldo: %w", err)
	}
	return nil
}

// ListDirecciones direcciones del cliente en orden de ruta.
func (r *ClienteRepo) ListDirecciones(ctx context.Context, clienteID string) ([]*entity.Direccion, error) {
	rows, err := r.q.Query(ctx, `
		SELECT id, cliente_id, ruta_id, direccion, poblacion, comuna, orden_ruta
		FROM direcciones WHERE cliente_id = $1 ORDER BY orden_ruta, direccion`, clienteID)
	if err != nil {
		return nil, fmt.Errorf("list direcciones: %w", err)
	}
	return collect(rows, func(row pgx.Rows) (*entity.Direccion, error) {
		var d entity.Direccion
		if err := row.Scan(&d.ID, &d.ClienteID, &d.RutaID, &d.Direccion, &d.Poblacion, &d.Comuna, &d.OrdenRuta); err != nil {
			return nil, fmt.Errorf("scan direccion: %w", err)
		}
		return &d, nil
	})
}
