package postgres

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/StantonMatt/coab-platform/internal/domain"
	"github.com/StantonMatt/coab-platform/internal/domain/repository"
)

// isUniqueViolation verifica si un error es una violación de constraint único (23505).
func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "23505"
	}
	return false
}

// isForeignKeyViolation 23503: la fila referenciada no existe.
func isForeignKeyViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23503"
}

// isNoRows pgx.ErrNoRows: los GetBy* devuelven (nil, nil) en ese caso.
func isNoRows(err error) bool {
	return errors.Is(err, pgx.ErrNoRows)
}

// nullIfEmpty guarda NULL en vez de cadena vacía.
func nullIfEmpty(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

// ── Paginación keyset ──

// keyset describe la columna de orden de un listado paginado. El id desempata.
type keyset struct {
	col  string // columna de orden, calificada si hace falta
	id   string // columna id
	cast string // tipo SQL del valor del cursor (text, timestamptz)
	desc bool
}

// where condición "(col, id) <= (cursor)" (o >= en orden ascendente) con la fila
// del cursor incluida. args recibe los parámetros ya usados por la consulta.
// Un cursor cuya clave no calza con el tipo de la columna es ErrInvalidInput.
func (k keyset) where(page repository.PageQuery, args []any) (string, []any, error) {
	if page.From == nil {
		return "", args, nil
	}
	if _, err := uuid.Parse(page.From.ID); err != nil {
		return "", nil, fmt.Errorf("cursor inválido: %w", domain.ErrInvalidInput)
	}
	var key any = page.From.Key
	if k.cast == "timestamptz" {
		t, err := time.Parse(time.RFC3339Nano, page.From.Key)
		if err != nil {
			return "", nil, fmt.Errorf("cursor inválido: %w", domain.ErrInvalidInput)
		}
		key = t
	}
	op := ">="
	if k.desc {
		op = "<="
	}
	args = append(args, key, page.From.ID)
	n := len(args)
	return fmt.Sprintf(" AND (%s, %s) %s ($%d::%s, $%d::uuid)", k.col, k.id, op, n-1, k.cast, n), args, nil
}

// orderLimit cláusulas ORDER BY y LIMIT (limit+1 filas).
func (k keyset) orderLimit(page repository.PageQuery, args []any) (string, []any) {
	dir := "ASC"
	if k.desc {
		dir = "DESC"
	}
	args = append(args, page.Fetch())
	return fmt.Sprintf(" ORDER BY %s %s, %s %s LIMIT $%d", k.col, dir, k.id, dir, len(args)), args
}

// paginate concatena where y orderLimit a una consulta que ya tiene WHERE.
func (k keyset) paginate(base string, page repository.PageQuery, args []any) (string, []any, error) {
	w, args, err := k.where(page, args)
	if err != nil {
		return "", nil, err
	}
	var sb strings.Builder
	sb.WriteString(base)
	sb.WriteString(w)
	o, args := k.orderLimit(page, args)
	sb.WriteString(o)
	return sb.String(), args, nil
}

// expectOne exige que un UPDATE condicionado al estado de origen afecte una fila.
// Cero filas significa que otra operación cambió el estado antes.
func expectOne(tag pgconn.CommandTag, msg string) error {
	if tag.RowsAffected() != 1 {
		return fmt.Errorf("%s: %w", msg, domain.ErrInvalidTransition)
	}
	return nil
}

// collect recorre rows aplicando scan a cada fila.
func collect[T any](rows pgx.Rows, scan func(pgx.Rows) (*T, error)) ([]*T, error) {
	defer rows.Close()
	var list []*T
	for rows.Next() {
		item, err := scan(rows)
		if err != nil {
			return nil, err
		}
		list = append(list, item)
	}
	return list, rows.Err()
}
