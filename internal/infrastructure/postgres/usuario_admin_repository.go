package postgres

import (
	"context"
	"fmt"
	"strings"

	"github.com/StantonMatt/coab-platform/internal/domain/entity"
	"github.com/StantonMatt/coab-platform/internal/domain/repository"
)

var _ repository.UsuarioAdminRepository = (*UsuarioAdminRepo)(nil)

const usuarioAdminSelect = `SELECT id, email, nombre, password_hash, rol, activo, created_at, updated_at FROM usuarios_admin`

// UsuarioAdminRepo implementación de UsuarioAdminRepository.
type UsuarioAdminRepo struct {
	q Querier
}

// NewUsuarioAdminRepository construye el adaptador.
func NewUsuarioAdminRepository(q Querier) *UsuarioAdminRepo {
	return &UsuarioAdminRepo{q: q}
}

func (r *UsuarioAdminRepo) getOne(ctx context.Context, where string, arg any) (*entity.UsuarioAdmin, error) {
	var u entity.UsuarioAdmin
	err := r.q.QueryRow(ctx, usuarioAdminSelect+` WHERE `+where, arg).Scan(
		&u.ID, &u.Email, &u.Nombre, &u.PasswordHash, &u.Role, &u.Activo, &u.CreatedAt, &u.UpdatedAt,
	)
	if err != nil {
		if isNoRows(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("get usuario admin: %w", err)
	}
	return &u, nil
}

// GetByID obtiene un usuario del panel por ID.
func (r *UsuarioAdminRepo) GetByID(ctx context.Context, id string) (*entity.UsuarioAdmin, error) {
	return r.getOne(ctx, "id = $1", id)
}

// GetByEmail obtiene un usuario por email, sin distinguir mayúsculas.
func (r *UsuarioAdminRepo) GetByEmail(ctx context.Context, email string) (*entity.UsuarioAdmin, error) {
	return r.getOne(ctx, "lower(email) = $1", strings.ToLower(strings.TrimSpace(email)))
}
