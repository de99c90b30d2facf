package repository

import (
	"context"

	"github.com/StantonMatt/coab-platform/internal/domain/entity"
)

// UsuarioAdminRepository puerto de persistencia para usuarios del panel.
type UsuarioAdminRepository interface {
	GetByID(ctx context.Context, id string) (*entity.UsuarioAdmin, error)
	GetByEmail(ctx context.Context, email string) (*entity.UsuarioAdmin, error)
}
