package postgres

import (
	"errors"
	"fmt"
	"strings"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/pgx/v5"
	"github.com/golang-migrate/migrate/v4/source/iofs"

	"github.com/StantonMatt/coab-platform/migrations"
	"github.com/StantonMatt/coab-platform/pkg/logger"
)

// Migrator aplica las migraciones SQL embebidas con golang-migrate.
type Migrator struct {
	m   *migrate.Migrate
	log *logger.Logger
}

// NewMigrator abre el origen embebido y la base indicada por dsn (postgres://...).
func NewMigrator(dsn string, log *logger.Logger) (*Migrator, error) {
	src, err := iofs.New(migrations.FS, ".")
	if err != nil {
		return nil, fmt.Errorf("abrir migraciones: %w", err)
	}
	m, err := migrate.NewWithSourceInstance("iofs", src, pgx5URL(dsn))
	if err != nil {
		return nil, fmt.Errorf("crear migrador: %w", err)
	}
	return &Migrator{m: m, log: log.Named("migrate")}, nil
}

// pgx5URL el driver pgx/v5 de golang-migrate se registra con el esquema pgx5://.
func pgx5URL(dsn string) string {
	for _, prefix := range []string{"postgresql://", "postgres://"} {
		if strings.HasPrefix(dsn, prefix) {
			return "pgx5://" + strings.TrimPrefix(dsn, prefix)
		}
	}
	return dsn
}

// Up aplica todas las migraciones pendientes.
func (mg *Migrator) Up() error {
	err := mg.m.Up()
	if errors.Is(err, migrate.ErrNoChange) {
		mg.log.Info().Msg("sin migraciones pendientes")
		return nil
	}
	if err != nil {
		return fmt.Errorf("migración up: %w", err)
	}
	return mg.logVersion("migraciones aplicadas")
}

// Down revierte todas las migraciones.
func (mg *Migrator) Down() error {
	err := mg.m.Down()
	if err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("migración down: %w", err)
	}
	mg.log.Info().Msg("migraciones revertidas")
	return nil
}

// Steps aplica n migraciones (negativo = hacia atrás).
func (mg *Migrator) Steps(n int) error {
	err := mg.m.Steps(n)
	if err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("migración steps %d: %w", n, err)
	}
	return mg.logVersion("migración por pasos completada")
}

// Version versión actual y si quedó sucia.
func (mg *Migrator) Version() (uint, bool, error) {
	v, dirty, err := mg.m.Version()
	if errors.Is(err, migrate.ErrNilVersion) {
		return 0, false, nil
	}
	return v, dirty, err
}

// Force fija la versión sin ejecutar SQL (recuperación de estado sucio).
func (mg *Migrator) Force(version int) error {
	return mg.m.Force(version)
}

// Close libera origen y conexión.
func (mg *Migrator) Close() error {
	srcErr, dbErr := mg.m.Close()
	return errors.Join(srcErr, dbErr)
}

func (mg *Migrator) logVersion(msg string) error {
	v, dirty, err := mg.Version()
	if err != nil {
		return fmt.Errorf("leer versión: %w", err)
	}
	mg.log.Info().Uint("version", v).Bool("dirty", dirty).Msg(msg)
	return nil
}
