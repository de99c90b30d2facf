package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/StantonMatt/coab-platform/internal/domain/entity"
	"github.com/StantonMatt/coab-platform/internal/domain/repository"
)

var _ repository.DashboardRepository = (*DashboardRepo)(nil)

// DashboardRepo consultas agregadas de solo lectura para el panel.
type DashboardRepo struct {
	pool *pgxpool.Pool
}

// NewDashboardRepository construye el adaptador.
func NewDashboardRepository(pool *pgxpool.Pool) *DashboardRepo {
	return &DashboardRepo{pool: pool}
}

func (r *DashboardRepo) count(ctx context.Context, name, query string, args ...any) (int64, error) {
	var n int64
	if err := r.pool.QueryRow(ctx, query, args...).Scan(&n); err != nil {
		return 0, fmt.Errorf("dashboard.%s: %w", name, err)
	}
	return n, nil
}

// CountClientes total de clientes.
func (r *DashboardRepo) CountClientes(ctx context.Context) (int64, error) {
	return r.count(ctx, "CountClientes", `SELECT count(*) FROM clientes`)
}

// CountMorosos clientes con estado MOROSO.
func (r *DashboardRepo) CountMorosos(ctx context.Context) (int64, error) {
	return r.count(ctx, "CountMorosos", `SELECT count(*) FROM clientes WHERE estado_cuenta = $1`, entity.EstadoCuentaMoroso)
}

// TotalDeuda por cliente: boletas impagas (monto del mes o, si falta, monto total)
// menos el abono consolidado, sin bajar de cero.
func (r *DashboardRepo) TotalDeuda(ctx context.Context) (decimal.Decimal, error) {
	const query = `
	SELECT COALESCE(SUM(GREATEST(b.impago - c.saldo_credito, 0)), 0)
	FROM (
	    SELECT cliente_id, SUM(COALESCE(monto_total_mes, monto_total)) AS impago
	    FROM boletas
	    WHERE estado IN ('pendiente', 'parcial')
	    GROUP BY cliente_id
	) b
	JOIN clientes c ON c.id = b.cliente_id`

	var total decimal.Decimal
	if err := r.pool.QueryRow(ctx, query).Scan(&total); err != nil {
		return decimal.Zero, fmt.Errorf("dashboard.TotalDeuda: %w", err)
	}
	return total, nil
}

// PagosEntre cantidad y monto de pagos aprobados con fecha en [desde, hasta).
func (r *DashboardRepo) PagosEntre(ctx context.Context, desde, hasta time.Time) (int64, decimal.Decimal, error) {
	var (
		n     int64
		total decimal.Decimal
	)
	err := r.pool.QueryRow(ctx, `
		SELECT count(*), COALESCE(SUM(monto), 0) FROM pagos
		WHERE estado = $1 AND fecha_pago >= $2 AND fecha_pago < $3`,
		entity.PagoAprobado, desde, hasta).Scan(&n, &total)
	if err != nil {
		return 0, decimal.Zero, fmt.Errorf("dashboard.PagosEntre: %w", err)
	}
	return n, total, nil
}

// CountSolicitudesPendientes solicitudes de repactación por revisar.
func (r *DashboardRepo) CountSolicitudesPendientes(ctx context.Context) (int64, error) {
	return r.count(ctx, "CountSolicitudesPendientes",
		`SELECT count(*) FROM solicitudes_repactacion WHERE estado = $1`, entity.SolicitudPendiente)
}
