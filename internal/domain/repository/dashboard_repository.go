package repository

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

// DashboardRepository consultas agregadas para el panel de administración.
type DashboardRepository interface {
	CountClientes(ctx context.Context) (int64, error)
	CountMorosos(ctx context.Context) (int64, error)
	// TotalDeuda monto de boletas impagas menos el abono consolidado de cada cliente.
	TotalDeuda(ctx context.Context) (decimal.Decimal, error)
	PagosEntre(ctx context.Context, desde, hasta time.Time) (count int64, total decimal.Decimal, err error)
	CountSolicitudesPendientes(ctx context.Context) (int64, error)
}
