package admin

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"github.com/sourcegraph/conc/pool"

	"github.com/StantonMatt/coab-platform/internal/application/dto"
	"github.com/StantonMatt/coab-platform/internal/domain/repository"
)

// DashboardUseCase indicadores del panel de administración.
//
// Las cinco consultas son independientes y se ejecutan en paralelo; si una
// falla se cancela el resto.
type DashboardUseCase struct {
	dashRepo repository.DashboardRepository
	loc      *time.Location
	now      func() time.Time
}

// NewDashboardUseCase construye el caso de uso. loc define el inicio del mes (America/Santiago).
func NewDashboardUseCase(dashRepo repository.DashboardRepository, loc *time.Location) *DashboardUseCase {
	if loc == nil {
		loc = time.UTC
	}
	return &DashboardUseCase{dashRepo: dashRepo, loc: loc, now: time.Now}
}

// Stats totales de clientes, morosidad, deuda y pagos del mes en curso.
func (uc *DashboardUseCase) Stats(ctx context.Context) (*dto.DashboardStatsResponse, error) {
	now := uc.now().In(uc.loc)
	desde := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, uc.loc)
	hasta := desde.AddDate(0, 1, 0)

	var (
		out        dto.DashboardStatsResponse
		deuda      decimal.Decimal
		pagosMonto decimal.Decimal
	)

	p := pool.New().WithContext(ctx).WithCancelOnError()
	p.Go(func(ctx context.Context) (err error) {
		out.TotalClientes, err = uc.dashRepo.CountClientes(ctx)
		return wrap("total clientes", err)
	})
	p.Go(func(ctx context.Context) (err error) {
		out.ClientesMorosos, err = uc.dashRepo.CountMorosos(ctx)
		return wrap("morosos", err)
	})
	p.Go(func(ctx context.Context) (err error) {
		deuda, err = uc.dashRepo.TotalDeuda(ctx)
		return wrap("total deuda", err)
	})
	p.Go(func(ctx context.Context) (err error) {
		out.PagosMesCantidad, pagosMonto, err = uc.dashRepo.PagosEntre(ctx, desde, hasta)
		return wrap("pagos del mes", err)
	})
	p.Go(func(ctx context.Context) (err error) {
		out.SolicitudesPendientes, err = uc.dashRepo.CountSolicitudesPendientes(ctx)
		return wrap("solicitudes pendientes", err)
	})
	if err := p.Wait(); err != nil {
		return nil, err
	}

	out.TotalDeuda = deuda.Round(0)
	out.PagosMesMonto = pagosMonto.Round(0)
	return &out, nil
}

func wrap(what string, err error) error {
	if err != nil {
		return fmt.Errorf("dashboard: %s: %w", what, err)
	}
	return nil
}
