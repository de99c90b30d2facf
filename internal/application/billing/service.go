// Package billing expone el saldo de los clientes y mantiene el estado de sus
// boletas al registrar o anular pagos.
package billing

import (
	"context"
	"fmt"
	"time"

	"github.com/StantonMatt/coab-platform/internal/application/dto"
	"github.com/StantonMatt/coab-platform/internal/application/ports"
	"github.com/StantonMatt/coab-platform/internal/domain"
	domainbilling "github.com/StantonMatt/coab-platform/internal/domain/billing"
	"github.com/StantonMatt/coab-platform/internal/domain/entity"
	"github.com/StantonMatt/coab-platform/internal/domain/repository"
)

// Service cálculo de saldo de clientes (solo lectura).
type Service struct {
	clienteRepo repository.ClienteRepository
	boletaRepo  repository.BoletaRepository
	pagoRepo    repository.PagoRepository
}

// NewService construye el servicio.
func NewService(clienteRepo repository.ClienteRepository, boletaRepo repository.BoletaRepository, pagoRepo repository.PagoRepository) *Service {
	return &Service{clienteRepo: clienteRepo, boletaRepo: boletaRepo, pagoRepo: pagoRepo}
}

// Detail saldo completo de un cliente con el monto adeudado por boleta.
type Detail struct {
	Cliente *entity.Cliente
	Boletas []*entity.Boleta
	Result  domainbilling.Result
}

// GetCustomerBalance saldo, estado de cuenta y próximo vencimiento del cliente.
func (s *Service) GetCustomerBalance(ctx context.Context, clienteID string) (*dto.SaldoResponse, error) {
	d, err := s.GetBalanceDetail(ctx, clienteID)
	if err != nil {
		return nil, err
	}
	resp := ToSaldoResponse(d.Result)
	return &resp, nil
}

// GetBalanceDetail calcula el saldo y el mapa de montos adeudados por boleta.
func (s *Service) GetBalanceDetail(ctx context.Context, clienteID string) (*Detail, error) {
	cli, err := s.clienteRepo.GetByID(ctx, clienteID)
	if err != nil {
		return nil, fmt.Errorf("saldo: obtener cliente: %w", err)
	}
	if cli == nil {
		return nil, domain.ErrNotFound
	}
	in, err := loadInput(ctx, s.boletaRepo, s.pagoRepo, cli)
	if err != nil {
		return nil, err
	}
	return &Detail{Cliente: cli, Boletas: in.Boletas, Result: domainbilling.Compute(in)}, nil
}

// ToSaldoResponse arma la respuesta de saldo a partir del cálculo.
func ToSaldoResponse(r domainbilling.Result) dto.SaldoResponse {
	impagas := 0
	for _, o := range r.Owed {
		if o.AmountOwed.IsPositive() {
			impagas++
		}
	}
	return dto.SaldoResponse{
		Saldo:          r.CurrentBalance,
		EstadoCuenta:   r.EstadoCuenta(),
		FechaProxVto:   r.NextDueDate,
		BoletasImpagas: impagas,
	}
}

// ── Consolidación (dentro de transacción) ──

// Reconcile imputa los pagos aprobados y persiste el estado de las boletas,
// el estado de cuenta y el corte del cliente. Debe llamarse con repos de una tx.
func Reconcile(ctx context.Context, r ports.TxRepos, clienteID string, now time.Time) (*domainbilling.Settlement, error) {
	cli, err := r.Clientes.LockByID(ctx, clienteID)
	if err != nil {
		return nil, fmt.Errorf("consolidar: obtener cliente: %w", err)
	}
	if cli == nil {
		return nil, domain.ErrNotFound
	}
	in, err := loadInput(ctx, r.Boletas, r.Pagos, cli)
	if err != nil {
		return nil, err
	}
	return settle(ctx, r, cli.ID, in, nil, now)
}

// Revert deshace la imputación de un pago recién anulado. Si el pago ya estaba
// consolidado se descuenta del corte y se reabren boletas pagadas de ser necesario.
func Revert(ctx context.Context, r ports.TxRepos, pago *entity.Pago, now time.Time) (*domainbilling.Settlement, error) {
	cli, err := r.Clientes.LockByID(ctx, pago.ClienteID)
	if err != nil {
		return nil, fmt.Errorf("revertir: obtener cliente: %w", err)
	}
	if cli == nil {
		return nil, domain.ErrNotFound
	}
	in, err := loadInput(ctx, r.Boletas, r.Pagos, cli)
	if err != nil {
		return nil, err
	}

	reabiertas := map[string]string{}
	if in.Corte != nil && !pago.CreatedAt.After(in.Corte.At) {
		ids, corte := domainbilling.Reverse(*in.Corte, pago.Monto, in.Boletas)
		in.Corte = &corte
		byID := make(map[string]*entity.Boleta, len(in.Boletas))
		for _, b := range in.Boletas {
			byID[b.ID] = b
		}
		for _, id := range ids {
			byID[id].Estado = entity.BoletaPendiente
			reabiertas[id] = entity.BoletaPendiente
		}
	}
	return settle(ctx, r, cli.ID, in, reabiertas, now)
}

func settle(ctx context.Context, r ports.TxRepos, clienteID string, in domainbilling.Input, base map[string]string, now time.Time) (*domainbilling.Settlement, error) {
	st := domainbilling.Settle(in, now)
	estados := make(map[string]string, len(base)+len(st.Estados))
	for id, e := range base {
		estados[id] = e
	}
	for id, e := range st.Estados {
		estados[id] = e
	}
	st.Estados = estados

	if len(estados) > 0 {
		if err := r.Boletas.UpdateEstados(ctx, estados); err != nil {
			return nil, fmt.Errorf("consolidar: actualizar boletas: %w", err)
		}
	}
	at := st.Corte.At
	if err := r.Clientes.UpdateSaldo(ctx, clienteID, st.EstadoCuenta, &at, st.Corte.Credito); err != nil {
		return nil, fmt.Errorf("consolidar: actualizar cliente: %w", err)
	}
	return &st, nil
}

func loadInput(ctx context.Context, boletaRepo repository.BoletaRepository, pagoRepo repository.PagoRepository, cli *entity.Cliente) (domainbilling.Input, error) {
	boletas, err := boletaRepo.ListAllByCliente(ctx, cli.ID)
	if err != nil {
		return domainbilling.Input{}, fmt.Errorf("saldo: listar boletas: %w", err)
	}
	pagos, err := pagoRepo.ListAprobadosByCliente(ctx, cli.ID)
	if err != nil {
		return domainbilling.Input{}, fmt.Errorf("saldo: listar pagos: %w", err)
	}
	in := domainbilling.Input{Boletas: boletas, Pagos: pagos}
	if cli.SaldoCorteAt != nil {
		in.Corte = &domainbilling.Corte{At: *cli.SaldoCorteAt, Credito: cli.SaldoCredito}
	}
	return in, nil
}
