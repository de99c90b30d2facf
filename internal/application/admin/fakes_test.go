package admin

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/StantonMatt/coab-platform/internal/application/ports"
	"github.com/StantonMatt/coab-platform/internal/domain"
	"github.com/StantonMatt/coab-platform/internal/domain/entity"
	"github.com/StantonMatt/coab-platform/internal/domain/repository"
)

// memStore repositorios en memoria compartidos por los tests del panel.
// Los métodos que un test no usa quedan sin implementar (interfaz embebida).
type memStore struct {
	clientes      map[string]*entity.Cliente
	boletas       []*entity.Boleta
	pagos         []*entity.Pago
	solicitudes   map[string]*entity.SolicitudRepactacion
	repactaciones map[string]*entity.Repactacion
	multas        map[string]*entity.Multa
	subsidios     map[string]*entity.Subsidio
	medidores     map[string]*entity.Medidor
	direcciones   map[string]bool
	lecturas      []*entity.Lectura
	txCount       int
	// antesDeActualizar simula otra operación que se confirma entre la lectura y el UPDATE.
	antesDeActualizar func()
}

func newMemStore() *memStore {
	return &memStore{
		clientes:      map[string]*entity.Cliente{},
		solicitudes:   map[string]*entity.SolicitudRepactacion{},
		repactaciones: map[string]*entity.Repactacion{},
		multas:        map[string]*entity.Multa{},
		subsidios:     map[string]*entity.Subsidio{},
		medidores:     map[string]*entity.Medidor{},
		direcciones:   map[string]bool{},
	}
}

func (s *memStore) RunInTx(_ context.Context, fn func(r ports.TxRepos) error) error {
	s.txCount++
	return fn(ports.TxRepos{
		Clientes:      memClientes{s: s},
		Boletas:       memBoletas{s: s},
		Pagos:         memPagos{s: s},
		Solicitudes:   memSolicitudes{s: s},
		Repactaciones: memRepactaciones{s: s},
	})
}

// ── Clientes ──

type memClientes struct {
	repository.ClienteRepository
	s *memStore
}

func (m memClientes) GetByID(_ context.Context, id string) (*entity.Cliente, error) {
	return m.s.clientes[id], nil
}

func (m memClientes) LockByID(ctx context.Context, id string) (*entity.Cliente, error) {
	return m.GetByID(ctx, id)
}

func (m memClientes) Update(_ context.Context, c *entity.Cliente) error {
	m.s.clientes[c.ID] = c
	return nil
}

func (m memClientes) GuardarSetupToken(_ context.Context, id, tokenHash string, expira time.Time) error {
	c, ok := m.s.clientes[id]
	if !ok {
		return domain.ErrNotFound
	}
	c.SetupTokenHash = tokenHash
	c.SetupTokenExpira = &expira
	return nil
}

func (m memClientes) Desbloquear(_ context.Context, id string) error {
	c, ok := m.s.clientes[id]
	if !ok {
		return domain.ErrNotFound
	}
	c.CuentaBloqueada = false
	c.BloqueadoHasta = nil
	c.IntentosFallidos = 0
	return nil
}

func (m memClientes) GetBySetupTokenHash(_ context.Context, hash string) (*entity.Cliente, error) {
	for _, c := range m.s.clientes {
		if c.SetupTokenHash == hash {
			return c, nil
		}
	}
	return nil, nil
}

func (m memClientes) UpdateSaldo(_ context.Context, id, estado string, corteAt *time.Time, credito decimal.Decimal) error {
	c := m.s.clientes[id]
	c.EstadoCuenta = estado
	c.SaldoCorteAt = corteAt
	c.SaldoCredito = credito
	return nil
}

func (m memClientes) ListDirecciones(_ context.Context, _ string) ([]*entity.Direccion, error) {
	return nil, nil
}

// ── Boletas ──

type memBoletas struct {
	repository.BoletaRepository
	s *memStore
}

func (m memBoletas) ListAllByCliente(_ context.Context, clienteID string) ([]*entity.Boleta, error) {
	var out []*entity.Boleta
	for _, b := range m.s.boletas {
		if b.ClienteID == clienteID {
			out = append(out, b)
		}
	}
	return out, nil
}

func (m memBoletas) UpdateEstados(_ context.Context, estados map[string]string) error {
	for _, b := range m.s.boletas {
		if e, ok := estados[b.ID]; ok {
			b.Estado = e
		}
	}
	return nil
}

// ── Pagos ──

type memPagos struct {
	repository.PagoRepository
	s *memStore
}

func (m memPagos) Create(_ context.Context, p *entity.Pago) error {
	m.s.pagos = append(m.s.pagos, p)
	return nil
}

func (m memPagos) GetByID(_ context.Context, id string) (*entity.Pago, error) {
	for _, p := range m.s.pagos {
		if p.ID == id {
			cp := *p
			return &cp, nil
		}
	}
	return nil, nil
}

func (m memPagos) ListAprobadosByCliente(_ context.Context, clienteID string) ([]*entity.Pago, error) {
	var out []*entity.Pago
	for _, p := range m.s.pagos {
		if p.ClienteID == clienteID && p.Estado == entity.PagoAprobado {
			out = append(out, p)
		}
	}
	return out, nil
}

func (m memPagos) UpdateEstado(_ context.Context, id, estado, obs string) error {
	if m.s.antesDeActualizar != nil {
		m.s.antesDeActualizar()
	}
	for _, p := range m.s.pagos {
		if p.ID == id && p.Estado == entity.PagoAprobado {
			p.Estado = estado
			p.Observaciones = obs
			return nil
		}
	}
	return domain.ErrInvalidTransition
}

// ── Repactación ──

type memSolicitudes struct {
	repository.SolicitudRepository
	s *memStore
}

func (m memSolicitudes) GetByID(_ context.Context, id string) (*entity.SolicitudRepactacion, error) {
	if s, ok := m.s.solicitudes[id]; ok {
		cp := *s
		return &cp, nil
	}
	return nil, nil
}

func (m memSolicitudes) UpdateRevision(_ context.Context, s *entity.SolicitudRepactacion) error {
	if m.s.antesDeActualizar != nil {
		m.s.antesDeActualizar()
	}
	if actual, ok := m.s.solicitudes[s.ID]; !ok || actual.Estado != entity.SolicitudPendiente {
		return domain.ErrInvalidTransition
	}
	m.s.solicitudes[s.ID] = s
	return nil
}

type memRepactaciones struct {
	repository.RepactacionRepository
	s *memStore
}

func (m memRepactaciones) Create(_ context.Context, r *entity.Repactacion) error {
	m.s.repactaciones[r.ID] = r
	return nil
}

func (m memRepactaciones) GetByID(_ context.Context, id string) (*entity.Repactacion, error) {
	if r, ok := m.s.repactaciones[id]; ok {
		cp := *r
		return &cp, nil
	}
	return nil, nil
}

func (m memRepactaciones) UpdateEstado(_ context.Context, r *entity.Repactacion) error {
	if actual, ok := m.s.repactaciones[r.ID]; !ok || actual.Estado != entity.RepactacionActivo {
		return domain.ErrInvalidTransition
	}
	m.s.repactaciones[r.ID] = r
	return nil
}

// ── Multas y subsidios ──

type memMultas struct {
	repository.MultaRepository
	s *memStore
}

func (m memMultas) Create(_ context.Context, x *entity.Multa) error {
	m.s.multas[x.ID] = x
	return nil
}

func (m memMultas) GetByID(_ context.Context, id string) (*entity.Multa, error) {
	if x, ok := m.s.multas[id]; ok {
		cp := *x
		return &cp, nil
	}
	return nil, nil
}

func (m memMultas) UpdateEstado(_ context.Context, x *entity.Multa) error {
	if actual, ok := m.s.multas[x.ID]; !ok || actual.Estado != entity.MultaPendiente {
		return domain.ErrInvalidTransition
	}
	m.s.multas[x.ID] = x
	return nil
}

type memSubsidios struct {
	repository.SubsidioRepository
	s *memStore
}

func (m memSubsidios) Create(_ context.Context, x *entity.Subsidio) error {
	m.s.subsidios[x.ID] = x
	return nil
}

func (m memSubsidios) GetByID(_ context.Context, id string) (*entity.Subsidio, error) {
	if x, ok := m.s.subsidios[id]; ok {
		cp := *x
		return &cp, nil
	}
	return nil, nil
}

func (m memSubsidios) UpdateEstado(_ context.Context, x *entity.Subsidio) error {
	if actual, ok := m.s.subsidios[x.ID]; !ok || actual.Estado != entity.EstadoActivo {
		return domain.ErrInvalidTransition
	}
	m.s.subsidios[x.ID] = x
	return nil
}

// ── Medidores y lecturas ──

type memMedidores struct {
	repository.MedidorRepository
	s *memStore
}

func (m memMedidores) Create(_ context.Context, x *entity.Medidor) error {
	m.s.medidores[x.ID] = x
	return nil
}

func (m memMedidores) GetByID(_ context.Context, id string) (*entity.Medidor, error) {
	return m.s.medidores[id], nil
}

func (m memMedidores) Update(_ context.Context, x *entity.Medidor) error {
	m.s.medidores[x.ID] = x
	return nil
}

func (m memMedidores) DireccionExists(_ context.Context, id string) (bool, error) {
	return m.s.direcciones[id], nil
}

func (m memMedidores) ListByCliente(_ context.Context, _ string) ([]*entity.Medidor, error) {
	return nil, nil
}

type memLecturas struct {
	s *memStore
}

func (m memLecturas) Create(_ context.Context, l *entity.Lectura) error {
	m.s.lecturas = append(m.s.lecturas, l)
	return nil
}

func (m memLecturas) GetUltima(_ context.Context, medidorID string) (*entity.Lectura, error) {
	var ultima *entity.Lectura
	for _, l := range m.s.lecturas {
		if l.MedidorID == medidorID && (ultima == nil || l.Periodo > ultima.Periodo) {
			ultima = l
		}
	}
	return ultima, nil
}

func (m memLecturas) ListByMedidor(_ context.Context, medidorID string, _ repository.PageQuery) ([]*entity.Lectura, error) {
	var out []*entity.Lectura
	for i := len(m.s.lecturas) - 1; i >= 0; i-- {
		if m.s.lecturas[i].MedidorID == medidorID {
			out = append(out, m.s.lecturas[i])
		}
	}
	return out, nil
}

func boletaDe(clienteID, id string, emision time.Time, monto int64) *entity.Boleta {
	m := decimal.NewFromInt(monto)
	return &entity.Boleta{
		ID:               id,
		ClienteID:        clienteID,
		Periodo:          emision.Format("2006-01"),
		FechaEmision:     emision,
		FechaVencimiento: emision.AddDate(0, 0, 20),
		MontoTotalMes:    &m,
		MontoTotal:       m,
		Estado:           entity.BoletaPendiente,
	}
}
