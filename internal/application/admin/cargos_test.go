package admin

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/StantonMatt/coab-platform/internal/application/dto"
	"github.com/StantonMatt/coab-platform/internal/domain"
	"github.com/StantonMatt/coab-platform/internal/domain/entity"
)

func storeConCliente() *memStore {
	s := newMemStore()
	s.clientes[clienteID] = &entity.Cliente{ID: clienteID, RUT: "12345678-5", Nombre: "Juan"}
	return s
}

// ── Multas ──

func TestMulta_Transiciones(t *testing.T) {
	s := storeConCliente()
	uc := NewMultaUseCase(memMultas{s: s}, memClientes{s: s})
	ctx := context.Background()

	m, err := uc.Create(ctx, dto.CreateMultaRequest{
		ClienteID:         clienteID,
		Monto:             decimal.RequireFromString("25000.6"),
		Motivo:            " conexión irregular ",
		PeriodoAplicacion: "2026-03",
	})
	require.NoError(t, err)
	assert.Equal(t, entity.MultaPendiente, m.Estado)
	assert.Equal(t, "conexión irregular", m.Motivo)
	assert.True(t, decimal.NewFromInt(25001).Equal(m.Monto))

	aplicada, err := uc.Aplicar(ctx, m.ID)
	require.NoError(t, err)
	assert.Equal(t, entity.MultaAplicada, aplicada.Estado)

	_, err = uc.Cancelar(ctx, m.ID)
	assert.ErrorIs(t, err, domain.ErrInvalidTransition)
	_, err = uc.Aplicar(ctx, m.ID)
	assert.ErrorIs(t, err, domain.ErrInvalidTransition)

	otra, err := uc.Create(ctx, dto.CreateMultaRequest{ClienteID: clienteID, Monto: decimal.NewFromInt(1000), Motivo: "daño", PeriodoAplicacion: "2026-03"})
	require.NoError(t, err)
	cancelada, err := uc.Cancelar(ctx, otra.ID)
	require.NoError(t, err)
	assert.Equal(t, entity.MultaCancelada, cancelada.Estado)
}

func TestMulta_Validaciones(t *testing.T) {
	s := storeConCliente()
	uc := NewMultaUseCase(memMultas{s: s}, memClientes{s: s})
	ctx := context.Background()

	_, err := uc.Create(ctx, dto.CreateMultaRequest{ClienteID: clienteID, Monto: decimal.NewFromInt(-5), Motivo: "x", PeriodoAplicacion: "2026-03"})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	_, err = uc.Create(ctx, dto.CreateMultaRequest{ClienteID: "otro", Monto: decimal.NewFromInt(5), Motivo: "x", PeriodoAplicacion: "2026-03"})
	assert.ErrorIs(t, err, domain.ErrNotFound)

	_, err = uc.Aplicar(ctx, "no-existe")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

// ── Subsidios ──

func TestSubsidio_CrearYDesactivar(t *testing.T) {
	s := storeConCliente()
	uc := NewSubsidioUseCase(memSubsidios{s: s}, memClientes{s: s})
	uc.now = func() time.Time { return marzo }
	ctx := context.Background()

	out, err := uc.Create(ctx, dto.CreateSubsidioRequest{
		ClienteID:     clienteID,
		Porcentaje:    decimal.NewFromInt(50),
		LimiteM3:      decimal.NewFromInt(15),
		FechaInicio:   time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC),
		NumeroDecreto: " D-123 ",
	})
	require.NoError(t, err)
	assert.Equal(t, entity.EstadoActivo, out.Estado)
	assert.Equal(t, "D-123", out.NumeroDecreto)

	inactivo, err := uc.Desactivar(ctx, out.ID)
	require.NoError(t, err)
	assert.Equal(t, entity.EstadoInactivo, inactivo.Estado)
	require.NotNil(t, inactivo.FechaTermino)
	assert.Equal(t, marzo, *inactivo.FechaTermino)

	_, err = uc.Desactivar(ctx, out.ID)
	assert.ErrorIs(t, err, domain.ErrInvalidTransition)
}

func TestSubsidio_Validaciones(t *testing.T) {
	s := storeConCliente()
	uc := NewSubsidioUseCase(memSubsidios{s: s}, memClientes{s: s})
	ctx := context.Background()
	inicio := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	antes := inicio.AddDate(0, -1, 0)

	cases := map[string]dto.CreateSubsidioRequest{
		"porcentaje cero":      {ClienteID: clienteID, Porcentaje: decimal.Zero, LimiteM3: decimal.NewFromInt(10), FechaInicio: inicio},
		"porcentaje sobre 100": {ClienteID: clienteID, Porcentaje: decimal.NewFromInt(101), LimiteM3: decimal.NewFromInt(10), FechaInicio: inicio},
		"límite cero":          {ClienteID: clienteID, Porcentaje: decimal.NewFromInt(50), LimiteM3: decimal.Zero, FechaInicio: inicio},
		"término antes":        {ClienteID: clienteID, Porcentaje: decimal.NewFromInt(50), LimiteM3: decimal.NewFromInt(10), FechaInicio: inicio, FechaTermino: &antes},
	}
	for name, in := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := uc.Create(ctx, in)
			assert.ErrorIs(t, err, domain.ErrInvalidInput)
		})
	}
	assert.Empty(t, s.subsidios)
}
