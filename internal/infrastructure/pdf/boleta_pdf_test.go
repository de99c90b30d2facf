package pdf

import (
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/StantonMatt/coab-platform/internal/application/ports"
	"github.com/StantonMatt/coab-platform/internal/domain/entity"
)

func boletaDePrueba() ports.BoletaPDF {
	mes := decimal.NewFromInt(18500)
	return ports.BoletaPDF{
		Boleta: &entity.Boleta{
			ID:                  "b-1",
			ClienteID:           "c-1",
			Periodo:             "2024-03",
			FechaEmision:        time.Date(2024, 3, 5, 0, 0, 0, 0, time.UTC),
			FechaVencimiento:    time.Date(2024, 3, 25, 0, 0, 0, 0, time.UTC),
			ConsumoM3:           decimal.NewFromInt(14),
			CargoFijo:           decimal.NewFromInt(2500),
			CargoAgua:           decimal.NewFromInt(9000),
			CargoAlcantarillado: decimal.NewFromInt(4000),
			CargoTratamiento:    decimal.NewFromInt(3000),
			MontoTotalMes:       &mes,
			MontoTotal:          decimal.NewFromInt(30500),
			Estado:              entity.BoletaPendiente,
		},
		Cliente: &entity.Cliente{
			ID:            "c-1",
			RUT:           "12345678-5",
			NumeroCliente: "000123",
			Nombre:        "María",
			Apellido:      "Núñez",
		},
		Direccion:     &entity.Direccion{Direccion: "Los Aromos 123", Comuna: "Coyhaique"},
		MontoAdeudado: decimal.NewFromInt(18500),
		SaldoCliente:  decimal.NewFromInt(30500),
	}
}

func TestRenderBoleta_GeneraPDF(t *testing.T) {
	r := NewBoletaRenderer(Empresa{Nombre: "COAB", RUT: "76.123.456-7", PortalURL: "https://portal.coab.cl"})

	out, err := r.RenderBoleta(context.Background(), boletaDePrueba())
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(out, []byte("%PDF")), "el documento debe comenzar con la firma PDF")
}

func TestRenderBoleta_SinDireccionNiPortal(t *testing.T) {
	data := boletaDePrueba()
	data.Direccion = nil
	data.Boleta.MontoTotalMes = nil

	out, err := NewBoletaRenderer(Empresa{Nombre: "COAB"}).RenderBoleta(context.Background(), data)
	require.NoError(t, err)
	assert.NotEmpty(t, out)
}

func TestRenderBoleta_DatosIncompletos(t *testing.T) {
	_, err := NewBoletaRenderer(Empresa{}).RenderBoleta(context.Background(), ports.BoletaPDF{})
	assert.Error(t, err)
}

func TestMoney(t *testing.T) {
	cases := map[string]decimal.Decimal{
		"$0":         decimal.Zero,
		"$950":       decimal.NewFromInt(950),
		"$25.000":    decimal.NewFromInt(25000),
		"$1.000.000": decimal.NewFromInt(1000000),
		"-$12.500":   decimal.NewFromInt(-12500),
		"$3.334":     decimal.RequireFromString("3333.5"),
	}
	for want, in := range cases {
		assert.Equal(t, want, money(in), in.String())
	}
}

func TestNombrePeriodo(t *testing.T) {
	assert.Equal(t, "Marzo 2024", nombrePeriodo("2024-03"))
	assert.Equal(t, "Diciembre 2023", nombrePeriodo("2023-12"))
	assert.Equal(t, "2024-13", nombrePeriodo("2024-13"))
	assert.Equal(t, "marzo", nombrePeriodo("marzo"))
}
