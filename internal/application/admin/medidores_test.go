package admin

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/StantonMatt/coab-platform/internal/application/dto"
	"github.com/StantonMatt/coab-platform/internal/domain"
	"github.com/StantonMatt/coab-platform/internal/domain/entity"
)

func newMedidorUC(s *memStore) *MedidorUseCase {
	return NewMedidorUseCase(memMedidores{s: s}, memLecturas{s: s})
}

func TestMedidor_CrearEnDireccionExistente(t *testing.T) {
	s := newMemStore()
	s.direcciones["dir-1"] = true
	uc := newMedidorUC(s)
	ctx := context.Background()

	m, err := uc.Create(ctx, dto.CreateMedidorRequest{DireccionID: "dir-1", NumeroSerie: " abc-123 ", Marca: "Elster"})
	require.NoError(t, err)
	assert.Equal(t, "ABC-123", m.NumeroSerie)
	assert.Equal(t, entity.MedidorActivo, m.Estado)

	_, err = uc.Create(ctx, dto.CreateMedidorRequest{DireccionID: "dir-x", NumeroSerie: "X"})
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestMedidor_RetiradoNoVuelve(t *testing.T) {
	s := newMemStore()
	s.medidores["m-1"] = &entity.Medidor{ID: "m-1", Estado: entity.MedidorActivo}
	uc := newMedidorUC(s)
	ctx := context.Background()

	out, err := uc.CambiarEstado(ctx, "m-1", entity.MedidorInactivo)
	require.NoError(t, err)
	assert.Equal(t, entity.MedidorInactivo, out.Estado)

	_, err = uc.CambiarEstado(ctx, "m-1", entity.MedidorRetirado)
	require.NoError(t, err)

	_, err = uc.CambiarEstado(ctx, "m-1", entity.MedidorActivo)
	assert.ErrorIs(t, err, domain.ErrInvalidTransition)
}

func TestRegistrarLectura_CalculaConsumo(t *testing.T) {
	s := newMemStore()
	s.medidores["m-1"] = &entity.Medidor{ID: "m-1", Estado: entity.MedidorActivo}
	uc := newMedidorUC(s)
	ctx := context.Background()

	primera, err := uc.RegistrarLectura(ctx, "m-1", dto.RegistrarLecturaRequest{Periodo: "2026-01", LecturaActual: decimal.NewFromInt(120)})
	require.NoError(t, err)
	assert.True(t, primera.LecturaAnterior.IsZero())
	assert.True(t, decimal.NewFromInt(120).Equal(primera.ConsumoM3))

	segunda, err := uc.RegistrarLectura(ctx, "m-1", dto.RegistrarLecturaRequest{Periodo: "2026-02", LecturaActual: decimal.RequireFromString("138.5")})
	require.NoError(t, err)
	assert.True(t, decimal.NewFromInt(120).Equal(segunda.LecturaAnterior))
	assert.True(t, decimal.RequireFromString("18.5").Equal(segunda.ConsumoM3))

	_, err = uc.RegistrarLectura(ctx, "m-1", dto.RegistrarLecturaRequest{Periodo: "2026-03", LecturaActual: decimal.NewFromInt(100)})
	assert.ErrorIs(t, err, domain.ErrLecturaMenorAnterior)

	_, err = uc.RegistrarLectura(ctx, "m-1", dto.RegistrarLecturaRequest{Periodo: "2026-02", LecturaActual: decimal.NewFromInt(200)})
	assert.ErrorIs(t, err, domain.ErrConflict, "periodo ya registrado")

	page, err := uc.Lecturas(ctx, "m-1", dto.PageRequest{})
	require.NoError(t, err)
	require.Len(t, page.Data, 2)
	assert.Equal(t, "2026-02", page.Data[0].Periodo)
}

func TestRegistrarLectura_MedidorInactivo(t *testing.T) {
	s := newMemStore()
	s.medidores["m-1"] = &entity.Medidor{ID: "m-1", Estado: entity.MedidorInactivo}
	uc := newMedidorUC(s)

	_, err := uc.RegistrarLectura(context.Background(), "m-1", dto.RegistrarLecturaRequest{Periodo: "2026-01", LecturaActual: decimal.NewFromInt(1)})
	assert.ErrorIs(t, err, domain.ErrConflict)
}
