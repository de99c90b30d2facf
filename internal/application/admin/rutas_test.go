package admin

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/StantonMatt/coab-platform/internal/application/dto"
	"github.com/StantonMatt/coab-platform/internal/domain"
	"github.com/StantonMatt/coab-platform/internal/domain/entity"
)

type memRutas struct {
	rutas    map[string]*entity.Ruta
	asignado map[string][]string
}

func newMemRutas() *memRutas {
	return &memRutas{rutas: map[string]*entity.Ruta{}, asignado: map[string][]string{}}
}

func (m *memRutas) Create(_ context.Context, r *entity.Ruta) error {
	cp := *r
	m.rutas[r.ID] = &cp
	return nil
}

func (m *memRutas) GetByID(_ context.Context, id string) (*entity.Ruta, error) {
	r, ok := m.rutas[id]
	if !ok {
		return nil, nil
	}
	cp := *r
	cp.TotalDirecciones = len(m.asignado[id])
	return &cp, nil
}

func (m *memRutas) List(_ context.Context) ([]*entity.Ruta, error) {
	out := make([]*entity.Ruta, 0, len(m.rutas))
	for _, r := range m.rutas {
		out = append(out, r)
	}
	return out, nil
}

func (m *memRutas) Update(_ context.Context, r *entity.Ruta) error {
	cp := *r
	m.rutas[r.ID] = &cp
	return nil
}

func (m *memRutas) AsignarDirecciones(_ context.Context, rutaID string, ids []string) error {
	m.asignado[rutaID] = ids
	return nil
}

func TestRuta_CrearYEditar(t *testing.T) {
	repo := newMemRutas()
	uc := NewRutaUseCase(repo)
	ctx := context.Background()

	r, err := uc.Create(ctx, dto.RutaRequest{Nombre: " Sector Norte ", LectorAsignado: "Pedro"})
	require.NoError(t, err)
	assert.Equal(t, "Sector Norte", r.Nombre)
	assert.Equal(t, entity.EstadoActivo, r.Estado)

	upd, err := uc.Update(ctx, r.ID, dto.RutaRequest{Nombre: "Sector Norte Alto", Estado: entity.EstadoInactivo})
	require.NoError(t, err)
	assert.Equal(t, "Sector Norte Alto", upd.Nombre)
	assert.Equal(t, entity.EstadoInactivo, upd.Estado)
	assert.Empty(t, upd.LectorAsignado)

	_, err = uc.Update(ctx, "no-existe", dto.RutaRequest{Nombre: "x"})
	assert.ErrorIs(t, err, domain.ErrNotFound)

	all, err := uc.List(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 1)
}

func TestRuta_AsignarDireccionesSinDuplicados(t *testing.T) {
	repo := newMemRutas()
	uc := NewRutaUseCase(repo)
	ctx := context.Background()

	r, err := uc.Create(ctx, dto.RutaRequest{Nombre: "Centro"})
	require.NoError(t, err)

	out, err := uc.AsignarDirecciones(ctx, r.ID, dto.AsignarDireccionesRequest{DireccionIDs: []string{"d2", "d1", "d2", "d3"}})
	require.NoError(t, err)
	assert.Equal(t, []string{"d2", "d1", "d3"}, repo.asignado[r.ID], "se respeta el orden de recorrido")
	assert.Equal(t, 3, out.TotalDirecciones)

	_, err = uc.AsignarDirecciones(ctx, "no-existe", dto.AsignarDireccionesRequest{DireccionIDs: []string{"d1"}})
	assert.ErrorIs(t, err, domain.ErrNotFound)
}
