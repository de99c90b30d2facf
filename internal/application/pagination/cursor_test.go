package pagination_test

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/StantonMatt/coab-platform/internal/application/dto"
	"github.com/StantonMatt/coab-platform/internal/application/pagination"
	"github.com/StantonMatt/coab-platform/internal/domain"
	"github.com/StantonMatt/coab-platform/internal/domain/repository"
)

type fila struct{ id string }

func filas(n int) []fila {
	out := make([]fila, n)
	for i := range out {
		out[i] = fila{id: fmt.Sprintf("00000000-0000-4000-8000-%012d", i)}
	}
	return out
}

func keyOf(f fila) repository.CursorKey { return repository.CursorKey{Key: f.id, ID: f.id} }
func idOf(f fila) string                { return f.id }

func TestQuery_LimitePorDefectoYMaximo(t *testing.T) {
	q, err := pagination.Query(dto.PageRequest{})
	require.NoError(t, err)
	assert.Equal(t, 20, q.Limit)
	assert.Equal(t, 21, q.Fetch())
	assert.Nil(t, q.From)

	q, err = pagination.Query(dto.PageRequest{Limit: 500})
	require.NoError(t, err)
	assert.Equal(t, 100, q.Limit)
}

func TestQuery_CursorInvalido(t *testing.T) {
	_, err := pagination.Query(dto.PageRequest{Cursor: "%%%"})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestEncodeDecode(t *testing.T) {
	key := repository.CursorKey{Key: "2024-05-01T00:00:00Z", ID: "6f1c3d2a-8a4e-4f43-9a57-3b0d1c1e7b10"}
	got, err := pagination.Decode(pagination.Encode(key))
	require.NoError(t, err)
	assert.Equal(t, key, *got)
}

func TestDecode_RechazaCursorManipulado(t *testing.T) {
	cases := map[string]repository.CursorKey{
		"id no uuid":  {Key: "2024-05-01T00:00:00Z", ID: "1 OR 1=1"},
		"id vacío":    {Key: "2024-05-01T00:00:00Z"},
		"clave vacía": {ID: "6f1c3d2a-8a4e-4f43-9a57-3b0d1c1e7b10"},
	}
	for name, key := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := pagination.Decode(pagination.Encode(key))
			assert.ErrorIs(t, err, domain.ErrInvalidInput)
		})
	}
}

func TestBuild_NuncaSuperaElLimite(t *testing.T) {
	for _, n := range []int{0, 1, 4, 5, 6} {
		t.Run(fmt.Sprintf("filas=%d", n), func(t *testing.T) {
			page := pagination.Build(filas(n), 5, keyOf, idOf)

			assert.LessOrEqual(t, len(page.Data), 5)
			assert.Equal(t, n > 5, page.Pagination.HasNextPage)
			if page.Pagination.HasNextPage {
				from, err := pagination.Decode(page.Pagination.NextCursor)
				require.NoError(t, err)
				assert.Equal(t, "00000000-0000-4000-8000-000000000005", from.ID, "el cursor apunta a la fila extra")
			} else {
				assert.Empty(t, page.Pagination.NextCursor)
			}
		})
	}
}

func TestBuild_DataVaciaNoEsNil(t *testing.T) {
	page := pagination.Build([]fila(nil), 5, keyOf, idOf)
	assert.NotNil(t, page.Data)
}
