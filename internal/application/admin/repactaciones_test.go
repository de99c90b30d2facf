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
	"github.com/StantonMatt/coab-platform/pkg/logger"
)

func newRepactacionUC(s *memStore) *RepactacionUseCase {
	uc := NewRepactacionUseCase(s, memSolicitudes{s: s}, memRepactaciones{s: s}, logger.Nop())
	uc.now = func() time.Time { return marzo }
	return uc
}

func solicitudPendiente(s *memStore, id string, deuda int64, cuotas int) {
	s.solicitudes[id] = &entity.SolicitudRepactacion{
		ID:                id,
		ClienteID:         clienteID,
		MontoDeuda:        decimal.NewFromInt(deuda),
		CuotasSolicitadas: cuotas,
		Motivo:            "cesantía",
		Estado:            entity.SolicitudPendiente,
		CreatedAt:         marzo.Add(-48 * time.Hour),
	}
}

func TestAprobar_CreaConvenioConCuotaRedondeada(t *testing.T) {
	s := newMemStore()
	solicitudPendiente(s, "s-1", 100000, 3)
	uc := newRepactacionUC(s)

	out, err := uc.Aprobar(context.Background(), "s-1", "sup-1", dto.RevisarSolicitudRequest{Comentario: "ok"})
	require.NoError(t, err)

	assert.Equal(t, entity.RepactacionActivo, out.Estado)
	assert.Equal(t, 3, out.Cuotas)
	assert.True(t, decimal.NewFromInt(33333).Equal(out.MontoCuota))
	assert.True(t, decimal.NewFromInt(33334).Equal(out.MontoUltima))
	require.NotNil(t, out.SolicitudID)
	assert.Equal(t, "s-1", *out.SolicitudID)

	sol := s.solicitudes["s-1"]
	assert.Equal(t, entity.SolicitudAprobada, sol.Estado)
	require.NotNil(t, sol.RevisadoPor)
	assert.Equal(t, "sup-1", *sol.RevisadoPor)
	assert.Len(t, s.repactaciones, 1)
}

func TestAprobar_CuotasDelRevisor(t *testing.T) {
	s := newMemStore()
	solicitudPendiente(s, "s-1", 50000, 12)
	uc := newRepactacionUC(s)

	out, err := uc.Aprobar(context.Background(), "s-1", "sup-1", dto.RevisarSolicitudRequest{Cuotas: 4})
	require.NoError(t, err)
	assert.Equal(t, 4, out.Cuotas)
	assert.True(t, decimal.NewFromInt(12500).Equal(out.MontoCuota))
	assert.True(t, decimal.NewFromInt(12500).Equal(out.MontoUltima))
}

func TestRevision_SoloDesdePendiente(t *testing.T) {
	s := newMemStore()
	solicitudPendiente(s, "s-1", 30000, 3)
	uc := newRepactacionUC(s)
	ctx := context.Background()

	_, err := uc.Rechazar(ctx, "s-1", "sup-1", dto.RevisarSolicitudRequest{Comentario: "sin antecedentes"})
	require.NoError(t, err)
	assert.Equal(t, entity.SolicitudRechazada, s.solicitudes["s-1"].Estado)

	_, err = uc.Aprobar(ctx, "s-1", "sup-1", dto.RevisarSolicitudRequest{})
	assert.ErrorIs(t, err, domain.ErrInvalidTransition)
	assert.Empty(t, s.repactaciones)

	_, err = uc.Rechazar(ctx, "s-1", "sup-1", dto.RevisarSolicitudRequest{})
	assert.ErrorIs(t, err, domain.ErrInvalidTransition)

	_, err = uc.Aprobar(ctx, "no-existe", "sup-1", dto.RevisarSolicitudRequest{})
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestConvenio_CompletarYCancelar(t *testing.T) {
	s := newMemStore()
	solicitudPendiente(s, "s-1", 60000, 6)
	solicitudPendiente(s, "s-2", 60000, 6)
	uc := newRepactacionUC(s)
	ctx := context.Background()

	a, err := uc.Aprobar(ctx, "s-1", "sup-1", dto.RevisarSolicitudRequest{})
	require.NoError(t, err)
	b, err := uc.Aprobar(ctx, "s-2", "sup-1", dto.RevisarSolicitudRequest{})
	require.NoError(t, err)

	done, err := uc.Completar(ctx, a.ID)
	require.NoError(t, err)
	assert.Equal(t, entity.RepactacionCompletado, done.Estado)
	assert.Equal(t, 6, done.CuotasPagadas)

	_, err = uc.Cancelar(ctx, a.ID)
	assert.ErrorIs(t, err, domain.ErrInvalidTransition)

	cancelado, err := uc.Cancelar(ctx, b.ID)
	require.NoError(t, err)
	assert.Equal(t, entity.RepactacionCancelado, cancelado.Estado)

	_, err = uc.Completar(ctx, b.ID)
	assert.ErrorIs(t, err, domain.ErrInvalidTransition)
}

func TestAprobar_RevisionConcurrente_NoCreaConvenio(t *testing.T) {
	s := newMemStore()
	solicitudPendiente(s, "s-1", 90000, 3)
	s.antesDeActualizar = func() {
		rechazada := *s.solicitudes["s-1"]
		rechazada.Estado = entity.SolicitudRechazada
		s.solicitudes["s-1"] = &rechazada
	}
	uc := newRepactacionUC(s)

	_, err := uc.Aprobar(context.Background(), "s-1", "sup-1", dto.RevisarSolicitudRequest{})
	assert.ErrorIs(t, err, domain.ErrInvalidTransition)
	assert.Empty(t, s.repactaciones, "una solicitud rechazada no deja convenio activo")
	assert.Equal(t, entity.SolicitudRechazada, s.solicitudes["s-1"].Estado)
}

func TestRechazar_RevisionConcurrente(t *testing.T) {
	s := newMemStore()
	solicitudPendiente(s, "s-1", 90000, 3)
	s.antesDeActualizar = func() {
		aprobada := *s.solicitudes["s-1"]
		aprobada.Estado = entity.SolicitudAprobada
		s.solicitudes["s-1"] = &aprobada
	}
	uc := newRepactacionUC(s)

	_, err := uc.Rechazar(context.Background(), "s-1", "sup-2", dto.RevisarSolicitudRequest{Comentario: "sin respaldo"})
	assert.ErrorIs(t, err, domain.ErrInvalidTransition)
	assert.Equal(t, entity.SolicitudAprobada, s.solicitudes["s-1"].Estado)
}

func TestAprobar_MontoMenorQueCuotas(t *testing.T) {
	s := newMemStore()
	solicitudPendiente(s, "s-1", 3, 4)
	uc := newRepactacionUC(s)

	_, err := uc.Aprobar(context.Background(), "s-1", "sup-1", dto.RevisarSolicitudRequest{})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
	assert.Empty(t, s.repactaciones)
}
