package jobs

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/StantonMatt/coab-platform/internal/application/dto"
	"github.com/StantonMatt/coab-platform/internal/domain"
	"github.com/StantonMatt/coab-platform/internal/domain/entity"
	"github.com/StantonMatt/coab-platform/internal/domain/repository"
	"github.com/StantonMatt/coab-platform/pkg/logger"
)

// ── Fakes ──

type memJobs struct {
	mu     sync.Mutex
	jobs   map[string]entity.JobPDF
	cancel map[string]bool
	// cancelAfter activa el flag de cancelación tras n consultas.
	cancelAfter int
	checks      int
}

func newMemJobs() *memJobs {
	return &memJobs{jobs: map[string]entity.JobPDF{}, cancel: map[string]bool{}}
}

func (m *memJobs) Create(_ context.Context, j *entity.JobPDF) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.jobs[j.ID] = *j
	return nil
}

func (m *memJobs) GetByID(_ context.Context, id string) (*entity.JobPDF, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	j, ok := m.jobs[id]
	if !ok {
		return nil, nil
	}
	j.Cancelar = m.cancel[id]
	return &j, nil
}

func (m *memJobs) ExistsActivo(_ context.Context, periodo string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, j := range m.jobs {
		if j.Periodo == periodo && !j.Terminado() {
			return true, nil
		}
	}
	return false, nil
}

func (m *memJobs) Update(_ context.Context, j *entity.JobPDF) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.jobs[j.ID] = *j
	return nil
}

func (m *memJobs) RequestCancel(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.cancel[id] = true
	return nil
}

func (m *memJobs) IsCancelRequested(_ context.Context, id string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.checks++
	if m.cancelAfter > 0 && m.checks > m.cancelAfter {
		return true, nil
	}
	return m.cancel[id], nil
}

func (m *memJobs) FailActivos(_ context.Context, msg string) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var n int64
	now := time.Now()
	for id, j := range m.jobs {
		if j.Terminado() {
			continue
		}
		j.Estado = entity.JobError
		j.ErrorMensaje = msg
		j.FinishedAt = &now
		m.jobs[id] = j
		n++
	}
	return n, nil
}

func (m *memJobs) get(id string) entity.JobPDF {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.jobs[id]
}

type memBoletas struct {
	repository.BoletaRepository
	mu   sync.Mutex
	rows []*entity.Boleta
	keys map[string]string
}

func (m *memBoletas) ListByPeriodo(_ context.Context, periodo string) ([]*entity.Boleta, error) {
	var out []*entity.Boleta
	for _, b := range m.rows {
		if b.Periodo == periodo {
			out = append(out, b)
		}
	}
	return out, nil
}

func (m *memBoletas) SetPDFKey(_ context.Context, id, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.keys == nil {
		m.keys = map[string]string{}
	}
	m.keys[id] = key
	return nil
}

type fakeRenderer struct {
	fail map[string]bool
}

func (f fakeRenderer) Render(_ context.Context, b *entity.Boleta) ([]byte, error) {
	if f.fail[b.ID] {
		return nil, errors.New("plantilla inválida")
	}
	return []byte("%PDF-" + b.ID), nil
}

// renderLento no termina hasta que se cancela el contexto del job.
type renderLento struct {
	iniciado chan struct{}
	once     *sync.Once
}

func (r renderLento) Render(ctx context.Context, _ *entity.Boleta) ([]byte, error) {
	r.once.Do(func() { close(r.iniciado) })
	<-ctx.Done()
	return nil, ctx.Err()
}

// flakyStorage falla las primeras n subidas de cada objeto.
type flakyStorage struct {
	mu       sync.Mutex
	failures int
	attempts map[string]int
	objects  map[string][]byte
}

func newFlakyStorage(failures int) *flakyStorage {
	return &flakyStorage{failures: failures, attempts: map[string]int{}, objects: map[string][]byte{}}
}

func (s *flakyStorage) Put(_ context.Context, key string, body []byte, _ string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.attempts[key]++
	if s.attempts[key] <= s.failures {
		return errors.New("503 slow down")
	}
	s.objects[key] = body
	return nil
}

func (s *flakyStorage) Get(_ context.Context, key string) ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.objects[key], nil
}

func boletasMarzo(n int) []*entity.Boleta {
	out := make([]*entity.Boleta, 0, n)
	for i := 0; i < n; i++ {
		out = append(out, &entity.Boleta{ID: string(rune('a' + i)), Periodo: "2026-03"})
	}
	return out
}

func newService(jobs *memJobs, boletas *memBoletas, r BoletaRenderer, st *flakyStorage, maxIntentos uint64) *PDFJobService {
	s := NewPDFJobService(jobs, boletas, r, st, Config{Timeout: time.Minute, MaxIntentos: maxIntentos}, logger.Nop())
	s.newBackOff = func() backoff.BackOff { return &backoff.ZeroBackOff{} }
	return s
}

func nuevoJob(regenerar bool) *entity.JobPDF {
	return &entity.JobPDF{ID: "job-1", Periodo: "2026-03", Regenerar: regenerar, Estado: entity.JobPendiente}
}

// ── Tests ──

func TestProcess_CuentaExitososFallidosYOmitidos(t *testing.T) {
	boletas := &memBoletas{rows: boletasMarzo(4)}
	boletas.rows[1].PDFKey = "boletas/2026-03/b.pdf"
	jobs := newMemJobs()
	st := newFlakyStorage(0)
	svc := newService(jobs, boletas, fakeRenderer{fail: map[string]bool{"c": true}}, st, 3)

	job := nuevoJob(false)
	require.NoError(t, jobs.Create(context.Background(), job))
	svc.process(context.Background(), job)

	got := jobs.get("job-1")
	assert.Equal(t, entity.JobCompletado, got.Estado)
	assert.Equal(t, 4, got.Total)
	assert.Equal(t, 4, got.Procesados)
	assert.Equal(t, 2, got.Exitosos)
	assert.Equal(t, 1, got.Fallidos)
	assert.Equal(t, 1, got.Omitidos)
	assert.NotNil(t, got.StartedAt)
	assert.NotNil(t, got.FinishedAt)

	assert.Equal(t, "boletas/2026-03/a.pdf", boletas.keys["a"])
	assert.Contains(t, st.objects, "boletas/2026-03/d.pdf")
	assert.NotContains(t, boletas.keys, "b")
}

func TestProcess_RegenerarIgnoraPDFExistente(t *testing.T) {
	boletas := &memBoletas{rows: boletasMarzo(2)}
	boletas.rows[0].PDFKey = "viejo"
	jobs := newMemJobs()
	svc := newService(jobs, boletas, fakeRenderer{}, newFlakyStorage(0), 3)

	job := nuevoJob(true)
	svc.process(context.Background(), job)

	got := jobs.get("job-1")
	assert.Equal(t, 2, got.Exitosos)
	assert.Zero(t, got.Omitidos)
}

func TestProcess_ReintentaSubida(t *testing.T) {
	boletas := &memBoletas{rows: boletasMarzo(1)}
	jobs := newMemJobs()
	st := newFlakyStorage(2)
	svc := newService(jobs, boletas, fakeRenderer{}, st, 3)

	svc.process(context.Background(), nuevoJob(false))

	got := jobs.get("job-1")
	assert.Equal(t, 1, got.Exitosos)
	assert.Equal(t, 3, st.attempts["boletas/2026-03/a.pdf"])
}

func TestProcess_AgotaReintentos(t *testing.T) {
	boletas := &memBoletas{rows: boletasMarzo(1)}
	jobs := newMemJobs()
	st := newFlakyStorage(10)
	svc := newService(jobs, boletas, fakeRenderer{}, st, 2)

	svc.process(context.Background(), nuevoJob(false))

	got := jobs.get("job-1")
	assert.Equal(t, entity.JobCompletado, got.Estado)
	assert.Equal(t, 1, got.Fallidos)
	assert.Equal(t, 3, st.attempts["boletas/2026-03/a.pdf"], "intento inicial más dos reintentos")
	assert.Empty(t, boletas.keys)
}

func TestProcess_CancelacionEntreBoletas(t *testing.T) {
	boletas := &memBoletas{rows: boletasMarzo(5)}
	jobs := newMemJobs()
	jobs.cancelAfter = 2
	svc := newService(jobs, boletas, fakeRenderer{}, newFlakyStorage(0), 3)

	svc.process(context.Background(), nuevoJob(false))

	got := jobs.get("job-1")
	assert.Equal(t, entity.JobCancelado, got.Estado)
	assert.True(t, got.Cancelar)
	assert.Equal(t, 2, got.Procesados)
	assert.Equal(t, 5, got.Total)
}

func TestProcess_TimeoutDejaJobEnError(t *testing.T) {
	boletas := &memBoletas{rows: boletasMarzo(2)}
	jobs := newMemJobs()
	svc := newService(jobs, boletas, fakeRenderer{}, newFlakyStorage(0), 3)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	svc.process(ctx, nuevoJob(false))

	got := jobs.get("job-1")
	assert.Equal(t, entity.JobError, got.Estado)
	assert.NotEmpty(t, got.ErrorMensaje)
	assert.Zero(t, got.Procesados)
}

func TestStart_EjecutaEnSegundoPlano(t *testing.T) {
	boletas := &memBoletas{rows: boletasMarzo(3)}
	jobs := newMemJobs()
	svc := newService(jobs, boletas, fakeRenderer{}, newFlakyStorage(0), 3)

	out, err := svc.Start(context.Background(), dto.GenerarPDFsRequest{Periodo: "2026-03"}, "adm-1")
	require.NoError(t, err)
	assert.Equal(t, entity.JobPendiente, out.Estado)

	svc.Wait()

	got, err := svc.Get(context.Background(), out.ID)
	require.NoError(t, err)
	assert.Equal(t, entity.JobCompletado, got.Estado)
	assert.Equal(t, 3, got.Exitosos)

	_, err = svc.Cancel(context.Background(), out.ID)
	assert.ErrorIs(t, err, domain.ErrInvalidTransition, "un job terminado no se cancela")
}

func TestStart_Rechazos(t *testing.T) {
	jobs := newMemJobs()
	jobs.jobs["activo"] = entity.JobPDF{ID: "activo", Periodo: "2026-03", Estado: entity.JobProcesando}
	svc := newService(jobs, &memBoletas{}, fakeRenderer{}, newFlakyStorage(0), 3)
	ctx := context.Background()

	_, err := svc.Start(ctx, dto.GenerarPDFsRequest{Periodo: "2026-13"}, "adm-1")
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	_, err = svc.Start(ctx, dto.GenerarPDFsRequest{Periodo: "2026-03"}, "adm-1")
	assert.ErrorIs(t, err, domain.ErrJobEnCurso)

	sinStorage := NewPDFJobService(jobs, &memBoletas{}, fakeRenderer{}, nil, Config{}, logger.Nop())
	_, err = sinStorage.Start(ctx, dto.GenerarPDFsRequest{Periodo: "2026-04"}, "adm-1")
	assert.ErrorIs(t, err, domain.ErrStorageNotConfigured)

	_, err = svc.Get(ctx, "no-existe")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestCancel_MarcaFlag(t *testing.T) {
	jobs := newMemJobs()
	jobs.jobs["j"] = entity.JobPDF{ID: "j", Periodo: "2026-03", Estado: entity.JobProcesando}
	svc := newService(jobs, &memBoletas{}, fakeRenderer{}, newFlakyStorage(0), 3)

	out, err := svc.Cancel(context.Background(), "j")
	require.NoError(t, err)
	assert.True(t, out.Cancelar)
	assert.True(t, jobs.cancel["j"])
}

func TestShutdown_InterrumpeJobsEnCurso(t *testing.T) {
	boletas := &memBoletas{rows: boletasMarzo(3)}
	jobs := newMemJobs()
	r := renderLento{iniciado: make(chan struct{}), once: &sync.Once{}}
	svc := newService(jobs, boletas, r, newFlakyStorage(0), 3)

	out, err := svc.Start(context.Background(), dto.GenerarPDFsRequest{Periodo: "2026-03"}, "adm-1")
	require.NoError(t, err)

	select {
	case <-r.iniciado:
	case <-time.After(5 * time.Second):
		t.Fatal("el job no empezó a renderizar")
	}
	svc.Shutdown()

	got := jobs.get(out.ID)
	assert.Equal(t, entity.JobError, got.Estado)
	assert.Contains(t, got.ErrorMensaje, "apagado")
	assert.Equal(t, 1, got.Procesados)
	assert.NotNil(t, got.FinishedAt)

	activo, err := jobs.ExistsActivo(context.Background(), "2026-03")
	require.NoError(t, err)
	assert.False(t, activo, "el periodo queda libre para un nuevo job")
}

func TestRecoverOrphans_LiberaPeriodos(t *testing.T) {
	jobs := newMemJobs()
	jobs.jobs["p"] = entity.JobPDF{ID: "p", Periodo: "2026-03", Estado: entity.JobPendiente}
	jobs.jobs["q"] = entity.JobPDF{ID: "q", Periodo: "2026-04", Estado: entity.JobProcesando}
	jobs.jobs["ok"] = entity.JobPDF{ID: "ok", Periodo: "2026-02", Estado: entity.JobCompletado}
	svc := newService(jobs, &memBoletas{rows: boletasMarzo(1)}, fakeRenderer{}, newFlakyStorage(0), 3)
	ctx := context.Background()

	n, err := svc.RecoverOrphans(ctx)
	require.NoError(t, err)
	assert.EqualValues(t, 2, n)
	assert.Equal(t, entity.JobError, jobs.get("p").Estado)
	assert.Equal(t, entity.JobError, jobs.get("q").Estado)
	assert.NotEmpty(t, jobs.get("q").ErrorMensaje)
	assert.Equal(t, entity.JobCompletado, jobs.get("ok").Estado)

	out, err := svc.Start(ctx, dto.GenerarPDFsRequest{Periodo: "2026-03"}, "adm-1")
	require.NoError(t, err)
	svc.Wait()
	assert.Equal(t, entity.JobCompletado, jobs.get(out.ID).Estado)
}
