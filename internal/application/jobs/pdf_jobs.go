// Package jobs ejecuta los procesos batch de generación de boletas en PDF.
package jobs

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/google/uuid"
	"github.com/sourcegraph/conc"

	"github.com/StantonMatt/coab-platform/internal/application/dto"
	"github.com/StantonMatt/coab-platform/internal/application/ports"
	"github.com/StantonMatt/coab-platform/internal/domain"
	"github.com/StantonMatt/coab-platform/internal/domain/entity"
	"github.com/StantonMatt/coab-platform/internal/domain/repository"
	"github.com/StantonMatt/coab-platform/pkg/logger"
	"github.com/StantonMatt/coab-platform/pkg/validator"
)

const contentTypePDF = "application/pdf"

// BoletaRenderer genera el PDF de una boleta.
type BoletaRenderer interface {
	Render(ctx context.Context, b *entity.Boleta) ([]byte, error)
}

// Config parámetros del runner.
type Config struct {
	Timeout     time.Duration // tiempo máximo de un job completo
	MaxIntentos uint64        // reintentos de subida por boleta
}

// PDFJobService crea, ejecuta y consulta jobs de generación masiva de PDFs.
//
// Cada job corre en su propia goroutine con un contexto del servicio y un timeout
// global, desacoplado del request HTTP que lo inició. Shutdown cancela ese
// contexto: los jobs en curso terminan en error antes de la siguiente boleta. Las boletas se procesan
// en forma secuencial y los contadores se persisten después de cada una para
// que el panel pueda consultar el avance.
type PDFJobService struct {
	jobRepo    repository.JobRepository
	boletaRepo repository.BoletaRepository
	renderer   BoletaRenderer
	storage    ports.ObjectStorage
	cfg        Config
	log        *logger.Logger
	wg         conc.WaitGroup
	root       context.Context
	stop       context.CancelFunc
	now        func() time.Time
	newBackOff func() backoff.BackOff
}

// NewPDFJobService construye el servicio. storage nil deshabilita los jobs.
func NewPDFJobService(
	jobRepo repository.JobRepository,
	boletaRepo repository.BoletaRepository,
	renderer BoletaRenderer,
	storage ports.ObjectStorage,
	cfg Config,
	log *logger.Logger,
) *PDFJobService {
	if cfg.Timeout <= 0 {
		cfg.Timeout = time.Hour
	}
	if cfg.MaxIntentos == 0 {
		cfg.MaxIntentos = 3
	}
	root, stop := context.WithCancel(context.Background())
	return &PDFJobService{
		root:       root,
		stop:       stop,
		jobRepo:    jobRepo,
		boletaRepo: boletaRepo,
		renderer:   renderer,
		storage:    storage,
		cfg:        cfg,
		log:        log.Named("jobs.pdf"),
		now:        time.Now,
		newBackOff: func() backoff.BackOff {
			b := backoff.NewExponentialBackOff()
			b.InitialInterval = 500 * time.Millisecond
			b.MaxInterval = 10 * time.Second
			return b
		},
	}
}

// Start registra el job y lanza el procesamiento en segundo plano.
func (s *PDFJobService) Start(ctx context.Context, in dto.GenerarPDFsRequest, adminID string) (*dto.JobResponse, error) {
	if !validator.ValidatePeriodo(in.Periodo) {
		return nil, fmt.Errorf("periodo debe tener formato YYYY-MM: %w", domain.ErrInvalidInput)
	}
	if s.storage == nil {
		return nil, domain.ErrStorageNotConfigured
	}
	activo, err := s.jobRepo.ExistsActivo(ctx, in.Periodo)
	if err != nil {
		return nil, err
	}
	if activo {
		return nil, domain.ErrJobEnCurso
	}

	job := &entity.JobPDF{
		ID:          uuid.New().String(),
		Periodo:     in.Periodo,
		Regenerar:   in.Regenerar,
		Estado:      entity.JobPendiente,
		IniciadoPor: adminID,
		CreatedAt:   s.now(),
	}
	if err := s.jobRepo.Create(ctx, job); err != nil {
		if errors.Is(err, domain.ErrDuplicate) {
			return nil, domain.ErrJobEnCurso
		}
		return nil, err
	}

	s.log.Info().Str("job_id", job.ID).Str("periodo", job.Periodo).Bool("regenerar", job.Regenerar).Msg("job de PDFs encolado")
	snapshot := *job
	s.wg.Go(func() { s.run(&snapshot) })

	resp := ToJobResponse(job)
	return &resp, nil
}

// Get estado y contadores del job.
func (s *PDFJobService) Get(ctx context.Context, id string) (*dto.JobResponse, error) {
	job, err := s.jobRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if job == nil {
		return nil, domain.ErrNotFound
	}
	resp := ToJobResponse(job)
	return &resp, nil
}

// Cancel solicita la cancelación; el runner la aplica antes de la siguiente boleta.
func (s *PDFJobService) Cancel(ctx context.Context, id string) (*dto.JobResponse, error) {
	job, err := s.jobRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if job == nil {
		return nil, domain.ErrNotFound
	}
	if job.Terminado() {
		return nil, fmt.Errorf("job %s: %w", job.Estado, domain.ErrInvalidTransition)
	}
	if err := s.jobRepo.RequestCancel(ctx, id); err != nil {
		return nil, err
	}
	job.Cancelar = true
	resp := ToJobResponse(job)
	return &resp, nil
}

// Wait bloquea hasta que terminen los jobs en curso.
func (s *PDFJobService) Wait() {
	s.wg.Wait()
}

// Shutdown interrumpe los jobs en curso y espera a que cada uno quede en un estado final.
func (s *PDFJobService) Shutdown() {
	s.stop()
	s.wg.Wait()
}

// RecoverOrphans cierra con error los jobs que quedaron pendientes o procesando
// por una caída del proceso. Se llama al arrancar, antes de aceptar requests:
// de lo contrario el índice de job activo bloquearía el periodo para siempre.
func (s *PDFJobService) RecoverOrphans(ctx context.Context) (int64, error) {
	n, err := s.jobRepo.FailActivos(ctx, "proceso interrumpido por reinicio del servidor")
	if err != nil {
		return 0, err
	}
	if n > 0 {
		s.log.Warn().Int64("jobs", n).Msg("jobs huérfanos marcados con error")
	}
	return n, nil
}

// ── Ejecución ──

func (s *PDFJobService) run(job *entity.JobPDF) {
	ctx, cancel := context.WithTimeout(s.root, s.cfg.Timeout)
	defer cancel()
	s.process(ctx, job)
}

// process recorre las boletas del periodo. Siempre deja el job en un estado final.
func (s *PDFJobService) process(ctx context.Context, job *entity.JobPDF) {
	log := s.log.With().Str("job_id", job.ID).Str("periodo", job.Periodo).Logger()

	// Las escrituras de estado usan un contexto propio para poder cerrar el job
	// aunque ctx haya expirado.
	persist := func() {
		wctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := s.jobRepo.Update(wctx, job); err != nil {
			log.Error().Err(err).Msg("no se pudo actualizar el job")
		}
	}
	finish := func(estado, msg string) {
		t := s.now()
		job.Estado = estado
		job.ErrorMensaje = msg
		job.FinishedAt = &t
		persist()
		log.Info().
			Str("estado", estado).
			Int("exitosos", job.Exitosos).
			Int("fallidos", job.Fallidos).
			Int("omitidos", job.Omitidos).
			Msg("job de PDFs finalizado")
	}

	started := s.now()
	job.Estado = entity.JobProcesando
	job.StartedAt = &started

	boletas, err := s.boletaRepo.ListByPeriodo(ctx, job.Periodo)
	if err != nil {
		log.Error().Err(err).Msg("no se pudieron listar las boletas")
		finish(entity.JobError, "no se pudieron listar las boletas del periodo")
		return
	}
	job.Total = len(boletas)
	persist()

	for _, b := range boletas {
		if err := ctx.Err(); err != nil {
			if errors.Is(err, context.DeadlineExceeded) {
				finish(entity.JobError, "tiempo máximo del proceso excedido")
			} else {
				finish(entity.JobError, "proceso interrumpido por apagado del servidor")
			}
			return
		}
		cancelar, err := s.jobRepo.IsCancelRequested(ctx, job.ID)
		if err != nil {
			log.Error().Err(err).Msg("no se pudo leer el flag de cancelación")
			finish(entity.JobError, "error consultando el estado del job")
			return
		}
		if cancelar {
			job.Cancelar = true
			finish(entity.JobCancelado, "")
			return
		}

		switch {
		case b.PDFKey != "" && !job.Regenerar:
			job.Omitidos++
		default:
			if err := s.generar(ctx, b); err != nil {
				log.Warn().Err(err).Str("boleta_id", b.ID).Msg("boleta sin PDF")
				job.Fallidos++
			} else {
				job.Exitosos++
			}
		}
		job.Procesados++
		persist()
	}
	finish(entity.JobCompletado, "")
}

// generar renderiza la boleta, la sube con reintentos y registra su pdf_key.
func (s *PDFJobService) generar(ctx context.Context, b *entity.Boleta) error {
	pdf, err := s.renderer.Render(ctx, b)
	if err != nil {
		return err
	}
	key := ObjectKey(b)
	put := func() error { return s.storage.Put(ctx, key, pdf, contentTypePDF) }
	bo := backoff.WithContext(backoff.WithMaxRetries(s.newBackOff(), s.cfg.MaxIntentos), ctx)
	if err := backoff.Retry(put, bo); err != nil {
		return fmt.Errorf("subir %s: %w", key, err)
	}
	return s.boletaRepo.SetPDFKey(ctx, b.ID, key)
}

// ObjectKey ruta del PDF de la boleta dentro del bucket.
func ObjectKey(b *entity.Boleta) string {
	return fmt.Sprintf("boletas/%s/%s.pdf", b.Periodo, b.ID)
}

// ToJobResponse mapea el job al DTO de polling.
func ToJobResponse(j *entity.JobPDF) dto.JobResponse {
	return dto.JobResponse{
		ID:           j.ID,
		Periodo:      j.Periodo,
		Estado:       j.Estado,
		Total:        j.Total,
		Procesados:   j.Procesados,
		Exitosos:     j.Exitosos,
		Fallidos:     j.Fallidos,
		Omitidos:     j.Omitidos,
		Cancelar:     j.Cancelar,
		ErrorMensaje: j.ErrorMensaje,
		CreatedAt:    j.CreatedAt,
		StartedAt:    j.StartedAt,
		FinishedAt:   j.FinishedAt,
	}
}
